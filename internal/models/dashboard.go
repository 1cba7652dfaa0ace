package models

import (
	"encoding/json"
	"unicode"
)

// Chart kind tags as they appear in the "type" field of a descriptor
const (
	KindBase    = "BaseChart"
	KindXY      = "XYChart"
	KindMap     = "MapChart"
	KindHeatmap = "HeatmapChart"
	KindDataset = "Dataset"
)

// Dashboard is a titled, ordered group of charts rendered into one container
type Dashboard struct {
	ID          string
	Title       string
	Description string
	Charts      []Chart
}

// Chart is one of BaseChart, XYChart, MapChart, HeatmapChart or Dataset.
// The set is closed: only types in this package implement it.
type Chart interface {
	Header() *ChartHeader
	isChart()
}

// ChartHeader holds the fields shared by every chart kind
type ChartHeader struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle,omitempty"`
	Series   json.RawMessage `json:"series,omitempty"`
}

// Header returns the shared chart fields
func (h *ChartHeader) Header() *ChartHeader { return h }

// BaseChart is rendered with the generic option set. Kind keeps the original
// type tag when an unrecognized kind fell back to BaseChart.
type BaseChart struct {
	ChartHeader
	Kind string `json:"-"`
}

// XYChart is a cartesian chart with one x and one y axis
type XYChart struct {
	ChartHeader
	XType       string          `json:"x_type"`
	XAxisValues json.RawMessage `json:"x_axis_values,omitempty"`
	YType       string          `json:"y_type"`
	YAxisValues json.RawMessage `json:"y_axis_values,omitempty"`
	Zoom        json.RawMessage `json:"-"` // array of dataZoom objects, passed through as given
}

// MapChart is a choropleth over a named geo shape
type MapChart struct {
	ChartHeader
	MapID   string          `json:"map_id"`
	GeoJSON json.RawMessage `json:"geo_json,omitempty"`
	Min     float64         `json:"min"`
	Max     float64         `json:"max"`
}

// HeatmapChart is a category x category grid colored by value
type HeatmapChart struct {
	ChartHeader
	XType       string          `json:"x_type"`
	XAxisValues json.RawMessage `json:"x_axis_values,omitempty"`
	YType       string          `json:"y_type"`
	YAxisValues json.RawMessage `json:"y_axis_values,omitempty"`
	Min         float64         `json:"min"`
	Max         float64         `json:"max"`
	Zoom        json.RawMessage `json:"-"`
}

// Dataset is tabular data rendered as a grid rather than a chart
type Dataset struct {
	ChartHeader
	Data    json.RawMessage `json:"data,omitempty"`
	Columns []Column        `json:"columns,omitempty"`
}

// Column describes one dataset column
type Column struct {
	Title string `json:"title"`
}

func (*BaseChart) isChart()    {}
func (*XYChart) isChart()      {}
func (*MapChart) isChart()     {}
func (*HeatmapChart) isChart() {}
func (*Dataset) isChart()      {}

// KindOf returns the type tag of c
func KindOf(c Chart) string {
	switch v := c.(type) {
	case *XYChart:
		return KindXY
	case *MapChart:
		return KindMap
	case *HeatmapChart:
		return KindHeatmap
	case *Dataset:
		return KindDataset
	case *BaseChart:
		if v.Kind != "" {
			return v.Kind
		}
	}
	return KindBase
}

// IDFromTitle keeps only the letters and digits of title
func IDFromTitle(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
