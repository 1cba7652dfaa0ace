package charts

import (
	"encoding/json"

	"github.com/go-echarts/go-echarts/v2/opts"

	"dashgen/internal/models"
)

// Option is the ECharts option object applied to one chart instance.
// Sub-objects the renderer never varies reuse go-echarts types.
type Option struct {
	Title     *opts.Title     `json:"title,omitempty"`
	Legend    *Legend         `json:"legend,omitempty"`
	Label     *Label          `json:"label,omitempty"`
	Tooltip   *opts.Tooltip   `json:"tooltip,omitempty"`
	XAxis     []Axis          `json:"xAxis,omitempty"`
	YAxis     []Axis          `json:"yAxis,omitempty"`
	VisualMap *VisualMap      `json:"visualMap,omitempty"`
	DataZoom  json.RawMessage `json:"dataZoom,omitempty"`
	Series    json.RawMessage `json:"series,omitempty"`
}

// Legend is the series legend; hidden unless a series asks for it
type Legend struct {
	Show bool   `json:"show"`
	Type string `json:"type,omitempty"`
	Top  string `json:"top,omitempty"`
}

// Label controls point labels
type Label struct {
	Show bool `json:"show"`
}

// Axis is one cartesian axis
type Axis struct {
	Type      string          `json:"type,omitempty"`
	Show      bool            `json:"show"`
	Data      json.RawMessage `json:"data,omitempty"`
	SplitArea *opts.SplitArea `json:"splitArea,omitempty"`
}

// VisualMap is a continuous value-to-color legend
type VisualMap struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Realtime   *bool   `json:"realtime,omitempty"`
	Calculable bool    `json:"calculable"`
	Orient     string  `json:"orient,omitempty"`
	Left       string  `json:"left,omitempty"`
}

// BuildOption maps a chart descriptor to its option object. Datasets are
// rendered by the grid and have no option, so nil is returned for them.
func BuildOption(c models.Chart) *Option {
	switch v := c.(type) {
	case *models.XYChart:
		return xyOption(v)
	case *models.MapChart:
		return mapOption(v)
	case *models.HeatmapChart:
		return heatmapOption(v)
	case *models.BaseChart:
		return baseOption(&v.ChartHeader)
	case *models.Dataset:
		return nil
	}
	return nil
}

func centeredTitle(h *models.ChartHeader) *opts.Title {
	return &opts.Title{
		Title:    h.Title,
		Subtitle: h.Subtitle,
		Left:     "center",
	}
}

func hiddenLegend() *Legend {
	return &Legend{Show: false, Type: "scroll", Top: "bottom"}
}

func itemTooltip() *opts.Tooltip {
	return &opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}
}

func baseOption(h *models.ChartHeader) *Option {
	return &Option{
		Title:   centeredTitle(h),
		Legend:  hiddenLegend(),
		Label:   &Label{Show: false},
		Tooltip: itemTooltip(),
		Series:  h.Series,
	}
}

func xyOption(c *models.XYChart) *Option {
	return &Option{
		Title:    centeredTitle(&c.ChartHeader),
		Legend:   hiddenLegend(),
		Tooltip:  itemTooltip(),
		XAxis:    []Axis{{Type: c.XType, Show: true, Data: c.XAxisValues}},
		YAxis:    []Axis{{Type: c.YType, Show: true, Data: c.YAxisValues}},
		DataZoom: c.Zoom,
		Series:   c.Series,
	}
}

func mapOption(c *models.MapChart) *Option {
	realtime := false
	return &Option{
		Title: centeredTitle(&c.ChartHeader),
		VisualMap: &VisualMap{
			Min:        c.Min,
			Max:        c.Max,
			Realtime:   &realtime,
			Calculable: true,
		},
		Series: c.Series,
	}
}

func heatmapOption(c *models.HeatmapChart) *Option {
	splitArea := func() *opts.SplitArea { return &opts.SplitArea{Show: opts.Bool(true)} }
	return &Option{
		Title:   centeredTitle(&c.ChartHeader),
		Legend:  hiddenLegend(),
		Tooltip: itemTooltip(),
		XAxis:   []Axis{{Type: c.XType, Show: true, Data: c.XAxisValues, SplitArea: splitArea()}},
		YAxis:   []Axis{{Type: c.YType, Show: true, Data: c.YAxisValues, SplitArea: splitArea()}},
		VisualMap: &VisualMap{
			Min:        c.Min,
			Max:        c.Max,
			Calculable: true,
			Orient:     "horizontal",
			Left:       "center",
		},
		DataZoom: c.Zoom,
		Series:   c.Series,
	}
}
