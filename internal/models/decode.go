package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type dashboardWire struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Charts      []json.RawMessage `json:"charts"`
}

type chartTag struct {
	Type string          `json:"type"`
	Zoom json.RawMessage `json:"zoom"`
}

// DecodeDashboard parses a JSON dashboard descriptor
func DecodeDashboard(data []byte) (*Dashboard, error) {
	var wire dashboardWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard: %w", err)
	}

	d := &Dashboard{
		ID:          wire.ID,
		Title:       wire.Title,
		Description: wire.Description,
		Charts:      make([]Chart, 0, len(wire.Charts)),
	}
	if d.ID == "" {
		d.ID = IDFromTitle(d.Title)
	}

	for i, raw := range wire.Charts {
		c, err := DecodeChart(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode chart %d of dashboard %q: %w", i, d.ID, err)
		}
		d.Charts = append(d.Charts, c)
	}
	return d, nil
}

// DecodeChart parses one chart descriptor, selecting the variant by its
// "type" field. Unrecognized types decode as BaseChart with Kind set.
func DecodeChart(raw json.RawMessage) (Chart, error) {
	var tag chartTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}

	var c Chart
	switch tag.Type {
	case KindXY:
		xy := &XYChart{}
		if err := json.Unmarshal(raw, xy); err != nil {
			return nil, err
		}
		zoom, err := decodeZoom(tag.Zoom)
		if err != nil {
			return nil, err
		}
		xy.Zoom = zoom
		c = xy
	case KindHeatmap:
		hm := &HeatmapChart{}
		if err := json.Unmarshal(raw, hm); err != nil {
			return nil, err
		}
		zoom, err := decodeZoom(tag.Zoom)
		if err != nil {
			return nil, err
		}
		hm.Zoom = zoom
		if hm.XType == "" {
			hm.XType = "category"
		}
		if hm.YType == "" {
			hm.YType = "category"
		}
		c = hm
	case KindMap:
		mc, err := decodeMapChart(raw)
		if err != nil {
			return nil, err
		}
		c = mc
	case KindDataset:
		ds := &Dataset{}
		if err := json.Unmarshal(raw, ds); err != nil {
			return nil, err
		}
		c = ds
	default:
		base := &BaseChart{}
		if err := json.Unmarshal(raw, base); err != nil {
			return nil, err
		}
		if tag.Type != KindBase {
			base.Kind = tag.Type
		}
		c = base
	}

	h := c.Header()
	if h.ID == "" {
		h.ID = IDFromTitle(h.Title)
	}
	return c, nil
}

// decodeZoom accepts a single dataZoom object or an array of them and
// returns an array. The objects are kept verbatim.
func decodeZoom(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("invalid zoom: %w", err)
		}
	case '{':
		items = []json.RawMessage{raw}
	default:
		return nil, fmt.Errorf("invalid zoom: expected object or array, got %s", raw)
	}
	for i, item := range items {
		if item = bytes.TrimSpace(item); len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("invalid zoom: item %d is not an object", i)
		}
	}
	if raw[0] == '[' {
		return raw, nil
	}
	out := make(json.RawMessage, 0, len(raw)+2)
	out = append(out, '[')
	out = append(out, raw...)
	return append(out, ']'), nil
}

type mapChartWire struct {
	MapChart
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func decodeMapChart(raw json.RawMessage) (*MapChart, error) {
	var wire mapChartWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	mc := wire.MapChart

	if wire.Min != nil && wire.Max != nil {
		mc.Min, mc.Max = *wire.Min, *wire.Max
		return &mc, nil
	}

	lo, hi, ok := seriesValueRange(mc.Series)
	switch {
	case wire.Min != nil:
		mc.Min = *wire.Min
	case ok:
		mc.Min = lo
	}
	switch {
	case wire.Max != nil:
		mc.Max = *wire.Max
	case ok:
		mc.Max = hi
	}
	return &mc, nil
}

type valueItem struct {
	Value json.RawMessage `json:"value"`
}

type seriesData struct {
	Data []json.RawMessage `json:"data"`
}

// seriesValueRange scans the numeric "value" fields of the data items of a
// series object or an array of series objects.
func seriesValueRange(series json.RawMessage) (lo, hi float64, ok bool) {
	series = bytes.TrimSpace(series)
	if len(series) == 0 {
		return 0, 0, false
	}

	var list []seriesData
	if series[0] == '[' {
		if err := json.Unmarshal(series, &list); err != nil {
			return 0, 0, false
		}
	} else {
		var single seriesData
		if err := json.Unmarshal(series, &single); err != nil {
			return 0, 0, false
		}
		list = []seriesData{single}
	}

	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range list {
		for _, item := range s.Data {
			var vi valueItem
			if err := json.Unmarshal(item, &vi); err != nil {
				continue
			}
			var v float64
			if err := json.Unmarshal(vi.Value, &v); err != nil {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// DecodeDashboardYAML parses a YAML dashboard descriptor. The document is
// converted to JSON first so both formats share one decoding path.
func DecodeDashboardYAML(data []byte) (*Dashboard, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	jsonData, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml: %w", err)
	}
	return DecodeDashboard(jsonData)
}

// normalizeYAML turns map[interface{}]interface{} nodes into string-keyed maps
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

// IsDescriptorFile reports whether path has a supported descriptor extension
func IsDescriptorFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDashboardFile reads a descriptor, choosing the format by extension
func LoadDashboardFile(path string) (*Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var d *Dashboard
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		d, err = DecodeDashboardYAML(data)
	default:
		d, err = DecodeDashboard(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
