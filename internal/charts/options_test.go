package charts

import (
	"encoding/json"
	"strings"
	"testing"

	"dashgen/internal/models"
)

func TestBuildOptionBase(t *testing.T) {
	c := &models.BaseChart{ChartHeader: models.ChartHeader{
		ID: "c1", Title: "Share", Subtitle: "by region", Series: json.RawMessage(`[{"type":"pie"}]`),
	}}

	opt := BuildOption(c)
	if opt == nil {
		t.Fatal("Expected option")
	}
	if opt.Title.Title != "Share" || opt.Title.Subtitle != "by region" || opt.Title.Left != "center" {
		t.Errorf("Expected centered title with subtitle, got %+v", opt.Title)
	}
	if opt.Legend == nil || opt.Legend.Show || opt.Legend.Type != "scroll" || opt.Legend.Top != "bottom" {
		t.Errorf("Expected hidden scroll legend at the bottom, got %+v", opt.Legend)
	}
	if opt.Label == nil || opt.Label.Show {
		t.Errorf("Expected hidden labels, got %+v", opt.Label)
	}
	if opt.Tooltip == nil || opt.Tooltip.Trigger != "item" {
		t.Errorf("Expected item tooltip, got %+v", opt.Tooltip)
	}
	if opt.XAxis != nil || opt.VisualMap != nil {
		t.Error("Expected no axes or visual map on a base chart")
	}
}

func TestBuildOptionHeatmap(t *testing.T) {
	c := &models.HeatmapChart{
		ChartHeader: models.ChartHeader{ID: "h1", Title: "Load"},
		XType:       "category",
		XAxisValues: json.RawMessage(`["mon","tue"]`),
		YType:       "category",
		YAxisValues: json.RawMessage(`["am","pm"]`),
		Min:         0,
		Max:         10,
		Zoom:        json.RawMessage(`[{"type":"slider","start":0,"end":50}]`),
	}

	opt := BuildOption(c)
	if len(opt.XAxis) != 1 || opt.XAxis[0].SplitArea == nil {
		t.Errorf("Expected x axis with split area, got %+v", opt.XAxis)
	}
	if len(opt.YAxis) != 1 || opt.YAxis[0].SplitArea == nil {
		t.Errorf("Expected y axis with split area, got %+v", opt.YAxis)
	}
	vm := opt.VisualMap
	if vm == nil || vm.Max != 10 || vm.Orient != "horizontal" || vm.Left != "center" || !vm.Calculable {
		t.Errorf("Expected horizontal centered visual map to 10, got %+v", vm)
	}
	if string(opt.DataZoom) != `[{"type":"slider","start":0,"end":50}]` {
		t.Errorf("Expected zoom passed through, got %s", opt.DataZoom)
	}
}

func TestBuildOptionZoomPassthrough(t *testing.T) {
	tests := []struct {
		name string
		zoom string
		want string
	}{
		{
			"object with value window",
			`{"type":"slider","startValue":"Feb","endValue":"Mar","bottom":10,"filterMode":"none","end":0}`,
			`[{"type":"slider","startValue":"Feb","endValue":"Mar","bottom":10,"filterMode":"none","end":0}]`,
		},
		{"object without type", `{"start":20}`, `[{"start":20}]`},
		{
			"array",
			`[{"type":"inside","minSpan":5},{"type":"slider","show":false,"orient":"vertical"}]`,
			`[{"type":"inside","minSpan":5},{"type":"slider","show":false,"orient":"vertical"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, kind := range []string{models.KindXY, models.KindHeatmap} {
				raw := `{"type":"` + kind + `","id":"z","title":"Z","zoom":` + tt.zoom + `,"series":[]}`
				c, err := models.DecodeChart(json.RawMessage(raw))
				if err != nil {
					t.Fatalf("DecodeChart failed: %v", err)
				}
				data, err := json.Marshal(BuildOption(c))
				if err != nil {
					t.Fatalf("Marshal failed: %v", err)
				}
				var got struct {
					DataZoom json.RawMessage `json:"dataZoom"`
				}
				if err := json.Unmarshal(data, &got); err != nil {
					t.Fatalf("Unmarshal failed: %v", err)
				}
				if string(got.DataZoom) != tt.want {
					t.Errorf("%s: expected dataZoom %s, got %s", kind, tt.want, got.DataZoom)
				}
			}
		})
	}
}

func TestBuildOptionMap(t *testing.T) {
	c := &models.MapChart{ChartHeader: models.ChartHeader{ID: "m1", Title: "World"}, MapID: "world", Min: 2, Max: 8}

	opt := BuildOption(c)
	if opt.VisualMap == nil {
		t.Fatal("Expected visual map")
	}
	if opt.VisualMap.Realtime == nil || *opt.VisualMap.Realtime {
		t.Error("Expected realtime disabled")
	}
	if opt.Legend != nil || opt.XAxis != nil {
		t.Error("Expected no legend or axes on a map chart")
	}
}

func TestBuildOptionDataset(t *testing.T) {
	if opt := BuildOption(&models.Dataset{}); opt != nil {
		t.Errorf("Expected nil option for dataset, got %+v", opt)
	}
}

func TestOptionJSON(t *testing.T) {
	c := &models.XYChart{
		ChartHeader: models.ChartHeader{ID: "x1", Title: "T", Series: json.RawMessage(`[{"type":"bar","data":[3]}]`)},
		XType:       "category",
		XAxisValues: json.RawMessage(`["a"]`),
		YType:       "value",
	}

	out, err := json.Marshal(BuildOption(c))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`"xAxis":[{"type":"category","show":true,"data":["a"]}]`,
		`"yAxis":[{"type":"value","show":true}]`,
		`"series":[{"type":"bar","data":[3]}]`,
		`"legend":{"show":false,"type":"scroll","top":"bottom"}`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "visualMap") {
		t.Errorf("Expected no visualMap key, got %s", s)
	}
}
