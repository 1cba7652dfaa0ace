package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dashgen/internal/config"
)

const salesJSON = `{"id":"d1","title":"Sales","charts":[{"type":"BaseChart","id":"c1","title":"Share","series":[{"type":"pie","data":[{"name":"a","value":1}]}]}]}`

const trendYAML = `id: d2
title: Trend
charts:
  - type: XYChart
    id: x1
    title: Weekly
    x_type: category
    x_axis_values: [mon, tue]
    y_type: value
    series:
      - type: line
        data: [1, 2]
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "0",
		DashboardsDir:    t.TempDir(),
		MountSelector:    "#dashboards",
		PageTitle:        "Test",
		EChartsURL:       "https://cdn.test/echarts.js",
		JQueryURL:        "https://cdn.test/jquery.js",
		DataTablesJSURL:  "https://cdn.test/dt.js",
		DataTablesCSSURL: "https://cdn.test/dt.css",
		GridScrollHeight: "300px",
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(testConfig(t))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func post(t *testing.T, h http.Handler, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/dashboards", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	h := s.SetupRoutes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
	if v, _ := body["version"].(string); v == "" {
		t.Error("Expected version in health response")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestSubmitDashboard(t *testing.T) {
	s := newTestServer(t)
	h := s.SetupRoutes()

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantID      string
	}{
		{"json", "application/json", salesJSON, http.StatusOK, "d1"},
		{"yaml", "application/x-yaml", trendYAML, http.StatusOK, "d2"},
		{"malformed json", "application/json", `{"id":`, http.StatusBadRequest, ""},
		{"malformed yaml", "text/yaml", "id: [", http.StatusBadRequest, ""},
		{"empty id", "application/json", `{"title":"!!!"}`, http.StatusUnprocessableEntity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.contentType, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if tt.wantID != "" && body["id"] != tt.wantID {
				t.Errorf("Expected id %s, got %v", tt.wantID, body["id"])
			}
			if tt.wantID == "" && body["error"] == nil {
				t.Errorf("Expected error field, got %v", body)
			}
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboards", nil))
	var list struct {
		Dashboards []string `json:"dashboards"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list.Dashboards) != 2 || list.Dashboards[0] != "d1" || list.Dashboards[1] != "d2" {
		t.Errorf("Expected [d1 d2], got %v", list.Dashboards)
	}
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(t)
	h := s.SetupRoutes()
	if rec := post(t, h, "application/json", salesJSON); rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected html content type, got %s", ct)
	}
	page := rec.Body.String()
	for _, want := range []string{`id="d1_c1"`, "<title>Test</title>", "echarts.js", "/ws"} {
		if !strings.Contains(page, want) {
			t.Errorf("Expected %s in page", want)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestLoadDir(t *testing.T) {
	s := newTestServer(t)
	dir := s.Config.DashboardsDir

	files := map[string]string{
		"a.json":      salesJSON,
		"b.yaml":      trendYAML,
		"broken.json": `{"id":`,
		"notes.txt":   "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.LoadDir(context.Background()); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	got := s.Page.Dashboards()
	if len(got) != 2 || got[0] != "d1" || got[1] != "d2" {
		t.Errorf("Expected [d1 d2], got %v", got)
	}

	s.Config.DashboardsDir = filepath.Join(dir, "missing")
	if err := s.LoadDir(context.Background()); err != nil {
		t.Errorf("Expected missing directory to be tolerated, got %v", err)
	}
}

func TestReloadSkipsRemovedFiles(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(s.Config.DashboardsDir, "a.json")
	if err := os.WriteFile(path, []byte(salesJSON), 0644); err != nil {
		t.Fatal(err)
	}

	s.Reload([]string{filepath.Join(s.Config.DashboardsDir, "gone.json"), path})
	if got := s.Page.Dashboards(); len(got) != 1 || got[0] != "d1" {
		t.Errorf("Expected [d1], got %v", got)
	}
}

func TestWebSocketReload(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.SetupRoutes())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	var ack map[string]interface{}
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if ack["type"] != "ACK" {
		t.Fatalf("Expected ACK, got %v", ack)
	}
	if s.Hub.Count() != 1 {
		t.Errorf("Expected 1 client, got %d", s.Hub.Count())
	}

	resp, err := http.Post(ts.URL+"/dashboards", "application/json", strings.NewReader(salesJSON))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()

	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if msg["type"] != "RELOAD" || msg["dashboard"] != "d1" {
		t.Errorf("Expected RELOAD for d1, got %v", msg)
	}
}
