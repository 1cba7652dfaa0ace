package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dashgen/internal/config"
)

const boardJSON = `{"id":"d1","title":"Sales","charts":[{"type":"XYChart","id":"x1","title":"Trend","x_type":"category","x_axis_values":["a","b"],"y_type":"value","series":[{"type":"bar","data":[1,2]}]}]}`

const rowsYAML = `id: d2
title: Rows
charts:
  - type: Dataset
    id: t1
    data: [[a, 1]]
    columns:
      - title: Name
      - title: Count
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	board := writeFile(t, dir, "board.json", boardJSON)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)
	outPath := filepath.Join(dir, "out", "page.html")

	if _, err := execute(t, "render", board, rows, "-o", outPath, "--title", "Weekly"); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	page := string(data)
	for _, want := range []string{`id="d1_x1"`, `id="d2_t1"`, "<title>Weekly</title>", "DataTable(cfg)", "echarts.init"} {
		if !strings.Contains(page, want) {
			t.Errorf("Expected %s in rendered page", want)
		}
	}
	if strings.Index(page, `id="d1"`) > strings.Index(page, `id="d2"`) {
		t.Error("Expected dashboards in argument order")
	}
}

func TestRenderCommandStdoutAndHost(t *testing.T) {
	dir := t.TempDir()
	board := writeFile(t, dir, "board.json", boardJSON)
	host := writeFile(t, dir, "host.html", `<html><head></head><body><section class="boards"></section></body></html>`)

	out, err := execute(t, "render", board, "--host", host, "--mount", ".boards")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, `<section class="boards"><div id="d1" class="dashboard">`) {
		t.Errorf("Expected dashboard inside host section, got %s", out)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	board := writeFile(t, dir, "board.json", boardJSON)
	broken := writeFile(t, dir, "broken.json", `{"id":`)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"render"}},
		{"missing file", []string{"render", filepath.Join(dir, "none.json")}},
		{"broken descriptor", []string{"render", broken}},
		{"missing mount", []string{"render", board, "--mount", "#nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestExpandDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", rowsYAML)
	writeFile(t, dir, "a.json", boardJSON)
	writeFile(t, dir, "readme.md", "# notes")

	files, err := expandDescriptors([]string{dir})
	if err != nil {
		t.Fatalf("expandDescriptors failed: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.json" || filepath.Base(files[1]) != "b.yaml" {
		t.Errorf("Expected [a.json b.yaml], got %v", files)
	}

	if _, err := expandDescriptors([]string{t.TempDir()}); err == nil {
		t.Error("Expected error for directory without descriptors")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) != config.GetVersion() {
		t.Errorf("Expected %s, got %q", config.GetVersion(), out)
	}
}
