// Package datatable binds datasets to DataTables grids and emits the script
// that initializes or refreshes them in the browser.
package datatable

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"dashgen/internal/charts"
	"dashgen/internal/models"
	"dashgen/internal/page"
)

// Table is the state of one bound grid
type Table struct {
	ID      string
	Data    json.RawMessage
	Columns []models.Column
	Options charts.GridOptions
	Binds   int
}

// Grid tracks one table per DOM node. It is not safe for concurrent use.
type Grid struct {
	tables map[*html.Node]*Table
	order  []*Table
}

// New creates an empty grid registry
func New() *Grid {
	return &Grid{tables: make(map[*html.Node]*Table)}
}

// Bind sets the rows and columns of the table at node. Binding the same node
// again replaces its data.
func (g *Grid) Bind(node *html.Node, data json.RawMessage, columns []models.Column, opts charts.GridOptions) error {
	if node == nil {
		return fmt.Errorf("grid: nil table node")
	}
	if len(data) == 0 {
		data = json.RawMessage("[]")
	}
	if !json.Valid(data) {
		return fmt.Errorf("grid %s: data is not valid JSON", page.Attr(node, "id"))
	}

	t, ok := g.tables[node]
	if !ok {
		t = &Table{ID: page.Attr(node, "id")}
		g.tables[node] = t
		g.order = append(g.order, t)
	}
	t.Data = data
	t.Columns = columns
	t.Options = opts
	t.Binds++
	return nil
}

// Lookup returns the table bound to node
func (g *Grid) Lookup(node *html.Node) (*Table, bool) {
	t, ok := g.tables[node]
	return t, ok
}

// Len returns the number of bound tables
func (g *Grid) Len() int { return len(g.order) }

type initOptions struct {
	charts.GridOptions
	Data    json.RawMessage `json:"data"`
	Columns []models.Column `json:"columns"`
}

// Script returns JavaScript that refreshes every bound table whose grid
// already exists, and initializes the rest.
func (g *Grid) Script() (string, error) {
	var b strings.Builder
	for _, t := range g.order {
		columns := t.Columns
		if columns == nil {
			columns = []models.Column{}
		}
		cfg, err := json.Marshal(initOptions{GridOptions: t.Options, Data: t.Data, Columns: columns})
		if err != nil {
			return "", fmt.Errorf("grid %s: failed to encode options: %w", t.ID, err)
		}
		idJSON, _ := json.Marshal(t.ID)
		fmt.Fprintf(&b, "(function(){var el=document.getElementById(%s);if(!el)return;var cfg=%s;if($.fn.dataTable.isDataTable(el)){var t=$(el).DataTable();t.clear();t.rows.add(cfg.data);t.draw();}else{$(el).DataTable(cfg);}})();\n", idJSON, cfg)
	}
	return b.String(), nil
}
