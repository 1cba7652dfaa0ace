package charts

import (
	"encoding/json"

	"golang.org/x/net/html"

	"dashgen/internal/models"
)

// Document is the DOM capability the renderer mounts into
type Document interface {
	Query(selector string) *html.Node
	AppendHTML(parent *html.Node, markup string) ([]*html.Node, error)
}

// Engine is the charting engine: one instance per DOM node plus a registry
// of named geo shapes.
type Engine interface {
	// Instance returns the instance bound to node, creating it on first use
	Instance(node *html.Node) Instance
	// RegisterMap registers geoJSON under mapID; the first registration wins
	RegisterMap(mapID string, geoJSON json.RawMessage) bool
}

// Instance is a chart bound to one DOM node
type Instance interface {
	// SetOption replaces the instance configuration in full
	SetOption(option *Option) error
}

// Grid binds tabular data to a table node
type Grid interface {
	Bind(node *html.Node, data json.RawMessage, columns []models.Column, opts GridOptions) error
}

// GridOptions configures a dataset grid
type GridOptions struct {
	Paging         bool   `json:"paging"`
	ScrollY        string `json:"scrollY,omitempty"`
	ScrollCollapse bool   `json:"scrollCollapse"`
	ScrollX        bool   `json:"scrollX"`
}

// DefaultGridOptions is a non-paginated grid with a fixed-height body that
// scrolls in both directions.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Paging:         false,
		ScrollY:        "300px",
		ScrollCollapse: true,
		ScrollX:        true,
	}
}
