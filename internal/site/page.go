// Package site serves one HTML page that dashboards are applied to
// repeatedly, keeping the page, the chart engine and the grids in step.
package site

import (
	"fmt"
	"sync"

	"dashgen/internal/charts"
	"dashgen/internal/config"
	"dashgen/internal/datatable"
	"dashgen/internal/echarts"
	"dashgen/internal/logger"
	"dashgen/internal/models"
	"dashgen/internal/page"
)

// Inline script element ids
const (
	ChartsScriptID = "dashgen-charts"
	GridsScriptID  = "dashgen-grids"
	ExtraScriptID  = "dashgen-extra"
)

// Options configures a Page
type Options struct {
	Title         string
	HostTemplate  string // path to a host HTML page; empty uses the built-in skeleton
	MountSelector string

	EChartsURL       string
	JQueryURL        string
	DataTablesJSURL  string
	DataTablesCSSURL string

	GridScrollHeight string

	// ExtraScript is appended after the chart and grid scripts
	ExtraScript string

	Logger *logger.Logger
}

// OptionsFromConfig maps service configuration to page options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Title:            cfg.PageTitle,
		HostTemplate:     cfg.HostTemplate,
		MountSelector:    cfg.MountSelector,
		EChartsURL:       cfg.EChartsURL,
		JQueryURL:        cfg.JQueryURL,
		DataTablesJSURL:  cfg.DataTablesJSURL,
		DataTablesCSSURL: cfg.DataTablesCSSURL,
		GridScrollHeight: cfg.GridScrollHeight,
	}
}

// Page is a document with its renderer, engine and grid. All methods are
// safe for concurrent use.
type Page struct {
	mu       sync.Mutex
	opts     Options
	doc      *page.Document
	engine   *echarts.Engine
	grid     *datatable.Grid
	renderer *charts.DashboardRenderer
	log      *logger.Logger

	dashboards []string
	seen       map[string]bool
}

// NewPage builds the page document and wires a renderer to it
func NewPage(opts Options) (*Page, error) {
	if opts.MountSelector == "" {
		opts.MountSelector = "#" + page.DefaultMountID
	}
	if opts.Logger == nil {
		opts.Logger = logger.Component("site")
	}

	var doc *page.Document
	if opts.HostTemplate != "" {
		var err error
		if doc, err = page.ParseFile(opts.HostTemplate); err != nil {
			return nil, fmt.Errorf("failed to load host template: %w", err)
		}
		if opts.Title != "" {
			doc.SetTitle(opts.Title)
		}
	} else {
		doc = page.New(opts.Title)
	}

	if doc.Query(opts.MountSelector) == nil {
		return nil, fmt.Errorf("%w: %s", charts.ErrMountNotFound, opts.MountSelector)
	}

	gridOpts := charts.DefaultGridOptions()
	if opts.GridScrollHeight != "" {
		gridOpts.ScrollY = opts.GridScrollHeight
	}

	engine := echarts.New()
	grid := datatable.New()
	p := &Page{
		opts:   opts,
		doc:    doc,
		engine: engine,
		grid:   grid,
		renderer: charts.NewDashboardRenderer(doc, engine, grid,
			charts.WithGridOptions(gridOpts),
			charts.WithLogger(opts.Logger.WithComponent("renderer")),
		),
		log:  opts.Logger,
		seen: make(map[string]bool),
	}
	if err := p.refreshScripts(); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply renders d into the page and refreshes the page scripts. Applying a
// dashboard again updates its charts in place.
func (p *Page) Apply(d *models.Dashboard) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	renderErr := p.renderer.Render(d, p.opts.MountSelector)
	if _, ok := p.renderer.Node(d.ID); ok && !p.seen[d.ID] {
		p.seen[d.ID] = true
		p.dashboards = append(p.dashboards, d.ID)
	}
	if err := p.refreshScripts(); err != nil {
		return err
	}
	if renderErr != nil {
		return fmt.Errorf("failed to render dashboard %s: %w", d.ID, renderErr)
	}

	p.log.Info("dashboard applied", logger.Fields{"dashboard": d.ID, "charts": len(d.Charts)})
	return nil
}

func (p *Page) refreshScripts() error {
	if p.engine.Len() > 0 {
		p.doc.AddHeadScript(p.opts.EChartsURL)
	}
	if p.grid.Len() > 0 {
		p.doc.AddStylesheet(p.opts.DataTablesCSSURL)
		p.doc.AddHeadScript(p.opts.JQueryURL)
		p.doc.AddHeadScript(p.opts.DataTablesJSURL)
	}

	chartsJS, err := p.engine.Script()
	if err != nil {
		return fmt.Errorf("failed to build chart script: %w", err)
	}
	gridsJS, err := p.grid.Script()
	if err != nil {
		return fmt.Errorf("failed to build grid script: %w", err)
	}
	p.doc.SetInlineScript(ChartsScriptID, chartsJS)
	p.doc.SetInlineScript(GridsScriptID, gridsJS)
	if p.opts.ExtraScript != "" {
		p.doc.SetInlineScript(ExtraScriptID, p.opts.ExtraScript)
	}
	return nil
}

// HTML returns the rendered page
func (p *Page) HTML() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.HTML()
}

// Dashboards returns the ids of applied dashboards in first-render order
func (p *Page) Dashboards() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.dashboards))
	copy(out, p.dashboards)
	return out
}
