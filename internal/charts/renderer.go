package charts

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"dashgen/internal/logger"
	"dashgen/internal/models"
	"dashgen/internal/page"
)

var (
	// ErrMountNotFound is returned when the container selector matches nothing
	ErrMountNotFound = errors.New("mount point not found")
	// ErrShellMissing is returned when a chart is rendered before its dashboard shell
	ErrShellMissing = errors.New("dashboard shell not created")
	// ErrEmptyID is returned for a dashboard or chart without a usable id
	ErrEmptyID = errors.New("empty id")
	// ErrReservedID is returned for a chart whose element id is taken by its
	// dashboard's charts region
	ErrReservedID = errors.New("reserved id")
)

const regionSuffix = "_charts"

// DashboardRenderer mounts dashboards into a document and keeps their
// charts in sync with the charting engine and grid. Containers are created
// once per id and updated in place afterwards.
type DashboardRenderer struct {
	doc      Document
	engine   Engine
	grid     Grid
	gridOpts GridOptions
	markdown func(string) (string, error)
	log      *logger.Logger

	nodes   map[string]*html.Node
	regions map[string]*html.Node
}

// RendererOption customizes a DashboardRenderer
type RendererOption func(*DashboardRenderer)

// WithGridOptions sets the options passed to every grid binding
func WithGridOptions(o GridOptions) RendererOption {
	return func(r *DashboardRenderer) { r.gridOpts = o }
}

// WithLogger sets the renderer logger
func WithLogger(l *logger.Logger) RendererOption {
	return func(r *DashboardRenderer) { r.log = l }
}

// WithMarkdown sets the converter used for dashboard descriptions
func WithMarkdown(fn func(string) (string, error)) RendererOption {
	return func(r *DashboardRenderer) { r.markdown = fn }
}

// NewDashboardRenderer creates a renderer bound to one document, engine and grid
func NewDashboardRenderer(doc Document, engine Engine, grid Grid, options ...RendererOption) *DashboardRenderer {
	r := &DashboardRenderer{
		doc:      doc,
		engine:   engine,
		grid:     grid,
		gridOpts: DefaultGridOptions(),
		markdown: page.Markdown,
		log:      logger.Component("renderer"),
		nodes:    make(map[string]*html.Node),
		regions:  make(map[string]*html.Node),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render ensures the dashboard shell exists under selector, then renders
// every chart in order.
func (r *DashboardRenderer) Render(d *models.Dashboard, selector string) error {
	if err := r.EnsureDashboardShell(d.Title, d.ID, selector, d.Description); err != nil {
		return err
	}
	for _, c := range d.Charts {
		if err := r.RenderChart(d.ID, c); err != nil {
			return err
		}
	}
	r.log.Debug("dashboard rendered", logger.Fields{"dashboard": d.ID, "charts": len(d.Charts)})
	return nil
}

// EnsureDashboardShell creates the dashboard wrapper, title, optional
// markdown description and charts region under selector unless they already
// exist.
func (r *DashboardRenderer) EnsureDashboardShell(title, dashboardID, selector, description string) error {
	if dashboardID == "" {
		return fmt.Errorf("%w: dashboard %q", ErrEmptyID, title)
	}
	if _, ok := r.nodes[dashboardID]; ok {
		return nil
	}

	mount := r.doc.Query(selector)
	if mount == nil {
		return fmt.Errorf("%w: %s", ErrMountNotFound, selector)
	}

	descHTML := ""
	if description != "" {
		converted, err := r.markdown(description)
		if err != nil {
			return fmt.Errorf("dashboard %s description: %w", dashboardID, err)
		}
		descHTML = `<div class="description">` + converted + `</div>`
	}

	id := html.EscapeString(dashboardID)
	markup := `<div id="` + id + `" class="dashboard">` +
		`<div class="title"><h2>` + html.EscapeString(title) + `</h2></div>` +
		descHTML +
		`<div id="` + id + regionSuffix + `" class="charts"></div>` +
		`</div>`

	nodes, err := r.doc.AppendHTML(mount, markup)
	if err != nil {
		return fmt.Errorf("dashboard %s shell: %w", dashboardID, err)
	}
	wrapper := findIn(nodes, dashboardID)
	region := findIn(nodes, dashboardID+regionSuffix)
	if wrapper == nil || region == nil {
		return fmt.Errorf("dashboard %s shell: markup did not produce expected nodes", dashboardID)
	}
	r.nodes[dashboardID] = wrapper
	r.regions[dashboardID+regionSuffix] = region

	r.log.Debug("dashboard shell created", logger.Fields{"dashboard": dashboardID, "selector": selector})
	return nil
}

// RenderChart creates the chart container on first sight and applies the
// chart's configuration to the engine, or binds it to the grid for datasets.
func (r *DashboardRenderer) RenderChart(dashboardID string, c models.Chart) error {
	if c.Header().ID == "" {
		return fmt.Errorf("%w: chart %q of dashboard %s", ErrEmptyID, c.Header().Title, dashboardID)
	}
	chartID := dashboardID + "_" + c.Header().ID
	if _, taken := r.regions[chartID]; taken {
		err := fmt.Errorf("%w: chart %q of dashboard %s", ErrReservedID, c.Header().ID, dashboardID)
		r.log.Error("chart id collides with charts region", err, logger.Fields{"dashboard": dashboardID, "chart": c.Header().ID})
		return err
	}

	node, ok := r.nodes[chartID]
	if !ok {
		var err error
		if node, err = r.createChartNode(dashboardID, chartID, c); err != nil {
			return err
		}
	}

	switch v := c.(type) {
	case *models.Dataset:
		if err := r.grid.Bind(node, v.Data, v.Columns, r.gridOpts); err != nil {
			return fmt.Errorf("chart %s: %w", chartID, err)
		}
		return nil
	case *models.BaseChart:
		if v.Kind != "" {
			r.log.Warn("unknown chart type rendered with base options", logger.Fields{"chart": chartID, "type": v.Kind})
		}
	}

	if err := r.engine.Instance(node).SetOption(BuildOption(c)); err != nil {
		return fmt.Errorf("chart %s: %w", chartID, err)
	}
	return nil
}

// Node returns the element created for id, which is a dashboard id, its
// "<id>_charts" region or a "<dashboard>_<chart>" container.
func (r *DashboardRenderer) Node(id string) (*html.Node, bool) {
	if n, ok := r.nodes[id]; ok {
		return n, true
	}
	n, ok := r.regions[id]
	return n, ok
}

func (r *DashboardRenderer) createChartNode(dashboardID, chartID string, c models.Chart) (*html.Node, error) {
	region, ok := r.regions[dashboardID+regionSuffix]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShellMissing, dashboardID)
	}

	id := html.EscapeString(chartID)
	var markup string
	if _, isDataset := c.(*models.Dataset); isDataset {
		markup = `<div class="chart_area"><div class="table_container chart_panel">` +
			`<table id="` + id + `" class="display dataset" style="width:100%"></table>` +
			`</div></div>`
	} else {
		markup = `<div class="chart_area"><div class="chart_container chart_panel">` +
			`<div id="` + id + `" class="chart_data"></div>` +
			`</div></div>`
	}

	nodes, err := r.doc.AppendHTML(region, markup)
	if err != nil {
		return nil, fmt.Errorf("chart %s container: %w", chartID, err)
	}
	node := findIn(nodes, chartID)
	if node == nil {
		return nil, fmt.Errorf("chart %s container: markup did not produce expected node", chartID)
	}
	r.nodes[chartID] = node

	if mc, ok := c.(*models.MapChart); ok {
		if !r.engine.RegisterMap(mc.MapID, mc.GeoJSON) {
			r.log.Debug("geo shape already registered", logger.Fields{"map": mc.MapID, "chart": chartID})
		}
	}

	r.log.Debug("chart container created", logger.Fields{"chart": chartID, "type": models.KindOf(c)})
	return node, nil
}

func findIn(nodes []*html.Node, id string) *html.Node {
	for _, n := range nodes {
		if found := page.FindByID(n, id); found != nil {
			return found
		}
	}
	return nil
}
