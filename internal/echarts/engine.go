// Package echarts keeps the server-side state of ECharts instances and
// emits the browser script that replays it.
package echarts

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"dashgen/internal/charts"
	"dashgen/internal/page"
)

// Engine memoizes one Instance per DOM node and holds the geo shape registry.
// It is not safe for concurrent use.
type Engine struct {
	instances map[*html.Node]*Instance
	order     []*Instance
	maps      map[string]json.RawMessage
	mapOrder  []string
}

// New creates an empty engine
func New() *Engine {
	return &Engine{
		instances: make(map[*html.Node]*Instance),
		maps:      make(map[string]json.RawMessage),
	}
}

// Instance returns the instance bound to node, creating it on first use
func (e *Engine) Instance(node *html.Node) charts.Instance {
	return e.instance(node)
}

func (e *Engine) instance(node *html.Node) *Instance {
	if inst, ok := e.instances[node]; ok {
		return inst
	}
	inst := &Instance{id: page.Attr(node, "id")}
	e.instances[node] = inst
	e.order = append(e.order, inst)
	return inst
}

// Lookup returns the instance bound to node without creating one
func (e *Engine) Lookup(node *html.Node) (*Instance, bool) {
	inst, ok := e.instances[node]
	return inst, ok
}

// Len returns the number of instances
func (e *Engine) Len() int { return len(e.order) }

// RegisterMap registers geoJSON under mapID. Only the first registration of
// an id is kept; later calls return false.
func (e *Engine) RegisterMap(mapID string, geoJSON json.RawMessage) bool {
	if _, ok := e.maps[mapID]; ok {
		return false
	}
	e.maps[mapID] = geoJSON
	e.mapOrder = append(e.mapOrder, mapID)
	return true
}

// Map returns the geo shape registered under mapID
func (e *Engine) Map(mapID string) (json.RawMessage, bool) {
	geo, ok := e.maps[mapID]
	return geo, ok
}

// Script returns JavaScript that registers every geo shape and then applies
// each instance's current option to its element, in creation order.
// Instances that never received an option are skipped.
func (e *Engine) Script() (string, error) {
	var b strings.Builder
	for _, id := range e.mapOrder {
		idJSON, _ := json.Marshal(id)
		geo := e.maps[id]
		if len(geo) == 0 {
			geo = json.RawMessage("{}")
		}
		geoJSON, err := json.Marshal(geo)
		if err != nil {
			return "", fmt.Errorf("geo shape %s: %w", id, err)
		}
		fmt.Fprintf(&b, "echarts.registerMap(%s,{geoJson:%s});\n", idJSON, geoJSON)
	}
	for _, inst := range e.order {
		if inst.option == nil {
			continue
		}
		idJSON, _ := json.Marshal(inst.id)
		fmt.Fprintf(&b, "(function(){var el=document.getElementById(%s);if(!el)return;var c=echarts.getInstanceByDom(el)||echarts.init(el);var option=%s;c.setOption(option,true);window.addEventListener('resize',function(){c.resize();});})();\n", idJSON, inst.option)
	}
	return b.String(), nil
}

// Instance is one chart bound to a DOM element
type Instance struct {
	id      string
	option  []byte
	updates int
}

// ID returns the id of the bound element
func (i *Instance) ID() string { return i.id }

// SetOption replaces the instance configuration. The option is encoded
// immediately so malformed series data fails here rather than in the browser.
func (i *Instance) SetOption(option *charts.Option) error {
	if option == nil {
		return fmt.Errorf("instance %s: nil option", i.id)
	}
	data, err := json.Marshal(option)
	if err != nil {
		return fmt.Errorf("instance %s: failed to encode option: %w", i.id, err)
	}
	i.option = data
	i.updates++
	return nil
}

// Option returns the encoded current option, or nil
func (i *Instance) Option() json.RawMessage { return i.option }

// Updates returns how many times SetOption succeeded
func (i *Instance) Updates() int { return i.updates }
