// Package render turns a validated dashboard spec into an ordered render
// plan: typed, presentation-ready cells plus a container style derived from
// the session's chaos state. Chart drawing itself is left to the consumer.
package render

import (
	"encoding/json"
	"fmt"
)

// BlockRenderer converts a block's raw props into a typed, presentation-ready
// payload. Returning an error turns the block into an error fallback cell
// instead of aborting the dashboard.
type BlockRenderer func(props map[string]any) (any, error)

// Registry maps block type strings to their renderers.
type Registry struct {
	renderers map[string]BlockRenderer
}

func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]BlockRenderer)}
}

// DefaultRegistry wires the six built-in block types to their typed
// renderers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("executive-summary", renderExecutiveSummary)
	r.Register("kpi-card", renderKPICard)
	r.Register("line-chart", renderLineChart)
	r.Register("candlestick-chart", renderCandlestickChart)
	r.Register("event-timeline", renderEventTimeline)
	r.Register("correlation-matrix", renderCorrelationMatrix)
	return r
}

func (r *Registry) Register(blockType string, fn BlockRenderer) {
	r.renderers[blockType] = fn
}

func (r *Registry) Lookup(blockType string) (BlockRenderer, bool) {
	fn, ok := r.renderers[blockType]
	return fn, ok
}

// decodeProps round-trips the raw props through JSON into a typed struct.
func decodeProps(props map[string]any, target any) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("props not encodable: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("props have the wrong shape: %v", err)
	}
	return nil
}
