package render

import (
	"fmt"

	"financeflip-backend/internal/genui"
	"financeflip-backend/internal/models"
)

// fullWidthTypes render spanning the whole grid; everything else sits in a
// responsive grid cell.
var fullWidthTypes = map[string]bool{
	"executive-summary":  true,
	"line-chart":         true,
	"candlestick-chart":  true,
	"event-timeline":     true,
	"correlation-matrix": true,
}

// Cell is one entry in a render plan. Exactly one of Content or Errors is
// set: Content holds the typed props from the block's renderer, Errors holds
// the fallback listing for a block that could not be rendered.
type Cell struct {
	Type      string   `json:"type"`
	FullWidth bool     `json:"fullWidth"`
	Content   any      `json:"content,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ContainerStyle is the cosmetic transform applied once at the dashboard
// container level. It never affects validation or data.
type ContainerStyle struct {
	Rotation   float64 `json:"rotation"`
	FontFamily string  `json:"fontFamily"`
	Animation  string  `json:"animation,omitempty"`
	Theme      string  `json:"theme"`
}

// Plan is the ordered output of rendering one dashboard spec.
type Plan struct {
	Cells []Cell         `json:"cells"`
	Style ContainerStyle `json:"style"`
}

// Render produces a plan for spec under the session's chaos state. Blocks
// are processed in order; a block that fails validation or rendering becomes
// a full-width error cell and never aborts its siblings.
func Render(reg *Registry, spec models.DashboardSpec, chaos models.ChaosState) Plan {
	plan := Plan{
		Cells: make([]Cell, 0, len(spec.Blocks)),
		Style: styleFromChaos(chaos),
	}

	for i, block := range spec.Blocks {
		plan.Cells = append(plan.Cells, renderBlock(reg, block, i))
	}
	return plan
}

func renderBlock(reg *Registry, block models.Block, index int) Cell {
	envelope := map[string]any{"type": block.Type}
	if block.Props != nil {
		envelope["props"] = block.Props
	}
	if errs := genui.ValidateBlock(envelope, index); len(errs) > 0 {
		return errorCell(block.Type, errs)
	}

	renderer, ok := reg.Lookup(block.Type)
	if !ok {
		return errorCell(block.Type, []string{fmt.Sprintf("Block %d: no renderer registered for type %q.", index, block.Type)})
	}

	content, err := renderer(block.Props)
	if err != nil {
		return errorCell(block.Type, []string{fmt.Sprintf("Block %d: %v.", index, err)})
	}

	return Cell{
		Type:      block.Type,
		FullWidth: fullWidthTypes[block.Type],
		Content:   content,
	}
}

// errorCell is the uniform fallback; fallbacks always span the full grid so
// the listing stays readable.
func errorCell(blockType string, errs []string) Cell {
	return Cell{Type: blockType, FullWidth: true, Errors: errs}
}

func styleFromChaos(chaos models.ChaosState) ContainerStyle {
	style := ContainerStyle{
		Rotation:   chaos.Rotation,
		FontFamily: chaos.FontFamily,
		Theme:      chaos.Theme,
	}
	if chaos.Animation != nil {
		style.Animation = *chaos.Animation
	}
	return style
}
