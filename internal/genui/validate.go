package genui

import (
	"encoding/json"
	"fmt"
	"strings"

	"financeflip-backend/internal/models"
)

// KnownBlockTypes is the closed set of block types the frontend can render.
var KnownBlockTypes = map[string]bool{
	"executive-summary":  true,
	"kpi-card":           true,
	"line-chart":         true,
	"candlestick-chart":  true,
	"event-timeline":     true,
	"correlation-matrix": true,
}

// ValidationResult reports whether a dashboard spec is renderable and why not.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// isObject reports whether v decoded from JSON is a non-array object.
func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// ValidateBlock checks a single block has { type: string, props: object }.
// All violations are collected; an empty slice means the block is valid.
func ValidateBlock(block any, index int) []string {
	var errs []string
	obj, ok := block.(map[string]any)
	if block == nil || !ok {
		return []string{fmt.Sprintf("Block %d: not an object.", index)}
	}

	typ, isStr := obj["type"].(string)
	if !isStr || strings.TrimSpace(typ) == "" {
		errs = append(errs, fmt.Sprintf("Block %d: missing or invalid \"type\" (must be a non-empty string).", index))
	} else if !KnownBlockTypes[typ] {
		errs = append(errs, fmt.Sprintf("Block %d: unknown type %q.", index, typ))
	}

	if props, present := obj["props"]; !present || props == nil || !isObject(props) {
		errs = append(errs, fmt.Sprintf("Block %d: missing or invalid \"props\" (must be an object).", index))
	}
	return errs
}

// ValidateDashboardSpec checks the full spec shape. A spec whose blocks field
// is not an array fails with a single top-level error and no per-block checks.
func ValidateDashboardSpec(spec any) ValidationResult {
	obj, ok := spec.(map[string]any)
	if spec == nil || !ok {
		return ValidationResult{Valid: false, Errors: []string{"dashboardSpec is not an object."}}
	}

	blocks, ok := obj["blocks"].([]any)
	if !ok {
		return ValidationResult{Valid: false, Errors: []string{"dashboardSpec.blocks is not an array."}}
	}

	var errs []string
	for i, block := range blocks {
		errs = append(errs, ValidateBlock(block, i)...)
	}

	if chaos, present := obj["chaos"]; present && chaos != nil && !isObject(chaos) {
		errs = append(errs, "dashboardSpec.chaos must be an object if present.")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateAPIResponse checks an untrusted response body end to end. Acceptance
// is all-or-nothing: any accumulated error anywhere yields a nil response, so
// callers show one combined failure instead of a partially broken dashboard.
func ValidateAPIResponse(data any) (*models.APIResponse, []string) {
	obj, ok := data.(map[string]any)
	if data == nil || !ok {
		return nil, []string{"API returned a non-object response."}
	}

	var errs []string
	if _, ok := obj["assistantMessage"].(string); !ok {
		errs = append(errs, "Missing assistantMessage in API response.")
	}

	// An explicit null dashboardSpec is present and invalid; only a missing
	// key means a text-only response.
	if spec, present := obj["dashboardSpec"]; present {
		result := ValidateDashboardSpec(spec)
		errs = append(errs, result.Errors...)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	// The shape is verified, so this round trip cannot fail structurally.
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, []string{fmt.Sprintf("API response could not be re-encoded: %v", err)}
	}
	var resp models.APIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, []string{fmt.Sprintf("API response could not be decoded: %v", err)}
	}
	return &resp, nil
}
