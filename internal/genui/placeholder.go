package genui

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderRe = regexp.MustCompile(`^QUERY_RESULT_(\d+)$`)

// ReplacePlaceholders walks a decoded spec and swaps every string value that
// is an exact QUERY_RESULT_<i> token for the i-th query result. Substitution
// is structural, never textual, so data containing placeholder-like text and
// multi-digit indices are safe. An index with no corresponding result becomes
// an empty array, so one failed or missing query degrades one block, not the
// whole dashboard.
func ReplacePlaceholders(value any, results []any) any {
	switch v := value.(type) {
	case string:
		m := placeholderRe.FindStringSubmatch(v)
		if m == nil {
			return v
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx >= len(results) {
			return []any{}
		}
		return results[idx]
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = ReplacePlaceholders(item, results)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = ReplacePlaceholders(item, results)
		}
		return out
	default:
		return value
	}
}

// NormalizeDashboardSpec coerces an LLM-produced spec into the canonical
// {blocks, chaos} shape. Blocks that are not objects or lack a type are
// dropped; blocks whose props were inlined at the top level are re-wrapped.
func NormalizeDashboardSpec(spec any) map[string]any {
	obj, ok := spec.(map[string]any)
	if !ok {
		return map[string]any{"blocks": []any{}}
	}

	rawBlocks, _ := obj["blocks"].([]any)
	blocks := make([]any, 0, len(rawBlocks))
	for _, raw := range rawBlocks {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		typ, ok := block["type"].(string)
		if !ok || typ == "" {
			continue
		}
		if props, ok := block["props"].(map[string]any); ok {
			blocks = append(blocks, map[string]any{"type": typ, "props": props})
			continue
		}
		props := make(map[string]any, len(block))
		for k, v := range block {
			if k != "type" {
				props[k] = v
			}
		}
		blocks = append(blocks, map[string]any{"type": typ, "props": props})
	}

	normalized := map[string]any{"blocks": blocks}
	if chaos, ok := obj["chaos"].(map[string]any); ok {
		normalized["chaos"] = chaos
	}
	return normalized
}

// ParseJSONFromText decodes an LLM reply that should be a JSON object but may
// be wrapped in prose or a markdown fence. Falls back to the outermost
// {...} span before giving up.
func ParseJSONFromText(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty LLM response")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in LLM response")
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}
	return out, nil
}
