package genui

import "financeflip-backend/internal/models"

// MergeChaos shallow-merges an incoming chaos object into the current state.
// Only keys present in incoming overwrite; absent keys are preserved. Pure
// function; callers own when (and whether) to apply the result.
func MergeChaos(current models.ChaosState, incoming map[string]any) models.ChaosState {
	merged := current

	if v, ok := incoming["rotation"]; ok {
		if n, ok := v.(float64); ok {
			merged.Rotation = n
		}
	}
	if v, ok := incoming["fontFamily"]; ok {
		if s, ok := v.(string); ok {
			merged.FontFamily = s
		}
	}
	if v, ok := incoming["animation"]; ok {
		switch a := v.(type) {
		case string:
			merged.Animation = &a
		case nil:
			merged.Animation = nil
		}
	}
	if v, ok := incoming["theme"]; ok {
		if s, ok := v.(string); ok {
			merged.Theme = s
		}
	}

	return merged
}

// ChaosToMap renders a chaos state as the wire object carried in a
// dashboard spec.
func ChaosToMap(c models.ChaosState) map[string]any {
	out := map[string]any{
		"rotation":   c.Rotation,
		"fontFamily": c.FontFamily,
		"theme":      c.Theme,
	}
	if c.Animation != nil {
		out["animation"] = *c.Animation
	} else {
		out["animation"] = nil
	}
	return out
}
