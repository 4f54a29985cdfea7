package genui

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}
	return v
}

func TestValidateBlock_Valid(t *testing.T) {
	block := decode(t, `{"type":"kpi-card","props":{"ticker":"AAPL"}}`)
	if errs := ValidateBlock(block, 0); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
}

func TestValidateBlock_NotAnObject(t *testing.T) {
	tests := []struct {
		name  string
		block any
	}{
		{"nil", nil},
		{"string", "kpi-card"},
		{"array", decode(t, `["kpi-card"]`)},
		{"number", 42.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateBlock(tc.block, 3)
			if len(errs) != 1 {
				t.Fatalf("Expected exactly one error, got %v", errs)
			}
			if errs[0] != "Block 3: not an object." {
				t.Errorf("Unexpected error: %q", errs[0])
			}
		})
	}
}

func TestValidateBlock_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			"missing type",
			`{"props":{}}`,
			[]string{`"type"`},
		},
		{
			"empty type",
			`{"type":"   ","props":{}}`,
			[]string{`"type"`},
		},
		{
			"missing props",
			`{"type":"kpi-card"}`,
			[]string{`"props"`},
		},
		{
			"props is array",
			`{"type":"kpi-card","props":[]}`,
			[]string{`"props"`},
		},
		{
			"missing both",
			`{}`,
			[]string{`"type"`, `"props"`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateBlock(decode(t, tc.raw), 0)
			if len(errs) != len(tc.want) {
				t.Fatalf("Expected %d errors, got %v", len(tc.want), errs)
			}
			for i, field := range tc.want {
				if !strings.Contains(errs[i], field) {
					t.Errorf("Error %d = %q, expected it to name %s", i, errs[i], field)
				}
			}
		})
	}
}

func TestValidateBlock_UnknownType(t *testing.T) {
	block := decode(t, `{"type":"pie-chart","props":{}}`)
	errs := ValidateBlock(block, 2)
	if len(errs) != 1 {
		t.Fatalf("Expected exactly one error, got %v", errs)
	}
	if !strings.Contains(errs[0], "unknown type") || !strings.Contains(errs[0], "pie-chart") {
		t.Errorf("Expected unknown-type error naming the type, got %q", errs[0])
	}
}

func TestValidateDashboardSpec_EmptyBlocksIsValid(t *testing.T) {
	result := ValidateDashboardSpec(decode(t, `{"blocks":[]}`))
	if !result.Valid || len(result.Errors) != 0 {
		t.Errorf("Empty dashboard should be valid, got %v", result.Errors)
	}
}

func TestValidateDashboardSpec_BlocksNotArray(t *testing.T) {
	result := ValidateDashboardSpec(decode(t, `{"blocks":"oops"}`))
	if result.Valid {
		t.Fatal("Expected invalid result")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "dashboardSpec.blocks is not an array." {
		t.Errorf("Expected single top-level error, got %v", result.Errors)
	}
}

func TestValidateDashboardSpec_NotAnObject(t *testing.T) {
	for _, spec := range []any{nil, "spec", 1.0, decode(t, `[]`)} {
		result := ValidateDashboardSpec(spec)
		if result.Valid || len(result.Errors) != 1 {
			t.Errorf("Spec %v: expected single error, got %v", spec, result.Errors)
		}
	}
}

func TestValidateDashboardSpec_CollectsPerBlockErrors(t *testing.T) {
	spec := decode(t, `{"blocks":[
		{"type":"kpi-card","props":{}},
		{"type":"pie-chart","props":{}},
		"nope"
	]}`)
	result := ValidateDashboardSpec(spec)
	if result.Valid {
		t.Fatal("Expected invalid result")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Block 1") {
		t.Errorf("Errors should arrive in block order, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[1], "Block 2") {
		t.Errorf("Errors should arrive in block order, got %v", result.Errors)
	}
}

func TestValidateDashboardSpec_ChaosMustBeObject(t *testing.T) {
	result := ValidateDashboardSpec(decode(t, `{"blocks":[],"chaos":[1,2]}`))
	if result.Valid || len(result.Errors) != 1 {
		t.Fatalf("Expected one chaos error, got %v", result.Errors)
	}

	// null chaos is tolerated, object chaos is fine
	for _, raw := range []string{`{"blocks":[],"chaos":null}`, `{"blocks":[],"chaos":{"theme":"matrix"}}`} {
		if r := ValidateDashboardSpec(decode(t, raw)); !r.Valid {
			t.Errorf("%s should be valid, got %v", raw, r.Errors)
		}
	}
}

func TestValidateAPIResponse_AllOrNothing(t *testing.T) {
	// Valid spec but missing assistantMessage -> nil response.
	data := decode(t, `{"dashboardSpec":{"blocks":[]}}`)
	resp, errs := ValidateAPIResponse(data)
	if resp != nil {
		t.Error("Expected nil response when assistantMessage is missing")
	}
	if len(errs) == 0 || !strings.Contains(errs[0], "assistantMessage") {
		t.Errorf("Expected assistantMessage error, got %v", errs)
	}

	// One malformed block invalidates the entire response.
	data = decode(t, `{"assistantMessage":"hi","dashboardSpec":{"blocks":[{"type":"kpi-card"}]}}`)
	resp, errs = ValidateAPIResponse(data)
	if resp != nil {
		t.Error("Expected nil response for malformed block")
	}
	if len(errs) != 1 {
		t.Errorf("Expected one error, got %v", errs)
	}
}

func TestValidateAPIResponse_TextOnlyIsValid(t *testing.T) {
	resp, errs := ValidateAPIResponse(decode(t, `{"assistantMessage":"Just a chat."}`))
	if resp == nil {
		t.Fatalf("Expected non-nil response, errors: %v", errs)
	}
	if resp.AssistantMessage != "Just a chat." {
		t.Errorf("AssistantMessage = %q", resp.AssistantMessage)
	}
	if resp.DashboardSpec != nil {
		t.Error("Expected no dashboardSpec")
	}
}

func TestValidateAPIResponse_NullSpecIsNotTextOnly(t *testing.T) {
	// A present-but-null dashboardSpec is malformed, unlike an absent one.
	resp, errs := ValidateAPIResponse(decode(t, `{"assistantMessage":"hi","dashboardSpec":null}`))
	if resp != nil {
		t.Error("Expected nil response for null dashboardSpec")
	}
	if len(errs) != 1 || errs[0] != "dashboardSpec is not an object." {
		t.Errorf("Expected the non-object error, got %v", errs)
	}
}

func TestValidateAPIResponse_NonObject(t *testing.T) {
	resp, errs := ValidateAPIResponse("nope")
	if resp != nil || len(errs) != 1 {
		t.Errorf("Expected nil response and one error, got %v / %v", resp, errs)
	}
}

func TestValidateAPIResponse_FullResponse(t *testing.T) {
	data := decode(t, `{
		"assistantMessage": "AAPL is up.",
		"intent": "stock_performance",
		"suggestedPrompts": ["Compare to MSFT"],
		"dashboardSpec": {
			"blocks": [{"type":"executive-summary","props":{"content":"..."}}],
			"chaos": {"theme":"matrix"}
		}
	}`)
	resp, errs := ValidateAPIResponse(data)
	if resp == nil {
		t.Fatalf("Expected valid response, got %v", errs)
	}
	if resp.Intent != "stock_performance" {
		t.Errorf("Intent = %q", resp.Intent)
	}
	if resp.DashboardSpec == nil || len(resp.DashboardSpec.Blocks) != 1 {
		t.Fatal("Expected one block")
	}
	if resp.DashboardSpec.Blocks[0].Type != "executive-summary" {
		t.Errorf("Block type = %q", resp.DashboardSpec.Blocks[0].Type)
	}
	if resp.DashboardSpec.Chaos["theme"] != "matrix" {
		t.Errorf("Chaos = %v", resp.DashboardSpec.Chaos)
	}
}
