package genui

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestReplacePlaceholders_RoundTrip(t *testing.T) {
	spec := decode(t, `{
		"blocks": [
			{"type":"line-chart","props":{"title":"AAPL","data":"QUERY_RESULT_0","xKey":"date","yKeys":["close"]}},
			{"type":"event-timeline","props":{"events":"QUERY_RESULT_1"}}
		]
	}`)
	results := []any{
		[]any{map[string]any{"a": 1.0}},
		[]any{},
	}

	hydrated := ReplacePlaceholders(spec, results)

	raw, err := json.Marshal(hydrated)
	if err != nil {
		t.Fatalf("Hydrated spec is not valid JSON: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Round trip failed: %v", err)
	}

	blocks := back["blocks"].([]any)
	data := blocks[0].(map[string]any)["props"].(map[string]any)["data"]
	if !reflect.DeepEqual(data, []any{map[string]any{"a": 1.0}}) {
		t.Errorf("QUERY_RESULT_0 not substituted, got %v", data)
	}
	events := blocks[1].(map[string]any)["props"].(map[string]any)["events"]
	if !reflect.DeepEqual(events, []any{}) {
		t.Errorf("QUERY_RESULT_1 not substituted, got %v", events)
	}
}

func TestReplacePlaceholders_MultiDigitIndex(t *testing.T) {
	// QUERY_RESULT_1 must never leak into QUERY_RESULT_10.
	results := make([]any, 11)
	for i := range results {
		results[i] = []any{float64(i)}
	}
	value := map[string]any{
		"one": "QUERY_RESULT_1",
		"ten": "QUERY_RESULT_10",
	}

	out := ReplacePlaceholders(value, results).(map[string]any)
	if !reflect.DeepEqual(out["one"], []any{1.0}) {
		t.Errorf("QUERY_RESULT_1 -> %v", out["one"])
	}
	if !reflect.DeepEqual(out["ten"], []any{10.0}) {
		t.Errorf("QUERY_RESULT_10 -> %v", out["ten"])
	}
}

func TestReplacePlaceholders_OutOfRangeBecomesEmptyArray(t *testing.T) {
	out := ReplacePlaceholders("QUERY_RESULT_5", []any{[]any{1.0}})
	if !reflect.DeepEqual(out, []any{}) {
		t.Errorf("Expected empty array, got %v", out)
	}
}

func TestReplacePlaceholders_IgnoresLookalikes(t *testing.T) {
	tests := []string{
		"QUERY_RESULT_",
		"see QUERY_RESULT_0 above",
		"query_result_0",
		"QUERY_RESULT_0 ",
	}
	for _, s := range tests {
		if out := ReplacePlaceholders(s, []any{[]any{}}); out != s {
			t.Errorf("%q should be left untouched, got %v", s, out)
		}
	}
}

func TestReplacePlaceholders_DataContainingPlaceholderText(t *testing.T) {
	// A result row containing placeholder-looking text must survive as data.
	results := []any{
		[]any{map[string]any{"title": "QUERY_RESULT_1"}},
	}
	spec := map[string]any{"data": "QUERY_RESULT_0"}

	out := ReplacePlaceholders(spec, results).(map[string]any)
	rows := out["data"].([]any)
	if rows[0].(map[string]any)["title"] != "QUERY_RESULT_1" {
		t.Errorf("Substitution must not recurse into substituted data, got %v", rows)
	}
}

func TestNormalizeDashboardSpec(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"non-object spec",
			`"oops"`,
			`{"blocks":[]}`,
		},
		{
			"blocks missing",
			`{}`,
			`{"blocks":[]}`,
		},
		{
			"inlined props re-wrapped",
			`{"blocks":[{"type":"kpi-card","ticker":"AAPL","value":"$230"}]}`,
			`{"blocks":[{"props":{"ticker":"AAPL","value":"$230"},"type":"kpi-card"}]}`,
		},
		{
			"typeless and non-object blocks dropped",
			`{"blocks":[{"props":{}},"junk",{"type":"kpi-card","props":{}}]}`,
			`{"blocks":[{"props":{},"type":"kpi-card"}]}`,
		},
		{
			"non-object chaos dropped",
			`{"blocks":[],"chaos":"matrix"}`,
			`{"blocks":[]}`,
		},
		{
			"object chaos kept",
			`{"blocks":[],"chaos":{"theme":"matrix"}}`,
			`{"blocks":[],"chaos":{"theme":"matrix"}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeDashboardSpec(decode(t, tc.raw))
			raw, _ := json.Marshal(got)
			var a, b any
			json.Unmarshal(raw, &a)
			json.Unmarshal([]byte(tc.want), &b)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("Normalized = %s, want %s", raw, tc.want)
			}
		})
	}
}

func TestParseJSONFromText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
		wantErr bool
	}{
		{"clean json", `{"intent":"x"}`, "intent", false},
		{"markdown fence", "Here you go:\n```json\n{\"intent\":\"x\"}\n```", "intent", false},
		{"prose wrapped", `Sure! {"intent":"x"} Hope that helps.`, "intent", false},
		{"empty", "", "", true},
		{"no object", "just chatting", "", true},
		{"broken object", "{nope", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ParseJSONFromText(tc.text)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if _, ok := out[tc.wantKey]; !ok {
				t.Errorf("Expected key %q in %v", tc.wantKey, out)
			}
		})
	}
}
