package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog_CoversAllBlockTypes(t *testing.T) {
	catalog := DefaultCatalog()
	want := []string{
		"executive-summary", "kpi-card", "line-chart",
		"candlestick-chart", "event-timeline", "correlation-matrix",
	}
	if len(catalog.Components) != len(want) {
		t.Fatalf("Expected %d components, got %d", len(want), len(catalog.Components))
	}
	for i, typ := range want {
		if catalog.Components[i].Type != typ {
			t.Errorf("Component %d = %q, want %q", i, catalog.Components[i].Type, typ)
		}
	}
}

func TestLoadCatalog_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	yaml := `
tickers: [AAPL, MSFT]
suggested_prompts:
  - "What moved AAPL today?"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(catalog.Tickers) != 2 || catalog.Tickers[0] != "AAPL" {
		t.Errorf("Tickers = %v", catalog.Tickers)
	}
	if len(catalog.SuggestedPrompts) != 1 {
		t.Errorf("SuggestedPrompts = %v", catalog.SuggestedPrompts)
	}
	// Unspecified sections fall back to defaults.
	if len(catalog.Components) == 0 || len(catalog.ChaosCommands) == 0 {
		t.Error("Expected default components and chaos commands")
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog("/nonexistent/catalog.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	catalog := DefaultCatalog()
	prompt := BuildSystemPrompt(catalog, "stock_prices: ticker TEXT", map[string]any{"theme": "matrix"})

	for _, want := range []string{
		"stock_prices: ticker TEXT",
		"QUERY_RESULT_0",
		"kpi-card",
		"CURRENT CHAOS STATE",
		`"theme":"matrix"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}

	// No chaos section when the session has no state yet.
	prompt = BuildSystemPrompt(catalog, "schema", nil)
	if strings.Contains(prompt, "CURRENT CHAOS STATE") {
		t.Error("Prompt should omit chaos section when state is empty")
	}
}
