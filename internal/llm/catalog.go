package llm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ComponentSpec documents one renderable block type for the prompt.
type ComponentSpec struct {
	Type  string `yaml:"type"`
	Props string `yaml:"props"`
}

// ChaosCommand maps a user phrase to a chaos directive.
type ChaosCommand struct {
	Phrase string `yaml:"phrase"`
	Effect string `yaml:"effect"`
}

// Catalog is the prompt-facing description of the dashboard surface. It can
// be overridden from a YAML file so prompt tuning does not require a rebuild.
type Catalog struct {
	Tickers          []string        `yaml:"tickers"`
	Components       []ComponentSpec `yaml:"components"`
	ChaosCommands    []ChaosCommand  `yaml:"chaos_commands"`
	SuggestedPrompts []string        `yaml:"suggested_prompts"`
}

// DefaultCatalog mirrors the frontend's block registry.
func DefaultCatalog() Catalog {
	return Catalog{
		Tickers: []string{"AAPL", "MSFT", "GOOGL", "TSLA", "NVDA", "META", "AMZN", "SPY"},
		Components: []ComponentSpec{
			{Type: "executive-summary", Props: `{ "content": "<markdown string>" }`},
			{Type: "kpi-card", Props: `{ "ticker", "metric", "value" (string), "change" (string), "changeDirection": "up"|"down", "comparisonBenchmark"? }`},
			{Type: "line-chart", Props: `{ "title", "data": "QUERY_RESULT_N", "xKey", "yKeys": [string] }`},
			{Type: "candlestick-chart", Props: `{ "ticker", "data": "QUERY_RESULT_N" }`},
			{Type: "event-timeline", Props: `{ "events": "QUERY_RESULT_N" }`},
			{Type: "correlation-matrix", Props: `{ "tickers": [string], "data": "QUERY_RESULT_N", "period" }`},
		},
		ChaosCommands: []ChaosCommand{
			{Phrase: `"flip" / "upside down"`, Effect: "rotation: 180"},
			{Phrase: `"comic sans"`, Effect: `fontFamily: "Comic Sans MS"`},
			{Phrase: `"wobble"`, Effect: `animation: "wobble"`},
			{Phrase: `"rainbow"`, Effect: `animation: "rainbow"`},
			{Phrase: `"matrix mode"`, Effect: `theme: "matrix"`},
			{Phrase: `"professional mode"`, Effect: "reset all chaos to defaults"},
		},
		SuggestedPrompts: []string{
			"How has AAPL performed over the last 30 days?",
			"Compare TSLA and NVDA revenue growth",
			"Show me recent news sentiment for MSFT",
			"Which ticker had the biggest swing this quarter?",
		},
	}
}

// LoadCatalog reads a catalog override from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read prompt catalog: %w", err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(b, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	// Missing sections fall back to the defaults.
	defaults := DefaultCatalog()
	if len(catalog.Tickers) == 0 {
		catalog.Tickers = defaults.Tickers
	}
	if len(catalog.Components) == 0 {
		catalog.Components = defaults.Components
	}
	if len(catalog.ChaosCommands) == 0 {
		catalog.ChaosCommands = defaults.ChaosCommands
	}
	if len(catalog.SuggestedPrompts) == 0 {
		catalog.SuggestedPrompts = defaults.SuggestedPrompts
	}
	return catalog, nil
}
