package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildSystemPrompt assembles the full system prompt from the warehouse
// schema, the component catalog, and the session's current chaos state.
func BuildSystemPrompt(catalog Catalog, schema string, currentChaos map[string]any) string {
	var b strings.Builder

	b.WriteString("You are a financial dashboard assistant for FinanceFlip.\n")
	b.WriteString("You answer user questions about stock data and respond with a structured dashboard specification that the frontend renders.\n\n")

	b.WriteString("DATABASE SCHEMA (read-only):\n")
	b.WriteString(schema)
	b.WriteString("\n\nAvailable tickers: ")
	b.WriteString(strings.Join(catalog.Tickers, ", "))
	b.WriteString(".\n\n")

	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("Respond with ONLY a valid JSON object (no markdown fences):\n")
	b.WriteString(`{
  "intent": "<short string describing the user intent>",
  "sqlQueries": ["<SELECT query>", ...],
  "assistantMessage": "<friendly natural-language answer>",
  "dashboardSpec": {
    "blocks": [ { "type": "<block-type>", "props": { ... } } ],
    "chaos": { "rotation": 0, "fontFamily": "Inter", "animation": null, "theme": "professional" }
  }
}
`)

	b.WriteString("\nBlock types and required props:\n")
	for _, c := range catalog.Components {
		fmt.Fprintf(&b, "- %s — %s\n", c.Type, c.Props)
	}

	b.WriteString(`
IMPORTANT:
- Use "QUERY_RESULT_0", "QUERY_RESULT_1", etc. as placeholders in props for data that the corresponding sqlQueries entry will produce. The backend replaces them with the actual rows.
- Only SELECT queries over the schema above; one statement per entry.
- Format numbers nicely in kpi-card values/changes (e.g. "$182.34", "+4.5%").
- Always include an executive-summary block first for data questions.
- If the user is greeting or making small talk, set intent to "conversation", leave sqlQueries empty and return dashboardSpec.blocks as [].
- If the user asks for relative time ("this week", "recent", "latest"), anchor the window on the latest date present in stock_prices, not the real current date.
`)

	b.WriteString("\nCHAOS COMMANDS (update the chaos object when the user says these):\n")
	for _, c := range catalog.ChaosCommands {
		fmt.Fprintf(&b, "- %s -> %s\n", c.Phrase, c.Effect)
	}

	if len(currentChaos) > 0 {
		chaosJSON, err := json.Marshal(currentChaos)
		if err == nil {
			b.WriteString("\nCURRENT CHAOS STATE (carry forward unless a chaos command overrides it):\n")
			b.Write(chaosJSON)
			b.WriteString("\n")
		}
	}

	return b.String()
}
