// Package agent orchestrates one query end to end: LLM call, SQL execution
// under guardrails, placeholder hydration, and response finalization.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"financeflip-backend/internal/genui"
	"financeflip-backend/internal/llm"
	"financeflip-backend/internal/models"
	"financeflip-backend/internal/sqlguard"
)

// Warehouse is the query surface the agent needs from the analytical DB.
type Warehouse interface {
	Query(ctx context.Context, sql string) ([]map[string]any, error)
	Schema() string
}

type Service struct {
	provider  llm.Provider
	warehouse Warehouse
	catalog   llm.Catalog
}

func NewService(provider llm.Provider, warehouse Warehouse, catalog llm.Catalog) *Service {
	return &Service{
		provider:  provider,
		warehouse: warehouse,
		catalog:   catalog,
	}
}

// SuggestedPrompts returns the catalog's starter prompts.
func (s *Service) SuggestedPrompts() []string {
	return s.catalog.SuggestedPrompts
}

// ProcessQuery runs the non-streaming path and returns the finalized
// response.
func (s *Service) ProcessQuery(ctx context.Context, message string, currentChaos map[string]any) (*models.APIResponse, error) {
	start := time.Now()
	system := llm.BuildSystemPrompt(s.catalog, s.warehouse.Schema(), currentChaos)

	text, err := s.provider.Complete(ctx, system, message)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	parsed := s.parseReply(text, currentChaos)
	return s.finalize(ctx, parsed, currentChaos, start, nil), nil
}

// parseReply decodes the LLM's JSON reply; non-JSON text is wrapped as a
// conversational response rather than failing the request.
func (s *Service) parseReply(text string, currentChaos map[string]any) map[string]any {
	parsed, err := genui.ParseJSONFromText(text)
	if err != nil {
		log.Printf("LLM returned non-JSON text; wrapping as conversational response: %v", err)
		spec := map[string]any{"blocks": []any{}}
		if currentChaos != nil {
			spec["chaos"] = currentChaos
		}
		return map[string]any{
			"intent":           "conversation",
			"sqlQueries":       []any{},
			"assistantMessage": strings.TrimSpace(text),
			"dashboardSpec":    spec,
		}
	}
	return parsed
}

// finalize executes the safe queries in order, hydrates the spec, and builds
// the wire response. emitStep, when non-nil, observes each query as a
// tool_call/tool_result pair.
func (s *Service) finalize(ctx context.Context, parsed map[string]any, currentChaos map[string]any, start time.Time, emitStep func(models.AgentStep)) *models.APIResponse {
	intent := stringField(parsed, "intent", "unknown")
	assistantMessage := stringField(parsed, "assistantMessage", "")

	requested := stringSlice(parsed["sqlQueries"])
	safe := sqlguard.FilterSafe(requested)

	results := make([]any, 0, len(safe))
	for i, query := range safe {
		if emitStep != nil {
			emitStep(models.AgentStep{
				Step:  i + 1,
				Type:  "tool_call",
				Tool:  "run_query",
				Input: truncate(query, 200),
			})
		}

		rows, err := s.warehouse.Query(ctx, query)
		if err != nil {
			// One bad query degrades one block, never the dashboard.
			log.Printf("SQL execution failed: %v (query: %s)", err, query)
			results = append(results, []any{})
		} else {
			results = append(results, rowsToAny(rows))
		}

		if emitStep != nil {
			preview, _ := json.Marshal(results[len(results)-1])
			emitStep(models.AgentStep{
				Step:    i + 1,
				Type:    "tool_result",
				Tool:    "run_query",
				Preview: truncate(string(preview), 150),
			})
		}
	}

	spec := genui.NormalizeDashboardSpec(parsed["dashboardSpec"])
	hydrated, _ := genui.ReplacePlaceholders(spec, results).(map[string]any)
	if hydrated == nil {
		hydrated = map[string]any{"blocks": []any{}}
	}

	// Carry the session chaos forward when the model omitted it.
	if currentChaos != nil {
		if _, ok := hydrated["chaos"]; !ok {
			hydrated["chaos"] = currentChaos
		}
	}

	s.maybeStripBlocks(hydrated, intent, safe)
	s.hydrateMissingTimeSeries(ctx, hydrated)

	var wireSpec models.DashboardSpec
	if raw, err := json.Marshal(hydrated); err == nil {
		json.Unmarshal(raw, &wireSpec)
	}
	if wireSpec.Blocks == nil {
		wireSpec.Blocks = []models.Block{}
	}

	prompts := stringSlice(parsed["suggestedPrompts"])
	if len(prompts) == 0 {
		prompts = s.catalog.SuggestedPrompts
	}

	return &models.APIResponse{
		DashboardSpec:    &wireSpec,
		AssistantMessage: assistantMessage,
		Intent:           intent,
		SuggestedPrompts: prompts,
		QueryMetadata: &models.QueryMetadata{
			ExecutionTimeMs:     time.Since(start).Milliseconds(),
			SQLQueriesRequested: len(requested),
			SQLQueriesExecuted:  len(safe),
		},
	}
}

// maybeStripBlocks avoids rendering generic blocks for small talk: when no
// query ran, a lone executive summary or a conversational intent renders as
// plain chat.
func (s *Service) maybeStripBlocks(spec map[string]any, intent string, safeQueries []string) {
	if len(safeQueries) > 0 {
		return
	}
	blocks, ok := spec["blocks"].([]any)
	if !ok {
		return
	}

	onlyExecSummary := false
	if len(blocks) == 1 {
		if block, ok := blocks[0].(map[string]any); ok {
			onlyExecSummary = block["type"] == "executive-summary"
		}
	}
	if onlyExecSummary || intent == "conversation" {
		spec["blocks"] = []any{}
	}
}

var lastDaysRe = regexp.MustCompile(`(?i)last\s+(\d+)\s+day`)

// hydrateMissingTimeSeries backfills chart blocks whose data came back empty
// with a best-effort time-series query inferred from the block's ticker or
// title.
func (s *Service) hydrateMissingTimeSeries(ctx context.Context, spec map[string]any) {
	blocks, ok := spec["blocks"].([]any)
	if !ok {
		return
	}

	for _, raw := range blocks {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		blockType, _ := block["type"].(string)
		if blockType != "line-chart" && blockType != "candlestick-chart" {
			continue
		}
		props, ok := block["props"].(map[string]any)
		if !ok {
			continue
		}
		if data, ok := props["data"].([]any); ok && len(data) > 0 {
			continue
		}

		title, _ := props["title"].(string)
		ticker, _ := props["ticker"].(string)
		if ticker == "" {
			ticker = s.inferTicker(title)
		}
		if ticker == "" {
			continue
		}

		days := inferDays(title)
		query := fmt.Sprintf(`SELECT * FROM (
			SELECT date, open, high, low, close
			FROM stock_prices
			WHERE ticker = '%s'
			ORDER BY date DESC
			LIMIT %d
		) t ORDER BY date ASC`, ticker, days)

		rows, err := s.warehouse.Query(ctx, query)
		if err != nil {
			log.Printf("Time series fallback query failed for %s: %v", ticker, err)
			continue
		}
		props["data"] = rowsToAny(rows)
		if blockType == "line-chart" {
			if _, ok := props["xKey"]; !ok {
				props["xKey"] = "date"
			}
			if _, ok := props["yKeys"]; !ok {
				props["yKeys"] = []any{"close"}
			}
		}
	}
}

func (s *Service) inferTicker(text string) string {
	upper := strings.ToUpper(text)
	for _, ticker := range s.catalog.Tickers {
		if strings.Contains(upper, ticker) {
			return ticker
		}
	}
	return ""
}

func inferDays(text string) int {
	if m := lastDaysRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 30
}

func rowsToAny(rows []map[string]any) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out
}

func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
