// Package warehouse wraps the local analytical database the agent queries.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// MaxRows caps result sets so a broad query cannot blow up the LLM context
// or the response payload.
const MaxRows = 200

// TableColumns describes the warehouse schema, used both for DDL and for the
// schema listing handed to the LLM.
var TableColumns = map[string][]string{
	"stock_prices": {
		"ticker TEXT", "date TEXT", "open REAL", "high REAL",
		"low REAL", "close REAL", "volume INTEGER",
	},
	"financial_metrics": {
		"ticker TEXT", "report_period TEXT", "market_cap REAL",
		"pe_ratio REAL", "pb_ratio REAL", "current_ratio REAL",
		"debt_to_equity REAL", "revenue_growth REAL",
		"net_income_growth REAL", "free_cash_flow_yield REAL",
	},
	"news": {
		"ticker TEXT", "date TEXT", "title TEXT",
		"author TEXT", "source TEXT", "url TEXT",
		"sentiment REAL",
	},
}

// Service executes read-only queries against the warehouse. SQL safety is
// the caller's job (sqlguard); this layer handles execution and row shaping.
type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// InitSchema creates the warehouse tables if they do not exist.
func (s *Service) InitSchema(ctx context.Context) error {
	for _, table := range tableNames() {
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(TableColumns[table], ", "))
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// Query runs sql and returns rows as JSON-ready maps. Results are capped at
// MaxRows; NULL and non-finite floats become nil so they serialize as null.
func (s *Service) Query(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("warehouse query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		if len(out) >= MaxRows {
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse query failed: %w", err)
	}
	return out, nil
}

// Schema returns the table/column listing handed to the LLM prompt.
func (s *Service) Schema() string {
	var lines []string
	for _, table := range tableNames() {
		lines = append(lines, fmt.Sprintf("%s: %s", table, strings.Join(TableColumns[table], ", ")))
	}
	return strings.Join(lines, "\n")
}

func tableNames() []string {
	names := make([]string, 0, len(TableColumns))
	for name := range TableColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
