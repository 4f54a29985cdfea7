// Package sqlguard enforces the read-only contract on LLM-authored SQL
// before it reaches the warehouse.
package sqlguard

import (
	"regexp"
	"strings"
)

// AllowedTables is the set of warehouse tables queries may touch.
var AllowedTables = map[string]bool{
	"stock_prices":      true,
	"financial_metrics": true,
	"news":              true,
}

var (
	disallowedKeywords = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|copy|export|import|attach|detach|pragma|set)\b`)
	selectPrefix       = regexp.MustCompile(`(?i)^\s*(select|with)\b`)
	tablePattern       = regexp.MustCompile(`(?i)\b(from|join)\s+([a-zA-Z_][\w.]*)`)
)

// IsSafe reports whether sql is a single read-only statement over allowed
// tables.
func IsSafe(sql string) bool {
	stripped := strings.TrimSpace(sql)
	if stripped == "" {
		return false
	}

	// Reject multi-statement input; a trailing semicolon alone is fine.
	if strings.Contains(strings.TrimRight(stripped, ";"), ";") {
		return false
	}

	if disallowedKeywords.MatchString(stripped) {
		return false
	}

	if !selectPrefix.MatchString(stripped) {
		return false
	}

	for _, match := range tablePattern.FindAllStringSubmatch(stripped, -1) {
		table := match[2]
		base := table[strings.LastIndex(table, ".")+1:]
		if !AllowedTables[strings.ToLower(base)] {
			return false
		}
	}

	return true
}

// FilterSafe keeps only the queries that pass IsSafe, preserving order.
func FilterSafe(queries []string) []string {
	safe := make([]string, 0, len(queries))
	for _, q := range queries {
		if IsSafe(q) {
			safe = append(safe, q)
		}
	}
	return safe
}
