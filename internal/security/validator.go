package security

import (
	"regexp"
	"strings"
)

// QueryGuard flags generated BigQuery SQL that is not a single read-only query
type QueryGuard struct {
	blockedPatterns []*regexp.Regexp
}

// NewQueryGuard creates a new query guard
func NewQueryGuard() *QueryGuard {
	patterns := []string{
		`(?i)\bINSERT\s+INTO\b`,
		`(?i)\bUPDATE\s+[\w.` + "`" + `-]+\s+SET\b`,
		`(?i)\bDELETE\s+FROM\b`,
		`(?i)\bMERGE\s+(INTO\s+)?[\w.` + "`" + `-]+\s+USING\b`,
		`(?i)\bDROP\s+(TABLE|VIEW|SCHEMA|FUNCTION|PROCEDURE|MATERIALIZED)\b`,
		`(?i)\bTRUNCATE\s+TABLE\b`,
		`(?i)\bALTER\s+(TABLE|VIEW|SCHEMA|MATERIALIZED)\b`,
		`(?i)\bCREATE\s+(OR\s+REPLACE\s+)?(TEMP\s+|TEMPORARY\s+)?(TABLE|VIEW|SCHEMA|FUNCTION|PROCEDURE|MATERIALIZED)\b`,
		`(?i)\bGRANT\b`,
		`(?i)\bREVOKE\b`,
		`(?i)\bEXPORT\s+DATA\b`,
		`(?i)\bLOAD\s+DATA\b`,
		`(?i)\bEXECUTE\s+IMMEDIATE\b`,
		`(?i)\bCALL\s+[\w.` + "`" + `-]+\s*\(`,
		`(?i)\bBEGIN\s+TRANSACTION\b`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}

	return &QueryGuard{blockedPatterns: compiled}
}

// ValidationError describes why a query was flagged
type ValidationError struct {
	Message string
	Pattern string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate returns a *ValidationError when the query is empty, holds several
// statements, does not start with SELECT or WITH, or matches a blocked pattern
func (g *QueryGuard) Validate(sql string) error {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return &ValidationError{Message: "empty SQL query"}
	}

	if strings.Contains(strings.TrimSuffix(sql, ";"), ";") {
		return &ValidationError{Message: "multiple statements not allowed"}
	}

	normalized := strings.ToUpper(strings.TrimLeft(sql, "( \t"))
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return &ValidationError{Message: "only SELECT statements allowed"}
	}

	for _, pattern := range g.blockedPatterns {
		if pattern.MatchString(sql) {
			return &ValidationError{
				Message: "blocked SQL pattern detected",
				Pattern: pattern.String(),
			}
		}
	}

	return nil
}
