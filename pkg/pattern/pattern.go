// Package pattern defines the semantic data types for stepnotify's batch report.
// Patterns are pure data; renderers decide presentation.
package pattern

// PatternType identifies the kind of visualization pattern.
type PatternType string

const (
	PatternTypeSummary   PatternType = "summary"
	PatternTypeTestTable PatternType = "test-table"
)

// Pattern is the interface all visualization patterns implement.
type Pattern interface {
	Type() PatternType
}

// Status values carried by summaries and table rows.
const (
	StatusFail   = "fail"
	StatusIgnore = "ignore"
	StatusPass   = "pass"
	StatusOpen   = "open"
)
