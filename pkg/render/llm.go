package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/stepnotify/pkg/pattern"
)

// LLM renders patterns as terse plain text optimized for AI consumption.
// Zero ANSI codes, SCOPE line first, cause text capped at three lines.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns for LLM consumption.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder

	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			sb.WriteString("SCOPE: " + v.Label + "\n")
			for _, m := range v.Metrics {
				sb.WriteString("  " + m.Label + ": " + m.Value + "\n")
			}
		case *pattern.TestTable:
			l.renderTable(&sb, v)
		}
	}
	return sb.String()
}

func (l *LLM) renderTable(sb *strings.Builder, t *pattern.TestTable) {
	sb.WriteString("\n" + t.Label + "\n")
	writeDetails(sb, t.Details, "  ")
	for _, item := range t.Results {
		trace := ""
		if item.Trace != "" {
			trace = " [" + item.Trace + "]"
		}
		fmt.Fprintf(sb, "  %s %s%s\n", llmPrefix(item.Status), item.Name, trace)
		writeDetails(sb, item.Details, "    ")
	}
}

func llmPrefix(status string) string {
	switch status {
	case pattern.StatusFail:
		return "FAIL"
	case pattern.StatusIgnore:
		return "IGNR"
	case pattern.StatusOpen:
		return "OPEN"
	default:
		return "PASS"
	}
}

func writeDetails(sb *strings.Builder, details, indent string) {
	if details == "" {
		return
	}
	lines := strings.Split(details, "\n")
	limit := 3
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		sb.WriteString(indent + line + "\n")
	}
	if len(lines) > 3 {
		fmt.Fprintf(sb, "%s... (%d more lines)\n", indent, len(lines)-3)
	}
}
