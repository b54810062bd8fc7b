package render

import (
	"encoding/json"

	"github.com/dkoosis/stepnotify/pkg/engine"
	"github.com/dkoosis/stepnotify/pkg/pattern"
)

// JSON renders the notification report as structured JSON for automation.
type JSON struct {
	policy *engine.Policy
}

// JSONOption configures a JSON renderer.
type JSONOption func(*JSON)

// WithPolicy records the policy the notifications were produced under.
func WithPolicy(p engine.Policy) JSONOption {
	return func(j *JSON) { j.policy = &p }
}

// NewJSON creates a JSON renderer.
func NewJSON(opts ...JSONOption) *JSON {
	j := &JSON{}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	Version   string         `json:"version"`
	Tool      string         `json:"tool"`
	Status    string         `json:"status"`
	Policy    *jsonPolicy    `json:"policy,omitempty"`
	Scenarios map[string]int `json:"scenarios"`
	Patterns  []jsonPattern  `json:"patterns"`
}

type jsonPolicy struct {
	Strict              bool `json:"strict"`
	AllowStartedIgnored bool `json:"allow_started_ignored"`
}

type jsonPattern struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Render formats all patterns as JSON.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	out := jsonOutput{
		Version:   "1.0",
		Tool:      "stepnotify",
		Status:    pattern.StatusPass,
		Scenarios: scenarioCounts(patterns),
		Patterns:  make([]jsonPattern, 0, len(patterns)),
	}
	if j.policy != nil {
		out.Policy = &jsonPolicy{Strict: j.policy.Strict, AllowStartedIgnored: j.policy.AllowStartedIgnored}
	}

	for _, p := range patterns {
		if s, ok := p.(*pattern.Summary); ok && s.Failed {
			out.Status = pattern.StatusFail
		}
		out.Patterns = append(out.Patterns, jsonPattern{
			Type: string(p.Type()),
			Data: p,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}

// scenarioCounts tallies scenarios by status. Every non-passing scenario
// has a table of its own; passing scenarios share one table, one row each.
func scenarioCounts(patterns []pattern.Pattern) map[string]int {
	counts := map[string]int{
		pattern.StatusFail:   0,
		pattern.StatusIgnore: 0,
		pattern.StatusOpen:   0,
		pattern.StatusPass:   0,
	}
	for _, p := range patterns {
		tt, ok := p.(*pattern.TestTable)
		if !ok {
			continue
		}
		if tt.Status == pattern.StatusPass {
			counts[pattern.StatusPass] += len(tt.Results)
		} else {
			counts[tt.Status]++
		}
	}
	return counts
}
