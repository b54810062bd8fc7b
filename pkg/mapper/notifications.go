// Package mapper converts recorded notifications into report patterns.
package mapper

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/pattern"
)

// node accumulates the calls seen for one description.
type node struct {
	desc  notify.Description
	verbs []notify.Verb
	cause error
}

func (n *node) status() string {
	return statusOf(n.verbs)
}

// statusOf ranks the verbs received by one description: fail > ignore >
// finish. A description only ever started is still open.
func statusOf(verbs []notify.Verb) string {
	seen := make(map[notify.Verb]bool, len(verbs))
	for _, v := range verbs {
		seen[v] = true
	}
	switch {
	case seen[notify.VerbFail]:
		return pattern.StatusFail
	case seen[notify.VerbIgnore]:
		return pattern.StatusIgnore
	case seen[notify.VerbFinish]:
		return pattern.StatusPass
	case seen[notify.VerbStart]:
		return pattern.StatusOpen
	default:
		return pattern.StatusPass
	}
}

func (n *node) trace() string {
	parts := make([]string, len(n.verbs))
	for i, v := range n.verbs {
		parts[i] = string(v)
	}
	return strings.Join(parts, " ")
}

// scenarioGroup is a scenario plus its steps in first-seen order.
type scenarioGroup struct {
	self  *node
	steps []*node
}

func (g *scenarioGroup) status() string {
	worst := g.self.status()
	for _, s := range g.steps {
		worst = worse(worst, s.status())
	}
	return worst
}

func statusPriority(s string) int {
	switch s {
	case pattern.StatusFail:
		return 0
	case pattern.StatusOpen:
		return 1
	case pattern.StatusIgnore:
		return 2
	default:
		return 3
	}
}

func worse(a, b string) string {
	if statusPriority(b) < statusPriority(a) {
		return b
	}
	return a
}

// FromNotifications converts a recorded run into visualization patterns.
// Returns: Summary + TestTable per failed, open or ignored scenario +
// one TestTable collapsing the passing scenarios.
func FromNotifications(calls []notify.Notification) []pattern.Pattern {
	groups, order := group(calls)

	counts := map[string]int{}
	stepCounts := map[string]int{}
	for _, id := range order {
		g := groups[id]
		counts[g.status()]++
		for _, s := range g.steps {
			stepCounts[s.status()]++
		}
	}

	patterns := []pattern.Pattern{notifySummary(len(order), counts, stepCounts)}

	// Failed first, then open, then ignored, keeping arrival order within each.
	for _, want := range []string{pattern.StatusFail, pattern.StatusOpen, pattern.StatusIgnore} {
		for _, id := range order {
			if g := groups[id]; g.status() == want {
				patterns = append(patterns, scenarioTable(g))
			}
		}
	}

	var passItems []pattern.TestTableItem
	for _, id := range order {
		g := groups[id]
		if g.status() != pattern.StatusPass {
			continue
		}
		passItems = append(passItems, pattern.TestTableItem{
			Name:   g.self.desc.String(),
			Status: pattern.StatusPass,
			Trace:  fmt.Sprintf("%d steps", len(g.steps)),
		})
	}
	if len(passItems) > 0 {
		patterns = append(patterns, &pattern.TestTable{
			Label:   fmt.Sprintf("Passing Scenarios (%d)", len(passItems)),
			Status:  pattern.StatusPass,
			Results: passItems,
		})
	}
	return patterns
}

// group buckets calls by scenario. Descriptions without a parent are
// scenarios; a step seen before its scenario creates the group.
func group(calls []notify.Notification) (map[string]*scenarioGroup, []string) {
	groups := make(map[string]*scenarioGroup)
	steps := make(map[string]*node)
	var order []string

	groupFor := func(id string) *scenarioGroup {
		g, ok := groups[id]
		if !ok {
			g = &scenarioGroup{self: &node{desc: notify.Description{ID: id}}}
			groups[id] = g
			order = append(order, id)
		}
		return g
	}

	for _, c := range calls {
		var n *node
		if c.Description.Parent == "" {
			g := groupFor(c.Description.ID)
			n = g.self
		} else {
			g := groupFor(c.Description.Parent)
			var ok bool
			if n, ok = steps[c.Description.ID]; !ok {
				n = &node{}
				steps[c.Description.ID] = n
				g.steps = append(g.steps, n)
			}
		}
		n.desc = c.Description
		n.verbs = append(n.verbs, c.Verb)
		if c.Verb == notify.VerbFail && n.cause == nil {
			n.cause = c.Cause
		}
	}
	return groups, order
}

func scenarioTable(g *scenarioGroup) *pattern.TestTable {
	status := g.status()
	items := make([]pattern.TestTableItem, 0, len(g.steps))
	for _, s := range g.steps {
		items = append(items, pattern.TestTableItem{
			Name:    s.desc.String(),
			Status:  s.status(),
			Trace:   s.trace(),
			Details: causeText(s.cause),
		})
	}
	return &pattern.TestTable{
		Label:   strings.ToUpper(status) + " " + g.self.desc.String(),
		Status:  status,
		Details: causeText(g.self.cause),
		Results: items,
	}
}

func notifySummary(scenarios int, counts, stepCounts map[string]int) *pattern.Summary {
	var metrics []pattern.SummaryItem
	title := cases.Title(language.English)
	add := func(status, kind string) {
		if n := counts[status]; n > 0 {
			metrics = append(metrics, pattern.SummaryItem{
				Label: title.String(status),
				Value: fmt.Sprintf("%d/%d scenarios", n, scenarios),
				Kind:  kind,
			})
		}
	}
	add(pattern.StatusFail, "error")
	add(pattern.StatusOpen, "warning")
	add(pattern.StatusIgnore, "warning")

	passKind := "success"
	if counts[pattern.StatusFail] > 0 {
		passKind = "info"
	}
	add(pattern.StatusPass, passKind)

	totalSteps := 0
	for _, n := range stepCounts {
		totalSteps += n
	}
	metrics = append(metrics, pattern.SummaryItem{
		Label: "Steps",
		Value: fmt.Sprintf("%d (%d ignored)", totalSteps, stepCounts[pattern.StatusIgnore]),
		Kind:  "info",
	})

	failed := counts[pattern.StatusFail] > 0
	label := fmt.Sprintf("PASS %d scenarios", scenarios)
	if failed {
		label = fmt.Sprintf("FAIL %d/%d scenarios", counts[pattern.StatusFail], scenarios)
	}
	return &pattern.Summary{
		Label:   label,
		Kind:    pattern.SummaryKindNotify,
		Failed:  failed,
		Metrics: metrics,
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return truncateLines(strings.Split(strings.TrimRight(err.Error(), "\n"), "\n"), 3)
}

func truncateLines(lines []string, max int) string {
	if len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	result := strings.Join(lines[:max], "\n")
	return result + fmt.Sprintf("\n... (%d more lines)", len(lines)-max)
}
