package mapper

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/stepnotify/pkg/engine"
	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/outcome"
	"github.com/dkoosis/stepnotify/pkg/pattern"
)

// drive runs one scenario per entry through a fresh unit and returns the
// recorded calls.
func drive(policy engine.Policy, scenarios map[string][]outcome.Outcome, order []string) []notify.Notification {
	rec := notify.NewRecorder()
	e := engine.New(policy)
	for _, id := range order {
		u := e.StartExecutionUnit(engine.StaticProvider{Scenario: notify.Description{ID: id, Name: strings.ToUpper(id)}}, rec)
		for i, o := range scenarios[id] {
			u.StepStarted(string(rune('1' + i)))
			u.StepResult(o)
		}
		u.Finish()
	}
	return rec.Calls
}

func TestFromNotifications_AllPassing(t *testing.T) {
	calls := drive(engine.Policy{}, map[string][]outcome.Outcome{
		"a": {outcome.NewPassed(), outcome.NewPassed()},
		"b": {outcome.NewPassed()},
	}, []string{"a", "b"})

	patterns := FromNotifications(calls)
	require.Len(t, patterns, 2)

	sum, ok := patterns[0].(*pattern.Summary)
	require.True(t, ok, "expected Summary, got %T", patterns[0])
	assert.Equal(t, "PASS 2 scenarios", sum.Label)
	assert.False(t, sum.Failed)
	assert.Equal(t, pattern.SummaryKindNotify, sum.Kind)
	assert.Equal(t, "Pass", sum.Metrics[0].Label)
	assert.Equal(t, "success", sum.Metrics[0].Kind)

	table, ok := patterns[1].(*pattern.TestTable)
	require.True(t, ok)
	assert.Equal(t, "Passing Scenarios (2)", table.Label)
	require.Len(t, table.Results, 2)
	assert.Equal(t, "a", table.Results[0].Name)
	assert.Equal(t, "2 steps", table.Results[0].Trace)
}

func TestFromNotifications_FailedScenarioFirst(t *testing.T) {
	calls := drive(engine.Policy{}, map[string][]outcome.Outcome{
		"ok":   {outcome.NewPassed()},
		"bad":  {outcome.NewPassed(), outcome.NewFailed(errors.New("expected 1\ngot 2"))},
		"todo": {outcome.NewUndefined()},
	}, []string{"ok", "bad", "todo"})

	patterns := FromNotifications(calls)
	require.Len(t, patterns, 4)

	sum := patterns[0].(*pattern.Summary)
	assert.Equal(t, "FAIL 1/3 scenarios", sum.Label)
	assert.True(t, sum.Failed)

	failed := patterns[1].(*pattern.TestTable)
	assert.Equal(t, pattern.StatusFail, failed.Status)
	assert.Equal(t, "FAIL BAD (bad)", failed.Label)
	assert.Equal(t, "expected 1\ngot 2", failed.Details)
	require.Len(t, failed.Results, 2)
	assert.Equal(t, pattern.StatusPass, failed.Results[0].Status)
	assert.Equal(t, "start finish", failed.Results[0].Trace)
	assert.Equal(t, pattern.StatusFail, failed.Results[1].Status)
	assert.Equal(t, "start fail finish", failed.Results[1].Trace)

	ignored := patterns[2].(*pattern.TestTable)
	assert.Equal(t, pattern.StatusIgnore, ignored.Status)
	require.Len(t, ignored.Results, 1)
	assert.Equal(t, "ignore", ignored.Results[0].Trace)

	passing := patterns[3].(*pattern.TestTable)
	assert.Equal(t, "Passing Scenarios (1)", passing.Label)
}

func TestFromNotifications_OpenStepReported(t *testing.T) {
	calls := []notify.Notification{
		{Verb: notify.VerbStart, Description: notify.Description{ID: "s"}},
		{Verb: notify.VerbStart, Description: notify.Description{ID: "s/1", Parent: "s"}},
	}

	patterns := FromNotifications(calls)
	require.Len(t, patterns, 2)
	table := patterns[1].(*pattern.TestTable)
	assert.Equal(t, pattern.StatusOpen, table.Status)
	assert.Equal(t, "OPEN s", table.Label)
}

func TestFromNotifications_StepBeforeScenario(t *testing.T) {
	calls := []notify.Notification{
		{Verb: notify.VerbIgnore, Description: notify.Description{ID: "s/1", Name: "Given", Parent: "s"}},
		{Verb: notify.VerbFail, Description: notify.Description{ID: "s", Name: "Scenario"}, Cause: errors.New("hook")},
	}

	patterns := FromNotifications(calls)
	require.Len(t, patterns, 2)
	table := patterns[1].(*pattern.TestTable)
	assert.Equal(t, "FAIL Scenario (s)", table.Label)
	assert.Equal(t, "hook", table.Details)
	require.Len(t, table.Results, 1)
	assert.Equal(t, "Given (s/1)", table.Results[0].Name)
}

func TestFromNotifications_Empty(t *testing.T) {
	patterns := FromNotifications(nil)
	require.Len(t, patterns, 1)
	sum := patterns[0].(*pattern.Summary)
	assert.Equal(t, "PASS 0 scenarios", sum.Label)
}

func TestTruncateLines(t *testing.T) {
	assert.Equal(t, "a\nb", truncateLines([]string{"a", "b"}, 3))
	assert.Equal(t, "a\nb\nc\n... (2 more lines)", truncateLines([]string{"a", "b", "c", "d", "e"}, 3))
}
