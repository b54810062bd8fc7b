package runnerjson

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/stepnotify/pkg/engine"
	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/outcome"
)

const loginStream = `{"Action":"scenario-start","Scenario":"login:3","ScenarioName":"User logs in"}
{"Action":"hook-result","Scenario":"login:3","Hook":"before","Status":"passed"}
{"Action":"step-start","Scenario":"login:3","Step":"4","StepName":"Given a user"}
{"Action":"step-result","Scenario":"login:3","Step":"4","Status":"passed"}
{"Action":"step-start","Scenario":"login:3","Step":"5","StepName":"When they log in"}
{"Action":"step-result","Scenario":"login:3","Step":"5","Status":"undefined"}
{"Action":"scenario-finish","Scenario":"login:3"}
`

func TestParseStream_Basic(t *testing.T) {
	t.Parallel()

	events, malformed, err := ParseStream(strings.NewReader(loginStream))
	require.NoError(t, err)
	assert.Zero(t, malformed)
	require.Len(t, events, 7)
	assert.Equal(t, ActionScenarioStart, events[0].Action)
	assert.Equal(t, "Given a user", events[2].StepName)
}

func TestParseStream_MalformedLinesSkipped(t *testing.T) {
	t.Parallel()

	input := "not json\n{bad json\n{}\n\n" +
		`{"Action":"scenario-start","Scenario":"x"}` + "\n"

	events, malformed, err := ParseBytes([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, 3, malformed, "objects without an Action count as malformed")
	assert.Len(t, events, 1)
}

func TestStream_CallsFnPerEvent(t *testing.T) {
	t.Parallel()

	var actions []string
	malformed, err := Stream(context.Background(), strings.NewReader(loginStream+"garbage\n"), func(e Event) {
		actions = append(actions, e.Action)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
	assert.Len(t, actions, 7)
	assert.Equal(t, ActionScenarioFinish, actions[6])
}

func TestStream_CancelClosesReader(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Stream(ctx, pr, func(Event) {})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
}

func TestEvent_Result(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   Event
		want outcome.Kind
	}{
		{"passed", Event{Status: "passed"}, outcome.Passed},
		{"failed", Event{Status: "failed", Error: "expected 1"}, outcome.Failed},
		{"pending kind", Event{Status: "failed", Error: "wip", ErrorKind: "pending"}, outcome.Pending},
		{"pending status with message", Event{Status: "pending", Error: "wip"}, outcome.Pending},
		{"assumption", Event{Status: "failed", Error: "no db", ErrorKind: "Assumption"}, outcome.AssumptionViolated},
		{"undefined", Event{Status: "undefined"}, outcome.Undefined},
		{"skipped", Event{Status: "skipped"}, outcome.Skipped},
		{"ambiguous", Event{Status: "ambiguous"}, outcome.Skipped},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o, err := tt.ev.Outcome()
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.Kind)
		})
	}

	_, err := Event{Status: "exploded"}.Outcome()
	assert.Error(t, err)
}

func TestDriver_LoginStreamNonStrict(t *testing.T) {
	t.Parallel()

	rec := notify.NewRecorder()
	d := NewDriver(engine.New(engine.Policy{}), rec)
	events, _, err := ParseStream(strings.NewReader(loginStream))
	require.NoError(t, err)
	for _, ev := range events {
		require.NoError(t, d.Handle(ev))
	}
	require.NoError(t, d.Close())

	assert.Equal(t, []notify.Verb{notify.VerbStart, notify.VerbFinish}, rec.Verbs("login:3/4"))
	assert.Equal(t, []notify.Verb{notify.VerbIgnore}, rec.Verbs("login:3/5"))
	assert.Empty(t, rec.For("login:3"))
	assert.Equal(t, "When they log in", rec.For("login:3/5")[0].Description.Name)
	assert.Equal(t, "login:3", rec.For("login:3/5")[0].Description.Parent)

	st := d.Stats()
	assert.Equal(t, 1, st.Scenarios)
	assert.Zero(t, st.FailedScenarios)
	assert.Equal(t, 2, st.Steps)
	assert.Equal(t, 1, st.Hooks)
	assert.Equal(t, 1, st.StepOutcomes[outcome.Undefined])
}

func TestDriver_LoginStreamStrict(t *testing.T) {
	t.Parallel()

	rec := notify.NewRecorder()
	d := NewDriver(engine.New(engine.Policy{Strict: true}), rec)
	events, _, err := ParseStream(strings.NewReader(loginStream))
	require.NoError(t, err)
	for _, ev := range events {
		require.NoError(t, d.Handle(ev))
	}

	assert.Equal(t, []notify.Verb{notify.VerbStart, notify.VerbFail, notify.VerbFinish}, rec.Verbs("login:3/5"))
	assert.Equal(t, []notify.Verb{notify.VerbFail}, rec.Verbs("login:3"))
	assert.Equal(t, 1, d.Stats().FailedScenarios)
}

func TestDriver_OutOfOrderEvents(t *testing.T) {
	t.Parallel()

	rec := notify.NewRecorder()
	d := NewDriver(engine.New(engine.Policy{}), rec)

	err := d.Handle(Event{Action: ActionStepResult, Scenario: "a", Status: "passed"})
	assert.ErrorContains(t, err, "outside an open scenario")

	require.NoError(t, d.Handle(Event{Action: ActionScenarioStart, Scenario: "a"}))
	err = d.Handle(Event{Action: ActionHookResult, Scenario: "b", Status: "failed"})
	assert.ErrorContains(t, err, `while "a" is open`)

	err = d.Handle(Event{Action: ActionStepStart, Scenario: "a"})
	assert.ErrorContains(t, err, "without Step")

	err = d.Handle(Event{Action: ActionStepResult, Scenario: "a", Status: "bogus"})
	assert.ErrorContains(t, err, "unknown status")

	err = d.Handle(Event{Action: "explode", Scenario: "a"})
	assert.ErrorContains(t, err, "unknown action")

	err = d.Handle(Event{Action: ActionScenarioStart, Scenario: "b"})
	assert.ErrorContains(t, err, `started before "a" finished`)

	err = d.Close()
	assert.ErrorContains(t, err, `"b" never finished`)
	assert.Equal(t, 2, d.Stats().Scenarios)
	assert.Empty(t, rec.Calls)
}

func TestDriver_ScenarioStartWithoutIDRejected(t *testing.T) {
	t.Parallel()

	rec := notify.NewRecorder()
	d := NewDriver(engine.New(engine.Policy{}), rec)

	err := d.Handle(Event{Action: ActionScenarioStart})
	assert.ErrorContains(t, err, "without Scenario")

	// Nothing was opened, so the rest of the scenario is rejected too.
	for _, ev := range []Event{
		{Action: ActionStepStart, Step: "s1"},
		{Action: ActionStepResult, Step: "s1", Status: "passed"},
		{Action: ActionScenarioFinish},
	} {
		assert.ErrorContains(t, d.Handle(ev), "outside an open scenario")
	}
	require.NoError(t, d.Close())
	assert.Equal(t, 0, d.Stats().Scenarios)
	assert.Empty(t, rec.Calls)
}

func TestDriver_FailedHookFailsScenario(t *testing.T) {
	t.Parallel()

	rec := notify.NewRecorder()
	d := NewDriver(engine.New(engine.Policy{}), rec)
	for _, ev := range []Event{
		{Action: ActionScenarioStart, Scenario: "s"},
		{Action: ActionHookResult, Scenario: "s", Hook: "after", Status: "pending"},
		{Action: ActionHookResult, Scenario: "s", Hook: "after", Status: "failed", Error: "teardown"},
		{Action: ActionScenarioFinish, Scenario: "s"},
	} {
		require.NoError(t, d.Handle(ev))
	}

	calls := rec.For("s")
	require.Len(t, calls, 1)
	assert.Equal(t, notify.VerbFail, calls[0].Verb)
	assert.EqualError(t, calls[0].Cause, "teardown")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate([]byte(`{"Action":"step-result","Scenario":"s","Step":"1","Status":"passed"}`)))

	assert.Error(t, Validate([]byte(`{"Action":"step-result","Scenario":"s"}`)), "result without Status")
	assert.Error(t, Validate([]byte(`{"Action":"step-start","Scenario":"s"}`)), "step-start without Step")
	assert.Error(t, Validate([]byte(`{"Action":"dance","Scenario":"s"}`)))
	assert.Error(t, Validate([]byte(`{"Action":"scenario-start"}`)))
	assert.Error(t, Validate([]byte(`not json`)))
}

func TestValidateStream_ReportsLineNumbers(t *testing.T) {
	t.Parallel()

	input := `{"Action":"scenario-start","Scenario":"s"}` + "\n\n" +
		`{"Action":"step-result","Scenario":"s","Status":"weird"}` + "\n"

	problems, err := ValidateStream(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, 3, problems[0].Line)
	assert.True(t, strings.HasPrefix(problems[0].Error(), "line 3: "))

	var le *LineError
	assert.True(t, errors.As(problems[0], &le))
}
