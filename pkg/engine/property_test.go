package engine

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/outcome"
)

func drawOutcome(t *rapid.T, label string) outcome.Outcome {
	switch rapid.IntRange(0, 5).Draw(t, label) {
	case 0:
		return outcome.NewPassed()
	case 1:
		return outcome.NewFailed(errors.New(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, label+"-msg")))
	case 2:
		return outcome.NewUndefined()
	case 3:
		return outcome.NewPendingOutcome(&outcome.PendingError{Message: "wip"})
	case 4:
		return outcome.NewAssumptionViolated(&outcome.AssumptionError{Message: "env"})
	default:
		return outcome.NewSkipped()
	}
}

// A single step outcome under the default policy: strict steps that are
// soft fail on both notifiers, lax ones are ignored, passed steps
// start+finish and failures fail exactly once.
func TestSingleStepNotificationCountsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		strict := rapid.Bool().Draw(t, "strict")
		o := drawOutcome(t, "outcome")

		rec := notify.NewRecorder()
		u := New(Policy{Strict: strict}).StartExecutionUnit(provider, rec)
		u.StepStarted("s1")
		u.StepResult(o)
		u.Finish()

		starts := rec.Count(notify.VerbStart, step1ID)
		finishes := rec.Count(notify.VerbFinish, step1ID)
		stepFails := rec.Count(notify.VerbFail, step1ID)
		scenarioFails := rec.Count(notify.VerbFail, scenarioID)
		ignores := rec.Count(notify.VerbIgnore, "")

		switch {
		case o.Kind == outcome.Passed:
			expect(t, starts == 1 && finishes == 1 && stepFails+scenarioFails+ignores == 0, "passed", rec)
		case o.Kind == outcome.Failed:
			expect(t, stepFails == 1 && scenarioFails == 0 && starts+finishes+ignores == 0, "failed", rec)
			expect(t, rec.Calls[0].Cause == o.Cause, "failed cause forwarded", rec)
		case o.IsSoft() && strict:
			expect(t, starts == 1 && finishes == 1 && stepFails == 1 && scenarioFails == 1 && ignores == 0, "strict soft", rec)
		case o.IsSoft():
			expect(t, ignores == 1 && starts+finishes+stepFails+scenarioFails == 0, "lax soft", rec)
		default:
			expect(t, ignores == 1 && stepFails+scenarioFails == 0, "skipped", rec)
		}
		expect(t, u.Failed() == (o.Kind == outcome.Failed || (strict && o.IsSoft())), "scenario failed flag", rec)
	})
}

// Over arbitrary interleavings of steps and hooks: the step finish is the
// last call against its description, ignore never follows a fail on the
// same description, and the scenario is ignored at close exactly when a
// lax soft hook ran and nothing failed.
func TestUnitInterleavingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := Policy{
			Strict:              rapid.Bool().Draw(t, "strict"),
			AllowStartedIgnored: rapid.Bool().Draw(t, "allowStartedIgnored"),
		}
		rec := notify.NewRecorder()
		u := New(policy).StartExecutionUnit(provider, rec)

		softHook := false
		n := rapid.IntRange(0, 8).Draw(t, "events")
		for i := 0; i < n; i++ {
			o := drawOutcome(t, "outcome")
			if rapid.Bool().Draw(t, "isHook") {
				u.HookResult(o)
				softHook = softHook || (o.IsSoft() && !policy.Strict)
				continue
			}
			u.StepStarted(string(rune('a' + i)))
			u.StepResult(o)
		}
		failedBeforeClose := u.Failed()
		u.Finish()

		perDesc := map[string][]notify.Verb{}
		for _, c := range rec.Calls {
			id := c.Description.ID
			verbs := perDesc[id]
			if len(verbs) > 0 && verbs[len(verbs)-1] == notify.VerbFinish {
				t.Fatalf("%s: call %s after finish: %v", id, c.Verb, verbs)
			}
			if c.Verb == notify.VerbIgnore {
				for _, v := range verbs {
					if v == notify.VerbFail {
						t.Fatalf("%s: ignore after fail: %v", id, verbs)
					}
				}
			}
			if c.Verb == notify.VerbStart {
				for _, v := range verbs {
					if v == notify.VerbStart {
						t.Fatalf("%s: started twice: %v", id, verbs)
					}
				}
			}
			perDesc[id] = append(verbs, c.Verb)
		}

		scenarioIgnores := rec.Count(notify.VerbIgnore, scenarioID)
		wantIgnore := softHook && !failedBeforeClose
		if wantIgnore != (scenarioIgnores == 1) || scenarioIgnores > 1 {
			t.Fatalf("scenario ignores = %d, want ignore=%t (softHook=%t failed=%t)",
				scenarioIgnores, wantIgnore, softHook, failedBeforeClose)
		}
	})
}

// The decided commands for a step result are exactly the calls the unit
// emits for it, with or without an eager start.
func TestDecisionMatchesEmittedCallsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := Policy{
			Strict:              rapid.Bool().Draw(t, "strict"),
			AllowStartedIgnored: rapid.Bool().Draw(t, "allowStartedIgnored"),
		}
		o := drawOutcome(t, "outcome")
		rec := notify.NewRecorder()
		u := New(policy).StartExecutionUnit(provider, rec)
		u.StepStarted("s1")

		d := Decide(Input{
			Outcome:    o,
			Origin:     OriginStep,
			Policy:     policy,
			StepActive: true,
			StepOpen:   u.step.Open(),
		})
		before := len(rec.Calls)
		u.StepResult(o)

		emitted := rec.Calls[before:]
		if len(emitted) != len(d.Commands) {
			t.Fatalf("decided %v, emitted %+v", d.Commands, emitted)
		}
		for i, c := range d.Commands {
			if emitted[i].Verb != c.Verb {
				t.Fatalf("command %d: decided %s, emitted %s", i, c, emitted[i].Verb)
			}
		}
	})
}

func expect(t *rapid.T, ok bool, what string, rec *notify.Recorder) {
	t.Helper()
	if !ok {
		t.Fatalf("%s: unexpected calls %+v", what, rec.Calls)
	}
}
