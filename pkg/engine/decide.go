package engine

import (
	"fmt"

	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/outcome"
)

// Target selects the notifier a command acts on.
type Target int

const (
	TargetStep Target = iota
	TargetScenario
)

func (t Target) String() string {
	if t == TargetScenario {
		return "scenario"
	}
	return "step"
}

// Command is one notification to issue.
type Command struct {
	Target Target
	Verb   notify.Verb
	Cause  error
	// Assumption marks a fail whose cause is a violated assumption.
	Assumption bool
}

func (c Command) String() string {
	if c.Cause == nil {
		return fmt.Sprintf("%s.%s", c.Target, c.Verb)
	}
	return fmt.Sprintf("%s.%s(%v)", c.Target, c.Verb, c.Cause)
}

// Input is everything a routing decision depends on.
type Input struct {
	Outcome        outcome.Outcome
	Origin         Origin
	Policy         Policy
	ScenarioFailed bool
	StepActive     bool
	// StepOpen reports that the active step was already started, which
	// only happens through an eager start under AllowStartedIgnored.
	StepOpen bool
}

// Decision is the ordered notification list plus state updates for one
// outcome.
type Decision struct {
	Commands           []Command
	MarkScenarioFailed bool
	DeferIgnore        bool
}

// Decide routes one outcome. Within a decision a step's finish, when
// present, is always its last command.
func Decide(in Input) Decision {
	if in.Origin == OriginHook {
		return decideHook(in)
	}
	d := decideStep(in)
	if in.StepActive && in.StepOpen && !finishesStep(d.Commands) {
		d.Commands = append(d.Commands, Command{Target: TargetStep, Verb: notify.VerbFinish})
	}
	return d
}

func finishesStep(cmds []Command) bool {
	for _, c := range cmds {
		if c.Target == TargetStep && c.Verb == notify.VerbFinish {
			return true
		}
	}
	return false
}

func decideStep(in Input) Decision {
	o := in.Outcome
	var d Decision

	switch o.Kind {
	case outcome.Passed:
		if in.StepActive {
			d.Commands = append(startStep(in), Command{Target: TargetStep, Verb: notify.VerbFinish})
		}

	case outcome.Failed:
		target := TargetScenario
		if in.StepActive {
			target = TargetStep
		}
		d.Commands = []Command{{Target: target, Verb: notify.VerbFail, Cause: o.Cause}}
		d.MarkScenarioFailed = true

	case outcome.Skipped:
		if in.StepActive {
			d.Commands = []Command{{Target: TargetStep, Verb: notify.VerbIgnore}}
		}

	case outcome.Undefined, outcome.Pending, outcome.AssumptionViolated:
		if !in.Policy.Strict {
			if in.StepActive {
				d.Commands = []Command{{Target: TargetStep, Verb: notify.VerbIgnore}}
			} else if !in.ScenarioFailed {
				// Nothing to ignore at step level; let the scenario carry it.
				d.DeferIgnore = true
			}
			return d
		}

		cause, assumption := strictCause(o)
		if in.StepActive {
			d.Commands = append(startStep(in),
				Command{Target: TargetStep, Verb: notify.VerbFail, Cause: cause, Assumption: assumption})
		}
		d.Commands = append(d.Commands,
			Command{Target: TargetScenario, Verb: notify.VerbFail, Cause: cause, Assumption: assumption})
		if in.StepActive {
			d.Commands = append(d.Commands, Command{Target: TargetStep, Verb: notify.VerbFinish})
		}
		d.MarkScenarioFailed = true
	}

	return d
}

// startStep returns the step start, or nothing when the step is already open.
func startStep(in Input) []Command {
	if in.StepOpen {
		return nil
	}
	return []Command{{Target: TargetStep, Verb: notify.VerbStart}}
}

func decideHook(in Input) Decision {
	o := in.Outcome
	var d Decision

	switch o.Kind {
	case outcome.Failed:
		d.Commands = []Command{{Target: TargetScenario, Verb: notify.VerbFail, Cause: o.Cause}}
		d.MarkScenarioFailed = true

	case outcome.Undefined, outcome.Pending, outcome.AssumptionViolated:
		if !in.Policy.Strict {
			d.DeferIgnore = !in.ScenarioFailed
			return d
		}
		cause, assumption := strictCause(o)
		d.Commands = []Command{{Target: TargetScenario, Verb: notify.VerbFail, Cause: cause, Assumption: assumption}}
		d.MarkScenarioFailed = true

	case outcome.Passed, outcome.Skipped:
	}

	return d
}

// strictCause picks the cause reported when strict mode fails a soft
// outcome. Undefined outcomes carry none, so a pending cause is synthesised.
func strictCause(o outcome.Outcome) (error, bool) {
	switch {
	case o.Kind == outcome.AssumptionViolated:
		if o.Cause == nil {
			return &outcome.AssumptionError{}, true
		}
		return o.Cause, true
	case o.Cause != nil:
		return o.Cause, false
	default:
		return outcome.NewPending(), false
	}
}

// DecideClose returns the commands issued when a unit closes. A deferred
// ignore reaches the scenario only if nothing failed it; a scenario still
// open from an eager start gets its terminal finish.
func DecideClose(scenarioFailed, deferredIgnore, scenarioOpen bool) []Command {
	var cmds []Command
	if deferredIgnore && !scenarioFailed {
		cmds = append(cmds, Command{Target: TargetScenario, Verb: notify.VerbIgnore})
	}
	if scenarioOpen {
		cmds = append(cmds, Command{Target: TargetScenario, Verb: notify.VerbFinish})
	}
	return cmds
}
