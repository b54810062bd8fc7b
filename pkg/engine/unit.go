package engine

import (
	"go.uber.org/zap"

	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/outcome"
)

// ExecutionUnit is the state of one scenario execution: its scenario
// notifier, the active step notifier, and the flags accumulated across
// outcomes. It is driven sequentially and never shared between goroutines.
//
// Calling any method after Finish, or on a nil unit, is a programming error
// and panics.
type ExecutionUnit struct {
	id       string
	policy   Policy
	provider DescriptionProvider
	sink     notify.Sink
	log      *zap.Logger

	scenario *notify.UnitNotifier
	step     *notify.UnitNotifier
	steps    int

	scenarioFailed bool
	deferredIgnore bool
	closed         bool
}

// NewExecutionUnit builds a unit directly, without an Engine. No eager
// start is emitted; use Engine.StartExecutionUnit for that.
func NewExecutionUnit(policy Policy, provider DescriptionProvider, sink notify.Sink) *ExecutionUnit {
	return &ExecutionUnit{
		policy:   policy,
		provider: provider,
		sink:     sink,
		log:      zap.NewNop(),
		scenario: notify.NewUnitNotifier(provider.ScenarioDescription(), sink),
	}
}

// ID returns the unit's identifier.
func (u *ExecutionUnit) ID() string { return u.id }

// Policy returns the policy the unit was opened with.
func (u *ExecutionUnit) Policy() Policy { return u.policy }

// Failed reports whether any outcome has failed the scenario.
func (u *ExecutionUnit) Failed() bool { return u.scenarioFailed }

// DeferredIgnore reports whether a soft hook outcome is waiting for close.
func (u *ExecutionUnit) DeferredIgnore() bool { return u.deferredIgnore }

// Closed reports whether Finish has run.
func (u *ExecutionUnit) Closed() bool { return u.closed }

// StepActive reports whether a step notifier is waiting for its result.
func (u *ExecutionUnit) StepActive() bool { return u != nil && u.step != nil }

// StepStarted activates the notifier for stepID. Under AllowStartedIgnored
// the unit's first step is started right away.
func (u *ExecutionUnit) StepStarted(stepID string) {
	u.mustBeOpen("StepStarted")

	if u.step != nil {
		u.log.Debug("step replaced without result", zap.Stringer("step", u.step.Description()))
		if u.step.Open() {
			u.step.Finish()
		}
	}
	u.step = notify.NewUnitNotifier(u.provider.StepDescription(stepID), u.sink)
	if u.policy.AllowStartedIgnored && u.steps == 0 {
		u.step.Start()
	}
	u.steps++
}

// StepResult routes a step outcome and clears the active step.
func (u *ExecutionUnit) StepResult(o outcome.Outcome) {
	u.mustBeOpen("StepResult")
	u.route(o, OriginStep)
	u.step = nil
}

// HookResult routes a hook outcome. Hooks act on the scenario only.
func (u *ExecutionUnit) HookResult(o outcome.Outcome) {
	u.mustBeOpen("HookResult")
	u.route(o, OriginHook)
}

// Finish closes the unit, emitting a deferred ignore if nothing failed the
// scenario. It must be called exactly once.
func (u *ExecutionUnit) Finish() {
	u.mustBeOpen("Finish")

	cmds := DecideClose(u.scenarioFailed, u.deferredIgnore, u.scenario.Open())
	u.apply(cmds)
	u.deferredIgnore = false
	u.step = nil
	u.closed = true

	u.log.Debug("unit finished",
		zap.Bool("failed", u.scenarioFailed),
		zap.Int("steps", u.steps),
		zap.Int("commands", len(cmds)))
}

func (u *ExecutionUnit) route(o outcome.Outcome, origin Origin) {
	d := Decide(Input{
		Outcome:        o,
		Origin:         origin,
		Policy:         u.policy,
		ScenarioFailed: u.scenarioFailed,
		StepActive:     u.step != nil,
		StepOpen:       u.step != nil && u.step.Open(),
	})
	u.apply(d.Commands)
	if d.MarkScenarioFailed {
		u.scenarioFailed = true
	}
	if d.DeferIgnore {
		u.deferredIgnore = true
	}

	if ce := u.log.Check(zap.DebugLevel, "outcome routed"); ce != nil {
		ce.Write(
			zap.Stringer("origin", origin),
			zap.Stringer("outcome", o),
			zap.Int("commands", len(d.Commands)),
			zap.Bool("scenario_failed", u.scenarioFailed),
			zap.Bool("deferred_ignore", u.deferredIgnore))
	}
}

func (u *ExecutionUnit) apply(cmds []Command) {
	for _, c := range cmds {
		n := u.scenario
		if c.Target == TargetStep {
			n = u.step
		}
		if n == nil {
			continue
		}
		switch c.Verb {
		case notify.VerbStart:
			n.Start()
		case notify.VerbFinish:
			n.Finish()
		case notify.VerbIgnore:
			n.Ignore()
		case notify.VerbFail:
			if c.Assumption {
				n.FailAssumption(c.Cause)
			} else {
				n.Fail(c.Cause)
			}
		}
	}
}

func (u *ExecutionUnit) mustBeOpen(op string) {
	if u == nil {
		panic("engine: " + op + " on nil ExecutionUnit; call StartExecutionUnit first")
	}
	if u.closed {
		panic("engine: " + op + " on finished ExecutionUnit")
	}
}
