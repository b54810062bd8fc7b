package runnerjson

import (
	"fmt"

	"github.com/dkoosis/stepnotify/pkg/engine"
	"github.com/dkoosis/stepnotify/pkg/notify"
	"github.com/dkoosis/stepnotify/pkg/outcome"
)

// Driver feeds runner events into an engine, one execution unit per
// scenario. Units are driven strictly one at a time.
type Driver struct {
	engine *engine.Engine
	sink   notify.Sink

	unit     *engine.ExecutionUnit
	provider *eventProvider
	stats    Stats
}

// NewDriver returns a driver that opens units on e bound to sink.
func NewDriver(e *engine.Engine, sink notify.Sink) *Driver {
	return &Driver{engine: e, sink: sink, stats: newStats()}
}

// Handle applies one event. Events that do not fit the current unit are
// reported as errors and never reach the engine, except that a scenario
// started while another is open closes the open one first.
func (d *Driver) Handle(ev Event) error {
	switch ev.Action {
	case ActionScenarioStart:
		if ev.Scenario == "" {
			return fmt.Errorf("%s without Scenario", ev.Action)
		}
		var err error
		if d.unit != nil {
			err = fmt.Errorf("scenario %q started before %q finished", ev.Scenario, d.provider.scenario.ID)
			d.finish()
		}
		d.open(ev)
		return err

	case ActionStepStart:
		if err := d.requireUnit(ev); err != nil {
			return err
		}
		if ev.Step == "" {
			return fmt.Errorf("%s without Step in scenario %q", ev.Action, ev.Scenario)
		}
		d.provider.stepNames[ev.Step] = ev.StepName
		d.unit.StepStarted(ev.Step)
		return nil

	case ActionStepResult:
		if err := d.requireUnit(ev); err != nil {
			return err
		}
		o, err := ev.Outcome()
		if err != nil {
			return fmt.Errorf("step %q: %w", ev.Step, err)
		}
		d.unit.StepResult(o)
		d.stats.Steps++
		d.stats.StepOutcomes[o.Kind]++
		return nil

	case ActionHookResult:
		if err := d.requireUnit(ev); err != nil {
			return err
		}
		o, err := ev.Outcome()
		if err != nil {
			return fmt.Errorf("hook %q: %w", ev.Hook, err)
		}
		d.unit.HookResult(o)
		d.stats.Hooks++
		d.stats.HookOutcomes[o.Kind]++
		return nil

	case ActionScenarioFinish:
		if err := d.requireUnit(ev); err != nil {
			return err
		}
		d.finish()
		return nil

	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
}

// Close finishes a unit left open at end of stream. Reports an error if
// one was.
func (d *Driver) Close() error {
	if d.unit == nil {
		return nil
	}
	id := d.provider.scenario.ID
	d.finish()
	return fmt.Errorf("scenario %q never finished", id)
}

// Stats returns counts accumulated so far.
func (d *Driver) Stats() Stats { return d.stats }

func (d *Driver) open(ev Event) {
	name := ev.ScenarioName
	if name == "" {
		name = ev.Scenario
	}
	d.provider = &eventProvider{
		scenario:  notify.Description{ID: ev.Scenario, Name: name},
		stepNames: make(map[string]string),
	}
	d.unit = d.engine.StartExecutionUnit(d.provider, d.sink)
	d.stats.Scenarios++
}

func (d *Driver) finish() {
	d.unit.Finish()
	if d.unit.Failed() {
		d.stats.FailedScenarios++
	}
	d.unit = nil
	d.provider = nil
}

func (d *Driver) requireUnit(ev Event) error {
	if d.unit == nil {
		return fmt.Errorf("%s for scenario %q outside an open scenario", ev.Action, ev.Scenario)
	}
	if ev.Scenario != "" && ev.Scenario != d.provider.scenario.ID {
		return fmt.Errorf("%s for scenario %q while %q is open", ev.Action, ev.Scenario, d.provider.scenario.ID)
	}
	return nil
}

// eventProvider names descriptions from the events seen so far.
type eventProvider struct {
	scenario  notify.Description
	stepNames map[string]string
}

func (p *eventProvider) ScenarioDescription() notify.Description { return p.scenario }

func (p *eventProvider) StepDescription(stepID string) notify.Description {
	name := p.stepNames[stepID]
	if name == "" {
		name = stepID
	}
	return notify.Description{ID: p.scenario.ID + "/" + stepID, Name: name, Parent: p.scenario.ID}
}

// Stats holds counts over a driven stream.
type Stats struct {
	Scenarios       int
	FailedScenarios int
	Steps           int
	Hooks           int
	StepOutcomes    map[outcome.Kind]int
	HookOutcomes    map[outcome.Kind]int
}

func newStats() Stats {
	return Stats{
		StepOutcomes: make(map[outcome.Kind]int),
		HookOutcomes: make(map[outcome.Kind]int),
	}
}
