package engine

import "github.com/dkoosis/stepnotify/pkg/notify"

// StaticProvider serves descriptions from fixed values. Steps missing from
// the map get an id nested under the scenario's.
type StaticProvider struct {
	Scenario notify.Description
	Steps    map[string]notify.Description
}

func (p StaticProvider) ScenarioDescription() notify.Description { return p.Scenario }

func (p StaticProvider) StepDescription(stepID string) notify.Description {
	if d, ok := p.Steps[stepID]; ok {
		return d
	}
	return notify.Description{ID: p.Scenario.ID + "/" + stepID, Name: stepID, Parent: p.Scenario.ID}
}
