// Package runnerjson parses the NDJSON event stream a behavior-driven
// runner emits and drives the notification engine from it.
package runnerjson

import (
	"errors"
	"strings"
	"time"

	"github.com/dkoosis/stepnotify/pkg/outcome"
)

// Event actions.
const (
	ActionScenarioStart  = "scenario-start"
	ActionStepStart      = "step-start"
	ActionStepResult     = "step-result"
	ActionHookResult     = "hook-result"
	ActionScenarioFinish = "scenario-finish"
)

// Error kinds carried next to a failure message.
const (
	ErrorKindPending    = "pending"
	ErrorKindAssumption = "assumption"
)

// Event is a single line of runner output.
type Event struct {
	Time         time.Time `json:"Time"`
	Action       string    `json:"Action"`
	Scenario     string    `json:"Scenario"`
	ScenarioName string    `json:"ScenarioName,omitempty"`
	Step         string    `json:"Step,omitempty"`
	StepName     string    `json:"StepName,omitempty"`
	Hook         string    `json:"Hook,omitempty"` // before, after, before-step, after-step
	Status       string    `json:"Status,omitempty"`
	Error        string    `json:"Error,omitempty"`
	ErrorKind    string    `json:"ErrorKind,omitempty"`
}

// Result converts the event's status and error fields into a raw result.
// A pending status with a message but no kind is taken as a pending cause.
func (e Event) Result() (outcome.Result, error) {
	st, err := outcome.ParseStatus(e.Status)
	if err != nil {
		return outcome.Result{}, err
	}

	var cause error
	switch strings.ToLower(e.ErrorKind) {
	case ErrorKindPending:
		cause = &outcome.PendingError{Message: e.Error}
	case ErrorKindAssumption:
		cause = &outcome.AssumptionError{Message: e.Error}
	default:
		switch {
		case e.Error == "":
		case st == outcome.StatusPending:
			cause = &outcome.PendingError{Message: e.Error}
		default:
			cause = errors.New(e.Error)
		}
	}
	return outcome.Result{Status: st, Err: cause}, nil
}

// Outcome classifies the event's result.
func (e Event) Outcome() (outcome.Outcome, error) {
	r, err := e.Result()
	if err != nil {
		return outcome.Outcome{}, err
	}
	return outcome.Classify(r), nil
}
