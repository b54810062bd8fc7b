// Package outcome classifies raw step and hook results reported by a
// behavior-driven runner into the closed set of outcomes the notification
// engine routes on.
package outcome

import (
	"errors"
	"fmt"
)

// Kind identifies an outcome variant.
type Kind int

const (
	Passed Kind = iota
	Failed
	Undefined
	Pending
	AssumptionViolated
	Skipped
)

var kindNames = [...]string{
	Passed:             "passed",
	Failed:             "failed",
	Undefined:          "undefined",
	Pending:            "pending",
	AssumptionViolated: "assumption-violated",
	Skipped:            "skipped",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Outcome is the immutable classification of one step or hook result.
// Cause is carried through untouched; only Failed, Pending and
// AssumptionViolated carry one.
type Outcome struct {
	Kind  Kind
	Cause error
}

func (o Outcome) String() string {
	if o.Cause == nil {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s(%v)", o.Kind, o.Cause)
}

// NewPassed returns a Passed outcome.
func NewPassed() Outcome { return Outcome{Kind: Passed} }

// NewFailed returns a Failed outcome carrying cause.
func NewFailed(cause error) Outcome { return Outcome{Kind: Failed, Cause: cause} }

// NewUndefined returns an Undefined outcome.
func NewUndefined() Outcome { return Outcome{Kind: Undefined} }

// NewPendingOutcome returns a Pending outcome carrying cause.
func NewPendingOutcome(cause error) Outcome { return Outcome{Kind: Pending, Cause: cause} }

// NewAssumptionViolated returns an AssumptionViolated outcome carrying cause.
func NewAssumptionViolated(cause error) Outcome {
	return Outcome{Kind: AssumptionViolated, Cause: cause}
}

// NewSkipped returns a Skipped outcome.
func NewSkipped() Outcome { return Outcome{Kind: Skipped} }

// IsSoft reports whether the outcome is one strict mode promotes to a
// failure: undefined, pending or assumption-violated.
func (o Outcome) IsSoft() bool {
	switch o.Kind {
	case Undefined, Pending, AssumptionViolated:
		return true
	default:
		return false
	}
}

// Result is a raw result as reported by the runner.
type Result struct {
	Status Status
	Err    error
}

// Classify maps a raw result onto an Outcome. Rules are applied in order:
// assumption cause, pending cause, undefined tag, any other cause, passed
// tag, skipped/ambiguous tag.
func Classify(r Result) Outcome {
	var assumption *AssumptionError
	if errors.As(r.Err, &assumption) {
		return NewAssumptionViolated(r.Err)
	}
	var pending *PendingError
	if errors.As(r.Err, &pending) {
		return NewPendingOutcome(r.Err)
	}
	if r.Status == StatusUndefined {
		return NewUndefined()
	}
	if r.Err != nil {
		return NewFailed(r.Err)
	}

	switch r.Status {
	case StatusPassed:
		return NewPassed()
	case StatusSkipped, StatusAmbiguous:
		return NewSkipped()
	case StatusPending:
		return NewPendingOutcome(NewPending())
	default:
		return NewFailed(errors.New("step failed"))
	}
}
