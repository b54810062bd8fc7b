// Package engine routes classified step and hook outcomes of one scenario
// execution onto step-level and scenario-level notifiers.
//
// The routing rules live in Decide and DecideClose, which are pure: they
// map an outcome plus the unit's accumulated state to an ordered list of
// commands. ExecutionUnit applies those commands to its notifiers and
// carries the state between calls.
package engine

import "fmt"

// Policy holds the two switches fixed for the lifetime of a unit.
type Policy struct {
	// Strict turns undefined, pending and assumption-violated outcomes into
	// failures instead of ignores.
	Strict bool
	// AllowStartedIgnored has the scenario and its first step started
	// eagerly, so a later ignore may follow a start. Passed steps then
	// receive only their finish.
	//
	// Without it an ignore stands in for the start/finish pair. With it,
	// an eagerly started step or scenario that is later ignored or failed
	// still receives a finish, so every start is closed.
	AllowStartedIgnored bool
}

func (p Policy) String() string {
	return fmt.Sprintf("strict=%t allow-started-ignored=%t", p.Strict, p.AllowStartedIgnored)
}

// Origin tells whether an outcome came from a step or a surrounding hook.
type Origin int

const (
	OriginStep Origin = iota
	OriginHook
)

func (o Origin) String() string {
	if o == OriginHook {
		return "hook"
	}
	return "step"
}
