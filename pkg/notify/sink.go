// Package notify defines the four-verb protocol a test-reporting host
// exposes and the per-description notifier that keeps calls against it
// well-formed.
package notify

import "fmt"

// Description identifies one reportable node in the host's test tree.
type Description struct {
	ID   string
	Name string

	// Parent is the ID of the enclosing scenario; empty for a scenario.
	Parent string
}

func (d Description) String() string {
	if d.Name == "" || d.Name == d.ID {
		return d.ID
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.ID)
}

// Sink is the host's notification protocol. Calls are synchronous and never
// concurrent; thread-safety, if needed, is the host's concern.
type Sink interface {
	Start(d Description)
	Finish(d Description)
	Fail(d Description, cause error)
	Ignore(d Description)
}

// Verb names one of the four sink calls.
type Verb string

const (
	VerbStart  Verb = "start"
	VerbFinish Verb = "finish"
	VerbFail   Verb = "fail"
	VerbIgnore Verb = "ignore"
)

// Tee fans every call out to each sink in order.
type Tee []Sink

func (t Tee) Start(d Description) {
	for _, s := range t {
		s.Start(d)
	}
}

func (t Tee) Finish(d Description) {
	for _, s := range t {
		s.Finish(d)
	}
}

func (t Tee) Fail(d Description, cause error) {
	for _, s := range t {
		s.Fail(d, cause)
	}
}

func (t Tee) Ignore(d Description) {
	for _, s := range t {
		s.Ignore(d)
	}
}
