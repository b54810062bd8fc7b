package notify

// UnitNotifier wraps a Sink for a single description. Start, Finish and
// Ignore reach the sink at most once each; Ignore is dropped once the
// description has failed.
type UnitNotifier struct {
	desc Description
	sink Sink

	started  bool
	finished bool
	failed   bool
	ignored  bool
}

// NewUnitNotifier binds a notifier to desc. The sink is not owned.
func NewUnitNotifier(desc Description, sink Sink) *UnitNotifier {
	return &UnitNotifier{desc: desc, sink: sink}
}

// Description returns the bound description.
func (n *UnitNotifier) Description() Description { return n.desc }

// Start emits start unless the description was already started.
// Reports whether a call reached the sink.
func (n *UnitNotifier) Start() bool {
	if n.started {
		return false
	}
	n.started = true
	n.sink.Start(n.desc)
	return true
}

// Finish emits finish once.
func (n *UnitNotifier) Finish() bool {
	if n.finished {
		return false
	}
	n.finished = true
	n.sink.Finish(n.desc)
	return true
}

// Fail forwards cause. Every failure reaches the sink.
func (n *UnitNotifier) Fail(cause error) {
	n.failed = true
	n.sink.Fail(n.desc, cause)
}

// FailAssumption reports a violated assumption. The host protocol has no
// separate verb, so the cause travels through Fail as-is.
func (n *UnitNotifier) FailAssumption(cause error) {
	n.Fail(cause)
}

// Ignore emits ignore once, and never after a failure.
func (n *UnitNotifier) Ignore() bool {
	if n.ignored || n.failed {
		return false
	}
	n.ignored = true
	n.sink.Ignore(n.desc)
	return true
}

// Started reports whether start reached the sink.
func (n *UnitNotifier) Started() bool { return n.started }

// Finished reports whether finish reached the sink.
func (n *UnitNotifier) Finished() bool { return n.finished }

// Failed reports whether any failure was forwarded.
func (n *UnitNotifier) Failed() bool { return n.failed }

// Ignored reports whether ignore reached the sink.
func (n *UnitNotifier) Ignored() bool { return n.ignored }

// Open reports whether the description is started and awaiting its finish.
func (n *UnitNotifier) Open() bool { return n.started && !n.finished }
