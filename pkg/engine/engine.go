package engine

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkoosis/stepnotify/pkg/notify"
)

// DescriptionProvider supplies the host descriptions for one scenario and
// its steps. Building human-readable names is the provider's business.
type DescriptionProvider interface {
	ScenarioDescription() notify.Description
	StepDescription(stepID string) notify.Description
}

// Engine opens execution units under a fixed policy.
type Engine struct {
	policy Policy
	log    *zap.Logger
	newID  func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for the decision trace.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithIDFunc overrides unit id generation.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New returns an engine applying policy to every unit it opens.
func New(policy Policy, opts ...Option) *Engine {
	e := &Engine{
		policy: policy,
		log:    zap.NewNop(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy { return e.policy }

// StartExecutionUnit opens a unit for one scenario bound to sink. Under
// AllowStartedIgnored the scenario's start is emitted here.
func (e *Engine) StartExecutionUnit(provider DescriptionProvider, sink notify.Sink) *ExecutionUnit {
	if provider == nil {
		panic("engine: StartExecutionUnit with nil DescriptionProvider")
	}
	if sink == nil {
		panic("engine: StartExecutionUnit with nil Sink")
	}

	id := e.newID()
	u := &ExecutionUnit{
		id:       id,
		policy:   e.policy,
		provider: provider,
		scenario: notify.NewUnitNotifier(provider.ScenarioDescription(), sink),
		sink:     sink,
		log:      e.log.With(zap.String("unit", id)),
	}
	u.log.Debug("unit started",
		zap.Stringer("scenario", u.scenario.Description()),
		zap.Stringer("policy", e.policy))

	if e.policy.AllowStartedIgnored {
		u.scenario.Start()
	}
	return u
}
