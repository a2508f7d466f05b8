package workflow

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a candidate transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachine tracks a current state and validates trigger-driven
// transitions against a fixed configuration
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger has at least one configured
	// transition from the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the target state of the first
	// transition whose guard passes
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns the triggers configured for the current
	// state
	PermittedTriggers() []Trigger
}

// Builder assembles a transition table and stamps out machine instances
type Builder interface {
	// Configure returns the configuration for the given source state
	Configure(state State) StateConfig

	// Build creates a machine positioned at the given initial state
	Build(initialState State) StateMachine
}

// StateConfig configures outgoing transitions for one source state
type StateConfig interface {
	// Permit allows trigger to move to toState unconditionally
	Permit(trigger Trigger, toState State) StateConfig

	// PermitIf allows trigger to move to toState when guard passes
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfig
}

type transition struct {
	toState State
	guard   GuardFunc
}

type stateConfig struct {
	fromState   State
	transitions map[Trigger][]transition
}

type builder struct {
	configs map[State]*stateConfig
}

type machine struct {
	current State
	configs map[State]*stateConfig
}

// NewBuilder creates an empty state machine builder
func NewBuilder() Builder {
	return &builder{configs: make(map[State]*stateConfig)}
}

func (b *builder) Configure(state State) StateConfig {
	if !state.IsValid() {
		panic(fmt.Sprintf("workflow: invalid state %q", state))
	}
	cfg, ok := b.configs[state]
	if !ok {
		cfg = &stateConfig{
			fromState:   state,
			transitions: make(map[Trigger][]transition),
		}
		b.configs[state] = cfg
	}
	return cfg
}

// Build stamps out a machine at initialState. The state is not validated
// here; it may come from persisted data, and firing any trigger on an
// invalid state reports ErrInvalidState.
func (b *builder) Build(initialState State) StateMachine {
	// Copy the transition table so later Configure calls cannot mutate a
	// machine already handed out.
	configs := make(map[State]*stateConfig, len(b.configs))
	for state, cfg := range b.configs {
		transitions := make(map[Trigger][]transition, len(cfg.transitions))
		for trigger, ts := range cfg.transitions {
			transitions[trigger] = append([]transition(nil), ts...)
		}
		configs[state] = &stateConfig{fromState: state, transitions: transitions}
	}

	return &machine{current: initialState, configs: configs}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfig {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfig {
	if !toState.IsValid() {
		panic(fmt.Sprintf("workflow: invalid target state %q", toState))
	}
	c.transitions[trigger] = append(c.transitions[trigger], transition{toState: toState, guard: guard})
	return c
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	cfg, ok := m.configs[m.current]
	if !ok {
		return false
	}
	return len(cfg.transitions[trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	if !m.current.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidState, m.current)
	}

	cfg, ok := m.configs[m.current]
	if !ok || len(cfg.transitions[trigger]) == 0 {
		return fmt.Errorf("%w: trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range cfg.transitions[trigger] {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.toState
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.current)
}

func (m *machine) PermittedTriggers() []Trigger {
	cfg, ok := m.configs[m.current]
	if !ok {
		return nil
	}
	triggers := make([]Trigger, 0, len(cfg.transitions))
	for trigger := range cfg.transitions {
		triggers = append(triggers, trigger)
	}
	return triggers
}
