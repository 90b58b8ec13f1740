package tracker

import (
	"fmt"
	"sync"
)

// RunState is the tracker's lifecycle state, driven by the GUI.
type RunState int

const (
	StateIdle RunState = iota
	StateActive
	StatePaused
	StateQuitting
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// validTransitions maps each state to the states it may move to.
// Quitting is terminal; self-transitions are rejected.
var validTransitions = map[RunState][]RunState{
	StateIdle:     {StateActive, StateQuitting},
	StateActive:   {StatePaused, StateIdle, StateQuitting},
	StatePaused:   {StateActive, StateIdle, StateQuitting},
	StateQuitting: {},
}

// RunFlag is a shared, validated run-state holder. The GUI transitions
// it and the polling loop observes it; it is never a free-floating
// global.
type RunFlag struct {
	mu    sync.RWMutex
	state RunState
}

// NewRunFlag creates a flag in the idle state.
func NewRunFlag() *RunFlag {
	return &RunFlag{state: StateIdle}
}

// Get returns the current state.
func (f *RunFlag) Get() RunState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Transition moves to a new state, rejecting invalid transitions.
func (f *RunFlag) Transition(to RunState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, allowed := range validTransitions[f.state] {
		if allowed == to {
			f.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid run-state transition %v -> %v", f.state, to)
}
