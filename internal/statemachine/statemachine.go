// Package statemachine implements the profiling connection lifecycle: a
// single atomic state with a guarded transition table, modeled the same
// way the teacher's per-tag I/O state machine (internal/queue.TagState)
// guards kernel/user ownership of a queue slot with compare-and-swap.
package statemachine

import (
	"fmt"
	"sync/atomic"
)

// State is one point in the profiling connection lifecycle.
type State uint32

const (
	// Uninitialised is the state before the service has ever been
	// configured.
	Uninitialised State = iota
	// NotConnected means the service is initialised but holds no
	// connection to a monitor.
	NotConnected
	// WaitingForAck means a connection exists and the stream-metadata
	// packet has been sent, but the monitor has not yet acknowledged.
	WaitingForAck
	// Active means the monitor has acknowledged and the connection is
	// fully live.
	Active
)

func (s State) String() string {
	switch s {
	case Uninitialised:
		return "Uninitialised"
	case NotConnected:
		return "NotConnected"
	case WaitingForAck:
		return "WaitingForAck"
	case Active:
		return "Active"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// legalPredecessors maps each target state to the set of states a
// transition into it may originate from.
var legalPredecessors = map[State]map[State]bool{
	Uninitialised: {Uninitialised: true},
	NotConnected:  {Uninitialised: true, NotConnected: true, Active: true},
	WaitingForAck: {NotConnected: true, WaitingForAck: true},
	Active:        {WaitingForAck: true, Active: true},
}

// InvalidTransitionError reports an attempted transition that the table in
// §4.1 does not permit.
type InvalidTransitionError struct {
	From, To State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("statemachine: invalid transition %s -> %s", e.From, e.To)
}

// StateMachine holds one atomic State with a legal-transition guard.
type StateMachine struct {
	state atomic.Uint32
}

// New returns a StateMachine starting in Uninitialised.
func New() *StateMachine {
	return &StateMachine{}
}

// Get returns the current state.
func (m *StateMachine) Get() State {
	return State(m.state.Load())
}

// TransitionTo moves the machine to target. It performs a single
// compare-and-swap per attempt; when the CAS loses to a concurrent
// transition it re-reads the state and tries again. It succeeds at once if
// the state already equals target, and fails as soon as the observed state
// is not a legal predecessor of target.
func (m *StateMachine) TransitionTo(target State) error {
	allowed, ok := legalPredecessors[target]
	if !ok {
		return &InvalidTransitionError{From: m.Get(), To: target}
	}

	for {
		current := State(m.state.Load())
		if current == target {
			// A concurrent transition to the same target already
			// landed; treat as success per §4.1.
			return nil
		}
		if !allowed[current] {
			return &InvalidTransitionError{From: current, To: target}
		}
		if m.state.CompareAndSwap(uint32(current), uint32(target)) {
			return nil
		}
		// Spurious observation: another goroutine moved the state
		// since we loaded it. Retry from a fresh read.
	}
}

// Reset forces the state to Uninitialised. The caller is responsible for
// only invoking this from a quiescent configuration (no running workers);
// the state machine itself has no way to observe worker liveness.
func (m *StateMachine) Reset() {
	m.state.Store(uint32(Uninitialised))
}
