// Package handlers implements the six inbound command handlers: one file
// per handler, each gating on ProfilingState before doing anything else,
// matching the teacher's internal/ctrl per-opcode method shape
// generalized into dispatch.Handler values.
package handlers

import (
	"github.com/ARM-software/armnn-sub019/internal/statemachine"
)

// ServiceContext is the narrow slice of the orchestrator each handler
// needs. Kept as an interface so this package has no dependency on the
// root package — the root package depends on handlers, not the reverse.
type ServiceContext interface {
	// State returns the current profiling state, for the gating check
	// every handler performs before doing anything else.
	State() statemachine.State

	// HandleConnectionAcknowledged runs the full ack sequence: transition
	// to Active, emit the counter directory, emit the timeline baseline
	// if timeline is enabled, enable profiling on every backend, and
	// signal activation to any waiter.
	HandleConnectionAcknowledged() error

	// SendCounterDirectory encodes and enqueues the full counter directory.
	SendCounterDirectory() error

	// SetPeriodicSelection installs a new capture period and UID
	// selection, starting or stopping the capture worker as needed.
	SetPeriodicSelection(periodUs uint32, uids []uint16) error

	// ActivateTimeline and DeactivateTimeline set/clear the timeline
	// flag, emitting the one-shot baseline on first activation only, and
	// notify backends of the new flag value.
	ActivateTimeline() error
	DeactivateTimeline() error
}
