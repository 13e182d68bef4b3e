// Package constants collects default tunables for the profiling pipeline.
package constants

import "time"

// Buffer pool defaults.
const (
	// DefaultBufferCount is the default number of buffers in the pool.
	DefaultBufferCount = 10

	// DefaultBufferCapacity is the default capacity of each pooled buffer,
	// in bytes.
	DefaultBufferCapacity = 4096
)

// Counter directory limits.
const (
	// MaxCounterUID is the largest counter UID the directory will accept;
	// the UID space is a 16-bit index.
	MaxCounterUID = 0xFFFF
)

// Capture defaults.
const (
	// DefaultCapturePeriod is used when a monitor has not yet selected a
	// sampling period.
	DefaultCapturePeriod = 10 * time.Millisecond
)

// Wait/timeout defaults.
const (
	// DefaultActivationWaitTimeout bounds
	// WaitForProfilingServiceActivation when the caller passes zero.
	DefaultActivationWaitTimeout = 5 * time.Second

	// DefaultSendWaitTimeout bounds WaitForPacketSent when the caller
	// passes zero.
	DefaultSendWaitTimeout = time.Second

	// StopDrainDelay gives workers a moment to observe cancellation
	// before their owning resources are torn down.
	StopDrainDelay = 10 * time.Millisecond
)
