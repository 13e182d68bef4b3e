// Package directory implements the counter directory (categories, devices,
// counter sets, counters), the dense counter value store, and the
// backend/local counter-id map. It is the profiling-side analog of the
// teacher's UAPI structs: small, fixed-shape records with well-defined
// invariants, registered once and looked up often.
package directory

import "github.com/ARM-software/armnn-sub019/internal/guid"

// Category groups a set of counters, optionally scoped to one device or
// counter set.
type Category struct {
	Name          string
	UID           guid.Guid
	CounterUIDs   []uint16
	DeviceUID     *guid.Guid
	CounterSetUID *guid.Guid
}

// Device describes a piece of hardware (e.g. a CPU cluster) that owns
// counters.
type Device struct {
	Name  string
	UID   guid.Guid
	Cores uint16
}

// CounterSet describes a named group of identical counter instances (e.g.
// one instance per core).
type CounterSet struct {
	Name  string
	UID   guid.Guid
	Count uint16
}

// Counter is one registered telemetry counter.
type Counter struct {
	UID             uint16
	MaxUID          uint16 // uid + cores - 1 for multi-core counters
	ParentCategory  string
	Class           uint16
	Interpolation   uint16
	Multiplier      float64
	Name            string
	Description     string
	Units           *string
	Cores           *uint16
	DeviceUID       *guid.Guid
	CounterSetUID   *guid.Guid
	BackendID       string
}
