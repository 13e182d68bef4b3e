// Package counterwire encodes the three counter-facing packet kinds that
// flow over the control connection: stream metadata (sent once, on
// connect), the counter directory dump, and periodic counter capture
// samples. Each Encode* function appends fields one by one to a fresh
// byte slice and returns it, rather than building an intermediate
// structure, matching the teacher's field-by-field marshal style in
// internal/uapi.
package counterwire

import (
	"math"

	"github.com/ARM-software/armnn-sub019/internal/directory"
	"github.com/ARM-software/armnn-sub019/internal/wire"
)

// Packet class IDs within family 0 (control).
const (
	FamilyControl = 0

	ClassStreamMetadata   = 0
	ClassCounterDirectory = 2
	ClassPeriodicCapture  = 3
)

const wireVersion uint32 = 1

// EncodeStreamMetadata builds the handshake packet sent immediately after
// a connection is accepted: wire version, process id, the software/
// hardware identification strings, a monotonic-clock epoch (nanoseconds,
// from an arbitrary but fixed reference point a monitor can use to
// correlate this connection's later timestamps against wall time), and
// the set of packet ids this connection's dispatcher accepts.
func EncodeStreamMetadata(pid uint32, packageName, softwareInfo, hardwareVersion string, monotonicEpochNs uint64, supportedPacketIDs []uint8) []byte {
	buf := make([]byte, 0, 64+len(supportedPacketIDs))
	buf = wire.PutUint32(buf, wireVersion)
	buf = wire.PutUint32(buf, pid)
	buf = wire.PutString(buf, packageName)
	buf = wire.PutString(buf, softwareInfo)
	buf = wire.PutString(buf, hardwareVersion)
	buf = wire.PutUint64(buf, monotonicEpochNs)
	buf = wire.PutUint16(buf, uint16(len(supportedPacketIDs)))
	buf = append(buf, supportedPacketIDs...)
	return buf
}

// EncodeCounterDirectory serializes a full directory snapshot: counts of
// each entity kind followed by each entity's fields, in the order
// categories, devices, counter sets, counters.
func EncodeCounterDirectory(snap directory.Snapshot) []byte {
	buf := make([]byte, 0, 256)

	buf = wire.PutUint16(buf, uint16(len(snap.Categories)))
	for _, c := range snap.Categories {
		buf = wire.PutUint64(buf, uint64(c.UID))
		buf = wire.PutUint16(buf, uint16(len(c.CounterUIDs)))
		for _, uid := range c.CounterUIDs {
			buf = wire.PutUint16(buf, uid)
		}
		buf = wire.PutString(buf, c.Name)
	}

	buf = wire.PutUint16(buf, uint16(len(snap.Devices)))
	for _, d := range snap.Devices {
		buf = wire.PutUint64(buf, uint64(d.UID))
		buf = wire.PutUint16(buf, d.Cores)
		buf = wire.PutString(buf, d.Name)
	}

	buf = wire.PutUint16(buf, uint16(len(snap.CounterSets)))
	for _, cs := range snap.CounterSets {
		buf = wire.PutUint64(buf, uint64(cs.UID))
		buf = wire.PutUint16(buf, cs.Count)
		buf = wire.PutString(buf, cs.Name)
	}

	buf = wire.PutUint16(buf, uint16(len(snap.Counters)))
	for _, ctr := range snap.Counters {
		buf = wire.PutUint16(buf, ctr.UID)
		buf = wire.PutUint16(buf, ctr.MaxUID)
		buf = wire.PutUint16(buf, ctr.Class)
		buf = wire.PutUint16(buf, ctr.Interpolation)
		buf = wire.PutUint64(buf, math.Float64bits(ctr.Multiplier))
		buf = wire.PutString(buf, ctr.Name)
		buf = wire.PutString(buf, ctr.Description)
		buf = wire.PutString(buf, derefString(ctr.Units))
		buf = wire.PutString(buf, ctr.ParentCategory)
	}

	return buf
}

// CounterSample is one (uid, value) reading in a periodic capture packet.
type CounterSample struct {
	UID   uint16
	Value uint32
}

// EncodePeriodicCapture serializes {timestamp_us: u64, [{uid, value}]}.
func EncodePeriodicCapture(timestampUs uint64, samples []CounterSample) []byte {
	buf := make([]byte, 0, 8+4+len(samples)*6)
	buf = wire.PutUint64(buf, timestampUs)
	buf = wire.PutUint32(buf, uint32(len(samples)))
	for _, s := range samples {
		buf = wire.PutUint16(buf, s.UID)
		buf = wire.PutUint32(buf, s.Value)
	}
	return buf
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
