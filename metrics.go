package profiling

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the send-latency histogram buckets in
// nanoseconds, covering 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
}

const numLatencyBuckets = 8

// Metrics tracks pipeline-level operational statistics: packets and
// bytes moved, buffer exhaustion events, and error counts (RecordSend
// counts failed sends in DispatchErrors). Adapted from the teacher's I/O metrics struct, substituting
// packet/buffer concerns for block-I/O concerns.
type Metrics struct {
	PacketsSent atomic.Uint64
	BytesSent   atomic.Uint64

	BufferExhaustions atomic.Uint64
	DispatchErrors    atomic.Uint64
	UnknownPackets    atomic.Uint64

	ConnectionsAccepted atomic.Uint64

	TotalSendLatencyNs atomic.Uint64
	SendCount          atomic.Uint64

	SendLatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordSend records one packet send, successful or not.
func (m *Metrics) RecordSend(bytes uint64, latencyNs uint64, success bool) {
	if success {
		m.PacketsSent.Add(1)
		m.BytesSent.Add(bytes)
	} else {
		m.DispatchErrors.Add(1)
	}
	m.TotalSendLatencyNs.Add(latencyNs)
	m.SendCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.SendLatencyBuckets[i].Add(1)
		}
	}
}

// RecordBufferExhaustion records a reserve that found no free buffer.
func (m *Metrics) RecordBufferExhaustion() {
	m.BufferExhaustions.Add(1)
}

// RecordUnknownPacket records a dispatch miss.
func (m *Metrics) RecordUnknownPacket() {
	m.UnknownPackets.Add(1)
}

// RecordConnectionAccepted records a new connection being accepted.
func (m *Metrics) RecordConnectionAccepted() {
	m.ConnectionsAccepted.Add(1)
}

// Stop marks the pipeline as stopped, fixing the denominator used by
// Snapshot's rate calculations.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time, plain-value copy of Metrics.
type MetricsSnapshot struct {
	PacketsSent uint64
	BytesSent   uint64

	BufferExhaustions uint64
	DispatchErrors    uint64
	UnknownPackets    uint64

	ConnectionsAccepted uint64

	AvgSendLatencyNs uint64
	SendLatencyP50Ns uint64
	SendLatencyP99Ns uint64

	SendLatencyHistogram [numLatencyBuckets]uint64

	UptimeNs         uint64
	PacketsPerSecond float64
	BytesPerSecond   float64
}

// Snapshot copies out the current metrics and derives rates/percentiles.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		PacketsSent:         m.PacketsSent.Load(),
		BytesSent:           m.BytesSent.Load(),
		BufferExhaustions:   m.BufferExhaustions.Load(),
		DispatchErrors:      m.DispatchErrors.Load(),
		UnknownPackets:      m.UnknownPackets.Load(),
		ConnectionsAccepted: m.ConnectionsAccepted.Load(),
	}

	sendCount := m.SendCount.Load()
	if sendCount > 0 {
		snap.AvgSendLatencyNs = m.TotalSendLatencyNs.Load() / sendCount
		snap.SendLatencyP50Ns = m.percentile(0.50)
		snap.SendLatencyP99Ns = m.percentile(0.99)
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}
	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.PacketsPerSecond = float64(snap.PacketsSent) / uptimeSeconds
		snap.BytesPerSecond = float64(snap.BytesSent) / uptimeSeconds
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.SendLatencyHistogram[i] = m.SendLatencyBuckets[i].Load()
	}

	return snap
}

// percentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) percentile(p float64) uint64 {
	total := m.SendCount.Load()
	if total == 0 {
		return 0
	}
	target := uint64(float64(total) * p)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		count := m.SendLatencyBuckets[i].Load()
		if count >= target {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.SendLatencyBuckets[i-1].Load()
			}
			if count == prevCount {
				return bucket
			}
			fraction := float64(target-prevCount) / float64(count-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}
	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset zeroes all counters and restarts the uptime clock.
func (m *Metrics) Reset() {
	m.PacketsSent.Store(0)
	m.BytesSent.Store(0)
	m.BufferExhaustions.Store(0)
	m.DispatchErrors.Store(0)
	m.UnknownPackets.Store(0)
	m.ConnectionsAccepted.Store(0)
	m.TotalSendLatencyNs.Store(0)
	m.SendCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.SendLatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}
