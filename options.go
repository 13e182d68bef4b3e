package profiling

import (
	"time"

	"github.com/ARM-software/armnn-sub019/internal/constants"
)

// ServiceOptions configures a Service. Mirrors the original profiling
// options set exposed to backends: whether profiling is active at all,
// whether timeline reporting is enabled, where captured packets go, and
// the periodic capture cadence.
type ServiceOptions struct {
	// EnableProfiling turns the whole pipeline on. When false, Service
	// stays in NotConnected/Uninitialised and never starts workers.
	EnableProfiling bool

	// TimelineEnabled starts the service with timeline reporting already
	// on as soon as the connection reaches Active. It does not gate the
	// ActivateTimelineReporting/DeactivateTimelineReporting commands,
	// which a monitor may send at any time once Active regardless of
	// this setting.
	TimelineEnabled bool

	// OutgoingCaptureFile names a file for a copy of every outbound
	// packet. Service itself does not read this field or open the file;
	// NewTeeConnection copies a connection's writes to a writer.
	OutgoingCaptureFile string

	// IncomingCaptureFile names a file of recorded command packets.
	// Service itself does not read this field or replay the file;
	// NewFileConnection opens a file as a Connection.
	IncomingCaptureFile string

	// FileOnly marks a configuration that uses capture files instead of
	// a live socket. Service itself does not read this field; the
	// Connection it uses is whatever the ConnectionFactory returns.
	FileOnly bool

	// CapturePeriod is the capture interval used when a periodic counter
	// selection carries a period of zero; a non-zero period from the
	// monitor takes precedence.
	CapturePeriod time.Duration

	// LocalPacketHandlers receive a copy of each control packet (stream
	// metadata, counter directory) the Service commits, without a network
	// hop. Periodic capture packets and timeline packets are not
	// delivered to them.
	LocalPacketHandlers []LocalPacketHandler

	// CPUAffinity pins the send worker goroutine to the first CPU in
	// this list (index 0, round-robin), the same convention the teacher's
	// queue runners use for queue threads. The capture worker goroutine
	// is not pinned.
	CPUAffinity []int

	// BufferCount and BufferCapacity size the shared buffer pool.
	BufferCount    int
	BufferCapacity int
}

// DefaultServiceOptions returns the conservative defaults: profiling on,
// timeline off, no capture files, standard buffer pool sizing.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		EnableProfiling: true,
		TimelineEnabled: false,
		CapturePeriod:   constants.DefaultCapturePeriod,
		BufferCount:     constants.DefaultBufferCount,
		BufferCapacity:  constants.DefaultBufferCapacity,
	}
}
