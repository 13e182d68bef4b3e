package profiling

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Observer allows pluggable metrics collection for the pipeline's
// operational events. Mirrors the teacher's Observer interface, with
// the I/O-shaped methods replaced by packet/buffer-shaped ones.
type Observer interface {
	ObservePacketSent(bytes uint64, latencyNs uint64, success bool)
	ObserveBufferExhaustion()
	ObserveUnknownPacket()
	ObserveConnectionAccepted()
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObservePacketSent(uint64, uint64, bool) {}
func (NoOpObserver) ObserveBufferExhaustion()               {}
func (NoOpObserver) ObserveUnknownPacket()                  {}
func (NoOpObserver) ObserveConnectionAccepted()             {}

// MetricsObserver implements Observer using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObservePacketSent(bytes uint64, latencyNs uint64, success bool) {
	o.metrics.RecordSend(bytes, latencyNs, success)
}

func (o *MetricsObserver) ObserveBufferExhaustion() {
	o.metrics.RecordBufferExhaustion()
}

func (o *MetricsObserver) ObserveUnknownPacket() {
	o.metrics.RecordUnknownPacket()
}

func (o *MetricsObserver) ObserveConnectionAccepted() {
	o.metrics.RecordConnectionAccepted()
}

// PrometheusObserver implements Observer by exporting to a
// prometheus.Registerer, for deployments that scrape the service
// instead of (or alongside) polling Metrics.Snapshot.
type PrometheusObserver struct {
	packetsSent         prometheus.Counter
	bytesSent           prometheus.Counter
	sendErrors          prometheus.Counter
	bufferExhaustions   prometheus.Counter
	unknownPackets      prometheus.Counter
	connectionsAccepted prometheus.Counter
	sendLatency         prometheus.Histogram
}

// NewPrometheusObserver registers the pipeline's counters/histogram
// under reg and returns an Observer that feeds them.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		packetsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "armnn_profiling_packets_sent_total",
			Help: "Total packets written to the profiling connection.",
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "armnn_profiling_bytes_sent_total",
			Help: "Total bytes written to the profiling connection.",
		}),
		sendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "armnn_profiling_send_errors_total",
			Help: "Total failed packet sends.",
		}),
		bufferExhaustions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "armnn_profiling_buffer_exhaustions_total",
			Help: "Total Reserve calls that found no free buffer.",
		}),
		unknownPackets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "armnn_profiling_unknown_packets_total",
			Help: "Total inbound packets with no registered handler.",
		}),
		connectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "armnn_profiling_connections_accepted_total",
			Help: "Total connections accepted by the service.",
		}),
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "armnn_profiling_send_latency_seconds",
			Help:    "Latency of packet sends over the connection.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, numLatencyBuckets),
		}),
	}
	reg.MustRegister(
		o.packetsSent,
		o.bytesSent,
		o.sendErrors,
		o.bufferExhaustions,
		o.unknownPackets,
		o.connectionsAccepted,
		o.sendLatency,
	)
	return o
}

func (o *PrometheusObserver) ObservePacketSent(bytes uint64, latencyNs uint64, success bool) {
	if success {
		o.packetsSent.Inc()
		o.bytesSent.Add(float64(bytes))
	} else {
		o.sendErrors.Inc()
	}
	o.sendLatency.Observe(float64(latencyNs) / 1e9)
}

func (o *PrometheusObserver) ObserveBufferExhaustion() {
	o.bufferExhaustions.Inc()
}

func (o *PrometheusObserver) ObserveUnknownPacket() {
	o.unknownPackets.Inc()
}

func (o *PrometheusObserver) ObserveConnectionAccepted() {
	o.connectionsAccepted.Inc()
}

var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
var _ Observer = (*PrometheusObserver)(nil)
