package profiling

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/ARM-software/armnn-sub019/internal/bufpool"
	"github.com/ARM-software/armnn-sub019/internal/capture"
	"github.com/ARM-software/armnn-sub019/internal/constants"
	"github.com/ARM-software/armnn-sub019/internal/directory"
	"github.com/ARM-software/armnn-sub019/internal/dispatch"
	"github.com/ARM-software/armnn-sub019/internal/guid"
	"github.com/ARM-software/armnn-sub019/internal/handlers"
	"github.com/ARM-software/armnn-sub019/internal/logging"
	"github.com/ARM-software/armnn-sub019/internal/send"
	"github.com/ARM-software/armnn-sub019/internal/statemachine"
	"github.com/ARM-software/armnn-sub019/internal/wire"
	"github.com/ARM-software/armnn-sub019/internal/wire/counterwire"
	"github.com/ARM-software/armnn-sub019/internal/wire/timelinewire"
)

// Identity describes the stream-metadata strings a Service reports to
// the monitor on connect.
type Identity struct {
	PackageName     string
	SoftwareInfo    string
	HardwareVersion string
}

// Service is the top-level orchestrator: it owns the state machine,
// directory, value store, buffer pool, connection, dispatcher, capture
// worker, and send thread, and exposes the public configuration and
// counter-mutation API. Mirrors the teacher's backend.go Device /
// CreateAndServe / StopAndDelete shape, generalized from one block
// device's lifecycle to the profiling connection's lifecycle.
type Service struct {
	serviceMu sync.Mutex // guards configure/update/stop/reset end-to-end

	opts     ServiceOptions
	identity Identity
	logger   *logging.Logger
	metrics  *Metrics
	observer Observer

	sm       *statemachine.StateMachine
	dir      *directory.Directory
	values   *directory.ValueStore
	idMap    *directory.IDMap
	pool     *bufpool.Manager
	backends *BackendRegistry

	connFactory ConnectionFactory
	conn        Connection

	dispatchReg *dispatch.Registry
	captureW    *capture.Worker
	sendThread  *send.Thread
	timeline    *timelinewire.Writer

	timelineOn            atomic.Bool
	firstTimelineEmission sync.Once
	reportStructure       func(*Service) error

	group    *errgroup.Group
	groupCtx context.Context
	cancel   context.CancelFunc

	startInstant time.Time

	activationMu   sync.Mutex
	activationCond *sync.Cond
	active         bool
}

// NewService builds a Service with a fresh state machine, directory,
// value store, and buffer pool. connFactory is consulted by update()
// each time the service needs a new connection (e.g. accepting the next
// client on a listener).
func NewService(opts ServiceOptions, identity Identity, connFactory ConnectionFactory) *Service {
	m := NewMetrics()
	s := &Service{
		opts:         opts,
		identity:     identity,
		logger:       logging.Default(),
		metrics:      m,
		observer:     NewMetricsObserver(m),
		sm:           statemachine.New(),
		dir:          directory.New(),
		values:       directory.NewValueStore(),
		idMap:        directory.NewIDMap(),
		pool:         bufpool.NewManager(opts.BufferCount, opts.BufferCapacity),
		backends:     NewBackendRegistry(),
		connFactory:  connFactory,
		startInstant: time.Now(),
	}
	s.activationCond = sync.NewCond(&s.activationMu)
	s.timeline = timelinewire.NewWriter(s.pool)
	s.captureW = capture.NewWorker(s.pool, readerFunc(s.ReadCounter), s.logger)
	return s
}

// readerFunc adapts a plain function to capture.ValueReader.
type readerFunc func(uid uint16) (uint32, error)

func (f readerFunc) ReadCounter(uid uint16) (uint32, error) { return f(uid) }

// SetObserver installs a metrics observer, replacing the default
// MetricsObserver. Must be called before Configure.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

// SetReportStructureHook installs the callback invoked exactly once, the
// first time timeline reporting activates on a connection, immediately
// after the well-known baseline is emitted and before backends are
// notified of the new flag value. Typical use is reporting static
// structure (networks, layers, entities) that only needs describing once
// a monitor is actually listening for timeline events. A nil hook (the
// default) is a no-op.
func (s *Service) SetReportStructureHook(hook func(*Service) error) {
	s.reportStructure = hook
}

// State returns the current profiling state. Implements
// handlers.ServiceContext.
func (s *Service) State() statemachine.State {
	return s.sm.Get()
}

// TransitionTo is exposed for tests and for handlers that need it
// directly; normal traffic drives transitions through update() and
// HandleConnectionAcknowledged.
func (s *Service) TransitionTo(target statemachine.State) error {
	return s.sm.TransitionTo(target)
}

// Configure applies new options, driving the state machine forward (or
// stopping it) as described in §4.11. Returns the resulting state.
func (s *Service) Configure(opts ServiceOptions) (statemachine.State, error) {
	s.serviceMu.Lock()
	defer s.serviceMu.Unlock()

	s.opts = opts

	if !opts.EnableProfiling {
		if s.sm.Get() != statemachine.NotConnected && s.sm.Get() != statemachine.Uninitialised {
			if err := s.stopLocked(); err != nil {
				return s.sm.Get(), err
			}
		}
		return s.sm.Get(), nil
	}

	if s.sm.Get() == statemachine.Uninitialised || s.sm.Get() == statemachine.NotConnected {
		for i := 0; i < 3; i++ {
			if err := s.update(); err != nil {
				return s.sm.Get(), err
			}
			if s.sm.Get() == statemachine.Active {
				break
			}
		}
	}
	return s.sm.Get(), nil
}

// update implements the per-state transition logic of §4.11.
func (s *Service) update() error {
	switch s.sm.Get() {
	case statemachine.Uninitialised:
		s.registerHandlers()
		return s.sm.TransitionTo(statemachine.NotConnected)

	case statemachine.NotConnected:
		s.stopWorkersLocked()
		s.releaseConnectionLocked()

		if s.connFactory == nil {
			return nil
		}
		conn, err := s.connFactory()
		if err != nil {
			s.logger.Warn("update: connection factory failed", "err", err)
			return nil
		}
		s.conn = conn
		s.metrics.RecordConnectionAccepted()
		s.observer.ObserveConnectionAccepted()
		return s.sm.TransitionTo(statemachine.WaitingForAck)

	case statemachine.WaitingForAck:
		return s.startWorkersLocked()

	case statemachine.Active:
		return nil
	}
	return nil
}

// registerHandlers wires the six command handlers into a fresh registry.
// Called once per Uninitialised->NotConnected transition (and again
// after Reset returns the machine to Uninitialised).
func (s *Service) registerHandlers() {
	reg := dispatch.NewRegistry()
	_ = reg.Register(0, 1, &handlers.ConnectionAcknowledged{Svc: s})
	_ = reg.Register(0, 3, &handlers.RequestCounterDirectory{Svc: s})
	_ = reg.Register(0, 4, &handlers.PeriodicCounterSelection{Svc: s})
	_ = reg.Register(0, 5, &handlers.PerJobCounterSelection{Svc: s})
	_ = reg.Register(0, 6, &handlers.ActivateTimelineReporting{Svc: s})
	_ = reg.Register(0, 7, &handlers.DeactivateTimelineReporting{Svc: s})
	s.dispatchReg = reg
}

// startWorkersLocked starts the receive loop and send thread, and sends
// the stream-metadata packet as the connection's first outbound packet.
func (s *Service) startWorkersLocked() error {
	if s.conn == nil {
		return NewError("startWorkers", ErrCodeIOError, "no connection")
	}

	s.groupCtx, s.cancel = context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(s.groupCtx)
	s.group = g
	s.groupCtx = gctx

	s.sendThread = send.NewThread(s.pool, s.conn, s.logger)
	g.Go(func() error {
		s.pinWorker(0)
		return s.sendThread.Run()
	})

	g.Go(func() error {
		return dispatch.ReceiveLoop(s.groupCtx, s.conn, s.dispatchReg)
	})

	if err := s.sendStreamMetadata(); err != nil {
		s.logger.Warn("startWorkers: failed to send stream metadata", "err", err)
	}

	return nil
}

// pinWorker pins the calling goroutine's OS thread to a CPU from
// ServiceOptions.CPUAffinity, round-robin by index, mirroring the
// teacher's per-queue affinity assignment. A no-op if no affinity list
// was configured.
func (s *Service) pinWorker(index int) {
	if len(s.opts.CPUAffinity) == 0 {
		return
	}
	cpu := s.opts.CPUAffinity[index%len(s.opts.CPUAffinity)]
	runtime.LockOSThread()
	var mask unix.CPUSet
	mask.Set(cpu)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		s.logger.Warn("pinWorker: SchedSetaffinity failed", "cpu", cpu, "err", err)
	}
}

func (s *Service) sendStreamMetadata() error {
	epochNs := uint64(time.Since(s.startInstant).Nanoseconds())
	payload := counterwire.EncodeStreamMetadata(
		uint32(os.Getpid()), s.identity.PackageName, s.identity.SoftwareInfo, s.identity.HardwareVersion,
		epochNs, s.dispatchReg.SupportedPacketIDs(),
	)
	return s.commitControlPacket(counterwire.ClassStreamMetadata, payload)
}

// SendCounterDirectory encodes and enqueues the full counter directory.
// Implements handlers.ServiceContext.
func (s *Service) SendCounterDirectory() error {
	snap := s.dir.Snapshot()
	payload := counterwire.EncodeCounterDirectory(snap)
	return s.commitControlPacket(counterwire.ClassCounterDirectory, payload)
}

func (s *Service) commitControlPacket(class uint8, payload []byte) error {
	buf, err := s.pool.Reserve()
	if err != nil {
		s.metrics.RecordBufferExhaustion()
		s.observer.ObserveBufferExhaustion()
		return WrapError("commitControlPacket", ErrCodeBufferExhaustion, ErrExhaustedBuffer)
	}
	h := wire.Header{Family: counterwire.FamilyControl, Class: class}
	frame := make([]byte, 0, 8+len(payload))
	frame = wire.PutUint32(frame, uint32(4+len(payload)))
	frame = wire.WriteHeader(frame, h)
	frame = append(frame, payload...)
	if len(frame) > buf.Cap() {
		_ = s.pool.Release(buf)
		return NewError("commitControlPacket", ErrCodeInvalidArgument, "packet exceeds buffer capacity")
	}
	n := copy(buf.Data(), frame)
	if err := s.pool.Commit(buf, n); err != nil {
		return WrapError("commitControlPacket", ErrCodeIOError, err)
	}
	notifyLocalHandlers(s.opts.LocalPacketHandlers, wire.Frame{Header: h, Payload: payload})
	return nil
}

// HandleConnectionAcknowledged runs the full ack sequence described in
// §4.7: transition to Active, emit the directory, emit the timeline
// baseline if enabled, enable profiling on every backend, and signal
// activation. Implements handlers.ServiceContext.
func (s *Service) HandleConnectionAcknowledged() error {
	if err := s.sm.TransitionTo(statemachine.Active); err != nil {
		return err
	}
	// Each connection gets its own first-activation baseline.
	s.firstTimelineEmission = sync.Once{}
	if err := s.SendCounterDirectory(); err != nil {
		s.logger.Warn("HandleConnectionAcknowledged: directory send failed", "err", err)
	}
	if s.opts.TimelineEnabled {
		s.timelineOn.Store(true)
		s.emitTimelineBaselineOnce()
	}
	if err := s.backends.NotifyAll(func(b BackendContext) error {
		return b.RegisterCounters(s.dir)
	}); err != nil {
		return WrapError("HandleConnectionAcknowledged", ErrCodeBackendError, err)
	}
	s.NotifyProfilingServiceActive()
	return nil
}

// emitTimelineBaselineOnce sends the timeline-message-directory package
// and well-known baseline the first time timeline reporting activates
// for this connection, per §4.7/§4.10's "first time only" rule.
func (s *Service) emitTimelineBaselineOnce() {
	s.firstTimelineEmission.Do(func() {
		directoryPayload := []byte("armnn-timeline-directory-v1")
		if status := s.timeline.SendDirectoryPackage(directoryPayload); status != timelinewire.StatusOk {
			s.logger.Warn("emitTimelineBaselineOnce: directory package not sent", "status", status)
			return
		}
		baseline := []timelinewire.Record{
			{Kind: timelinewire.KindLabel, GUID: guid.Static("label:well-known"), Value: "well-known"},
			{Kind: timelinewire.KindEventClass, GUID: guid.Static("eventclass:well-known"), NameGUID: guid.Static("label:well-known")},
		}
		for _, rec := range baseline {
			if status := s.timeline.Write(rec); status != timelinewire.StatusOk {
				s.logger.Warn("emitTimelineBaselineOnce: baseline record dropped", "status", status)
			}
		}

		if s.reportStructure != nil {
			if err := s.reportStructure(s); err != nil {
				s.logger.Warn("emitTimelineBaselineOnce: report-structure hook failed", "err", err)
			}
		}
	})
}

// SetPeriodicSelection installs a new capture period and UID selection,
// starting or stopping the capture worker as needed. A zero period falls
// back to ServiceOptions.CapturePeriod. Implements handlers.ServiceContext.
func (s *Service) SetPeriodicSelection(periodUs uint32, uids []uint16) error {
	if len(uids) == 0 {
		s.captureW.Stop()
		return nil
	}
	if periodUs == 0 && s.opts.CapturePeriod > 0 {
		periodUs = uint32(s.opts.CapturePeriod / time.Microsecond)
	}
	s.captureW.SetData(capture.Data{PeriodUs: periodUs, UIDs: uids})
	s.captureW.Start()
	return nil
}

// timelineObserverBackend is an optional capability a BackendContext may
// implement to learn when the timeline flag toggles. Kept separate from
// BackendContext itself so backends that only care about counters never
// need a no-op method.
type timelineObserverBackend interface {
	OnTimelineEnabledChanged(enabled bool) error
}

func notifyTimelineToggle(b BackendContext, enabled bool) error {
	if obs, ok := b.(timelineObserverBackend); ok {
		return obs.OnTimelineEnabledChanged(enabled)
	}
	return nil
}

// ActivateTimeline sets the timeline flag, emitting the baseline (and
// invoking the report-structure hook) on first activation, and notifies
// backends. State-gated only, per §4.7 — allowed any time the
// connection is Active, regardless of ServiceOptions.TimelineEnabled.
// Implements handlers.ServiceContext.
func (s *Service) ActivateTimeline() error {
	s.timelineOn.Store(true)
	s.emitTimelineBaselineOnce()
	return s.backends.NotifyAll(func(b BackendContext) error { return notifyTimelineToggle(b, true) })
}

// DeactivateTimeline clears the timeline flag and notifies backends.
// Implements handlers.ServiceContext.
func (s *Service) DeactivateTimeline() error {
	s.timelineOn.Store(false)
	return s.backends.NotifyAll(func(b BackendContext) error { return notifyTimelineToggle(b, false) })
}

// ReadCounter resolves uid's current value, consulting the owning
// backend for backend-owned UIDs and the shared value store otherwise.
// Satisfies capture.ValueReader.
func (s *Service) ReadCounter(uid uint16) (uint32, error) {
	ctr, ok := s.dir.CounterByUID(uid)
	if ok && ctr.BackendID != "" {
		if b, found := s.backends.Get(ctr.BackendID); found {
			return b.GetCounterValue(uid)
		}
	}
	return s.values.GetAbsolute(uid)
}

// RegisterBackend adds a backend context, valid any time the service is
// not actively capturing.
func (s *Service) RegisterBackend(b BackendContext) error {
	return s.backends.Register(b)
}

// Disconnect moves an Active service back through stop(); a no-op in
// any other state.
func (s *Service) Disconnect() error {
	s.serviceMu.Lock()
	defer s.serviceMu.Unlock()
	if s.sm.Get() != statemachine.Active {
		return nil
	}
	return s.stopLocked()
}

// Stop stops producers, then the consumer, then closes the connection
// (which releases a receive loop blocked in Read), joins the workers, and
// transitions to NotConnected.
func (s *Service) Stop() error {
	s.serviceMu.Lock()
	defer s.serviceMu.Unlock()
	return s.stopLocked()
}

func (s *Service) stopLocked() error {
	s.stopWorkersLocked()
	s.releaseConnectionLocked()
	return s.sm.TransitionTo(statemachine.NotConnected)
}

func (s *Service) stopWorkersLocked() {
	s.captureW.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	if s.sendThread != nil {
		s.sendThread.Stop()
	}
	if s.group != nil {
		// Cancelling the context cannot release a receive loop parked in
		// Read; closing the connection does.
		if s.conn != nil {
			_ = s.conn.Close()
		}
		_ = s.group.Wait()
		s.group = nil
	}
}

func (s *Service) releaseConnectionLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Reset stops the service, clears all counters, directory entries, id
// map bindings, the buffer pool, and backend contexts, and resets the
// state machine to Uninitialised.
func (s *Service) Reset() error {
	s.serviceMu.Lock()
	defer s.serviceMu.Unlock()

	s.stopWorkersLocked()
	s.releaseConnectionLocked()

	s.dir.Clear()
	s.idMap.Clear()
	s.pool.Reset()
	s.values = directory.NewValueStore()
	s.backends.Clear()
	s.timelineOn.Store(false)
	s.firstTimelineEmission = sync.Once{}
	s.metrics.Reset()
	guid.ResetGenerator()

	s.activationMu.Lock()
	s.active = false
	s.activationMu.Unlock()

	s.sm.Reset()
	return nil
}

// NotifyProfilingServiceActive signals any caller blocked in
// WaitForProfilingServiceActivation.
func (s *Service) NotifyProfilingServiceActive() {
	s.activationMu.Lock()
	s.active = true
	s.activationCond.Broadcast()
	s.activationMu.Unlock()
}

// WaitForProfilingServiceActivation blocks until NotifyProfilingServiceActive
// has been called since the last Reset, or timeout elapses. A timeout of
// zero uses constants.DefaultActivationWaitTimeout.
func (s *Service) WaitForProfilingServiceActivation(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = constants.DefaultActivationWaitTimeout
	}
	done := make(chan struct{})
	go func() {
		s.activationMu.Lock()
		for !s.active {
			s.activationCond.Wait()
		}
		s.activationMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// SetCounterValue sets uid's absolute value.
func (s *Service) SetCounterValue(uid uint16, v uint32) error {
	return s.values.Set(uid, v)
}

// AddCounterValue adds v to uid, returning the prior value.
func (s *Service) AddCounterValue(uid uint16, v uint32) (uint32, error) {
	return s.values.Add(uid, v)
}

// SubtractCounterValue subtracts v from uid, returning the prior value.
func (s *Service) SubtractCounterValue(uid uint16, v uint32) (uint32, error) {
	return s.values.Subtract(uid, v)
}

// IncrementCounterValue adds one to uid, returning the prior value.
func (s *Service) IncrementCounterValue(uid uint16) (uint32, error) {
	return s.values.Increment(uid)
}

// GetCounterValue returns uid's current absolute value.
func (s *Service) GetCounterValue(uid uint16) (uint32, error) {
	return s.values.GetAbsolute(uid)
}

// Directory exposes the counter directory for registration by callers
// setting up categories/devices/counter-sets/counters before Configure.
func (s *Service) Directory() *directory.Directory {
	return s.dir
}

// Metrics returns the service's operational metrics.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

var _ handlers.ServiceContext = (*Service)(nil)

// ErrExhaustedBuffer is wrapped into a structured Error whenever the
// buffer pool cannot satisfy a control-packet reservation.
var ErrExhaustedBuffer = fmt.Errorf("service: buffer pool exhausted")
