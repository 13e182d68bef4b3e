// Package capture implements the periodic counter capture worker: a
// background goroutine that, on a configurable interval, samples a set
// of counter UIDs and commits a capture packet into the shared buffer
// pool for the send thread to drain. Mirrors the teacher's
// internal/queue ioLoop shape — snapshot config, sleep, do work, poll a
// stop flag — generalized from disk I/O completion to counter sampling.
package capture

import (
	"bytes"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ARM-software/armnn-sub019/internal/bufpool"
	"github.com/ARM-software/armnn-sub019/internal/logging"
	"github.com/ARM-software/armnn-sub019/internal/wire"
	"github.com/ARM-software/armnn-sub019/internal/wire/counterwire"
)

// ValueReader resolves a counter UID's current absolute value. Backed by
// the shared value store for directory-owned counters and by a backend
// context for backend-owned ones; the Worker doesn't need to know which.
type ValueReader interface {
	ReadCounter(uid uint16) (uint32, error)
}

// Data is the mutable sampling configuration: the period and the set of
// UIDs to sample each cycle.
type Data struct {
	PeriodUs uint32
	UIDs     []uint16
}

// Worker is the periodic counter capture thread.
type Worker struct {
	pool   *bufpool.Manager
	reader ValueReader
	logger *logging.Logger

	mu   sync.Mutex
	data Data

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewWorker returns a Worker sampling through reader and committing
// packets into pool. A nil logger uses logging.Default().
func NewWorker(pool *bufpool.Manager, reader ValueReader, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{pool: pool, reader: reader, logger: logger}
}

// SetData installs a new sampling period and UID selection. Safe to call
// whether or not the worker is running.
func (w *Worker) SetData(d Data) {
	w.mu.Lock()
	w.data = Data{PeriodUs: d.PeriodUs, UIDs: append([]uint16(nil), d.UIDs...)}
	w.mu.Unlock()
}

func (w *Worker) snapshot() Data {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Data{PeriodUs: w.data.PeriodUs, UIDs: append([]uint16(nil), w.data.UIDs...)}
}

// Start begins sampling on a new goroutine. A no-op if already running.
func (w *Worker) Start() {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop()
}

// Stop requests the sampling loop exit and blocks until it has joined.
// A no-op if not running.
func (w *Worker) Stop() {
	if !w.running.CompareAndSwap(true, false) {
		return
	}
	close(w.stop)
	<-w.done
}

// Running reports whether the sampling loop is currently active.
func (w *Worker) Running() bool {
	return w.running.Load()
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		data := w.snapshot()
		period := time.Duration(data.PeriodUs) * time.Microsecond
		if period <= 0 {
			period = time.Millisecond
		}
		select {
		case <-time.After(period):
		case <-w.stop:
			return
		}
		select {
		case <-w.stop:
			return
		default:
		}
		w.sampleAndCommit(data.UIDs)
	}
}

func (w *Worker) sampleAndCommit(uids []uint16) {
	if len(uids) == 0 {
		return
	}
	samples := make([]counterwire.CounterSample, 0, len(uids))
	for _, uid := range uids {
		v, err := w.reader.ReadCounter(uid)
		if err != nil {
			w.logger.WithCounter(uid).Warn("capture: skipping unreadable counter", "err", err)
			continue
		}
		samples = append(samples, counterwire.CounterSample{UID: uid, Value: v})
	}
	if len(samples) == 0 {
		return
	}
	payload := counterwire.EncodePeriodicCapture(uint64(time.Now().UnixMicro()), samples)

	buf, err := w.pool.Reserve()
	if err != nil {
		w.logger.Warn("capture: dropping sample, buffer pool exhausted")
		return
	}
	h := wire.Header{Family: counterwire.FamilyControl, Class: counterwire.ClassPeriodicCapture}
	var frame bytes.Buffer
	if err := wire.WriteFrame(&frame, h, payload); err != nil {
		_ = w.pool.Release(buf)
		w.logger.Warn("capture: failed to frame packet", "err", err)
		return
	}
	if frame.Len() > buf.Cap() {
		_ = w.pool.Release(buf)
		w.logger.Warn("capture: packet exceeds buffer capacity")
		return
	}
	n := copy(buf.Data(), frame.Bytes())
	if err := w.pool.Commit(buf, n); err != nil {
		w.logger.Warn("capture: commit failed", "err", err)
	}
}
