// Package send implements the single-consumer send thread: it drains
// committed buffers from the shared pool and writes them to the
// connection, in commit order. Mirrors the teacher's single-consumer
// completion loop in internal/queue/runner.go, generalized from
// completion-queue draining to buffer-pool draining.
package send

import (
	"io"
	"sync"
	"time"

	"github.com/ARM-software/armnn-sub019/internal/bufpool"
	"github.com/ARM-software/armnn-sub019/internal/constants"
	"github.com/ARM-software/armnn-sub019/internal/logging"
)

// Thread is the single consumer of a bufpool.Manager: it blocks on
// WaitForReadableBuffer, writes each buffer's bytes to Writer, and marks
// it read. On write failure it logs and returns without attempting
// reconnection; reconnection is the orchestrator's job.
type Thread struct {
	pool   *bufpool.Manager
	writer io.Writer
	logger *logging.Logger

	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	sentCh  chan struct{}
	lastErr error
}

// NewThread returns a Thread that drains pool, writing to w.
func NewThread(pool *bufpool.Manager, w io.Writer, logger *logging.Logger) *Thread {
	if logger == nil {
		logger = logging.Default()
	}
	return &Thread{
		pool:   pool,
		writer: w,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		sentCh: make(chan struct{}, 1),
	}
}

// Run drains the pool until Stop is called or a write fails. Intended to
// be launched as its own goroutine (e.g. via errgroup.Group.Go).
func (t *Thread) Run() error {
	defer close(t.done)
	for {
		buf, ok := t.pool.WaitForReadableBuffer(t.stop)
		if !ok {
			return nil
		}
		_, err := t.writer.Write(buf.Bytes())
		if err != nil {
			t.mu.Lock()
			t.lastErr = err
			t.mu.Unlock()
			_ = t.pool.MarkRead(buf)
			t.logger.Error("send: write failed, thread exiting", "err", err)
			return err
		}
		_ = t.pool.MarkRead(buf)
		t.signalSent()
	}
}

func (t *Thread) signalSent() {
	select {
	case t.sentCh <- struct{}{}:
	default:
	}
}

// Stop requests the drain loop exit and blocks until it has joined.
func (t *Thread) Stop() {
	select {
	case <-t.stop:
		// already stopped
	default:
		close(t.stop)
	}
	<-t.done
}

// WaitForPacketSent blocks until at least one packet has been sent since
// the last call, or timeout elapses. A timeout of zero uses
// constants.DefaultSendWaitTimeout. Returns false on timeout.
func (t *Thread) WaitForPacketSent(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = constants.DefaultSendWaitTimeout
	}
	select {
	case <-t.sentCh:
		return true
	case <-time.After(timeout):
		return false
	}
}

// LastError returns the error that caused the thread to exit, if any.
func (t *Thread) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}
