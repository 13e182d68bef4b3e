package timelinewire

import (
	"bytes"
	"time"

	"github.com/ARM-software/armnn-sub019/internal/bufpool"
	"github.com/ARM-software/armnn-sub019/internal/wire"
)

// retryBackoff is the pause before the single retry attempt in Write,
// giving the send thread a brief window to drain a buffer.
const retryBackoff = time.Millisecond

// Status is the outcome of writing one timeline record or package.
type Status int

const (
	StatusOk Status = iota
	StatusBufferExhaustion
	StatusError
)

// Writer drives timeline records through a buffer pool, framing each one
// with a wire.Header and committing the result for the send thread to
// pick up.
type Writer struct {
	pool *bufpool.Manager
}

// NewWriter returns a Writer backed by pool.
func NewWriter(pool *bufpool.Manager) *Writer {
	return &Writer{pool: pool}
}

// Write frames and commits a single record. If the pool is exhausted it
// is retried exactly once (the producer side is expected to be bursty;
// a single retry covers the common case where the send thread drains a
// buffer a moment later without the caller needing its own backoff loop).
// A second exhaustion is reported as StatusBufferExhaustion, not retried
// further.
func (w *Writer) Write(rec Record) Status {
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoff)
		}
		status := w.writeOnce(rec)
		if status != StatusBufferExhaustion {
			return status
		}
	}
	return StatusBufferExhaustion
}

func (w *Writer) writeOnce(rec Record) Status {
	buf, err := w.pool.Reserve()
	if err != nil {
		return StatusBufferExhaustion
	}

	payload := Encode(rec)
	h := wire.Header{Family: FamilyTimeline, Class: rec.Class()}

	var frame bytes.Buffer
	if err := wire.WriteFrame(&frame, h, payload); err != nil {
		_ = w.pool.Release(buf)
		return StatusError
	}
	if frame.Len() > buf.Cap() {
		_ = w.pool.Release(buf)
		return StatusError
	}
	n := copy(buf.Data(), frame.Bytes())
	if err := w.pool.Commit(buf, n); err != nil {
		return StatusError
	}
	return StatusOk
}

// SendDirectoryPackage writes the one-shot timeline directory package
// sent the first time timeline reporting activates. Unlike Write, this is
// never retried: if the pool is exhausted on the first attempt the
// directory send is abandoned for this activation rather than queued
// behind other traffic, and StatusError is returned.
func (w *Writer) SendDirectoryPackage(payload []byte) Status {
	buf, err := w.pool.Reserve()
	if err != nil {
		return StatusError
	}

	h := wire.Header{Family: FamilyTimeline, Class: ClassDirectory}
	var frame bytes.Buffer
	if err := wire.WriteFrame(&frame, h, payload); err != nil {
		_ = w.pool.Release(buf)
		return StatusError
	}
	if frame.Len() > buf.Cap() {
		_ = w.pool.Release(buf)
		return StatusError
	}
	n := copy(buf.Data(), frame.Bytes())
	if err := w.pool.Commit(buf, n); err != nil {
		return StatusError
	}
	return StatusOk
}
