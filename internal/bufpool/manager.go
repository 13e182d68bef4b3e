// Package bufpool implements the fixed-size, fixed-count buffer pool that
// sits between packet producers (counter capture, timeline writers) and the
// single send thread. Buffers move through reserve -> commit -> readable ->
// release; producers never block the consumer and vice versa.
package bufpool

import (
	"errors"
	"sync"

	"github.com/ARM-software/armnn-sub019/internal/constants"
)

// ErrExhausted is returned by Reserve when every buffer in the pool is
// currently owned by a producer or sitting in the readable queue.
var ErrExhausted = errors.New("bufpool: no free buffer available")

// ErrNotOwned is returned when Commit, Release, or MarkRead is called with
// a buffer this Manager did not hand out in the matching state.
var ErrNotOwned = errors.New("bufpool: buffer not owned by caller in expected state")

// Manager is a bounded pool of N fixed-capacity buffers. One or more
// producer goroutines call Reserve/Commit (or Release to abandon a
// reservation); exactly one consumer goroutine calls WaitForReadableBuffer
// and MarkRead.
type Manager struct {
	mu   sync.Mutex
	cond *sync.Cond

	buffers []*Buffer
	// readable holds indices of buffers in stateReadable, oldest first.
	readable []int
}

// NewManager builds a pool of count buffers of the given capacity. A
// count or capacity of zero falls back to the package defaults.
func NewManager(count, capacity int) *Manager {
	if count <= 0 {
		count = constants.DefaultBufferCount
	}
	if capacity <= 0 {
		capacity = constants.DefaultBufferCapacity
	}
	m := &Manager{
		buffers: make([]*Buffer, count),
	}
	for i := range m.buffers {
		m.buffers[i] = &Buffer{data: make([]byte, capacity), index: i}
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Reserve hands out a free buffer in stateWriting for exclusive use by the
// calling producer. It returns ErrExhausted immediately (it never blocks)
// if no buffer is free, matching the "fail fast, let the caller decide
// whether to drop or retry" discipline used throughout the capture and
// timeline-writer packages.
func (m *Manager) Reserve() (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.buffers {
		if b.state == stateFree {
			b.state = stateWriting
			b.written = 0
			return b, nil
		}
	}
	return nil, ErrExhausted
}

// Commit moves buf from stateWriting to stateReadable, recording n as the
// number of valid bytes, and wakes any consumer blocked in
// WaitForReadableBuffer.
func (m *Manager) Commit(buf *Buffer, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if buf.state != stateWriting {
		return ErrNotOwned
	}
	if n < 0 || n > len(buf.data) {
		return errors.New("bufpool: commit length out of range")
	}
	buf.written = n
	buf.state = stateReadable
	m.readable = append(m.readable, buf.index)
	m.cond.Broadcast()
	return nil
}

// Release returns buf to stateFree without publishing it, for a producer
// that reserved a buffer but decided not to write anything (e.g. it found
// the selection empty after reserving).
func (m *Manager) Release(buf *Buffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if buf.state != stateWriting {
		return ErrNotOwned
	}
	buf.state = stateFree
	buf.written = 0
	m.cond.Broadcast()
	return nil
}

// GetReadableBuffer returns the oldest readable buffer without blocking,
// or (nil, false) if the readable queue is empty.
func (m *Manager) GetReadableBuffer() (*Buffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.popReadableLocked()
}

func (m *Manager) popReadableLocked() (*Buffer, bool) {
	if len(m.readable) == 0 {
		return nil, false
	}
	idx := m.readable[0]
	m.readable = m.readable[1:]
	return m.buffers[idx], true
}

// WaitForReadableBuffer blocks until a buffer is readable or stop is
// closed, in which case it returns (nil, false). Only one goroutine
// (the send thread) is expected to call this.
func (m *Manager) WaitForReadableBuffer(stop <-chan struct{}) (*Buffer, bool) {
	done := make(chan struct{})
	go func() {
		select {
		case <-stop:
			m.mu.Lock()
			m.cond.Broadcast()
			m.mu.Unlock()
		case <-done:
		}
	}()
	defer close(done)

	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		if b, ok := m.popReadableLocked(); ok {
			return b, true
		}
		select {
		case <-stop:
			return nil, false
		default:
		}
		m.cond.Wait()
	}
}

// MarkRead returns buf from stateReadable to stateFree once the consumer
// has finished sending it, so a later Reserve can hand it out again.
func (m *Manager) MarkRead(buf *Buffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if buf.state != stateReadable {
		return ErrNotOwned
	}
	buf.state = stateFree
	buf.written = 0
	m.cond.Broadcast()
	return nil
}

// Reset forcibly returns every buffer to stateFree and drops the readable
// queue, for use when the owning service is reset between connections.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.buffers {
		b.state = stateFree
		b.written = 0
	}
	m.readable = nil
	m.cond.Broadcast()
}

// Count returns the total number of buffers in the pool.
func (m *Manager) Count() int {
	return len(m.buffers)
}
