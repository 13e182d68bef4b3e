package profiling

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/ARM-software/armnn-sub019/internal/directory"
)

// MockConnection is an in-memory Connection for tests: reads come from
// an in-feed buffer the test populates, writes accumulate into an
// out-feed buffer the test inspects. Adapted from the teacher's
// MockBackend: a small, call-tracking stand-in for the real thing.
type MockConnection struct {
	mu     sync.Mutex
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool

	writeCalls int
	readCalls  int
}

// NewMockConnection returns an empty MockConnection.
func NewMockConnection() *MockConnection {
	return &MockConnection{}
}

// Feed appends p to the data future Read calls will return.
func (c *MockConnection) Feed(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.in.Write(p)
}

// Read returns fed data. While the in-feed is empty and the connection is
// open it waits for more, as a socket read blocks; after Close it returns
// io.EOF.
func (c *MockConnection) Read(p []byte) (int, error) {
	c.mu.Lock()
	c.readCalls++
	c.mu.Unlock()
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return 0, io.EOF
		}
		if c.in.Len() > 0 {
			n, err := c.in.Read(p)
			c.mu.Unlock()
			return n, err
		}
		c.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
}

func (c *MockConnection) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeCalls++
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	return c.out.Write(p)
}

// Close marks the connection closed; subsequent Read calls return io.EOF
// and Write calls return io.ErrClosedPipe.
func (c *MockConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Written returns a snapshot of everything written so far.
func (c *MockConnection) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.out.Bytes()...)
}

// WriteCalls reports how many times Write has been invoked.
func (c *MockConnection) WriteCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeCalls
}

// IsClosed reports whether Close has been called.
func (c *MockConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// MockBackendContext is a minimal in-memory BackendContext for tests: it
// tracks the calls it receives and serves counter values from a map the
// test populates directly.
type MockBackendContext struct {
	mu     sync.Mutex
	id     string
	values map[uint16]uint32

	registerCalls int
	registerErr   error
}

// NewMockBackendContext returns a MockBackendContext with the given
// stable id.
func NewMockBackendContext(id string) *MockBackendContext {
	return &MockBackendContext{id: id, values: make(map[uint16]uint32)}
}

func (b *MockBackendContext) ID() string { return b.id }

// RegisterCounters records the call; returns the error set via
// SetRegisterError, if any.
func (b *MockBackendContext) RegisterCounters(dir *directory.Directory) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registerCalls++
	return b.registerErr
}

// SetRegisterError makes subsequent RegisterCounters calls fail with err.
func (b *MockBackendContext) SetRegisterError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registerErr = err
}

// SetCounterValue sets the value MockBackendContext reports for uid.
func (b *MockBackendContext) SetCounterValue(uid uint16, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[uid] = v
}

func (b *MockBackendContext) GetCounterValue(uid uint16) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[uid]
	if !ok {
		return 0, NewError("GetCounterValue", ErrCodeNotFound, "uid not owned by this backend")
	}
	return v, nil
}

// RegisterCalls reports how many times RegisterCounters has been called.
func (b *MockBackendContext) RegisterCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registerCalls
}

var _ Connection = (*MockConnection)(nil)
var _ BackendContext = (*MockBackendContext)(nil)
