package profiling

import (
	"io"
	"os"
)

// Connection abstracts the socket (or pipe, or file) the service speaks
// the wire protocol over. Production code hands in a net.Conn or a Unix
// socket; tests and offline capture hand in a buffer or file.
type Connection interface {
	io.Reader
	io.Writer
	Close() error
}

// ConnectionFactory produces a new Connection each time the service
// (re)connects, e.g. by accepting the next client on a listener.
type ConnectionFactory func() (Connection, error)

// fileConnection wraps an *os.File as a Connection, for
// ServiceOptions.FileOnly / capture-file replay.
type fileConnection struct {
	*os.File
}

// NewFileConnection opens path for the given flags and wraps it as a
// Connection.
func NewFileConnection(path string, flag int, perm os.FileMode) (Connection, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, WrapError("NewFileConnection", ErrCodeIOError, err)
	}
	return &fileConnection{File: f}, nil
}

// teeConnection duplicates every Write to a capture sink in addition to
// the underlying connection, for ServiceOptions.OutgoingCaptureFile.
type teeConnection struct {
	Connection
	capture io.Writer
}

// NewTeeConnection wraps conn so that every write is also copied to
// capture.
func NewTeeConnection(conn Connection, capture io.Writer) Connection {
	return &teeConnection{Connection: conn, capture: capture}
}

func (t *teeConnection) Write(p []byte) (int, error) {
	n, err := t.Connection.Write(p)
	if n > 0 {
		_, _ = t.capture.Write(p[:n])
	}
	return n, err
}
