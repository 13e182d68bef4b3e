package bufpool

// bufferState tracks which of the three phases in §4.4 a buffer is
// currently in. A buffer is owned exclusively by one producer between
// reserve and commit/release, then exclusively by the single consumer
// between dequeue and release.
type bufferState int

const (
	stateFree bufferState = iota
	stateWriting
	stateReadable
)

// Buffer is a fixed-capacity byte slab with a write cursor, drawn from a
// Manager's bounded pool.
type Buffer struct {
	data  []byte
	index int // position within the owning Manager's slice, for bookkeeping
	state bufferState
	// written is the number of valid bytes once the buffer reaches
	// stateReadable; it is meaningless in any other state.
	written int
}

// Bytes returns the portion of the buffer that was committed. Calling this
// before Commit (while the buffer is still stateWriting) or after Release
// is a caller bug; Manager only ever hands out buffers in the state where
// this is meaningful.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.written]
}

// Cap returns the buffer's total capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Data exposes the full backing slice so a producer can write directly
// into it between Reserve and Commit.
func (b *Buffer) Data() []byte {
	return b.data
}
