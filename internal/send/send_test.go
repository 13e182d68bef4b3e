package send

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ARM-software/armnn-sub019/internal/bufpool"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *safeBuffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

func TestThreadDrainsCommittedBuffersInOrder(t *testing.T) {
	pool := bufpool.NewManager(4, 16)
	out := &safeBuffer{}
	th := NewThread(pool, out, nil)

	go th.Run()
	defer th.Stop()

	for _, word := range []string{"one", "two", "three"} {
		buf, err := pool.Reserve()
		if err != nil {
			t.Fatalf("Reserve: %v", err)
		}
		n := copy(buf.Data(), word)
		if err := pool.Commit(buf, n); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}

	if !th.WaitForPacketSent(200 * time.Millisecond) {
		t.Fatal("WaitForPacketSent timed out")
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if string(out.Bytes()) == "onetwothree" {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("got %q, want %q", string(out.Bytes()), "onetwothree")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestThreadExitsOnWriteFailure(t *testing.T) {
	pool := bufpool.NewManager(2, 16)
	th := NewThread(pool, failingWriter{}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- th.Run() }()

	buf, err := pool.Reserve()
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := pool.Commit(buf, 3); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("expected Run to return the write error")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Run did not exit after write failure")
	}
	if th.LastError() == nil {
		t.Error("LastError() is nil after a write failure")
	}
}

func TestStopUnblocksWaitForReadable(t *testing.T) {
	pool := bufpool.NewManager(2, 16)
	th := NewThread(pool, &safeBuffer{}, nil)

	done := make(chan struct{})
	go func() {
		th.Run()
		close(done)
	}()

	th.Stop()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Run did not exit after Stop")
	}
}
