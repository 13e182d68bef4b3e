package timelinewire

import (
	"testing"

	"github.com/ARM-software/armnn-sub019/internal/bufpool"
	"github.com/ARM-software/armnn-sub019/internal/guid"
)

func TestWriteEntityRecordCommitsOneBuffer(t *testing.T) {
	pool := bufpool.NewManager(2, 64)
	w := NewWriter(pool)

	rec := Record{Kind: KindEntity, GUID: guid.NewDynamic()}
	if status := w.Write(rec); status != StatusOk {
		t.Fatalf("Write() = %v, want StatusOk", status)
	}

	if _, ok := pool.GetReadableBuffer(); !ok {
		t.Fatal("expected a readable buffer after Write")
	}
}

func TestWriteRetriesOnceOnExhaustion(t *testing.T) {
	pool := bufpool.NewManager(1, 64)
	held, err := pool.Reserve()
	if err != nil {
		t.Fatal(err)
	}

	w := NewWriter(pool)
	done := make(chan Status, 1)
	go func() {
		done <- w.Write(Record{Kind: KindEntity, GUID: guid.NewDynamic()})
	}()

	// Free the only buffer so the writer's retry succeeds.
	_ = pool.Release(held)

	status := <-done
	if status != StatusOk {
		t.Fatalf("Write() after release = %v, want StatusOk", status)
	}
}

func TestWriteReportsExhaustionAfterSecondFailedAttempt(t *testing.T) {
	pool := bufpool.NewManager(1, 64)
	_, _ = pool.Reserve() // permanently held for this test

	w := NewWriter(pool)
	if status := w.Write(Record{Kind: KindEntity, GUID: guid.NewDynamic()}); status != StatusBufferExhaustion {
		t.Fatalf("Write() = %v, want StatusBufferExhaustion", status)
	}
}

func TestSendDirectoryPackageDoesNotRetry(t *testing.T) {
	pool := bufpool.NewManager(1, 64)
	_, _ = pool.Reserve() // hold the only buffer

	w := NewWriter(pool)
	if status := w.SendDirectoryPackage([]byte("dir")); status != StatusError {
		t.Fatalf("SendDirectoryPackage() = %v, want StatusError", status)
	}
}

func TestRelationshipRecordEncoding(t *testing.T) {
	pool := bufpool.NewManager(1, 128)
	w := NewWriter(pool)

	rec := Record{
		Kind:             KindRelationship,
		GUID:             guid.Static("rel"),
		RelationshipKind: RelationExecutionLink,
		HeadGUID:         guid.Static("head"),
		TailGUID:         guid.Static("tail"),
	}
	if status := w.Write(rec); status != StatusOk {
		t.Fatalf("Write() = %v, want StatusOk", status)
	}
	buf, ok := pool.GetReadableBuffer()
	if !ok {
		t.Fatal("expected readable buffer")
	}
	if len(buf.Bytes()) == 0 {
		t.Error("expected non-empty encoded relationship record")
	}
}
