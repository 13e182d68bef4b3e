package profiling

import "testing"

func TestDefaultServiceOptions(t *testing.T) {
	opts := DefaultServiceOptions()

	if !opts.EnableProfiling {
		t.Error("expected EnableProfiling to default true")
	}
	if opts.TimelineEnabled {
		t.Error("expected TimelineEnabled to default false")
	}
	if opts.CapturePeriod != DefaultCapturePeriod {
		t.Errorf("CapturePeriod = %v, want %v", opts.CapturePeriod, DefaultCapturePeriod)
	}
	if opts.BufferCount != DefaultBufferCount {
		t.Errorf("BufferCount = %d, want %d", opts.BufferCount, DefaultBufferCount)
	}
	if opts.BufferCapacity != DefaultBufferCapacity {
		t.Errorf("BufferCapacity = %d, want %d", opts.BufferCapacity, DefaultBufferCapacity)
	}
}
