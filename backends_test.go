package profiling

import "testing"

func TestBackendRegistryRegisterDuplicateFails(t *testing.T) {
	r := NewBackendRegistry()
	b1 := NewMockBackendContext("b1")
	b2 := NewMockBackendContext("b1")

	if err := r.Register(b1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := r.Register(b2)
	if !IsCode(err, ErrCodeAlreadyRegistered) {
		t.Errorf("expected ErrCodeAlreadyRegistered, got %v", err)
	}
}

func TestBackendRegistryNotifyAllStopsOnFirstError(t *testing.T) {
	r := NewBackendRegistry()
	ok := NewMockBackendContext("ok")
	failing := NewMockBackendContext("failing")
	failing.SetRegisterError(NewError("RegisterCounters", ErrCodeBackendError, "refused"))

	if err := r.Register(ok); err != nil {
		t.Fatalf("Register(ok): %v", err)
	}
	if err := r.Register(failing); err != nil {
		t.Fatalf("Register(failing): %v", err)
	}

	err := r.NotifyAll(func(b BackendContext) error {
		return b.RegisterCounters(nil)
	})
	if err == nil {
		t.Fatal("expected NotifyAll to propagate the failing backend's error")
	}
}

func TestBackendRegistryGetAndClear(t *testing.T) {
	r := NewBackendRegistry()
	b := NewMockBackendContext("b1")
	if err := r.Register(b); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if got, ok := r.Get("b1"); !ok || got != b {
		t.Fatalf("Get(%q) = %v, %v; want %v, true", "b1", got, ok, b)
	}

	r.Clear()
	if _, ok := r.Get("b1"); ok {
		t.Error("expected Get to fail after Clear")
	}
	if len(r.All()) != 0 {
		t.Error("expected All() to be empty after Clear")
	}
}

func TestBackendRegistryUnregister(t *testing.T) {
	r := NewBackendRegistry()
	b := NewMockBackendContext("b1")
	if err := r.Register(b); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Unregister("b1")
	if _, ok := r.Get("b1"); ok {
		t.Error("expected backend to be gone after Unregister")
	}
}
