package directory

import (
	"errors"
	"testing"
)

func TestIDMapBindAndResolve(t *testing.T) {
	m := NewIDMap()
	if err := m.Bind("gpu-backend", 3, 107); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	uid, ok := m.GlobalUID("gpu-backend", 3)
	if !ok || uid != 107 {
		t.Errorf("GlobalUID() = (%d, %v), want (107, true)", uid, ok)
	}

	backend, local, ok := m.LocalID(107)
	if !ok || backend != "gpu-backend" || local != 3 {
		t.Errorf("LocalID() = (%q, %d, %v), want (gpu-backend, 3, true)", backend, local, ok)
	}
}

func TestIDMapRejectsDuplicateBinding(t *testing.T) {
	m := NewIDMap()
	_ = m.Bind("gpu-backend", 1, 10)
	if err := m.Bind("gpu-backend", 1, 20); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate local binding error = %v, want ErrAlreadyRegistered", err)
	}
	if err := m.Bind("other-backend", 2, 10); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate global binding error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestIDMapClear(t *testing.T) {
	m := NewIDMap()
	_ = m.Bind("b", 1, 1)
	m.Clear()
	if _, ok := m.GlobalUID("b", 1); ok {
		t.Error("GlobalUID found entry after Clear()")
	}
}
