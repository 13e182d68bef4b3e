package directory

import (
	"errors"
	"testing"
)

func TestRegisterCategoryRejectsDuplicateAndEmpty(t *testing.T) {
	d := New()
	if _, err := d.RegisterCategory("cpu"); err != nil {
		t.Fatalf("RegisterCategory(cpu) = %v", err)
	}
	if _, err := d.RegisterCategory("cpu"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate RegisterCategory error = %v, want ErrAlreadyRegistered", err)
	}
	if _, err := d.RegisterCategory(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty name error = %v, want ErrInvalidArgument", err)
	}
}

func TestRegisterCounterReservesCoreRange(t *testing.T) {
	d := New()
	if _, err := d.RegisterCategory("cpu"); err != nil {
		t.Fatal(err)
	}

	cores := uint16(4)
	counter, err := d.RegisterCounter(RegisterCounterArgs{
		UID:            10,
		ParentCategory: "cpu",
		Multiplier:     1.0,
		Name:           "cycles",
		Cores:          &cores,
	})
	if err != nil {
		t.Fatalf("RegisterCounter: %v", err)
	}
	if counter.MaxUID != 13 {
		t.Errorf("MaxUID = %d, want 13", counter.MaxUID)
	}

	// The next counter must not be able to reuse any UID in [10,13].
	_, err = d.RegisterCounter(RegisterCounterArgs{
		UID:            12,
		ParentCategory: "cpu",
		Multiplier:     1.0,
		Name:           "other",
	})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("reused uid error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegisterCounterRequiresKnownCategory(t *testing.T) {
	d := New()
	_, err := d.RegisterCounter(RegisterCounterArgs{
		UID:            0,
		ParentCategory: "missing",
		Multiplier:     1.0,
		Name:           "x",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRegisterCounterRejectsNonPositiveMultiplier(t *testing.T) {
	d := New()
	_, _ = d.RegisterCategory("cpu")
	_, err := d.RegisterCounter(RegisterCounterArgs{
		UID:            0,
		ParentCategory: "cpu",
		Multiplier:     0,
		Name:           "x",
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestClearResetsEverything(t *testing.T) {
	d := New()
	_, _ = d.RegisterCategory("cpu")
	_, _ = d.RegisterCounter(RegisterCounterArgs{UID: 0, ParentCategory: "cpu", Multiplier: 1, Name: "x"})
	d.Clear()
	if d.CounterCount() != 0 {
		t.Errorf("CounterCount() after Clear() = %d, want 0", d.CounterCount())
	}
	if _, err := d.RegisterCategory("cpu"); err != nil {
		t.Errorf("re-registering after Clear(): %v", err)
	}
}

func TestDeviceAndCounterSetAttachToCategory(t *testing.T) {
	d := New()
	cat, _ := d.RegisterCategory("cpu")
	dev, err := d.RegisterDevice("big-core", 4, "cpu")
	if err != nil {
		t.Fatalf("RegisterDevice: %v", err)
	}
	if cat.DeviceUID == nil || *cat.DeviceUID != dev.UID {
		t.Errorf("category device uid not attached")
	}

	cs, err := d.RegisterCounterSet("per-core", 4, "cpu")
	if err != nil {
		t.Fatalf("RegisterCounterSet: %v", err)
	}
	if cat.CounterSetUID == nil || *cat.CounterSetUID != cs.UID {
		t.Errorf("category counter set uid not attached")
	}
}
