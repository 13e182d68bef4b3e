package statemachine

import (
	"sync"
	"testing"
)

func TestInitialState(t *testing.T) {
	m := New()
	if got := m.Get(); got != Uninitialised {
		t.Errorf("initial state = %s, want %s", got, Uninitialised)
	}
}

func TestLegalTransitions(t *testing.T) {
	path := []State{NotConnected, WaitingForAck, Active, NotConnected, WaitingForAck, Active}
	m := New()
	for _, target := range path {
		if err := m.TransitionTo(target); err != nil {
			t.Fatalf("TransitionTo(%s) from %s: %v", target, m.Get(), err)
		}
		if got := m.Get(); got != target {
			t.Errorf("after TransitionTo(%s), Get() = %s", target, got)
		}
	}
}

func TestIllegalTransition(t *testing.T) {
	m := New()
	// Uninitialised -> WaitingForAck skips NotConnected.
	err := m.TransitionTo(WaitingForAck)
	if err == nil {
		t.Fatal("expected InvalidTransitionError, got nil")
	}
	if _, ok := err.(*InvalidTransitionError); !ok {
		t.Errorf("error type = %T, want *InvalidTransitionError", err)
	}
	if got := m.Get(); got != Uninitialised {
		t.Errorf("state changed after failed transition: %s", got)
	}
}

func TestReset(t *testing.T) {
	m := New()
	_ = m.TransitionTo(NotConnected)
	_ = m.TransitionTo(WaitingForAck)
	_ = m.TransitionTo(Active)
	m.Reset()
	if got := m.Get(); got != Uninitialised {
		t.Errorf("after Reset(), Get() = %s, want %s", got, Uninitialised)
	}
}

func TestConcurrentTransitionsToSameTarget(t *testing.T) {
	m := New()
	_ = m.TransitionTo(NotConnected)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.TransitionTo(WaitingForAck)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: TransitionTo(WaitingForAck) = %v, want nil", i, err)
		}
	}
	if got := m.Get(); got != WaitingForAck {
		t.Errorf("final state = %s, want %s", got, WaitingForAck)
	}
}
