package directory

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ValueStore is a dense map of counter UID to an atomic 32-bit value. All
// arithmetic is relaxed: counters are telemetry, not synchronization
// primitives, so Go's plain atomic.Uint32 operations (the language has no
// separate relaxed/acquire API) are the correct and idiomatic fit.
type ValueStore struct {
	mu     sync.Mutex
	slots  []*atomic.Uint32
	exists []bool
}

// NewValueStore returns an empty value store.
func NewValueStore() *ValueStore {
	return &ValueStore{}
}

// Initialize grows the index as required and appends a zero-valued atomic
// slot for uid if one does not already exist.
func (s *ValueStore) Initialize(uid uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.growLocked(uid)
	if s.slots[uid] == nil {
		s.slots[uid] = &atomic.Uint32{}
		s.exists[uid] = true
	}
}

func (s *ValueStore) growLocked(uid uint16) {
	if int(uid) < len(s.slots) {
		return
	}
	newLen := int(uid) + 1
	grownSlots := make([]*atomic.Uint32, newLen)
	grownExists := make([]bool, newLen)
	copy(grownSlots, s.slots)
	copy(grownExists, s.exists)
	s.slots = grownSlots
	s.exists = grownExists
}

func (s *ValueStore) slot(uid uint16) (*atomic.Uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(uid) >= len(s.exists) || !s.exists[uid] {
		return nil, fmt.Errorf("uid %d: %w", uid, ErrNotRegistered)
	}
	return s.slots[uid], nil
}

// GetAbsolute returns the current value of uid.
func (s *ValueStore) GetAbsolute(uid uint16) (uint32, error) {
	slot, err := s.slot(uid)
	if err != nil {
		return 0, err
	}
	return slot.Load(), nil
}

// GetDelta reads the current value of uid and resets it to zero,
// returning the value observed before the reset (a read-then-subtract, so
// the next call reports only what accumulated since this one).
func (s *ValueStore) GetDelta(uid uint16) (uint32, error) {
	slot, err := s.slot(uid)
	if err != nil {
		return 0, err
	}
	v := slot.Load()
	slot.Add(-v) // subtract v back out
	return v, nil
}

// Set stores v into uid.
func (s *ValueStore) Set(uid uint16, v uint32) error {
	slot, err := s.slot(uid)
	if err != nil {
		return err
	}
	slot.Store(v)
	return nil
}

// Add adds v to uid and returns the value before the addition.
func (s *ValueStore) Add(uid uint16, v uint32) (uint32, error) {
	slot, err := s.slot(uid)
	if err != nil {
		return 0, err
	}
	return slot.Add(v) - v, nil
}

// Subtract subtracts v from uid and returns the value before the
// subtraction.
func (s *ValueStore) Subtract(uid uint16, v uint32) (uint32, error) {
	slot, err := s.slot(uid)
	if err != nil {
		return 0, err
	}
	return slot.Add(-v) + v, nil
}

// Increment adds one to uid and returns the value before the increment.
func (s *ValueStore) Increment(uid uint16) (uint32, error) {
	return s.Add(uid, 1)
}
