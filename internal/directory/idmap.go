package directory

import (
	"fmt"
	"sync"
)

// localID identifies a backend-owned counter from the backend's own point
// of view.
type localID struct {
	BackendID string
	LocalID   uint16
}

// IDMap is a bidirectional mapping between (backend-id, backend-local
// counter id) and global counter UID, for backends that register their
// own counters into the shared namespace.
type IDMap struct {
	mu         sync.RWMutex
	toGlobal   map[localID]uint16
	toLocal    map[uint16]localID
}

// NewIDMap returns an empty id map.
func NewIDMap() *IDMap {
	return &IDMap{
		toGlobal: make(map[localID]uint16),
		toLocal:  make(map[uint16]localID),
	}
}

// Bind records that (backendID, local) maps to globalUID.
func (m *IDMap) Bind(backendID string, local uint16, globalUID uint16) error {
	if backendID == "" {
		return fmt.Errorf("backend id: %w", ErrInvalidArgument)
	}
	key := localID{BackendID: backendID, LocalID: local}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.toGlobal[key]; exists {
		return fmt.Errorf("backend %q local id %d: %w", backendID, local, ErrAlreadyRegistered)
	}
	if _, exists := m.toLocal[globalUID]; exists {
		return fmt.Errorf("global uid %d: %w", globalUID, ErrAlreadyRegistered)
	}
	m.toGlobal[key] = globalUID
	m.toLocal[globalUID] = key
	return nil
}

// GlobalUID resolves a backend-local counter id to its global UID.
func (m *IDMap) GlobalUID(backendID string, local uint16) (uint16, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uid, ok := m.toGlobal[localID{BackendID: backendID, LocalID: local}]
	return uid, ok
}

// LocalID resolves a global counter UID back to its owning backend and
// local id.
func (m *IDMap) LocalID(globalUID uint16) (backendID string, local uint16, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, found := m.toLocal[globalUID]
	if !found {
		return "", 0, false
	}
	return key.BackendID, key.LocalID, true
}

// Clear drops all bindings; valid only during a reset.
func (m *IDMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toGlobal = make(map[localID]uint16)
	m.toLocal = make(map[uint16]localID)
}
