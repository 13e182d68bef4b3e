package profiling

import (
	"fmt"
	"sync"

	"github.com/ARM-software/armnn-sub019/internal/directory"
)

// BackendContext is implemented by anything that registers its own
// counters into the directory and supplies their values on demand (the
// driver/compute-library side of the pipeline, in the original system).
// Mirrors the teacher's Backend interface: a small set of methods the
// orchestrator calls without knowing the concrete implementation.
type BackendContext interface {
	// ID returns the backend's stable identifier, used as the key in
	// CounterIdMap bindings.
	ID() string

	// RegisterCounters is called once, during (re)activation, so the
	// backend can register its categories/devices/counters into dir.
	RegisterCounters(dir *directory.Directory) error

	// GetCounterValue is called by the capture worker for any UID this
	// backend owns whose value isn't tracked in the shared value store
	// directly (e.g. it must be read from hardware or another process).
	GetCounterValue(uid uint16) (uint32, error)
}

// BackendRegistry tracks the set of active backends. Registration and
// unregistration are only valid while the service is not actively
// capturing (mirrors the directory's own register-only-outside-capture
// discipline).
type BackendRegistry struct {
	mu       sync.RWMutex
	backends map[string]BackendContext
}

// NewBackendRegistry returns an empty registry.
func NewBackendRegistry() *BackendRegistry {
	return &BackendRegistry{backends: make(map[string]BackendContext)}
}

// Register adds b, failing if its ID is already registered.
func (r *BackendRegistry) Register(b BackendContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[b.ID()]; exists {
		return NewError("Register", ErrCodeAlreadyRegistered, fmt.Sprintf("backend %q already registered", b.ID()))
	}
	r.backends[b.ID()] = b
	return nil
}

// Unregister removes a backend by ID. Valid only during a reset.
func (r *BackendRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.backends, id)
}

// All returns a snapshot slice of every registered backend.
func (r *BackendRegistry) All() []BackendContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BackendContext, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, b)
	}
	return out
}

// Get looks up a backend by ID.
func (r *BackendRegistry) Get(id string) (BackendContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[id]
	return b, ok
}

// NotifyAll calls fn for every registered backend, stopping at the first
// error.
func (r *BackendRegistry) NotifyAll(fn func(BackendContext) error) error {
	for _, b := range r.All() {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every registered backend.
func (r *BackendRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends = make(map[string]BackendContext)
}
