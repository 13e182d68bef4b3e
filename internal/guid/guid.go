// Package guid generates the 64-bit opaque identifiers used throughout the
// profiling directory and timeline stream.
//
// Two flavors are produced: dynamic guids, drawn from a process-wide random
// sequence and guaranteed unique for the life of the process, and static
// guids, a deterministic hash of a string so that two registrations of the
// same name (even in different process instances) agree on an identifier.
package guid

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Guid is an opaque 64-bit identifier.
type Guid uint64

// generator is the process-wide dynamic-guid source. It combines a random
// 64-bit salt (seeded once at init/reset) with a monotonic counter so that
// two guids generated in the same process never collide, without needing a
// syscall per call.
type generator struct {
	salt    uint64
	counter atomic.Uint64
}

var global atomic.Pointer[generator]

func init() {
	global.Store(newGenerator())
}

func newGenerator() *generator {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failures are effectively unobservable on real
		// systems; fall back to a fixed salt rather than panic so a
		// starved entropy pool never takes down the profiling
		// pipeline.
		binary.LittleEndian.PutUint64(seed[:], 0x9E3779B97F4A7C15)
	}
	g := &generator{salt: binary.LittleEndian.Uint64(seed[:])}
	return g
}

// ResetGenerator reinitializes the dynamic-guid generator. Tests call this
// explicitly to get a clean counter between cases; production code never
// needs to call it outside of Service.Reset.
func ResetGenerator() {
	global.Store(newGenerator())
}

// NewDynamic returns a fresh dynamic guid, unique within this process run.
func NewDynamic() Guid {
	g := global.Load()
	n := g.counter.Add(1)
	return Guid(g.salt ^ (n * 0x2545F4914F6CDD1D))
}

// Static returns a deterministic guid for name: the same name always
// produces the same guid, independent of process or generator state.
func Static(name string) Guid {
	return Guid(xxhash.Sum64String(name))
}
