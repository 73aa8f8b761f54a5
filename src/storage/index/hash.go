package index

import (
	"github.com/cespare/xxhash/v2"

	"github.com/Whitebeard2319/PoolKit/src/pkg/common"
	"github.com/Whitebeard2319/PoolKit/src/pkg/utils"
)

// DefaultHashSeed is used where a stable, process-independent seed is desired.
// Chosen as an arbitrary odd 64-bit constant (related to golden ratio).
const DefaultHashSeed uint64 = 0x9e3779b97f4a7c15

// HashFunc maps a key to the 64-bit hash whose low bits index the directory.
// It is called under the index lock and must be deterministic.
type HashFunc[K comparable] func(K) uint64

// DeterministicHasher64 wraps xxhash (cespare/xxhash/v2) with a deterministic
// seed so that bucket layouts are reproducible across processes.
type DeterministicHasher64 struct {
	seed uint64
	h    *xxhash.Digest
}

// NewDeterministicHasher64 creates a hasher with the provided seed.
func NewDeterministicHasher64(seed uint64) DeterministicHasher64 {
	return DeterministicHasher64{
		seed: seed,
		h:    xxhash.NewWithSeed(seed),
	}
}

// SetSeed updates the seed and resets the internal state.
func (h *DeterministicHasher64) SetSeed(seed uint64) {
	h.seed = seed
	h.Reset()
}

// Reset initializes the internal state using the seed.
func (h *DeterministicHasher64) Reset() {
	h.h.ResetWithSeed(h.seed)
}

// Write mixes the provided bytes into the hash state.
func (h *DeterministicHasher64) Write(p []byte) int {
	n, _ := h.h.Write(p)
	return n
}

// WriteString mixes the provided string into the hash state.
func (h *DeterministicHasher64) WriteString(s string) int {
	n, _ := h.h.WriteString(s)
	return n
}

// Sum64 returns the current hash value.
func (h *DeterministicHasher64) Sum64() uint64 {
	return h.h.Sum64()
}

// StringHashFunc returns a seeded HashFunc for string keys.
func StringHashFunc(seed uint64) HashFunc[string] {
	h := NewDeterministicHasher64(seed)
	return func(key string) uint64 {
		h.Reset()
		h.WriteString(key)
		return h.Sum64()
	}
}

// Uint64HashFunc returns a seeded HashFunc for uint64 keys.
func Uint64HashFunc(seed uint64) HashFunc[uint64] {
	h := NewDeterministicHasher64(seed)
	return func(key uint64) uint64 {
		h.Reset()
		h.Write(utils.Uint64ToBytes(key))
		return h.Sum64()
	}
}

// PageIdentityHashFunc returns a seeded HashFunc for page identities, the
// key type the buffer pool's page table uses.
func PageIdentityHashFunc(seed uint64) HashFunc[common.PageIdentity] {
	h := NewDeterministicHasher64(seed)
	return func(key common.PageIdentity) uint64 {
		h.Reset()
		h.Write(utils.Must(key.MarshalBinary()))
		return h.Sum64()
	}
}
