package index

import (
	"sync"

	"github.com/go-faster/errors"

	"github.com/Whitebeard2319/PoolKit/src/pkg/assert"
)

// MaxGlobalDepth caps directory doubling. Once the directory is indexed by
// this many hash bits, an insert that would require another doubling is
// rejected with ErrDirectoryOverflow instead.
const MaxGlobalDepth = 20

var ErrDirectoryOverflow = errors.New("hash directory is at maximum depth")

type entry[K comparable, V any] struct {
	key   K
	value V
}

type bucket[K comparable, V any] struct {
	// depth is the number of low-order hash bits that discriminate
	// entries routed to this bucket. Always <= the directory's global
	// depth.
	depth int
	items []entry[K, V]
}

func (b *bucket[K, V]) find(key K) (V, bool) {
	for i := range b.items {
		if b.items[i].key == key {
			return b.items[i].value, true
		}
	}

	var zeroVal V
	return zeroVal, false
}

func (b *bucket[K, V]) remove(key K) bool {
	for i := range b.items {
		if b.items[i].key == key {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// insert updates in place if the key is present. Returns false iff the
// bucket is full and the key is absent.
func (b *bucket[K, V]) insert(key K, value V, capacity int) bool {
	for i := range b.items {
		if b.items[i].key == key {
			b.items[i].value = value
			return true
		}
	}

	if len(b.items) >= capacity {
		return false
	}

	b.items = append(b.items, entry[K, V]{key: key, value: value})
	return true
}

// ExtendibleHashIndex is a directory-based dynamic hash table. The directory
// holds 2^globalDepth bucket references; several slots may alias one bucket
// while its local depth is below the global depth. Buckets split on demand
// and are never merged back, so the structure only grows within a session.
//
// All operations serialize on one coarse mutex.
type ExtendibleHashIndex[K comparable, V any] struct {
	mu sync.Mutex

	hash       HashFunc[K]
	bucketSize int

	globalDepth int
	numBuckets  int
	dir         []*bucket[K, V]
}

func NewExtendibleHashIndex[K comparable, V any](
	bucketSize int,
	hash HashFunc[K],
) *ExtendibleHashIndex[K, V] {
	assert.Assert(bucketSize > 0, "bucket size must be greater than zero")
	assert.Assert(hash != nil, "hash function is required")

	return &ExtendibleHashIndex[K, V]{
		hash:       hash,
		bucketSize: bucketSize,
		dir:        []*bucket[K, V]{{}},
		numBuckets: 1,
	}
}

func (h *ExtendibleHashIndex[K, V]) indexOf(key K) uint64 {
	mask := uint64(1)<<h.globalDepth - 1
	return h.hash(key) & mask
}

// Find returns the value stored under key, if any.
func (h *ExtendibleHashIndex[K, V]) Find(key K) (V, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.dir[h.indexOf(key)].find(key)
}

// Insert stores value under key, updating in place if the key is present.
// A full target bucket is split, doubling the directory first when the
// bucket's local depth has caught up with the global depth. Returns
// ErrDirectoryOverflow if accommodating the key would push the global depth
// past MaxGlobalDepth; the failing attempt commits nothing.
func (h *ExtendibleHashIndex[K, V]) Insert(key K, value V) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		b := h.dir[h.indexOf(key)]
		if b.insert(key, value, h.bucketSize) {
			return nil
		}

		if b.depth == h.globalDepth {
			if h.globalDepth >= MaxGlobalDepth {
				return errors.Wrapf(
					ErrDirectoryOverflow,
					"inserting key would exceed global depth %d",
					MaxGlobalDepth,
				)
			}

			h.globalDepth++
			// Each new upper-half slot aliases the bucket of its
			// lower-half counterpart.
			h.dir = append(h.dir, h.dir...)
		}

		h.splitBucket(b)
		// Splitting strictly grows the discriminating bit count, so the
		// retry terminates unless the keys collide on every bit below
		// MaxGlobalDepth, in which case the cap check above fires.
	}
}

// splitBucket moves b's entries with the newly discriminating hash bit set
// into a fresh bucket and repoints exactly the aliasing directory slots with
// that bit set.
func (h *ExtendibleHashIndex[K, V]) splitBucket(b *bucket[K, V]) {
	b.depth++
	newBucket := &bucket[K, V]{depth: b.depth}
	h.numBuckets++

	bit := uint64(1) << (b.depth - 1)

	kept := b.items[:0]
	for _, it := range b.items {
		if h.hash(it.key)&bit != 0 {
			newBucket.items = append(newBucket.items, it)
		} else {
			kept = append(kept, it)
		}
	}
	b.items = kept

	for i := range h.dir {
		if h.dir[i] == b && uint64(i)&bit != 0 {
			h.dir[i] = newBucket
		}
	}
}

// Remove deletes key from its owning bucket. Buckets are never coalesced and
// the directory never shrinks.
func (h *ExtendibleHashIndex[K, V]) Remove(key K) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.dir[h.indexOf(key)].remove(key)
}

func (h *ExtendibleHashIndex[K, V]) GetGlobalDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.globalDepth
}

func (h *ExtendibleHashIndex[K, V]) GetLocalDepth(dirIndex int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.dir[dirIndex].depth
}

func (h *ExtendibleHashIndex[K, V]) GetNumBuckets() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.numBuckets
}
