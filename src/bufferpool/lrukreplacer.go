package bufferpool

import (
	"container/list"
	"sort"
	"sync"

	"github.com/go-faster/errors"

	"github.com/Whitebeard2319/PoolKit/src/pkg/assert"
	"github.com/Whitebeard2319/PoolKit/src/pkg/common"
)

type frameState struct {
	count     uint64
	evictable bool
	// history holds the ticks of the most recent accesses, oldest first,
	// bounded to the last k. Once count >= k, history[0] is the
	// k-th-most-recent access tick.
	history []uint64
}

type kthAccess struct {
	frameID common.FrameID
	tick    uint64
}

// LRUKReplacer evicts by bounded backward-K-distance. Tracked frames live in
// exactly one of two generations:
//
//   - frames with fewer than k recorded accesses sit in newFrames (front =
//     most recently tracked) and count as infinitely distant, tie-broken by
//     tracking order: the earliest-tracked evictable frame goes first;
//   - frames with >= k accesses sit in cacheFrames, ascending by their
//     k-th-most-recent access tick, so the head has the largest backward
//     K-distance.
//
// A single mutex serializes all operations. The capacity path of
// RecordAccess evicts through evictLocked, never through the self-locking
// Evict, as the mutex is not reentrant.
type LRUKReplacer struct {
	mu sync.Mutex

	k         uint64
	numFrames uint64

	// maxSize tracks the effective capacity: pinning a frame shrinks it,
	// unpinning restores it. currSize counts evictable tracked frames.
	maxSize  uint64
	currSize uint64

	tick uint64

	frames map[common.FrameID]*frameState

	newFrames *list.List
	newLocate map[common.FrameID]*list.Element

	cacheFrames []kthAccess
}

var _ Replacer = &LRUKReplacer{}

func NewLRUKReplacer(numFrames uint64, k uint64) *LRUKReplacer {
	assert.Assert(numFrames > 0, "number of frames must be greater than zero")
	assert.Assert(k >= 1, "k must be at least 1")

	return &LRUKReplacer{
		k:         k,
		numFrames: numFrames,
		maxSize:   numFrames,
		frames:    make(map[common.FrameID]*frameState),
		newFrames: list.New(),
		newLocate: make(map[common.FrameID]*list.Element),
	}
}

// RecordAccess advances the logical clock and appends the tick to the
// frame's history. A first-ever access starts tracking the frame, evicting
// another frame first if the replacer is at capacity. The k-th access
// promotes the frame into the cached generation; later accesses re-splice it
// by its updated k-th-most-recent tick.
func (r *LRUKReplacer) RecordAccess(frameID common.FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if uint64(frameID) > r.numFrames {
		return errors.Wrapf(
			ErrFrameOutOfRange,
			"frame %d, replacer tracks frames up to %d",
			frameID,
			r.numFrames,
		)
	}

	r.tick++

	st, ok := r.frames[frameID]
	if !ok {
		st = &frameState{}
		r.frames[frameID] = st
	}
	st.count++

	if st.count > r.k {
		oldKth := st.history[0]
		copy(st.history, st.history[1:])
		st.history[len(st.history)-1] = r.tick

		r.cacheRemove(frameID, oldKth)
		r.cacheInsert(frameID, st.history[0])
		return nil
	}

	st.history = append(st.history, r.tick)

	if st.count == 1 {
		if r.currSize == r.maxSize {
			r.evictLocked()
		}

		st.evictable = true
		r.currSize++
		r.newLocate[frameID] = r.newFrames.PushFront(frameID)
	}

	if st.count == r.k {
		r.newFrames.Remove(r.newLocate[frameID])
		delete(r.newLocate, frameID)

		r.cacheInsert(frameID, st.history[0])
	}

	return nil
}

// Evict removes and returns the evictable frame with the largest backward
// K-distance. Returns false if no tracked frame is evictable.
func (r *LRUKReplacer) Evict() (common.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.evictLocked()
}

// evictLocked is the core of Evict, factored out so the capacity path of
// RecordAccess can call it under the already-held mutex.
func (r *LRUKReplacer) evictLocked() (common.FrameID, bool) {
	// The tail holds the earliest-tracked below-k frame; all of them beat
	// every cached frame.
	for elem := r.newFrames.Back(); elem != nil; elem = elem.Prev() {
		frameID := elem.Value.(common.FrameID)
		if !r.frames[frameID].evictable {
			continue
		}

		r.newFrames.Remove(elem)
		delete(r.newLocate, frameID)
		delete(r.frames, frameID)
		r.currSize--

		return frameID, true
	}

	for i, cached := range r.cacheFrames {
		if !r.frames[cached.frameID].evictable {
			continue
		}

		r.cacheFrames = append(r.cacheFrames[:i], r.cacheFrames[i+1:]...)
		delete(r.frames, cached.frameID)
		r.currSize--

		return cached.frameID, true
	}

	return 0, false
}

// SetEvictable toggles the frame's evictability. Pinning shrinks both the
// capacity ceiling and the evictable count, so pinned frames do not count
// against the replacer's working size. No-op for untracked frames.
func (r *LRUKReplacer) SetEvictable(frameID common.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.frames[frameID]
	if !ok {
		return
	}

	if st.evictable && !evictable {
		r.maxSize--
		r.currSize--
	}
	if !st.evictable && evictable {
		r.maxSize++
		r.currSize++
	}

	st.evictable = evictable
}

// Remove evicts the given frame regardless of its K-distance. Untracked
// frames are a no-op; removing a non-evictable frame is a precondition
// violation, the caller must unpin first.
func (r *LRUKReplacer) Remove(frameID common.FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if uint64(frameID) > r.numFrames {
		return errors.Wrapf(
			ErrFrameOutOfRange,
			"frame %d, replacer tracks frames up to %d",
			frameID,
			r.numFrames,
		)
	}

	st, ok := r.frames[frameID]
	if !ok {
		return nil
	}

	if !st.evictable {
		return errors.Wrapf(ErrFrameNotEvictable, "frame %d", frameID)
	}

	if st.count < r.k {
		r.newFrames.Remove(r.newLocate[frameID])
		delete(r.newLocate, frameID)
	} else {
		r.cacheRemove(frameID, st.history[0])
	}

	delete(r.frames, frameID)
	r.currSize--

	return nil
}

// Size reports the number of currently evictable tracked frames.
func (r *LRUKReplacer) Size() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.currSize
}

// cacheInsert splices the frame into the cached generation, keeping it
// ascending by k-th-most-recent tick.
func (r *LRUKReplacer) cacheInsert(frameID common.FrameID, kthTick uint64) {
	i := sort.Search(len(r.cacheFrames), func(i int) bool {
		return r.cacheFrames[i].tick > kthTick
	})

	r.cacheFrames = append(r.cacheFrames, kthAccess{})
	copy(r.cacheFrames[i+1:], r.cacheFrames[i:])
	r.cacheFrames[i] = kthAccess{frameID: frameID, tick: kthTick}
}

func (r *LRUKReplacer) cacheRemove(frameID common.FrameID, kthTick uint64) {
	i := sort.Search(len(r.cacheFrames), func(i int) bool {
		return r.cacheFrames[i].tick >= kthTick
	})

	// Ticks are unique, so the entry is exactly here.
	assert.Assert(
		i < len(r.cacheFrames) && r.cacheFrames[i].frameID == frameID,
		"cached frame %d not found by its k-th access tick %d",
		frameID,
		kthTick,
	)

	r.cacheFrames = append(r.cacheFrames[:i], r.cacheFrames[i+1:]...)
}
