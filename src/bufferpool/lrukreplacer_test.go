package bufferpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Whitebeard2319/PoolKit/src/pkg/common"
)

func recordAll(t *testing.T, r *LRUKReplacer, frames ...common.FrameID) {
	t.Helper()
	for _, f := range frames {
		require.NoError(t, r.RecordAccess(f))
	}
}

func TestLRUKScenario(t *testing.T) {
	r := NewLRUKReplacer(3, 2)

	recordAll(t, r, 1, 2, 3, 1)

	// Frame 1 reached k accesses and moved to the cached generation;
	// frames 2 and 3 are below k, with 2 tracked first.
	assert.Equal(t, uint64(3), r.Size())

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(2), victim)

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(3), victim)

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), victim)

	_, ok = r.Evict()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), r.Size())
}

func TestLRUKEvictEmpty(t *testing.T) {
	r := NewLRUKReplacer(8, 2)

	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestLRUKPromotionAtExactlyK(t *testing.T) {
	// k-1 accesses keep the frame in the below-k generation.
	r := NewLRUKReplacer(8, 3)
	recordAll(t, r, 1, 1, 2)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), victim, "frame 1 is still below k and was tracked first")

	// The k-th access promotes, so the below-k frame goes first even
	// though it was tracked later.
	r = NewLRUKReplacer(8, 3)
	recordAll(t, r, 1, 1, 1, 2)

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(2), victim)

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), victim)
}

func TestLRUKBelowKTieBreak(t *testing.T) {
	r := NewLRUKReplacer(8, 2)
	recordAll(t, r, 4, 5, 6)

	// All below k: earliest-tracked wins.
	for _, want := range []common.FrameID{4, 5, 6} {
		victim, ok := r.Evict()
		require.True(t, ok)
		assert.Equal(t, want, victim)
	}
}

func TestLRUKBackwardKDistanceOrdering(t *testing.T) {
	r := NewLRUKReplacer(8, 2)
	recordAll(t, r, 0, 1, 0, 1)

	// Both cached; frame 0's 2nd-most-recent access is older.
	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(0), victim)

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), victim)
}

func TestLRUKResplicePastK(t *testing.T) {
	r := NewLRUKReplacer(8, 2)
	recordAll(t, r, 0, 1, 0, 1, 0)

	// Frame 0's history advanced to ticks {3,5}, frame 1 sits at {2,4}:
	// frame 1 now holds the oldest k-th-most-recent access.
	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), victim)

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(0), victim)
}

func TestLRUKKEqualsOneIsPlainLRU(t *testing.T) {
	r := NewLRUKReplacer(8, 1)
	recordAll(t, r, 0, 1, 2, 0)

	for _, want := range []common.FrameID{1, 2, 0} {
		victim, ok := r.Evict()
		require.True(t, ok)
		assert.Equal(t, want, victim)
	}
}

func TestLRUKSetEvictableAccounting(t *testing.T) {
	r := NewLRUKReplacer(8, 2)
	recordAll(t, r, 1, 2, 3)

	assert.Equal(t, uint64(3), r.Size())

	r.SetEvictable(1, false)
	assert.Equal(t, uint64(2), r.Size())

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(2), victim, "pinned frame 1 must be skipped")

	r.SetEvictable(1, true)
	assert.Equal(t, uint64(2), r.Size())

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), victim)

	// Untracked frames are a no-op.
	r.SetEvictable(7, false)
	assert.Equal(t, uint64(1), r.Size())
}

func TestLRUKCapacityAutoEvict(t *testing.T) {
	r := NewLRUKReplacer(3, 2)
	recordAll(t, r, 1, 2, 3)

	// Tracking a fourth frame at capacity evicts the earliest-tracked
	// below-k frame first.
	recordAll(t, r, 0)
	assert.Equal(t, uint64(3), r.Size())

	for _, want := range []common.FrameID{2, 3, 0} {
		victim, ok := r.Evict()
		require.True(t, ok)
		assert.Equal(t, want, victim)
	}
}

func TestLRUKRemove(t *testing.T) {
	r := NewLRUKReplacer(8, 2)

	// Untracked: no-op.
	require.NoError(t, r.Remove(5))

	recordAll(t, r, 1, 2, 2)
	assert.Equal(t, uint64(2), r.Size())

	// Below-k removal.
	require.NoError(t, r.Remove(1))
	assert.Equal(t, uint64(1), r.Size())

	// Cached removal.
	require.NoError(t, r.Remove(2))
	assert.Equal(t, uint64(0), r.Size())

	_, ok := r.Evict()
	assert.False(t, ok)

	// Pinned frames must be unpinned before removal.
	recordAll(t, r, 3)
	r.SetEvictable(3, false)
	require.ErrorIs(t, r.Remove(3), ErrFrameNotEvictable)
}

func TestLRUKFrameIDValidation(t *testing.T) {
	r := NewLRUKReplacer(5, 2)

	require.ErrorIs(t, r.RecordAccess(6), ErrFrameOutOfRange)
	require.ErrorIs(t, r.Remove(6), ErrFrameOutOfRange)
	assert.Equal(t, uint64(0), r.Size(), "rejected calls must not mutate state")

	require.NoError(t, r.RecordAccess(5))
}

func TestLRUKConcurrentRecordAccess(t *testing.T) {
	const numFrames = 128

	r := NewLRUKReplacer(numFrames, 2)

	var wg sync.WaitGroup
	wg.Add(numFrames)
	for i := 0; i < numFrames; i++ {
		i := i
		go func() {
			defer wg.Done()
			assert.NoError(t, r.RecordAccess(common.FrameID(i)))
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(numFrames), r.Size())

	victims := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		v, ok := r.Evict()
		require.True(t, ok)
		victims = append(victims, v)
	}

	expected := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, victims)
	assert.Equal(t, uint64(0), r.Size())
}
