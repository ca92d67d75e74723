package replacer

import (
	"testing"

	"github.com/arr-cache/pagecache/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLRUKReplacer(t *testing.T) {
	t.Run("ValidSize", func(t *testing.T) {
		r := NewLRUKReplacer(5, 2)
		assert.Equal(t, 0, r.Size())
		assert.Equal(t, 5, r.replacerSize)
	})

	t.Run("ZeroFrames", func(t *testing.T) {
		assert.Panics(t, func() { NewLRUKReplacer(0, 2) })
	})

	t.Run("ZeroK", func(t *testing.T) {
		assert.Panics(t, func() { NewLRUKReplacer(5, 0) })
	})
}

func TestLRUKReplacerBackwardKDistance(t *testing.T) {
	// Mirrors the canonical LRU-K scenario from lru_k_replacer_test.cpp:
	// frames with fewer than K accesses (+inf distance) are always
	// evicted before frames that have K, and among the +inf frames the
	// least-recently-used (by first access) goes first.
	r := NewLRUKReplacer(7, 2)

	for _, f := range []common.FrameID{1, 2, 3, 4, 5, 6} {
		r.RecordAccess(f, common.AccessUnknown)
	}
	r.RecordAccess(1, common.AccessUnknown)
	for _, f := range []common.FrameID{2, 3, 4, 5, 6, 1} {
		r.SetEvictable(f, true)
	}
	require.Equal(t, 6, r.Size())

	// Frame 1 has 2 accesses (k-distance finite); frames 2..6 have 1
	// access each (+inf). Evict should take the oldest +inf frame, 2.
	f, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(2), f)
	assert.Equal(t, 5, r.Size())

	r.RecordAccess(3, common.AccessUnknown)
	r.RecordAccess(4, common.AccessUnknown)
	r.RecordAccess(5, common.AccessUnknown)
	r.RecordAccess(4, common.AccessUnknown)
	r.SetEvictable(6, false)
	require.Equal(t, 4, r.Size())

	// Frame 1's second-most-recent access is still its very first
	// (ts 1), older than frames 3/4/5's second-most-recent access, so
	// frame 1 has the largest backward k-distance of the evictable set.
	f, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), f)
	assert.Equal(t, 3, r.Size())
}

func TestLRUKReplacerSetEvictable(t *testing.T) {
	r := NewLRUKReplacer(3, 2)
	r.RecordAccess(0, common.AccessUnknown)

	assert.Panics(t, func() { r.SetEvictable(1, true) }, "no tracking state yet")

	r.SetEvictable(0, true)
	assert.Equal(t, 1, r.Size())

	r.SetEvictable(0, false)
	assert.Equal(t, 0, r.Size())

	r.SetEvictable(0, false) // idempotent no-op, not a double-decrement
	assert.Equal(t, 0, r.Size())
}

func TestLRUKReplacerRemove(t *testing.T) {
	r := NewLRUKReplacer(3, 2)
	r.RecordAccess(0, common.AccessUnknown)

	r.Remove(1) // no tracking state: no-op, no panic
	assert.Panics(t, func() { r.Remove(0) }, "not evictable")

	r.SetEvictable(0, true)
	require.Equal(t, 1, r.Size())
	r.Remove(0)
	assert.Equal(t, 0, r.Size())

	_, ok := r.Evict()
	assert.False(t, ok, "removed frame must not be evictable anymore")
}

func TestLRUKReplacerEvictEmpty(t *testing.T) {
	r := NewLRUKReplacer(3, 2)
	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestLRUKReplacerStaleEntrySkipped(t *testing.T) {
	// Pushing an entry, then recording more accesses for the same
	// frame before it's popped, must not let the stale snapshot win:
	// Evict has to detect the mismatch and requeue a fresh entry.
	r := NewLRUKReplacer(2, 2)

	r.RecordAccess(0, common.AccessUnknown)
	r.SetEvictable(0, true) // frame 0's +inf entry was pushed by its first RecordAccess

	r.RecordAccess(1, common.AccessUnknown)
	r.RecordAccess(1, common.AccessUnknown)
	r.SetEvictable(1, true) // frame 1 now has a finite k-distance

	r.RecordAccess(0, common.AccessUnknown) // frame 0 now also has 2 accesses, staler entry in heap is now wrong

	f, ok := r.Evict()
	require.True(t, ok)
	// Both frames now have 2 accesses. Frame 0's backward-2nd access
	// (its very first, ts 1) is older than frame 1's (ts 2), so frame
	// 0 has the larger backward k-distance and is evicted first.
	assert.Equal(t, common.FrameID(0), f)
}

func TestLRUKReplacerInvalidFrameID(t *testing.T) {
	r := NewLRUKReplacer(3, 2)
	assert.Panics(t, func() { r.RecordAccess(-1, common.AccessUnknown) })
	assert.Panics(t, func() { r.RecordAccess(3, common.AccessUnknown) })
}

func TestLRUKReplacerConcurrentAccess(t *testing.T) {
	r := NewLRUKReplacer(16, 2)
	done := make(chan struct{})
	for i := 0; i < 16; i++ {
		go func(f common.FrameID) {
			for j := 0; j < 100; j++ {
				r.RecordAccess(f, common.AccessUnknown)
			}
			r.SetEvictable(f, true)
			done <- struct{}{}
		}(common.FrameID(i))
	}
	for i := 0; i < 16; i++ {
		<-done
	}
	assert.Equal(t, 16, r.Size())

	evicted := make(map[common.FrameID]bool)
	for {
		f, ok := r.Evict()
		if !ok {
			break
		}
		evicted[f] = true
	}
	assert.Len(t, evicted, 16)
}
