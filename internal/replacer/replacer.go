// Package replacer implements the LRU-K eviction policy used by the
// buffer pool to pick a victim frame.
package replacer

import "github.com/arr-cache/pagecache/internal/common"

// Replacer tracks per-frame access history and decides which frame to
// evict when the buffer pool needs to reclaim a slot. Implementations
// must be safe for concurrent use.
type Replacer interface {
	// RecordAccess notes that frameID was touched at the current
	// logical timestamp. Creates tracking state for frameID on first
	// call. Panics if frameID is out of range.
	RecordAccess(frameID common.FrameID, accessType common.AccessType)

	// SetEvictable toggles whether frameID is a candidate for Evict.
	// The buffer pool calls this with false while a frame is pinned
	// and true once its pin count drops to zero. Panics if frameID
	// has no tracking state.
	SetEvictable(frameID common.FrameID, evictable bool)

	// Remove drops frameID's tracking state outright, independent of
	// its backward k-distance. Panics if frameID is not evictable.
	Remove(frameID common.FrameID)

	// Evict selects the evictable frame with the largest backward
	// k-distance (ties broken by earliest first access) and removes
	// its tracking state. Returns false if no frame is evictable.
	Evict() (common.FrameID, bool)

	// Size reports the number of frames currently evictable.
	Size() int
}
