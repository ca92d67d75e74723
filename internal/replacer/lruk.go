package replacer

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arr-cache/pagecache/internal/common"
	"github.com/arr-cache/pagecache/internal/logging"
)

// lrukNode is the per-frame access-history record described in
// spec.md §3: a bounded FIFO of the last K access timestamps, the
// timestamp of the first access (for LRU tie-breaking), and the two
// bookkeeping flags the lazy heap relies on.
type lrukNode struct {
	history     []uint64
	addedTS     uint64
	evictable   bool
	presentInPQ bool
}

func newLRUKNode(ts uint64) *lrukNode {
	return &lrukNode{history: []uint64{ts}, addedTS: ts, presentInPQ: true}
}

// kthLastTS returns the backward-k-distance key for this node: the
// timestamp of the k-th most recent access, or negInf if the node has
// fewer than k accesses.
func (n *lrukNode) kthLastTS(k int) uint64 {
	if len(n.history) == k {
		return n.history[0]
	}
	return negInf
}

func newPQEntry(frameID common.FrameID, k int, node *lrukNode) *pqEntry {
	return &pqEntry{frameID: frameID, kthLastTS: node.kthLastTS(k), earliestTS: node.history[0]}
}

// LRUKReplacer implements the Replacer interface using the lazy
// priority-heap design from spec.md §4.2: pushes are cheap (always
// insert), staleness is detected at pop time by comparing a pushed
// entry's snapshot against the node's live state.
//
// RecordAccess, SetEvictable and Remove hold globalMu shared and
// release nodeMu[i] before taking pqMu or numEvictableMu. Evict holds
// globalMu exclusively and takes pqMu, then nodeMu[i], then
// numEvictableMu.
type LRUKReplacer struct {
	globalMu sync.RWMutex
	nodeMu   []sync.Mutex
	nodes    []*lrukNode

	pqMu sync.Mutex
	pq   pqHeap

	k            int
	replacerSize int

	numEvictableMu sync.Mutex
	numEvictable   int

	nextTimestamp uint64
}

// NewLRUKReplacer constructs a replacer tracking up to numFrames
// frames, using K=k for the backward k-distance calculation.
func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	if numFrames <= 0 {
		panic("replacer: numFrames must be > 0")
	}
	if k < 1 {
		panic("replacer: k must be >= 1")
	}
	return &LRUKReplacer{
		nodeMu:       make([]sync.Mutex, numFrames),
		nodes:        make([]*lrukNode, numFrames),
		k:            k,
		replacerSize: numFrames,
	}
}

func (r *LRUKReplacer) checkFrameID(frameID common.FrameID) {
	if frameID < 0 || int(frameID) >= r.replacerSize {
		panic(fmt.Sprintf("replacer: %v: frame %d", common.ErrInvalidFrameID, frameID))
	}
}

func (r *LRUKReplacer) pushEntryLocked(e *pqEntry) {
	r.pqMu.Lock()
	heap.Push(&r.pq, e)
	r.pqMu.Unlock()
}

// RecordAccess notes an access to frameID at a fresh monotonic
// timestamp. Panics if frameID is out of range.
func (r *LRUKReplacer) RecordAccess(frameID common.FrameID, accessType common.AccessType) {
	r.checkFrameID(frameID)
	ts := atomic.AddUint64(&r.nextTimestamp, 1)

	r.globalMu.RLock()
	defer r.globalMu.RUnlock()

	r.nodeMu[frameID].Lock()
	node := r.nodes[frameID]
	if node == nil {
		node = newLRUKNode(ts)
		r.nodes[frameID] = node
		r.nodeMu[frameID].Unlock()
		r.pushEntryLocked(newPQEntry(frameID, r.k, node))
	} else {
		if len(node.history) == r.k {
			node.history = node.history[1:]
		}
		node.history = append(node.history, ts)
		r.nodeMu[frameID].Unlock()
	}
	logging.Log.Debugf("replacer: record access frame=%d type=%s ts=%d", frameID, accessType, ts)
}

// SetEvictable toggles frameID's eviction candidacy. Panics if frameID
// has no tracking state yet.
func (r *LRUKReplacer) SetEvictable(frameID common.FrameID, evictable bool) {
	r.checkFrameID(frameID)

	r.globalMu.RLock()
	defer r.globalMu.RUnlock()

	r.nodeMu[frameID].Lock()
	node := r.nodes[frameID]
	if node == nil {
		r.nodeMu[frameID].Unlock()
		panic(fmt.Sprintf("replacer: %v: frame %d has no tracking state", common.ErrInvalidFrameID, frameID))
	}
	if node.evictable == evictable {
		r.nodeMu[frameID].Unlock()
		return
	}
	node.evictable = evictable
	needsPush := evictable && !node.presentInPQ
	if needsPush {
		node.presentInPQ = true
	}
	entry := (*pqEntry)(nil)
	if needsPush {
		entry = newPQEntry(frameID, r.k, node)
	}
	r.nodeMu[frameID].Unlock()

	if entry != nil {
		r.pushEntryLocked(entry)
	}

	r.numEvictableMu.Lock()
	if evictable {
		r.numEvictable++
	} else {
		r.numEvictable--
	}
	r.numEvictableMu.Unlock()
}

// Remove drops frameID's tracking state. No-op if the frame has no
// tracking state; panics if the frame exists but is not evictable.
func (r *LRUKReplacer) Remove(frameID common.FrameID) {
	r.checkFrameID(frameID)

	r.globalMu.RLock()
	defer r.globalMu.RUnlock()

	r.nodeMu[frameID].Lock()
	node := r.nodes[frameID]
	if node == nil {
		r.nodeMu[frameID].Unlock()
		return
	}
	if !node.evictable {
		r.nodeMu[frameID].Unlock()
		panic(fmt.Sprintf("replacer: %v: frame %d", common.ErrFrameNotEvictable, frameID))
	}
	r.nodes[frameID] = nil
	r.nodeMu[frameID].Unlock()

	r.numEvictableMu.Lock()
	r.numEvictable--
	r.numEvictableMu.Unlock()
}

// Evict pops stale entries until it finds a live, evictable frame, or
// the heap drains. See spec.md §4.2 for the staleness rules.
func (r *LRUKReplacer) Evict() (common.FrameID, bool) {
	r.globalMu.Lock()
	defer r.globalMu.Unlock()

	r.pqMu.Lock()
	defer r.pqMu.Unlock()

	for r.pq.Len() > 0 {
		top := heap.Pop(&r.pq).(*pqEntry)

		r.nodeMu[top.frameID].Lock()
		node := r.nodes[top.frameID]
		if node == nil {
			r.nodeMu[top.frameID].Unlock()
			continue // entry belongs to a node that was removed/evicted already
		}
		if node.addedTS > top.earliestTS {
			r.nodeMu[top.frameID].Unlock()
			continue // node was recreated since this entry was pushed
		}

		stale := false
		if len(node.history) == r.k {
			stale = top.kthLastTS != node.history[0]
		} else {
			stale = top.kthLastTS != negInf || top.earliestTS != node.history[0]
		}
		if stale {
			heap.Push(&r.pq, newPQEntry(top.frameID, r.k, node))
			r.nodeMu[top.frameID].Unlock()
			continue
		}

		if !node.evictable {
			node.presentInPQ = false
			r.nodeMu[top.frameID].Unlock()
			continue
		}

		r.nodes[top.frameID] = nil
		r.nodeMu[top.frameID].Unlock()

		r.numEvictableMu.Lock()
		r.numEvictable--
		r.numEvictableMu.Unlock()

		logging.Log.Debugf("replacer: evict frame=%d", top.frameID)
		return top.frameID, true
	}
	return 0, false
}

// Size returns the number of frames currently marked evictable.
func (r *LRUKReplacer) Size() int {
	r.globalMu.RLock()
	defer r.globalMu.RUnlock()
	r.numEvictableMu.Lock()
	defer r.numEvictableMu.Unlock()
	return r.numEvictable
}
