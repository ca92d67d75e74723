package replacer

import "github.com/arr-cache/pagecache/internal/common"

// negInf is the sentinel backward-k-distance timestamp for a frame
// with fewer than k recorded accesses: it sorts before every real
// timestamp, so such frames are always preferred for eviction.
const negInf uint64 = 0

// pqEntry is a snapshot of a node's eviction-ordering key at the time
// it was pushed. Entries go stale as their node accumulates more
// accesses; staleness is detected lazily when the entry is popped.
type pqEntry struct {
	frameID    common.FrameID
	kthLastTS  uint64
	earliestTS uint64
}

// pqHeap orders entries so that the frame with the largest backward
// k-distance sorts first: smallest kthLastTS wins (negInf beats any
// real timestamp), ties broken by smallest earliestTS.
type pqHeap []*pqEntry

func (h pqHeap) Len() int { return len(h) }

func (h pqHeap) Less(i, j int) bool {
	if h[i].kthLastTS != h[j].kthLastTS {
		return h[i].kthLastTS < h[j].kthLastTS
	}
	return h[i].earliestTS < h[j].earliestTS
}

func (h pqHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pqHeap) Push(x any) { *h = append(*h, x.(*pqEntry)) }

func (h *pqHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
