package replacer

import (
	"container/heap"
	"testing"

	"github.com/arr-cache/pagecache/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestPQHeapOrdering(t *testing.T) {
	h := &pqHeap{}
	heap.Init(h)

	heap.Push(h, &pqEntry{frameID: 1, kthLastTS: 5, earliestTS: 1})
	heap.Push(h, &pqEntry{frameID: 2, kthLastTS: negInf, earliestTS: 10})
	heap.Push(h, &pqEntry{frameID: 3, kthLastTS: negInf, earliestTS: 3})
	heap.Push(h, &pqEntry{frameID: 4, kthLastTS: 2, earliestTS: 0})

	var order []common.FrameID
	for h.Len() > 0 {
		order = append(order, heap.Pop(h).(*pqEntry).frameID)
	}

	// negInf entries sort before any real timestamp, ties broken by
	// earliestTS; among real timestamps, smallest kthLastTS first.
	assert.Equal(t, []common.FrameID{3, 2, 4, 1}, order)
}
