// Package disktest provides an in-memory DiskManager double for
// exercising the disk scheduler and buffer pool without touching a
// real file, and for recording the read/write operations it observes
// so tests can assert the ordering properties in spec.md §8 (P4, P8).
package disktest

import (
	"fmt"
	"sync"

	"github.com/arr-cache/pagecache/internal/common"
)

// Op is one recorded disk operation.
type Op struct {
	Write  bool
	PageID common.PageID
}

// Recording is an in-memory disk.DiskManager that stores page
// contents in a map and appends every ReadPage/WritePage call (in
// the order it observed them) to a log, guarded by its own mutex so
// concurrent shards don't race on the log itself.
type Recording struct {
	mu      sync.Mutex
	pages   map[common.PageID][common.PageSize]byte
	log     []Op
	failing map[common.PageID]bool
}

// New returns an empty recording disk manager.
func New() *Recording {
	return &Recording{
		pages:   make(map[common.PageID][common.PageSize]byte),
		failing: make(map[common.PageID]bool),
	}
}

// Seed pre-populates pageID's on-disk contents without recording an
// operation, simulating data written by an earlier process.
func (r *Recording) Seed(pageID common.PageID, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf [common.PageSize]byte
	copy(buf[:], data)
	r.pages[pageID] = buf
}

// FailReads makes subsequent ReadPage calls for pageID return an error.
func (r *Recording) FailReads(pageID common.PageID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[pageID] = true
}

func (r *Recording) ReadPage(pageID common.PageID, buf []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, Op{Write: false, PageID: pageID})
	if r.failing[pageID] {
		return fmt.Errorf("disktest: simulated read failure for page %d", pageID)
	}
	page, ok := r.pages[pageID]
	if !ok {
		return fmt.Errorf("disktest: page %d never written", pageID)
	}
	copy(buf, page[:])
	return nil
}

func (r *Recording) WritePage(pageID common.PageID, buf []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, Op{Write: true, PageID: pageID})
	var page [common.PageSize]byte
	copy(page[:], buf)
	r.pages[pageID] = page
	return nil
}

func (r *Recording) Close() error { return nil }

// Log returns a snapshot of every operation observed so far, in the
// order the calls reached this manager.
func (r *Recording) Log() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.log))
	copy(out, r.log)
	return out
}

// OpsForPage filters Log to a single page id, preserving order —
// the slice P8 checks for per-page ordering.
func (r *Recording) OpsForPage(pageID common.PageID) []Op {
	all := r.Log()
	var out []Op
	for _, op := range all {
		if op.PageID == pageID {
			out = append(out, op)
		}
	}
	return out
}

// Contents returns a copy of pageID's stored bytes and whether it has
// ever been written.
func (r *Recording) Contents(pageID common.PageID) ([common.PageSize]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page, ok := r.pages[pageID]
	return page, ok
}
