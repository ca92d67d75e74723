// Package bufferpool implements the pool manager described in
// spec.md §4.1: a fixed-size array of frames, a page table mapping
// page ids to frames, a free list, and an LRU-K replacer for choosing
// eviction victims once the free list runs dry.
//
// Locking follows the original source exactly: a single pool-wide
// lock (P) guards the page table and free list, and each frame has
// its own lock (F[i]) guarding that frame's payload and metadata.
// Lock order is always P before F[i], never the reverse, and P is
// held for the shortest span each operation allows.
package bufferpool

import (
	"sync"
	"sync/atomic"

	"github.com/arr-cache/pagecache/internal/common"
	"github.com/arr-cache/pagecache/internal/diskscheduler"
	"github.com/arr-cache/pagecache/internal/logging"
	"github.com/arr-cache/pagecache/internal/page"
	"github.com/arr-cache/pagecache/internal/replacer"
)

// BufferPool is the in-memory cache of disk pages. It is safe for
// concurrent use.
type BufferPool struct {
	poolMu    sync.RWMutex // P
	pageTable map[common.PageID]common.FrameID
	freeList  []common.FrameID
	frames    []*frame

	replacer  replacer.Replacer
	scheduler *diskscheduler.Scheduler

	nextPageID int64
}

// New builds a pool of poolSize frames, evicting via an LRU-K
// replacer with the given k, and issuing I/O through sched.
func New(poolSize, replacerK int, sched *diskscheduler.Scheduler) *BufferPool {
	if poolSize < 1 {
		panic("bufferpool: poolSize must be >= 1")
	}

	frames := make([]*frame, poolSize)
	freeList := make([]common.FrameID, poolSize)
	for i := range frames {
		frames[i] = newFrame()
		freeList[i] = common.FrameID(i)
	}

	return &BufferPool{
		pageTable: make(map[common.PageID]common.FrameID),
		freeList:  freeList,
		frames:    frames,
		replacer:  replacer.NewLRUKReplacer(poolSize, replacerK),
		scheduler: sched,
	}
}

// Size returns the number of frames in the pool.
func (bp *BufferPool) Size() int { return len(bp.frames) }

func (bp *BufferPool) allocatePageID() common.PageID {
	return common.PageID(atomic.AddInt64(&bp.nextPageID, 1) - 1)
}

// findFreeFrame returns a frame ready to take on a new identity,
// evicting via the replacer and flushing it first if necessary. The
// caller must hold poolMu exclusively. The second return is false if
// every frame is pinned and there is nothing to evict.
func (bp *BufferPool) findFreeFrame() (common.FrameID, bool, error) {
	if n := len(bp.freeList); n > 0 {
		id := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return id, true, nil
	}

	victim, ok := bp.replacer.Evict()
	if !ok {
		return 0, false, nil
	}

	f := bp.frames[victim]
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dirty {
		if err := bp.flushFrameLocked(f); err != nil {
			return 0, false, err
		}
	}
	delete(bp.pageTable, f.pageID)
	f.reset()
	return victim, true, nil
}

// flushFrameLocked issues a synchronous write of f's current payload
// and clears its dirty bit. The caller must hold f.mu.
func (bp *BufferPool) flushFrameLocked(f *frame) error {
	req := diskscheduler.NewWriteRequest(f.pageID, f.page.Data[:])
	bp.scheduler.Schedule(req)
	<-req.Done
	f.dirty = false
	return nil
}

// NewPage allocates a fresh page id, binds it to a frame, and returns
// the zeroed page pinned once. ok is false if the pool is full and
// every frame is pinned.
func (bp *BufferPool) NewPage() (pageID common.PageID, p *page.Page, ok bool) {
	bp.poolMu.Lock()
	frameID, found, err := bp.findFreeFrame()
	if err != nil {
		bp.poolMu.Unlock()
		logging.Log.Errorf("bufferpool: new page: %v", err)
		return common.InvalidPageID, nil, false
	}
	if !found {
		bp.poolMu.Unlock()
		return common.InvalidPageID, nil, false
	}

	pageID = bp.allocatePageID()
	bp.pageTable[pageID] = frameID
	f := bp.frames[frameID]
	f.mu.Lock()
	bp.replacer.RecordAccess(frameID, common.AccessUnknown)
	bp.replacer.SetEvictable(frameID, false)
	bp.poolMu.Unlock()

	f.page.Reset()
	f.pageID = pageID
	f.dirty = false
	f.pinCount = 1
	f.mu.Unlock()

	logging.Log.Debugf("bufferpool: new page %d in frame %d", pageID, frameID)
	return pageID, f.page, true
}

// FetchPage returns pageID's page, pinned once more, loading it from
// disk first if it isn't already resident. ok is false only if the
// page isn't resident and the pool has no frame to give it.
func (bp *BufferPool) FetchPage(pageID common.PageID, accessType common.AccessType) (p *page.Page, ok bool) {
	bp.poolMu.RLock()
	if frameID, hit := bp.pageTable[pageID]; hit {
		f := bp.frames[frameID]
		f.mu.Lock()
		bp.replacer.RecordAccess(frameID, accessType)
		bp.replacer.SetEvictable(frameID, false)
		bp.poolMu.RUnlock()
		f.pinCount++
		f.mu.Unlock()
		return f.page, true
	}
	bp.poolMu.RUnlock()

	// Miss under the shared lock: upgrade to exclusive and recheck,
	// since another goroutine may have fetched pageID in between.
	bp.poolMu.Lock()
	if frameID, hit := bp.pageTable[pageID]; hit {
		f := bp.frames[frameID]
		f.mu.Lock()
		bp.replacer.RecordAccess(frameID, accessType)
		bp.replacer.SetEvictable(frameID, false)
		bp.poolMu.Unlock()
		f.pinCount++
		f.mu.Unlock()
		return f.page, true
	}

	frameID, found, err := bp.findFreeFrame()
	if err != nil {
		bp.poolMu.Unlock()
		logging.Log.Errorf("bufferpool: fetch page %d: %v", pageID, err)
		return nil, false
	}
	if !found {
		bp.poolMu.Unlock()
		return nil, false
	}
	bp.pageTable[pageID] = frameID
	f := bp.frames[frameID]

	// Block on the read while still holding P exclusively: any other
	// goroutine fetching or evicting has to wait for this page to
	// land before it can see a consistent page table, same as the
	// original buffer pool manager.
	req := diskscheduler.NewReadRequest(pageID, f.page.Data[:])
	bp.scheduler.Schedule(req)
	<-req.Done

	f.mu.Lock()
	bp.replacer.RecordAccess(frameID, accessType)
	bp.replacer.SetEvictable(frameID, false)
	bp.poolMu.Unlock()

	f.pageID = pageID
	f.pinCount = 1
	f.dirty = false
	f.mu.Unlock()

	logging.Log.Debugf("bufferpool: fetch page %d in frame %d (miss)", pageID, frameID)
	return f.page, true
}

// UnpinPage drops one pin on pageID, marking it dirty if isDirty is
// true, and makes the frame evictable once its pin count reaches
// zero. It returns false if pageID isn't resident or is already
// unpinned.
func (bp *BufferPool) UnpinPage(pageID common.PageID, isDirty bool, accessType common.AccessType) bool {
	bp.poolMu.RLock()
	defer bp.poolMu.RUnlock()

	frameID, hit := bp.pageTable[pageID]
	if !hit {
		return false
	}
	f := bp.frames[frameID]
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pinCount <= 0 {
		return false
	}
	f.dirty = f.dirty || isDirty
	f.pinCount--
	if f.pinCount == 0 {
		bp.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes pageID's current contents to disk regardless of
// its dirty bit and clears it. It returns false if pageID isn't
// resident.
func (bp *BufferPool) FlushPage(pageID common.PageID) bool {
	bp.poolMu.RLock()
	frameID, hit := bp.pageTable[pageID]
	if !hit {
		bp.poolMu.RUnlock()
		return false
	}
	f := bp.frames[frameID]
	f.mu.Lock()
	bp.poolMu.RUnlock()
	defer f.mu.Unlock()

	if err := bp.flushFrameLocked(f); err != nil {
		logging.Log.Errorf("bufferpool: flush page %d: %v", pageID, err)
		return false
	}
	return true
}

// FlushAllPages writes every resident page's current contents to
// disk. It locks every frame before issuing any I/O, so a concurrent
// NewPage/FetchPage can't observe a half-flushed pool, then issues
// all writes concurrently and waits for them together.
func (bp *BufferPool) FlushAllPages() {
	for _, f := range bp.frames {
		f.mu.Lock()
	}
	defer func() {
		for i := len(bp.frames) - 1; i >= 0; i-- {
			bp.frames[i].mu.Unlock()
		}
	}()

	type pending struct {
		f   *frame
		req *diskscheduler.Request
	}
	reqs := make([]pending, 0, len(bp.frames))
	for _, f := range bp.frames {
		if f.pageID == common.InvalidPageID {
			continue
		}
		req := diskscheduler.NewWriteRequest(f.pageID, f.page.Data[:])
		bp.scheduler.Schedule(req)
		reqs = append(reqs, pending{f: f, req: req})
	}
	for _, p := range reqs {
		<-p.req.Done
		p.f.dirty = false
	}
}

// DeletePage removes pageID from the pool, returning its frame to the
// free list. It returns false if the page is pinned. A page that
// isn't resident is reported as successfully deleted, matching the
// original buffer pool manager's idempotent delete.
func (bp *BufferPool) DeletePage(pageID common.PageID) bool {
	bp.poolMu.RLock()
	frameID, hit := bp.pageTable[pageID]
	bp.poolMu.RUnlock()
	if !hit {
		return true
	}

	bp.poolMu.Lock()
	defer bp.poolMu.Unlock()

	f := bp.frames[frameID]
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pageID != pageID {
		// Evicted and reassigned between the unlocked check above and
		// this lock: pageID is already gone.
		return true
	}
	if f.pinCount > 0 {
		return false
	}

	delete(bp.pageTable, pageID)
	bp.replacer.Remove(frameID)
	bp.freeList = append(bp.freeList, frameID)
	f.reset()

	logging.Log.Debugf("bufferpool: deleted page %d from frame %d", pageID, frameID)
	return true
}
