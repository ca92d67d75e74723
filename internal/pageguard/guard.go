// Package pageguard provides a thin RAII-style wrapper over a pinned
// buffer pool frame. Go has no destructors, so "drop" is an explicit
// Drop method instead of going out of scope; callers are expected to
// defer it, the same way they'd defer Unlock on a mutex. See spec.md
// §6 — this is intentionally a trivial convenience shell, not a
// specified subsystem in its own right.
package pageguard

import (
	"sync"

	"github.com/arr-cache/pagecache/internal/bufferpool"
	"github.com/arr-cache/pagecache/internal/common"
	"github.com/arr-cache/pagecache/internal/page"
)

// BasicPageGuard holds one pin on a page and unpins it exactly once,
// on Drop.
type BasicPageGuard struct {
	pool   *bufferpool.BufferPool
	pageID common.PageID
	page   *page.Page

	mu      sync.Mutex
	dirty   bool
	dropped bool
}

func newBasicPageGuard(pool *bufferpool.BufferPool, pageID common.PageID, p *page.Page) *BasicPageGuard {
	return &BasicPageGuard{pool: pool, pageID: pageID, page: p}
}

// Page returns the guarded page's payload.
func (g *BasicPageGuard) Page() *page.Page { return g.page }

// PageID returns the guarded page's id.
func (g *BasicPageGuard) PageID() common.PageID { return g.pageID }

// SetDirty marks the page dirty for the eventual unpin. It composes
// with any earlier SetDirty call — once dirty, always dirty until
// Drop.
func (g *BasicPageGuard) SetDirty(dirty bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty = g.dirty || dirty
}

// Drop unpins the page. Safe to call more than once; only the first
// call has any effect.
func (g *BasicPageGuard) Drop() {
	g.mu.Lock()
	if g.dropped {
		g.mu.Unlock()
		return
	}
	g.dropped = true
	dirty := g.dirty
	g.mu.Unlock()

	g.pool.UnpinPage(g.pageID, dirty, common.AccessUnknown)
}

// ReadPageGuard additionally holds the page's payload lock for
// reading, released on Drop.
type ReadPageGuard struct {
	*BasicPageGuard
}

// Drop releases the read lock before unpinning.
func (g *ReadPageGuard) Drop() {
	g.page.RUnlock()
	g.BasicPageGuard.Drop()
}

// WritePageGuard additionally holds the page's payload lock for
// writing, released on Drop. Taking a write guard implies the page
// will be marked dirty.
type WritePageGuard struct {
	*BasicPageGuard
}

// Drop releases the write lock before unpinning.
func (g *WritePageGuard) Drop() {
	g.page.Unlock()
	g.BasicPageGuard.Drop()
}

// FetchPageBasic pins pageID and returns an unguarded-payload handle.
func FetchPageBasic(pool *bufferpool.BufferPool, pageID common.PageID, accessType common.AccessType) (*BasicPageGuard, bool) {
	p, ok := pool.FetchPage(pageID, accessType)
	if !ok {
		return nil, false
	}
	return newBasicPageGuard(pool, pageID, p), true
}

// FetchPageRead pins pageID and takes a shared lock on its payload.
func FetchPageRead(pool *bufferpool.BufferPool, pageID common.PageID, accessType common.AccessType) (*ReadPageGuard, bool) {
	p, ok := pool.FetchPage(pageID, accessType)
	if !ok {
		return nil, false
	}
	p.RLock()
	return &ReadPageGuard{newBasicPageGuard(pool, pageID, p)}, true
}

// FetchPageWrite pins pageID and takes an exclusive lock on its
// payload.
func FetchPageWrite(pool *bufferpool.BufferPool, pageID common.PageID, accessType common.AccessType) (*WritePageGuard, bool) {
	p, ok := pool.FetchPage(pageID, accessType)
	if !ok {
		return nil, false
	}
	p.Lock()
	g := &WritePageGuard{newBasicPageGuard(pool, pageID, p)}
	g.dirty = true
	return g, true
}

// NewPageGuarded allocates a new page and returns it already pinned
// and guarded.
func NewPageGuarded(pool *bufferpool.BufferPool) (common.PageID, *BasicPageGuard, bool) {
	pageID, p, ok := pool.NewPage()
	if !ok {
		return common.InvalidPageID, nil, false
	}
	return pageID, newBasicPageGuard(pool, pageID, p), true
}
