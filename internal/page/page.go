// Package page defines the fixed-size payload held by a buffer pool
// frame. It knows nothing about pinning or dirtiness — those are the
// buffer pool frame's concern (spec.md §3) — only about the raw bytes
// and the lock a page guard needs to serialize reads and writes.
package page

import (
	"sync"

	"github.com/arr-cache/pagecache/internal/common"
)

// Page is the in-memory payload of a resident frame: a fixed-size raw
// buffer plus the lock page guards take to serialize concurrent
// readers/writers of that buffer (spec.md §6, page-guard contract).
type Page struct {
	mu   sync.RWMutex
	Data [common.PageSize]byte
}

// New returns a zeroed page.
func New() *Page {
	return &Page{}
}

// Reset zeroes the page's data. Called when a frame is returned to
// the free list so a stale page never leaks into a new page id.
func (p *Page) Reset() {
	p.Data = [common.PageSize]byte{}
}

// RLock/RUnlock/Lock/Unlock expose the payload lock to the pageguard
// package; the buffer pool itself only ever touches frame metadata
// under its own per-frame mutex, never this lock.
func (p *Page) RLock()   { p.mu.RLock() }
func (p *Page) RUnlock() { p.mu.RUnlock() }
func (p *Page) Lock()    { p.mu.Lock() }
func (p *Page) Unlock()  { p.mu.Unlock() }
