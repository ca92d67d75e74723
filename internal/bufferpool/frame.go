package bufferpool

import (
	"sync"

	"github.com/arr-cache/pagecache/internal/common"
	"github.com/arr-cache/pagecache/internal/page"
)

// frame is one slot of the pool's fixed-size frame array. Its fields
// are guarded by mu — the F[frame_id] lock from spec.md §4.1 — which
// is always acquired after the pool-wide lock, never before.
type frame struct {
	mu       sync.Mutex
	page     *page.Page
	pageID   common.PageID
	pinCount int32
	dirty    bool
}

func newFrame() *frame {
	return &frame{page: page.New(), pageID: common.InvalidPageID}
}

// reset clears a frame's identity and payload before it's returned to
// the free list, so a deleted page's bytes never leak into whatever
// page is loaded into the frame next.
func (f *frame) reset() {
	f.page.Reset()
	f.pageID = common.InvalidPageID
	f.pinCount = 0
	f.dirty = false
}
