package common

import "errors"

// Recoverable conditions: callers get a bool/nil and decide what to do.
var (
	ErrPageNotFound    = errors.New("page not found in buffer pool")
	ErrPageStillPinned = errors.New("page is still pinned")
	ErrNoFreeFrame     = errors.New("no free frame available")
)

// Illegal-state conditions: these represent programmer errors and are
// fatal (the replacer panics rather than returning an error) for
// out-of-range frame ids and for removing a non-evictable frame.
// Unpinning an unpinned page is not fatal: UnpinPage returns false.
var (
	ErrInvalidFrameID    = errors.New("invalid frame id")
	ErrFrameNotEvictable = errors.New("frame is not evictable")
	ErrNotPinned         = errors.New("frame is not pinned")
)
