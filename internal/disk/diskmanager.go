// Package disk is the raw page-to-disk persistence layer spec.md §1
// treats as an external collaborator: the disk scheduler only ever
// talks to it through the DiskManager interface below. The
// mmap-backed implementation here exists so the scheduler and buffer
// pool can be exercised end-to-end; it is not part of the core.
package disk

import (
	"fmt"

	"github.com/arr-cache/pagecache/internal/common"
)

// DiskManager reads and writes fixed-size page blocks. Both methods
// are blocking and, per spec.md §6, assumed infallible for the core's
// purposes — implementations should still return an error on genuine
// I/O failure so callers outside the scheduler's "never fails" path
// (e.g. setup code) can react.
type DiskManager interface {
	ReadPage(pageID common.PageID, buf []byte) error
	WritePage(pageID common.PageID, buf []byte) error
	Close() error
}

func checkBufLen(buf []byte) error {
	if len(buf) != common.PageSize {
		return fmt.Errorf("disk: buffer must be %d bytes, got %d", common.PageSize, len(buf))
	}
	return nil
}

func offsetFor(pageID common.PageID) int64 {
	return int64(pageID) * int64(common.PageSize)
}
