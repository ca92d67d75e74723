package disk

import (
	"fmt"
	"os"

	"github.com/arr-cache/pagecache/internal/common"
	"github.com/arr-cache/pagecache/internal/logging"
)

// MaxMapSize bounds how large the backing file's memory mapping is
// allowed to grow, mirroring the teacher's guard against unbounded
// mmap growth on a runaway workload.
const MaxMapSize = 1 << 34 // 16 GiB

// FileDiskManager persists pages in a single file, memory-mapped for
// the lifetime of the manager. WritePage grows (re-mmaps) the file
// when a page lands past the current mapping.
type FileDiskManager struct {
	file *os.File
	data []byte
	size int64
}

// NewFileDiskManager opens (creating if needed) the file at path and
// maps initialPages worth of space into memory.
func NewFileDiskManager(path string, initialPages int) (*FileDiskManager, error) {
	if initialPages <= 0 {
		return nil, fmt.Errorf("disk: initialPages must be > 0, got %d", initialPages)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}

	initialSize := int64(initialPages) * int64(common.PageSize)
	fm := &FileDiskManager{file: f}
	if err := fm.remap(initialSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("disk: map %s: %w", path, err)
	}
	return fm, nil
}

func (fm *FileDiskManager) remap(newSize int64) error {
	if fm.data != nil {
		if err := munmap(fm.data); err != nil {
			return fmt.Errorf("unmap: %w", err)
		}
		fm.data = nil
	}
	if err := fm.file.Truncate(newSize); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	data, err := mmap(fm.file, newSize)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	fm.data = data
	fm.size = newSize
	return nil
}

func (fm *FileDiskManager) growFor(offset int64) error {
	if offset+common.PageSize <= fm.size {
		return nil
	}
	newSize := max(fm.size*2, offset+common.PageSize)
	if newSize > MaxMapSize {
		return fmt.Errorf("disk: mapping would exceed max size %d", MaxMapSize)
	}
	logging.Log.Debugf("disk: growing mapping from %d to %d bytes", fm.size, newSize)
	return fm.remap(newSize)
}

// ReadPage fills buf (which must be exactly common.PageSize bytes)
// with the on-disk contents of pageID.
func (fm *FileDiskManager) ReadPage(pageID common.PageID, buf []byte) error {
	if err := checkBufLen(buf); err != nil {
		return err
	}
	offset := offsetFor(pageID)
	if offset+common.PageSize > fm.size {
		return fmt.Errorf("disk: page %d out of bounds (size %d)", pageID, fm.size)
	}
	copy(buf, fm.data[offset:offset+common.PageSize])
	return nil
}

// WritePage persists buf (which must be exactly common.PageSize
// bytes) as pageID's contents, growing the mapping if necessary.
func (fm *FileDiskManager) WritePage(pageID common.PageID, buf []byte) error {
	if err := checkBufLen(buf); err != nil {
		return err
	}
	offset := offsetFor(pageID)
	if err := fm.growFor(offset); err != nil {
		return err
	}
	copy(fm.data[offset:offset+common.PageSize], buf)
	return nil
}

// Close unmaps and closes the backing file.
func (fm *FileDiskManager) Close() error {
	if fm == nil || fm.file == nil {
		return nil
	}
	var err error
	if fm.data != nil {
		if e := munmap(fm.data); e != nil {
			err = fmt.Errorf("unmap: %w", e)
		}
		fm.data = nil
	}
	if e := fm.file.Sync(); e != nil && err == nil {
		err = fmt.Errorf("sync: %w", e)
	}
	if e := fm.file.Close(); e != nil && err == nil {
		err = fmt.Errorf("close: %w", e)
	}
	fm.file = nil
	return err
}
