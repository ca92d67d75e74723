//go:build windows

package disk

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"
)

// Windows has no unified mmap syscall; CreateFileMapping/MapViewOfFile
// return a view pointer but UnmapViewOfFile doesn't take the mapping
// handle back, so it has to be tracked separately to avoid leaking it.
var (
	mappingHandlesMu sync.Mutex
	mappingHandles   = map[uintptr]syscall.Handle{}
)

func mmap(f *os.File, size int64) ([]byte, error) {
	sizehi := uint32(size >> 32)
	sizelo := uint32(size)
	h, err := syscall.CreateFileMapping(syscall.Handle(f.Fd()), nil, syscall.PAGE_READWRITE, sizehi, sizelo, nil)
	if err != nil {
		return nil, fmt.Errorf("create mapping: %w", err)
	}
	ptr, err := syscall.MapViewOfFile(h, syscall.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		syscall.CloseHandle(h)
		return nil, fmt.Errorf("map view: %w", err)
	}

	mappingHandlesMu.Lock()
	mappingHandles[ptr] = h
	mappingHandlesMu.Unlock()

	data := (*[1 << 34]byte)(unsafe.Pointer(ptr))[:size:size]
	return data, nil
}

func munmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&data[0]))

	mappingHandlesMu.Lock()
	h, ok := mappingHandles[addr]
	delete(mappingHandles, addr)
	mappingHandlesMu.Unlock()

	var err error
	if e := syscall.UnmapViewOfFile(addr); e != nil {
		err = fmt.Errorf("unmap view: %w", e)
	}
	if ok {
		if e := syscall.CloseHandle(h); e != nil && err == nil {
			err = fmt.Errorf("close handle: %w", e)
		}
	}
	return err
}
