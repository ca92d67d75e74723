package diskscheduler

import "github.com/arr-cache/pagecache/internal/common"

// Request is a single disk I/O request: an op, the page it targets,
// the caller-owned buffer to fill (read) or persist (write), and a
// completion channel the caller blocks on. Done is buffered with
// capacity 1 so the worker never blocks handing back the result, and
// is written to exactly once per spec.md §4.3.
type Request struct {
	IsWrite bool
	PageID  common.PageID
	Data    []byte
	Done    chan bool
}

// NewReadRequest builds a request that fills data with pageID's
// on-disk contents once scheduled.
func NewReadRequest(pageID common.PageID, data []byte) *Request {
	return &Request{IsWrite: false, PageID: pageID, Data: data, Done: make(chan bool, 1)}
}

// NewWriteRequest builds a request that persists data as pageID's
// contents once scheduled.
func NewWriteRequest(pageID common.PageID, data []byte) *Request {
	return &Request{IsWrite: true, PageID: pageID, Data: data, Done: make(chan bool, 1)}
}
