// Package diskscheduler turns synchronous disk reads/writes into
// asynchronous work: Schedule enqueues a Request and returns
// immediately, and the caller later blocks on the Request's Done
// channel. See spec.md §4.3.
//
// The original source uses a std::promise/std::future pair per
// request and a literal std::nullopt sentinel to unwind the
// dispatcher and worker loops on shutdown (spec.md §9, "Promise/future
// completion"); this port uses a buffered channel for the completion
// token and closes the ingress/shard channels to signal shutdown,
// which is the idiomatic Go equivalent of the same contract.
package diskscheduler

import (
	"sync"

	"github.com/arr-cache/pagecache/internal/common"
	"github.com/arr-cache/pagecache/internal/disk"
	"github.com/arr-cache/pagecache/internal/logging"
)

// Scheduler shards requests across NumWorkers worker goroutines by
// page id, so all I/O for a given page is serialized on one worker
// and I/O for different pages proceeds in parallel.
type Scheduler struct {
	disk       disk.DiskManager
	numWorkers int

	ingress chan *Request
	shards  []chan *Request

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts the dispatcher and numWorkers worker goroutines against
// dm. queueCapacity bounds the ingress and each shard queue.
func New(dm disk.DiskManager, numWorkers, queueCapacity int) *Scheduler {
	if numWorkers < 1 {
		panic("diskscheduler: numWorkers must be >= 1")
	}
	if queueCapacity < 1 {
		panic("diskscheduler: queueCapacity must be >= 1")
	}

	s := &Scheduler{
		disk:       dm,
		numWorkers: numWorkers,
		ingress:    make(chan *Request, queueCapacity),
		shards:     make([]chan *Request, numWorkers),
	}
	for i := range s.shards {
		s.shards[i] = make(chan *Request, queueCapacity)
	}

	s.wg.Add(1)
	go s.dispatch()
	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go s.work(i)
	}
	return s
}

// Schedule enqueues r and returns immediately. r.Done resolves exactly
// once, to true, once the request has been serviced.
func (s *Scheduler) Schedule(r *Request) {
	s.ingress <- r
}

func (s *Scheduler) shardFor(pageID common.PageID) int {
	idx := int(pageID) % s.numWorkers
	if idx < 0 {
		idx += s.numWorkers
	}
	return idx
}

func (s *Scheduler) dispatch() {
	defer s.wg.Done()
	for req := range s.ingress {
		idx := s.shardFor(req.PageID)
		s.shards[idx] <- req
	}
	for _, shard := range s.shards {
		close(shard)
	}
}

func (s *Scheduler) work(shardIdx int) {
	defer s.wg.Done()
	for req := range s.shards[shardIdx] {
		var err error
		if req.IsWrite {
			err = s.disk.WritePage(req.PageID, req.Data)
		} else {
			err = s.disk.ReadPage(req.PageID, req.Data)
		}
		if err != nil {
			// Not modeled per spec.md §7: I/O failure is assumed
			// impossible on this path. Surface it loudly rather than
			// silently resolving the future to false, which callers
			// don't check for.
			logging.Log.Errorf("diskscheduler: shard %d page %d: %v", shardIdx, req.PageID, err)
		}
		req.Done <- true
	}
}

// Close stops accepting new requests, drains everything already
// queued, and waits for the dispatcher and all workers to exit.
// Must not be called concurrently with Schedule.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.ingress)
	})
	s.wg.Wait()
}
