package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/notify"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/persistence"
)

// saver writes cart snapshots in the background. Writes coalesce: while one
// write is in flight, newer snapshots overwrite the single pending slot, so
// a burst of mutations costs at most two writes and the last state always
// wins. Write failures are reported through the sink and never surface to
// the mutation that triggered them.
type saver struct {
	adapter persistence.Adapter
	sink    notify.Sink
	timeout time.Duration

	mu      sync.Mutex
	pending *persistence.Snapshot
	running bool
	closed  bool
	wg      sync.WaitGroup
}

func newSaver(adapter persistence.Adapter, sink notify.Sink, timeout time.Duration) *saver {
	return &saver{
		adapter: adapter,
		sink:    sink,
		timeout: timeout,
	}
}

// enqueue schedules a snapshot write, replacing any not-yet-started one.
func (s *saver) enqueue(snap persistence.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &snap
	if !s.running {
		s.running = true
		s.wg.Add(1)
		go s.run()
	}
}

func (s *saver) run() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		snap := s.pending
		s.pending = nil
		if snap == nil {
			s.running = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		// Snapshot writes outlive the request that triggered them, so they
		// run on a background context with their own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.adapter.Save(ctx, *snap); err != nil {
			snapshotWritesTotal.WithLabelValues("error").Inc()
			s.sink.Report(ctx, notify.SeverityWarning,
				fmt.Sprintf("cart snapshot write failed: %v", err))
		} else {
			snapshotWritesTotal.WithLabelValues("ok").Inc()
		}
		cancel()
	}
}

// drain discards any pending snapshot and waits for an in-flight write to
// finish. Reset uses it so a stale write cannot land after the stored
// snapshot is deleted.
func (s *saver) drain() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	s.wg.Wait()
}

// flush waits until all enqueued snapshots have been written.
func (s *saver) flush() {
	s.wg.Wait()
}

// close flushes outstanding writes and rejects new ones.
func (s *saver) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}
