package storage

import (
	"context"
	"sync"
	"time"

	"github.com/visagekit/visage/internal/log"
	"github.com/visagekit/visage/pkg/metrics"
)

// Queue is an unbounded FIFO of pending results. Enqueue never blocks the
// analysis worker.
type Queue struct {
	mu    sync.Mutex
	items []SessionResult
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends one result.
func (q *Queue) Enqueue(r SessionResult) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

// Drain removes and returns everything queued so far, oldest first. It never
// blocks; an empty queue yields nil.
func (q *Queue) Drain() []SessionResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len reports the number of queued results.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Flusher periodically drains the queue and hands accumulated batches to a
// backend. On a failed save the batch is retained and retried together with
// newer results on the next interval, so nothing is dropped.
type Flusher struct {
	queue    *Queue
	backend  Backend
	interval time.Duration
	metrics  *metrics.Metrics

	// newTicker is swapped in tests to drive the interval loop.
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	pending []SessionResult
	saved   int
}

// NewFlusher wires a queue to a backend.
func NewFlusher(q *Queue, b Backend, interval time.Duration, m *metrics.Metrics) *Flusher {
	return &Flusher{
		queue:    q,
		backend:  b,
		interval: interval,
		metrics:  m,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Run flushes every interval until the context is canceled, then makes one
// final flush so shutdown does not lose queued results.
func (f *Flusher) Run(ctx context.Context) {
	tick, stop := f.newTicker(f.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			if err := f.Flush(); err != nil {
				log.Error("final flush failed", "error", err)
			}
			return
		case <-tick:
			if err := f.Flush(); err != nil {
				log.Warn("flush failed, batch retained", "error", err)
			}
		}
	}
}

// Flush drains the queue into the pending batch and saves it. With nothing
// pending it is a no-op. On failure the batch stays pending for the next
// attempt.
func (f *Flusher) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = append(f.pending, f.queue.Drain()...)
	if len(f.pending) == 0 {
		return nil
	}

	if err := f.backend.Save(f.pending); err != nil {
		return err
	}

	log.Debug("saved result batch", "records", len(f.pending))
	f.saved += len(f.pending)
	f.metrics.ResultsSaved.Add(uint64(len(f.pending)))
	f.pending = nil
	return nil
}

// Saved reports how many results have been persisted so far.
func (f *Flusher) Saved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}
