// Package dedupe tracks submission references for idempotency.
// Clients may retry a submission with the same reference; the tracker
// guarantees the retry is recognized instead of re-ingested.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen submission references.
type Deduper interface {
	// SeenAndRecord atomically checks whether ref was seen and records
	// it if not. Returns true if ref was already seen.
	SeenAndRecord(ctx context.Context, ref string) bool

	// Unrecord forgets a reference so the client can retry it. Used when
	// a submission was marked seen but failed to persist.
	Unrecord(ctx context.Context, ref string)

	// Size returns the number of references currently tracked.
	Size() int64
}

// inMemoryDeduper keeps references in a map bounded by a FIFO ring.
// When the ring is full the oldest reference is evicted, so a very old
// retry may slip through; retries that stale are not expected.
// With maxSize <= 0 the set is unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper with options applied.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

// SeenAndRecord atomically checks and records ref.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, ref string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[ref]; ok {
		return true
	}

	if d.maxSize > 0 {
		if evicted := d.ring[d.next]; evicted != "" {
			if _, ok := d.seen[evicted]; ok {
				delete(d.seen, evicted)
				d.size.Add(-1)
			}
		}
		d.ring[d.next] = ref
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[ref] = struct{}{}
	d.size.Add(1)
	return false
}

// Unrecord forgets ref if it is currently tracked.
func (d *inMemoryDeduper) Unrecord(_ context.Context, ref string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[ref]; ok {
		delete(d.seen, ref)
		d.size.Add(-1)
	}
}

// Size returns the current number of tracked references.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
