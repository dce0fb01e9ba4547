// Package dedupe tracks submission references for idempotency.
package dedupe

// defaultMaxSize bounds the tracked reference set.
const defaultMaxSize = 50000

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets how many references to keep before evicting the
// oldest. A value <= 0 disables eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
