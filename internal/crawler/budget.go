// Package crawler fetches crawl-source pages under a global request budget
// and a bounded worker pool, and extracts candidate video links from them.
// Crawling is best-effort: a failed or refused fetch degrades to zero links
// and never fails the venue being processed.
package crawler

import "sync/atomic"

// Budget is the single source of truth for requests spent across an entire
// run. A slot is reserved before the fetch starts so concurrent workers
// cannot both pass the check and overshoot the cap.
type Budget struct {
	max  int64
	used atomic.Int64
}

// NewBudget caps the run at max requests. max <= 0 means no crawling.
func NewBudget(max int) *Budget {
	return &Budget{max: int64(max)}
}

// TryReserve atomically claims one request slot, reporting false once the
// budget is exhausted.
func (b *Budget) TryReserve() bool {
	for {
		current := b.used.Load()
		if current >= b.max {
			return false
		}
		if b.used.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Refund returns a reserved slot, used when a claim turns out not to need
// a network request after all.
func (b *Budget) Refund() {
	b.used.Add(-1)
}

// Used reports requests spent so far.
func (b *Budget) Used() int64 {
	return b.used.Load()
}

// Remaining reports unspent budget.
func (b *Budget) Remaining() int64 {
	r := b.max - b.used.Load()
	if r < 0 {
		return 0
	}
	return r
}
