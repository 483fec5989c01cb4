package pipeline

import (
	"encoding/json"
	"io"
	"sync/atomic"
	"time"
)

// counters are the run totals the heartbeat reads while discovery is still
// writing them.
type counters struct {
	scanned         atomic.Int64
	eligible        atomic.Int64
	skippedHasVideo atomic.Int64
	prepared        atomic.Int64
	approved        atomic.Int64
	pending         atomic.Int64
	invalid         atomic.Int64
}

// Summary is the machine-readable run report emitted to stdout on exit.
type Summary struct {
	RunID                 string        `json:"run_id"`
	DryRun                bool          `json:"dry_run"`
	VenuesScanned         int64         `json:"venues_scanned"`
	VenuesEligible        int64         `json:"venues_eligible"`
	VenuesSkippedHasVideo int64         `json:"venues_skipped_has_video"`
	CandidatesPrepared    int64         `json:"candidates_prepared"`
	Approved              int64         `json:"approved"`
	PendingReview         int64         `json:"pending_review"`
	Invalid               int64         `json:"invalid"`
	RowsUpserted          int64         `json:"rows_upserted"`
	RowsSkipped           int64         `json:"rows_skipped"`
	CrawlRequestsUsed     int64         `json:"crawl_requests_used"`
	CrawlLinksFound       int64         `json:"crawl_links_found"`
	CrawlCacheHits        int64         `json:"crawl_cache_hits"`
	Apply                 *ApplyOutcome `json:"apply,omitempty"`
	DurationMs            int64         `json:"duration_ms"`
}

func (o *Orchestrator) summarize(apply *ApplyOutcome, elapsed time.Duration) Summary {
	s := Summary{
		RunID:                 o.runID,
		DryRun:                o.cfg.DryRun,
		VenuesScanned:         o.counters.scanned.Load(),
		VenuesEligible:        o.counters.eligible.Load(),
		VenuesSkippedHasVideo: o.counters.skippedHasVideo.Load(),
		CandidatesPrepared:    o.counters.prepared.Load(),
		Approved:              o.counters.approved.Load(),
		PendingReview:         o.counters.pending.Load(),
		Invalid:               o.counters.invalid.Load(),
		RowsUpserted:          o.deps.Buffer.Upserted(),
		RowsSkipped:           o.deps.Buffer.Skipped(),
		Apply:                 apply,
		DurationMs:            elapsed.Milliseconds(),
	}
	if o.deps.Crawler != nil {
		s.CrawlRequestsUsed = o.deps.Crawler.RequestsUsed()
		s.CrawlLinksFound = o.deps.Crawler.LinksFound()
		s.CrawlCacheHits = o.deps.Crawler.CacheHits()
	}
	return s
}

// Write renders the summary as indented JSON to w.
func (s Summary) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
