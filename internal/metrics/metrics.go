// Package metrics exposes Prometheus collectors for the discovery pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	venuesScannedTotal    prometheus.Counter
	venuesSkippedTotal    *prometheus.CounterVec
	candidatesTotal       *prometheus.CounterVec
	crawlRequestsTotal    prometheus.Counter
	crawlCacheHitsTotal   prometheus.Counter
	crawlLinksTotal       prometheus.Counter
	candidatesUpsertedTot prometheus.Counter
	videosAppliedTotal    prometheus.Counter
	crawlBudgetRemaining  prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		venuesScannedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discovery_venues_scanned_total",
				Help: "Total number of venues enumerated from the database.",
			},
		)

		venuesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_venues_skipped_total",
				Help: "Total number of venues skipped, labeled by reason.",
			},
			[]string{"reason"},
		)

		candidatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_candidates_total",
				Help: "Total number of scored candidates, labeled by status.",
			},
			[]string{"status"},
		)

		crawlRequestsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discovery_crawl_requests_total",
				Help: "Total number of crawl page fetches charged to the budget.",
			},
		)

		crawlCacheHitsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discovery_crawl_cache_hits_total",
				Help: "Total number of crawl requests served from the page cache.",
			},
		)

		crawlLinksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discovery_crawl_links_total",
				Help: "Total number of candidate links extracted from crawled pages.",
			},
		)

		candidatesUpsertedTot = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discovery_candidates_upserted_total",
				Help: "Total number of candidate rows written to the database.",
			},
		)

		videosAppliedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "discovery_videos_applied_total",
				Help: "Total number of approved videos applied to venues.",
			},
		)

		crawlBudgetRemaining = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "discovery_crawl_budget_remaining",
				Help: "Crawl requests still available in the global budget.",
			},
		)
	})
}

// ObserveVenueScanned increments the venue enumeration counter.
func ObserveVenueScanned() {
	Init()
	venuesScannedTotal.Inc()
}

// ObserveVenueSkipped increments the skip counter for the given reason.
func ObserveVenueSkipped(reason string) {
	Init()
	venuesSkippedTotal.WithLabelValues(reason).Inc()
}

// ObserveCandidate increments the candidate counter for the given status.
func ObserveCandidate(status string) {
	Init()
	candidatesTotal.WithLabelValues(status).Inc()
}

// ObserveCrawl records one budgeted fetch and the links it yielded.
func ObserveCrawl(links int) {
	Init()
	crawlRequestsTotal.Inc()
	if links > 0 {
		crawlLinksTotal.Add(float64(links))
	}
}

// ObserveCrawlCacheHit increments the page cache hit counter.
func ObserveCrawlCacheHit() {
	Init()
	crawlCacheHitsTotal.Inc()
}

// ObserveUpserted adds to the upserted row counter.
func ObserveUpserted(n int64) {
	Init()
	if n > 0 {
		candidatesUpsertedTot.Add(float64(n))
	}
}

// ObserveApplied adds to the applied video counter.
func ObserveApplied(n int64) {
	Init()
	if n > 0 {
		videosAppliedTotal.Add(float64(n))
	}
}

// SetBudgetRemaining updates the crawl budget gauge.
func SetBudgetRemaining(n int64) {
	Init()
	crawlBudgetRemaining.Set(float64(n))
}
