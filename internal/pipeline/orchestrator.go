// Package pipeline drives a discovery run end to end: venue enumeration,
// seed construction, crawl expansion, scoring, candidate buffering, and the
// optional approved-video promotion stage.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
	"github.com/bravforcode/vibescity-live-sub000/internal/config"
	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
	"github.com/bravforcode/vibescity-live-sub000/internal/manifest"
	"github.com/bravforcode/vibescity-live-sub000/internal/metrics"
	"github.com/bravforcode/vibescity-live-sub000/internal/scoring"
)

// VenueLister walks venues in ascending id order.
type VenueLister interface {
	EachVenue(ctx context.Context, startID int64, offset, limit int, fn func(discovery.Venue) error) (int, error)
}

// SourceLister loads official sources keyed by venue id.
type SourceLister interface {
	ListForVenues(ctx context.Context, venueIDs []int64) (map[int64][]discovery.OfficialSource, error)
}

// Expander turns crawl sources into crawl-expanded seeds, spending from the
// run's shared request budget.
type Expander interface {
	Expand(ctx context.Context, sources []discovery.CrawlSource) []discovery.Seed
	RequestsUsed() int64
	BudgetRemaining() int64
	CacheHits() int64
	LinksFound() int64
}

// CandidateBuffer accumulates scored candidates and flushes them in batches.
type CandidateBuffer interface {
	Add(ctx context.Context, rows ...discovery.ScoredCandidate) error
	Flush(ctx context.Context) error
	Upserted() int64
	Skipped() int64
}

// ApplyOutcome reports one promotion pass.
type ApplyOutcome struct {
	Applied    int64 `json:"applied_count"`
	Candidates int64 `json:"candidate_count"`
}

// Applier promotes approved candidates into venues lacking a primary video.
type Applier interface {
	ApplyApproved(ctx context.Context, limit, minConfidence int, actor string) (ApplyOutcome, error)
}

// Deps are the collaborators an Orchestrator coordinates. Crawler, Applier,
// and Manifest may be nil when the corresponding stage is disabled.
type Deps struct {
	Venues   VenueLister
	Sources  SourceLister
	Crawler  Expander
	Engine   *scoring.Engine
	Buffer   CandidateBuffer
	Applier  Applier
	Manifest *manifest.Manifest
}

// Orchestrator runs the per-venue state machine and owns the run counters.
type Orchestrator struct {
	cfg    config.Config
	logger *zap.Logger
	deps   Deps
	runID  string

	counters counters
}

// New builds an orchestrator for one run. The run id is minted here so the
// heartbeat, audit notes, and summary all agree.
func New(cfg config.Config, logger *zap.Logger, deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		logger: logger,
		deps:   deps,
		runID:  uuid.NewString(),
	}
}

// RunID returns the identifier minted for this run.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run executes the configured stages and returns the run summary. Discovery
// errors abort the run; the summary reflects progress made up to the error.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	metrics.Init()

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go o.heartbeat(hbCtx)

	o.logger.Info("discovery run started",
		zap.String("run_id", o.runID),
		zap.Bool("dry_run", o.cfg.DryRun),
		zap.Bool("skip_discovery", o.cfg.SkipDiscovery),
		zap.Bool("apply_approved", o.cfg.ApplyApproved),
	)

	var runErr error
	if !o.cfg.SkipDiscovery {
		runErr = o.discover(ctx)
		if flushErr := o.deps.Buffer.Flush(ctx); flushErr != nil && runErr == nil {
			runErr = fmt.Errorf("final flush: %w", flushErr)
		}
		metrics.ObserveUpserted(o.deps.Buffer.Upserted())
	}

	var apply *ApplyOutcome
	switch {
	case runErr != nil || !o.cfg.ApplyApproved || o.deps.Applier == nil:
	case o.cfg.DryRun:
		o.logger.Info("dry run, skipping apply stage", zap.String("run_id", o.runID))
	default:
		outcome, err := o.deps.Applier.ApplyApproved(ctx, o.cfg.ApplyLimit, o.cfg.MinAutoApply, o.cfg.Actor)
		if err != nil {
			runErr = fmt.Errorf("apply approved: %w", err)
		} else {
			apply = &outcome
			metrics.ObserveApplied(outcome.Applied)
			o.logger.Info("approved candidates applied",
				zap.String("run_id", o.runID),
				zap.Int64("applied", outcome.Applied),
				zap.Int64("candidates", outcome.Candidates),
			)
		}
	}

	stopHeartbeat()
	summary := o.summarize(apply, time.Since(started))
	if runErr != nil {
		o.logger.Error("discovery run failed", zap.String("run_id", o.runID), zap.Error(runErr))
		return summary, runErr
	}
	o.logger.Info("discovery run finished",
		zap.String("run_id", o.runID),
		zap.Int64("venues_scanned", summary.VenuesScanned),
		zap.Int64("candidates_prepared", summary.CandidatesPrepared),
		zap.Duration("elapsed", time.Since(started)),
	)
	return summary, nil
}

// discover walks venues with the cursor lister, batching eligible venues so
// official sources load one chunk at a time.
func (o *Orchestrator) discover(ctx context.Context) error {
	chunk := make([]discovery.Venue, 0, o.cfg.RPCChunk)

	flushChunk := func() error {
		if len(chunk) == 0 {
			return nil
		}
		err := o.processChunk(ctx, chunk)
		chunk = chunk[:0]
		return err
	}

	_, err := o.deps.Venues.EachVenue(ctx, o.cfg.StartID, o.cfg.Offset, o.cfg.Limit, func(v discovery.Venue) error {
		o.counters.scanned.Add(1)
		metrics.ObserveVenueScanned()

		if v.HasVideo() && !o.cfg.IncludeWithVideo {
			o.counters.skippedHasVideo.Add(1)
			metrics.ObserveVenueSkipped("has_video")
			return nil
		}

		chunk = append(chunk, v)
		if len(chunk) >= o.cfg.RPCChunk {
			return flushChunk()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("enumerate venues: %w", err)
	}
	return flushChunk()
}

func (o *Orchestrator) processChunk(ctx context.Context, venues []discovery.Venue) error {
	var sources map[int64][]discovery.OfficialSource
	if !o.cfg.NoOfficialSources && o.deps.Sources != nil {
		ids := make([]int64, len(venues))
		for i, v := range venues {
			ids[i] = v.ID
		}
		var err error
		sources, err = o.deps.Sources.ListForVenues(ctx, ids)
		if err != nil {
			return fmt.Errorf("load official sources: %w", err)
		}
	}

	for _, v := range venues {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.processVenue(ctx, v, sources[v.ID]); err != nil {
			return err
		}
	}
	return nil
}

// processVenue runs one venue through build_seeds, crawl_expand, score, and
// buffer. Seeds arriving later in priority order lose duplicate-URL ties.
func (o *Orchestrator) processVenue(ctx context.Context, venue discovery.Venue, sources []discovery.OfficialSource) error {
	o.counters.eligible.Add(1)

	var row *manifest.Row
	if o.deps.Manifest != nil {
		if r, ok := o.deps.Manifest.Lookup(venue.ID, venue.Slug, venue.ShortCode, venue.Name); ok {
			row = &r
		}
	}

	list := discovery.BuildSeedList(venue, sources, row, discovery.SeedOptions{
		IncludeExistingSeed: o.cfg.IncludeExistingSeed,
	})

	seeds := list.Seeds
	if !o.cfg.NoCrawl && o.deps.Crawler != nil && len(list.CrawlSources) > 0 && o.deps.Crawler.BudgetRemaining() > 0 {
		seeds = append(seeds, o.deps.Crawler.Expand(ctx, list.CrawlSources)...)
		metrics.SetBudgetRemaining(o.deps.Crawler.BudgetRemaining())
	}
	if len(seeds) == 0 {
		return nil
	}

	vctx := scoring.NewVenueContext(venue, sources, row)
	seen := make(map[string]struct{}, len(seeds))
	var rows []discovery.ScoredCandidate
	for _, seed := range seeds {
		key := classify.Normalize(seed.VideoURL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		cand, ok := o.deps.Engine.Score(seed, vctx)
		if !ok {
			continue
		}
		rows = append(rows, cand)
		o.counters.prepared.Add(1)
		metrics.ObserveCandidate(string(cand.Status))
		switch cand.Status {
		case discovery.StatusApproved:
			o.counters.approved.Add(1)
		case discovery.StatusPendingReview:
			o.counters.pending.Add(1)
		case discovery.StatusInvalid:
			o.counters.invalid.Add(1)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	if err := o.deps.Buffer.Add(ctx, rows...); err != nil {
		return fmt.Errorf("buffer candidates for venue %d: %w", venue.ID, err)
	}

	o.logger.Debug("venue processed",
		zap.Int64("venue_id", venue.ID),
		zap.Int("seeds", len(seeds)),
		zap.Int("candidates", len(rows)),
	)
	return nil
}

// heartbeat logs run progress on a fixed wall-clock interval so long runs
// stay observable regardless of per-venue timing.
func (o *Orchestrator) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.HeartbeatInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fields := []zap.Field{
				zap.String("run_id", o.runID),
				zap.Int64("venues_scanned", o.counters.scanned.Load()),
				zap.Int64("venues_eligible", o.counters.eligible.Load()),
				zap.Int64("candidates_prepared", o.counters.prepared.Load()),
			}
			if o.deps.Crawler != nil {
				fields = append(fields,
					zap.Int64("crawl_requests_used", o.deps.Crawler.RequestsUsed()),
					zap.Int64("crawl_budget_remaining", o.deps.Crawler.BudgetRemaining()),
				)
			}
			o.logger.Info("discovery heartbeat", fields...)
		}
	}
}
