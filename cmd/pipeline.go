package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bravforcode/vibescity-live-sub000/internal/config"
	"github.com/bravforcode/vibescity-live-sub000/internal/crawler"
	"github.com/bravforcode/vibescity-live-sub000/internal/logging"
	"github.com/bravforcode/vibescity-live-sub000/internal/manifest"
	"github.com/bravforcode/vibescity-live-sub000/internal/metrics"
	"github.com/bravforcode/vibescity-live-sub000/internal/pipeline"
	"github.com/bravforcode/vibescity-live-sub000/internal/scoring"
	"github.com/bravforcode/vibescity-live-sub000/internal/store"
)

// storeApplier adapts the candidate store's promotion call to the
// orchestrator's Applier interface.
type storeApplier struct {
	candidates *store.CandidateStore
}

func (a storeApplier) ApplyApproved(ctx context.Context, limit, minConfidence int, actor string) (pipeline.ApplyOutcome, error) {
	res, err := a.candidates.ApplyApproved(ctx, limit, minConfidence, actor)
	if err != nil {
		return pipeline.ApplyOutcome{}, err
	}
	return pipeline.ApplyOutcome{Applied: res.AppliedCount, Candidates: res.CandidateCount}, nil
}

// runPipeline assembles every component from the resolved configuration and
// executes one run. The JSON summary goes to stdout; logs go to stderr.
func runPipeline(cmd *cobra.Command) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (--database-url or VIDDISC_DATABASE_URL)")
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	var m *manifest.Manifest
	if cfg.ManifestPath != "" {
		m, err = manifest.Load(cfg.ManifestPath)
		if err != nil {
			return fmt.Errorf("load manifest: %w", err)
		}
		logger.Info("manifest loaded", zap.String("path", cfg.ManifestPath), zap.Int("rows", m.Len()))
	}

	candidates := store.NewCandidateStore(pool, logger)
	batcher := store.NewBatcher(candidates, logger, cfg.RPCChunk, cfg.DryRun)

	fetcher := crawler.NewFetcher(cfg.CrawlTimeout(), logger)
	budget := crawler.NewBudget(cfg.CrawlMaxRequests)
	cr := crawler.New(fetcher, budget, cfg.CrawlConcurrency, cfg.CrawlMaxLinksPerSource, logger)
	defer cr.Close()

	if cfg.MetricsAddr != "" {
		metrics.Init()
		srv := metrics.NewServer(cfg.MetricsAddr, logger)
		srv.Start()
		defer srv.Stop(context.Background())
	}

	orch := pipeline.New(cfg, logger, pipeline.Deps{
		Venues:   store.NewVenueStore(pool, logger, cfg.PageSize),
		Sources:  store.NewSourceStore(pool, logger, cfg.RPCChunk),
		Crawler:  cr,
		Engine:   scoring.NewEngine(cfg.MinAutoApprove, cfg.MinPendingReview, cfg.Actor),
		Buffer:   batcher,
		Applier:  storeApplier{candidates: candidates},
		Manifest: m,
	})

	summary, runErr := orch.Run(ctx)
	if werr := summary.Write(os.Stdout); werr != nil {
		logger.Warn("write summary", zap.Error(werr))
	}
	return runErr
}
