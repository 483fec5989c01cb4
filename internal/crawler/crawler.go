package crawler

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
	"github.com/bravforcode/vibescity-live-sub000/internal/metrics"
)

// Crawler expands crawl-source pages into candidate seeds. Fetches run on a
// bounded worker pool, are coalesced per normalized URL, and spend from the
// shared run budget.
type Crawler struct {
	fetcher  *Fetcher
	budget   *Budget
	pool     pond.Pool
	maxLinks int
	logger   *zap.Logger

	flight    singleflight.Group
	mu        sync.RWMutex
	cache     map[string][]string
	cacheHits atomic.Int64
	linksSeen atomic.Int64
}

// New builds a crawler with the given concurrency and per-source link cap.
func New(fetcher *Fetcher, budget *Budget, concurrency, maxLinksPerSource int, logger *zap.Logger) *Crawler {
	if concurrency <= 0 {
		concurrency = 8
	}
	if maxLinksPerSource <= 0 {
		maxLinksPerSource = 8
	}
	return &Crawler{
		fetcher:  fetcher,
		budget:   budget,
		pool:     pond.NewPool(concurrency),
		maxLinks: maxLinksPerSource,
		logger:   logger,
		cache:    make(map[string][]string),
	}
}

// Close drains the worker pool.
func (c *Crawler) Close() {
	c.pool.StopAndWait()
}

// CacheHits reports how many fetches were answered from cache or coalesced
// onto an in-flight request.
func (c *Crawler) CacheHits() int64 {
	return c.cacheHits.Load()
}

// LinksFound reports candidate links discovered across the run.
func (c *Crawler) LinksFound() int64 {
	return c.linksSeen.Load()
}

// RequestsUsed reports fetches charged against the run budget.
func (c *Crawler) RequestsUsed() int64 {
	return c.budget.Used()
}

// BudgetRemaining reports fetches still available in the run budget.
func (c *Crawler) BudgetRemaining() int64 {
	return c.budget.Remaining()
}

// Expand fetches each crawl source and returns the crawl-expanded seeds.
// Failures degrade to zero links for that source.
func (c *Crawler) Expand(ctx context.Context, sources []discovery.CrawlSource) []discovery.Seed {
	if len(sources) == 0 || c.budget.Remaining() == 0 {
		return nil
	}

	var mu sync.Mutex
	var seeds []discovery.Seed

	group := c.pool.NewGroup()
	for _, src := range sources {
		group.Submit(func() {
			links := c.links(ctx, src.URL)
			if len(links) == 0 {
				return
			}
			c.linksSeen.Add(int64(len(links)))
			mu.Lock()
			defer mu.Unlock()
			for _, link := range links {
				seeds = append(seeds, discovery.Seed{
					VideoURL:   link,
					SourceType: src.SourceType.CrawlVariant(),
					SourceURL:  src.URL,
					LinkKey:    src.LinkKey,
				})
			}
		})
	}
	_ = group.Wait()
	return seeds
}

// links returns the extracted candidate links for one page, going through
// the single-flight group so concurrent callers of the same normalized URL
// share one fetch, and through the result cache so repeats cost nothing.
func (c *Crawler) links(ctx context.Context, rawURL string) []string {
	key := classify.Normalize(rawURL)

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.cacheHits.Add(1)
		metrics.ObserveCrawlCacheHit()
		return cached
	}

	v, _, shared := c.flight.Do(key, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.cache[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		// Reserve before the fetch so two workers can never both pass the
		// budget check.
		if !c.budget.TryReserve() {
			c.logger.Debug("crawl budget exhausted", zap.String("url", rawURL))
			return []string(nil), nil
		}

		body, err := c.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			c.logger.Debug("crawl fetch failed", zap.String("url", rawURL), zap.Error(err))
			metrics.ObserveCrawl(0)
			c.store(key, nil)
			return []string(nil), nil
		}

		base, _ := url.Parse(rawURL)
		links := ExtractCandidateLinks(base, body, c.maxLinks)
		metrics.ObserveCrawl(len(links))
		c.store(key, links)
		return links, nil
	})
	if shared {
		c.cacheHits.Add(1)
		metrics.ObserveCrawlCacheHit()
	}
	links, _ := v.([]string)
	return links
}

func (c *Crawler) store(key string, links []string) {
	c.mu.Lock()
	c.cache[key] = links
	c.mu.Unlock()
}
