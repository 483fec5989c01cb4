package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a page we parse. 2.5 MB covers real venue
// pages; anything larger is truncated, not rejected.
const maxBodyBytes = 2_500_000

const defaultUserAgent = "vibescity-video-discovery/1.0"

// Fetcher retrieves crawl-source pages with a per-request timeout and only
// accepts html/xml bodies.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewFetcher builds a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch retrieves one page body, capped at maxBodyBytes. Non-2xx statuses
// and non-HTML content types return an error; callers treat every error as
// "no links here".
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "xml") {
		return nil, fmt.Errorf("fetch %s: unsupported content type %q", rawURL, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", rawURL, err)
	}
	return body, nil
}
