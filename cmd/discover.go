package cmd

import (
	"github.com/spf13/cobra"
)

// newDiscoverCmd creates the 'discover' subcommand, which runs the full
// pipeline: enumerate venues, build seeds, crawl, score, and upsert.
func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Runs venue video discovery",
		Long: `Walks venues in ascending id order, builds candidate seeds from each
venue's links and official sources, expands generic pages through the
budgeted crawler, scores every candidate, and upserts the results.
Emits a JSON run summary to stdout.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(cmd.Flags(), discoverFlagKeys)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd)
		},
	}

	f := cmd.Flags()
	f.Int("limit", 0, "stop after this many venues (0 = all)")
	f.Int("offset", 0, "skip this many venues before processing")
	f.Int64("start-id", 0, "resume from venues with id greater than this")
	f.Int("page-size", 500, "venue fetch page size")
	f.Int("rpc-chunk", 200, "batch size for source loads and candidate upserts")
	f.Int("min-auto-approve", 88, "confidence floor for auto-approval of verified candidates")
	f.Int("min-pending-review", 55, "confidence floor below which candidates are invalid")
	f.Int("min-auto-apply", 90, "confidence floor for the apply stage")
	f.Int("apply-limit", 5000, "maximum venues updated by the apply stage")
	f.String("manifest", "", "path to a JSON manifest of pre-vetted video URLs")
	f.Bool("include-with-video", false, "also process venues that already have a primary video")
	f.Bool("include-existing-seed", false, "seed each venue with its current primary video")
	f.Bool("no-official-sources", false, "skip loading official sources")
	f.Bool("apply-approved", false, "promote approved candidates after discovery")
	f.Bool("no-crawl", false, "disable crawl expansion of generic pages")
	f.Int("crawl-max-requests", 1200, "global crawl fetch budget for the run")
	f.Int("crawl-concurrency", 8, "maximum concurrent crawl fetches")
	f.Int("crawl-timeout-ms", 6000, "per-fetch timeout in milliseconds")
	f.Int("crawl-max-links-per-source", 8, "candidate links kept per crawled page")
	f.Int("heartbeat-interval-seconds", 15, "progress log interval")
	f.Bool("skip-discovery", false, "skip discovery (combine with --apply-approved)")

	return cmd
}

var discoverFlagKeys = map[string]string{
	"limit":                      "limit",
	"offset":                     "offset",
	"start-id":                   "start_id",
	"page-size":                  "page_size",
	"rpc-chunk":                  "rpc_chunk",
	"min-auto-approve":           "min_auto_approve",
	"min-pending-review":         "min_pending_review",
	"min-auto-apply":             "min_auto_apply",
	"apply-limit":                "apply_limit",
	"manifest":                   "manifest",
	"include-with-video":         "include_with_video",
	"include-existing-seed":      "include_existing_seed",
	"no-official-sources":        "no_official_sources",
	"apply-approved":             "apply_approved",
	"no-crawl":                   "no_crawl",
	"crawl-max-requests":         "crawl_max_requests",
	"crawl-concurrency":          "crawl_concurrency",
	"crawl-timeout-ms":           "crawl_timeout_ms",
	"crawl-max-links-per-source": "crawl_max_links_per_source",
	"heartbeat-interval-seconds": "heartbeat_interval_seconds",
	"skip-discovery":             "skip_discovery",
}
