package discovery

import (
	"sort"
	"strings"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
	"github.com/bravforcode/vibescity-live-sub000/internal/manifest"
)

// SeedOptions control which venue fields feed the seed list.
type SeedOptions struct {
	// IncludeExistingSeed admits the venue's current primary video as a seed.
	IncludeExistingSeed bool
}

// SeedList is the per-venue output of seed construction: directly accepted
// seeds plus the generic pages queued for crawl expansion.
type SeedList struct {
	Seeds        []Seed
	CrawlSources []CrawlSource
}

// BuildSeedList assembles seeds for one venue in priority order: social
// links, website, existing video, official sources, then manifest entries.
// A URL that looks like a concrete video post becomes a direct seed;
// profile and listing pages become crawl sources instead. Manifest entries
// are pre-vetted and always accepted directly.
func BuildSeedList(venue Venue, sources []OfficialSource, row *manifest.Row, opts SeedOptions) SeedList {
	var out SeedList
	crawlSeen := make(map[CrawlSource]struct{})

	addDirect := func(rawURL string, st SourceType, sourceURL, linkKey string, verified bool) {
		out.Seeds = append(out.Seeds, Seed{
			VideoURL:         rawURL,
			SourceType:       st,
			SourceURL:        sourceURL,
			LinkKey:          linkKey,
			ManifestVerified: verified,
		})
	}
	addCrawl := func(rawURL string, st SourceType, linkKey string) {
		src := CrawlSource{URL: rawURL, SourceType: st, LinkKey: linkKey}
		if _, dup := crawlSeen[src]; dup {
			return
		}
		crawlSeen[src] = struct{}{}
		out.CrawlSources = append(out.CrawlSources, src)
	}
	split := func(rawURL string, st SourceType, linkKey string) {
		rawURL = strings.TrimSpace(rawURL)
		if rawURL == "" {
			return
		}
		if classify.IsVideoLike(rawURL) && classify.IsSpecificVideo(rawURL) {
			addDirect(rawURL, st, rawURL, linkKey, false)
			return
		}
		addCrawl(rawURL, st, linkKey)
	}

	for _, key := range sortedKeys(venue.SocialLinks) {
		split(venue.SocialLinks[key], SourceSocialLink, key)
	}

	split(venue.Website, SourceWebsite, "website")

	if opts.IncludeExistingSeed && venue.HasVideo() && classify.IsVideoLike(venue.VideoURL) {
		addDirect(venue.VideoURL, SourceVenueExisting, venue.VideoURL, "existing", false)
	}

	for _, src := range sources {
		st := SourceOfficialSource
		if src.SourceKind == "video" {
			st = SourceOfficialSourceVideo
		}
		split(src.SourceURL, st, src.Platform)
	}

	if row != nil {
		for _, u := range row.URLs() {
			addDirect(u, SourceManifest, row.SourceURL, "manifest", row.IsVerified())
		}
	}

	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
