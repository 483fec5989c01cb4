// Package scoring computes verification, quality, match, and confidence
// scores for candidate seeds and decides their review status.
package scoring

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
	"github.com/bravforcode/vibescity-live-sub000/internal/manifest"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// VenueContext is everything the engine knows about one venue while scoring
// its seeds: trusted URL set, official handles per platform, website host,
// and the venue's name tokens. Built once per venue.
type VenueContext struct {
	Venue       discovery.Venue
	NameTokens  []string
	TrustedURLs map[string]struct{}
	Handles     map[classify.Platform]map[string]struct{}
	WebsiteHost string
}

// NewVenueContext assembles the scoring context from the venue row, its
// official sources, and the optional manifest row.
func NewVenueContext(venue discovery.Venue, sources []discovery.OfficialSource, row *manifest.Row) VenueContext {
	ctx := VenueContext{
		Venue:       venue,
		NameTokens:  nameTokens(venue.Name),
		TrustedURLs: make(map[string]struct{}),
		Handles:     make(map[classify.Platform]map[string]struct{}),
		WebsiteHost: hostOf(venue.Website),
	}

	addTrusted := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		ctx.TrustedURLs[classify.Normalize(raw)] = struct{}{}
		if h := classify.ExtractHandle(raw); h != "" {
			p := classify.PlatformFromURL(raw)
			if ctx.Handles[p] == nil {
				ctx.Handles[p] = make(map[string]struct{})
			}
			ctx.Handles[p][h] = struct{}{}
		}
	}

	for _, link := range venue.SocialLinks {
		addTrusted(link)
	}
	addTrusted(venue.Website)
	for _, src := range sources {
		addTrusted(src.SourceURL)
		if src.NormalizedURL != "" {
			ctx.TrustedURLs[classify.Normalize(src.NormalizedURL)] = struct{}{}
		}
	}
	if row != nil {
		addTrusted(row.SourceURL)
	}
	return ctx
}

// HasHandle reports whether the handle belongs to the venue on the platform.
func (c VenueContext) HasHandle(p classify.Platform, handle string) bool {
	if handle == "" {
		return false
	}
	set, ok := c.Handles[p]
	if !ok {
		return false
	}
	_, ok = set[handle]
	return ok
}

// TokenHits counts venue name tokens appearing in the candidate URL.
func (c VenueContext) TokenHits(normalizedURL string) int {
	lowered := strings.ToLower(normalizedURL)
	hits := 0
	for _, tok := range c.NameTokens {
		if strings.Contains(lowered, tok) {
			hits++
		}
	}
	return hits
}

// nameTokens splits a venue name into lowercase tokens worth matching.
// Short tokens match everything and carry no signal, so they are dropped.
func nameTokens(name string) []string {
	var out []string
	for _, tok := range tokenRe.FindAllString(strings.ToLower(name), -1) {
		if len(tok) >= 3 {
			out = append(out, tok)
		}
	}
	return out
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	h := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(h, "www.")
}
