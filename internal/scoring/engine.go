package scoring

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
)

// Engine scores seeds against a venue context. Aside from the stamped
// timestamps, scoring is fully deterministic for a given configuration.
type Engine struct {
	minAutoApprove   int
	minPendingReview int
	actor            string
	now              func() time.Time
}

// NewEngine builds an engine with the run's thresholds and audit actor.
func NewEngine(minAutoApprove, minPendingReview int, actor string) *Engine {
	return &Engine{
		minAutoApprove:   minAutoApprove,
		minPendingReview: minPendingReview,
		actor:            actor,
		now:              time.Now,
	}
}

// Score evaluates one seed. The second return is false when the URL fails
// the candidate gate and must be discarded entirely.
func (e *Engine) Score(seed discovery.Seed, vctx VenueContext) (discovery.ScoredCandidate, bool) {
	normalized := classify.Normalize(seed.VideoURL)
	if classify.ShouldReject(normalized) {
		return discovery.ScoredCandidate{}, false
	}

	in := input{
		seed:       seed,
		normalized: normalized,
		platform:   classify.PlatformFromURL(normalized),
		baseType:   baseSourceType(seed.SourceType),
		specific:   classify.IsSpecificVideo(normalized),
		videoLike:  classify.IsVideoLike(normalized),
		tokenHits:  vctx.TokenHits(normalized),
	}

	verified, method := e.verify(in, vctx)
	in.verified = verified

	quality, qualitySignals := runRules(qualityRules, in)
	match, matchSignals := runRules(matchRules(quality), in)

	confidence := clamp(int(math.Round(float64(match)*0.65 + float64(quality)*0.35)))
	capped := false
	// Crawl-expanded and official-source seeds with zero name-token overlap
	// never auto-publish: cap them just under the approval threshold.
	if (seed.SourceType.IsCrawlExpanded() || seed.SourceType.IsOfficial()) && in.tokenHits == 0 {
		if confidence >= e.minAutoApprove {
			confidence = e.minAutoApprove - 1
			capped = true
		}
	}

	signals := map[string]any{
		"verification_method": string(method),
		"token_hits":          in.tokenHits,
		"platform":            string(in.platform),
		"quality":             qualitySignals,
		"match":               matchSignals,
	}
	if capped {
		signals["confidence_capped"] = true
	}

	cand := discovery.ScoredCandidate{
		VenueID:            vctx.Venue.ID,
		VideoURL:           seed.VideoURL,
		NormalizedVideoURL: normalized,
		Platform:           in.platform,
		SourceType:         seed.SourceType,
		SourceDomain:       sourceDomain(seed),
		SourceHandle:       classify.ExtractHandle(normalized),
		SourceVerified:     verified,
		VerificationMethod: method,
		MatchScore:         match,
		QualityScore:       quality,
		ConfidenceScore:    confidence,
		DiscoveredAt:       e.now().UTC(),
		MatchingSignals:    signals,
	}

	switch {
	case confidence < e.minPendingReview:
		cand.Status = discovery.StatusInvalid
		cand.ReviewNote = fmt.Sprintf("confidence %d below review threshold %d", confidence, e.minPendingReview)
	case verified && confidence >= e.minAutoApprove:
		cand.Status = discovery.StatusApproved
		cand.ReviewNote = fmt.Sprintf("auto-approved: %s at confidence %d", method, confidence)
		cand.ReviewedBy = e.actor
		ts := e.now().UTC()
		cand.ReviewedAt = &ts
	default:
		cand.Status = discovery.StatusPendingReview
	}

	return cand, true
}

// verify walks the trust ladder in priority order and short-circuits at the
// first hit.
func (e *Engine) verify(in input, vctx VenueContext) (bool, discovery.VerificationMethod) {
	if in.seed.ManifestVerified {
		return true, discovery.VerifyManifest
	}
	if _, ok := vctx.TrustedURLs[in.normalized]; ok {
		return true, discovery.VerifyExactSource
	}
	if h := classify.ExtractHandle(in.normalized); h != "" && vctx.HasHandle(in.platform, h) {
		return true, discovery.VerifyHandleMatch
	}
	if vctx.WebsiteHost != "" && in.seed.SourceType.IsCrawlExpanded() {
		if srcHost := hostOf(in.seed.SourceURL); srcHost != "" && srcHost == vctx.WebsiteHost {
			return true, discovery.VerifyWebsiteDomain
		}
	}
	return false, discovery.VerifyNone
}

// baseSourceType strips the crawl suffix so an expanded seed keeps the
// weight of the page that produced it.
func baseSourceType(st discovery.SourceType) discovery.SourceType {
	return discovery.SourceType(strings.TrimSuffix(string(st), "_crawl"))
}

func sourceDomain(seed discovery.Seed) string {
	raw := seed.SourceURL
	if raw == "" {
		raw = seed.VideoURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
