package scoring

import (
	"strings"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
)

// input is the evaluated view of one seed that the rules score against.
type input struct {
	seed       discovery.Seed
	normalized string
	platform   classify.Platform
	baseType   discovery.SourceType
	specific   bool
	videoLike  bool
	verified   bool
	tokenHits  int
}

// rule is one named scoring contribution. Rules are pure; weights live in
// the tables below so adjusting them never touches control flow.
type rule struct {
	name  string
	delta func(input) int
}

func socialPlatform(p classify.Platform) bool {
	switch p {
	case classify.PlatformYouTube, classify.PlatformInstagram, classify.PlatformTikTok,
		classify.PlatformFacebook, classify.PlatformVimeo:
		return true
	default:
		return false
	}
}

var qualityRules = []rule{
	{"https", func(in input) int {
		if strings.HasPrefix(in.normalized, "https://") {
			return 10
		}
		return 0
	}},
	{"known_platform", func(in input) int {
		if socialPlatform(in.platform) {
			return 35
		}
		return 0
	}},
	{"specific_post", func(in input) int {
		if in.specific {
			return 30
		}
		return 0
	}},
	{"trusted_source_type", func(in input) int {
		if in.baseType == discovery.SourceManifest || in.baseType.IsOfficial() {
			return 15
		}
		return 0
	}},
}

func matchRules(qualityScore int) []rule {
	return []rule{
		{"video_like", func(in input) int {
			if in.videoLike {
				return 20
			}
			return 0
		}},
		{"verified", func(in input) int {
			if in.verified {
				return 45
			}
			return 0
		}},
		{"source_type", func(in input) int {
			switch in.baseType {
			case discovery.SourceManifest:
				return 20
			case discovery.SourceOfficialSourceVideo:
				return 25
			case discovery.SourceOfficialSource:
				return 18
			case discovery.SourceSocialLink:
				return 12
			case discovery.SourceVenueExisting:
				return 8
			default:
				return 0
			}
		}},
		{"name_tokens", func(in input) int {
			hits := in.tokenHits * 5
			if hits > 15 {
				hits = 15
			}
			return hits
		}},
		{"quality_bonus", func(in input) int {
			if qualityScore >= 60 {
				return 8
			}
			return 0
		}},
	}
}

// runRules sums a rule table and clamps the result to [0,100]. The per-rule
// contributions are returned for the matching_signals diagnostic bag.
func runRules(rules []rule, in input) (int, map[string]any) {
	total := 0
	signals := make(map[string]any)
	for _, r := range rules {
		d := r.delta(in)
		if d != 0 {
			signals[r.name] = d
		}
		total += d
	}
	return clamp(total), signals
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
