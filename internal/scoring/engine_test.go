package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
	"github.com/bravforcode/vibescity-live-sub000/internal/manifest"
)

func newTestEngine() *Engine {
	e := NewEngine(88, 55, "video-discovery-bot")
	e.now = func() time.Time { return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC) }
	return e
}

func blueNote() discovery.Venue {
	return discovery.Venue{
		ID:      42,
		Name:    "Blue Note",
		Website: "https://bluenote.example.com",
		SocialLinks: map[string]string{
			"instagram": "https://instagram.com/bluenote",
			"tiktok":    "https://tiktok.com/@bluenote",
		},
	}
}

func TestScoreManifestVerifiedTikTok(t *testing.T) {
	e := newTestEngine()
	vctx := NewVenueContext(blueNote(), nil, nil)

	seed := discovery.Seed{
		VideoURL:         "https://www.tiktok.com/@bluenote/video/7123456789",
		SourceType:       discovery.SourceManifest,
		ManifestVerified: true,
	}
	cand, ok := e.Score(seed, vctx)
	require.True(t, ok)

	assert.True(t, cand.SourceVerified)
	assert.Equal(t, discovery.VerifyManifest, cand.VerificationMethod)
	assert.Equal(t, 90, cand.QualityScore)
	assert.Equal(t, 100, cand.MatchScore)
	assert.Equal(t, 97, cand.ConfidenceScore)
	assert.Equal(t, discovery.StatusApproved, cand.Status)
	assert.Equal(t, "video-discovery-bot", cand.ReviewedBy)
	require.NotNil(t, cand.ReviewedAt)
}

func TestScoreRejectsWeakURL(t *testing.T) {
	e := newTestEngine()
	vctx := NewVenueContext(blueNote(), nil, nil)

	_, ok := e.Score(discovery.Seed{
		VideoURL:   "https://facebook.com/watch",
		SourceType: discovery.SourceSocialLink,
	}, vctx)
	assert.False(t, ok)

	_, ok = e.Score(discovery.Seed{
		VideoURL:   "https://instagram.com/bluenote",
		SourceType: discovery.SourceSocialLink,
	}, vctx)
	assert.False(t, ok, "profile pages are not candidates")
}

func TestVerificationLadderOrder(t *testing.T) {
	e := newTestEngine()
	venue := blueNote()
	sources := []discovery.OfficialSource{
		{VenueID: 42, Platform: "youtube", SourceKind: "video", SourceURL: "https://youtu.be/abc123"},
	}
	vctx := NewVenueContext(venue, sources, nil)

	tests := []struct {
		name   string
		seed   discovery.Seed
		method discovery.VerificationMethod
	}{
		{
			"manifest wins over everything",
			discovery.Seed{VideoURL: "https://youtu.be/abc123", SourceType: discovery.SourceManifest, ManifestVerified: true},
			discovery.VerifyManifest,
		},
		{
			"exact normalized match",
			discovery.Seed{VideoURL: "https://www.youtube.com/watch?v=abc123", SourceType: discovery.SourceSocialLink},
			discovery.VerifyExactSource,
		},
		{
			"handle match",
			discovery.Seed{VideoURL: "https://tiktok.com/@bluenote/video/999", SourceType: discovery.SourceSocialLink},
			discovery.VerifyHandleMatch,
		},
		{
			"website domain match for crawled seed",
			discovery.Seed{
				VideoURL:   "https://youtube.com/watch?v=zzz999",
				SourceType: discovery.SourceWebsite.CrawlVariant(),
				SourceURL:  "https://www.bluenote.example.com/media",
			},
			discovery.VerifyWebsiteDomain,
		},
		{
			"no match",
			discovery.Seed{VideoURL: "https://youtube.com/watch?v=unrelated1", SourceType: discovery.SourceSocialLink},
			discovery.VerifyNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand, ok := e.Score(tt.seed, vctx)
			require.True(t, ok)
			assert.Equal(t, tt.method, cand.VerificationMethod)
			assert.Equal(t, tt.method != discovery.VerifyNone, cand.SourceVerified)
		})
	}
}

// Official-source seeds with zero name-token overlap must never clear the
// auto-approve bar, however strong the raw formula comes out.
func TestConfidenceCapZeroTokens(t *testing.T) {
	e := newTestEngine()
	venue := blueNote()
	sources := []discovery.OfficialSource{
		{VenueID: 42, Platform: "youtube", SourceKind: "video", SourceURL: "https://youtu.be/zzz999"},
	}
	vctx := NewVenueContext(venue, sources, nil)

	cand, ok := e.Score(discovery.Seed{
		VideoURL:   "https://youtu.be/zzz999",
		SourceType: discovery.SourceOfficialSourceVideo,
	}, vctx)
	require.True(t, ok)

	assert.True(t, cand.SourceVerified)
	assert.Equal(t, 87, cand.ConfidenceScore, "capped just under the approve threshold")
	assert.Equal(t, discovery.StatusPendingReview, cand.Status)
	assert.Equal(t, true, cand.MatchingSignals["confidence_capped"])
}

func TestConfidenceCapExemptWithTokens(t *testing.T) {
	e := newTestEngine()
	venue := blueNote()
	sources := []discovery.OfficialSource{
		{VenueID: 42, Platform: "tiktok", SourceKind: "video", SourceURL: "https://tiktok.com/@bluenote/video/7"},
	}
	vctx := NewVenueContext(venue, sources, nil)

	cand, ok := e.Score(discovery.Seed{
		VideoURL:   "https://tiktok.com/@bluenote/video/7",
		SourceType: discovery.SourceOfficialSourceVideo,
	}, vctx)
	require.True(t, ok)

	assert.GreaterOrEqual(t, cand.ConfidenceScore, 88)
	assert.Equal(t, discovery.StatusApproved, cand.Status)
}

func TestLowConfidenceInvalid(t *testing.T) {
	e := newTestEngine()
	vctx := NewVenueContext(blueNote(), nil, nil)

	cand, ok := e.Score(discovery.Seed{
		VideoURL:   "http://cdn.example.com/old-clip.mp4",
		SourceType: discovery.SourceVenueExisting,
	}, vctx)
	require.True(t, ok)
	assert.Equal(t, discovery.StatusInvalid, cand.Status)
	assert.Less(t, cand.ConfidenceScore, 55)
	assert.NotEmpty(t, cand.ReviewNote)
}

func TestScoreBoundsAndDeterminism(t *testing.T) {
	e := newTestEngine()
	vctx := NewVenueContext(blueNote(), nil, nil)

	seeds := []discovery.Seed{
		{VideoURL: "https://www.tiktok.com/@bluenote/video/1", SourceType: discovery.SourceManifest, ManifestVerified: true},
		{VideoURL: "https://youtube.com/watch?v=abc123", SourceType: discovery.SourceSocialLink},
		{VideoURL: "https://cdn.example.com/x.mp4", SourceType: discovery.SourceWebsite.CrawlVariant(), SourceURL: "https://other.example.org"},
	}
	for _, seed := range seeds {
		first, ok := e.Score(seed, vctx)
		require.True(t, ok)
		second, ok := e.Score(seed, vctx)
		require.True(t, ok)
		assert.Equal(t, first, second, "scoring must be deterministic")

		for _, score := range []int{first.MatchScore, first.QualityScore, first.ConfidenceScore} {
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		}
		if first.Status == discovery.StatusApproved {
			assert.True(t, first.SourceVerified)
			assert.GreaterOrEqual(t, first.ConfidenceScore, 88)
		}
		if first.Status == discovery.StatusInvalid {
			assert.Less(t, first.ConfidenceScore, 55)
		}
	}
}

func TestManifestSourceURLTrusted(t *testing.T) {
	e := newTestEngine()
	row := &manifest.Row{SourceURL: "https://instagram.com/bluenotebackup"}
	vctx := NewVenueContext(blueNote(), nil, row)

	cand, ok := e.Score(discovery.Seed{
		VideoURL:   "https://instagram.com/reel/Cxy987abc",
		SourceType: discovery.SourceSocialLink,
	}, vctx)
	require.True(t, ok)
	// The reel itself is not in the trusted set; only exact matches count.
	assert.Equal(t, discovery.VerifyNone, cand.VerificationMethod)

	_, trusted := vctx.TrustedURLs["https://instagram.com/bluenotebackup"]
	assert.True(t, trusted)
}
