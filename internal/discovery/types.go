// Package discovery implements the venue video discovery pipeline: seed
// construction, crawl expansion, scoring, and candidate buffering.
package discovery

import (
	"strings"
	"time"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
)

// Venue is a catalog row read from the venue store. The pipeline treats it
// as read-only; only the approved-applier ever writes back to a venue.
type Venue struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	ShortCode   string            `json:"short_code"`
	Category    string            `json:"category"`
	Province    string            `json:"province"`
	District    string            `json:"district"`
	Website     string            `json:"website"`
	SocialLinks map[string]string `json:"social_links"`
	VideoURL    string            `json:"video_url"`
}

// HasVideo reports whether the venue already carries a primary video.
func (v Venue) HasVideo() bool {
	return strings.TrimSpace(v.VideoURL) != ""
}

// OfficialSource is a pre-vetted, platform-tagged URL tied to a venue by an
// independent verification process. Read-only input.
type OfficialSource struct {
	VenueID            int64  `json:"venue_id"`
	Platform           string `json:"platform"`
	SourceKind         string `json:"source_kind"` // profile | video
	SourceURL          string `json:"source_url"`
	NormalizedURL      string `json:"normalized_url"`
	VerificationStatus string `json:"verification_status"`
	Priority           int    `json:"priority"`
}

// SourceType records where a seed or crawl source came from. Crawl-expanded
// seeds carry the "_crawl" suffix of the page that produced them.
type SourceType string

// Seed provenance values.
const (
	SourceSocialLink          SourceType = "social_link"
	SourceWebsite             SourceType = "website"
	SourceVenueExisting       SourceType = "venue_existing"
	SourceManifest            SourceType = "manifest"
	SourceOfficialSource      SourceType = "official_source"
	SourceOfficialSourceVideo SourceType = "official_source_video"
)

// CrawlVariant returns the source type stamped on links extracted from a
// crawl-source page of type st.
func (st SourceType) CrawlVariant() SourceType {
	return st + "_crawl"
}

// IsCrawlExpanded reports whether the seed was produced by crawling rather
// than supplied directly.
func (st SourceType) IsCrawlExpanded() bool {
	return strings.HasSuffix(string(st), "_crawl")
}

// IsOfficial reports whether the seed traces back to an official source row.
func (st SourceType) IsOfficial() bool {
	return strings.HasPrefix(string(st), string(SourceOfficialSource))
}

// Seed is a candidate video URL plus provenance, not yet scored. Transient:
// built and discarded within one venue's processing.
type Seed struct {
	VideoURL         string
	SourceType       SourceType
	SourceURL        string
	LinkKey          string
	ManifestVerified bool
}

// CrawlSource is a non-video page queued for shallow link extraction.
type CrawlSource struct {
	URL        string
	SourceType SourceType
	LinkKey    string
}

// VerificationMethod explains how a candidate's source was verified.
type VerificationMethod string

// Verification methods, strongest first.
const (
	VerifyManifest      VerificationMethod = "manifest_verified"
	VerifyExactSource   VerificationMethod = "exact_source_link"
	VerifyHandleMatch   VerificationMethod = "social_handle_match"
	VerifyWebsiteDomain VerificationMethod = "website_domain_match"
	VerifyNone          VerificationMethod = "none"
)

// CandidateStatus is the review decision attached to a scored candidate.
type CandidateStatus string

// Candidate statuses. Applied is set out-of-band by the approved-applier.
const (
	StatusApproved      CandidateStatus = "approved"
	StatusPendingReview CandidateStatus = "pending_review"
	StatusInvalid       CandidateStatus = "invalid"
	StatusApplied       CandidateStatus = "applied"
)

// ScoredCandidate is the persisted output of the scoring engine. Upserts are
// keyed on (venue_id, normalized_video_url): at most one row per pair.
type ScoredCandidate struct {
	VenueID            int64              `json:"venue_id"`
	VideoURL           string             `json:"video_url"`
	NormalizedVideoURL string             `json:"normalized_video_url"`
	Platform           classify.Platform  `json:"platform"`
	SourceType         SourceType         `json:"source_type"`
	SourceDomain       string             `json:"source_domain"`
	SourceHandle       string             `json:"source_handle"`
	SourceVerified     bool               `json:"source_verified"`
	VerificationMethod VerificationMethod `json:"source_verification_method"`
	MatchScore         int                `json:"match_score"`
	QualityScore       int                `json:"quality_score"`
	ConfidenceScore    int                `json:"confidence_score"`
	Status             CandidateStatus    `json:"status"`
	ReviewNote         string             `json:"review_note,omitempty"`
	ReviewedBy         string             `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time         `json:"reviewed_at,omitempty"`
	DiscoveredAt       time.Time          `json:"discovered_at"`
	MatchingSignals    map[string]any     `json:"matching_signals,omitempty"`
}
