package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
)

// CandidateStore writes scored candidates and runs the approved-applier
// promotion. Both operations are idempotent: the upsert is keyed on
// (venue_id, normalized_video_url) and never regresses an approved or
// applied row, and apply excludes venues that already carry a video.
type CandidateStore struct {
	db     DB
	logger *zap.Logger
}

// NewCandidateStore wires a candidate sink over the given connection.
func NewCandidateStore(db DB, logger *zap.Logger) *CandidateStore {
	return &CandidateStore{db: db, logger: logger}
}

const candidateInsertPrefix = `INSERT INTO venue_video_candidates (
	venue_id, video_url, normalized_video_url, platform, source_type,
	source_domain, source_handle, source_verified, source_verification_method,
	match_score, quality_score, confidence_score, status, review_note,
	reviewed_by, reviewed_at, discovered_at, matching_signals
) VALUES `

const candidateConflictSuffix = ` ON CONFLICT (venue_id, normalized_video_url) DO UPDATE SET
	video_url = EXCLUDED.video_url,
	platform = EXCLUDED.platform,
	source_type = EXCLUDED.source_type,
	source_domain = EXCLUDED.source_domain,
	source_handle = EXCLUDED.source_handle,
	source_verified = EXCLUDED.source_verified,
	source_verification_method = EXCLUDED.source_verification_method,
	match_score = EXCLUDED.match_score,
	quality_score = EXCLUDED.quality_score,
	confidence_score = EXCLUDED.confidence_score,
	status = CASE
		WHEN venue_video_candidates.status IN ('approved', 'applied') THEN venue_video_candidates.status
		ELSE EXCLUDED.status
	END,
	review_note = EXCLUDED.review_note,
	matching_signals = EXCLUDED.matching_signals`

const candidateFieldCount = 18

// Upsert writes a batch of scored candidates in one statement and returns
// the number of rows affected.
func (s *CandidateStore) Upsert(ctx context.Context, rows []discovery.ScoredCandidate) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(candidateInsertPrefix)
	args := make([]any, 0, len(rows)*candidateFieldCount)
	for i, c := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholderGroup(i*candidateFieldCount+1, candidateFieldCount))

		signals, err := json.Marshal(c.MatchingSignals)
		if err != nil {
			return 0, fmt.Errorf("marshal matching signals: %w", err)
		}
		args = append(args,
			c.VenueID, c.VideoURL, c.NormalizedVideoURL, string(c.Platform), string(c.SourceType),
			c.SourceDomain, c.SourceHandle, c.SourceVerified, string(c.VerificationMethod),
			c.MatchScore, c.QualityScore, c.ConfidenceScore, string(c.Status), c.ReviewNote,
			nullable(c.ReviewedBy), c.ReviewedAt, c.DiscoveredAt, signals,
		)
	}
	sb.WriteString(candidateConflictSuffix)

	tag, err := s.db.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("upsert candidates: %w", err)
	}
	return tag.RowsAffected(), nil
}

func placeholderGroup(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ApplyResult reports what the approved-applier did.
type ApplyResult struct {
	AppliedCount   int64 `json:"applied_count"`
	CandidateCount int64 `json:"candidate_count"`
}

const applyCountQuery = `SELECT count(*) FROM venue_video_candidates
WHERE status = 'approved' AND confidence_score >= $1`

// One pick per venue: the highest-confidence approved candidate for venues
// still missing a primary video. Already-populated venues are excluded,
// which is what makes repeated apply calls safe.
const applyQuery = `WITH picks AS (
	SELECT DISTINCT ON (c.venue_id) c.venue_id, c.normalized_video_url, c.video_url
	FROM venue_video_candidates c
	JOIN venues v ON v.id = c.venue_id
	WHERE c.status = 'approved'
	  AND c.confidence_score >= $1
	  AND (v.video_url IS NULL OR v.video_url = '')
	ORDER BY c.venue_id, c.confidence_score DESC, c.normalized_video_url
	LIMIT $2
), updated AS (
	UPDATE venues SET video_url = picks.video_url
	FROM picks
	WHERE venues.id = picks.venue_id
	RETURNING picks.venue_id, picks.normalized_video_url
)
UPDATE venue_video_candidates c SET
	status = 'applied',
	reviewed_by = $3,
	reviewed_at = now()
FROM updated u
WHERE c.venue_id = u.venue_id AND c.normalized_video_url = u.normalized_video_url`

// ApplyApproved promotes up to limit approved candidates with confidence at
// or above minConfidence into their venue's primary video field.
func (s *CandidateStore) ApplyApproved(ctx context.Context, limit, minConfidence int, actor string) (ApplyResult, error) {
	var res ApplyResult
	if err := s.db.QueryRow(ctx, applyCountQuery, minConfidence).Scan(&res.CandidateCount); err != nil {
		return ApplyResult{}, fmt.Errorf("count approved candidates: %w", err)
	}

	tag, err := s.db.Exec(ctx, applyQuery, minConfidence, limit, actor)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("apply approved candidates: %w", err)
	}
	res.AppliedCount = tag.RowsAffected()

	s.logger.Info("applied approved candidates",
		zap.Int64("applied", res.AppliedCount),
		zap.Int64("candidates", res.CandidateCount),
	)
	return res, nil
}
