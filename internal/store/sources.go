package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
)

// SourceStore reads pre-vetted official source rows for venues.
type SourceStore struct {
	db       DB
	logger   *zap.Logger
	rpcChunk int
}

// NewSourceStore builds a reader that fetches sources in id-set chunks.
func NewSourceStore(db DB, logger *zap.Logger, rpcChunk int) *SourceStore {
	if rpcChunk <= 0 {
		rpcChunk = 200
	}
	return &SourceStore{db: db, logger: logger, rpcChunk: rpcChunk}
}

const sourcesQuery = `SELECT venue_id, platform, source_kind, source_url, normalized_url, verification_status, priority
FROM venue_official_sources
WHERE venue_id = ANY($1)
  AND is_active = true
  AND verification_status IN ('verified', 'manual_verified', 'auto_verified')
ORDER BY priority DESC`

// ListForVenues returns active, verified official sources grouped by venue,
// ordered by descending priority within each venue.
func (s *SourceStore) ListForVenues(ctx context.Context, venueIDs []int64) (map[int64][]discovery.OfficialSource, error) {
	out := make(map[int64][]discovery.OfficialSource)
	for start := 0; start < len(venueIDs); start += s.rpcChunk {
		end := start + s.rpcChunk
		if end > len(venueIDs) {
			end = len(venueIDs)
		}
		if err := s.listChunk(ctx, venueIDs[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SourceStore) listChunk(ctx context.Context, ids []int64, out map[int64][]discovery.OfficialSource) error {
	rows, err := s.db.Query(ctx, sourcesQuery, ids)
	if err != nil {
		return fmt.Errorf("list official sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src discovery.OfficialSource
		if err := rows.Scan(
			&src.VenueID,
			&src.Platform,
			&src.SourceKind,
			&src.SourceURL,
			&src.NormalizedURL,
			&src.VerificationStatus,
			&src.Priority,
		); err != nil {
			return fmt.Errorf("scan official source: %w", err)
		}
		out[src.VenueID] = append(out[src.VenueID], src)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate official sources: %w", err)
	}
	return nil
}
