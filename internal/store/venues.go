package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bravforcode/vibescity-live-sub000/internal/discovery"
)

// venueColumns is the full select list the pager starts from. Healing may
// shrink it at runtime when the backend schema predates a column.
var venueColumns = []string{
	"id", "name", "slug", "short_code", "category",
	"province", "district", "website", "social_links", "video_url",
}

// Columns the pager refuses to drop; losing either makes a venue unusable.
var protectedColumns = map[string]struct{}{"id": {}, "name": {}}

const (
	minPageSize      = 50
	schemaRetries    = 3
	timeoutRetries   = 3
	baseRetryDelay   = 750 * time.Millisecond
	timeoutBaseDelay = 500 * time.Millisecond
)

// VenueStore pages the venue catalog with keyset cursoring. Offset paging
// degrades under concurrent writes and large skips, so pages always select
// id > lastSeenID and advance the cursor from the last row returned.
type VenueStore struct {
	db       DB
	logger   *zap.Logger
	columns  []string
	pageSize int

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewVenueStore builds a pager starting at the given page size.
func NewVenueStore(db DB, logger *zap.Logger, pageSize int) *VenueStore {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &VenueStore{
		db:       db,
		logger:   logger,
		columns:  append([]string(nil), venueColumns...),
		pageSize: pageSize,
		sleep:    time.Sleep,
	}
}

// EachVenue walks venues in ascending id order starting after startID and
// calls fn for each. A client-side offset skips that many rows after the
// first id-ordered rows arrive, so resumability via startID stays correct.
// limit <= 0 means unbounded. Returns the number of venues visited.
func (s *VenueStore) EachVenue(
	ctx context.Context,
	startID int64,
	offset, limit int,
	fn func(discovery.Venue) error,
) (int, error) {
	lastID := startID
	visited := 0
	toSkip := offset

	for {
		if err := ctx.Err(); err != nil {
			return visited, err
		}
		page, err := s.fetchPage(ctx, lastID)
		if err != nil {
			return visited, err
		}
		if len(page) == 0 {
			return visited, nil
		}

		for _, v := range page {
			if toSkip > 0 {
				toSkip--
				continue
			}
			if limit > 0 && visited >= limit {
				return visited, nil
			}
			if err := fn(v); err != nil {
				return visited, err
			}
			visited++
		}

		next := page[len(page)-1].ID
		if next <= lastID {
			// Cursor failed to advance; bail rather than loop forever.
			return visited, nil
		}
		lastID = next

		if len(page) < s.pageSize {
			return visited, nil
		}
	}
}

// fetchPage issues one keyset page, applying the layered recovery policy:
// schema-not-ready gets a bounded linear-delay retry, a missing column is
// dropped from the select list (never id or name), and a statement timeout
// first halves the page size down to a floor before bounded retry.
func (s *VenueStore) fetchPage(ctx context.Context, lastID int64) ([]discovery.Venue, error) {
	schemaAttempts := 0
	timeoutAttempts := 0

	for {
		venues, err := s.queryPage(ctx, lastID)
		if err == nil {
			return venues, nil
		}

		classified := ClassifyError(err)
		switch classified.Class {
		case ClassSchemaNotReady:
			schemaAttempts++
			if schemaAttempts > schemaRetries {
				return nil, fmt.Errorf("backend schema not ready after %d attempts: %w", schemaRetries, err)
			}
			delay := baseRetryDelay * time.Duration(schemaAttempts)
			s.logger.Warn("backend schema not ready, retrying",
				zap.Int("attempt", schemaAttempts),
				zap.Duration("delay", delay),
			)
			s.sleep(delay)

		case ClassMissingColumn:
			col := classified.Column
			if col == "" {
				return nil, fmt.Errorf("missing column could not be identified: %w", err)
			}
			if _, protected := protectedColumns[col]; protected {
				return nil, fmt.Errorf("protected column %q missing from backend: %w", col, err)
			}
			if !s.dropColumn(col) {
				return nil, fmt.Errorf("column %q reported missing twice: %w", col, err)
			}
			s.logger.Warn("dropping missing column and retrying", zap.String("column", col))

		case ClassStatementTimeout:
			if s.pageSize > minPageSize {
				shrunk := s.pageSize / 2
				if shrunk < minPageSize {
					shrunk = minPageSize
				}
				s.logger.Warn("statement timeout, shrinking page size",
					zap.Int("from", s.pageSize),
					zap.Int("to", shrunk),
				)
				s.pageSize = shrunk
				continue
			}
			timeoutAttempts++
			if timeoutAttempts > timeoutRetries {
				return nil, fmt.Errorf("venue page timed out after %d attempts at floor page size: %w", timeoutRetries, err)
			}
			delay := timeoutBaseDelay * time.Duration(timeoutAttempts)
			s.logger.Warn("statement timeout at floor page size, retrying",
				zap.Int("attempt", timeoutAttempts),
				zap.Duration("delay", delay),
			)
			s.sleep(delay)

		default:
			return nil, fmt.Errorf("fetch venue page: %w", err)
		}
	}
}

func (s *VenueStore) dropColumn(col string) bool {
	for i, c := range s.columns {
		if c == col {
			s.columns = append(s.columns[:i], s.columns[i+1:]...)
			return true
		}
	}
	return false
}

func (s *VenueStore) queryPage(ctx context.Context, lastID int64) ([]discovery.Venue, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM venues WHERE id > $1 ORDER BY id ASC LIMIT $2",
		strings.Join(s.columns, ", "),
	)
	rows, err := s.db.Query(ctx, q, lastID, s.pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []discovery.Venue
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read venue row: %w", err)
		}
		venues = append(venues, s.scanVenue(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

// scanVenue maps positional values onto a Venue by the current column list,
// which is what lets the select list shrink without changing scan code.
func (s *VenueStore) scanVenue(values []any) discovery.Venue {
	var v discovery.Venue
	for i, col := range s.columns {
		if i >= len(values) {
			break
		}
		switch col {
		case "id":
			v.ID = asInt64(values[i])
		case "name":
			v.Name = asString(values[i])
		case "slug":
			v.Slug = asString(values[i])
		case "short_code":
			v.ShortCode = asString(values[i])
		case "category":
			v.Category = asString(values[i])
		case "province":
			v.Province = asString(values[i])
		case "district":
			v.District = asString(values[i])
		case "website":
			v.Website = asString(values[i])
		case "social_links":
			v.SocialLinks = asStringMap(values[i])
		case "video_url":
			v.VideoURL = asString(values[i])
		}
	}
	return v
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	default:
		return 0
	}
}

func asStringMap(v any) map[string]string {
	out := map[string]string{}
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		for k, raw := range t {
			out[k] = asString(raw)
		}
	case map[string]string:
		return t
	case []byte:
		var decoded map[string]any
		if err := json.Unmarshal(t, &decoded); err != nil {
			return nil
		}
		for k, raw := range decoded {
			out[k] = asString(raw)
		}
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(t), &decoded); err != nil {
			return nil
		}
		for k, raw := range decoded {
			out[k] = asString(raw)
		}
	default:
		return nil
	}
	return out
}
