// Package manifest loads the externally supplied mapping of venue identity
// to known-good video URLs. The file is produced out-of-band; this package
// only parses and indexes it.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Row is one manifest entry. A row may be keyed by any combination of venue
// id, slug, short code, or name, and may carry one or many video URLs.
type Row struct {
	ID        json.Number `json:"id"`
	VenueID   json.Number `json:"venue_id"`
	Slug      string      `json:"slug"`
	ShortCode string      `json:"short_code"`
	Name      string      `json:"name"`
	VideoURL  string      `json:"video_url"`
	VideoURLs []string    `json:"video_urls"`
	SourceURL string      `json:"source_url"`
	Verified  bool        `json:"verified"`
	// Some producers emit source_verified instead of verified.
	SourceVerified bool `json:"source_verified"`
}

// URLs returns every video URL the row carries, video_url first.
func (r Row) URLs() []string {
	var out []string
	if strings.TrimSpace(r.VideoURL) != "" {
		out = append(out, strings.TrimSpace(r.VideoURL))
	}
	for _, u := range r.VideoURLs {
		if strings.TrimSpace(u) != "" {
			out = append(out, strings.TrimSpace(u))
		}
	}
	return out
}

// IsVerified reports whether either verified flag is set.
func (r Row) IsVerified() bool {
	return r.Verified || r.SourceVerified
}

// Manifest indexes rows by every identity key they carry.
type Manifest struct {
	byID        map[int64]Row
	bySlug      map[string]Row
	byShortCode map[string]Row
	byName      map[string]Row
	rows        int
}

// Len returns the number of rows loaded.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return m.rows
}

// Lookup finds the manifest row for a venue, trying id, slug, short code,
// then lowercased name.
func (m *Manifest) Lookup(id int64, slug, shortCode, name string) (Row, bool) {
	if m == nil {
		return Row{}, false
	}
	if r, ok := m.byID[id]; ok {
		return r, true
	}
	if slug != "" {
		if r, ok := m.bySlug[strings.ToLower(slug)]; ok {
			return r, true
		}
	}
	if shortCode != "" {
		if r, ok := m.byShortCode[strings.ToLower(shortCode)]; ok {
			return r, true
		}
	}
	if name != "" {
		if r, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
			return r, true
		}
	}
	return Row{}, false
}

// Load reads a manifest file. Both a bare JSON array and a {"rows": [...]}
// wrapper are accepted.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest bytes and builds the identity indexes.
func Parse(data []byte) (*Manifest, error) {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		var wrapper struct {
			Rows []Row `json:"rows"`
		}
		if werr := json.Unmarshal(data, &wrapper); werr != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		rows = wrapper.Rows
	}

	m := &Manifest{
		byID:        make(map[int64]Row),
		bySlug:      make(map[string]Row),
		byShortCode: make(map[string]Row),
		byName:      make(map[string]Row),
	}
	for _, r := range rows {
		if len(r.URLs()) == 0 {
			continue
		}
		m.rows++
		if id, ok := numberToID(r.ID); ok {
			m.byID[id] = r
		}
		if id, ok := numberToID(r.VenueID); ok {
			m.byID[id] = r
		}
		if r.Slug != "" {
			m.bySlug[strings.ToLower(r.Slug)] = r
		}
		if r.ShortCode != "" {
			m.byShortCode[strings.ToLower(r.ShortCode)] = r
		}
		if r.Name != "" {
			m.byName[strings.ToLower(strings.TrimSpace(r.Name))] = r
		}
	}
	return m, nil
}

func numberToID(n json.Number) (int64, bool) {
	s := n.String()
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
