package model

import (
	"net/url"
	"strings"
	"time"
)

// Record represents a bookmark with its folder path.
type Record struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Path      []string   `json:"path"`      // folder segments, empty = root
	CreatedAt *time.Time `json:"createdAt"` // nil = unknown
	Source    string     `json:"source"`    // e.g. "chrome", "firefox", "import"
}

// NewRecordParams holds parameters for creating a new Record.
type NewRecordParams struct {
	Title     string
	URL       string
	Path      []string
	CreatedAt *time.Time
	Source    string
}

// NewRecord creates a Record with a generated UUID.
func NewRecord(params NewRecordParams) Record {
	path := params.Path
	if path == nil {
		path = []string{}
	}

	return Record{
		ID:        GenerateUUID(),
		Title:     params.Title,
		URL:       params.URL,
		Path:      path,
		CreatedAt: params.CreatedAt,
		Source:    params.Source,
	}
}

// Domain returns the lowercased host of the record URL, or "" if unparseable.
func (r Record) Domain() string {
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// PathString renders a path as "/A/B". Root renders as "/".
func PathString(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	return "/" + strings.Join(path, "/")
}

// SamePath reports whether two paths have identical segments.
func SamePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PathHasPrefix reports whether path starts with prefix, comparing
// segments case-insensitively.
func PathHasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if !strings.EqualFold(path[i], prefix[i]) {
			return false
		}
	}
	return true
}

// ClonePath returns an independent copy of a path slice.
func ClonePath(path []string) []string {
	cloned := make([]string, len(path))
	copy(cloned, path)
	return cloned
}

// FindByID returns a pointer into records for the given ID, or nil.
func FindByID(records []Record, id string) *Record {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// HasURL reports whether any record has the given URL.
func HasURL(records []Record, url string) bool {
	for i := range records {
		if records[i].URL == url {
			return true
		}
	}
	return false
}

// Merge appends incoming records whose URLs are not already present.
// Returns the merged slice plus added/skipped counts.
func Merge(existing, incoming []Record) ([]Record, int, int) {
	urls := make(map[string]bool, len(existing))
	for i := range existing {
		urls[existing[i].URL] = true
	}

	added, skipped := 0, 0
	for _, rec := range incoming {
		if urls[rec.URL] {
			skipped++
			continue
		}
		urls[rec.URL] = true
		existing = append(existing, rec)
		added++
	}
	return existing, added, skipped
}
