package workflow

import (
	"strings"
	"time"

	"github.com/nikbrunner/bmtidy/internal/ai"
	"github.com/nikbrunner/bmtidy/internal/model"
)

// Filters combines independent record predicates with AND semantics.
// A zero-valued field imposes no constraint.
type Filters struct {
	Domain         string                `json:"domain,omitempty"`         // case-insensitive substring of the URL host
	FolderPrefix   []string              `json:"folderPrefix,omitempty"`   // segment-wise case-insensitive prefix
	From           *time.Time            `json:"from,omitempty"`           // inclusive
	To             *time.Time            `json:"to,omitempty"`             // inclusive
	Text           string                `json:"text,omitempty"`           // free text over title/URL/path
	Recommendation ai.RecommendationKind `json:"recommendation,omitempty"` // current recommendation equality
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f.Domain == "" &&
		len(f.FolderPrefix) == 0 &&
		f.From == nil &&
		f.To == nil &&
		f.Text == "" &&
		f.Recommendation == ""
}

// SetFilters replaces the session's filter state.
func (s *Session) SetFilters(f Filters) {
	s.filters = f
}

// Filters returns the session's filter state.
func (s *Session) Filters() Filters {
	return s.filters
}

// FilteredRecords returns the active records passing every set filter.
func (s *Session) FilteredRecords() []model.Record {
	active := s.ActiveRecords()
	if s.filters.Empty() {
		return active
	}

	filtered := make([]model.Record, 0, len(active))
	for _, r := range active {
		if s.matchesFilters(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (s *Session) matchesFilters(r model.Record) bool {
	f := s.filters

	if f.Domain != "" && !strings.Contains(r.Domain(), strings.ToLower(f.Domain)) {
		return false
	}

	if len(f.FolderPrefix) > 0 && !model.PathHasPrefix(r.Path, f.FolderPrefix) {
		return false
	}

	// Records without a timestamp cannot satisfy a time range
	if f.From != nil && (r.CreatedAt == nil || r.CreatedAt.Before(*f.From)) {
		return false
	}
	if f.To != nil && (r.CreatedAt == nil || r.CreatedAt.After(*f.To)) {
		return false
	}

	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		haystack := strings.ToLower(r.Title + " " + r.URL + " " + model.PathString(r.Path))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}

	if f.Recommendation != "" {
		rec := s.RecommendationFor(r.ID)
		if rec == nil || rec.Recommendation != f.Recommendation {
			return false
		}
	}

	return true
}
