package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// Result represents a fuzzy search match.
type Result struct {
	Record         *model.Record
	MatchedIndexes []int
	Score          int
}

// recordTitles implements fuzzy.Source for a record slice.
type recordTitles []*model.Record

func (rt recordTitles) String(i int) string {
	return rt[i].Title
}

func (rt recordTitles) Len() int {
	return len(rt)
}

// FuzzySearch searches records by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearch(records []model.Record, query string) []Result {
	if query == "" {
		return nil
	}

	// Build slice of record pointers
	candidates := make(recordTitles, len(records))
	for i := range records {
		candidates[i] = &records[i]
	}

	// Run fuzzy matching
	matches := fuzzy.FindFrom(query, candidates)

	// Convert to Result
	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Record:         candidates[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
