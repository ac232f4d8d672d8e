package search

import (
	"testing"

	"github.com/nikbrunner/bmtidy/internal/model"
)

func TestFuzzySearch_EmptyQuery(t *testing.T) {
	records := []model.Record{
		{ID: "b1", Title: "GitHub", URL: "https://github.com"},
	}

	results := FuzzySearch(records, "")

	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzySearch_ExactMatch(t *testing.T) {
	records := []model.Record{
		{ID: "b1", Title: "GitHub", URL: "https://github.com"},
		{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"},
	}

	results := FuzzySearch(records, "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Record.Title != "GitHub" {
		t.Errorf("expected GitHub, got %s", results[0].Record.Title)
	}
}

func TestFuzzySearch_FuzzyMatch(t *testing.T) {
	records := []model.Record{
		{ID: "b1", Title: "TanStack Router", URL: "https://tanstack.com/router"},
		{ID: "b2", Title: "React Router", URL: "https://reactrouter.com"},
	}

	// "tanrou" should fuzzy match "TanStack Router"
	results := FuzzySearch(records, "tanrou")

	if len(results) < 1 {
		t.Fatalf("expected at least 1 result for 'tanrou', got %d", len(results))
	}
	// TanStack Router should be first (better match)
	if results[0].Record.Title != "TanStack Router" {
		t.Errorf("expected TanStack Router as first result, got %s", results[0].Record.Title)
	}
}

func TestFuzzySearch_MultipleMatches(t *testing.T) {
	records := []model.Record{
		{ID: "b1", Title: "GitHub", URL: "https://github.com"},
		{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"},
		{ID: "b3", Title: "Gitea", URL: "https://gitea.io"},
	}

	results := FuzzySearch(records, "git")

	if len(results) != 3 {
		t.Errorf("expected 3 results for 'git', got %d", len(results))
	}
}

func TestFuzzySearch_NoMatch(t *testing.T) {
	records := []model.Record{
		{ID: "b1", Title: "GitHub", URL: "https://github.com"},
	}

	results := FuzzySearch(records, "xyz123")

	if len(results) != 0 {
		t.Errorf("expected 0 results for 'xyz123', got %d", len(results))
	}
}

func TestFuzzySearch_CaseInsensitive(t *testing.T) {
	records := []model.Record{
		{ID: "b1", Title: "GitHub", URL: "https://github.com"},
	}

	results := FuzzySearch(records, "github")

	if len(results) != 1 {
		t.Fatalf("expected 1 result for case-insensitive match, got %d", len(results))
	}
}

func TestFuzzySearch_SortedByScore(t *testing.T) {
	records := []model.Record{
		{ID: "b1", Title: "React Router Documentation", URL: "https://reactrouter.com"},
		{ID: "b2", Title: "Router", URL: "https://router.example.com"},
	}

	results := FuzzySearch(records, "router")

	if len(results) < 2 {
		t.Fatalf("expected at least 2 results, got %d", len(results))
	}
	// "Router" should rank higher (exact match) than "React Router Documentation"
	if results[0].Record.Title != "Router" {
		t.Errorf("expected 'Router' as first result (exact match), got %s", results[0].Record.Title)
	}
}
