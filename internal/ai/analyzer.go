package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/bmtidy/internal/aicache"
	"github.com/nikbrunner/bmtidy/internal/model"
)

const (
	defaultBatchSize = 20
	defaultCacheTTL  = 24 * time.Hour
	analysisMaxTokens = 2048
)

// ProgressFunc is called after each batch completes.
// processed is the number of records handled so far, total is the total count.
type ProgressFunc func(processed, total int)

// Analyzer orchestrates batched analysis requests through the cache and
// the resilient pipeline.
type Analyzer struct {
	pipeline  *Pipeline
	cache     *aicache.Cache
	batchSize int
	cacheTTL  time.Duration
}

// NewAnalyzer creates an Analyzer. batchSize <= 0 and ttl <= 0 fall back
// to defaults.
func NewAnalyzer(pipeline *Pipeline, cache *aicache.Cache, batchSize int, ttl time.Duration) *Analyzer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Analyzer{
		pipeline:  pipeline,
		cache:     cache,
		batchSize: batchSize,
		cacheTTL:  ttl,
	}
}

// AnalyzeRecords produces a cleanup recommendation per record. Input is
// partitioned into fixed-size batches, each routed through the cache
// keyed by a hash of the batch identity. A failed batch degrades to a
// review-everything fallback instead of aborting the whole operation;
// only usage-limit exhaustion aborts, since every later batch would hit
// the same wall.
func (a *Analyzer) AnalyzeRecords(ctx context.Context, records []model.Record, forceRefresh bool, onProgress ProgressFunc) ([]Recommendation, error) {
	if len(records) == 0 {
		return nil, nil
	}

	recommendations := make([]Recommendation, 0, len(records))
	total := len(records)

	for start := 0; start < total; start += a.batchSize {
		end := min(start+a.batchSize, total)
		batch := records[start:end]

		hash := batchHash(batch)
		key := fmt.Sprintf("%s:batch:%d", aicache.KindRecommendations, start/a.batchSize)

		raw, _, err := a.cache.GetOrCompute(ctx, key, aicache.KindRecommendations, hash, a.cacheTTL, forceRefresh,
			func(ctx context.Context) (json.RawMessage, error) {
				return a.computeRecommendations(ctx, batch)
			})

		var batchRecs []Recommendation
		if err != nil {
			if errors.Is(err, ErrUsageLimitExceeded) {
				return nil, err
			}
			batchRecs = fallbackRecommendations(batch)
		} else if err := json.Unmarshal(raw, &batchRecs); err != nil {
			batchRecs = fallbackRecommendations(batch)
		}

		for i := range batchRecs {
			batchRecs[i].Normalize()
		}
		recommendations = append(recommendations, batchRecs...)

		if onProgress != nil {
			onProgress(end, total)
		}
	}

	return recommendations, nil
}

// SuggestFolders proposes a folder structure for the given records,
// batched like AnalyzeRecords. A failed batch contributes no suggestions.
func (a *Analyzer) SuggestFolders(ctx context.Context, records []model.Record, forceRefresh bool, onProgress ProgressFunc) ([]SuggestedFolder, error) {
	if len(records) == 0 {
		return nil, nil
	}

	folderContext := BuildContext(records)
	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.ID] = true
	}

	// Merge suggestions across batches by path
	merged := []SuggestedFolder{}
	index := make(map[string]int)
	total := len(records)

	for start := 0; start < total; start += a.batchSize {
		end := min(start+a.batchSize, total)
		batch := records[start:end]

		hash := batchHash(batch)
		key := fmt.Sprintf("%s:batch:%d", aicache.KindFolderSuggestions, start/a.batchSize)

		raw, _, err := a.cache.GetOrCompute(ctx, key, aicache.KindFolderSuggestions, hash, a.cacheTTL, forceRefresh,
			func(ctx context.Context) (json.RawMessage, error) {
				return a.computeFolderSuggestions(ctx, batch, folderContext)
			})

		if err != nil {
			if errors.Is(err, ErrUsageLimitExceeded) {
				return nil, err
			}
			// Batch failed: skip its suggestions
			if onProgress != nil {
				onProgress(end, total)
			}
			continue
		}

		var suggestions []SuggestedFolder
		if err := json.Unmarshal(raw, &suggestions); err != nil {
			suggestions = nil
		}

		for _, s := range suggestions {
			ids := make([]string, 0, len(s.RecordIDs))
			for _, id := range s.RecordIDs {
				if known[id] {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 || len(s.Path) == 0 {
				continue
			}
			s.RecordIDs = ids
			if s.Name == "" {
				s.Name = s.Path[len(s.Path)-1]
			}

			pathKey := strings.ToLower(model.PathString(s.Path))
			if i, ok := index[pathKey]; ok {
				merged[i].RecordIDs = appendMissing(merged[i].RecordIDs, s.RecordIDs)
			} else {
				index[pathKey] = len(merged)
				merged = append(merged, s)
			}
		}

		if onProgress != nil {
			onProgress(end, total)
		}
	}

	return merged, nil
}

func (a *Analyzer) computeRecommendations(ctx context.Context, batch []model.Record) (json.RawMessage, error) {
	resp, err := a.pipeline.Chat(ctx, ChatRequest{
		System:    recommendationSystemPrompt,
		Prompt:    buildRecommendationPrompt(batch),
		MaxTokens: analysisMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	recs, err := parseRecommendations(resp.Content, batch)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recs)
}

func (a *Analyzer) computeFolderSuggestions(ctx context.Context, batch []model.Record, folderContext string) (json.RawMessage, error) {
	resp, err := a.pipeline.Chat(ctx, ChatRequest{
		System:    folderSystemPrompt,
		Prompt:    buildFolderPrompt(batch, folderContext),
		MaxTokens: analysisMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var suggestions []SuggestedFolder
	if err := json.Unmarshal(extractJSON(resp.Content), &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return json.Marshal(suggestions)
}

const recommendationSystemPrompt = `You are a bookmark cleanup assistant. For every bookmark you are given, decide whether it should be deleted, kept, or reviewed by a human. Respond with a JSON array only, no prose.`

const folderSystemPrompt = `You are a bookmark organization assistant. Propose a small set of folders that group the bookmarks you are given. Respond with a JSON array only, no prose.`

func buildRecommendationPrompt(batch []model.Record) string {
	var sb strings.Builder
	sb.WriteString("Bookmarks (one per line: id, title, url, folder):\n")
	for _, r := range batch {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", r.ID, r.Title, r.URL, model.PathString(r.Path))
	}
	sb.WriteString(`
Return a JSON array with one object per bookmark:
[{"id": "...", "recommendation": "delete|keep|review", "reason": "...", "category": "duplicate|broken|outdated|low_quality|valuable", "confidence": 0-100}]`)
	return sb.String()
}

func buildFolderPrompt(batch []model.Record, folderContext string) string {
	var sb strings.Builder
	sb.WriteString(folderContext)
	sb.WriteString("\nBookmarks to organize (one per line: id, title, url):\n")
	for _, r := range batch {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", r.ID, r.Title, r.URL)
	}
	sb.WriteString(`
Instructions:
- Prefer existing folders when they fit well
- Suggest at most 8 folders; every folder must list the bookmark ids it should contain

Return a JSON array:
[{"name": "...", "path": ["segment", ...], "rationale": "...", "recordIds": ["..."]}]`)
	return sb.String()
}

// recommendationPayload is the wire shape returned by the provider.
type recommendationPayload struct {
	ID             string `json:"id"`
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason"`
	Category       string `json:"category"`
	Confidence     int    `json:"confidence"`
}

// parseRecommendations maps the provider response onto the batch.
// Unknown ids are dropped; batch records the provider skipped get a
// review entry so every record ends up with a recommendation.
func parseRecommendations(content string, batch []model.Record) ([]Recommendation, error) {
	var payloads []recommendationPayload
	if err := json.Unmarshal(extractJSON(content), &payloads); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	known := make(map[string]bool, len(batch))
	for _, r := range batch {
		known[r.ID] = true
	}

	recs := make([]Recommendation, 0, len(batch))
	covered := make(map[string]bool, len(batch))
	for _, p := range payloads {
		if !known[p.ID] || covered[p.ID] {
			continue
		}
		covered[p.ID] = true
		recs = append(recs, Recommendation{
			RecordID:       p.ID,
			Recommendation: RecommendationKind(p.Recommendation),
			Reason:         p.Reason,
			Category:       ReasonCategory(p.Category),
			Confidence:     p.Confidence,
		})
	}

	for _, r := range batch {
		if !covered[r.ID] {
			recs = append(recs, reviewFallback(r.ID))
		}
	}

	return recs, nil
}

// fallbackRecommendations marks every record in a failed batch for
// manual review rather than aborting the whole analysis.
func fallbackRecommendations(batch []model.Record) []Recommendation {
	recs := make([]Recommendation, len(batch))
	for i, r := range batch {
		recs[i] = reviewFallback(r.ID)
	}
	return recs
}

func reviewFallback(id string) Recommendation {
	return Recommendation{
		RecordID:       id,
		Recommendation: RecommendReview,
		Reason:         "analysis unavailable, marked for manual review",
		Category:       CategoryValuable,
		Confidence:     0,
	}
}

// batchHash is the content identity of a batch of records.
func batchHash(batch []model.Record) string {
	parts := make([]string, 0, len(batch)*3)
	for _, r := range batch {
		parts = append(parts, r.ID, r.URL, r.Title)
	}
	return aicache.HashStrings(parts...)
}

// extractJSON strips markdown fences and surrounding prose from a
// response that should contain a JSON array.
func extractJSON(content string) []byte {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return []byte(content)
}

func appendMissing(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, id := range dst {
		seen[id] = true
	}
	for _, id := range src {
		if !seen[id] {
			dst = append(dst, id)
		}
	}
	return dst
}
