package workflow_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nikbrunner/bmtidy/internal/ai"
	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/storage"
	"github.com/nikbrunner/bmtidy/internal/workflow"
)

// memStore is an in-memory RecordStore with failure injection.
type memStore struct {
	records  map[string]model.Record
	failNext error
}

func newMemStore(records []model.Record) *memStore {
	m := &memStore{records: make(map[string]model.Record)}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *memStore) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memStore) LoadAll() ([]model.Record, error) {
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) InsertAll(records []model.Record) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *memStore) DeleteByIDs(ids []string) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

func (m *memStore) BulkUpdatePaths(updates []storage.PathUpdate) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	for _, u := range updates {
		r := m.records[u.ID]
		r.Path = u.Path
		m.records[u.ID] = r
	}
	return nil
}

func (m *memStore) Restore(records []model.Record) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func testRecords() []model.Record {
	created := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	return []model.Record{
		{ID: "a", Title: "Go Blog", URL: "https://go.dev/blog", Path: []string{}, CreatedAt: &created, Source: "chrome"},
		{ID: "b", Title: "Go Docs", URL: "https://go.dev/doc", Path: []string{"Dev"}, Source: "chrome"},
		{ID: "c", Title: "Hacker News", URL: "https://news.ycombinator.com", Path: []string{}, Source: "firefox"},
	}
}

func newTestSession(t *testing.T) (*workflow.Session, *memStore) {
	t.Helper()
	store := newMemStore(testRecords())
	session, err := workflow.New(store, testRecords())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session, store
}

func TestNew_RequiresRecords(t *testing.T) {
	_, err := workflow.New(newMemStore(nil), nil)
	if !errors.Is(err, workflow.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestNew_StartsAtReview(t *testing.T) {
	session, _ := newTestSession(t)
	if session.Stage() != workflow.StageReview {
		t.Errorf("expected review stage, got %q", session.Stage())
	}
}

func TestSelection_CountMatchesSet(t *testing.T) {
	session, _ := newTestSession(t)

	// Any sequence of toggle/selectAll/deselectAll keeps count == |set|
	steps := []func(){
		func() { session.ToggleSelect("a") },
		func() { session.ToggleSelect("b") },
		func() { session.ToggleSelect("a") }, // deselects a
		func() { session.SelectAll([]string{"a", "b", "c"}) },
		func() { session.ToggleSelect("c") },
		func() { session.DeselectAll() },
		func() { session.ToggleSelect("b") },
	}
	wantCounts := []int{1, 2, 1, 3, 2, 0, 1}

	for i, step := range steps {
		step()
		if got := session.SelectedCount(); got != wantCounts[i] {
			t.Errorf("step %d: count = %d, want %d", i, got, wantCounts[i])
		}
		if got := len(session.SelectedIDs()); got != session.SelectedCount() {
			t.Errorf("step %d: SelectedIDs length %d != count %d", i, got, session.SelectedCount())
		}
	}
}

func TestDeleteRecords_SoftDeletesAndLogs(t *testing.T) {
	session, store := newTestSession(t)

	if err := session.DeleteRecords([]string{"a", "c"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	active := session.ActiveRecords()
	if len(active) != 1 || active[0].ID != "b" {
		t.Fatalf("expected only b active, got %v", active)
	}
	if _, ok := store.records["a"]; ok {
		t.Error("expected a removed from store")
	}
	if !session.CanUndo() {
		t.Error("expected an undoable history entry")
	}

	summary := session.Summary()
	if summary.DeletedCount != 2 {
		t.Errorf("expected 2 deleted, got %d", summary.DeletedCount)
	}
}

func TestDeleteRecords_StoreFailureLeavesStateUntouched(t *testing.T) {
	session, store := newTestSession(t)
	store.failNext = errors.New("disk full")

	err := session.DeleteRecords([]string{"a"})
	if err == nil {
		t.Fatal("expected error from store failure")
	}

	if len(session.ActiveRecords()) != 3 {
		t.Error("failed delete must not soft-delete records")
	}
	if session.CanUndo() {
		t.Error("failed delete must not log an operation")
	}
}

func TestUndo_Delete_RestoresRecords(t *testing.T) {
	session, store := newTestSession(t)

	if err := session.DeleteRecords([]string{"a"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := session.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	if len(session.ActiveRecords()) != 3 {
		t.Error("undo must restore the record to the active set")
	}
	if _, ok := store.records["a"]; !ok {
		t.Error("undo must restore the record in the store")
	}
	if session.CanUndo() {
		t.Error("history should be empty after undo")
	}
}

func TestSelectByRecommendation_SkipsRejected(t *testing.T) {
	session, _ := newTestSession(t)

	// 3 delete recommendations, 2 rejected: exactly 1 should be selected
	session.SetRecommendations([]ai.Recommendation{
		{RecordID: "a", Recommendation: ai.RecommendDelete, Confidence: 90},
		{RecordID: "b", Recommendation: ai.RecommendDelete, Confidence: 80},
		{RecordID: "c", Recommendation: ai.RecommendDelete, Confidence: 70},
	})
	session.RejectRecommendation("b")
	session.RejectRecommendation("c")

	session.SelectByRecommendation(ai.RecommendDelete)

	if session.SelectedCount() != 1 {
		t.Fatalf("expected 1 selected, got %d", session.SelectedCount())
	}
	if !session.IsSelected("a") {
		t.Error("expected a to be selected")
	}
}

func TestSelectByRecommendation_ReplacesSelection(t *testing.T) {
	session, _ := newTestSession(t)
	session.SetRecommendations([]ai.Recommendation{
		{RecordID: "a", Recommendation: ai.RecommendKeep},
	})

	session.SelectAll([]string{"b", "c"})
	session.SelectByRecommendation(ai.RecommendKeep)

	if session.SelectedCount() != 1 || !session.IsSelected("a") {
		t.Errorf("selection must be replaced, got %v", session.SelectedIDs())
	}
}

func TestSetRecommendations_NormalizesEntries(t *testing.T) {
	session, _ := newTestSession(t)

	session.SetRecommendations([]ai.Recommendation{
		{RecordID: "a", Recommendation: "nuke", Category: "weird", Confidence: 250},
		{RecordID: "b", Recommendation: ai.RecommendKeep, Category: ai.CategoryValuable, Confidence: -5},
	})

	recs := session.Recommendations()
	if recs[0].Recommendation != ai.RecommendReview {
		t.Errorf("unknown kind must degrade to review, got %q", recs[0].Recommendation)
	}
	if recs[0].Confidence != 100 {
		t.Errorf("confidence must clamp to 100, got %d", recs[0].Confidence)
	}
	if recs[1].Confidence != 0 {
		t.Errorf("confidence must clamp to 0, got %d", recs[1].Confidence)
	}
}

func TestAcceptReject_MutuallyExclusive(t *testing.T) {
	session, _ := newTestSession(t)
	session.SetRecommendations([]ai.Recommendation{
		{RecordID: "a", Recommendation: ai.RecommendDelete},
	})

	session.AcceptRecommendation("a")
	rec := session.RecommendationFor("a")
	if !rec.Accepted || rec.Rejected {
		t.Error("accept must set accepted and clear rejected")
	}

	session.RejectRecommendation("a")
	rec = session.RecommendationFor("a")
	if rec.Accepted || !rec.Rejected {
		t.Error("reject must set rejected and clear accepted")
	}
}

func TestAnalyzingGuard(t *testing.T) {
	session, _ := newTestSession(t)

	if !session.BeginAnalysis() {
		t.Fatal("first BeginAnalysis must succeed")
	}
	if session.BeginAnalysis() {
		t.Error("second BeginAnalysis must fail while analyzing")
	}
	session.EndAnalysis()
	if !session.BeginAnalysis() {
		t.Error("BeginAnalysis must succeed after EndAnalysis")
	}
}

func TestSession_JSONRoundTrip(t *testing.T) {
	session, store := newTestSession(t)

	session.NextStage()
	session.ToggleSelect("a")
	if err := session.DeleteRecords([]string{"c"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := session.CreateFolder([]string{"Reading"}); err != nil {
		t.Fatalf("create folder failed: %v", err)
	}
	session.SetRecommendations([]ai.Recommendation{
		{RecordID: "a", Recommendation: ai.RecommendKeep, Category: ai.CategoryValuable, Confidence: 80},
	})
	session.SetFilters(workflow.Filters{Domain: "go.dev"})

	data, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	restored, err := workflow.Load(store, data)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if restored.ID() != session.ID() {
		t.Errorf("ID mismatch: %q vs %q", restored.ID(), session.ID())
	}
	if restored.Stage() != workflow.StageOrganize {
		t.Errorf("expected organize stage, got %q", restored.Stage())
	}
	if !restored.IsSelected("a") {
		t.Error("selection must survive the round trip")
	}
	if len(restored.ActiveRecords()) != 2 {
		t.Errorf("expected 2 active records, got %d", len(restored.ActiveRecords()))
	}
	if !restored.CanUndo() {
		t.Error("history must survive the round trip")
	}
	if restored.Filters().Domain != "go.dev" {
		t.Error("filters must survive the round trip")
	}

	// Undo still works against the store after restore
	if err := restored.Undo(); err != nil {
		t.Fatalf("undo after restore failed: %v", err)
	}
}

func TestLoad_RejectsGarbage(t *testing.T) {
	_, err := workflow.Load(newMemStore(nil), []byte("not json"))
	if err == nil {
		t.Fatal("expected error for invalid session data")
	}
}

func TestReset_ClearsWorkflowState(t *testing.T) {
	session, _ := newTestSession(t)

	session.ToggleSelect("a")
	if err := session.DeleteRecords([]string{"c"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	session.NextStage()

	session.Reset()

	if session.Stage() != workflow.StageReview {
		t.Error("reset must return to review stage")
	}
	if session.SelectedCount() != 0 {
		t.Error("reset must clear selection")
	}
	if session.CanUndo() {
		t.Error("reset must clear history")
	}
	// Soft-deleted records are gone for good after reset
	if len(session.Records()) != 2 {
		t.Errorf("expected 2 records after reset, got %d", len(session.Records()))
	}
}
