package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nikbrunner/bmtidy/internal/ai"
	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/storage"
)

// ErrNoRecords is returned when a session is started over an empty record set.
var ErrNoRecords = errors.New("no records to clean up")

// Session is a resumable cleanup workflow over a working copy of the
// record set. All mutations run synchronously to completion; only store
// and provider I/O suspends.
type Session struct {
	id             string
	stage          Stage
	records        []model.Record // working copy
	selected       map[string]bool
	deleted        map[string]bool // soft-deleted record IDs
	pendingMoves   []Move
	createdFolders [][]string
	history        []Operation
	recs           []ai.Recommendation
	suggestions    []ai.SuggestedFolder
	filters        Filters
	analyzing      bool

	store storage.RecordStore
}

// New starts a cleanup session over a non-empty record set.
// The initial stage is always review.
func New(store storage.RecordStore, records []model.Record) (*Session, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	working := make([]model.Record, len(records))
	copy(working, records)

	return &Session{
		id:       model.GenerateUUID(),
		stage:    StageReview,
		records:  working,
		selected: make(map[string]bool),
		deleted:  make(map[string]bool),
		store:    store,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Records returns the full working set, soft-deleted records included.
func (s *Session) Records() []model.Record {
	return s.records
}

// ActiveRecords returns the working set minus the soft-deleted set.
func (s *Session) ActiveRecords() []model.Record {
	active := make([]model.Record, 0, len(s.records))
	for _, r := range s.records {
		if !s.deleted[r.ID] {
			active = append(active, r)
		}
	}
	return active
}

// IsActive reports whether a record exists and is not soft-deleted.
func (s *Session) IsActive(id string) bool {
	return !s.deleted[id] && model.FindByID(s.records, id) != nil
}

// --- Selection ---

// ToggleSelect adds or removes a record from the selection.
func (s *Session) ToggleSelect(id string) {
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
}

// SelectAll replaces the selection with the given IDs.
func (s *Session) SelectAll(ids []string) {
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
}

// DeselectAll clears the selection.
func (s *Session) DeselectAll() {
	s.selected = make(map[string]bool)
}

// IsSelected reports whether a record is selected.
func (s *Session) IsSelected(id string) bool {
	return s.selected[id]
}

// SelectedCount returns the selection cardinality.
func (s *Session) SelectedCount() int {
	return len(s.selected)
}

// SelectedIDs returns the selected IDs in stable order.
func (s *Session) SelectedIDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectByRecommendation replaces the selection with the active,
// non-rejected records whose current recommendation matches kind.
func (s *Session) SelectByRecommendation(kind ai.RecommendationKind) {
	s.selected = make(map[string]bool)
	for i := range s.recs {
		rec := &s.recs[i]
		if rec.Recommendation != kind || rec.Rejected {
			continue
		}
		if s.IsActive(rec.RecordID) {
			s.selected[rec.RecordID] = true
		}
	}
}

// --- Deletion ---

// DeleteRecords soft-deletes the given records and persists the delete
// to the store. On store failure no in-memory state changes. The logged
// operation carries a full snapshot of the removed records.
func (s *Session) DeleteRecords(ids []string) error {
	snapshot := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		if s.deleted[id] {
			continue
		}
		if rec := model.FindByID(s.records, id); rec != nil {
			snapshot = append(snapshot, *rec)
		}
	}
	if len(snapshot) == 0 {
		return nil
	}

	deleteIDs := make([]string, len(snapshot))
	for i, r := range snapshot {
		deleteIDs[i] = r.ID
	}

	if err := s.store.DeleteByIDs(deleteIDs); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}

	for _, id := range deleteIDs {
		s.deleted[id] = true
		delete(s.selected, id)
	}

	s.recordOperation(Operation{Kind: OpDelete, Deleted: snapshot})
	return nil
}

// DeleteSelected deletes the current selection.
func (s *Session) DeleteSelected() error {
	return s.DeleteRecords(s.SelectedIDs())
}

// --- Recommendations & suggestions ---

// SetRecommendations replaces the recommendation list, normalizing
// each entry (confidence clamped, unknown values coerced).
func (s *Session) SetRecommendations(recs []ai.Recommendation) {
	for i := range recs {
		recs[i].Normalize()
	}
	s.recs = recs
}

// Recommendations returns the current recommendation list.
func (s *Session) Recommendations() []ai.Recommendation {
	return s.recs
}

// RecommendationFor returns the recommendation for a record, or nil.
func (s *Session) RecommendationFor(id string) *ai.Recommendation {
	for i := range s.recs {
		if s.recs[i].RecordID == id {
			return &s.recs[i]
		}
	}
	return nil
}

// AcceptRecommendation marks a record's recommendation accepted.
func (s *Session) AcceptRecommendation(id string) {
	if rec := s.RecommendationFor(id); rec != nil {
		rec.Accept()
	}
}

// RejectRecommendation marks a record's recommendation rejected.
func (s *Session) RejectRecommendation(id string) {
	if rec := s.RecommendationFor(id); rec != nil {
		rec.Reject()
	}
}

// SetSuggestions replaces the AI folder suggestions.
func (s *Session) SetSuggestions(suggestions []ai.SuggestedFolder) {
	s.suggestions = suggestions
}

// Suggestions returns the current folder suggestions.
func (s *Session) Suggestions() []ai.SuggestedFolder {
	return s.suggestions
}

// BeginAnalysis atomically checks and sets the analyzing guard.
// It returns false if an analysis is already in flight.
func (s *Session) BeginAnalysis() bool {
	if s.analyzing {
		return false
	}
	s.analyzing = true
	return true
}

// EndAnalysis clears the analyzing guard.
func (s *Session) EndAnalysis() {
	s.analyzing = false
}

// Analyzing reports whether an analysis is in flight.
func (s *Session) Analyzing() bool {
	return s.analyzing
}

// --- Summary & export ---

// ChangeSummary itemizes the session's pending changes for the UI.
type ChangeSummary struct {
	DeletedCount       int            `json:"deletedCount"`
	MovedCount         int            `json:"movedCount"`
	CreatedFolderCount int            `json:"createdFolderCount"`
	Deleted            []model.Record `json:"deleted"`
	Moves              []Move         `json:"moves"`
	CreatedFolders     [][]string     `json:"createdFolders"`
	CanUndo            bool           `json:"canUndo"`
}

// Summary returns the current change summary.
func (s *Session) Summary() ChangeSummary {
	deleted := make([]model.Record, 0, len(s.deleted))
	for _, r := range s.records {
		if s.deleted[r.ID] {
			deleted = append(deleted, r)
		}
	}

	return ChangeSummary{
		DeletedCount:       len(deleted),
		MovedCount:         len(s.pendingMoves),
		CreatedFolderCount: len(s.createdFolders),
		Deleted:            deleted,
		Moves:              s.pendingMoves,
		CreatedFolders:     s.createdFolders,
		CanUndo:            s.CanUndo(),
	}
}

// PendingMoves returns the ordered pending move list.
func (s *Session) PendingMoves() []Move {
	return s.pendingMoves
}

// CreatedFolders returns the folder paths created this session.
func (s *Session) CreatedFolders() [][]string {
	return s.createdFolders
}

// ExportRecords returns the final active record list with resolved
// paths, for the external serializer.
func (s *Session) ExportRecords() []model.Record {
	return s.ActiveRecords()
}

// Reset clears all workflow state back to a fresh review stage over the
// current active records. Called after a successful export.
func (s *Session) Reset() {
	s.records = s.ActiveRecords()
	s.stage = StageReview
	s.selected = make(map[string]bool)
	s.deleted = make(map[string]bool)
	s.pendingMoves = nil
	s.createdFolders = nil
	s.history = nil
	s.recs = nil
	s.suggestions = nil
	s.filters = Filters{}
	s.analyzing = false
}

// --- Persistence ---

// sessionState is the serialized form of a Session.
type sessionState struct {
	ID             string                `json:"id"`
	Stage          Stage                 `json:"stage"`
	Records        []model.Record        `json:"records"`
	Selected       []string              `json:"selected"`
	Deleted        []string              `json:"deleted"`
	PendingMoves   []Move                `json:"pendingMoves"`
	CreatedFolders [][]string            `json:"createdFolders"`
	History        []Operation           `json:"history"`
	Recs           []ai.Recommendation   `json:"recommendations"`
	Suggestions    []ai.SuggestedFolder  `json:"suggestedFolders"`
	Filters        Filters               `json:"filters"`
}

// MarshalJSON serializes the full session state.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionState{
		ID:             s.id,
		Stage:          s.stage,
		Records:        s.records,
		Selected:       setToSlice(s.selected),
		Deleted:        setToSlice(s.deleted),
		PendingMoves:   s.pendingMoves,
		CreatedFolders: s.createdFolders,
		History:        s.history,
		Recs:           s.recs,
		Suggestions:    s.suggestions,
		Filters:        s.filters,
	})
}

// Load restores a session from its serialized form.
func Load(store storage.RecordStore, data []byte) (*Session, error) {
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !state.Stage.Valid() {
		state.Stage = StageReview
	}

	return &Session{
		id:             state.ID,
		stage:          state.Stage,
		records:        state.Records,
		selected:       sliceToSet(state.Selected),
		deleted:        sliceToSet(state.Deleted),
		pendingMoves:   state.PendingMoves,
		createdFolders: state.CreatedFolders,
		history:        state.History,
		recs:           state.Recs,
		suggestions:    state.Suggestions,
		filters:        state.Filters,
		store:          store,
	}, nil
}

func setToSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sliceToSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// samePathFold compares two paths segment-wise, case-insensitively.
func samePathFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
