package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/bmtidy/internal/ai"
	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/storage"
)

var (
	// ErrEmptyFolderPath is returned when a folder path has no segments.
	ErrEmptyFolderPath = errors.New("folder path is empty")
	// ErrDuplicateFolder is returned when a folder with the same name
	// already exists at the same parent level, or the exact path was
	// already created this session.
	ErrDuplicateFolder = errors.New("folder already exists")
)

// CreateFolder registers a new folder path and logs an invertible
// operation. Duplicate names at the same parent level are rejected
// case-insensitively; re-creating a path from this session is rejected,
// not silently accepted.
func (s *Session) CreateFolder(path []string) error {
	if len(path) == 0 {
		return ErrEmptyFolderPath
	}

	for _, created := range s.createdFolders {
		if samePathFold(created, path) {
			return fmt.Errorf("%w: %s", ErrDuplicateFolder, model.PathString(path))
		}
	}

	parent := path[:len(path)-1]
	name := path[len(path)-1]
	if s.folderNameExistsAt(parent, name) {
		return fmt.Errorf("%w: %s", ErrDuplicateFolder, model.PathString(path))
	}

	s.createdFolders = append(s.createdFolders, model.ClonePath(path))
	s.recordOperation(Operation{Kind: OpCreateFolder, FolderPath: model.ClonePath(path)})
	return nil
}

// folderNameExistsAt reports whether any active record path implies a
// folder called name (case-insensitive) directly under parent.
func (s *Session) folderNameExistsAt(parent []string, name string) bool {
	for _, r := range s.ActiveRecords() {
		if len(r.Path) <= len(parent) {
			continue
		}
		if !model.PathHasPrefix(r.Path, parent) {
			continue
		}
		if strings.EqualFold(r.Path[len(parent)], name) {
			return true
		}
	}
	return false
}

// MoveRecords rewrites the path of every matching working record to
// targetPath, persists the update, appends pending moves, clears the
// selection, and logs an operation carrying each record's prior path.
// IDs with no matching active record are silently skipped.
func (s *Session) MoveRecords(ids []string, targetPath []string) error {
	moves := make([]Move, 0, len(ids))
	for _, id := range ids {
		if s.deleted[id] {
			continue
		}
		rec := model.FindByID(s.records, id)
		if rec == nil {
			continue
		}
		moves = append(moves, Move{
			RecordID: id,
			FromPath: model.ClonePath(rec.Path),
			ToPath:   model.ClonePath(targetPath),
		})
	}
	if len(moves) == 0 {
		return nil
	}

	updates := make([]storage.PathUpdate, len(moves))
	for i, m := range moves {
		updates[i] = storage.PathUpdate{ID: m.RecordID, Path: m.ToPath}
	}
	if err := s.store.BulkUpdatePaths(updates); err != nil {
		return fmt.Errorf("move records: %w", err)
	}

	for _, m := range moves {
		if rec := model.FindByID(s.records, m.RecordID); rec != nil {
			rec.Path = model.ClonePath(m.ToPath)
		}
	}
	s.pendingMoves = append(s.pendingMoves, moves...)
	s.DeselectAll()
	s.recordOperation(Operation{Kind: OpMove, Moves: moves})
	return nil
}

// MoveSelected moves the current selection to targetPath.
func (s *Session) MoveSelected(targetPath []string) error {
	return s.MoveRecords(s.SelectedIDs(), targetPath)
}

// ApplySuggestion creates the suggested folder (tolerating a duplicate,
// since it may already exist from the suggestion context) and moves
// every suggested ID still present in the active set. IDs deleted in the
// meantime are silently skipped.
func (s *Session) ApplySuggestion(suggestion ai.SuggestedFolder) error {
	if err := s.CreateFolder(suggestion.Path); err != nil && !errors.Is(err, ErrDuplicateFolder) {
		return err
	}

	ids := make([]string, 0, len(suggestion.RecordIDs))
	for _, id := range suggestion.RecordIDs {
		if s.IsActive(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	return s.MoveRecords(ids, suggestion.Path)
}
