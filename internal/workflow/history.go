package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/storage"
)

// maxHistory caps the operation history: once the 11th entry is
// appended the oldest is dropped.
const maxHistory = 10

var (
	// ErrNothingToUndo is returned when the history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrFolderNotEmpty is returned when undoing a folder creation while
	// active records still sit in or under the created path.
	ErrFolderNotEmpty = errors.New("folder still contains records")
)

// OperationKind tags an undo log entry.
type OperationKind string

const (
	OpDelete       OperationKind = "delete"
	OpMove         OperationKind = "move"
	OpCreateFolder OperationKind = "create_folder"
)

// Move records one record's relocation with enough information to invert it.
type Move struct {
	RecordID string   `json:"recordId"`
	FromPath []string `json:"fromPath"`
	ToPath   []string `json:"toPath"`
}

// Operation is one invertible entry in the undo log. Only the payload
// matching Kind is set; the payload is self-contained, so inversion never
// consults any other source.
type Operation struct {
	ID         string         `json:"id"`
	Kind       OperationKind  `json:"kind"`
	Timestamp  time.Time      `json:"timestamp"`
	Deleted    []model.Record `json:"deleted,omitempty"`
	Moves      []Move         `json:"moves,omitempty"`
	FolderPath []string       `json:"folderPath,omitempty"`
}

// recordOperation appends an entry, dropping the oldest past the cap.
func (s *Session) recordOperation(op Operation) {
	op.ID = model.GenerateUUID()
	op.Timestamp = time.Now()

	s.history = append(s.history, op)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
}

// CanUndo reports whether the history has entries.
func (s *Session) CanUndo() bool {
	return len(s.history) > 0
}

// History returns the operation history, oldest first.
func (s *Session) History() []Operation {
	return s.history
}

// Undo inverts the most recent operation and removes it from the
// history. Deletes and moves re-issue compensating store writes; a store
// failure leaves both the history and the in-memory state untouched.
// Undoing a folder creation fails while active records still live under
// the created path.
func (s *Session) Undo() error {
	if len(s.history) == 0 {
		return ErrNothingToUndo
	}

	op := s.history[len(s.history)-1]

	switch op.Kind {
	case OpDelete:
		if err := s.undoDelete(op); err != nil {
			return err
		}
	case OpMove:
		if err := s.undoMove(op); err != nil {
			return err
		}
	case OpCreateFolder:
		if err := s.undoCreateFolder(op); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}

	s.history = s.history[:len(s.history)-1]
	return nil
}

func (s *Session) undoDelete(op Operation) error {
	if err := s.store.Restore(op.Deleted); err != nil {
		return fmt.Errorf("restore records: %w", err)
	}

	for _, r := range op.Deleted {
		delete(s.deleted, r.ID)
	}
	return nil
}

func (s *Session) undoMove(op Operation) error {
	updates := make([]storage.PathUpdate, len(op.Moves))
	for i, m := range op.Moves {
		updates[i] = storage.PathUpdate{ID: m.RecordID, Path: m.FromPath}
	}
	if err := s.store.BulkUpdatePaths(updates); err != nil {
		return fmt.Errorf("revert paths: %w", err)
	}

	for _, m := range op.Moves {
		if rec := model.FindByID(s.records, m.RecordID); rec != nil {
			rec.Path = model.ClonePath(m.FromPath)
		}
		s.dropPendingMove(m)
	}
	return nil
}

func (s *Session) undoCreateFolder(op Operation) error {
	for _, r := range s.ActiveRecords() {
		if model.PathHasPrefix(r.Path, op.FolderPath) {
			return fmt.Errorf("%w: %s", ErrFolderNotEmpty, model.PathString(op.FolderPath))
		}
	}

	for i, created := range s.createdFolders {
		if samePathFold(created, op.FolderPath) {
			s.createdFolders = append(s.createdFolders[:i], s.createdFolders[i+1:]...)
			break
		}
	}
	return nil
}

// dropPendingMove removes the most recent pending move matching the triple.
func (s *Session) dropPendingMove(m Move) {
	for i := len(s.pendingMoves) - 1; i >= 0; i-- {
		p := s.pendingMoves[i]
		if p.RecordID == m.RecordID && model.SamePath(p.FromPath, m.FromPath) && model.SamePath(p.ToPath, m.ToPath) {
			s.pendingMoves = append(s.pendingMoves[:i], s.pendingMoves[i+1:]...)
			return
		}
	}
}
