package storage

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// ErrNoSession is returned when no stored session matches the request.
var ErrNoSession = errors.New("no session found")

// PathUpdate assigns a new folder path to a record.
type PathUpdate struct {
	ID   string
	Path []string
}

// RecordStore is the canonical store of bookmark records.
// Workflow mutations (delete, move) are persisted through it explicitly;
// the engine never retries store I/O.
type RecordStore interface {
	LoadAll() ([]model.Record, error)
	InsertAll(records []model.Record) error
	DeleteByIDs(ids []string) error
	BulkUpdatePaths(updates []PathUpdate) error
	Restore(records []model.Record) error
}

// SessionStore persists workflow sessions as opaque JSON blobs.
type SessionStore interface {
	SaveSession(id string, data []byte) error
	LoadSession(id string) ([]byte, error)
	LoadLatestSession() ([]byte, error)
	DeleteSession(id string) error
}

// DefaultDBPath returns the default database path: ~/.config/bmtidy/bmtidy.db
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmtidy", "bmtidy.db"), nil
}
