package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/storage"
)

func openTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bmtidy.db")
	s, err := storage.NewSQLiteStorage(path)
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecords() []model.Record {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Record{
		{ID: "r1", Title: "GitHub", URL: "https://github.com", Path: []string{}, Source: "chrome"},
		{ID: "r2", Title: "Go Docs", URL: "https://go.dev", Path: []string{"Dev", "Go"}, CreatedAt: &created, Source: "firefox"},
	}
}

func TestSQLiteStorage_InsertAndLoadAll(t *testing.T) {
	s := openTestStorage(t)

	assert.NilError(t, s.InsertAll(testRecords()))

	loaded, err := s.LoadAll()
	assert.NilError(t, err)
	assert.Equal(t, len(loaded), 2)

	assert.Equal(t, loaded[0].ID, "r1")
	assert.Equal(t, len(loaded[0].Path), 0)
	assert.Equal(t, loaded[1].Title, "Go Docs")
	assert.Assert(t, model.SamePath(loaded[1].Path, []string{"Dev", "Go"}))
	assert.Assert(t, loaded[1].CreatedAt != nil)
	assert.Equal(t, loaded[1].CreatedAt.UTC(), time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestSQLiteStorage_DeleteAndRestore(t *testing.T) {
	s := openTestStorage(t)
	records := testRecords()
	assert.NilError(t, s.InsertAll(records))

	assert.NilError(t, s.DeleteByIDs([]string{"r1"}))

	loaded, err := s.LoadAll()
	assert.NilError(t, err)
	assert.Equal(t, len(loaded), 1)
	assert.Equal(t, loaded[0].ID, "r2")

	// Restore brings the deleted record back
	assert.NilError(t, s.Restore(records[:1]))

	loaded, err = s.LoadAll()
	assert.NilError(t, err)
	assert.Equal(t, len(loaded), 2)

	// Restoring again is idempotent
	assert.NilError(t, s.Restore(records[:1]))
	loaded, err = s.LoadAll()
	assert.NilError(t, err)
	assert.Equal(t, len(loaded), 2)
}

func TestSQLiteStorage_BulkUpdatePaths(t *testing.T) {
	s := openTestStorage(t)
	assert.NilError(t, s.InsertAll(testRecords()))

	updates := []storage.PathUpdate{
		{ID: "r1", Path: []string{"Dev"}},
		{ID: "r2", Path: []string{}},
	}
	assert.NilError(t, s.BulkUpdatePaths(updates))

	loaded, err := s.LoadAll()
	assert.NilError(t, err)
	assert.Assert(t, model.SamePath(loaded[0].Path, []string{"Dev"}))
	assert.Equal(t, len(loaded[1].Path), 0)
}

func TestSQLiteStorage_Sessions(t *testing.T) {
	s := openTestStorage(t)

	// No session yet
	_, err := s.LoadSession("s1")
	assert.ErrorIs(t, err, storage.ErrNoSession)
	_, err = s.LoadLatestSession()
	assert.ErrorIs(t, err, storage.ErrNoSession)

	assert.NilError(t, s.SaveSession("s1", []byte(`{"stage":"review"}`)))

	data, err := s.LoadSession("s1")
	assert.NilError(t, err)
	assert.Equal(t, string(data), `{"stage":"review"}`)

	// Overwrite keeps a single row per session
	assert.NilError(t, s.SaveSession("s1", []byte(`{"stage":"organize"}`)))
	data, err = s.LoadLatestSession()
	assert.NilError(t, err)
	assert.Equal(t, string(data), `{"stage":"organize"}`)

	assert.NilError(t, s.DeleteSession("s1"))
	_, err = s.LoadSession("s1")
	assert.ErrorIs(t, err, storage.ErrNoSession)
}
