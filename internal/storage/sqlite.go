package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmtidy/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStorage implements RecordStore and SessionStore using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '[]',
			created_at TEXT,
			source TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_records_url ON records(url);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY NOT NULL,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadAll reads all records from the database.
func (s *SQLiteStorage) LoadAll() ([]model.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, title, url, path, created_at, source
		FROM records
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		var r model.Record
		var pathJSON string
		var createdAtStr sql.NullString

		if err := rows.Scan(&r.ID, &r.Title, &r.URL, &pathJSON, &createdAtStr, &r.Source); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(pathJSON), &r.Path); err != nil {
			r.Path = []string{}
		}

		if createdAtStr.Valid {
			t, err := time.Parse(time.RFC3339, createdAtStr.String)
			if err == nil {
				r.CreatedAt = &t
			}
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

// InsertAll inserts records in a single transaction.
func (s *SQLiteStorage) InsertAll(records []model.Record) error {
	return s.writeRecords(records, `
		INSERT INTO records (id, title, url, path, created_at, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
}

// Restore re-inserts previously deleted records.
// Uses INSERT OR REPLACE so restoring is idempotent.
func (s *SQLiteStorage) Restore(records []model.Record) error {
	return s.writeRecords(records, `
		INSERT OR REPLACE INTO records (id, title, url, path, created_at, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
}

// writeRecords runs the given insert statement for every record, atomically.
func (s *SQLiteStorage) writeRecords(records []model.Record, query string) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		pathJSON, _ := json.Marshal(r.Path)
		if r.Path == nil {
			pathJSON = []byte("[]")
		}

		var createdAt *string
		if r.CreatedAt != nil {
			v := r.CreatedAt.Format(time.RFC3339)
			createdAt = &v
		}

		if _, err := stmt.Exec(r.ID, r.Title, r.URL, string(pathJSON), createdAt, r.Source); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteByIDs removes records in a single transaction.
func (s *SQLiteStorage) DeleteByIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`DELETE FROM records WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// BulkUpdatePaths rewrites record paths in a single transaction.
func (s *SQLiteStorage) BulkUpdatePaths(updates []PathUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE records SET path = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range updates {
		pathJSON, _ := json.Marshal(u.Path)
		if u.Path == nil {
			pathJSON = []byte("[]")
		}
		if _, err := stmt.Exec(string(pathJSON), u.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveSession writes a session blob, replacing any previous version.
func (s *SQLiteStorage) SaveSession(id string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sessions (id, data, updated_at)
		VALUES (?, ?, ?)
	`, id, string(data), time.Now().Format(time.RFC3339))
	return err
}

// LoadSession reads a session blob by ID.
func (s *SQLiteStorage) LoadSession(id string) ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// LoadLatestSession reads the most recently saved session blob.
func (s *SQLiteStorage) LoadLatestSession() ([]byte, error) {
	var data string
	err := s.db.QueryRow(`
		SELECT data FROM sessions
		ORDER BY updated_at DESC
		LIMIT 1
	`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// DeleteSession removes a session blob.
func (s *SQLiteStorage) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}
