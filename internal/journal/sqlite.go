package journal

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates the journal at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, wrap(ErrDatabaseOpenFailed, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap(ErrDatabaseOpenFailed, err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, wrap(ErrInitializeSchemaFailed, err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		command TEXT NOT NULL,
		post_id TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		fingerprint TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_operations_post_id ON operations(post_id);
	CREATE INDEX IF NOT EXISTS idx_operations_timestamp ON operations(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new entry to the journal.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (run_id, command, post_id, path, title, url, fingerprint, status, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Command, e.PostID, e.Path, e.Title, e.URL, e.Fingerprint, string(e.Status), e.Error, e.Timestamp.UnixMilli(),
	)
	if err != nil {
		return wrap(ErrAppendFailed, err)
	}
	return nil
}

const selectColumns = "SELECT id, run_id, command, post_id, path, title, url, fingerprint, status, error, timestamp FROM operations"

// LastForPost returns the newest successful entry for postID.
func (s *SQLiteStore) LastForPost(ctx context.Context, postID string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		selectColumns+" WHERE post_id = ? AND status = ? ORDER BY id DESC LIMIT 1",
		postID, string(StatusOK),
	)
	e, err := scanEntry(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoEntry
	}
	if err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	return e, nil
}

// List retrieves entries, newest first.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns
	var args []any
	if f.PostID != "" {
		query += " WHERE post_id = ?"
		args = append(args, f.PostID)
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, wrap(ErrQueryFailed, err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var status string
	var ts int64
	if err := row.Scan(&e.ID, &e.RunID, &e.Command, &e.PostID, &e.Path, &e.Title, &e.URL,
		&e.Fingerprint, &status, &e.Error, &ts); err != nil {
		return nil, err
	}
	e.Status = Status(status)
	e.Timestamp = time.UnixMilli(ts)
	return &e, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
