package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nibzard/tasktracker/internal/task"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	position    INTEGER PRIMARY KEY,
	id          TEXT NOT NULL,
	description TEXT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`

// SQLite stores tasks in a single table of a SQLite database file,
// one row per task, ordered by insertion position.
type SQLite struct {
	path string
}

// NewSQLite returns a store backed by the database file at path.
// The file is created on the first Save.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// Location returns the database path.
func (s *SQLite) Location() string {
	return s.path
}

// Load returns all rows in position order. A missing database file is an
// empty collection.
func (s *SQLite) Load(ctx context.Context) ([]task.Task, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return []task.Task{}, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, description, status, created_at, updated_at
		FROM tasks
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	out := []task.Task{}
	for rows.Next() {
		var id, desc, status, created, updated string
		if err := rows.Scan(&id, &desc, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t := task.Task{
			ID:          task.ParseID(id),
			Description: desc,
			Status:      task.Status(status),
		}
		t.CreatedAt, t.RawCreatedAt = parseStoredTime(created)
		t.UpdatedAt, t.RawUpdatedAt = parseStoredTime(updated)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save replaces the table contents in one transaction.
func (s *SQLite) Save(ctx context.Context, tasks []task.Task) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (position, id, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		if _, err := stmt.ExecContext(ctx,
			i, t.ID.String(), t.Description, string(t.Status),
			formatStoredTime(t.CreatedAt, t.RawCreatedAt), formatStoredTime(t.UpdatedAt, t.RawUpdatedAt),
		); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLite) open(ctx context.Context) (*sql.DB, error) {
	dsn, err := sqliteFileDSN(s.path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// sqliteFileDSN builds a DSN like file:/abs/path?_pragma=busy_timeout(5000).
func sqliteFileDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)", nil
}

func formatStoredTime(t time.Time, raw string) string {
	if t.IsZero() {
		return raw
	}
	return t.Format(time.RFC3339Nano)
}

// parseStoredTime returns s verbatim as the raw value when it is not
// RFC 3339.
func parseStoredTime(s string) (time.Time, string) {
	if s == "" {
		return time.Time{}, ""
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, s
	}
	return ts, ""
}
