// Package history keeps a log of finished download sessions in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "amflac"
	dbFileName = "history.db"
)

// Entry is one finished session.
type Entry struct {
	ID          uuid.UUID
	URL         string
	Format      string
	Target      string // directory the files were placed in
	Files       int    // audio files in Target after the session
	TotalTracks int    // 0 when the fetcher never reported a total
	Failed      []string
	ExitCode    int
	Success     bool
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Store is an open history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database location under the XDG data
// directory, creating its parent directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens or creates the database at path. An empty path means DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e. A zero ID is replaced with a new random one.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, url, format, target, files, total_tracks, failed,
			exit_code, success, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.URL, e.Format, e.Target, e.Files, e.TotalTracks,
		strings.Join(e.Failed, "\n"), e.ExitCode, e.Success,
		e.StartedAt.UnixMilli(), e.FinishedAt.UnixMilli(),
	)
	return err
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, format, target, files, total_tracks, failed,
		       exit_code, success, started_at, finished_at
		FROM sessions
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                 Entry
			id, failed        string
			started, finished int64
		)
		if err := rows.Scan(
			&id, &e.URL, &e.Format, &e.Target, &e.Files, &e.TotalTracks, &failed,
			&e.ExitCode, &e.Success, &started, &finished,
		); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("session %q: %w", id, err)
		}
		if failed != "" {
			e.Failed = strings.Split(failed, "\n")
		}
		e.StartedAt = time.UnixMilli(started)
		e.FinishedAt = time.UnixMilli(finished)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
