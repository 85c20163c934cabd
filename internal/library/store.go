// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists the reader's local state: saved papers, notes,
// highlights, reading sessions, and the daily reading counters derived from
// them. Everything lives in one SQLite database.
package library

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// Store manages the reading-event SQLite database.
type Store struct {
	db        *sql.DB
	papersDir string
	warn      io.Writer

	// UserAgent is sent on PDF downloads.
	UserAgent string

	now func() time.Time
}

// Open opens or creates the database at cfg.Path and ensures the schema
// exists. Warnings about skipped no-op writes go to warn.
func Open(cfg types.LibraryConfig, warn io.Writer) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}
	if cfg.PapersDir != "" {
		if err := os.MkdirAll(cfg.PapersDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating papers directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if warn == nil {
		warn = io.Discard
	}
	s := &Store{
		db:        db,
		papersDir: cfg.PapersDir,
		warn:      warn,
		now:       time.Now,
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS saved_papers (
			id TEXT PRIMARY KEY,
			paper TEXT NOT NULL,
			saved_at INTEGER NOT NULL,
			last_read_at INTEGER NOT NULL DEFAULT 0,
			progress INTEGER NOT NULL DEFAULT 0,
			pdf_path TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL,
			paper_title TEXT NOT NULL,
			category TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL DEFAULT 0,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			scroll_percentage INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_paper_id ON sessions(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_end_time ON sessions(end_time)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_paper_id ON notes(paper_id)`,
		`CREATE TABLE IF NOT EXISTS highlights (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL,
			text TEXT NOT NULL,
			color TEXT NOT NULL,
			start_offset INTEGER NOT NULL DEFAULT 0,
			end_offset INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_highlights_paper_id ON highlights(paper_id)`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			date TEXT PRIMARY KEY,
			papers_read INTEGER NOT NULL DEFAULT 0,
			minutes INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ClearAll wipes every table. Saved PDF files on disk are left alone.
func (s *Store) ClearAll() error {
	for _, table := range []string{"saved_papers", "sessions", "notes", "highlights", "daily_stats"} {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// newID builds a "<prefix>-<epoch millis>-<hex>" identifier. The random
// suffix disambiguates IDs minted in the same millisecond.
func (s *Store) newID(prefix string) string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return fmt.Sprintf("%s-%d-%s", prefix, s.now().UnixMilli(), hex.EncodeToString(buf))
}

// dateKey formats t as the "YYYY-MM-DD" bucket key in local time.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
