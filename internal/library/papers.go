// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// SavePaper upserts the paper into the offline library. The full paper
// payload is denormalized at save time; re-saving refreshes the payload but
// preserves the reading progress, last-read time, and attached PDF.
func (s *Store) SavePaper(ctx context.Context, p types.Paper) (types.SavedPaper, error) {
	if p.ID == "" {
		return types.SavedPaper{}, fmt.Errorf("paper has no id")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return types.SavedPaper{}, fmt.Errorf("encoding paper: %w", err)
	}

	existing, err := s.PaperByID(ctx, p.ID)
	if err != nil {
		return types.SavedPaper{}, err
	}

	saved := types.SavedPaper{ID: p.ID, Paper: p, SavedAt: s.now().UnixMilli()}
	if existing != nil {
		saved.SavedAt = existing.SavedAt
		saved.LastReadAt = existing.LastReadAt
		saved.Progress = existing.Progress
		saved.PDFPath = existing.PDFPath
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_papers (id, paper, saved_at, last_read_at, progress, pdf_path)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET paper=excluded.paper`,
		p.ID, string(payload), saved.SavedAt, saved.LastReadAt, saved.Progress, saved.PDFPath,
	)
	if err != nil {
		return types.SavedPaper{}, fmt.Errorf("saving paper: %w", err)
	}
	return saved, nil
}

// RemovePaper deletes the saved paper and best-effort removes its offline
// PDF. Removing an unsaved paper is a warned no-op.
func (s *Store) RemovePaper(ctx context.Context, paperID string) error {
	existing, err := s.PaperByID(ctx, paperID)
	if err != nil {
		return err
	}
	if existing == nil {
		fmt.Fprintf(s.warn, "remove: paper %s is not saved\n", paperID)
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_papers WHERE id = ?`, paperID); err != nil {
		return fmt.Errorf("removing paper: %w", err)
	}
	if existing.PDFPath != "" {
		os.Remove(existing.PDFPath)
	}
	return nil
}

// PaperByID returns the saved paper, or nil when it is not saved.
func (s *Store) PaperByID(ctx context.Context, paperID string) (*types.SavedPaper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, paper, saved_at, last_read_at, progress, pdf_path
		 FROM saved_papers WHERE id = ?`, paperID)
	saved, err := scanSavedPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// AllSavedPapers returns the library newest-saved first.
func (s *Store) AllSavedPapers(ctx context.Context) ([]types.SavedPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper, saved_at, last_read_at, progress, pdf_path
		 FROM saved_papers ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saved papers: %w", err)
	}
	defer rows.Close()

	out := []types.SavedPaper{}
	for rows.Next() {
		saved, err := scanSavedPaper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, rows.Err()
}

// IsSaved reports whether the paper is in the library.
func (s *Store) IsSaved(ctx context.Context, paperID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM saved_papers WHERE id = ?`, paperID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking saved paper: %w", err)
	}
	return n > 0, nil
}

// UpdateProgress records reading progress for a saved paper. Progress only
// moves forward; a lower value updates the last-read time but not the
// percentage. Unsaved papers are a warned no-op.
func (s *Store) UpdateProgress(ctx context.Context, paperID string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE saved_papers
		 SET progress = CASE WHEN ? > progress THEN ? ELSE progress END,
		     last_read_at = ?
		 WHERE id = ?`,
		progress, progress, s.now().UnixMilli(), paperID,
	)
	if err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		fmt.Fprintf(s.warn, "progress: paper %s is not saved\n", paperID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedPaper(row rowScanner) (*types.SavedPaper, error) {
	var saved types.SavedPaper
	var payload string
	if err := row.Scan(&saved.ID, &payload, &saved.SavedAt, &saved.LastReadAt, &saved.Progress, &saved.PDFPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning saved paper: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &saved.Paper); err != nil {
		return nil, fmt.Errorf("decoding paper payload: %w", err)
	}
	return &saved, nil
}
