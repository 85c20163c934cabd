// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// AddNote attaches a free-text note to the paper.
func (s *Store) AddNote(ctx context.Context, paperID, content string) (types.Note, error) {
	if paperID == "" || content == "" {
		return types.Note{}, fmt.Errorf("note needs a paper id and content")
	}
	now := s.now().UnixMilli()
	note := types.Note{
		ID:        s.newID("note"),
		PaperID:   paperID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, paper_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		note.ID, note.PaperID, note.Content, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return types.Note{}, fmt.Errorf("adding note: %w", err)
	}
	return note, nil
}

// UpdateNote replaces the note's content and bumps its updated time.
func (s *Store) UpdateNote(ctx context.Context, noteID, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`,
		content, s.now().UnixMilli(), noteID,
	)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("note %s not found", noteID)
	}
	return nil
}

// DeleteNote removes the note.
func (s *Store) DeleteNote(ctx context.Context, noteID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, noteID)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("note %s not found", noteID)
	}
	return nil
}

// NotesByPaper returns the paper's notes newest first.
func (s *Store) NotesByPaper(ctx context.Context, paperID string) ([]types.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, content, created_at, updated_at
		 FROM notes WHERE paper_id = ? ORDER BY created_at DESC`, paperID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	out := []types.Note{}
	for rows.Next() {
		var note types.Note
		if err := rows.Scan(&note.ID, &note.PaperID, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

// AddHighlight marks a text span in the paper. An empty color defaults to
// yellow.
func (s *Store) AddHighlight(ctx context.Context, h types.Highlight) (types.Highlight, error) {
	if h.PaperID == "" || h.Text == "" {
		return types.Highlight{}, fmt.Errorf("highlight needs a paper id and text")
	}
	if h.Color == "" {
		h.Color = types.HighlightYellow
	}
	h.ID = s.newID("highlight")
	h.CreatedAt = s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO highlights (id, paper_id, text, color, start_offset, end_offset, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.PaperID, h.Text, string(h.Color), h.StartOffset, h.EndOffset, h.CreatedAt,
	)
	if err != nil {
		return types.Highlight{}, fmt.Errorf("adding highlight: %w", err)
	}
	return h, nil
}

// DeleteHighlight removes the highlight.
func (s *Store) DeleteHighlight(ctx context.Context, highlightID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = ?`, highlightID)
	if err != nil {
		return fmt.Errorf("deleting highlight: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("highlight %s not found", highlightID)
	}
	return nil
}

// HighlightsByPaper returns the paper's highlights in document order.
func (s *Store) HighlightsByPaper(ctx context.Context, paperID string) ([]types.Highlight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, text, color, start_offset, end_offset, created_at
		 FROM highlights WHERE paper_id = ? ORDER BY start_offset ASC, created_at ASC`, paperID)
	if err != nil {
		return nil, fmt.Errorf("listing highlights: %w", err)
	}
	defer rows.Close()

	out := []types.Highlight{}
	for rows.Next() {
		var h types.Highlight
		var color string
		if err := rows.Scan(&h.ID, &h.PaperID, &h.Text, &color, &h.StartOffset, &h.EndOffset, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning highlight: %w", err)
		}
		h.Color = types.HighlightColor(color)
		out = append(out, h)
	}
	return out, rows.Err()
}
