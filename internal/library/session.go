// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// StartSession opens a reading session for the paper. The session stays open
// until EndSession delivers its single terminal write.
func (s *Store) StartSession(ctx context.Context, paperID, title string, category types.TopicCategory) (types.ReadingSession, error) {
	if paperID == "" {
		return types.ReadingSession{}, fmt.Errorf("session has no paper id")
	}
	session := types.ReadingSession{
		ID:        s.newID("session"),
		PaperID:   paperID,
		Title:     title,
		Category:  category,
		StartTime: s.now().UnixMilli(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, paper_id, paper_title, category, start_time)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.PaperID, session.Title, string(session.Category), session.StartTime,
	)
	if err != nil {
		return types.ReadingSession{}, fmt.Errorf("starting session: %w", err)
	}
	return session, nil
}

// EndSession closes the session with its final scroll percentage and folds
// it into today's daily bucket inside the same transaction. durationSeconds
// is the caller's measurement of active reading time; pass 0 or less to
// derive it from elapsed wall-clock time instead. Unknown or already-ended
// sessions are a warned no-op returning nil.
func (s *Store) EndSession(ctx context.Context, sessionID string, scrollPercentage, durationSeconds int) (*types.ReadingSession, error) {
	if scrollPercentage < 0 {
		scrollPercentage = 0
	}
	if scrollPercentage > 100 {
		scrollPercentage = 100
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var session types.ReadingSession
	var category string
	err = tx.QueryRowContext(ctx,
		`SELECT id, paper_id, paper_title, category, start_time, end_time
		 FROM sessions WHERE id = ?`, sessionID,
	).Scan(&session.ID, &session.PaperID, &session.Title, &category, &session.StartTime, &session.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		fmt.Fprintf(s.warn, "end: unknown session %s\n", sessionID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	session.Category = types.TopicCategory(category)
	if !session.Open() {
		fmt.Fprintf(s.warn, "end: session %s already ended\n", sessionID)
		return nil, nil
	}

	now := s.now()
	session.EndTime = now.UnixMilli()
	if durationSeconds > 0 {
		session.DurationSeconds = durationSeconds
	} else {
		session.DurationSeconds = int((session.EndTime - session.StartTime) / 1000)
		if session.DurationSeconds < 0 {
			session.DurationSeconds = 0
		}
	}
	session.ScrollPercentage = scrollPercentage
	session.Completed = scrollPercentage >= types.CompletionThreshold

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions
		 SET end_time = ?, duration_seconds = ?, scroll_percentage = ?, completed = ?
		 WHERE id = ?`,
		session.EndTime, session.DurationSeconds, session.ScrollPercentage,
		boolToInt(session.Completed), session.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("ending session: %w", err)
	}

	// Fold into today's bucket: minutes always, papers only on completion.
	minutes := (session.DurationSeconds + 30) / 60
	papers := 0
	if session.Completed {
		papers = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO daily_stats (date, papers_read, minutes) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			papers_read = papers_read + excluded.papers_read,
			minutes = minutes + excluded.minutes`,
		dateKey(now), papers, minutes,
	)
	if err != nil {
		return nil, fmt.Errorf("updating daily stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing session end: %w", err)
	}
	return &session, nil
}

// RecentSessions returns up to limit closed sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]types.ReadingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, paper_title, category, start_time, end_time,
		        duration_seconds, scroll_percentage, completed
		 FROM sessions WHERE end_time != 0
		 ORDER BY end_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	out := []types.ReadingSession{}
	for rows.Next() {
		var session types.ReadingSession
		var category string
		var completed int
		if err := rows.Scan(&session.ID, &session.PaperID, &session.Title, &category,
			&session.StartTime, &session.EndTime, &session.DurationSeconds,
			&session.ScrollPercentage, &completed); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		session.Category = types.TopicCategory(category)
		session.Completed = completed != 0
		out = append(out, session)
	}
	return out, rows.Err()
}

// DailyBuckets returns every daily bucket in ascending date order. One row
// per reading day keeps the full history small.
func (s *Store) DailyBuckets(ctx context.Context) ([]types.DailyBucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, papers_read, minutes FROM daily_stats ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing daily stats: %w", err)
	}
	defer rows.Close()

	out := []types.DailyBucket{}
	for rows.Next() {
		var b types.DailyBucket
		if err := rows.Scan(&b.Date, &b.PapersRead, &b.Minutes); err != nil {
			return nil, fmt.Errorf("scanning daily bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
