// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analytics derives reading statistics from the library's sessions
// and daily buckets. All date math works on "YYYY-MM-DD" keys in local
// time, the same keys the library writes.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

const (
	// categorySessionWindow bounds how many recent sessions feed the
	// per-category counts.
	categorySessionWindow = 500
	// totalsWindowDays is the trailing window for the overall totals.
	totalsWindowDays = 365

	dayFormat = "2006-01-02"
)

// Source is the slice of the library the engine reads.
type Source interface {
	RecentSessions(ctx context.Context, limit int) ([]types.ReadingSession, error)
	DailyBuckets(ctx context.Context) ([]types.DailyBucket, error)
}

// CategoryCount pairs a category with its completed-read count.
type CategoryCount struct {
	Category  types.TopicCategory `json:"category"`
	Completed int                 `json:"completed"`
}

// Engine computes reading statistics over a library store.
type Engine struct {
	source Source
	now    func() time.Time
}

// New builds an Engine over the given source.
func New(source Source) *Engine {
	return &Engine{source: source, now: time.Now}
}

// DailyStats returns one bucket per calendar day for the trailing `days`
// days ending today, oldest first. Days without reading come back zeroed.
func (e *Engine) DailyStats(ctx context.Context, days int) ([]types.DailyBucket, error) {
	if days <= 0 {
		days = 7
	}
	byDate, err := e.bucketsByDate(ctx)
	if err != nil {
		return nil, err
	}

	today := e.today()
	out := make([]types.DailyBucket, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dayFormat)
		b, ok := byDate[date]
		if !ok {
			b = types.DailyBucket{Date: date}
		}
		out = append(out, b)
	}
	return out, nil
}

// WeeklyStats sums daily buckets into the trailing `weeks` weeks, oldest
// first. Weeks are keyed by the Sunday on or before each day.
func (e *Engine) WeeklyStats(ctx context.Context, weeks int) ([]types.WeeklyBucket, error) {
	if weeks <= 0 {
		weeks = 4
	}
	buckets, err := e.source.DailyBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading daily buckets: %w", err)
	}

	byWeek := make(map[string]types.WeeklyBucket)
	for _, b := range buckets {
		day, err := parseDay(b.Date)
		if err != nil {
			continue
		}
		key := weekStart(day).Format(dayFormat)
		w := byWeek[key]
		w.WeekStart = key
		w.PapersRead += b.PapersRead
		w.TotalMinutes += b.Minutes
		byWeek[key] = w
	}

	thisWeek := weekStart(e.today())
	out := make([]types.WeeklyBucket, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		key := thisWeek.AddDate(0, 0, -7*i).Format(dayFormat)
		w, ok := byWeek[key]
		if !ok {
			w = types.WeeklyBucket{WeekStart: key}
		}
		out = append(out, w)
	}
	return out, nil
}

// CategoryStats counts completed reads per category over the most recent
// closed sessions, sorted by count descending.
func (e *Engine) CategoryStats(ctx context.Context) ([]CategoryCount, error) {
	sessions, err := e.source.RecentSessions(ctx, categorySessionWindow)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	counts := make(map[types.TopicCategory]int)
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		counts[s.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryCount{Category: cat, Completed: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return out[i].Completed > out[j].Completed
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// Streak returns the current and longest consecutive-day reading runs. A
// day counts when at least one paper was read. Today may still be unread
// without breaking the current streak; any earlier gap breaks it.
func (e *Engine) Streak(ctx context.Context) (types.Streak, error) {
	byDate, err := e.bucketsByDate(ctx)
	if err != nil {
		return types.Streak{}, err
	}

	readDays := make(map[string]bool)
	for date, b := range byDate {
		if b.PapersRead > 0 {
			readDays[date] = true
		}
	}

	var streak types.Streak

	day := e.today()
	if !readDays[day.Format(dayFormat)] {
		day = day.AddDate(0, 0, -1)
	}
	for readDays[day.Format(dayFormat)] {
		streak.Current++
		day = day.AddDate(0, 0, -1)
	}

	dates := make([]string, 0, len(readDays))
	for date := range readDays {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	run := 0
	var prev time.Time
	for _, date := range dates {
		d, err := parseDay(date)
		if err != nil {
			continue
		}
		// AddDate instead of a 24h duration: DST days are not 24h long.
		if run > 0 && prev.AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > streak.Longest {
			streak.Longest = run
		}
		prev = d
	}
	return streak, nil
}

// Totals sums reading over the trailing year. The average is rounded to the
// nearest minute and zero when nothing was read.
func (e *Engine) Totals(ctx context.Context) (types.ReadingTotals, error) {
	buckets, err := e.source.DailyBuckets(ctx)
	if err != nil {
		return types.ReadingTotals{}, fmt.Errorf("loading daily buckets: %w", err)
	}

	cutoff := e.today().AddDate(0, 0, -(totalsWindowDays - 1)).Format(dayFormat)
	var totals types.ReadingTotals
	for _, b := range buckets {
		if b.Date < cutoff {
			continue
		}
		totals.TotalPapers += b.PapersRead
		totals.TotalMinutes += b.Minutes
	}
	if totals.TotalPapers > 0 {
		totals.AvgMinutesPerPaper = (totals.TotalMinutes + totals.TotalPapers/2) / totals.TotalPapers
	}
	return totals, nil
}

func (e *Engine) bucketsByDate(ctx context.Context) (map[string]types.DailyBucket, error) {
	buckets, err := e.source.DailyBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading daily buckets: %w", err)
	}
	byDate := make(map[string]types.DailyBucket, len(buckets))
	for _, b := range buckets {
		byDate[b.Date] = b
	}
	return byDate, nil
}

// today truncates the clock to local midnight.
func (e *Engine) today() time.Time {
	y, m, d := e.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// weekStart returns the Sunday on or before day.
func weekStart(day time.Time) time.Time {
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func parseDay(date string) (time.Time, error) {
	return time.ParseInLocation(dayFormat, date, time.Local)
}
