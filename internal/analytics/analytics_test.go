// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

type fakeSource struct {
	sessions []types.ReadingSession
	buckets  []types.DailyBucket
}

func (f *fakeSource) RecentSessions(ctx context.Context, limit int) ([]types.ReadingSession, error) {
	if limit < len(f.sessions) {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

func (f *fakeSource) DailyBuckets(ctx context.Context) ([]types.DailyBucket, error) {
	return f.buckets, nil
}

// Wednesday 2026-03-11.
var testToday = time.Date(2026, 3, 11, 14, 30, 0, 0, time.Local)

func newTestEngine(src *fakeSource) *Engine {
	e := New(src)
	e.now = func() time.Time { return testToday }
	return e
}

func bucket(date string, papers, minutes int) types.DailyBucket {
	return types.DailyBucket{Date: date, PapersRead: papers, Minutes: minutes}
}

func TestDailyStatsZeroFillsMissingDays(t *testing.T) {
	e := newTestEngine(&fakeSource{buckets: []types.DailyBucket{
		bucket("2026-03-09", 2, 40),
		bucket("2026-03-11", 1, 15),
		bucket("2025-01-01", 9, 900), // far outside the window
	}})

	days, err := e.DailyStats(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, bucket("2026-03-09", 2, 40), days[0])
	assert.Equal(t, types.DailyBucket{Date: "2026-03-10"}, days[1])
	assert.Equal(t, bucket("2026-03-11", 1, 15), days[2])
}

func TestWeeklyStatsSundayKeyed(t *testing.T) {
	e := newTestEngine(&fakeSource{buckets: []types.DailyBucket{
		// Week of Sunday 2026-03-08.
		bucket("2026-03-09", 1, 20),
		bucket("2026-03-11", 2, 30),
		// Week of Sunday 2026-03-01.
		bucket("2026-03-07", 1, 10), // a Saturday, last day of that week
	}})

	weeks, err := e.WeeklyStats(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, types.WeeklyBucket{WeekStart: "2026-03-01", PapersRead: 1, TotalMinutes: 10}, weeks[0])
	assert.Equal(t, types.WeeklyBucket{WeekStart: "2026-03-08", PapersRead: 3, TotalMinutes: 50}, weeks[1])
}

func TestCategoryStatsCompletedOnly(t *testing.T) {
	e := newTestEngine(&fakeSource{sessions: []types.ReadingSession{
		{Category: types.TopicAI, Completed: true},
		{Category: types.TopicAI, Completed: true},
		{Category: types.TopicPhysics, Completed: true},
		{Category: types.TopicPhysics, Completed: false},
		{Category: types.TopicHistory, Completed: false},
	}})

	counts, err := e.CategoryStats(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, CategoryCount{Category: types.TopicAI, Completed: 2}, counts[0])
	assert.Equal(t, CategoryCount{Category: types.TopicPhysics, Completed: 1}, counts[1])
}

func TestStreakToleratesMissingToday(t *testing.T) {
	e := newTestEngine(&fakeSource{buckets: []types.DailyBucket{
		bucket("2026-03-09", 1, 10),
		bucket("2026-03-10", 1, 10),
		// Nothing yet today.
	}})

	streak, err := e.Streak(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, streak.Current)
	assert.Equal(t, 2, streak.Longest)
}

func TestStreakBrokenByGap(t *testing.T) {
	e := newTestEngine(&fakeSource{buckets: []types.DailyBucket{
		bucket("2026-03-05", 1, 10),
		bucket("2026-03-06", 1, 10),
		bucket("2026-03-07", 1, 10),
		// Gap on the 8th and 9th.
		bucket("2026-03-10", 1, 10),
		bucket("2026-03-11", 2, 25),
	}})

	streak, err := e.Streak(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, streak.Current)
	assert.Equal(t, 3, streak.Longest)
}

func TestStreakZeroPaperDayBreaks(t *testing.T) {
	e := newTestEngine(&fakeSource{buckets: []types.DailyBucket{
		bucket("2026-03-09", 1, 10),
		bucket("2026-03-10", 0, 5), // minutes only, no completed read
		bucket("2026-03-11", 1, 10),
	}})

	streak, err := e.Streak(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
	assert.Equal(t, 1, streak.Longest)
}

func TestStreakEmptyHistory(t *testing.T) {
	e := newTestEngine(&fakeSource{})
	streak, err := e.Streak(context.Background())
	require.NoError(t, err)
	assert.Zero(t, streak.Current)
	assert.Zero(t, streak.Longest)
}

func TestTotals(t *testing.T) {
	e := newTestEngine(&fakeSource{buckets: []types.DailyBucket{
		bucket("2026-03-01", 2, 50),
		bucket("2026-03-10", 1, 25),
		bucket("2024-06-01", 50, 5000), // outside the trailing year
	}})

	totals, err := e.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalPapers)
	assert.Equal(t, 75, totals.TotalMinutes)
	assert.Equal(t, 25, totals.AvgMinutesPerPaper)
}

func TestTotalsEmptyGuard(t *testing.T) {
	e := newTestEngine(&fakeSource{})
	totals, err := e.Totals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, totals.TotalPapers)
	assert.Zero(t, totals.AvgMinutesPerPaper)
}
