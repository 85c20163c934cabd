// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CompletionThreshold is the scroll percentage at and above which a reading
// session counts as a completed read.
const CompletionThreshold = 80

// ReadingSession records one sitting with a paper. A session is created open
// (EndTime 0) and receives a single terminal write when the reader closes
// the paper; it is immutable afterwards.
type ReadingSession struct {
	ID       string        `json:"id"`
	PaperID  string        `json:"paperId"`
	Title    string        `json:"paperTitle"`
	Category TopicCategory `json:"category"`

	// StartTime and EndTime are epoch milliseconds. EndTime is 0 while the
	// session is open.
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`

	DurationSeconds int `json:"duration"`

	// ScrollPercentage is 0-100 and non-decreasing within a session.
	ScrollPercentage int `json:"scrollPercentage"`

	// Completed is true iff ScrollPercentage reached CompletionThreshold
	// when the session ended.
	Completed bool `json:"completed"`
}

// Open reports whether the session has not yet received its terminal write.
func (s ReadingSession) Open() bool { return s.EndTime == 0 }

// Note is a free-text annotation on a paper. Notes are independent entities
// with a paperId back-reference, not owned sub-records.
type Note struct {
	ID        string `json:"id"`
	PaperID   string `json:"paperId"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// HighlightColor is one of the five marker colors.
type HighlightColor string

const (
	HighlightYellow HighlightColor = "yellow"
	HighlightGreen  HighlightColor = "green"
	HighlightBlue   HighlightColor = "blue"
	HighlightPink   HighlightColor = "pink"
	HighlightPurple HighlightColor = "purple"
)

// Highlight marks a text span in a paper.
type Highlight struct {
	ID          string         `json:"id"`
	PaperID     string         `json:"paperId"`
	Text        string         `json:"text"`
	Color       HighlightColor `json:"color"`
	StartOffset int            `json:"startOffset"`
	EndOffset   int            `json:"endOffset"`
	CreatedAt   int64          `json:"createdAt"`
}

// SavedPaper denormalizes the full Paper payload at save time so it stays
// readable without network access. Progress is 0-100 and monotonic.
type SavedPaper struct {
	ID         string `json:"id"`
	Paper      Paper  `json:"paper"`
	SavedAt    int64  `json:"savedAt"`
	LastReadAt int64  `json:"lastReadAt,omitempty"`
	Progress   int    `json:"readingProgress"`

	// PDFPath is set once the PDF has been fetched for offline reading.
	PDFPath string `json:"pdfPath,omitempty"`
}

// DailyBucket aggregates the sessions that ended on one calendar day.
// Date is a "YYYY-MM-DD" key. Buckets are upserted incrementally on each
// session end, never recomputed from scratch.
type DailyBucket struct {
	Date       string `json:"date"`
	PapersRead int    `json:"papersRead"`
	Minutes    int    `json:"minutes"`
}

// WeeklyBucket sums the daily buckets of one week. WeekStart is the
// "YYYY-MM-DD" key of the Sunday on or before every day in the week.
type WeeklyBucket struct {
	WeekStart    string `json:"weekStart"`
	PapersRead   int    `json:"papersRead"`
	TotalMinutes int    `json:"totalMinutes"`
}

// Streak holds the consecutive-day reading counters.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ReadingTotals sums reading activity over the trailing year.
type ReadingTotals struct {
	TotalPapers        int `json:"totalPapers"`
	TotalMinutes       int `json:"totalMinutes"`
	AvgMinutesPerPaper int `json:"avgMinutesPerPaper"`
}
