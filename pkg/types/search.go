// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// SourceName identifies an external paper API, or the all-sources scope.
type SourceName string

const (
	SourceAll      SourceName = "all"
	SourceOpenAlex SourceName = "openalex"
	SourceArxiv    SourceName = "arxiv"
	SourceSemantic SourceName = "semantic"
)

// SearchQuery holds the parameters of one aggregate search. Page is
// 1-indexed.
type SearchQuery struct {
	Text     string     `json:"text"`
	Source   SourceName `json:"source"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// CacheKey returns the deterministic cache key for the query. Identical
// queries always map to the same key.
func (q SearchQuery) CacheKey() string {
	return fmt.Sprintf("search_%s_%s_%d_%d", q.Text, q.Source, q.Page, q.PageSize)
}

// SourceError is a source-scoped failure record. A failing source
// contributes one of these to the aggregate instead of aborting it.
type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// SourceCounts records how many papers each source contributed before
// deduplication.
type SourceCounts struct {
	OpenAlex int `json:"openalex"`
	Arxiv    int `json:"arxiv"`
	Semantic int `json:"semantic"`
}

// SearchResult is the aggregate outcome of a search: best-effort papers plus
// the per-source errors collected along the way. HasMore is true when any
// contributing source reports further pages.
type SearchResult struct {
	Papers    []Paper       `json:"papers"`
	Errors    []SourceError `json:"errors,omitempty"`
	HasMore   bool          `json:"hasMore"`
	Counts    SourceCounts  `json:"totalBySource"`
	FromCache bool          `json:"fromCache"`
}

// FeedResult is the outcome of a category feed, trending, or all-sources
// fetch.
type FeedResult struct {
	Papers    []Paper       `json:"papers"`
	Errors    []SourceError `json:"errors,omitempty"`
	FromCache bool          `json:"fromCache"`
}
