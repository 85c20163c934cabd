// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate fans a query out to the configured paper sources and
// merges the settled results into one best-effort answer. A failing source
// contributes an error record, never an aborted aggregate.
package aggregate

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/ezzhamed/bilimkapsulu.ai/internal/cache"
	"github.com/ezzhamed/bilimkapsulu.ai/internal/source"
	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

const (
	// SearchTTL bounds how long an aggregate search result is served from
	// cache before the sources are asked again.
	SearchTTL = 15 * time.Minute
	// FeedTTL covers category feeds and all-sources feeds.
	FeedTTL = 30 * time.Minute
	// TrendingTTL is the longest: the trending window moves slowly.
	TrendingTTL = time.Hour

	defaultPageSize = 12
	// allSourcesPerSource keeps the combined feed balanced; each source
	// contributes at most this many papers per page.
	allSourcesPerSource = 6
)

// sourceTimeouts caps each source call independently so one slow API cannot
// stall the whole fan-out. Semantic Scholar gets extra headroom for its
// rate-limit backoff.
var sourceTimeouts = map[string]time.Duration{
	string(types.SourceOpenAlex): 15 * time.Second,
	string(types.SourceArxiv):    15 * time.Second,
	string(types.SourceSemantic): 20 * time.Second,
}

const defaultSourceTimeout = 15 * time.Second

// Translator rewrites paper titles and abstracts for presentation. A nil
// Translator disables enrichment; a failing one is recorded as a
// source-scoped error and the untranslated papers are kept.
type Translator interface {
	TranslateBatch(ctx context.Context, papers []types.Paper) ([]types.Paper, error)
}

// FeedBackend serves the discovery endpoints (recent papers by term, global
// trending) that only OpenAlex exposes.
type FeedBackend interface {
	Recent(ctx context.Context, term string, page, pageSize int) (source.Page, error)
	Trending(ctx context.Context, page, pageSize int) (source.Page, error)
}

// Aggregator owns the cache, the backend set, and the optional enrichment
// client. Backends is also the merge order: results are always stitched
// together in this order no matter which goroutine settles first.
type Aggregator struct {
	Cache      *cache.Cache
	Backends   []source.Backend
	Feed       FeedBackend
	Translator Translator
	Warn       io.Writer
}

// New builds an Aggregator over the given cache and sources. Translator and
// Warn are optional and set on the returned struct.
func New(c *cache.Cache, backends []source.Backend, feed FeedBackend) *Aggregator {
	return &Aggregator{Cache: c, Backends: backends, Feed: feed}
}

// Search runs the query against the selected sources concurrently, merges
// and deduplicates the results, and sorts them by citation count. Identical
// queries within SearchTTL are answered from cache with FromCache set.
func (a *Aggregator) Search(ctx context.Context, q types.SearchQuery) (types.SearchResult, error) {
	if q.Text == "" {
		return types.SearchResult{}, fmt.Errorf("empty search query")
	}
	if q.Source == "" {
		q.Source = types.SourceAll
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}

	key := q.CacheKey()
	var cached types.SearchResult
	if a.Cache.Get(key, &cached) {
		cached.FromCache = true
		return cached, nil
	}

	backends := a.scope(q.Source)
	if len(backends) == 0 {
		return types.SearchResult{}, fmt.Errorf("unknown source %q", q.Source)
	}

	calls := make([]namedCall, len(backends))
	for i, b := range backends {
		b := b
		calls[i] = namedCall{
			name: b.Name(),
			call: func(ctx context.Context) (source.Page, error) {
				return b.Search(ctx, q.Text, q.Page, q.PageSize)
			},
		}
	}
	settled := runAll(ctx, calls)

	res := types.SearchResult{Papers: []types.Paper{}}
	merged := make([]types.Paper, 0)
	for i, s := range settled {
		if s.err != nil {
			res.Errors = append(res.Errors, types.SourceError{Source: calls[i].name, Message: s.err.Error()})
			continue
		}
		merged = append(merged, s.page.Papers...)
		res.HasMore = res.HasMore || s.page.HasMore
		addCount(&res.Counts, calls[i].name, len(s.page.Papers))
	}

	merged = Dedupe(merged)
	merged = a.enrich(ctx, merged, &res.Errors)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Citations > merged[j].Citations
	})
	res.Papers = merged

	// A total failure is not worth pinning in the cache for the full TTL.
	if len(res.Errors) < len(backends) {
		if err := a.Cache.Set(key, res, SearchTTL); err != nil {
			a.warnf("cache search result: %v", err)
		}
	}
	return res, nil
}

// CategoryFeed returns recent papers for one category, stamped with the
// category and enriched when a translator is configured.
func (a *Aggregator) CategoryFeed(ctx context.Context, cat types.TopicCategory, page, perPage int) (types.FeedResult, error) {
	if !cat.IsValid() {
		return types.FeedResult{}, fmt.Errorf("unknown category %q", cat)
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPageSize
	}

	key := fmt.Sprintf("live_%s_%d_%d", cat, page, perPage)
	var cached types.FeedResult
	if a.Cache.Get(key, &cached) {
		cached.FromCache = true
		return cached, nil
	}
	if a.Feed == nil {
		return types.FeedResult{}, fmt.Errorf("no feed source configured")
	}

	cctx, cancel := context.WithTimeout(ctx, timeoutFor(string(types.SourceOpenAlex)))
	defer cancel()
	pg, err := a.Feed.Recent(cctx, cat.SearchTerm(), page, perPage)
	if err != nil {
		return types.FeedResult{
			Papers: []types.Paper{},
			Errors: []types.SourceError{{Source: string(types.SourceOpenAlex), Message: err.Error()}},
		}, nil
	}

	res := types.FeedResult{Papers: stampCategory(pg.Papers, cat)}
	res.Papers = a.enrich(ctx, res.Papers, &res.Errors)
	if err := a.Cache.Set(key, res, FeedTTL); err != nil {
		a.warnf("cache category feed: %v", err)
	}
	return res, nil
}

// Trending returns globally trending papers. Pages are cached for a full
// hour.
func (a *Aggregator) Trending(ctx context.Context, page int) (types.FeedResult, error) {
	if page < 1 {
		page = 1
	}

	key := fmt.Sprintf("trending_%d", page)
	var cached types.FeedResult
	if a.Cache.Get(key, &cached) {
		cached.FromCache = true
		return cached, nil
	}
	if a.Feed == nil {
		return types.FeedResult{}, fmt.Errorf("no feed source configured")
	}

	cctx, cancel := context.WithTimeout(ctx, timeoutFor(string(types.SourceOpenAlex)))
	defer cancel()
	pg, err := a.Feed.Trending(cctx, page, defaultPageSize)
	if err != nil {
		return types.FeedResult{
			Papers: []types.Paper{},
			Errors: []types.SourceError{{Source: string(types.SourceOpenAlex), Message: err.Error()}},
		}, nil
	}

	res := types.FeedResult{Papers: stampCategory(pg.Papers, types.TopicAI)}
	res.Papers = a.enrich(ctx, res.Papers, &res.Errors)
	if err := a.Cache.Set(key, res, TrendingTTL); err != nil {
		a.warnf("cache trending feed: %v", err)
	}
	return res, nil
}

// AllSources builds a combined category feed with a balanced contribution
// from every source, deduplicated and sorted by citations.
func (a *Aggregator) AllSources(ctx context.Context, cat types.TopicCategory, page int) (types.FeedResult, error) {
	if !cat.IsValid() {
		return types.FeedResult{}, fmt.Errorf("unknown category %q", cat)
	}
	if page < 1 {
		page = 1
	}

	key := fmt.Sprintf("all_sources_%s_%d", cat, page)
	var cached types.FeedResult
	if a.Cache.Get(key, &cached) {
		cached.FromCache = true
		return cached, nil
	}

	term := cat.SearchTerm()
	calls := make([]namedCall, len(a.Backends))
	for i, b := range a.Backends {
		b := b
		call := func(ctx context.Context) (source.Page, error) {
			return b.Search(ctx, term, page, allSourcesPerSource)
		}
		// OpenAlex contributes its recent feed rather than a plain
		// search, matching the single-source category feed.
		if b.Name() == string(types.SourceOpenAlex) && a.Feed != nil {
			call = func(ctx context.Context) (source.Page, error) {
				return a.Feed.Recent(ctx, term, page, allSourcesPerSource)
			}
		}
		calls[i] = namedCall{name: b.Name(), call: call}
	}
	settled := runAll(ctx, calls)

	res := types.FeedResult{Papers: []types.Paper{}}
	merged := make([]types.Paper, 0)
	for i, s := range settled {
		if s.err != nil {
			res.Errors = append(res.Errors, types.SourceError{Source: calls[i].name, Message: s.err.Error()})
			continue
		}
		merged = append(merged, s.page.Papers...)
	}

	merged = stampCategory(Dedupe(merged), cat)
	merged = a.enrich(ctx, merged, &res.Errors)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Citations > merged[j].Citations
	})
	res.Papers = merged

	if len(res.Errors) < len(calls) {
		if err := a.Cache.Set(key, res, FeedTTL); err != nil {
			a.warnf("cache all-sources feed: %v", err)
		}
	}
	return res, nil
}

// ClearCache drops every cached feed and search result, memory and durable
// copies both.
func (a *Aggregator) ClearCache() error {
	return a.Cache.Clear()
}

// addCount records a source's pre-dedup contribution.
func addCount(c *types.SourceCounts, name string, n int) {
	switch types.SourceName(name) {
	case types.SourceOpenAlex:
		c.OpenAlex += n
	case types.SourceArxiv:
		c.Arxiv += n
	case types.SourceSemantic:
		c.Semantic += n
	}
}

// scope selects the backends a query addresses.
func (a *Aggregator) scope(s types.SourceName) []source.Backend {
	if s == types.SourceAll {
		return a.Backends
	}
	for _, b := range a.Backends {
		if b.Name() == string(s) {
			return []source.Backend{b}
		}
	}
	return nil
}

// enrich runs the optional translator over the papers. Failure is recorded
// against errs and the originals are returned untouched.
func (a *Aggregator) enrich(ctx context.Context, papers []types.Paper, errs *[]types.SourceError) []types.Paper {
	if a.Translator == nil || len(papers) == 0 {
		return papers
	}
	out, err := a.Translator.TranslateBatch(ctx, papers)
	if err != nil {
		*errs = append(*errs, types.SourceError{Source: "translate", Message: err.Error()})
		return papers
	}
	return out
}

func (a *Aggregator) warnf(format string, args ...any) {
	if a.Warn == nil {
		return
	}
	fmt.Fprintf(a.Warn, format+"\n", args...)
}

type namedCall struct {
	name string
	call func(context.Context) (source.Page, error)
}

type settledCall struct {
	page source.Page
	err  error
}

// runAll executes every call concurrently under its per-source timeout and
// waits for all of them to settle. Slot i of the result always belongs to
// calls[i].
func runAll(ctx context.Context, calls []namedCall) []settledCall {
	out := make([]settledCall, len(calls))
	var wg sync.WaitGroup
	for i, c := range calls {
		i, c := i, c
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, timeoutFor(c.name))
			defer cancel()
			page, err := c.call(cctx)
			out[i] = settledCall{page: page, err: err}
		}()
	}
	wg.Wait()
	return out
}

func timeoutFor(name string) time.Duration {
	if d, ok := sourceTimeouts[name]; ok {
		return d
	}
	return defaultSourceTimeout
}

// stampCategory sets the category on every paper and makes sure it also
// appears in the keywords.
func stampCategory(papers []types.Paper, cat types.TopicCategory) []types.Paper {
	out := make([]types.Paper, len(papers))
	copy(out, papers)
	for i := range out {
		out[i].Category = cat
		if !containsKeyword(out[i].Keywords, string(cat)) {
			out[i].Keywords = append(append([]string(nil), out[i].Keywords...), string(cat))
		}
	}
	return out
}

func containsKeyword(keywords []string, kw string) bool {
	for _, k := range keywords {
		if k == kw {
			return true
		}
	}
	return false
}
