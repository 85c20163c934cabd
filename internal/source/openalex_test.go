// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleOpenAlexJSON = `{
  "meta": {"count": 40, "per_page": 12, "page": 1},
  "results": [
    {
      "id": "https://openalex.org/W2741809807",
      "title": "Attention Is All You Need",
      "doi": "https://doi.org/10.5555/3295222",
      "publication_year": 2017,
      "cited_by_count": 90000,
      "authorships": [
        {"author": {"display_name": "Ashish Vaswani"}, "institutions": [{"display_name": "Google Brain"}]},
        {"author": {"display_name": "Noam Shazeer"}, "institutions": []},
        {"author": {"display_name": "Niki Parmar"}, "institutions": []},
        {"author": {"display_name": "Jakob Uszkoreit"}, "institutions": []}
      ],
      "abstract_inverted_index": {"The": [0], "dominant": [1], "models": [2], ".": [3]},
      "open_access": {"is_oa": true, "oa_url": "https://arxiv.org/pdf/1706.03762"},
      "primary_location": {"source": {"display_name": "NeurIPS"}}
    },
    {
      "id": "https://openalex.org/W99",
      "title": "",
      "publication_year": 0,
      "cited_by_count": 3,
      "authorships": [],
      "open_access": {"is_oa": false}
    }
  ]
}`

func newOpenAlexTestBackend(t *testing.T, handler http.HandlerFunc) *OpenAlexBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := OpenAlexSearchBase
	OpenAlexSearchBase = ts.URL
	t.Cleanup(func() { OpenAlexSearchBase = old })

	return &OpenAlexBackend{Client: ts.Client(), Email: "reader@example.com", UserAgent: "test/0.1"}
}

func TestOpenAlexSearch(t *testing.T) {
	var gotQuery string
	b := newOpenAlexTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleOpenAlexJSON)
	})

	page, err := b.Search(context.Background(), "transformer", 1, 12)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Papers) != 2 {
		t.Fatalf("len(Papers) = %d, want 2", len(page.Papers))
	}

	p := page.Papers[0]
	if p.ID != "oa-W2741809807" {
		t.Errorf("ID = %q, want oa- prefixed work ID", p.ID)
	}
	if p.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", p.Title)
	}
	if len(p.Authors) != 3 {
		t.Errorf("len(Authors) = %d, want 3 (truncated from 4)", len(p.Authors))
	}
	if p.University != "Google Brain" {
		t.Errorf("University = %q", p.University)
	}
	if p.Journal != "NeurIPS" {
		t.Errorf("Journal = %q", p.Journal)
	}
	if p.Citations != 90000 {
		t.Errorf("Citations = %d", p.Citations)
	}
	if !p.IsOpenAccess || p.PDFURL != "https://arxiv.org/pdf/1706.03762" {
		t.Errorf("open access mapping wrong: %v %q", p.IsOpenAccess, p.PDFURL)
	}
	if p.Abstract != "The dominant models." {
		t.Errorf("Abstract = %q, want reconstructed prose", p.Abstract)
	}
	if !p.IsExternal {
		t.Error("IsExternal should be true for live results")
	}

	// Missing-field fallbacks.
	q := page.Papers[1]
	if q.Title != "Untitled" {
		t.Errorf("empty title should fall back, got %q", q.Title)
	}
	if len(q.Authors) != 1 || q.Authors[0] != "Unknown Author" {
		t.Errorf("Authors fallback = %v", q.Authors)
	}
	if q.PublicationYear == 0 {
		t.Error("PublicationYear should fall back to the current year")
	}

	// meta.count 40 > 1*12 → more pages.
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
	for _, want := range []string{"search=transformer", "per_page=12", "page=1", "mailto=reader%40example.com"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("request query %q missing %q", gotQuery, want)
		}
	}
}

func TestOpenAlexHasMoreLastPage(t *testing.T) {
	b := newOpenAlexTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"meta":{"count":24},"results":[]}`)
	})

	page, err := b.Search(context.Background(), "x", 2, 12)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// count 24 == page*pageSize → nothing further.
	if page.HasMore {
		t.Error("HasMore = true on exact boundary, want false")
	}
}

func TestOpenAlexHTTPError(t *testing.T) {
	b := newOpenAlexTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := b.Search(context.Background(), "x", 1, 12); err == nil {
		t.Fatal("expected error for HTTP 503")
	}
}

func TestOpenAlexRecentAndTrendingFilters(t *testing.T) {
	var queries []string
	b := newOpenAlexTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		fmt.Fprint(w, `{"meta":{"count":0},"results":[]}`)
	})

	if _, err := b.Recent(context.Background(), "Physics", 1, 12); err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if _, err := b.Trending(context.Background(), 1, 12); err != nil {
		t.Fatalf("Trending: %v", err)
	}

	if !strings.Contains(queries[0], "publication_date%3Adesc") {
		t.Errorf("Recent should sort by publication date, query %q", queries[0])
	}
	if !strings.Contains(queries[0], "from_publication_date") {
		t.Errorf("Recent should filter by publication date, query %q", queries[0])
	}
	if !strings.Contains(queries[1], "cited_by_count%3Adesc") {
		t.Errorf("Trending should sort by citations, query %q", queries[1])
	}
	if strings.Contains(queries[1], "search=") {
		t.Errorf("Trending should not carry a search term, query %q", queries[1])
	}
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil index", nil, ""},
		{"single word", map[string][]int{"hello": {0}}, "hello"},
		{
			"ordered words",
			map[string][]int{"models": {2}, "The": {0}, "dominant": {1}},
			"The dominant models",
		},
		{
			"repeated word",
			map[string][]int{"the": {0, 3}, "cat": {1}, "ate": {2}, "fish": {4}},
			"the cat ate the fish",
		},
		{
			"sparse positions keep order",
			map[string][]int{"alpha": {0}, "omega": {17}},
			"alpha omega",
		},
		{
			"punctuation reattached",
			map[string][]int{"end": {0}, ".": {1}},
			"end.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReconstructAbstract(tt.index); got != tt.want {
				t.Errorf("ReconstructAbstract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateAbstract(t *testing.T) {
	long := strings.Repeat("a", 600)
	got := truncateAbstract(long)
	if len([]rune(got)) != abstractLimit+3 {
		t.Errorf("len = %d, want %d", len([]rune(got)), abstractLimit+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated abstract should end with continuation marker")
	}
	if truncateAbstract("short") != "short" {
		t.Error("short abstract should pass through unchanged")
	}
}
