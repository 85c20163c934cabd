// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// OpenAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var OpenAlexSearchBase = "https://api.openalex.org/works"

const openAlexIDPrefix = "https://openalex.org/"

// OpenAlexBackend queries the OpenAlex API. OpenAlex supports direct calls,
// so it never goes through the relay.
type OpenAlexBackend struct {
	Client *http.Client
	// Email is sent as the mailto parameter for polite pool access.
	Email string
	// UserAgent is sent with every request.
	UserAgent string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return string(types.SourceOpenAlex) }

// Search queries OpenAlex sorted by citation count. Pagination is native
// page-based, so the common 1-indexed page maps straight through.
func (b *OpenAlexBackend) Search(ctx context.Context, term string, page, pageSize int) (Page, error) {
	params := url.Values{
		"search":   {term},
		"filter":   {"has_abstract:true"},
		"sort":     {"cited_by_count:desc"},
		"per_page": {fmt.Sprintf("%d", pageSize)},
		"page":     {fmt.Sprintf("%d", page)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	resp, err := b.fetch(ctx, OpenAlexSearchBase+"?"+params.Encode())
	if err != nil {
		return Page{}, err
	}

	papers := make([]types.Paper, 0, len(resp.Results))
	for _, work := range resp.Results {
		p := b.normalize(work)
		p.Keywords = []string{"OpenAlex", "Search"}
		papers = append(papers, p)
	}

	return Page{
		Papers:  papers,
		HasMore: resp.Meta.Count > page*pageSize,
	}, nil
}

// Recent queries OpenAlex for papers published in the trailing year matching
// term, newest first. Used by the category feed.
func (b *OpenAlexBackend) Recent(ctx context.Context, term string, page, pageSize int) (Page, error) {
	cutoff := fmt.Sprintf("%d-01-01", time.Now().Year()-1)
	params := url.Values{
		"search":   {term},
		"filter":   {"from_publication_date:" + cutoff + ",has_abstract:true"},
		"sort":     {"publication_date:desc"},
		"per_page": {fmt.Sprintf("%d", pageSize)},
		"page":     {fmt.Sprintf("%d", page)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	resp, err := b.fetch(ctx, OpenAlexSearchBase+"?"+params.Encode())
	if err != nil {
		return Page{}, err
	}

	papers := make([]types.Paper, 0, len(resp.Results))
	for _, work := range resp.Results {
		papers = append(papers, b.normalize(work))
	}
	return Page{
		Papers:  papers,
		HasMore: resp.Meta.Count > page*pageSize,
	}, nil
}

// Trending queries OpenAlex for the most-cited papers of the trailing year,
// with no search term.
func (b *OpenAlexBackend) Trending(ctx context.Context, page, pageSize int) (Page, error) {
	cutoff := fmt.Sprintf("%d-01-01", time.Now().Year()-1)
	params := url.Values{
		"filter":   {"from_publication_date:" + cutoff + ",has_abstract:true"},
		"sort":     {"cited_by_count:desc"},
		"per_page": {fmt.Sprintf("%d", pageSize)},
		"page":     {fmt.Sprintf("%d", page)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	resp, err := b.fetch(ctx, OpenAlexSearchBase+"?"+params.Encode())
	if err != nil {
		return Page{}, err
	}

	papers := make([]types.Paper, 0, len(resp.Results))
	for _, work := range resp.Results {
		p := b.normalize(work)
		p.Keywords = []string{"Trending", "Global"}
		papers = append(papers, p)
	}
	return Page{
		Papers:  papers,
		HasMore: resp.Meta.Count > page*pageSize,
	}, nil
}

func (b *OpenAlexBackend) fetch(ctx context.Context, reqURL string) (*openAlexResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return &oar, nil
}

// normalize maps one OpenAlex work onto the common Paper shape.
func (b *OpenAlexBackend) normalize(work openAlexWork) types.Paper {
	title := work.Title
	if title == "" {
		title = "Untitled"
	}

	p := types.Paper{
		ID:              "oa-" + strings.TrimPrefix(work.ID, openAlexIDPrefix),
		Title:           title,
		OriginalTitle:   title,
		University:      "International Research Institute",
		PublicationYear: work.PublicationYear,
		Journal:         "Academic Source",
		Abstract:        "Abstract not available.",
		DocumentType:    types.DocArticle,
		Category:        types.TopicAI,
		DOI:             work.DOI,
		Citations:       work.CitedByCount,
		IsOpenAccess:    work.OpenAccess.IsOA,
		ReadMinutes:     12,
		IsExternal:      true,
	}

	if p.PublicationYear == 0 {
		p.PublicationYear = time.Now().Year()
	}

	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			p.Authors = append(p.Authors, authorship.Author.DisplayName)
		}
	}
	if len(p.Authors) == 0 {
		p.Authors = []string{"Unknown Author"}
	}
	p.Authors = truncateAuthors(p.Authors)

	if len(work.Authorships) > 0 && len(work.Authorships[0].Institutions) > 0 &&
		work.Authorships[0].Institutions[0].DisplayName != "" {
		p.University = work.Authorships[0].Institutions[0].DisplayName
	}

	if work.PrimaryLocation.Source.DisplayName != "" {
		p.Journal = work.PrimaryLocation.Source.DisplayName
	}

	if len(work.AbstractInvertedIndex) > 0 {
		p.Abstract = truncateAbstract(ReconstructAbstract(work.AbstractInvertedIndex))
	}

	if work.OpenAccess.IsOA && work.OpenAccess.OAURL != "" {
		p.PDFURL = work.OpenAccess.OAURL
	} else if work.DOI != "" {
		p.PDFURL = work.DOI
	}

	return p
}

// ReconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the list of positions
// where that word appears; positions may be sparse. Whitespace before
// sentence punctuation is re-attached.
func ReconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}

	text := strings.Join(words, " ")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " .", ".")
	return text
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	CitedByCount          int                  `json:"cited_by_count"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author       openAlexAuthor        `json:"author"`
	Institutions []openAlexInstitution `json:"institutions"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexInstitution struct {
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

type openAlexLocation struct {
	Source openAlexLocationSource `json:"source"`
}

type openAlexLocationSource struct {
	DisplayName string `json:"display_name"`
}
