// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ezzhamed/bilimkapsulu.ai/internal/httputil"
	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// ArxivAPIBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var ArxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API. When RelayURL is set, requests
// are routed through the fetch relay.
type ArxivBackend struct {
	Client    *http.Client
	UserAgent string
	RelayURL  string
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return string(types.SourceArxiv) }

// Search queries arXiv. Pagination is offset-based: the 1-indexed page maps
// to start=(page-1)*pageSize.
func (b *ArxivBackend) Search(ctx context.Context, term string, page, pageSize int) (Page, error) {
	start := (page - 1) * pageSize
	target := fmt.Sprintf("%s?search_query=all:%s&start=%d&max_results=%d&sortBy=relevance&sortOrder=descending",
		ArxivAPIBase, url.QueryEscape(term), start, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httputil.Relay(b.RelayURL, target), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return Page{}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for i, entry := range feed.Entries {
		papers = append(papers, normalizeArxivEntry(entry, start+i))
	}

	return Page{
		Papers:  papers,
		HasMore: feed.TotalResults > start+pageSize,
	}, nil
}

// normalizeArxivEntry maps one Atom entry onto the common Paper shape.
// fallbackSeq disambiguates the rare entry without an <id>.
func normalizeArxivEntry(entry arxivEntry, fallbackSeq int) types.Paper {
	arxivID := extractArxivID(entry.ID)
	id := "arxiv-" + arxivID
	if arxivID == "" {
		id = fmt.Sprintf("arxiv-%d", fallbackSeq)
	}

	title := collapseWhitespace(entry.Title)
	if title == "" {
		title = "Untitled"
	}

	year := time.Now().Year()
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		year = t.Year()
	}

	var authors []string
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	var pdfURL string
	for _, link := range entry.Links {
		if link.Title == "pdf" && link.Href != "" {
			pdfURL = link.Href
		}
	}
	if pdfURL == "" && arxivID != "" {
		pdfURL = fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", arxivID)
	}

	keywords := []string{"arXiv"}
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			keywords = append(keywords, cat.Term)
		}
	}

	return types.Paper{
		ID:              id,
		Title:           title,
		OriginalTitle:   title,
		Authors:         truncateAuthors(authors),
		University:      "arXiv Preprint",
		PublicationYear: year,
		Journal:         "arXiv",
		Abstract:        truncateAbstract(collapseWhitespace(entry.Summary)),
		DocumentType:    types.DocArticle,
		Keywords:        keywords,
		Category:        types.TopicAI,
		PDFURL:          pdfURL,
		Citations:       0,
		IsOpenAccess:    true,
		ReadMinutes:     15,
		IsExternal:      true,
	}
}

// extractArxivID pulls the bare arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1").
func extractArxivID(idURL string) string {
	const marker = "/abs/"
	idx := strings.Index(idURL, marker)
	if idx < 0 {
		return ""
	}
	return idURL[idx+len(marker):]
}

// arXiv Atom feed XML structures. opensearch:totalResults drives HasMore.
type arxivFeed struct {
	TotalResults int          `xml:"totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Links      []arxivLink     `xml:"link"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}
