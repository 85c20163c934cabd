// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ezzhamed/bilimkapsulu.ai/internal/httputil"
	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// SemanticAPIBase is the Semantic Scholar paper search endpoint. Declared as
// a var so tests can substitute an httptest server.
var SemanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,venue,citationCount,isOpenAccess,openAccessPdf,externalIds"

// semanticRate is the unauthenticated public pool limit.
const semanticRate = 1.0

// SemanticScholarBackend queries the Semantic Scholar Graph API. The public
// pool allows roughly one request per second, so the backend rate-limits
// itself and retries 429s with backoff on top of that.
type SemanticScholarBackend struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	RelayURL  string

	limiter *rate.Limiter
}

// NewSemanticScholarBackend constructs a backend with its rate limiter.
func NewSemanticScholarBackend(client *http.Client, apiKey, userAgent, relayURL string) *SemanticScholarBackend {
	return &SemanticScholarBackend{
		Client:    client,
		APIKey:    apiKey,
		UserAgent: userAgent,
		RelayURL:  relayURL,
		limiter:   rate.NewLimiter(rate.Limit(semanticRate), 1),
	}
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return string(types.SourceSemantic) }

// Search queries Semantic Scholar. Pagination is offset-based. A rate-limit
// or HTML body degrades to an empty page rather than a parse error: the
// source is flaky and non-critical to the aggregate.
func (b *SemanticScholarBackend) Search(ctx context.Context, term string, page, pageSize int) (Page, error) {
	offset := (page - 1) * pageSize
	params := url.Values{
		"query":  {term},
		"offset": {fmt.Sprintf("%d", offset)},
		"limit":  {fmt.Sprintf("%d", pageSize)},
		"fields": {semanticFields},
	}
	target := SemanticAPIBase + "?" + params.Encode()

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return Page{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httputil.Relay(b.RelayURL, target), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return Page{}, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		// Retries exhausted. Soft empty page, not a hard error.
		return Page{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("reading Semantic Scholar response: %w", err)
	}

	if isNonJSONBody(body) {
		return Page{}, nil
	}

	var sr semanticResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return Page{}, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, paper := range sr.Data {
		papers = append(papers, normalizeSemanticPaper(paper))
	}

	return Page{
		Papers:  papers,
		HasMore: sr.Total > offset+pageSize,
	}, nil
}

// isNonJSONBody detects rate-limit or proxy error payloads that arrive with
// a 200 status: plaintext "Too Many Requests" or an HTML page.
func isNonJSONBody(body []byte) bool {
	s := strings.TrimSpace(string(body))
	return strings.HasPrefix(s, "Too Many") ||
		strings.HasPrefix(s, "<!") ||
		strings.HasPrefix(s, "<html")
}

// normalizeSemanticPaper maps one Graph API record onto the common Paper
// shape.
func normalizeSemanticPaper(paper semanticPaper) types.Paper {
	title := paper.Title
	if title == "" {
		title = "Untitled"
	}

	p := types.Paper{
		ID:              "ss-" + paper.PaperID,
		Title:           title,
		OriginalTitle:   title,
		University:      "Semantic Scholar",
		PublicationYear: paper.Year,
		Journal:         "Academic Journal",
		Abstract:        "Abstract not available.",
		DocumentType:    types.DocArticle,
		Keywords:        []string{"Semantic Scholar", "Search"},
		Category:        types.TopicAI,
		DOI:             paper.ExternalIDs.DOI,
		Citations:       paper.CitationCount,
		IsOpenAccess:    paper.IsOpenAccess,
		ReadMinutes:     12,
		IsExternal:      true,
	}

	if p.PublicationYear == 0 {
		p.PublicationYear = time.Now().Year()
	}
	if paper.Venue != "" {
		p.Journal = paper.Venue
	}

	for _, a := range paper.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	if len(p.Authors) == 0 {
		p.Authors = []string{"Unknown"}
	}
	p.Authors = truncateAuthors(p.Authors)

	if paper.Abstract != "" {
		p.Abstract = truncateAbstract(paper.Abstract)
	}

	if paper.OpenAccessPDF.URL != "" {
		p.PDFURL = paper.OpenAccessPDF.URL
	} else if paper.ExternalIDs.DOI != "" {
		p.PDFURL = "https://doi.org/" + paper.ExternalIDs.DOI
	}

	return p
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	Year          int                 `json:"year"`
	Venue         string              `json:"venue"`
	CitationCount int                 `json:"citationCount"`
	IsOpenAccess  bool                `json:"isOpenAccess"`
	OpenAccessPDF semanticOpenAccess  `json:"openAccessPdf"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
}

type semanticOpenAccess struct {
	URL string `json:"url"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}
