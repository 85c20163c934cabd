// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package translate enriches papers through an opaque remote translation
// service. The wire contract is a JSON batch of {index, title, abstract}
// items in both directions; anything missing or malformed in the response
// leaves the corresponding paper untouched.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// maxAbstractChars caps the abstract sent per item, for request size.
const maxAbstractChars = 500

// continuationNote is appended to translated abstracts, since only their
// leading portion was sent.
const continuationNote = "... (Devamı Orijinal Kaynakta)"

// item is one entry of the batch request and response.
type item struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Client posts translation batches to a remote endpoint.
type Client struct {
	HTTPClient *http.Client
	URL        string
	APIKey     string
	UserAgent  string
}

// NewClient returns a client for the endpoint, or nil when url is empty.
// A nil *Client means enrichment is disabled.
func NewClient(httpClient *http.Client, url, apiKey, userAgent string) *Client {
	if url == "" {
		return nil
	}
	return &Client{HTTPClient: httpClient, URL: url, APIKey: apiKey, UserAgent: userAgent}
}

// TranslateBatch sends the papers' titles and abstracts for translation and
// merges the response back by index. Papers absent from the response keep
// their original text. The input slice is not mutated.
func (c *Client) TranslateBatch(ctx context.Context, papers []types.Paper) ([]types.Paper, error) {
	if len(papers) == 0 {
		return papers, nil
	}

	batch := make([]item, len(papers))
	for i, p := range papers {
		abstract := p.Abstract
		if r := []rune(abstract); len(r) > maxAbstractChars {
			abstract = string(r[:maxAbstractChars])
		}
		batch[i] = item{Index: i, Title: p.Title, Abstract: abstract}
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encoding translation batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation service returned HTTP %d", resp.StatusCode)
	}

	var translations []item
	if err := json.NewDecoder(resp.Body).Decode(&translations); err != nil {
		return nil, fmt.Errorf("parsing translation response: %w", err)
	}

	out := make([]types.Paper, len(papers))
	copy(out, papers)
	for _, t := range translations {
		if t.Index < 0 || t.Index >= len(out) {
			continue
		}
		if t.Title != "" {
			out[t.Index].Title = t.Title
		}
		if t.Abstract != "" {
			out[t.Index].Abstract = t.Abstract + continuationNote
		}
	}
	return out, nil
}
