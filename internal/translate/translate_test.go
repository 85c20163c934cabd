// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

func testPapers() []types.Paper {
	return []types.Paper{
		{ID: "oa-W1", Title: "Attention Is All You Need", Abstract: "We propose a new architecture."},
		{ID: "arxiv-2", Title: "BERT", Abstract: "We introduce BERT."},
	}
}

func TestTranslateBatchMergesByIndex(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []item
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &batch); err != nil {
			t.Errorf("request body is not a batch: %v", err)
		}
		if len(batch) != 2 || batch[1].Index != 1 {
			t.Errorf("unexpected batch %+v", batch)
		}
		fmt.Fprint(w, `[
			{"index": 0, "title": "Tek İhtiyacınız Dikkat", "abstract": "Yeni bir mimari öneriyoruz."},
			{"index": 1, "title": "BERT", "abstract": "BERT'i tanıtıyoruz."}
		]`)
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), ts.URL, "", "test/0.1")
	out, err := c.TranslateBatch(context.Background(), testPapers())
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}

	if out[0].Title != "Tek İhtiyacınız Dikkat" {
		t.Errorf("Title = %q", out[0].Title)
	}
	if !strings.HasSuffix(out[0].Abstract, continuationNote) {
		t.Errorf("Abstract = %q, want continuation note appended", out[0].Abstract)
	}
	if !strings.HasPrefix(out[0].Abstract, "Yeni bir mimari öneriyoruz.") {
		t.Errorf("Abstract = %q", out[0].Abstract)
	}
}

func TestTranslateBatchPartialResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Only index 1 comes back; index 7 is out of range and ignored.
		fmt.Fprint(w, `[{"index": 1, "title": "BERT (TR)", "abstract": ""},
			{"index": 7, "title": "ghost", "abstract": "x"}]`)
	}))
	defer ts.Close()

	c := NewClient(ts.Client(), ts.URL, "", "test/0.1")
	out, err := c.TranslateBatch(context.Background(), testPapers())
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}

	if out[0].Title != "Attention Is All You Need" {
		t.Errorf("untranslated paper changed: %q", out[0].Title)
	}
	if out[1].Title != "BERT (TR)" {
		t.Errorf("Title = %q", out[1].Title)
	}
	// Empty abstract in the response keeps the original.
	if out[1].Abstract != "We introduce BERT." {
		t.Errorf("Abstract = %q", out[1].Abstract)
	}
}

func TestTranslateBatchDoesNotMutateInput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"index": 0, "title": "changed", "abstract": "changed"}]`)
	}))
	defer ts.Close()

	in := testPapers()
	c := NewClient(ts.Client(), ts.URL, "", "test/0.1")
	if _, err := c.TranslateBatch(context.Background(), in); err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if in[0].Title != "Attention Is All You Need" {
		t.Errorf("input slice was mutated: %q", in[0].Title)
	}
}

func TestTranslateBatchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "not json at all")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			c := NewClient(ts.Client(), ts.URL, "", "test/0.1")
			if _, err := c.TranslateBatch(context.Background(), testPapers()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTranslateBatchEmptyInput(t *testing.T) {
	c := NewClient(http.DefaultClient, "https://unreachable.invalid", "", "test/0.1")
	out, err := c.TranslateBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty batch should short-circuit: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("len(out) = %d", len(out))
	}
}

func TestNewClientEmptyURLDisables(t *testing.T) {
	if c := NewClient(http.DefaultClient, "", "key", "ua"); c != nil {
		t.Error("empty URL should return nil client")
	}
}

func TestTranslateBatchCapsAbstract(t *testing.T) {
	var sent []item
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &sent)
		fmt.Fprint(w, `[]`)
	}))
	defer ts.Close()

	long := types.Paper{Title: "Long", Abstract: strings.Repeat("a", 900)}
	c := NewClient(ts.Client(), ts.URL, "", "test/0.1")
	if _, err := c.TranslateBatch(context.Background(), []types.Paper{long}); err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if len(sent) != 1 || len([]rune(sent[0].Abstract)) != maxAbstractChars {
		t.Errorf("abstract not capped: %d runes", len([]rune(sent[0].Abstract)))
	}
}
