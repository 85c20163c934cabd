// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries the external paper APIs and normalizes their wire
// formats into the common Paper record. Each backend implements the same
// interface and shares no code with the others beyond small helpers.
package source

import (
	"context"
	"strings"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// Backend searches a single external paper API. Page numbers are 1-indexed;
// each backend translates them into its native paging convention.
type Backend interface {
	Name() string
	Search(ctx context.Context, term string, page, pageSize int) (Page, error)
}

// Page is one page of normalized results from a single source. HasMore is
// derived from the source's reported total.
type Page struct {
	Papers  []types.Paper
	HasMore bool
}

// abstractLimit caps abstracts at 500 runes before a continuation marker is
// appended.
const abstractLimit = 500

// maxAuthors truncates author lists to the first three names.
const maxAuthors = 3

// truncateAbstract caps s at abstractLimit runes, appending "..." when
// something was cut.
func truncateAbstract(s string) string {
	r := []rune(s)
	if len(r) <= abstractLimit {
		return s
	}
	return string(r[:abstractLimit]) + "..."
}

// truncateAuthors keeps at most the first three names.
func truncateAuthors(authors []string) []string {
	if len(authors) > maxAuthors {
		return authors[:maxAuthors]
	}
	return authors
}

// collapseWhitespace flattens newlines and runs of spaces into single
// spaces. The arXiv feed wraps titles and summaries across lines.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
