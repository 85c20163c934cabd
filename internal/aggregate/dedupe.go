// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"strings"
	"unicode"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

// dedupeKeyLen truncates normalized titles so trivially different endings
// (subtitle punctuation, version markers) still collide.
const dedupeKeyLen = 50

// Dedupe collapses near-duplicate papers across sources by normalized
// title. For colliding keys the record with the higher citation count is
// retained; on an exact tie the first-seen record wins. Output preserves
// the insertion order of each retained key's first occurrence; ranking is
// the caller's job.
func Dedupe(papers []types.Paper) []types.Paper {
	seen := make(map[string]int) // key → index in out
	out := make([]types.Paper, 0, len(papers))

	for _, p := range papers {
		key := dedupeKey(p.Title)
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(out)
			out = append(out, p)
			continue
		}
		if p.Citations > out[idx].Citations {
			out[idx] = p
		}
	}
	return out
}

// dedupeKey lowercases the title, strips everything but letters and digits,
// and truncates to dedupeKeyLen.
func dedupeKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	runes := []rune(b.String())
	if len(runes) > dedupeKeyLen {
		runes = runes[:dedupeKeyLen]
	}
	return string(runes)
}
