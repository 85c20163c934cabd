// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

func TestDedupeHigherCitationsWin(t *testing.T) {
	in := []types.Paper{
		{ID: "a", Title: "Large Language Models", Citations: 10},
		{ID: "b", Title: "large language models!!", Citations: 50},
		{ID: "c", Title: "Unrelated Work", Citations: 5},
	}
	out := Dedupe(in)
	assert.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID, "higher-citation duplicate replaces the earlier copy in place")
	assert.Equal(t, "c", out[1].ID)
}

func TestDedupeTieKeepsFirstSeen(t *testing.T) {
	in := []types.Paper{
		{ID: "first", Title: "Same Title", Citations: 7},
		{ID: "second", Title: "same title", Citations: 7},
	}
	out := Dedupe(in)
	assert.Len(t, out, 1)
	assert.Equal(t, "first", out[0].ID)
}

func TestDedupePreservesInsertionOrder(t *testing.T) {
	in := []types.Paper{
		{ID: "1", Title: "Aaa"},
		{ID: "2", Title: "Bbb"},
		{ID: "3", Title: "Ccc"},
		{ID: "4", Title: "bbb"},
	}
	out := Dedupe(in)
	ids := make([]string, len(out))
	for i, p := range out {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestDedupeKeyNormalization(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"case and punctuation", "Quantum Computing: A Survey", "quantum computing a survey", true},
		{"digits kept", "Study 1", "Study 2", false},
		{"unicode letters kept", "Türkçe Doğal Dil İşleme", "türkçe doğal dil işleme", true},
		{"long titles collide past the key length", strings.Repeat("x", 60) + " alpha", strings.Repeat("x", 60) + " beta", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, dedupeKey(tt.a) == dedupeKey(tt.b))
		})
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	assert.NotNil(t, Dedupe(nil))
}
