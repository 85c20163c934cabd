// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curated

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

const sampleFeed = `papers:
  - id: "1"
    title: "Türkiye'de Yapay Zeka Araştırmaları"
    authors: ["Prof. Dr. A. Kaya"]
    category: "Yapay Zeka"
    citations: 42
    is_external: true
  - id: "2"
    title: "Boğaziçi'nde Deprem Riski"
    category: "Mühendislik"
  - id: ""
    title: "Kimliksiz kayıt atlanır"
  - id: "3"
    title: ""
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curated.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o644))

	papers, err := Load(path)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, types.TopicAI, papers[0].Category)
	assert.False(t, papers[0].IsExternal, "curated entries are never external")
	assert.Equal(t, "2", papers[1].ID)
}

func TestLoadMissingFile(t *testing.T) {
	papers, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, papers)

	papers, err = Load("")
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curated.yaml")
	require.NoError(t, os.WriteFile(path, []byte("papers: {not a list"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestByCategory(t *testing.T) {
	papers := []types.Paper{
		{ID: "1", Category: types.TopicAI},
		{ID: "2", Category: types.TopicPhysics},
		{ID: "3", Category: types.TopicAI},
	}
	got := ByCategory(papers, types.TopicAI)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
