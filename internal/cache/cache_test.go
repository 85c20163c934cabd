// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("greeting", "merhaba", time.Minute))

	var got string
	require.True(t, c.Get("greeting", &got))
	assert.Equal(t, "merhaba", got)
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)
	var got string
	assert.False(t, c.Get("absent", &got))
}

func TestExpiryWithoutSweep(t *testing.T) {
	c := newTestCache(t)

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set("k", 42, 15*time.Minute))

	// Just inside the TTL the entry is live.
	c.now = func() time.Time { return base.Add(15 * time.Minute) }
	var got int
	assert.True(t, c.Get("k", &got))

	// One tick past the TTL it is absent, with no eviction pass in between.
	c.now = func() time.Time { return base.Add(15*time.Minute + time.Millisecond) }
	assert.False(t, c.Get("k", &got))
}

func TestSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	c1, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, c1.Set("search_transformer_all_1_12", []string{"a", "b"}, time.Hour))

	// A fresh instance over the same directory sees the entry.
	c2, err := New(dir, nil)
	require.NoError(t, err)

	var got []string
	require.True(t, c2.Get("search_transformer_all_1_12", &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRestartRespectsTTL(t *testing.T) {
	dir := t.TempDir()

	c1, err := New(dir, nil)
	require.NoError(t, err)
	base := time.Now()
	c1.now = func() time.Time { return base }
	require.NoError(t, c1.Set("stale", "x", time.Minute))
	require.NoError(t, c1.Set("fresh", "y", time.Hour))

	c2, err := New(dir, nil)
	require.NoError(t, err)
	c2.now = func() time.Time { return base.Add(30 * time.Minute) }
	var got string
	assert.False(t, c2.Get("stale", &got))
	assert.True(t, c2.Get("fresh", &got))
	assert.Equal(t, "y", got)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	c := newTestCache(t)

	base := time.Now()
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set("old", 1, time.Second))
	require.NoError(t, c.Set("new", 2, time.Hour))

	c.now = func() time.Time { return base.Add(time.Minute) }
	c.Sweep()

	assert.Equal(t, 1, c.Len())
	var got int
	assert.True(t, c.Get("new", &got))
}

func TestClear(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Set("a", 1, time.Hour))
	require.NoError(t, c.Set("b", 2, time.Hour))

	require.NoError(t, c.Clear())

	assert.Equal(t, 0, c.Len())
	files, err := os.ReadDir(c.dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDurableWriteFailureKeepsMemoryCopy(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, nil)
	require.NoError(t, err)

	// Make the durable layer unwritable; Set must still succeed.
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	require.NoError(t, c.Set("memonly", "v", time.Hour))

	var got string
	assert.True(t, c.Get("memonly", &got))
	assert.Equal(t, "v", got)
}

func TestUnparseableDurableEntryRemoved(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{not json"), 0o644))

	c, err := New(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	_, statErr := os.Stat(filepath.Join(dir, "junk.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestKeyEncodingRoundTrip(t *testing.T) {
	keys := []string{
		"search_transformer_all_1_12",
		"live_Yapay Zeka_1_12",
		"search_Çevre/Bilimi?_semantic_2_6",
	}
	for _, k := range keys {
		assert.Equal(t, k, decodeKey(encodeKey(k)), "round trip for %q", k)
	}
}
