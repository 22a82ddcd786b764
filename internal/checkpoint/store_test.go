package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageProgress struct {
	LastPage  int   `json:"last_page"`
	FilmIDs   []int `json:"film_ids"`
	TotalSeen int   `json:"total_seen"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := pageProgress{LastPage: 42, FilmIDs: []int{694, 9552}, TotalSeen: 840}
	require.NoError(t, store.Save("tmdb_extraction", saved))

	var loaded pageProgress
	found, err := store.Load("tmdb_extraction", &loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved, loaded)

	ts, ok := store.Timestamp("tmdb_extraction")
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestLoadAbsentCheckpoint(t *testing.T) {
	store := newTestStore(t)

	var loaded pageProgress
	found, err := store.Load("never_saved", &loaded)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadMalformedCheckpointFailsSoft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"timestamp": "not-j`), 0o644))

	var loaded pageProgress
	found, err := store.Load("broken", &loaded)
	require.NoError(t, err, "a damaged checkpoint must degrade to a fresh start")
	assert.False(t, found)
}

func TestLoadLegacyEnvelope(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	require.NoError(t, err)

	// Pre-versioning documents carry no schema_version field.
	legacy := []byte(`{"timestamp": "2025-01-02T03:04:05Z", "data": {"last_page": 7, "film_ids": null, "total_seen": 140}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmdb_extraction.json"), legacy, 0o644))

	var loaded pageProgress
	found, err := store.Load("tmdb_extraction", &loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 7, loaded.LastPage)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("progress", pageProgress{LastPage: 1}))
	require.NoError(t, store.Save("progress", pageProgress{LastPage: 2}))

	var loaded pageProgress
	found, err := store.Load("progress", &loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, loaded.LastPage)

	// No temp files left behind.
	entries, err := os.ReadDir(store.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListAndDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("b_second", pageProgress{}))
	require.NoError(t, store.Save("a_first", pageProgress{}))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a_first", "b_second"}, names)

	require.NoError(t, store.Delete("a_first"))
	require.NoError(t, store.Delete("a_first"), "deleting an absent checkpoint is not an error")

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b_second"}, names)
}
