package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/core"
)

func TestWriteParquetProducesFile(t *testing.T) {
	dir := t.TempDir()
	score := 85
	films := []core.Film{
		{TMDBID: 694, Title: "The Shining", Year: 1980, TomatometerScore: &score,
			Genres: []string{"Horror", "Thriller"}, Sources: []string{"tmdb", "rotten_tomatoes"}},
		{TMDBID: 948, Title: "Halloween", Year: 1978, Sources: []string{"tmdb"}},
	}

	path, err := WriteParquet(dir, films, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".parquet"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteParquetEmptyDataset(t *testing.T) {
	path, err := WriteParquet(t.TempDir(), nil, nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "an empty dataset still writes a valid file with the schema")
}

func TestToParquetFlattensOptionalFields(t *testing.T) {
	score := 91
	rating := 8.4
	film := core.Film{
		TMDBID:           694,
		Title:            "The Shining",
		TomatometerScore: &score,
		IMDBRating:       &rating,
		Sources:          []string{"tmdb", "imdb"},
		EnrichmentCount:  2,
	}

	rec := toParquet(&film)
	require.NotNil(t, rec.TomatometerScore)
	assert.Equal(t, int32(91), *rec.TomatometerScore)
	assert.Equal(t, 8.4, *rec.IMDBRating)
	assert.Nil(t, rec.AudienceScore)
	assert.Equal(t, "tmdb|imdb", rec.Sources)
	assert.Equal(t, int32(2), rec.EnrichmentCount)
}
