package kaggle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

const sampleCSV = `title,release_date,vote_average,overview,extra
The Shining,1980-05-23,8.2,"Jack Torrance becomes winter caretaker.",x
Phantasm,1979,6.6,No Overview,y
,1985-01-01,5.0,orphan row,z
Halloween,bad-date,not-a-number,"The night he came home.",w
`

func writeDataset(t *testing.T, content string) config.KaggleConfig {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "horror_movies.csv"), []byte(content), 0o644))
	return config.KaggleConfig{DataDir: dir, CSVFile: "horror_movies.csv"}
}

func TestExtractNormalizesRows(t *testing.T) {
	e := NewExtractor(writeDataset(t, sampleCSV), nil)

	records, result, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.NoError(t, err)
	assert.True(t, result.Success)

	// The untitled row is skipped; the rest normalize.
	require.Len(t, records, 3)

	shining := records[0]
	assert.Equal(t, "The Shining", shining.Title)
	assert.Equal(t, 1980, shining.Year)
	require.NotNil(t, shining.Rating)
	assert.Equal(t, 8.2, *shining.Rating)

	// Bare year parses; the placeholder overview is rejected.
	phantasm := records[1]
	assert.Equal(t, 1979, phantasm.Year)
	assert.Empty(t, phantasm.Overview)

	// Bad date and bad rating coerce to absent, row still loads.
	halloween := records[2]
	assert.Zero(t, halloween.Year)
	assert.Nil(t, halloween.Rating)
	assert.Equal(t, "The night he came home.", halloween.Overview)

	assert.Equal(t, 1, e.Stats().Skipped)
}

func TestExtractMissingFileIsStructural(t *testing.T) {
	e := NewExtractor(config.KaggleConfig{DataDir: t.TempDir(), CSVFile: "absent.csv"}, nil)
	_, _, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.Error(t, err)
}

func TestExtractRequiresTitleColumn(t *testing.T) {
	e := NewExtractor(writeDataset(t, "a,b,c\n1,2,3\n"), nil)
	_, _, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no title column")
}

func TestExtractHonorsMaxItems(t *testing.T) {
	e := NewExtractor(writeDataset(t, sampleCSV), nil)
	records, _, err := e.Extract(context.Background(), core.ExtractionParams{MaxItems: 1})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
