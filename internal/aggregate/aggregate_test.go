package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func shining() core.Film {
	return core.Film{
		TMDBID:      694,
		IMDBID:      "tt0081505",
		Title:       "The Shining",
		ReleaseDate: "1980-05-23",
		Year:        1980,
		VoteAverage: 8.2,
		Sources:     []string{"tmdb"},
	}
}

func TestMergeAppliesEnrichmentWithoutOverwriting(t *testing.T) {
	m := NewMerger(nil)

	films, stats := m.Merge(Inputs{
		Films: []core.Film{shining()},
		Rotten: []core.RTEnrichment{{
			TMDBID:           694,
			TomatometerScore: intPtr(85),
			TomatometerState: "certified-fresh",
			CriticsConsensus: "A chilling classic.",
		}},
		IMDB:   []core.IMDBRating{{IMDBID: "tt0081505", Rating: 8.4, Votes: 1100000}},
		Kaggle: []core.KaggleRecord{{Title: "The Shining", Year: 1980, Rating: floatPtr(8.0), Overview: "Winter caretaker."}},
	})

	require.Len(t, films, 1)
	film := films[0]

	// Enrichment fields populated.
	require.NotNil(t, film.TomatometerScore)
	assert.Equal(t, 85, *film.TomatometerScore)
	assert.Equal(t, "A chilling classic.", film.CriticsConsensus)
	require.NotNil(t, film.IMDBRating)
	assert.Equal(t, 8.4, *film.IMDBRating)

	// Primary fields untouched.
	assert.Equal(t, 8.2, film.VoteAverage)
	assert.Equal(t, "tt0081505", film.IMDBID)

	// Kaggle backfilled the missing overview.
	assert.Equal(t, "Winter caretaker.", film.Overview)

	assert.Equal(t, []string{"tmdb", "rotten_tomatoes", "imdb", "kaggle"}, film.Sources)
	assert.Equal(t, 4, film.EnrichmentCount)
	assert.Equal(t, 1, stats.RottenApplied)
	assert.Equal(t, 1, stats.IMDBApplied)
	assert.Equal(t, 1, stats.KaggleApplied)
}

func TestMergeBackfillsMissingIMDBIDByTitle(t *testing.T) {
	m := NewMerger(nil)
	film := shining()
	film.IMDBID = ""

	films, _ := m.Merge(Inputs{
		Films: []core.Film{film},
		IMDB:  []core.IMDBRating{{IMDBID: "tt0081505", Title: "The Shining", Year: 1980, Rating: 8.4}},
	})

	assert.Equal(t, "tt0081505", films[0].IMDBID)
}

func TestMergeNeverOverwritesWithNull(t *testing.T) {
	m := NewMerger(nil)
	film := shining()
	film.TomatometerScore = intPtr(90)
	film.Overview = "Original overview."

	films, _ := m.Merge(Inputs{
		Films:  []core.Film{film},
		Rotten: []core.RTEnrichment{{TMDBID: 694}}, // supplies nothing
		Kaggle: []core.KaggleRecord{{Title: "The Shining", Year: 1980, Overview: "Replacement."}},
	})

	assert.Equal(t, 90, *films[0].TomatometerScore)
	assert.Equal(t, "Original overview.", films[0].Overview)
}

func newTestDedup() *Deduplicator {
	return NewDeduplicator(config.AggregateConfig{SimilarityThreshold: 0.90, YearTolerance: 1}, nil)
}

func TestDedupDropsFuzzyDuplicateWithinYearTolerance(t *testing.T) {
	d := newTestDedup()

	films, stats := d.Dedup([]core.Film{
		{TMDBID: 1, Title: "Phantasm", Year: 1979},
		{TMDBID: 2, Title: "Phantasm", Year: 1980},
	})
	assert.Len(t, films, 1)
	assert.Equal(t, 1, stats.ByFuzzy)

	// The same titles two years apart are distinct films.
	films, stats = d.Dedup([]core.Film{
		{TMDBID: 1, Title: "Phantasm", Year: 1979},
		{TMDBID: 2, Title: "Phantasm", Year: 1981},
	})
	assert.Len(t, films, 2)
	assert.Zero(t, stats.ByFuzzy)
}

func TestDedupNeverFuzzyDropsYearlessRecords(t *testing.T) {
	d := newTestDedup()

	// A remake and a record with an unknown year share a title; without
	// both years the fuzzy stage must not collapse them.
	films, stats := d.Dedup([]core.Film{
		{TMDBID: 346364, Title: "It", Year: 2017},
		{TMDBID: 9003, Title: "It"},
	})
	assert.Len(t, films, 2)
	assert.Zero(t, stats.ByFuzzy)

	// Same with the yearless record first.
	films, stats = d.Dedup([]core.Film{
		{TMDBID: 9003, Title: "It"},
		{TMDBID: 346364, Title: "It", Year: 2017},
	})
	assert.Len(t, films, 2)
	assert.Zero(t, stats.ByFuzzy)
}

func TestDedupStages(t *testing.T) {
	d := newTestDedup()

	films, stats := d.Dedup([]core.Film{
		{TMDBID: 1, IMDBID: "tt0000001", Title: "Alpha", Year: 2000},
		{TMDBID: 1, IMDBID: "tt0000009", Title: "Alpha Again", Year: 2005},
		{TMDBID: 2, IMDBID: "tt0000001", Title: "Beta", Year: 2010},
		{TMDBID: 3, Title: "Completely Different", Year: 2020},
	})

	assert.Len(t, films, 2)
	assert.Equal(t, 1, stats.ByPrimaryID)
	assert.Equal(t, 1, stats.ByAltID)
	assert.Equal(t, 2, stats.Kept)
}

func TestDedupIsIdempotent(t *testing.T) {
	d := newTestDedup()

	input := []core.Film{
		{TMDBID: 1, Title: "Phantasm", Year: 1979},
		{TMDBID: 2, Title: "Phantasm", Year: 1980},
		{TMDBID: 3, Title: "Halloween", Year: 1978},
	}
	once, _ := d.Dedup(input)
	twice, stats := d.Dedup(once)

	assert.Equal(t, once, twice)
	assert.Zero(t, stats.Dropped(), "re-running dedup must remove nothing")
}

func TestDedupRejectsInvalidSeparately(t *testing.T) {
	d := newTestDedup()

	films, stats := d.Dedup([]core.Film{
		{TMDBID: 0, Title: "No Identifier", Year: 2000},
		{TMDBID: 5, Title: "Valid", Year: 2000},
	})
	assert.Len(t, films, 1)
	assert.Equal(t, 1, stats.Invalid)
	assert.Zero(t, stats.Dropped())
}

func TestDedupOutputHasUniquePrimaryIDs(t *testing.T) {
	d := newTestDedup()

	input := []core.Film{
		{TMDBID: 1, Title: "A", Year: 2001},
		{TMDBID: 1, Title: "A", Year: 2001},
		{TMDBID: 2, Title: "B", Year: 2002},
		{TMDBID: 2, Title: "B again", Year: 2002},
		{TMDBID: 3, Title: "C", Year: 2003},
	}
	films, _ := d.Dedup(input)

	seen := make(map[int]bool)
	for _, f := range films {
		assert.False(t, seen[f.TMDBID], "duplicate primary id %d", f.TMDBID)
		seen[f.TMDBID] = true
	}
}
