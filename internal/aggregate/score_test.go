package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/core"
)

func TestCalculateWeighsAllFourSources(t *testing.T) {
	c := NewScoreCalculator(nil)

	films, stats := c.Calculate([]core.Film{{
		TMDBID:           694,
		Title:            "The Shining",
		VoteAverage:      8.0,
		TomatometerScore: intPtr(90),
		IMDBRating:       floatPtr(8.5),
		KaggleRating:     floatPtr(7.0),
	}})

	require.Len(t, films, 1)
	// 0.25*8.0 + 0.30*9.0 + 0.30*8.5 + 0.15*7.0 = 8.30
	assert.Equal(t, 8.30, films[0].AggregatedScore)
	assert.Equal(t, 1, stats.WithTMDB)
	assert.Equal(t, 1, stats.WithRT)
	assert.Equal(t, 1, stats.WithIMDB)
	assert.Equal(t, 1, stats.WithKaggle)
	assert.Equal(t, 8.30, stats.AvgScore)
}

func TestCalculateRenormalizesOverPresentSources(t *testing.T) {
	c := NewScoreCalculator(nil)

	// A film with only an IMDb rating scores exactly that rating.
	films, _ := c.Calculate([]core.Film{{TMDBID: 1, IMDBRating: floatPtr(8.5)}})
	assert.Equal(t, 8.5, films[0].AggregatedScore)

	// Two sources: (0.25*8.2 + 0.30*8.4) / 0.55.
	films, _ = c.Calculate([]core.Film{{
		TMDBID:      2,
		VoteAverage: 8.2,
		IMDBRating:  floatPtr(8.4),
	}})
	assert.Equal(t, 8.31, films[0].AggregatedScore)
}

func TestCalculateSkipsUnratedAndEmptySources(t *testing.T) {
	c := NewScoreCalculator(nil)

	// A zero vote average means "no votes yet", not a rating of zero.
	films, stats := c.Calculate([]core.Film{{
		TMDBID:           3,
		VoteAverage:      0,
		TomatometerScore: intPtr(70),
	}})
	assert.Equal(t, 7.0, films[0].AggregatedScore)
	assert.Zero(t, stats.WithTMDB)
	assert.Equal(t, 1, stats.WithRT)

	// No components at all scores zero.
	films, stats = c.Calculate([]core.Film{{TMDBID: 4, Title: "Unrated"}})
	assert.Zero(t, films[0].AggregatedScore)
	assert.Zero(t, stats.AvgScore)
}
