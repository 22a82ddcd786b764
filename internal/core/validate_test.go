package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFilm() *Film {
	return &Film{
		TMDBID:      694,
		IMDBID:      "tt0081505",
		Title:       "The Shining",
		ReleaseDate: "1980-05-23",
		Year:        1980,
		VoteAverage: 8.2,
		VoteCount:   16000,
		Runtime:     146,
		Sources:     []string{"tmdb"},
	}
}

func TestValidateFilmAccepts(t *testing.T) {
	require.NoError(t, ValidateFilm(validFilm()))
}

func TestValidateFilmRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Film)
		field  string
	}{
		{"missing id", func(f *Film) { f.TMDBID = 0 }, "tmdb_id"},
		{"bad imdb id", func(f *Film) { f.IMDBID = "nm0000001" }, "imdb_id"},
		{"blank title", func(f *Film) { f.Title = "   " }, "title"},
		{"rating above scale", func(f *Film) { f.VoteAverage = 11 }, "vote_average"},
		{"implausible year", func(f *Film) { f.Year = 1700 }, "year"},
		{"runtime overflow", func(f *Film) { f.Runtime = 2000 }, "runtime"},
		{"tomatometer range", func(f *Film) { v := 140; f.TomatometerScore = &v }, "tomatometer_score"},
		{"negative budget", func(f *Film) { f.Budget = -1 }, "budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFilm()
			tt.mutate(f)
			err := ValidateFilm(f)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestReleaseYearFallsBackToDate(t *testing.T) {
	f := &Film{ReleaseDate: "1979-03-28"}
	assert.Equal(t, 1979, f.ReleaseYear())

	f = &Film{Year: 1980, ReleaseDate: "1979-03-28"}
	assert.Equal(t, 1980, f.ReleaseYear())

	f = &Film{ReleaseDate: "soon"}
	assert.Equal(t, 0, f.ReleaseYear())
}
