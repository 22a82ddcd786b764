package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "  The \t Shining \n ", "The Shining"},
		{"strips control characters", "Hallo\x00ween\x07", "Halloween"},
		{"rejects placeholder", "No Overview", ""},
		{"empty stays empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestParseReleaseDate(t *testing.T) {
	date, year := ParseReleaseDate("1980-05-23")
	assert.Equal(t, "1980-05-23", date)
	assert.Equal(t, 1980, year)

	// Bare year normalizes to January 1st.
	date, year = ParseReleaseDate("1979")
	assert.Equal(t, "1979-01-01", date)
	assert.Equal(t, 1979, year)

	date, year = ParseReleaseDate("soon")
	assert.Empty(t, date)
	assert.Zero(t, year)
}

func TestNormalizerStatsCountsReasons(t *testing.T) {
	var s NormalizerStats
	s.Normalized = 2
	s.Skip("missing title")
	s.Skip("missing title")
	s.Skip("bad year")

	assert.Equal(t, 3, s.Skipped)
	assert.Equal(t, 2, s.SkipReason["missing title"])
	assert.Equal(t, 1, s.SkipReason["bad year"])
}
