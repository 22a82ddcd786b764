package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

func testCandidates() []core.MatchCandidate {
	return []core.MatchCandidate{
		{EntityID: 694, Title: "The Shining", Year: 1980},
		{EntityID: 1, Title: "Phantasm", Year: 1979},
		{EntityID: 948, Title: "Halloween", Year: 1978},
	}
}

func newTestMatcher(trusted ...string) *Matcher {
	return NewMatcher(config.MatchConfig{MinScore: 0.70, TrustedChannels: trusted}, testCandidates(), nil)
}

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		raw      string
		want     string
		wantYear int
	}{
		{"THE SHINING (1980) Review | Horror Reviews", "THE SHINING Review", 1980},
		{"Phantasm [SPOILERS] - review", "Phantasm", 0},
		{"Halloween 1978 #horror #classic", "Halloween", 1978},
		{"Plain Title", "Plain Title", 0},
	}
	for _, tt := range tests {
		label, year := CleanLabel(tt.raw)
		assert.Equal(t, tt.want, label, "raw %q", tt.raw)
		assert.Equal(t, tt.wantYear, year, "raw %q", tt.raw)
	}
}

func TestMatchExactWithYearBonus(t *testing.T) {
	m := newTestMatcher()

	result, ok := m.Match("The Shining (1980)", "vid1", "Some Channel")
	require.True(t, ok)
	assert.Equal(t, 694, result.EntityID)
	assert.Equal(t, "vid1", result.SecondaryID)
	assert.Equal(t, "exact+year", result.Method)
	assert.Equal(t, 1.0, result.Score, "1.0 base + 0.10 year bonus capped at 1.0")
}

func TestMatchNoisyLabelStillLands(t *testing.T) {
	m := newTestMatcher()

	result, ok := m.Match("THE SHINING (1980) Review | Horror Reviews", "vid2", "")
	require.True(t, ok)
	assert.Equal(t, 694, result.EntityID)
	assert.Contains(t, result.Method, "+year")
}

func TestMatchRejectsBelowMinimum(t *testing.T) {
	m := newTestMatcher()
	_, ok := m.Match("Completely Unrelated Documentary", "vid2", "")
	assert.False(t, ok)
}

func TestMatchTrustedChannelBonus(t *testing.T) {
	label := "Conjuring Chronicle"
	title := "The Conjuring Chronicle"
	base := Similarity(label, title)
	require.Greater(t, base, 0.5)
	require.Less(t, base, 1.0)

	// Pin the minimum just above the base score so only the trust
	// bonus clears it.
	cfg := config.MatchConfig{MinScore: base + 0.01, TrustedChannels: []string{"Horror Reviews"}}
	m := NewMatcher(cfg, []core.MatchCandidate{{EntityID: 5, Title: title, Year: 2013}}, nil)

	_, ok := m.Match(label, "a", "Unknown Channel")
	assert.False(t, ok)

	result, ok := m.Match(label, "a", "horror reviews")
	require.True(t, ok, "trust bonus lifts the score past the minimum")
	assert.InDelta(t, base+0.05, result.Score, 1e-9)
}

func TestMatchDeterminism(t *testing.T) {
	m := newTestMatcher()
	first, ok := m.Match("Phantasm (1979) retrospective", "ep1", "pod")
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		again, ok := m.Match("Phantasm (1979) retrospective", "ep1", "pod")
		require.True(t, ok)
		assert.Equal(t, first.Score, again.Score)
		assert.Equal(t, first.Method, again.Method)
		assert.Equal(t, first.EntityID, again.EntityID)
	}
}

func TestSimilarityIsCaseAndPunctuationInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("The Shining!", "the shining"))
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.Greater(t, Similarity("Phantasm II", "Phantasm"), 0.85)
}

func TestMatchVideosDropsUnmatched(t *testing.T) {
	m := newTestMatcher()
	results := m.MatchVideos([]core.Video{
		{VideoID: "v1", Title: "Halloween (1978) explained", ChannelTitle: "c"},
		{VideoID: "v2", Title: "Cooking pasta at home", ChannelTitle: "c"},
	})
	require.Len(t, results, 1)
	assert.Equal(t, 948, results[0].EntityID)
	assert.Equal(t, "v1", results[0].SecondaryID)
}
