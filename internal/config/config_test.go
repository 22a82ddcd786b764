package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 40, cfg.TMDB.RequestsPerPeriod)
	assert.Equal(t, 10*time.Second, cfg.TMDB.Period)
	assert.Equal(t, 3, cfg.Rotten.MaxConcurrent)
	assert.Equal(t, 0.90, cfg.Aggregate.SimilarityThreshold)
	assert.Equal(t, 0.70, cfg.Match.MinScore)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TMDB_MAX_PAGES", "7")
	t.Setenv("TMDB_PERIOD", "2s")
	t.Setenv("YOUTUBE_CHANNEL_HANDLES", "@a, @b ,,@c")
	t.Setenv("DEDUP_SIMILARITY_THRESHOLD", "0.85")

	cfg := Load()
	assert.Equal(t, 7, cfg.TMDB.MaxPages)
	assert.Equal(t, 2*time.Second, cfg.TMDB.Period)
	assert.Equal(t, []string{"@a", "@b", "@c"}, cfg.YouTube.ChannelHandles)
	assert.Equal(t, 0.85, cfg.Aggregate.SimilarityThreshold)
}

func TestValidateNamesMissingKey(t *testing.T) {
	cfg := Load()
	cfg.TMDB.APIKey = ""

	err := cfg.Validate(nil)
	require.Error(t, err)
	var missing *MissingKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "TMDB_API_KEY", missing.Key)
	assert.Contains(t, err.Error(), "TMDB_API_KEY")
}

func TestValidateSkippedSourceNeedsNoKey(t *testing.T) {
	cfg := Load()
	cfg.TMDB.APIKey = "k"
	cfg.YouTube.APIKey = "k"
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	cfg.IMDB.DSN = ""
	cfg.Spark.GatewayURL = ""

	require.Error(t, cfg.Validate([]string{"spark"}))
	require.NoError(t, cfg.Validate([]string{"imdb", "spark"}))
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := Load()
	cfg.TMDB.APIKey = "k"
	cfg.YouTube.APIKey = "k"
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	cfg.IMDB.DSN = "postgres://x"
	cfg.Spark.GatewayURL = "http://spark"

	cfg.Aggregate.SimilarityThreshold = 1.5
	require.Error(t, cfg.Validate(nil))
}
