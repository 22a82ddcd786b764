package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

// spotifyStub serves a token endpoint, one show, and 3 episodes over
// two pages (limit is capped at 2 by the stub for pagination coverage).
func spotifyStub(t *testing.T) *httptest.Server {
	t.Helper()
	episodes := []map[string]any{
		{"id": "ep1", "name": "Ep 1: The Shining (1980)", "release_date": "2024-01-01", "duration_ms": 3600000},
		{"id": "ep2", "name": "Ep 2: Phantasm", "release_date": "2024-02-01", "duration_ms": 3500000},
		{"id": "ep3", "name": "  ", "release_date": "2024-03-01", "duration_ms": 100},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "tok", "token_type": "Bearer", "expires_in": 3600,
			})
		case "/shows/show1":
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "show1", "name": "Scream Podcast"})
		case "/shows/show1/episodes":
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			end := offset + 2
			if end > len(episodes) {
				end = len(episodes)
			}
			items := episodes[offset:end]
			_ = json.NewEncoder(w).Encode(map[string]any{"total": len(episodes), "items": items})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testConfig(serverURL string) config.SpotifyConfig {
	return config.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     serverURL + "/token",
		BaseURL:      serverURL,
		ShowIDs:      []string{"show1"},
	}
}

func TestExtractPagesThroughEpisodes(t *testing.T) {
	server := spotifyStub(t)
	defer server.Close()
	e := NewExtractor(testConfig(server.URL), nil)

	episodes, result, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.NoError(t, err)
	assert.True(t, result.Success)

	// ep3 has a blank title and is skipped by the normalizer.
	require.Len(t, episodes, 2)
	assert.Equal(t, "ep1", episodes[0].EpisodeID)
	assert.Equal(t, "Scream Podcast", episodes[0].ShowName)
	assert.Equal(t, "2024-01-01", episodes[0].ReleaseDate)
	assert.Equal(t, 1, e.Stats().Skipped)
}

func TestExtractMissingCredentialsIsStructural(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.ClientSecret = ""
	e := NewExtractor(cfg, nil)

	_, _, err := e.Extract(context.Background(), core.ExtractionParams{})
	var missing *config.MissingKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "SPOTIFY_CLIENT_SECRET", missing.Key)
}

func TestExtractRejectedTokenIsStructural(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	e := NewExtractor(cfg, nil)

	_, _, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token endpoint rejected credentials")
}
