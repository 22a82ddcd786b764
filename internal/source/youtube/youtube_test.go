package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

// youtubeStub serves one channel with a two-page uploads playlist.
func youtubeStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{
					"id":      "UC123",
					"snippet": map[string]any{"title": "Horror Reviews"},
					"contentDetails": map[string]any{
						"relatedPlaylists": map[string]any{"uploads": "UU123"},
					},
				}},
			})
		case "/playlistItems":
			if r.URL.Query().Get("pageToken") == "" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"nextPageToken": "PAGE2",
					"items": []map[string]any{
						{"contentDetails": map[string]any{"videoId": "vid1"}},
						{"contentDetails": map[string]any{"videoId": "vid2"}},
					},
				})
			} else {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"items": []map[string]any{
						{"contentDetails": map[string]any{"videoId": "vid3"}},
					},
				})
			}
		case "/videos":
			var items []map[string]any
			for _, id := range splitIDs(r.URL.Query().Get("id")) {
				items = append(items, map[string]any{
					"id": id,
					"snippet": map[string]any{
						"title":        "THE SHINING (1980) Review | Horror Reviews",
						"channelTitle": "Horror Reviews",
						"publishedAt":  "2024-01-01T00:00:00Z",
					},
					"statistics": map[string]any{"viewCount": "1234"},
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func splitIDs(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func testConfig(serverURL string, quota int) config.YouTubeConfig {
	return config.YouTubeConfig{
		APIKey:         "test-key",
		BaseURL:        serverURL,
		ChannelHandles: []string{"@horrorreviews"},
		MaxVideos:      100,
		DailyQuota:     quota,
	}
}

func TestExtractWalksUploads(t *testing.T) {
	server := youtubeStub(t)
	defer server.Close()
	e := NewExtractor(testConfig(server.URL, 10000), nil)

	videos, result, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, videos, 3)
	assert.Equal(t, "vid1", videos[0].VideoID)
	assert.Equal(t, int64(1234), videos[0].ViewCount)

	// channel(1) + 2 playlist pages + 2 video batches, all list cost.
	assert.Equal(t, 5, e.QuotaUsed())
}

func TestExtractStopsEarlyOnQuotaExhaustion(t *testing.T) {
	server := youtubeStub(t)
	defer server.Close()

	// Budget covers the channel lookup, the first playlist page, and
	// the first video batch only.
	e := NewExtractor(testConfig(server.URL, 3), nil)

	videos, result, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, videos, 2)
	assert.Empty(t, result.Errors, "unattempted items must not be error-flagged")
}

func TestExtractFallsBackToSearchForUnresolvedHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			if r.URL.Query().Get("forHandle") != "" {
				_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
				return
			}
			require.Equal(t, "UC999", r.URL.Query().Get("id"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{
					"id":      "UC999",
					"snippet": map[string]any{"title": "Horror Reviews"},
					"contentDetails": map[string]any{
						"relatedPlaylists": map[string]any{"uploads": "UU999"},
					},
				}},
			})
		case "/search":
			require.Equal(t, "channel", r.URL.Query().Get("type"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{"id": map[string]any{"channelId": "UC999"}}},
			})
		case "/playlistItems":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"contentDetails": map[string]any{"videoId": "vid1"}},
				},
			})
		case "/videos":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{
					"id": "vid1",
					"snippet": map[string]any{
						"title":        "THE SHINING (1980) Review",
						"channelTitle": "Horror Reviews",
						"publishedAt":  "2024-01-01T00:00:00Z",
					},
					"statistics": map[string]any{"viewCount": "10"},
				}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	e := NewExtractor(testConfig(server.URL, 10000), nil)

	videos, result, err := e.Extract(context.Background(), core.ExtractionParams{})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, videos, 1)

	// forHandle(1) + search(100) + channel by id(1) + playlist(1) + batch(1).
	assert.Equal(t, 104, e.QuotaUsed())
}

func TestExtractMissingKeyIsStructural(t *testing.T) {
	cfg := testConfig("http://unused", 100)
	cfg.APIKey = ""
	e := NewExtractor(cfg, nil)

	_, _, err := e.Extract(context.Background(), core.ExtractionParams{})
	var missing *config.MissingKeyError
	require.ErrorAs(t, err, &missing)
}

func TestExtractHonorsMaxItems(t *testing.T) {
	server := youtubeStub(t)
	defer server.Close()
	e := NewExtractor(testConfig(server.URL, 10000), nil)

	videos, result, err := e.Extract(context.Background(), core.ExtractionParams{MaxItems: 2})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, videos, 2)
	assert.Equal(t, 2, result.Count)
}
