package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/source/governor"
	"github.com/screamdb/etl-core/internal/source/httpx"
)

// Per-endpoint quota costs. The search endpoint is two orders of
// magnitude more expensive than list calls and is used only as a
// fallback.
const (
	costList   = 1
	costSearch = 100
)

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []rawVideo `json:"items"`
}

type rawVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
		Description  string `json:"description"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

// client wraps the shared HTTP client with quota accounting. Every
// call debits the ledger before any network traffic; an exhausted
// budget surfaces as governor.ErrQuotaExhausted.
type client struct {
	http   *httpx.Client
	ledger *governor.Ledger
}

func newClient(cfg config.YouTubeConfig) *client {
	hc := httpx.DefaultClientConfig()
	hc.BaseURL = cfg.BaseURL
	hc.Auth = httpx.QueryAPIKey{Key: cfg.APIKey, Param: "key"}
	hc.RateLimit = 5.0

	return &client{
		http:   httpx.NewClient(hc),
		ledger: governor.NewLedger(cfg.DailyQuota),
	}
}

func (c *client) get(ctx context.Context, cost int, path string, query url.Values, target any) error {
	if err := c.ledger.Spend(cost); err != nil {
		return err
	}
	return c.http.GetJSON(ctx, path, query, target)
}

var errChannelNotFound = errors.New("channel not found")

func (c *client) channelQuery(ctx context.Context, query url.Values) (title, uploads string, err error) {
	query.Set("part", "snippet,contentDetails")
	var resp channelsResponse
	if err := c.get(ctx, costList, "/channels", query, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Items) == 0 {
		return "", "", errChannelNotFound
	}
	item := resp.Items[0]
	return item.Snippet.Title, item.ContentDetails.RelatedPlaylists.Uploads, nil
}

// resolveChannel resolves a handle to its title and uploads playlist.
// When the handle does not resolve directly it falls back to the
// search endpoint, 100 units instead of 1, so the fallback runs at
// most once per channel.
func (c *client) resolveChannel(ctx context.Context, handle string) (title, uploads string, err error) {
	title, uploads, err = c.channelQuery(ctx, url.Values{"forHandle": {strings.TrimPrefix(handle, "@")}})
	if err == nil {
		return title, uploads, nil
	}
	if !errors.Is(err, errChannelNotFound) {
		return "", "", fmt.Errorf("channel %s: %w", handle, err)
	}

	id, err := c.searchChannel(ctx, handle)
	if err != nil {
		return "", "", fmt.Errorf("channel %s: %w", handle, err)
	}
	title, uploads, err = c.channelQuery(ctx, url.Values{"id": {id}})
	if err != nil {
		return "", "", fmt.Errorf("channel %s (id %s): %w", handle, id, err)
	}
	return title, uploads, nil
}

// searchChannel resolves a channel by free-text search.
func (c *client) searchChannel(ctx context.Context, name string) (string, error) {
	query := url.Values{
		"part":       {"snippet"},
		"type":       {"channel"},
		"q":          {strings.TrimPrefix(name, "@")},
		"maxResults": {"1"},
	}
	var resp searchResponse
	if err := c.get(ctx, costSearch, "/search", query, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 || resp.Items[0].ID.ChannelID == "" {
		return "", errChannelNotFound
	}
	return resp.Items[0].ID.ChannelID, nil
}

// playlistPager builds a continuation-token paginator over the items
// of one uploads playlist.
func (c *client) playlistPager(playlistID string) *httpx.TokenPaginator {
	return httpx.NewTokenPaginator("/playlistItems", url.Values{
		"part":       {"contentDetails"},
		"playlistId": {playlistID},
		"maxResults": {"50"},
	})
}

// doJSON executes one prepared request, debiting the ledger first.
func (c *client) doJSON(ctx context.Context, cost int, req *httpx.Request, target any) (*httpx.Response, error) {
	if err := c.ledger.Spend(cost); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp, resp.JSON(target)
}

// videosBatch fetches details for up to 50 videos in one list call.
func (c *client) videosBatch(ctx context.Context, ids []string) ([]rawVideo, error) {
	query := url.Values{
		"part": {"snippet,statistics"},
		"id":   {strings.Join(ids, ",")},
	}
	var resp videosResponse
	if err := c.get(ctx, costList, "/videos", query, &resp); err != nil {
		return nil, fmt.Errorf("videos batch: %w", err)
	}
	return resp.Items, nil
}
