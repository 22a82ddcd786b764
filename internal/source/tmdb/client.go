package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/source/governor"
	"github.com/screamdb/etl-core/internal/source/httpx"
)

// client wraps the shared HTTP client with the typed endpoints this
// extractor uses. Every call passes the window governor first, so the
// hard 40-per-10s budget holds regardless of retries or pagination.
type client struct {
	http     *httpx.Client
	window   *governor.Window
	language string
}

func newClient(cfg config.TMDBConfig) *client {
	hc := httpx.DefaultClientConfig()
	hc.BaseURL = cfg.BaseURL
	hc.Auth = httpx.QueryAPIKey{Key: cfg.APIKey, Param: "api_key"}
	hc.RateLimit = float64(cfg.RequestsPerPeriod) / cfg.Period.Seconds()

	return &client{
		http:     httpx.NewClient(hc),
		window:   governor.NewWindow(cfg.RequestsPerPeriod, cfg.Period, cfg.MinRequestDelay),
		language: cfg.Language,
	}
}

func (c *client) get(ctx context.Context, path string, query url.Values, target any) error {
	if err := c.window.Acquire(ctx); err != nil {
		return err
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("language", c.language)
	return c.http.GetJSON(ctx, path, query, target)
}

// discoverPager builds a page-number paginator over the discover
// endpoint, filtered by genre and release-year bounds.
func (c *client) discoverPager(cfg config.TMDBConfig, startPage, maxPages int) *httpx.PagePaginator {
	query := url.Values{}
	query.Set("language", c.language)
	query.Set("sort_by", "popularity.desc")
	query.Set("include_adult", "false")
	query.Set("with_genres", strconv.Itoa(cfg.GenreID))
	query.Set("primary_release_date.gte", fmt.Sprintf("%d-01-01", cfg.YearMin))
	query.Set("primary_release_date.lte", fmt.Sprintf("%d-12-31", cfg.YearMax))

	pager := httpx.NewPagePaginator("/discover/movie", query, maxPages)
	pager.Page = startPage
	return pager
}

// doPage executes one prepared page request under the window governor.
func (c *client) doPage(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
	if err := c.window.Acquire(ctx); err != nil {
		return nil, err
	}
	return c.http.Do(ctx, req)
}

// movieFull fetches movie details with keywords appended, a single
// request instead of two.
func (c *client) movieFull(ctx context.Context, id int) (*movieDetail, error) {
	query := url.Values{"append_to_response": {"keywords"}}
	var detail movieDetail
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), query, &detail); err != nil {
		return nil, fmt.Errorf("movie %d: %w", id, err)
	}
	return &detail, nil
}
