// Package spotify harvests podcast episodes from configured shows. The
// API uses OAuth2 client credentials; the token is refreshed proactively
// inside a 60-second safety margin, never reactively after a 401.
package spotify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/source/httpx"
)

type showResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type episodesResponse struct {
	Total int          `json:"total"`
	Items []rawEpisode `json:"items"`
}

type rawEpisode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	Description string `json:"description"`
	DurationMS  int    `json:"duration_ms"`
}

const episodePageSize = 50

// Extractor pulls every episode of each configured show.
type Extractor struct {
	cfg        config.SpotifyConfig
	client     *httpx.Client
	logger     *slog.Logger
	normalizer Normalizer
}

// NewExtractor creates the podcast-source extractor.
func NewExtractor(cfg config.SpotifyConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	auth := httpx.NewOAuthClientCredentials(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL)

	hc := httpx.DefaultClientConfig()
	hc.BaseURL = cfg.BaseURL
	hc.Auth = auth
	hc.RateLimit = 5.0

	return &Extractor{
		cfg:    cfg,
		client: httpx.NewClient(hc),
		logger: logger.With("component", "spotify"),
	}
}

// Name implements the extractor contract.
func (e *Extractor) Name() string { return "spotify" }

// Extract pages through each show's episodes. Missing credentials or a
// rejected token are structural; a single show failing is an item error.
func (e *Extractor) Extract(ctx context.Context, params core.ExtractionParams) ([]core.Episode, *core.ExtractionResult, error) {
	start := time.Now()
	result := &core.ExtractionResult{Source: e.Name()}

	if e.cfg.ClientID == "" {
		return nil, result, &config.MissingKeyError{Key: "SPOTIFY_CLIENT_ID", Source: "spotify"}
	}
	if e.cfg.ClientSecret == "" {
		return nil, result, &config.MissingKeyError{Key: "SPOTIFY_CLIENT_SECRET", Source: "spotify"}
	}

	var episodes []core.Episode
	for i, showID := range e.cfg.ShowIDs {
		if params.MaxItems > 0 && len(episodes) >= params.MaxItems {
			break
		}
		showEpisodes, err := e.extractShow(ctx, showID, params)
		if err != nil {
			if i == 0 && len(episodes) == 0 && httpx.IsAuthRejected(err) {
				// Credentials rejected outright: nothing downstream can
				// succeed either.
				return nil, result, fmt.Errorf("spotify: %w", err)
			}
			result.AddError(fmt.Errorf("show %s: %w", showID, err))
			continue
		}
		episodes = append(episodes, showEpisodes...)
	}

	result.Success = true
	result.Count = len(episodes)
	result.Duration = time.Since(start)
	e.logger.Info("extraction finished", "episodes", len(episodes), "errors", len(result.Errors))
	return episodes, result, nil
}

func (e *Extractor) extractShow(ctx context.Context, showID string, params core.ExtractionParams) ([]core.Episode, error) {
	var show showResponse
	if err := e.client.GetJSON(ctx, "/shows/"+showID, url.Values{"market": {"US"}}, &show); err != nil {
		return nil, err
	}
	e.logger.Debug("walking show", "show", show.Name)

	pager := httpx.NewOffsetPaginator("/shows/"+showID+"/episodes", url.Values{"market": {"US"}}, episodePageSize)

	var episodes []core.Episode
	for req := pager.FirstPage(); req != nil; {
		resp, err := e.client.Do(ctx, req)
		if err != nil {
			return episodes, err
		}
		var page episodesResponse
		if err := resp.JSON(&page); err != nil {
			return episodes, err
		}
		for i := range page.Items {
			if params.MaxItems > 0 && len(episodes) >= params.MaxItems {
				return episodes, nil
			}
			if ep, ok := e.normalizer.Normalize(&page.Items[i], show.Name); ok {
				episodes = append(episodes, ep)
			}
		}
		if req, err = pager.NextPage(ctx, resp); err != nil {
			return episodes, err
		}
	}
	return episodes, nil
}

// Stats exposes the normalizer's outcome counters.
func (e *Extractor) Stats() core.NormalizerStats {
	return e.normalizer.Stats
}
