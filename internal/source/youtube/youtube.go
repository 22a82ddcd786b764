// Package youtube harvests video metadata from configured channels via
// the channel → uploads playlist → video details traversal, charging
// every call against a daily quota ledger. Quota exhaustion stops the
// extraction early and cleanly: items never attempted are not errors.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/source/governor"
)

// Extractor pulls the upload history of each configured channel.
type Extractor struct {
	cfg        config.YouTubeConfig
	client     *client
	logger     *slog.Logger
	normalizer Normalizer
}

// NewExtractor creates the video-source extractor.
func NewExtractor(cfg config.YouTubeConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		client: newClient(cfg),
		logger: logger.With("component", "youtube"),
	}
}

// Name implements the extractor contract.
func (e *Extractor) Name() string { return "youtube" }

// Extract walks every configured channel's uploads. A missing API key
// is structural; a single channel failing resolution is an item error.
func (e *Extractor) Extract(ctx context.Context, params core.ExtractionParams) ([]core.Video, *core.ExtractionResult, error) {
	start := time.Now()
	result := &core.ExtractionResult{Source: e.Name()}

	if e.cfg.APIKey == "" {
		return nil, result, &config.MissingKeyError{Key: "YOUTUBE_API_KEY", Source: "youtube"}
	}

	maxVideos := e.cfg.MaxVideos
	if params.MaxItems > 0 && params.MaxItems < maxVideos {
		maxVideos = params.MaxItems
	}

	var videos []core.Video
	for _, handle := range e.cfg.ChannelHandles {
		if len(videos) >= maxVideos {
			break
		}
		channelVideos, err := e.extractChannel(ctx, handle, maxVideos-len(videos))
		videos = append(videos, channelVideos...)
		if err != nil {
			if quotaExhausted(err) {
				// Remaining channels were never attempted; that is not
				// an error condition.
				e.logger.Warn("daily quota exhausted, stopping early",
					"quota_used", e.client.ledger.Spent(), "videos", len(videos))
				break
			}
			result.AddError(fmt.Errorf("channel %s: %w", handle, err))
		}
	}

	result.Success = true
	result.Count = len(videos)
	result.Duration = time.Since(start)
	e.logger.Info("extraction finished", "videos", len(videos),
		"quota_used", e.client.ledger.Spent(), "errors", len(result.Errors))
	return videos, result, nil
}

// extractChannel returns up to limit normalized videos from one
// channel, plus any error that ended the traversal early.
func (e *Extractor) extractChannel(ctx context.Context, handle string, limit int) ([]core.Video, error) {
	channelTitle, uploads, err := e.client.resolveChannel(ctx, handle)
	if err != nil {
		return nil, err
	}
	if uploads == "" {
		return nil, fmt.Errorf("channel %s: no uploads playlist", handle)
	}
	e.logger.Debug("walking uploads", "channel", channelTitle, "playlist", uploads)

	var videos []core.Video
	pager := e.client.playlistPager(uploads)
	for req := pager.FirstPage(); req != nil && len(videos) < limit; {
		var page playlistItemsResponse
		resp, err := e.client.doJSON(ctx, costList, req, &page)
		if err != nil {
			return videos, fmt.Errorf("playlist %s: %w", uploads, err)
		}

		ids := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			if item.ContentDetails.VideoID != "" {
				ids = append(ids, item.ContentDetails.VideoID)
			}
		}
		if len(ids) == 0 {
			break
		}
		if remaining := limit - len(videos); len(ids) > remaining {
			ids = ids[:remaining]
		}

		raws, err := e.client.videosBatch(ctx, ids)
		if err != nil {
			return videos, err
		}
		for _, raw := range raws {
			if v, ok := e.normalizer.Normalize(&raw); ok {
				videos = append(videos, v)
			}
		}

		if req, err = pager.NextPage(ctx, resp); err != nil {
			return videos, fmt.Errorf("playlist %s: %w", uploads, err)
		}
	}
	return videos, nil
}

// Stats exposes the normalizer's outcome counters.
func (e *Extractor) Stats() core.NormalizerStats {
	return e.normalizer.Stats
}

// QuotaUsed reports the units consumed during this run.
func (e *Extractor) QuotaUsed() int {
	return e.client.ledger.Spent()
}

func quotaExhausted(err error) bool {
	var exhausted *governor.ErrQuotaExhausted
	return errors.As(err, &exhausted)
}
