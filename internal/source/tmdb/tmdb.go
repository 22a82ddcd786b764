// Package tmdb extracts films from the primary REST source in two
// phases: paged discovery filtered by genre and year bounds, then a
// per-film detail fetch with keywords appended. Page progress is
// checkpointed so a killed run resumes at the last saved page instead
// of re-spending the rate budget.
package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/screamdb/etl-core/internal/checkpoint"
	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/source/httpx"
)

// CheckpointName is the progress checkpoint for an in-flight extraction.
const CheckpointName = "tmdb_extraction"

// progress is the in-flight extraction state persisted every
// CheckpointInterval pages.
type progress struct {
	LastPage int         `json:"last_page"`
	Films    []core.Film `json:"films"`
}

// Extractor pulls films from the discover endpoint and enriches each
// with its detail payload.
type Extractor struct {
	cfg        config.TMDBConfig
	client     *client
	store      *checkpoint.Store
	logger     *slog.Logger
	normalizer Normalizer
}

// NewExtractor creates the primary-source extractor.
func NewExtractor(cfg config.TMDBConfig, store *checkpoint.Store, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		client: newClient(cfg),
		store:  store,
		logger: logger.With("component", "tmdb"),
	}
}

// Name implements the extractor contract.
func (e *Extractor) Name() string { return "tmdb" }

// Extract runs discovery and detail enrichment. A failure on the very
// first discover call is structural; detail failures for individual
// films are recorded and skipped.
func (e *Extractor) Extract(ctx context.Context, params core.ExtractionParams) ([]core.Film, *core.ExtractionResult, error) {
	start := time.Now()
	result := &core.ExtractionResult{Source: e.Name()}

	if e.cfg.APIKey == "" {
		return nil, result, &config.MissingKeyError{Key: "TMDB_API_KEY", Source: "tmdb"}
	}

	films, startPage := e.resumePoint(params)
	seen := make(map[int]bool, len(films))
	for _, f := range films {
		seen[f.TMDBID] = true
	}

	maxPages := e.cfg.MaxPages
	if params.MaxPages > 0 && params.MaxPages < maxPages {
		maxPages = params.MaxPages
	}

	e.logger.Info("extraction starting", "start_page", startPage, "max_pages", maxPages)

	pager := e.client.discoverPager(e.cfg, startPage, maxPages)
	lastDone := startPage - 1
	lastTotal := 0
	complete := true

	var req *httpx.Request
	if startPage <= maxPages {
		req = pager.FirstPage()
	}
	for req != nil {
		page := pager.Page
		resp, err := e.client.doPage(ctx, req)
		if err != nil {
			if page == startPage && len(films) == 0 {
				// Nothing extracted yet: the source is unreachable.
				return nil, result, fmt.Errorf("tmdb: %w", err)
			}
			result.AddError(fmt.Errorf("discover page %d: %w", page, err))
			complete = false
			break
		}
		var dr discoverResponse
		if err := resp.JSON(&dr); err != nil {
			result.AddError(fmt.Errorf("discover page %d: %w", page, err))
			complete = false
			break
		}
		lastTotal = dr.TotalPages

		truncated := false
		for _, m := range dr.Results {
			if params.MaxItems > 0 && len(films) >= params.MaxItems {
				truncated = true
				break
			}
			if m.ID == 0 || seen[m.ID] {
				continue
			}
			film, err := e.fetchFilm(ctx, m.ID)
			if err != nil {
				result.AddError(fmt.Errorf("film %d (%s): %w", m.ID, m.Title, err))
				continue
			}
			if film != nil {
				films = append(films, *film)
				seen[film.TMDBID] = true
			}
		}
		if !truncated {
			lastDone = page
		}

		e.logger.Debug("page done", "page", page, "total_pages", dr.TotalPages, "films", len(films))

		if e.interval() > 0 && page%e.interval() == 0 {
			if err := e.store.Save(CheckpointName, progress{LastPage: lastDone, Films: films}); err != nil {
				result.AddError(err)
			}
		}
		if truncated || (params.MaxItems > 0 && len(films) >= params.MaxItems) {
			complete = false
			break
		}
		if req, err = pager.NextPage(ctx, resp); err != nil {
			result.AddError(fmt.Errorf("discover page %d: %w", page, err))
			complete = false
			break
		}
	}

	// A per-invocation page bound leaves pages unread; the checkpoint
	// then carries the resume point instead of being discarded.
	if params.MaxPages > 0 && lastTotal > lastDone {
		complete = false
	}
	if complete {
		if err := e.store.Delete(CheckpointName); err != nil {
			result.AddError(err)
		}
	} else if err := e.store.Save(CheckpointName, progress{LastPage: lastDone, Films: films}); err != nil {
		result.AddError(err)
	}

	result.Success = true
	result.Count = len(films)
	result.Duration = time.Since(start)
	e.logger.Info("extraction finished", "films", len(films), "errors", len(result.Errors), "duration", result.Duration)
	return films, result, nil
}

// resumePoint returns the films already extracted and the next page to
// fetch, from the explicit resume marker or the progress checkpoint.
func (e *Extractor) resumePoint(params core.ExtractionParams) ([]core.Film, int) {
	if params.ResumeFrom != "" {
		if page, err := strconv.Atoi(params.ResumeFrom); err == nil && page > 0 {
			return nil, page
		}
	}
	var p progress
	if found, _ := e.store.Load(CheckpointName, &p); found && p.LastPage > 0 {
		e.logger.Info("resuming from checkpoint", "last_page", p.LastPage, "films", len(p.Films))
		return p.Films, p.LastPage + 1
	}
	return nil, 1
}

func (e *Extractor) fetchFilm(ctx context.Context, id int) (*core.Film, error) {
	detail, err := e.client.movieFull(ctx, id)
	if err != nil {
		return nil, err
	}
	film, ok := e.normalizer.Normalize(detail)
	if !ok {
		return nil, nil
	}
	if err := core.ValidateFilm(&film); err != nil {
		e.normalizer.Stats.Skip("validation")
		e.logger.Debug("film rejected", "id", id, "error", err)
		return nil, nil
	}
	return &film, nil
}

func (e *Extractor) interval() int {
	return e.cfg.CheckpointInterval
}

// Stats exposes the normalizer's outcome counters.
func (e *Extractor) Stats() core.NormalizerStats {
	return e.normalizer.Stats
}
