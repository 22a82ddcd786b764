// Package rotten enriches films with review-aggregate scores scraped
// from film pages. Work runs in small bounded batches with an explicit
// pause between batches; unbounded concurrency against a scraped target
// is treated as a correctness violation, not a tuning choice. Progress
// is checkpointed as a processed-ID set so an external kill never
// forces a full re-scrape.
package rotten

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/screamdb/etl-core/internal/checkpoint"
	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/source/httpx"
)

// CheckpointName is the processed-ID progress checkpoint.
const CheckpointName = "rotten_tomatoes_processed"

// progress is the periodically persisted scrape state.
type progress struct {
	ProcessedIDs []int               `json:"processed_ids"`
	Enrichments  []core.RTEnrichment `json:"enrichments"`
}

// Enricher resolves each film to a page URL and extracts its scores.
type Enricher struct {
	cfg    config.RottenConfig
	client *httpx.Client
	store  *checkpoint.Store
	logger *slog.Logger
}

// NewEnricher creates the scraping enricher.
func NewEnricher(cfg config.RottenConfig, store *checkpoint.Store, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	hc := httpx.DefaultClientConfig()
	hc.BaseURL = cfg.BaseURL
	hc.UserAgent = cfg.UserAgent
	// Pace conservatively; the worker pool bounds concurrency.
	hc.RateLimit = 2.0

	return &Enricher{
		cfg:    cfg,
		client: httpx.NewClient(hc),
		store:  store,
		logger: logger.With("component", "rotten"),
	}
}

// Name implements the extractor contract.
func (e *Enricher) Name() string { return "rotten_tomatoes" }

// Enrich scrapes scores for the given films. Individual failures (no
// page found, parse failure) are item errors; the run always completes.
func (e *Enricher) Enrich(ctx context.Context, films []core.Film, params core.ExtractionParams) ([]core.RTEnrichment, *core.ExtractionResult, error) {
	start := time.Now()
	result := &core.ExtractionResult{Source: e.Name()}

	state := e.loadProgress()
	processed := make(map[int]bool, len(state.ProcessedIDs))
	for _, id := range state.ProcessedIDs {
		processed[id] = true
	}

	pending := make([]core.Film, 0, len(films))
	for _, f := range films {
		if !processed[f.TMDBID] {
			pending = append(pending, f)
		}
	}
	truncated := params.MaxItems > 0 && len(pending) > params.MaxItems
	if truncated {
		pending = pending[:params.MaxItems]
	}

	e.logger.Info("enrichment starting", "films", len(films), "pending", len(pending),
		"already_processed", len(films)-len(pending))

	pool, err := ants.NewPool(e.cfg.MaxConcurrent)
	if err != nil {
		return nil, result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	sinceSave := 0

	for batchStart := 0; batchStart < len(pending); batchStart += e.cfg.BatchSize {
		if ctx.Err() != nil {
			break
		}
		batchEnd := batchStart + e.cfg.BatchSize
		if batchEnd > len(pending) {
			batchEnd = len(pending)
		}

		var wg sync.WaitGroup
		for _, film := range pending[batchStart:batchEnd] {
			film := film
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				enrichment, err := e.enrichOne(ctx, film)

				mu.Lock()
				defer mu.Unlock()
				state.ProcessedIDs = append(state.ProcessedIDs, film.TMDBID)
				sinceSave++
				if err != nil {
					result.AddError(fmt.Errorf("%s (%d): %w", film.Title, film.TMDBID, err))
					return
				}
				if enrichment != nil {
					state.Enrichments = append(state.Enrichments, *enrichment)
				}
			}); err != nil {
				wg.Done()
				result.AddError(fmt.Errorf("submit %d: %w", film.TMDBID, err))
			}
		}
		wg.Wait()

		if sinceSave >= e.cfg.ProgressInterval {
			if err := e.store.Save(CheckpointName, state); err != nil {
				result.AddError(err)
			}
			sinceSave = 0
		}

		if batchEnd < len(pending) {
			select {
			case <-ctx.Done():
			case <-time.After(e.cfg.BatchPause):
			}
		}
	}

	// The processed-ID set outlives the run whenever work remains: a
	// canceled or item-bounded invocation must resume, not re-scrape.
	if truncated || ctx.Err() != nil {
		if err := e.store.Save(CheckpointName, state); err != nil {
			result.AddError(err)
		}
	} else if err := e.store.Delete(CheckpointName); err != nil {
		result.AddError(err)
	}

	result.Success = true
	result.Count = len(state.Enrichments)
	result.Duration = time.Since(start)
	e.logger.Info("enrichment finished", "enriched", result.Count,
		"errors", len(result.Errors), "duration", result.Duration)
	return state.Enrichments, result, nil
}

func (e *Enricher) loadProgress() *progress {
	var p progress
	if found, _ := e.store.Load(CheckpointName, &p); found {
		e.logger.Info("resuming from checkpoint", "processed", len(p.ProcessedIDs), "enriched", len(p.Enrichments))
	}
	return &p
}

// enrichOne resolves the film's page and parses it. A nil, nil return
// means no page exists for any candidate URL; that is not an error.
func (e *Enricher) enrichOne(ctx context.Context, film core.Film) (*core.RTEnrichment, error) {
	path, found, err := e.resolveURL(ctx, film)
	if err != nil {
		return nil, err
	}
	if !found {
		e.logger.Debug("no page found", "title", film.Title, "year", film.ReleaseYear())
		return nil, nil
	}

	resp, err := e.client.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	enrichment := parsePage(film.TMDBID, e.cfg.BaseURL+path, resp.Body)
	if enrichment.TomatometerScore == nil && enrichment.AudienceScore == nil && enrichment.CriticsConsensus == "" {
		return nil, nil
	}
	e.logger.Debug("enriched", "title", film.Title, "path", path)
	return &enrichment, nil
}

// resolveURL probes candidate URLs in confidence order and returns the
// first that exists. The probe is a HEAD request, distinct from the
// full fetch, so 404-equivalents cost no parsing.
func (e *Enricher) resolveURL(ctx context.Context, film core.Film) (string, bool, error) {
	candidates := URLCandidates(film.Title, film.OriginalTitle, film.ReleaseYear())
	for _, path := range candidates {
		status, err := e.client.Head(ctx, path)
		if err != nil {
			return "", false, fmt.Errorf("probe %s: %w", path, err)
		}
		if status == http.StatusOK {
			return path, true, nil
		}
	}
	return "", false, nil
}
