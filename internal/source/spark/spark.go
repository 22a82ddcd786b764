// Package spark submits declarative SQL to an external analytics
// gateway and consumes row sets back. The engine's execution is opaque
// to the pipeline; only the query text and result shape live here.
package spark

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/source/httpx"
)

// queryRequest is the gateway submission payload.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse is the gateway's row-set shape.
type queryResponse struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Error   string   `json:"error,omitempty"`
}

// Extractor runs the aggregate-rating query against the gateway.
type Extractor struct {
	cfg        config.SparkConfig
	client     *httpx.Client
	logger     *slog.Logger
	normalizer Normalizer
}

// NewExtractor creates the analytics-boundary extractor.
func NewExtractor(cfg config.SparkConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	hc := httpx.DefaultClientConfig()
	hc.BaseURL = cfg.GatewayURL
	hc.Timeout = 120 * time.Second // analytics queries are slow
	hc.RateLimit = 1.0

	return &Extractor{
		cfg:    cfg,
		client: httpx.NewClient(hc),
		logger: logger.With("component", "spark"),
	}
}

// Name implements the extractor contract.
func (e *Extractor) Name() string { return "spark" }

// Extract submits the rating-statistics query. Gateway unavailability
// or a query-level error is structural: there is no per-item recovery
// for a single failed row set.
func (e *Extractor) Extract(ctx context.Context, params core.ExtractionParams) ([]core.SparkStat, *core.ExtractionResult, error) {
	start := time.Now()
	result := &core.ExtractionResult{Source: e.Name()}

	if e.cfg.GatewayURL == "" {
		return nil, result, &config.MissingKeyError{Key: "SPARK_GATEWAY_URL", Source: "spark"}
	}

	limit := 0
	if params.MaxItems > 0 {
		limit = params.MaxItems
	}
	query := RatingStatsQuery(e.cfg.ViewName, e.cfg.MinVotes, limit)

	resp, err := e.submit(ctx, query)
	if err != nil {
		return nil, result, fmt.Errorf("spark gateway: %w", err)
	}

	stats := make([]core.SparkStat, 0, len(resp.Rows))
	for i, row := range resp.Rows {
		stat, ok := e.normalizer.Normalize(resp.Columns, row)
		if !ok {
			result.AddError(fmt.Errorf("row %d: unusable", i))
			continue
		}
		stats = append(stats, stat)
	}

	result.Success = true
	result.Count = len(stats)
	result.Duration = time.Since(start)
	e.logger.Info("extraction finished", "rows", len(stats), "errors", len(result.Errors))
	return stats, result, nil
}

func (e *Extractor) submit(ctx context.Context, query string) (*queryResponse, error) {
	httpResp, err := e.client.PostJSON(ctx, "/sql", queryRequest{Query: query})
	if err != nil {
		return nil, err
	}
	var resp queryResponse
	if err := httpResp.JSON(&resp); err != nil {
		return nil, fmt.Errorf("decode row set: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("query failed: %s", resp.Error)
	}
	return &resp, nil
}

// Stats exposes the normalizer's outcome counters.
func (e *Extractor) Stats() core.NormalizerStats {
	return e.normalizer.Stats
}
