// Package imdbpg extracts ratings from a foreign PostgreSQL database
// holding the public IMDb datasets. The database is read-only to this
// pipeline; an unreachable server is a structural failure.
package imdbpg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

const ratingsQuery = `
SELECT b.tconst, b.primary_title, b.start_year, r.average_rating, r.num_votes
FROM title_basics b
JOIN title_ratings r ON r.tconst = b.tconst
WHERE b.title_type = 'movie'
  AND b.genres ILIKE '%Horror%'
ORDER BY r.num_votes DESC
LIMIT $1`

// rows is the subset of pgx.Rows the extractor consumes.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// store abstracts the connection pool for tests.
type store interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (rows, error)
	Close()
}

// poolStore adapts pgxpool.Pool to the store interface.
type poolStore struct {
	pool *pgxpool.Pool
}

func (p *poolStore) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }
func (p *poolStore) Close()                         { p.pool.Close() }

func (p *poolStore) Query(ctx context.Context, sql string, args ...any) (rows, error) {
	r, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Extractor reads rating rows from the foreign database.
type Extractor struct {
	cfg        config.IMDBConfig
	logger     *slog.Logger
	normalizer Normalizer

	// connect is swapped by tests to inject a fake store.
	connect func(ctx context.Context, dsn string) (store, error)
}

// NewExtractor creates the foreign-database extractor.
func NewExtractor(cfg config.IMDBConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:     cfg,
		logger:  logger.With("component", "imdb"),
		connect: connectPool,
	}
}

func connectPool(ctx context.Context, dsn string) (store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &poolStore{pool: pool}, nil
}

// Name implements the extractor contract.
func (e *Extractor) Name() string { return "imdb" }

// Extract connects, pings, and streams rating rows. Connection and
// ping failures are structural; a bad row is an item error.
func (e *Extractor) Extract(ctx context.Context, params core.ExtractionParams) ([]core.IMDBRating, *core.ExtractionResult, error) {
	start := time.Now()
	result := &core.ExtractionResult{Source: e.Name()}

	if e.cfg.DSN == "" {
		return nil, result, &config.MissingKeyError{Key: "IMDB_POSTGRES_DSN", Source: "imdb"}
	}

	db, err := e.connect(ctx, e.cfg.DSN)
	if err != nil {
		return nil, result, fmt.Errorf("connect imdb database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return nil, result, fmt.Errorf("imdb database unreachable: %w", err)
	}

	limit := e.cfg.MaxFilms
	if params.MaxItems > 0 && params.MaxItems < limit {
		limit = params.MaxItems
	}

	r, err := db.Query(ctx, ratingsQuery, limit)
	if err != nil {
		return nil, result, fmt.Errorf("query ratings: %w", err)
	}
	defer r.Close()

	var ratings []core.IMDBRating
	for r.Next() {
		var (
			tconst string
			title  *string
			year   *int
			rating *float64
			votes  *int
		)
		if err := r.Scan(&tconst, &title, &year, &rating, &votes); err != nil {
			result.AddError(fmt.Errorf("scan row: %w", err))
			continue
		}
		if rec, ok := e.normalizer.Normalize(tconst, title, year, rating, votes); ok {
			ratings = append(ratings, rec)
		}
	}
	if err := r.Err(); err != nil {
		return nil, result, fmt.Errorf("read ratings: %w", err)
	}

	result.Success = true
	result.Count = len(ratings)
	result.Duration = time.Since(start)
	e.logger.Info("extraction finished", "ratings", len(ratings),
		"skipped", e.normalizer.Stats.Skipped, "errors", len(result.Errors))
	return ratings, result, nil
}

// Stats exposes the normalizer's outcome counters.
func (e *Extractor) Stats() core.NormalizerStats {
	return e.normalizer.Stats
}
