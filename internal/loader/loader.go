// Package loader defines the downstream boundary the pipeline hands
// its canonical output to. The production loader (database upserts,
// association writes) lives outside this module; the contract and a
// counting stub live here so runs can complete end to end without it.
package loader

import (
	"context"
	"log/slog"

	"github.com/screamdb/etl-core/internal/core"
)

// LoadStats reports what the loader did with the handed-off records.
type LoadStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Loader accepts the canonical record set and the secondary-source
// match results produced by one run. Records are immutable once handed
// over; implementations must not mutate them.
type Loader interface {
	Load(ctx context.Context, films []core.Film, matches []core.MatchResult) (LoadStats, error)
}

// CountingLoader is the stub implementation: it counts every record as
// an insert and loads nothing.
type CountingLoader struct {
	logger *slog.Logger
}

// NewCountingLoader creates the stub loader.
func NewCountingLoader(logger *slog.Logger) *CountingLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CountingLoader{logger: logger.With("component", "loader")}
}

// Load counts the handed-off records without persisting them.
func (l *CountingLoader) Load(ctx context.Context, films []core.Film, matches []core.MatchResult) (LoadStats, error) {
	stats := LoadStats{Inserted: len(films)}
	l.logger.Info("load complete", "films", len(films), "matches", len(matches))
	return stats, nil
}
