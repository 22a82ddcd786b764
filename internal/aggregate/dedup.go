package aggregate

import (
	"log/slog"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/match"
)

// DedupStats reports detection counts per stage. Invalid counts schema
// rejections, which are tracked separately from duplicate drops.
type DedupStats struct {
	Input       int `json:"input"`
	Kept        int `json:"kept"`
	ByPrimaryID int `json:"by_primary_id"`
	ByAltID     int `json:"by_alt_id"`
	ByFuzzy     int `json:"by_fuzzy"`
	Invalid     int `json:"invalid"`
}

// Dropped returns the total number of duplicate drops.
func (s DedupStats) Dropped() int {
	return s.ByPrimaryID + s.ByAltID + s.ByFuzzy
}

// Deduplicator removes records representing the same real-world film.
// Detection runs in three stages: primary identifier, exact alternate
// identifier, then fuzzy title similarity combined with a release-year
// tolerance. The similarity and year thresholds are heuristics, kept
// configurable rather than promoted to constants.
type Deduplicator struct {
	similarityThreshold float64
	yearTolerance       int
	logger              *slog.Logger
}

// NewDeduplicator creates a deduplicator with the configured thresholds.
func NewDeduplicator(cfg config.AggregateConfig, logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{
		similarityThreshold: cfg.SimilarityThreshold,
		yearTolerance:       cfg.YearTolerance,
		logger:              logger.With("component", "dedup"),
	}
}

// Dedup runs a single linear scan over the films. Records enter the
// seen set only after passing schema validation; applying Dedup to an
// already-deduplicated set removes nothing.
func (d *Deduplicator) Dedup(films []core.Film) ([]core.Film, DedupStats) {
	stats := DedupStats{Input: len(films)}

	seenPrimary := make(map[int]bool, len(films))
	seenAlt := make(map[string]bool, len(films))
	kept := make([]core.Film, 0, len(films))

	for _, film := range films {
		if err := core.ValidateFilm(&film); err != nil {
			stats.Invalid++
			d.logger.Debug("record rejected", "tmdb_id", film.TMDBID, "error", err)
			continue
		}

		switch {
		case seenPrimary[film.TMDBID]:
			stats.ByPrimaryID++
			continue
		case film.IMDBID != "" && seenAlt[film.IMDBID]:
			stats.ByAltID++
			continue
		case d.fuzzyDuplicate(&film, kept):
			stats.ByFuzzy++
			continue
		}

		seenPrimary[film.TMDBID] = true
		if film.IMDBID != "" {
			seenAlt[film.IMDBID] = true
		}
		kept = append(kept, film)
	}

	stats.Kept = len(kept)
	d.logger.Info("dedup complete", "input", stats.Input, "kept", stats.Kept,
		"by_primary_id", stats.ByPrimaryID, "by_alt_id", stats.ByAltID,
		"by_fuzzy", stats.ByFuzzy, "invalid", stats.Invalid)
	return kept, stats
}

// fuzzyDuplicate reports whether the film's title is near-identical to
// a kept record released within the year tolerance. Both years must be
// known: title similarity alone cannot distinguish a remake from its
// original, so a record without a year is never fuzzy-dropped.
func (d *Deduplicator) fuzzyDuplicate(film *core.Film, kept []core.Film) bool {
	year := film.ReleaseYear()
	if year == 0 {
		return false
	}
	for i := range kept {
		other := kept[i].ReleaseYear()
		if other == 0 || abs(year-other) > d.yearTolerance {
			continue
		}
		if match.Similarity(film.Title, kept[i].Title) >= d.similarityThreshold {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
