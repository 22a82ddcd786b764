package aggregate

import (
	"log/slog"
	"math"

	"github.com/screamdb/etl-core/internal/core"
)

// Per-source weights for the aggregated score. They sum to 1.0 when
// every source is present; with sources missing, the score is
// renormalized over the weights that remain so a sparsely-enriched
// film is not penalized for coverage gaps.
const (
	weightTMDB   = 0.25
	weightRT     = 0.30
	weightIMDB   = 0.30
	weightKaggle = 0.15

	// Tomatometer scores come in on a 0-100 scale.
	rtScaleFactor = 10.0

	maxScore = 10.0
)

// ScoreStats reports per-source coverage and the resulting average.
type ScoreStats struct {
	Films      int     `json:"films"`
	WithTMDB   int     `json:"with_tmdb"`
	WithRT     int     `json:"with_rt"`
	WithIMDB   int     `json:"with_imdb"`
	WithKaggle int     `json:"with_kaggle"`
	AvgScore   float64 `json:"avg_score"`
}

type scoreComponent struct {
	value  float64
	weight float64
}

// ScoreCalculator computes the weighted aggregate score per film.
type ScoreCalculator struct {
	logger *slog.Logger
}

// NewScoreCalculator creates a score calculator.
func NewScoreCalculator(logger *slog.Logger) *ScoreCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreCalculator{logger: logger.With("component", "score")}
}

// Calculate assigns AggregatedScore to every film in place and returns
// the slice with coverage stats. A film with no usable components
// scores 0.
func (c *ScoreCalculator) Calculate(films []core.Film) ([]core.Film, ScoreStats) {
	stats := ScoreStats{Films: len(films)}

	sum := 0.0
	for i := range films {
		score := c.scoreFilm(&films[i], &stats)
		films[i].AggregatedScore = score
		sum += score
	}
	if len(films) > 0 {
		stats.AvgScore = round2(sum / float64(len(films)))
	}

	c.logger.Info("score calculation complete", "films", stats.Films,
		"avg_score", stats.AvgScore, "with_tmdb", stats.WithTMDB,
		"with_rt", stats.WithRT, "with_imdb", stats.WithIMDB,
		"with_kaggle", stats.WithKaggle)
	return films, stats
}

func (c *ScoreCalculator) scoreFilm(film *core.Film, stats *ScoreStats) float64 {
	components := make([]scoreComponent, 0, 4)

	if film.VoteAverage > 0 {
		components = append(components, scoreComponent{film.VoteAverage, weightTMDB})
		stats.WithTMDB++
	}
	if film.TomatometerScore != nil {
		components = append(components, scoreComponent{float64(*film.TomatometerScore) / rtScaleFactor, weightRT})
		stats.WithRT++
	}
	if film.IMDBRating != nil {
		components = append(components, scoreComponent{*film.IMDBRating, weightIMDB})
		stats.WithIMDB++
	}
	if film.KaggleRating != nil {
		components = append(components, scoreComponent{*film.KaggleRating, weightKaggle})
		stats.WithKaggle++
	}

	if len(components) == 0 {
		return 0
	}

	weightedSum := 0.0
	totalWeight := 0.0
	for _, comp := range components {
		weightedSum += comp.value * comp.weight
		totalWeight += comp.weight
	}

	score := weightedSum / totalWeight
	if score > maxScore {
		score = maxScore
	}
	return round2(score)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
