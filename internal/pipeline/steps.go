package pipeline

import (
	"context"

	"github.com/screamdb/etl-core/internal/aggregate"
	"github.com/screamdb/etl-core/internal/core"
	"github.com/screamdb/etl-core/internal/match"
	"github.com/screamdb/etl-core/internal/source/imdbpg"
	"github.com/screamdb/etl-core/internal/source/kaggle"
	"github.com/screamdb/etl-core/internal/source/rotten"
	"github.com/screamdb/etl-core/internal/source/spark"
	"github.com/screamdb/etl-core/internal/source/spotify"
	"github.com/screamdb/etl-core/internal/source/tmdb"
	"github.com/screamdb/etl-core/internal/source/youtube"
)

// buildSteps wires the production step table. Extractors are built
// inside the run closures so a skipped or resumed-over source never
// constructs its client.
func (p *Pipeline) buildSteps() []step {
	return []step{
		{
			name:   "tmdb",
			source: true,
			run: func(ctx context.Context, st *state, _ *Report, params core.ExtractionParams) (*core.ExtractionResult, error) {
				ex := tmdb.NewExtractor(p.cfg.TMDB, p.store, p.logger)
				films, res, err := ex.Extract(ctx, params)
				st.films = films
				if res != nil {
					res.Skipped = ex.Stats().Skipped
				}
				return res, err
			},
			snapshot: func(st *state) any { return st.films },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.films)
			},
		},
		{
			name:   "rotten_tomatoes",
			source: true,
			run: func(ctx context.Context, st *state, _ *Report, params core.ExtractionParams) (*core.ExtractionResult, error) {
				en := rotten.NewEnricher(p.cfg.Rotten, p.store, p.logger)
				enrichments, res, err := en.Enrich(ctx, st.films, params)
				st.rotten = enrichments
				return res, err
			},
			snapshot: func(st *state) any { return st.rotten },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.rotten)
			},
		},
		{
			name:   "spotify",
			source: true,
			run: func(ctx context.Context, st *state, _ *Report, params core.ExtractionParams) (*core.ExtractionResult, error) {
				ex := spotify.NewExtractor(p.cfg.Spotify, p.logger)
				episodes, res, err := ex.Extract(ctx, params)
				st.episodes = episodes
				if res != nil {
					res.Skipped = ex.Stats().Skipped
				}
				return res, err
			},
			snapshot: func(st *state) any { return st.episodes },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.episodes)
			},
		},
		{
			name:   "youtube",
			source: true,
			run: func(ctx context.Context, st *state, _ *Report, params core.ExtractionParams) (*core.ExtractionResult, error) {
				ex := youtube.NewExtractor(p.cfg.YouTube, p.logger)
				videos, res, err := ex.Extract(ctx, params)
				st.videos = videos
				if res != nil {
					res.Skipped = ex.Stats().Skipped
				}
				return res, err
			},
			snapshot: func(st *state) any { return st.videos },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.videos)
			},
		},
		{
			name:   "kaggle",
			source: true,
			run: func(ctx context.Context, st *state, _ *Report, params core.ExtractionParams) (*core.ExtractionResult, error) {
				ex := kaggle.NewExtractor(p.cfg.Kaggle, p.logger)
				records, res, err := ex.Extract(ctx, params)
				st.kaggle = records
				if res != nil {
					res.Skipped = ex.Stats().Skipped
				}
				return res, err
			},
			snapshot: func(st *state) any { return st.kaggle },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.kaggle)
			},
		},
		{
			name:   "imdb",
			source: true,
			run: func(ctx context.Context, st *state, _ *Report, params core.ExtractionParams) (*core.ExtractionResult, error) {
				ex := imdbpg.NewExtractor(p.cfg.IMDB, p.logger)
				ratings, res, err := ex.Extract(ctx, params)
				st.imdb = ratings
				if res != nil {
					res.Skipped = ex.Stats().Skipped
				}
				return res, err
			},
			snapshot: func(st *state) any { return st.imdb },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.imdb)
			},
		},
		{
			name:   "spark",
			source: true,
			run: func(ctx context.Context, st *state, _ *Report, params core.ExtractionParams) (*core.ExtractionResult, error) {
				ex := spark.NewExtractor(p.cfg.Spark, p.logger)
				stats, res, err := ex.Extract(ctx, params)
				st.spark = stats
				if res != nil {
					res.Skipped = ex.Stats().Skipped
				}
				return res, err
			},
			snapshot: func(st *state) any { return st.spark },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.spark)
			},
		},
		{
			name: "aggregate",
			run: func(ctx context.Context, st *state, rep *Report, _ core.ExtractionParams) (*core.ExtractionResult, error) {
				merged, mergeStats := aggregate.NewMerger(p.logger).Merge(aggregate.Inputs{
					Films:  st.films,
					Rotten: st.rotten,
					IMDB:   st.imdb,
					Kaggle: st.kaggle,
					Spark:  st.spark,
				})
				deduped, dedupStats := aggregate.NewDeduplicator(p.cfg.Aggregate, p.logger).Dedup(merged)
				scored, scoreStats := aggregate.NewScoreCalculator(p.logger).Calculate(deduped)
				st.films = scored
				rep.Merge = mergeStats
				rep.Dedup = dedupStats
				rep.Score = scoreStats
				return nil, nil
			},
			snapshot: func(st *state) any { return st.films },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.films)
			},
		},
		{
			name: "match",
			run: func(ctx context.Context, st *state, rep *Report, _ core.ExtractionParams) (*core.ExtractionResult, error) {
				candidates := make([]core.MatchCandidate, len(st.films))
				for i := range st.films {
					candidates[i] = core.MatchCandidate{
						EntityID: st.films[i].TMDBID,
						Title:    st.films[i].Title,
						Year:     st.films[i].ReleaseYear(),
					}
				}
				m := match.NewMatcher(p.cfg.Match, candidates, p.logger)
				st.matches = append(m.MatchVideos(st.videos), m.MatchEpisodes(st.episodes)...)
				rep.MatchCount = len(st.matches)
				return nil, nil
			},
			snapshot: func(st *state) any { return st.matches },
			restore: func(st *state, load loadFunc) (bool, error) {
				return load(&st.matches)
			},
		},
	}
}
