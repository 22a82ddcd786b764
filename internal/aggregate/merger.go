// Package aggregate reconciles normalized records across sources into
// canonical entities: a priority merge (the primary source supplies
// identity and baseline metadata, enrichment sources never overwrite a
// populated field) followed by duplicate removal.
package aggregate

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/screamdb/etl-core/internal/core"
)

// Inputs bundles every source's normalized output for one merge pass.
type Inputs struct {
	Films  []core.Film
	Rotten []core.RTEnrichment
	IMDB   []core.IMDBRating
	Kaggle []core.KaggleRecord
	Spark  []core.SparkStat
}

// MergeStats counts enrichment applications per source.
type MergeStats struct {
	Films         int `json:"films"`
	RottenApplied int `json:"rotten_applied"`
	IMDBApplied   int `json:"imdb_applied"`
	KaggleApplied int `json:"kaggle_applied"`
	SparkApplied  int `json:"spark_applied"`
}

// Merger applies the priority merge policy.
type Merger struct {
	logger *slog.Logger
}

// NewMerger creates a merger.
func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger.With("component", "merger")}
}

// Merge folds enrichment records into the primary films. Enrichment
// indexes are built once; films never gain or lose identity here.
func (m *Merger) Merge(in Inputs) ([]core.Film, MergeStats) {
	stats := MergeStats{Films: len(in.Films)}

	rtByID := make(map[int]*core.RTEnrichment, len(in.Rotten))
	for i := range in.Rotten {
		rtByID[in.Rotten[i].TMDBID] = &in.Rotten[i]
	}
	imdbByID := make(map[string]*core.IMDBRating, len(in.IMDB))
	imdbByTitle := make(map[string]*core.IMDBRating, len(in.IMDB))
	for i := range in.IMDB {
		imdbByID[in.IMDB[i].IMDBID] = &in.IMDB[i]
		imdbByTitle[titleKey(in.IMDB[i].Title, in.IMDB[i].Year)] = &in.IMDB[i]
	}
	kaggleByTitle := make(map[string]*core.KaggleRecord, len(in.Kaggle))
	for i := range in.Kaggle {
		kaggleByTitle[titleKey(in.Kaggle[i].Title, in.Kaggle[i].Year)] = &in.Kaggle[i]
	}
	sparkByTitle := make(map[string]*core.SparkStat, len(in.Spark))
	for i := range in.Spark {
		sparkByTitle[titleKey(in.Spark[i].Title, in.Spark[i].Year)] = &in.Spark[i]
	}

	out := make([]core.Film, len(in.Films))
	for i, film := range in.Films {
		if rt, ok := rtByID[film.TMDBID]; ok {
			applyRotten(&film, rt)
			stats.RottenApplied++
		}
		if imdb := lookupIMDB(&film, imdbByID, imdbByTitle); imdb != nil {
			applyIMDB(&film, imdb)
			stats.IMDBApplied++
		}
		if k, ok := kaggleByTitle[titleKey(film.Title, film.ReleaseYear())]; ok {
			applyKaggle(&film, k)
			stats.KaggleApplied++
		}
		if s, ok := sparkByTitle[titleKey(film.Title, film.ReleaseYear())]; ok {
			applySpark(&film, s)
			stats.SparkApplied++
		}
		film.EnrichmentCount = len(film.Sources)
		out[i] = film
	}

	m.logger.Info("merge complete", "films", stats.Films,
		"rotten", stats.RottenApplied, "imdb", stats.IMDBApplied,
		"kaggle", stats.KaggleApplied, "spark", stats.SparkApplied)
	return out, stats
}

func lookupIMDB(film *core.Film, byID map[string]*core.IMDBRating, byTitle map[string]*core.IMDBRating) *core.IMDBRating {
	if film.IMDBID != "" {
		return byID[film.IMDBID]
	}
	return byTitle[titleKey(film.Title, film.ReleaseYear())]
}

// applyRotten sets score and consensus fields only when the enrichment
// actually supplies them; a populated field is never overwritten.
func applyRotten(film *core.Film, rt *core.RTEnrichment) {
	if film.TomatometerScore == nil && rt.TomatometerScore != nil {
		film.TomatometerScore = rt.TomatometerScore
		film.TomatometerState = rt.TomatometerState
	}
	if film.AudienceScore == nil && rt.AudienceScore != nil {
		film.AudienceScore = rt.AudienceScore
	}
	if film.CriticsCount == 0 {
		film.CriticsCount = rt.CriticsCount
	}
	if film.AudienceCount == 0 {
		film.AudienceCount = rt.AudienceCount
	}
	if film.CriticsConsensus == "" {
		film.CriticsConsensus = rt.CriticsConsensus
	}
	if film.RTURL == "" {
		film.RTURL = rt.URL
	}
	addSource(film, "rotten_tomatoes")
}

// applyIMDB adds the foreign rating and can backfill a missing IMDb id.
func applyIMDB(film *core.Film, imdb *core.IMDBRating) {
	if film.IMDBRating == nil {
		rating := imdb.Rating
		film.IMDBRating = &rating
	}
	if film.IMDBVotes == 0 {
		film.IMDBVotes = imdb.Votes
	}
	if film.IMDBID == "" {
		film.IMDBID = imdb.IMDBID
	}
	addSource(film, "imdb")
}

// applyKaggle can backfill a missing overview alongside its rating.
func applyKaggle(film *core.Film, k *core.KaggleRecord) {
	if film.KaggleRating == nil && k.Rating != nil {
		film.KaggleRating = k.Rating
	}
	if film.Overview == "" {
		film.Overview = k.Overview
	}
	addSource(film, "kaggle")
}

func applySpark(film *core.Film, s *core.SparkStat) {
	if film.SparkRating == nil && s.MeanRating != nil {
		film.SparkRating = s.MeanRating
	}
	addSource(film, "spark")
}

func addSource(film *core.Film, source string) {
	for _, s := range film.Sources {
		if s == source {
			return
		}
	}
	film.Sources = append(film.Sources, source)
}

// titleKey builds the lowercase title+year index key enrichment
// sources without a shared identifier are matched on.
func titleKey(title string, year int) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strconv.Itoa(year)
}
