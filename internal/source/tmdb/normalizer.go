package tmdb

import (
	"github.com/screamdb/etl-core/internal/core"
)

// Normalizer maps raw movie details into the canonical record. It is a
// pure per-record transformation; the only state is outcome counters.
type Normalizer struct {
	Stats core.NormalizerStats
}

// Normalize converts one raw detail payload. It returns false (and
// counts the reason) when a required field is missing; it never fails
// on malformed optional fields.
func (n *Normalizer) Normalize(raw *movieDetail) (core.Film, bool) {
	if raw.ID <= 0 {
		n.Stats.Skip("missing id")
		return core.Film{}, false
	}
	title := core.CleanText(raw.Title)
	if title == "" {
		n.Stats.Skip("missing title")
		return core.Film{}, false
	}

	date, year := core.ParseReleaseDate(raw.ReleaseDate)

	film := core.Film{
		TMDBID:           raw.ID,
		IMDBID:           core.CleanText(raw.IMDBID),
		Title:            title,
		OriginalTitle:    core.CleanText(raw.OriginalTitle),
		ReleaseDate:      date,
		Year:             year,
		Overview:         core.CleanText(raw.Overview),
		Tagline:          core.CleanText(raw.Tagline),
		Popularity:       raw.Popularity,
		VoteAverage:      clampFloat(raw.VoteAverage, 0, 10),
		VoteCount:        raw.VoteCount,
		Runtime:          raw.Runtime,
		OriginalLanguage: raw.OriginalLanguage,
		Adult:            raw.Adult,
		Status:           raw.Status,
		PosterPath:       raw.PosterPath,
		BackdropPath:     raw.BackdropPath,
		Homepage:         core.CleanText(raw.Homepage),
		Budget:           maxInt64(raw.Budget, 0),
		Revenue:          maxInt64(raw.Revenue, 0),
		Sources:          []string{"tmdb"},
		EnrichmentCount:  1,
	}

	for _, g := range raw.Genres {
		if name := core.CleanText(g.Name); name != "" {
			film.Genres = append(film.Genres, name)
		}
	}
	for _, k := range raw.Keywords.Keywords {
		if name := core.CleanText(k.Name); name != "" {
			film.Keywords = append(film.Keywords, name)
		}
	}

	n.Stats.Normalized++
	return film, true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
