package core

import "time"

// =============================================================================
// EXTRACTION CONTRACT
// These types define the uniform contract between extractors and the
// orchestrator, regardless of source type.
// =============================================================================

// ExtractionParams bounds a single extractor invocation. All fields are
// optional; zero values mean "no bound". Extractors must be safely
// re-invokable with a narrower scope (e.g. a resume marker) without
// re-fetching work already done.
type ExtractionParams struct {
	// MaxPages limits paginated sources to this many pages.
	MaxPages int

	// MaxItems limits the total number of items extracted.
	MaxItems int

	// ResumeFrom is an opaque resume marker (page number, processed-ID
	// set reference) loaded from a progress checkpoint.
	ResumeFrom string
}

// ExtractionResult is the uniform result every extractor returns.
// Item-level failures are recorded in Errors and never abort the
// extraction; a structural failure is reported as Success=false.
type ExtractionResult struct {
	Source   string        `json:"source"`
	Success  bool          `json:"success"`
	Count    int           `json:"count"`
	Skipped  int           `json:"skipped,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// AddError records an item-level error, keeping extraction going.
func (r *ExtractionResult) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// =============================================================================
// CANONICAL RECORD
// =============================================================================

// Film is the canonical, merged representation of one film after
// cross-source reconciliation. TMDBID is the stable primary identifier
// and is unique within one run's output. Enrichment fields use pointer
// types so that "absent" is distinguishable from a legitimate zero.
// A Film is immutable once yielded to the loader boundary.
type Film struct {
	TMDBID int    `json:"tmdb_id"`
	IMDBID string `json:"imdb_id,omitempty"`

	Title         string `json:"title"`
	OriginalTitle string `json:"original_title,omitempty"`
	ReleaseDate   string `json:"release_date,omitempty"`
	Year          int    `json:"year,omitempty"`

	Overview string `json:"overview,omitempty"`
	Tagline  string `json:"tagline,omitempty"`

	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`

	Runtime          int    `json:"runtime,omitempty"`
	OriginalLanguage string `json:"original_language,omitempty"`
	Adult            bool   `json:"adult"`
	Status           string `json:"status,omitempty"`

	PosterPath   string `json:"poster_path,omitempty"`
	BackdropPath string `json:"backdrop_path,omitempty"`
	Homepage     string `json:"homepage,omitempty"`

	Budget  int64 `json:"budget"`
	Revenue int64 `json:"revenue"`

	Genres   []string `json:"genres,omitempty"`
	Keywords []string `json:"keywords,omitempty"`

	// Rotten Tomatoes enrichment.
	TomatometerScore *int   `json:"tomatometer_score,omitempty"`
	TomatometerState string `json:"tomatometer_state,omitempty"`
	AudienceScore    *int   `json:"audience_score,omitempty"`
	CriticsCount     int    `json:"critics_count,omitempty"`
	AudienceCount    int    `json:"audience_count,omitempty"`
	CriticsConsensus string `json:"critics_consensus,omitempty"`
	RTURL            string `json:"rt_url,omitempty"`

	// IMDb enrichment.
	IMDBRating *float64 `json:"imdb_rating,omitempty"`
	IMDBVotes  int      `json:"imdb_votes,omitempty"`

	// Flat-file and analytics enrichment.
	KaggleRating *float64 `json:"kaggle_rating,omitempty"`
	SparkRating  *float64 `json:"spark_rating,omitempty"`

	// AggregatedScore is the weighted cross-source score on a 0-10
	// scale, renormalized over whichever sources are present.
	AggregatedScore float64 `json:"aggregated_score"`

	// Sources lists every source that contributed to this record, in
	// merge order. EnrichmentCount == len(Sources).
	Sources         []string `json:"sources"`
	EnrichmentCount int      `json:"enrichment_count"`
}

// ReleaseYear returns Year, falling back to the leading 4 digits of
// ReleaseDate.
func (f *Film) ReleaseYear() int {
	if f.Year != 0 {
		return f.Year
	}
	if len(f.ReleaseDate) >= 4 {
		y := 0
		for _, c := range f.ReleaseDate[:4] {
			if c < '0' || c > '9' {
				return 0
			}
			y = y*10 + int(c-'0')
		}
		return y
	}
	return 0
}

// =============================================================================
// ENTITY MATCHING
// =============================================================================

// MatchCandidate is one canonical entity offered to the matcher.
type MatchCandidate struct {
	EntityID int    `json:"entity_id"`
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
}

// MatchResult links a secondary-source record to a canonical entity.
// Method records the score band and bonus path that produced the
// accepted match ("exact", "high-confidence", "fuzzy", optionally
// suffixed "+year").
type MatchResult struct {
	EntityID    int     `json:"entity_id"`
	SecondaryID string  `json:"secondary_id"`
	Score       float64 `json:"score"`
	Method      string  `json:"method"`
}
