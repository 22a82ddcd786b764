package core

// =============================================================================
// NORMALIZED SOURCE RECORDS
// One struct per non-primary source, produced by that source's
// normalizer and consumed by the aggregator or matcher. The primary
// source normalizes directly into Film.
// =============================================================================

// RTEnrichment carries scraped review-aggregate fields for one film,
// keyed by the primary identifier of the film that was enriched.
type RTEnrichment struct {
	TMDBID           int    `json:"tmdb_id"`
	TomatometerScore *int   `json:"tomatometer_score,omitempty"`
	TomatometerState string `json:"tomatometer_state,omitempty"`
	AudienceScore    *int   `json:"audience_score,omitempty"`
	CriticsCount     int    `json:"critics_count,omitempty"`
	AudienceCount    int    `json:"audience_count,omitempty"`
	CriticsConsensus string `json:"critics_consensus,omitempty"`
	URL              string `json:"url,omitempty"`
}

// IMDBRating is one rating row from the foreign relational source.
type IMDBRating struct {
	IMDBID string  `json:"imdb_id"`
	Title  string  `json:"title,omitempty"`
	Year   int     `json:"year,omitempty"`
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

// KaggleRecord is one row from the flat-file source.
type KaggleRecord struct {
	Title    string   `json:"title"`
	Year     int      `json:"year,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Overview string   `json:"overview,omitempty"`
}

// SparkStat is one aggregate row from the analytics boundary.
type SparkStat struct {
	Title      string   `json:"title"`
	Year       int      `json:"year,omitempty"`
	MeanRating *float64 `json:"mean_rating,omitempty"`
	Votes      int      `json:"votes,omitempty"`
}

// Video is a harvested secondary media item (trailer, review video)
// whose title is later matched against canonical entities.
type Video struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	ViewCount    int64  `json:"view_count,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Episode is a harvested podcast episode, matched like Video.
type Episode struct {
	EpisodeID   string `json:"episode_id"`
	Title       string `json:"title"`
	ShowName    string `json:"show_name,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	DurationMS  int    `json:"duration_ms,omitempty"`
	Description string `json:"description,omitempty"`
}
