package tmdb

// Raw API payload shapes. Only the fields the normalizer consumes are
// declared; everything else in the response is ignored.

type discoverResponse struct {
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
	Results      []discoverMovie `json:"results"`
}

type discoverMovie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type movieDetail struct {
	ID               int     `json:"id"`
	IMDBID           string  `json:"imdb_id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	ReleaseDate      string  `json:"release_date"`
	Overview         string  `json:"overview"`
	Tagline          string  `json:"tagline"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Runtime          int     `json:"runtime"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult"`
	Status           string  `json:"status"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Homepage         string  `json:"homepage"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`

	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`

	// Populated via append_to_response=keywords.
	Keywords struct {
		Keywords []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"keywords"`
	} `json:"keywords"`
}
