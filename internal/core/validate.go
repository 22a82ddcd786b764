package core

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// DECLARATIVE VALIDATION
// Constraints reject a record outright rather than coercing it; the
// caller counts rejections separately from dedup drops.
// =============================================================================

var imdbIDPattern = regexp.MustCompile(`^tt\d{7,8}$`)

// Constraint is one declarative rule applied to a canonical film.
type Constraint struct {
	Field string
	Check func(*Film) error
}

// FilmConstraints is the constraint set applied to every canonical
// record before it enters the deduplicated output. Ranges mirror the
// storage schema the loader targets.
var FilmConstraints = []Constraint{
	{"tmdb_id", func(f *Film) error {
		if f.TMDBID <= 0 {
			return fmt.Errorf("tmdb_id must be positive, got %d", f.TMDBID)
		}
		return nil
	}},
	{"imdb_id", func(f *Film) error {
		if f.IMDBID != "" && !imdbIDPattern.MatchString(f.IMDBID) {
			return fmt.Errorf("imdb_id %q does not match tt pattern", f.IMDBID)
		}
		return nil
	}},
	{"title", func(f *Film) error {
		if strings.TrimSpace(f.Title) == "" {
			return fmt.Errorf("title is required")
		}
		if len(f.Title) > 500 {
			return fmt.Errorf("title exceeds 500 characters")
		}
		return nil
	}},
	{"overview", func(f *Film) error {
		if len(f.Overview) > 5000 {
			return fmt.Errorf("overview exceeds 5000 characters")
		}
		return nil
	}},
	{"vote_average", func(f *Film) error {
		if f.VoteAverage < 0 || f.VoteAverage > 10 {
			return fmt.Errorf("vote_average %.2f outside [0,10]", f.VoteAverage)
		}
		return nil
	}},
	{"vote_count", func(f *Film) error {
		if f.VoteCount < 0 {
			return fmt.Errorf("vote_count must not be negative")
		}
		return nil
	}},
	{"year", func(f *Film) error {
		if y := f.ReleaseYear(); y != 0 && (y < 1888 || y > 2030) {
			return fmt.Errorf("year %d outside plausible range [1888,2030]", y)
		}
		return nil
	}},
	{"runtime", func(f *Film) error {
		if f.Runtime != 0 && (f.Runtime < 1 || f.Runtime > 1000) {
			return fmt.Errorf("runtime %d outside [1,1000]", f.Runtime)
		}
		return nil
	}},
	{"tomatometer_score", func(f *Film) error {
		if f.TomatometerScore != nil && (*f.TomatometerScore < 0 || *f.TomatometerScore > 100) {
			return fmt.Errorf("tomatometer_score %d outside [0,100]", *f.TomatometerScore)
		}
		return nil
	}},
	{"audience_score", func(f *Film) error {
		if f.AudienceScore != nil && (*f.AudienceScore < 0 || *f.AudienceScore > 100) {
			return fmt.Errorf("audience_score %d outside [0,100]", *f.AudienceScore)
		}
		return nil
	}},
	{"imdb_rating", func(f *Film) error {
		if f.IMDBRating != nil && (*f.IMDBRating < 0 || *f.IMDBRating > 10) {
			return fmt.Errorf("imdb_rating %.2f outside [0,10]", *f.IMDBRating)
		}
		return nil
	}},
	{"budget", func(f *Film) error {
		if f.Budget < 0 || f.Revenue < 0 {
			return fmt.Errorf("budget/revenue must not be negative")
		}
		return nil
	}},
}

// ValidationError reports the first constraint a record violated.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateFilm applies FilmConstraints in order and returns the first
// violation, or nil if the record is acceptable.
func ValidateFilm(f *Film) error {
	for _, c := range FilmConstraints {
		if err := c.Check(f); err != nil {
			return &ValidationError{Field: c.Field, Err: err}
		}
	}
	return nil
}
