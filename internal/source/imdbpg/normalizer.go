package imdbpg

import (
	"regexp"

	"github.com/screamdb/etl-core/internal/core"
)

var tconstPattern = regexp.MustCompile(`^tt\d{7,8}$`)

// Normalizer maps one ratings row to the canonical enrichment record.
type Normalizer struct {
	Stats core.NormalizerStats
}

// Normalize validates and converts one scanned row. Nullable columns
// arrive as pointers; absent values default.
func (n *Normalizer) Normalize(tconst string, title *string, year *int, rating *float64, votes *int) (core.IMDBRating, bool) {
	if !tconstPattern.MatchString(tconst) {
		n.Stats.Skip("bad identifier")
		return core.IMDBRating{}, false
	}
	if rating == nil || *rating < 0 || *rating > 10 {
		n.Stats.Skip("rating out of range")
		return core.IMDBRating{}, false
	}

	rec := core.IMDBRating{IMDBID: tconst, Rating: *rating}
	if title != nil {
		rec.Title = core.CleanText(*title)
	}
	if year != nil {
		rec.Year = *year
	}
	if votes != nil {
		rec.Votes = *votes
	}

	n.Stats.Normalized++
	return rec, true
}
