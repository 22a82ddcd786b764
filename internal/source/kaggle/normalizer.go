package kaggle

import (
	"github.com/screamdb/etl-core/internal/core"
)

// Normalizer maps one CSV row to the canonical enrichment record.
type Normalizer struct {
	Stats core.NormalizerStats
}

// Normalize converts one row using resolved column indexes. Numeric
// coercion defaults on failure; only a missing title skips the row.
func (n *Normalizer) Normalize(row []string, cols columns) (core.KaggleRecord, bool) {
	title := core.CleanText(field(row, cols.title))
	if title == "" {
		n.Stats.Skip("missing title")
		return core.KaggleRecord{}, false
	}

	rec := core.KaggleRecord{Title: title}

	if cols.date >= 0 {
		_, rec.Year = core.ParseReleaseDate(field(row, cols.date))
	}
	if cols.rating >= 0 {
		if v := core.CoerceFloat(field(row, cols.rating), -1); v >= 0 && v <= 10 {
			rec.Rating = &v
		}
	}
	if cols.overview >= 0 {
		rec.Overview = core.CleanText(field(row, cols.overview))
	}

	n.Stats.Normalized++
	return rec, true
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
