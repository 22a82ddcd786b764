package spark

import (
	"github.com/screamdb/etl-core/internal/core"
)

// Normalizer maps one gateway row to the canonical enrichment record.
// Rows arrive as positional values against a column-name header.
type Normalizer struct {
	Stats core.NormalizerStats
}

// Normalize converts one row. Numeric cells may arrive as float64 (JSON
// numbers) or strings depending on the gateway; both coerce.
func (n *Normalizer) Normalize(columns []string, row []any) (core.SparkStat, bool) {
	cells := make(map[string]any, len(columns))
	for i, col := range columns {
		if i < len(row) {
			cells[col] = row[i]
		}
	}

	title := core.CleanText(asString(cells["title"]))
	if title == "" {
		n.Stats.Skip("missing title")
		return core.SparkStat{}, false
	}

	stat := core.SparkStat{
		Title: title,
		Year:  int(asFloat(cells["year"], 0)),
		Votes: int(asFloat(cells["votes"], 0)),
	}
	if mean := asFloat(cells["mean_rating"], -1); mean >= 0 && mean <= 10 {
		stat.MeanRating = &mean
	}

	n.Stats.Normalized++
	return stat, true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any, def float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		return core.CoerceFloat(t, def)
	default:
		return def
	}
}
