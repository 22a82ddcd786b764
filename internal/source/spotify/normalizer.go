package spotify

import (
	"github.com/screamdb/etl-core/internal/core"
)

// Normalizer maps raw episode payloads to the canonical
// secondary-media record.
type Normalizer struct {
	Stats core.NormalizerStats
}

// Normalize converts one raw episode, tagging it with its show name.
func (n *Normalizer) Normalize(raw *rawEpisode, showName string) (core.Episode, bool) {
	if raw.ID == "" {
		n.Stats.Skip("missing id")
		return core.Episode{}, false
	}
	title := core.CleanText(raw.Name)
	if title == "" {
		n.Stats.Skip("missing title")
		return core.Episode{}, false
	}

	date, _ := core.ParseReleaseDate(raw.ReleaseDate)

	n.Stats.Normalized++
	return core.Episode{
		EpisodeID:   raw.ID,
		Title:       title,
		ShowName:    core.CleanText(showName),
		ReleaseDate: date,
		DurationMS:  raw.DurationMS,
		Description: core.CleanText(raw.Description),
	}, true
}
