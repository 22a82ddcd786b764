package youtube

import (
	"github.com/screamdb/etl-core/internal/core"
)

// Normalizer maps raw video payloads to the canonical secondary-media
// record.
type Normalizer struct {
	Stats core.NormalizerStats
}

// Normalize converts one raw video. Videos without an id or a usable
// title are skipped with a counted reason.
func (n *Normalizer) Normalize(raw *rawVideo) (core.Video, bool) {
	if raw.ID == "" {
		n.Stats.Skip("missing id")
		return core.Video{}, false
	}
	title := core.CleanText(raw.Snippet.Title)
	if title == "" {
		n.Stats.Skip("missing title")
		return core.Video{}, false
	}

	n.Stats.Normalized++
	return core.Video{
		VideoID:      raw.ID,
		Title:        title,
		ChannelTitle: core.CleanText(raw.Snippet.ChannelTitle),
		PublishedAt:  raw.Snippet.PublishedAt,
		ViewCount:    int64(core.CoerceInt(raw.Statistics.ViewCount, 0)),
		Description:  core.CleanText(raw.Snippet.Description),
	}, true
}
