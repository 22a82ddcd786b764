// Package match links free-text secondary labels (video titles,
// episode names) to canonical entities by fuzzy similarity plus
// contextual bonuses. Matching is deterministic: identical label and
// candidate set always produce the same score and method.
package match

import (
	"log/slog"
	"strings"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

// floorCutoff is the minimum base similarity a candidate needs before
// bonuses are even considered.
const floorCutoff = 0.50

// Score bands for the method label.
const (
	exactBand          = 0.95
	highConfidenceBand = 0.85
)

// Bonuses added to the base similarity.
const (
	yearBonus    = 0.10
	trustedBonus = 0.05
)

// Matcher scores labels against a fixed candidate set.
type Matcher struct {
	minScore   float64
	trusted    map[string]bool
	candidates []core.MatchCandidate
	logger     *slog.Logger
}

// NewMatcher creates a matcher over the given canonical candidates.
func NewMatcher(cfg config.MatchConfig, candidates []core.MatchCandidate, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	trusted := make(map[string]bool, len(cfg.TrustedChannels))
	for _, c := range cfg.TrustedChannels {
		trusted[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return &Matcher{
		minScore:   cfg.MinScore,
		trusted:    trusted,
		candidates: candidates,
		logger:     logger.With("component", "matcher"),
	}
}

// Match links one label to the best candidate, or reports no match.
// The method label records the score band and bonus path that produced
// the accepted match.
func (m *Matcher) Match(rawLabel, secondaryID, channel string) (core.MatchResult, bool) {
	label, labelYear := CleanLabel(rawLabel)
	if label == "" {
		return core.MatchResult{}, false
	}

	best := -1
	bestBase := 0.0
	for i, c := range m.candidates {
		base := Similarity(label, c.Title)
		if base < floorCutoff {
			continue
		}
		if base > bestBase {
			bestBase = base
			best = i
		}
	}
	if best < 0 {
		return core.MatchResult{}, false
	}

	candidate := m.candidates[best]
	score := bestBase
	yearMatched := false
	if labelYear != 0 && candidate.Year != 0 && abs(labelYear-candidate.Year) <= 1 {
		score += yearBonus
		yearMatched = true
	}
	if m.trusted[strings.ToLower(strings.TrimSpace(channel))] {
		score += trustedBonus
	}
	if score > 1.0 {
		score = 1.0
	}
	if score < m.minScore {
		return core.MatchResult{}, false
	}

	method := methodLabel(bestBase, yearMatched)
	m.logger.Debug("label matched", "label", label, "entity_id", candidate.EntityID,
		"score", score, "method", method)
	return core.MatchResult{
		EntityID:    candidate.EntityID,
		SecondaryID: secondaryID,
		Score:       score,
		Method:      method,
	}, true
}

// MatchVideos links harvested videos to entities, dropping unmatched.
func (m *Matcher) MatchVideos(videos []core.Video) []core.MatchResult {
	var out []core.MatchResult
	for _, v := range videos {
		if r, ok := m.Match(v.Title, v.VideoID, v.ChannelTitle); ok {
			out = append(out, r)
		}
	}
	return out
}

// MatchEpisodes links harvested episodes to entities, dropping unmatched.
func (m *Matcher) MatchEpisodes(episodes []core.Episode) []core.MatchResult {
	var out []core.MatchResult
	for _, e := range episodes {
		if r, ok := m.Match(e.Title, e.EpisodeID, e.ShowName); ok {
			out = append(out, r)
		}
	}
	return out
}

func methodLabel(base float64, yearMatched bool) string {
	var method string
	switch {
	case base >= exactBand:
		method = "exact"
	case base >= highConfidenceBand:
		method = "high-confidence"
	default:
		method = "fuzzy"
	}
	if yearMatched {
		method += "+year"
	}
	return method
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
