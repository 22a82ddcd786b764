package core

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// =============================================================================
// NORMALIZER HELPERS
// Shared text and date cleanup used by every source normalizer.
// Normalizers never fail on bad input; they coerce or default.
// =============================================================================

// placeholderText lists known junk values some sources emit instead of
// leaving a field empty.
var placeholderText = map[string]bool{
	"no overview":                   true,
	"no overview found.":            true,
	"n/a":                           true,
	"none":                          true,
	"null":                          true,
	"no consensus yet.":             true,
	"there is no critics consensus": true,
}

// CleanText trims, collapses internal whitespace, strips non-printable
// characters, and rejects known placeholder strings. Returns "" when
// nothing usable remains.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	out := strings.TrimSpace(b.String())
	if placeholderText[strings.ToLower(out)] {
		return ""
	}
	return out
}

// ParseReleaseDate parses a date with a two-tier strategy: a full ISO
// date, else a bare year normalized to January 1st. Returns the
// normalized date string and the year, or ("", 0) when unparseable.
func ParseReleaseDate(s string) (string, int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), t.Year()
	}
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil && y >= 1800 && y <= 2100 {
			return strconv.Itoa(y) + "-01-01", y
		}
	}
	return "", 0
}

// CoerceFloat parses a float, returning def on failure.
func CoerceFloat(s string, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return def
}

// CoerceInt parses an int, returning def on failure.
func CoerceInt(s string, def int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return i
	}
	return def
}

// NormalizerStats counts normalize outcomes for observability. A
// normalizer holds no other cross-record state.
type NormalizerStats struct {
	Normalized int            `json:"normalized"`
	Skipped    int            `json:"skipped"`
	SkipReason map[string]int `json:"skip_reason,omitempty"`
}

// Skip counts one skipped record under the given reason.
func (s *NormalizerStats) Skip(reason string) {
	s.Skipped++
	if s.SkipReason == nil {
		s.SkipReason = make(map[string]int)
	}
	s.SkipReason[reason]++
}
