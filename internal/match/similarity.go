package match

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// normalizeTitle lowercases, strips punctuation, and collapses
// whitespace so similarity compares words, not formatting.
func normalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Similarity scores two titles in [0,1], case- and
// punctuation-insensitive.
func Similarity(a, b string) float64 {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return smetrics.JaroWinkler(na, nb, 0.7, 4)
}
