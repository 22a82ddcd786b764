package match

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// LABEL CLEANING
// Harvested labels carry channel suffixes, bracketed annotations, and
// hashtags around the actual title. The year token is pulled out before
// bracketed segments are stripped, since it usually lives in one.
// =============================================================================

var (
	yearTokenPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	noisePatterns = []*regexp.Regexp{
		// trailing "| Channel Name"
		regexp.MustCompile(`\|[^|]*$`),
		// "- review" / "- movie reaction" style suffixes
		regexp.MustCompile(`(?i)[-–—]\s*(movie\s+)?(review|reaction|critique|explained|trailer|breakdown|analysis)\s*!*\s*$`),
		// bracketed and parenthesized annotations
		regexp.MustCompile(`\[[^\]]*\]`),
		regexp.MustCompile(`\([^)]*\)`),
		// hashtags
		regexp.MustCompile(`#\w+`),
	}
)

// CleanLabel strips noise patterns and extracts an optional 4-digit
// year token from the raw label.
func CleanLabel(raw string) (label string, year int) {
	if m := yearTokenPattern.FindString(raw); m != "" {
		year, _ = strconv.Atoi(m)
	}

	label = raw
	for _, p := range noisePatterns {
		label = p.ReplaceAllString(label, " ")
	}
	// A bare year left in the title body is noise once extracted.
	label = yearTokenPattern.ReplaceAllString(label, " ")
	label = strings.Join(strings.Fields(label), " ")
	return label, year
}
