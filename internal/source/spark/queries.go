package spark

import (
	"fmt"
	"regexp"
	"strings"
)

// The gateway takes literal SQL, so identifiers interpolated into the
// text are restricted to a safe character set first.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func safeIdentifier(name, fallback string) string {
	if identifierPattern.MatchString(name) {
		return name
	}
	return fallback
}

// RatingStatsQuery aggregates per-title rating statistics from the
// registered film view. A limit of 0 means no LIMIT clause.
func RatingStatsQuery(view string, minVotes, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT title, year, AVG(rating) AS mean_rating, SUM(votes) AS votes
FROM %s
GROUP BY title, year
HAVING SUM(votes) >= %d
ORDER BY votes DESC`, safeIdentifier(view, "horror_movies"), minVotes)
	if limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", limit)
	}
	return b.String()
}

// DecadeBreakdownQuery counts titles and mean ratings per decade.
func DecadeBreakdownQuery(view string) string {
	return fmt.Sprintf(`SELECT FLOOR(year / 10) * 10 AS decade, COUNT(*) AS titles, AVG(rating) AS mean_rating
FROM %s
GROUP BY FLOOR(year / 10) * 10
ORDER BY decade`, safeIdentifier(view, "horror_movies"))
}
