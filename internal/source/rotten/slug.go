package rotten

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// URL CANDIDATES
// Film pages are addressed by a title-derived slug. The site is not an
// API, so candidate URLs are generated in confidence order and probed
// until one exists.
// =============================================================================

var (
	nonWordPattern   = regexp.MustCompile(`[^\w\s-]`)
	separatorPattern = regexp.MustCompile(`[-\s]+`)
)

// BuildSlug converts a title to the site's URL slug: lowercase,
// apostrophes removed, "&" spelled out, non-word characters dropped,
// whitespace and hyphens collapsed to underscores.
func BuildSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, "&", "and")
	s = nonWordPattern.ReplaceAllString(s, "")
	s = separatorPattern.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// stripArticle removes a leading English article when present.
func stripArticle(title string) string {
	lower := strings.ToLower(title)
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(lower, article) {
			return title[len(article):]
		}
	}
	return ""
}

// URLCandidates returns relative film-page URLs in the order they
// should be probed: primary title, title with a year suffix, the title
// minus a leading article, then the same ladder for the original title.
func URLCandidates(title, originalTitle string, year int) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(slug string) {
		if slug == "" {
			return
		}
		for _, path := range expand(slug, year) {
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	}

	add(BuildSlug(title))
	add(BuildSlug(stripArticle(title)))
	if originalTitle != "" && !strings.EqualFold(originalTitle, title) {
		add(BuildSlug(originalTitle))
		add(BuildSlug(stripArticle(originalTitle)))
	}
	return out
}

func expand(slug string, year int) []string {
	paths := []string{"/m/" + slug}
	if year > 0 {
		paths = append(paths, fmt.Sprintf("/m/%s_%d", slug, year))
	}
	return paths
}
