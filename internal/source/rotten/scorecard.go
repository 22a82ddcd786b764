package rotten

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"

	"github.com/screamdb/etl-core/internal/core"
)

// =============================================================================
// PAGE PARSING
// Scores live in an embedded JSON scorecard; the critics consensus is
// plain markup. The page structure changes often, so parsing fails
// soft: missing elements yield empty fields, never errors.
// =============================================================================

const scorecardScriptID = "media-scorecard-json"

// scorecard mirrors the embedded JSON score document.
type scorecard struct {
	CriticsScore struct {
		Score       string `json:"score"`
		Certified   bool   `json:"certified"`
		ReviewCount int    `json:"reviewCount"`
	} `json:"criticsScore"`
	AudienceScore struct {
		Score       string `json:"score"`
		ReviewCount int    `json:"reviewCount"`
	} `json:"audienceScore"`
}

// parsePage extracts enrichment fields from a film page.
func parsePage(tmdbID int, pageURL string, body []byte) core.RTEnrichment {
	enrichment := core.RTEnrichment{TMDBID: tmdbID, URL: pageURL}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return enrichment
	}

	if raw := findScriptByID(doc, scorecardScriptID); raw != "" {
		var card scorecard
		if err := json.Unmarshal([]byte(raw), &card); err == nil {
			applyScorecard(&card, &enrichment)
		}
	}
	if consensus := findConsensus(doc); consensus != "" {
		enrichment.CriticsConsensus = consensus
	}
	return enrichment
}

func applyScorecard(card *scorecard, e *core.RTEnrichment) {
	if score := core.CoerceInt(card.CriticsScore.Score, -1); score >= 0 && score <= 100 {
		e.TomatometerScore = &score
		e.TomatometerState = tomatometerState(score, card.CriticsScore.Certified)
	}
	e.CriticsCount = card.CriticsScore.ReviewCount

	if score := core.CoerceInt(card.AudienceScore.Score, -1); score >= 0 && score <= 100 {
		e.AudienceScore = &score
	}
	e.AudienceCount = card.AudienceScore.ReviewCount
}

func tomatometerState(score int, certified bool) string {
	switch {
	case certified:
		return "certified-fresh"
	case score >= 60:
		return "fresh"
	default:
		return "rotten"
	}
}

// findScriptByID returns the text content of a <script> with the given id.
func findScriptByID(doc *html.Node, id string) string {
	node := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "script" && attr(n, "id") == id
	})
	if node == nil || node.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(node.FirstChild.Data)
}

// findConsensus locates the critics-consensus paragraph.
func findConsensus(doc *html.Node) string {
	section := findNode(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		return attr(n, "id") == "critics-consensus" || attr(n, "data-qa") == "critics-consensus"
	})
	if section == nil {
		return ""
	}
	p := findNode(section, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "p"
	})
	if p == nil {
		return ""
	}
	return core.CleanText(textContent(p))
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
