package adapter

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It unescapes entities, strips tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, " ")
	return cleanText(plain)
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstText returns the cleaned text of the first element matching selector.
func firstText(s *goquery.Selection, selector string) string {
	return cleanText(s.Find(selector).First().Text())
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// resolveURL resolves href against base. An unparseable href is returned as is.
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

var relativeDateRegex = regexp.MustCompile(`(\d+)\s*\+?\s*(minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|months?|mo)\b`)

// parsePostedDate turns a listing date ("3d ago", "Posted 5 days ago",
// "30+ days ago", "Just posted", "2024-01-05") into a calendar date at
// midnight UTC. Anything unrecognised is treated as today.
func parsePostedDate(s string, now time.Time) time.Time {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	s = cleanText(s)
	if s == "" {
		return today
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	s = strings.ToLower(s)

	if strings.Contains(s, "yesterday") {
		return today.AddDate(0, 0, -1)
	}

	m := relativeDateRegex.FindStringSubmatch(s)
	if m == nil {
		// "just posted", "today", "active today" and friends
		return today
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return today
	}
	switch unit := m[2]; {
	case strings.HasPrefix(unit, "mo"):
		return today.AddDate(0, 0, -30*n)
	case strings.HasPrefix(unit, "w"):
		return today.AddDate(0, 0, -7*n)
	case strings.HasPrefix(unit, "d"):
		return today.AddDate(0, 0, -n)
	}
	// minutes and hours
	return today
}
