package crawler

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagRegex   = regexp.MustCompile(`<[^>]*>`)
	htmlBreakRegex = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>`)
)

// extractText converts an HTML or HTML-encoded fragment to plain text.
// Line structure survives: breaks and block ends become newlines, each line
// is trimmed and blank lines are dropped.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	withBreaks := htmlBreakRegex.ReplaceAllString(unescaped, "\n")
	return cleanLines(htmlTagRegex.ReplaceAllString(withBreaks, ""))
}

// cleanLines trims every line of s and drops the empty ones.
func cleanLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// joinKeywords joins the non-blank keywords with single spaces.
func joinKeywords(keywords []string) string {
	var parts []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}
