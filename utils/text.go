package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// \p{L}\p{N} rather than \w: documents carry accented and non-Latin
	// letters, and Go's \w matches ASCII only.
	garbageRegex  = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()\-'"]+`)
	punctRunRegex = regexp.MustCompile(`([.,!?;:]){2,}`)
)

// CleanText normalizes text extracted from PDFs: collapses whitespace,
// strips non-textual artifacts, and flattens runs of punctuation.
func CleanText(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = garbageRegex.ReplaceAllString(text, "")
	text = punctRunRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// TruncateText caps text at maxLength characters. Counting is by rune so
// the cut never lands inside a multi-byte code point.
func TruncateText(text string, maxLength int) string {
	if maxLength <= 0 || len(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength])
}
