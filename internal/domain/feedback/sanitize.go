package feedback

import (
	"regexp"
	"strings"
)

// Words replaced with asterisks before comments reach a report. Whole-word,
// case-insensitive matches only; keep entries lowercase.
var inappropriateWords = []string{
	"damn", "hell", "crap", "stupid", "idiot", "dumb", "fool", "jerk",
	"suck", "hate", "terrible", "awful", "worst", "bad", "horrible",
}

var denyPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(inappropriateWords, "|") + `)\b`)

// Sanitize replaces every denylisted word with an equal-length run of '*'.
// Partial-word matches are left alone ("badge" is not touched by "bad").
// Empty input yields "".
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return denyPattern.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat("*", len(match))
	})
}
