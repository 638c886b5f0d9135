package utils

import (
	"regexp"
	"strings"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

var discordMentionRegex = regexp.MustCompile(`<@!?[0-9]+>`)

// StripMentions removes Discord mentions (<@USER_ID> or <@!USER_ID>)
// from message text and trims the result.
func StripMentions(text string) string {
	return strings.TrimSpace(discordMentionRegex.ReplaceAllString(text, ""))
}

// TruncateRunes caps s at max runes, appending "..." when truncated.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
