package util

import (
	"strings"
	"unicode"
)

// StripCodeFences removes a surrounding markdown fence, with or without
// an info string such as json or JSON, that some models emit despite a
// JSON response type.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	body, ok := strings.CutPrefix(s, "```")
	if !ok {
		return s
	}
	if tag, rest, found := strings.Cut(body, "\n"); found && isFenceTag(strings.TrimSpace(tag)) {
		body = rest
	} else if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	body = strings.TrimSpace(body)
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}

// isFenceTag reports whether the first fence line is an info string
// rather than content.
func isFenceTag(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("+-_.", r) {
			return false
		}
	}
	return true
}

// ClampRunes ensures a string does not exceed max runes.
func ClampRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
