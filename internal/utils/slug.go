package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsSlug reports whether s contains only lowercase letters, digits and single hyphens.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify derives a URL-safe slug from a title.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ReadTime estimates minutes of reading at 200 words per minute, minimum 1.
func ReadTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + 199) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}
