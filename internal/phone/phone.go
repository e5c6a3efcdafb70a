package phone

import (
	"regexp"
	"strings"
)

var tenDigits = regexp.MustCompile(`^\d{10}$`)

// Normalize strips everything except digits: "+91 98765-43210" -> "919876543210".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidIndianMobile reports whether the caller-supplied mobile is exactly ten
// digits. Cheap gate that runs before any upstream call.
func ValidIndianMobile(s string) bool {
	return tenDigits.MatchString(s)
}

// Matches reports whether the stored phone ends with the supplied one, both
// digits-only. Suffix comparison absorbs country-code prefixes of any length.
// An empty stored phone never matches.
func Matches(stored, input string) bool {
	cleanStored := Normalize(stored)
	cleanInput := Normalize(input)
	if cleanStored == "" || cleanInput == "" {
		return false
	}
	return strings.HasSuffix(cleanStored, cleanInput)
}
