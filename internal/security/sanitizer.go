package security

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)
	controlChars    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// IsValidEmail checks if a string is a valid email address
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidUsername allows letters, digits, dot, underscore and hyphen (3-64 characters).
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// CleanText trims s and removes control characters.
func CleanText(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// LocalPath returns p if it is a path on this site, otherwise fallback.
// Absolute URLs, scheme-relative "//host" forms and backslash tricks are
// rejected so redirects never leave the portal.
func LocalPath(p, fallback string) string {
	p = CleanText(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return fallback
	}

	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return p
}
