package codes

import (
	"net/url"
	"strings"
)

// Schemes that smuggle executable content through a destination edit.
var blockedPatterns = []string{
	"javascript:",
	"data:",
	"vbscript:",
	"file://",
}

// ValidateAndNormalizeURL checks a destination URL and returns its canonical
// form. Only http/https with a host are accepted; fragments are stripped.
func ValidateAndNormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	lowered := strings.ToLower(raw)
	for _, pattern := range blockedPatterns {
		if strings.Contains(lowered, pattern) {
			return "", ErrInvalidURL
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", ErrInvalidURL
	}

	u.Fragment = ""
	return u.String(), nil
}

// Domain extracts the authority component of a destination URL in canonical
// form: lowercase host without port. Returns "" for unparseable input.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
