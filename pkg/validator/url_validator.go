package validator

import (
	"net/url"
	"regexp"
)

// maxURLLength bounds stored long URLs
const maxURLLength = 2048

var (
	// shortURLRegex matches 1-7 base62 characters
	shortURLRegex = regexp.MustCompile(`^[0-9A-Za-z]{1,7}$`)

	// allowedSchemes lists permitted URL schemes
	allowedSchemes = map[string]bool{
		"http":  true,
		"https": true,
	}
)

// IsValidHTTPURL reports whether s is an absolute http or https URL with a host
func IsValidHTTPURL(s string) bool {
	return ValidateLongURL(s) == nil
}

// IsValidShortURL reports whether s is a well-formed short identifier
func IsValidShortURL(s string) bool {
	return shortURLRegex.MatchString(s)
}

// ValidateLongURL checks a candidate long URL and explains the first problem found
func ValidateLongURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "longUrl", Message: "URL cannot be empty"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{Field: "longUrl", Message: "URL too long (max 2048 characters)"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "longUrl", Message: "Invalid URL structure"}
	}

	// url.Parse lowercases the scheme
	if !allowedSchemes[parsed.Scheme] {
		return &ValidationError{Field: "longUrl", Message: "Unsupported URL scheme"}
	}

	if parsed.Hostname() == "" {
		return &ValidationError{Field: "longUrl", Message: "URL must contain a host"}
	}

	return nil
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
