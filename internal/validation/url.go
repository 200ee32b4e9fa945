// Package validation checks operator-supplied values before they reach rendered output.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidationError represents a URL validation failure
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL validates that a URL is absolute http(s) and optionally requires HTTPS.
// Empty URLs are allowed.
func ValidateURL(urlString, fieldName string, requireHTTPS bool) error {
	if urlString == "" {
		return nil
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return URLValidationError{Field: fieldName, Message: "invalid URL format", URL: urlString}
	}
	if parsedURL.Scheme == "" {
		return URLValidationError{Field: fieldName, Message: "URL must include a scheme (http:// or https://)", URL: urlString}
	}
	if parsedURL.Host == "" {
		return URLValidationError{Field: fieldName, Message: "URL must include a host", URL: urlString}
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return URLValidationError{Field: fieldName, Message: "URL scheme must be http or https", URL: urlString}
	}
	if requireHTTPS && scheme != "https" {
		return URLValidationError{Field: fieldName, Message: "URL must use HTTPS", URL: urlString}
	}
	return nil
}

// LogoURL returns raw when it is a renderable image URL and "" otherwise.
// Event logos come straight from the events table, so a bad value is dropped
// instead of failing the page.
func LogoURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if ValidateURL(raw, "logo_url", false) != nil {
		return ""
	}
	return raw
}
