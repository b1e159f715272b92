// Package redact sanitizes caller-supplied text and masks sensitive
// patterns before anything reaches a log line or a prompt.
package redact

import (
	"regexp"
	"strings"
)

// MinAPIKeyLength is the shortest credential we accept as API-key shaped.
const MinAPIKeyLength = 32

var (
	// 16-digit card numbers, optionally split by spaces or dashes.
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]?){15}\d\b`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

var sanitizer = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "")

// Sanitize strips characters that could smuggle markup or break quoting
// out of free-form caller text.
func Sanitize(text string) string {
	return sanitizer.Replace(text)
}

// Mask replaces recognizable sensitive patterns (card numbers, SSNs,
// email addresses) with fixed-width placeholders. Safe to apply to any
// text headed for a log.
func Mask(text string) string {
	masked := cardPattern.ReplaceAllString(text, "****-****-****-****")
	masked = ssnPattern.ReplaceAllString(masked, "***-**-****")
	masked = emailPattern.ReplaceAllString(masked, "****@****.***")
	return masked
}

// ValidAPIKey reports whether key is plausibly an API key.
func ValidAPIKey(key string) bool {
	return len(key) >= MinAPIKeyLength
}
