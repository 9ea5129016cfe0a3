// Package redact removes common PII patterns from text before it
// leaves the process. The pattern set matches the server's own
// redaction rules so client-side and server-side redaction agree.
package redact

import "regexp"

// Placeholder replaces every matched PII span.
const Placeholder = "[REDACTED]"

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`),                     // email
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),            // phone
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),              // IPv4
	regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),  // credit card
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),                    // SSN
}

// Text replaces all recognized PII spans in s with the placeholder.
func Text(s string) string {
	for _, re := range patterns {
		s = re.ReplaceAllString(s, Placeholder)
	}
	return s
}
