// Package sanitize removes credential-like substrings from text before it
// leaves the machine.
package sanitize

import (
	"regexp"
)

// Redacted replaces every sensitive match. No rule matches it.
const Redacted = "[REDACTED]"

type rule struct {
	name string
	re   *regexp.Regexp
}

var rules = []rule{
	{name: "api-key-pair", re: regexp.MustCompile(`(?i)(api[_-]?key)\s*[:=]\s*['"]?[^\s'"]+['"]?`)},
	{name: "password-pair", re: regexp.MustCompile(`(?i)(password|passwd|pwd|secret)\s*[:=]\s*['"]?[^\s'"]+['"]?`)},
	{name: "token-pair", re: regexp.MustCompile(`(?i)(token)\s*[:=]\s*['"]?[^\s'"]+['"]?`)},

	{name: "openai-anthropic-key", re: regexp.MustCompile(`\bsk-(?:ant-|proj-)?[A-Za-z0-9_\-]{8,}`)},
	{name: "aws-access-key", re: regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
	{name: "github-token", re: regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}`)},
	{name: "slack-token", re: regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}`)},
	{name: "google-api-key", re: regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{35}`)},

	{name: "bearer", re: regexp.MustCompile(`(?i)Bearer\s+[^\s]+`)},
	{name: "basic", re: regexp.MustCompile(`(?i)Basic\s+[^\s]+`)},
}

// Sanitize applies every rule until the text stops changing. Each pass can
// only shrink the amount of unredacted text, so the loop terminates, and the
// result is a fixed point: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	for {
		next := sanitizeOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func sanitizeOnce(text string) string {
	for _, r := range rules {
		text = r.re.ReplaceAllLiteralString(text, Redacted)
	}
	return text
}
