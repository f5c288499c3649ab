package crypto

import "strings"

const RedactedPlaceholder = "<redacted>"

// Redact replaces every occurrence of the given secrets in msg. Secrets
// shorter than four characters are ignored to avoid mangling ordinary text.
func Redact(msg string, secrets ...string) string {
	for _, s := range secrets {
		s = strings.TrimSpace(s)
		if len(s) < 4 {
			continue
		}
		msg = strings.ReplaceAll(msg, s, RedactedPlaceholder)
	}
	return msg
}

// Mask keeps the last four characters of a secret for display.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	r := []rune(secret)
	if len(r) <= 8 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", 8) + string(r[len(r)-4:])
}
