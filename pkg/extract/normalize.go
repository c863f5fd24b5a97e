package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// dashReplacer maps typographic dashes and non-breaking spaces to their
// plain ASCII forms before whitespace is collapsed.
var dashReplacer = strings.NewReplacer(
	"\u2013", "-",
	"\u2014", "-",
	"\u00a0", " ",
)

// Normalize canonicalizes a raw scanned line into a comparable string.
// It applies NFKC composition, maps en and em dashes to a hyphen, and
// collapses every run of whitespace (including non-breaking spaces) to a
// single space. The result is trimmed. Normalize never fails.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFKC.String(raw)
	s = dashReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeKey derives the matching key for s: the normalized form,
// lowercased, with every character outside [a-z0-9 ] removed and
// whitespace re-collapsed. Keys are only ever compared, never displayed.
func NormalizeKey(s string) string {
	s = strings.ToLower(Normalize(s))

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == ' ' {
			b.WriteByte(c)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest, e.g. "GENERAL RULES" becomes "General Rules".
func TitleCase(s string) string {
	// Casers are stateful and must not be shared between goroutines.
	return cases.Title(language.Und).String(s)
}
