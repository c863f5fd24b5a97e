package extract

import (
	"regexp"
	"strings"
)

var (
	// watermarkPattern matches the download banners stamped on shared copies
	// of a standard.
	watermarkPattern = regexp.MustCompile(`(?i)^(Downloaded by |lOMoARcPSD|Studocu\b)`)

	// pageNumberPattern matches a line holding nothing but a page number.
	pageNumberPattern = regexp.MustCompile(`^\d+$`)

	// wordBreakPattern matches a letter followed by a hyphen at end of line.
	wordBreakPattern = regexp.MustCompile(`[a-zA-Z]-$`)
)

// Preprocess cleans scanner output before it reaches the Parser. Watermark
// banners and bare page numbers are dropped, and a word hyphenated across a
// line break is joined back when the next line starts in lower case.
// Blank lines are kept.
//
//	"the quantities shall be com-"
//	"puted net"
//
// becomes "the quantities shall be computed net".
func Preprocess(lines []string) []string {
	out := make([]string, 0, len(lines))
	joinNext := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if watermarkPattern.MatchString(trimmed) || pageNumberPattern.MatchString(trimmed) {
			continue
		}

		if joinNext && startsLower(trimmed) {
			last := strings.TrimRight(out[len(out)-1], " \t")
			out[len(out)-1] = last[:len(last)-1] + trimmed
			joinNext = wordBreakPattern.MatchString(trimmed)
			continue
		}

		out = append(out, line)
		joinNext = wordBreakPattern.MatchString(strings.TrimRight(line, " \t"))
	}

	return out
}

func startsLower(s string) bool {
	return s != "" && s[0] >= 'a' && s[0] <= 'z'
}
