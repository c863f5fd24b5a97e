package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// markerCandidatePattern matches "(a) " anywhere; the preceding-character
// rule is checked separately so that adjacent markers are not swallowed.
var markerCandidatePattern = regexp.MustCompile(`\(([a-z])\)\s+`)

// Subclause is one lettered enumeration item of a clause.
type Subclause struct {
	Letter string
	Text   string
}

// Subclauses is a clause body split at its lettered markers.
type Subclauses struct {
	// Head is the trimmed text before the first marker. It may be empty.
	Head string

	// Items holds one entry per marker whose trimmed body is non-empty.
	Items []Subclause
}

type markerLoc struct {
	start  int // index of "("
	end    int // index just past the trailing whitespace
	letter string
}

// findSubclauseMarkers returns every "(x)" marker in text that is not
// immediately preceded by a letter, digit or underscore.
func findSubclauseMarkers(text string) []markerLoc {
	var markers []markerLoc
	for _, m := range markerCandidatePattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:m[0]])
			if prev == '_' || unicode.IsLetter(prev) || unicode.IsDigit(prev) {
				continue
			}
		}
		markers = append(markers, markerLoc{
			start:  m[0],
			end:    m[1],
			letter: text[m[2]:m[3]],
		})
	}
	return markers
}

// SplitSubclauses splits text at its "(a)", "(b)", ... markers. It reports
// false when text holds no marker. Items with an empty body are dropped;
// the head is always kept.
func SplitSubclauses(text string) (Subclauses, bool) {
	markers := findSubclauseMarkers(text)
	if len(markers) == 0 {
		return Subclauses{}, false
	}

	result := Subclauses{
		Head:  strings.TrimSpace(text[:markers[0].start]),
		Items: make([]Subclause, 0, len(markers)),
	}
	for i, marker := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		body := strings.TrimSpace(text[marker.end:end])
		if body == "" {
			continue
		}
		result.Items = append(result.Items, Subclause{Letter: marker.letter, Text: body})
	}
	return result, true
}
