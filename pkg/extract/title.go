package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// boundaryWordPattern finds the verb that usually separates a clause's
	// noun-phrase title from its regulatory prose.
	boundaryWordPattern = regexp.MustCompile(
		`(?i)\b(shall|are|is|were|will|should|must|means?|includes?|consists?|comprises?|apply|covers?)\b`,
	)

	// delimiterTitlePattern matches "Short title: body" and its dash variants.
	delimiterTitlePattern = regexp.MustCompile(`^([^:—–-]{3,100}?)\s*[:—–-]\s*(.+)$`)
)

// minTitleLength is the shortest prefix accepted as a clause title.
const minTitleLength = 3

// SplitTitle separates a clause remainder into an optional title and the
// clause body. An empty title means none was found.
//
// The first boundary word decides the split when the text before it is at
// least three characters long. A title never runs into a lettered
// subclause marker: "Quantities (a) shall ..." yields the title
// "Quantities" with the body starting at "(a)". When the text holds no
// boundary word, a short fragment followed by a colon or dash is taken as
// the title. Otherwise the whole remainder is body.
func SplitTitle(remainder string) (string, string) {
	remainder = strings.TrimSpace(remainder)
	if remainder == "" {
		return "", ""
	}

	if loc := boundaryWordPattern.FindStringIndex(remainder); loc != nil {
		prefix := remainder[:loc[0]]
		bodyStart := loc[0]
		if markers := findSubclauseMarkers(prefix); len(markers) > 0 {
			bodyStart = markers[0].start
			prefix = prefix[:bodyStart]
		}
		title := strings.Trim(prefix, titleTrimCutset)
		if utf8.RuneCountInString(title) >= minTitleLength {
			return title, strings.TrimSpace(remainder[bodyStart:])
		}
		return "", remainder
	}

	if m := delimiterTitlePattern.FindStringSubmatch(remainder); m != nil {
		title := strings.Trim(m[1], titleTrimCutset)
		if utf8.RuneCountInString(title) >= minTitleLength {
			return title, strings.TrimSpace(m[2])
		}
	}

	return "", remainder
}
