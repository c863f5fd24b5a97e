package extract

import (
	"regexp"
	"strings"
)

// LocateStrategy records which rule recognised a clause reference.
type LocateStrategy string

const (
	// StrategyAnchored matches a reference at the very start of the line.
	StrategyAnchored LocateStrategy = "anchored"

	// StrategyEmbedded matches a reference after a leading title fragment.
	StrategyEmbedded LocateStrategy = "embedded"

	// StrategyRule matches a line of a rule block, e.g. "M1 text".
	StrategyRule LocateStrategy = "rule"
)

// titleTrimCutset is the boundary punctuation stripped from title candidates.
const titleTrimCutset = " :-—–.,;"

// ClauseMatch is a clause reference found in a line.
type ClauseMatch struct {
	// Ref is the clause reference, e.g. "A12".
	Ref string

	// Remainder is the text following the reference.
	Remainder string

	// Title is the leading fragment before an embedded reference, trimmed
	// of boundary punctuation. Empty for anchored matches.
	Title string

	Strategy LocateStrategy
}

type clausePatterns struct {
	anchored *regexp.Regexp
	embedded *regexp.Regexp
}

// clausePatternsBySection holds one compiled pattern pair per section
// letter so that the embedded rule only ever considers the current section.
var clausePatternsBySection = buildClausePatterns()

func buildClausePatterns() map[string]clausePatterns {
	patterns := make(map[string]clausePatterns, 26)
	for c := 'A'; c <= 'Z'; c++ {
		letter := string(c)
		patterns[letter] = clausePatterns{
			anchored: regexp.MustCompile(`^(` + letter + `\d{1,3})\s+(.+)$`),
			embedded: regexp.MustCompile(`^(.*?)\b(` + letter + `\d{1,3})\b\s+(.+)$`),
		}
	}
	return patterns
}

// LocateClause finds a clause reference of the given section in line. The
// anchored form ("A1 text") is always preferred; the embedded form
// ("Bills of Quantities A1 text") is tried only when it fails, using the
// shortest leading fragment. Without a section nothing is ever located.
func LocateClause(line, section string) (ClauseMatch, bool) {
	if section == "" {
		return ClauseMatch{}, false
	}
	patterns, ok := clausePatternsBySection[section]
	if !ok {
		return ClauseMatch{}, false
	}

	if m := patterns.anchored.FindStringSubmatch(line); m != nil {
		return ClauseMatch{
			Ref:       m[1],
			Remainder: strings.TrimSpace(m[2]),
			Strategy:  StrategyAnchored,
		}, true
	}

	if m := patterns.embedded.FindStringSubmatch(line); m != nil {
		return ClauseMatch{
			Ref:       m[2],
			Remainder: strings.TrimSpace(m[3]),
			Title:     strings.Trim(m[1], titleTrimCutset),
			Strategy:  StrategyEmbedded,
		}, true
	}

	return ClauseMatch{}, false
}
