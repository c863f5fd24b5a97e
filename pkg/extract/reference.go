package extract

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// MatchThreshold is the minimum similarity at which a restated line is
// accepted as a known subsection title.
const MatchThreshold = 0.88

// ReferenceTable maps a section code (a single uppercase letter) to the
// ordered list of subsection titles expected in that section. It is supplied
// once by the caller and never modified by this package.
type ReferenceTable map[string][]string

// IndexEntry pairs a subsection title with its matching key.
type IndexEntry struct {
	Key   string
	Title string
}

// Index is the normalized lookup built once from a ReferenceTable. It is
// read-only after construction and may be shared by any number of parsers.
type Index struct {
	entries map[string][]IndexEntry
	exact   map[string]map[string]string
}

// NewIndex builds an Index from table. Titles whose key is empty are
// skipped; when two titles in a section share a key the first one wins.
func NewIndex(table ReferenceTable) *Index {
	idx := &Index{
		entries: make(map[string][]IndexEntry, len(table)),
		exact:   make(map[string]map[string]string, len(table)),
	}

	for section, titles := range table {
		code := strings.ToUpper(strings.TrimSpace(section))
		byKey := make(map[string]string, len(titles))
		ordered := make([]IndexEntry, 0, len(titles))
		for _, title := range titles {
			key := NormalizeKey(title)
			if key == "" {
				continue
			}
			if _, dup := byKey[key]; dup {
				continue
			}
			byKey[key] = title
			ordered = append(ordered, IndexEntry{Key: key, Title: title})
		}
		idx.entries[code] = ordered
		idx.exact[code] = byKey
	}

	return idx
}

// LookupExact returns the subsection title whose key equals key.
func (idx *Index) LookupExact(section, key string) (string, bool) {
	if idx == nil {
		return "", false
	}
	title, ok := idx.exact[section][key]
	return title, ok
}

// Entries returns the indexed titles of a section in reference order.
func (idx *Index) Entries(section string) []IndexEntry {
	if idx == nil {
		return nil
	}
	return idx.entries[section]
}

// Sections returns the indexed section codes in sorted order.
func (idx *Index) Sections() []string {
	if idx == nil {
		return nil
	}
	codes := make([]string, 0, len(idx.entries))
	for code := range idx.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Match decides whether lineKey restates one of the section's subsection
// titles. An exact key wins immediately. Otherwise every title is scored in
// reference order and the first title reaching the highest score is
// returned, provided that score is at least MatchThreshold.
func (idx *Index) Match(section, lineKey string) (string, bool) {
	if lineKey == "" {
		return "", false
	}
	if title, ok := idx.LookupExact(section, lineKey); ok {
		return title, true
	}

	bestScore := 0.0
	bestTitle := ""
	found := false
	for _, entry := range idx.Entries(section) {
		score := Similarity(lineKey, entry.Key)
		if score > bestScore || !found {
			bestScore = score
			bestTitle = entry.Title
			found = true
		}
		if bestScore >= 1.0 {
			break
		}
	}

	if !found || !acceptScore(bestScore) {
		return "", false
	}
	return bestTitle, true
}

// Similarity scores two keys in [0,1]. A key that is a prefix of the other
// scores 1.0; otherwise the score is the matching-blocks ratio 2*M/T over
// the characters of both keys.
func Similarity(a, b string) float64 {
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		return 1.0
	}
	matcher := difflib.NewMatcher(splitChars(a), splitChars(b))
	return matcher.Ratio()
}

func acceptScore(score float64) bool {
	return score >= MatchThreshold
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}
