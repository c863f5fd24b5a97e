// Package reference loads the static section and subsection tables that the
// structure parser matches restated titles against.
package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/extract"
)

// sectionCodePattern accepts a single uppercase letter.
var sectionCodePattern = regexp.MustCompile(`^[A-Z]$`)

// MarkerConfig overrides the line markers of the parser grammar.
type MarkerConfig struct {
	// SectionMarker must capture the section letter in a (?P<code>...) group.
	SectionMarker string `yaml:"section_marker,omitempty" json:"section_marker,omitempty"`

	// ContentsMarker matches the line that opens a table of contents.
	ContentsMarker string `yaml:"contents_marker,omitempty" json:"contents_marker,omitempty"`

	// RuleHeader opens a rule block, e.g. "MEASUREMENT RULES".
	RuleHeader string `yaml:"rule_header,omitempty" json:"rule_header,omitempty"`

	// RuleMarker matches a rule line with (?P<ref>...) and (?P<text>...).
	RuleMarker string `yaml:"rule_marker,omitempty" json:"rule_marker,omitempty"`
}

// Section is the reference entry for one section code.
type Section struct {
	// Title is the expected section title, for reporting only.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Subsections lists the subsection titles in document order.
	Subsections []string `yaml:"subsections,omitempty" json:"subsections,omitempty"`

	// Divisions groups classification titles by division level ("1", "2",
	// "3") for documents measured by classification tables.
	Divisions map[string][]string `yaml:"divisions,omitempty" json:"divisions,omitempty"`
}

// Titles returns the subsection titles followed by the division titles in
// ascending level order.
func (s Section) Titles() []string {
	titles := make([]string, 0, len(s.Subsections))
	titles = append(titles, s.Subsections...)
	for _, level := range s.Levels() {
		titles = append(titles, s.Divisions[level]...)
	}
	return titles
}

// Levels returns the division levels in ascending numeric order.
func (s Section) Levels() []string {
	levels := make([]string, 0, len(s.Divisions))
	for level := range s.Divisions {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		a, errA := strconv.Atoi(levels[i])
		b, errB := strconv.Atoi(levels[j])
		if errA != nil || errB != nil {
			return levels[i] < levels[j]
		}
		return a < b
	})
	return levels
}

// Set is a named reference table together with the grammar used to read
// the document it describes.
type Set struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Markers     MarkerConfig       `yaml:"markers,omitempty" json:"markers,omitempty"`
	Sections    map[string]Section `yaml:"sections" json:"sections"`

	// Compiled state, populated by Compile.
	index    *extract.Index
	grammar  extract.Grammar
	compiled bool
}

// Validate checks that the set is well formed.
func (s *Set) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("set %q has no sections", s.Name)
	}
	for code := range s.Sections {
		if !sectionCodePattern.MatchString(code) {
			return fmt.Errorf("set %q: section code %q must be a single uppercase letter", s.Name, code)
		}
	}
	return nil
}

// Compile builds the lookup index and grammar for the set.
func (s *Set) Compile() error {
	grammar, err := extract.CompileGrammar(s.Markers.SectionMarker, s.Markers.ContentsMarker)
	if err != nil {
		return fmt.Errorf("set %q: %w", s.Name, err)
	}
	grammar, err = grammar.WithRules(s.Markers.RuleHeader, s.Markers.RuleMarker)
	if err != nil {
		return fmt.Errorf("set %q: %w", s.Name, err)
	}
	s.grammar = grammar
	s.index = extract.NewIndex(s.Table())
	s.compiled = true
	return nil
}

// IsCompiled reports whether Compile has succeeded.
func (s *Set) IsCompiled() bool {
	return s.compiled
}

// Table converts the set into the parser's reference table.
func (s *Set) Table() extract.ReferenceTable {
	table := make(extract.ReferenceTable, len(s.Sections))
	for code, section := range s.Sections {
		table[code] = section.Titles()
	}
	return table
}

// Index returns the compiled lookup index. Compile must have been called.
func (s *Set) Index() *extract.Index {
	return s.index
}

// Grammar returns the compiled grammar. Compile must have been called.
func (s *Set) Grammar() extract.Grammar {
	return s.grammar
}

// Codes returns the section codes of the set in sorted order.
func (s *Set) Codes() []string {
	codes := make([]string, 0, len(s.Sections))
	for code := range s.Sections {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// SubsectionCount returns the number of subsection titles across all sections.
func (s *Set) SubsectionCount() int {
	total := 0
	for _, section := range s.Sections {
		total += len(section.Titles())
	}
	return total
}
