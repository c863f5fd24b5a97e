package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Default marker expressions for SMM-style documents.
const (
	DefaultSectionMarker  = `(?i)^SECTION\s+(?P<code>[A-Z])\b`
	DefaultContentsMarker = `(?i)^(?:TABLE\s+OF\s+)?CONTENTS$`
)

// Grammar holds the line-level markers that drive section transitions.
// SectionMarker must contain a named group "code" capturing the section
// letter; an optional named group "title" supplies the section title on the
// same line (as in "CLASS A: General items").
//
// RuleHeader and RuleMarker are optional. RuleHeader opens a block of rules
// ("MEASUREMENT RULES") and may name the rule type in a (?P<type>...) group.
// RuleMarker matches one rule line and must capture (?P<ref>...) and
// (?P<text>...).
type Grammar struct {
	SectionMarker  *regexp.Regexp
	ContentsMarker *regexp.Regexp
	RuleHeader     *regexp.Regexp
	RuleMarker     *regexp.Regexp
}

// DefaultGrammar returns the markers used when no grammar is configured.
func DefaultGrammar() Grammar {
	return Grammar{
		SectionMarker:  regexp.MustCompile(DefaultSectionMarker),
		ContentsMarker: regexp.MustCompile(DefaultContentsMarker),
	}
}

// CompileGrammar builds a Grammar from expression strings. Empty strings
// fall back to the defaults.
func CompileGrammar(sectionMarker, contentsMarker string) (Grammar, error) {
	if sectionMarker == "" {
		sectionMarker = DefaultSectionMarker
	}
	if contentsMarker == "" {
		contentsMarker = DefaultContentsMarker
	}

	section, err := regexp.Compile(sectionMarker)
	if err != nil {
		return Grammar{}, fmt.Errorf("compiling section marker: %w", err)
	}
	if section.SubexpIndex("code") < 0 {
		return Grammar{}, fmt.Errorf("section marker %q has no (?P<code>...) group", sectionMarker)
	}

	contents, err := regexp.Compile(contentsMarker)
	if err != nil {
		return Grammar{}, fmt.Errorf("compiling contents marker: %w", err)
	}

	return Grammar{SectionMarker: section, ContentsMarker: contents}, nil
}

// WithRules returns a copy of g with the rule block markers compiled from
// the given expressions. Empty expressions leave the marker unset.
func (g Grammar) WithRules(ruleHeader, ruleMarker string) (Grammar, error) {
	if ruleHeader != "" {
		header, err := regexp.Compile(ruleHeader)
		if err != nil {
			return Grammar{}, fmt.Errorf("compiling rule header: %w", err)
		}
		g.RuleHeader = header
	}
	if ruleMarker != "" {
		marker, err := regexp.Compile(ruleMarker)
		if err != nil {
			return Grammar{}, fmt.Errorf("compiling rule marker: %w", err)
		}
		if marker.SubexpIndex("ref") < 0 || marker.SubexpIndex("text") < 0 {
			return Grammar{}, fmt.Errorf("rule marker %q needs (?P<ref>...) and (?P<text>...) groups", ruleMarker)
		}
		g.RuleMarker = marker
	}
	return g, nil
}

// IsContents reports whether line opens a table of contents.
func (g Grammar) IsContents(line string) bool {
	return g.ContentsMarker != nil && g.ContentsMarker.MatchString(line)
}

// MatchSection reports whether line starts a section, returning the
// upper-cased section code and any inline title.
func (g Grammar) MatchSection(line string) (code, title string, ok bool) {
	if g.SectionMarker == nil {
		return "", "", false
	}
	m := g.SectionMarker.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	if i := g.SectionMarker.SubexpIndex("code"); i >= 0 {
		code = strings.ToUpper(m[i])
	}
	if code == "" {
		return "", "", false
	}
	if i := g.SectionMarker.SubexpIndex("title"); i >= 0 {
		title = strings.TrimSpace(m[i])
	}
	return code, title, true
}

// MatchRuleHeader reports whether line opens a rule block and returns the
// rule type: the lower-cased first word of the type group, or of the whole
// match when the expression has no such group. An empty match yields "rule".
func (g Grammar) MatchRuleHeader(line string) (ruleType string, ok bool) {
	if g.RuleHeader == nil {
		return "", false
	}
	m := g.RuleHeader.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	raw := m[0]
	if i := g.RuleHeader.SubexpIndex("type"); i >= 0 && m[i] != "" {
		raw = m[i]
	}
	ruleType = "rule"
	if fields := strings.Fields(raw); len(fields) > 0 {
		ruleType = strings.ToLower(fields[0])
	}
	return ruleType, true
}

// MatchRule reports whether line is a rule, returning its reference as
// written (e.g. "M1") and the rule text.
func (g Grammar) MatchRule(line string) (ref, text string, ok bool) {
	if g.RuleMarker == nil {
		return "", "", false
	}
	m := g.RuleMarker.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	ref = strings.TrimSpace(m[g.RuleMarker.SubexpIndex("ref")])
	text = strings.TrimSpace(m[g.RuleMarker.SubexpIndex("text")])
	if ref == "" {
		return "", "", false
	}
	return ref, text, true
}
