// Package coverage compares the sections and subsections a parse produced
// against the reference table it was parsed with.
package coverage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/extract"
)

// DefaultThreshold is the score at or above which a report passes.
const DefaultThreshold = 0.8

// Status is the outcome of a coverage check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// SectionCounts tallies the records of one section by kind.
type SectionCounts struct {
	Code        string `json:"code"`
	Expected    bool   `json:"expected"`
	Headers     int    `json:"headers"`
	Subsections int    `json:"subsections"`
	Clauses     int    `json:"clauses"`
	Subclauses  int    `json:"subclauses"`
	Notes       int    `json:"notes"`

	// SubsectionsExpected and SubsectionsFound count distinct reference
	// titles for the section.
	SubsectionsExpected int `json:"subsections_expected"`
	SubsectionsFound    int `json:"subsections_found"`
}

// Report is the result of Check.
type Report struct {
	ExpectedSections []string           `json:"expected_sections"`
	ObservedSections []string           `json:"observed_sections"`
	MissingSections  []string           `json:"missing_sections"`
	ExtraSections    []string           `json:"extra_sections"`
	Sections         []SectionCounts    `json:"sections"`
	DuplicateRefs    map[string]int     `json:"duplicate_refs,omitempty"`
	Totals           extract.Statistics `json:"totals"`

	SectionCoverage    float64  `json:"section_coverage"`
	SubsectionCoverage float64  `json:"subsection_coverage"`
	Score              float64  `json:"score"`
	Threshold          float64  `json:"threshold"`
	Status             Status   `json:"status"`
	Warnings           []string `json:"warnings,omitempty"`
}

// Options configures Check.
type Options struct {
	// Threshold is the passing score. Zero means DefaultThreshold.
	Threshold float64
}

// Check builds a coverage report for records parsed against table.
func Check(table extract.ReferenceTable, records []extract.Record, opts Options) *Report {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	report := &Report{
		DuplicateRefs: make(map[string]int),
		Totals:        extract.Stats(records),
		Threshold:     threshold,
	}

	expected := make(map[string]bool)
	expectedTitles := make(map[string]map[string]bool)
	for code, titles := range table {
		code = strings.ToUpper(strings.TrimSpace(code))
		expected[code] = true
		keys := make(map[string]bool)
		for _, title := range titles {
			if key := extract.NormalizeKey(title); key != "" {
				keys[key] = true
			}
		}
		expectedTitles[code] = keys
	}

	counts := make(map[string]*SectionCounts)
	foundTitles := make(map[string]map[string]bool)
	refCounts := make(map[string]int)

	// A clause whose text resumes after its own subclauses is the same
	// clause, so it is counted once per contiguous run.
	var prev extract.Record
	for _, r := range records {
		if r.SectionCode == "" {
			continue
		}
		sc, ok := counts[r.SectionCode]
		if !ok {
			sc = &SectionCounts{Code: r.SectionCode, Expected: expected[r.SectionCode]}
			counts[r.SectionCode] = sc
			foundTitles[r.SectionCode] = make(map[string]bool)
		}

		switch r.Kind {
		case extract.KindSectionHeader:
			sc.Headers++
		case extract.KindSubsection:
			sc.Subsections++
			key := extract.NormalizeKey(r.SubsectionTitle)
			if expectedTitles[r.SectionCode][key] {
				foundTitles[r.SectionCode][key] = true
			}
		case extract.KindClause:
			sc.Clauses++
			if !continuesRun(prev, r) {
				refCounts[r.ClauseRef]++
			}
		case extract.KindSubclause:
			sc.Subclauses++
			refCounts[r.SubclauseRef]++
		case extract.KindNote:
			sc.Notes++
		}
		prev = r
	}

	for ref, n := range refCounts {
		if n > 1 {
			report.DuplicateRefs[ref] = n
		}
	}

	for code := range expected {
		report.ExpectedSections = append(report.ExpectedSections, code)
		if _, ok := counts[code]; !ok {
			report.MissingSections = append(report.MissingSections, code)
			counts[code] = &SectionCounts{Code: code, Expected: true}
		}
	}
	for code, sc := range counts {
		if sc.Headers > 0 || sc.Subsections > 0 || sc.Clauses > 0 || sc.Subclauses > 0 || sc.Notes > 0 {
			report.ObservedSections = append(report.ObservedSections, code)
		}
		if !expected[code] {
			report.ExtraSections = append(report.ExtraSections, code)
		}
	}
	sort.Strings(report.ExpectedSections)
	sort.Strings(report.ObservedSections)
	sort.Strings(report.MissingSections)
	sort.Strings(report.ExtraSections)

	expectedSubsections, foundSubsections := 0, 0
	for _, code := range sortedKeys(counts) {
		sc := counts[code]
		sc.SubsectionsExpected = len(expectedTitles[code])
		sc.SubsectionsFound = len(foundTitles[code])
		expectedSubsections += sc.SubsectionsExpected
		foundSubsections += sc.SubsectionsFound
		report.Sections = append(report.Sections, *sc)
	}

	if n := len(report.ExpectedSections); n > 0 {
		report.SectionCoverage = float64(n-len(report.MissingSections)) / float64(n)
	}
	if expectedSubsections > 0 {
		report.SubsectionCoverage = float64(foundSubsections) / float64(expectedSubsections)
		report.Score = (report.SectionCoverage + report.SubsectionCoverage) / 2
	} else {
		report.Score = report.SectionCoverage
	}

	if report.Totals.Clauses+report.Totals.Subclauses == 0 {
		report.Warnings = append(report.Warnings, "no clauses detected; check the section grammar and text extraction")
	}
	if len(report.ExtraSections) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("sections not in the reference table: %s", strings.Join(report.ExtraSections, ", ")))
	}

	switch {
	case report.Score >= threshold:
		report.Status = StatusPass
	case report.Score >= threshold*0.9:
		report.Status = StatusWarn
	default:
		report.Status = StatusFail
	}
	return report
}

// continuesRun reports whether clause r carries on the subclause run of the
// same clause that directly precedes it.
func continuesRun(prev, r extract.Record) bool {
	return prev.Kind == extract.KindSubclause &&
		prev.SectionCode == r.SectionCode &&
		prev.ClauseRef == r.ClauseRef
}

// Passed reports whether the status is not FAIL.
func (r *Report) Passed() bool {
	return r.Status != StatusFail
}

// Summary returns a one-line description of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d/%d sections, score %.1f%% (threshold %.1f%%)",
		r.Status,
		len(r.ExpectedSections)-len(r.MissingSections),
		len(r.ExpectedSections),
		r.Score*100,
		r.Threshold*100)
}

func sortedKeys(m map[string]*SectionCounts) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
