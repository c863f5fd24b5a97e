// Package export writes parsed records in the supported output formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/extract"
)

// Format is an output format name.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatJSON, FormatJSONL, FormatYAML, FormatTable}

// CSVHeader is the column order of CSV output.
var CSVHeader = []string{
	"id",
	"section_code",
	"section_title",
	"subsection_title",
	"clause_ref",
	"subclause_ref",
	"clause_title",
	"clause_text",
	"clause_type",
	"order_in_section",
	"rule_type",
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatCSV, FormatJSON, FormatJSONL, FormatYAML, FormatTable:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatTable:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// Write renders records to w in format f.
func Write(w io.Writer, f Format, records []extract.Record) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatJSONL:
		return WriteJSONLines(w, records)
	case FormatYAML:
		return WriteYAML(w, records)
	case FormatTable:
		return WriteTable(w, records)
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}

// csvRow flattens a record into CSVHeader order.
func csvRow(r extract.Record) []string {
	return []string{
		r.ID,
		r.SectionCode,
		r.SectionTitle,
		r.SubsectionTitle,
		r.ClauseRef,
		r.SubclauseRef,
		r.ClauseTitle,
		r.Text,
		string(r.Kind),
		strconv.Itoa(r.Order),
		r.RuleType,
	}
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []extract.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []extract.Record) error {
	if records == nil {
		records = []extract.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteJSONLines writes one JSON object per line.
func WriteJSONLines(w io.Writer, records []extract.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding record %s: %w", r.ID, err)
		}
	}
	return nil
}

// WriteYAML writes records as a YAML sequence.
func WriteYAML(w io.Writer, records []extract.Record) error {
	if records == nil {
		records = []extract.Record{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing YAML encoder: %w", err)
	}
	return nil
}

// tableTextWidth truncates long text in table output.
const tableTextWidth = 60

// WriteTable writes a fixed-width summary table for terminal reading.
func WriteTable(w io.Writer, records []extract.Record) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-14s %-9s %s\n", "ID", "KIND", "REF", "TEXT"))
	sb.WriteString(strings.Repeat("-", 12+1+14+1+9+1+tableTextWidth) + "\n")

	for _, r := range records {
		ref := r.ClauseRef
		if r.SubclauseRef != "" {
			ref = r.SubclauseRef
		}
		text := r.Text
		switch r.Kind {
		case extract.KindSectionHeader:
			text = r.SectionTitle
		case extract.KindSubsection:
			text = r.SubsectionTitle
		}
		sb.WriteString(fmt.Sprintf("%-12s %-14s %-9s %s\n", r.ID, r.Kind, ref, truncate(text, tableTextWidth)))
	}
	sb.WriteString(fmt.Sprintf("\n%d records\n", len(records)))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
