package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/extract"
)

func sampleRecords() []extract.Record {
	return []extract.Record{
		{ID: "A_HEADER", Kind: extract.KindSectionHeader, SectionCode: "A", SectionTitle: "Preliminaries", Order: 1},
		{ID: "A_SUB_2", Kind: extract.KindSubsection, SectionCode: "A", SectionTitle: "Preliminaries", SubsectionTitle: "Quantities", Order: 2},
		{
			ID:              "A2(a)",
			Kind:            extract.KindSubclause,
			SectionCode:     "A",
			SectionTitle:    "Preliminaries",
			SubsectionTitle: "Quantities",
			ClauseRef:       "A2",
			SubclauseRef:    "A2(a)",
			ClauseTitle:     "Quantities",
			Text:            "measured net, with \"quotes\", and commas",
			Order:           3,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{" jsonl ", FormatJSONL, false},
		{"ndjson", FormatJSONL, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"table", FormatTable, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatExtension(t *testing.T) {
	if got := FormatCSV.Extension(); got != ".csv" {
		t.Errorf("Extension() = %q, want .csv", got)
	}
	if got := FormatTable.Extension(); got != ".txt" {
		t.Errorf("Extension() = %q, want .txt", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Errorf("header = %v, want %v", rows[0], CSVHeader)
	}

	last := rows[3]
	want := []string{"A2(a)", "A", "Preliminaries", "Quantities", "A2", "A2(a)", "Quantities",
		"measured net, with \"quotes\", and commas", "subclause", "3", ""}
	for i := range want {
		if last[i] != want[i] {
			t.Errorf("column %s = %q, want %q", CSVHeader[i], last[i], want[i])
		}
	}
}

func TestWriteCSVRuleType(t *testing.T) {
	var buf bytes.Buffer
	rule := extract.Record{
		ID: "A_M1", Kind: extract.KindClause, SectionCode: "A", ClauseRef: "A_M1",
		RuleType: "measurement", Text: "Items shall be measured as sums.", Order: 2,
	}
	if err := WriteCSV(&buf, []extract.Record{rule}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	row := rows[1]
	if got := row[len(row)-1]; got != "measurement" {
		t.Errorf("rule_type = %q, want measurement", got)
	}
	if row[0] != "A_M1" {
		t.Errorf("id = %q, want A_M1", row[0])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("WriteCSV(nil) lines = %d, want header only", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("len = %d, want 3", len(decoded))
	}
	if decoded[0]["kind"] != "section_header" {
		t.Errorf("kind = %v, want section_header", decoded[0]["kind"])
	}
	if _, ok := decoded[0]["clause_ref"]; ok {
		t.Error("empty clause_ref should be omitted")
	}
	if decoded[2]["order_in_section"] != float64(3) {
		t.Errorf("order_in_section = %v, want 3", decoded[2]["order_in_section"])
	}

	buf.Reset()
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON(nil) error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("WriteJSON(nil) = %q, want []", buf.String())
	}
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONLines(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteJSONLines() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	var r extract.Record
	if err := json.Unmarshal([]byte(lines[2]), &r); err != nil {
		t.Fatalf("line 3 is not JSON: %v", err)
	}
	if r.SubclauseRef != "A2(a)" {
		t.Errorf("SubclauseRef = %q, want A2(a)", r.SubclauseRef)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}

	var decoded []extract.Record
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("len = %d, want 3", len(decoded))
	}
	if decoded[1].SubsectionTitle != "Quantities" || decoded[1].Kind != extract.KindSubsection {
		t.Errorf("decoded[1] = %+v", decoded[1])
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"A_HEADER", "Preliminaries", "A2(a)", "3 records"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
}

func TestWriteUnsupported(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("xml"), nil); err == nil {
		t.Error("Write() unsupported format should return error")
	}
	for _, f := range Formats {
		if err := Write(&bytes.Buffer{}, f, sampleRecords()); err != nil {
			t.Errorf("Write(%s) error = %v", f, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want short", got)
	}
	if got := truncate("abcdefghij", 8); got != "abcde..." {
		t.Errorf("truncate() = %q, want abcde...", got)
	}
}
