package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cesmmText = "CLASS A: GENERAL ITEMS\n" +
	"Contractual requirements\n" +
	"A1 Performance bond shall be measured as a sum.\n" +
	"\f" +
	"Downloaded by someone (someone@example.com)\n" +
	"A2 Insurances are items: (a) works (b) plant\n"

// runCommand executes the root command with a throwaway config file.
func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "clausemap.yaml")
	if err := os.WriteFile(cfgFile, []byte("log_level: error\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgFile}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestParseCommandJSON(t *testing.T) {
	out, _, err := runCommand(t, "", "parse", writeInput(t, cesmmText), "-o", "json")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	wantIDs := []string{"A_HEADER", "A_SUB_2", "A1", "A2", "A2(a)", "A2(b)"}
	if len(records) != len(wantIDs) {
		t.Fatalf("records = %d, want %d\n%s", len(records), len(wantIDs), out)
	}
	for i, want := range wantIDs {
		if records[i]["id"] != want {
			t.Errorf("records[%d].id = %v, want %s", i, records[i]["id"], want)
		}
	}
	if records[0]["section_title"] != "General Items" {
		t.Errorf("section_title = %v, want General Items", records[0]["section_title"])
	}
	if records[1]["subsection_title"] != "Contractual Requirements" {
		t.Errorf("subsection_title = %v, want Contractual Requirements", records[1]["subsection_title"])
	}
}

func TestParseCommandRules(t *testing.T) {
	input := "CLASS A: General items\n" +
		"MEASUREMENT RULES\n" +
		"M1 Items shall be measured as sums.\n" +
		"D2 Temporary works are the works.\n"

	out, _, err := runCommand(t, input, "parse", "-", "-o", "json")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	wantIDs := []string{"A_HEADER", "A_M1", "A_D2"}
	if len(records) != len(wantIDs) {
		t.Fatalf("records = %d, want %d\n%s", len(records), len(wantIDs), out)
	}
	for i, want := range wantIDs {
		if records[i]["id"] != want {
			t.Errorf("records[%d].id = %v, want %s", i, records[i]["id"], want)
		}
	}
	for _, r := range records[1:] {
		if r["kind"] != "clause" || r["rule_type"] != "measurement" {
			t.Errorf("rule record = %v, want a measurement clause", r)
		}
	}
}

func TestParseCommandStdinCSV(t *testing.T) {
	out, _, err := runCommand(t, cesmmText, "parse", "-", "--stats")
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], "id,section_code,") {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 7 {
		t.Errorf("CSV lines = %d, want 7", len(lines))
	}
}

func TestParseCommandOutFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "records.yaml")
	if _, _, err := runCommand(t, "", "parse", writeInput(t, cesmmText), "-o", "yaml", "--out", outPath); err != nil {
		t.Fatalf("parse error = %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "clause_ref: A1") {
		t.Errorf("YAML output missing clause_ref: A1\n%s", data)
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"parse", filepath.Join(t.TempDir(), "missing.txt")}},
		{"unknown reference", []string{"parse", "-", "--reference", "nope"}},
		{"bad format", []string{"parse", "-", "-o", "xml"}},
		{"no args", []string{"parse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCommand(t, cesmmText, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCoverageCommand(t *testing.T) {
	out, _, err := runCommand(t, "", "coverage", writeInput(t, cesmmText))
	if err == nil {
		t.Error("coverage of a single class should fail the default threshold")
	}
	if !strings.Contains(out, "# Coverage Report `FAIL`") {
		t.Errorf("report missing FAIL header:\n%s", out)
	}
	if !strings.Contains(out, "**Missing Sections:** B, C") {
		t.Errorf("report missing sections list:\n%s", out)
	}
}

func TestReferenceCommands(t *testing.T) {
	out, _, err := runCommand(t, "", "reference", "list")
	if err != nil {
		t.Fatalf("reference list error = %v", err)
	}
	if !strings.Contains(out, "cesmm3") || !strings.Contains(out, "1 reference sets") {
		t.Errorf("reference list output:\n%s", out)
	}

	out, _, err = runCommand(t, "", "reference", "show", "cesmm3", "--json")
	if err != nil {
		t.Fatalf("reference show error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("reference show output is not JSON: %v", err)
	}
	if decoded["name"] != "cesmm3" {
		t.Errorf("name = %v, want cesmm3", decoded["name"])
	}

	if _, _, err := runCommand(t, "", "reference", "watch"); err == nil {
		t.Error("reference watch without reference_dir should fail")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clausemap.yaml")
	if _, _, err := runCommand(t, "", "config", "init", path); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, _, err := runCommand(t, "", "config", "init", path); err == nil {
		t.Error("config init over an existing file should fail")
	}

	out, _, err := runCommand(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "reference_set: cesmm3") {
		t.Errorf("config show output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommand(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "clausemap "+version) {
		t.Errorf("version output = %q", out)
	}
}
