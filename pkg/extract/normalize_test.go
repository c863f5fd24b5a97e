package extract

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"trims and collapses", "  Bills   of\tQuantities  ", "Bills of Quantities"},
		{"non-breaking space", "Bills\u00a0of\u00a0Quantities", "Bills of Quantities"},
		{"en dash", "Sub\u2013bases", "Sub-bases"},
		{"em dash", "Pipework \u2014 pipes", "Pipework - pipes"},
		{"ligature composed", "\ufb01nal account", "final account"},
		{"only whitespace", " \t   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bills of Quantities", "bills of quantities"},
		{"  BILLS OF QUANTITIES. ", "bills of quantities"},
		{"Grades / strengths of concrete", "grades strengths of concrete"},
		{"Method-related charges", "methodrelated charges"},
		{"A2 Quantities (a) shall", "a2 quantities a shall"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GENERAL RULES", "General Rules"},
		{"bills of quantities", "Bills Of Quantities"},
		{"General Rules", "General Rules"},
	}

	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
