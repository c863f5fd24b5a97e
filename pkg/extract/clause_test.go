package extract

import "testing"

func TestLocateClause(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		section string
		want    ClauseMatch
		wantOK  bool
	}{
		{
			name:    "anchored",
			line:    "A1 Bills of Quantities shall fully describe the work.",
			section: "A",
			want: ClauseMatch{
				Ref:       "A1",
				Remainder: "Bills of Quantities shall fully describe the work.",
				Strategy:  StrategyAnchored,
			},
			wantOK: true,
		},
		{
			name:    "embedded after title fragment",
			line:    "Bills of Quantities A1 shall fully describe the work.",
			section: "A",
			want: ClauseMatch{
				Ref:       "A1",
				Remainder: "shall fully describe the work.",
				Title:     "Bills of Quantities",
				Strategy:  StrategyEmbedded,
			},
			wantOK: true,
		},
		{
			name:    "embedded uses shortest fragment",
			line:    "General A1 rules and A2 more",
			section: "A",
			want: ClauseMatch{
				Ref:       "A1",
				Remainder: "rules and A2 more",
				Title:     "General",
				Strategy:  StrategyEmbedded,
			},
			wantOK: true,
		},
		{
			name:    "embedded fragment trimmed of punctuation",
			line:    "Quantities - A3 shall be metric",
			section: "A",
			want: ClauseMatch{
				Ref:       "A3",
				Remainder: "shall be metric",
				Title:     "Quantities",
				Strategy:  StrategyEmbedded,
			},
			wantOK: true,
		},
		{
			name:    "three digit reference",
			line:    "D120 Measurement",
			section: "D",
			want:    ClauseMatch{Ref: "D120", Remainder: "Measurement", Strategy: StrategyAnchored},
			wantOK:  true,
		},
		{name: "other section anchored", line: "B1 Earthworks shall be measured", section: "A"},
		{name: "other section embedded", line: "Item B1 shall be measured", section: "A"},
		{name: "no section", line: "A1 Bills of Quantities", section: ""},
		{name: "reference without body", line: "A1", section: "A"},
		{name: "four digit number", line: "A1234 text", section: "A"},
		{name: "reference glued to word", line: "GA1 text", section: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LocateClause(tt.line, tt.section)
			if ok != tt.wantOK {
				t.Fatalf("LocateClause(%q, %q) ok = %v, want %v", tt.line, tt.section, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("LocateClause(%q, %q) = %+v, want %+v", tt.line, tt.section, got, tt.want)
			}
		})
	}
}
