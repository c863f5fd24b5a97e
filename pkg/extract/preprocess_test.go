package extract

import (
	"reflect"
	"testing"
)

func TestPreprocess_RemovesWatermarks(t *testing.T) {
	lines := []string{
		"SECTION A",
		"Downloaded by Jane Doe (jane@example.com)",
		"lOMoARcPSD|12345678",
		"Studocu is not sponsored or endorsed by any college",
		"General Rules",
	}
	want := []string{"SECTION A", "General Rules"}

	if got := Preprocess(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}
}

func TestPreprocess_RemovesStandalonePageNumbers(t *testing.T) {
	lines := []string{
		"A1 Bills of Quantities shall fully describe",
		"  42 ",
		"the work.",
	}
	want := []string{"A1 Bills of Quantities shall fully describe", "the work."}

	if got := Preprocess(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}
}

func TestPreprocess_RejoinsHyphenatedWords(t *testing.T) {
	lines := []string{
		"A2 Quantities shall be com-",
		"puted net in place.",
		"Earth-",
		"Works shall be measured",
	}
	want := []string{
		"A2 Quantities shall be computed net in place.",
		"Earth-",
		"Works shall be measured",
	}

	if got := Preprocess(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}
}

func TestPreprocess_KeepsBlankLines(t *testing.T) {
	lines := []string{"SECTION A", "", "General Rules"}
	if got := Preprocess(lines); !reflect.DeepEqual(got, lines) {
		t.Errorf("Preprocess() = %q, want %q", got, lines)
	}
}

func TestPreprocess_Empty(t *testing.T) {
	if got := Preprocess(nil); len(got) != 0 {
		t.Errorf("Preprocess(nil) = %q, want empty", got)
	}
}

func TestPreprocess_RejoinsAcrossDroppedLines(t *testing.T) {
	lines := []string{
		"A3 Excavation shall be mea-",
		"17",
		"sured net.",
		"Dis-",
		"con-",
		"tinued",
	}
	want := []string{
		"A3 Excavation shall be measured net.",
		"Discontinued",
	}

	if got := Preprocess(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}
}
