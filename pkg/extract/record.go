package extract

import "fmt"

// RecordKind identifies the structural role of a Record.
type RecordKind string

const (
	KindSectionHeader RecordKind = "section_header"
	KindSubsection    RecordKind = "subsection"
	KindClause        RecordKind = "clause"
	KindSubclause     RecordKind = "subclause"
	KindNote          RecordKind = "note"
)

// Record is one structural unit recovered from the line stream. Every
// record carries copies of its enclosing section and subsection so it can be
// read on its own. Records are never modified once emitted.
type Record struct {
	ID              string     `json:"id" yaml:"id"`
	Kind            RecordKind `json:"kind" yaml:"kind"`
	SectionCode     string     `json:"section_code" yaml:"section_code"`
	SectionTitle    string     `json:"section_title,omitempty" yaml:"section_title,omitempty"`
	SubsectionTitle string     `json:"subsection_title,omitempty" yaml:"subsection_title,omitempty"`
	ClauseRef       string     `json:"clause_ref,omitempty" yaml:"clause_ref,omitempty"`
	SubclauseRef    string     `json:"subclause_ref,omitempty" yaml:"subclause_ref,omitempty"`
	ClauseTitle     string     `json:"clause_title,omitempty" yaml:"clause_title,omitempty"`
	RuleType        string     `json:"rule_type,omitempty" yaml:"rule_type,omitempty"`
	Text            string     `json:"text,omitempty" yaml:"text,omitempty"`

	// Order is the 1-based position of the record within its section.
	Order int `json:"order_in_section" yaml:"order_in_section"`
}

// SubclauseRefFor builds the reference of a lettered item, e.g. "A2(b)".
func SubclauseRefFor(clauseRef, letter string) string {
	return fmt.Sprintf("%s(%s)", clauseRef, letter)
}

// Emitter appends finished records to the output sequence and numbers them
// within their section.
type Emitter struct {
	records  []Record
	counters map[string]int
	onEmit   func(Record)
}

// NewEmitter creates an Emitter. onEmit, when non-nil, is called with every
// record right after it has been appended.
func NewEmitter(onEmit func(Record)) *Emitter {
	return &Emitter{
		counters: make(map[string]int),
		onEmit:   onEmit,
	}
}

// Emit assigns the record its order and synthetic ID, appends it, and
// returns the stored copy.
func (e *Emitter) Emit(r Record) Record {
	e.counters[r.SectionCode]++
	r.Order = e.counters[r.SectionCode]
	r.ID = recordID(r)

	e.records = append(e.records, r)
	if e.onEmit != nil {
		e.onEmit(r)
	}
	return r
}

// Records returns the emitted records in emission order.
func (e *Emitter) Records() []Record {
	return e.records
}

// Len returns the number of emitted records.
func (e *Emitter) Len() int {
	return len(e.records)
}

func recordID(r Record) string {
	switch r.Kind {
	case KindSectionHeader:
		return r.SectionCode + "_HEADER"
	case KindSubsection:
		return fmt.Sprintf("%s_SUB_%d", r.SectionCode, r.Order)
	case KindClause:
		return r.ClauseRef
	case KindSubclause:
		return r.SubclauseRef
	default:
		return fmt.Sprintf("%s_NOTE_%d", r.SectionCode, r.Order)
	}
}

// Statistics summarises a record sequence by kind.
type Statistics struct {
	Sections    int `json:"sections"`
	Subsections int `json:"subsections"`
	Clauses     int `json:"clauses"`
	Subclauses  int `json:"subclauses"`
	Notes       int `json:"notes"`
}

// Stats counts the records of each kind.
func Stats(records []Record) Statistics {
	var stats Statistics
	for _, r := range records {
		switch r.Kind {
		case KindSectionHeader:
			stats.Sections++
		case KindSubsection:
			stats.Subsections++
		case KindClause:
			stats.Clauses++
		case KindSubclause:
			stats.Subclauses++
		case KindNote:
			stats.Notes++
		}
	}
	return stats
}
