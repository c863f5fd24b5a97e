// Package extract recovers the clause hierarchy of a scanned standards
// document (sections, subsections, numbered clauses and lettered
// subclauses) from its flat sequence of text lines.
package extract

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// parserState is the structural context of the line being consumed. An
// empty string means the field is unset.
type parserState struct {
	section      string
	sectionTitle string
	subsection   string
	clauseRef    string
	clauseTitle  string
	clauseBuffer []string
	ruleType     string
	inContents   bool
	titlePending bool
}

// lineRule is one entry of the ordered rule table. apply reports whether it
// consumed the line; the first rule that does wins.
type lineRule struct {
	name  string
	apply func(p *Parser, line string) bool
}

// rules is evaluated in order for every normalized line.
var rules = []lineRule{
	{"blank", (*Parser).ruleBlank},
	{"contents", (*Parser).ruleContents},
	{"contents-skip", (*Parser).ruleContentsSkip},
	{"section", (*Parser).ruleSection},
	{"section-title", (*Parser).ruleSectionTitle},
	{"rule-header", (*Parser).ruleRuleHeader},
	{"subsection", (*Parser).ruleSubsection},
	{"clause", (*Parser).ruleClause},
	{"continuation", (*Parser).ruleContinuation},
	{"note", (*Parser).ruleNote},
	{"discard", (*Parser).ruleDiscard},
}

// Parser is the structural state machine. It consumes normalized lines one
// at a time and emits records in intake order. A Parser is not safe for
// concurrent use; run one Parser per document.
type Parser struct {
	index    *Index
	grammar  Grammar
	logger   *slog.Logger
	maxLines int
	onEmit   func(Record)

	state   parserState
	emitter *Emitter
	lines   int
}

// Option configures a Parser.
type Option func(*Parser)

// WithGrammar replaces the default section and contents markers.
func WithGrammar(g Grammar) Option {
	return func(p *Parser) { p.grammar = g }
}

// WithLogger sets the logger used for per-line tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithMaxLines bounds the number of lines ParseReader consumes. Zero means
// no limit.
func WithMaxLines(n int) Option {
	return func(p *Parser) { p.maxLines = n }
}

// WithRecordHandler registers a callback invoked with each record as soon as
// it is emitted.
func WithRecordHandler(fn func(Record)) Option {
	return func(p *Parser) { p.onEmit = fn }
}

// NewParser creates a Parser matching subsections against idx. idx may be
// shared between parsers.
func NewParser(idx *Index, opts ...Option) *Parser {
	p := &Parser{
		index:   idx,
		grammar: DefaultGrammar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.emitter = NewEmitter(p.onEmit)
	return p
}

// Parse consumes lines and returns every record, including the final flush.
func (p *Parser) Parse(lines []string) []Record {
	for _, line := range lines {
		p.Feed(line)
	}
	return p.Finish()
}

// ParseReader consumes newline-separated text from r. Lines have no length
// limit. It stops at a line boundary when ctx is cancelled or the line limit
// is reached, then runs the final flush so no buffered text is lost. On
// cancellation the records gathered so far are returned along with the
// context error.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return p.Finish(), fmt.Errorf("reading input: %w", readErr)
		}
		if line == "" && readErr == io.EOF {
			break
		}

		if err := ctx.Err(); err != nil {
			return p.Finish(), fmt.Errorf("parsing interrupted after %d lines: %w", p.lines, err)
		}
		if p.maxLines > 0 && p.lines >= p.maxLines {
			p.logger.Warn("line limit reached", "max_lines", p.maxLines)
			break
		}
		p.Feed(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))

		if readErr == io.EOF {
			break
		}
	}

	return p.Finish(), nil
}

// Feed normalizes raw and consumes it as the next line of the stream.
func (p *Parser) Feed(raw string) {
	p.lines++
	line := Normalize(raw)
	for _, rule := range rules {
		if rule.apply(p, line) {
			p.logger.Debug("line consumed", "line", p.lines, "rule", rule.name)
			return
		}
	}
}

// Finish flushes any open clause and returns all records emitted so far.
// A section whose title line never arrived still gets an untitled header.
func (p *Parser) Finish() []Record {
	p.flush()
	p.emitPendingHeader()
	return p.emitter.Records()
}

// Records returns the records emitted so far without flushing.
func (p *Parser) Records() []Record {
	return p.emitter.Records()
}

// LinesConsumed returns the number of lines fed to the parser.
func (p *Parser) LinesConsumed() int {
	return p.lines
}

func (p *Parser) ruleBlank(line string) bool {
	return line == ""
}

func (p *Parser) ruleContents(line string) bool {
	if !p.grammar.IsContents(line) {
		return false
	}
	p.state.inContents = true
	return true
}

func (p *Parser) ruleContentsSkip(line string) bool {
	if !p.state.inContents {
		return false
	}
	_, _, isSection := p.grammar.MatchSection(line)
	return !isSection
}

func (p *Parser) ruleSection(line string) bool {
	code, title, ok := p.grammar.MatchSection(line)
	if !ok {
		return false
	}

	p.flush()
	p.emitPendingHeader()

	p.state = parserState{section: code}
	if title != "" {
		p.state.sectionTitle = TitleCase(title)
		p.emitHeader()
		return true
	}
	p.state.titlePending = true
	return true
}

func (p *Parser) ruleSectionTitle(line string) bool {
	if !p.state.titlePending {
		return false
	}
	p.state.sectionTitle = TitleCase(line)
	p.state.titlePending = false
	p.emitHeader()
	return true
}

func (p *Parser) ruleRuleHeader(line string) bool {
	if p.state.section == "" {
		return false
	}
	ruleType, ok := p.grammar.MatchRuleHeader(line)
	if !ok {
		return false
	}

	p.flush()
	p.state.clauseRef = ""
	p.state.clauseTitle = ""
	p.state.ruleType = ruleType
	return true
}

func (p *Parser) ruleSubsection(line string) bool {
	if p.state.section == "" {
		return false
	}
	title, ok := p.index.Match(p.state.section, NormalizeKey(line))
	if !ok {
		return false
	}

	p.flush()
	p.state.clauseRef = ""
	p.state.clauseTitle = ""
	p.state.ruleType = ""
	p.enterSubsection(title)
	return true
}

func (p *Parser) ruleClause(line string) bool {
	match, ok := p.locate(line)
	if !ok {
		return false
	}

	p.flush()

	title, body := match.Title, match.Remainder
	if title == "" && match.Strategy != StrategyRule {
		title, body = SplitTitle(match.Remainder)
	}
	p.state.clauseRef = match.Ref
	p.state.clauseTitle = title

	// A clause title that restates a known subsection opens that subsection.
	if title != "" {
		if sub, ok := p.index.LookupExact(p.state.section, NormalizeKey(title)); ok &&
			NormalizeKey(sub) != NormalizeKey(p.state.subsection) {
			p.enterSubsection(sub)
		}
	}

	if parts, ok := SplitSubclauses(body); ok {
		if parts.Head != "" {
			p.emitClause(parts.Head)
		}
		for _, item := range parts.Items {
			p.emit(Record{
				Kind:         KindSubclause,
				ClauseRef:    p.state.clauseRef,
				SubclauseRef: SubclauseRefFor(p.state.clauseRef, item.Letter),
				ClauseTitle:  p.state.clauseTitle,
				Text:         item.Text,
			})
		}
		return true
	}

	if body != "" {
		p.state.clauseBuffer = append(p.state.clauseBuffer, body)
	}
	return true
}

// locate finds the reference opening line. Inside a rule block a rule line
// takes precedence and its reference is qualified by the section, so "M1" in
// class A becomes "A_M1".
func (p *Parser) locate(line string) (ClauseMatch, bool) {
	if p.state.section != "" && p.state.ruleType != "" {
		if ref, text, ok := p.grammar.MatchRule(line); ok {
			return ClauseMatch{
				Ref:       p.state.section + "_" + ref,
				Remainder: text,
				Strategy:  StrategyRule,
			}, true
		}
	}
	return LocateClause(line, p.state.section)
}

func (p *Parser) ruleContinuation(line string) bool {
	if p.state.clauseRef == "" {
		return false
	}
	p.state.clauseBuffer = append(p.state.clauseBuffer, line)
	return true
}

func (p *Parser) ruleNote(line string) bool {
	if p.state.section == "" && p.state.subsection == "" {
		return false
	}
	p.emit(Record{Kind: KindNote, Text: line})
	return true
}

func (p *Parser) ruleDiscard(string) bool {
	return true
}

// flush emits the open clause's buffered text, if any, and clears the
// buffer. Flushing an empty buffer emits nothing.
func (p *Parser) flush() {
	if p.state.clauseRef == "" || len(p.state.clauseBuffer) == 0 {
		p.state.clauseBuffer = nil
		return
	}
	text := strings.TrimSpace(strings.Join(p.state.clauseBuffer, " "))
	p.state.clauseBuffer = nil
	if text != "" {
		p.emitClause(text)
	}
}

func (p *Parser) enterSubsection(title string) {
	p.state.subsection = TitleCase(title)
	p.emit(Record{Kind: KindSubsection})
}

func (p *Parser) emitPendingHeader() {
	if !p.state.titlePending {
		return
	}
	p.state.titlePending = false
	p.emitHeader()
}

func (p *Parser) emitHeader() {
	p.emit(Record{Kind: KindSectionHeader})
}

func (p *Parser) emitClause(text string) {
	p.emit(Record{
		Kind:        KindClause,
		ClauseRef:   p.state.clauseRef,
		ClauseTitle: p.state.clauseTitle,
		Text:        text,
	})
}

// emit stamps r with the current section context and hands it to the
// emitter.
func (p *Parser) emit(r Record) {
	r.SectionCode = p.state.section
	r.SectionTitle = p.state.sectionTitle
	if r.Kind != KindSectionHeader {
		r.SubsectionTitle = p.state.subsection
	}
	if r.Kind == KindClause || r.Kind == KindSubclause {
		r.RuleType = p.state.ruleType
	}
	p.emitter.Emit(r)
}
