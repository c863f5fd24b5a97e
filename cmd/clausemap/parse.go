package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/export"
	"github.com/frankndungu/pdf-to-csv-parser/pkg/extract"
	"github.com/frankndungu/pdf-to-csv-parser/pkg/reference"
	"github.com/frankndungu/pdf-to-csv-parser/pkg/source"
)

// parseOptions are the flags shared by parse and coverage.
type parseOptions struct {
	referenceSet string
	maxLines     int
	noPreprocess bool
}

func (o *parseOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.referenceSet, "reference", "r", "", "reference set name (default from config)")
	cmd.Flags().IntVar(&o.maxLines, "max-lines", 0, "stop after this many lines (0 uses config)")
	cmd.Flags().BoolVar(&o.noPreprocess, "no-preprocess", false, "skip watermark and hyphenation cleanup")
}

func parseCmd(a *app) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <input>",
		Short: "Parse a document into clause records",
		Long: `Parse a document into clause records.

The input may be a PDF (text is extracted with pdftotext), a plain text
file with pages separated by form feeds, or "-" for standard input.

Example:
  clausemap parse cesmm3.pdf -o csv --out cesmm3.csv
  pdftotext smm.pdf - | clausemap parse - --reference smm -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("out")
			showStats, _ := cmd.Flags().GetBool("stats")

			format, err := export.ParseFormat(a.config.Get().OutputFormat)
			if err != nil {
				return err
			}

			records, _, err := a.parse(cmd.Context(), args[0], opts, cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := export.Write(out, format, records); err != nil {
				return err
			}

			if showStats {
				printStats(cmd.ErrOrStderr(), extract.Stats(records), len(records))
			}
			if outPath != "" {
				a.logger.Info("wrote records", "file", outPath, "format", format, "records", len(records))
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().String("out", "", "write records to this file instead of stdout")
	cmd.Flags().Bool("stats", false, "print record counts to stderr")
	return cmd
}

// parse reads path with the named reference set and returns the records.
func (a *app) parse(ctx context.Context, path string, opts parseOptions, stdin io.Reader) ([]extract.Record, *reference.Set, error) {
	cfg := a.config.Get()
	set, err := a.referenceSet(opts.referenceSet)
	if err != nil {
		return nil, nil, err
	}

	lines, err := a.readLines(ctx, path, stdin)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Preprocess && !opts.noPreprocess {
		lines = extract.Preprocess(lines)
	}

	maxLines := cfg.MaxLines
	if opts.maxLines > 0 {
		maxLines = opts.maxLines
	}

	start := time.Now()
	parser := extract.NewParser(set.Index(),
		extract.WithGrammar(set.Grammar()),
		extract.WithLogger(a.logger),
		extract.WithMaxLines(maxLines),
	)
	records, err := parser.ParseReader(ctx, strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return records, set, err
	}

	stats := extract.Stats(records)
	a.logger.Info("parsed document",
		"input", path,
		"reference", set.Name,
		"lines", parser.LinesConsumed(),
		"records", len(records),
		"sections", stats.Sections,
		"clauses", stats.Clauses,
		"subclauses", stats.Subclauses,
		"duration", time.Since(start))
	if stats.Clauses+stats.Subclauses == 0 {
		a.logger.Warn("no clauses detected; check the reference grammar and text extraction", "input", path)
	}
	return records, set, nil
}

func (a *app) readLines(ctx context.Context, path string, stdin io.Reader) ([]string, error) {
	var pages []source.Page
	var err error

	switch {
	case path == "-":
		pages, err = source.ReadPages(stdin)
	case source.IsPDF(path):
		cfg := a.config.Get()
		pages, err = source.PDFPages(ctx, path, source.PDFOptions{
			Extractor: cfg.Extractor,
			Layout:    cfg.Layout,
			Logger:    a.logger,
		})
	default:
		pages, err = source.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Debug("read input", "input", path, "pages", len(pages))
	return source.Lines(pages), nil
}

func printStats(w io.Writer, stats extract.Statistics, total int) {
	fmt.Fprintf(w, "Records:     %d\n", total)
	fmt.Fprintf(w, "Sections:    %d\n", stats.Sections)
	fmt.Fprintf(w, "Subsections: %d\n", stats.Subsections)
	fmt.Fprintf(w, "Clauses:     %d\n", stats.Clauses)
	fmt.Fprintf(w, "Subclauses:  %d\n", stats.Subclauses)
	fmt.Fprintf(w, "Notes:       %d\n", stats.Notes)
}
