// Package source produces the raw text lines the structure parser consumes,
// either from pre-extracted text or from a PDF.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pageBreak separates pages in pdftotext output.
const pageBreak = '\f'

// DefaultExtractor is the poppler binary used to extract page text.
const DefaultExtractor = "pdftotext"

// Page is the text of one page, split into lines.
type Page struct {
	Number int
	Lines  []string
}

// ReadPages reads text from r and splits it into pages on form feeds.
// A trailing form feed does not start an empty page.
func ReadPages(r io.Reader) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}
	return splitPages(data), nil
}

// ReadFile reads a pre-extracted text file with ReadPages.
func ReadFile(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadPages(f)
}

func splitPages(data []byte) []Page {
	chunks := bytes.Split(data, []byte{pageBreak})
	if n := len(chunks); n > 1 && len(bytes.TrimSpace(chunks[n-1])) == 0 {
		chunks = chunks[:n-1]
	}

	pages := make([]Page, 0, len(chunks))
	for i, chunk := range chunks {
		pages = append(pages, Page{Number: i + 1, Lines: splitLines(chunk)})
	}
	return pages
}

// splitLines splits chunk on newlines. Lines have no length limit and a
// trailing newline does not add an empty line.
func splitLines(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	raw := bytes.Split(chunk, []byte{'\n'})
	if n := len(raw); n > 1 && len(raw[n-1]) == 0 {
		raw = raw[:n-1]
	}

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, strings.TrimRight(string(line), "\r"))
	}
	return lines
}

// Lines flattens pages into a single line stream in page order.
func Lines(pages []Page) []string {
	total := 0
	for _, p := range pages {
		total += len(p.Lines)
	}
	lines := make([]string, 0, total)
	for _, p := range pages {
		lines = append(lines, p.Lines...)
	}
	return lines
}

// PDFOptions configures PDF extraction.
type PDFOptions struct {
	// Extractor is the pdftotext binary. Empty means DefaultExtractor.
	Extractor string

	// Layout passes -layout to the extractor.
	Layout bool

	Logger *slog.Logger
}

// PDFPages extracts the text of every page of the PDF at path. The page
// count comes from pdfcpu; the text comes from the pdftotext binary, which
// must be on PATH.
func PDFPages(ctx context.Context, path string, opts PDFOptions) ([]Page, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pageCount, err := PageCount(path)
	if err != nil {
		return nil, err
	}

	extractor := opts.Extractor
	if extractor == "" {
		extractor = DefaultExtractor
	}
	bin, err := exec.LookPath(extractor)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH (install poppler-utils): %w", extractor, err)
	}

	args := []string{"-enc", "UTF-8"}
	if opts.Layout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("extracting %s: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed on %s: %w: %s", extractor, path, err, strings.TrimSpace(stderr.String()))
	}

	pages := splitPages(out)
	if len(pages) != pageCount {
		logger.Warn("extracted page count differs from document",
			"file", path,
			"pages", pageCount,
			"extracted", len(pages))
	}
	logger.Debug("extracted PDF text", "file", path, "pages", len(pages))
	return pages, nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}

// IsPDF reports whether path names a PDF file by extension.
func IsPDF(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}
