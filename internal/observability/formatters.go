// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/smart-resume/internal/document"
	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/ingestion"
	"github.com/jonathan/smart-resume/internal/rendering"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for _, part := range wrap(line, boxWidth-4) {
			fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, part)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap splits a line on word boundaries so each part fits width runes.
// Words longer than width are cut.
func wrap(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var parts []string
	current := ""
	for _, w := range words {
		for len([]rune(w)) > width {
			if current != "" {
				parts = append(parts, current)
				current = ""
			}
			r := []rune(w)
			parts = append(parts, string(r[:width]))
			w = string(r[width:])
		}
		switch {
		case current == "":
			current = w
		case len([]rune(current))+1+len([]rune(w)) <= width:
			current += " " + w
		default:
			parts = append(parts, current)
			current = w
		}
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}

// PrintDocument outputs the outline of an assembled document.
func (p *Printer) PrintDocument(doc *document.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	for _, s := range doc.Sections {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", s.Heading.Text, s.ID))
		count := min(len(s.Paragraphs), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", s.Paragraphs[i].Text))
		}
		if len(s.Paragraphs) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.Paragraphs)-maxItemsToShow))
		}
		for _, e := range s.Entries {
			sb.WriteString(fmt.Sprintf("  ▸ %s\n", e.Heading.Text))
		}
	}

	p.printBox("RESUME DOCUMENT", sb.String())
}

// PrintEnrichment outputs one enrichment result under its heading.
// Failed results are marked and show their error text.
func (p *Printer) PrintEnrichment(heading string, r enrich.Result) {
	title := strings.ToUpper(heading)
	if !r.OK() {
		title += fmt.Sprintf(" [FAILED: %s]", r.Reason())
	}
	p.printBox(title, r.Display())
}

// PrintDownload outputs the packaged download.
func (p *Printer) PrintDownload(d *rendering.Download) {
	if d == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Filename: %s\n", d.Filename))
	sb.WriteString(fmt.Sprintf("Size:     %d bytes\n", d.Size))
	sb.WriteString(fmt.Sprintf("Base64:   %d chars\n", len(d.Base64)))
	if d.Unsafe {
		sb.WriteString("⚠️  Name passed through unescaped\n")
	}

	p.printBox("DOCX EXPORT", sb.String())
}

// PrintJobSource outputs where the job description came from.
func (p *Printer) PrintJobSource(src *ingestion.Source) {
	if src == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:      %s\n", src.Kind))
	if src.URL != "" {
		sb.WriteString(fmt.Sprintf("URL:       %s\n", src.URL))
		sb.WriteString(fmt.Sprintf("Platform:  %s\n", src.Platform))
	}
	if src.Filename != "" {
		sb.WriteString(fmt.Sprintf("File:      %s (%s)\n", src.Filename, src.MIMEType))
	}
	sb.WriteString(fmt.Sprintf("Length:    %d chars\n", src.Chars))
	sb.WriteString(fmt.Sprintf("Hash:      %s\n", src.Hash))

	p.printBox("JOB DESCRIPTION", sb.String())
}

// PrintWarnings outputs generation warnings. Nothing is printed when there are none.
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	var sb strings.Builder
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("⚠️  %s\n", w))
	}
	p.printBox(fmt.Sprintf("WARNINGS (%d)", len(warnings)), sb.String())
}
