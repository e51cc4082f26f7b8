// Package report renders diagnostics and run statistics as line-oriented
// text. Output is flushed after each file so partial progress stays visible
// when a run stops early.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/jward/surveyor/internal/analyzer"
)

var severityColors = map[analyzer.Severity]*color.Color{
	analyzer.SeverityError:   color.New(color.FgRed),
	analyzer.SeverityWarning: color.New(color.FgYellow),
	analyzer.SeverityInfo:    color.New(color.FgCyan),
}

// FormatDiagnostic renders one record as "path:line:column: SEVERITY message".
func FormatDiagnostic(rec analyzer.DiagnosticRecord) string {
	return formatDiagnostic(rec, rec.Severity.String())
}

// formatDiagnostic is the single definition of the diagnostic line layout;
// sev is pre-rendered so the colored and plain paths share it.
func formatDiagnostic(rec analyzer.DiagnosticRecord, sev string) string {
	return fmt.Sprintf("%s:%d:%d: %s %s", rec.Path, rec.Line, rec.Col, sev, rec.Message)
}

// Formatter writes formatted diagnostics and summaries to one stream.
type Formatter struct {
	w        io.Writer
	colorize bool
}

// NewFormatter creates a Formatter writing to w. Severity coloring is off by
// default; enable it with Colorize for terminal output (the color package
// still suppresses escape codes when the stream is not a TTY).
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// Colorize toggles severity coloring.
func (f *Formatter) Colorize(enabled bool) { f.colorize = enabled }

// WriteDiagnostics writes one line per record and flushes if the underlying
// writer supports it. Records are written in the order given.
func (f *Formatter) WriteDiagnostics(recs []analyzer.DiagnosticRecord) error {
	for _, rec := range recs {
		sev := rec.Severity.String()
		if f.colorize {
			if c, ok := severityColors[rec.Severity]; ok {
				sev = c.Sprint(sev)
			}
		}
		if _, err := fmt.Fprintln(f.w, formatDiagnostic(rec, sev)); err != nil {
			return err
		}
	}
	return f.flush()
}

// WriteSummary prints the end-of-run statistics. Always prints all three
// counters, even when zero.
func (f *Formatter) WriteSummary(processed, skipped, findings int) error {
	_, err := fmt.Fprintf(f.w, "Roots processed: %d, roots skipped: %d, findings: %d\n",
		processed, skipped, findings)
	if err != nil {
		return err
	}
	return f.flush()
}

type flusher interface{ Flush() error }

func (f *Formatter) flush() error {
	if fl, ok := f.w.(flusher); ok {
		return fl.Flush()
	}
	return nil
}
