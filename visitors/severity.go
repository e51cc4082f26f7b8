// Package visitors provides ready-made visitor implementations for the
// surveyor driver: a severity filter over diagnostics, an identifier
// occurrence counter, and a Risor-scripted visitor for ad-hoc reporting.
package visitors

import (
	"io"

	"github.com/jward/surveyor"
	"github.com/jward/surveyor/internal/analyzer"
	"github.com/jward/surveyor/internal/report"
)

// SeverityFilter reports diagnostics at or above a minimum severity, one
// formatted line per record, flushed per file. Filtering is the visitor's
// policy; the driver hands over every record.
type SeverityFilter struct {
	min   surveyor.Severity
	fmt   *report.Formatter
	stats *surveyor.RunStatistics
}

// NewSeverityFilter creates a SeverityFilter writing to w. stats may be nil
// when the caller does not aggregate findings.
func NewSeverityFilter(min surveyor.Severity, w io.Writer, stats *surveyor.RunStatistics) *SeverityFilter {
	return &SeverityFilter{min: min, fmt: report.NewFormatter(w), stats: stats}
}

// Colorize toggles severity coloring on the output.
func (f *SeverityFilter) Colorize(enabled bool) {
	f.fmt.Colorize(enabled)
}

// FileDiagnostics writes the records that pass the severity filter.
func (f *SeverityFilter) FileDiagnostics(res *surveyor.FileResult) error {
	var keep []analyzer.DiagnosticRecord
	for _, rec := range res.Diagnostics {
		if rec.Severity >= f.min {
			keep = append(keep, rec)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	if f.stats != nil {
		f.stats.AddFindings(len(keep))
	}
	return f.fmt.WriteDiagnostics(keep)
}
