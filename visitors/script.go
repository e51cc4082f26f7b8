package visitors

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/surveyor"
)

// Script runs a Risor script once per analyzed file, so reporting policy can
// be written without recompiling. The script sees these globals:
//
//	file_path   — the file being visited (string)
//	language    — canonical language name (string)
//	diagnostics — list of {path, line, col, severity, message} maps
//	report      — report(msg) prints one line and counts a finding
//
// When the run finishes the script is evaluated one final time with
// file_path == "" and run_finished == true, for end-of-run output.
type Script struct {
	source string
	label  string
	w      io.Writer
	stats  *surveyor.RunStatistics
}

// NewScript loads a visitor script from path.
func NewScript(path string, w io.Writer, stats *surveyor.RunStatistics) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load visitor script: %w", err)
	}
	return &Script{source: string(src), label: path, w: w, stats: stats}, nil
}

// FileDiagnostics evaluates the script against one file's results.
func (s *Script) FileDiagnostics(res *surveyor.FileResult) error {
	diags := make([]any, 0, len(res.Diagnostics))
	for _, rec := range res.Diagnostics {
		diags = append(diags, map[string]any{
			"path":     rec.Path,
			"line":     int64(rec.Line),
			"col":      int64(rec.Col),
			"severity": rec.Severity.String(),
			"message":  rec.Message,
		})
	}
	return s.eval(map[string]any{
		"file_path":    res.Path,
		"language":     res.Language,
		"diagnostics":  diags,
		"run_finished": false,
	})
}

// RunFinished evaluates the script once more for end-of-run output.
func (s *Script) RunFinished() error {
	return s.eval(map[string]any{
		"file_path":    "",
		"language":     "",
		"diagnostics":  []any{},
		"run_finished": true,
	})
}

func (s *Script) eval(globals map[string]any) error {
	opts := []risor.Option{
		risor.WithGlobal("report", s.reportBuiltin()),
	}
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if _, err := risor.Eval(context.Background(), s.source, opts...); err != nil {
		return fmt.Errorf("visitor script %s: %w", s.label, err)
	}
	return nil
}

// reportBuiltin creates the "report" host function.
//
// report(msg) → nil
func (s *Script) reportBuiltin() *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("report", 1, len(args))
		}
		msg, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("report: message must be a string, got %s", args[0].Type())
		}
		if _, err := fmt.Fprintln(s.w, msg.Value()); err != nil {
			return object.Errorf("report: %v", err)
		}
		if s.stats != nil {
			s.stats.AddFindings(1)
		}
		return object.Nil
	})
}
