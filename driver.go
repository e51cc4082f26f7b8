package surveyor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jward/surveyor/internal/analyzer"
	"github.com/jward/surveyor/internal/discover"
	"github.com/jward/surveyor/internal/history"
	"github.com/jward/surveyor/internal/report"
)

// ErrNoRoots is returned by Run when discovery produced zero valid roots.
var ErrNoRoots = errors.New("no analysis roots discovered")

// Config is the run configuration, resolved once at startup and never
// mutated afterwards.
type Config struct {
	// ShowErrors enables diagnostic dispatch to DiagnosticVisitors.
	ShowErrors bool
	// ResolveUnits enables syntax-tree retention and node-level visiting.
	ResolveUnits bool
	// SkipInstall skips the dependency-install step before each root.
	SkipInstall bool
	// Excluded lists path segments skipped during file iteration.
	Excluded []string
	// RootLimit caps the number of roots processed. Zero means no limit.
	RootLimit int
}

// Opener is the analysis-engine boundary the Driver consumes: bind a handle
// to one root, configured from the run configuration.
type Opener interface {
	Open(ctx context.Context, root string, opts AnalyzerOptions) (FileSource, error)
}

// FileSource is a finite, non-restartable sequence of per-file results in
// deterministic order. The Driver pulls it to exhaustion and closes it
// before opening the next root.
type FileSource interface {
	Next(ctx context.Context) (*FileResult, bool)
	Len() int
	Close() error
}

// Driver walks the discovered roots one at a time, runs one analysis pass
// per root, and dispatches visitor hooks. Processing is strictly
// sequential: no two handles are ever open concurrently, because visitor
// state is shared and unsynchronized.
type Driver struct {
	cfg      Config
	opener   Opener
	visitors []registered
	logger   *log.Logger
	out      io.Writer
	colorize bool
	history  *history.Store
	stats    *RunStatistics
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger replaces the Driver's logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithOpener replaces the analysis engine. Intended for tests and for
// callers embedding a different parser behind the same contract.
func WithOpener(o Opener) Option {
	return func(d *Driver) {
		d.opener = o
	}
}

// WithOutput redirects the end-of-run summary. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.out = w
	}
}

// WithColor enables severity coloring on the summary stream.
func WithColor(enabled bool) Option {
	return func(d *Driver) {
		d.colorize = enabled
	}
}

// WithHistory records run statistics to the given store. The Driver does not
// own the store; the caller closes it.
func WithHistory(h *HistoryStore) Option {
	return func(d *Driver) {
		d.history = h
	}
}

// New creates a Driver with the given run configuration. By default it
// analyzes with the tree-sitter adapter and prints its summary to stdout.
func New(cfg Config, opts ...Option) *Driver {
	d := &Driver{
		cfg:    cfg,
		logger: log.Default(),
		out:    os.Stdout,
		stats:  &RunStatistics{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.opener == nil {
		d.opener = analyzerOpener{analyzer.New(d.logger)}
	}
	return d
}

// Register adds a visitor. Its capabilities are probed once, here; a value
// implementing no hook interfaces is accepted and never invoked.
func (d *Driver) Register(v any) {
	d.visitors = append(d.visitors, probe(v))
}

// Stats returns the run's statistics aggregator. Reporting visitors record
// findings into it via [RunStatistics.AddFindings] so the end-of-run summary
// reflects them; they must not touch the driver-owned root counters.
func (d *Driver) Stats() *RunStatistics {
	return d.stats
}

// Run discovers roots under the input paths and processes each in order.
// Discovery errors and per-file analysis errors are non-fatal; a visitor
// hook error aborts the whole run. Returns ErrNoRoots when discovery found
// nothing valid. The statistics summary prints even when the run aborts.
func (d *Driver) Run(ctx context.Context, paths []string) error {
	started := time.Now()

	roots, discErrs := discover.Discover(paths)
	for _, derr := range discErrs {
		d.logger.Warn("discovery", "err", derr)
		d.stats.RootsSkipped++
	}
	total := len(roots)
	d.stats.RootsDiscovered = total
	d.logger.Info("discovery complete", "roots", total)

	var runID int64
	if d.history != nil {
		id, err := d.history.BeginRun(started, total)
		if err != nil {
			d.logger.Warn("history", "err", err)
		} else {
			runID = id
		}
	}

	// The summary always prints, even when a visitor aborts the run.
	defer func() {
		f := report.NewFormatter(d.out)
		f.Colorize(d.colorize)
		if err := f.WriteSummary(d.stats.RootsProcessed, d.stats.RootsSkipped, d.stats.Findings); err != nil {
			d.logger.Warn("summary", "err", err)
		}
		if d.history != nil && runID != 0 {
			if err := d.history.FinishRun(runID, time.Now(),
				d.stats.RootsProcessed, d.stats.RootsSkipped, d.stats.Findings); err != nil {
				d.logger.Warn("history", "err", err)
			}
		}
	}()

	for i := range roots {
		if d.cfg.RootLimit > 0 && d.stats.RootsProcessed >= d.cfg.RootLimit {
			d.stats.RootsSkipped += total - i
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		processed, stop, err := d.processRoot(ctx, &roots[i], total, runID)
		if err != nil {
			return err
		}
		if processed {
			d.stats.RootsProcessed++
		}
		if stop {
			d.stats.RootsSkipped += total - i - 1
			d.logger.Info("run stopped by visitor", "root", roots[i].Name())
			break
		}
	}

	return d.finishRun(total == 0)
}

// processRoot runs one full pass for a single root: open the handle, invoke
// PreAnalysis, iterate files, invoke PostAnalysis. processed is false when
// the handle could not be opened (the root is skipped without any hook
// calls). stop is true when any visitor's PostAnalysis returned Stop.
func (d *Driver) processRoot(ctx context.Context, root *AnalysisRoot, total int, runID int64) (processed, stop bool, err error) {
	src, err := d.opener.Open(ctx, root.Path, AnalyzerOptions{
		ResolveUnits: d.cfg.ResolveUnits,
		SkipInstall:  d.cfg.SkipInstall,
		Excluded:     d.cfg.Excluded,
	})
	if err != nil {
		d.logger.Warn("root skipped", "root", root.Name(), "err", err)
		d.stats.RootsSkipped++
		return false, false, nil
	}
	defer src.Close()

	d.logger.Info("analyzing root", "root", root.Name(), "index", root.Index+1, "total", total, "files", src.Len())
	findingsBefore := d.stats.Findings

	for _, v := range d.visitors {
		if v.pre == nil {
			continue
		}
		if err := v.pre.PreAnalysis(root, root.IsSubRoot(), root.Index, total); err != nil {
			return false, false, fmt.Errorf("visitor PreAnalysis for %s: %w", root.Name(), err)
		}
	}

	files := 0
	for {
		res, ok := src.Next(ctx)
		if !ok {
			break
		}
		files++
		if res.Err != nil {
			// Per-file failure: the file is excluded from this root's
			// results and iteration continues with the next file.
			d.logger.Warn("file skipped", "path", res.Path, "err", res.Err)
			d.stats.FilesFailed++
			continue
		}
		d.stats.FilesAnalyzed++
		if err := d.visitFile(res); err != nil {
			return false, false, err
		}
	}

	for _, v := range d.visitors {
		if v.post == nil {
			continue
		}
		directive, err := v.post.PostAnalysis(root)
		if err != nil {
			return false, false, fmt.Errorf("visitor PostAnalysis for %s: %w", root.Name(), err)
		}
		if directive == Stop {
			stop = true
		}
	}

	if d.history != nil && runID != 0 {
		if err := d.history.RecordRoot(runID, history.RootRecord{
			Path:     root.Path,
			Name:     root.Name(),
			Files:    files,
			Findings: d.stats.Findings - findingsBefore,
		}); err != nil {
			d.logger.Warn("history", "err", err)
		}
	}
	return true, stop, nil
}

// visitFile dispatches one successfully analyzed file to the registered
// visitors: per-file context first, then node traversal, then diagnostics.
func (d *Driver) visitFile(res *FileResult) error {
	for _, v := range d.visitors {
		if v.file == nil {
			continue
		}
		if err := v.file.EnterFile(res.Path, res.Lines); err != nil {
			return fmt.Errorf("visitor EnterFile for %s: %w", res.Path, err)
		}
	}

	if d.cfg.ResolveUnits && d.hasNodeVisitors() {
		err := res.Walk(func(n Node) error {
			for i := range d.visitors {
				v := &d.visitors[i]
				if v.node == nil || !v.wantsKind(n.Kind) {
					continue
				}
				if err := v.node.VisitNode(res.Path, n); err != nil {
					return fmt.Errorf("visitor VisitNode for %s: %w", res.Path, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if d.cfg.ShowErrors {
		for _, v := range d.visitors {
			if v.diag == nil {
				continue
			}
			if err := v.diag.FileDiagnostics(res); err != nil {
				return fmt.Errorf("visitor FileDiagnostics for %s: %w", res.Path, err)
			}
		}
	}
	return nil
}

func (d *Driver) hasNodeVisitors() bool {
	for _, v := range d.visitors {
		if v.node != nil {
			return true
		}
	}
	return false
}

// finishRun fires RunFinished exactly once, in registration order, then
// reports ErrNoRoots for empty runs.
func (d *Driver) finishRun(empty bool) error {
	for _, v := range d.visitors {
		if v.finish == nil {
			continue
		}
		if err := v.finish.RunFinished(); err != nil {
			return fmt.Errorf("visitor RunFinished: %w", err)
		}
	}
	if empty {
		return ErrNoRoots
	}
	return nil
}

// analyzerOpener adapts the tree-sitter analyzer to the Opener contract.
type analyzerOpener struct {
	a *analyzer.Analyzer
}

func (o analyzerOpener) Open(ctx context.Context, root string, opts AnalyzerOptions) (FileSource, error) {
	c, err := o.a.Open(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}
