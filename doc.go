// Package surveyor walks a tree of independent source-code projects, runs
// one analysis pass per project via a tree-sitter backed engine, and
// dispatches the results to pluggable visitors. The engine orchestrates;
// visitors inspect, filter, and report.
//
// # Lifecycle
//
// A run moves through a fixed sequence of states:
//
//	Idle → Discovering → {PreRoot → Analyzing → PostRoot}* → Finished
//
// Discovery happens exactly once, before any root is processed: a single
// markerless input directory expands into its sorted, non-hidden immediate
// subdirectories; anything else is used as-is. The root set is fixed before
// the loop begins. Each root is then fully processed — opened, iterated,
// closed — before the next, strictly sequentially, because visitor state is
// shared and unsynchronized.
//
// # Visitors
//
// A visitor implements any subset of the optional hook interfaces
// ([PreAnalyzer], [FileVisitor], [NodeVisitor], [DiagnosticVisitor],
// [PostAnalyzer], [RunFinisher]). Capabilities are probed once at
// registration; the Driver dispatches only the hooks present. Hooks run in
// a fixed global order, and visitors run in registration order at each hook
// point, so multi-visitor runs are deterministic.
//
// A visitor ends a run early by returning [Stop] from PostAnalysis. The
// decision is honored at root boundaries only, never mid-root, and
// RunFinished still fires exactly once.
//
// # Usage
//
// Create a Driver, register visitors, and run:
//
//	d := surveyor.New(surveyor.Config{ShowErrors: true})
//	d.Register(visitors.NewSeverityFilter(surveyor.SeverityError, os.Stdout, d.Stats()))
//	err := d.Run(context.Background(), []string{"path/to/projects"})
//
// # Error policy
//
// Invalid input paths and per-file analysis failures are logged and
// skipped; the run continues. A visitor hook error aborts the entire run —
// a broken visitor cannot be trusted to report correct partial results. The
// statistics summary prints regardless.
package surveyor
