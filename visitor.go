package surveyor

// A visitor is any value implementing some subset of the optional hook
// interfaces below, including none. The Driver probes a visitor's
// capabilities once at registration and thereafter dispatches only the hooks
// it implements. Hooks run in a fixed global order (PreAnalysis → per-file →
// PostAnalysis → RunFinished); at each hook point visitors are invoked in
// registration order.
//
// Visitor state is owned by the visitor. The engine never inspects or resets
// it; a visitor wanting per-root counters resets them in PreAnalysis.

// Directive is a visitor's decision after a root completes.
type Directive int

const (
	// Continue proceeds to the next root.
	Continue Directive = iota
	// Stop ends the run after the current root. Remaining roots are never
	// entered; RunFinished still fires.
	Stop
)

// PreAnalyzer is invoked once before a root's files are iterated. isSubRoot
// reports whether the root was discovered by expanding a container; it
// affects display qualification only. index and total describe progress
// through the run's root list.
type PreAnalyzer interface {
	PreAnalysis(root *AnalysisRoot, isSubRoot bool, index, total int) error
}

// FileVisitor is invoked once per file, before node-level visiting, with the
// file's path and line-offset table.
type FileVisitor interface {
	EnterFile(path string, lines *LineIndex) error
}

// NodeVisitor receives syntax nodes in document order, depth-first,
// pre-order. NodeKinds narrows dispatch to the listed grammar kinds; an
// empty list means every node. Node visiting only happens when the run
// configuration enables ResolveUnits.
type NodeVisitor interface {
	NodeKinds() []string
	VisitNode(path string, node Node) error
}

// DiagnosticVisitor is invoked once per file with the file's full result,
// including all of its DiagnosticRecords. Filtering is the visitor's
// responsibility, not the driver's. Only called when the run configuration
// enables ShowErrors.
type DiagnosticVisitor interface {
	FileDiagnostics(res *FileResult) error
}

// PostAnalyzer is invoked once after a root's files are exhausted. Returning
// Stop ends the run at this root boundary.
type PostAnalyzer interface {
	PostAnalysis(root *AnalysisRoot) (Directive, error)
}

// RunFinisher is invoked exactly once after the entire root list (or its
// truncation) is processed, including runs that processed zero roots.
type RunFinisher interface {
	RunFinished() error
}

// registered is one visitor's capability record, resolved once at
// registration. Nil fields mean the capability is absent.
type registered struct {
	pre    PreAnalyzer
	file   FileVisitor
	node   NodeVisitor
	kinds  map[string]bool // nil means every kind
	diag   DiagnosticVisitor
	post   PostAnalyzer
	finish RunFinisher
}

// probe resolves the capability record for v. The driver inspects presence,
// not concrete type identity.
func probe(v any) registered {
	var r registered
	if p, ok := v.(PreAnalyzer); ok {
		r.pre = p
	}
	if f, ok := v.(FileVisitor); ok {
		r.file = f
	}
	if n, ok := v.(NodeVisitor); ok {
		r.node = n
		if kinds := n.NodeKinds(); len(kinds) > 0 {
			r.kinds = make(map[string]bool, len(kinds))
			for _, k := range kinds {
				r.kinds[k] = true
			}
		}
	}
	if d, ok := v.(DiagnosticVisitor); ok {
		r.diag = d
	}
	if p, ok := v.(PostAnalyzer); ok {
		r.post = p
	}
	if f, ok := v.(RunFinisher); ok {
		r.finish = f
	}
	return r
}

// wantsKind reports whether the visitor's node callback should see kind.
func (r *registered) wantsKind(kind string) bool {
	return r.kinds == nil || r.kinds[kind]
}
