// Package analyzer wraps the tree-sitter parser behind the adapter contract
// the driver consumes: open a context for one root, then pull per-file
// results in a deterministic order. Parse problems surface as
// DiagnosticRecords; a file the parser cannot handle at all surfaces as a
// FileResult with Err set, and iteration continues with the next file.
package analyzer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
)

// Options configures an analysis context. A subset of the run configuration
// relevant to the adapter.
type Options struct {
	// ResolveUnits enables full syntax-tree retention for node traversal.
	// When false, files are still parsed for diagnostics but Walk is a no-op.
	ResolveUnits bool
	// SkipInstall skips the dependency-install step before analysis.
	SkipInstall bool
	// Excluded lists path segments to skip during file iteration.
	Excluded []string
}

// DiagnosticRecord is one finding for a file: a 1-based source location,
// a severity, and a message.
type DiagnosticRecord struct {
	Path     string
	Line     int
	Col      int
	Severity Severity
	Message  string
}

// FileResult is the outcome of analyzing one file. Either Err is set (hard
// per-file failure) or Lines and Diagnostics are populated. The syntax tree
// is retained only when Options.ResolveUnits was enabled.
type FileResult struct {
	Path        string
	Language    string
	Lines       *LineIndex
	Diagnostics []DiagnosticRecord
	Err         error

	tree    *sitter.Tree
	content []byte
}

// lineCacheSize bounds the line-index cache. Indexes are small; this mainly
// avoids rebuilding them when the same file shows up in overlapping roots.
const lineCacheSize = 1024

// Analyzer opens analysis contexts. Safe to reuse across roots; the driver
// opens contexts one at a time.
type Analyzer struct {
	lines  *lru.Cache[string, *LineIndex]
	logger *log.Logger
}

// New creates an Analyzer.
func New(logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	cache, _ := lru.New[string, *LineIndex](lineCacheSize)
	return &Analyzer{lines: cache, logger: logger}
}

// Open binds an analysis context to one root directory. It runs the
// dependency-install step (unless skipped), lists the root's analyzable
// files in lexicographic order, and returns a context ready for iteration.
func (a *Analyzer) Open(ctx context.Context, root string, opts Options) (*Context, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open root: not a directory: %s", root)
	}

	if !opts.SkipInstall {
		a.installDeps(ctx, root)
	}

	paths, err := a.listFiles(root, opts.Excluded)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return &Context{analyzer: a, root: root, paths: paths, opts: opts}, nil
}

// installCommands maps a manifest file to the command that fetches the
// project's dependencies. Only the first matching manifest is used.
var installCommands = []struct {
	manifest string
	argv     []string
}{
	{"go.mod", []string{"go", "mod", "download"}},
	{"package.json", []string{"npm", "install", "--ignore-scripts", "--no-audit", "--no-fund"}},
	{"pubspec.yaml", []string{"dart", "pub", "get"}},
	{"Cargo.toml", []string{"cargo", "fetch"}},
	{"pyproject.toml", []string{"pip", "install", "--quiet", "-e", "."}},
}

// installDeps runs the dependency-install step for root. Failures are logged
// and do not abort the pass: analysis of whatever parses without resolved
// dependencies is still useful.
func (a *Analyzer) installDeps(ctx context.Context, root string) {
	for _, ic := range installCommands {
		if _, err := os.Stat(filepath.Join(root, ic.manifest)); err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, ic.argv[0], ic.argv[1:]...)
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			a.logger.Warn("dependency install failed",
				"root", root, "cmd", strings.Join(ic.argv, " "), "err", err,
				"output", strings.TrimSpace(string(out)))
		}
		return
	}
}

// skipDirs are directories excluded from file listing regardless of
// configuration.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// listFiles walks root and returns the sorted paths of supported files,
// skipping hidden directories, skipDirs, and any path containing an excluded
// segment. The sorted order is what makes file iteration deterministic.
func (a *Analyzer) listFiles(root string, excluded []string) ([]string, error) {
	skip := make(map[string]bool, len(excluded))
	for _, seg := range excluded {
		skip[seg] = true
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name] || skip[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if skip[name] {
			return nil
		}
		if _, ok := LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// lineIndex returns the cached line index for path/content, building it on a
// miss. The key includes a content hash so an edited file never reuses the
// previous revision's offsets.
func (a *Analyzer) lineIndex(path string, content []byte) *LineIndex {
	key := fmt.Sprintf("%s#%x", path, sha256.Sum256(content))
	if li, ok := a.lines.Get(key); ok {
		return li
	}
	li := NewLineIndex(content)
	a.lines.Add(key, li)
	return li
}

// Context is a handle bound to one root: a finite, non-restartable sequence
// of per-file results in deterministic order.
type Context struct {
	analyzer *Analyzer
	root     string
	paths    []string
	opts     Options
	next     int
}

// Root returns the directory this context is bound to.
func (c *Context) Root() string { return c.root }

// Len returns the number of files the context will yield.
func (c *Context) Len() int { return len(c.paths) }

// Next analyzes and returns the next file. The second return is false when
// the sequence is exhausted. A per-file failure is returned as a FileResult
// with Err set; callers should log and move on.
func (c *Context) Next(ctx context.Context) (*FileResult, bool) {
	if c.next >= len(c.paths) {
		return nil, false
	}
	path := c.paths[c.next]
	c.next++
	return c.analyzer.analyzeFile(ctx, path, c.opts), true
}

// Close releases the context. Present for symmetry with Open; the context
// holds no OS resources beyond what the garbage collector reclaims.
func (c *Context) Close() error {
	c.paths = nil
	return nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, path string, opts Options) *FileResult {
	res := &FileResult{Path: path}

	lang, ok := LanguageForFile(path)
	if !ok {
		res.Err = fmt.Errorf("unsupported file type: %s", path)
		return res
	}
	res.Language = lang

	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		res.Err = fmt.Errorf("no grammar for language %q", lang)
		return res
	}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read file: %w", err)
		return res
	}
	res.Lines = a.lineIndex(path, content)

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		res.Err = fmt.Errorf("parse: %w", err)
		return res
	}

	res.Diagnostics = collectDiagnostics(path, tree.RootNode(), content)
	if opts.ResolveUnits {
		res.tree = tree
		res.content = content
	}
	return res
}

// collectDiagnostics walks the parse tree and reports ERROR nodes as errors
// and missing nodes as warnings, in document order.
func collectDiagnostics(path string, root *sitter.Node, content []byte) []DiagnosticRecord {
	var records []DiagnosticRecord
	if !root.HasError() {
		return records
	}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch {
		case n.Type() == "ERROR":
			p := n.StartPoint()
			records = append(records, DiagnosticRecord{
				Path:     path,
				Line:     int(p.Row) + 1,
				Col:      int(p.Column) + 1,
				Severity: SeverityError,
				Message:  "syntax error",
			})
		case n.IsMissing():
			p := n.StartPoint()
			records = append(records, DiagnosticRecord{
				Path:     path,
				Line:     int(p.Row) + 1,
				Col:      int(p.Column) + 1,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("missing %s", n.Type()),
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	return records
}
