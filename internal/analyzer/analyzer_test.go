package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates path (and parents) with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// openRoot opens a context with install skipped, which every test wants.
func openRoot(t *testing.T, root string, opts Options) *Context {
	t.Helper()
	opts.SkipInstall = true
	c, err := New(nil).Open(context.Background(), root, opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// drain pulls the context to exhaustion.
func drain(t *testing.T, c *Context) []*FileResult {
	t.Helper()
	var results []*FileResult
	for {
		res, ok := c.Next(context.Background())
		if !ok {
			return results
		}
		results = append(results, res)
	}
}

func TestOpen_MissingRoot(t *testing.T) {
	_, err := New(nil).Open(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{SkipInstall: true})
	require.Error(t, err)
}

func TestOpen_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.go")
	writeFile(t, path, "package main\n")
	_, err := New(nil).Open(context.Background(), path, Options{SkipInstall: true})
	require.Error(t, err)
}

func TestOpen_ListsSupportedFilesInOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "package b\n")
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "readme.txt"), "not source\n")
	writeFile(t, filepath.Join(root, "sub", "c.go"), "package c\n")

	c := openRoot(t, root, Options{})
	require.Equal(t, 3, c.Len())

	results := drain(t, c)
	require.Len(t, results, 3)
	assert.Equal(t, filepath.Join(root, "a.go"), results[0].Path)
	assert.Equal(t, filepath.Join(root, "b.go"), results[1].Path)
	assert.Equal(t, filepath.Join(root, "sub", "c.go"), results[2].Path)
}

func TestOpen_DeterministicAcrossOpens(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"z.go", "m.py", "a.rs"} {
		writeFile(t, filepath.Join(root, name), "\n")
	}

	first := drain(t, openRoot(t, root, Options{}))
	second := drain(t, openRoot(t, root, Options{}))
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
	}
}

func TestOpen_SkipsHiddenAndVendorDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), "package keep\n")
	writeFile(t, filepath.Join(root, ".git", "skip.go"), "package skip\n")
	writeFile(t, filepath.Join(root, "vendor", "skip.go"), "package skip\n")
	writeFile(t, filepath.Join(root, "node_modules", "skip.js"), "x\n")

	c := openRoot(t, root, Options{})
	results := drain(t, c)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(root, "keep.go"), results[0].Path)
}

func TestOpen_ExcludedSegments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), "package keep\n")
	writeFile(t, filepath.Join(root, "gen", "skip.go"), "package skip\n")
	writeFile(t, filepath.Join(root, "sub", "gen", "skip.go"), "package skip\n")

	c := openRoot(t, root, Options{Excluded: []string{"gen"}})
	results := drain(t, c)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(root, "keep.go"), results[0].Path)
}

func TestNext_CleanFileHasNoDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.go"), "package ok\n\nfunc Add(a, b int) int { return a + b }\n")

	results := drain(t, openRoot(t, root, Options{}))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "go", results[0].Language)
	assert.Empty(t, results[0].Diagnostics)
	assert.NotNil(t, results[0].Lines)
}

func TestNext_BrokenFileYieldsDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.go"), "package bad\n\nfunc oops( {\n")

	results := drain(t, openRoot(t, root, Options{}))
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.NotEmpty(t, results[0].Diagnostics)
	for _, rec := range results[0].Diagnostics {
		assert.Equal(t, results[0].Path, rec.Path)
		assert.GreaterOrEqual(t, rec.Line, 1)
		assert.GreaterOrEqual(t, rec.Col, 1)
	}
}

func TestNext_UnreadableFileContinues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")
	bad := filepath.Join(root, "b.go")
	writeFile(t, bad, "package b\n")
	writeFile(t, filepath.Join(root, "c.go"), "package c\n")

	c := openRoot(t, root, Options{})
	// Remove the middle file after listing so its read fails mid-iteration.
	require.NoError(t, os.Remove(bad))

	results := drain(t, c)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestNext_LineIndexRefreshedAfterSameLengthEdit(t *testing.T) {
	a := New(nil)
	root := t.TempDir()
	path := filepath.Join(root, "a.go")

	open := func() *FileResult {
		c, err := a.Open(context.Background(), root, Options{SkipInstall: true})
		require.NoError(t, err)
		defer c.Close()
		results := drain(t, c)
		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		return results[0]
	}

	writeFile(t, path, "package a\nvar x = 1\n")
	line, col := open().Lines.Position(10)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	// Rewrite with the same byte length but the newline moved. The second
	// open on the same Analyzer must index the new content, not reuse the
	// previous revision's offsets.
	writeFile(t, path, "package ab\nvar x= 1\n")
	line, col = open().Lines.Position(10)
	assert.Equal(t, 1, line)
	assert.Equal(t, 11, col)
}

func TestWalk_RequiresResolveUnits(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nvar foo = 1\n")

	results := drain(t, openRoot(t, root, Options{}))
	require.Len(t, results, 1)

	visited := 0
	require.NoError(t, results[0].Walk(func(Node) error {
		visited++
		return nil
	}))
	assert.Zero(t, visited, "Walk should be a no-op without ResolveUnits")
}

func TestWalk_VisitsIdentifiersPreOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nvar foo = 1\nvar bar = foo\n")

	results := drain(t, openRoot(t, root, Options{ResolveUnits: true}))
	require.Len(t, results, 1)

	var idents []string
	require.NoError(t, results[0].Walk(func(n Node) error {
		if n.Kind == "identifier" {
			idents = append(idents, n.Text)
		}
		return nil
	}))
	assert.Equal(t, []string{"foo", "bar", "foo"}, idents)
}

func TestLanguageForFile(t *testing.T) {
	lang, ok := LanguageForFile("x/y/main.go")
	require.True(t, ok)
	assert.Equal(t, "go", lang)

	lang, ok = LanguageForFile("app.TSX")
	require.True(t, ok)
	assert.Equal(t, "typescript", lang)

	_, ok = LanguageForFile("notes.txt")
	assert.False(t, ok)
}
