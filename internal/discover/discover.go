// Package discover turns CLI input paths into an ordered list of analysis
// roots. A single markerless input directory is treated as a container of
// subprojects and expanded; anything else is used as-is.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// markerFiles identify a directory as a self-contained analyzable project.
var markerFiles = []string{
	"go.mod",
	"package.json",
	"pubspec.yaml",
	"Cargo.toml",
	"pyproject.toml",
}

// Root is one analysis root: an absolute directory path, the name of the
// container it was discovered under (empty for explicit roots), and its
// ordinal position in the run.
type Root struct {
	Path   string
	Parent string
	Index  int
}

// IsSubRoot reports whether this root was discovered by expanding a
// container directory. Affects display qualification only.
func (r Root) IsSubRoot() bool { return r.Parent != "" }

// Name returns the root's display name, qualified by its parent container
// when nested.
func (r Root) Name() string {
	base := filepath.Base(r.Path)
	if r.Parent != "" {
		return r.Parent + "/" + base
	}
	return base
}

// HasMarker reports whether dir directly contains a project manifest.
func HasMarker(dir string) bool {
	for _, m := range markerFiles {
		if info, err := os.Stat(filepath.Join(dir, m)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// Discover resolves the effective ordered root set for the given input
// paths. Invalid paths are reported as non-fatal errors and excluded;
// discovery continues with the remainder. The returned roots carry their
// final ordinal indexes.
func Discover(paths []string) ([]Root, []error) {
	var errs []error
	var valid []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolve %s: %w", p, err))
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			errs = append(errs, fmt.Errorf("no such directory: %s", p))
			continue
		}
		if !info.IsDir() {
			errs = append(errs, fmt.Errorf("not a directory: %s", p))
			continue
		}
		valid = append(valid, abs)
	}

	// A single markerless directory is a container: its immediate
	// non-hidden subdirectories become the root set.
	if len(paths) == 1 && len(valid) == 1 && !HasMarker(valid[0]) {
		roots, err := expandContainer(valid[0])
		if err != nil {
			errs = append(errs, err)
			return nil, errs
		}
		return roots, errs
	}

	roots := make([]Root, 0, len(valid))
	for i, p := range valid {
		roots = append(roots, Root{Path: p, Index: i})
	}
	return roots, errs
}

func expandContainer(dir string) ([]Root, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read container %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	parent := filepath.Base(dir)
	roots := make([]Root, 0, len(names))
	for i, name := range names {
		roots = append(roots, Root{
			Path:   filepath.Join(dir, name),
			Parent: parent,
			Index:  i,
		})
	}
	return roots, nil
}
