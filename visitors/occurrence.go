package visitors

import (
	"fmt"
	"io"
	"sort"

	"github.com/jward/surveyor"
)

// identifierKinds are the grammar kinds treated as identifier occurrences.
// Tree-sitter grammars disagree on naming, so this covers the common ones.
var identifierKinds = []string{
	"identifier",
	"field_identifier",
	"type_identifier",
	"property_identifier",
	"package_identifier",
}

// OccurrenceCounter counts occurrences of specific identifier names. Counts
// are scoped per root — reset in PreAnalysis, printed in PostAnalysis — with
// grand totals printed when the run finishes. State scoping is this
// visitor's own responsibility; the engine never resets it.
type OccurrenceCounter struct {
	names  map[string]bool // nil means count every identifier
	w      io.Writer
	stats  *surveyor.RunStatistics
	root   map[string]int
	totals map[string]int
}

// NewOccurrenceCounter creates a counter for the given identifier names,
// writing per-root and final tallies to w. With no names, every identifier
// is counted. stats may be nil.
func NewOccurrenceCounter(w io.Writer, stats *surveyor.RunStatistics, names ...string) *OccurrenceCounter {
	c := &OccurrenceCounter{
		w:      w,
		stats:  stats,
		totals: make(map[string]int),
	}
	if len(names) > 0 {
		c.names = make(map[string]bool, len(names))
		for _, n := range names {
			c.names[n] = true
		}
	}
	return c
}

// NodeKinds narrows node dispatch to identifier nodes.
func (c *OccurrenceCounter) NodeKinds() []string {
	return identifierKinds
}

// PreAnalysis resets the per-root counts.
func (c *OccurrenceCounter) PreAnalysis(root *surveyor.AnalysisRoot, isSubRoot bool, index, total int) error {
	c.root = make(map[string]int)
	return nil
}

// VisitNode tallies one identifier occurrence.
func (c *OccurrenceCounter) VisitNode(path string, node surveyor.Node) error {
	if c.names != nil && !c.names[node.Text] {
		return nil
	}
	c.root[node.Text]++
	c.totals[node.Text]++
	return nil
}

// PostAnalysis prints the root's tallies and keeps going.
func (c *OccurrenceCounter) PostAnalysis(root *surveyor.AnalysisRoot) (surveyor.Directive, error) {
	if err := c.write(root.Name(), c.root); err != nil {
		return surveyor.Continue, err
	}
	if c.stats != nil {
		for _, n := range c.root {
			c.stats.AddFindings(n)
		}
	}
	return surveyor.Continue, nil
}

// RunFinished prints the grand totals across all processed roots.
func (c *OccurrenceCounter) RunFinished() error {
	return c.write("total", c.totals)
}

func (c *OccurrenceCounter) write(label string, counts map[string]int) error {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if _, err := fmt.Fprintf(c.w, "%s: %s x%d\n", label, n, counts[n]); err != nil {
			return err
		}
	}
	return nil
}
