package visitors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/surveyor"
)

func ident(text string) surveyor.Node {
	return surveyor.Node{Kind: "identifier", Text: text}
}

func TestOccurrenceCounter_CountsNamedIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	c := NewOccurrenceCounter(&buf, nil, "foo")
	root := &surveyor.AnalysisRoot{Path: "/tmp/app"}

	require.NoError(t, c.PreAnalysis(root, false, 0, 1))
	require.NoError(t, c.VisitNode("a.go", ident("foo")))
	require.NoError(t, c.VisitNode("a.go", ident("bar")))
	require.NoError(t, c.VisitNode("b.go", ident("foo")))

	_, err := c.PostAnalysis(root)
	require.NoError(t, err)
	require.NoError(t, c.RunFinished())

	assert.Equal(t, "app: foo x2\ntotal: foo x2\n", buf.String())
}

func TestOccurrenceCounter_ResetsPerRoot(t *testing.T) {
	var buf bytes.Buffer
	stats := &surveyor.RunStatistics{}
	c := NewOccurrenceCounter(&buf, stats, "x")
	r1 := &surveyor.AnalysisRoot{Path: "/tmp/one"}
	r2 := &surveyor.AnalysisRoot{Path: "/tmp/two"}

	require.NoError(t, c.PreAnalysis(r1, true, 0, 2))
	require.NoError(t, c.VisitNode("a.go", ident("x")))
	require.NoError(t, c.VisitNode("a.go", ident("x")))
	_, err := c.PostAnalysis(r1)
	require.NoError(t, err)

	require.NoError(t, c.PreAnalysis(r2, true, 1, 2))
	require.NoError(t, c.VisitNode("b.go", ident("x")))
	_, err = c.PostAnalysis(r2)
	require.NoError(t, err)

	require.NoError(t, c.RunFinished())

	assert.Equal(t,
		"one: x x2\n"+
			"two: x x1\n"+
			"total: x x3\n",
		buf.String())
	assert.Equal(t, 3, stats.Findings)
}

func TestOccurrenceCounter_NoNamesCountsEverything(t *testing.T) {
	var buf bytes.Buffer
	c := NewOccurrenceCounter(&buf, nil)
	root := &surveyor.AnalysisRoot{Path: "/tmp/app"}

	require.NoError(t, c.PreAnalysis(root, false, 0, 1))
	require.NoError(t, c.VisitNode("a.go", ident("alpha")))
	require.NoError(t, c.VisitNode("a.go", ident("beta")))
	_, err := c.PostAnalysis(root)
	require.NoError(t, err)

	assert.Equal(t, "app: alpha x1\napp: beta x1\n", buf.String())
}

func TestOccurrenceCounter_DeclaresIdentifierKinds(t *testing.T) {
	c := NewOccurrenceCounter(&bytes.Buffer{}, nil)
	assert.Contains(t, c.NodeKinds(), "identifier")
}

func TestOccurrenceCounter_ContinuesByDefault(t *testing.T) {
	c := NewOccurrenceCounter(&bytes.Buffer{}, nil)
	root := &surveyor.AnalysisRoot{Path: "/tmp/app"}
	require.NoError(t, c.PreAnalysis(root, false, 0, 1))
	directive, err := c.PostAnalysis(root)
	require.NoError(t, err)
	assert.Equal(t, surveyor.Continue, directive)
}
