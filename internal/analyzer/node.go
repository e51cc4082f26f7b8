package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Node is one syntax node surfaced to visitors. It carries the node kind as
// reported by the grammar, the node's source text, and its 1-based span.
type Node struct {
	Kind      string
	Text      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Walk traverses the file's syntax tree depth-first, pre-order, in document
// order, calling fn for every named node. Traversal stops at the first error
// returned by fn. Walk is a no-op for results without a syntax tree (failed
// files, unsupported extensions).
func (r *FileResult) Walk(fn func(Node) error) error {
	if r.tree == nil {
		return nil
	}
	return walkNode(r.tree.RootNode(), r.content, fn)
}

func walkNode(n *sitter.Node, content []byte, fn func(Node) error) error {
	if n.IsNamed() {
		if err := fn(makeNode(n, content)); err != nil {
			return err
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if err := walkNode(n.Child(i), content, fn); err != nil {
			return err
		}
	}
	return nil
}

func makeNode(n *sitter.Node, content []byte) Node {
	start := n.StartPoint()
	end := n.EndPoint()
	return Node{
		Kind:      n.Type(),
		Text:      n.Content(content),
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}
