package analyzer

import "sort"

// LineIndex is a file's line-offset table. It converts byte offsets from the
// parser into 1-based line and column numbers for display.
type LineIndex struct {
	// starts[i] is the byte offset of the first byte of line i+1.
	starts []int
	size   int
}

// NewLineIndex builds a LineIndex from file content.
func NewLineIndex(content []byte) *LineIndex {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(content)}
}

// LineCount returns the number of lines in the file. A trailing newline does
// not start a new line for counting purposes.
func (li *LineIndex) LineCount() int {
	n := len(li.starts)
	if n > 1 && li.starts[n-1] == li.size {
		return n - 1
	}
	return n
}

// Position converts a byte offset to a 1-based (line, column) pair. Offsets
// past the end of the file clamp to the last position.
func (li *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}
	// First line start strictly greater than offset; the line is the one before.
	i := sort.SearchInts(li.starts, offset+1) - 1
	return i + 1, offset - li.starts[i] + 1
}
