package parser

import (
	"fmt"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxError locates the first error the parser recovered from.
// Line and Column are 1-based; Column counts characters, not bytes.
type SyntaxError struct {
	Line   int
	Column int
	// Kind is "ERROR" for unexpected input, or "MISSING <node>" when the
	// parser had to insert a token.
	Kind string
}

func (e *SyntaxError) Error() string {
	if e.Kind != "" && e.Kind != "ERROR" {
		return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Kind)
	}
	return fmt.Sprintf("syntax error at line %d, column %d", e.Line, e.Column)
}

// FindSyntaxError returns the first ERROR or MISSING node of the tree in
// document order, or nil when the tree is clean.
func FindSyntaxError(root *ts.Node, source []byte) *SyntaxError {
	if root == nil || !root.HasError() {
		return nil
	}

	bad := firstErrorNode(root)
	if bad == nil {
		// HasError was set but no node reports it; blame the root.
		bad = root
	}

	kind := "ERROR"
	if bad.IsMissing() {
		kind = "MISSING " + bad.Kind()
	}

	pos := bad.StartPosition()
	return &SyntaxError{
		Line:   int(pos.Row) + 1,
		Column: charColumn(source, bad.StartByte(), pos.Column) + 1,
		Kind:   kind,
	}
}

func firstErrorNode(n *ts.Node) *ts.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

// charColumn converts a byte column into a character column by decoding the
// line prefix.
func charColumn(source []byte, startByte, byteColumn uint) int {
	if startByte > uint(len(source)) || byteColumn > startByte {
		return int(byteColumn)
	}
	lineStart := startByte - byteColumn
	return utf8.RuneCount(source[lineStart:startByte])
}
