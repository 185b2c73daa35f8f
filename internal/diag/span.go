// Package diag provides source spans and the diagnostic accumulator shared
// by the lexer, parser, and checker.
package diag

import "fmt"

// Span is a half-open source range: a starting line/column, and a length in
// runes. Every AST node and every diagnostic carries one.
type Span struct {
	Line int
	Col  int
	Len  int
}

// Merge returns the covering span of a and b, assuming a starts no later
// than b. Used when a parser rule wants to report the span of a whole
// production (e.g. a binary expression) from its sub-spans.
func (a Span) Merge(b Span) Span {
	if a.Line == 0 && a.Col == 0 && a.Len == 0 {
		return b
	}
	if b.Line == 0 && b.Col == 0 && b.Len == 0 {
		return a
	}
	if a.Line != b.Line {
		// Cross-line merges return whichever span starts on the earlier
		// line, unchanged; the result does not extend to cover the other.
		if b.Line > a.Line {
			return Span{Line: a.Line, Col: a.Col, Len: a.Len}
		}
		return Span{Line: b.Line, Col: b.Col, Len: b.Len}
	}
	end := b.Col + b.Len
	start := a.Col
	if b.Col < start {
		start = b.Col
	}
	return Span{Line: a.Line, Col: start, Len: end - start}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}
