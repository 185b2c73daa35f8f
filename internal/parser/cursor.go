package parser

import (
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/lexer"
)

// Cursor is an immutable-feeling navigation handle over a buffered token
// stream. Every operation that moves the cursor returns position/value data
// rather than mutating shared parser fields, which keeps speculative
// lookahead (template-angle disambiguation, is_var_decl) a matter of saving
// and restoring an index rather than unwinding side effects.
type Cursor struct {
	tokens []lexer.Token
	index  int
}

// NewCursor buffers every token up front; the lexer itself has no state
// worth streaming incrementally for a front end this size, and a full
// buffer is what makes in-place template-close splitting possible (the
// parser rewrites entries behind the current index).
func NewCursor(tokens []lexer.Token) *Cursor {
	return &Cursor{tokens: tokens}
}

func (c *Cursor) Current() lexer.Token {
	return c.tokens[c.index]
}

// Peek returns the token n positions ahead of Current; Peek(0) == Current().
func (c *Cursor) Peek(n int) lexer.Token {
	idx := c.index + n
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1] // EOF sentinel
	}
	return c.tokens[idx]
}

// Advance moves the cursor forward one token, clamped at EOF.
func (c *Cursor) Advance() {
	if c.index < len(c.tokens)-1 {
		c.index++
	}
}

// Prev returns the token immediately before the current position, used to
// compute an expression's end span after a lookahead loop has already
// consumed past it (clamped to the first token, never negative).
func (c *Cursor) Prev() lexer.Token {
	idx := c.index - 1
	if idx < 0 {
		idx = 0
	}
	return c.tokens[idx]
}

// Mark returns an opaque position usable with ResetTo for backtracking.
func (c *Cursor) Mark() int {
	return c.index
}

func (c *Cursor) ResetTo(mark int) {
	c.index = mark
}

// SplitCurrentGreater rewrites the current compound `>>`/`>>>` token into
// two/three single `>` tokens in place, preserving per-token spans by
// dividing the original span's length evenly across the parts (spec §4.D
// "Template-close splitting"). The cursor ends up positioned on the first
// of the new `>` tokens, unchanged from before the call.
func (c *Cursor) SplitCurrentGreater(parts int) {
	cur := c.tokens[c.index]
	newTokens := make([]lexer.Token, parts)
	for i := 0; i < parts; i++ {
		newTokens[i] = lexer.Token{
			Kind:    lexer.GT,
			Literal: ">",
			Span: diag.Span{
				Line: cur.Span.Line,
				Col:  cur.Span.Col + i,
				Len:  1,
			},
		}
	}
	rest := append([]lexer.Token(nil), c.tokens[c.index+1:]...)
	c.tokens = append(c.tokens[:c.index], append(newTokens, rest...)...)
}
