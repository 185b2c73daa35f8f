// Package parser implements the hand-written Pratt + recursive-descent
// parser (spec §4.D): precedence-climbing for expressions, recursive
// descent for statements and declarations, all allocating into a single
// ast.Arena so the resulting tree is read-only once Parse returns.
package parser

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/lexer"
)

// Binding powers, lowest to highest (spec §4.D precedence table). Unlike
// the teacher's named-constant ladder, these are the literal values spec.md
// gives so right-associative operators (assignment, ternary, "**") can be
// expressed directly as "left_bp > right_bp" without renumbering a whole
// const block by hand.
const (
	bpLowest     = 0
	bpAssign     = 1 // right-assoc: left=2 right=1
	bpAssignR    = 2
	bpTernary    = 2 // right-assoc: left=3 right=2
	bpTernaryL   = 3
	bpOrOr       = 5
	bpXorXor     = 7
	bpAndAnd     = 9
	bpBitOr      = 11
	bpBitXor     = 13
	bpBitAnd     = 15
	bpEquality   = 17
	bpRelational = 19
	bpShift      = 21
	bpAdditive   = 23
	bpMultiplic  = 25
	bpPowR       = 27 // "**" right operand binds at 27
	bpPrefix     = 27
	bpPow        = 28 // "**" left binds at 28 (higher than its own right)
	bpPostfix    = 29
)

type infixBP struct{ left, right int }

var infixPrecedence = map[lexer.Kind]infixBP{
	lexer.ASSIGN:         {bpAssignR, bpAssign},
	lexer.PLUS_ASSIGN:    {bpAssignR, bpAssign},
	lexer.MINUS_ASSIGN:   {bpAssignR, bpAssign},
	lexer.STAR_ASSIGN:    {bpAssignR, bpAssign},
	lexer.SLASH_ASSIGN:   {bpAssignR, bpAssign},
	lexer.PERCENT_ASSIGN: {bpAssignR, bpAssign},
	lexer.POW_ASSIGN:     {bpAssignR, bpAssign},
	lexer.AMP_ASSIGN:     {bpAssignR, bpAssign},
	lexer.PIPE_ASSIGN:    {bpAssignR, bpAssign},
	lexer.CARET_ASSIGN:   {bpAssignR, bpAssign},
	lexer.SHL_ASSIGN:     {bpAssignR, bpAssign},
	lexer.SHR_ASSIGN:     {bpAssignR, bpAssign},
	lexer.USHR_ASSIGN:    {bpAssignR, bpAssign},

	lexer.QUESTION: {bpTernaryL, bpTernary},

	lexer.OR_OR:   {bpOrOr, bpOrOr + 1},
	lexer.XOR_XOR: {bpXorXor, bpXorXor + 1},
	lexer.AND_AND: {bpAndAnd, bpAndAnd + 1},
	lexer.PIPE:    {bpBitOr, bpBitOr + 1},
	lexer.CARET:   {bpBitXor, bpBitXor + 1},
	lexer.AMP:     {bpBitAnd, bpBitAnd + 1},

	lexer.EQ:      {bpEquality, bpEquality + 1},
	lexer.NEQ:     {bpEquality, bpEquality + 1},
	lexer.IS:      {bpEquality, bpEquality + 1},
	lexer.BANG_IS: {bpEquality, bpEquality + 1},

	lexer.LT: {bpRelational, bpRelational + 1},
	lexer.LE: {bpRelational, bpRelational + 1},
	lexer.GT: {bpRelational, bpRelational + 1},
	lexer.GE: {bpRelational, bpRelational + 1},

	lexer.SHL:  {bpShift, bpShift + 1},
	lexer.SHR:  {bpShift, bpShift + 1},
	lexer.USHR: {bpShift, bpShift + 1},

	lexer.PLUS:  {bpAdditive, bpAdditive + 1},
	lexer.MINUS: {bpAdditive, bpAdditive + 1},

	lexer.STAR:    {bpMultiplic, bpMultiplic + 1},
	lexer.SLASH:   {bpMultiplic, bpMultiplic + 1},
	lexer.PERCENT: {bpMultiplic, bpMultiplic + 1},

	lexer.POW: {bpPow, bpPowR}, // right-associative: left > right
}

var postfixBP = map[lexer.Kind]int{
	lexer.INC:      bpPostfix,
	lexer.DEC:      bpPostfix,
	lexer.LPAREN:   bpPostfix,
	lexer.LBRACKET: bpPostfix,
	lexer.DOT:      bpPostfix,
}

var compoundAssignOps = map[lexer.Kind]ast.AssignOp{
	lexer.ASSIGN:         ast.AssignPlain,
	lexer.PLUS_ASSIGN:    ast.AssignAdd,
	lexer.MINUS_ASSIGN:   ast.AssignSub,
	lexer.STAR_ASSIGN:    ast.AssignMul,
	lexer.SLASH_ASSIGN:   ast.AssignDiv,
	lexer.PERCENT_ASSIGN: ast.AssignMod,
	lexer.POW_ASSIGN:     ast.AssignPow,
	lexer.AMP_ASSIGN:     ast.AssignAnd,
	lexer.PIPE_ASSIGN:    ast.AssignOr,
	lexer.CARET_ASSIGN:   ast.AssignXor,
	lexer.SHL_ASSIGN:     ast.AssignShl,
	lexer.SHR_ASSIGN:     ast.AssignShr,
	lexer.USHR_ASSIGN:    ast.AssignUShr,
}

// Parser holds everything needed to turn one source file's token stream
// into an arena-allocated ast.File. It is not safe for concurrent use
// (spec §5: "The parser and checker are not thread-safe").
type Parser struct {
	arena  *ast.Arena
	cur    *Cursor
	diags  *diag.Bag
	fileID int
	file   string

	// loopDepth counts the enclosing loops and switches so statement parsing
	// can reject a bare break/continue outside all of them without needing a
	// full scope-stack replica. A continue inside a switch with no enclosing
	// loop is not rejected here; the checker reports it.
	loopDepth int
}

// New creates a Parser over src, tokenizing it with the lexer package. The
// caller owns arena and diags and may reuse the same diag.Bag across
// several files of one module so diagnostics interleave in source order
// per file (spec §4.A/testable property 7 is about per-module ordering).
func New(arena *ast.Arena, diags *diag.Bag, fileID int, file, src string) *Parser {
	diags.BeginFile(file, src)
	lx := lexer.New(src)
	toks := lx.Tokenize()
	for _, e := range lx.Errors() {
		diags.Add(diag.InvalidSyntax, e.Span, "%s", e.Message)
	}
	return &Parser{
		arena:  arena,
		cur:    NewCursor(toks),
		diags:  diags,
		fileID: fileID,
		file:   file,
	}
}

func (p *Parser) tok() lexer.Token   { return p.cur.Current() }
func (p *Parser) peek(n int) lexer.Token { return p.cur.Peek(n) }
func (p *Parser) advance()           { p.cur.Advance() }

func (p *Parser) at(k lexer.Kind) bool { return p.tok().Kind == k }

// expect advances past tok if it matches k, else records an ExpectedToken
// diagnostic and does not advance (so the caller's synchronize() still
// sees the offending token).
func (p *Parser) expect(k lexer.Kind, what string) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	err := NewStructuredError(ErrKindMissing, diag.ExpectedToken, p.tok().Span).
		WithExpected(what).
		WithActual(p.tok())
	p.diags.AddDiagnostic(err.ToDiagnostic())
	return false
}

func (p *Parser) errorf(kind diag.Kind, span diag.Span, format string, args ...any) {
	p.diags.Add(kind, span, format, args...)
}

// ParseFile parses one complete source file into an *ast.File.
func (p *Parser) ParseFile(name string) *ast.File {
	var decls []ast.Decl
	for !p.at(lexer.EOF) {
		d := p.parseTopLevelDecl()
		if d != nil {
			decls = append(decls, d)
		} else {
			p.synchronize()
		}
	}
	return ast.Alloc(p.arena, ast.File{
		FileID: p.fileID,
		Name:   name,
		Decls:  ast.AllocSlice(p.arena, decls),
	})
}

// synchronize implements spec §4.A's panic-mode recovery: advance until a
// statement boundary (";", "{", "}") or a top-level declaration keyword.
func (p *Parser) synchronize() {
	for !p.at(lexer.EOF) {
		switch p.tok().Kind {
		case lexer.SEMI:
			p.advance()
			return
		case lexer.RBRACE:
			return
		case lexer.CLASS, lexer.INTERFACE, lexer.ENUM, lexer.NAMESPACE,
			lexer.TYPEDEF, lexer.FUNCDEF, lexer.IMPORT, lexer.MIXIN:
			return
		}
		p.advance()
	}
}

func mergeSpan(a, b diag.Span) diag.Span { return a.Merge(b) }
