package ast

import "github.com/emberscript/emberc/internal/diag"

// LiteralKind tags which literal form a Literal expression holds.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitBits
	LitFloat
	LitDouble
	LitString
	LitHeredoc
	LitBool
	LitNull
)

// Literal is any constant value literal (spec §3: "literal").
type Literal struct {
	Span     diag.Span
	Kind     LiteralKind
	Text     string // original lexeme, for bit-literals the base is reparsed downstream
	IntVal   int64
	FloatVal float64
	StrVal   string
	BoolVal  bool
}

func (l *Literal) Pos() diag.Span { return l.Span }
func (l *Literal) exprNode()      {}

// ScopeSegment is one "::"-separated path element before an identifier.
type ScopeSegment struct {
	Name string
}

// Ident is an identifier, optionally namespace-scoped and optionally
// carrying explicit template/generic type arguments (spec §3).
type Ident struct {
	Span      diag.Span
	Scope     []ScopeSegment // absolute (leading "::") or relative path
	Absolute  bool
	Name      string
	TypeArgs  []TypeExpr // present only for "Name<T, U>" forms
}

func (i *Ident) Pos() diag.Span { return i.Span }
func (i *Ident) exprNode()      {}

// UnaryExpr is a prefix operator applied to an operand: "- + ! ~ ++x --x @".
type UnaryExpr struct {
	Span     diag.Span
	Operator string
	Operand  Expression
}

func (u *UnaryExpr) Pos() diag.Span { return u.Span }
func (u *UnaryExpr) exprNode()      {}

// BinaryExpr is an infix binary operator application.
type BinaryExpr struct {
	Span     diag.Span
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpr) Pos() diag.Span { return b.Span }
func (b *BinaryExpr) exprNode()      {}

// TernaryExpr is "cond ? then : else".
type TernaryExpr struct {
	Span      diag.Span
	Condition Expression
	Then      Expression
	Else      Expression
}

func (t *TernaryExpr) Pos() diag.Span { return t.Span }
func (t *TernaryExpr) exprNode()      {}

// AssignOp enumerates "=" and every compound assignment operator.
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignPow
	AssignAnd
	AssignOr
	AssignXor
	AssignShl
	AssignShr
	AssignUShr
)

// AssignExpr is "lhs op= rhs".
type AssignExpr struct {
	Span  diag.Span
	Op    AssignOp
	LHS   Expression
	RHS   Expression
}

func (a *AssignExpr) Pos() diag.Span { return a.Span }
func (a *AssignExpr) exprNode()      {}

// Arg is one call/index argument, optionally name-tagged ("name: expr").
type Arg struct {
	Name  string // empty when positional
	Value Expression
}

// CallExpr is "callee(args)".
type CallExpr struct {
	Span   diag.Span
	Callee Expression
	Args   []Arg
}

func (c *CallExpr) Pos() diag.Span { return c.Span }
func (c *CallExpr) exprNode()      {}

// IndexExpr is "receiver[idx0, idx1, ...]"; each index may be named, per
// spec §3 ("multiple indices, each optionally named").
type IndexExpr struct {
	Span     diag.Span
	Receiver Expression
	Indices  []Arg
}

func (ix *IndexExpr) Pos() diag.Span { return ix.Span }
func (ix *IndexExpr) exprNode()      {}

// MemberExpr is "receiver.Name" (field access) or "receiver.Name(args)"
// (method call) -- the two are distinguished by IsCall, set from the
// parser's lookahead to "(" at parse time (spec §4.D).
type MemberExpr struct {
	Span     diag.Span
	Receiver Expression
	Name     string
	IsCall   bool
	Args     []Arg
}

func (m *MemberExpr) Pos() diag.Span { return m.Span }
func (m *MemberExpr) exprNode()      {}

// PostfixExpr is "++" or "--" applied after an lvalue.
type PostfixExpr struct {
	Span     diag.Span
	Operator string
	Operand  Expression
}

func (p *PostfixExpr) Pos() diag.Span { return p.Span }
func (p *PostfixExpr) exprNode()      {}

// CastExpr is "cast<T>(expr)".
type CastExpr struct {
	Span   diag.Span
	Target TypeExpr
	Value  Expression
}

func (c *CastExpr) Pos() diag.Span { return c.Span }
func (c *CastExpr) exprNode()      {}

// LambdaParam is one parameter of a lambda expression; Type is nil when the
// parameter's type must be inferred from an expected funcdef (spec §4.H).
type LambdaParam struct {
	Name string
	Type TypeExpr
}

// LambdaExpr is "function(params){body}".
type LambdaExpr struct {
	Span    diag.Span
	Params  []LambdaParam
	RetType TypeExpr // nil when inferred
	Body    *BlockStmt
}

func (l *LambdaExpr) Pos() diag.Span { return l.Span }
func (l *LambdaExpr) exprNode()      {}

// InitListExpr is "{ elem, elem, ... }".
type InitListExpr struct {
	Span  diag.Span
	Elems []Expression
}

func (i *InitListExpr) Pos() diag.Span { return i.Span }
func (i *InitListExpr) exprNode()      {}

// ParenExpr is a parenthesized expression, kept as its own node so spans
// cover the parens even though it is otherwise transparent to the checker.
type ParenExpr struct {
	Span  diag.Span
	Inner Expression
}

func (p *ParenExpr) Pos() diag.Span { return p.Span }
func (p *ParenExpr) exprNode()      {}

// ThisExpr / SuperExpr are the two implicit-receiver keywords.
type ThisExpr struct{ Span diag.Span }

func (t *ThisExpr) Pos() diag.Span { return t.Span }
func (t *ThisExpr) exprNode()      {}

type SuperExpr struct{ Span diag.Span }

func (s *SuperExpr) Pos() diag.Span { return s.Span }
func (s *SuperExpr) exprNode()      {}
