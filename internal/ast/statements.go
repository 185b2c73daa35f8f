package ast

import "github.com/emberscript/emberc/internal/diag"

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Span diag.Span
	X    Expression
}

func (s *ExprStmt) Pos() diag.Span { return s.Span }
func (s *ExprStmt) stmtNode()      {}

// Declarator is one name in a variable declaration statement; it may be
// initialized by "= expr" or by a constructor-style arg list (spec §3/§4.D:
// "desugared to a call expression with the variable's type name as
// callee" happens in the checker, not here -- the parser keeps both forms
// distinct so that desugaring is explicit and inspectable).
type Declarator struct {
	Name string
	Init Expression // set when "= expr" form used
	Args []Arg      // set when "(args)" constructor form used
}

// VarDeclStmt declares one or more variables of the same type.
type VarDeclStmt struct {
	Span        diag.Span
	Type        TypeExpr
	Declarators []Declarator
}

func (v *VarDeclStmt) Pos() diag.Span { return v.Span }
func (v *VarDeclStmt) stmtNode()      {}

// ReturnStmt is "return [expr];".
type ReturnStmt struct {
	Span  diag.Span
	Value Expression // nil for a bare "return;"
}

func (r *ReturnStmt) Pos() diag.Span { return r.Span }
func (r *ReturnStmt) stmtNode()      {}

type BreakStmt struct{ Span diag.Span }

func (b *BreakStmt) Pos() diag.Span { return b.Span }
func (b *BreakStmt) stmtNode()      {}

type ContinueStmt struct{ Span diag.Span }

func (c *ContinueStmt) Pos() diag.Span { return c.Span }
func (c *ContinueStmt) stmtNode()      {}

// BlockStmt is a brace-delimited statement list; it introduces a new scope
// (spec §4.H statement emission: "Block: push a scope; emit each
// statement; pop scope.").
type BlockStmt struct {
	Span  diag.Span
	Stmts []Statement
}

func (b *BlockStmt) Pos() diag.Span { return b.Span }
func (b *BlockStmt) stmtNode()      {}

// IfStmt is "if (cond) then [else else_]".
type IfStmt struct {
	Span      diag.Span
	Condition Expression
	Then      Statement
	Else      Statement // nil when no else branch
}

func (i *IfStmt) Pos() diag.Span { return i.Span }
func (i *IfStmt) stmtNode()      {}

// WhileStmt is "while (cond) body".
type WhileStmt struct {
	Span      diag.Span
	Condition Expression
	Body      Statement
}

func (w *WhileStmt) Pos() diag.Span { return w.Span }
func (w *WhileStmt) stmtNode()      {}

// DoWhileStmt is "do body while (cond);".
type DoWhileStmt struct {
	Span      diag.Span
	Body      Statement
	Condition Expression
}

func (d *DoWhileStmt) Pos() diag.Span { return d.Span }
func (d *DoWhileStmt) stmtNode()      {}

// ForStmt is the C-style "for (init; cond; update) body". Condition
// defaults to "true" when omitted (spec §4.H).
type ForStmt struct {
	Span      diag.Span
	Init      Statement // nil, ExprStmt, or VarDeclStmt
	Condition Expression
	Update    []Expression
	Body      Statement
}

func (f *ForStmt) Pos() diag.Span { return f.Span }
func (f *ForStmt) stmtNode()      {}

// ForeachVar is one "Type name" pair in a "foreach (T1 a, T2 b : ...)" loop.
type ForeachVar struct {
	Type TypeExpr
	Name string
}

// ForeachStmt is "foreach (vars : source) body"; one or more iteration
// variables, each with its own type (spec §3).
type ForeachStmt struct {
	Span   diag.Span
	Vars   []ForeachVar
	Source Expression
	Body   Statement
}

func (f *ForeachStmt) Pos() diag.Span { return f.Span }
func (f *ForeachStmt) stmtNode()      {}

// SwitchCase carries one or more labels (values) and zero or more body
// statements; the parser rejects a switch whose trailing case has no
// statements (spec §3).
type SwitchCase struct {
	Labels     []Expression // empty for "default"
	IsDefault  bool
	Body       []Statement
}

// SwitchStmt is "switch (scrutinee) { cases... }".
type SwitchStmt struct {
	Span      diag.Span
	Scrutinee Expression
	Cases     []SwitchCase
}

func (s *SwitchStmt) Pos() diag.Span { return s.Span }
func (s *SwitchStmt) stmtNode()      {}

// CatchClause has no bound exception variable (spec §3: "catch block has no
// exception variable") -- the error object is reached via a host runtime
// API at execution time, never through an AST-visible binding.
type CatchClause struct {
	Span diag.Span
	Body *BlockStmt
}

// TryStmt is "try { ... } catch { ... }".
type TryStmt struct {
	Span  diag.Span
	Body  *BlockStmt
	Catch *CatchClause // nil if no catch clause was parsed (error recovery)
}

func (t *TryStmt) Pos() diag.Span { return t.Span }
func (t *TryStmt) stmtNode()      {}
