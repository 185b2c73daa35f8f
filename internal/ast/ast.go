// Package ast defines the sealed AST node set for Ember source, allocated
// into a single Arena (spec §3, §4.C) and left read-only once parsing
// completes.
package ast

import "github.com/emberscript/emberc/internal/diag"

// Node is implemented by every AST node.
type Node interface {
	Pos() diag.Span
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Statement performs an action but produces no value.
type Statement interface {
	Node
	stmtNode()
}

// Decl is a top-level or member declaration.
type Decl interface {
	Node
	declNode()
}

// TypeExpr is a syntactic type expression (unresolved; the checker turns
// this into a types.DataType).
type TypeExpr interface {
	Node
	typeExprNode()
}

// File is one parsed source unit: the concatenation point for multi-source
// modules (SPEC_FULL §4's Module.AddSource). FileID lets spans disambiguate
// which source segment a diagnostic belongs to when several source strings
// were concatenated to form one module.
type File struct {
	FileID int
	Name   string
	Decls  []Decl
}

func (f *File) Pos() diag.Span {
	if len(f.Decls) > 0 {
		return f.Decls[0].Pos()
	}
	return diag.Span{Line: 1, Col: 1}
}

// Program is the root of a whole compiled module: every source file that
// was concatenated into it, in order.
type Program struct {
	Files []*File
}

func (p *Program) Pos() diag.Span {
	if len(p.Files) > 0 {
		return p.Files[0].Pos()
	}
	return diag.Span{Line: 1, Col: 1}
}
