package ast

import "github.com/emberscript/emberc/internal/diag"

// TypeBaseKind tags the base form of a type expression (spec §3).
type TypeBaseKind int

const (
	TypePrimitive TypeBaseKind = iota
	TypeAuto
	TypeUnknown // "?"
	TypeNamed
	TypeParam // a template parameter name
)

// RefKind is the parameter reference annotation: none, plain "&" (inout by
// convention), or one of the explicit directional forms.
type RefKind int

const (
	RefNone RefKind = iota
	RefPlain
	RefIn
	RefOut
	RefInOut
)

// HandleSuffix is one "@" (optionally "@const") suffix in a type's suffix
// list (spec §3: "suffix list (each a handle '@' optionally followed by
// 'const')").
type HandleSuffix struct {
	Const bool
}

// Type is the full syntactic type expression: optional const, optional
// scope, a base form, optional template arguments, a suffix list of
// handles, and (depending on where it's used) a return-type "&" marker or a
// parameter RefKind.
type Type struct {
	Span        diag.Span
	Const       bool
	Scope       []ScopeSegment
	Absolute    bool
	BaseKind    TypeBaseKind
	Name        string // set for TypeNamed/TypeParam/TypePrimitive
	TypeArgs    []TypeExpr
	Suffixes    []HandleSuffix
	ReturnRef   bool // "&" on a return type
	ParamRef    RefKind
}

func (t *Type) Pos() diag.Span { return t.Span }
func (t *Type) typeExprNode()  {}

// IsHandle reports whether this type expression ends in at least one "@".
func (t *Type) IsHandle() bool { return len(t.Suffixes) > 0 }
