package ast

import "github.com/emberscript/emberc/internal/diag"

// Visibility is public (the default), private, or protected (spec §3).
type Visibility int

const (
	VisPublic Visibility = iota
	VisPrivate
	VisProtected
)

// Modifiers are the declaration-level contextual keywords (spec §4.B):
// shared, external, abstract, final.
type Modifiers struct {
	Shared   bool
	External bool
	Abstract bool
	Final    bool
}

// FuncAttrs are the method-level contextual attributes: override, final,
// explicit, property, delete -- plus const-ness of the method itself.
type FuncAttrs struct {
	Override bool
	Final    bool
	Explicit bool
	Property bool
	Delete   bool
	Const    bool
}

// Param is one function/method parameter.
type Param struct {
	Name    string
	Type    TypeExpr
	Default Expression // nil when no default
}

// TemplateParam is one template/generic parameter name on a class or
// funcdef declaration (spec §4.D: "script code cannot declare templates,
// but the grammar accepts them for FFI-registered types").
type TemplateParam struct {
	Name string
}

// FuncDecl is a function or method declaration; ObjectType is set when this
// is a method (non-empty enclosing class/interface qualified name).
type FuncDecl struct {
	Span       diag.Span
	Mods       Modifiers
	Vis        Visibility
	Attrs      FuncAttrs
	Name       string
	Params     []Param
	ReturnType TypeExpr // nil for constructors/destructors
	Body       *BlockStmt
	IsNative   bool // true for FFI-declared signatures with no body
}

func (f *FuncDecl) Pos() diag.Span { return f.Span }
func (f *FuncDecl) declNode()      {}

// FieldDecl is a class/record data member.
type FieldDecl struct {
	Span diag.Span
	Mods Modifiers
	Vis  Visibility
	Name string
	Type TypeExpr
	Init Expression // nil if uninitialized
}

func (f *FieldDecl) Pos() diag.Span { return f.Span }
func (f *FieldDecl) declNode()      {}

// PropertyDecl is "Type name { get ... set ... }".
type PropertyDecl struct {
	Span   diag.Span
	Vis    Visibility
	Name   string
	Type   TypeExpr
	Getter *FuncDecl // nil if write-only
	Setter *FuncDecl // nil if read-only
}

func (p *PropertyDecl) Pos() diag.Span { return p.Span }
func (p *PropertyDecl) declNode()      {}

// BaseRef is one entry in a class's "extends"/"implements" list or an
// interface's base-interface list.
type BaseRef struct {
	Name  string
	Scope []ScopeSegment
}

// ClassMember is the sum of everything that can appear inside a class
// body: fields, methods, properties, constructors, destructors.
type ClassMember interface {
	Decl
	classMemberNode()
}

func (f *FuncDecl) classMemberNode()     {}
func (f *FieldDecl) classMemberNode()    {}
func (p *PropertyDecl) classMemberNode() {}

// ClassDecl is a class declaration (spec §3/§4.D).
type ClassDecl struct {
	Span       diag.Span
	Mods       Modifiers
	Vis        Visibility
	Name       string
	TemplateParams []TemplateParam
	Base       *BaseRef
	Interfaces []BaseRef
	Members    []ClassMember
}

func (c *ClassDecl) Pos() diag.Span { return c.Span }
func (c *ClassDecl) declNode()      {}

// InterfaceDecl is an interface declaration; its members are method
// signatures only (no bodies).
type InterfaceDecl struct {
	Span    diag.Span
	Vis     Visibility
	Name    string
	Bases   []BaseRef
	Methods []*FuncDecl
}

func (i *InterfaceDecl) Pos() diag.Span { return i.Span }
func (i *InterfaceDecl) declNode()      {}

// EnumValue is one "Name[= expr]" entry in an enum.
type EnumValue struct {
	Name  string
	Value Expression // nil when auto-numbered from the previous value + 1
}

// EnumDecl is an enum declaration.
type EnumDecl struct {
	Span   diag.Span
	Vis    Visibility
	Name   string
	Values []EnumValue
}

func (e *EnumDecl) Pos() diag.Span { return e.Span }
func (e *EnumDecl) declNode()      {}

// NamespaceDecl groups declarations under a namespace path.
type NamespaceDecl struct {
	Span  diag.Span
	Path  []string
	Decls []Decl
}

func (n *NamespaceDecl) Pos() diag.Span { return n.Span }
func (n *NamespaceDecl) declNode()      {}

// TypedefDecl is "typedef OldType NewName;".
type TypedefDecl struct {
	Span  diag.Span
	Name  string
	Alias TypeExpr
}

func (t *TypedefDecl) Pos() diag.Span { return t.Span }
func (t *TypedefDecl) declNode()      {}

// FuncdefDecl declares a named function-signature type (spec glossary:
// "Funcdef").
type FuncdefDecl struct {
	Span       diag.Span
	Name       string
	Params     []Param
	ReturnType TypeExpr
}

func (f *FuncdefDecl) Pos() diag.Span { return f.Span }
func (f *FuncdefDecl) declNode()      {}

// GlobalVarDecl is a top-level (non-local) variable declaration.
type GlobalVarDecl struct {
	Span        diag.Span
	Mods        Modifiers
	Vis         Visibility
	Type        TypeExpr
	Declarators []Declarator
}

func (g *GlobalVarDecl) Pos() diag.Span { return g.Span }
func (g *GlobalVarDecl) declNode()      {}

// ImportDecl brings a namespace into scope (spec §4.E "imported
// namespaces").
type ImportDecl struct {
	Span      diag.Span
	Namespace []string
}

func (i *ImportDecl) Pos() diag.Span { return i.Span }
func (i *ImportDecl) declNode()      {}

// MixinDecl declares a mixin block whose members are spliced into any class
// that includes it.
type MixinDecl struct {
	Span    diag.Span
	Name    string
	Members []ClassMember
}

func (m *MixinDecl) Pos() diag.Span { return m.Span }
func (m *MixinDecl) declNode()      {}
