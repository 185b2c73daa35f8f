package types

// TypeKind classifies how an instance of a type is constructed: value
// types use constructors (CallConstructor), reference types use factories
// (CallFactory), script objects use constructors but are heap-allocated
// (spec §3 TypeDef: "This flag drives which behavior list is queried at
// construction sites.").
type TypeKind int

const (
	ValueType TypeKind = iota
	ReferenceType
	ScriptObjectType
)

// TypeDef is implemented by every registered type variant: Primitive,
// Class, Interface, Enum, Funcdef, Template.
type TypeDef interface {
	TypeName() string
	ID() TypeId
	typeDefNode()
}

// PrimitiveDef is one of void/bool/int*/uint*/float/double.
type PrimitiveDef struct {
	Name string
	Id   TypeId
}

func (p *PrimitiveDef) TypeName() string { return p.Name }
func (p *PrimitiveDef) ID() TypeId       { return p.Id }
func (p *PrimitiveDef) typeDefNode()     {}

// FieldDef is one class field.
type FieldDef struct {
	Name    string
	Type    DataType
	Vis     Visibility
	IsConst bool
}

// PropertyDef is a class property: a getter and/or setter FunctionId.
type PropertyDef struct {
	Name   string
	Getter FunctionId
	Setter FunctionId
	HasGet bool
	HasSet bool
	Vis    Visibility
}

// Visibility mirrors ast.Visibility so the types package does not need to
// import ast (avoiding a dependency cycle; the compiler package is
// responsible for translating between the two during collection).
type Visibility int

const (
	Public Visibility = iota
	Private
	Protected
)

// Behaviors records the construction behaviors registered for a class
// beyond its ordinary constructor overload set: list construction from an
// initializer-list payload, via either a list factory (reference types) or
// a list constructor (value types).
type Behaviors struct {
	ListFactory      FunctionId
	HasListFactory   bool
	ListConstruct    FunctionId
	HasListConstruct bool
}

// ClassDef is a registered class (spec §3 TypeDef variant "Class").
type ClassDef struct {
	Qualified   string
	Id          TypeId
	Fields      []FieldDef
	Methods     map[string][]FunctionId // method name -> overload set
	Base        TypeId                  // zero value means no base
	HasBase     bool
	Interfaces  []TypeId
	Operators   map[OperatorBehavior][]FunctionId
	Properties  map[string]PropertyDef
	IsFinal     bool
	IsAbstract  bool
	TemplateParams []string
	TemplateOrigin TypeId // zero value + HasOrigin=false means not an instantiation
	HasOrigin      bool
	TypeArgs       []TypeId
	Kind           TypeKind
	Behaviors      Behaviors
}

func (c *ClassDef) TypeName() string { return c.Qualified }
func (c *ClassDef) ID() TypeId       { return c.Id }
func (c *ClassDef) typeDefNode()     {}

// InterfaceDef is a registered interface.
type InterfaceDef struct {
	Qualified string
	Id        TypeId
	Methods   []FunctionId
	Bases     []TypeId
}

func (i *InterfaceDef) TypeName() string { return i.Qualified }
func (i *InterfaceDef) ID() TypeId       { return i.Id }
func (i *InterfaceDef) typeDefNode()     {}

// EnumDef is a registered enum: value name -> integer.
type EnumDef struct {
	Qualified string
	Id        TypeId
	Values    map[string]int64
	Order     []string // declaration order, for iteration/printing
}

func (e *EnumDef) TypeName() string { return e.Qualified }
func (e *EnumDef) ID() TypeId       { return e.Id }
func (e *EnumDef) typeDefNode()     {}

// FuncdefDef is a registered named function-signature type.
type FuncdefDef struct {
	Qualified  string
	Id         TypeId
	Params     []DataType
	ReturnType DataType
}

func (f *FuncdefDef) TypeName() string { return f.Qualified }
func (f *FuncdefDef) ID() TypeId       { return f.Id }
func (f *FuncdefDef) typeDefNode()     {}

// TemplateDef is an uninstantiated class with type parameters (only
// reachable via FFI-registered types, per spec §4.D note that script code
// cannot declare templates).
type TemplateDef struct {
	Qualified string
	Id        TypeId
	Params    []string
}

func (t *TemplateDef) TypeName() string { return t.Qualified }
func (t *TemplateDef) ID() TypeId       { return t.Id }
func (t *TemplateDef) typeDefNode()     {}

// Param is one function parameter's compile-time signature (name is kept
// for diagnostics and named-argument matching, not signature identity).
type Param struct {
	Name    string
	Type    DataType
	HasDefault bool
}

// FunctionTraits are the per-function boolean attributes from spec §3
// FunctionDef.
type FunctionTraits struct {
	IsConst    bool
	IsVirtual  bool
	IsFinal    bool
	IsOverride bool
	IsProperty bool
	IsDelete   bool
	IsExplicit bool
}

// FunctionDef represents both FFI-registered and script-defined functions
// uniformly; native functions carry no AST body, only this type info
// (spec §3).
type FunctionDef struct {
	Hash       FunctionId
	Name       string
	Qualified  string
	Namespace  []string
	Params     []Param
	ReturnType DataType
	ObjectType TypeId
	HasObject  bool
	Traits     FunctionTraits
	IsNative   bool
	Vis        Visibility
}

// RequiredParamCount returns how many leading parameters have no default,
// used by overload arity filtering (spec §4.H: "arg_count ∈
// [required_params, total_params]").
func (f *FunctionDef) RequiredParamCount() int {
	n := 0
	for _, p := range f.Params {
		if p.HasDefault {
			break
		}
		n++
	}
	return n
}
