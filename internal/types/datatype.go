package types

// RefModifier is the parameter passing mode: none, in, out, inout
// (spec §3 DataType).
type RefModifier int

const (
	RefNone RefModifier = iota
	RefIn
	RefOut
	RefInOut
)

// DataType is the full type annotation on every value in the checker
// (spec §3): a type identity plus const/handle/reference qualifiers.
// Handles are typed pointers, independent of whether the referent is const.
type DataType struct {
	TypeID          TypeId
	IsConst         bool
	IsHandle        bool
	IsHandleToConst bool
	RefMod          RefModifier
}

// Primitive DataType constructors, used pervasively by literal typing and
// builtin signatures.
func Void() DataType   { return DataType{TypeID: VoidID} }
func Bool() DataType   { return DataType{TypeID: BoolID} }
func Int32() DataType  { return DataType{TypeID: Int32ID} }
func Int64() DataType  { return DataType{TypeID: Int64ID} }
func Float() DataType  { return DataType{TypeID: FloatID} }
func Double() DataType { return DataType{TypeID: DoubleID} }

// WithConst returns a copy of d marked const.
func (d DataType) WithConst() DataType {
	d.IsConst = true
	return d
}

// AsHandle returns a copy of d with IsHandle set, per the spec's "@e on a
// value -> handle-of expression: sets is_handle=true on the data type".
func (d DataType) AsHandle() DataType {
	d.IsHandle = true
	return d
}

// IsVoid reports whether this DataType names the void primitive.
func (d DataType) IsVoid() bool { return d.TypeID == VoidID }

// ReferentConst reports whether the object this DataType denotes -- the
// value itself for a plain type, or the pointee for a handle -- must be
// treated as const for field/property/method access (spec §4.H: "const
// propagates from a const object through field access to the field's
// type"). A handle can be marked const either by a leading "const" on its
// base type ("const P@ p") or a trailing "@const" suffix ("P@const p");
// both name a handle to a const object for this purpose.
func (d DataType) ReferentConst() bool {
	return d.IsConst || d.IsHandleToConst
}

// Equal reports exact identity: same underlying type id, same handle-ness.
// Const and ref-mode are not part of identity (they qualify a binding, not
// the value's type), matching how the checker compares argument types
// against parameter types for overload exactness.
func (d DataType) Equal(o DataType) bool {
	return d.TypeID == o.TypeID && d.IsHandle == o.IsHandle
}

func (d DataType) String() string {
	name := PrimitiveName(d.TypeID)
	if name == "" {
		name = "<unresolved>"
	}
	if d.IsConst {
		name = "const " + name
	}
	if d.IsHandle {
		name += "@"
		if d.IsHandleToConst {
			name += "const"
		}
	}
	return name
}

// OperatorBehavior tags which overloadable operator a method implements
// (spec glossary). Names mirror the method-name convention from spec §4.G.
type OperatorBehavior int

const (
	OpAdd OperatorBehavior = iota
	OpAddR
	OpSub
	OpSubR
	OpMul
	OpMulR
	OpDiv
	OpDivR
	OpMod
	OpModR
	OpPow
	OpPowR
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpPowAssign
	OpEquals
	OpCmp
	OpIndex
	OpIndexGet // get_opIndex
	OpIndexSet // set_opIndex
	OpCall
	OpNeg
	OpCom
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
	OpConv
)

// operatorMethodNames maps the method-name convention (spec §4.G point 3)
// to its OperatorBehavior; the reverse map lets the collector classify a
// declared method by name alone.
var operatorMethodNames = map[string]OperatorBehavior{
	"opAdd": OpAdd, "opAdd_r": OpAddR,
	"opSub": OpSub, "opSub_r": OpSubR,
	"opMul": OpMul, "opMul_r": OpMulR,
	"opDiv": OpDiv, "opDiv_r": OpDivR,
	"opMod": OpMod, "opMod_r": OpModR,
	"opPow": OpPow, "opPow_r": OpPowR,
	"opAssign":     OpAssign,
	"opAddAssign":  OpAddAssign,
	"opSubAssign":  OpSubAssign,
	"opMulAssign":  OpMulAssign,
	"opDivAssign":  OpDivAssign,
	"opModAssign":  OpModAssign,
	"opPowAssign":  OpPowAssign,
	"opEquals":     OpEquals,
	"opCmp":        OpCmp,
	"opIndex":      OpIndex,
	"get_opIndex":  OpIndexGet,
	"set_opIndex":  OpIndexSet,
	"opCall":       OpCall,
	"opNeg":        OpNeg,
	"opCom":        OpCom,
	"opPreInc":     OpPreInc,
	"opPreDec":     OpPreDec,
	"opPostInc":    OpPostInc,
	"opPostDec":    OpPostDec,
	"opConv":       OpConv,
}

// ClassifyOperatorMethod returns the OperatorBehavior a method name
// implements, and whether the name is an operator method at all.
func ClassifyOperatorMethod(name string) (OperatorBehavior, bool) {
	b, ok := operatorMethodNames[name]
	return b, ok
}

// ReverseBinaryOp returns the "_r" counterpart behavior used when overload
// lookup falls back to the right-hand operand (spec §4.H point 3).
func ReverseBinaryOp(b OperatorBehavior) (OperatorBehavior, bool) {
	switch b {
	case OpAdd:
		return OpAddR, true
	case OpSub:
		return OpSubR, true
	case OpMul:
		return OpMulR, true
	case OpDiv:
		return OpDivR, true
	case OpMod:
		return OpModR, true
	case OpPow:
		return OpPowR, true
	}
	return b, false
}

// CompoundAssignOp maps a compound-assignment source operator to the
// OperatorBehavior searched for before falling back to the desugared
// "x = x op y" form (spec §4.H point 3).
func CompoundAssignOp(op string) (OperatorBehavior, bool) {
	switch op {
	case "+=":
		return OpAddAssign, true
	case "-=":
		return OpSubAssign, true
	case "*=":
		return OpMulAssign, true
	case "/=":
		return OpDivAssign, true
	case "%=":
		return OpModAssign, true
	case "**=":
		return OpPowAssign, true
	}
	return 0, false
}
