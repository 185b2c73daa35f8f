package types

// ConvKind names the instruction family a conversion compiles down to
// (spec §4.I Conversion opcodes).
type ConvKind int

const (
	ConvNone ConvKind = iota
	ConvIntWiden
	ConvIntNarrow
	ConvIntFloat
	ConvFloatInt
	ConvIntDouble
	ConvDoubleInt
	ConvFloatDouble
	ConvDoubleFloat
	ConvBoolInt
	ConvIntBool
	ConvHandleUpcast
)

// Conversion-cost levels (spec §4.H point 5 / §8 property 5). Costs compose
// by addition across arguments, and conversion-cost monotonicity requires
// that a two-step conversion never costs less than the sum of its steps --
// guaranteed here because every CanConvertTo call returns the cost of a
// single direct step, and the checker never chains two conversions for one
// value (each expression position gets at most one inserted conversion).
const (
	CostExact         = 0
	CostWidening      = 1
	CostNarrowing     = 2
	CostHandleUpcast  = 3
	CostIncompatible  = -1
)

// Conversion describes how to turn a value of one DataType into another:
// whether the conversion is implicit (usable for argument/assignment
// contexts without an explicit cast), its cost for overload scoring, and
// the instruction kind the emitter should produce.
type Conversion struct {
	Kind       ConvKind
	IsImplicit bool
	Cost       int
}

// HierarchyFunc answers "is derived a subclass of (or the same as) base".
// Passed in by the checker so this package does not need a
// CompilationContext dependency.
type HierarchyFunc func(derived, base TypeId) bool

// CanConvertTo computes the conversion (if any) from "from" to "to". A nil
// result with ok=false means no conversion exists at all.
func CanConvertTo(from, to DataType, isSubclass HierarchyFunc) (*Conversion, bool) {
	if from.Equal(to) {
		return &Conversion{Kind: ConvNone, IsImplicit: true, Cost: CostExact}, true
	}

	// Handle-to-handle: upcast along the class/interface hierarchy.
	if from.IsHandle && to.IsHandle {
		if isSubclass != nil && isSubclass(from.TypeID, to.TypeID) {
			implicit := !(to.IsHandleToConst == false && from.IsHandleToConst)
			return &Conversion{Kind: ConvHandleUpcast, IsImplicit: implicit, Cost: CostHandleUpcast}, true
		}
		return nil, false
	}
	// A value cannot silently become a handle or vice versa; that always
	// requires cast<T>() (spec §4.H "Handle semantics").
	if from.IsHandle != to.IsHandle {
		return nil, false
	}

	if IsPrimitive(from.TypeID) && IsPrimitive(to.TypeID) {
		return primitiveConversion(from.TypeID, to.TypeID)
	}

	return nil, false
}

func primitiveConversion(from, to TypeId) (*Conversion, bool) {
	switch {
	case from == BoolID && isIntegerPrimitive(to):
		return &Conversion{Kind: ConvBoolInt, IsImplicit: true, Cost: CostWidening}, true
	case isIntegerPrimitive(from) && to == BoolID:
		return &Conversion{Kind: ConvIntBool, IsImplicit: false, Cost: CostNarrowing}, true

	case isIntegerPrimitive(from) && isIntegerPrimitive(to):
		fw, tw := integerWidth(from), integerWidth(to)
		fu, tu := isUnsignedPrimitive(from), isUnsignedPrimitive(to)
		switch {
		case fw < tw && fu == tu:
			return &Conversion{Kind: ConvIntWiden, IsImplicit: true, Cost: CostWidening}, true
		case fw == tw && fu == tu:
			return &Conversion{Kind: ConvNone, IsImplicit: true, Cost: CostExact}, true
		default:
			return &Conversion{Kind: ConvIntNarrow, IsImplicit: false, Cost: CostNarrowing}, true
		}

	case isIntegerPrimitive(from) && to == FloatID:
		return &Conversion{Kind: ConvIntFloat, IsImplicit: true, Cost: CostWidening}, true
	case isIntegerPrimitive(from) && to == DoubleID:
		return &Conversion{Kind: ConvIntDouble, IsImplicit: true, Cost: CostWidening}, true
	case from == FloatID && isIntegerPrimitive(to):
		return &Conversion{Kind: ConvFloatInt, IsImplicit: false, Cost: CostNarrowing}, true
	case from == DoubleID && isIntegerPrimitive(to):
		return &Conversion{Kind: ConvDoubleInt, IsImplicit: false, Cost: CostNarrowing}, true

	case from == FloatID && to == DoubleID:
		return &Conversion{Kind: ConvFloatDouble, IsImplicit: true, Cost: CostWidening}, true
	case from == DoubleID && to == FloatID:
		return &Conversion{Kind: ConvDoubleFloat, IsImplicit: false, Cost: CostNarrowing}, true
	}
	return nil, false
}
