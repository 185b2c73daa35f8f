// Package types implements the type-system primitives from spec §3/§4.F:
// TypeId/FunctionId hashing, TypeDef variants, TypeKind classification, and
// the DataType annotation used throughout the checker.
package types

import (
	"fmt"
	"hash/fnv"
)

// TypeId is a deterministic hash of a type's fully qualified name. Hashes
// are stable across runs so bytecode can reference types numerically
// (spec §3).
type TypeId uint32

// FunctionId is a deterministic hash of a function's qualified name plus
// its parameter type ids.
type FunctionId uint32

// HashTypeName computes the TypeId for a fully qualified type name.
func HashTypeName(qualifiedName string) TypeId {
	h := fnv.New32a()
	_, _ = h.Write([]byte(qualifiedName))
	return TypeId(h.Sum32())
}

// HashFunctionName computes the FunctionId for a qualified function name
// plus its ordered parameter type ids, so two functions with the same name
// but different parameter lists never collide.
func HashFunctionName(qualifiedName string, paramTypes []TypeId) FunctionId {
	h := fnv.New32a()
	_, _ = h.Write([]byte(qualifiedName))
	for _, p := range paramTypes {
		_, _ = fmt.Fprintf(h, ":%d", p)
	}
	return FunctionId(h.Sum32())
}

// Well-known primitive TypeIds, computed the same way every other type id
// is (hash of its name) so the FFI registry and the script registry agree
// on these without special-casing.
var (
	VoidID   = HashTypeName("void")
	BoolID   = HashTypeName("bool")
	Int8ID   = HashTypeName("int8")
	Int16ID  = HashTypeName("int16")
	Int32ID  = HashTypeName("int32")
	Int64ID  = HashTypeName("int64")
	UInt8ID  = HashTypeName("uint8")
	UInt16ID = HashTypeName("uint16")
	UInt32ID = HashTypeName("uint32")
	UInt64ID = HashTypeName("uint64")
	FloatID  = HashTypeName("float")
	DoubleID = HashTypeName("double")
)

var primitiveNames = map[TypeId]string{
	VoidID: "void", BoolID: "bool",
	Int8ID: "int8", Int16ID: "int16", Int32ID: "int32", Int64ID: "int64",
	UInt8ID: "uint8", UInt16ID: "uint16", UInt32ID: "uint32", UInt64ID: "uint64",
	FloatID: "float", DoubleID: "double",
}

// IsPrimitive reports whether id names one of the built-in primitive types.
func IsPrimitive(id TypeId) bool {
	_, ok := primitiveNames[id]
	return ok
}

// PrimitiveName returns the primitive's keyword spelling, or "" if id is
// not a primitive.
func PrimitiveName(id TypeId) string {
	return primitiveNames[id]
}

func isIntegerPrimitive(id TypeId) bool {
	switch id {
	case Int8ID, Int16ID, Int32ID, Int64ID, UInt8ID, UInt16ID, UInt32ID, UInt64ID:
		return true
	}
	return false
}

func isUnsignedPrimitive(id TypeId) bool {
	switch id {
	case UInt8ID, UInt16ID, UInt32ID, UInt64ID:
		return true
	}
	return false
}

func integerWidth(id TypeId) int {
	switch id {
	case Int8ID, UInt8ID:
		return 8
	case Int16ID, UInt16ID:
		return 16
	case Int32ID, UInt32ID:
		return 32
	case Int64ID, UInt64ID:
		return 64
	}
	return 0
}
