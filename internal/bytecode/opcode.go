// Package bytecode implements the stack-based instruction set emitted by
// the checker (spec §4.I): opcode definitions, a BytecodeChunk container,
// a two-phase jump-patching emitter, and a disassembler.
package bytecode

// OpCode is one instruction in the abstract machine spec §4.I describes.
// The categories and names below are taken directly from that table.
type OpCode byte

const (
	// Constants
	PushInt OpCode = iota
	PushFloat
	PushDouble
	PushBool
	PushString
	PushNull

	// Locals
	LoadLocal
	StoreLocal

	// Globals
	LoadGlobal
	StoreGlobal

	// Fields
	LoadField
	StoreField
	LoadThis

	// Handles
	StoreHandle
	FuncPtr

	// Arithmetic
	Add
	Sub
	Mul
	Div
	Mod
	Pow
	Negate

	// Bitwise
	BitAnd
	BitOr
	BitXor
	BitNot
	ShiftLeft
	ShiftRight
	ShiftRightUnsigned

	// Logical
	LogicalAnd
	LogicalOr
	LogicalXor
	Not

	// Compare
	Equal
	NotEqual
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual

	// Conversion
	ConvIntFloat
	ConvFloatInt
	ConvIntDouble
	ConvDoubleInt
	ConvFloatDouble
	ConvDoubleFloat
	ConvIntWiden
	ConvIntNarrow
	ConvBoolInt
	ConvIntBool
	ConvHandleUpcast
	Cast

	// Stack
	Pop

	// Control
	Jump
	JumpIfFalse
	JumpIfTrue
	Return

	// Call
	Call
	CallMethod
	CallInterfaceMethod
	CallConstructor
	CallFactory
	CallPtr

	// Inc/Dec
	PreIncrement
	PreDecrement
	PostIncrement
	PostDecrement

	// Exception handling (spec §4.H try/catch: "install an exception
	// handler frame... on exception branch to catch"). Not itemized in
	// spec §4.I's condensed table, which the spec explicitly allows
	// ("implementer is free to pick... as long as source-level semantics
	// are preserved"); PushHandler's operand is the relative offset to the
	// catch block, patched the same way a conditional jump is.
	PushHandler
	PopHandler
)

var opcodeNames = map[OpCode]string{
	PushInt: "PushInt", PushFloat: "PushFloat", PushDouble: "PushDouble",
	PushBool: "PushBool", PushString: "PushString", PushNull: "PushNull",

	LoadLocal: "LoadLocal", StoreLocal: "StoreLocal",
	LoadGlobal: "LoadGlobal", StoreGlobal: "StoreGlobal",
	LoadField: "LoadField", StoreField: "StoreField", LoadThis: "LoadThis",

	StoreHandle: "StoreHandle", FuncPtr: "FuncPtr",

	Pop: "Pop",

	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Mod: "Mod", Pow: "Pow", Negate: "Negate",

	BitAnd: "BitAnd", BitOr: "BitOr", BitXor: "BitXor", BitNot: "BitNot",
	ShiftLeft: "ShiftLeft", ShiftRight: "ShiftRight", ShiftRightUnsigned: "ShiftRightUnsigned",

	LogicalAnd: "LogicalAnd", LogicalOr: "LogicalOr", LogicalXor: "LogicalXor", Not: "Not",

	Equal: "Equal", NotEqual: "NotEqual", LessThan: "LessThan", LessEqual: "LessEqual",
	GreaterThan: "GreaterThan", GreaterEqual: "GreaterEqual",

	ConvIntFloat: "ConvIntFloat", ConvFloatInt: "ConvFloatInt",
	ConvIntDouble: "ConvIntDouble", ConvDoubleInt: "ConvDoubleInt",
	ConvFloatDouble: "ConvFloatDouble", ConvDoubleFloat: "ConvDoubleFloat",
	ConvIntWiden: "ConvIntWiden", ConvIntNarrow: "ConvIntNarrow", ConvBoolInt: "ConvBoolInt",
	ConvIntBool: "ConvIntBool", ConvHandleUpcast: "ConvHandleUpcast",
	Cast: "Cast",

	Jump: "Jump", JumpIfFalse: "JumpIfFalse", JumpIfTrue: "JumpIfTrue", Return: "Return",

	Call: "Call", CallMethod: "CallMethod", CallInterfaceMethod: "CallInterfaceMethod",
	CallConstructor: "CallConstructor", CallFactory: "CallFactory", CallPtr: "CallPtr",

	PreIncrement: "PreIncrement", PreDecrement: "PreDecrement",
	PostIncrement: "PostIncrement", PostDecrement: "PostDecrement",

	PushHandler: "PushHandler", PopHandler: "PopHandler",
}

func (op OpCode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "UnknownOp"
}

// jumpOpcodes is the set of opcodes whose A operand is a relative offset
// patched by the emitter's jump-patching scheme (spec §4.I: "Jump offsets
// are relative to the instruction following the jump").
var jumpOpcodes = map[OpCode]bool{
	Jump: true, JumpIfFalse: true, JumpIfTrue: true, PushHandler: true,
}

// IsJump reports whether op carries a patchable relative jump offset.
func (op OpCode) IsJump() bool { return jumpOpcodes[op] }

// doubleOperandOpcodes carries two operands packed into A/B rather than one
// (CallInterfaceMethod(type_id, method_index), CallConstructor/CallFactory
// {type_id, func_id}), per spec §4.I.
var doubleOperandOpcodes = map[OpCode]bool{
	CallInterfaceMethod: true, CallConstructor: true, CallFactory: true,
}

// HasTwoOperands reports whether op uses both the A and B instruction
// fields rather than just A.
func (op OpCode) HasTwoOperands() bool { return doubleOperandOpcodes[op] }
