package bytecode

import "github.com/emberscript/emberc/internal/types"

// Instruction is one emitted opcode plus its operand(s). A single int64 A
// covers every one-operand form (slot index, constant index, FunctionId,
// relative jump offset); B is only populated for the double-operand forms
// CallInterfaceMethod/CallConstructor/CallFactory (spec §4.I).
type Instruction struct {
	Op OpCode
	A  int64
	B  int64
}

// ConstKind tags which field of Constant holds the value (spec §6:
// "constants: {strings:[bytes], …}" — generalized here to cover every
// literal kind PushX can reference by pool index, not just strings).
type ConstKind int

const (
	ConstString ConstKind = iota
	ConstInt
	ConstFloat
	ConstDouble
)

// Constant is one entry in a chunk's constant pool.
type Constant struct {
	Kind   ConstKind
	Str    string
	Int    int64
	Float  float32
	Double float64
}

// BytecodeChunk is the compiled form of one function body (spec §6:
// "BytecodeChunk{instructions, constants, local_count} referenced by
// FunctionId"). Lines carries a best-effort source line per instruction so
// runtime errors can be reported with source context, mirroring the
// teacher's per-instruction LineInfo table.
type BytecodeChunk struct {
	FunctionID types.FunctionId
	Name       string
	Code       []Instruction
	Constants  []Constant
	Lines      []int
	LocalCount int
}

// NewChunk creates an empty chunk for the named function.
func NewChunk(id types.FunctionId, name string) *BytecodeChunk {
	return &BytecodeChunk{FunctionID: id, Name: name}
}

// AddConstant interns v into the pool, returning its index. Identical
// string/numeric constants are deduplicated so repeated string literals in
// one function don't bloat the pool.
func (c *BytecodeChunk) AddConstant(v Constant) int {
	for i, existing := range c.Constants {
		if existing == v {
			return i
		}
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Emit appends an instruction with a single operand and returns its index.
func (c *BytecodeChunk) Emit(op OpCode, a int64, line int) int {
	return c.emit(Instruction{Op: op, A: a}, line)
}

// EmitAB appends a double-operand instruction (CallConstructor and
// friends) and returns its index.
func (c *BytecodeChunk) EmitAB(op OpCode, a, b int64, line int) int {
	return c.emit(Instruction{Op: op, A: a, B: b}, line)
}

func (c *BytecodeChunk) emit(inst Instruction, line int) int {
	idx := len(c.Code)
	c.Code = append(c.Code, inst)
	c.Lines = append(c.Lines, line)
	return idx
}

// EmitJump appends a jump instruction with a placeholder offset and
// returns its index, to be passed to PatchJump once the target is known
// (spec §4.I: "emit placeholder offsets, record patch sites, patch on
// label resolution").
func (c *BytecodeChunk) EmitJump(op OpCode, line int) int {
	return c.Emit(op, 0, line)
}

// PatchJump rewrites the jump instruction at jumpIndex so it targets the
// current end of the chunk. Offsets are relative to the instruction
// following the jump, per spec §4.I.
func (c *BytecodeChunk) PatchJump(jumpIndex int) {
	c.PatchJumpTo(jumpIndex, len(c.Code))
}

// PatchJumpTo rewrites the jump instruction at jumpIndex to target a
// specific instruction index (used for backward jumps, e.g. loop tops,
// where the target is already known when the jump is emitted).
func (c *BytecodeChunk) PatchJumpTo(jumpIndex, target int) {
	offset := target - (jumpIndex + 1)
	c.Code[jumpIndex].A = int64(offset)
}
