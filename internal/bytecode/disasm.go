package bytecode

import (
	"fmt"
	"io"
)

// Disassembler renders a BytecodeChunk as human-readable text, for the
// emberc CLI's --disassemble flag and for snapshot tests.
type Disassembler struct {
	writer io.Writer
	chunk  *BytecodeChunk
}

// NewDisassembler creates a disassembler writing to w.
func NewDisassembler(chunk *BytecodeChunk, w io.Writer) *Disassembler {
	return &Disassembler{writer: w, chunk: chunk}
}

// Disassemble prints the chunk's constant pool followed by its instructions.
func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.writer, "== %s ==\n", d.chunk.Name)
	fmt.Fprintf(d.writer, "instructions: %d, constants: %d, locals: %d\n",
		len(d.chunk.Code), len(d.chunk.Constants), d.chunk.LocalCount)

	if len(d.chunk.Constants) > 0 {
		fmt.Fprintf(d.writer, "\nconstants:\n")
		for i, c := range d.chunk.Constants {
			fmt.Fprintf(d.writer, "  [%04d] %s\n", i, c.String())
		}
	}

	fmt.Fprintf(d.writer, "\ncode:\n")
	for offset := range d.chunk.Code {
		d.DisassembleInstruction(offset)
	}
}

// DisassembleInstruction prints the instruction at offset, one line.
func (d *Disassembler) DisassembleInstruction(offset int) {
	if offset < 0 || offset >= len(d.chunk.Code) {
		fmt.Fprintf(d.writer, "invalid offset: %d\n", offset)
		return
	}

	inst := d.chunk.Code[offset]
	d.printHeader(offset)

	switch {
	case inst.Op.IsJump():
		target := offset + 1 + int(inst.A)
		fmt.Fprintf(d.writer, "%-20s %+d -> %04d\n", inst.Op, inst.A, target)
	case inst.Op.HasTwoOperands():
		fmt.Fprintf(d.writer, "%-20s %d, %d\n", inst.Op, inst.A, inst.B)
	case inst.Op == PushString:
		fmt.Fprintf(d.writer, "%-20s %d %s\n", inst.Op, inst.A, d.constRepr(int(inst.A)))
	case inst.Op == PushInt || inst.Op == PushFloat || inst.Op == PushDouble:
		fmt.Fprintf(d.writer, "%-20s %d %s\n", inst.Op, inst.A, d.constRepr(int(inst.A)))
	case inst.Op == PushBool:
		fmt.Fprintf(d.writer, "%-20s %v\n", inst.Op, inst.A != 0)
	case isNoOperandOp(inst.Op):
		fmt.Fprintf(d.writer, "%s\n", inst.Op)
	default:
		fmt.Fprintf(d.writer, "%-20s %d\n", inst.Op, inst.A)
	}
}

func (d *Disassembler) constRepr(idx int) string {
	if idx < 0 || idx >= len(d.chunk.Constants) {
		return ""
	}
	return "; " + d.chunk.Constants[idx].String()
}

func (d *Disassembler) printHeader(offset int) {
	line := 0
	if offset < len(d.chunk.Lines) {
		line = d.chunk.Lines[offset]
	}
	if offset > 0 && offset-1 < len(d.chunk.Lines) && d.chunk.Lines[offset-1] == line {
		fmt.Fprintf(d.writer, "%04d    | ", offset)
	} else {
		fmt.Fprintf(d.writer, "%04d %4d ", offset, line)
	}
}

// String renders c for disassembly and error messages.
func (c Constant) String() string {
	switch c.Kind {
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("%gf", c.Float)
	case ConstDouble:
		return fmt.Sprintf("%g", c.Double)
	default:
		return "<unknown constant>"
	}
}

func isNoOperandOp(op OpCode) bool {
	switch op {
	case PushNull, LoadThis,
		Add, Sub, Mul, Div, Mod, Pow, Negate,
		BitAnd, BitOr, BitXor, BitNot, ShiftLeft, ShiftRight, ShiftRightUnsigned,
		LogicalAnd, LogicalOr, LogicalXor, Not,
		Equal, NotEqual, LessThan, LessEqual, GreaterThan, GreaterEqual,
		ConvIntFloat, ConvFloatInt, ConvIntDouble, ConvDoubleInt,
		ConvFloatDouble, ConvDoubleFloat, ConvIntWiden, ConvIntNarrow, ConvBoolInt,
		ConvIntBool, ConvHandleUpcast,
		Return, Pop, PopHandler:
		return true
	}
	return false
}
