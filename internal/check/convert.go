package check

import (
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// convOpcode maps a types.ConvKind to the instruction that performs it
// (spec §4.I Conversion opcodes). ConvNone has no instruction: the value
// already has the target type, so there is nothing to emit.
func convOpcode(kind types.ConvKind) (bytecode.OpCode, bool) {
	switch kind {
	case types.ConvIntFloat:
		return bytecode.ConvIntFloat, true
	case types.ConvFloatInt:
		return bytecode.ConvFloatInt, true
	case types.ConvIntDouble:
		return bytecode.ConvIntDouble, true
	case types.ConvDoubleInt:
		return bytecode.ConvDoubleInt, true
	case types.ConvFloatDouble:
		return bytecode.ConvFloatDouble, true
	case types.ConvDoubleFloat:
		return bytecode.ConvDoubleFloat, true
	case types.ConvIntWiden:
		return bytecode.ConvIntWiden, true
	case types.ConvIntNarrow:
		return bytecode.ConvIntNarrow, true
	case types.ConvBoolInt:
		return bytecode.ConvBoolInt, true
	case types.ConvIntBool:
		return bytecode.ConvIntBool, true
	case types.ConvHandleUpcast:
		return bytecode.ConvHandleUpcast, true
	}
	return 0, false
}

// emitImplicitConversion inserts the Conv* instruction (if any) needed to
// turn the value currently on top of the stack, of type from, into type
// to -- used at every argument, assignment-RHS, return-expression, and
// var-decl-initializer position (spec §4.H point 5: "insert implicit
// conversion instructions ... insert the appropriate instruction(s)"). A
// from/to pair with no implicit conversion at all is a TypeMismatch;
// from.Equal(to) and ConvNone both mean nothing needs to be emitted.
func (fc *FunctionCompiler) emitImplicitConversion(from, to types.DataType, span diag.Span, line int) {
	if to.IsVoid() || from.Equal(to) {
		return
	}
	conv, ok := types.CanConvertTo(from, to, fc.resolveHierarchy())
	if !ok || !conv.IsImplicit {
		fc.bag.Add(diag.TypeMismatch, span, "cannot implicitly convert %s to %s", from.String(), to.String())
		return
	}
	if op, hasOp := convOpcode(conv.Kind); hasOp {
		fc.chunk.Emit(op, 0, line)
	}
}

// reloadArgsConverted reloads each argument from its temp slot, in call
// order, inserting the conversion its matching parameter type requires
// immediately after the load (spec §4.H point 5). Called once the winning
// overload is known, after checkArgsToTemps evaluated every argument
// exactly once into slots.
func (fc *FunctionCompiler) reloadArgsConverted(slots []int, argTypes []types.DataType, params []types.Param, span diag.Span, line int) {
	for i, slot := range slots {
		fc.chunk.Emit(bytecode.LoadLocal, int64(slot), line)
		if i < len(params) {
			fc.emitImplicitConversion(argTypes[i], params[i].Type, span, line)
		}
	}
}
