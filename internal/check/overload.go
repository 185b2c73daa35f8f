package check

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

var simpleBinaryOp = map[string]bytecode.OpCode{
	"+": bytecode.Add, "-": bytecode.Sub, "*": bytecode.Mul, "/": bytecode.Div, "%": bytecode.Mod, "**": bytecode.Pow,
	"&": bytecode.BitAnd, "|": bytecode.BitOr, "^": bytecode.BitXor,
	"<<": bytecode.ShiftLeft, ">>": bytecode.ShiftRight, ">>>": bytecode.ShiftRightUnsigned,
	"&&": bytecode.LogicalAnd, "||": bytecode.LogicalOr, "^^": bytecode.LogicalXor,
	"==": bytecode.Equal, "!=": bytecode.NotEqual,
	"<": bytecode.LessThan, "<=": bytecode.LessEqual, ">": bytecode.GreaterThan, ">=": bytecode.GreaterEqual,
}

var arithOperatorBehavior = map[string]types.OperatorBehavior{
	"+": types.OpAdd, "-": types.OpSub, "*": types.OpMul, "/": types.OpDiv, "%": types.OpMod, "**": types.OpPow,
}

func isOrderingOp(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isComparisonResult(op string) bool {
	return op == "==" || op == "!=" || isOrderingOp(op)
}

// checkBinary checks an infix expression (spec §4.H point 4: operator
// overload is tried before the primitive fallback).
func (fc *FunctionCompiler) checkBinary(b *ast.BinaryExpr) ExprContext {
	if b.Operator == "is" || b.Operator == "!is" {
		return fc.checkHandleIdentity(b)
	}

	left := fc.checkExpr(b.Left)
	right := fc.checkExpr(b.Right)
	line := b.Span.Line

	if !types.IsPrimitive(left.Type.TypeID) {
		if ctx, ok := fc.tryOperatorOverload(b.Operator, left, right, line); ok {
			return ctx
		}
	}

	op, ok := simpleBinaryOp[b.Operator]
	if !ok {
		fc.bag.Add(diag.InvalidOperation, b.Span, "unsupported binary operator %q", b.Operator)
		return ExprContext{Type: left.Type}
	}
	fc.chunk.Emit(op, 0, line)
	if isComparisonResult(b.Operator) {
		return ExprContext{Type: types.Bool()}
	}
	return ExprContext{Type: resultType(left.Type, right.Type)}
}

// tryOperatorOverload looks up a script-defined opXxx method for a
// non-primitive left operand, falling back to the reverse-operand "_r"
// method on the right operand (spec §4.H point 3).
func (fc *FunctionCompiler) tryOperatorOverload(operator string, left, right ExprContext, line int) (ExprContext, bool) {
	if beh, ok := arithOperatorBehavior[operator]; ok {
		if op, ok := fc.ctx.FindOperatorMethod(left.Type.TypeID, beh); ok {
			fc.chunk.Emit(bytecode.CallMethod, int64(op), line)
			return fc.operatorResult(op, left.Type), true
		}
		if rb, ok := types.ReverseBinaryOp(beh); ok {
			if op, ok := fc.ctx.FindOperatorMethod(right.Type.TypeID, rb); ok {
				fc.chunk.Emit(bytecode.CallMethod, int64(op), line)
				return fc.operatorResult(op, right.Type), true
			}
		}
	}
	if operator == "==" || operator == "!=" {
		if op, ok := fc.ctx.FindOperatorMethod(left.Type.TypeID, types.OpEquals); ok {
			fc.chunk.Emit(bytecode.CallMethod, int64(op), line)
			if operator == "!=" {
				fc.chunk.Emit(bytecode.Not, 0, line)
			}
			return ExprContext{Type: types.Bool()}, true
		}
	}
	if isOrderingOp(operator) {
		if op, ok := fc.ctx.FindOperatorMethod(left.Type.TypeID, types.OpCmp); ok {
			fc.chunk.Emit(bytecode.CallMethod, int64(op), line)
			idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstInt, Int: 0})
			fc.chunk.Emit(bytecode.PushInt, int64(idx), line)
			fc.chunk.Emit(simpleBinaryOp[operator], 0, line)
			return ExprContext{Type: types.Bool()}, true
		}
	}
	return ExprContext{}, false
}

func (fc *FunctionCompiler) operatorResult(fnID types.FunctionId, fallback types.DataType) ExprContext {
	if fn, ok := fc.ctx.GetFunction(fnID); ok {
		return ExprContext{Type: fn.ReturnType}
	}
	return ExprContext{Type: fallback}
}

// resultType applies primitive numeric promotion (double beats float beats
// the wider integer) for arithmetic/bitwise operators once no operator
// overload applied.
func resultType(left, right types.DataType) types.DataType {
	if left.TypeID == types.DoubleID || right.TypeID == types.DoubleID {
		return types.Double()
	}
	if left.TypeID == types.FloatID || right.TypeID == types.FloatID {
		return types.Float()
	}
	return left
}

func (fc *FunctionCompiler) checkHandleIdentity(b *ast.BinaryExpr) ExprContext {
	fc.checkExpr(b.Left)
	fc.checkExpr(b.Right)
	fc.chunk.Emit(bytecode.Equal, 0, b.Span.Line)
	if b.Operator == "!is" {
		fc.chunk.Emit(bytecode.Not, 0, b.Span.Line)
	}
	return ExprContext{Type: types.Bool()}
}

// resolveOverload scores every candidate by summed conversion cost (spec
// §4.H point 5 / §8 property 5) and returns the strictly-cheapest match.
// Arity (required..total parameter count) filters candidates before
// scoring. Ties are reported as ambiguous; a best cost with no candidates
// at all is reported as "not callable".
func (fc *FunctionCompiler) resolveOverload(span diag.Span, name string, candidates []types.FunctionId, argTypes []types.DataType) (types.FunctionId, *types.FunctionDef, bool) {
	type scored struct {
		id   types.FunctionId
		fn   *types.FunctionDef
		cost int
	}
	var best []scored
	bestCost := -1

	for _, id := range candidates {
		fn, ok := fc.ctx.GetFunction(id)
		if !ok {
			continue
		}
		if len(argTypes) < fn.RequiredParamCount() || len(argTypes) > len(fn.Params) {
			continue
		}
		cost := 0
		ok = true
		for i, argType := range argTypes {
			conv, can := types.CanConvertTo(argType, fn.Params[i].Type, fc.resolveHierarchy())
			if !can || !conv.IsImplicit {
				ok = false
				break
			}
			cost += conv.Cost
		}
		if !ok {
			continue
		}
		if bestCost == -1 || cost < bestCost {
			bestCost = cost
			best = []scored{{id, fn, cost}}
		} else if cost == bestCost {
			best = append(best, scored{id, fn, cost})
		}
	}

	switch len(best) {
	case 0:
		fc.bag.Add(diag.NotCallable, span, "no overload of %q matches the given argument types", name)
		return 0, nil, false
	case 1:
		return best[0].id, best[0].fn, true
	default:
		fc.bag.Add(diag.AmbiguousType, span, "call to %q is ambiguous between %d equally-good overloads", name, len(best))
		return best[0].id, best[0].fn, true
	}
}

// checkArgs evaluates each argument once, in order, storing each result
// into a dedicated temporary local rather than leaving it on the stack.
// Overload resolution needs every argument's static type before it knows
// which candidate (and therefore which parameter types) won, so argument
// evaluation and the conversions the winning overload implies happen in
// two separate passes; stashing each value in a temp lets the second pass
// reload it -- with a conversion inserted immediately after, per argument
// -- without re-running the argument expression's side effects (the same
// technique assignMember/assignIndex already use to cache a receiver
// across a compound assignment's read/write halves).
func (fc *FunctionCompiler) checkArgs(args []ast.Arg) ([]int, []types.DataType) {
	slots := make([]int, len(args))
	argTypes := make([]types.DataType, len(args))
	for i, a := range args {
		ctx := fc.checkExpr(a.Value)
		slot := fc.allocTempSlot()
		fc.chunk.Emit(bytecode.StoreLocal, int64(slot), fc.line(a.Value))
		slots[i] = slot
		argTypes[i] = ctx.Type
	}
	return slots, argTypes
}

// checkCall handles a free function / funcdef-variable / constructor call
// (spec §4.H): "name(args)" where name resolves to either a function
// overload set or a constructible type. A method call of the form
// "receiver.name(args)" is parsed as a MemberExpr with IsCall set instead,
// and handled by checkMember.
func (fc *FunctionCompiler) checkCall(c *ast.CallExpr) ExprContext {
	ident, ok := c.Callee.(*ast.Ident)
	if !ok {
		fc.bag.Add(diag.NotCallable, c.Span, "expression is not callable")
		fc.checkExpr(c.Callee)
		for _, a := range c.Args {
			fc.checkExpr(a.Value)
		}
		return ExprContext{Type: types.Void()}
	}
	name := qualifiedIdentName(ident)

	if typeID, err := fc.ctx.ResolveType(name); err == nil && !types.IsPrimitive(typeID) {
		return fc.checkConstructCall(c, typeID)
	}

	if lv, ok := fc.lookupLocal(ident.Name); ok {
		if params, ret, ok := fc.ctx.GetFuncdefSignature(lv.typ.TypeID); ok {
			fc.chunk.Emit(bytecode.LoadLocal, int64(lv.slot), c.Span.Line)
			slots, argTypes := fc.checkArgs(c.Args)
			checkArity(fc, c.Span, len(argTypes), len(params))
			namedParams := make([]types.Param, len(params))
			for i, pt := range params {
				namedParams[i] = types.Param{Type: pt}
			}
			fc.reloadArgsConverted(slots, argTypes, namedParams, c.Span, c.Span.Line)
			fc.chunk.Emit(bytecode.CallPtr, 0, c.Span.Line)
			return ExprContext{Type: ret}
		}
	}

	candidates := fc.ctx.LookupFunctions(name)
	slots, argTypes := fc.checkArgsWithLambdaInference(c.Args, candidates)
	id, fn, ok := fc.resolveOverload(c.Span, name, candidates, argTypes)
	if !ok {
		return ExprContext{Type: types.Void()}
	}
	if !fc.checkCallableVisible(fn, c.Span, "function", name) {
		return ExprContext{Type: fn.ReturnType}
	}
	fc.reloadArgsConverted(slots, argTypes, fn.Params, c.Span, c.Span.Line)
	fc.chunk.Emit(bytecode.Call, int64(id), c.Span.Line)
	return ExprContext{Type: fn.ReturnType}
}

func checkArity(fc *FunctionCompiler, span diag.Span, got, want int) {
	if got != want {
		fc.bag.Add(diag.WrongArgumentCount, span, "expected %d argument(s), got %d", want, got)
	}
}

// checkConstructCall handles "TypeName(args)": spec §3 TypeKind decides
// whether this compiles to CallConstructor (value/script-object types) or
// CallFactory (reference types).
func (fc *FunctionCompiler) checkConstructCall(c *ast.CallExpr, typeID types.TypeId) ExprContext {
	td, ok := fc.ctx.GetType(typeID)
	if !ok {
		fc.bag.Add(diag.UnknownType, c.Span, "unknown type in construction call")
		return ExprContext{Type: types.Void()}
	}
	cd, _ := td.(*types.ClassDef)
	kind := types.ValueType
	if cd != nil {
		kind = cd.Kind
	}

	var candidates []types.FunctionId
	useFactory := kind == types.ReferenceType
	if useFactory {
		candidates = fc.ctx.FindFactories(typeID)
	} else {
		candidates = fc.ctx.FindConstructors(typeID)
	}

	slots, argTypes := fc.checkArgs(c.Args)
	id, fn, ok := fc.resolveOverload(c.Span, td.TypeName(), candidates, argTypes)
	if !ok {
		return ExprContext{Type: types.DataType{TypeID: typeID}}
	}
	if fn != nil {
		fc.reloadArgsConverted(slots, argTypes, fn.Params, c.Span, c.Span.Line)
	}
	if useFactory {
		fc.chunk.EmitAB(bytecode.CallFactory, int64(typeID), int64(id), c.Span.Line)
		return ExprContext{Type: types.DataType{TypeID: typeID, IsHandle: true}}
	}
	fc.chunk.EmitAB(bytecode.CallConstructor, int64(typeID), int64(id), c.Span.Line)
	return ExprContext{Type: types.DataType{TypeID: typeID}}
}

// propagateConst carries a const receiver's const-ness onto an accessed
// member's type (spec §4.H testable property 8: "x.f.g.h is always
// const-qualified ... any assignment to it is rejected"), so a further
// ".name" off the result stays const-qualified too.
func propagateConst(t types.DataType, receiverConst bool) types.DataType {
	if !receiverConst {
		return t
	}
	if t.IsHandle {
		t.IsHandleToConst = true
		return t
	}
	return t.WithConst()
}

// checkMember handles both field/property access ("receiver.Name") and
// method calls ("receiver.Name(args)"), distinguished by IsCall (spec §4.D
// parses this distinction at parse time via lookahead to "(").
func (fc *FunctionCompiler) checkMember(m *ast.MemberExpr) ExprContext {
	receiver := fc.checkExpr(m.Receiver)
	line := m.Span.Line
	receiverConst := receiver.Type.ReferentConst()

	if !m.IsCall {
		if cd, ok := fc.classDefOf(receiver.Type.TypeID); ok {
			if idx, field, ok := findField(cd, m.Name); ok {
				if !fc.checkVisible(field.Vis, cd.Id, m.Span, "field", m.Name) {
					return ExprContext{Type: field.Type}
				}
				fc.chunk.Emit(bytecode.LoadField, int64(idx), line)
				fieldType := propagateConst(field.Type, receiverConst)
				return ExprContext{Type: fieldType, IsLvalue: true, IsMutable: !field.IsConst && !receiverConst}
			}
			if prop, ok := fc.ctx.FindProperty(receiver.Type.TypeID, m.Name); ok && prop.HasGet {
				if !fc.checkVisible(prop.Vis, cd.Id, m.Span, "property", m.Name) {
					return ExprContext{Type: types.Void()}
				}
				fc.chunk.Emit(bytecode.CallMethod, int64(prop.Getter), line)
				ret := types.Void()
				if fn, ok := fc.ctx.GetFunction(prop.Getter); ok {
					ret = fn.ReturnType
				}
				ret = propagateConst(ret, receiverConst)
				return ExprContext{Type: ret, IsLvalue: prop.HasSet, IsMutable: prop.HasSet && !receiverConst}
			}
		}
		fc.bag.Add(diag.UndefinedField, m.Span, "no field or property named %q on this type", m.Name)
		return ExprContext{Type: types.Void()}
	}

	if td, ok := fc.ctx.GetType(receiver.Type.TypeID); ok {
		if iface, ok := td.(*types.InterfaceDef); ok {
			for idx, id := range iface.Methods {
				if fn, ok := fc.ctx.GetFunction(id); ok && fn.Name == m.Name {
					slots, argTypes := fc.checkArgs(m.Args)
					fc.reloadArgsConverted(slots, argTypes, fn.Params, m.Span, line)
					fc.chunk.EmitAB(bytecode.CallInterfaceMethod, int64(receiver.Type.TypeID), int64(idx), line)
					return ExprContext{Type: fn.ReturnType}
				}
			}
			fc.bag.Add(diag.UndefinedMethod, m.Span, "interface has no method named %q", m.Name)
			fc.checkArgs(m.Args)
			return ExprContext{Type: types.Void()}
		}
	}

	candidates := fc.ctx.FindMethodsByName(receiver.Type.TypeID, m.Name)
	slots, argTypes := fc.checkArgsWithLambdaInference(m.Args, candidates)
	id, fn, ok := fc.resolveOverload(m.Span, m.Name, candidates, argTypes)
	if !ok {
		return ExprContext{Type: types.Void()}
	}
	if !fc.checkCallableVisible(fn, m.Span, "method", m.Name) {
		return ExprContext{Type: fn.ReturnType}
	}
	if receiverConst && !fn.Traits.IsConst {
		fc.bag.Add(diag.InvalidOperation, m.Span, "cannot call non-const method %q through a const handle", m.Name)
	}
	fc.reloadArgsConverted(slots, argTypes, fn.Params, m.Span, line)
	fc.chunk.Emit(bytecode.CallMethod, int64(id), line)
	return ExprContext{Type: fn.ReturnType}
}

func (fc *FunctionCompiler) classDefOf(t types.TypeId) (*types.ClassDef, bool) {
	td, ok := fc.ctx.GetType(t)
	if !ok {
		return nil, false
	}
	cd, ok := td.(*types.ClassDef)
	return cd, ok
}

// checkIndex handles "receiver[idx...]" read access via opIndex/get_opIndex
// (spec §4.H point 3); the mutable write form is reached through
// checkAssign when an IndexExpr appears on the left of "=".
func (fc *FunctionCompiler) checkIndex(ix *ast.IndexExpr) ExprContext {
	receiver := fc.checkExpr(ix.Receiver)
	for _, idx := range ix.Indices {
		fc.checkExpr(idx.Value)
	}
	op, ok := fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndexGet, false)
	if !ok {
		op, ok = fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndex, false)
	}
	if !ok {
		fc.bag.Add(diag.InvalidOperation, ix.Span, "type has no indexing operator")
		return ExprContext{Type: types.Void()}
	}
	fc.chunk.Emit(bytecode.CallMethod, int64(op), ix.Span.Line)
	ret := types.Void()
	if fn, ok := fc.ctx.GetFunction(op); ok {
		ret = fn.ReturnType
	}
	receiverConst := receiver.Type.ReferentConst()
	ret = propagateConst(ret, receiverConst)
	_, hasSet := fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndexSet, true)
	if !hasSet {
		_, hasSet = fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndex, true)
	}
	return ExprContext{Type: ret, IsLvalue: hasSet, IsMutable: hasSet && !receiverConst}
}
