package check

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// checkExpr dispatches on the concrete expression node, emitting bytecode
// that leaves exactly one value on the stack and returning that value's
// checked type (spec §4.H: "every expression checks to an ExprContext").
func (fc *FunctionCompiler) checkExpr(e ast.Expression) ExprContext {
	switch x := e.(type) {
	case *ast.Literal:
		return fc.checkLiteral(x)
	case *ast.Ident:
		return fc.checkIdent(x)
	case *ast.ParenExpr:
		return fc.checkExpr(x.Inner)
	case *ast.UnaryExpr:
		return fc.checkUnary(x)
	case *ast.PostfixExpr:
		return fc.checkPostfix(x)
	case *ast.BinaryExpr:
		return fc.checkBinary(x)
	case *ast.TernaryExpr:
		return fc.checkTernary(x)
	case *ast.AssignExpr:
		return fc.checkAssign(x)
	case *ast.CallExpr:
		return fc.checkCall(x)
	case *ast.MemberExpr:
		return fc.checkMember(x)
	case *ast.IndexExpr:
		return fc.checkIndex(x)
	case *ast.CastExpr:
		return fc.checkCast(x)
	case *ast.ThisExpr:
		return fc.checkThis(x)
	case *ast.SuperExpr:
		return fc.checkSuper(x)
	case *ast.InitListExpr:
		return fc.checkInitList(x)
	case *ast.LambdaExpr:
		return fc.checkLambda(x)
	default:
		fc.bag.Add(diag.InternalError, e.Pos(), "unhandled expression node")
		return ExprContext{Type: types.Void()}
	}
}

func (fc *FunctionCompiler) checkLiteral(l *ast.Literal) ExprContext {
	line := l.Span.Line
	switch l.Kind {
	case ast.LitInt, ast.LitBits:
		idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstInt, Int: l.IntVal})
		fc.chunk.Emit(bytecode.PushInt, int64(idx), line)
		return ExprContext{Type: types.Int32()}
	case ast.LitFloat:
		idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstFloat, Float: float32(l.FloatVal)})
		fc.chunk.Emit(bytecode.PushFloat, int64(idx), line)
		return ExprContext{Type: types.Float()}
	case ast.LitDouble:
		idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstDouble, Double: l.FloatVal})
		fc.chunk.Emit(bytecode.PushDouble, int64(idx), line)
		return ExprContext{Type: types.Double()}
	case ast.LitString, ast.LitHeredoc:
		idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstString, Str: l.StrVal})
		fc.chunk.Emit(bytecode.PushString, int64(idx), line)
		return ExprContext{Type: types.DataType{TypeID: stringTypeID}}
	case ast.LitBool:
		v := int64(0)
		if l.BoolVal {
			v = 1
		}
		fc.chunk.Emit(bytecode.PushBool, v, line)
		return ExprContext{Type: types.Bool()}
	case ast.LitNull:
		fc.chunk.Emit(bytecode.PushNull, 0, line)
		return ExprContext{Type: types.DataType{IsHandle: true}}
	}
	fc.bag.Add(diag.InternalError, l.Span, "unhandled literal kind")
	return ExprContext{Type: types.Void()}
}

// stringTypeID is the TypeId of the "string" FFI/primitive type. Ember's
// string is not one of the fixed primitives in spec §3's DataType table; it
// is expected to arrive through the FFI registry the way the host's
// container/array types do, so it is looked up by name rather than hashed
// as a well-known constant like the numeric primitives.
var stringTypeID = types.HashTypeName("string")

func (fc *FunctionCompiler) checkIdent(id *ast.Ident) ExprContext {
	name := id.Name
	line := id.Span.Line

	if len(id.Scope) == 0 && !id.Absolute {
		if lv, ok := fc.lookupLocal(name); ok {
			fc.chunk.Emit(bytecode.LoadLocal, int64(lv.slot), line)
			return ExprContext{Type: lv.typ, IsLvalue: true, IsMutable: !lv.isConst}
		}

		if fc.hasThis {
			if cd, ok := fc.classDef(); ok {
				if fieldIdx, field, ok := findField(cd, name); ok {
					fc.emitThis(line)
					fc.chunk.Emit(bytecode.LoadField, int64(fieldIdx), line)
					mutable := !field.IsConst && !fc.fn.Traits.IsConst
					return ExprContext{Type: field.Type, IsLvalue: true, IsMutable: mutable}
				}
				if prop, ok := fc.ctx.FindProperty(fc.thisType, name); ok && prop.HasGet {
					fc.emitThis(line)
					fc.chunk.Emit(bytecode.CallMethod, int64(prop.Getter), line)
					retType := types.Void()
					if getterFn, ok := fc.ctx.GetFunction(prop.Getter); ok {
						retType = getterFn.ReturnType
					}
					mutable := prop.HasSet && !fc.fn.Traits.IsConst
					return ExprContext{Type: retType, IsLvalue: prop.HasSet, IsMutable: mutable}
				}
			}
		}

		if dt, ok := fc.ctx.Script.LookupGlobal(fc.ctx.QualifiedName(name)); ok {
			fc.chunk.Emit(bytecode.LoadGlobal, int64(stringConstIndex(fc, name)), line)
			return ExprContext{Type: dt, IsLvalue: true, IsMutable: true}
		}
	}

	qualified := qualifiedIdentName(id)
	if enumID, ok := fc.ctx.Script.LookupEnumOwner(name); ok && len(id.Scope) == 0 {
		if v, ok := fc.ctx.LookupEnumValue(enumID, name); ok {
			idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstInt, Int: v})
			fc.chunk.Emit(bytecode.PushInt, int64(idx), line)
			return ExprContext{Type: types.DataType{TypeID: enumID}}
		}
	}
	if dt, ok := fc.ctx.Script.LookupGlobal(qualified); ok {
		fc.chunk.Emit(bytecode.LoadGlobal, int64(stringConstIndex(fc, qualified)), line)
		return ExprContext{Type: dt, IsLvalue: true, IsMutable: true}
	}

	fc.bag.Add(diag.UndefinedVariable, id.Span, "undefined identifier %q", qualified)
	return ExprContext{Type: types.Void()}
}

// stringConstIndex interns name into the constant pool so LoadGlobal/
// StoreGlobal can carry the global's name as a constant-pool reference
// rather than duplicating a separate name table (spec §4.I leaves the
// global-addressing scheme to the emitter).
func stringConstIndex(fc *FunctionCompiler, name string) int {
	return fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstString, Str: name})
}

func qualifiedIdentName(id *ast.Ident) string {
	if len(id.Scope) == 0 {
		return id.Name
	}
	s := ""
	for _, seg := range id.Scope {
		s += seg.Name + "::"
	}
	return s + id.Name
}

func (fc *FunctionCompiler) emitThis(line int) {
	fc.chunk.Emit(bytecode.LoadThis, 0, line)
}

func (fc *FunctionCompiler) classDef() (*types.ClassDef, bool) {
	if !fc.hasThis {
		return nil, false
	}
	td, ok := fc.ctx.GetType(fc.thisType)
	if !ok {
		return nil, false
	}
	cd, ok := td.(*types.ClassDef)
	return cd, ok
}

func findField(cd *types.ClassDef, name string) (int, types.FieldDef, bool) {
	for i, f := range cd.Fields {
		if f.Name == name {
			return i, f, true
		}
	}
	return 0, types.FieldDef{}, false
}

func (fc *FunctionCompiler) checkThis(t *ast.ThisExpr) ExprContext {
	if !fc.hasThis {
		fc.bag.Add(diag.InvalidOperation, t.Span, "'this' is only valid inside a method body")
		return ExprContext{Type: types.Void()}
	}
	fc.emitThis(t.Span.Line)
	return ExprContext{Type: types.DataType{TypeID: fc.thisType, IsHandle: true, IsHandleToConst: fc.fn.Traits.IsConst}}
}

func (fc *FunctionCompiler) checkSuper(s *ast.SuperExpr) ExprContext {
	if !fc.hasThis {
		fc.bag.Add(diag.InvalidOperation, s.Span, "'super' is only valid inside a method body")
		return ExprContext{Type: types.Void()}
	}
	base, ok := fc.ctx.GetBaseClass(fc.thisType)
	if !ok {
		fc.bag.Add(diag.InvalidOperation, s.Span, "class has no base class to refer to with 'super'")
		return ExprContext{Type: types.Void()}
	}
	fc.emitThis(s.Span.Line)
	return ExprContext{Type: types.DataType{TypeID: base, IsHandle: true}}
}

func (fc *FunctionCompiler) checkUnary(u *ast.UnaryExpr) ExprContext {
	if u.Operator == "@" {
		return fc.checkHandleOf(u)
	}

	operand := fc.checkExpr(u.Operand)
	line := u.Span.Line

	switch u.Operator {
	case "-":
		if op, ok := fc.ctx.FindOperatorMethod(operand.Type.TypeID, types.OpNeg); ok && !types.IsPrimitive(operand.Type.TypeID) {
			fc.chunk.Emit(bytecode.CallMethod, int64(op), line)
			if fn, ok := fc.ctx.GetFunction(op); ok {
				return ExprContext{Type: fn.ReturnType}
			}
			return ExprContext{Type: operand.Type}
		}
		fc.chunk.Emit(bytecode.Negate, 0, line)
		return ExprContext{Type: operand.Type}
	case "+":
		return operand
	case "!":
		fc.chunk.Emit(bytecode.Not, 0, line)
		return ExprContext{Type: types.Bool()}
	case "~":
		if op, ok := fc.ctx.FindOperatorMethod(operand.Type.TypeID, types.OpCom); ok && !types.IsPrimitive(operand.Type.TypeID) {
			fc.chunk.Emit(bytecode.CallMethod, int64(op), line)
			if fn, ok := fc.ctx.GetFunction(op); ok {
				return ExprContext{Type: fn.ReturnType}
			}
			return ExprContext{Type: operand.Type}
		}
		fc.chunk.Emit(bytecode.BitNot, 0, line)
		return ExprContext{Type: operand.Type}
	case "++":
		fc.requireLvalue(u.Operand.Pos(), operand)
		fc.chunk.Emit(bytecode.PreIncrement, 0, line)
		return ExprContext{Type: operand.Type}
	case "--":
		fc.requireLvalue(u.Operand.Pos(), operand)
		fc.chunk.Emit(bytecode.PreDecrement, 0, line)
		return ExprContext{Type: operand.Type}
	}
	fc.bag.Add(diag.InvalidOperation, u.Span, "unsupported unary operator %q", u.Operator)
	return ExprContext{Type: operand.Type}
}

// checkHandleOf covers the two meanings of unary @ (spec §4.H "handle
// semantics"): on a bare name that resolves only to functions it produces
// a FuncPtr bound to the expected funcdef type; on any value it re-types
// the operand as a handle with no runtime instruction, since object
// identity is preserved in place.
func (fc *FunctionCompiler) checkHandleOf(u *ast.UnaryExpr) ExprContext {
	if id, ok := u.Operand.(*ast.Ident); ok && len(id.Scope) == 0 && !id.Absolute {
		if _, isLocal := fc.lookupLocal(id.Name); !isLocal {
			if cands := fc.ctx.LookupFunctions(id.Name); len(cands) > 0 {
				return fc.funcPointerTo(id.Name, cands, u.Span)
			}
		}
	}
	operand := fc.checkExpr(u.Operand)
	return ExprContext{Type: operand.Type.AsHandle()}
}

// funcPointerTo picks the overload of name whose signature matches the
// expected funcdef type and emits a FuncPtr to it. With no expected
// funcdef in scope there is nothing to bind the pointer's type to, which
// is an error per spec §4.H.
func (fc *FunctionCompiler) funcPointerTo(name string, cands []types.FunctionId, span diag.Span) ExprContext {
	if !fc.hasExpectedFuncdef {
		fc.bag.Add(diag.TypeMismatch, span, "taking the address of function %q needs a function-handle type from the surrounding context", name)
		return ExprContext{Type: types.Void()}
	}
	params, ret, ok := fc.ctx.GetFuncdefSignature(fc.expectedFuncdef)
	if !ok {
		fc.bag.Add(diag.TypeMismatch, span, "expected type of @%s is not a function signature", name)
		return ExprContext{Type: types.Void()}
	}
	for _, cand := range cands {
		fn, ok := fc.ctx.GetFunction(cand)
		if !ok || len(fn.Params) != len(params) || !fn.ReturnType.Equal(ret) {
			continue
		}
		match := true
		for i := range params {
			if !fn.Params[i].Type.Equal(params[i]) {
				match = false
				break
			}
		}
		if match {
			fc.chunk.Emit(bytecode.FuncPtr, int64(cand), span.Line)
			return ExprContext{Type: types.DataType{TypeID: fc.expectedFuncdef, IsHandle: true}}
		}
	}
	fc.bag.Add(diag.TypeMismatch, span, "no overload of %q matches the expected function signature", name)
	return ExprContext{Type: types.Void()}
}

func (fc *FunctionCompiler) checkPostfix(p *ast.PostfixExpr) ExprContext {
	operand := fc.checkExpr(p.Operand)
	fc.requireLvalue(p.Operand.Pos(), operand)
	switch p.Operator {
	case "++":
		fc.chunk.Emit(bytecode.PostIncrement, 0, p.Span.Line)
	case "--":
		fc.chunk.Emit(bytecode.PostDecrement, 0, p.Span.Line)
	default:
		fc.bag.Add(diag.InvalidOperation, p.Span, "unsupported postfix operator %q", p.Operator)
	}
	return ExprContext{Type: operand.Type}
}

func (fc *FunctionCompiler) requireLvalue(span diag.Span, e ExprContext) {
	if !e.IsLvalue {
		fc.bag.Add(diag.InvalidOperation, span, "expression is not assignable")
		return
	}
	if !e.IsMutable {
		fc.bag.Add(diag.InvalidOperation, span, "cannot modify a const value")
	}
}

func (fc *FunctionCompiler) checkTernary(t *ast.TernaryExpr) ExprContext {
	cond := fc.checkExpr(t.Condition)
	if !cond.Type.Equal(types.Bool()) {
		fc.bag.Add(diag.TypeMismatch, t.Condition.Pos(), "ternary condition must be bool")
	}
	elseJump := fc.chunk.EmitJump(bytecode.JumpIfFalse, t.Span.Line)
	thenCtx := fc.checkExpr(t.Then)
	endJump := fc.chunk.EmitJump(bytecode.Jump, t.Span.Line)
	fc.chunk.PatchJump(elseJump)
	fc.checkExpr(t.Else)
	fc.chunk.PatchJump(endJump)
	return ExprContext{Type: thenCtx.Type}
}

// checkInitList resolves a `{...}` expression against the target type the
// surrounding context supplied via the expectedInitList hint, using the
// target's list-construction behavior: reference types construct through
// their list factory, value and script-object types through their list
// constructor (spec §4.H; glossary "List factory / list construct"). The
// element count is pushed after the elements so the behavior function can
// consume the payload off the stack.
func (fc *FunctionCompiler) checkInitList(il *ast.InitListExpr) ExprContext {
	target, hasTarget := fc.expectedInitList, fc.hasExpectedInitList
	fc.hasExpectedInitList = false // the hint binds to this list, not its elements

	for _, e := range il.Elems {
		fc.checkExpr(e)
	}
	if !hasTarget {
		fc.bag.Add(diag.InvalidExpression, il.Span, "initializer-list construction has no target type in this position")
		return ExprContext{Type: types.Void()}
	}

	line := il.Span.Line
	fc.chunk.Emit(bytecode.PushInt, int64(fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstInt, Int: int64(len(il.Elems))})), line)

	beh := fc.ctx.GetBehaviors(target.TypeID)
	switch {
	case beh.HasListFactory:
		fc.chunk.EmitAB(bytecode.CallFactory, int64(target.TypeID), int64(beh.ListFactory), line)
	case beh.HasListConstruct:
		fc.chunk.EmitAB(bytecode.CallConstructor, int64(target.TypeID), int64(beh.ListConstruct), line)
	default:
		fc.bag.Add(diag.MissingListBehavior, il.Span, "type has no list-construction behavior for an initializer list")
		return ExprContext{Type: types.Void()}
	}
	return ExprContext{Type: target}
}

// withExpectedInitList checks expr with expected set as the type a `{...}`
// literal should construct; callers gate on expr actually being an
// InitListExpr so the hint never leaks into unrelated subexpressions.
func (fc *FunctionCompiler) withExpectedInitList(expected types.DataType, expr ast.Expression) ExprContext {
	prev, prevHas := fc.expectedInitList, fc.hasExpectedInitList
	fc.expectedInitList, fc.hasExpectedInitList = expected, true
	ctx := fc.checkExpr(expr)
	fc.expectedInitList, fc.hasExpectedInitList = prev, prevHas
	return ctx
}

func (fc *FunctionCompiler) checkCast(c *ast.CastExpr) ExprContext {
	target, ok := ResolveTypeExpr(fc.ctx, fc.bag, c.Target)
	if !ok {
		fc.checkExpr(c.Value)
		return ExprContext{Type: types.Void()}
	}
	fc.checkExpr(c.Value)
	fc.chunk.Emit(bytecode.Cast, int64(target.TypeID), c.Span.Line)
	return ExprContext{Type: target.AsHandle()}
}
