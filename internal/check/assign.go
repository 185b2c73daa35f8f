package check

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// checkAssign dispatches on the shape of the assignment's left-hand side
// (spec §4.H): a bare name (local/field/global), a member access
// (field/property), or an index expression (opIndex).
func (fc *FunctionCompiler) checkAssign(a *ast.AssignExpr) ExprContext {
	switch lhs := a.LHS.(type) {
	case *ast.Ident:
		return fc.assignIdent(a, lhs)
	case *ast.MemberExpr:
		return fc.assignMember(a, lhs)
	case *ast.IndexExpr:
		return fc.assignIndex(a, lhs)
	default:
		fc.bag.Add(diag.InvalidOperation, a.Span, "left-hand side of assignment is not assignable")
		fc.checkExpr(a.RHS)
		return ExprContext{Type: types.Void()}
	}
}

// compoundOpInfo maps a compound-assignment AssignOp to the operator
// method it prefers (when overloadable, spec §4.H point 3) and the plain
// opcode used for primitives or when no overload applies.
func compoundOpInfo(op ast.AssignOp) (types.OperatorBehavior, bool, bytecode.OpCode, bool) {
	switch op {
	case ast.AssignAdd:
		return types.OpAddAssign, true, bytecode.Add, true
	case ast.AssignSub:
		return types.OpSubAssign, true, bytecode.Sub, true
	case ast.AssignMul:
		return types.OpMulAssign, true, bytecode.Mul, true
	case ast.AssignDiv:
		return types.OpDivAssign, true, bytecode.Div, true
	case ast.AssignMod:
		return types.OpModAssign, true, bytecode.Mod, true
	case ast.AssignPow:
		return types.OpPowAssign, true, bytecode.Pow, true
	case ast.AssignAnd:
		return 0, false, bytecode.BitAnd, true
	case ast.AssignOr:
		return 0, false, bytecode.BitOr, true
	case ast.AssignXor:
		return 0, false, bytecode.BitXor, true
	case ast.AssignShl:
		return 0, false, bytecode.ShiftLeft, true
	case ast.AssignShr:
		return 0, false, bytecode.ShiftRight, true
	case ast.AssignUShr:
		return 0, false, bytecode.ShiftRightUnsigned, true
	}
	return 0, false, 0, false
}

// emitCompoundCombine evaluates a's RHS and combines it with whatever is
// already on top of the stack (the current value of the target, already
// loaded by the caller), leaving the new value on the stack.
func (fc *FunctionCompiler) emitCompoundCombine(a *ast.AssignExpr, targetType types.DataType, line int) {
	fc.checkExpr(a.RHS)
	beh, hasOverload, plainOp, ok := compoundOpInfo(a.Op)
	if !ok {
		fc.bag.Add(diag.InvalidOperation, a.Span, "unsupported compound assignment operator")
		return
	}
	if hasOverload && !types.IsPrimitive(targetType.TypeID) {
		if op, ok := fc.ctx.FindOperatorMethod(targetType.TypeID, beh); ok {
			fc.chunk.Emit(bytecode.CallMethod, int64(op), line)
			return
		}
	}
	fc.chunk.Emit(plainOp, 0, line)
}

func (fc *FunctionCompiler) assignIdent(a *ast.AssignExpr, lhs *ast.Ident) ExprContext {
	line := a.Span.Line
	name := lhs.Name

	if len(lhs.Scope) == 0 && !lhs.Absolute {
		if lv, ok := fc.lookupLocal(name); ok {
			if lv.isConst {
				fc.bag.Add(diag.InvalidOperation, lhs.Span, "cannot assign to const variable %q", name)
			}
			if a.Op == ast.AssignPlain {
				if _, isList := a.RHS.(*ast.InitListExpr); isList {
					fc.withExpectedInitList(lv.typ, a.RHS)
				} else {
					ctx := fc.checkExpr(a.RHS)
					fc.emitImplicitConversion(ctx.Type, lv.typ, a.RHS.Pos(), line)
				}
			} else {
				fc.chunk.Emit(bytecode.LoadLocal, int64(lv.slot), line)
				fc.emitCompoundCombine(a, lv.typ, line)
			}
			fc.chunk.Emit(bytecode.StoreLocal, int64(lv.slot), line)
			return ExprContext{Type: lv.typ}
		}

		if fc.hasThis {
			if cd, ok := fc.classDef(); ok {
				if idx, field, ok := findField(cd, name); ok {
					return fc.assignThisField(a, idx, field, line)
				}
				if prop, ok := fc.ctx.FindProperty(fc.thisType, name); ok && prop.HasSet {
					return fc.assignThisProperty(a, prop, line)
				}
			}
		}

		qualified := fc.ctx.QualifiedName(name)
		if dt, ok := fc.ctx.Script.LookupGlobal(qualified); ok {
			return fc.assignGlobal(a, qualified, dt, line)
		}
	}

	qualified := qualifiedIdentName(lhs)
	if dt, ok := fc.ctx.Script.LookupGlobal(qualified); ok {
		return fc.assignGlobal(a, qualified, dt, line)
	}

	fc.bag.Add(diag.UndefinedVariable, lhs.Span, "undefined identifier %q", qualified)
	fc.checkExpr(a.RHS)
	return ExprContext{Type: types.Void()}
}

func (fc *FunctionCompiler) assignThisField(a *ast.AssignExpr, idx int, field types.FieldDef, line int) ExprContext {
	if field.IsConst {
		fc.bag.Add(diag.InvalidOperation, a.Span, "cannot assign to const field %q", field.Name)
	} else if fc.fn.Traits.IsConst {
		fc.bag.Add(diag.InvalidOperation, a.Span, "cannot assign to field %q from a const method", field.Name)
	}
	if a.Op == ast.AssignPlain {
		fc.emitThis(line)
		ctx := fc.checkExpr(a.RHS)
		fc.emitImplicitConversion(ctx.Type, field.Type, a.RHS.Pos(), line)
	} else {
		fc.emitThis(line)
		fc.chunk.Emit(bytecode.LoadField, int64(idx), line)
		fc.emitCompoundCombine(a, field.Type, line)
		fc.emitThis(line)
	}
	fc.chunk.Emit(bytecode.StoreField, int64(idx), line)
	return ExprContext{Type: field.Type}
}

func (fc *FunctionCompiler) assignThisProperty(a *ast.AssignExpr, prop types.PropertyDef, line int) ExprContext {
	ptype := types.Void()
	if fn, ok := fc.ctx.GetFunction(prop.Setter); ok && len(fn.Params) == 1 {
		ptype = fn.Params[0].Type
	}
	if fc.fn.Traits.IsConst {
		fc.bag.Add(diag.InvalidOperation, a.Span, "cannot assign to property %q from a const method", prop.Name)
	}
	if a.Op == ast.AssignPlain {
		fc.emitThis(line)
		ctx := fc.checkExpr(a.RHS)
		fc.emitImplicitConversion(ctx.Type, ptype, a.RHS.Pos(), line)
	} else if prop.HasGet {
		fc.emitThis(line)
		fc.chunk.Emit(bytecode.CallMethod, int64(prop.Getter), line)
		fc.emitCompoundCombine(a, ptype, line)
		fc.emitThis(line)
	} else {
		fc.bag.Add(diag.InvalidOperation, a.Span, "property has no getter, cannot compound-assign")
		fc.checkExpr(a.RHS)
	}
	fc.chunk.Emit(bytecode.CallMethod, int64(prop.Setter), line)
	return ExprContext{Type: ptype}
}

func (fc *FunctionCompiler) assignGlobal(a *ast.AssignExpr, qualified string, dt types.DataType, line int) ExprContext {
	idx := stringConstIndex(fc, qualified)
	if a.Op == ast.AssignPlain {
		ctx := fc.checkExpr(a.RHS)
		fc.emitImplicitConversion(ctx.Type, dt, a.RHS.Pos(), line)
	} else {
		fc.chunk.Emit(bytecode.LoadGlobal, int64(idx), line)
		fc.emitCompoundCombine(a, dt, line)
	}
	fc.chunk.Emit(bytecode.StoreGlobal, int64(idx), line)
	return ExprContext{Type: dt}
}

// assignMember handles "receiver.Name [op]= rhs". A plain assignment needs
// the receiver only once; a compound assignment needs it twice (read then
// write) and caches it in a synthetic temp local instead of re-evaluating
// the receiver expression, which could carry side effects.
func (fc *FunctionCompiler) assignMember(a *ast.AssignExpr, lhs *ast.MemberExpr) ExprContext {
	line := a.Span.Line

	if a.Op == ast.AssignPlain {
		receiver := fc.checkExpr(lhs.Receiver)
		receiverConst := receiver.Type.ReferentConst()
		cd, _ := fc.classDefOf(receiver.Type.TypeID)
		if cd != nil {
			if idx, field, ok := findField(cd, lhs.Name); ok {
				fc.checkVisible(field.Vis, cd.Id, lhs.Span, "field", lhs.Name)
				if field.IsConst {
					fc.bag.Add(diag.InvalidOperation, lhs.Span, "cannot assign to const field %q", lhs.Name)
				} else if receiverConst {
					fc.bag.Add(diag.InvalidOperation, lhs.Span, "cannot assign to field %q through a const handle", lhs.Name)
				}
				ctx := fc.checkExpr(a.RHS)
				fc.emitImplicitConversion(ctx.Type, field.Type, a.RHS.Pos(), line)
				fc.chunk.Emit(bytecode.StoreField, int64(idx), line)
				return ExprContext{Type: field.Type}
			}
			if prop, ok := fc.ctx.FindProperty(receiver.Type.TypeID, lhs.Name); ok && prop.HasSet {
				fc.checkVisible(prop.Vis, cd.Id, lhs.Span, "property", lhs.Name)
				if receiverConst {
					fc.bag.Add(diag.InvalidOperation, lhs.Span, "cannot assign to property %q through a const handle", lhs.Name)
				}
				ret := types.Void()
				if fn, ok := fc.ctx.GetFunction(prop.Setter); ok && len(fn.Params) == 1 {
					ret = fn.Params[0].Type
				}
				ctx := fc.checkExpr(a.RHS)
				fc.emitImplicitConversion(ctx.Type, ret, a.RHS.Pos(), line)
				fc.chunk.Emit(bytecode.CallMethod, int64(prop.Setter), line)
				return ExprContext{Type: ret}
			}
		}
		fc.bag.Add(diag.UndefinedField, lhs.Span, "no assignable field or property named %q", lhs.Name)
		fc.checkExpr(a.RHS)
		return ExprContext{Type: types.Void()}
	}

	receiver := fc.checkExpr(lhs.Receiver)
	receiverConst := receiver.Type.ReferentConst()
	if receiverConst {
		fc.bag.Add(diag.InvalidOperation, lhs.Span, "cannot assign to %q through a const handle", lhs.Name)
	}
	tmpRecv := fc.allocTempSlot()
	fc.chunk.Emit(bytecode.StoreLocal, int64(tmpRecv), line)

	cd, _ := fc.classDefOf(receiver.Type.TypeID)
	if cd != nil {
		if idx, field, ok := findField(cd, lhs.Name); ok {
			fc.checkVisible(field.Vis, cd.Id, lhs.Span, "field", lhs.Name)
			if field.IsConst {
				fc.bag.Add(diag.InvalidOperation, lhs.Span, "cannot assign to const field %q", lhs.Name)
			}
			fc.chunk.Emit(bytecode.LoadLocal, int64(tmpRecv), line)
			fc.chunk.Emit(bytecode.LoadField, int64(idx), line)
			fc.emitCompoundCombine(a, field.Type, line)
			tmpVal := fc.allocTempSlot()
			fc.chunk.Emit(bytecode.StoreLocal, int64(tmpVal), line)
			fc.chunk.Emit(bytecode.LoadLocal, int64(tmpRecv), line)
			fc.chunk.Emit(bytecode.LoadLocal, int64(tmpVal), line)
			fc.chunk.Emit(bytecode.StoreField, int64(idx), line)
			return ExprContext{Type: field.Type}
		}
		if prop, ok := fc.ctx.FindProperty(receiver.Type.TypeID, lhs.Name); ok && prop.HasSet && prop.HasGet {
			fc.checkVisible(prop.Vis, cd.Id, lhs.Span, "property", lhs.Name)
			fc.chunk.Emit(bytecode.LoadLocal, int64(tmpRecv), line)
			fc.chunk.Emit(bytecode.CallMethod, int64(prop.Getter), line)
			ptype := types.Void()
			if fn, ok := fc.ctx.GetFunction(prop.Setter); ok && len(fn.Params) == 1 {
				ptype = fn.Params[0].Type
			}
			fc.emitCompoundCombine(a, ptype, line)
			tmpVal := fc.allocTempSlot()
			fc.chunk.Emit(bytecode.StoreLocal, int64(tmpVal), line)
			fc.chunk.Emit(bytecode.LoadLocal, int64(tmpRecv), line)
			fc.chunk.Emit(bytecode.LoadLocal, int64(tmpVal), line)
			fc.chunk.Emit(bytecode.CallMethod, int64(prop.Setter), line)
			return ExprContext{Type: ptype}
		}
	}
	fc.bag.Add(diag.UndefinedField, lhs.Span, "no assignable field or property named %q", lhs.Name)
	fc.checkExpr(a.RHS)
	return ExprContext{Type: types.Void()}
}

// assignIndex handles "receiver[idx...] [op]= rhs" via the opIndexSet (or
// dual-purpose opIndex) operator method (spec §4.H point 3). Receiver and
// every index expression are cached in temp locals so they are each
// evaluated exactly once even though a compound form needs a get then a
// set call.
func (fc *FunctionCompiler) assignIndex(a *ast.AssignExpr, lhs *ast.IndexExpr) ExprContext {
	line := a.Span.Line
	receiver := fc.checkExpr(lhs.Receiver)
	if receiver.Type.ReferentConst() {
		fc.bag.Add(diag.InvalidOperation, lhs.Span, "cannot index-assign through a const handle")
	}
	tmpRecv := fc.allocTempSlot()
	fc.chunk.Emit(bytecode.StoreLocal, int64(tmpRecv), line)

	idxSlots := make([]int, len(lhs.Indices))
	for i, ixArg := range lhs.Indices {
		fc.checkExpr(ixArg.Value)
		slot := fc.allocTempSlot()
		fc.chunk.Emit(bytecode.StoreLocal, int64(slot), line)
		idxSlots[i] = slot
	}
	pushReceiverAndIndices := func() {
		fc.chunk.Emit(bytecode.LoadLocal, int64(tmpRecv), line)
		for _, slot := range idxSlots {
			fc.chunk.Emit(bytecode.LoadLocal, int64(slot), line)
		}
	}

	setOp, hasSet := fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndexSet, true)
	if !hasSet {
		setOp, hasSet = fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndex, true)
	}
	if !hasSet {
		fc.bag.Add(diag.InvalidOperation, lhs.Span, "type has no mutable indexing operator")
		fc.checkExpr(a.RHS)
		return ExprContext{Type: types.Void()}
	}
	elemType := types.Void()
	if fn, ok := fc.ctx.GetFunction(setOp); ok && len(fn.Params) > 0 {
		elemType = fn.Params[len(fn.Params)-1].Type
	}

	if a.Op == ast.AssignPlain {
		pushReceiverAndIndices()
		ctx := fc.checkExpr(a.RHS)
		fc.emitImplicitConversion(ctx.Type, elemType, a.RHS.Pos(), line)
		fc.chunk.Emit(bytecode.CallMethod, int64(setOp), line)
		return ExprContext{Type: elemType}
	}

	getOp, hasGet := fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndexGet, false)
	if !hasGet {
		getOp, hasGet = fc.ctx.FindOperatorMethodWithMutability(receiver.Type.TypeID, types.OpIndex, false)
	}
	if !hasGet {
		fc.bag.Add(diag.InvalidOperation, lhs.Span, "type has no readable indexing operator for compound assignment")
		return ExprContext{Type: types.Void()}
	}
	pushReceiverAndIndices()
	fc.chunk.Emit(bytecode.CallMethod, int64(getOp), line)
	fc.emitCompoundCombine(a, elemType, line)
	tmpVal := fc.allocTempSlot()
	fc.chunk.Emit(bytecode.StoreLocal, int64(tmpVal), line)
	pushReceiverAndIndices()
	fc.chunk.Emit(bytecode.LoadLocal, int64(tmpVal), line)
	fc.chunk.Emit(bytecode.CallMethod, int64(setOp), line)
	return ExprContext{Type: elemType}
}
