package check

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// checkStmt dispatches on the concrete statement node, emitting whatever
// instructions that statement needs and leaving the stack exactly as it
// found it (spec §4.H statement emission).
func (fc *FunctionCompiler) checkStmt(s ast.Statement) {
	switch x := s.(type) {
	case *ast.ExprStmt:
		fc.checkExprStmt(x)
	case *ast.VarDeclStmt:
		fc.checkVarDecl(x)
	case *ast.ReturnStmt:
		fc.checkReturn(x)
	case *ast.BreakStmt:
		fc.checkBreak(x)
	case *ast.ContinueStmt:
		fc.checkContinue(x)
	case *ast.BlockStmt:
		fc.checkBlock(x)
	case *ast.IfStmt:
		fc.checkIf(x)
	case *ast.WhileStmt:
		fc.checkWhile(x)
	case *ast.DoWhileStmt:
		fc.checkDoWhile(x)
	case *ast.ForStmt:
		fc.checkFor(x)
	case *ast.ForeachStmt:
		fc.checkForeach(x)
	case *ast.SwitchStmt:
		fc.checkSwitch(x)
	case *ast.TryStmt:
		fc.checkTry(x)
	default:
		fc.bag.Add(diag.InternalError, s.Pos(), "unhandled statement node")
	}
}

// checkBlock pushes a scope, checks every statement, then pops the scope
// (spec §4.H: "Block: push a scope; emit each statement; pop scope.").
func (fc *FunctionCompiler) checkBlock(b *ast.BlockStmt) {
	fc.pushScope()
	for _, s := range b.Stmts {
		fc.checkStmt(s)
	}
	fc.popScope()
}

// checkExprStmt evaluates an expression purely for its side effects,
// discarding any value it leaves on the stack (a bare call or assignment
// used as a statement).
func (fc *FunctionCompiler) checkExprStmt(s *ast.ExprStmt) {
	ctx := fc.checkExpr(s.X)
	if !ctx.Type.IsVoid() {
		fc.chunk.Emit(bytecode.Pop, 0, s.Span.Line)
	}
}

// checkVarDecl declares each local in turn. "auto" is inferred from the
// initializer; any other declared type is resolved up front and the
// initializer (or constructor-arg list) is checked against it.
func (fc *FunctionCompiler) checkVarDecl(v *ast.VarDeclStmt) {
	line := v.Span.Line
	t, isAuto := v.Type.(*ast.Type)
	auto := isAuto && t.BaseKind == ast.TypeAuto

	for _, d := range v.Declarators {
		var dt types.DataType
		switch {
		case auto:
			if d.Init == nil {
				fc.bag.Add(diag.UnknownType, v.Span, "declaration of %q needs an initializer to infer 'auto'", d.Name)
				continue
			}
			if il, ok := d.Init.(*ast.InitListExpr); ok {
				inferred, ok := fc.checkAutoInitList(il, v.Span)
				if !ok {
					continue
				}
				dt = inferred
				lv := fc.declareLocal(d.Name, dt)
				fc.chunk.Emit(bytecode.StoreLocal, int64(lv.slot), line)
				continue
			}
			ctx := fc.checkExpr(d.Init)
			dt = ctx.Type
			lv := fc.declareLocal(d.Name, dt)
			fc.chunk.Emit(bytecode.StoreLocal, int64(lv.slot), line)
			continue
		default:
			resolved, ok := ResolveTypeExpr(fc.ctx, fc.bag, v.Type)
			if !ok {
				continue
			}
			dt = resolved
		}

		declare := fc.declareLocal
		if dt.IsConst {
			declare = fc.declareConstLocal
		}
		lv := declare(d.Name, dt)
		switch {
		case d.Init != nil:
			if _, _, ok := fc.ctx.GetFuncdefSignature(dt.TypeID); ok {
				fc.withExpectedFuncdefResult(dt.TypeID, d.Init)
			} else if _, isList := d.Init.(*ast.InitListExpr); isList {
				fc.withExpectedInitList(dt, d.Init)
			} else {
				ctx := fc.checkExpr(d.Init)
				fc.emitImplicitConversion(ctx.Type, dt, d.Init.Pos(), line)
			}
			fc.chunk.Emit(bytecode.StoreLocal, int64(lv.slot), line)
		case len(d.Args) > 0:
			fc.checkConstructorInit(dt.TypeID, d.Args, v.Span)
			fc.chunk.Emit(bytecode.StoreLocal, int64(lv.slot), line)
		case dt.IsHandle:
			fc.chunk.Emit(bytecode.PushNull, 0, line)
			fc.chunk.Emit(bytecode.StoreLocal, int64(lv.slot), line)
		default:
			fc.emitDefaultValue(dt, line)
			fc.chunk.Emit(bytecode.StoreLocal, int64(lv.slot), line)
		}
	}
}

// checkAutoInitList resolves the open question of whether `auto x = { ... };`
// is legal (spec §9): since no array/list DataType exists for "auto" to
// infer into, a bare initializer list can only stand for a single bracketed
// scalar, and only when the context was built with WithAutoInitList(true).
// Everywhere else this rejects consistently, unlike the reference engine's
// context-dependent accept/reject split.
func (fc *FunctionCompiler) checkAutoInitList(il *ast.InitListExpr, span diag.Span) (types.DataType, bool) {
	if !fc.ctx.AllowAutoInitList() {
		fc.bag.Add(diag.NotImplemented, span, "'auto' cannot bind to an initializer list")
		return types.DataType{}, false
	}
	if len(il.Elems) != 1 {
		fc.bag.Add(diag.NotImplemented, span, "'auto' can only bind to a single-element initializer list")
		return types.DataType{}, false
	}
	return fc.checkExpr(il.Elems[0]).Type, true
}

// checkConstructorInit emits "Type name(args)" construction, choosing the
// constructor with the same cost-based resolveOverload an explicit
// "Type(args)" call expression uses (spec §4.H point 2). The candidates are
// always the type's constructors, also for a reference type, where an
// explicit call resolves over its factories instead.
func (fc *FunctionCompiler) checkConstructorInit(typeID types.TypeId, args []ast.Arg, span diag.Span) {
	slots := make([]int, len(args))
	argTypes := make([]types.DataType, len(args))
	for i, a := range args {
		ctx := fc.checkExpr(a.Value)
		slot := fc.allocTempSlot()
		fc.chunk.Emit(bytecode.StoreLocal, int64(slot), fc.line(a.Value))
		slots[i] = slot
		argTypes[i] = ctx.Type
	}
	id, _, ok := fc.resolveOverload(span, "constructor", fc.ctx.FindConstructors(typeID), argTypes)
	if !ok {
		return
	}
	if fn, ok := fc.ctx.GetFunction(id); ok {
		fc.reloadArgsConverted(slots, argTypes, fn.Params, span, span.Line)
	} else {
		for _, slot := range slots {
			fc.chunk.Emit(bytecode.LoadLocal, int64(slot), span.Line)
		}
	}
	td, _ := fc.ctx.GetType(typeID)
	kind := types.ReferenceType
	if cd, ok := td.(*types.ClassDef); ok {
		kind = cd.Kind
	}
	if kind == types.ReferenceType {
		fc.chunk.EmitAB(bytecode.CallFactory, int64(typeID), int64(id), span.Line)
	} else {
		fc.chunk.EmitAB(bytecode.CallConstructor, int64(typeID), int64(id), span.Line)
	}
}

// emitDefaultValue pushes a primitive's zero value; value types and script
// objects without an explicit initializer still go through their default
// constructor, handled by the caller when dt is not a bare primitive.
func (fc *FunctionCompiler) emitDefaultValue(dt types.DataType, line int) {
	switch dt.TypeID {
	case types.BoolID:
		fc.chunk.Emit(bytecode.PushBool, 0, line)
	case types.FloatID:
		idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstFloat, Float: 0})
		fc.chunk.Emit(bytecode.PushFloat, int64(idx), line)
	case types.DoubleID:
		idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstDouble, Double: 0})
		fc.chunk.Emit(bytecode.PushDouble, int64(idx), line)
	default:
		idx := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstInt, Int: 0})
		fc.chunk.Emit(bytecode.PushInt, int64(idx), line)
	}
}

func (fc *FunctionCompiler) checkReturn(r *ast.ReturnStmt) {
	if r.Value != nil {
		ctx := fc.checkExpr(r.Value)
		fc.emitImplicitConversion(ctx.Type, fc.fn.ReturnType, r.Value.Pos(), r.Span.Line)
	}
	fc.chunk.Emit(bytecode.Return, 0, r.Span.Line)
}

func (fc *FunctionCompiler) checkBreak(b *ast.BreakStmt) {
	loop := fc.currentLoop()
	if loop == nil {
		fc.bag.Add(diag.InvalidOperation, b.Span, "'break' outside a loop or switch")
		return
	}
	idx := fc.chunk.EmitJump(bytecode.Jump, b.Span.Line)
	loop.breaks = append(loop.breaks, idx)
}

func (fc *FunctionCompiler) checkContinue(c *ast.ContinueStmt) {
	// Unlike break, continue binds past any enclosing switch frame to the
	// nearest real loop (spec §4.H: "jump to the enclosing loop's
	// end/continue label").
	var loop *loopFrame
	for i := len(fc.loopStack) - 1; i >= 0; i-- {
		if !fc.loopStack[i].isSwitch {
			loop = fc.loopStack[i]
			break
		}
	}
	if loop == nil {
		fc.bag.Add(diag.InvalidOperation, c.Span, "'continue' outside a loop")
		return
	}
	if loop.continueDest >= 0 {
		idx := fc.chunk.EmitJump(bytecode.Jump, c.Span.Line)
		fc.chunk.PatchJumpTo(idx, loop.continueDest)
		return
	}
	idx := fc.chunk.EmitJump(bytecode.Jump, c.Span.Line)
	loop.continues = append(loop.continues, idx)
}

func (fc *FunctionCompiler) checkIf(s *ast.IfStmt) {
	fc.checkExpr(s.Condition)
	elseJump := fc.chunk.EmitJump(bytecode.JumpIfFalse, s.Span.Line)
	fc.checkStmt(s.Then)
	if s.Else == nil {
		fc.chunk.PatchJump(elseJump)
		return
	}
	endJump := fc.chunk.EmitJump(bytecode.Jump, s.Span.Line)
	fc.chunk.PatchJump(elseJump)
	fc.checkStmt(s.Else)
	fc.chunk.PatchJump(endJump)
}

// checkWhile emits the standard condition-test-at-top loop shape; continue
// jumps straight back to the condition, since that's already known when the
// loop body is entered (spec §4.I two-phase jump patching, backward case).
func (fc *FunctionCompiler) checkWhile(s *ast.WhileStmt) {
	top := len(fc.chunk.Code)
	fc.loopStack = append(fc.loopStack, &loopFrame{continueDest: top})
	fc.checkExpr(s.Condition)
	exitJump := fc.chunk.EmitJump(bytecode.JumpIfFalse, s.Span.Line)
	fc.checkStmt(s.Body)
	backJump := fc.chunk.EmitJump(bytecode.Jump, s.Span.Line)
	fc.chunk.PatchJumpTo(backJump, top)
	fc.chunk.PatchJump(exitJump)
	fc.finishLoop()
}

func (fc *FunctionCompiler) checkDoWhile(s *ast.DoWhileStmt) {
	top := len(fc.chunk.Code)
	fc.loopStack = append(fc.loopStack, &loopFrame{continueDest: -1})
	fc.checkStmt(s.Body)
	condStart := len(fc.chunk.Code)
	fc.checkExpr(s.Condition)
	backJump := fc.chunk.EmitJump(bytecode.JumpIfTrue, s.Span.Line)
	fc.chunk.PatchJumpTo(backJump, top)

	loop := fc.loopStack[len(fc.loopStack)-1]
	for _, idx := range loop.continues {
		fc.chunk.PatchJumpTo(idx, condStart)
	}
	fc.finishLoop()
}

// checkFor desugars the C-style for loop into while-shaped jumps, with
// continue jumping to the update clause rather than the condition.
func (fc *FunctionCompiler) checkFor(s *ast.ForStmt) {
	fc.pushScope()
	if s.Init != nil {
		fc.checkStmt(s.Init)
	}

	condStart := len(fc.chunk.Code)
	var exitJump int
	hasCond := s.Condition != nil
	if hasCond {
		fc.checkExpr(s.Condition)
		exitJump = fc.chunk.EmitJump(bytecode.JumpIfFalse, s.Span.Line)
	}

	fc.loopStack = append(fc.loopStack, &loopFrame{continueDest: -1})
	fc.checkStmt(s.Body)

	updateStart := len(fc.chunk.Code)
	for _, u := range s.Update {
		ctx := fc.checkExpr(u)
		if !ctx.Type.IsVoid() {
			fc.chunk.Emit(bytecode.Pop, 0, s.Span.Line)
		}
	}
	backJump := fc.chunk.EmitJump(bytecode.Jump, s.Span.Line)
	fc.chunk.PatchJumpTo(backJump, condStart)

	loop := fc.loopStack[len(fc.loopStack)-1]
	for _, idx := range loop.continues {
		fc.chunk.PatchJumpTo(idx, updateStart)
	}
	if hasCond {
		fc.chunk.PatchJump(exitJump)
	}
	for _, idx := range loop.breaks {
		fc.chunk.PatchJump(idx)
	}
	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
	fc.popScope()
}

// checkForeach desugars "foreach (T v : source) body" into the equivalent
// indexed for loop using the source type's opIndex/get_opIndex + "length"
// iteration protocol (spec §4.H: "desugared to equivalent for using the
// target's iteration protocol (opIndex + length...)"). Only a single
// iteration variable is supported by this protocol; multi-variable foreach
// (spec §3 allows "one or more") needs a key/value pair protocol no type
// in this registry yet exposes (opForBegin/opForEnd/opForNext, spec §4.H),
// so it is rejected with MissingListBehavior rather than silently
// mis-binding extra variables.
func (fc *FunctionCompiler) checkForeach(s *ast.ForeachStmt) {
	if len(s.Vars) != 1 {
		fc.bag.Add(diag.MissingListBehavior, s.Span, "foreach with more than one iteration variable needs an opForBegin/opForEnd/opForNext protocol not yet registered on this type")
		return
	}
	line := s.Span.Line

	fc.pushScope()
	srcCtx := fc.checkExpr(s.Source)
	srcSlot := fc.allocTempSlot()
	fc.chunk.Emit(bytecode.StoreLocal, int64(srcSlot), line)

	lenProp, ok := fc.ctx.FindProperty(srcCtx.Type.TypeID, "length")
	if !ok || !lenProp.HasGet {
		fc.bag.Add(diag.MissingListBehavior, s.Span, "type has no 'length' property required for foreach iteration")
		fc.popScope()
		return
	}
	indexOp, ok := fc.ctx.FindOperatorMethodWithMutability(srcCtx.Type.TypeID, types.OpIndexGet, false)
	if !ok {
		indexOp, ok = fc.ctx.FindOperatorMethodWithMutability(srcCtx.Type.TypeID, types.OpIndex, false)
	}
	if !ok {
		fc.bag.Add(diag.MissingListBehavior, s.Span, "type has no indexing operator required for foreach iteration")
		fc.popScope()
		return
	}

	idxSlot := fc.allocTempSlot()
	zeroConst := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstInt, Int: 0})
	fc.chunk.Emit(bytecode.PushInt, int64(zeroConst), line)
	fc.chunk.Emit(bytecode.StoreLocal, int64(idxSlot), line)

	indexFn, _ := fc.ctx.GetFunction(indexOp)
	elemType := indexFn.ReturnType

	condStart := len(fc.chunk.Code)
	fc.chunk.Emit(bytecode.LoadLocal, int64(idxSlot), line)
	fc.chunk.Emit(bytecode.LoadLocal, int64(srcSlot), line)
	fc.chunk.Emit(bytecode.CallMethod, int64(lenProp.Getter), line)
	fc.chunk.Emit(bytecode.LessThan, 0, line)
	exitJump := fc.chunk.EmitJump(bytecode.JumpIfFalse, line)

	fc.pushScope()
	fc.chunk.Emit(bytecode.LoadLocal, int64(srcSlot), line)
	fc.chunk.Emit(bytecode.LoadLocal, int64(idxSlot), line)
	fc.chunk.Emit(bytecode.CallMethod, int64(indexOp), line)
	varLV := fc.declareLocal(s.Vars[0].Name, elemType)
	fc.chunk.Emit(bytecode.StoreLocal, int64(varLV.slot), line)

	fc.loopStack = append(fc.loopStack, &loopFrame{continueDest: -1})
	fc.checkStmt(s.Body)
	loop := fc.loopStack[len(fc.loopStack)-1]
	updateStart := len(fc.chunk.Code)
	for _, idx := range loop.continues {
		fc.chunk.PatchJumpTo(idx, updateStart)
	}
	oneConst := fc.chunk.AddConstant(bytecode.Constant{Kind: bytecode.ConstInt, Int: 1})
	fc.chunk.Emit(bytecode.LoadLocal, int64(idxSlot), line)
	fc.chunk.Emit(bytecode.PushInt, int64(oneConst), line)
	fc.chunk.Emit(bytecode.Add, 0, line)
	fc.chunk.Emit(bytecode.StoreLocal, int64(idxSlot), line)
	backJump := fc.chunk.EmitJump(bytecode.Jump, line)
	fc.chunk.PatchJumpTo(backJump, condStart)

	fc.chunk.PatchJump(exitJump)
	for _, idx := range loop.breaks {
		fc.chunk.PatchJump(idx)
	}
	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
	fc.popScope()
	fc.popScope()
}

// checkTry compiles "try { ... } catch { ... }" using a PushHandler/
// PopHandler frame (spec §4.H: "install an exception handler frame; emit
// try body; on exception branch to catch"). PushHandler's operand is the
// relative offset to the catch block, patched the same way a conditional
// jump is; PopHandler removes the handler on normal (non-exceptional)
// completion of the try body before the code falls through to the jump
// that skips the catch block. The catch clause binds no exception
// variable (spec §3), so its body is just an ordinary block.
func (fc *FunctionCompiler) checkTry(s *ast.TryStmt) {
	line := s.Span.Line
	handlerJump := fc.chunk.EmitJump(bytecode.PushHandler, line)
	fc.checkStmt(s.Body)
	fc.chunk.Emit(bytecode.PopHandler, 0, line)
	endJump := fc.chunk.EmitJump(bytecode.Jump, line)
	fc.chunk.PatchJump(handlerJump)
	if s.Catch != nil {
		fc.checkStmt(s.Catch.Body)
	}
	fc.chunk.PatchJump(endJump)
}

// finishLoop patches every pending break to the current end of the chunk
// and pops the loop frame.
func (fc *FunctionCompiler) finishLoop() {
	loop := fc.loopStack[len(fc.loopStack)-1]
	for _, idx := range loop.breaks {
		fc.chunk.PatchJump(idx)
	}
	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
}

// checkSwitch desugars to a chain of equality comparisons against the
// scrutinee, each guarding a conditional jump to its case body (spec §4.H;
// there is no dedicated Switch opcode, so this mirrors how the teacher's
// own compiler desugars pattern-less multi-way branches). The scrutinee is
// cached in a temp local so it's evaluated once regardless of case count.
func (fc *FunctionCompiler) checkSwitch(s *ast.SwitchStmt) {
	line := s.Span.Line
	fc.checkExpr(s.Scrutinee)
	tmp := fc.allocTempSlot()
	fc.chunk.Emit(bytecode.StoreLocal, int64(tmp), line)

	fc.loopStack = append(fc.loopStack, &loopFrame{continueDest: -1, isSwitch: true})

	fc.compileSwitchCases(s, tmp, line)

	loop := fc.loopStack[len(fc.loopStack)-1]
	for _, idx := range loop.breaks {
		fc.chunk.PatchJump(idx)
	}
	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
}

// compileSwitchCases emits the whole test chain first (per case, every
// label compared in turn with OR semantics, each match jumping forward to
// that case's body), then a single no-match jump to the default body (or
// past the switch when there is none), then every body in source order
// with nothing between them — so a body not ended by break/return falls
// through into the next case's body (spec §4.H: "case bodies fall through
// unless terminated by break/return").
func (fc *FunctionCompiler) compileSwitchCases(s *ast.SwitchStmt, scrutSlot, line int) {
	matchJumps := make([][]int, len(s.Cases))
	defaultIdx := -1
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.IsDefault {
			defaultIdx = i
			continue
		}
		for _, label := range c.Labels {
			fc.chunk.Emit(bytecode.LoadLocal, int64(scrutSlot), line)
			fc.checkExpr(label)
			fc.chunk.Emit(bytecode.Equal, 0, line)
			matchJumps[i] = append(matchJumps[i], fc.chunk.EmitJump(bytecode.JumpIfTrue, line))
		}
	}
	noMatchJump := fc.chunk.EmitJump(bytecode.Jump, line)

	defaultStart := -1
	for i := range s.Cases {
		if i == defaultIdx {
			defaultStart = len(fc.chunk.Code)
		}
		for _, mj := range matchJumps[i] {
			fc.chunk.PatchJump(mj)
		}
		for _, st := range s.Cases[i].Body {
			fc.checkStmt(st)
		}
	}
	if defaultStart >= 0 {
		fc.chunk.PatchJumpTo(noMatchJump, defaultStart)
	} else {
		fc.chunk.PatchJump(noMatchJump)
	}
}
