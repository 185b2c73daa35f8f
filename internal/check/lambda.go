package check

import (
	"fmt"
	"sort"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// capturedLocal is one enclosing local pulled into a lambda body as a
// synthetic trailing parameter, captured by value at the point the lambda
// expression is evaluated (spec §4.H: lambdas have no VM-level closure
// representation, only FuncPtr/CallPtr, so capture happens at compile time
// by copying the value into the lambda's own frame).
type capturedLocal struct {
	name string
	typ  types.DataType
}

// capturedLocals snapshots every local visible at the lambda's point of
// definition, in a deterministic (name-sorted) order so the synthetic
// trailing parameter list a lambda compiles with is stable across runs.
func (fc *FunctionCompiler) capturedLocals() []capturedLocal {
	seen := make(map[string]localVar)
	for _, scope := range fc.scopes {
		for name, lv := range scope {
			seen[name] = lv
		}
	}
	out := make([]capturedLocal, 0, len(seen))
	for name, lv := range seen {
		out = append(out, capturedLocal{name: name, typ: lv.typ})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// withExpectedFuncdefResult checks expr with expected set as the funcdef
// type a bare lambda literal should be checked against (spec §4.H: "the
// lambda's expected type comes from its surrounding context" — here, a
// var-decl's declared type or a call argument's narrowed parameter type).
func (fc *FunctionCompiler) withExpectedFuncdefResult(expected types.TypeId, expr ast.Expression) ExprContext {
	prevType, prevHas := fc.expectedFuncdef, fc.hasExpectedFuncdef
	fc.expectedFuncdef, fc.hasExpectedFuncdef = expected, true
	ctx := fc.checkExpr(expr)
	fc.expectedFuncdef, fc.hasExpectedFuncdef = prevType, prevHas
	return ctx
}

// checkLambda compiles "function(params){body}" to a fresh chunk and emits
// a FuncPtr to it (spec §4.H "lambda inference"): the lambda's signature is
// resolved against fc.expectedFuncdef (set by the caller from the
// surrounding var-decl or call-argument context), its body is compiled
// immediately rather than deferred, and every local visible at the lambda's
// definition point is captured by value as a trailing parameter.
func (fc *FunctionCompiler) checkLambda(l *ast.LambdaExpr) ExprContext {
	line := l.Span.Line
	if !fc.hasExpectedFuncdef {
		fc.bag.Add(diag.TypeMismatch, l.Span, "lambda expression has no expected function type in this context")
		fc.checkLambdaBodyForDiagnostics(l)
		return ExprContext{Type: types.Void()}
	}

	paramTypes, retType, ok := fc.ctx.GetFuncdefSignature(fc.expectedFuncdef)
	if !ok {
		fc.bag.Add(diag.TypeMismatch, l.Span, "lambda's expected type is not a function signature")
		fc.checkLambdaBodyForDiagnostics(l)
		return ExprContext{Type: types.Void()}
	}
	if len(l.Params) != len(paramTypes) {
		fc.bag.Add(diag.WrongArgumentCount, l.Span, "lambda expects %d parameter(s) to match its function type, got %d", len(paramTypes), len(l.Params))
	}

	resolvedParams := make([]types.DataType, 0, len(l.Params))
	for i, p := range l.Params {
		pt := types.Void()
		if i < len(paramTypes) {
			pt = paramTypes[i]
		}
		if p.Type != nil {
			explicit, ok := ResolveTypeExpr(fc.ctx, fc.bag, p.Type)
			if ok {
				if i < len(paramTypes) && !explicit.Equal(paramTypes[i]) {
					fc.bag.Add(diag.TypeMismatch, l.Span, "lambda parameter %q does not match the expected function type", p.Name)
				}
				pt = explicit
			}
		}
		resolvedParams = append(resolvedParams, pt)
	}
	if l.RetType != nil {
		if explicit, ok := ResolveTypeExpr(fc.ctx, fc.bag, l.RetType); ok && !explicit.Equal(retType) {
			fc.bag.Add(diag.TypeMismatch, l.Span, "lambda return type does not match the expected function type")
		}
	}

	captures := fc.capturedLocals()
	lambdaID := fc.ctx.AllocLambdaID()
	chunk := bytecode.NewChunk(lambdaID, fmt.Sprintf("%s$lambda", fc.chunk.Name))
	lc := &FunctionCompiler{ctx: fc.ctx, bag: fc.bag, chunk: chunk, fn: &types.FunctionDef{ReturnType: retType}}

	lc.pushScope()
	for i, p := range l.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("$p%d", i)
		}
		lc.declareLocal(name, resolvedParams[i])
	}
	for _, capt := range captures {
		lc.declareLocal(capt.name, capt.typ)
	}
	lc.checkBlock(l.Body)
	lc.chunk.Emit(bytecode.Return, 0, line)
	lc.popScope()
	lc.chunk.LocalCount = lc.nextSlot

	fc.ctx.RecordLambdaChunk(lc.chunk)

	for _, capt := range captures {
		if lv, ok := fc.lookupLocal(capt.name); ok {
			fc.chunk.Emit(bytecode.LoadLocal, int64(lv.slot), line)
		}
	}
	fc.chunk.Emit(bytecode.FuncPtr, int64(lambdaID), line)
	return ExprContext{Type: types.DataType{TypeID: fc.expectedFuncdef, IsHandle: true}}
}

// checkLambdaBodyForDiagnostics still walks a lambda's body to surface any
// diagnostics inside it (undefined variables, bad operators) even when the
// lambda itself cannot be compiled for lack of an expected function type,
// rather than silently skipping half the program.
func (fc *FunctionCompiler) checkLambdaBodyForDiagnostics(l *ast.LambdaExpr) {
	lc := &FunctionCompiler{ctx: fc.ctx, bag: fc.bag, chunk: bytecode.NewChunk(0, "$lambda$discard"), fn: &types.FunctionDef{ReturnType: types.Void()}}
	lc.pushScope()
	for i, p := range l.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("$p%d", i)
		}
		pt := types.Void()
		if p.Type != nil {
			if explicit, ok := ResolveTypeExpr(fc.ctx, fc.bag, p.Type); ok {
				pt = explicit
			}
		}
		lc.declareLocal(name, pt)
	}
	for _, capt := range fc.capturedLocals() {
		lc.declareLocal(capt.name, capt.typ)
	}
	lc.checkBlock(l.Body)
	lc.popScope()
}

// checkArgsWithLambdaInference checks a call's arguments against candidates
// in two passes (spec §4.H "two-pass for overloaded calls"): non-lambda
// arguments are checked first and used to narrow candidates by arity and
// conversion cost; if that narrowing leaves the parameter type at a lambda
// argument's position unambiguous, the lambda is checked against it. With
// zero or several surviving candidates disagreeing on that position, the
// first candidate's type is used as a best-effort guess so the lambda body
// still gets diagnosed, and the ordinary single-candidate ambiguity/
// not-callable diagnostic is left to the final resolveOverload call.
//
// Each argument is evaluated exactly once and stashed in a temp local
// (returned slot) rather than left on the stack, so the caller can resolve
// the overload first and then reload every argument -- with whatever
// implicit conversion the winning parameter type requires inserted right
// after -- in call order (spec §4.H point 5).
func (fc *FunctionCompiler) checkArgsWithLambdaInference(args []ast.Arg, candidates []types.FunctionId) ([]int, []types.DataType) {
	lambdaAt := make([]bool, len(args))
	for i, a := range args {
		if _, ok := a.Value.(*ast.LambdaExpr); ok {
			lambdaAt[i] = true
		}
	}

	hasLambda := false
	for _, v := range lambdaAt {
		if v {
			hasLambda = true
		}
	}
	if !hasLambda {
		return fc.checkArgs(args)
	}

	narrowed := make([]types.FunctionId, 0, len(candidates))
	for _, id := range candidates {
		fn, ok := fc.ctx.GetFunction(id)
		if !ok {
			continue
		}
		if len(args) < fn.RequiredParamCount() || len(args) > len(fn.Params) {
			continue
		}
		narrowed = append(narrowed, id)
	}

	slots := make([]int, len(args))
	argTypes := make([]types.DataType, len(args))
	for i, a := range args {
		var ctx ExprContext
		if !lambdaAt[i] {
			ctx = fc.checkExpr(a.Value)
		} else if expected, ok := fc.singleCandidateParamType(narrowed, i); ok {
			ctx = fc.withExpectedFuncdefResult(expected.TypeID, a.Value)
		} else {
			ctx = fc.checkExpr(a.Value)
		}
		slot := fc.allocTempSlot()
		fc.chunk.Emit(bytecode.StoreLocal, int64(slot), fc.line(a.Value))
		slots[i] = slot
		argTypes[i] = ctx.Type
	}
	return slots, argTypes
}

// singleCandidateParamType returns the parameter type at index argIdx when
// every surviving candidate agrees on it, so a lambda argument at that
// position can be checked against one concrete funcdef type.
func (fc *FunctionCompiler) singleCandidateParamType(candidates []types.FunctionId, argIdx int) (types.DataType, bool) {
	var found types.DataType
	set := false
	for _, id := range candidates {
		fn, ok := fc.ctx.GetFunction(id)
		if !ok || argIdx >= len(fn.Params) {
			continue
		}
		pt := fn.Params[argIdx].Type
		if !set {
			found, set = pt, true
			continue
		}
		if found.TypeID != pt.TypeID {
			return types.DataType{}, false
		}
	}
	return found, set
}
