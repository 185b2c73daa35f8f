package check

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// ExprContext is the result of checking any expression (spec §4.H): its
// type, and whether it denotes an assignable, mutable storage location.
type ExprContext struct {
	Type      types.DataType
	IsLvalue  bool
	IsMutable bool
}

type localVar struct {
	slot    int
	typ     types.DataType
	isConst bool
}

// loopFrame tracks the pending break/continue jump sites for one enclosing
// loop or switch, patched once the loop's exit and increment points are
// known (spec §4.I "two-phase jump patching"). A switch frame only catches
// break; continue binds past it to the nearest real loop.
type loopFrame struct {
	breaks       []int
	continues    []int
	continueDest int // -1 until known; backward jumps patch immediately instead
	isSwitch     bool
}

// FunctionCompiler is pass 2's per-function driver: it walks one function
// body, resolving every expression/statement against ctx and emitting
// instructions into chunk (spec §4.H, the single largest component of the
// system).
type FunctionCompiler struct {
	ctx   *compiler.Context
	bag   *diag.Bag
	chunk *bytecode.BytecodeChunk
	fn    *types.FunctionDef

	scopes    []map[string]localVar
	nextSlot  int
	loopStack []*loopFrame

	hasThis  bool
	thisType types.TypeId

	// expectedFuncdef carries the funcdef handle type a lambda expression
	// should be checked against, set just before checking a var-decl
	// initializer or call argument whose target type is known (spec §4.H
	// "the lambda's expected type comes from its surrounding context").
	expectedFuncdef    types.TypeId
	hasExpectedFuncdef bool

	// expectedInitList carries the target type a `{...}` expression should
	// construct through the target's list-construction behavior, set just
	// before checking an initializer whose declared type is known (spec
	// §4.H's expected_init_list_target hint).
	expectedInitList    types.DataType
	hasExpectedInitList bool
}

// CompileFunction type-checks and emits bytecode for one pending function
// (spec §4.H entry point). A function with no body (native/interface
// signature) produces a chunk holding only a Return instruction.
func CompileFunction(ctx *compiler.Context, bag *diag.Bag, fn *types.FunctionDef, pf PendingFunction) *bytecode.BytecodeChunk {
	chunk := bytecode.NewChunk(pf.ID, fn.Qualified)
	fc := &FunctionCompiler{ctx: ctx, bag: bag, chunk: chunk, fn: fn, hasThis: pf.HasClass, thisType: pf.ClassType}

	fc.pushScope()
	if pf.HasClass {
		// A const method sees "this" as a handle to a const object (spec
		// §4.H: "Calling a non-const method on a const object" is rejected,
		// which only has teeth if the method's own receiver is marked const
		// here so field/method access through it propagates the same way a
		// const parameter's does).
		fc.declareLocal("this", types.DataType{TypeID: pf.ClassType, IsHandle: true, IsHandleToConst: fn.Traits.IsConst})
	}
	for _, p := range fn.Params {
		// A const parameter (by value, or "const T@ p") is tracked as a
		// const local so both rebinding it and mutating through it are
		// rejected (spec §4.H point 5, testable property 8).
		if p.Type.IsConst {
			fc.declareConstLocal(p.Name, p.Type)
		} else {
			fc.declareLocal(p.Name, p.Type)
		}
	}

	if pf.Decl.Body != nil {
		fc.checkBlock(pf.Decl.Body)
	}
	fc.chunk.Emit(bytecode.Return, 0, pf.Decl.Span.Line)

	fc.popScope()
	fc.chunk.LocalCount = fc.nextSlot
	return fc.chunk
}

func (fc *FunctionCompiler) pushScope() {
	fc.scopes = append(fc.scopes, make(map[string]localVar))
}

func (fc *FunctionCompiler) popScope() {
	fc.scopes = fc.scopes[:len(fc.scopes)-1]
}

// allocTempSlot reserves a local slot with no name binding, used to cache a
// receiver or intermediate value across a compound assignment's read/write
// halves without re-evaluating (and thus re-running any side effects of)
// the original expression.
func (fc *FunctionCompiler) allocTempSlot() int {
	slot := fc.nextSlot
	fc.nextSlot++
	return slot
}

func (fc *FunctionCompiler) declareLocal(name string, dt types.DataType) localVar {
	lv := localVar{slot: fc.nextSlot, typ: dt}
	fc.nextSlot++
	fc.scopes[len(fc.scopes)-1][name] = lv
	return lv
}

func (fc *FunctionCompiler) declareConstLocal(name string, dt types.DataType) localVar {
	lv := localVar{slot: fc.nextSlot, typ: dt, isConst: true}
	fc.nextSlot++
	fc.scopes[len(fc.scopes)-1][name] = lv
	return lv
}

func (fc *FunctionCompiler) lookupLocal(name string) (localVar, bool) {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if lv, ok := fc.scopes[i][name]; ok {
			return lv, true
		}
	}
	return localVar{}, false
}

func (fc *FunctionCompiler) currentLoop() *loopFrame {
	if len(fc.loopStack) == 0 {
		return nil
	}
	return fc.loopStack[len(fc.loopStack)-1]
}

func (fc *FunctionCompiler) line(n ast.Node) int {
	return n.Pos().Line
}

// resolveHierarchy adapts Context.IsSubclassOf to the conversion package's
// HierarchyFunc shape (types cannot import compiler, spec §4.F design note).
func (fc *FunctionCompiler) resolveHierarchy() types.HierarchyFunc {
	return fc.ctx.IsSubclassOf
}
