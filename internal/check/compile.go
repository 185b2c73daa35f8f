package check

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
)

// Module is the output of a complete two-pass compilation: one
// BytecodeChunk per pending function, plus one initializer chunk per
// global that declares one (spec §4.G/§4.H combined entry point).
type Module struct {
	Chunks      []*bytecode.BytecodeChunk
	GlobalInits []*bytecode.BytecodeChunk
	Globals     []PendingGlobal
}

// CompileProgram runs pass 1 (Collect) followed by pass 2 (per-function and
// per-global checking) and returns the resulting module. Diagnostics from
// either pass accumulate in bag; callers should check bag.HasErrors()
// before trusting the returned chunks.
func CompileProgram(ctx *compiler.Context, bag *diag.Bag, prog *ast.Program) *Module {
	result := Collect(ctx, bag, prog)

	mod := &Module{Globals: result.Globals}

	for _, pf := range result.Functions {
		fn, ok := ctx.GetFunction(pf.ID)
		if !ok {
			bag.Add(diag.InternalError, pf.Decl.Span, "function %q registered in pass 1 has no signature in pass 2", pf.Decl.Name)
			continue
		}
		if ctx.IsCompiled(pf.ID) {
			continue
		}
		chunk := CompileFunction(ctx, bag, fn, pf)
		ctx.MarkCompiled(pf.ID)
		mod.Chunks = append(mod.Chunks, chunk)
	}

	mod.GlobalInits = checkGlobalInitializers(ctx, bag, result.Globals)
	mod.Chunks = append(mod.Chunks, ctx.TakeLambdaChunks()...)

	return mod
}

// checkGlobalInitializers type-checks every global's initializer
// expression in a synthetic zero-argument chunk that stores the result
// into the global, since a top-level initializer is not otherwise
// attached to any declared function (spec §4.G point 4 / §4.H).
func checkGlobalInitializers(ctx *compiler.Context, bag *diag.Bag, globals []PendingGlobal) []*bytecode.BytecodeChunk {
	var out []*bytecode.BytecodeChunk
	for _, g := range globals {
		if g.Init == nil {
			continue
		}
		chunk := bytecode.NewChunk(0, "$init$"+g.Name)
		fc := &FunctionCompiler{ctx: ctx, bag: bag, chunk: chunk}
		fc.pushScope()
		fc.checkExpr(g.Init)
		idx := stringConstIndex(fc, g.Name)
		fc.chunk.Emit(bytecode.StoreGlobal, int64(idx), g.Span.Line)
		fc.chunk.Emit(bytecode.Return, 0, g.Span.Line)
		fc.popScope()
		out = append(out, chunk)
	}
	return out
}
