package check

import (
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// validateClasses runs once every class in the script registry has its
// base/interfaces/members filed (spec §4.G point 5): it rejects cyclic
// inheritance, extension of a class marked final, and an "override" method
// with no matching virtual base method. It cannot run interleaved with
// collectClass because a class declared before its base is fully collected
// would otherwise see a half-built base.
func validateClasses(ctx *compiler.Context, bag *diag.Bag) {
	for _, cd := range ctx.Script.AllClasses() {
		checkInheritanceCycle(ctx, bag, cd)
		checkFinalBase(ctx, bag, cd)
		checkOverrides(ctx, bag, cd)
	}
}

func checkInheritanceCycle(ctx *compiler.Context, bag *diag.Bag, cd *types.ClassDef) {
	if !cd.HasBase {
		return
	}
	seen := map[types.TypeId]bool{cd.Id: true}
	cur := cd.Base
	for depth := 0; depth < 256; depth++ {
		if seen[cur] {
			bag.Add(diag.InvalidOperation, diag.Span{}, "class %q has a cyclic inheritance chain", cd.Qualified)
			return
		}
		seen[cur] = true
		base, ok := ctx.GetBaseClass(cur)
		if !ok {
			return
		}
		cur = base
	}
	bag.Add(diag.InvalidOperation, diag.Span{}, "class %q has an inheritance chain deeper than the supported limit", cd.Qualified)
}

func checkFinalBase(ctx *compiler.Context, bag *diag.Bag, cd *types.ClassDef) {
	if !cd.HasBase {
		return
	}
	baseTd, ok := ctx.GetType(cd.Base)
	if !ok {
		return
	}
	baseCd, ok := baseTd.(*types.ClassDef)
	if !ok {
		return
	}
	if baseCd.IsFinal {
		bag.Add(diag.ConflictingModifiers, diag.Span{}, "class %q extends %q, which is declared final", cd.Qualified, baseCd.Qualified)
	}
}

func checkOverrides(ctx *compiler.Context, bag *diag.Bag, cd *types.ClassDef) {
	for name, ids := range cd.Methods {
		for _, id := range ids {
			fn, ok := ctx.GetFunction(id)
			if !ok || !fn.Traits.IsOverride {
				continue
			}
			if !cd.HasBase {
				bag.Add(diag.ConflictingModifiers, diag.Span{}, "method %q is marked override but %q has no base class", name, cd.Qualified)
				continue
			}
			if !baseHasVirtualMethod(ctx, cd.Base, name, fn) {
				bag.Add(diag.ConflictingModifiers, diag.Span{}, "method %q on %q overrides nothing in its base class chain", name, cd.Qualified)
			}
		}
	}
}

// baseHasVirtualMethod walks the base-class chain looking for a virtual,
// non-final method of the same name and parameter-type signature as fn.
func baseHasVirtualMethod(ctx *compiler.Context, base types.TypeId, name string, fn *types.FunctionDef) bool {
	for depth := 0; depth < 256; depth++ {
		td, ok := ctx.GetType(base)
		if !ok {
			return false
		}
		cd, ok := td.(*types.ClassDef)
		if !ok {
			return false
		}
		for _, candidateID := range cd.Methods[name] {
			candidate, ok := ctx.GetFunction(candidateID)
			if !ok || candidate.Traits.IsFinal || !candidate.Traits.IsVirtual {
				continue
			}
			if sameParamTypes(candidate.Params, fn.Params) {
				return true
			}
		}
		if !cd.HasBase {
			return false
		}
		base = cd.Base
	}
	return false
}

func sameParamTypes(a, b []types.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}
