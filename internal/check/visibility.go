package check

import (
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// checkVisible enforces spec §4.H "Visibility": public is accessible from
// anywhere, private only from inside ownerType itself, protected from
// ownerType or any of its subclasses. It reports InvalidOperation and
// returns false on a violation so the caller can skip emitting the access
// (the diagnostic already says everything a later type error would).
func (fc *FunctionCompiler) checkVisible(vis types.Visibility, ownerType types.TypeId, span diag.Span, what, name string) bool {
	switch vis {
	case types.Public:
		return true
	case types.Private:
		if fc.hasThis && fc.thisType == ownerType {
			return true
		}
		fc.bag.Add(diag.InvalidOperation, span, "%s %q is private and not accessible here", what, name)
		return false
	case types.Protected:
		if fc.hasThis && fc.ctx.IsSubclassOf(fc.thisType, ownerType) {
			return true
		}
		fc.bag.Add(diag.InvalidOperation, span, "%s %q is protected and not accessible here", what, name)
		return false
	}
	return true
}

// checkCallableVisible applies checkVisible to a FunctionDef; free functions
// (HasObject false) have no owning class to check against and are always
// callable, matching the spec's visibility rule scoping to "field, property,
// and method access".
func (fc *FunctionCompiler) checkCallableVisible(fn *types.FunctionDef, span diag.Span, what, name string) bool {
	if !fn.HasObject {
		return true
	}
	return fc.checkVisible(fn.Vis, fn.ObjectType, span, what, name)
}
