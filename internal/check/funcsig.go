package check

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// buildParams resolves every ast.Param into a types.Param, reporting
// UnknownType for any parameter whose type does not resolve (the
// parameter still gets a zero-value DataType so the rest of the
// signature can be built, matching spec §4.A's "continue past the first
// error" policy).
func buildParams(ctx *compiler.Context, bag *diag.Bag, params []ast.Param) []types.Param {
	out := make([]types.Param, 0, len(params))
	for _, p := range params {
		dt, _ := ResolveTypeExpr(ctx, bag, p.Type)
		out = append(out, types.Param{Name: p.Name, Type: dt, HasDefault: p.Default != nil})
	}
	return out
}

func paramTypeIDs(params []types.Param) []types.TypeId {
	ids := make([]types.TypeId, len(params))
	for i, p := range params {
		ids[i] = p.Type.TypeID
	}
	return ids
}

// translateVis maps ast.Visibility onto types.Visibility; kept as a
// standalone function since the two enums intentionally don't share a
// package (types must not import ast, spec §4.E design note).
func translateVis(v ast.Visibility) types.Visibility {
	switch v {
	case ast.VisPrivate:
		return types.Private
	case ast.VisProtected:
		return types.Protected
	default:
		return types.Public
	}
}

// buildFunctionDef turns one ast.FuncDecl, already known to live under
// qualifiedOwner (a class's qualified name, or "" for a free function),
// into a registered types.FunctionDef. The returned FunctionId is
// deterministic (spec §3: "hash of qualified name + parameter type IDs"),
// so mutually recursive functions can reference each other before either
// body is compiled (spec §4.H "Cycle & recursion").
func buildFunctionDef(ctx *compiler.Context, bag *diag.Bag, qualifiedOwner string, objType types.TypeId, hasObject bool, d *ast.FuncDecl) *types.FunctionDef {
	params := buildParams(ctx, bag, d.Params)

	var retType types.DataType
	if d.ReturnType != nil {
		retType, _ = ResolveTypeExpr(ctx, bag, d.ReturnType)
	} else {
		retType = types.Void()
	}

	qualified := d.Name
	if qualifiedOwner != "" {
		qualified = qualifiedOwner + "::" + d.Name
	} else {
		qualified = ctx.QualifiedName(d.Name)
	}

	hash := types.HashFunctionName(qualified, paramTypeIDs(params))

	fn := &types.FunctionDef{
		Hash:       hash,
		Name:       d.Name,
		Qualified:  qualified,
		Namespace:  ctx.CurrentNamespace(),
		Params:     params,
		ReturnType: retType,
		ObjectType: objType,
		HasObject:  hasObject,
		Traits: types.FunctionTraits{
			IsConst:    d.Attrs.Const,
			IsVirtual:  hasObject && !d.Attrs.Final,
			IsFinal:    d.Attrs.Final,
			IsOverride: d.Attrs.Override,
			IsProperty: d.Attrs.Property,
			IsDelete:   d.Attrs.Delete,
			IsExplicit: d.Attrs.Explicit,
		},
		IsNative: d.IsNative && d.Body == nil,
		Vis:      translateVis(d.Vis),
	}
	return fn
}

// methodRegistryKey returns the name a method is filed under in a class's
// Methods map: constructors (a method literally named after the class,
// spec §4.D "constructor ('Name(')") are filed under "construct" so
// ScriptRegistry.FindConstructors can find them without a separate table.
func methodRegistryKey(className, methodName string) string {
	if methodName == className {
		return "construct"
	}
	return methodName
}

