// Package check implements the two-pass semantic analysis and bytecode
// emission described in spec §4.G (declaration collector) and §4.H
// (expression checker & bytecode emitter).
package check

import (
	"strings"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// ResolveTypeExpr turns a parsed ast.TypeExpr into a checked types.DataType,
// reporting UnknownType through bag on failure. Shared by the pass-1
// collector (field/param/return types) and the pass-2 checker (cast
// targets, declared variable types).
func ResolveTypeExpr(ctx *compiler.Context, bag *diag.Bag, te ast.TypeExpr) (types.DataType, bool) {
	t, ok := te.(*ast.Type)
	if !ok || t == nil {
		bag.Add(diag.InternalError, diag.Span{}, "type expression has no concrete form")
		return types.DataType{}, false
	}

	var id types.TypeId
	switch t.BaseKind {
	case ast.TypeAuto:
		// auto is resolved contextually from an initializer by the caller;
		// reaching here means it was used somewhere that requires a
		// concrete type up front (e.g. a field or parameter).
		bag.Add(diag.UnknownType, t.Span, "'auto' is not allowed in this position")
		return types.DataType{}, false
	case ast.TypeUnknown:
		bag.Add(diag.UnknownType, t.Span, "'?' is not allowed in this position")
		return types.DataType{}, false
	default:
		qualified := qualifiedTypeName(t)
		if len(t.TypeArgs) > 0 {
			inst, ok := resolveTemplateInstance(ctx, bag, t, qualified)
			if !ok {
				return types.DataType{}, false
			}
			id = inst
			break
		}
		resolved, err := ctx.ResolveType(qualified)
		if err != nil {
			bag.Add(diag.UnknownType, t.Span, "unknown type %q", qualified)
			return types.DataType{}, false
		}
		id = resolved
	}

	dt := types.DataType{TypeID: id, IsConst: t.Const}
	if len(t.Suffixes) > 0 {
		dt.IsHandle = true
		dt.IsHandleToConst = t.Suffixes[len(t.Suffixes)-1].Const
	}
	switch t.ParamRef {
	case ast.RefIn:
		dt.RefMod = types.RefIn
	case ast.RefOut:
		dt.RefMod = types.RefOut
	case ast.RefInOut, ast.RefPlain:
		dt.RefMod = types.RefInOut
	}
	return dt, true
}

// resolveTemplateInstance resolves "name<args...>" to the TypeId of a
// registered instantiation. The FFI registry's pre-instantiated entries win
// through the ordinary lookup order; a first use the host did not
// pre-instantiate registers a script-side instantiation under its spelled
// name so later mentions resolve to the same TypeId (spec §4.E's
// register_type_with_alias path for templated instantiations).
func resolveTemplateInstance(ctx *compiler.Context, bag *diag.Bag, t *ast.Type, qualified string) (types.TypeId, bool) {
	argIDs := make([]types.TypeId, 0, len(t.TypeArgs))
	argNames := make([]string, 0, len(t.TypeArgs))
	for _, a := range t.TypeArgs {
		adt, ok := ResolveTypeExpr(ctx, bag, a)
		if !ok {
			return 0, false
		}
		argIDs = append(argIDs, adt.TypeID)
		argNames = append(argNames, typeDisplayName(ctx, adt))
	}
	instName := qualified + "<" + strings.Join(argNames, ",") + ">"

	if id, ok := ctx.LookupType(instName); ok {
		return id, true
	}

	origin, err := ctx.ResolveType(qualified)
	if err != nil {
		bag.Add(diag.UnknownType, t.Span, "unknown type %q", qualified)
		return 0, false
	}
	td, ok := ctx.GetType(origin)
	if !ok {
		bag.Add(diag.UnknownType, t.Span, "unknown type %q", qualified)
		return 0, false
	}
	tmpl, isTemplate := td.(*types.TemplateDef)
	if !isTemplate {
		bag.Add(diag.UnknownType, t.Span, "type %q is not a template", qualified)
		return 0, false
	}
	if len(argIDs) != len(tmpl.Params) {
		bag.Add(diag.TypeMismatch, t.Span, "template %q expects %d type argument(s), got %d", qualified, len(tmpl.Params), len(argIDs))
		return 0, false
	}

	inst := &types.ClassDef{
		Qualified:      instName,
		Id:             types.HashTypeName(instName),
		Kind:           types.ReferenceType,
		TemplateOrigin: origin,
		HasOrigin:      true,
		TypeArgs:       argIDs,
	}
	ctx.RegisterType(inst)
	return inst.Id, true
}

// typeDisplayName renders a DataType as the spelling used inside an
// instantiation name, so "array<int8>" and a second mention of the same
// instantiation hash to the same TypeId.
func typeDisplayName(ctx *compiler.Context, dt types.DataType) string {
	name := types.PrimitiveName(dt.TypeID)
	if name == "" {
		if td, ok := ctx.GetType(dt.TypeID); ok {
			name = td.TypeName()
		}
	}
	if dt.IsHandle {
		name += "@"
	}
	return name
}

func qualifiedTypeName(t *ast.Type) string {
	if len(t.Scope) == 0 {
		return t.Name
	}
	parts := make([]string, 0, len(t.Scope)+1)
	for _, seg := range t.Scope {
		parts = append(parts, seg.Name)
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, "::")
}

// typeExprString renders a type expression's scope+name as a qualified
// name ("A::B"), or "<type>" for a type expression that is not a named type.
func typeExprString(te ast.TypeExpr) string {
	if t, ok := te.(*ast.Type); ok {
		return qualifiedTypeName(t)
	}
	return "<type>"
}
