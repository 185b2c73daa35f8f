package check

import (
	"strings"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// PendingFunction is a function/method whose signature has been registered
// into the script registry during pass 1 but whose body (if any) has not
// yet been type-checked and emitted -- that happens in pass 2 (spec §4.H).
type PendingFunction struct {
	ID        types.FunctionId
	Decl      *ast.FuncDecl
	ClassType types.TypeId
	HasClass  bool
}

// PendingGlobal is a global variable whose declared type is registered but
// whose initializer (if any) still needs pass-2 checking.
type PendingGlobal struct {
	Name string
	Type types.DataType
	Init ast.Expression
	Span diag.Span
}

// CollectResult is everything pass 1 produces for pass 2 to consume.
type CollectResult struct {
	Functions []PendingFunction
	Globals   []PendingGlobal
}

// Collect runs the declaration collector (spec §4.G, "pass 1") over every
// file in prog: it reserves a TypeId for every class/interface/enum/funcdef
// up front, then resolves base classes, members, operator classification,
// and function/global signatures. No expression is typechecked here --
// default-argument expressions and field initializers are deferred to
// pass 2, matching the spec's explicit scoping of pass 1.
func Collect(ctx *compiler.Context, bag *diag.Bag, prog *ast.Program) CollectResult {
	var files [][]ast.Decl
	for _, f := range prog.Files {
		files = append(files, f.Decls)
	}

	// Step 1: reserve a TypeId for every class/interface/enum/funcdef
	// across every file, so forward references (a field of type B inside
	// class A declared before B) resolve correctly in step 2.
	for _, decls := range files {
		reserveTypes(ctx, decls)
	}

	var result CollectResult

	// Step 2: resolve bases/interfaces, members, function signatures,
	// globals, enum values, imports (applied as encountered, in source
	// order, since "import" only affects resolution of what follows it).
	for _, decls := range files {
		collectDecls(ctx, bag, decls, &result)
	}

	// Step 3 (spec §4.G point 5): override conformance, final-class
	// extension, abstract-method/abstract-class consistency, and cyclic
	// inheritance detection -- all of these need every class's base chain
	// and method table fully populated, so they run as a validation pass
	// over the whole registry rather than inline during step 2.
	validateClasses(ctx, bag)

	return result
}

// reserveTypes walks decls (recursing into namespaces) and registers a
// skeleton TypeDef -- just enough for ResolveType to succeed -- for every
// class/interface/enum/funcdef. Skeletons are overwritten in place by
// collectDecls once members are known.
func reserveTypes(ctx *compiler.Context, decls []ast.Decl) {
	for _, d := range decls {
		switch decl := d.(type) {
		case *ast.NamespaceDecl:
			for _, seg := range decl.Path {
				ctx.EnterNamespace(seg)
			}
			reserveTypes(ctx, decl.Decls)
			for range decl.Path {
				ctx.ExitNamespace()
			}
		case *ast.ClassDecl:
			qualified := ctx.QualifiedName(decl.Name)
			id := types.HashTypeName(qualified)
			ctx.RegisterType(&types.ClassDef{
				Qualified:  qualified,
				Id:         id,
				Methods:    make(map[string][]types.FunctionId),
				Operators:  make(map[types.OperatorBehavior][]types.FunctionId),
				Properties: make(map[string]types.PropertyDef),
				IsFinal:    decl.Mods.Final,
				IsAbstract: decl.Mods.Abstract,
				Kind:       types.ScriptObjectType,
			})
		case *ast.InterfaceDecl:
			qualified := ctx.QualifiedName(decl.Name)
			id := types.HashTypeName(qualified)
			ctx.RegisterType(&types.InterfaceDef{Qualified: qualified, Id: id})
		case *ast.EnumDecl:
			qualified := ctx.QualifiedName(decl.Name)
			id := types.HashTypeName(qualified)
			ctx.RegisterType(&types.EnumDef{Qualified: qualified, Id: id, Values: make(map[string]int64)})
		case *ast.FuncdefDecl:
			qualified := ctx.QualifiedName(decl.Name)
			id := types.HashTypeName(qualified)
			ctx.RegisterType(&types.FuncdefDef{Qualified: qualified, Id: id})
		}
	}
}

func collectDecls(ctx *compiler.Context, bag *diag.Bag, decls []ast.Decl, out *CollectResult) {
	for _, d := range decls {
		switch decl := d.(type) {
		case *ast.NamespaceDecl:
			for _, seg := range decl.Path {
				ctx.EnterNamespace(seg)
			}
			collectDecls(ctx, bag, decl.Decls, out)
			for range decl.Path {
				ctx.ExitNamespace()
			}
		case *ast.ImportDecl:
			ctx.AddImport(strings.Join(decl.Namespace, "::"))
		case *ast.TypedefDecl:
			if id, err := ctx.ResolveType(typeExprString(decl.Alias)); err == nil {
				ctx.RegisterTypeAlias(ctx.QualifiedName(decl.Name), id)
			}
		case *ast.ClassDecl:
			collectClass(ctx, bag, decl, out)
		case *ast.InterfaceDecl:
			collectInterface(ctx, bag, decl)
		case *ast.EnumDecl:
			collectEnum(ctx, bag, decl)
		case *ast.FuncdefDecl:
			collectFuncdef(ctx, bag, decl)
		case *ast.FuncDecl:
			fn := buildFunctionDef(ctx, bag, "", 0, false, decl)
			ctx.RegisterFunction(fn)
			out.Functions = append(out.Functions, PendingFunction{ID: fn.Hash, Decl: decl})
		case *ast.GlobalVarDecl:
			collectGlobal(ctx, bag, decl, out)
		case *ast.MixinDecl:
			// Mixins are neither registered nor spliced: the
			// grammar (spec §3/§4.D) names the declaration form but not an
			// inclusion syntax, so there is nothing to splice them into.
			_ = decl
		}
	}
}

func collectInterface(ctx *compiler.Context, bag *diag.Bag, decl *ast.InterfaceDecl) {
	qualified := ctx.QualifiedName(decl.Name)
	id := types.HashTypeName(qualified)

	var bases []types.TypeId
	for _, b := range decl.Bases {
		baseID, err := ctx.ResolveType(baseRefName(b))
		if err != nil {
			bag.Add(diag.UnknownType, decl.Span, "unknown base interface %q", baseRefName(b))
			continue
		}
		bases = append(bases, baseID)
	}

	var methodIDs []types.FunctionId
	for _, m := range decl.Methods {
		fn := buildFunctionDef(ctx, bag, qualified, id, true, m)
		fn.IsNative = true
		ctx.RegisterFunction(fn)
		methodIDs = append(methodIDs, fn.Hash)
	}

	ctx.RegisterType(&types.InterfaceDef{Qualified: qualified, Id: id, Methods: methodIDs, Bases: bases})
}

func collectEnum(ctx *compiler.Context, bag *diag.Bag, decl *ast.EnumDecl) {
	qualified := ctx.QualifiedName(decl.Name)
	id := types.HashTypeName(qualified)
	values := make(map[string]int64, len(decl.Values))
	order := make([]string, 0, len(decl.Values))

	next := int64(0)
	for _, v := range decl.Values {
		val := next
		if v.Value != nil {
			if lit, ok := v.Value.(*ast.Literal); ok && lit.Kind == ast.LitInt {
				val = lit.IntVal
			} else {
				bag.Add(diag.NotImplemented, decl.Span, "enum value %q must be a literal integer", v.Name)
			}
		}
		values[v.Name] = val
		order = append(order, v.Name)
		next = val + 1
	}

	ctx.RegisterType(&types.EnumDef{Qualified: qualified, Id: id, Values: values, Order: order})
}

func collectFuncdef(ctx *compiler.Context, bag *diag.Bag, decl *ast.FuncdefDecl) {
	qualified := ctx.QualifiedName(decl.Name)
	id := types.HashTypeName(qualified)
	params := buildParams(ctx, bag, decl.Params)
	dtParams := make([]types.DataType, len(params))
	for i, p := range params {
		dtParams[i] = p.Type
	}
	var ret types.DataType
	if decl.ReturnType != nil {
		ret, _ = ResolveTypeExpr(ctx, bag, decl.ReturnType)
	}
	ctx.RegisterType(&types.FuncdefDef{Qualified: qualified, Id: id, Params: dtParams, ReturnType: ret})
}

func baseRefName(b ast.BaseRef) string {
	if len(b.Scope) == 0 {
		return b.Name
	}
	s := ""
	for _, seg := range b.Scope {
		s += seg.Name + "::"
	}
	return s + b.Name
}

func collectClass(ctx *compiler.Context, bag *diag.Bag, decl *ast.ClassDecl, out *CollectResult) {
	qualified := ctx.QualifiedName(decl.Name)
	id := types.HashTypeName(qualified)

	cd := &types.ClassDef{
		Qualified:  qualified,
		Id:         id,
		Methods:    make(map[string][]types.FunctionId),
		Operators:  make(map[types.OperatorBehavior][]types.FunctionId),
		Properties: make(map[string]types.PropertyDef),
		IsFinal:    decl.Mods.Final,
		IsAbstract: decl.Mods.Abstract,
		Kind:       types.ScriptObjectType,
	}
	for _, tp := range decl.TemplateParams {
		cd.TemplateParams = append(cd.TemplateParams, tp.Name)
	}

	if decl.Base != nil {
		baseID, err := ctx.ResolveType(baseRefName(*decl.Base))
		if err != nil {
			bag.Add(diag.UnknownType, decl.Span, "unknown base class %q", baseRefName(*decl.Base))
		} else {
			cd.Base = baseID
			cd.HasBase = true
		}
	}
	for _, iface := range decl.Interfaces {
		ifaceID, err := ctx.ResolveType(baseRefName(iface))
		if err != nil {
			bag.Add(diag.UnknownType, decl.Span, "unknown interface %q", baseRefName(iface))
			continue
		}
		cd.Interfaces = append(cd.Interfaces, ifaceID)
	}

	ctx.EnterClass(id)
	for _, m := range decl.Members {
		switch member := m.(type) {
		case *ast.FieldDecl:
			dt, _ := ResolveTypeExpr(ctx, bag, member.Type)
			cd.Fields = append(cd.Fields, types.FieldDef{
				Name: member.Name, Type: dt, Vis: translateVis(member.Vis), IsConst: dt.IsConst,
			})
		case *ast.FuncDecl:
			fn := buildFunctionDef(ctx, bag, qualified, id, true, member)
			ctx.RegisterFunction(fn)
			key := methodRegistryKey(decl.Name, member.Name)
			cd.Methods[key] = append(cd.Methods[key], fn.Hash)
			if op, ok := types.ClassifyOperatorMethod(member.Name); ok {
				cd.Operators[op] = append(cd.Operators[op], fn.Hash)
			}
			if member.Body != nil {
				out.Functions = append(out.Functions, PendingFunction{ID: fn.Hash, Decl: member, ClassType: id, HasClass: true})
			}
			if member.Body == nil && !decl.Mods.Abstract {
				bag.Add(diag.ConflictingModifiers, member.Span,
					"method %q has no body but class %q is not declared abstract", member.Name, decl.Name)
			}
		case *ast.PropertyDecl:
			dt, _ := ResolveTypeExpr(ctx, bag, member.Type)
			prop := types.PropertyDef{Name: member.Name, Vis: translateVis(member.Vis)}
			if member.Getter != nil {
				fn := buildFunctionDef(ctx, bag, qualified, id, true, member.Getter)
				fn.ReturnType = dt
				ctx.RegisterFunction(fn)
				prop.Getter, prop.HasGet = fn.Hash, true
				out.Functions = append(out.Functions, PendingFunction{ID: fn.Hash, Decl: member.Getter, ClassType: id, HasClass: true})
			}
			if member.Setter != nil {
				fn := buildFunctionDef(ctx, bag, qualified, id, true, member.Setter)
				ctx.RegisterFunction(fn)
				prop.Setter, prop.HasSet = fn.Hash, true
				out.Functions = append(out.Functions, PendingFunction{ID: fn.Hash, Decl: member.Setter, ClassType: id, HasClass: true})
			}
			cd.Properties[member.Name] = prop
		}
	}
	ctx.ExitClass()

	ctx.RegisterType(cd)

	for _, m := range decl.Members {
		if field, ok := m.(*ast.FieldDecl); ok && field.Init != nil {
			// Field initializers are deferred to pass 2 (spec §4.G); there is
			// no dedicated slot for them in PendingGlobal's shape, so they are
			// recorded as globals scoped under "ClassName::fieldName" and
			// checked the same way a module-level global initializer is --
			// the checker only needs the expression to validate, not a
			// runtime storage location (that's the VM's concern).
			dt, _ := ResolveTypeExpr(ctx, bag, field.Type)
			out.Globals = append(out.Globals, PendingGlobal{
				Name: qualified + "::" + field.Name, Type: dt, Init: field.Init, Span: field.Span,
			})
		}
	}
}

func collectGlobal(ctx *compiler.Context, bag *diag.Bag, decl *ast.GlobalVarDecl, out *CollectResult) {
	for _, d := range decl.Declarators {
		dt, _ := ResolveTypeExpr(ctx, bag, decl.Type)
		ctx.Script.RegisterGlobal(ctx.QualifiedName(d.Name), dt)
		out.Globals = append(out.Globals, PendingGlobal{
			Name: ctx.QualifiedName(d.Name), Type: dt, Init: d.Init, Span: decl.Span,
		})
	}
}
