package compiler

import "github.com/emberscript/emberc/internal/types"

// ScriptRegistry is the mutable, script-level half of the federated symbol
// table (spec §4.E). It is populated during pass 1 (collect), gains a
// template instantiation whenever a type expression first names one, and
// lives for the module's
// lifetime once compilation hands it off to the VM module loader (spec §5).
type ScriptRegistry struct {
	types     map[types.TypeId]types.TypeDef
	functions map[types.FunctionId]*types.FunctionDef

	typeByName map[string]types.TypeId
	funcByName map[string][]types.FunctionId

	// aliases maps an extra qualified name (a typedef's name) onto an
	// already-registered TypeId.
	aliases map[string]types.TypeId

	globals   map[string]types.DataType
	enumOwner map[string]types.TypeId // unqualified enum value name -> its enum's TypeId, for bare-name lookup
}

// NewScriptRegistry creates an empty, ready-to-populate registry.
func NewScriptRegistry() *ScriptRegistry {
	return &ScriptRegistry{
		types:      make(map[types.TypeId]types.TypeDef),
		functions:  make(map[types.FunctionId]*types.FunctionDef),
		typeByName: make(map[string]types.TypeId),
		funcByName: make(map[string][]types.FunctionId),
		aliases:    make(map[string]types.TypeId),
		globals:    make(map[string]types.DataType),
		enumOwner:  make(map[string]types.TypeId),
	}
}

// RegisterType inserts td into the script registry and the unified name map
// under its own qualified name.
func (r *ScriptRegistry) RegisterType(td types.TypeDef) {
	r.types[td.ID()] = td
	r.typeByName[td.TypeName()] = td.ID()

	if enum, ok := td.(*types.EnumDef); ok {
		for name := range enum.Values {
			r.enumOwner[name] = enum.Id
		}
	}
}

// RegisterTypeAlias adds an extra name -> TypeId entry, used for typedef
// declarations (spec §4.E: "register_type_with_alias or register_type_alias").
func (r *ScriptRegistry) RegisterTypeAlias(alias string, id types.TypeId) {
	r.aliases[alias] = id
	r.typeByName[alias] = id
}

// RegisterFunction inserts fn under its FunctionId and appends it to the
// name-based overload list.
func (r *ScriptRegistry) RegisterFunction(fn *types.FunctionDef) {
	r.functions[fn.Hash] = fn
	r.funcByName[fn.Name] = append(r.funcByName[fn.Name], fn.Hash)
}

// RegisterGlobal records a global variable's declared type.
func (r *ScriptRegistry) RegisterGlobal(name string, dt types.DataType) {
	r.globals[name] = dt
}

func (r *ScriptRegistry) GetType(id types.TypeId) (types.TypeDef, bool) {
	td, ok := r.types[id]
	return td, ok
}

func (r *ScriptRegistry) GetFunction(id types.FunctionId) (*types.FunctionDef, bool) {
	fn, ok := r.functions[id]
	return fn, ok
}

func (r *ScriptRegistry) LookupTypeByName(name string) (types.TypeId, bool) {
	id, ok := r.typeByName[name]
	return id, ok
}

func (r *ScriptRegistry) LookupFunctionsByName(name string) []types.FunctionId {
	return r.funcByName[name]
}

func (r *ScriptRegistry) LookupGlobal(name string) (types.DataType, bool) {
	dt, ok := r.globals[name]
	return dt, ok
}

func (r *ScriptRegistry) LookupEnumOwner(valueName string) (types.TypeId, bool) {
	id, ok := r.enumOwner[valueName]
	return id, ok
}

// classOf narrows a TypeDef lookup to *types.ClassDef, used by the many
// federated class-only queries in context.go.
func (r *ScriptRegistry) classOf(id types.TypeId) (*types.ClassDef, bool) {
	td, ok := r.types[id]
	if !ok {
		return nil, false
	}
	cd, ok := td.(*types.ClassDef)
	return cd, ok
}

func (r *ScriptRegistry) FindMethodsByName(t types.TypeId, name string) []types.FunctionId {
	cd, ok := r.classOf(t)
	if !ok {
		return nil
	}
	return cd.Methods[name]
}

func (r *ScriptRegistry) FindOperatorMethods(t types.TypeId, op types.OperatorBehavior) []types.FunctionId {
	cd, ok := r.classOf(t)
	if !ok {
		return nil
	}
	return cd.Operators[op]
}

func (r *ScriptRegistry) FindProperty(t types.TypeId, name string) (types.PropertyDef, bool) {
	cd, ok := r.classOf(t)
	if !ok {
		return types.PropertyDef{}, false
	}
	p, ok := cd.Properties[name]
	return p, ok
}

func (r *ScriptRegistry) GetBaseClass(t types.TypeId) (types.TypeId, bool) {
	cd, ok := r.classOf(t)
	if !ok || !cd.HasBase {
		return 0, false
	}
	return cd.Base, true
}

func (r *ScriptRegistry) GetInterfaces(t types.TypeId) []types.TypeId {
	cd, ok := r.classOf(t)
	if !ok {
		return nil
	}
	return cd.Interfaces
}

func (r *ScriptRegistry) LookupEnumValue(t types.TypeId, value string) (int64, bool) {
	td, ok := r.types[t]
	if !ok {
		return 0, false
	}
	ed, ok := td.(*types.EnumDef)
	if !ok {
		return 0, false
	}
	v, ok := ed.Values[value]
	return v, ok
}

func (r *ScriptRegistry) GetFuncdefSignature(t types.TypeId) ([]types.DataType, types.DataType, bool) {
	td, ok := r.types[t]
	if !ok {
		return nil, types.DataType{}, false
	}
	fd, ok := td.(*types.FuncdefDef)
	if !ok {
		return nil, types.DataType{}, false
	}
	return fd.Params, fd.ReturnType, true
}

// FindConstructors returns the "constructor" overload set: methods named
// "construct" on a value/script-object type (spec §3 TypeKind).
func (r *ScriptRegistry) FindConstructors(t types.TypeId) []types.FunctionId {
	return r.FindMethodsByName(t, "construct")
}

// FindFactories returns the "factory" overload set for a reference type.
func (r *ScriptRegistry) FindFactories(t types.TypeId) []types.FunctionId {
	return r.FindMethodsByName(t, "create")
}

// AllClasses returns every registered ClassDef, used by the validation pass
// that runs once pass 1 has finished registering the whole script (spec
// §4.G point 5: cycle detection, final/override conformance).
func (r *ScriptRegistry) AllClasses() []*types.ClassDef {
	var out []*types.ClassDef
	for _, td := range r.types {
		if cd, ok := td.(*types.ClassDef); ok {
			out = append(out, cd)
		}
	}
	return out
}
