// Package compiler implements the compilation context (spec §4.E): the
// unified symbol table federating an immutable host-supplied FFI registry
// with a mutable script-level registry, under namespace and import rules.
package compiler

import "github.com/emberscript/emberc/internal/types"

// FFIRegistry is the read-only interface the core consumes from the host's
// already-built foreign-function-interface registry (spec §6). The core
// never constructs one; it is handed an implementation when New builds a
// Context and only ever reads from it.
type FFIRegistry interface {
	TypeByName() map[string]types.TypeId
	FuncByName() map[string][]types.FunctionId
	GetType(id types.TypeId) (types.TypeDef, bool)
	GetFunction(id types.FunctionId) (*types.FunctionDef, bool)

	FindConstructors(t types.TypeId) []types.FunctionId
	FindFactories(t types.TypeId) []types.FunctionId
	FindMethodsByName(t types.TypeId, name string) []types.FunctionId
	FindOperatorMethods(t types.TypeId, op types.OperatorBehavior) []types.FunctionId
	FindProperty(t types.TypeId, name string) (types.PropertyDef, bool)
	GetBaseClass(t types.TypeId) (types.TypeId, bool)
	GetAllInterfaces(t types.TypeId) []types.TypeId
	LookupEnumValue(t types.TypeId, value string) (int64, bool)
	GetFuncdefSignature(t types.TypeId) ([]types.DataType, types.DataType, bool)
	IsTemplate(t types.TypeId) bool
	GetBehaviors(t types.TypeId) types.Behaviors
}

// EmptyFFIRegistry is a zero-value FFIRegistry for compiling scripts with no
// host bindings (unit tests, the `emberc check` CLI without `--ffi`).
type EmptyFFIRegistry struct{}

func (EmptyFFIRegistry) TypeByName() map[string]types.TypeId             { return nil }
func (EmptyFFIRegistry) FuncByName() map[string][]types.FunctionId       { return nil }
func (EmptyFFIRegistry) GetType(types.TypeId) (types.TypeDef, bool)      { return nil, false }
func (EmptyFFIRegistry) GetFunction(types.FunctionId) (*types.FunctionDef, bool) {
	return nil, false
}
func (EmptyFFIRegistry) FindConstructors(types.TypeId) []types.FunctionId  { return nil }
func (EmptyFFIRegistry) FindFactories(types.TypeId) []types.FunctionId     { return nil }
func (EmptyFFIRegistry) FindMethodsByName(types.TypeId, string) []types.FunctionId {
	return nil
}
func (EmptyFFIRegistry) FindOperatorMethods(types.TypeId, types.OperatorBehavior) []types.FunctionId {
	return nil
}
func (EmptyFFIRegistry) FindProperty(types.TypeId, string) (types.PropertyDef, bool) {
	return types.PropertyDef{}, false
}
func (EmptyFFIRegistry) GetBaseClass(types.TypeId) (types.TypeId, bool) { return 0, false }
func (EmptyFFIRegistry) GetAllInterfaces(types.TypeId) []types.TypeId  { return nil }
func (EmptyFFIRegistry) LookupEnumValue(types.TypeId, string) (int64, bool) {
	return 0, false
}
func (EmptyFFIRegistry) GetFuncdefSignature(types.TypeId) ([]types.DataType, types.DataType, bool) {
	return nil, types.DataType{}, false
}
func (EmptyFFIRegistry) IsTemplate(types.TypeId) bool { return false }
func (EmptyFFIRegistry) GetBehaviors(types.TypeId) types.Behaviors {
	return types.Behaviors{}
}
