package check

import (
	"testing"

	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/types"
)

// compileWithFFI is compileNamedFunction with a caller-supplied FFI
// registry, returning the context so tests can inspect registered ids and
// lambda chunks.
func compileWithFFI(t *testing.T, ffi compiler.FFIRegistry, src, want string) (*bytecode.BytecodeChunk, *diag.Bag, *compiler.Context) {
	t.Helper()
	prog, _ := parseProgram(t, src)
	ctx := compiler.New(ffi)
	bag := &diag.Bag{}
	result := Collect(ctx, bag, prog)
	if bag.HasErrors() {
		for _, d := range bag.All() {
			t.Errorf("collect diagnostic: %s", d.Error())
		}
		t.FailNow()
	}
	for _, pf := range result.Functions {
		fn, ok := ctx.GetFunction(pf.ID)
		if !ok || fn.Name != want {
			continue
		}
		return CompileFunction(ctx, bag, fn, pf), bag, ctx
	}
	t.Fatalf("no collected function named %q", want)
	return nil, nil, nil
}

// listFFI exposes one host-registered class carrying a list-construction
// behavior, the minimal registry shape an FFI-supplied container type has.
type listFFI struct {
	compiler.EmptyFFIRegistry
	class *types.ClassDef
}

func (f listFFI) TypeByName() map[string]types.TypeId {
	return map[string]types.TypeId{f.class.Qualified: f.class.Id}
}

func (f listFFI) GetType(id types.TypeId) (types.TypeDef, bool) {
	if id == f.class.Id {
		return f.class, true
	}
	return nil, false
}

func (f listFFI) GetBehaviors(id types.TypeId) types.Behaviors {
	if id == f.class.Id {
		return f.class.Behaviors
	}
	return types.Behaviors{}
}

func TestInitListConstructsThroughListBehavior(t *testing.T) {
	listCtor := types.HashFunctionName("intlist::construct", nil)
	cls := &types.ClassDef{
		Qualified: "intlist",
		Id:        types.HashTypeName("intlist"),
		Kind:      types.ValueType,
		Behaviors: types.Behaviors{ListConstruct: listCtor, HasListConstruct: true},
	}

	chunk, bag, _ := compileWithFFI(t, listFFI{class: cls}, `
		void main() {
			intlist xs = {1, 2, 3};
		}
	`, "main")
	checkNoErrors(t, bag)

	found := false
	for _, inst := range chunk.Code {
		if inst.Op == bytecode.CallConstructor {
			found = true
			if inst.A != int64(cls.Id) || inst.B != int64(listCtor) {
				t.Errorf("CallConstructor operands = %d, %d; want %d, %d", inst.A, inst.B, cls.Id, listCtor)
			}
		}
	}
	if !found {
		t.Fatalf("no CallConstructor emitted for the initializer list: %v", opSequence(chunk))
	}
}

func TestInitListPrefersListFactoryForReferenceTypes(t *testing.T) {
	factory := types.HashFunctionName("intlist::factory", nil)
	cls := &types.ClassDef{
		Qualified: "intlist",
		Id:        types.HashTypeName("intlist"),
		Kind:      types.ReferenceType,
		Behaviors: types.Behaviors{ListFactory: factory, HasListFactory: true},
	}

	chunk, bag, _ := compileWithFFI(t, listFFI{class: cls}, `
		void main() {
			intlist xs = {7};
		}
	`, "main")
	checkNoErrors(t, bag)

	for _, inst := range chunk.Code {
		if inst.Op == bytecode.CallFactory {
			if inst.B != int64(factory) {
				t.Errorf("CallFactory behavior id = %d, want %d", inst.B, factory)
			}
			return
		}
	}
	t.Fatalf("no CallFactory emitted: %v", opSequence(chunk))
}

func TestInitListWithoutListBehaviorIsRejected(t *testing.T) {
	_, bag, _ := compileWithFFI(t, nil, `
		class P {}
		void f() {
			P p = {1};
		}
	`, "f")

	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for an initializer list with no list behavior")
	}
	if bag.All()[0].Kind != diag.MissingListBehavior {
		t.Errorf("diagnostic kind = %v, want MissingListBehavior", bag.All()[0].Kind)
	}
}

func TestFunctionHandleInitializerEmitsFuncPtr(t *testing.T) {
	chunk, bag, ctx := compileWithFFI(t, nil, `
		funcdef int BinOp(int, int);
		int add(int a, int b) { return a + b; }
		void main() {
			BinOp@ f = @add;
		}
	`, "main")
	checkNoErrors(t, bag)

	addIDs := ctx.LookupFunctions("add")
	if len(addIDs) != 1 {
		t.Fatalf("got %d functions named add, want 1", len(addIDs))
	}
	for _, inst := range chunk.Code {
		if inst.Op == bytecode.FuncPtr {
			if inst.A != int64(addIDs[0]) {
				t.Errorf("FuncPtr operand = %d, want add's id %d", inst.A, addIDs[0])
			}
			return
		}
	}
	t.Fatalf("no FuncPtr emitted: %v", opSequence(chunk))
}

func TestFunctionHandleWithoutExpectedTypeIsRejected(t *testing.T) {
	_, bag, _ := compileWithFFI(t, nil, `
		int add(int a, int b) { return a + b; }
		void main() {
			auto f = @add;
		}
	`, "main")

	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for @add with no funcdef context")
	}
	if bag.All()[0].Kind != diag.TypeMismatch {
		t.Errorf("diagnostic kind = %v, want TypeMismatch", bag.All()[0].Kind)
	}
}

func TestLambdaBindsToFuncdefTypedVariable(t *testing.T) {
	chunk, bag, ctx := compileWithFFI(t, nil, `
		funcdef int BinOp(int, int);
		void main() {
			BinOp@ f = function(int x, int y) { return x + y; };
		}
	`, "main")
	checkNoErrors(t, bag)

	found := false
	for _, inst := range chunk.Code {
		if inst.Op == bytecode.FuncPtr {
			found = true
		}
	}
	if !found {
		t.Fatalf("no FuncPtr emitted for the lambda: %v", opSequence(chunk))
	}

	lambdas := ctx.TakeLambdaChunks()
	if len(lambdas) != 1 {
		t.Fatalf("got %d lambda chunks, want 1", len(lambdas))
	}
	body := opSequence(lambdas[0])
	want := []bytecode.OpCode{bytecode.LoadLocal, bytecode.LoadLocal, bytecode.Add, bytecode.Return}
	for i, op := range want {
		if i >= len(body) || body[i] != op {
			t.Fatalf("lambda body = %v, want prefix %v", body, want)
		}
	}
}

func TestLambdaArgumentNarrowsOverloadAndCompiles(t *testing.T) {
	chunk, bag, _ := compileWithFFI(t, nil, `
		funcdef int BinOp(int, int);
		int apply(BinOp@ op, int a, int b) { return a; }
		void main() {
			int r = apply(function(int x, int y) { return x + y; }, 3, 4);
		}
	`, "main")
	checkNoErrors(t, bag)

	var haveFuncPtr, haveCall bool
	for _, inst := range chunk.Code {
		switch inst.Op {
		case bytecode.FuncPtr:
			haveFuncPtr = true
		case bytecode.Call:
			haveCall = true
		}
	}
	if !haveFuncPtr || !haveCall {
		t.Fatalf("call with lambda argument missing FuncPtr/Call: %v", opSequence(chunk))
	}
}

// templateFFI exposes one host-registered uninstantiated template, the way
// an FFI registry exposes its container types before pre-instantiation.
type templateFFI struct {
	compiler.EmptyFFIRegistry
	tmpl *types.TemplateDef
}

func (f templateFFI) TypeByName() map[string]types.TypeId {
	return map[string]types.TypeId{f.tmpl.Qualified: f.tmpl.Id}
}

func (f templateFFI) GetType(id types.TypeId) (types.TypeDef, bool) {
	if id == f.tmpl.Id {
		return f.tmpl, true
	}
	return nil, false
}

func (f templateFFI) IsTemplate(id types.TypeId) bool { return id == f.tmpl.Id }

func TestNestedTemplateInstantiationResolvesInnerFirst(t *testing.T) {
	tmpl := &types.TemplateDef{Qualified: "array", Id: types.HashTypeName("array"), Params: []string{"T"}}

	_, bag, ctx := compileWithFFI(t, templateFFI{tmpl: tmpl}, `
		void f(array<array<int8>>@ xs) {}
	`, "f")
	checkNoErrors(t, bag)

	innerID, ok := ctx.LookupType("array<int8>")
	if !ok {
		t.Fatal("inner instantiation array<int8> was not registered")
	}
	outerID, ok := ctx.LookupType("array<array<int8>>")
	if !ok {
		t.Fatal("outer instantiation array<array<int8>> was not registered")
	}

	td, ok := ctx.GetType(outerID)
	if !ok {
		t.Fatal("outer instantiation has no TypeDef")
	}
	cd, ok := td.(*types.ClassDef)
	if !ok {
		t.Fatalf("outer instantiation is %T, want *types.ClassDef", td)
	}
	if !cd.HasOrigin || cd.TemplateOrigin != tmpl.Id {
		t.Errorf("outer instantiation origin = %d (has=%v), want template %d", cd.TemplateOrigin, cd.HasOrigin, tmpl.Id)
	}
	if len(cd.TypeArgs) != 1 || cd.TypeArgs[0] != innerID {
		t.Errorf("outer TypeArgs = %v, want [%d]", cd.TypeArgs, innerID)
	}
}

func TestTemplateArityMismatchIsRejected(t *testing.T) {
	tmpl := &types.TemplateDef{Qualified: "array", Id: types.HashTypeName("array"), Params: []string{"T"}}

	prog, _ := parseProgram(t, `void f(array<int8, int8>@ xs) {}`)
	ctx := compiler.New(templateFFI{tmpl: tmpl})
	bag := &diag.Bag{}
	Collect(ctx, bag, prog)

	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for wrong template arity")
	}
	if bag.All()[0].Kind != diag.TypeMismatch {
		t.Errorf("diagnostic kind = %v, want TypeMismatch", bag.All()[0].Kind)
	}
}
