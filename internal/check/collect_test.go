package check

import (
	"testing"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/parser"
	"github.com/emberscript/emberc/internal/types"
)

func parseProgram(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	arena := ast.NewArena()
	bag := &diag.Bag{}
	p := parser.New(arena, bag, 0, "test.ember", src)
	file := p.ParseFile("test.ember")
	if bag.HasErrors() {
		for _, d := range bag.All() {
			t.Errorf("parse diagnostic: %s", d.Error())
		}
		t.FailNow()
	}
	return &ast.Program{Files: []*ast.File{file}}, bag
}

func TestCollectSimpleFunction(t *testing.T) {
	prog, bag := parseProgram(t, `int add(int a, int b) { return a + b; }`)
	ctx := compiler.New(nil)
	bag2 := &diag.Bag{}
	result := Collect(ctx, bag2, prog)
	checkNoErrors(t, bag)
	checkNoErrors(t, bag2)

	if len(result.Functions) != 1 {
		t.Fatalf("got %d pending functions, want 1", len(result.Functions))
	}
	fn, ok := ctx.GetFunction(result.Functions[0].ID)
	if !ok {
		t.Fatalf("function not registered")
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v, want name=add with 2 params", fn)
	}
}

func TestCollectClassWithBaseAndOverride(t *testing.T) {
	prog, bag := parseProgram(t, `
		class Animal {
			int legs;
			int speak() { return 0; }
		}
		class Dog : Animal {
			override int speak() { return 1; }
		}
	`)
	ctx := compiler.New(nil)
	bag2 := &diag.Bag{}
	Collect(ctx, bag2, prog)
	checkNoErrors(t, bag)
	checkNoErrors(t, bag2)

	dogID, err := ctx.ResolveType("Dog")
	if err != nil {
		t.Fatalf("Dog not registered: %v", err)
	}
	td, ok := ctx.GetType(dogID)
	if !ok {
		t.Fatalf("Dog type missing")
	}
	cd := td.(*types.ClassDef)
	if !cd.HasBase {
		t.Fatalf("Dog should have a base class")
	}
}

func TestCollectFinalBaseRejected(t *testing.T) {
	prog, bag := parseProgram(t, `
		final class Sealed {
		}
		class Breaks : Sealed {
		}
	`)
	ctx := compiler.New(nil)
	bag2 := &diag.Bag{}
	Collect(ctx, bag2, prog)
	checkNoErrors(t, bag)

	if !bag2.HasErrors() {
		t.Fatalf("expected an error extending a final class")
	}
}

func TestCollectOverrideWithNoBaseMethodRejected(t *testing.T) {
	prog, bag := parseProgram(t, `
		class Base {
		}
		class Derived : Base {
			override int compute() { return 1; }
		}
	`)
	ctx := compiler.New(nil)
	bag2 := &diag.Bag{}
	Collect(ctx, bag2, prog)
	checkNoErrors(t, bag)

	if !bag2.HasErrors() {
		t.Fatalf("expected an error for override with no matching base method")
	}
}

func TestCollectGlobalVariable(t *testing.T) {
	prog, bag := parseProgram(t, `int counter = 0;`)
	ctx := compiler.New(nil)
	bag2 := &diag.Bag{}
	result := Collect(ctx, bag2, prog)
	checkNoErrors(t, bag)
	checkNoErrors(t, bag2)

	if len(result.Globals) != 1 {
		t.Fatalf("got %d globals, want 1", len(result.Globals))
	}
	if result.Globals[0].Init == nil {
		t.Fatalf("expected an initializer expression")
	}
}

func checkNoErrors(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.HasErrors() {
		for _, d := range bag.All() {
			t.Errorf("diagnostic: %s", d.Error())
		}
		t.FailNow()
	}
}
