package parser

import (
	"testing"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/diag"
)

// testParser builds a Parser over src with a fresh arena and diag.Bag, both
// returned so tests can inspect either after parsing.
func testParser(src string) (*Parser, *ast.Arena, *diag.Bag) {
	arena := ast.NewArena()
	bag := &diag.Bag{}
	p := New(arena, bag, 0, "test.ember", src)
	return p, arena, bag
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

func TestParseSimpleFunction(t *testing.T) {
	// Spec scenario S1.
	p, _, bag := testParser(`int add(int a, int b) { return a + b; }`)
	file := p.ParseFile("s1.ember")
	checkNoErrors(t, bag)

	if len(file.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(file.Decls))
	}
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FuncDecl", file.Decls[0])
	}
	if fn.Name != "add" {
		t.Errorf("fn.Name = %q, want %q", fn.Name, "add")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("params = %q, %q, want a, b", fn.Params[0].Name, fn.Params[1].Name)
	}
	if fn.Body == nil || len(fn.Body.Stmts) != 1 {
		t.Fatalf("body = %v, want one statement", fn.Body)
	}
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.ReturnStmt", fn.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("return value is %T, want *ast.BinaryExpr", ret.Value)
	}
	if bin.Operator != "+" {
		t.Errorf("bin.Operator = %q, want %q", bin.Operator, "+")
	}
}

func TestParseNestedTemplateClose(t *testing.T) {
	// Spec scenario S3 + testable property 3, a handful of nesting depths.
	tests := []struct {
		depth int
		input string
	}{
		{1, "array<int> m;"},
		{2, "array<array<int>> m;"},
		{3, "array<array<array<int>>> m;"},
		{4, "array<array<array<array<int>>>> m;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, _, bag := testParser(tt.input)
			file := p.ParseFile("s3.ember")
			checkNoErrors(t, bag)

			if len(file.Decls) != 1 {
				t.Fatalf("got %d decls, want 1", len(file.Decls))
			}
			g, ok := file.Decls[0].(*ast.GlobalVarDecl)
			if !ok {
				t.Fatalf("decl is %T, want *ast.GlobalVarDecl", file.Decls[0])
			}

			typ := g.Type
			for depth := tt.depth; depth > 0; depth-- {
				named, ok := typ.(*ast.Type)
				if !ok {
					t.Fatalf("type is %T, want *ast.Type at depth %d", typ, depth)
				}
				if named.Name != "array" {
					t.Fatalf("type name = %q, want %q at depth %d", named.Name, "array", depth)
				}
				if len(named.TypeArgs) != 1 {
					t.Fatalf("got %d type args, want 1 at depth %d", len(named.TypeArgs), depth)
				}
				typ = named.TypeArgs[0]
			}
			inner, ok := typ.(*ast.Type)
			if !ok || inner.Name != "int" {
				t.Fatalf("innermost type = %#v, want primitive int", typ)
			}
		})
	}
}

func TestParseOverloadedFunctions(t *testing.T) {
	// Spec scenario S2: two declarations with the same name, distinguished
	// only by parameter type; the parser just needs to accept both as
	// independent FuncDecls (overload resolution is the checker's job).
	p, _, bag := testParser(`
		void print(int x) {}
		void print(double x) {}
		void main() { print(3.14); print(7); }
	`)
	file := p.ParseFile("s2.ember")
	checkNoErrors(t, bag)

	if len(file.Decls) != 3 {
		t.Fatalf("got %d decls, want 3", len(file.Decls))
	}
	for i, want := range []string{"print", "print", "main"} {
		fn, ok := file.Decls[i].(*ast.FuncDecl)
		if !ok || fn.Name != want {
			t.Errorf("decl[%d] = %#v, want FuncDecl named %q", i, file.Decls[i], want)
		}
	}
}

func TestParseTernaryIsRightAssociative(t *testing.T) {
	p, _, bag := testParser(`void f() { x = a ? b : c ? d : e; }`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	fn := file.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	assign := stmt.X.(*ast.AssignExpr)
	outer, ok := assign.RHS.(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("rhs is %T, want *ast.TernaryExpr", assign.RHS)
	}
	if _, ok := outer.Else.(*ast.TernaryExpr); !ok {
		t.Fatalf("outer.Else is %T, want nested *ast.TernaryExpr (right-associative)", outer.Else)
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	p, _, bag := testParser(`void f() { a = b = c; }`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	fn := file.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	outer := stmt.X.(*ast.AssignExpr)
	if _, ok := outer.RHS.(*ast.AssignExpr); !ok {
		t.Fatalf("outer.RHS is %T, want nested *ast.AssignExpr", outer.RHS)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	p, _, bag := testParser(`void f() { x = 2 ** 3 ** 2; }`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	fn := file.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	assign := stmt.X.(*ast.AssignExpr)
	outer := assign.RHS.(*ast.BinaryExpr)
	if outer.Operator != "**" {
		t.Fatalf("outer.Operator = %q, want **", outer.Operator)
	}
	if _, ok := outer.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("outer.Right is %T, want nested *ast.BinaryExpr (right-associative **)", outer.Right)
	}
	if _, ok := outer.Left.(*ast.Literal); !ok {
		t.Fatalf("outer.Left is %T, want *ast.Literal (left-associative grouping would nest here instead)", outer.Left)
	}
}

func TestParseTemplateCallVsComparison(t *testing.T) {
	// "a<b>(c)" is a template-instantiated call when a "(" follows the close;
	// "a<b>c" with no following "(" is two comparisons chained.
	t.Run("template call", func(t *testing.T) {
		p, _, bag := testParser(`void f() { make<int>(1); }`)
		file := p.ParseFile("t.ember")
		checkNoErrors(t, bag)
		fn := file.Decls[0].(*ast.FuncDecl)
		stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
		call, ok := stmt.X.(*ast.CallExpr)
		if !ok {
			t.Fatalf("expr is %T, want *ast.CallExpr", stmt.X)
		}
		callee, ok := call.Callee.(*ast.Ident)
		if !ok || len(callee.TypeArgs) != 1 {
			t.Fatalf("callee = %#v, want Ident with 1 type arg", call.Callee)
		}
	})

	t.Run("chained comparison", func(t *testing.T) {
		p, _, bag := testParser(`void f() { r = a < b > c; }`)
		file := p.ParseFile("t.ember")
		checkNoErrors(t, bag)
		fn := file.Decls[0].(*ast.FuncDecl)
		stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
		assign := stmt.X.(*ast.AssignExpr)
		outer, ok := assign.RHS.(*ast.BinaryExpr)
		if !ok || outer.Operator != ">" {
			t.Fatalf("rhs = %#v, want top-level '>' comparison", assign.RHS)
		}
		if _, ok := outer.Left.(*ast.BinaryExpr); !ok {
			t.Fatalf("outer.Left is %T, want nested '<' comparison", outer.Left)
		}
	})
}

func TestParseBreakOutsideLoopIsError(t *testing.T) {
	p, _, bag := testParser(`void f() { break; }`)
	p.ParseFile("t.ember")
	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for break outside a loop")
	}
}

func TestParseBreakInsideLoopIsFine(t *testing.T) {
	p, _, bag := testParser(`void f() { while (true) { break; } }`)
	p.ParseFile("t.ember")
	checkNoErrors(t, bag)
}

func TestParseBreakInsideSwitchIsFine(t *testing.T) {
	p, _, bag := testParser(`void f() { switch (1) { case 1: break; } }`)
	p.ParseFile("t.ember")
	checkNoErrors(t, bag)
}

func TestParseClassWithConstructorAndDestructor(t *testing.T) {
	p, _, bag := testParser(`
		class Widget {
			int x;
			Widget(int startX) { x = startX; }
			~Widget() {}
			int GetX() const { return x; }
		}
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	cls, ok := file.Decls[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.ClassDecl", file.Decls[0])
	}
	if len(cls.Members) != 4 {
		t.Fatalf("got %d members, want 4", len(cls.Members))
	}
	if _, ok := cls.Members[0].(*ast.FieldDecl); !ok {
		t.Errorf("member[0] is %T, want *ast.FieldDecl", cls.Members[0])
	}
	ctor, ok := cls.Members[1].(*ast.FuncDecl)
	if !ok || ctor.Name != "Widget" {
		t.Fatalf("member[1] = %#v, want constructor FuncDecl named Widget", cls.Members[1])
	}
	dtor, ok := cls.Members[2].(*ast.FuncDecl)
	if !ok || dtor.Name != "~Widget" {
		t.Fatalf("member[2] = %#v, want destructor FuncDecl named ~Widget", cls.Members[2])
	}
	method, ok := cls.Members[3].(*ast.FuncDecl)
	if !ok || !method.Attrs.Const {
		t.Fatalf("member[3] = %#v, want const method FuncDecl", cls.Members[3])
	}
}

func TestParseClassWithPropertyAndInheritance(t *testing.T) {
	p, _, bag := testParser(`
		class Base {}
		class Derived : Base {
			int value { get { return 0; } set { } }
		}
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	derived, ok := file.Decls[1].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.ClassDecl", file.Decls[1])
	}
	if derived.Base == nil || derived.Base.Name != "Base" {
		t.Fatalf("derived.Base = %#v, want BaseRef{Name: \"Base\"}", derived.Base)
	}
	prop, ok := derived.Members[0].(*ast.PropertyDecl)
	if !ok {
		t.Fatalf("member is %T, want *ast.PropertyDecl", derived.Members[0])
	}
	if prop.Getter == nil || prop.Setter == nil {
		t.Fatalf("prop = %#v, want both getter and setter", prop)
	}
}

func TestParseInterfaceDeclaration(t *testing.T) {
	p, _, bag := testParser(`
		interface Shape {
			double Area();
		}
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	iface, ok := file.Decls[0].(*ast.InterfaceDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.InterfaceDecl", file.Decls[0])
	}
	if len(iface.Methods) != 1 || iface.Methods[0].Name != "Area" {
		t.Fatalf("methods = %#v, want one method named Area", iface.Methods)
	}
	if !iface.Methods[0].IsNative {
		t.Error("interface method should carry IsNative = true (no body)")
	}
}

func TestParseEnumWithAutoNumbering(t *testing.T) {
	p, _, bag := testParser(`
		enum Color { Red, Green = 5, Blue }
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	e, ok := file.Decls[0].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.EnumDecl", file.Decls[0])
	}
	if len(e.Values) != 3 {
		t.Fatalf("got %d values, want 3", len(e.Values))
	}
	if e.Values[0].Value != nil {
		t.Error("Red should be auto-numbered (nil Value)")
	}
	if e.Values[1].Value == nil {
		t.Error("Green should carry an explicit Value expression")
	}
	if e.Values[2].Value != nil {
		t.Error("Blue should be auto-numbered (nil Value)")
	}
}

func TestParseNamespaceAndImport(t *testing.T) {
	p, _, bag := testParser(`
		import Geometry::Shapes;
		namespace Geometry {
			class Circle {}
		}
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	imp, ok := file.Decls[0].(*ast.ImportDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.ImportDecl", file.Decls[0])
	}
	if len(imp.Namespace) != 2 || imp.Namespace[0] != "Geometry" || imp.Namespace[1] != "Shapes" {
		t.Fatalf("imp.Namespace = %v, want [Geometry Shapes]", imp.Namespace)
	}

	ns, ok := file.Decls[1].(*ast.NamespaceDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.NamespaceDecl", file.Decls[1])
	}
	if len(ns.Decls) != 1 {
		t.Fatalf("got %d nested decls, want 1", len(ns.Decls))
	}
}

func TestParseFuncdefAndLambda(t *testing.T) {
	// Spec scenario S5's declaration half; lambda binding itself is checker work.
	p, _, bag := testParser(`
		funcdef int BinOp(int, int);
		void f() { r = function(int x, int y) { return x + y; }; }
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	fd, ok := file.Decls[0].(*ast.FuncdefDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FuncdefDecl", file.Decls[0])
	}
	if fd.Name != "BinOp" || len(fd.Params) != 2 {
		t.Fatalf("fd = %#v, want BinOp with 2 params", fd)
	}

	fn := file.Decls[1].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	assign := stmt.X.(*ast.AssignExpr)
	lambda, ok := assign.RHS.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("rhs is %T, want *ast.LambdaExpr", assign.RHS)
	}
	if len(lambda.Params) != 2 {
		t.Fatalf("got %d lambda params, want 2", len(lambda.Params))
	}
}

func TestParseOperatorOverloadMethod(t *testing.T) {
	// Spec scenario S6's declaration half.
	p, _, bag := testParser(`
		class V {
			V opAdd(const V &in other) const { return this; }
		}
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	cls := file.Decls[0].(*ast.ClassDecl)
	method, ok := cls.Members[0].(*ast.FuncDecl)
	if !ok || method.Name != "opAdd" {
		t.Fatalf("member = %#v, want FuncDecl named opAdd", cls.Members[0])
	}
	if !method.Attrs.Const {
		t.Error("opAdd should be const")
	}
	if len(method.Params) != 1 {
		t.Fatalf("got %d params, want 1", len(method.Params))
	}
	paramType, ok := method.Params[0].Type.(*ast.Type)
	if !ok || !paramType.Const || paramType.ParamRef != ast.RefIn {
		t.Fatalf("param type = %#v, want const with &in ref kind", method.Params[0].Type)
	}
}

func TestParseConstAndHandleSuffixes(t *testing.T) {
	p, _, bag := testParser(`void f(const P@ p) {}`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	fn := file.Decls[0].(*ast.FuncDecl)
	typ, ok := fn.Params[0].Type.(*ast.Type)
	if !ok {
		t.Fatalf("type is %T, want *ast.Type", fn.Params[0].Type)
	}
	if !typ.Const {
		t.Error("type should be const")
	}
	if !typ.IsHandle() {
		t.Error("type should carry a handle suffix")
	}
}

func TestParseForLoopAndForeach(t *testing.T) {
	p, _, bag := testParser(`
		void f() {
			for (int i = 0; i < 10; i = i + 1) {}
			foreach (int v : arr) {}
		}
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	fn := file.Decls[0].(*ast.FuncDecl)
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[0].(*ast.ForStmt); !ok {
		t.Errorf("stmt[0] is %T, want *ast.ForStmt", fn.Body.Stmts[0])
	}
	fe, ok := fn.Body.Stmts[1].(*ast.ForeachStmt)
	if !ok {
		t.Fatalf("stmt[1] is %T, want *ast.ForeachStmt", fn.Body.Stmts[1])
	}
	if len(fe.Vars) != 1 || fe.Vars[0].Name != "v" {
		t.Fatalf("fe.Vars = %#v, want one var named v", fe.Vars)
	}
}

func TestParseTryCatch(t *testing.T) {
	p, _, bag := testParser(`void f() { try { g(); } catch { h(); } }`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	fn := file.Decls[0].(*ast.FuncDecl)
	tryStmt, ok := fn.Body.Stmts[0].(*ast.TryStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.TryStmt", fn.Body.Stmts[0])
	}
	if tryStmt.Catch == nil {
		t.Fatal("expected a catch clause")
	}
}

func TestParseRecoversFromSyntaxError(t *testing.T) {
	// Panic-mode recovery: a malformed declaration shouldn't swallow the
	// rest of the file (spec §4.A synchronize()).
	p, _, bag := testParser(`
		int ;;; broken;
		int add(int a, int b) { return a + b; }
	`)
	file := p.ParseFile("t.ember")
	if !bag.HasErrors() {
		t.Fatal("expected at least one diagnostic from the malformed declaration")
	}

	var found bool
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name == "add" {
			found = true
		}
	}
	if !found {
		t.Fatal("parser did not recover to parse the well-formed 'add' declaration")
	}
}

func TestParseScopeStackBalance(t *testing.T) {
	// Testable property 6 (scope-stack balance), observed indirectly: a
	// deeply nested namespace still leaves the parser able to finish the
	// file and every Decls slice is non-nil at the level it was opened.
	p, _, bag := testParser(`
		namespace A {
			namespace B {
				namespace C {
					int x;
				}
			}
		}
		int y;
	`)
	file := p.ParseFile("t.ember")
	checkNoErrors(t, bag)

	if len(file.Decls) != 2 {
		t.Fatalf("got %d top-level decls, want 2 (namespace A, global y)", len(file.Decls))
	}
	if _, ok := file.Decls[1].(*ast.GlobalVarDecl); !ok {
		t.Errorf("second top-level decl is %T, want *ast.GlobalVarDecl", file.Decls[1])
	}
}
