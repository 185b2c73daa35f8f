package check

import (
	"strings"
	"testing"

	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/diag"
)

// hasMessageContaining reports whether any diagnostic in bag mentions substr,
// case-insensitively, in either its Message or Kind name.
func hasMessageContaining(bag *diag.Bag, substr string) bool {
	substr = strings.ToLower(substr)
	for _, d := range bag.All() {
		if strings.Contains(strings.ToLower(d.Error()), substr) {
			return true
		}
	}
	return false
}

// TestConstHandleParamBlocksFieldWrite is scenario S4: a const handle
// parameter must propagate its const-ness through member access, rejecting
// any assignment to a field reached through it.
func TestConstHandleParamBlocksFieldWrite(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class P {
			int32 x;
		}
		void f(const P@ p) {
			p.x = 5;
		}
	`, "f")
	if !bag.HasErrors() {
		t.Fatalf("expected an error assigning to a field through a const handle")
	}
	if !hasMessageContaining(bag, "const") {
		t.Fatalf("expected a diagnostic mentioning 'const', got %v", bag.All())
	}
}

// TestConstHandleParamAllowsFieldRead confirms the const-ness only blocks
// writes, not reads, through the same handle.
func TestConstHandleParamAllowsFieldRead(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class P {
			int32 x;
		}
		int32 f(const P@ p) {
			return p.x;
		}
	`, "f")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics reading through a const handle: %v", bag.All())
	}
}

// TestConstMethodRejectsFieldWriteOnThis covers the other const-propagation
// path named in the review: a const method's implicit "this" is itself a
// handle-to-const, so it cannot write its own fields either.
func TestConstMethodRejectsFieldWriteOnThis(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class Counter {
			int32 total;
			void bump() const {
				total = 1;
			}
		}
	`, "bump")
	if !bag.HasErrors() {
		t.Fatalf("expected an error assigning to a field from a const method")
	}
	if !hasMessageContaining(bag, "const") {
		t.Fatalf("expected a diagnostic mentioning 'const', got %v", bag.All())
	}
}

// TestImplicitWideningConversionEmitsConvInstruction is the Comment 2
// scenario: a call resolving to a widening double overload must leave a
// converted double on the stack, not the raw int the argument expression
// pushed.
func TestImplicitWideningConversionEmitsConvInstruction(t *testing.T) {
	chunk, bag := compileNamedFunction(t, `
		void print(double x) {}
		void caller() {
			print(7);
		}
	`, "caller")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var sawConv bool
	for _, op := range ops {
		if op == bytecode.ConvIntDouble {
			sawConv = true
		}
	}
	if !sawConv {
		t.Fatalf("expected a ConvIntDouble instruction before the call, got %v", ops)
	}
}

// TestImplicitConversionOnReturn covers checkReturn: returning an int32 from
// a function declared to return double must convert before the Return.
func TestImplicitConversionOnReturn(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		double widen(int32 x) {
			return x;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var sawConv bool
	for _, op := range ops {
		if op == bytecode.ConvIntDouble {
			sawConv = true
		}
	}
	if !sawConv {
		t.Fatalf("expected a ConvIntDouble instruction before Return, got %v", ops)
	}
}

// TestImplicitConversionOnVarDecl covers checkVarDecl: initializing a
// declared double local from an int32 expression must convert before the
// StoreLocal.
func TestImplicitConversionOnVarDecl(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		void f(int32 x) {
			double y = x;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var sawConv bool
	for _, op := range ops {
		if op == bytecode.ConvIntDouble {
			sawConv = true
		}
	}
	if !sawConv {
		t.Fatalf("expected a ConvIntDouble instruction before StoreLocal, got %v", ops)
	}
}

// TestPrivateFieldRejectedFromUnrelatedClass covers Comment 3: a private
// field on one class must not be readable or writable from a free function.
func TestPrivateFieldRejectedFromUnrelatedClass(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class Secret {
			private int32 x;
		}
		void poke(Secret s) {
			s.x = 5;
		}
	`, "poke")
	if !bag.HasErrors() {
		t.Fatalf("expected an error accessing a private field from outside its class")
	}
	if !hasMessageContaining(bag, "private") {
		t.Fatalf("expected a diagnostic mentioning 'private', got %v", bag.All())
	}
}

// TestPrivateFieldAccessibleFromOwnClass confirms the same private field is
// freely accessible from a method of its own class.
func TestPrivateFieldAccessibleFromOwnClass(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class Secret {
			private int32 x;
			void poke() {
				x = 5;
			}
		}
	`, "poke")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics accessing a private field from its own class: %v", bag.All())
	}
}

// TestProtectedFieldAccessibleFromOwnClass confirms the protected branch of
// checkVisible accepts same-class access the way private does.
func TestProtectedFieldAccessibleFromOwnClass(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class Base {
			protected int32 guarded;
			void touch() {
				guarded = 1;
			}
		}
	`, "touch")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics assigning a protected field from its own class: %v", bag.All())
	}
}

// TestProtectedFieldRejectedFromUnrelatedClass confirms a protected field is
// rejected from a class with no subclass relationship to the owner.
func TestProtectedFieldRejectedFromUnrelatedClass(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class Base {
			protected int32 guarded;
		}
		class Other {
			void poke(Base b) {
				b.guarded = 1;
			}
		}
	`, "poke")
	if !bag.HasErrors() {
		t.Fatalf("expected an error accessing a protected field from an unrelated class")
	}
	if !hasMessageContaining(bag, "protected") {
		t.Fatalf("expected a diagnostic mentioning 'protected', got %v", bag.All())
	}
}

// TestPrivateMethodRejectedFromFreeFunction covers checkCallableVisible's
// free-function call path.
func TestPrivateMethodRejectedFromFreeFunction(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class Vault {
			private void open() {}
		}
		void tryOpen(Vault v) {
			v.open();
		}
	`, "tryOpen")
	if !bag.HasErrors() {
		t.Fatalf("expected an error calling a private method from outside its class")
	}
	if !hasMessageContaining(bag, "private") {
		t.Fatalf("expected a diagnostic mentioning 'private', got %v", bag.All())
	}
}
