package check

import (
	"testing"

	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
)

// compileNamedFunction runs both passes over src and returns the chunk for
// the collected function/method whose name matches want, along with a
// fresh diagnostic bag. Used where a source has more than one function (a
// class with several methods, or several free-function overloads) and the
// function under test isn't necessarily the first one pass 1 collected.
func compileNamedFunction(t *testing.T, src, want string) (*bytecode.BytecodeChunk, *diag.Bag) {
	t.Helper()
	prog, _ := parseProgram(t, src)
	ctx := compiler.New(nil)
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
		return CompileFunction(ctx, bag, fn, pf), bag
	}
	t.Fatalf("no collected function named %q", want)
	return nil, nil
}

func TestOverloadPrefersExactMatchOverConversion(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		void show(int32 a) {}
		void show(double a) {}
		void caller(int32 x) {
			show(x);
		}
	`, "caller")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
}

func TestOverloadAmbiguousWideningIsRejected(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		void pick(int16 a) {}
		void pick(int32 a) {}
		void caller(int8 x) {
			pick(x);
		}
	`, "caller")
	if !bag.HasErrors() {
		t.Fatalf("expected an ambiguous-overload diagnostic")
	}
}

func TestOperatorOverloadAddDispatchesThroughCallMethod(t *testing.T) {
	chunk, bag := compileNamedFunction(t, `
		class Vec2 {
			double x;
			Vec2 opAdd(double rhs) {
				Vec2 result;
				return result;
			}
		}
		Vec2 combine(Vec2 a, double b) {
			return a + b;
		}
	`, "combine")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var sawCall bool
	for _, op := range ops {
		if op == bytecode.CallMethod {
			sawCall = true
		}
	}
	if !sawCall {
		t.Fatalf("expected a + overload dispatched through CallMethod, got %v", ops)
	}
}

func TestThisRelativeCompoundAssignmentOnField(t *testing.T) {
	chunk, bag := compileNamedFunction(t, `
		class Counter {
			int32 total;
			void add(int32 n) {
				total += n;
			}
		}
	`, "add")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var loadField, storeField, add bool
	for _, op := range ops {
		switch op {
		case bytecode.LoadField:
			loadField = true
		case bytecode.StoreField:
			storeField = true
		case bytecode.Add:
			add = true
		}
	}
	if !loadField || !add || !storeField {
		t.Fatalf("expected load-add-store-field sequence, got %v", ops)
	}
}

func TestIndexedCompoundAssignmentUsesGetAndSetOperators(t *testing.T) {
	chunk, bag := compileNamedFunction(t, `
		class Grid {
			int32 get_opIndex(int32 i) { return 0; }
			void set_opIndex(int32 i, int32 v) {}
		}
		void bump(Grid g, int32 i) {
			g[i] += 1;
		}
	`, "bump")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var calls int
	for _, op := range ops {
		if op == bytecode.CallMethod {
			calls++
		}
	}
	if calls != 2 {
		t.Fatalf("expected one get_opIndex call and one set_opIndex call, got %d CallMethod in %v", calls, ops)
	}
}

func TestCompileForLoopEmitsConditionAndUpdateJumps(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		int32 sum(int32 n) {
			int32 total = 0;
			for (int32 i = 0; i < n; i += 1) {
				total += i;
			}
			return total;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var condJump, backJump bool
	for _, op := range ops {
		if op == bytecode.JumpIfFalse {
			condJump = true
		}
		if op == bytecode.Jump {
			backJump = true
		}
	}
	if !condJump || !backJump {
		t.Fatalf("expected both a condition-exit jump and a loop-back jump, got %v", ops)
	}
}

func TestCompileDoWhileLoopTestsConditionAfterBody(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		int32 countUp(int32 n) {
			int32 i = 0;
			do {
				i += 1;
			} while (i < n);
			return i;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	addAt, lessAt := -1, -1
	for i, op := range ops {
		if op == bytecode.Add && addAt < 0 {
			addAt = i
		}
		if op == bytecode.LessThan && lessAt < 0 {
			lessAt = i
		}
	}
	if addAt < 0 || lessAt < 0 || addAt > lessAt {
		t.Fatalf("expected the loop body to compile before any condition check, got %v", ops)
	}
	var sawJumpIfTrue bool
	for _, op := range ops {
		if op == bytecode.JumpIfTrue {
			sawJumpIfTrue = true
		}
	}
	if !sawJumpIfTrue {
		t.Fatalf("expected a trailing JumpIfTrue back to the loop top, got %v", ops)
	}
}

func TestEnumValueResolvesToAutoNumberedConstant(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		enum Color { Red, Green, Blue }
		Color greenValue() {
			Color c = Green;
			return c;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	var found bool
	for _, c := range chunk.Constants {
		if c.Kind == bytecode.ConstInt && c.Int == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Green's auto-numbered value 1 in the constant pool, got %+v", chunk.Constants)
	}
}

func TestForeachDesugarsToLengthAndIndexProtocol(t *testing.T) {
	chunk, bag := compileNamedFunction(t, `
		class IntList {
			int32 length { get { return 0; } }
			int32 get_opIndex(int32 i) { return 0; }
		}
		int32 sumAll(IntList xs) {
			int32 total = 0;
			foreach (int32 v : xs) {
				total += v;
			}
			return total;
		}
	`, "sumAll")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var calls, condJump, backJump int
	for _, op := range ops {
		switch op {
		case bytecode.CallMethod:
			calls++
		case bytecode.JumpIfFalse:
			condJump++
		case bytecode.Jump:
			backJump++
		}
	}
	if calls != 2 {
		t.Fatalf("expected one length getter call and one get_opIndex call per iteration test, got %d CallMethod in %v", calls, ops)
	}
	if condJump == 0 || backJump == 0 {
		t.Fatalf("expected a condition-exit jump and a loop-back jump, got %v", ops)
	}
}

func TestForeachWithoutLengthPropertyIsRejected(t *testing.T) {
	_, bag := compileNamedFunction(t, `
		class Opaque {}
		void walk(Opaque o) {
			foreach (int32 v : o) {}
		}
	`, "walk")
	if !bag.HasErrors() {
		t.Fatalf("expected a MissingListBehavior diagnostic for a type with no iteration protocol")
	}
}

func TestTryCatchInstallsHandlerFrame(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		int32 guarded(int32 x) {
			try {
				x += 1;
			} catch {
				x = 0;
			}
			return x;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var sawPush, sawPop bool
	for _, op := range ops {
		if op == bytecode.PushHandler {
			sawPush = true
		}
		if op == bytecode.PopHandler {
			sawPop = true
		}
	}
	if !sawPush || !sawPop {
		t.Fatalf("expected a PushHandler/PopHandler pair bracketing the try body, got %v", ops)
	}
}
