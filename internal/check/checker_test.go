package check

import (
	"testing"

	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
)

// compileFirstFunction runs both passes over src and returns the chunk for
// the first function pass 1 collected, along with a fresh diagnostic bag.
func compileFirstFunction(t *testing.T, src string) (*bytecode.BytecodeChunk, *diag.Bag) {
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
	if len(result.Functions) == 0 {
		t.Fatalf("no functions collected")
	}
	pf := result.Functions[0]
	fn, ok := ctx.GetFunction(pf.ID)
	if !ok {
		t.Fatalf("function not registered")
	}
	chunk := CompileFunction(ctx, bag, fn, pf)
	return chunk, bag
}

func opSequence(chunk *bytecode.BytecodeChunk) []bytecode.OpCode {
	ops := make([]bytecode.OpCode, len(chunk.Code))
	for i, inst := range chunk.Code {
		ops[i] = inst.Op
	}
	return ops
}

func assertOps(t *testing.T, chunk *bytecode.BytecodeChunk, want ...bytecode.OpCode) {
	t.Helper()
	got := opSequence(chunk)
	if len(got) != len(want) {
		t.Fatalf("got %d instructions %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("instruction %d = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestCompileReturnExpression(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `int add(int a, int b) { return a + b; }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	assertOps(t, chunk,
		bytecode.LoadLocal, bytecode.LoadLocal, bytecode.Add, bytecode.Return,
		bytecode.Return,
	)
}

func TestCompileLocalDeclarationAndAssignment(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		int doubled(int x) {
			int y = x * 2;
			y += 1;
			return y;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	assertOps(t, chunk,
		bytecode.LoadLocal, bytecode.PushInt, bytecode.Mul, bytecode.StoreLocal, // int y = x * 2;
		bytecode.LoadLocal, bytecode.PushInt, bytecode.Add, bytecode.StoreLocal, bytecode.Pop, // y += 1;
		bytecode.LoadLocal, bytecode.Return, // return y;
		bytecode.Return,
	)
}

func TestCompileIfElse(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		int pick(bool cond) {
			if (cond) {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	assertOps(t, chunk,
		bytecode.LoadLocal, bytecode.JumpIfFalse,
		bytecode.PushInt, bytecode.Return,
		bytecode.Jump,
		bytecode.PushInt, bytecode.Return,
		bytecode.Return,
	)
}

func TestCompileWhileLoopWithBreak(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		int countdown(int n) {
			while (n > 0) {
				if (n == 5) {
					break;
				}
				n -= 1;
			}
			return n;
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var jumps int
	for _, op := range ops {
		if op == bytecode.Jump {
			jumps++
		}
	}
	if jumps < 2 {
		t.Fatalf("expected at least a loop-back jump and a break jump, got ops %v", ops)
	}
}

func TestCompileConstAssignmentRejected(t *testing.T) {
	_, bag := compileFirstFunction(t, `
		int bad() {
			const int x = 1;
			x = 2;
			return x;
		}
	`)
	if !bag.HasErrors() {
		t.Fatalf("expected an error assigning to a const local")
	}
}

func TestCompileSwitchStatement(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		int classify(int n) {
			switch (n) {
				case 1:
					return 10;
				case 2:
					return 20;
				default:
					return 0;
			}
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}
	ops := opSequence(chunk)
	var equals int
	for _, op := range ops {
		if op == bytecode.Equal {
			equals++
		}
	}
	if equals != 2 {
		t.Fatalf("expected 2 equality comparisons (one per case label), got %d in %v", equals, ops)
	}
}

func TestSwitchCaseWithoutBreakFallsThrough(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		void f(int x) {
			switch (x) {
				case 1:
					x = 10;
				case 2:
					x = 20;
					break;
			}
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}

	// Test chain first, then both bodies laid out back to back: nothing
	// may sit between case 1's body and case 2's body, so case 1 falls
	// through; only the explicit break emits a jump past the switch.
	assertOps(t, chunk,
		bytecode.LoadLocal, bytecode.StoreLocal, // scrutinee cached
		bytecode.LoadLocal, bytecode.PushInt, bytecode.Equal, bytecode.JumpIfTrue, // case 1 test
		bytecode.LoadLocal, bytecode.PushInt, bytecode.Equal, bytecode.JumpIfTrue, // case 2 test
		bytecode.Jump,                                     // no match -> past the switch
		bytecode.PushInt, bytecode.StoreLocal, bytecode.Pop, // case 1 body
		bytecode.PushInt, bytecode.StoreLocal, bytecode.Pop, // case 2 body
		bytecode.Jump, // break
		bytecode.Return,
	)

	// Case 1's match jump lands on its own body, one instruction past the
	// no-match jump.
	if target := 5 + 1 + int(chunk.Code[5].A); target != 11 {
		t.Errorf("case 1 match jump targets %d, want 11 (its body)", target)
	}
	// Both the no-match jump and the break exit past the whole switch.
	for _, idx := range []int{10, 17} {
		if target := idx + 1 + int(chunk.Code[idx].A); target != 18 {
			t.Errorf("jump at %d targets %d, want 18 (past the switch)", idx, target)
		}
	}
}

func TestContinueInsideSwitchTargetsEnclosingLoop(t *testing.T) {
	chunk, bag := compileFirstFunction(t, `
		void f(int n) {
			while (n > 0) {
				switch (n) {
					case 1:
						continue;
				}
				n = n - 1;
			}
		}
	`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.All())
	}

	// Two backward jumps: the continue (to the while condition) and the
	// loop's own jump back to its top. An unpatched continue would be left
	// with a zero offset and count as forward.
	backward := 0
	for _, inst := range chunk.Code {
		if inst.Op == bytecode.Jump && inst.A < 0 {
			backward++
		}
	}
	if backward != 2 {
		t.Fatalf("got %d backward jumps, want 2 (continue + loop back): %v", backward, opSequence(chunk))
	}
}
