package bytecode

import (
	"bytes"
	"os"
	"testing"

	"github.com/emberscript/emberc/internal/types"
	"github.com/gkampitakis/go-snaps/snaps"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func TestAddConstantDeduplicates(t *testing.T) {
	c := NewChunk(types.FunctionId(1), "test")
	i1 := c.AddConstant(Constant{Kind: ConstString, Str: "hello"})
	i2 := c.AddConstant(Constant{Kind: ConstString, Str: "hello"})
	if i1 != i2 {
		t.Fatalf("expected dedup, got indices %d and %d", i1, i2)
	}
	i3 := c.AddConstant(Constant{Kind: ConstString, Str: "world"})
	if i3 == i1 {
		t.Fatalf("expected distinct index for distinct constant")
	}
}

func TestEmitAndPatchForwardJump(t *testing.T) {
	c := NewChunk(types.FunctionId(1), "test")
	c.Emit(PushBool, 1, 1)
	jmp := c.EmitJump(JumpIfFalse, 1)
	c.Emit(PushInt, 10, 2)
	c.PatchJump(jmp)
	c.Emit(Return, 0, 3)

	// offset is relative to the instruction following the jump.
	want := int64(len(c.Code) - (jmp + 1) - 1)
	if c.Code[jmp].A != want {
		t.Fatalf("patched offset = %d, want %d", c.Code[jmp].A, want)
	}
}

func TestEmitAndPatchBackwardJump(t *testing.T) {
	c := NewChunk(types.FunctionId(1), "test")
	top := len(c.Code)
	c.Emit(PushBool, 1, 1)
	back := c.EmitJump(Jump, 1)
	c.PatchJumpTo(back, top)

	want := int64(top - (back + 1))
	if c.Code[back].A != want {
		t.Fatalf("patched backward offset = %d, want %d", c.Code[back].A, want)
	}
}

func TestDisassembleSimpleChunk(t *testing.T) {
	c := NewChunk(types.FunctionId(42), "add")
	idx := c.AddConstant(Constant{Kind: ConstInt, Int: 1})
	c.Emit(LoadLocal, 0, 1)
	c.Emit(PushInt, int64(idx), 1)
	c.Emit(Add, 0, 1)
	c.Emit(Return, 0, 1)

	var buf bytes.Buffer
	NewDisassembler(c, &buf).Disassemble()
	snaps.MatchSnapshot(t, "add_chunk", buf.String())
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	c := NewChunk(types.FunctionId(43), "branch")
	c.Emit(LoadLocal, 0, 1)
	jmp := c.EmitJump(JumpIfFalse, 1)
	c.Emit(PushInt, 1, 2)
	c.PatchJump(jmp)
	c.Emit(Return, 0, 3)

	var buf bytes.Buffer
	NewDisassembler(c, &buf).Disassemble()
	snaps.MatchSnapshot(t, "branch_chunk", buf.String())
}
