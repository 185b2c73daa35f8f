package ast

import (
	"testing"

	"github.com/emberscript/emberc/internal/diag"
)

func TestArenaAllocTracksNodes(t *testing.T) {
	a := NewArena()
	lit := Alloc(a, Literal{Kind: LitInt, IntVal: 5, Span: diag.Span{Line: 1, Col: 1}})
	if lit.IntVal != 5 {
		t.Fatalf("lit.IntVal = %d, want 5", lit.IntVal)
	}
	if a.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1", a.NodeCount())
	}
}

func TestArenaFreezePreventsFurtherAlloc(t *testing.T) {
	a := NewArena()
	Alloc(a, Literal{Kind: LitBool, BoolVal: true})
	a.Freeze()

	defer func() {
		if recover() == nil {
			t.Fatal("expected Alloc on a frozen arena to panic")
		}
	}()
	Alloc(a, Literal{Kind: LitBool, BoolVal: false})
}

func TestAllocSliceFreezesACopy(t *testing.T) {
	a := NewArena()
	src := []int{1, 2, 3}
	out := AllocSlice(a, src)
	src[0] = 99
	if out[0] != 1 {
		t.Fatalf("AllocSlice should copy, got out[0]=%d after mutating source", out[0])
	}
}
