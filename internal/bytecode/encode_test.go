package bytecode

import (
	"bytes"
	"reflect"
	"testing"
)

func TestModuleRoundTripsThroughEbcFormat(t *testing.T) {
	chunk := NewChunk(0x1234abcd, "main")
	idx := chunk.AddConstant(Constant{Kind: ConstString, Str: "hello"})
	chunk.Emit(PushString, int64(idx), 1)
	chunk.Emit(PushInt, int64(chunk.AddConstant(Constant{Kind: ConstInt, Int: 42})), 2)
	chunk.EmitAB(CallConstructor, 7, 9, 2)
	chunk.Emit(Return, 0, 3)
	chunk.LocalCount = 2

	encoded, err := EncodeModule([]*BytecodeChunk{chunk})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := ReadModule(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("got %d chunks, want 1", len(decoded))
	}
	if !reflect.DeepEqual(decoded[0], chunk) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded[0], chunk)
	}
}

func TestReadModuleRejectsBadMagic(t *testing.T) {
	_, err := ReadModule(bytes.NewReader([]byte("XXXX\x01\x00\x00\x00\x00\x00")))
	if err == nil {
		t.Fatal("expected an error for a non-ebc payload")
	}
}
