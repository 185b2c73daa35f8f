package types

import "testing"

func TestHashTypeNameIsStable(t *testing.T) {
	a := HashTypeName("Foo::Bar")
	b := HashTypeName("Foo::Bar")
	if a != b {
		t.Fatalf("HashTypeName not stable: %v != %v", a, b)
	}
	if HashTypeName("Foo::Baz") == a {
		t.Fatal("different names hashed to the same TypeId")
	}
}

func TestCanConvertToExactMatch(t *testing.T) {
	c, ok := CanConvertTo(Int32(), Int32(), nil)
	if !ok || c.Cost != CostExact {
		t.Fatalf("exact match: got %+v, ok=%v", c, ok)
	}
}

func TestCanConvertToIntWidening(t *testing.T) {
	c, ok := CanConvertTo(DataType{TypeID: Int8ID}, DataType{TypeID: Int32ID}, nil)
	if !ok || !c.IsImplicit || c.Cost != CostWidening || c.Kind != ConvIntWiden {
		t.Fatalf("int8->int32: got %+v, ok=%v", c, ok)
	}
}

func TestCanConvertToIntNarrowingNotImplicit(t *testing.T) {
	c, ok := CanConvertTo(DataType{TypeID: Int32ID}, DataType{TypeID: Int8ID}, nil)
	if !ok || c.IsImplicit || c.Cost != CostNarrowing {
		t.Fatalf("int32->int8: got %+v, ok=%v", c, ok)
	}
}

func TestCanConvertToIntToDouble(t *testing.T) {
	c, ok := CanConvertTo(Int32(), Double(), nil)
	if !ok || !c.IsImplicit || c.Kind != ConvIntDouble {
		t.Fatalf("int32->double: got %+v, ok=%v", c, ok)
	}
}

func TestCanConvertToHandleUpcast(t *testing.T) {
	derived := HashTypeName("Derived")
	base := HashTypeName("Base")
	isSub := func(d, b TypeId) bool { return d == derived && b == base }

	from := DataType{TypeID: derived, IsHandle: true}
	to := DataType{TypeID: base, IsHandle: true}
	c, ok := CanConvertTo(from, to, isSub)
	if !ok || c.Kind != ConvHandleUpcast || c.Cost != CostHandleUpcast {
		t.Fatalf("handle upcast: got %+v, ok=%v", c, ok)
	}
}

func TestCanConvertToHandleValueMismatchRejected(t *testing.T) {
	from := DataType{TypeID: Int32ID, IsHandle: false}
	to := DataType{TypeID: Int32ID, IsHandle: true}
	if _, ok := CanConvertTo(from, to, nil); ok {
		t.Fatal("value-to-handle should never be implicitly convertible")
	}
}

func TestConversionCostMonotonicity(t *testing.T) {
	// int8 -> int32 -> double should never cost less than int8 -> double
	// directly would, i.e. the direct step's cost is the basis (property 5).
	step1, _ := CanConvertTo(DataType{TypeID: Int8ID}, Int32(), nil)
	step2, _ := CanConvertTo(Int32(), Double(), nil)
	direct, _ := CanConvertTo(DataType{TypeID: Int8ID}, Double(), nil)
	if direct.Cost > step1.Cost+step2.Cost {
		t.Fatalf("direct cost %d exceeds chained cost %d", direct.Cost, step1.Cost+step2.Cost)
	}
}

func TestClassifyOperatorMethod(t *testing.T) {
	b, ok := ClassifyOperatorMethod("opAdd")
	if !ok || b != OpAdd {
		t.Fatalf("opAdd classification: %v, %v", b, ok)
	}
	if _, ok := ClassifyOperatorMethod("notAnOperator"); ok {
		t.Fatal("expected notAnOperator to not classify")
	}
	rev, ok := ReverseBinaryOp(OpAdd)
	if !ok || rev != OpAddR {
		t.Fatalf("ReverseBinaryOp(OpAdd) = %v, %v", rev, ok)
	}
}
