package diag

import (
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func TestBagAccumulatesInOrder(t *testing.T) {
	bag := &Bag{}
	bag.Add(UndefinedVariable, Span{Line: 1, Col: 5, Len: 3}, "undefined identifier %q", "foo")
	bag.Add(TypeMismatch, Span{Line: 3, Col: 1, Len: 1}, "cannot convert int to bool")

	if !bag.HasErrors() {
		t.Fatal("expected HasErrors after two Adds")
	}
	all := bag.All()
	if len(all) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(all))
	}
	if all[0].Kind != UndefinedVariable || all[1].Kind != TypeMismatch {
		t.Errorf("kinds out of insertion order: %v, %v", all[0].Kind, all[1].Kind)
	}
}

func TestSortBySpanOrdersBySourceOffset(t *testing.T) {
	bag := &Bag{}
	bag.Add(TypeMismatch, Span{Line: 4, Col: 2}, "later")
	bag.Add(UndefinedVariable, Span{Line: 2, Col: 9}, "earlier")
	bag.Add(InvalidOperation, Span{Line: 4, Col: 1}, "same line, earlier col")

	bag.SortBySpan()

	var got []Span
	for _, d := range bag.All() {
		got = append(got, d.Span)
	}
	want := []Span{{Line: 2, Col: 9}, {Line: 4, Col: 1}, {Line: 4, Col: 2}}
	for i := range want {
		if got[i].Line != want[i].Line || got[i].Col != want[i].Col {
			t.Fatalf("position %d = %v, want %v (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestBeginFileStampsSubsequentDiagnostics(t *testing.T) {
	bag := &Bag{}
	bag.BeginFile("a.ember", "int x = ;")
	first := bag.Add(ExpectedExpression, Span{Line: 1, Col: 9, Len: 1}, "expected an expression")
	bag.BeginFile("b.ember", "void f() {}")
	second := bag.Add(UndefinedVariable, Span{Line: 1, Col: 1, Len: 4}, "undefined identifier")

	if first.File != "a.ember" || second.File != "b.ember" {
		t.Errorf("file stamps = %q, %q; want a.ember, b.ember", first.File, second.File)
	}
	if first.Source != "int x = ;" {
		t.Errorf("first diagnostic lost its source text")
	}
}

func TestFormatRendersExcerptAndCaret(t *testing.T) {
	bag := &Bag{}
	bag.BeginFile("script.ember", "void f(const P@ p) { p.x = 5; }")
	d := bag.Add(InvalidOperation, Span{Line: 1, Col: 22, Len: 7}, "cannot modify a const value")

	snaps.MatchSnapshot(t, d.Format(false))
}

func TestFormatWithoutSourceOmitsExcerpt(t *testing.T) {
	d := &Diagnostic{Kind: UnknownType, Span: Span{Line: 7, Col: 3}, Message: "unknown type \"vec3\""}

	snaps.MatchSnapshot(t, d.Format(false))
}

func TestSpanMergeCoversBothOnOneLine(t *testing.T) {
	a := Span{Line: 2, Col: 3, Len: 4}
	b := Span{Line: 2, Col: 10, Len: 5}
	m := a.Merge(b)
	if m.Line != 2 || m.Col != 3 || m.Len != 12 {
		t.Errorf("merged = %+v, want {Line:2 Col:3 Len:12}", m)
	}
}
