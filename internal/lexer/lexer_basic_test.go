package lexer

import (
	"strings"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `int add(int a, int b) { return a + b; }`

	l := New(input)
	toks := l.Tokenize()

	want := []struct {
		lit  string
		kind Kind
	}{
		{"int", IDENT}, // "int" is not reserved; primitives are resolved by the parser/type layer
		{"add", IDENT},
		{"(", LPAREN},
		{"int", IDENT},
		{"a", IDENT},
		{",", COMMA},
		{"int", IDENT},
		{"b", IDENT},
		{")", RPAREN},
		{"{", LBRACE},
		{"return", RETURN},
		{"a", IDENT},
		{"+", PLUS},
		{"b", IDENT},
		{";", SEMI},
		{"}", RBRACE},
		{"", EOF},
	}

	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Literal != w.lit {
			t.Fatalf("token[%d]: got {%v %q}, want {%v %q}", i, toks[i].Kind, toks[i].Literal, w.kind, w.lit)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `== != <= >= && || ^^ << <<= >> >>= >>> >>>= ** **= += -= *= /= %= &= |= ^= !is :: .. ++ --`
	l := New(input)
	toks := l.Tokenize()

	want := []Kind{
		EQ, NEQ, LE, GE, AND_AND, OR_OR, XOR_XOR,
		SHL, SHL_ASSIGN, SHR, SHR_ASSIGN, USHR, USHR_ASSIGN,
		POW, POW_ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN,
		PERCENT_ASSIGN, AMP_ASSIGN, PIPE_ASSIGN, CARET_ASSIGN, BANG_IS,
		SCOPE, DOTDOT, INC, DEC, EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token[%d]: got %v, want %v (literal=%q)", i, toks[i].Kind, k, toks[i].Literal)
		}
	}
}

func TestNestedGreaterThanStaysCompound(t *testing.T) {
	// The lexer must NOT split ">>" / ">>>" itself -- that's the parser's
	// job during template-close disambiguation (spec §4.D).
	l := New(`a<b<c>>`)
	toks := l.Tokenize()
	last := toks[len(toks)-2] // before EOF
	if last.Kind != SHR {
		t.Fatalf("expected compound SHR token for '>>', got %v (%q)", last.Kind, last.Literal)
	}
}

func TestNumericLiteralForms(t *testing.T) {
	tests := []struct {
		src  string
		kind Kind
	}{
		{"123", INT},
		{"0x1F", BITLIT},
		{"0XFF", BITLIT},
		{"0b1010", BITLIT},
		{"0o17", BITLIT},
		{"0d42", BITLIT},
		{"3.14", DOUBLE},
		{"3.14f", FLOAT},
		{"1.5e10", DOUBLE},
		{"1e-3F", FLOAT},
	}
	for _, tt := range tests {
		l := New(tt.src)
		tok := l.Next()
		if tok.Kind != tt.kind {
			t.Errorf("%q: got kind %v, want %v", tt.src, tok.Kind, tt.kind)
		}
		if tok.Literal != tt.src {
			t.Errorf("%q: got literal %q", tt.src, tok.Literal)
		}
	}
}

func TestStringAndHeredocLiterals(t *testing.T) {
	tests := []struct {
		src  string
		kind Kind
	}{
		{`"hello\nworld"`, STRING},
		{`'single'`, STRING},
		{`"""raw \n text"""`, HEREDOC},
	}
	for _, tt := range tests {
		l := New(tt.src)
		tok := l.Next()
		if tok.Kind != tt.kind {
			t.Errorf("%q: got kind %v, want %v", tt.src, tok.Kind, tt.kind)
		}
	}
}

func TestCommentsSkipped(t *testing.T) {
	l := New("// a line comment\nx /* block */ + 1")
	toks := l.Tokenize()
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{IDENT, PLUS, INT, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v, want %v", kinds, want)
		}
	}
}

func TestDirectivePassthrough(t *testing.T) {
	l := New("#include \"foo.ember\"\nint x;")
	tok := l.Next()
	if tok.Kind != DIRECTIVE {
		t.Fatalf("expected DIRECTIVE, got %v", tok.Kind)
	}
	if name := DirectiveName(tok.Literal); name != "include" {
		t.Fatalf("DirectiveName() = %q, want %q", name, "include")
	}
}

func TestIllegalCharacterRecorded(t *testing.T) {
	l := New("a $ b")
	_ = l.Tokenize()
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lexer error, got %d: %+v", len(l.Errors()), l.Errors())
	}
}

func TestRoundTripRelexPreservesKinds(t *testing.T) {
	input := `
		void f(int8 a, uint64 b) {
			while (a < 10) { a += 1; }
			double d = 3.25e2;
			float g = 1.5f;
			uint64 bits = 0x1F & b >> 2;
			bool ok = a == 3 || !(a is b);
		}
	`
	first := New(input).Tokenize()

	// Re-emitting every lexeme with separating whitespace must lex back to
	// the same kind sequence, though positions will differ.
	var sb strings.Builder
	for _, tok := range first {
		if tok.Kind == EOF {
			break
		}
		sb.WriteString(tok.Literal)
		sb.WriteString(" ")
	}
	second := New(sb.String()).Tokenize()

	if len(second) != len(first) {
		t.Fatalf("re-lex produced %d tokens, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Kind != first[i].Kind {
			t.Fatalf("token[%d]: re-lexed kind %v, want %v (lexeme %q)", i, second[i].Kind, first[i].Kind, first[i].Literal)
		}
	}
}
