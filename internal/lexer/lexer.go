// Package lexer turns Ember source text into a token buffer.
//
// Lexing is single-pass, UTF-8-safe, with up to 3 characters of lookahead
// (needed for ">>>=" and similar compound operators). Comments and
// whitespace are skipped; "column" counts runes, not bytes or display
// width, the same tradeoff the teacher lexer documents for DWScript.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/emberscript/emberc/internal/diag"
)

var directiveCaser = cases.Lower(language.Und)

// Error is a single lexical problem: one InvalidSyntax diagnostic per
// unrecognized character, recorded and then lexing continues (spec §4.B).
type Error struct {
	Span    diag.Span
	Message string
}

type Lexer struct {
	input        string
	errors       []Error
	position     int
	readPosition int
	line         int
	column       int
	ch           rune
	chWidth      int

	preserveComments bool
}

type Option func(*Lexer)

func WithPreserveComments(preserve bool) Option {
	return func(l *Lexer) { l.preserveComments = preserve }
}

// New creates a Lexer over input, stripping a leading UTF-8 BOM if present.
func New(input string, opts ...Option) *Lexer {
	if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:]
	}
	l := &Lexer{input: input, line: 1, column: 0}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

func (l *Lexer) Errors() []Error { return l.errors }

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chWidth = 0
		l.position = l.readPosition
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if r == utf8.RuneError && w == 1 {
		l.errors = append(l.errors, Error{
			Span:    diag.Span{Line: l.line, Col: l.column + 1, Len: 1},
			Message: "invalid UTF-8 byte sequence",
		})
	}
	l.position = l.readPosition
	l.readPosition += w
	l.chWidth = w
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.column++
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekAt(offset int) rune {
	pos := l.readPosition
	var r rune
	for i := 0; i <= offset; i++ {
		if pos >= len(l.input) {
			return 0
		}
		var w int
		r, w = utf8.DecodeRuneInString(l.input[pos:])
		pos += w
	}
	return r
}

func (l *Lexer) span(startLine, startCol, length int) diag.Span {
	return diag.Span{Line: startLine, Col: startCol, Len: length}
}

// Tokenize runs the lexer to completion and returns the full token buffer,
// terminated by an EOF token.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == EOF {
			break
		}
	}
	return toks
}

// Next scans and returns the next token.
func (l *Lexer) Next() Token {
	l.skipWhitespaceAndComments()

	startLine, startCol := l.line, l.column

	if l.ch == 0 {
		return Token{Kind: EOF, Literal: "", Span: l.span(startLine, startCol, 0)}
	}

	switch {
	case isLetter(l.ch) || l.ch == '_':
		lit := l.readIdentifier()
		kind := LookupIdent(lit)
		return Token{Kind: kind, Literal: lit, Span: l.span(startLine, startCol, utf8.RuneCountInString(lit))}
	case isDigit(l.ch):
		return l.readNumber(startLine, startCol)
	case l.ch == '"':
		return l.readStringOrHeredoc(startLine, startCol, '"')
	case l.ch == '\'':
		return l.readStringOrHeredoc(startLine, startCol, '\'')
	case l.ch == '#':
		return l.readDirective(startLine, startCol)
	}

	return l.readOperator(startLine, startCol)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readDirective consumes a whole "#...\n" line as a single opaque token, so
// a host-side preprocessor's leftover directive lines don't choke the core
// lexer (SPEC_FULL §4 supplemented feature).
func (l *Lexer) readDirective(startLine, startCol int) Token {
	start := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	lit := l.input[start:l.position]
	return Token{Kind: DIRECTIVE, Literal: lit, Span: l.span(startLine, startCol, utf8.RuneCountInString(lit))}
}

// DirectiveName extracts and case-folds the directive keyword (e.g.
// "#Include" and "#INCLUDE" both normalize to "include") so a host
// preprocessor can match on it regardless of source casing.
func DirectiveName(literal string) string {
	body := literal
	for len(body) > 0 && body[0] == '#' {
		body = body[1:]
	}
	i := 0
	for i < len(body) && isAlnum(rune(body[i])) {
		i++
	}
	return directiveCaser.String(body[:i])
}

func (l *Lexer) readNumber(startLine, startCol int) Token {
	start := l.position

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X' ||
		l.peekChar() == 'b' || l.peekChar() == 'B' ||
		l.peekChar() == 'o' || l.peekChar() == 'O' ||
		l.peekChar() == 'd' || l.peekChar() == 'D') {
		l.readChar() // 0
		l.readChar() // base marker
		for isAlnum(l.ch) {
			l.readChar()
		}
		lit := l.input[start:l.position]
		return Token{Kind: BITLIT, Literal: lit, Span: l.span(startLine, startCol, utf8.RuneCountInString(lit))}
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	kind := INT
	if isFloat {
		kind = DOUBLE
	}
	if l.ch == 'f' || l.ch == 'F' {
		kind = FLOAT
		l.readChar()
	} else if isFloat {
		kind = DOUBLE
	}

	lit := l.input[start:l.position]
	return Token{Kind: kind, Literal: lit, Span: l.span(startLine, startCol, utf8.RuneCountInString(lit))}
}

// readStringOrHeredoc handles `"..."`, `'...'`, and the triple-quoted
// heredoc form `"""..."""`. Escape sequences are accepted here (invalid
// ones are flagged by the parser during literal processing, per spec §4.B)
// but not interpreted; the parser owns unescaping.
func (l *Lexer) readStringOrHeredoc(startLine, startCol int, quote rune) Token {
	if quote == '"' && l.peekChar() == '"' && l.peekAt(1) == '"' {
		return l.readHeredoc(startLine, startCol)
	}

	start := l.position
	l.readChar() // consume opening quote
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			if l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '\n' {
			l.errors = append(l.errors, Error{
				Span:    l.span(startLine, startCol, 1),
				Message: "unterminated string literal",
			})
			break
		}
		l.readChar()
	}
	if l.ch == quote {
		l.readChar()
	} else if l.ch == 0 {
		l.errors = append(l.errors, Error{
			Span:    l.span(startLine, startCol, 1),
			Message: "unterminated string literal",
		})
	}
	lit := l.input[start:l.position]
	return Token{Kind: STRING, Literal: lit, Span: l.span(startLine, startCol, utf8.RuneCountInString(lit))}
}

func (l *Lexer) readHeredoc(startLine, startCol int) Token {
	start := l.position
	l.readChar()
	l.readChar()
	l.readChar() // consume opening """
	for !(l.ch == '"' && l.peekChar() == '"' && l.peekAt(1) == '"') && l.ch != 0 {
		l.readChar()
	}
	if l.ch != 0 {
		l.readChar()
		l.readChar()
		l.readChar()
	} else {
		l.errors = append(l.errors, Error{
			Span:    l.span(startLine, startCol, 3),
			Message: "unterminated heredoc literal",
		})
	}
	lit := l.input[start:l.position]
	return Token{Kind: HEREDOC, Literal: lit, Span: l.span(startLine, startCol, utf8.RuneCountInString(lit))}
}

// fourCharOps, threeCharOps and twoCharOps hold the multi-character
// operators by length; the scanner below tries the longest first so a
// compound operator is never split short.
var threeCharOps = map[string]Kind{
	">>>": USHR, "**=": POW_ASSIGN,
	"<<=": SHL_ASSIGN, ">>=": SHR_ASSIGN,
}

var fourCharOps = map[string]Kind{
	">>>=": USHR_ASSIGN,
}

var twoCharOps = map[string]Kind{
	"==": EQ, "!=": NEQ, "<=": LE, ">=": GE,
	"&&": AND_AND, "||": OR_OR, "^^": XOR_XOR,
	"<<": SHL, ">>": SHR, "**": POW,
	"+=": PLUS_ASSIGN, "-=": MINUS_ASSIGN, "*=": STAR_ASSIGN, "/=": SLASH_ASSIGN,
	"%=": PERCENT_ASSIGN, "&=": AMP_ASSIGN, "|=": PIPE_ASSIGN, "^=": CARET_ASSIGN,
	"::": SCOPE, "..": DOTDOT, "++": INC, "--": DEC,
}

var singleCharOps = map[rune]Kind{
	'(': LPAREN, ')': RPAREN, '{': LBRACE, '}': RBRACE,
	'[': LBRACKET, ']': RBRACKET, ',': COMMA, ';': SEMI, ':': COLON,
	'.': DOT, '@': AT, '?': QUESTION, '~': TILDE, '!': BANG,
	'=': ASSIGN, '+': PLUS, '-': MINUS, '*': STAR, '/': SLASH, '%': PERCENT,
	'&': AMP, '|': PIPE, '^': CARET, '<': LT, '>': GT,
}

func (l *Lexer) readOperator(startLine, startCol int) Token {
	four := string(l.ch) + string(l.peekChar()) + string(l.peekAt(1)) + string(l.peekAt(2))
	if len(four) == 4 || utf8.RuneCountInString(four) == 4 {
		if k, ok := fourCharOps[four]; ok {
			l.readChar()
			l.readChar()
			l.readChar()
			l.readChar()
			return Token{Kind: k, Literal: four, Span: l.span(startLine, startCol, 4)}
		}
	}

	three := string(l.ch) + string(l.peekChar()) + string(l.peekAt(1))
	if k, ok := threeCharOps[three]; ok {
		l.readChar()
		l.readChar()
		l.readChar()
		return Token{Kind: k, Literal: three, Span: l.span(startLine, startCol, 3)}
	}

	if l.ch == '!' && l.peekChar() == 'i' && l.peekAt(1) == 's' {
		notFollowedByIdent := !(isLetter(l.peekAt(2)) || isDigit(l.peekAt(2)) || l.peekAt(2) == '_')
		if notFollowedByIdent {
			l.readChar()
			l.readChar()
			l.readChar()
			return Token{Kind: BANG_IS, Literal: "!is", Span: l.span(startLine, startCol, 3)}
		}
	}

	two := string(l.ch) + string(l.peekChar())
	if k, ok := twoCharOps[two]; ok {
		l.readChar()
		l.readChar()
		return Token{Kind: k, Literal: two, Span: l.span(startLine, startCol, 2)}
	}

	if k, ok := singleCharOps[l.ch]; ok {
		lit := string(l.ch)
		l.readChar()
		return Token{Kind: k, Literal: lit, Span: l.span(startLine, startCol, 1)}
	}

	illegal := string(l.ch)
	l.errors = append(l.errors, Error{
		Span:    l.span(startLine, startCol, 1),
		Message: "unexpected character " + strings_QuoteRune(l.ch),
	})
	l.readChar()
	return Token{Kind: ILLEGAL, Literal: illegal, Span: l.span(startLine, startCol, 1)}
}

func strings_QuoteRune(r rune) string {
	return "'" + string(r) + "'"
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlnum(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}
