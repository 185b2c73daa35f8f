package lexer

import "github.com/emberscript/emberc/internal/diag"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	COMMENT
	DIRECTIVE // opaque "#..." passthrough line, see SPEC_FULL §4

	IDENT
	INT     // decimal integer literal
	BITLIT  // 0x/0b/0o/0d literal, original lexeme preserved
	FLOAT   // 32-bit float literal (f/F suffixed)
	DOUBLE  // 64-bit float literal (no suffix)
	STRING  // "..." or '...'
	HEREDOC // """...""" verbatim

	keywordBegin
	VOID
	BOOL
	INT8
	INT16
	INT32
	INT64
	UINT8
	UINT16
	UINT32
	UINT64
	FLOAT_KW
	DOUBLE_KW
	AUTO
	CLASS
	INTERFACE
	ENUM
	NAMESPACE
	TYPEDEF
	FUNCDEF
	IMPORT
	MIXIN
	IF
	ELSE
	WHILE
	DO
	FOR
	SWITCH
	CASE
	DEFAULT
	BREAK
	CONTINUE
	RETURN
	TRY
	CATCH
	THIS
	SUPER
	CAST
	TRUE
	FALSE
	NULL
	PUBLIC
	PRIVATE
	PROTECTED
	CONST
	FUNCTION
	IS
	keywordEnd

	// Punctuation / operators
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMI
	COLON
	SCOPE // ::
	DOT
	DOTDOT // .. (lexable, not legal in code)
	AT     // @
	QUESTION
	TILDE
	BANG
	BANG_IS // !is

	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	POW_ASSIGN
	AMP_ASSIGN
	PIPE_ASSIGN
	CARET_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN
	USHR_ASSIGN

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	POW // **

	AMP
	PIPE
	CARET
	SHL
	SHR  // >>
	USHR // >>>

	AND_AND
	OR_OR
	XOR_XOR

	EQ
	NEQ
	LT
	LE
	GT
	GE

	INC
	DEC
)

var keywords = map[string]Kind{
	"void": VOID, "bool": BOOL,
	"int8": INT8, "int16": INT16, "int32": INT32, "int64": INT64,
	"uint8": UINT8, "uint16": UINT16, "uint32": UINT32, "uint64": UINT64,
	"float": FLOAT_KW, "double": DOUBLE_KW,
	"auto": AUTO, "class": CLASS, "interface": INTERFACE, "enum": ENUM,
	"namespace": NAMESPACE, "typedef": TYPEDEF, "funcdef": FUNCDEF,
	"import": IMPORT, "mixin": MIXIN,
	"if": IF, "else": ELSE, "while": WHILE, "do": DO, "for": FOR,
	"switch": SWITCH, "case": CASE, "default": DEFAULT,
	"break": BREAK, "continue": CONTINUE, "return": RETURN,
	"try": TRY, "catch": CATCH,
	"this": THIS, "super": SUPER, "cast": CAST,
	"true": TRUE, "false": FALSE, "null": NULL,
	"public": PUBLIC, "private": PRIVATE, "protected": PROTECTED,
	"const": CONST, "function": FUNCTION, "is": IS,
}

// contextualKeywords are lexed as plain IDENT and matched by the parser
// when they appear in a position only a contextual keyword can occupy
// (spec §4.B): get, set, foreach, from, shared, external, abstract, final,
// override, explicit, property, delete.
var ContextualKeywords = map[string]bool{
	"get": true, "set": true, "foreach": true, "from": true,
	"shared": true, "external": true, "abstract": true, "final": true,
	"override": true, "explicit": true, "property": true, "delete": true,
}

func LookupIdent(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

// Token is a kind tag, a borrowed slice of the original source, and a Span.
type Token struct {
	Kind    Kind
	Literal string
	Span    diag.Span
}

func (k Kind) IsKeyword() bool { return k > keywordBegin && k < keywordEnd }

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT", DIRECTIVE: "DIRECTIVE",
	IDENT: "IDENT", INT: "INT", BITLIT: "BITLIT", FLOAT: "FLOAT", DOUBLE: "DOUBLE",
	STRING: "STRING", HEREDOC: "HEREDOC",

	VOID: "void", BOOL: "bool", INT8: "int8", INT16: "int16", INT32: "int32",
	INT64: "int64", UINT8: "uint8", UINT16: "uint16", UINT32: "uint32", UINT64: "uint64",
	FLOAT_KW: "float", DOUBLE_KW: "double", AUTO: "auto", CLASS: "class",
	INTERFACE: "interface", ENUM: "enum", NAMESPACE: "namespace", TYPEDEF: "typedef",
	FUNCDEF: "funcdef", IMPORT: "import", MIXIN: "mixin", IF: "if", ELSE: "else",
	WHILE: "while", DO: "do", FOR: "for", SWITCH: "switch", CASE: "case",
	DEFAULT: "default", BREAK: "break", CONTINUE: "continue", RETURN: "return",
	TRY: "try", CATCH: "catch", THIS: "this", SUPER: "super", CAST: "cast",
	TRUE: "true", FALSE: "false", NULL: "null", PUBLIC: "public",
	PRIVATE: "private", PROTECTED: "protected", CONST: "const",
	FUNCTION: "function", IS: "is",

	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", SEMI: ";", COLON: ":", SCOPE: "::", DOT: ".", DOTDOT: "..",
	AT: "@", QUESTION: "?", TILDE: "~", BANG: "!", BANG_IS: "!is",

	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=",
	SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=", POW_ASSIGN: "**=", AMP_ASSIGN: "&=",
	PIPE_ASSIGN: "|=", CARET_ASSIGN: "^=", SHL_ASSIGN: "<<=", SHR_ASSIGN: ">>=",
	USHR_ASSIGN: ">>>=",

	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", POW: "**",
	AMP: "&", PIPE: "|", CARET: "^", SHL: "<<", SHR: ">>", USHR: ">>>",
	AND_AND: "&&", OR_OR: "||", XOR_XOR: "^^",
	EQ: "==", NEQ: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	INC: "++", DEC: "--",
}

// String renders k as the keyword/punctuation spelling it lexes from where
// one exists, or the category name (IDENT, INT, ...) otherwise.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UnknownKind"
}
