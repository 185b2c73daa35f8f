package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tags the category of a Diagnostic. The taxonomy mirrors spec §7:
// lexical and syntactic kinds are produced by the lexer/parser, semantic
// kinds by the checker, and the Meta kinds cover internal invariants.
type Kind int

const (
	// Lexical
	InvalidSyntax Kind = iota
	InvalidEscapeSequence

	// Syntactic
	ExpectedToken
	ExpectedExpression
	ExpectedType
	ExpectedStatement
	ExpectedDeclaration
	ExpectedIdentifier
	InvalidExpression
	UnexpectedToken
	ConflictingModifiers

	// Semantic
	UndefinedVariable
	UndefinedFunction
	UndefinedMethod
	UndefinedField
	UnknownType
	AmbiguousType
	TypeMismatch
	VoidExpression
	InvalidOperation
	WrongArgumentCount
	NotCallable
	MissingListBehavior

	// Meta
	NotImplemented
	InternalError
)

var kindNames = map[Kind]string{
	InvalidSyntax:          "InvalidSyntax",
	InvalidEscapeSequence:  "InvalidEscapeSequence",
	ExpectedToken:          "ExpectedToken",
	ExpectedExpression:     "ExpectedExpression",
	ExpectedType:           "ExpectedType",
	ExpectedStatement:      "ExpectedStatement",
	ExpectedDeclaration:    "ExpectedDeclaration",
	ExpectedIdentifier:     "ExpectedIdentifier",
	InvalidExpression:      "InvalidExpression",
	UnexpectedToken:        "UnexpectedToken",
	ConflictingModifiers:   "ConflictingModifiers",
	UndefinedVariable:      "UndefinedVariable",
	UndefinedFunction:      "UndefinedFunction",
	UndefinedMethod:        "UndefinedMethod",
	UndefinedField:         "UndefinedField",
	UnknownType:            "UnknownType",
	AmbiguousType:          "AmbiguousType",
	TypeMismatch:           "TypeMismatch",
	VoidExpression:         "VoidExpression",
	InvalidOperation:       "InvalidOperation",
	WrongArgumentCount:     "WrongArgumentCount",
	NotCallable:            "NotCallable",
	MissingListBehavior:    "MissingListBehavior",
	NotImplemented:         "NotImplemented",
	InternalError:          "InternalError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UnknownKind"
}

// Diagnostic is a single recorded compiler problem: a kind, the span that
// pinpoints it, and a rendered message. Diagnostics are accumulated, never
// thrown (spec §4.A).
type Diagnostic struct {
	Kind    Kind
	Span    Span
	Message string
	Source  string
	File    string
}

// Error implements the error interface so a Diagnostic can be returned from
// Go-level plumbing code (e.g. a CLI command) that wants a single error
// value summarizing the first problem.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic with a source excerpt and a caret, mirroring
// the teacher's CompilerError.Format.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: ", d.File, d.Span.Line, d.Span.Col, d.Kind)
	} else {
		fmt.Fprintf(&sb, "%d:%d: %s: ", d.Span.Line, d.Span.Col, d.Kind)
	}
	sb.WriteString(d.Message)

	if line := sourceLine(d.Source, d.Span.Line); line != "" {
		sb.WriteString("\n    ")
		sb.WriteString(line)
		sb.WriteString("\n    ")
		col := d.Span.Col
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", col-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Bag accumulates diagnostics in the order they are reported. Parser and
// checker errors never abort compilation (spec §4.A, §7); callers append to
// the bag and keep going.
type Bag struct {
	items []*Diagnostic

	curFile   string
	curSource string
}

// BeginFile sets the file name and source text that subsequent Add calls
// stamp onto new diagnostics, until the next BeginFile call. A multi-source
// module (spec §4's Module.AddSource) calls this once per source segment
// before parsing it, so each diagnostic reports which segment it came from
// without every caller having to thread a file name through.
func (b *Bag) BeginFile(file, source string) {
	b.curFile = file
	b.curSource = source
}

// Add appends a new diagnostic built from the given kind/span/formatted message.
func (b *Bag) Add(kind Kind, span Span, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...), File: b.curFile, Source: b.curSource}
	b.items = append(b.items, d)
	return d
}

// AddDiagnostic appends an already-constructed diagnostic, stamping the
// current file/source onto it if it doesn't already carry one (so a
// StructuredParseError lowered with ToDiagnostic still reports its segment).
func (b *Bag) AddDiagnostic(d *Diagnostic) {
	if d.File == "" {
		d.File = b.curFile
	}
	if d.Source == "" {
		d.Source = b.curSource
	}
	b.items = append(b.items, d)
}

// HasErrors reports whether any diagnostic has been recorded. A module with
// ≥1 diagnostic is invalid even though it may still carry partial bytecode.
func (b *Bag) HasErrors() bool {
	return len(b.items) > 0
}

// All returns every recorded diagnostic in insertion order.
func (b *Bag) All() []*Diagnostic {
	return b.items
}

// SortBySpan stabilizes the accumulated diagnostics into non-decreasing
// source-offset order (testable property 7), keyed on (line, col) since
// diagnostics are appended in source order by construction; this guards
// against passes that interleave (e.g. lambda bodies checked out of line
// order).
func (b *Bag) SortBySpan() {
	sort.SliceStable(b.items, func(i, j int) bool {
		a, c := b.items[i].Span, b.items[j].Span
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		return a.Col < c.Col
	})
}

// SetSource retroactively attaches the same file name and source text to
// every diagnostic recorded so far, overriding whatever BeginFile had set.
// For a single-source compile this is simpler than bothering with
// BeginFile; a multi-source module should prefer BeginFile per segment so
// diagnostics from different segments don't all collapse onto one name.
func (b *Bag) SetSource(file, source string) {
	for _, d := range b.items {
		d.File = file
		d.Source = source
	}
}
