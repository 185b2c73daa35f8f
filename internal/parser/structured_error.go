package parser

import (
	"fmt"
	"strings"

	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/lexer"
)

// ErrorKind categorizes a StructuredParseError beyond the diag.Kind it
// converts into, so recovery logic can match on category without string
// comparison (spec §4, structured parser error).
type ErrorKind string

const (
	ErrKindSyntax     ErrorKind = "syntax"
	ErrKindUnexpected ErrorKind = "unexpected"
	ErrKindMissing    ErrorKind = "missing"
	ErrKindInvalid    ErrorKind = "invalid"
)

// StructuredParseError is a rich parse error carrying what was expected,
// what was actually found, and optional suggestions, in addition to the
// diag.Kind/span pair every Diagnostic needs. Built with
// NewStructuredError and the With* chain, then lowered to a *diag.Diagnostic
// with ToDiagnostic once complete.
type StructuredParseError struct {
	Kind     ErrorKind
	DiagKind diag.Kind
	Span     diag.Span
	Message  string

	Expected    []string
	Actual      string
	Suggestions []string
}

// NewStructuredError starts a builder for a parse error of the given kind.
func NewStructuredError(kind ErrorKind, diagKind diag.Kind, span diag.Span) *StructuredParseError {
	return &StructuredParseError{Kind: kind, DiagKind: diagKind, Span: span}
}

func (e *StructuredParseError) WithMessage(msg string) *StructuredParseError {
	e.Message = msg
	return e
}

func (e *StructuredParseError) WithExpected(what ...string) *StructuredParseError {
	e.Expected = append(e.Expected, what...)
	return e
}

func (e *StructuredParseError) WithActual(tok lexer.Token) *StructuredParseError {
	if tok.Literal != "" {
		e.Actual = fmt.Sprintf("%s (%q)", tok.Kind, tok.Literal)
	} else {
		e.Actual = tok.Kind.String()
	}
	return e
}

func (e *StructuredParseError) WithSuggestion(s string) *StructuredParseError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// Error implements the error interface with the same autogeneration the
// teacher's own StructuredParserError uses when no explicit message is set.
func (e *StructuredParseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case ErrKindMissing:
		if len(e.Expected) > 0 {
			return fmt.Sprintf("missing %s", strings.Join(e.Expected, " or "))
		}
		return "missing required element"
	case ErrKindUnexpected:
		if len(e.Expected) > 0 && e.Actual != "" {
			return fmt.Sprintf("expected %s, got %s", strings.Join(e.Expected, " or "), e.Actual)
		}
		if e.Actual != "" {
			return fmt.Sprintf("unexpected %s", e.Actual)
		}
		return "unexpected token"
	case ErrKindInvalid:
		if e.Actual != "" {
			return fmt.Sprintf("invalid %s", e.Actual)
		}
		return "invalid syntax"
	default:
		return "syntax error"
	}
}

// ToDiagnostic lowers the structured error to a plain Diagnostic, folding
// suggestions into the message since diag.Diagnostic has no separate
// suggestions field.
func (e *StructuredParseError) ToDiagnostic() *diag.Diagnostic {
	msg := e.Error()
	for _, s := range e.Suggestions {
		msg += " (" + s + ")"
	}
	return &diag.Diagnostic{Kind: e.DiagKind, Span: e.Span, Message: msg}
}
