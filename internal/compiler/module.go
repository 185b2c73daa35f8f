package compiler

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/parser"
)

// namedSource is one segment added to a SourceModule: a name (used for
// diagnostics and as the ast.File's Name) plus its text.
type namedSource struct {
	name string
	text string
}

// SourceModule accumulates one or more named source segments and parses
// them together into a single ast.Program (spec §6: "one module is one or
// more source strings"). Each segment keeps its own file-id and diagnostic
// file name, so an error in a later segment is still reported against the
// segment it came from rather than the whole concatenation (spec §4,
// script builder / multi-source concatenation).
type SourceModule struct {
	sources []namedSource
}

// NewSourceModule creates an empty module ready to accept sources.
func NewSourceModule() *SourceModule {
	return &SourceModule{}
}

// AddSource appends a named source segment. name is typically a file path;
// it is also what diagnostics from this segment's parse report as their
// file. Segments are parsed in the order they were added.
func (m *SourceModule) AddSource(name, text string) {
	m.sources = append(m.sources, namedSource{name: name, text: text})
}

// Len reports how many segments have been added.
func (m *SourceModule) Len() int { return len(m.sources) }

// Parse parses every added segment into its own *ast.File (each with a
// distinct FileID, assigned in addition order) and returns them combined as
// one ast.Program. Parse errors accumulate in bag rather than aborting, per
// the parser's own recovery contract; callers should check
// bag.HasErrors() before trusting the result.
func (m *SourceModule) Parse(arena *ast.Arena, bag *diag.Bag) *ast.Program {
	files := make([]*ast.File, 0, len(m.sources))
	for i, src := range m.sources {
		p := parser.New(arena, bag, i, src.name, src.text)
		files = append(files, p.ParseFile(src.name))
	}
	return &ast.Program{Files: files}
}
