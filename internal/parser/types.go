package parser

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/lexer"
)

var primitiveKeywords = map[lexer.Kind]string{
	lexer.VOID: "void", lexer.BOOL: "bool",
	lexer.INT8: "int8", lexer.INT16: "int16", lexer.INT32: "int32", lexer.INT64: "int64",
	lexer.UINT8: "uint8", lexer.UINT16: "uint16", lexer.UINT32: "uint32", lexer.UINT64: "uint64",
	lexer.FLOAT_KW: "float", lexer.DOUBLE_KW: "double",
}

// startsType reports whether the current token can begin a type expression,
// used by is_var_decl-style lookahead and lambda parameter parsing.
func (p *Parser) startsType() bool {
	switch p.tok().Kind {
	case lexer.CONST, lexer.SCOPE, lexer.IDENT, lexer.AUTO, lexer.QUESTION:
		return true
	}
	_, ok := primitiveKeywords[p.tok().Kind]
	return ok
}

// parseType parses the full type-expression grammar (spec §3): optional
// const, optional scope, a base form, optional template args, a suffix
// list of handles each optionally const.
func (p *Parser) parseType() ast.TypeExpr {
	return p.parseTypeCore(true)
}

// parseTypeCore is parseType with the trailing-"&" consumption made
// optional: parseParamRefType needs to see that token itself, since in
// parameter position "&" starts a ref-kind ("&", "&in", "&out", "&inout")
// rather than the return-type marker parseType otherwise assumes.
func (p *Parser) parseTypeCore(consumeTrailingAmp bool) ast.TypeExpr {
	start := p.tok().Span

	isConst := false
	if p.at(lexer.CONST) {
		isConst = true
		p.advance()
	}

	absolute := p.at(lexer.SCOPE)
	if absolute {
		p.advance()
	}

	t := ast.Type{Span: start, Const: isConst, Absolute: absolute}

	switch {
	case p.at(lexer.AUTO):
		t.BaseKind = ast.TypeAuto
		t.Name = "auto"
		p.advance()
	case p.at(lexer.QUESTION):
		t.BaseKind = ast.TypeUnknown
		t.Name = "?"
		p.advance()
	default:
		if name, ok := primitiveKeywords[p.tok().Kind]; ok {
			t.BaseKind = ast.TypePrimitive
			t.Name = name
			p.advance()
		} else {
			name := p.tok().Literal
			if !p.expect(lexer.IDENT, "type name") {
				return ast.Alloc(p.arena, t)
			}
			for p.at(lexer.SCOPE) {
				t.Scope = append(t.Scope, ast.ScopeSegment{Name: name})
				p.advance()
				name = p.tok().Literal
				p.expect(lexer.IDENT, "type name")
			}
			t.BaseKind = ast.TypeNamed
			t.Name = name

			// In type position "<" opens template arguments when its angle
			// closes before a ";", "{", "}" or EOF.
			isArgs := false
			if p.at(lexer.LT) {
				mark, depth := p.cur.Mark(), 0
				for ; !isArgs && !p.at(lexer.EOF) && !p.at(lexer.SEMI) && !p.at(lexer.LBRACE) && !p.at(lexer.RBRACE); p.advance() {
					switch p.tok().Kind {
					case lexer.LT:
						depth++
					case lexer.GT, lexer.SHR, lexer.USHR:
						depth -= len(p.tok().Literal)
					}
					isArgs = depth <= 0
				}
				p.cur.ResetTo(mark)
			}
			if isArgs {
				p.advance()
				for !p.atTemplateClose() && !p.at(lexer.EOF) {
					t.TypeArgs = append(t.TypeArgs, p.parseType())
					if p.at(lexer.COMMA) {
						p.advance()
					} else {
						break
					}
				}
				p.closeTemplateAngle()
			}
		}
	}

	for p.at(lexer.AT) {
		p.advance()
		suffixConst := false
		if p.at(lexer.CONST) {
			suffixConst = true
			p.advance()
		}
		t.Suffixes = append(t.Suffixes, ast.HandleSuffix{Const: suffixConst})
	}

	if consumeTrailingAmp && p.at(lexer.AMP) {
		t.ReturnRef = true
		p.advance()
	}

	t.Span = mergeSpan(start, p.prevSpan())
	return ast.Alloc(p.arena, t)
}

// parseParamRefType is parseType plus the parameter reference-kind suffixes
// ("&", "&in", "&out", "&inout") that only apply in parameter position. It
// must not let parseType itself consume the trailing "&" as a return-type
// marker, since in parameter position that token means something different.
func (p *Parser) parseParamRefType() ast.TypeExpr {
	typ := p.parseTypeCore(false)
	te, ok := typ.(*ast.Type)
	if !ok {
		return typ
	}
	if p.at(lexer.AMP) {
		p.advance()
		te.ParamRef = ast.RefPlain
		if p.at(lexer.IDENT) {
			switch p.tok().Literal {
			case "in":
				te.ParamRef = ast.RefIn
				p.advance()
			case "out":
				te.ParamRef = ast.RefOut
				p.advance()
			case "inout":
				te.ParamRef = ast.RefInOut
				p.advance()
			}
		}
		te.Span = mergeSpan(te.Span, p.prevSpan())
	}
	return te
}

// isVarDecl performs the bounded lookahead from spec §4.D's statement
// dispatch: confirm a type expression is followed by an identifier in a
// position only a declaration can occupy.
func (p *Parser) isVarDecl() bool {
	if !p.startsType() {
		return false
	}
	mark := p.cur.Mark()
	defer p.cur.ResetTo(mark)

	_ = p.parseType()
	return p.at(lexer.IDENT)
}
