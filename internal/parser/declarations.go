package parser

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/lexer"
)

// parseModifiersAndVisibility consumes the contextual modifier keywords
// (shared, external, abstract, final) and the visibility keywords
// (public, private, protected) in any order, as spec §4.D's top-level loop
// requires ("Each item consumes modifiers and visibility").
func (p *Parser) parseModifiersAndVisibility() (ast.Modifiers, ast.Visibility) {
	var mods ast.Modifiers
	vis := ast.VisPublic
	for {
		switch p.tok().Kind {
		case lexer.PUBLIC:
			vis = ast.VisPublic
			p.advance()
			continue
		case lexer.PRIVATE:
			vis = ast.VisPrivate
			p.advance()
			continue
		case lexer.PROTECTED:
			vis = ast.VisProtected
			p.advance()
			continue
		case lexer.IDENT:
			switch p.tok().Literal {
			case "shared":
				mods.Shared = true
				p.advance()
				continue
			case "external":
				mods.External = true
				p.advance()
				continue
			case "abstract":
				mods.Abstract = true
				p.advance()
				continue
			case "final":
				mods.Final = true
				p.advance()
				continue
			}
		}
		break
	}
	return mods, vis
}

// parseTopLevelDecl dispatches on the leading keyword after modifiers and
// visibility have been consumed (spec §4.D "Declaration parsing").
func (p *Parser) parseTopLevelDecl() ast.Decl {
	mods, vis := p.parseModifiersAndVisibility()

	switch p.tok().Kind {
	case lexer.CLASS:
		return p.parseClass(mods, vis)
	case lexer.INTERFACE:
		return p.parseInterface(vis)
	case lexer.ENUM:
		return p.parseEnum(vis)
	case lexer.NAMESPACE:
		return p.parseNamespace()
	case lexer.TYPEDEF:
		return p.parseTypedef()
	case lexer.FUNCDEF:
		return p.parseFuncdef()
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.MIXIN:
		return p.parseMixin()
	}

	if p.startsType() {
		return p.parseFunctionOrGlobal(mods, vis)
	}

	p.errorf(diag.ExpectedDeclaration, p.tok().Span, "expected a declaration, got %q", p.tok().Literal)
	return nil
}

func (p *Parser) parseNamespace() ast.Decl {
	start := p.tok().Span
	p.advance() // namespace
	var path []string
	path = append(path, p.tok().Literal)
	p.expect(lexer.IDENT, "namespace name")
	for p.at(lexer.SCOPE) {
		p.advance()
		path = append(path, p.tok().Literal)
		p.expect(lexer.IDENT, "namespace name")
	}
	p.expect(lexer.LBRACE, "'{'")
	var decls []ast.Decl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		d := p.parseTopLevelDecl()
		if d != nil {
			decls = append(decls, d)
		} else {
			p.synchronize()
		}
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.NamespaceDecl{Span: mergeSpan(start, end), Path: path, Decls: decls})
}

func (p *Parser) parseImport() ast.Decl {
	start := p.tok().Span
	p.advance() // import
	var path []string
	// "import Foo::Bar;" or contextual "import from Foo;" form.
	if p.at(lexer.IDENT) && p.tok().Literal == "from" {
		p.advance()
	}
	path = append(path, p.tok().Literal)
	p.expect(lexer.IDENT, "namespace name")
	for p.at(lexer.SCOPE) {
		p.advance()
		path = append(path, p.tok().Literal)
		p.expect(lexer.IDENT, "namespace name")
	}
	end := p.tok().Span
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.ImportDecl{Span: mergeSpan(start, end), Namespace: path})
}

func (p *Parser) parseTypedef() ast.Decl {
	start := p.tok().Span
	p.advance() // typedef
	alias := p.parseType()
	name := p.tok().Literal
	p.expect(lexer.IDENT, "typedef name")
	end := p.tok().Span
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.TypedefDecl{Span: mergeSpan(start, end), Name: name, Alias: alias})
}

func (p *Parser) parseFuncdef() ast.Decl {
	start := p.tok().Span
	p.advance() // funcdef
	ret := p.parseType()
	name := p.tok().Literal
	p.expect(lexer.IDENT, "funcdef name")
	p.expect(lexer.LPAREN, "'('")
	params := p.parseParamList()
	end := p.tok().Span
	p.expect(lexer.RPAREN, "')'")
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.FuncdefDecl{Span: mergeSpan(start, end), Name: name, Params: params, ReturnType: ret})
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		typ := p.parseParamRefType()
		name := ""
		if p.at(lexer.IDENT) {
			name = p.tok().Literal
			p.advance()
		}
		var def ast.Expression
		if p.at(lexer.ASSIGN) {
			p.advance()
			def = p.parseExpression(bpAssignR)
		}
		params = append(params, ast.Param{Name: name, Type: typ, Default: def})
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	return params
}

// parseFunctionOrGlobal parses a leading-type top-level item: a global
// variable declaration, or a function declaration when the name is
// followed by "(" (spec §4.D class-member dispatch applies the same idea
// one level down for methods vs. fields).
func (p *Parser) parseFunctionOrGlobal(mods ast.Modifiers, vis ast.Visibility) ast.Decl {
	start := p.tok().Span
	typ := p.parseType()
	name := p.tok().Literal
	p.expect(lexer.IDENT, "identifier")

	if p.at(lexer.LPAREN) {
		return p.finishFuncDecl(start, mods, vis, ast.FuncAttrs{}, name, typ)
	}

	decls := p.parseDeclaratorListFrom(name)
	end := p.tok().Span
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.GlobalVarDecl{Span: mergeSpan(start, end), Mods: mods, Vis: vis, Type: typ, Declarators: decls})
}

// parseDeclaratorListFrom parses the remainder of a declarator list whose
// first name has already been consumed (used when the caller needed to
// peek past the name to decide function-vs-global).
func (p *Parser) parseDeclaratorListFrom(firstName string) []ast.Declarator {
	d := ast.Declarator{Name: firstName}
	switch {
	case p.at(lexer.ASSIGN):
		p.advance()
		d.Init = p.parseExpression(bpAssignR)
	case p.at(lexer.LPAREN):
		p.advance()
		d.Args = p.parseArgList(lexer.RPAREN)
		p.expect(lexer.RPAREN, "')'")
	}
	decls := []ast.Declarator{d}
	for p.at(lexer.COMMA) {
		p.advance()
		decls = append(decls, p.parseDeclaratorList()...)
		break
	}
	return decls
}

func (p *Parser) finishFuncDecl(start diag.Span, mods ast.Modifiers, vis ast.Visibility, attrs ast.FuncAttrs, name string, ret ast.TypeExpr) *ast.FuncDecl {
	p.advance() // (
	params := p.parseParamList()
	p.expect(lexer.RPAREN, "')'")

	p.consumeFuncAttrs(&attrs)

	var body *ast.BlockStmt
	isNative := false
	if p.at(lexer.SEMI) {
		p.advance()
		isNative = true
	} else {
		body = p.parseBlock()
	}

	end := p.prevSpan()
	return ast.Alloc(p.arena, ast.FuncDecl{
		Span: mergeSpan(start, end), Mods: mods, Vis: vis, Attrs: attrs,
		Name: name, Params: params, ReturnType: ret, Body: body, IsNative: isNative,
	})
}

// consumeFuncAttrs reads the trailing contextual method attributes that
// appear between the parameter list and the body/";" (override, final,
// explicit, property, delete) plus const-ness.
func (p *Parser) consumeFuncAttrs(attrs *ast.FuncAttrs) {
	for {
		if p.at(lexer.CONST) {
			attrs.Const = true
			p.advance()
			continue
		}
		if p.at(lexer.IDENT) {
			switch p.tok().Literal {
			case "override":
				attrs.Override = true
				p.advance()
				continue
			case "final":
				attrs.Final = true
				p.advance()
				continue
			case "explicit":
				attrs.Explicit = true
				p.advance()
				continue
			case "property":
				attrs.Property = true
				p.advance()
				continue
			case "delete":
				attrs.Delete = true
				p.advance()
				continue
			}
		}
		break
	}
}

func (p *Parser) parseBaseRef() ast.BaseRef {
	var scope []ast.ScopeSegment
	name := p.tok().Literal
	p.expect(lexer.IDENT, "base type name")
	for p.at(lexer.SCOPE) {
		scope = append(scope, ast.ScopeSegment{Name: name})
		p.advance()
		name = p.tok().Literal
		p.expect(lexer.IDENT, "base type name")
	}
	return ast.BaseRef{Name: name, Scope: scope}
}

func (p *Parser) parseClass(mods ast.Modifiers, vis ast.Visibility) ast.Decl {
	start := p.tok().Span
	p.advance() // class
	name := p.tok().Literal
	p.expect(lexer.IDENT, "class name")

	var templateParams []ast.TemplateParam
	if p.at(lexer.LT) {
		p.advance()
		for !p.atTemplateClose() && !p.at(lexer.EOF) {
			templateParams = append(templateParams, ast.TemplateParam{Name: p.tok().Literal})
			p.expect(lexer.IDENT, "template parameter name")
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.closeTemplateAngle()
	}

	var base *ast.BaseRef
	var interfaces []ast.BaseRef
	if p.at(lexer.COLON) {
		p.advance()
		first := p.parseBaseRef()
		base = &first
		for p.at(lexer.COMMA) {
			p.advance()
			interfaces = append(interfaces, p.parseBaseRef())
		}
	}

	p.expect(lexer.LBRACE, "'{'")
	var members []ast.ClassMember
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		m := p.parseClassMember(name)
		if m != nil {
			members = append(members, m)
		} else {
			p.synchronize()
		}
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")

	return ast.Alloc(p.arena, ast.ClassDecl{
		Span: mergeSpan(start, end), Mods: mods, Vis: vis, Name: name,
		TemplateParams: templateParams, Base: base, Interfaces: interfaces, Members: members,
	})
}

// parseClassMember classifies a class body entry by lookahead (spec §4.D):
// destructor ("~Name("), constructor ("Name("), property ("TYPE name {"),
// method ("TYPE name ("), or field ("TYPE name [= expr] ;"). A method may
// also carry "override" before its return type.
func (p *Parser) parseClassMember(className string) ast.ClassMember {
	_, vis := p.parseModifiersAndVisibility()
	start := p.tok().Span

	var attrs ast.FuncAttrs
	if p.at(lexer.IDENT) && p.tok().Literal == "override" && p.peek(1).Kind != lexer.LPAREN && p.peek(2).Kind != lexer.SEMI {
		attrs.Override = true
		p.advance()
	}

	if p.at(lexer.TILDE) {
		p.advance() // ~
		name := "~" + p.tok().Literal
		p.expect(lexer.IDENT, "destructor name")
		return p.finishFuncDecl(start, ast.Modifiers{}, vis, ast.FuncAttrs{}, name, nil)
	}

	if p.at(lexer.IDENT) && p.tok().Literal == className && p.peek(1).Kind == lexer.LPAREN {
		p.advance() // constructor name
		return p.finishFuncDecl(start, ast.Modifiers{}, vis, ast.FuncAttrs{}, className, nil)
	}

	if !p.startsType() {
		p.errorf(diag.ExpectedDeclaration, p.tok().Span, "expected a class member declaration")
		return nil
	}

	typ := p.parseType()
	name := p.tok().Literal
	p.expect(lexer.IDENT, "member name")

	switch {
	case p.at(lexer.LBRACE):
		return p.finishProperty(start, vis, name, typ)
	case p.at(lexer.LPAREN):
		return p.finishFuncDecl(start, ast.Modifiers{}, vis, attrs, name, typ)
	default:
		var init ast.Expression
		if p.at(lexer.ASSIGN) {
			p.advance()
			init = p.parseExpression(bpAssignR)
		}
		end := p.tok().Span
		p.expect(lexer.SEMI, "';'")
		return ast.Alloc(p.arena, ast.FieldDecl{Span: mergeSpan(start, end), Vis: vis, Name: name, Type: typ, Init: init})
	}
}

// finishProperty parses "{ get {...} set {...} }" / "{ get; set; }" bodies
// (spec §4.B's contextual "get"/"set" keywords).
func (p *Parser) finishProperty(start diag.Span, vis ast.Visibility, name string, typ ast.TypeExpr) *ast.PropertyDecl {
	p.advance() // {
	var getter, setter *ast.FuncDecl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.at(lexer.IDENT) && p.tok().Literal == "get" {
			gstart := p.tok().Span
			p.advance()
			body := p.parseBlock()
			getter = ast.Alloc(p.arena, ast.FuncDecl{Span: mergeSpan(gstart, body.Span), Vis: vis, Name: "get_" + name, ReturnType: typ, Body: body})
			continue
		}
		if p.at(lexer.IDENT) && p.tok().Literal == "set" {
			sstart := p.tok().Span
			p.advance()
			body := p.parseBlock()
			setter = ast.Alloc(p.arena, ast.FuncDecl{
				Span: mergeSpan(sstart, body.Span), Vis: vis, Name: "set_" + name,
				Params: []ast.Param{{Name: "value", Type: typ}}, Body: body,
			})
			continue
		}
		p.errorf(diag.ExpectedDeclaration, p.tok().Span, "expected 'get' or 'set' in property body")
		p.synchronize()
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.PropertyDecl{Span: mergeSpan(start, end), Vis: vis, Name: name, Type: typ, Getter: getter, Setter: setter})
}

func (p *Parser) parseInterface(vis ast.Visibility) ast.Decl {
	start := p.tok().Span
	p.advance() // interface
	name := p.tok().Literal
	p.expect(lexer.IDENT, "interface name")

	var bases []ast.BaseRef
	if p.at(lexer.COLON) {
		p.advance()
		bases = append(bases, p.parseBaseRef())
		for p.at(lexer.COMMA) {
			p.advance()
			bases = append(bases, p.parseBaseRef())
		}
	}

	p.expect(lexer.LBRACE, "'{'")
	var methods []*ast.FuncDecl
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		mstart := p.tok().Span
		ret := p.parseType()
		mname := p.tok().Literal
		p.expect(lexer.IDENT, "method name")
		p.expect(lexer.LPAREN, "'('")
		params := p.parseParamList()
		p.expect(lexer.RPAREN, "')'")
		var attrs ast.FuncAttrs
		p.consumeFuncAttrs(&attrs)
		end := p.tok().Span
		p.expect(lexer.SEMI, "';'")
		methods = append(methods, ast.Alloc(p.arena, ast.FuncDecl{
			Span: mergeSpan(mstart, end), Vis: ast.VisPublic, Attrs: attrs,
			Name: mname, Params: params, ReturnType: ret, IsNative: true,
		}))
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.InterfaceDecl{Span: mergeSpan(start, end), Vis: vis, Name: name, Bases: bases, Methods: methods})
}

func (p *Parser) parseEnum(vis ast.Visibility) ast.Decl {
	start := p.tok().Span
	p.advance() // enum
	name := p.tok().Literal
	p.expect(lexer.IDENT, "enum name")
	p.expect(lexer.LBRACE, "'{'")
	var values []ast.EnumValue
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		vname := p.tok().Literal
		p.expect(lexer.IDENT, "enum value name")
		var val ast.Expression
		if p.at(lexer.ASSIGN) {
			p.advance()
			val = p.parseExpression(bpAssignR)
		}
		values = append(values, ast.EnumValue{Name: vname, Value: val})
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.EnumDecl{Span: mergeSpan(start, end), Vis: vis, Name: name, Values: values})
}

func (p *Parser) parseMixin() ast.Decl {
	start := p.tok().Span
	p.advance() // mixin
	name := p.tok().Literal
	p.expect(lexer.IDENT, "mixin name")
	p.expect(lexer.LBRACE, "'{'")
	var members []ast.ClassMember
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		m := p.parseClassMember(name)
		if m != nil {
			members = append(members, m)
		} else {
			p.synchronize()
		}
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.MixinDecl{Span: mergeSpan(start, end), Name: name, Members: members})
}
