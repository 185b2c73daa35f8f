package parser

import (
	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/lexer"
)

// parseStatement dispatches on the leading token (spec §4.D "Statement
// parsing").
func (p *Parser) parseStatement() ast.Statement {
	switch p.tok().Kind {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.FOR:
		return p.parseForOrForeach()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.TRY:
		return p.parseTry()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		span := p.tok().Span
		p.advance()
		p.expect(lexer.SEMI, "';'")
		if p.loopDepth == 0 {
			p.errorf(diag.InvalidSyntax, span, "'break' outside of a loop or switch")
		}
		return ast.Alloc(p.arena, ast.BreakStmt{Span: span})
	case lexer.CONTINUE:
		span := p.tok().Span
		p.advance()
		p.expect(lexer.SEMI, "';'")
		if p.loopDepth == 0 {
			p.errorf(diag.InvalidSyntax, span, "'continue' outside of a loop")
		}
		return ast.Alloc(p.arena, ast.ContinueStmt{Span: span})
	case lexer.IDENT:
		if p.tok().Literal == "foreach" {
			return p.parseForeach()
		}
	}

	if p.isVarDecl() {
		return p.parseVarDeclStatement()
	}
	return p.parseExprStatement()
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.tok().Span
	p.expect(lexer.LBRACE, "'{'")
	var stmts []ast.Statement
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		} else {
			p.synchronize()
		}
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.BlockStmt{Span: mergeSpan(start, end), Stmts: stmts})
}

func (p *Parser) parseExprStatement() ast.Statement {
	start := p.tok().Span
	x := p.parseExpression(bpLowest)
	if x == nil {
		return nil
	}
	end := p.tok().Span
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.ExprStmt{Span: mergeSpan(start, end), X: x})
}

func (p *Parser) parseVarDeclStatement() ast.Statement {
	start := p.tok().Span
	typ := p.parseType()
	decls := p.parseDeclaratorList()
	end := p.tok().Span
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.VarDeclStmt{Span: mergeSpan(start, end), Type: typ, Declarators: decls})
}

// parseDeclaratorList parses "name [= expr | (args)] [, name ...]" (spec
// §4.D: variable declarations support "= expr" or constructor-style "(args)").
func (p *Parser) parseDeclaratorList() []ast.Declarator {
	var decls []ast.Declarator
	for {
		name := p.tok().Literal
		p.expect(lexer.IDENT, "variable name")
		d := ast.Declarator{Name: name}
		switch {
		case p.at(lexer.ASSIGN):
			p.advance()
			d.Init = p.parseExpression(bpAssignR)
		case p.at(lexer.LPAREN):
			p.advance()
			d.Args = p.parseArgList(lexer.RPAREN)
			p.expect(lexer.RPAREN, "')'")
		}
		decls = append(decls, d)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return decls
}

func (p *Parser) parseIf() ast.Statement {
	start := p.tok().Span
	p.advance() // if
	p.expect(lexer.LPAREN, "'('")
	cond := p.parseExpression(bpLowest)
	p.expect(lexer.RPAREN, "')'")
	then := p.parseStatement()
	var els ast.Statement
	if p.at(lexer.ELSE) {
		p.advance()
		els = p.parseStatement()
	}
	end := p.prevSpan()
	return ast.Alloc(p.arena, ast.IfStmt{Span: mergeSpan(start, end), Condition: cond, Then: then, Else: els})
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.tok().Span
	p.advance() // while
	p.expect(lexer.LPAREN, "'('")
	cond := p.parseExpression(bpLowest)
	p.expect(lexer.RPAREN, "')'")
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	return ast.Alloc(p.arena, ast.WhileStmt{Span: mergeSpan(start, p.prevSpan()), Condition: cond, Body: body})
}

func (p *Parser) parseDoWhile() ast.Statement {
	start := p.tok().Span
	p.advance() // do
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	p.expect(lexer.WHILE, "'while'")
	p.expect(lexer.LPAREN, "'('")
	cond := p.parseExpression(bpLowest)
	p.expect(lexer.RPAREN, "')'")
	end := p.tok().Span
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.DoWhileStmt{Span: mergeSpan(start, end), Body: body, Condition: cond})
}

func (p *Parser) parseForOrForeach() ast.Statement {
	start := p.tok().Span
	p.advance() // for
	p.expect(lexer.LPAREN, "'('")

	var init ast.Statement
	if !p.at(lexer.SEMI) {
		if p.isVarDecl() {
			typ := p.parseType()
			decls := p.parseDeclaratorList()
			init = ast.Alloc(p.arena, ast.VarDeclStmt{Span: typ.Pos(), Type: typ, Declarators: decls})
		} else {
			x := p.parseExpression(bpLowest)
			init = ast.Alloc(p.arena, ast.ExprStmt{Span: x.Pos(), X: x})
		}
	}
	p.expect(lexer.SEMI, "';'")

	var cond ast.Expression
	if !p.at(lexer.SEMI) {
		cond = p.parseExpression(bpLowest)
	}
	p.expect(lexer.SEMI, "';'")

	var update []ast.Expression
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		update = append(update, p.parseExpression(bpAssignR))
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	return ast.Alloc(p.arena, ast.ForStmt{
		Span: mergeSpan(start, p.prevSpan()), Init: init, Condition: cond, Update: update, Body: body,
	})
}

// parseForeach handles the contextual "foreach" keyword (spec §4.B).
func (p *Parser) parseForeach() ast.Statement {
	start := p.tok().Span
	p.advance() // foreach
	p.expect(lexer.LPAREN, "'('")

	var vars []ast.ForeachVar
	for {
		typ := p.parseType()
		name := p.tok().Literal
		p.expect(lexer.IDENT, "iteration variable name")
		vars = append(vars, ast.ForeachVar{Type: typ, Name: name})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.COLON, "':'")
	source := p.parseExpression(bpLowest)
	p.expect(lexer.RPAREN, "')'")

	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--

	return ast.Alloc(p.arena, ast.ForeachStmt{Span: mergeSpan(start, p.prevSpan()), Vars: vars, Source: source, Body: body})
}

func (p *Parser) parseSwitch() ast.Statement {
	start := p.tok().Span
	p.advance() // switch
	p.expect(lexer.LPAREN, "'('")
	scrutinee := p.parseExpression(bpLowest)
	p.expect(lexer.RPAREN, "')'")
	p.expect(lexer.LBRACE, "'{'")

	p.loopDepth++ // break inside a case targets the switch too
	var cases []ast.SwitchCase
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		sc := ast.SwitchCase{}
		if p.at(lexer.CASE) {
			for p.at(lexer.CASE) {
				p.advance()
				sc.Labels = append(sc.Labels, p.parseExpression(bpLowest))
				p.expect(lexer.COLON, "':'")
			}
		} else if p.at(lexer.DEFAULT) {
			p.advance()
			p.expect(lexer.COLON, "':'")
			sc.IsDefault = true
		} else {
			p.errorf(diag.ExpectedStatement, p.tok().Span, "expected 'case' or 'default'")
			p.synchronize()
			continue
		}
		for !p.at(lexer.CASE) && !p.at(lexer.DEFAULT) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			s := p.parseStatement()
			if s != nil {
				sc.Body = append(sc.Body, s)
			}
		}
		cases = append(cases, sc)
	}
	if n := len(cases); n > 0 && len(cases[n-1].Body) == 0 {
		p.errorf(diag.ExpectedStatement, p.tok().Span, "the last case of a switch must have at least one statement")
	}
	p.loopDepth--
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.SwitchStmt{Span: mergeSpan(start, end), Scrutinee: scrutinee, Cases: cases})
}

func (p *Parser) parseTry() ast.Statement {
	start := p.tok().Span
	p.advance() // try
	body := p.parseBlock()
	var catch *ast.CatchClause
	if p.at(lexer.CATCH) {
		cstart := p.tok().Span
		p.advance()
		cbody := p.parseBlock()
		catch = ast.Alloc(p.arena, ast.CatchClause{Span: mergeSpan(cstart, cbody.Span), Body: cbody})
	}
	return ast.Alloc(p.arena, ast.TryStmt{Span: mergeSpan(start, p.prevSpan()), Body: body, Catch: catch})
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.tok().Span
	p.advance() // return
	var val ast.Expression
	if !p.at(lexer.SEMI) {
		val = p.parseExpression(bpLowest)
	}
	end := p.tok().Span
	p.expect(lexer.SEMI, "';'")
	return ast.Alloc(p.arena, ast.ReturnStmt{Span: mergeSpan(start, end), Value: val})
}
