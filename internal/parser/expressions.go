package parser

import (
	"strconv"
	"strings"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/lexer"
)

// parseExpression is the precedence-climbing core (spec §4.D): parse a
// prefix, then repeatedly consume a postfix operator whose bp is >= minBP
// or an infix operator whose left bp is >= minBP, recursing on its right bp.
func (p *Parser) parseExpression(minBP int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		if bp, ok := postfixBP[p.tok().Kind]; ok && bp >= minBP {
			left = p.parsePostfix(left)
			continue
		}
		if ibp, ok := infixPrecedence[p.tok().Kind]; ok && ibp.left >= minBP {
			left = p.parseInfix(left, ibp.right)
			continue
		}
		break
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.tok()
	switch tok.Kind {
	case lexer.INT, lexer.BITLIT, lexer.FLOAT, lexer.DOUBLE, lexer.STRING, lexer.HEREDOC, lexer.TRUE, lexer.FALSE, lexer.NULL:
		return p.parseLiteral()
	case lexer.IDENT:
		return p.parseIdentOrTemplateCall()
	case lexer.SCOPE:
		return p.parseIdentOrTemplateCall()
	case lexer.LPAREN:
		return p.parseParenExpr()
	case lexer.LBRACE:
		return p.parseInitList()
	case lexer.THIS:
		p.advance()
		return ast.Alloc(p.arena, ast.ThisExpr{Span: tok.Span})
	case lexer.SUPER:
		p.advance()
		return ast.Alloc(p.arena, ast.SuperExpr{Span: tok.Span})
	case lexer.CAST:
		return p.parseCastExpr()
	case lexer.FUNCTION:
		return p.parseLambda()
	case lexer.MINUS, lexer.PLUS, lexer.BANG, lexer.TILDE, lexer.AT, lexer.INC, lexer.DEC:
		p.advance()
		operand := p.parseExpression(bpPrefix)
		if operand == nil {
			return nil
		}
		return ast.Alloc(p.arena, ast.UnaryExpr{
			Span:     mergeSpan(tok.Span, operand.Pos()),
			Operator: tok.Literal,
			Operand:  operand,
		})
	case lexer.VOID, lexer.BOOL, lexer.INT8, lexer.INT16, lexer.INT32, lexer.INT64,
		lexer.UINT8, lexer.UINT16, lexer.UINT32, lexer.UINT64, lexer.FLOAT_KW, lexer.DOUBLE_KW, lexer.AUTO:
		// Primitive-type constructor-call form, e.g. "int(x)" (cast) or used as
		// a bare type name ahead of a declarator; here we only reach this
		// position via parseExpression, so treat it as an identifier-like
		// callee, letting the checker classify "int(x)" as a conversion.
		return p.parseIdentOrTemplateCall()
	}

	p.errorf(diag.ExpectedExpression, tok.Span, "expected expression, got %q", tok.Literal)
	return nil
}

func (p *Parser) parseLiteral() ast.Expression {
	tok := p.tok()
	p.advance()
	switch tok.Kind {
	case lexer.INT:
		v, _ := strconv.ParseInt(tok.Literal, 10, 64)
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitInt, Text: tok.Literal, IntVal: v})
	case lexer.BITLIT:
		v := parseBitLiteral(tok.Literal)
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitBits, Text: tok.Literal, IntVal: v})
	case lexer.FLOAT:
		v, _ := strconv.ParseFloat(strings.TrimRight(tok.Literal, "fF"), 32)
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitFloat, Text: tok.Literal, FloatVal: v})
	case lexer.DOUBLE:
		v, _ := strconv.ParseFloat(tok.Literal, 64)
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitDouble, Text: tok.Literal, FloatVal: v})
	case lexer.STRING:
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitString, Text: tok.Literal, StrVal: unescapeString(tok.Literal, p)})
	case lexer.HEREDOC:
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitHeredoc, Text: tok.Literal, StrVal: trimHeredocQuotes(tok.Literal)})
	case lexer.TRUE:
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitBool, BoolVal: true})
	case lexer.FALSE:
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitBool, BoolVal: false})
	default: // NULL
		return ast.Alloc(p.arena, ast.Literal{Span: tok.Span, Kind: ast.LitNull})
	}
}

func parseBitLiteral(lit string) int64 {
	if len(lit) < 2 {
		v, _ := strconv.ParseInt(lit, 10, 64)
		return v
	}
	base := 10
	switch lit[1] {
	case 'x', 'X':
		base = 16
	case 'b', 'B':
		base = 2
	case 'o', 'O':
		base = 8
	case 'd', 'D':
		base = 10
	}
	v, _ := strconv.ParseInt(lit[2:], base, 64)
	return v
}

// unescapeString interprets \n \r \t \\ \" \' \0 \xNN, recording an
// InvalidEscapeSequence diagnostic for anything else (spec §4.B: "invalid
// escapes are lexer-accepted and rejected during literal processing").
func unescapeString(lit string, p *Parser) string {
	if len(lit) < 2 {
		return lit
	}
	body := lit[1 : len(lit)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i+1 >= len(body) {
			sb.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case '\'':
			sb.WriteByte('\'')
		case '0':
			sb.WriteByte(0)
		case 'x':
			if i+2 < len(body) {
				if v, err := strconv.ParseUint(body[i+1:i+3], 16, 8); err == nil {
					sb.WriteByte(byte(v))
					i += 2
					continue
				}
			}
			p.errorf(diag.InvalidEscapeSequence, p.tok().Span, "invalid \\x escape in string literal")
		default:
			p.errorf(diag.InvalidEscapeSequence, p.tok().Span, "invalid escape sequence '\\%c'", body[i])
		}
	}
	return sb.String()
}

func trimHeredocQuotes(lit string) string {
	if len(lit) >= 6 {
		return lit[3 : len(lit)-3]
	}
	return lit
}

func (p *Parser) parseParenExpr() ast.Expression {
	start := p.tok().Span
	p.advance() // (
	inner := p.parseExpression(bpLowest)
	end := p.tok().Span
	p.expect(lexer.RPAREN, "')'")
	return ast.Alloc(p.arena, ast.ParenExpr{Span: mergeSpan(start, end), Inner: inner})
}

func (p *Parser) parseInitList() ast.Expression {
	start := p.tok().Span
	p.advance() // {
	var elems []ast.Expression
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		e := p.parseExpression(bpAssignR)
		if e != nil {
			elems = append(elems, e)
		}
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	end := p.tok().Span
	p.expect(lexer.RBRACE, "'}'")
	return ast.Alloc(p.arena, ast.InitListExpr{Span: mergeSpan(start, end), Elems: ast.AllocSlice(p.arena, elems)})
}

func (p *Parser) parseCastExpr() ast.Expression {
	start := p.tok().Span
	p.advance() // cast
	p.expect(lexer.LT, "'<'")
	target := p.parseType()
	p.closeTemplateAngle()
	p.expect(lexer.LPAREN, "'('")
	value := p.parseExpression(bpLowest)
	end := p.tok().Span
	p.expect(lexer.RPAREN, "')'")
	return ast.Alloc(p.arena, ast.CastExpr{Span: mergeSpan(start, end), Target: target, Value: value})
}

func (p *Parser) parseLambda() ast.Expression {
	start := p.tok().Span
	p.advance() // function
	p.expect(lexer.LPAREN, "'('")
	var params []ast.LambdaParam
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		var paramType ast.TypeExpr
		if p.startsType() {
			paramType = p.parseType()
		}
		name := ""
		if p.at(lexer.IDENT) {
			name = p.tok().Literal
			p.advance()
		}
		params = append(params, ast.LambdaParam{Name: name, Type: paramType})
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")
	body := p.parseBlock()
	end := body.Span
	return ast.Alloc(p.arena, ast.LambdaExpr{
		Span:   mergeSpan(start, end),
		Params: params,
		Body:   body,
	})
}

// parseIdentOrTemplateCall implements the bounded-lookahead disambiguation
// from spec §4.D: "Name<...>" is a template instantiation call only if,
// after skipping the angle-bracketed argument list, the next token is "(".
func (p *Parser) parseIdentOrTemplateCall() ast.Expression {
	start := p.tok().Span
	absolute := p.at(lexer.SCOPE)
	if absolute {
		p.advance()
	}

	var scope []ast.ScopeSegment
	name := p.tok().Literal
	p.expect(lexer.IDENT, "identifier")
	for p.at(lexer.SCOPE) {
		scope = append(scope, ast.ScopeSegment{Name: name})
		p.advance()
		name = p.tok().Literal
		p.expect(lexer.IDENT, "identifier")
	}

	var typeArgs []ast.TypeExpr
	if p.at(lexer.LT) && p.looksLikeTemplateArgs() {
		p.advance() // <
		for !p.atTemplateClose() && !p.at(lexer.EOF) {
			typeArgs = append(typeArgs, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.closeTemplateAngle()
	}

	end := p.prevSpan()
	return ast.Alloc(p.arena, ast.Ident{
		Span:     mergeSpan(start, end),
		Scope:    scope,
		Absolute: absolute,
		Name:     name,
		TypeArgs: typeArgs,
	})
}

// prevSpan returns the span of the token just consumed, used when an
// expression's end position needs to reach back past a lookahead that has
// already advanced the cursor.
func (p *Parser) prevSpan() diag.Span {
	return p.cur.Prev().Span
}

// looksLikeTemplateArgs performs the save/restore bounded lookahead from
// spec §4.D: skip an optional "::", an identifier, further "::Name"
// segments, and an optional nested "<...>" (recursively), then check
// whether the token after the closing angle is "(".
func (p *Parser) looksLikeTemplateArgs() bool {
	mark := p.cur.Mark()
	defer p.cur.ResetTo(mark)

	if !p.at(lexer.LT) {
		return false
	}
	p.advance()

	depth := 1
	for depth > 0 {
		switch p.tok().Kind {
		case lexer.EOF, lexer.SEMI, lexer.LBRACE, lexer.RBRACE:
			return false
		case lexer.LT:
			depth++
			p.advance()
		case lexer.GT:
			depth--
			p.advance()
		case lexer.SHR:
			depth -= 2
			p.advance()
		case lexer.USHR:
			depth -= 3
			p.advance()
		default:
			p.advance()
		}
		if depth < 0 {
			return false
		}
	}
	return p.at(lexer.LPAREN)
}

func (p *Parser) atTemplateClose() bool {
	switch p.tok().Kind {
	case lexer.GT, lexer.SHR, lexer.USHR:
		return true
	}
	return false
}

// closeTemplateAngle implements spec §4.D "Template-close splitting":
// consume one ">" directly, or split a compound ">>"/">>>"" token into
// two/three ">" tokens in place and consume one, so arbitrarily nested
// template argument lists close correctly (testable property 3).
func (p *Parser) closeTemplateAngle() {
	switch p.tok().Kind {
	case lexer.GT:
		p.advance()
	case lexer.SHR:
		p.cur.SplitCurrentGreater(2)
		p.advance()
	case lexer.USHR:
		p.cur.SplitCurrentGreater(3)
		p.advance()
	default:
		p.errorf(diag.ExpectedToken, p.tok().Span, "expected '>' to close template argument list, got %q", p.tok().Literal)
	}
}

func (p *Parser) parsePostfix(left ast.Expression) ast.Expression {
	tok := p.tok()
	switch tok.Kind {
	case lexer.INC, lexer.DEC:
		p.advance()
		return ast.Alloc(p.arena, ast.PostfixExpr{Span: mergeSpan(left.Pos(), tok.Span), Operator: tok.Literal, Operand: left})
	case lexer.LPAREN:
		return p.parseCall(left)
	case lexer.LBRACKET:
		return p.parseIndex(left)
	case lexer.DOT:
		return p.parseMember(left)
	}
	return left
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	p.advance() // (
	args := p.parseArgList(lexer.RPAREN)
	end := p.tok().Span
	p.expect(lexer.RPAREN, "')'")
	return ast.Alloc(p.arena, ast.CallExpr{Span: mergeSpan(callee.Pos(), end), Callee: callee, Args: args})
}

func (p *Parser) parseIndex(recv ast.Expression) ast.Expression {
	p.advance() // [
	idx := p.parseArgList(lexer.RBRACKET)
	end := p.tok().Span
	p.expect(lexer.RBRACKET, "']'")
	return ast.Alloc(p.arena, ast.IndexExpr{Span: mergeSpan(recv.Pos(), end), Receiver: recv, Indices: idx})
}

// parseArgList parses zero or more comma-separated "[name:] expr" entries.
func (p *Parser) parseArgList(closing lexer.Kind) []ast.Arg {
	var args []ast.Arg
	for !p.at(closing) && !p.at(lexer.EOF) {
		name := ""
		if p.at(lexer.IDENT) && p.peek(1).Kind == lexer.COLON {
			name = p.tok().Literal
			p.advance()
			p.advance() // :
		}
		val := p.parseExpression(bpAssignR)
		args = append(args, ast.Arg{Name: name, Value: val})
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	return args
}

// parseMember distinguishes field access from a method call by looking
// ahead to "(" (spec §4.D: "Postfix '.' distinguishes field vs method by
// lookahead to '('").
func (p *Parser) parseMember(recv ast.Expression) ast.Expression {
	p.advance() // .
	name := p.tok().Literal
	p.expect(lexer.IDENT, "member name")
	if p.at(lexer.LPAREN) {
		p.advance()
		args := p.parseArgList(lexer.RPAREN)
		end := p.tok().Span
		p.expect(lexer.RPAREN, "')'")
		return ast.Alloc(p.arena, ast.MemberExpr{Span: mergeSpan(recv.Pos(), end), Receiver: recv, Name: name, IsCall: true, Args: args})
	}
	return ast.Alloc(p.arena, ast.MemberExpr{Span: mergeSpan(recv.Pos(), p.prevSpan()), Receiver: recv, Name: name})
}

// parseInfix handles every binary/ternary/assignment operator.
func (p *Parser) parseInfix(left ast.Expression, rightBP int) ast.Expression {
	opTok := p.tok()

	if opTok.Kind == lexer.QUESTION {
		p.advance()
		then := p.parseExpression(bpAssignR)
		p.expect(lexer.COLON, "':'")
		els := p.parseExpression(bpTernary)
		return ast.Alloc(p.arena, ast.TernaryExpr{Span: mergeSpan(left.Pos(), els.Pos()), Condition: left, Then: then, Else: els})
	}

	if assignOp, ok := compoundAssignOps[opTok.Kind]; ok {
		p.advance()
		rhs := p.parseExpression(rightBP)
		return ast.Alloc(p.arena, ast.AssignExpr{Span: mergeSpan(left.Pos(), rhs.Pos()), Op: assignOp, LHS: left, RHS: rhs})
	}

	p.advance()
	right := p.parseExpression(rightBP)
	return ast.Alloc(p.arena, ast.BinaryExpr{Span: mergeSpan(left.Pos(), right.Pos()), Operator: opTok.Literal, Left: left, Right: right})
}
