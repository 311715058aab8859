package parser

import (
	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/runtime/lexer"
)

// Expression parsing implements the precedence chain of spec.md §4.2,
// lowest to highest: or < and < relational < additive < multiplicative
// < cast < unary < primary. All binary operators are left-associative;
// cast is postfix and non-associative.

func (p *Parser) parseExpr() ast.Expression { return p.parseLogicOr() }

func (p *Parser) parseLogicOr() ast.Expression {
	left := p.parseLogicAnd()
	for p.check(token.OR) {
		op := p.advance()
		right := p.parseLogicAnd()
		left = &ast.BinaryOp{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parseLogicAnd() ast.Expression {
	left := p.parseRelational()
	for p.check(token.AND) {
		op := p.advance()
		right := p.parseRelational()
		left = &ast.BinaryOp{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

var relationalOps = map[token.Kind]bool{
	token.EQ: true, token.NEQ: true, token.LT: true, token.GT: true, token.LE: true, token.GE: true,
}

func (p *Parser) parseRelational() ast.Expression {
	left := p.parseAdditive()
	for relationalOps[p.current().Kind] {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryOp{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryOp{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseCast()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance()
		right := p.parseCast()
		left = &ast.BinaryOp{Left: left, Op: op.Kind, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parseCast() ast.Expression {
	expr := p.parseUnary()
	if p.check(token.AS) {
		op := p.advance()
		if !baseTypeKinds[p.current().Kind] {
			p.errorf("UnexpectedToken", "expected a type name after 'as', found %s", p.current().Kind)
			return expr
		}
		target := p.advance().Kind
		return &ast.Cast{Expr: expr, Target: target, Pos: op.Pos}
	}
	return expr
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(token.MINUS) || p.check(token.NOT) {
		op := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Op: op.Kind, Operand: operand, Pos: op.Pos}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()
	switch tok.Kind {
	case token.INT_LIT:
		p.advance()
		n, err := lexer.ParseIntLexeme(tok.Lexeme)
		if err != nil {
			p.errorf("MalformedConstruct", "invalid integer literal %q", tok.Lexeme)
		}
		return &ast.Literal{Kind: ast.IntLiteral, Value: n, Pos: tok.Pos}
	case token.FLOAT_LIT:
		p.advance()
		f, err := lexer.ParseFloatLexeme(tok.Lexeme)
		if err != nil {
			p.errorf("MalformedConstruct", "invalid float literal %q", tok.Lexeme)
		}
		return &ast.Literal{Kind: ast.FloatLiteral, Value: f, Pos: tok.Pos}
	case token.COLOUR_LIT:
		p.advance()
		c, err := lexer.ParseColourLexeme(tok.Lexeme)
		if err != nil {
			p.errorf("MalformedConstruct", "invalid colour literal %q", tok.Lexeme)
		}
		return &ast.Literal{Kind: ast.ColourLiteral, Value: c, Pos: tok.Pos}
	case token.BOOL_LIT:
		p.advance()
		return &ast.Literal{Kind: ast.BoolLiteral, Value: tok.Lexeme == "true", Pos: tok.Pos}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(token.RPAREN, "parenthesized expression")
		return expr
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.BUILTIN_WIDTH:
		p.advance()
		p.expect(token.LPAREN, "__width call")
		p.expect(token.RPAREN, "__width call")
		return &ast.Width{Pos: tok.Pos}
	case token.BUILTIN_HEIGHT:
		p.advance()
		p.expect(token.LPAREN, "__height call")
		p.expect(token.RPAREN, "__height call")
		return &ast.Height{Pos: tok.Pos}
	case token.BUILTIN_READ:
		p.advance()
		p.expect(token.LPAREN, "__read call")
		x := p.parseExpr()
		p.expect(token.COMMA, "__read call")
		y := p.parseExpr()
		p.expect(token.RPAREN, "__read call")
		return &ast.Read{X: x, Y: y, Pos: tok.Pos}
	case token.BUILTIN_RANDI:
		p.advance()
		p.expect(token.LPAREN, "__randi call")
		max := p.parseExpr()
		p.expect(token.RPAREN, "__randi call")
		return &ast.RandI{Max: max, Pos: tok.Pos}
	case token.IDENTIFIER:
		p.advance()
		if p.check(token.LPAREN) {
			p.pos-- // back up so parseFunctionCall can re-read the name
			return p.parseFunctionCall()
		}
		var expr ast.Expression = &ast.Identifier{Name: tok.Lexeme, Pos: tok.Pos}
		if p.match(token.LBRACKET) {
			idx := p.parseExpr()
			p.expect(token.RBRACKET, "index expression")
			expr = &ast.IndexAccess{Base: expr, Index: idx, Pos: tok.Pos}
		}
		return expr
	default:
		p.reportLexErrorIfAny()
		p.errorf("UnexpectedToken", "unexpected token %s in expression", tok.Kind)
		p.synchronize()
		return &ast.Literal{Kind: ast.IntLiteral, Value: int64(0), Pos: tok.Pos}
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	pos := p.advance().Pos // '['
	lit := &ast.ArrayLiteral{Pos: pos}
	if !p.check(token.RBRACKET) {
		lit.Elements = append(lit.Elements, p.parseExpr())
		for p.match(token.COMMA) {
			lit.Elements = append(lit.Elements, p.parseExpr())
		}
	}
	p.expect(token.RBRACKET, "array literal")
	return lit
}
