// Package parser implements PArL's recursive-descent LL(k) parser
// (spec.md §4.2): operator precedence via a chain of mutually-recursive
// precedence-level functions, and panic-mode error recovery so a single
// compilation can report more than one syntax error.
//
// Grounded on pkgs/parser.Parser's tokens/pos/errors struct shape and
// its parseProgram top-level dispatch-by-token-kind loop
// (github.com/aledsdavies/devcmd/pkgs/parser), adapted from Devcmd's
// var/command grammar to PArL's statement grammar.
package parser

import (
	"fmt"

	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/internal/diagnostics"
)

// synchronizers is the set of token kinds panic-mode recovery resumes
// at (spec.md §4.2): any statement-introducing keyword, or one of the
// structural punctuation marks ";", "{", "}".
var synchronizers = map[token.Kind]bool{
	token.SEMICOLON:        true,
	token.LBRACE:           true,
	token.RBRACE:           true,
	token.LET:              true,
	token.FUN:              true,
	token.IF:               true,
	token.ELSE:             true,
	token.FOR:              true,
	token.WHILE:            true,
	token.RETURN:           true,
	token.BUILTIN_PRINT:    true,
	token.BUILTIN_DELAY:    true,
	token.BUILTIN_WRITE:    true,
	token.BUILTIN_WRITE_BOX: true,
	token.BUILTIN_CLEAR:    true,
}

// Parser consumes a filtered token stream and produces a Program AST.
// It trusts the lexer to have already classified lexical errors; the
// only job here is assembling the tree and recovering from grammar
// errors (mirrors pkgs/parser.Parser's division of labor).
type Parser struct {
	tokens []token.Token
	pos    int
	errs   *diagnostics.Bag
}

// Parse tokenizes-filtered input into a Program. Diagnostics accumulate
// in the returned Bag rather than aborting early (spec.md §4.2).
func Parse(tokens []token.Token) (*ast.Program, *diagnostics.Bag) {
	p := &Parser{tokens: tokens, errs: &diagnostics.Bag{}}
	prog := p.parseProgram()
	return prog, p.errs
}

// --- token cursor helpers -------------------------------------------

func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF sentinel
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) atEnd() bool { return p.current().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	t := p.current()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.current().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k or records an UnexpectedToken /
// UnexpectedEOF diagnostic (spec.md §7) and returns false.
func (p *Parser) expect(k token.Kind, context string) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	if p.atEnd() {
		p.errs.Add(diagnostics.New(diagnostics.Syntactic, "UnexpectedEOF",
			fmt.Sprintf("unexpected end of input, expected %s in %s", k, context), p.current().Pos))
		return token.Token{}, false
	}
	p.reportLexErrorIfAny()
	p.errs.Add(diagnostics.New(diagnostics.Syntactic, "UnexpectedToken",
		fmt.Sprintf("expected %s in %s, found %s", k, context, p.current().Kind), p.current().Pos))
	return token.Token{}, false
}

// reportLexErrorIfAny surfaces a lexer error-kind token encountered
// mid-parse as LexicalErrorInParsing (spec.md §4.2, §7).
func (p *Parser) reportLexErrorIfAny() {
	if p.current().Kind.IsError() {
		p.errs.Add(diagnostics.New(diagnostics.Syntactic, "LexicalErrorInParsing",
			fmt.Sprintf("lexical error %s in %q", p.current().Kind, p.current().Lexeme), p.current().Pos))
	}
}

func (p *Parser) errorf(kind, format string, args ...interface{}) {
	p.errs.Add(diagnostics.New(diagnostics.Syntactic, kind, fmt.Sprintf(format, args...), p.current().Pos))
}

// synchronize implements panic-mode recovery: discard tokens until a
// synchronizing token is found (spec.md §4.2).
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if synchronizers[p.current().Kind] {
			return
		}
		p.advance()
	}
}

// --- Program / top-level ---------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEnd() {
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog
}

func (p *Parser) parseTopLevelStatement() ast.Statement {
	switch p.current().Kind {
	case token.FUN:
		return p.parseFunctionDecl()
	default:
		return p.parseStatement()
	}
}

// parseStatement parses one Statement production (spec.md §4.2
// grammar). It is used both at top level and inside blocks; FunDecl is
// only valid at top level and is dispatched separately by callers that
// allow it.
func (p *Parser) parseStatement() ast.Statement {
	switch p.current().Kind {
	case token.LET:
		s := p.parseVarDecl()
		p.expectSemi("variable declaration")
		return s
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		s := p.parseReturn()
		p.expectSemi("return statement")
		return s
	case token.LBRACE:
		return p.parseBlock()
	case token.BUILTIN_PRINT, token.BUILTIN_DELAY, token.BUILTIN_WRITE, token.BUILTIN_WRITE_BOX, token.BUILTIN_CLEAR:
		s := p.parseBuiltinStatement()
		p.expectSemi("built-in statement")
		return s
	case token.IDENTIFIER:
		s := p.parseIdentifierLedStatement()
		p.expectSemi("statement")
		return s
	case token.FUN:
		p.errorf("MalformedConstruct", "nested function declarations are not allowed")
		p.synchronize()
		return nil
	default:
		p.errorf("UnexpectedToken", "unexpected token %s, expected a statement", p.current().Kind)
		p.synchronize()
		return nil
	}
}

func (p *Parser) expectSemi(context string) {
	if _, ok := p.expect(token.SEMICOLON, context); !ok {
		p.synchronize()
	}
}

// parseIdentifierLedStatement disambiguates Assignment from a bare
// FunctionCall statement, both of which start with IDENTIFIER (spec.md
// §4.2's "Comma in built-in calls" note covers the sibling ambiguity
// for built-ins; this is the ident-vs-call ambiguity for LValue vs
// FunctionCall).
func (p *Parser) parseIdentifierLedStatement() ast.Statement {
	pos := p.current().Pos
	if p.peekAt(1).Kind == token.LPAREN {
		call := p.parseFunctionCall()
		return &ast.ExprStmt{Call: call, Pos: pos}
	}
	target := p.parseLValue()
	if _, ok := p.expect(token.ASSIGN, "assignment"); !ok {
		return nil
	}
	value := p.parseExpr()
	return &ast.Assignment{Target: target, Value: value, Pos: pos}
}

func (p *Parser) parseLValue() ast.Expression {
	name := p.advance()
	var expr ast.Expression = &ast.Identifier{Name: name.Lexeme, Pos: name.Pos}
	if p.match(token.LBRACKET) {
		idx := p.parseExpr()
		p.expect(token.RBRACKET, "index expression")
		expr = &ast.IndexAccess{Base: expr, Index: idx, Pos: name.Pos}
	}
	return expr
}

// --- declarations ------------------------------------------------

func (p *Parser) parseFunctionDecl() ast.Statement {
	pos := p.advance().Pos // 'fun'
	nameTok, ok := p.expect(token.IDENTIFIER, "function name")
	if !ok {
		p.synchronize()
		return nil
	}
	p.expect(token.LPAREN, "function parameters")
	var params []ast.FormalParameter
	if !p.check(token.RPAREN) {
		params = append(params, p.parseParam())
		for p.match(token.COMMA) {
			params = append(params, p.parseParam())
		}
	}
	p.expect(token.RPAREN, "function parameters")

	isVoid := true
	var retType ast.TypeExpr
	if p.match(token.ARROW) {
		isVoid = false
		retType = p.parseTypeExpr()
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.FunctionDecl{Name: nameTok.Lexeme, Params: params, ReturnType: retType, IsVoid: isVoid, Body: body, Pos: pos}
}

func (p *Parser) parseParam() ast.FormalParameter {
	nameTok, _ := p.expect(token.IDENTIFIER, "parameter")
	p.expect(token.COLON, "parameter type")
	t := p.parseTypeExpr()
	return ast.FormalParameter{Name: nameTok.Lexeme, Type: t, Pos: nameTok.Pos}
}

var baseTypeKinds = map[token.Kind]bool{
	token.INT_TYPE: true, token.FLOAT_TYPE: true, token.BOOL_TYPE: true, token.COLOUR_TYPE: true,
}

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	pos := p.current().Pos
	if !baseTypeKinds[p.current().Kind] {
		p.errorf("UnexpectedToken", "expected a type name, found %s", p.current().Kind)
		return ast.TypeExpr{Base: token.INT_TYPE, Pos: pos}
	}
	base := p.advance().Kind
	t := ast.TypeExpr{Base: base, Pos: pos}
	if p.match(token.LBRACKET) {
		t.IsArray = true
		if p.check(token.INT_LIT) {
			sizeTok := p.advance()
			n, err := parseIntLit(sizeTok.Lexeme)
			if err == nil {
				t.HasSize = true
				t.ArraySize = n
			}
		}
		p.expect(token.RBRACKET, "array type")
	}
	return t
}

func (p *Parser) parseVarDecl() ast.Statement {
	pos := p.advance().Pos // 'let'
	nameTok, ok := p.expect(token.IDENTIFIER, "variable name")
	if !ok {
		p.synchronize()
		return nil
	}
	p.expect(token.COLON, "variable declaration")
	t := p.parseTypeExpr()
	var init ast.Expression
	if p.match(token.ASSIGN) {
		init = p.parseExpr()
	}
	return &ast.VarDecl{Name: nameTok.Lexeme, Type: t, Initializer: init, Pos: pos}
}

// --- control flow --------------------------------------------------

func (p *Parser) parseBlock() *ast.Block {
	pos, ok := p.expect(token.LBRACE, "block")
	if !ok {
		return nil
	}
	b := &ast.Block{Pos: pos.Pos}
	for !p.check(token.RBRACE) && !p.atEnd() {
		s := p.parseStatement()
		if s != nil {
			b.Statements = append(b.Statements, s)
		}
	}
	p.expect(token.RBRACE, "block")
	return b
}

func (p *Parser) parseIf() ast.Statement {
	pos := p.advance().Pos
	p.expect(token.LPAREN, "if condition")
	cond := p.parseExpr()
	p.expect(token.RPAREN, "if condition")
	then := p.parseBlock()
	var els *ast.Block
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			// `else if` — wrap the nested if in a single-statement block
			// so the AST stays uniform (If.Else is always a Block).
			inner := p.parseIf()
			els = &ast.Block{Pos: inner.Position(), Statements: []ast.Statement{inner}}
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Pos: pos}
}

func (p *Parser) parseWhile() ast.Statement {
	pos := p.advance().Pos
	p.expect(token.LPAREN, "while condition")
	cond := p.parseExpr()
	p.expect(token.RPAREN, "while condition")
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Pos: pos}
}

func (p *Parser) parseFor() ast.Statement {
	pos := p.advance().Pos
	p.expect(token.LPAREN, "for clause")

	var init ast.Statement
	if !p.check(token.SEMICOLON) {
		if p.check(token.LET) {
			init = p.parseVarDecl()
		} else {
			init = p.parseIdentifierLedStatement()
		}
	}
	p.expect(token.SEMICOLON, "for clause")

	cond := p.parseExpr()
	p.expect(token.SEMICOLON, "for clause")

	var update ast.Statement
	if !p.check(token.RPAREN) {
		update = p.parseIdentifierLedStatement()
	}
	p.expect(token.RPAREN, "for clause")

	body := p.parseBlock()
	return &ast.For{Init: init, Cond: cond, Update: update, Body: body, Pos: pos}
}

func (p *Parser) parseReturn() ast.Statement {
	pos := p.advance().Pos
	if p.check(token.SEMICOLON) {
		return &ast.Return{Pos: pos}
	}
	expr := p.parseExpr()
	return &ast.Return{Expr: expr, Pos: pos}
}

// --- built-in statements --------------------------------------------
// Built-in statements take positional comma-separated arguments at the
// statement level; comma is never treated as an expression operator
// here (spec.md §4.2 "Comma in built-in calls").

func (p *Parser) parseBuiltinStatement() ast.Statement {
	tok := p.advance()
	pos := tok.Pos
	switch tok.Kind {
	case token.BUILTIN_PRINT:
		return &ast.Print{Value: p.parseExpr(), Pos: pos}
	case token.BUILTIN_DELAY:
		return &ast.Delay{Value: p.parseExpr(), Pos: pos}
	case token.BUILTIN_WRITE:
		x := p.parseExpr()
		p.expect(token.COMMA, "__write arguments")
		y := p.parseExpr()
		p.expect(token.COMMA, "__write arguments")
		c := p.parseExpr()
		return &ast.Write{X: x, Y: y, Color: c, Pos: pos}
	case token.BUILTIN_WRITE_BOX:
		x := p.parseExpr()
		p.expect(token.COMMA, "__write_box arguments")
		y := p.parseExpr()
		p.expect(token.COMMA, "__write_box arguments")
		w := p.parseExpr()
		p.expect(token.COMMA, "__write_box arguments")
		h := p.parseExpr()
		p.expect(token.COMMA, "__write_box arguments")
		c := p.parseExpr()
		return &ast.WriteBox{X: x, Y: y, W: w, H: h, Color: c, Pos: pos}
	case token.BUILTIN_CLEAR:
		return &ast.Clear{Color: p.parseExpr(), Pos: pos}
	default:
		p.errorf("MalformedConstruct", "unsupported built-in statement %s", tok.Kind)
		return nil
	}
}

func (p *Parser) parseFunctionCall() *ast.FunctionCall {
	nameTok := p.advance()
	p.expect(token.LPAREN, "function call")
	var args []ast.Expression
	if !p.check(token.RPAREN) {
		args = append(args, p.parseExpr())
		for p.match(token.COMMA) {
			args = append(args, p.parseExpr())
		}
	}
	p.expect(token.RPAREN, "function call")
	return &ast.FunctionCall{Name: nameTok.Lexeme, Args: args, Pos: nameTok.Pos}
}

func parseIntLit(lexeme string) (int, error) {
	n := 0
	for _, c := range lexeme {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid integer literal %q", lexeme)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
