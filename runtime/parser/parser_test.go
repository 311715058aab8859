package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/runtime/lexer"
	"github.com/parl-lang/parlc/runtime/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks := lexer.Filter(lexer.New(src, nil).Tokenize())
	prog, diags := parser.Parse(toks)
	require.False(t, diags.HasErrors(), "unexpected parse errors: %v", diags.Items())
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parse(t, "let x: int = 5;")
	require.Len(t, prog.Statements, 1)
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, token.INT_TYPE, decl.Type.Base)
	lit, ok := decl.Initializer.(*ast.Literal)
	require.True(t, ok)
	assert.EqualValues(t, 5, lit.Value)
}

func TestParseArrayTypeWithSize(t *testing.T) {
	prog := parse(t, "let xs: int[3] = [1, 2, 3];")
	decl := prog.Statements[0].(*ast.VarDecl)
	assert.True(t, decl.Type.IsArray)
	assert.True(t, decl.Type.HasSize)
	assert.Equal(t, 3, decl.Type.ArraySize)
	lit := decl.Initializer.(*ast.ArrayLiteral)
	assert.Len(t, lit.Elements, 3)
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	prog := parse(t, "let x: int = 1 + 2 * 3;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top := decl.Initializer.(*ast.BinaryOp)
	assert.Equal(t, token.PLUS, top.Op)
	_, leftIsLit := top.Left.(*ast.Literal)
	assert.True(t, leftIsLit)
	right := top.Right.(*ast.BinaryOp)
	assert.Equal(t, token.STAR, right.Op)
}

func TestRelationalLowerThanAdditive(t *testing.T) {
	// a + b < c * d should parse as (a + b) < (c * d)
	prog := parse(t, "let r: bool = a + b < c * d;")
	decl := prog.Statements[0].(*ast.VarDecl)
	cmp := decl.Initializer.(*ast.BinaryOp)
	assert.Equal(t, token.LT, cmp.Op)
	_, leftIsAdd := cmp.Left.(*ast.BinaryOp)
	assert.True(t, leftIsAdd)
	_, rightIsMul := cmp.Right.(*ast.BinaryOp)
	assert.True(t, rightIsMul)
}

func TestLeftAssociativity(t *testing.T) {
	// 1 - 2 - 3 should parse as (1 - 2) - 3, not 1 - (2 - 3)
	prog := parse(t, "let x: int = 1 - 2 - 3;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top := decl.Initializer.(*ast.BinaryOp)
	assert.Equal(t, token.MINUS, top.Op)
	left, ok := top.Left.(*ast.BinaryOp)
	require.True(t, ok, "left operand of outer - should itself be a BinaryOp (1 - 2)")
	assert.Equal(t, token.MINUS, left.Op)
	_, rightIsLit := top.Right.(*ast.Literal)
	assert.True(t, rightIsLit)
}

func TestCastBindsTighterThanAdditive(t *testing.T) {
	prog := parse(t, "let x: float = a as float + 1;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top := decl.Initializer.(*ast.BinaryOp)
	assert.Equal(t, token.PLUS, top.Op)
	_, leftIsCast := top.Left.(*ast.Cast)
	assert.True(t, leftIsCast)
}

func TestUnaryMinusAndNot(t *testing.T) {
	prog := parse(t, "let x: int = -a; let y: bool = not b;")
	u1 := prog.Statements[0].(*ast.VarDecl).Initializer.(*ast.UnaryOp)
	assert.Equal(t, token.MINUS, u1.Op)
	u2 := prog.Statements[1].(*ast.VarDecl).Initializer.(*ast.UnaryOp)
	assert.Equal(t, token.NOT, u2.Op)
}

func TestFunctionDeclAndCall(t *testing.T) {
	prog := parse(t, "fun add(a: int, b: int) -> int { return a + b; } let z: int = add(1, 2);")
	require.Len(t, prog.Statements, 2)
	fd := prog.Statements[0].(*ast.FunctionDecl)
	assert.Equal(t, "add", fd.Name)
	assert.False(t, fd.IsVoid)
	assert.Len(t, fd.Params, 2)
	decl := prog.Statements[1].(*ast.VarDecl)
	call := decl.Initializer.(*ast.FunctionCall)
	assert.Equal(t, "add", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestVoidFunctionDecl(t *testing.T) {
	prog := parse(t, "fun greet() { __print 1; }")
	fd := prog.Statements[0].(*ast.FunctionDecl)
	assert.True(t, fd.IsVoid)
}

func TestIfElseIfChainDesugarsToNestedBlock(t *testing.T) {
	prog := parse(t, "if (a) { __print 1; } else if (b) { __print 2; } else { __print 3; }")
	top := prog.Statements[0].(*ast.If)
	require.NotNil(t, top.Else)
	require.Len(t, top.Else.Statements, 1)
	nested, ok := top.Else.Statements[0].(*ast.If)
	require.True(t, ok, "else-if must desugar to a nested If wrapped in a Block")
	require.NotNil(t, nested.Else)
}

func TestForLoopAllClauses(t *testing.T) {
	prog := parse(t, "for (let i: int = 0; i < 10; i = i + 1) { __print i; }")
	f := prog.Statements[0].(*ast.For)
	require.NotNil(t, f.Init)
	_, ok := f.Init.(*ast.VarDecl)
	assert.True(t, ok)
	require.NotNil(t, f.Update)
	_, ok = f.Update.(*ast.Assignment)
	assert.True(t, ok)
}

func TestForLoopOptionalClausesOmitted(t *testing.T) {
	prog := parse(t, "for (; i < 10;) { __print i; }")
	f := prog.Statements[0].(*ast.For)
	assert.Nil(t, f.Init)
	assert.Nil(t, f.Update)
}

func TestAssignmentVsCallDisambiguation(t *testing.T) {
	prog := parse(t, "x = 1; f();")
	_, isAssign := prog.Statements[0].(*ast.Assignment)
	assert.True(t, isAssign)
	_, isExprStmt := prog.Statements[1].(*ast.ExprStmt)
	assert.True(t, isExprStmt)
}

func TestIndexAssignment(t *testing.T) {
	prog := parse(t, "xs[0] = 7;")
	asg := prog.Statements[0].(*ast.Assignment)
	_, ok := asg.Target.(*ast.IndexAccess)
	assert.True(t, ok)
}

func TestBuiltinStatementsParseCommaArgs(t *testing.T) {
	prog := parse(t, "__write_box 1, 2, 3, 4, #ff0000;")
	wb := prog.Statements[0].(*ast.WriteBox)
	assert.NotNil(t, wb.X)
	assert.NotNil(t, wb.Color)
}

func TestParenthesizedExpression(t *testing.T) {
	prog := parse(t, "let x: int = (1 + 2) * 3;")
	top := prog.Statements[0].(*ast.VarDecl).Initializer.(*ast.BinaryOp)
	assert.Equal(t, token.STAR, top.Op)
	_, leftIsAdd := top.Left.(*ast.BinaryOp)
	assert.True(t, leftIsAdd)
}

// TestSyntaxErrorRecoveryContinuesAfterSemicolon verifies panic-mode
// recovery: a malformed statement doesn't swallow the rest of the file.
func TestSyntaxErrorRecoveryContinuesAfterSemicolon(t *testing.T) {
	toks := lexer.Filter(lexer.New("let ; let y: int = 2;", nil).Tokenize())
	prog, diags := parser.Parse(toks)
	assert.True(t, diags.HasErrors())
	require.NotEmpty(t, prog.Statements)
	found := false
	for _, s := range prog.Statements {
		if d, ok := s.(*ast.VarDecl); ok && d.Name == "y" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and still parse the statement after the error")
}

func TestMultipleSyntaxErrorsAccumulate(t *testing.T) {
	toks := lexer.Filter(lexer.New("let ; let ; let ;", nil).Tokenize())
	_, diags := parser.Parse(toks)
	assert.GreaterOrEqual(t, diags.Len(), 2, "parser should report more than one error instead of stopping at the first")
}
