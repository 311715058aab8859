package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parl-lang/parlc/runtime/lexer"
	"github.com/parl-lang/parlc/runtime/parser"
	"github.com/parl-lang/parlc/runtime/sema"
)

func analyze(t *testing.T, src string) *sema.Result {
	t.Helper()
	toks := lexer.Filter(lexer.New(src, nil).Tokenize())
	prog, parseDiags := parser.Parse(toks)
	require.False(t, parseDiags.HasErrors(), "unexpected parse errors: %v", parseDiags.Items())
	return sema.Analyze(prog, sema.Options{}, nil)
}

func kinds(r *sema.Result) []string {
	out := make([]string, len(r.Diags.Items()))
	for i, d := range r.Diags.Items() {
		out[i] = d.Kind
	}
	return out
}

func TestValidProgramHasNoDiagnostics(t *testing.T) {
	res := analyze(t, `
		let x: int = 1;
		let y: float = 2.5;
		fun add(a: int, b: int) -> int { return a + b; }
		let z: int = add(x, 3);
	`)
	assert.True(t, res.OK(), "unexpected diagnostics: %v", kinds(res))
}

func TestUndeclaredVariable(t *testing.T) {
	res := analyze(t, `let x: int = y;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "UndeclaredVariable")
}

func TestUndeclaredFunction(t *testing.T) {
	res := analyze(t, `let x: int = missing(1);`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "UndeclaredFunction")
}

func TestRedeclarationInSameScope(t *testing.T) {
	res := analyze(t, `let x: int = 1; let x: int = 2;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "Redeclaration")
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	res := analyze(t, `
		let x: int = 1;
		if (true) {
			let x: int = 2;
			__print x;
		}
	`)
	assert.True(t, res.OK(), "shadowing in a nested block is legal: %v", kinds(res))
}

func TestTypeMismatchOnVarDeclInit(t *testing.T) {
	res := analyze(t, `let x: int = true;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "TypeMismatch")
}

func TestAssignmentTypeMismatch(t *testing.T) {
	res := analyze(t, `let x: int = 1; x = 2.0;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "TypeMismatch")
}

func TestWholeArrayAssignmentRejected(t *testing.T) {
	res := analyze(t, `let xs: int[3] = [1, 2, 3]; let ys: int[3] = [4, 5, 6]; xs = ys;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "InvalidAssignment")
}

func TestArrayElementAssignmentOK(t *testing.T) {
	res := analyze(t, `let xs: int[3] = [1, 2, 3]; xs[0] = 9;`)
	assert.True(t, res.OK(), "unexpected diagnostics: %v", kinds(res))
}

func TestUnknownSizeArrayInheritsLiteralLength(t *testing.T) {
	res := analyze(t, `let xs: int[] = [1, 2, 3, 4]; let n: int = xs[0];`)
	assert.True(t, res.OK(), "unexpected diagnostics: %v", kinds(res))
}

func TestMissingReturn(t *testing.T) {
	res := analyze(t, `fun f() -> int { let x: int = 1; }`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "MissingReturn")
}

func TestReturnOnEveryIfBranchSatisfiesMissingReturn(t *testing.T) {
	res := analyze(t, `
		fun f(a: bool) -> int {
			if (a) { return 1; } else { return 2; }
		}
	`)
	assert.True(t, res.OK(), "unexpected diagnostics: %v", kinds(res))
}

func TestVoidFunctionCannotReturnValue(t *testing.T) {
	res := analyze(t, `fun f() { return 1; }`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "TypeMismatch")
}

func TestArgumentCountMismatch(t *testing.T) {
	res := analyze(t, `fun f(a: int) -> int { return a; } let x: int = f(1, 2);`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "ArityMismatch")
}

func TestArgumentTypeMismatch(t *testing.T) {
	res := analyze(t, `fun f(a: int) -> int { return a; } let x: int = f(true);`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "TypeMismatch")
}

func TestInvalidCastRejected(t *testing.T) {
	res := analyze(t, `let x: bool = true; let y: colour = x as colour;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "InvalidCast")
}

func TestLegalCastsAccepted(t *testing.T) {
	res := analyze(t, `
		let a: int = 1;
		let b: float = a as float;
		let c: bool = a as bool;
		let d: colour = a as colour;
	`)
	assert.True(t, res.OK(), "unexpected diagnostics: %v", kinds(res))
}

func TestIfConditionMustBeBool(t *testing.T) {
	res := analyze(t, `if (1) { __print 1; }`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "TypeMismatch")
}

func TestWhileConditionMustBeBool(t *testing.T) {
	res := analyze(t, `while (1) { __print 1; }`)
	require.False(t, res.OK())
}

func TestPrintRejectsArray(t *testing.T) {
	res := analyze(t, `let xs: int[2] = [1, 2]; __print xs;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "InvalidBuiltinArgs")
}

func TestBuiltinArgTypeChecking(t *testing.T) {
	res := analyze(t, `__write true, 2, #ff0000;`)
	require.False(t, res.OK())
	assert.Contains(t, kinds(res), "InvalidBuiltinArgs")
}

func TestFloatModRejectedByDefault(t *testing.T) {
	toks := lexer.Filter(lexer.New(`let x: float = 1.0 % 2.0;`, nil).Tokenize())
	prog, parseDiags := parser.Parse(toks)
	require.False(t, parseDiags.HasErrors())
	res := sema.Analyze(prog, sema.Options{AllowFloatMod: false}, nil)
	require.False(t, res.OK())
}

func TestFloatModAllowedWhenConfigured(t *testing.T) {
	toks := lexer.Filter(lexer.New(`let x: float = 1.0 % 2.0;`, nil).Tokenize())
	prog, parseDiags := parser.Parse(toks)
	require.False(t, parseDiags.HasErrors())
	res := sema.Analyze(prog, sema.Options{AllowFloatMod: true}, nil)
	assert.True(t, res.OK(), "unexpected diagnostics: %v", kinds(res))
}

func TestForLoopVariableScopedToLoop(t *testing.T) {
	res := analyze(t, `
		for (let i: int = 0; i < 3; i = i + 1) {
			__print i;
		}
		let i: int = 99;
	`)
	assert.True(t, res.OK(), "loop variable must not leak past the for statement: %v", kinds(res))
}

func TestExprTypesRecordsBinaryOpResult(t *testing.T) {
	toks := lexer.Filter(lexer.New(`let x: bool = 1 < 2;`, nil).Tokenize())
	prog, parseDiags := parser.Parse(toks)
	require.False(t, parseDiags.HasErrors())
	res := sema.Analyze(prog, sema.Options{}, nil)
	require.True(t, res.OK())
	assert.NotEmpty(t, res.ExprTypes, "ExprTypes side-table should be populated for codegen to consult")
}
