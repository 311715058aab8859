package astdump_test

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/internal/astdump"
	"github.com/parl-lang/parlc/runtime/lexer"
	"github.com/parl-lang/parlc/runtime/parser"
)

func parseProg(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks := lexer.Filter(lexer.New(src, nil).Tokenize())
	prog, diags := parser.Parse(toks)
	require.False(t, diags.HasErrors(), "unexpected parse errors: %v", diags.Items())
	return prog
}

func TestSnapshotRootIsProgram(t *testing.T) {
	prog := parseProg(t, "let x: int = 1;")
	snap := astdump.Snapshot(prog)
	assert.Equal(t, "Program", snap.Tag)
	require.Len(t, snap.Children, 1)
	assert.Equal(t, "VarDecl", snap.Children[0].Tag)
}

func TestSnapshotCapturesBinaryOpChildren(t *testing.T) {
	prog := parseProg(t, "let x: int = 1 + 2;")
	snap := astdump.Snapshot(prog)
	decl := snap.Children[0]
	require.Len(t, decl.Children, 1)
	binOp := decl.Children[0]
	assert.Contains(t, binOp.Tag, "BinaryOp:")
	require.Len(t, binOp.Children, 2)
	assert.Equal(t, "Literal", binOp.Children[0].Tag)
	assert.Equal(t, "Literal", binOp.Children[1].Tag)
}

func TestSnapshotFunctionDeclIncludesParamsAndBody(t *testing.T) {
	prog := parseProg(t, "fun add(a: int, b: int) -> int { return a + b; }")
	snap := astdump.Snapshot(prog)
	fd := snap.Children[0]
	assert.Equal(t, "FunctionDecl", fd.Tag)
	// two Param children plus one Block (the body)
	require.Len(t, fd.Children, 3)
	assert.Equal(t, "Param", fd.Children[0].Tag)
	assert.Equal(t, "Param", fd.Children[1].Tag)
	assert.Equal(t, "Block", fd.Children[2].Tag)
}

func TestEncodeProducesValidCBOR(t *testing.T) {
	prog := parseProg(t, "let x: int = 1;")
	data, err := astdump.Encode(prog)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var decoded astdump.Node
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, "Program", decoded.Tag)
}

func TestTextIncludesPositionsAndIndentsChildren(t *testing.T) {
	prog := parseProg(t, "let x: int = 1;")
	out := astdump.Text(prog)
	assert.Contains(t, out, "Program (1:1)")
	assert.Contains(t, out, "  VarDecl")
}

func TestTextWithHexCaseLeavesLowercaseByDefault(t *testing.T) {
	prog := parseProg(t, "let c: colour = #ff00aa;")
	out := astdump.TextWithHexCase(prog, false)
	assert.Contains(t, out, "#ff00aa")
}

func TestTextWithHexCaseUppercasesColourLiterals(t *testing.T) {
	prog := parseProg(t, "let c: colour = #ff00aa;")
	out := astdump.TextWithHexCase(prog, true)
	assert.Contains(t, out, "#FF00AA")
	assert.NotContains(t, out, "#ff00aa")
}

func TestSnapshotIsDeterministicAcrossReparses(t *testing.T) {
	src := "fun add(a: int, b: int) -> int { return a + b; } let z: int = add(1, 2);"
	snap1 := astdump.Snapshot(parseProg(t, src))
	snap2 := astdump.Snapshot(parseProg(t, src))
	if diff := cmp.Diff(snap1, snap2); diff != "" {
		t.Errorf("snapshot of identical source differs between parses (-first +second):\n%s", diff)
	}
}

func TestCBORRoundTripPreservesSnapshot(t *testing.T) {
	prog := parseProg(t, "let xs: int[3] = [1, 2, 3]; let y: int = xs[0];")
	want := astdump.Snapshot(prog)

	data, err := astdump.Encode(prog)
	require.NoError(t, err)
	var got astdump.Node
	require.NoError(t, cbor.Unmarshal(data, &got))

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CBOR round-trip lost information (-want +got):\n%s", diff)
	}
}

func TestTextWithHexCaseDoesNotTouchNonColourText(t *testing.T) {
	prog := parseProg(t, "fun colourful() -> int { return 1; }")
	out := astdump.TextWithHexCase(prog, true)
	assert.Contains(t, out, "colourful")
}
