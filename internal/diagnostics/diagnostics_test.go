package diagnostics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/internal/diagnostics"
)

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "lexical", diagnostics.Lexical.String())
	assert.Equal(t, "syntax", diagnostics.Syntactic.String())
	assert.Equal(t, "semantic", diagnostics.Semantic.String())
	assert.Equal(t, "codegen", diagnostics.CodeGen.String())
}

func TestBagAccumulatesInOrder(t *testing.T) {
	bag := &diagnostics.Bag{}
	assert.False(t, bag.HasErrors())
	bag.Add(diagnostics.New(diagnostics.Lexical, "ErrInvalidChar", "unexpected character", token.Position{Line: 1, Column: 1}))
	bag.Add(diagnostics.New(diagnostics.Syntactic, "UnexpectedToken", "expected ';'", token.Position{Line: 2, Column: 5}))
	require.True(t, bag.HasErrors())
	assert.Equal(t, 2, bag.Len())
	assert.Equal(t, "ErrInvalidChar", bag.Items()[0].Kind)
	assert.Equal(t, "UnexpectedToken", bag.Items()[1].Kind)
}

func TestDiagnosticErrorFormatsPositionAndKind(t *testing.T) {
	d := diagnostics.New(diagnostics.Semantic, "TypeMismatch", "expected int, got bool", token.Position{Line: 3, Column: 7})
	assert.Equal(t, "3:7: TypeMismatch: expected int, got bool", d.Error())
}

func TestWrapPreservesCauseAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	d := diagnostics.Wrap(diagnostics.CodeGen, "InternalError", "generator failed", token.Position{Line: 1, Column: 1}, cause)
	assert.ErrorIs(t, d, cause)
	assert.Contains(t, d.Error(), "boom")
}

func TestRenderIncludesSourceSnippetAndCaret(t *testing.T) {
	bag := &diagnostics.Bag{}
	bag.Add(diagnostics.New(diagnostics.Syntactic, "UnexpectedToken", "expected ';'", token.Position{Line: 2, Column: 3}))
	source := "let x: int = 1\nlet y int = 2;\n"
	out := bag.Render(source)
	assert.Contains(t, out, "1) syntax error: expected ';'")
	assert.Contains(t, out, "2:3")
	assert.Contains(t, out, "let y int = 2;")
	assert.Contains(t, out, "^")
}

func TestRenderSkipsOutOfRangeLineGracefully(t *testing.T) {
	bag := &diagnostics.Bag{}
	bag.Add(diagnostics.New(diagnostics.Semantic, "Whatever", "bad", token.Position{Line: 99, Column: 1}))
	out := bag.Render("let x: int = 1;\n")
	assert.Contains(t, out, "1) semantic error: bad")
	assert.NotContains(t, out, "-->")
}

func TestEmptyBagHasNoErrors(t *testing.T) {
	bag := &diagnostics.Bag{}
	assert.False(t, bag.HasErrors())
	assert.Equal(t, 0, bag.Len())
	assert.Empty(t, bag.Render("anything"))
}
