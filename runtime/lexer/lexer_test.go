package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/runtime/lexer"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeBasicProgram(t *testing.T) {
	src := "let x: int = 5;\n"
	toks := lexer.Filter(lexer.New(src, nil).Tokenize())
	require.Len(t, toks, 8) // let x : int = 5 ; EOF
	assert.Equal(t, []token.Kind{
		token.LET, token.IDENTIFIER, token.COLON, token.INT_TYPE,
		token.ASSIGN, token.INT_LIT, token.SEMICOLON, token.EOF,
	}, kinds(toks))
}

func TestKeywordAndBuiltinFolding(t *testing.T) {
	toks := lexer.Filter(lexer.New("fun __print true colour notavar", nil).Tokenize())
	require.Len(t, toks, 6)
	assert.Equal(t, token.FUN, toks[0].Kind)
	assert.Equal(t, token.BUILTIN_PRINT, toks[1].Kind)
	assert.Equal(t, token.BOOL_LIT, toks[2].Kind)
	assert.Equal(t, token.COLOUR_TYPE, toks[3].Kind)
	assert.Equal(t, token.IDENTIFIER, toks[4].Kind, "notavar must not fold just because it starts with a keyword-like prefix")
}

func TestTwoCharacterOperators(t *testing.T) {
	toks := lexer.Filter(lexer.New("== != <= >= ->", nil).Tokenize())
	require.Len(t, toks, 6)
	assert.Equal(t, []token.Kind{token.EQ, token.NEQ, token.LE, token.GE, token.ARROW, token.EOF}, kinds(toks))
}

func TestInvalidFloatTrailingDot(t *testing.T) {
	toks := lexer.Filter(lexer.New("5.", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.ErrInvalidFloat, toks[0].Kind)
}

func TestValidFloat(t *testing.T) {
	toks := lexer.Filter(lexer.New("3.14", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.FLOAT_LIT, toks[0].Kind)
	assert.Equal(t, "3.14", toks[0].Lexeme)
}

func TestColourLiteral(t *testing.T) {
	toks := lexer.Filter(lexer.New("#ff00aa", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.COLOUR_LIT, toks[0].Kind)
	v, err := lexer.ParseColourLexeme(toks[0].Lexeme)
	require.NoError(t, err)
	assert.Equal(t, int64(0xff00aa), v)
}

func TestInvalidColourShortRun(t *testing.T) {
	toks := lexer.Filter(lexer.New("#ff0", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.ErrInvalidColour, toks[0].Kind)
}

func TestInvalidColourNonHexRun(t *testing.T) {
	toks := lexer.Filter(lexer.New("#GG0000", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.ErrInvalidColour, toks[0].Kind)
}

func TestLineCommentFiltered(t *testing.T) {
	toks := lexer.Filter(lexer.New("let // trailing comment\nx", nil).Tokenize())
	require.Len(t, toks, 3)
	assert.Equal(t, []token.Kind{token.LET, token.IDENTIFIER, token.EOF}, kinds(toks))
}

func TestUnterminatedBlockComment(t *testing.T) {
	toks := lexer.Filter(lexer.New("/* never closes", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.ErrUnterminatedComment, toks[0].Kind)
}

func TestNestedBlockCommentIsError(t *testing.T) {
	toks := lexer.Filter(lexer.New("/* outer /* inner */", nil).Tokenize())
	require.NotEmpty(t, toks)
	assert.Equal(t, token.ErrNestedComment, toks[0].Kind)
}

func TestStrayCommentClose(t *testing.T) {
	toks := lexer.Filter(lexer.New("*/", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.ErrStrayCommentClose, toks[0].Kind)
}

func TestInvalidCharBang(t *testing.T) {
	toks := lexer.Filter(lexer.New("!", nil).Tokenize())
	require.Len(t, toks, 2)
	assert.Equal(t, token.ErrInvalidChar, toks[0].Kind)
}

// TestPositionsMonotonic checks token position monotonicity: no token,
// EOF included, starts before the token preceding it.
func TestPositionsMonotonic(t *testing.T) {
	src := "let a: int = 1;\nlet b: float = 2.5;\nfun f(x: int) -> int { return x; }\n"
	toks := lexer.New(src, nil).Tokenize()
	for i := 1; i < len(toks); i++ {
		assert.True(t, toks[i-1].Pos.Less(toks[i].Pos) || toks[i-1].Pos == toks[i].Pos,
			"token %d (%v) must not start after token %d (%v)", i, toks[i].Pos, i-1, toks[i-1].Pos)
	}
}

func TestTokenizeEndsWithEOF(t *testing.T) {
	toks := lexer.New("", nil).Tokenize()
	require.Len(t, toks, 1)
	assert.Equal(t, token.EOF, toks[0].Kind)
}
