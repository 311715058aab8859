package lexer

// Character category tables (spec.md §4.1): ASCII is partitioned into
// categories once at package init, mirroring the teacher's
// isWhitespace/isLetter/isDigit/singleCharTokens idiom
// (runtime/lexer/lexer.go, pkgs/lexer/lexer.go) so that the hot
// character-classification path is a constant-time array lookup rather
// than a chain of comparisons.
var (
	isWhitespace [128]bool
	isLetter     [128]bool // all ASCII letters (hex letters included) and underscore: identifier starts
	isHexLetter  [128]bool // A-F, a-f
	isDigit      [128]bool
	isIdentPart  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r'
		isDigit[i] = '0' <= ch && ch <= '9'
		isHexLetter[i] = ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
		isLetter[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isLetter[i] || isDigit[i]
	}
}
