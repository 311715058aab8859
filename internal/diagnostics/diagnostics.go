// Package diagnostics provides the single cross-phase error type used
// by every stage of the compiler (spec.md §7): lexical, syntactic,
// semantic, and code-gen diagnostics all share one shape, each carrying
// a (line, col) position and a one-sentence message.
//
// Grounded on pkgs/errors.DevCmdError (typed-string Kind + context map)
// and pkgs/parser.ParseError's Rust/Clang-style snippet rendering,
// merged into one type because spec.md requires one consistent
// diagnostic contract across all four phases rather than the teacher's
// two separate ones.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/parl-lang/parlc/core/token"
)

// Phase identifies which compiler stage raised a Diagnostic.
type Phase int

const (
	Lexical Phase = iota
	Syntactic
	Semantic
	CodeGen
)

func (p Phase) String() string {
	switch p {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntax"
	case Semantic:
		return "semantic"
	case CodeGen:
		return "codegen"
	default:
		return "error"
	}
}

// Diagnostic is a single user-visible error: a phase, a short kind tag
// (e.g. "TypeMismatch", "UnexpectedToken"), a message, and the source
// position it pertains to.
type Diagnostic struct {
	Phase   Phase
	Kind    string
	Message string
	Pos     token.Position
	Cause   error
}

func (d *Diagnostic) Error() string {
	if d.Cause != nil {
		return fmt.Sprintf("%s:%d:%d: %s: %s (%v)", "", d.Pos.Line, d.Pos.Column, d.Kind, d.Message, d.Cause)
	}
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

// New constructs a Diagnostic.
func New(phase Phase, kind, message string, pos token.Position) *Diagnostic {
	return &Diagnostic{Phase: phase, Kind: kind, Message: message, Pos: pos}
}

// Wrap constructs a Diagnostic around a causing error.
func Wrap(phase Phase, kind, message string, pos token.Position, cause error) *Diagnostic {
	return &Diagnostic{Phase: phase, Kind: kind, Message: message, Pos: pos, Cause: cause}
}

// Bag accumulates diagnostics for one compilation phase. Lexer/parser/
// analyzer keep accumulating after an error (spec.md §7's "panic-mode"
// and "full tree walk" policies); the generator is only ever entered on
// a clean analysis and stops at its first diagnostic.
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

func (b *Bag) Items() []*Diagnostic { return b.items }

func (b *Bag) Len() int { return len(b.items) }

// Render formats every diagnostic in the bag as a numbered list with a
// Rust/Clang-style source snippet, grounded on pkgs/parser.ParseError's
// createCodeSnippet.
func (b *Bag) Render(source string) string {
	lines := strings.Split(source, "\n")
	var sb strings.Builder
	for i, d := range b.items {
		fmt.Fprintf(&sb, "%d) %s error: %s\n", i+1, d.Phase, d.Message)
		if d.Pos.Line >= 1 && d.Pos.Line <= len(lines) {
			lineContent := lines[d.Pos.Line-1]
			fmt.Fprintf(&sb, "  --> %d:%d\n", d.Pos.Line, d.Pos.Column)
			sb.WriteString("   |\n")
			fmt.Fprintf(&sb, "%2d | %s\n", d.Pos.Line, lineContent)
			sb.WriteString("   | ")
			if d.Pos.Column > 0 && d.Pos.Column <= len(lineContent)+1 {
				sb.WriteString(strings.Repeat(" ", d.Pos.Column-1) + "^\n")
			} else {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
