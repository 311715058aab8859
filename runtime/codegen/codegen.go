// Package codegen implements PArL's two-pass code generator (spec.md
// §4.4): it lowers a semantically-checked AST to an ordered sequence of
// PArIR instruction lines.
//
// Jump-target convention (resolving spec.md §4.4.1's ambiguity about
// what "current PC" means when a `push #PC+k` is evaluated): k is
// resolved relative to the address of the `push #PC+k` instruction
// itself, not the `jmp`/`cjmp` that follows it. This is the only
// reading consistent with the worked example in §4.4.1 (`push <H>`
// with H=3 landing exactly on `push <mainFrameSize>`, the 4th
// instruction, when the push itself is the 1st).
package codegen

import (
	"fmt"
	"log/slog"

	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/core/types"
	"github.com/parl-lang/parlc/internal/diagnostics"
	"github.com/parl-lang/parlc/runtime/sema"
)

// Options carries generation-time configuration.
type Options struct {
	// Checksum appends a trailing "; checksum: <hex>" comment computed
	// over the emitted instruction stream (--debug convenience, see
	// checksum.go).
	Checksum bool
}

// Generator lowers one AST to PArIR. Each Generator instance owns its
// own instruction buffer and scope stack; the dry-run pass used to size
// forward jumps over function bodies (spec.md §4.4.2) runs on a fresh,
// disposable Generator rather than saving and restoring this one's
// mutable state (spec.md §9's corrected idiom).
type Generator struct {
	funcs     map[string]*sema.FuncSymbol
	exprTypes map[ast.Expression]types.Type
	opts      Options
	logger    *slog.Logger

	buf    []string
	scopes *scopes
	diags  *diagnostics.Bag
}

// Generate runs the generator over prog, given a passing sema.Result.
// Callers must only call this on semantically valid programs (spec.md
// §4.4.7: the generator assumes semantic correctness).
func Generate(prog *ast.Program, res *sema.Result, opts Options, logger *slog.Logger) ([]string, *diagnostics.Bag) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		funcs: res.Funcs, exprTypes: res.ExprTypes, opts: opts, logger: logger,
		scopes: newScopes(), diags: &diagnostics.Bag{},
	}
	g.genProgram(prog)
	if opts.Checksum && !g.diags.HasErrors() {
		g.buf = append(g.buf, checksumTrailer(g.buf))
	}
	return g.buf, g.diags
}

func (g *Generator) fatal(pos token.Position, kind, format string, args ...interface{}) {
	g.diags.Add(diagnostics.New(diagnostics.CodeGen, kind, fmt.Sprintf(format, args...), pos))
}

func (g *Generator) emit(s string) int {
	g.buf = append(g.buf, s)
	return len(g.buf) - 1
}

func (g *Generator) emitf(format string, args ...interface{}) int {
	return g.emit(fmt.Sprintf(format, args...))
}

// jumpOffset formats the #PC±k operand for a jump whose push instruction
// sits at pushIdx, targeting targetIdx (both 0-based indices into the
// final instruction buffer).
func jumpOffset(pushIdx, targetIdx int) string {
	k := targetIdx - pushIdx
	if k >= 0 {
		return fmt.Sprintf("#PC+%d", k)
	}
	return fmt.Sprintf("#PC-%d", -k)
}

// patchJump overwrites the placeholder at pushIdx with the resolved
// jump offset to targetIdx (spec.md §4.4.2's backpatching idiom).
func (g *Generator) patchJump(pushIdx, targetIdx int) {
	g.buf[pushIdx] = "push " + jumpOffset(pushIdx, targetIdx)
}

func (g *Generator) resolveType(t ast.TypeExpr) types.Type {
	var base types.Type
	switch t.Base {
	case token.INT_TYPE:
		base = types.TInt
	case token.FLOAT_TYPE:
		base = types.TFloat
	case token.BOOL_TYPE:
		base = types.TBool
	case token.COLOUR_TYPE:
		base = types.TColour
	}
	if !t.IsArray {
		return base
	}
	size := types.UnknownSize
	if t.HasSize {
		size = t.ArraySize
	}
	return types.ArrayType{Elem: base, Size: size}
}

// ---------------------------------------------------------------------
// Program layout (spec.md §4.4.1)
// ---------------------------------------------------------------------

func (g *Generator) genProgram(prog *ast.Program) {
	var funcDecls []*ast.FunctionDecl
	var mainStmts []ast.Statement
	for _, s := range prog.Statements {
		if fd, ok := s.(*ast.FunctionDecl); ok {
			funcDecls = append(funcDecls, fd)
		} else {
			mainStmts = append(mainStmts, s)
		}
	}

	g.emit("push 3")
	g.emit("jmp")
	g.emit("halt")

	mainFrameSize := blockFrameSize(mainStmts, g.resolveType)
	g.emitf("push %d", mainFrameSize)
	g.emit("oframe")
	g.scopes.push()

	for _, fd := range funcDecls {
		bodyLen := g.dryRunFunctionLength(fd)
		skip := 3 + bodyLen
		g.emitf("push #PC+%d", skip)
		g.emit("jmp")
		g.emit("." + fd.Name)
		g.genFunctionBody(fd)
	}

	for _, s := range mainStmts {
		g.genStatement(s)
	}

	g.emit("cframe")
	g.emit("halt")
	g.scopes.pop()
}

// dryRunFunctionLength generates fd's body into a disposable Generator
// to measure its instruction count, without touching g's real buffer,
// scopes, or diagnostics (spec.md §4.4.2).
func (g *Generator) dryRunFunctionLength(fd *ast.FunctionDecl) int {
	tmp := &Generator{
		funcs: g.funcs, exprTypes: g.exprTypes, opts: g.opts, logger: g.logger,
		scopes: newScopes(), diags: &diagnostics.Bag{},
	}
	tmp.genFunctionBody(fd)
	return len(tmp.buf)
}

// genFunctionBody lowers one function: parameters occupy the low slots
// of the function's own frame (index 0..n-1, level 0 relative to the
// function itself), established implicitly by `call` — unlike main,
// a function body does not wrap itself in an explicit oframe/cframe
// pair (spec.md §4.4.1's layout diagram shows none); only nested blocks
// within it open their own frames.
func (g *Generator) genFunctionBody(fd *ast.FunctionDecl) {
	fsym := g.funcs[fd.Name]
	g.scopes.push()
	if fsym != nil {
		for i, p := range fd.Params {
			g.scopes.declare(p.Name, fsym.ParamTypes[i])
		}
	}
	for _, s := range fd.Body.Statements {
		g.genStatement(s)
	}
	if len(g.buf) == 0 || g.buf[len(g.buf)-1] != "ret" {
		g.emit("ret")
	}
	g.scopes.pop()
}

// genBlock lowers a bare lexical block (if/else arm, while/for body, or
// a standalone `{ ... }` statement): spec.md §4.4.4's "own oframe/cframe
// wrapping".
func (g *Generator) genBlock(b *ast.Block) {
	size := blockFrameSize(b.Statements, g.resolveType)
	g.emitf("push %d", size)
	g.emit("oframe")
	g.scopes.push()
	for _, s := range b.Statements {
		g.genStatement(s)
	}
	g.scopes.pop()
	g.emit("cframe")
}
