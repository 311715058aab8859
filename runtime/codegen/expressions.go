package codegen

import (
	"strconv"

	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/core/types"
)

func (g *Generator) genExpr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.Literal:
		g.genLiteral(n)
	case *ast.Identifier:
		slot, level, ok := g.scopes.lookup(n.Name)
		if !ok {
			g.fatal(n.Pos, "InternalError", "reference to undeclared variable %q reached codegen", n.Name)
			return
		}
		g.emitf("push [%d:%d]", slot.index, level)
	case *ast.BinaryOp:
		g.genBinaryOp(n)
	case *ast.UnaryOp:
		g.genUnaryOp(n)
	case *ast.Cast:
		g.genExpr(n.Expr)
	case *ast.FunctionCall:
		g.genCall(n)
	case *ast.IndexAccess:
		g.genIndexAccess(n)
	case *ast.Width:
		g.emit("width")
	case *ast.Height:
		g.emit("height")
	case *ast.Read:
		g.genExpr(n.Y)
		g.genExpr(n.X)
		g.emit("read")
	case *ast.RandI:
		g.genExpr(n.Max)
		g.emit("irnd")
	case *ast.ArrayLiteral:
		g.fatal(n.Pos, "InternalError", "array literal used outside a variable declaration")
	default:
		g.fatal(e.Position(), "InternalError", "unhandled expression type %T", e)
	}
}

func (g *Generator) genLiteral(n *ast.Literal) {
	switch n.Kind {
	case ast.IntLiteral, ast.ColourLiteral:
		g.emitf("push %d", n.Value)
	case ast.FloatLiteral:
		g.emitf("push %s", strconv.FormatFloat(n.Value.(float64), 'f', -1, 64))
	case ast.BoolLiteral:
		if n.Value.(bool) {
			g.emit("push 1")
		} else {
			g.emit("push 0")
		}
	}
}

// binOpcodes maps source operators to their PArIR mnemonic. `!=` has no
// direct instruction (lowered as eq;not, spec.md §9).
var binOpcodes = map[token.Kind]string{
	token.PLUS: "add", token.MINUS: "sub", token.STAR: "mul", token.SLASH: "div", token.PERCENT: "mod",
	token.LT: "lt", token.GT: "gt", token.LE: "le", token.GE: "ge", token.EQ: "eq",
	token.AND: "and", token.OR: "or",
}

// genBinaryOp always evaluates the right operand first, then the left
// (spec.md §4.4.6): this leaves the left operand on top of the stack so
// non-commutative opcodes compute `left op right`, and is applied
// uniformly to commutative operators too for consistency.
func (g *Generator) genBinaryOp(n *ast.BinaryOp) {
	g.genExpr(n.Right)
	g.genExpr(n.Left)
	if n.Op == token.NEQ {
		g.emit("eq")
		g.emit("not")
		return
	}
	op, ok := binOpcodes[n.Op]
	if !ok {
		g.fatal(n.Pos, "InternalError", "unhandled binary operator %s", n.Op)
		return
	}
	g.emit(op)
}

// genUnaryOp lowers unary `-` as `<operand> ; push 0 ; sub` (spec.md
// §4.4.5): operand is pushed first (playing the right-hand role), then
// 0 (playing the left-hand role, ending on top), so `sub` computes
// `0 - operand`, matching genBinaryOp's right-then-left convention.
func (g *Generator) genUnaryOp(n *ast.UnaryOp) {
	switch n.Op {
	case token.MINUS:
		g.genExpr(n.Operand)
		g.emit("push 0")
		g.emit("sub")
	case token.NOT:
		g.genExpr(n.Operand)
		g.emit("not")
	default:
		g.fatal(n.Pos, "InternalError", "unhandled unary operator %s", n.Op)
	}
}

func (g *Generator) genIndexAccess(n *ast.IndexAccess) {
	base, ok := n.Base.(*ast.Identifier)
	if !ok {
		g.fatal(n.Pos, "InternalError", "index access base is not an identifier")
		return
	}
	slot, level, ok := g.scopes.lookup(base.Name)
	if !ok {
		g.fatal(n.Pos, "InternalError", "index access on undeclared array %q reached codegen", base.Name)
		return
	}
	g.genExpr(n.Index)
	g.emitf("push +[%d:%d]", slot.index, level)
}

// genCall lowers a call: arguments are pushed in reverse positional
// order (arrays element-by-element, also reversed), then arg-count,
// then the callee's label, then `call` (spec.md §4.4.5).
func (g *Generator) genCall(fc *ast.FunctionCall) {
	fsym := g.funcs[fc.Name]
	if fsym == nil {
		g.fatal(fc.Pos, "InternalError", "call to undeclared function %q reached codegen", fc.Name)
		return
	}
	for i := len(fc.Args) - 1; i >= 0; i-- {
		g.genCallArg(fc.Args[i], fsym.ParamTypes[i])
	}
	g.emitf("push %d", len(fc.Args))
	g.emitf("push .%s", fc.Name)
	g.emit("call")
}

// genCallArg pushes one argument. Array-typed arguments are expanded
// element-by-element (last to first) via base-indexed element reads,
// since PArIR has no first-class array value to push as a unit.
func (g *Generator) genCallArg(arg ast.Expression, paramType types.Type) {
	arr, isArr := paramType.(types.ArrayType)
	if !isArr {
		g.genExpr(arg)
		return
	}
	ident, ok := arg.(*ast.Identifier)
	if !ok {
		g.fatal(arg.Position(), "InternalError", "array argument must be a variable reference")
		return
	}
	slot, level, ok := g.scopes.lookup(ident.Name)
	if !ok {
		g.fatal(arg.Position(), "InternalError", "array argument references undeclared variable %q", ident.Name)
		return
	}
	for i := arr.Size - 1; i >= 0; i-- {
		g.emitf("push %d", i)
		g.emitf("push +[%d:%d]", slot.index, level)
	}
}
