package codegen

import (
	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/types"
)

func (g *Generator) genStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		g.genVarDecl(s)
	case *ast.Assignment:
		g.genAssignment(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.For:
		g.genFor(s)
	case *ast.Return:
		g.genReturn(s)
	case *ast.Block:
		g.genBlock(s)
	case *ast.ExprStmt:
		g.genCall(s.Call)
	case *ast.Print:
		g.genExpr(s.Value)
		g.emit("print")
	case *ast.Delay:
		g.genExpr(s.Value)
		g.emit("delay")
	case *ast.Write:
		g.genExpr(s.Color)
		g.genExpr(s.Y)
		g.genExpr(s.X)
		g.emit("write")
	case *ast.WriteBox:
		g.genExpr(s.Color)
		g.genExpr(s.W)
		g.genExpr(s.H)
		g.genExpr(s.Y)
		g.genExpr(s.X)
		g.emit("writebox")
	case *ast.Clear:
		g.genExpr(s.Color)
		g.emit("clear")
	default:
		g.fatal(stmt.Position(), "InternalError", "unhandled statement type %T", stmt)
	}
}

// genVarDecl lowers `let name: Type [= init];` (spec.md §4.4.4). With no
// initializer, only the slot is reserved; no instructions are emitted.
func (g *Generator) genVarDecl(d *ast.VarDecl) {
	declType := g.resolveType(d.Type)
	if arrLit, isLit := d.Initializer.(*ast.ArrayLiteral); isLit {
		if arr, isArr := declType.(types.ArrayType); isArr && arr.Size == types.UnknownSize {
			arr.Size = len(arrLit.Elements)
			declType = arr
		}
	}
	slot := g.scopes.declare(d.Name, declType)
	if d.Initializer == nil {
		return
	}
	if arrLit, isLit := d.Initializer.(*ast.ArrayLiteral); isLit {
		g.genArrayInit(arrLit, slot)
		return
	}
	g.genExpr(d.Initializer)
	g.emitf("push %d", slot.index)
	g.emitf("push %d", 0)
	g.emit("st")
}

// genArrayInit lowers `let name: T[] = [e0, e1, ...];`: elements are
// evaluated in reverse order so element 0 ends up at the lowest address
// after sta's LIFO pops (spec.md §4.4.4).
func (g *Generator) genArrayInit(lit *ast.ArrayLiteral, slot *varSlot) {
	for i := len(lit.Elements) - 1; i >= 0; i-- {
		g.genExpr(lit.Elements[i])
	}
	g.emitf("push %d", len(lit.Elements))
	g.emitf("push %d", slot.index)
	g.emitf("push %d", 0)
	g.emit("sta")
}

func (g *Generator) genAssignment(asg *ast.Assignment) {
	switch target := asg.Target.(type) {
	case *ast.Identifier:
		slot, level, ok := g.scopes.lookup(target.Name)
		if !ok {
			g.fatal(asg.Pos, "InternalError", "assignment to undeclared variable %q reached codegen", target.Name)
			return
		}
		g.genExpr(asg.Value)
		g.emitf("push %d", slot.index)
		g.emitf("push %d", level)
		g.emit("st")
	case *ast.IndexAccess:
		base, ok := target.Base.(*ast.Identifier)
		if !ok {
			g.fatal(asg.Pos, "InternalError", "array assignment base is not an identifier")
			return
		}
		slot, level, ok := g.scopes.lookup(base.Name)
		if !ok {
			g.fatal(asg.Pos, "InternalError", "assignment to undeclared array %q reached codegen", base.Name)
			return
		}
		g.genExpr(asg.Value)
		g.genExpr(target.Index)
		g.emitf("push %d", slot.index)
		g.emit("add")
		g.emitf("push %d", level)
		g.emit("st")
	default:
		g.fatal(asg.Pos, "InternalError", "unsupported assignment target %T", asg.Target)
	}
}

// genIf lowers spec.md §4.4.4's if/else pattern: the `push #PC+4 ;
// cjmp` skips the unconditional goto-else pair when the condition is
// true; otherwise control falls into the goto-else.
func (g *Generator) genIf(n *ast.If) {
	g.genExpr(n.Cond)
	g.emit("push #PC+4")
	g.emit("cjmp")
	elseJump := g.emit("push #PC+0")
	g.emit("jmp")
	g.genBlock(n.Then)
	if n.Else != nil {
		endJump := g.emit("push #PC+0")
		g.emit("jmp")
		g.patchJump(elseJump, len(g.buf))
		g.genBlock(n.Else)
		g.patchJump(endJump, len(g.buf))
	} else {
		g.patchJump(elseJump, len(g.buf))
	}
}

// genWhile lowers spec.md §4.4.4's while pattern: condition re-evaluated
// each iteration, backward jump to loopStart closes the loop.
func (g *Generator) genWhile(n *ast.While) {
	loopStart := len(g.buf)
	g.genExpr(n.Cond)
	g.emit("push #PC+4")
	g.emit("cjmp")
	exitJump := g.emit("push #PC+0")
	g.emit("jmp")
	g.genBlock(n.Body)
	backIdx := g.emit("push #PC+0")
	g.patchJump(backIdx, loopStart)
	g.emit("jmp")
	g.patchJump(exitJump, len(g.buf))
}

// genFor lowers spec.md §4.4.4's for pattern: a dedicated frame for the
// loop variable wraps the condition/body/update, mirroring the
// sema two-scope model (loop-variable scope containing the body block,
// which opens its own nested scope).
func (g *Generator) genFor(n *ast.For) {
	loopVarSize := 0
	if vd, ok := n.Init.(*ast.VarDecl); ok {
		loopVarSize = types.Size(g.resolveType(vd.Type))
	}
	g.emitf("push %d", loopVarSize)
	g.emit("oframe")
	g.scopes.push()
	if n.Init != nil {
		g.genStatement(n.Init)
	}

	condStart := len(g.buf)
	g.genExpr(n.Cond)
	g.emit("push #PC+4")
	g.emit("cjmp")
	exitJump := g.emit("push #PC+0")
	g.emit("jmp")
	g.genBlock(n.Body)
	if n.Update != nil {
		g.genStatement(n.Update)
	}
	backIdx := g.emit("push #PC+0")
	g.patchJump(backIdx, condStart)
	g.emit("jmp")
	g.patchJump(exitJump, len(g.buf))

	g.scopes.pop()
	g.emit("cframe")
}

func (g *Generator) genReturn(n *ast.Return) {
	if n.Expr != nil {
		g.genExpr(n.Expr)
	}
	g.emit("ret")
}
