// Package ast defines PArL's abstract syntax tree (spec.md §3.3): a
// tagged union of statement and expression node types, pattern-matched
// by the analyzer and code generator via Go type switches. There is no
// visitor/accept indirection — per spec.md §9's "AST polymorphism" note,
// a systems-language tagged union replaces the double-dispatch visitor
// the original Python source uses.
package ast

import (
	"fmt"
	"strings"

	"github.com/parl-lang/parlc/core/token"
)

// Node is implemented by every AST node; it carries source position for
// diagnostics.
type Node interface {
	Position() token.Position
	String() string
}

// Statement is implemented by every statement-level node.
type Statement interface {
	Node
	stmtNode()
}

// Expression is implemented by every expression-level node. Expressions
// are pointer types so that a semantic-analysis type map
// (map[ast.Expression]types.Type) can key on node identity without the
// analyzer rewriting the tree itself (spec.md §4.3 contract).
type Expression interface {
	Node
	exprNode()
}

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	Statements []Statement
}

func (p *Program) Position() token.Position {
	if len(p.Statements) == 0 {
		return token.Position{Line: 1, Column: 1}
	}
	return p.Statements[0].Position()
}

func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// FormalParameter is a single `name: Type` entry in a function's
// parameter list. It is not itself a Statement; FunctionDecl owns a
// slice of these.
type FormalParameter struct {
	Name string
	Type TypeExpr
	Pos  token.Position
}

func (f FormalParameter) String() string { return fmt.Sprintf("%s: %s", f.Name, f.Type.String()) }

// TypeExpr is the parsed form of a type annotation (spec.md grammar
// rule `Type ::= BaseType ["[" [intLit] "]"]`), resolved to a
// core/types.Type by the analyzer.
type TypeExpr struct {
	Base      token.Kind // one of INT_TYPE, FLOAT_TYPE, BOOL_TYPE, COLOUR_TYPE
	IsArray   bool
	HasSize   bool // true if a literal size was given, e.g. int[5]
	ArraySize int  // valid only if HasSize
	Pos       token.Position
}

func (t TypeExpr) String() string {
	if !t.IsArray {
		return t.Base.String()
	}
	if t.HasSize {
		return fmt.Sprintf("%s[%d]", t.Base.String(), t.ArraySize)
	}
	return fmt.Sprintf("%s[]", t.Base.String())
}

// VarDecl: `let name: Type [= initializer];`
type VarDecl struct {
	Name        string
	Type        TypeExpr
	Initializer Expression // nil if absent
	Pos         token.Position
}

func (*VarDecl) stmtNode() {}
func (d *VarDecl) Position() token.Position { return d.Pos }
func (d *VarDecl) String() string {
	if d.Initializer != nil {
		return fmt.Sprintf("let %s: %s = %s;", d.Name, d.Type.String(), d.Initializer.String())
	}
	return fmt.Sprintf("let %s: %s;", d.Name, d.Type.String())
}

// Assignment: `target = value;` where target is Identifier or IndexAccess.
type Assignment struct {
	Target Expression
	Value  Expression
	Pos    token.Position
}

func (*Assignment) stmtNode() {}
func (a *Assignment) Position() token.Position { return a.Pos }
func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s;", a.Target.String(), a.Value.String())
}

// If: `if (cond) then [else else]`
type If struct {
	Cond Expression
	Then *Block
	Else *Block // nil if absent
	Pos  token.Position
}

func (*If) stmtNode() {}
func (i *If) Position() token.Position { return i.Pos }
func (i *If) String() string {
	if i.Else != nil {
		return fmt.Sprintf("if (%s) %s else %s", i.Cond.String(), i.Then.String(), i.Else.String())
	}
	return fmt.Sprintf("if (%s) %s", i.Cond.String(), i.Then.String())
}

// While: `while (cond) body`
type While struct {
	Cond Expression
	Body *Block
	Pos  token.Position
}

func (*While) stmtNode() {}
func (w *While) Position() token.Position { return w.Pos }
func (w *While) String() string {
	return fmt.Sprintf("while (%s) %s", w.Cond.String(), w.Body.String())
}

// For: `for (init?; cond; update?) body`
type For struct {
	Init   Statement // *VarDecl or *Assignment, nil if absent
	Cond   Expression
	Update Statement // *Assignment, nil if absent
	Body   *Block
	Pos    token.Position
}

func (*For) stmtNode() {}
func (f *For) Position() token.Position { return f.Pos }
func (f *For) String() string {
	init, upd := "", ""
	if f.Init != nil {
		init = strings.TrimSuffix(f.Init.String(), ";")
	}
	if f.Update != nil {
		upd = strings.TrimSuffix(f.Update.String(), ";")
	}
	return fmt.Sprintf("for (%s; %s; %s) %s", init, f.Cond.String(), upd, f.Body.String())
}

// Return: `return [expr];`
type Return struct {
	Expr Expression // nil for a bare `return;` in a void function
	Pos  token.Position
}

func (*Return) stmtNode() {}
func (r *Return) Position() token.Position { return r.Pos }
func (r *Return) String() string {
	if r.Expr != nil {
		return fmt.Sprintf("return %s;", r.Expr.String())
	}
	return "return;"
}

// FunctionDecl: `fun name(params) -> ReturnType body`. IsVoid is true
// (and ReturnType is unset) when no `-> Type` clause was present (SPEC_FULL.md §4.7, Open
// Question 1).
type FunctionDecl struct {
	Name       string
	Params     []FormalParameter
	ReturnType TypeExpr
	IsVoid     bool
	Body       *Block
	Pos        token.Position
}

func (*FunctionDecl) stmtNode() {}
func (f *FunctionDecl) Position() token.Position { return f.Pos }
func (f *FunctionDecl) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	ret := "void"
	if !f.IsVoid {
		ret = f.ReturnType.String()
	}
	return fmt.Sprintf("fun %s(%s) -> %s %s", f.Name, strings.Join(parts, ", "), ret, f.Body.String())
}

// Block: `{ statements }`
type Block struct {
	Statements []Statement
	Pos        token.Position
}

func (*Block) stmtNode() {}
func (b *Block) Position() token.Position { return b.Pos }
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for _, s := range b.Statements {
		sb.WriteString(s.String())
		sb.WriteByte(' ')
	}
	sb.WriteString("}")
	return sb.String()
}

// ExprStmt wraps a bare FunctionCall used as a statement.
type ExprStmt struct {
	Call *FunctionCall
	Pos  token.Position
}

func (*ExprStmt) stmtNode() {}
func (e *ExprStmt) Position() token.Position { return e.Pos }
func (e *ExprStmt) String() string            { return e.Call.String() + ";" }

// Built-in statements (spec.md §3.3): Print, Delay, Write, WriteBox, Clear.

type Print struct {
	Value Expression
	Pos   token.Position
}

func (*Print) stmtNode() {}
func (p *Print) Position() token.Position { return p.Pos }
func (p *Print) String() string            { return fmt.Sprintf("__print %s;", p.Value.String()) }

type Delay struct {
	Value Expression
	Pos   token.Position
}

func (*Delay) stmtNode() {}
func (d *Delay) Position() token.Position { return d.Pos }
func (d *Delay) String() string            { return fmt.Sprintf("__delay %s;", d.Value.String()) }

type Write struct {
	X, Y, Color Expression
	Pos         token.Position
}

func (*Write) stmtNode() {}
func (w *Write) Position() token.Position { return w.Pos }
func (w *Write) String() string {
	return fmt.Sprintf("__write %s, %s, %s;", w.X.String(), w.Y.String(), w.Color.String())
}

type WriteBox struct {
	X, Y, W, H, Color Expression
	Pos               token.Position
}

func (*WriteBox) stmtNode() {}
func (w *WriteBox) Position() token.Position { return w.Pos }
func (w *WriteBox) String() string {
	return fmt.Sprintf("__write_box %s, %s, %s, %s, %s;", w.X.String(), w.Y.String(), w.W.String(), w.H.String(), w.Color.String())
}

type Clear struct {
	Color Expression
	Pos   token.Position
}

func (*Clear) stmtNode() {}
func (c *Clear) Position() token.Position { return c.Pos }
func (c *Clear) String() string            { return fmt.Sprintf("__clear %s;", c.Color.String()) }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// LiteralKind distinguishes the four literal forms.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	BoolLiteral
	ColourLiteral
)

// Literal is a literal value as written in source. Value holds the
// parsed Go representation: int64 for IntLiteral/ColourLiteral (colour
// stored as its 24-bit hex integer), float64 for FloatLiteral, bool for
// BoolLiteral.
type Literal struct {
	Kind  LiteralKind
	Value interface{}
	Pos   token.Position
}

func (*Literal) exprNode() {}
func (l *Literal) Position() token.Position { return l.Pos }
func (l *Literal) String() string {
	switch l.Kind {
	case ColourLiteral:
		return fmt.Sprintf("#%06x", l.Value)
	default:
		return fmt.Sprintf("%v", l.Value)
	}
}

// Identifier is a reference to a variable, parameter, or function name.
type Identifier struct {
	Name string
	Pos  token.Position
}

func (*Identifier) exprNode() {}
func (i *Identifier) Position() token.Position { return i.Pos }
func (i *Identifier) String() string            { return i.Name }

// BinaryOp: `left op right`.
type BinaryOp struct {
	Left, Right Expression
	Op          token.Kind
	Pos         token.Position
}

func (*BinaryOp) exprNode() {}
func (b *BinaryOp) Position() token.Position { return b.Pos }
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.String(), b.Right.String())
}

// UnaryOp: `-operand` or `not operand`.
type UnaryOp struct {
	Op      token.Kind
	Operand Expression
	Pos     token.Position
}

func (*UnaryOp) exprNode() {}
func (u *UnaryOp) Position() token.Position { return u.Pos }
func (u *UnaryOp) String() string            { return fmt.Sprintf("(%s%s)", u.Op.String(), u.Operand.String()) }

// Cast: `expr as TargetType`.
type Cast struct {
	Expr   Expression
	Target token.Kind // one of INT_TYPE, FLOAT_TYPE, BOOL_TYPE, COLOUR_TYPE
	Pos    token.Position
}

func (*Cast) exprNode() {}
func (c *Cast) Position() token.Position { return c.Pos }
func (c *Cast) String() string            { return fmt.Sprintf("(%s as %s)", c.Expr.String(), c.Target.String()) }

// FunctionCall: `name(args)`.
type FunctionCall struct {
	Name string
	Args []Expression
	Pos  token.Position
}

func (*FunctionCall) exprNode() {}
func (f *FunctionCall) Position() token.Position { return f.Pos }
func (f *FunctionCall) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(parts, ", "))
}

// IndexAccess: `base[index]`.
type IndexAccess struct {
	Base  Expression
	Index Expression
	Pos   token.Position
}

func (*IndexAccess) exprNode() {}
func (i *IndexAccess) Position() token.Position { return i.Pos }
func (i *IndexAccess) String() string            { return fmt.Sprintf("%s[%s]", i.Base.String(), i.Index.String()) }

// ArrayLiteral: `[e1, e2, ...]`.
type ArrayLiteral struct {
	Elements []Expression
	Pos      token.Position
}

func (*ArrayLiteral) exprNode() {}
func (a *ArrayLiteral) Position() token.Position { return a.Pos }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// Built-in expressions: Width, Height, Read, RandI.

type Width struct{ Pos token.Position }

func (*Width) exprNode()                 {}
func (w *Width) Position() token.Position { return w.Pos }
func (w *Width) String() string           { return "__width()" }

type Height struct{ Pos token.Position }

func (*Height) exprNode()                 {}
func (h *Height) Position() token.Position { return h.Pos }
func (h *Height) String() string           { return "__height()" }

type Read struct {
	X, Y Expression
	Pos  token.Position
}

func (*Read) exprNode() {}
func (r *Read) Position() token.Position { return r.Pos }
func (r *Read) String() string            { return fmt.Sprintf("__read(%s, %s)", r.X.String(), r.Y.String()) }

type RandI struct {
	Max Expression
	Pos token.Position
}

func (*RandI) exprNode() {}
func (r *RandI) Position() token.Position { return r.Pos }
func (r *RandI) String() string            { return fmt.Sprintf("__randi(%s)", r.Max.String()) }
