// Package astdump renders a PArL AST as a canonical snapshot: a textual
// form for --show-ast, and a binary CBOR form for external tooling
// (SPEC_FULL.md §4.6), grounded on core/planfmt/canonical.go's
// string-tagged union-node snapshot idiom.
package astdump

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/parl-lang/parlc/core/ast"
)

// Node is the canonical union-type snapshot of one AST node: a string
// Tag distinguishes the variant (mirroring canonical.go's CanonicalNode
// "Type" field), with the remaining fields populated according to Tag.
type Node struct {
	Tag      string `cbor:"tag"`
	Text     string `cbor:"text,omitempty"`     // literal/identifier/op text
	Children []Node `cbor:"children,omitempty"` // sub-expressions/statements, in source order
	Line     int    `cbor:"line"`
	Column   int    `cbor:"col"`
}

// Snapshot converts prog into its canonical Node-tree form.
func Snapshot(prog *ast.Program) Node {
	root := Node{Tag: "Program", Line: 1, Column: 1}
	for _, s := range prog.Statements {
		root.Children = append(root.Children, stmtNode(s))
	}
	return root
}

// Encode writes the CBOR-encoded snapshot of prog.
func Encode(prog *ast.Program) ([]byte, error) {
	return cbor.Marshal(Snapshot(prog))
}

func stmtNode(s ast.Statement) Node {
	n := Node{Line: s.Position().Line, Column: s.Position().Column}
	switch v := s.(type) {
	case *ast.VarDecl:
		n.Tag = "VarDecl"
		n.Text = v.Name + ": " + v.Type.String()
		if v.Initializer != nil {
			n.Children = []Node{exprNode(v.Initializer)}
		}
	case *ast.Assignment:
		n.Tag = "Assignment"
		n.Children = []Node{exprNode(v.Target), exprNode(v.Value)}
	case *ast.If:
		n.Tag = "If"
		n.Children = append(n.Children, exprNode(v.Cond), stmtNode(v.Then))
		if v.Else != nil {
			n.Children = append(n.Children, stmtNode(v.Else))
		}
	case *ast.While:
		n.Tag = "While"
		n.Children = []Node{exprNode(v.Cond), stmtNode(v.Body)}
	case *ast.For:
		n.Tag = "For"
		if v.Init != nil {
			n.Children = append(n.Children, stmtNode(v.Init))
		}
		n.Children = append(n.Children, exprNode(v.Cond))
		if v.Update != nil {
			n.Children = append(n.Children, stmtNode(v.Update))
		}
		n.Children = append(n.Children, stmtNode(v.Body))
	case *ast.Return:
		n.Tag = "Return"
		if v.Expr != nil {
			n.Children = []Node{exprNode(v.Expr)}
		}
	case *ast.FunctionDecl:
		n.Tag = "FunctionDecl"
		ret := "void"
		if !v.IsVoid {
			ret = v.ReturnType.String()
		}
		n.Text = fmt.Sprintf("%s -> %s", v.Name, ret)
		for _, p := range v.Params {
			n.Children = append(n.Children, Node{Tag: "Param", Text: p.Name + ": " + p.Type.String(), Line: p.Pos.Line, Column: p.Pos.Column})
		}
		n.Children = append(n.Children, stmtNode(v.Body))
	case *ast.Block:
		n.Tag = "Block"
		for _, st := range v.Statements {
			n.Children = append(n.Children, stmtNode(st))
		}
	case *ast.ExprStmt:
		n.Tag = "ExprStmt"
		n.Children = []Node{exprNode(v.Call)}
	case *ast.Print:
		n.Tag = "Print"
		n.Children = []Node{exprNode(v.Value)}
	case *ast.Delay:
		n.Tag = "Delay"
		n.Children = []Node{exprNode(v.Value)}
	case *ast.Write:
		n.Tag = "Write"
		n.Children = []Node{exprNode(v.X), exprNode(v.Y), exprNode(v.Color)}
	case *ast.WriteBox:
		n.Tag = "WriteBox"
		n.Children = []Node{exprNode(v.X), exprNode(v.Y), exprNode(v.W), exprNode(v.H), exprNode(v.Color)}
	case *ast.Clear:
		n.Tag = "Clear"
		n.Children = []Node{exprNode(v.Color)}
	default:
		n.Tag = fmt.Sprintf("Unknown(%T)", s)
	}
	return n
}

func exprNode(e ast.Expression) Node {
	n := Node{Line: e.Position().Line, Column: e.Position().Column}
	switch v := e.(type) {
	case *ast.Literal:
		n.Tag = "Literal"
		n.Text = v.String()
	case *ast.Identifier:
		n.Tag = "Identifier"
		n.Text = v.Name
	case *ast.BinaryOp:
		n.Tag = "BinaryOp:" + v.Op.String()
		n.Children = []Node{exprNode(v.Left), exprNode(v.Right)}
	case *ast.UnaryOp:
		n.Tag = "UnaryOp:" + v.Op.String()
		n.Children = []Node{exprNode(v.Operand)}
	case *ast.Cast:
		n.Tag = "Cast:" + v.Target.String()
		n.Children = []Node{exprNode(v.Expr)}
	case *ast.FunctionCall:
		n.Tag = "FunctionCall"
		n.Text = v.Name
		for _, a := range v.Args {
			n.Children = append(n.Children, exprNode(a))
		}
	case *ast.IndexAccess:
		n.Tag = "IndexAccess"
		n.Children = []Node{exprNode(v.Base), exprNode(v.Index)}
	case *ast.ArrayLiteral:
		n.Tag = "ArrayLiteral"
		for _, el := range v.Elements {
			n.Children = append(n.Children, exprNode(el))
		}
	case *ast.Width:
		n.Tag = "Width"
	case *ast.Height:
		n.Tag = "Height"
	case *ast.Read:
		n.Tag = "Read"
		n.Children = []Node{exprNode(v.X), exprNode(v.Y)}
	case *ast.RandI:
		n.Tag = "RandI"
		n.Children = []Node{exprNode(v.Max)}
	default:
		n.Tag = fmt.Sprintf("Unknown(%T)", e)
	}
	return n
}

// Text renders the snapshot as an indented textual tree, used by
// --show-ast (independent of, and always available alongside, the
// optional CBOR form).
func Text(prog *ast.Program) string {
	var out string
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		for i := 0; i < depth; i++ {
			out += "  "
		}
		out += fmt.Sprintf("%s", n.Tag)
		if n.Text != "" {
			out += fmt.Sprintf(" %q", n.Text)
		}
		out += fmt.Sprintf(" (%d:%d)\n", n.Line, n.Column)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(Snapshot(prog), 0)
	return out
}

var colourLiteral = regexp.MustCompile(`#[0-9a-fA-F]{6}`)

// TextWithHexCase is Text, with colour literals re-printed in upper or
// lower hex digits per .parlrc.yaml's hex_case knob (ast.Literal.String
// always emits lowercase, so this is a display-only post-pass).
func TextWithHexCase(prog *ast.Program, upper bool) string {
	text := Text(prog)
	if !upper {
		return text
	}
	return colourLiteral.ReplaceAllStringFunc(text, strings.ToUpper)
}
