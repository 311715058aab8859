package config

import "github.com/parl-lang/parlc/core/ast"

// builtinStmtArity lists the built-in statements (spec.md §4.2) an
// aliased call may resolve to, and how many positional arguments each
// expects — mirrors the arg counts parser.parseBuiltinStatement parses
// directly from source.
var builtinStmtArity = map[string]int{
	"__print":     1,
	"__delay":     1,
	"__write":     3,
	"__write_box": 5,
	"__clear":     1,
}

// builtinExprArity lists the built-in expressions an aliased call may
// resolve to, mirroring expr.go's parsePrimary dispatch.
var builtinExprArity = map[string]int{
	"__width":  0,
	"__height": 0,
	"__read":   2,
	"__randi":  1,
}

// ApplyAliases rewrites every FunctionCall whose Name is a key of
// aliases to its mapped name, walking the whole program. Run before
// sema so aliased calls resolve exactly like their target.
//
// A call aliased to a built-in name is retagged to the matching
// built-in AST node (ast.Print, ast.Write, ast.Read, ...) rather than
// left as a renamed FunctionCall: builtins are never represented as
// FunctionCall nodes (the parser emits a dedicated node type for each
// one directly), so sema's function-call type-checking path would
// never find "__write" etc. in its user-function table and would
// always report it undeclared. Retagging here is what makes aliasing
// to a built-in behave exactly like writing the built-in directly.
// A call whose argument count doesn't match the built-in's arity is
// left as a plain renamed FunctionCall, which sema then reports as an
// undeclared function — aliasing doesn't paper over a wrong call.
func ApplyAliases(prog *ast.Program, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}
	for i, s := range prog.Statements {
		prog.Statements[i] = walkStmtAliases(s, aliases)
	}
}

func walkStmtAliases(s ast.Statement, aliases map[string]string) ast.Statement {
	switch n := s.(type) {
	case *ast.VarDecl:
		n.Initializer = walkExprAliases(n.Initializer, aliases)
	case *ast.Assignment:
		n.Target = walkExprAliases(n.Target, aliases)
		n.Value = walkExprAliases(n.Value, aliases)
	case *ast.If:
		n.Cond = walkExprAliases(n.Cond, aliases)
		n.Then = walkStmtAliases(n.Then, aliases).(*ast.Block)
		if n.Else != nil {
			n.Else = walkStmtAliases(n.Else, aliases).(*ast.Block)
		}
	case *ast.While:
		n.Cond = walkExprAliases(n.Cond, aliases)
		n.Body = walkStmtAliases(n.Body, aliases).(*ast.Block)
	case *ast.For:
		if n.Init != nil {
			n.Init = walkStmtAliases(n.Init, aliases)
		}
		n.Cond = walkExprAliases(n.Cond, aliases)
		if n.Update != nil {
			n.Update = walkStmtAliases(n.Update, aliases)
		}
		n.Body = walkStmtAliases(n.Body, aliases).(*ast.Block)
	case *ast.Return:
		if n.Expr != nil {
			n.Expr = walkExprAliases(n.Expr, aliases)
		}
	case *ast.FunctionDecl:
		n.Body = walkStmtAliases(n.Body, aliases).(*ast.Block)
	case *ast.Block:
		for i, st := range n.Statements {
			n.Statements[i] = walkStmtAliases(st, aliases)
		}
	case *ast.ExprStmt:
		return rewriteCallStatement(n.Call, aliases)
	case *ast.Print:
		n.Value = walkExprAliases(n.Value, aliases)
	case *ast.Delay:
		n.Value = walkExprAliases(n.Value, aliases)
	case *ast.Write:
		n.X = walkExprAliases(n.X, aliases)
		n.Y = walkExprAliases(n.Y, aliases)
		n.Color = walkExprAliases(n.Color, aliases)
	case *ast.WriteBox:
		n.X = walkExprAliases(n.X, aliases)
		n.Y = walkExprAliases(n.Y, aliases)
		n.W = walkExprAliases(n.W, aliases)
		n.H = walkExprAliases(n.H, aliases)
		n.Color = walkExprAliases(n.Color, aliases)
	case *ast.Clear:
		n.Color = walkExprAliases(n.Color, aliases)
	}
	return s
}

// rewriteCallStatement resolves a bare call statement (`name(...);`):
// its arguments are walked for nested aliases first, then the call
// itself is rewritten to a built-in statement node if its (possibly
// aliased) name and arity match one, or left as an ExprStmt otherwise.
func rewriteCallStatement(fc *ast.FunctionCall, aliases map[string]string) ast.Statement {
	resolveCall(fc, aliases)
	want, isBuiltin := builtinStmtArity[fc.Name]
	if !isBuiltin || len(fc.Args) != want {
		return &ast.ExprStmt{Call: fc, Pos: fc.Pos}
	}
	switch fc.Name {
	case "__print":
		return &ast.Print{Value: fc.Args[0], Pos: fc.Pos}
	case "__delay":
		return &ast.Delay{Value: fc.Args[0], Pos: fc.Pos}
	case "__write":
		return &ast.Write{X: fc.Args[0], Y: fc.Args[1], Color: fc.Args[2], Pos: fc.Pos}
	case "__write_box":
		return &ast.WriteBox{X: fc.Args[0], Y: fc.Args[1], W: fc.Args[2], H: fc.Args[3], Color: fc.Args[4], Pos: fc.Pos}
	case "__clear":
		return &ast.Clear{Color: fc.Args[0], Pos: fc.Pos}
	default:
		return &ast.ExprStmt{Call: fc, Pos: fc.Pos}
	}
}

// resolveCall applies the alias mapping to fc.Name and recurses into
// its arguments, without yet deciding whether fc becomes a built-in
// node (callers differ on what to do with the result).
func resolveCall(fc *ast.FunctionCall, aliases map[string]string) {
	if target, ok := aliases[fc.Name]; ok {
		fc.Name = target
	}
	for i, a := range fc.Args {
		fc.Args[i] = walkExprAliases(a, aliases)
	}
}

func walkExprAliases(e ast.Expression, aliases map[string]string) ast.Expression {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.BinaryOp:
		n.Left = walkExprAliases(n.Left, aliases)
		n.Right = walkExprAliases(n.Right, aliases)
		return n
	case *ast.UnaryOp:
		n.Operand = walkExprAliases(n.Operand, aliases)
		return n
	case *ast.Cast:
		n.Expr = walkExprAliases(n.Expr, aliases)
		return n
	case *ast.FunctionCall:
		return rewriteCallExpr(n, aliases)
	case *ast.IndexAccess:
		n.Base = walkExprAliases(n.Base, aliases)
		n.Index = walkExprAliases(n.Index, aliases)
		return n
	case *ast.ArrayLiteral:
		for i, el := range n.Elements {
			n.Elements[i] = walkExprAliases(el, aliases)
		}
		return n
	case *ast.Read:
		n.X = walkExprAliases(n.X, aliases)
		n.Y = walkExprAliases(n.Y, aliases)
		return n
	case *ast.RandI:
		n.Max = walkExprAliases(n.Max, aliases)
		return n
	default:
		return e
	}
}

// rewriteCallExpr resolves a call used in expression position: it is
// retagged to a built-in expression node (ast.Width, ast.Read, ...) if
// its (possibly aliased) name and arity match one, mirroring
// rewriteCallStatement for the statement case.
func rewriteCallExpr(fc *ast.FunctionCall, aliases map[string]string) ast.Expression {
	resolveCall(fc, aliases)
	want, isBuiltin := builtinExprArity[fc.Name]
	if !isBuiltin || len(fc.Args) != want {
		return fc
	}
	switch fc.Name {
	case "__width":
		return &ast.Width{Pos: fc.Pos}
	case "__height":
		return &ast.Height{Pos: fc.Pos}
	case "__read":
		return &ast.Read{X: fc.Args[0], Y: fc.Args[1], Pos: fc.Pos}
	case "__randi":
		return &ast.RandI{Max: fc.Args[0], Pos: fc.Pos}
	default:
		return fc
	}
}
