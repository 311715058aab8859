package sema

import (
	"fmt"
	"log/slog"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/core/types"
	"github.com/parl-lang/parlc/internal/diagnostics"
)

// Result is the output of Analyze: a well-typed verdict, the
// accumulated diagnostics, and the side-table of resolved expression
// types codegen consults (spec.md §4.3's "does not rewrite the AST"
// contract).
type Result struct {
	Funcs     map[string]*FuncSymbol
	ExprTypes map[ast.Expression]types.Type
	Diags     *diagnostics.Bag
}

func (r *Result) OK() bool { return !r.Diags.HasErrors() }

// Options carries the .parlrc.yaml-configurable knobs that affect
// type-checking (SPEC_FULL.md §4.7, Open Question 3).
type Options struct {
	AllowFloatMod bool
}

// Analyzer runs the two-pass semantic analysis of spec.md §4.3.
type Analyzer struct {
	opts    Options
	logger  *slog.Logger
	diags   *diagnostics.Bag
	funcs   map[string]*FuncSymbol
	types   map[ast.Expression]types.Type
	scopes  *ScopeStack
	curFunc *FuncSymbol // nil at top level
}

// New creates an Analyzer. A nil logger defaults to slog.Default().
func New(opts Options, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		opts:   opts,
		logger: logger,
		diags:  &diagnostics.Bag{},
		funcs:  make(map[string]*FuncSymbol),
		types:  make(map[ast.Expression]types.Type),
		scopes: NewScopeStack(),
	}
}

// Analyze performs both passes over prog and returns the Result.
func Analyze(prog *ast.Program, opts Options, logger *slog.Logger) *Result {
	a := New(opts, logger)
	a.passOne(prog)
	a.passTwo(prog)
	return &Result{Funcs: a.funcs, ExprTypes: a.types, Diags: a.diags}
}

func (a *Analyzer) errorf(pos token.Position, kind, format string, args ...interface{}) {
	a.diags.Add(diagnostics.New(diagnostics.Semantic, kind, fmt.Sprintf(format, args...), pos))
}

// ---------------------------------------------------------------------
// Pass 1: forward function-signature registration
// ---------------------------------------------------------------------

func (a *Analyzer) passOne(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		fd, ok := stmt.(*ast.FunctionDecl)
		if !ok {
			continue
		}
		if _, dup := a.funcs[fd.Name]; dup {
			a.errorf(fd.Pos, "Redeclaration", "function %q is already declared", fd.Name)
			continue
		}
		paramTypes := make([]types.Type, len(fd.Params))
		paramNames := make([]string, len(fd.Params))
		seen := map[string]bool{}
		for i, p := range fd.Params {
			t, err := a.resolveTypeExpr(p.Type)
			if err != nil {
				a.errorf(p.Pos, "InvalidType", "parameter %q: %v", p.Name, err)
			}
			if seen[p.Name] {
				a.errorf(p.Pos, "Redeclaration", "duplicate parameter name %q", p.Name)
			}
			seen[p.Name] = true
			paramTypes[i] = t
			paramNames[i] = p.Name
		}
		var retType types.Type
		if !fd.IsVoid {
			t, err := a.resolveTypeExpr(fd.ReturnType)
			if err != nil {
				a.errorf(fd.Pos, "InvalidType", "function %q return type: %v", fd.Name, err)
			}
			retType = t
		}
		a.funcs[fd.Name] = &FuncSymbol{
			Name: fd.Name, ParamTypes: paramTypes, ParamNames: paramNames,
			ReturnType: retType, IsVoid: fd.IsVoid, Pos: fd.Pos,
		}
	}
}

// resolveTypeExpr converts a parsed TypeExpr to a core/types.Type.
// Array literal sizing ambiguity (unknown-size declarations) is
// resolved later, at the VarDecl site, not here.
func (a *Analyzer) resolveTypeExpr(t ast.TypeExpr) (types.Type, error) {
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
	default:
		return nil, fmt.Errorf("unknown base type %s", t.Base)
	}
	if !t.IsArray {
		return base, nil
	}
	size := types.UnknownSize
	if t.HasSize {
		size = t.ArraySize
	}
	return types.ArrayType{Elem: base, Size: size}, nil
}

// ---------------------------------------------------------------------
// Pass 2: body walk
// ---------------------------------------------------------------------

func (a *Analyzer) passTwo(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDecl:
			a.checkFunctionDecl(s)
		default:
			a.checkStatement(stmt)
		}
	}
}

func (a *Analyzer) checkFunctionDecl(fd *ast.FunctionDecl) {
	fsym := a.funcs[fd.Name]
	prevFunc := a.curFunc
	a.curFunc = fsym
	a.scopes.Push()
	if fsym != nil {
		for i, p := range fd.Params {
			a.scopes.Declare(&VarSymbol{Name: p.Name, Type: fsym.ParamTypes[i], Pos: p.Pos, IsParam: true})
		}
	}
	a.checkBlockStatements(fd.Body)
	if fsym != nil && !fsym.IsVoid && !containsReturn(fd.Body) {
		a.errorf(fd.Pos, "MissingReturn", "function %q must return a value of type %s on every path", fd.Name, fsym.ReturnType)
	}
	a.scopes.Pop()
	a.curFunc = prevFunc
}

// containsReturn implements spec.md §4.3's structural (non-CFG) lower
// bound: true if the body contains at least one reachable-looking
// return statement anywhere in its statement tree, per SPEC_FULL.md
// §4.7 Open Question 4's explicit non-goal of full path coverage.
func containsReturn(b *ast.Block) bool {
	for _, s := range b.Statements {
		if stmtContainsReturn(s) {
			return true
		}
	}
	return false
}

func stmtContainsReturn(s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return containsReturn(n)
	case *ast.If:
		if n.Else == nil {
			return containsReturn(n.Then)
		}
		return containsReturn(n.Then) || containsReturn(n.Else)
	case *ast.While:
		return containsReturn(n.Body)
	case *ast.For:
		return containsReturn(n.Body)
	default:
		return false
	}
}

// checkBlockStatements walks a block's statements in the block's own
// scope (used for function bodies and bare blocks; For opens its own
// extra scope around this, per spec.md §4.3).
func (a *Analyzer) checkBlockStatements(b *ast.Block) {
	for _, s := range b.Statements {
		a.checkStatement(s)
	}
}

func (a *Analyzer) checkBlock(b *ast.Block) {
	a.scopes.Push()
	a.checkBlockStatements(b)
	a.scopes.Pop()
}

func (a *Analyzer) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		a.checkVarDecl(s)
	case *ast.Assignment:
		a.checkAssignment(s)
	case *ast.If:
		a.checkIf(s)
	case *ast.While:
		a.checkWhile(s)
	case *ast.For:
		a.checkFor(s)
	case *ast.Return:
		a.checkReturn(s)
	case *ast.Block:
		a.checkBlock(s)
	case *ast.ExprStmt:
		a.typeOfFunctionCall(s.Call, false)
	case *ast.Print:
		a.checkPrint(s)
	case *ast.Delay:
		a.checkBuiltinArgs("__delay", s.Pos, []ast.Expression{s.Value}, []types.Type{types.TInt})
	case *ast.Write:
		a.checkBuiltinArgs("__write", s.Pos, []ast.Expression{s.X, s.Y, s.Color}, []types.Type{types.TInt, types.TInt, types.TColour})
	case *ast.WriteBox:
		a.checkBuiltinArgs("__write_box", s.Pos, []ast.Expression{s.X, s.Y, s.W, s.H, s.Color},
			[]types.Type{types.TInt, types.TInt, types.TInt, types.TInt, types.TColour})
	case *ast.Clear:
		a.checkBuiltinArgs("__clear", s.Pos, []ast.Expression{s.Color}, []types.Type{types.TColour})
	default:
		a.errorf(stmt.Position(), "InternalError", "unhandled statement type %T", stmt)
	}
}

func (a *Analyzer) checkVarDecl(d *ast.VarDecl) {
	if a.scopes.DeclaredInCurrent(d.Name) {
		a.errorf(d.Pos, "Redeclaration", "%q is already declared in this scope", d.Name)
	}
	declType, err := a.resolveTypeExpr(d.Type)
	if err != nil {
		a.errorf(d.Pos, "InvalidType", "%v", err)
		return
	}
	if d.Initializer != nil {
		initType := a.typeOf(d.Initializer)
		if arrLit, isLit := d.Initializer.(*ast.ArrayLiteral); isLit {
			if declArr, isArr := declType.(types.ArrayType); isArr && declArr.Size == types.UnknownSize {
				declArr.Size = len(arrLit.Elements)
				declType = declArr
				if litArr, ok := initType.(types.ArrayType); ok {
					litArr.Size = len(arrLit.Elements)
					initType = litArr
				}
			}
		}
		if initType != nil && !declType.Equals(initType) {
			a.errorf(d.Pos, "TypeMismatch", "cannot initialize %q of type %s with value of type %s", d.Name, declType, initType)
		}
	}
	a.scopes.Declare(&VarSymbol{Name: d.Name, Type: declType, Pos: d.Pos})
}

func (a *Analyzer) checkAssignment(asg *ast.Assignment) {
	valType := a.typeOf(asg.Value)
	switch target := asg.Target.(type) {
	case *ast.Identifier:
		sym, _, ok := a.scopes.Lookup(target.Name)
		if !ok {
			a.undeclaredVariable(target.Name, target.Pos)
			return
		}
		if _, isArr := sym.Type.(types.ArrayType); isArr {
			a.errorf(asg.Pos, "InvalidAssignment", "cannot assign to whole array %q", target.Name)
			return
		}
		if valType != nil && !sym.Type.Equals(valType) {
			a.errorf(asg.Pos, "TypeMismatch", "cannot assign value of type %s to %q of type %s", valType, target.Name, sym.Type)
		}
	case *ast.IndexAccess:
		baseType := a.typeOf(target.Base)
		idxType := a.typeOf(target.Index)
		if idxType != nil && !idxType.Equals(types.TInt) {
			a.errorf(target.Pos, "TypeMismatch", "array index must be int, got %s", idxType)
		}
		arr, isArr := baseType.(types.ArrayType)
		if baseType != nil && !isArr {
			a.errorf(target.Pos, "TypeMismatch", "cannot index non-array type %s", baseType)
			return
		}
		if isArr && valType != nil && !arr.Elem.Equals(valType) {
			a.errorf(asg.Pos, "TypeMismatch", "cannot assign value of type %s to array element of type %s", valType, arr.Elem)
		}
	default:
		a.errorf(asg.Pos, "InvalidAssignment", "invalid assignment target")
	}
}

func (a *Analyzer) checkIf(n *ast.If) {
	a.requireBool(n.Cond, "if condition")
	a.checkBlock(n.Then)
	if n.Else != nil {
		a.checkBlock(n.Else)
	}
}

func (a *Analyzer) checkWhile(n *ast.While) {
	a.requireBool(n.Cond, "while condition")
	a.checkBlock(n.Body)
}

// checkFor opens the loop-variable scope, then the body's own nested
// scope inside it (spec.md §4.3: "each For introduces a scope
// containing the loop variable plus the body block, which itself opens
// another scope").
func (a *Analyzer) checkFor(n *ast.For) {
	a.scopes.Push()
	if n.Init != nil {
		a.checkStatement(n.Init)
	}
	a.requireBool(n.Cond, "for condition")
	if n.Update != nil {
		a.checkStatement(n.Update)
	}
	a.checkBlock(n.Body)
	a.scopes.Pop()
}

func (a *Analyzer) checkReturn(n *ast.Return) {
	if a.curFunc == nil {
		a.errorf(n.Pos, "ReturnOutsideFunction", "return statement outside any function")
		return
	}
	if n.Expr == nil {
		if !a.curFunc.IsVoid {
			a.errorf(n.Pos, "TypeMismatch", "function %q must return a value of type %s", a.curFunc.Name, a.curFunc.ReturnType)
		}
		return
	}
	if a.curFunc.IsVoid {
		a.errorf(n.Pos, "TypeMismatch", "void function %q cannot return a value", a.curFunc.Name)
		return
	}
	exprType := a.typeOf(n.Expr)
	if exprType != nil && !a.curFunc.ReturnType.Equals(exprType) {
		a.errorf(n.Pos, "TypeMismatch", "function %q returns %s, got %s", a.curFunc.Name, a.curFunc.ReturnType, exprType)
	}
}

func (a *Analyzer) checkPrint(n *ast.Print) {
	t := a.typeOf(n.Value)
	if t == nil {
		return
	}
	if _, isArr := t.(types.ArrayType); isArr {
		a.errorf(n.Pos, "InvalidBuiltinArgs", "__print does not accept array values")
		return
	}
}

func (a *Analyzer) checkBuiltinArgs(name string, pos token.Position, args []ast.Expression, want []types.Type) {
	for i, arg := range args {
		t := a.typeOf(arg)
		if t != nil && !t.Equals(want[i]) {
			a.errorf(pos, "InvalidBuiltinArgs", "%s argument %d must be %s, got %s", name, i+1, want[i], t)
		}
	}
}

func (a *Analyzer) requireBool(e ast.Expression, what string) {
	t := a.typeOf(e)
	if t != nil && !t.Equals(types.TBool) {
		a.errorf(e.Position(), "TypeMismatch", "%s must be bool, got %s", what, t)
	}
}

// ---------------------------------------------------------------------
// Expression typing
// ---------------------------------------------------------------------

// typeOf computes and memoizes the type of e in the side-table. Returns
// nil if e is ill-typed; callers must nil-check before further checks
// to avoid cascading errors.
func (a *Analyzer) typeOf(e ast.Expression) types.Type {
	if t, ok := a.types[e]; ok {
		return t
	}
	t := a.computeType(e)
	if t != nil {
		a.types[e] = t
	}
	return t
}

func (a *Analyzer) computeType(e ast.Expression) types.Type {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.IntLiteral:
			return types.TInt
		case ast.FloatLiteral:
			return types.TFloat
		case ast.BoolLiteral:
			return types.TBool
		case ast.ColourLiteral:
			return types.TColour
		}
		return nil
	case *ast.Identifier:
		sym, _, ok := a.scopes.Lookup(n.Name)
		if !ok {
			a.undeclaredVariable(n.Name, n.Pos)
			return nil
		}
		return sym.Type
	case *ast.BinaryOp:
		return a.typeOfBinaryOp(n)
	case *ast.UnaryOp:
		return a.typeOfUnaryOp(n)
	case *ast.Cast:
		return a.typeOfCast(n)
	case *ast.FunctionCall:
		return a.typeOfFunctionCall(n, true)
	case *ast.IndexAccess:
		return a.typeOfIndexAccess(n)
	case *ast.ArrayLiteral:
		return a.typeOfArrayLiteral(n)
	case *ast.Width, *ast.Height:
		return types.TInt
	case *ast.Read:
		x := a.typeOf(n.X)
		y := a.typeOf(n.Y)
		if x != nil && !x.Equals(types.TInt) {
			a.errorf(n.Position(), "TypeMismatch", "__read x argument must be int, got %s", x)
		}
		if y != nil && !y.Equals(types.TInt) {
			a.errorf(n.Position(), "TypeMismatch", "__read y argument must be int, got %s", y)
		}
		return types.TColour
	case *ast.RandI:
		maxT := a.typeOf(n.Max)
		if maxT != nil && !maxT.Equals(types.TInt) {
			a.errorf(n.Pos, "TypeMismatch", "__randi argument must be int, got %s", maxT)
		}
		return types.TInt
	default:
		a.errorf(e.Position(), "InternalError", "unhandled expression type %T", e)
		return nil
	}
}

var arithmeticOps = map[token.Kind]bool{
	token.PLUS: true, token.MINUS: true, token.STAR: true, token.SLASH: true, token.PERCENT: true,
}

var comparisonOps = map[token.Kind]bool{
	token.LT: true, token.GT: true, token.LE: true, token.GE: true, token.EQ: true, token.NEQ: true,
}

func (a *Analyzer) typeOfBinaryOp(n *ast.BinaryOp) types.Type {
	lt := a.typeOf(n.Left)
	rt := a.typeOf(n.Right)
	if lt == nil || rt == nil {
		return nil
	}
	switch {
	case arithmeticOps[n.Op]:
		if !lt.Equals(rt) || !types.IsNumeric(lt) {
			a.errorf(n.Pos, "TypeMismatch", "operator %s requires two operands of the same numeric type, got %s and %s", n.Op, lt, rt)
			return nil
		}
		if n.Op == token.PERCENT && lt.Equals(types.TFloat) && !a.opts.AllowFloatMod {
			a.errorf(n.Pos, "TypeMismatch", "%% is not permitted on float operands (set allow_float_mod in .parlrc.yaml to enable)")
			return nil
		}
		return lt
	case comparisonOps[n.Op]:
		if !lt.Equals(rt) || !types.IsComparable(lt) {
			a.errorf(n.Pos, "TypeMismatch", "operator %s requires two operands of the same comparable type, got %s and %s", n.Op, lt, rt)
			return nil
		}
		return types.TBool
	case n.Op == token.AND || n.Op == token.OR:
		if !lt.Equals(types.TBool) || !rt.Equals(types.TBool) {
			a.errorf(n.Pos, "TypeMismatch", "operator %s requires two bool operands, got %s and %s", n.Op, lt, rt)
			return nil
		}
		return types.TBool
	default:
		a.errorf(n.Pos, "InternalError", "unhandled binary operator %s", n.Op)
		return nil
	}
}

func (a *Analyzer) typeOfUnaryOp(n *ast.UnaryOp) types.Type {
	t := a.typeOf(n.Operand)
	if t == nil {
		return nil
	}
	switch n.Op {
	case token.MINUS:
		if !types.IsNumeric(t) {
			a.errorf(n.Pos, "TypeMismatch", "unary - requires int or float, got %s", t)
			return nil
		}
		return t
	case token.NOT:
		if !t.Equals(types.TBool) {
			a.errorf(n.Pos, "TypeMismatch", "unary not requires bool, got %s", t)
			return nil
		}
		return types.TBool
	default:
		a.errorf(n.Pos, "InternalError", "unhandled unary operator %s", n.Op)
		return nil
	}
}

func (a *Analyzer) typeOfCast(n *ast.Cast) types.Type {
	srcType := a.typeOf(n.Expr)
	if srcType == nil {
		return nil
	}
	target, err := a.resolveTypeExpr(ast.TypeExpr{Base: n.Target})
	if err != nil {
		a.errorf(n.Pos, "InvalidType", "%v", err)
		return nil
	}
	if !types.CastLegal(srcType, target) {
		a.errorf(n.Pos, "InvalidCast", "cannot cast %s as %s", srcType, target)
		return nil
	}
	return target
}

func (a *Analyzer) typeOfIndexAccess(n *ast.IndexAccess) types.Type {
	baseType := a.typeOf(n.Base)
	idxType := a.typeOf(n.Index)
	if idxType != nil && !idxType.Equals(types.TInt) {
		a.errorf(n.Pos, "TypeMismatch", "array index must be int, got %s", idxType)
	}
	if baseType == nil {
		return nil
	}
	arr, ok := baseType.(types.ArrayType)
	if !ok {
		a.errorf(n.Pos, "TypeMismatch", "cannot index non-array type %s", baseType)
		return nil
	}
	return arr.Elem
}

func (a *Analyzer) typeOfArrayLiteral(n *ast.ArrayLiteral) types.Type {
	if len(n.Elements) == 0 {
		a.errorf(n.Pos, "InvalidArrayLiteral", "array literal must not be empty")
		return nil
	}
	elemType := a.typeOf(n.Elements[0])
	if elemType == nil {
		return nil
	}
	for _, el := range n.Elements[1:] {
		t := a.typeOf(el)
		if t != nil && !t.Equals(elemType) {
			a.errorf(el.Position(), "TypeMismatch", "array literal elements must share one type: expected %s, got %s", elemType, t)
		}
	}
	return types.ArrayType{Elem: elemType, Size: len(n.Elements)}
}

func (a *Analyzer) typeOfFunctionCall(n *ast.FunctionCall, wantsValue bool) types.Type {
	fsym, ok := a.funcs[n.Name]
	if !ok {
		a.undeclaredFunction(n.Name, n.Pos)
		for _, arg := range n.Args {
			a.typeOf(arg)
		}
		return nil
	}
	if len(n.Args) != len(fsym.ParamTypes) {
		a.errorf(n.Pos, "ArityMismatch", "function %q expects %d argument(s), got %d", n.Name, len(fsym.ParamTypes), len(n.Args))
	}
	for i, arg := range n.Args {
		argType := a.typeOf(arg)
		if i >= len(fsym.ParamTypes) {
			continue
		}
		if argType != nil && !fsym.ParamTypes[i].Equals(argType) {
			a.errorf(arg.Position(), "TypeMismatch", "function %q parameter %d (%s) expects %s, got %s",
				n.Name, i+1, fsym.ParamNames[i], fsym.ParamTypes[i], argType)
		}
	}
	if wantsValue && fsym.IsVoid {
		a.errorf(n.Pos, "TypeMismatch", "void function %q cannot be used as a value", n.Name)
		return nil
	}
	return fsym.ReturnType
}

// ---------------------------------------------------------------------
// "Did you mean" suggestions, grounded on runtime/planner.planner.go's
// identical use of fuzzy.RankFindFold for decorator-name suggestions.
// ---------------------------------------------------------------------

func (a *Analyzer) undeclaredVariable(name string, pos token.Position) {
	candidates := a.scopes.AllNames()
	msg := fmt.Sprintf("undeclared variable %q", name)
	if closest := closestMatch(name, candidates); closest != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, closest)
	}
	a.errorf(pos, "UndeclaredVariable", "%s", msg)
}

func (a *Analyzer) undeclaredFunction(name string, pos token.Position) {
	candidates := make([]string, 0, len(a.funcs))
	for fname := range a.funcs {
		candidates = append(candidates, fname)
	}
	msg := fmt.Sprintf("undeclared function %q", name)
	if closest := closestMatch(name, candidates); closest != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, closest)
	}
	a.errorf(pos, "UndeclaredFunction", "%s", msg)
}

func closestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}
