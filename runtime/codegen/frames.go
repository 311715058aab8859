package codegen

import (
	"github.com/parl-lang/parlc/core/ast"
	"github.com/parl-lang/parlc/core/types"
)

// varSlot is a variable's address within its declaring frame: the slot
// offset (index) plus its resolved type (needed to size arrays).
type varSlot struct {
	index int
	typ   types.Type
}

// frame is one oframe-managed block of storage: a map of declared names
// to slots, plus the next free slot offset.
type frame struct {
	vars map[string]*varSlot
	next int
}

// scopes mirrors sema.ScopeStack's lookup/level semantics exactly
// (spec.md §4.4.3: level = number of frames between use and
// declaration), but additionally assigns and remembers slot indices,
// which sema's symbol table has no need to track.
type scopes struct {
	frames []*frame
}

// newScopes starts with no open frame; the caller (genProgram for main,
// genFunctionBody for a function) pushes its own top-level frame.
func newScopes() *scopes {
	return &scopes{}
}

func (s *scopes) push() { s.frames = append(s.frames, &frame{vars: map[string]*varSlot{}}) }
func (s *scopes) pop()  { s.frames = s.frames[:len(s.frames)-1] }

// declare assigns the next free slot in the innermost frame to name,
// reserving types.Size(typ) slots (1 for scalars, N for a fixed-size
// array), and returns that slot.
func (s *scopes) declare(name string, typ types.Type) *varSlot {
	f := s.frames[len(s.frames)-1]
	slot := &varSlot{index: f.next, typ: typ}
	f.next += types.Size(typ)
	f.vars[name] = slot
	return slot
}

// lookup walks innermost to outermost; level is current_depth - d,
// identical in meaning to sema.ScopeStack.Lookup.
func (s *scopes) lookup(name string) (slot *varSlot, level int, ok bool) {
	for d := len(s.frames) - 1; d >= 0; d-- {
		if v, exists := s.frames[d].vars[name]; exists {
			return v, len(s.frames)-1-d, true
		}
	}
	return nil, 0, false
}

// blockFrameSize computes the oframe size for one lexical block: the
// count of scalar variables plus the sum of array sizes declared
// directly by this statement list, NOT recursing into nested
// if/while/for/block statements (those open their own frames). This is
// spec.md §9's corrected "main frame sizing" rule, generalized from
// main to every block, replacing the source's ad-hoc per-function
// heuristic.
func blockFrameSize(stmts []ast.Statement, resolve func(ast.TypeExpr) types.Type) int {
	total := 0
	for _, s := range stmts {
		if d, ok := s.(*ast.VarDecl); ok {
			t := resolve(d.Type)
			if arr, isArr := t.(types.ArrayType); isArr && arr.Size == types.UnknownSize {
				if lit, isLit := d.Initializer.(*ast.ArrayLiteral); isLit {
					arr.Size = len(lit.Elements)
					t = arr
				}
			}
			total += types.Size(t)
		}
	}
	return total
}
