// Package sema implements PArL's two-pass semantic analyzer (spec.md
// §4.3): function-signature forward declaration, then a full body walk
// performing scope resolution and static type checking.
package sema

import (
	"github.com/parl-lang/parlc/core/token"
	"github.com/parl-lang/parlc/core/types"
)

// VarSymbol binds a name to a variable: its type, declaration position,
// and whether it is a function parameter (spec.md §3.4).
type VarSymbol struct {
	Name      string
	Type      types.Type
	Pos       token.Position
	IsParam   bool
}

// FuncSymbol binds a name to a function signature. Function symbols
// live in one global table, not the scope stack (spec.md §3.4).
type FuncSymbol struct {
	Name       string
	ParamTypes []types.Type
	ParamNames []string
	ReturnType types.Type // nil for void
	IsVoid     bool
	Pos        token.Position
}

// ScopeStack is a list of maps indexed by scope depth (spec.md §3.4):
// lookup walks from the top (innermost) to the bottom (global);
// declaration always inserts at the top scope.
//
// The code generator keeps its own scope type (runtime/codegen's
// scopes, which also assigns slot indices) but computes the level with
// the same rule as Lookup: the number of frames between use and
// declaration.
type ScopeStack struct {
	scopes []map[string]*VarSymbol
}

// NewScopeStack creates a stack with a single (global) scope.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []map[string]*VarSymbol{make(map[string]*VarSymbol)}}
}

// Push opens a new innermost scope.
func (s *ScopeStack) Push() { s.scopes = append(s.scopes, make(map[string]*VarSymbol)) }

// Pop closes the innermost scope.
func (s *ScopeStack) Pop() { s.scopes = s.scopes[:len(s.scopes)-1] }

// Depth returns the current scope depth (0 = global only).
func (s *ScopeStack) Depth() int { return len(s.scopes) - 1 }

// DeclaredInCurrent reports whether name already exists in the
// innermost scope (used for Redeclaration checks).
func (s *ScopeStack) DeclaredInCurrent(name string) bool {
	_, ok := s.scopes[len(s.scopes)-1][name]
	return ok
}

// Declare inserts name at the innermost scope. Callers must check
// DeclaredInCurrent first to report Redeclaration.
func (s *ScopeStack) Declare(sym *VarSymbol) { s.scopes[len(s.scopes)-1][sym.Name] = sym }

// Lookup walks from innermost to outermost scope. On a hit at stack
// depth d, Level is current_depth - d (spec.md §3.5, §4.4.3): the
// number of frames between the use site and the declaring frame.
func (s *ScopeStack) Lookup(nm string) (sym *VarSymbol, level int, ok bool) {
	for d := len(s.scopes) - 1; d >= 0; d-- {
		if v, exists := s.scopes[d][nm]; exists {
			return v, len(s.scopes) - 1 - d, true
		}
	}
	return nil, 0, false
}

// AllNames returns every variable name visible from the innermost
// scope outward, used to build "did you mean" candidate lists for
// UndeclaredVariable diagnostics.
func (s *ScopeStack) AllNames() []string {
	var names []string
	for d := len(s.scopes) - 1; d >= 0; d-- {
		for nm := range s.scopes[d] {
			names = append(names, nm)
		}
	}
	return names
}

// Clone returns a ScopeStack sharing no mutable state with s: each
// scope map is copied. The code generator does not use it; its dry run
// starts from a fresh scope stack of its own.
func (s *ScopeStack) Clone() *ScopeStack {
	clone := make([]map[string]*VarSymbol, len(s.scopes))
	for i, m := range s.scopes {
		cm := make(map[string]*VarSymbol, len(m))
		for k, v := range m {
			cm[k] = v
		}
		clone[i] = cm
	}
	return &ScopeStack{scopes: clone}
}
