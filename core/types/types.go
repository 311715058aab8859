// Package types implements PArL's type system (spec.md §3.2): the four
// base types plus array types, and the fixed legal-cast relation used by
// the semantic analyzer.
package types

import "fmt"

// Base identifies one of PArL's four scalar base types.
type Base int

const (
	Int Base = iota
	Float
	Bool
	Colour
)

func (b Base) String() string {
	switch b {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Colour:
		return "colour"
	default:
		return fmt.Sprintf("Base(%d)", int(b))
	}
}

// Type is implemented by BaseType and ArrayType. It is a closed set by
// design: PArL has no user-defined types (spec.md §1 Non-goals).
type Type interface {
	String() string
	Equals(other Type) bool
	isType()
}

// BaseType wraps one of the four scalar base types as a Type.
type BaseType struct {
	Base Base
}

func (t BaseType) String() string { return t.Base.String() }

func (t BaseType) Equals(other Type) bool {
	o, ok := other.(BaseType)
	return ok && o.Base == t.Base
}

func (BaseType) isType() {}

// Convenience singletons for the four base types.
var (
	TInt    = BaseType{Base: Int}
	TFloat  = BaseType{Base: Float}
	TBool   = BaseType{Base: Bool}
	TColour = BaseType{Base: Colour}
)

// UnknownSize marks an ArrayType whose size was not given in source
// (`int[]`) and is still pending resolution from an initializer's
// length during semantic analysis (spec.md §3.2).
const UnknownSize = -1

// ArrayType is a fixed-size (or, before resolution, unknown-size) array
// of a single element type. Two ArrayTypes are equal iff both the
// element type and the size match (spec.md §3.2).
type ArrayType struct {
	Elem Type
	Size int // UnknownSize until resolved
}

func (t ArrayType) String() string {
	if t.Size == UnknownSize {
		return fmt.Sprintf("%s[]", t.Elem.String())
	}
	return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Size)
}

func (t ArrayType) Equals(other Type) bool {
	o, ok := other.(ArrayType)
	if !ok {
		return false
	}
	return t.Size == o.Size && t.Elem.Equals(o.Elem)
}

func (ArrayType) isType() {}

// IsNumeric reports whether t is int or float: the operand set accepted
// by arithmetic operators (spec.md §4.3).
func IsNumeric(t Type) bool {
	b, ok := t.(BaseType)
	return ok && (b.Base == Int || b.Base == Float)
}

// IsComparable reports whether t is one of the four base types: the
// operand set accepted by relational/equality operators (spec.md §4.3).
func IsComparable(t Type) bool {
	_, ok := t.(BaseType)
	return ok
}

// legalCasts is the fixed set of (from, to) base-type pairs spec.md
// §4.3 permits for an explicit `as` cast, beyond the reflexive case
// (identical types, always legal).
var legalCasts = map[[2]Base]bool{
	{Int, Float}:  true,
	{Float, Int}:  true,
	{Int, Bool}:   true,
	{Bool, Int}:   true,
	{Int, Colour}: true,
	{Colour, Int}: true,
}

// CastLegal reports whether a value of type from may be cast `as` to.
func CastLegal(from, to Type) bool {
	if from.Equals(to) {
		return true
	}
	fb, ok1 := from.(BaseType)
	tb, ok2 := to.(BaseType)
	if !ok1 || !ok2 {
		return false
	}
	return legalCasts[[2]Base{fb.Base, tb.Base}]
}

// Size returns the number of stack slots a value of type t occupies: 1
// for scalars, the declared/resolved length for arrays (spec.md §3.5).
func Size(t Type) int {
	if a, ok := t.(ArrayType); ok {
		if a.Size < 0 {
			return 0
		}
		return a.Size
	}
	return 1
}
