// Package types defines the Type sort shared between HighIR and LowIR (§3.1),
// and the Coercion algebra inference inserts between them (§4.2).
//
// The substitution machinery (Subst, Apply, cycle-safe walk) follows the
// pattern in the funxy typesystem package (types.go's ApplyWithCycleCheck):
// a metavariable resolves through a chain of substitutions, with a visited
// set breaking accidental cycles rather than looping forever. Unlike funxy's
// typesystem, there is no notion of Kind here — every ground constructor in
// §3.1 is either nullary or a fixed-arity function/ref/closure, so there is
// no higher-kinded type former to classify.
package types

import (
	"fmt"
	"strings"
)

// Tag discriminates the Type variants in §3.1.
type Tag int

const (
	TInt Tag = iota
	TFloat
	TBool
	TString
	TArray
	TDynObject
	TAny
	TFunction
	TRef
	TClosure
	TEnv
	TMetavar
	TMissing
)

// Type is the tagged variant described in §3.1. It is a single struct rather
// than an interface-per-variant: the Go idiom the teacher reaches for when a
// sum type is this small and hot-path (cf. vm.Value's struct-with-ValueType
// tag instead of a boxed interface per case).
type Type struct {
	Tag Tag

	// Function / Closure
	Args   []Type
	Result *Type

	// Ref
	Inner *Type

	// Metavar
	MetaIndex int
}

func Int() Type       { return Type{Tag: TInt} }
func Float() Type     { return Type{Tag: TFloat} }
func Bool() Type      { return Type{Tag: TBool} }
func String() Type    { return Type{Tag: TString} }
func Array() Type     { return Type{Tag: TArray} }
func DynObject() Type { return Type{Tag: TDynObject} }
func Any() Type       { return Type{Tag: TAny} }
func Env() Type       { return Type{Tag: TEnv} }
func Missing() Type   { return Type{Tag: TMissing} }

func Metavar(n int) Type { return Type{Tag: TMetavar, MetaIndex: n} }

func Function(args []Type, result Type) Type {
	return Type{Tag: TFunction, Args: args, Result: &result}
}

func Closure(args []Type, result Type) Type {
	return Type{Tag: TClosure, Args: args, Result: &result}
}

// Ref wraps t in a mutable cell. Per the §3.1 invariant, Ref(Ref(_)) must
// never be constructed; callers that might double-wrap should check IsRef
// first.
func Ref(t Type) Type {
	if t.Tag == TRef {
		diagBug("Ref(Ref(_)) constructed from %s", t)
	}
	return Type{Tag: TRef, Inner: &t}
}

func (t Type) IsRef() bool     { return t.Tag == TRef }
func (t Type) IsMetavar() bool { return t.Tag == TMetavar }
func (t Type) IsMissing() bool { return t.Tag == TMissing }
func (t Type) IsAny() bool     { return t.Tag == TAny }
func (t Type) IsGroundNullary() bool {
	switch t.Tag {
	case TInt, TFloat, TBool, TString, TArray, TDynObject, TAny, TEnv:
		return true
	default:
		return false
	}
}

// IsGCRoot reports whether a local of this type must be published to the
// shadow frame (§4.6.4): everything except the unboxed scalars.
func (t Type) IsGCRoot() bool {
	switch t.Tag {
	case TInt, TFloat, TBool:
		return false
	default:
		return true
	}
}

func (t Type) Equal(o Type) bool {
	if t.Tag != o.Tag {
		return false
	}
	switch t.Tag {
	case TFunction, TClosure:
		if len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(o.Args[i]) {
				return false
			}
		}
		return t.Result.Equal(*o.Result)
	case TRef:
		return t.Inner.Equal(*o.Inner)
	case TMetavar:
		return t.MetaIndex == o.MetaIndex
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.Tag {
	case TInt:
		return "int"
	case TFloat:
		return "float"
	case TBool:
		return "bool"
	case TString:
		return "string"
	case TArray:
		return "array"
	case TDynObject:
		return "dynobject"
	case TAny:
		return "any"
	case TEnv:
		return "env"
	case TMissing:
		return "missing"
	case TMetavar:
		return fmt.Sprintf("?%d", t.MetaIndex)
	case TRef:
		return fmt.Sprintf("ref(%s)", t.Inner)
	case TFunction:
		return fmt.Sprintf("fun(%s) -> %s", joinTypes(t.Args), t.Result)
	case TClosure:
		return fmt.Sprintf("closure(%s) -> %s", joinTypes(t.Args), t.Result)
	default:
		return "<bad type>"
	}
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// diagBug avoids an import cycle with package diag (which does not depend on
// types); it panics with the same recognizable prefix.
func diagBug(format string, args ...any) {
	panic("jankgo: internal invariant violation: " + fmt.Sprintf(format, args...))
}
