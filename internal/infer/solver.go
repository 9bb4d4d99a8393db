// Package infer implements the MaxSMT-based type-inference constraint
// generator (§4.1) and the post-solve substitution/overload-resolution pass
// (§4.1, §4.2).
//
// The real solver is an external collaborator (spec.md §1, §4.1, §9
// "Solver interop"): this package depends on it only through the Solver
// interface below, so a real MaxSMT engine can be wired in behind the same
// contract without touching the constraint generator. DefaultSolver (in
// default_solver.go) is the in-process implementation used when no external
// oracle is configured: a bounded backtracking search rather than a true
// MaxSMT engine, since z3 (or an equivalent) is not a dependency available
// anywhere in the example corpus.
package infer

import "github.com/funvibe/jankgo/internal/types"

// SoftVar is a fresh boolean literal (§4.1 "fresh boolean literals"). Its
// identity is its pointer; solvers key their assignment map off it.
type SoftVar struct {
	id     int
	Weight int
}

// Eq is an equality atom over the type sort T (§4.1).
type Eq struct {
	A, B types.Type
}

// Alt is one disjunct of a generated clause: a required assignment for zero
// or more soft vars, plus the equations that must hold under it. Every
// generation rule in §4.1 produces exactly this shape: "(w ∧ eqs) ∨ (¬w ∧
// eqs')" becomes a two-Alt Clause.
type Alt struct {
	Require map[*SoftVar]bool
	Eqs     []Eq
}

// Clause is the disjunction of its Alts; Solver.Check must pick exactly one
// satisfiable Alt per clause.
type Clause struct {
	Alts []Alt
}

// Model is the solver's output on sat: a substitution resolving every
// metavariable, plus the soft-var assignment chosen (exposed mostly for
// diagnostics/idempotence testing, §8 invariant 5).
type Model struct {
	Subst    types.Subst
	SoftVals map[*SoftVar]bool
}

// Status mirrors the three-way SMT result (§4.1).
type Status int

const (
	Sat Status = iota
	Unsat
	Unknown
)

// Solver is the abstract oracle contract of §4.1: a sort of types built from
// nullary constructors and `fun`, boolean formulas over equality, soft and
// hard assertions, and a MaxSMT check maximizing satisfied soft literals.
type Solver interface {
	FreshMetavar() types.Type
	FreshSoftVar(weight int) *SoftVar
	AssertHard(eqs ...Eq)
	AssertClause(c Clause)
	Check() (Model, Status)
}
