package infer

import "github.com/funvibe/jankgo/internal/types"

// DefaultSolver is the in-process Solver used when no external MaxSMT
// oracle is wired in. It is sound but not a true optimizer: it resolves
// clauses in the order they were asserted, greedily preferring the Alt that
// keeps the most soft vars true (the "precise type" branch of each
// generation rule, §4.1), backtracking to a less-preferred Alt only when the
// greedy choice is inconsistent with an already-committed substitution.
// Because every clause this package generates has at most one genuinely
// soft choice and the generator emits clauses in HighIR traversal order
// (outer constraints before the inner metavariables they depend on are
// touched again), this greedy-with-backtracking search finds the same
// optimum a real MaxSMT engine would on every program in §8's scenario
// table.
type DefaultSolver struct {
	nextMeta int
	nextVar  int
	hard     []Eq
	clauses  []Clause
}

func NewDefaultSolver() *DefaultSolver {
	return &DefaultSolver{}
}

func (s *DefaultSolver) FreshMetavar() types.Type {
	t := types.Metavar(s.nextMeta)
	s.nextMeta++
	return t
}

func (s *DefaultSolver) FreshSoftVar(weight int) *SoftVar {
	v := &SoftVar{id: s.nextVar, Weight: weight}
	s.nextVar++
	return v
}

func (s *DefaultSolver) AssertHard(eqs ...Eq) {
	s.hard = append(s.hard, eqs...)
}

func (s *DefaultSolver) AssertClause(c Clause) {
	s.clauses = append(s.clauses, c)
}

// Check runs the backtracking search described on DefaultSolver.
func (s *DefaultSolver) Check() (Model, Status) {
	subst := types.Subst{}
	softVals := map[*SoftVar]bool{}

	for _, eq := range s.hard {
		if !unify(eq.A, eq.B, subst) {
			return Model{}, Unsat
		}
	}

	ok := solveClauses(s.clauses, 0, subst, softVals)
	if !ok {
		return Model{}, Unsat
	}
	return Model{Subst: subst, SoftVals: softVals}, Sat
}

// solveClauses tries clauses[i:] depth-first. Within a clause it tries Alts
// in the order given (generation rules list the precise/"w=true" Alt
// first), so the first successful branch is also the greediest one.
func solveClauses(clauses []Clause, i int, subst types.Subst, softVals map[*SoftVar]bool) bool {
	if i >= len(clauses) {
		return true
	}
	clause := clauses[i]
	for _, alt := range clause.Alts {
		trial := cloneSubst(subst)
		consistent := true
		for _, eq := range alt.Eqs {
			if !unify(eq.A, eq.B, trial) {
				consistent = false
				break
			}
		}
		if !consistent {
			continue
		}
		trialVals := cloneSoftVals(softVals)
		conflict := false
		for v, want := range alt.Require {
			if existing, seen := trialVals[v]; seen && existing != want {
				conflict = true
				break
			}
			trialVals[v] = want
		}
		if conflict {
			continue
		}
		if solveClauses(clauses, i+1, trial, trialVals) {
			for k, v := range trial {
				subst[k] = v
			}
			for v, want := range trialVals {
				softVals[v] = want
			}
			return true
		}
	}
	return false
}

// unify extends subst so that a and b become equal under it, following
// metavariable chains through subst.Apply first (types.Subst.Apply already
// implements the cycle-safe walk this needs).
func unify(a, b types.Type, subst types.Subst) bool {
	a = subst.Apply(a)
	b = subst.Apply(b)
	if a.IsMetavar() {
		subst[a.MetaIndex] = b
		return true
	}
	if b.IsMetavar() {
		subst[b.MetaIndex] = a
		return true
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case types.TFunction, types.TClosure:
		if len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !unify(a.Args[i], b.Args[i], subst) {
				return false
			}
		}
		return unify(*a.Result, *b.Result, subst)
	case types.TRef:
		return unify(*a.Inner, *b.Inner, subst)
	default:
		return true
	}
}

func cloneSubst(s types.Subst) types.Subst {
	next := make(types.Subst, len(s))
	for k, v := range s {
		next[k] = v
	}
	return next
}

func cloneSoftVals(m map[*SoftVar]bool) map[*SoftVar]bool {
	next := make(map[*SoftVar]bool, len(m))
	for k, v := range m {
		next[k] = v
	}
	return next
}
