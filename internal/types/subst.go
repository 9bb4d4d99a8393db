package types

// Subst maps metavariable indices to resolved types. It is built by the
// MaxSMT model (§4.1, Typeinf.solve_model) and applied once, in a single
// post-solve walk (§4.1 "Post-solve substitution").
type Subst map[int]Type

// Apply resolves every Metavar in t through s, following chains of
// substitution and guarding against cycles the same way funxy's
// ApplyWithCycleCheck does: a metavariable already on the current walk's
// visited set is returned as-is rather than recursed into again.
func (s Subst) Apply(t Type) Type {
	return applyWithCycleCheck(t, s, map[int]bool{})
}

func applyWithCycleCheck(t Type, s Subst, visited map[int]bool) Type {
	switch t.Tag {
	case TMetavar:
		if visited[t.MetaIndex] {
			return t
		}
		replacement, ok := s[t.MetaIndex]
		if !ok {
			return t
		}
		if replacement.Tag == TMetavar && replacement.MetaIndex == t.MetaIndex {
			return t
		}
		next := copyVisited(visited)
		next[t.MetaIndex] = true
		return applyWithCycleCheck(replacement, s, next)
	case TFunction, TClosure:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = applyWithCycleCheck(a, s, visited)
		}
		result := applyWithCycleCheck(*t.Result, s, visited)
		return Type{Tag: t.Tag, Args: args, Result: &result}
	case TRef:
		inner := applyWithCycleCheck(*t.Inner, s, visited)
		return Type{Tag: TRef, Inner: &inner}
	default:
		return t
	}
}

func copyVisited(m map[int]bool) map[int]bool {
	next := make(map[int]bool, len(m))
	for k, v := range m {
		next[k] = v
	}
	return next
}

// HasMetavarOrMissing reports whether t still contains a Metavar or Missing
// anywhere in its structure. Used to check invariant 1 of §8: after
// inference, no Metavar/Missing may survive.
func HasMetavarOrMissing(t Type) bool {
	switch t.Tag {
	case TMetavar, TMissing:
		return true
	case TFunction, TClosure:
		for _, a := range t.Args {
			if HasMetavarOrMissing(a) {
				return true
			}
		}
		return HasMetavarOrMissing(*t.Result)
	case TRef:
		return HasMetavarOrMissing(*t.Inner)
	default:
		return false
	}
}
