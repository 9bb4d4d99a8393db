package infer

import "github.com/funvibe/jankgo/internal/types"

// Env is the lexical type environment threaded through constraint
// generation: one per function scope, chained to its enclosing scope so a
// nested Func's body can still resolve captured identifiers (§4.1 "Func:
// within a fresh environment...").
type Env struct {
	parent *Env
	vars   map[string]types.Type
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: map[string]types.Type{}}
}

func (e *Env) Declare(name string, ty types.Type) {
	e.vars[name] = ty
}

func (e *Env) Lookup(name string) (types.Type, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}
