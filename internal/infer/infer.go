package infer

import (
	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/types"
)

// rootEnv seeds the globals every program can call without a declaration of
// its own: the runtime-provided builtins internal/anf lowers straight to a
// PrimCall rather than a ClosureCall (§6.2 rts_fn_imports), so they need a
// type here even though no Var statement ever binds them.
func rootEnv() *Env {
	env := NewEnv(nil)
	env.Declare("print", types.Function([]types.Type{types.Any()}, types.Any()))
	env.Declare("length", types.Function([]types.Type{types.Any()}, types.Int()))
	return env
}

// Infer is the public contract of §4.1: `infer(stmt: &mut HighIR::Stmt)`.
// It mutates stmt in place so that every type annotation and every
// Expr::Coercion is fully determined and ground. sessionID tags any
// CompileError so callers can correlate it with the originating compile()
// invocation (see internal/cache).
func Infer(stmt *ast.Stmt, sessionID string) error {
	log := diag.NewStageLogger("infer", sessionID)

	solver := NewDefaultSolver()
	gen := newGenerator(solver)
	gen.Generate(stmt, rootEnv())

	model, status := solver.Check()
	switch status {
	case Unsat:
		return diag.NewCompileError(diag.InferenceFailure, diag.NoPos, sessionID,
			"type inference is unsatisfiable: the program has no well-typed reading, even allowing Any coercions")
	case Unknown:
		return diag.NewCompileError(diag.InferenceFailure, diag.NoPos, sessionID,
			"solver returned unknown")
	}

	Substitute(stmt, model)

	log.WithField("coercionsToAny", CountCoercionsToAny(stmt)).Debug("inference complete")
	return nil
}
