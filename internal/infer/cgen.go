package infer

import (
	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/types"
)

// generator implements the constraint-generation rules of §4.1. It walks
// HighIR directly (rather than through ast.Visitor) because every rule
// needs to both read and rewrite its subtree in the same pass — wrap an
// argument in a Coercion, replace a node with its coerced form — which the
// read-only enter/exit Visitor in internal/ast is not shaped for. Each
// genExpr call returns the (possibly Coercion-wrapped) replacement for its
// argument; callers store the result back into the parent's own field,
// which is how this pass "mutates the program in place" in a Go tree built
// from plain struct fields rather than mutable interface boxes.
type generator struct {
	solver Solver
	// returnTys is a stack of the enclosing function's return-type metavar,
	// one entry pushed per nested Func.
	returnTys []types.Type
}

func newGenerator(s Solver) *generator {
	return &generator{solver: s}
}

func (g *generator) currentReturnTy() types.Type {
	if len(g.returnTys) == 0 {
		diag.Bug("Return statement outside any function")
	}
	return g.returnTys[len(g.returnTys)-1]
}

// Generate walks stmt under the top-level environment env, asserting every
// constraint from §4.1 into g.solver and rewriting stmt's expression
// subtrees with inserted Coercion nodes.
func (g *generator) Generate(stmt *ast.Stmt, env *Env) {
	g.genStmt(stmt, env)
}

func (g *generator) genStmt(s *ast.Stmt, env *Env) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.SkVar:
		if s.Init != nil {
			init := g.genExpr(s.Init, env)
			s.Init = init
			env.Declare(s.Name, init.Ty)
			s.Ty = init.Ty
		} else {
			env.Declare(s.Name, types.Any())
			s.Ty = types.Any()
		}
	case ast.SkExpr:
		s.Value = g.genExpr(s.Value, env)
	case ast.SkIf:
		s.Cond = g.coerceHard(g.genExpr(s.Cond, env), types.Bool())
		g.genStmt(s.Then, env)
		g.genStmt(s.Else, env)
	case ast.SkLoop:
		g.genStmt(s.Body, env)
	case ast.SkLabel:
		g.genStmt(s.Body, env)
	case ast.SkBreak:
		// leaf; no constraint.
	case ast.SkReturn:
		if s.Value == nil {
			return
		}
		e := g.genExpr(s.Value, env)
		retTy := g.currentReturnTy()
		w := g.solver.FreshSoftVar(1)
		g.solver.AssertClause(Clause{Alts: []Alt{
			{Require: map[*SoftVar]bool{w: true}, Eqs: []Eq{{A: retTy, B: e.Ty}}},
			{Require: map[*SoftVar]bool{w: false}, Eqs: []Eq{{A: retTy, B: types.Any()}}},
		}})
		s.Value = ast.MakeCoercion(s.Pos, types.Meta(e.Ty, retTy), e)
	case ast.SkBlock:
		for _, child := range s.Stmts {
			g.genStmt(child, env)
		}
	case ast.SkCatch:
		// Exception handling is elided at lowering (§9 Open Questions); the
		// constraint generator still type-checks the guarded body and, if
		// present, the handler, since both remain reachable HighIR.
		g.genStmt(s.Body, env)
		if s.Handler != nil {
			g.genStmt(s.Handler, env)
		}
	case ast.SkThrow:
		s.Value = g.genExpr(s.Value, env)
	case ast.SkEmpty:
		// leaf.
	}
}

func (g *generator) genExpr(e *ast.Expr, env *Env) *ast.Expr {
	switch e.Kind {
	case ast.EkLitInt, ast.EkLitFloat, ast.EkLitBool, ast.EkLitString:
		return g.genLiteral(e)
	case ast.EkLitUndefined, ast.EkLitNull:
		// Already ground Any (§3.1: Null/Undefined both -> Any); no
		// coercion needed.
		return e
	case ast.EkIdent:
		if ty, ok := env.Lookup(e.Name); ok {
			e.Ty = ty
		} else {
			diag.Bug("unbound identifier %q at %s", e.Name, e.Pos)
		}
		return e
	case ast.EkArray:
		for i, el := range e.Elements {
			coerced := g.genExpr(el, env)
			e.Elements[i] = g.coerceHard(coerced, types.Any())
		}
		e.Ty = types.Array()
		return e
	case ast.EkObject:
		for i, f := range e.Fields {
			coerced := g.genExpr(f.Value, env)
			e.Fields[i].Value = g.coerceHard(coerced, types.Any())
		}
		e.Ty = types.DynObject()
		return e
	case ast.EkDot:
		return g.genDot(e, env)
	case ast.EkBracket:
		return g.genBracket(e, env)
	case ast.EkUnary:
		return g.genUnary(e, env)
	case ast.EkBinary:
		// Already-resolved typed binary (e.g. reconstructed by an earlier
		// pass); nothing further to generate.
		e.Lhs = g.genExpr(e.Lhs, env)
		e.Rhs = g.genExpr(e.Rhs, env)
		return e
	case ast.EkJsOp:
		return g.genJsOp(e, env)
	case ast.EkFunc:
		return g.genFunc(e, env)
	case ast.EkCall:
		return g.genCall(e, env)
	case ast.EkAssign:
		return g.genAssign(e, env)
	default:
		return e
	}
}

// genLiteral implements the Literal rule of §4.1: "emit (w ∧ α=t) ∨ (¬w ∧
// α=any), wrap e in Coercion::Meta(t, α); return α."
func (g *generator) genLiteral(e *ast.Expr) *ast.Expr {
	t := e.Ty
	alpha := g.solver.FreshMetavar()
	w := g.solver.FreshSoftVar(1)
	g.solver.AssertClause(Clause{Alts: []Alt{
		{Require: map[*SoftVar]bool{w: true}, Eqs: []Eq{{A: alpha, B: t}}},
		{Require: map[*SoftVar]bool{w: false}, Eqs: []Eq{{A: alpha, B: types.Any()}}},
	}})
	return ast.MakeCoercion(e.Pos, types.Meta(t, alpha), e)
}

// genDot implements the Dot rule of §4.1.
func (g *generator) genDot(e *ast.Expr, env *Env) *ast.Expr {
	obj := g.genExpr(e.Obj, env)
	t := obj.Ty
	w := g.solver.FreshSoftVar(1)
	g.solver.AssertClause(Clause{Alts: []Alt{
		{Require: map[*SoftVar]bool{w: true}, Eqs: []Eq{{A: t, B: types.DynObject()}}},
		{Require: map[*SoftVar]bool{w: false}, Eqs: []Eq{{A: t, B: types.Any()}}},
	}})
	e.Obj = ast.MakeCoercion(obj.Pos, types.Meta(t, types.DynObject()), obj)
	e.Ty = types.Any()
	return e
}

// genBracket treats a computed member access like Dot followed by a
// container-type check: the container must be Array or Any, so a String
// container leaves the clause unsatisfiable and Infer reports an
// InferenceFailure CompileError.
func (g *generator) genBracket(e *ast.Expr, env *Env) *ast.Expr {
	obj := g.genExpr(e.Obj, env)
	key := g.genExpr(e.Key, env)
	e.Key = g.coerceHard(key, types.Int())
	t := obj.Ty
	w := g.solver.FreshSoftVar(1)
	g.solver.AssertClause(Clause{Alts: []Alt{
		{Require: map[*SoftVar]bool{w: true}, Eqs: []Eq{{A: t, B: types.Array()}}},
		{Require: map[*SoftVar]bool{w: false}, Eqs: []Eq{{A: t, B: types.Any()}}},
	}})
	e.Obj = ast.MakeCoercion(obj.Pos, types.Meta(t, types.Array()), obj)
	e.Ty = types.Any()
	return e
}

func (g *generator) genUnary(e *ast.Expr, env *Env) *ast.Expr {
	operand := g.genExpr(e.Operand, env)
	ov, ok := UnaryOverloads[e.Op]
	if !ok {
		diag.Bug("unknown unary operator %q", e.Op)
	}
	e.Operand = g.coerceHard(operand, ov.ArgTys[0])
	e.Ty = ov.Result
	return e
}

// genJsOp implements the JsOp rule of §4.1. The ground overloads are tried
// before the any-overload (Alts are listed in that order), matching the
// "prefer precise types" optimization goal of the MaxSMT objective.
func (g *generator) genJsOp(e *ast.Expr, env *Env) *ast.Expr {
	table, ok := Overloads[e.Op]
	if !ok {
		diag.Bug("unknown operator %q", e.Op)
	}
	w := g.solver.FreshSoftVar(1)
	argBetas := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		resolved := g.genExpr(arg, env)
		if resolved.Ty.IsMetavar() {
			argBetas[i] = resolved.Ty
			e.Args[i] = resolved
		} else {
			beta := g.solver.FreshMetavar()
			argBetas[i] = beta
			e.Args[i] = ast.MakeCoercion(resolved.Pos, types.Meta(resolved.Ty, beta), resolved)
		}
	}
	alpha := g.solver.FreshMetavar()
	var alts []Alt
	for _, ov := range table.Overloads {
		eqs := make([]Eq, 0, len(ov.ArgTys)+1)
		for i, argTy := range ov.ArgTys {
			eqs = append(eqs, Eq{A: argBetas[i], B: argTy})
		}
		eqs = append(eqs, Eq{A: alpha, B: ov.Result})
		alts = append(alts, Alt{Require: map[*SoftVar]bool{w: true}, Eqs: eqs})
	}
	anyEqs := make([]Eq, 0, len(argBetas)+1)
	for _, beta := range argBetas {
		anyEqs = append(anyEqs, Eq{A: beta, B: types.Any()})
	}
	anyEqs = append(anyEqs, Eq{A: alpha, B: table.AnyResult})
	alts = append(alts, Alt{Require: map[*SoftVar]bool{w: false}, Eqs: anyEqs})
	g.solver.AssertClause(Clause{Alts: alts})
	e.JsOpArgTys = argBetas
	e.Ty = alpha
	return e
}

// genFunc implements the Func rule of §4.1.
func (g *generator) genFunc(e *ast.Expr, env *Env) *ast.Expr {
	fnEnv := NewEnv(env)
	argTys := make([]types.Type, len(e.FuncParams))
	for i, p := range e.FuncParams {
		pty := p.Ty
		if pty.IsMissing() {
			pty = g.solver.FreshMetavar()
		}
		e.FuncParams[i].Ty = pty
		argTys[i] = pty
		fnEnv.Declare(p.Name, pty)
	}
	resultTy := e.FuncResultTy
	if resultTy.IsMissing() {
		resultTy = g.solver.FreshMetavar()
	}
	e.FuncResultTy = resultTy

	g.returnTys = append(g.returnTys, resultTy)
	g.genStmt(e.FuncBody, fnEnv)
	g.returnTys = g.returnTys[:len(g.returnTys)-1]

	fnTy := types.Function(argTys, resultTy)
	e.Ty = fnTy

	alpha := g.solver.FreshMetavar()
	w := g.solver.FreshSoftVar(1)
	g.solver.AssertClause(Clause{Alts: []Alt{
		{Require: map[*SoftVar]bool{w: true}, Eqs: []Eq{{A: alpha, B: fnTy}}},
		{Require: map[*SoftVar]bool{w: false}, Eqs: []Eq{{A: alpha, B: types.Any()}}},
	}})
	return ast.MakeCoercion(e.Pos, types.Meta(fnTy, alpha), e)
}

// genCall implements the Call rule of §4.1.
func (g *generator) genCall(e *ast.Expr, env *Env) *ast.Expr {
	callee := g.genExpr(e.Callee, env)
	argTys := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		resolved := g.genExpr(a, env)
		e.Args[i] = resolved
		argTys[i] = resolved.Ty
	}
	beta := g.solver.FreshMetavar()
	gamma := g.solver.FreshMetavar()
	funTy := types.Function(argTys, beta)
	w1 := g.solver.FreshSoftVar(1)

	anyEqs := make([]Eq, 0, len(argTys)+2)
	anyEqs = append(anyEqs, Eq{A: callee.Ty, B: types.Any()}, Eq{A: beta, B: types.Any()})
	for _, at := range argTys {
		anyEqs = append(anyEqs, Eq{A: at, B: types.Any()})
	}
	g.solver.AssertClause(Clause{Alts: []Alt{
		{Require: map[*SoftVar]bool{w1: true}, Eqs: []Eq{{A: callee.Ty, B: funTy}}},
		{Require: map[*SoftVar]bool{w1: false}, Eqs: anyEqs},
	}})

	w2 := g.solver.FreshSoftVar(1)
	g.solver.AssertClause(Clause{Alts: []Alt{
		{Require: map[*SoftVar]bool{w2: true}, Eqs: []Eq{{A: beta, B: gamma}}},
		{Require: map[*SoftVar]bool{w2: false}, Eqs: []Eq{{A: gamma, B: types.Any()}}},
	}})

	e.Callee = ast.MakeCoercion(callee.Pos, types.Meta(callee.Ty, funTy), callee)
	e.Ty = gamma
	return e
}

// genAssign coerces the assigned value into the target's declared type
// following the same soft-or-Any pattern as Return — spec.md §4.1 states
// Assign's constraint as a plain unification, but that alone cannot produce
// the coercions the worked example `var x = 20; x = true;` requires (§8);
// treating it like Return, with env(x)'s metavar as the coercion target,
// reproduces the table exactly (see internal/infer/cgen_test.go).
func (g *generator) genAssign(e *ast.Expr, env *Env) *ast.Expr {
	value := g.genExpr(e.Value, env)
	e.Value = value

	switch e.Target.Kind {
	case ast.LvId:
		targetTy, ok := env.Lookup(e.Target.Name)
		if !ok {
			diag.Bug("assignment to unbound identifier %q at %s", e.Target.Name, e.Pos)
		}
		w := g.solver.FreshSoftVar(1)
		g.solver.AssertClause(Clause{Alts: []Alt{
			{Require: map[*SoftVar]bool{w: true}, Eqs: []Eq{{A: targetTy, B: value.Ty}}},
			{Require: map[*SoftVar]bool{w: false}, Eqs: []Eq{{A: targetTy, B: types.Any()}}},
		}})
		e.Value = ast.MakeCoercion(value.Pos, types.Meta(value.Ty, targetTy), value)
		e.Ty = targetTy
	case ast.LvDot:
		e.Target.Obj = g.coerceHard(g.genExpr(e.Target.Obj, env), types.DynObject())
		e.Value = g.coerceHard(value, types.Any())
		e.Ty = types.Any()
	case ast.LvBracket:
		e.Target.Obj = g.coerceHard(g.genExpr(e.Target.Obj, env), types.Array())
		e.Target.Key = g.coerceHard(g.genExpr(e.Target.Key, env), types.Int())
		e.Value = g.coerceHard(value, types.Any())
		e.Ty = types.Any()
	}
	return e
}

// coerceHard forces e's type to equal target with no soft alternative: used
// everywhere the language semantics require a definite type (a loop/if
// condition, an array index, every element of an Array/Object literal).
// If e's type is already a metavar the equation is asserted as a hard
// constraint (so the eventual substitution is forced rather than optional);
// if it is already ground-equal to target, e is returned unwrapped; if
// either side is Any, an explicit Tag/Untag Coercion is inserted immediately
// (no solving needed: the direction is determined by which side is Any);
// two distinct non-Any ground types get a Meta(e.Ty, target) coercion that
// Substitute resolves later.
func (g *generator) coerceHard(e *ast.Expr, target types.Type) *ast.Expr {
	if e.Ty.Equal(target) {
		return e
	}
	if e.Ty.IsMetavar() {
		g.solver.AssertHard(Eq{A: e.Ty, B: target})
		return ast.MakeCoercion(e.Pos, types.Meta(e.Ty, target), e)
	}
	if e.Ty.IsAny() {
		return ast.MakeCoercion(e.Pos, types.Untag(target), e)
	}
	if target.IsAny() {
		return ast.MakeCoercion(e.Pos, types.TagCoercion(), e)
	}
	return ast.MakeCoercion(e.Pos, types.Meta(e.Ty, target), e)
}
