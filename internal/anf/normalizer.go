// Package anf implements the A-normalizer (§4.4): it rewrites a fully
// inferred HighIR tree (internal/ast, post internal/infer.Infer) into LowIR
// (internal/lowir) by picking, at every expression, one of three
// continuation shapes:
//
//   - KId:   the surrounding construct needs a bare identifier (a Call
//     argument, a ClosureCall's callee). If the expression already is an
//     identifier it's reused untouched; otherwise it's normalized to an
//     Expr, bound to a fresh local via a Var statement, and that local's
//     name is returned.
//   - KAtom: the surrounding construct needs a duplicable, side-effect-free
//     value (an operand of Binary/Unary, an array/object element). Atoms
//     that are already atomic (literals, identifiers, EnvGet, Deref) pass
//     through; anything else is bound to a fresh local exactly as in KId,
//     then read back as an Id atom.
//   - KExpr: the surrounding construct is a statement position (the thing
//     being bound by Var/Assign, a bare expression-statement, a Return
//     value once further reduced to an atom). No forcing is needed — the
//     Expr is returned as-is, alongside any statements it required to
//     compute its subexpressions.
//
// This mirrors the statement-accumulation idiom of the teacher's
// internal/vm/compiler.go: a single counter for fresh names (localCount
// there, NameGen.next here) and an append-only instruction/statement buffer
// built up by one "emit" site per construct, rather than a combinator
// library.
package anf

import (
	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lowir"
	"github.com/funvibe/jankgo/internal/types"
)

// builtins lists the global identifiers lowered to PrimCall rather than
// ClosureCall: runtime-provided functions that were never allocated as
// closures in the first place (§6.2 rts_fn_imports).
var builtins = map[string]bool{
	"print":  true,
	"length": true,
}

// normalizer holds the state threaded through one function body's
// normalization: the program being built, the fresh-name source, the
// statement buffer for the function currently being lowered, and a lexical
// map from bound identifier to its resolved type (needed to build closure
// environment entries, since ast.Expr.FuncFreeVars only carries names).
type normalizer struct {
	prog    *lowir.Program
	names   *NameGen
	stmts   []*lowir.Stmt
	varType map[string]types.Type
}

// Normalize lowers a fully-inferred top-level HighIR block into a
// lowir.Program with a synthesized "main" entry point (§4.4, §6.3).
func Normalize(topLevel *ast.Stmt) *lowir.Program {
	prog := lowir.NewProgram()
	n := &normalizer{prog: prog, names: NewNameGen(), varType: map[string]types.Type{}}
	n.normTop(topLevel)
	prog.Functions["main"] = &lowir.Function{
		Name: "main",
		Body: lowir.Block(n.stmts),
	}
	return prog
}

func (n *normalizer) emit(s *lowir.Stmt) { n.stmts = append(n.stmts, s) }

// fresh binds expr's lowered Expr to a new local of type ty and returns the
// local's name, pushing a Var statement onto the current buffer. Every KId
// and KAtom forcing path that doesn't already have an identifier funnels
// through here, so there is exactly one place that mints a temporary.
func (n *normalizer) fresh(hint string, ty types.Type, expr *lowir.Expr) string {
	name := n.names.Fresh(hint)
	n.varType[name] = ty
	n.emit(lowir.Var(name, ty, expr))
	return name
}

// toId implements the KId continuation.
func (n *normalizer) toId(e *ast.Expr) string {
	if e.Kind == ast.EkIdent {
		return e.Name
	}
	a := n.toAtom(e)
	if a.Kind == lowir.AkId {
		return a.Id
	}
	atomExpr := lowir.AtomExpr(a)
	return n.fresh("id", a.Ty, &atomExpr)
}

// toAtom implements the KAtom continuation.
func (n *normalizer) toAtom(e *ast.Expr) lowir.Atom {
	switch e.Kind {
	case ast.EkLitInt:
		return lowir.LitInt(e.IntVal)
	case ast.EkLitFloat:
		return lowir.LitFloat(e.FloatVal)
	case ast.EkLitBool:
		return lowir.LitBool(e.BoolVal)
	case ast.EkLitString:
		return lowir.LitString(e.StringVal)
	case ast.EkLitUndefined:
		return lowir.LitUndefined()
	case ast.EkLitNull:
		return lowir.LitNull()
	case ast.EkIdent:
		ty := e.Ty
		if declared, ok := n.varType[e.Name]; ok {
			ty = declared
		}
		return lowir.Id(e.Name, ty)
	case ast.EkEnvGet:
		return lowir.EnvGet(e.EnvIndex, e.Ty)
	case ast.EkUnary:
		return lowir.Unary(e.Op, n.toAtom(e.Operand), e.Ty)
	case ast.EkBinary:
		return lowir.Binary(e.Op, n.toAtom(e.Lhs), n.toAtom(e.Rhs), e.Ty)
	case ast.EkDot:
		objID := n.toId(e.Obj)
		return lowir.ObjectGet(objID, lowir.LitString(e.Name))
	case ast.EkBracket:
		objID := n.toId(e.Obj)
		return lowir.ArrayGet(objID, n.toAtom(e.Key))
	case ast.EkDeref:
		return lowir.Deref(n.toId(e.Inner), e.Ty)
	case ast.EkCoercion:
		return n.toAtomCoercion(e)
	case ast.EkAssign:
		return n.lowerAssign(e)
	case ast.EkStore:
		return n.lowerStore(e)
	default:
		// Allocating/calling node: compute it, bind to a fresh local, read
		// the local back as an Id atom (KId path, minus the already-Ident
		// shortcut since these nodes are never already identifiers).
		expr := n.toExpr(e)
		name := n.fresh("t", e.Ty, &expr)
		return lowir.Id(name, e.Ty)
	}
}

func (n *normalizer) toAtomCoercion(e *ast.Expr) lowir.Atom {
	switch e.Coercion.Tag {
	case types.CId:
		return n.toAtom(e.Inner)
	case types.CTag:
		return lowir.ToAny(n.toAtom(e.Inner))
	case types.CUntag:
		return lowir.FromAny(n.toAtom(e.Inner), e.Coercion.UntagTo)
	case types.CIntToFloat:
		return lowir.IntToFloat(n.toAtom(e.Inner))
	case types.CFloatToInt:
		return lowir.FloatToInt(n.toAtom(e.Inner))
	case types.CSeq:
		// Apply c1 then c2 by nesting: build an intermediate Coercion node
		// for c1 and wrap it with c2, re-entering toAtomCoercion for each.
		mid := ast.MakeCoercion(e.Pos, *e.Coercion.Seq1, e.Inner)
		outer := ast.MakeCoercion(e.Pos, *e.Coercion.Seq2, mid)
		return n.toAtomCoercion(outer)
	default:
		// types.CFun (the only tag left once Substitute has resolved every
		// Meta): Fun-coercions wrap a function VALUE (contravariant args,
		// covariant result) rather than transforming a single scalar atom
		// in place; this subset's call sites never coerce a bare function
		// value independent of a call, so reaching here is a compiler bug
		// rather than a missing feature.
		diag.Bug("coercion tag %v has no atom-level lowering at %s", e.Coercion.Tag, e.Pos)
		return lowir.Atom{}
	}
}

// toExpr implements the KExpr continuation: lower e into a LowIR Expr,
// emitting whatever statements its subexpressions required, without binding
// the result to a local itself (the caller decides whether to bind).
func (n *normalizer) toExpr(e *ast.Expr) lowir.Expr {
	switch e.Kind {
	case ast.EkCall:
		return n.lowerCall(e)
	case ast.EkNewRef:
		a := n.toAtom(e.Inner)
		return lowir.NewRef(a, e.Inner.Ty)
	case ast.EkArray:
		return n.lowerArray(e)
	case ast.EkObject:
		return n.lowerObject(e)
	case ast.EkFunc:
		return n.lowerFunc(e)
	case ast.EkAssign:
		return lowir.AtomExpr(n.lowerAssign(e))
	case ast.EkStore:
		return lowir.AtomExpr(n.lowerStore(e))
	default:
		return lowir.AtomExpr(n.toAtom(e))
	}
}

// lowerAssign implements the LvId/LvDot/LvBracket cases of an Assign node,
// returning the assigned value's atom (JS assignment-expression value
// semantics: `x = v` evaluates to v).
func (n *normalizer) lowerAssign(e *ast.Expr) lowir.Atom {
	valAtom := n.toAtom(e.Value)
	switch e.Target.Kind {
	case ast.LvId:
		valExpr := lowir.AtomExpr(valAtom)
		n.emit(lowir.Assign(e.Target.Name, &valExpr))
	case ast.LvDot:
		objID := n.toId(e.Target.Obj)
		setExpr := lowir.ObjectSet(objID, lowir.LitString(e.Target.Name), valAtom)
		n.emit(lowir.Expression(&setExpr))
	case ast.LvBracket:
		objID := n.toId(e.Target.Obj)
		keyAtom := n.toAtom(e.Target.Key)
		setExpr := lowir.ArraySet(objID, keyAtom, valAtom)
		n.emit(lowir.Expression(&setExpr))
	}
	return valAtom
}

// lowerStore implements `*ref = value` (§3.2 Store), which like Assign
// evaluates to the stored value.
func (n *normalizer) lowerStore(e *ast.Expr) lowir.Atom {
	refID := n.toId(e.Inner)
	valAtom := n.toAtom(e.Value)
	valExpr := lowir.AtomExpr(valAtom)
	n.emit(lowir.Store(refID, &valExpr))
	return valAtom
}

// lowerCall distinguishes a builtin/runtime primitive call from an ordinary
// closure call (§4.6.6): every source-level function value is compiled as a
// closure (§3.1), so the only Call-not-ClosureCall case in this subset is a
// direct reference to a name in the builtins table.
func (n *normalizer) lowerCall(e *ast.Expr) lowir.Expr {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = n.toId(a)
	}
	if e.Callee.Kind == ast.EkIdent && builtins[e.Callee.Name] {
		return lowir.PrimCall(e.Callee.Name, args, e.Ty)
	}
	calleeID := n.toId(e.Callee)
	return lowir.ClosureCall(calleeID, args, e.Ty)
}

func (n *normalizer) lowerArray(e *ast.Expr) lowir.Expr {
	newExpr := lowir.ArrayNew(lowir.LitInt(int64(len(e.Elements))))
	arr := n.fresh("arr", types.Array(), &newExpr)
	for i, el := range e.Elements {
		valAtom := n.toAtom(el)
		setExpr := lowir.ArraySet(arr, lowir.LitInt(int64(i)), valAtom)
		n.emit(lowir.Expression(&setExpr))
	}
	return lowir.AtomExpr(lowir.Id(arr, types.Array()))
}

func (n *normalizer) lowerObject(e *ast.Expr) lowir.Expr {
	emptyExpr := lowir.ObjectEmpty()
	obj := n.fresh("obj", types.DynObject(), &emptyExpr)
	for _, f := range e.Fields {
		valAtom := n.toAtom(f.Value)
		setExpr := lowir.ObjectSet(obj, lowir.LitString(f.Key), valAtom)
		n.emit(lowir.Expression(&setExpr))
	}
	return lowir.AtomExpr(lowir.Id(obj, types.DynObject()))
}

// lowerFunc hoists e's body into a fresh top-level lowir.Function and
// returns a ClosureAlloc capturing e.FuncFreeVars (§3.1 Closure, §4.6.4).
// Every function is compiled as a closure, even with an empty environment,
// so the call-site convention (ClosureCall, §4.6.6) never has to special-
// case a direct function reference.
func (n *normalizer) lowerFunc(e *ast.Expr) lowir.Expr {
	fnName := e.FuncName
	if fnName == "" {
		fnName = n.names.Fresh("fn")
	} else {
		fnName = n.names.Fresh("fn$" + fnName)
	}

	sub := &normalizer{prog: n.prog, names: n.names, varType: map[string]types.Type{}}
	for k, v := range n.varType {
		sub.varType[k] = v
	}
	params := make([]lowir.Param, len(e.FuncParams))
	argTys := make([]types.Type, len(e.FuncParams))
	for i, p := range e.FuncParams {
		params[i] = lowir.Param{Id: p.Name, Ty: p.Ty}
		argTys[i] = p.Ty
		sub.varType[p.Name] = p.Ty
	}
	sub.normStmt(e.FuncBody)

	n.prog.Functions[fnName] = &lowir.Function{
		Name:      fnName,
		Params:    params,
		FnType:    types.Function(argTys, e.FuncResultTy),
		Body:      lowir.Block(sub.stmts),
		IsClosure: true,
	}

	env := make([]lowir.EnvEntry, len(e.FuncFreeVars))
	for i, name := range e.FuncFreeVars {
		ty, ok := n.varType[name]
		if !ok {
			ty = types.Any()
		}
		env[i] = lowir.EnvEntry{Id: name, Ty: ty}
	}
	return lowir.ClosureAlloc(fnName, env, e.Ty)
}
