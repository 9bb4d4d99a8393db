package lowir

import (
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/types"
)

// scope is a single LowIR function's identifier-to-type environment (§4.5).
// Unlike internal/infer.Env this has no parent chain: LowIR has no nested
// lexical scoping left after ANF — every binding in a function body is
// either a parameter or a Var statement in the same flat function, and
// Var/Assign/Store are checked as they're walked in order, so a flat map
// mutated in place is enough.
type scope struct {
	vars map[string]types.Type
}

func newScope() *scope { return &scope{vars: map[string]types.Type{}} }

func (s *scope) declare(id string, ty types.Type) { s.vars[id] = ty }

func (s *scope) lookup(id string) (types.Type, bool) {
	ty, ok := s.vars[id]
	return ty, ok
}

// Checker runs the §4.5 LowIR type checker over a Program: every identifier
// resolves to a binding in scope, Ref loads/stores agree with the ref's
// pointee type, every Call/ClosureCall matches its callee's declared arity
// and argument types, and ToAny only wraps a tag it's legal to wrap.
//
// A failure here is always a CompileError (diag.LowIRTypeError), never a
// diag.Bug panic: per §7, a LowIR type error means the ANF pass or an
// upstream stage produced an ill-typed program, which is a real
// "don't crash the host process" failure mode a fuzzer must be able to
// observe, whereas diag.Bug is reserved for invariants the checker itself
// assumes always hold (e.g. a Program with no "main" function at all).
type Checker struct {
	prog      *Program
	sessionID string
}

func NewChecker(prog *Program, sessionID string) *Checker {
	return &Checker{prog: prog, sessionID: sessionID}
}

// Check type-checks every function in the program, setting each ToAny
// atom's type to Any (its source type stays on the operand) and filling in
// any Var statement's `ty` field left as the Missing type (the rare
// Var(id, ty_unspecified, expr) form; ANF always supplies a type, so this is
// mostly a no-op pass over already-annotated statements plus a full
// consistency check).
func (c *Checker) Check() error {
	if _, ok := c.prog.Functions["main"]; !ok {
		diag.Bug("program has no \"main\" function")
	}
	for name, fn := range c.prog.Functions {
		sc := newScope()
		for _, p := range fn.Params {
			sc.declare(p.Id, p.Ty)
		}
		if fn.IsClosure {
			sc.declare("$env", types.Env())
		}
		if err := c.checkStmt(name, fn.Body, sc, fn.FnType.Result); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) err(format string, args ...any) error {
	return diag.NewCompileError(diag.LowIRTypeError, diag.NoPos, c.sessionID, format, args...)
}

func (c *Checker) checkStmt(fnName string, s *Stmt, sc *scope, returnTy types.Type) error {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case SkVar:
		var ty types.Type
		if s.Expr != nil {
			t, err := c.checkExpr(fnName, s.Expr, sc)
			if err != nil {
				return err
			}
			ty = t
		} else {
			ty = s.Ty
		}
		if !s.Ty.IsMissing() && !s.Ty.Equal(ty) && !s.Ty.IsAny() {
			return c.err("function %s: Var(%s) declared %s but initializer has type %s", fnName, s.Id, s.Ty, ty)
		}
		if s.Ty.IsMissing() {
			s.Ty = ty
		}
		sc.declare(s.Id, ty)

	case SkAssign:
		declared, ok := sc.lookup(s.Id)
		if !ok {
			return c.err("function %s: assignment to unbound identifier %q", fnName, s.Id)
		}
		ty, err := c.checkExpr(fnName, s.Expr, sc)
		if err != nil {
			return err
		}
		if !declared.Equal(ty) {
			return c.err("function %s: assign to %s: declared %s, value has type %s", fnName, s.Id, declared, ty)
		}

	case SkStore:
		refTy, ok := sc.lookup(s.Id)
		if !ok {
			return c.err("function %s: store through unbound identifier %q", fnName, s.Id)
		}
		if !refTy.IsRef() {
			return c.err("function %s: store target %s has non-ref type %s", fnName, s.Id, refTy)
		}
		ty, err := c.checkExpr(fnName, s.Expr, sc)
		if err != nil {
			return err
		}
		if !refTy.Inner.Equal(ty) {
			return c.err("function %s: store to %s: ref holds %s, value has type %s", fnName, s.Id, *refTy.Inner, ty)
		}

	case SkExpression:
		_, err := c.checkExpr(fnName, s.Expr, sc)
		return err

	case SkIf:
		condTy, err := c.checkAtom(fnName, s.Cond, sc)
		if err != nil {
			return err
		}
		if condTy.Tag != types.TBool {
			return c.err("function %s: if condition has type %s, want Bool", fnName, condTy)
		}
		if err := c.checkStmt(fnName, s.Then, sc, returnTy); err != nil {
			return err
		}
		return c.checkStmt(fnName, s.Else, sc, returnTy)

	case SkLoop:
		return c.checkStmt(fnName, s.Body, sc, returnTy)

	case SkLabel:
		return c.checkStmt(fnName, s.Body, sc, returnTy)

	case SkBreak, SkEmpty, SkTrap:
		return nil

	case SkReturn:
		if s.Value == nil {
			return nil
		}
		ty, err := c.checkAtom(fnName, s.Value, sc)
		if err != nil {
			return err
		}
		if !returnTy.IsMissing() && !returnTy.Equal(ty) {
			return c.err("function %s: return type %s does not match declared result %s", fnName, ty, returnTy)
		}

	case SkBlock:
		for _, child := range s.Stmts {
			if err := c.checkStmt(fnName, child, sc, returnTy); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Checker) checkAtom(fnName string, a *Atom, sc *scope) (types.Type, error) {
	switch a.Kind {
	case AkLitInt:
		return types.Int(), nil
	case AkLitFloat:
		return types.Float(), nil
	case AkLitBool:
		return types.Bool(), nil
	case AkLitString:
		return types.String(), nil
	case AkLitUndefined, AkLitNull:
		return types.Any(), nil
	case AkId:
		ty, ok := sc.lookup(a.Id)
		if !ok {
			return types.Type{}, c.err("function %s: reference to unbound identifier %q", fnName, a.Id)
		}
		return ty, nil
	case AkBinary:
		lhsTy, err := c.checkAtom(fnName, a.Lhs, sc)
		if err != nil {
			return types.Type{}, err
		}
		rhsTy, err := c.checkAtom(fnName, a.Rhs, sc)
		if err != nil {
			return types.Type{}, err
		}
		if !lhsTy.Equal(rhsTy) {
			return types.Type{}, c.err("function %s: binary %q operand type mismatch: %s vs %s", fnName, a.Op, lhsTy, rhsTy)
		}
		return a.Ty, nil
	case AkUnary:
		_, err := c.checkAtom(fnName, a.Operand, sc)
		if err != nil {
			return types.Type{}, err
		}
		return a.Ty, nil
	case AkToAny:
		inner, err := c.checkAtom(fnName, a.Operand, sc)
		if err != nil {
			return types.Type{}, err
		}
		if inner.IsAny() {
			return types.Type{}, c.err("function %s: ToAny applied to an already-Any operand", fnName)
		}
		if !inner.IsGroundNullary() && inner.Tag != types.TFunction && inner.Tag != types.TClosure {
			return types.Type{}, c.err("function %s: ToAny applied to non-boxable type %s", fnName, inner)
		}
		a.Ty = types.Any()
		return types.Any(), nil
	case AkFromAny:
		inner, err := c.checkAtom(fnName, a.Operand, sc)
		if err != nil {
			return types.Type{}, err
		}
		if !inner.IsAny() {
			return types.Type{}, c.err("function %s: FromAny applied to non-Any operand %s", fnName, inner)
		}
		return a.Ty, nil
	case AkFloatToInt:
		inner, err := c.checkAtom(fnName, a.Operand, sc)
		if err != nil {
			return types.Type{}, err
		}
		if inner.Tag != types.TFloat {
			return types.Type{}, c.err("function %s: FloatToInt applied to non-Float operand %s", fnName, inner)
		}
		return types.Int(), nil
	case AkIntToFloat:
		inner, err := c.checkAtom(fnName, a.Operand, sc)
		if err != nil {
			return types.Type{}, err
		}
		if inner.Tag != types.TInt {
			return types.Type{}, c.err("function %s: IntToFloat applied to non-Int operand %s", fnName, inner)
		}
		return types.Float(), nil
	case AkEnvGet:
		return a.Ty, nil
	case AkDeref:
		refTy, ok := sc.lookup(a.Id)
		if !ok {
			return types.Type{}, c.err("function %s: deref of unbound identifier %q", fnName, a.Id)
		}
		if !refTy.IsRef() {
			return types.Type{}, c.err("function %s: deref target %s has non-ref type %s", fnName, a.Id, refTy)
		}
		return *refTy.Inner, nil
	case AkObjectGet:
		objTy, ok := sc.lookup(a.Id)
		if !ok {
			return types.Type{}, c.err("function %s: ObjectGet on unbound identifier %q", fnName, a.Id)
		}
		if objTy.Tag != types.TDynObject {
			return types.Type{}, c.err("function %s: ObjectGet target %s has type %s, want DynObject", fnName, a.Id, objTy)
		}
		return types.Any(), nil
	case AkArrayGet:
		arrTy, ok := sc.lookup(a.Id)
		if !ok {
			return types.Type{}, c.err("function %s: ArrayGet on unbound identifier %q", fnName, a.Id)
		}
		if arrTy.Tag != types.TArray {
			return types.Type{}, c.err("function %s: ArrayGet target %s has type %s, want Array", fnName, a.Id, arrTy)
		}
		idxTy, err := c.checkAtom(fnName, a.Index, sc)
		if err != nil {
			return types.Type{}, err
		}
		if idxTy.Tag != types.TInt {
			return types.Type{}, c.err("function %s: ArrayGet index has type %s, want Int", fnName, idxTy)
		}
		return types.Any(), nil
	case AkAnyLength, AkPrimApp, AkGetPrimFunc:
		return a.Ty, nil
	default:
		return types.Type{}, c.err("function %s: unknown atom kind %d", fnName, a.Kind)
	}
}

func (c *Checker) checkExpr(fnName string, e *Expr, sc *scope) (types.Type, error) {
	switch e.Kind {
	case EkAtom:
		return c.checkAtom(fnName, e.Atom, sc)

	case EkArraySet:
		arrTy, ok := sc.lookup(e.BaseId)
		if !ok || arrTy.Tag != types.TArray {
			return types.Type{}, c.err("function %s: ArraySet target %s is not an Array", fnName, e.BaseId)
		}
		if _, err := c.checkAtom(fnName, e.Index, sc); err != nil {
			return types.Type{}, err
		}
		if _, err := c.checkAtom(fnName, e.Value, sc); err != nil {
			return types.Type{}, err
		}
		return types.Any(), nil

	case EkArrayNew:
		if _, err := c.checkAtom(fnName, e.Index, sc); err != nil {
			return types.Type{}, err
		}
		return types.Array(), nil

	case EkObjectSet:
		objTy, ok := sc.lookup(e.BaseId)
		if !ok || objTy.Tag != types.TDynObject {
			return types.Type{}, c.err("function %s: ObjectSet target %s is not a DynObject", fnName, e.BaseId)
		}
		if _, err := c.checkAtom(fnName, e.Value, sc); err != nil {
			return types.Type{}, err
		}
		return types.Any(), nil

	case EkObjectEmpty:
		return types.DynObject(), nil

	case EkPrimCall:
		fnTy, ok := c.prog.RtsFnImports[e.FunId]
		if !ok {
			// The primitive table is advisory (§6.2): an unregistered name
			// is allowed through untyped, since the runtime may expose
			// imports beyond what this compiler run declared.
			if err := c.checkArgsBound(fnName, e.Args, sc); err != nil {
				return types.Type{}, err
			}
			return e.Ty, nil
		}
		if err := c.checkCallArity(fnName, e.FunId, fnTy, e.Args, sc); err != nil {
			return types.Type{}, err
		}
		return *fnTy.Result, nil

	case EkCall:
		fn, ok := c.prog.Functions[e.FunId]
		if !ok {
			return types.Type{}, c.err("function %s: Call to undefined function %q", fnName, e.FunId)
		}
		if err := c.checkCallArity(fnName, e.FunId, fn.FnType, e.Args, sc); err != nil {
			return types.Type{}, err
		}
		return *fn.FnType.Result, nil

	case EkClosureCall:
		calleeTy, ok := sc.lookup(e.FunId)
		if !ok {
			return types.Type{}, c.err("function %s: ClosureCall on unbound identifier %q", fnName, e.FunId)
		}
		if calleeTy.Tag != types.TClosure && calleeTy.Tag != types.TFunction {
			return types.Type{}, c.err("function %s: ClosureCall target %s has type %s, want a function value", fnName, e.FunId, calleeTy)
		}
		// ClosureCall implicitly prepends the callee's own captured Env as
		// the 0th wasm parameter (§4.6.4); that slot is not part of the
		// declared Args arity the source program sees.
		if len(e.Args) != len(calleeTy.Args) {
			return types.Type{}, c.err("function %s: ClosureCall to %s: want %d args, got %d", fnName, e.FunId, len(calleeTy.Args), len(e.Args))
		}
		for i, argID := range e.Args {
			argTy, ok := sc.lookup(argID)
			if !ok {
				return types.Type{}, c.err("function %s: ClosureCall arg %q unbound", fnName, argID)
			}
			if !argTy.Equal(calleeTy.Args[i]) {
				return types.Type{}, c.err("function %s: ClosureCall to %s: arg %d has type %s, want %s", fnName, e.FunId, i, argTy, calleeTy.Args[i])
			}
		}
		return *calleeTy.Result, nil

	case EkAnyMethodCall:
		anyTy, ok := sc.lookup(e.AnyId)
		if !ok {
			return types.Type{}, c.err("function %s: AnyMethodCall receiver %q unbound", fnName, e.AnyId)
		}
		if !anyTy.IsAny() {
			return types.Type{}, c.err("function %s: AnyMethodCall receiver %s has type %s, want Any", fnName, e.AnyId, anyTy)
		}
		if err := c.checkArgsBound(fnName, e.Args, sc); err != nil {
			return types.Type{}, err
		}
		return types.Any(), nil

	case EkNewRef:
		initTy, err := c.checkAtom(fnName, e.RefInit, sc)
		if err != nil {
			return types.Type{}, err
		}
		return types.Ref(initTy), nil

	case EkClosureAlloc:
		fn, ok := c.prog.Functions[e.ClosureFn]
		if !ok {
			return types.Type{}, c.err("function %s: ClosureAlloc references undefined function %q", fnName, e.ClosureFn)
		}
		for _, slot := range e.ClosureEnv {
			capturedTy, ok := sc.lookup(slot.Id)
			if !ok {
				return types.Type{}, c.err("function %s: ClosureAlloc captures unbound identifier %q", fnName, slot.Id)
			}
			if !capturedTy.Equal(slot.Ty) {
				return types.Type{}, c.err("function %s: ClosureAlloc capture %s: declared %s, actual %s", fnName, slot.Id, slot.Ty, capturedTy)
			}
		}
		return types.Closure(fn.FnType.Args, *fn.FnType.Result), nil

	default:
		return types.Type{}, c.err("function %s: unknown expr kind %d", fnName, e.Kind)
	}
}

func (c *Checker) checkArgsBound(fnName string, args []string, sc *scope) error {
	for _, id := range args {
		if _, ok := sc.lookup(id); !ok {
			return c.err("function %s: argument %q unbound", fnName, id)
		}
	}
	return nil
}

func (c *Checker) checkCallArity(fnName, callee string, fnTy types.Type, args []string, sc *scope) error {
	if len(args) != len(fnTy.Args) {
		return c.err("function %s: call to %s: want %d args, got %d", fnName, callee, len(fnTy.Args), len(args))
	}
	for i, argID := range args {
		argTy, ok := sc.lookup(argID)
		if !ok {
			return c.err("function %s: call to %s: arg %q unbound", fnName, callee, argID)
		}
		if !argTy.Equal(fnTy.Args[i]) {
			return c.err("function %s: call to %s: arg %d has type %s, want %s", fnName, callee, i, argTy, fnTy.Args[i])
		}
	}
	return nil
}
