// Package ast defines HighIR (§3.2): the typed tree produced by the front
// end and mutated in place by inference. Every node carries a diag.Pos and a
// *types.Type slot that starts out Missing/Metavar-filled and is fully
// resolved by the time inference finishes (§8 invariant 1).
package ast

import (
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/types"
)

// ExprKind discriminates the Expr variants of §3.2. A single tagged struct
// is used for the whole expression grammar, following the same "hot sum
// type as struct, not interface-per-case" idiom the teacher used for
// vm.Value, rather than one Go type per AST node.
type ExprKind int

const (
	EkLitInt ExprKind = iota
	EkLitFloat
	EkLitBool
	EkLitString
	EkLitUndefined
	EkLitNull
	EkIdent
	EkArray
	EkObject
	EkDot
	EkBracket
	EkUnary
	EkBinary
	EkJsOp
	EkFunc
	EkCall
	EkAssign
	EkCoercion
	EkNewRef
	EkDeref
	EkStore
	EkEnvGet
	EkClosure
)

// ObjectField is one key/value pair of an object literal (§3.2).
type ObjectField struct {
	Key   string
	Value *Expr
}

// Expr is the HighIR expression node (§3.2).
type Expr struct {
	Kind ExprKind
	Pos  diag.Pos
	// Ty is the expression's type slot. It starts as types.Missing() or a
	// fresh types.Metavar and is resolved in place by inference (§4.1).
	Ty types.Type

	// Literals.
	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	StringVal string

	// Ident, Dot.
	Name string

	// Array, Object.
	Elements []*Expr
	Fields   []ObjectField

	// Dot, Bracket, Unary, Binary, JsOp operands.
	Obj, Key, Lhs, Rhs, Operand *Expr
	// Bracket/Dot record the static type of the container at the time of
	// constraint generation (§3.2 Bracket(e, e, container_type)).
	ContainerTy types.Type

	// Unary/Binary/JsOp operator token, e.g. "+", "-", "!", "<<".
	Op string
	// JsOp argument type slots, one fresh metavar per argument, filled by
	// inference before overload resolution (§4.1 JsOp rule).
	JsOpArgTys []types.Type

	// Func.
	FuncParams           []Param
	FuncResultTy         types.Type
	FuncBody             *Stmt
	FuncFreeVars         []string
	FuncAssignedFreeVars []string
	// FuncName is empty for anonymous function expressions.
	FuncName string

	// Call.
	Callee *Expr
	Args   []*Expr

	// Assign.
	Target *LValue
	Value  *Expr

	// Coercion.
	Coercion types.Coercion
	Inner    *Expr

	// NewRef/Deref/Store share Inner/Value above plus RefTy.
	RefTy types.Type

	// Closure: function id plus captured environment slots, emitted by the
	// A-normalizer, never by the front end.
	ClosureFn  string
	ClosureEnv []EnvSlot

	// EnvGet: the captured slot's index inside the closure environment.
	EnvIndex int
}

// EnvSlot pairs a captured identifier with its type, used by Closure
// expressions once the boxing pass and A-normalizer have run.
type EnvSlot struct {
	Name string
	Ty   types.Type
}

// Param is one formal parameter of a Func expression (§3.2
// args_with_typs).
type Param struct {
	Name string
	Ty   types.Type
}

func litPos(p diag.Pos) Expr { return Expr{Pos: p} }

func Int(p diag.Pos, v int64) *Expr {
	e := litPos(p)
	e.Kind, e.IntVal, e.Ty = EkLitInt, v, types.Int()
	return &e
}

func Float(p diag.Pos, v float64) *Expr {
	e := litPos(p)
	e.Kind, e.FloatVal, e.Ty = EkLitFloat, v, types.Float()
	return &e
}

func Bool(p diag.Pos, v bool) *Expr {
	e := litPos(p)
	e.Kind, e.BoolVal, e.Ty = EkLitBool, v, types.Bool()
	return &e
}

func String(p diag.Pos, v string) *Expr {
	e := litPos(p)
	e.Kind, e.StringVal, e.Ty = EkLitString, v, types.String()
	return &e
}

func Undefined(p diag.Pos) *Expr {
	e := litPos(p)
	e.Kind, e.Ty = EkLitUndefined, types.Any()
	return &e
}

func Null(p diag.Pos) *Expr {
	e := litPos(p)
	e.Kind, e.Ty = EkLitNull, types.Any()
	return &e
}

func Ident(p diag.Pos, name string, ty types.Type) *Expr {
	e := litPos(p)
	e.Kind, e.Name, e.Ty = EkIdent, name, ty
	return &e
}

func Array(p diag.Pos, elems []*Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Elements, e.Ty = EkArray, elems, types.Array()
	return &e
}

func Object(p diag.Pos, fields []ObjectField) *Expr {
	e := litPos(p)
	e.Kind, e.Fields, e.Ty = EkObject, fields, types.DynObject()
	return &e
}

func Dot(p diag.Pos, obj *Expr, name string) *Expr {
	e := litPos(p)
	e.Kind, e.Obj, e.Name, e.Ty = EkDot, obj, name, types.Missing()
	return &e
}

func Bracket(p diag.Pos, obj, key *Expr, containerTy types.Type) *Expr {
	e := litPos(p)
	e.Kind, e.Obj, e.Key, e.ContainerTy, e.Ty = EkBracket, obj, key, containerTy, types.Missing()
	return &e
}

func Unary(p diag.Pos, op string, operand *Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Op, e.Operand, e.Ty = EkUnary, op, operand, types.Missing()
	return &e
}

func Binary(p diag.Pos, op string, lhs, rhs *Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Op, e.Lhs, e.Rhs, e.Ty = EkBinary, op, lhs, rhs, types.Missing()
	return &e
}

// JsOp builds an overloaded JS operator node (§3.2, §4.1). argTys is
// allocated with one Missing() slot per argument; inference replaces each
// with a fresh Metavar before constraint generation.
func JsOp(p diag.Pos, op string, args ...*Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Op, e.Args, e.Ty = EkJsOp, op, args, types.Missing()
	e.JsOpArgTys = make([]types.Type, len(args))
	for i := range e.JsOpArgTys {
		e.JsOpArgTys[i] = types.Missing()
	}
	return &e
}

func Func(p diag.Pos, name string, params []Param, resultTy types.Type, body *Stmt, freeVars, assignedFreeVars []string) *Expr {
	e := litPos(p)
	e.Kind = EkFunc
	e.FuncName = name
	e.FuncParams = params
	e.FuncResultTy = resultTy
	e.FuncBody = body
	e.FuncFreeVars = freeVars
	e.FuncAssignedFreeVars = assignedFreeVars
	argTys := make([]types.Type, len(params))
	for i, pr := range params {
		argTys[i] = pr.Ty
	}
	e.Ty = types.Function(argTys, resultTy)
	return &e
}

func Call(p diag.Pos, callee *Expr, args []*Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Callee, e.Args, e.Ty = EkCall, callee, args, types.Missing()
	return &e
}

func Assign(p diag.Pos, target *LValue, value *Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Target, e.Value, e.Ty = EkAssign, target, value, value.Ty
	return &e
}

func MakeCoercion(p diag.Pos, c types.Coercion, inner *Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Coercion, e.Inner = EkCoercion, c, inner
	switch c.Tag {
	case types.CTag:
		e.Ty = types.Any()
	case types.CUntag:
		e.Ty = c.UntagTo
	case types.CMeta:
		e.Ty = c.MetaDst
	default:
		e.Ty = inner.Ty
	}
	return &e
}

func NewRef(p diag.Pos, inner *Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Inner, e.RefTy, e.Ty = EkNewRef, inner, inner.Ty, types.Ref(inner.Ty)
	return &e
}

func Deref(p diag.Pos, inner *Expr, innerTy types.Type) *Expr {
	e := litPos(p)
	e.Kind, e.Inner, e.RefTy, e.Ty = EkDeref, inner, innerTy, innerTy
	return &e
}

func Store(p diag.Pos, ref, value *Expr) *Expr {
	e := litPos(p)
	e.Kind, e.Inner, e.Value, e.Ty = EkStore, ref, value, value.Ty
	return &e
}

func EnvGet(p diag.Pos, index int, ty types.Type) *Expr {
	e := litPos(p)
	e.Kind, e.EnvIndex, e.Ty = EkEnvGet, index, ty
	return &e
}

func Closure(p diag.Pos, fn string, env []EnvSlot, resultTy types.Type) *Expr {
	e := litPos(p)
	argTys := make([]types.Type, len(env))
	for i, s := range env {
		argTys[i] = s.Ty
	}
	e.Kind, e.ClosureFn, e.ClosureEnv = EkClosure, fn, env
	e.Ty = types.Closure(argTys, resultTy)
	return &e
}
