package ast

import (
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/types"
)

// LValueKind discriminates the three assignment targets of §3.2.
type LValueKind int

const (
	LvId LValueKind = iota
	LvDot
	LvBracket
)

// LValue is an assignment target: Id(name, ty), Dot(expr, name), or
// Bracket(expr, expr, container_type).
type LValue struct {
	Kind LValueKind
	Pos  diag.Pos

	Name string
	Ty   types.Type

	Obj, Key *Expr

	ContainerTy types.Type
}

func IdLValue(p diag.Pos, name string, ty types.Type) *LValue {
	return &LValue{Kind: LvId, Pos: p, Name: name, Ty: ty}
}

func DotLValue(p diag.Pos, obj *Expr, name string) *LValue {
	return &LValue{Kind: LvDot, Pos: p, Obj: obj, Name: name, Ty: types.Any()}
}

func BracketLValue(p diag.Pos, obj, key *Expr, containerTy types.Type) *LValue {
	return &LValue{Kind: LvBracket, Pos: p, Obj: obj, Key: key, ContainerTy: containerTy, Ty: types.Any()}
}
