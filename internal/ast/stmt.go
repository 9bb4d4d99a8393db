package ast

import (
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/types"
)

// StmtKind discriminates the Stmt variants of §3.2.
type StmtKind int

const (
	SkVar StmtKind = iota
	SkExpr
	SkIf
	SkLoop
	SkLabel
	SkBreak
	SkReturn
	SkBlock
	SkCatch
	SkThrow
	SkEmpty
)

// Stmt is the HighIR statement node (§3.2).
type Stmt struct {
	Kind StmtKind
	Pos  diag.Pos

	// Var.
	Name string
	Ty   types.Type
	Init *Expr // nil for Var(x, ty, undefined)

	// Expr, Return, Throw.
	Value *Expr

	// If.
	Cond       *Expr
	Then, Else *Stmt

	// Loop: Body.
	// Label: Label, Body.
	Label string
	Body  *Stmt

	// Break: Label (empty means innermost unlabeled).

	// Block.
	Stmts []*Stmt

	// Catch.
	ExnName string
	Handler *Stmt
}

func Var(p diag.Pos, name string, ty types.Type, init *Expr) *Stmt {
	return &Stmt{Kind: SkVar, Pos: p, Name: name, Ty: ty, Init: init}
}

func ExprStmt(p diag.Pos, e *Expr) *Stmt {
	return &Stmt{Kind: SkExpr, Pos: p, Value: e}
}

func If(p diag.Pos, cond *Expr, then, els *Stmt) *Stmt {
	return &Stmt{Kind: SkIf, Pos: p, Cond: cond, Then: then, Else: els}
}

func Loop(p diag.Pos, body *Stmt) *Stmt {
	return &Stmt{Kind: SkLoop, Pos: p, Body: body}
}

func LabelStmt(p diag.Pos, label string, body *Stmt) *Stmt {
	return &Stmt{Kind: SkLabel, Pos: p, Label: label, Body: body}
}

func Break(p diag.Pos, label string) *Stmt {
	return &Stmt{Kind: SkBreak, Pos: p, Label: label}
}

func Return(p diag.Pos, e *Expr) *Stmt {
	return &Stmt{Kind: SkReturn, Pos: p, Value: e}
}

func Block(p diag.Pos, stmts []*Stmt) *Stmt {
	return &Stmt{Kind: SkBlock, Pos: p, Stmts: stmts}
}

// Catch: per §9 Open Questions, lowering elides the handler. The node is
// preserved through HighIR so passes that only inspect structure (e.g. the
// walker) still see it; the A-normalizer documents the gap rather than
// silently dropping it (§9).
func Catch(p diag.Pos, body *Stmt, exnName string, handler *Stmt) *Stmt {
	return &Stmt{Kind: SkCatch, Pos: p, Body: body, ExnName: exnName, Handler: handler}
}

func Throw(p diag.Pos, e *Expr) *Stmt {
	return &Stmt{Kind: SkThrow, Pos: p, Value: e}
}

func Empty(p diag.Pos) *Stmt {
	return &Stmt{Kind: SkEmpty, Pos: p}
}
