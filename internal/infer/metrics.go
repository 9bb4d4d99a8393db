package infer

import (
	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/types"
)

// CountCoercionsToAny counts Coercion::Tag nodes in the substituted tree —
// the "coercions to Any" metric of §8's worked-example table.
func CountCoercionsToAny(stmt *ast.Stmt) int {
	n := 0
	v := &ast.Visitor{
		EnterExpr: func(e *ast.Expr, _ *ast.Loc) bool {
			if e.Kind == ast.EkCoercion && e.Coercion.Tag == types.CTag {
				n++
			}
			return true
		},
	}
	ast.WalkStmt(stmt, v)
	return n
}

// NoMetavarsRemain checks §8 invariant 1 over every expression's type (and
// every still-present Coercion::Meta node, which must not survive
// substitution either).
func NoMetavarsRemain(stmt *ast.Stmt) bool {
	clean := true
	v := &ast.Visitor{
		EnterExpr: func(e *ast.Expr, _ *ast.Loc) bool {
			if types.HasMetavarOrMissing(e.Ty) {
				clean = false
			}
			if e.Kind == ast.EkCoercion && e.Coercion.Tag == types.CMeta {
				clean = false
			}
			return true
		},
	}
	ast.WalkStmt(stmt, v)
	return clean
}
