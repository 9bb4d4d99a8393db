package anf

import (
	"testing"

	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/infer"
	"github.com/funvibe/jankgo/internal/lowir"
	"github.com/funvibe/jankgo/internal/types"
)

var p = diag.NoPos

func inferAndNormalize(t *testing.T, stmts []*ast.Stmt) *lowir.Program {
	t.Helper()
	block := ast.Block(p, stmts)
	if err := infer.Infer(block, "anf-test"); err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	return Normalize(block)
}

// TestNormalize_SimpleArithmetic exercises the KAtom path: `1 + 2;` lowers
// to a single Expression(Binary(...)) statement with no intermediate Var,
// since both operands are already atomic.
func TestNormalize_SimpleArithmetic(t *testing.T) {
	e := ast.JsOp(p, "+", ast.Int(p, 1), ast.Int(p, 2))
	prog := inferAndNormalize(t, []*ast.Stmt{ast.ExprStmt(p, e)})

	main := prog.Functions["main"]
	if main == nil {
		t.Fatal("expected a main function")
	}
	if len(main.Body.Stmts) != 1 {
		t.Fatalf("want 1 top-level statement, got %d", len(main.Body.Stmts))
	}
	s := main.Body.Stmts[0]
	if s.Kind != lowir.SkExpression {
		t.Fatalf("want SkExpression, got %v", s.Kind)
	}
	if s.Expr.Kind != lowir.EkAtom || s.Expr.Atom.Kind != lowir.AkBinary {
		t.Fatalf("want a bare Binary atom, got %#v", s.Expr)
	}
}

// TestNormalize_ArrayLiteral exercises the KExpr+fresh-temp path: an array
// literal allocates, then is populated element-by-element through ArraySet
// statements, binding one fresh local for the array itself.
func TestNormalize_ArrayLiteral(t *testing.T) {
	arr := ast.Array(p, []*ast.Expr{ast.Int(p, 10), ast.String(p, "hi"), ast.Bool(p, true)})
	prog := inferAndNormalize(t, []*ast.Stmt{ast.ExprStmt(p, arr)})

	main := prog.Functions["main"]
	// Var(arr, ArrayNew) + 3x Expression(ArraySet) + Expression(Atom(Id(arr))).
	if len(main.Body.Stmts) != 5 {
		t.Fatalf("want 5 statements, got %d", len(main.Body.Stmts))
	}
	if main.Body.Stmts[0].Kind != lowir.SkVar || main.Body.Stmts[0].Expr.Kind != lowir.EkArrayNew {
		t.Fatalf("want Var(arr, ArrayNew) first, got %#v", main.Body.Stmts[0])
	}
	for i := 1; i <= 3; i++ {
		if main.Body.Stmts[i].Kind != lowir.SkExpression || main.Body.Stmts[i].Expr.Kind != lowir.EkArraySet {
			t.Fatalf("statement %d: want Expression(ArraySet), got %#v", i, main.Body.Stmts[i])
		}
	}
}

// TestNormalize_FunctionCall exercises closure allocation plus ClosureCall:
// `function F(x){return x;} F(100);` produces a hoisted top-level function
// distinct from "main", a ClosureAlloc bound to F, and a ClosureCall whose
// callee id is F.
func TestNormalize_FunctionCall(t *testing.T) {
	body := ast.Block(p, []*ast.Stmt{
		ast.Return(p, ast.Ident(p, "x", types.Missing())),
	})
	fn := ast.Func(p, "F", []ast.Param{{Name: "x", Ty: types.Missing()}}, types.Missing(), body, nil, nil)
	fDecl := ast.Var(p, "F", types.Missing(), fn)
	call := ast.ExprStmt(p, ast.Call(p, ast.Ident(p, "F", types.Missing()), []*ast.Expr{ast.Int(p, 100)}))

	prog := inferAndNormalize(t, []*ast.Stmt{fDecl, call})

	if len(prog.Functions) != 2 {
		t.Fatalf("want main + one hoisted function, got %d: %v", len(prog.Functions), prog.Functions)
	}
	main := prog.Functions["main"]
	if main.Body.Stmts[0].Kind != lowir.SkVar || main.Body.Stmts[0].Expr.Kind != lowir.EkClosureAlloc {
		t.Fatalf("want Var(F, ClosureAlloc) first, got %#v", main.Body.Stmts[0])
	}
	foundCall := false
	for _, s := range main.Body.Stmts {
		if s.Kind == lowir.SkExpression && s.Expr.Kind == lowir.EkClosureCall && s.Expr.FunId == "F" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Fatalf("want a ClosureCall(F, ...) statement somewhere in main, got %#v", main.Body.Stmts)
	}
}
