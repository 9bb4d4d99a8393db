package infer

import (
	"testing"

	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/types"
)

var p = diag.NoPos

// runScenario builds a single top-level Block statement, runs Infer on it,
// and returns the resulting "coercions to Any" count — the metric in the
// §8 worked-example table.
func runScenario(t *testing.T, stmts []*ast.Stmt) int {
	t.Helper()
	block := ast.Block(p, stmts)
	if err := Infer(block, "test-session"); err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if !NoMetavarsRemain(block) {
		t.Fatalf("metavar or Coercion::Meta survived inference")
	}
	return CountCoercionsToAny(block)
}

func TestScenario_OnePlusTwo(t *testing.T) {
	e := ast.JsOp(p, "+", ast.Int(p, 1), ast.Int(p, 2))
	got := runScenario(t, []*ast.Stmt{ast.ExprStmt(p, e)})
	if got != 0 {
		t.Fatalf("1 + 2;: want 0 coercions to Any, got %d", got)
	}
}

func TestScenario_OnePlusString(t *testing.T) {
	e := ast.JsOp(p, "+", ast.Int(p, 1), ast.String(p, "2"))
	got := runScenario(t, []*ast.Stmt{ast.ExprStmt(p, e)})
	if got != 2 {
		t.Fatalf(`1 + "2";: want 2 coercions to Any, got %d`, got)
	}
}

func TestScenario_ReassignSameType(t *testing.T) {
	decl := ast.Var(p, "x", types.Missing(), ast.Int(p, 20))
	rhs := ast.JsOp(p, "+", ast.Int(p, 30), ast.Ident(p, "x", types.Missing()))
	assign := ast.ExprStmt(p, ast.Assign(p, ast.IdLValue(p, "x", types.Missing()), rhs))
	got := runScenario(t, []*ast.Stmt{decl, assign})
	if got != 0 {
		t.Fatalf("var x = 20; x = 30 + x;: want 0 coercions to Any, got %d", got)
	}
}

func TestScenario_ReassignDifferentType(t *testing.T) {
	decl := ast.Var(p, "x", types.Missing(), ast.Int(p, 20))
	assign := ast.ExprStmt(p, ast.Assign(p, ast.IdLValue(p, "x", types.Missing()), ast.Bool(p, true)))
	got := runScenario(t, []*ast.Stmt{decl, assign})
	if got != 2 {
		t.Fatalf("var x = 20; x = true;: want 2 coercions to Any, got %d", got)
	}
}

func TestScenario_ArrayLiteral(t *testing.T) {
	arr := ast.Array(p, []*ast.Expr{ast.Int(p, 10), ast.String(p, "hi"), ast.Bool(p, true)})
	got := runScenario(t, []*ast.Stmt{ast.ExprStmt(p, arr)})
	if got != 3 {
		t.Fatalf(`[10, "hi", true]: want 3 coercions to Any, got %d`, got)
	}
}

func TestScenario_ObjectLiteral(t *testing.T) {
	obj := ast.Object(p, []ast.ObjectField{
		{Key: "x", Value: ast.Int(p, 10)},
		{Key: "y", Value: ast.Int(p, 20)},
	})
	got := runScenario(t, []*ast.Stmt{ast.ExprStmt(p, obj)})
	if got != 2 {
		t.Fatalf(`({x: 10, y: 20}): want 2 coercions to Any, got %d`, got)
	}
}

func TestScenario_DotThenShift(t *testing.T) {
	obj := ast.Object(p, []ast.ObjectField{{Key: "x", Value: ast.Int(p, 10)}})
	dot := ast.Dot(p, obj, "y")
	shift := ast.JsOp(p, "<<", dot, ast.Int(p, 2))
	got := runScenario(t, []*ast.Stmt{ast.ExprStmt(p, shift)})
	if got != 1 {
		t.Fatalf("({x: 10}).y << 2: want 1 coercion to Any, got %d", got)
	}
}

func buildIdentityFunc() *ast.Expr {
	body := ast.Block(p, []*ast.Stmt{
		ast.Return(p, ast.Ident(p, "x", types.Missing())),
	})
	return ast.Func(p, "F", []ast.Param{{Name: "x", Ty: types.Missing()}}, types.Missing(), body, nil, nil)
}

func TestScenario_SingleCallSameType(t *testing.T) {
	fDecl := ast.Var(p, "F", types.Missing(), buildIdentityFunc())
	call := ast.ExprStmt(p, ast.Call(p, ast.Ident(p, "F", types.Missing()), []*ast.Expr{ast.Int(p, 100)}))
	got := runScenario(t, []*ast.Stmt{fDecl, call})
	if got != 0 {
		t.Fatalf("function F(x){return x;} F(100);: want 0 coercions to Any, got %d", got)
	}
}

func TestScenario_TwoCallsDifferentTypes(t *testing.T) {
	fDecl := ast.Var(p, "F", types.Missing(), buildIdentityFunc())
	call1 := ast.ExprStmt(p, ast.Call(p, ast.Ident(p, "F", types.Missing()), []*ast.Expr{ast.Int(p, 100)}))
	call2 := ast.ExprStmt(p, ast.Call(p, ast.Ident(p, "F", types.Missing()), []*ast.Expr{ast.Bool(p, true)}))
	got := runScenario(t, []*ast.Stmt{fDecl, call1, call2})
	if got != 2 {
		t.Fatalf("function F(x){return x;} F(100); F(true);: want 2 coercions to Any, got %d", got)
	}
}
