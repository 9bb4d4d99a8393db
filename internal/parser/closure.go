package parser

import "github.com/funvibe/jankgo/internal/ast"

// computeClosures walks the whole top-level program once, filling in
// FuncFreeVars/FuncAssignedFreeVars for every EkFunc node it finds (§3.1
// Closure, §4.6.4 — internal/anf's ClosureAlloc reads these fields
// directly, so they must be populated before the program reaches
// internal/infer). Processing is bottom-up: a function's own free-variable
// set is computed from its body treating any nested function as an opaque
// reference that contributes exactly the names that function itself
// couldn't resolve locally, which is what closure conversion requires a
// nested closure to capture from its enclosing scope.
func computeClosures(top *ast.Stmt) {
	scanStmt(top)
}

// scanStmt finds every EkFunc reachable from s without assuming s itself is
// one (s may be the top-level program, which is itself an implicit
// function scope with no params and thus no free-variable set of its own).
func scanStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.SkVar:
		scanExpr(s.Init)
	case ast.SkExpr:
		scanExpr(s.Value)
	case ast.SkIf:
		scanExpr(s.Cond)
		scanStmt(s.Then)
		scanStmt(s.Else)
	case ast.SkLoop, ast.SkLabel:
		scanStmt(s.Body)
	case ast.SkReturn:
		scanExpr(s.Value)
	case ast.SkBlock:
		for _, child := range s.Stmts {
			scanStmt(child)
		}
	case ast.SkCatch:
		scanStmt(s.Body)
		scanStmt(s.Handler)
	case ast.SkThrow:
		scanExpr(s.Value)
	}
}

func scanExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.EkArray:
		for _, el := range e.Elements {
			scanExpr(el)
		}
	case ast.EkObject:
		for _, f := range e.Fields {
			scanExpr(f.Value)
		}
	case ast.EkDot:
		scanExpr(e.Obj)
	case ast.EkBracket:
		scanExpr(e.Obj)
		scanExpr(e.Key)
	case ast.EkUnary:
		scanExpr(e.Operand)
	case ast.EkJsOp:
		for _, a := range e.Args {
			scanExpr(a)
		}
	case ast.EkFunc:
		free, assigned := computeFreeVars(e)
		e.FuncFreeVars = free
		e.FuncAssignedFreeVars = assigned
	case ast.EkCall:
		scanExpr(e.Callee)
		for _, a := range e.Args {
			scanExpr(a)
		}
	case ast.EkAssign:
		scanExpr(e.Target.Obj)
		scanExpr(e.Target.Key)
		scanExpr(e.Value)
	}
}

// computeFreeVars computes fn's own free-variable set (names referenced in
// its body that resolve outside fn's params and its own function-scoped
// var declarations), recursing into any nested function expressions first
// so their already-reduced free-variable sets can be folded into this
// function's own.
func computeFreeVars(fn *ast.Expr) ([]string, []string) {
	bound := map[string]bool{}
	for _, p := range fn.FuncParams {
		bound[p.Name] = true
	}
	collectVarNames(fn.FuncBody, bound)

	free := map[string]bool{}
	assigned := map[string]bool{}
	freeStmt(fn.FuncBody, bound, free, assigned)

	return sortedKeys(free), sortedKeys(assigned)
}

// collectVarNames gathers every name a `var` statement introduces anywhere
// in s, stopping at a nested EkFunc's own body — JS `var` is function-
// scoped, so a nested function's locals don't leak into this one's bound
// set.
func collectVarNames(s *ast.Stmt, bound map[string]bool) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.SkVar:
		bound[s.Name] = true
	case ast.SkIf:
		collectVarNames(s.Then, bound)
		collectVarNames(s.Else, bound)
	case ast.SkLoop, ast.SkLabel:
		collectVarNames(s.Body, bound)
	case ast.SkBlock:
		for _, child := range s.Stmts {
			collectVarNames(child, bound)
		}
	case ast.SkCatch:
		collectVarNames(s.Body, bound)
		collectVarNames(s.Handler, bound)
	}
}

func freeStmt(s *ast.Stmt, bound, free, assigned map[string]bool) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.SkVar:
		if s.Init != nil {
			freeExpr(s.Init, bound, free, assigned)
		}
	case ast.SkExpr:
		freeExpr(s.Value, bound, free, assigned)
	case ast.SkIf:
		freeExpr(s.Cond, bound, free, assigned)
		freeStmt(s.Then, bound, free, assigned)
		freeStmt(s.Else, bound, free, assigned)
	case ast.SkLoop, ast.SkLabel:
		freeStmt(s.Body, bound, free, assigned)
	case ast.SkReturn:
		freeExpr(s.Value, bound, free, assigned)
	case ast.SkBlock:
		for _, child := range s.Stmts {
			freeStmt(child, bound, free, assigned)
		}
	case ast.SkCatch:
		freeStmt(s.Body, bound, free, assigned)
		freeStmt(s.Handler, bound, free, assigned)
	case ast.SkThrow:
		freeExpr(s.Value, bound, free, assigned)
	}
}

func freeExpr(e *ast.Expr, bound, free, assigned map[string]bool) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.EkIdent:
		if !bound[e.Name] {
			free[e.Name] = true
		}
	case ast.EkArray:
		for _, el := range e.Elements {
			freeExpr(el, bound, free, assigned)
		}
	case ast.EkObject:
		for _, f := range e.Fields {
			freeExpr(f.Value, bound, free, assigned)
		}
	case ast.EkDot:
		freeExpr(e.Obj, bound, free, assigned)
	case ast.EkBracket:
		freeExpr(e.Obj, bound, free, assigned)
		freeExpr(e.Key, bound, free, assigned)
	case ast.EkUnary:
		freeExpr(e.Operand, bound, free, assigned)
	case ast.EkJsOp:
		for _, a := range e.Args {
			freeExpr(a, bound, free, assigned)
		}
	case ast.EkFunc:
		// Recurse first (bottom-up): the nested function resolves its own
		// free variables, and whichever of those aren't bound in *this*
		// function's scope are free here too (it captures them from us).
		nestedFree, nestedAssigned := computeFreeVars(e)
		e.FuncFreeVars = nestedFree
		e.FuncAssignedFreeVars = nestedAssigned
		for _, name := range nestedFree {
			if !bound[name] {
				free[name] = true
			}
		}
		for _, name := range nestedAssigned {
			if !bound[name] {
				assigned[name] = true
			}
		}
	case ast.EkCall:
		freeExpr(e.Callee, bound, free, assigned)
		for _, a := range e.Args {
			freeExpr(a, bound, free, assigned)
		}
	case ast.EkAssign:
		switch e.Target.Kind {
		case ast.LvId:
			if !bound[e.Target.Name] {
				free[e.Target.Name] = true
				assigned[e.Target.Name] = true
			}
		case ast.LvDot:
			freeExpr(e.Target.Obj, bound, free, assigned)
		case ast.LvBracket:
			freeExpr(e.Target.Obj, bound, free, assigned)
			freeExpr(e.Target.Key, bound, free, assigned)
		}
		freeExpr(e.Value, bound, free, assigned)
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Deterministic order matters here: this slice becomes the closure
	// environment's slot order (§4.6.4), which must be stable across
	// compiler runs for a given source file.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
