package anf

import (
	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/lowir"
)

// normTop normalizes the program's top-level statement sequence into n's
// buffer by delegating to normStmt; normStmt's Var case already records each
// declared type in n.varType, so later sibling statements (and any closures
// they form) can find the declared type of an earlier top-level binding.
func (n *normalizer) normTop(s *ast.Stmt) {
	n.normStmt(s)
}

func (n *normalizer) normStmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.SkVar:
		n.varType[s.Name] = s.Ty
		if s.Init == nil {
			n.emit(lowir.Var(s.Name, s.Ty, nil))
			return
		}
		expr := n.toExpr(s.Init)
		n.emit(lowir.Var(s.Name, s.Ty, &expr))

	case ast.SkExpr:
		expr := n.toExpr(s.Value)
		n.emit(lowir.Expression(&expr))

	case ast.SkIf:
		cond := n.toAtom(s.Cond)
		then := n.subBlock(s.Then)
		var els *lowir.Stmt
		if s.Else != nil {
			els = n.subBlock(s.Else)
		}
		n.emit(lowir.If(cond, then, els))

	case ast.SkLoop:
		n.emit(lowir.Loop(n.subBlock(s.Body)))

	case ast.SkLabel:
		n.emit(lowir.LabelStmt(s.Label, n.subBlock(s.Body)))

	case ast.SkBreak:
		n.emit(lowir.Break(s.Label))

	case ast.SkReturn:
		if s.Value == nil {
			n.emit(lowir.Return(nil))
			return
		}
		v := n.toAtom(s.Value)
		n.emit(lowir.Return(&v))

	case ast.SkBlock:
		for _, child := range s.Stmts {
			n.normStmt(child)
		}

	case ast.SkCatch:
		// Exception handling is elided at lowering (§9 Open Questions): the
		// protected body still runs, the handler does not. A later pass
		// that implements unwinding replaces this with a real try/catch
		// lowering.
		n.normStmt(s.Body)

	case ast.SkThrow:
		a := n.toAtom(s.Value)
		_ = a
		n.emit(lowir.Trap("uncaught throw"))

	case ast.SkEmpty:
		n.emit(lowir.Empty())
	}
}

// subBlock normalizes body into its own fresh statement buffer (a nested
// control-flow arm needs its own Block rather than appending into the
// parent's buffer), restoring n.stmts afterward.
func (n *normalizer) subBlock(body *ast.Stmt) *lowir.Stmt {
	saved := n.stmts
	n.stmts = nil
	n.normStmt(body)
	block := lowir.Block(n.stmts)
	n.stmts = saved
	return block
}
