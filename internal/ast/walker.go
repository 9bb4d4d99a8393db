package ast

// Context identifies which structural position of a parent node the walker
// is currently descending into — the piece that answers "am I in a
// coercion's target type?" from §9 Design Notes without requiring a dynamic
// type switch at every call site.
type Context int

const (
	CtxRoot Context = iota
	CtxArrayElem
	CtxObjectValue
	CtxDotObj
	CtxBracketObj
	CtxBracketKey
	CtxUnaryOperand
	CtxBinaryLhs
	CtxBinaryRhs
	CtxJsOpArg
	CtxFuncBody
	CtxCallCallee
	CtxCallArg
	CtxAssignValue
	CtxCoercionInner
	CtxRefInner
	CtxStoreValue
	CtxVarInit
	CtxIfCond
	CtxIfThen
	CtxIfElse
	CtxLoopBody
	CtxLabelBody
	CtxBlockStmt
	CtxCatchBody
	CtxCatchHandler
	CtxThrowValue
	CtxReturnValue
)

// Loc is the breadcrumb the walker threads through a descent: the parent
// node and which of its slots the current node occupies. Visitor hooks can
// walk Parent/Ctx to answer structural questions (e.g. "is the enclosing
// node a Coercion whose target I am?") without the walker exposing a full
// path stack.
type Loc struct {
	Parent   *Loc
	Ctx      Context
	ExprNode *Expr
	StmtNode *Stmt
}

func childLoc(parent *Loc, ctx Context, e *Expr, s *Stmt) *Loc {
	return &Loc{Parent: parent, Ctx: ctx, ExprNode: e, StmtNode: s}
}

// Visitor receives enter/exit calls for every Expr and Stmt node, each
// carrying the Loc breadcrumb for the node being visited. Either hook may be
// nil. Returning false from EnterExpr/EnterStmt skips descending into that
// node's children (and ExitExpr/ExitStmt is not called for a skipped node).
type Visitor struct {
	EnterExpr func(e *Expr, loc *Loc) bool
	ExitExpr  func(e *Expr, loc *Loc)
	EnterStmt func(s *Stmt, loc *Loc) bool
	ExitStmt  func(s *Stmt, loc *Loc)
}

// WalkStmt walks s and its descendants in source order, replacing dynamic
// dispatch over a class hierarchy (there is none in Go) with a total
// pattern-match over StmtKind/ExprKind, per §9 Design Notes.
func WalkStmt(s *Stmt, v *Visitor) {
	walkStmt(s, v, childLoc(nil, CtxRoot, nil, s))
}

func WalkExpr(e *Expr, v *Visitor) {
	walkExpr(e, v, childLoc(nil, CtxRoot, e, nil))
}

func walkStmt(s *Stmt, v *Visitor, loc *Loc) {
	if s == nil {
		return
	}
	if v.EnterStmt != nil && !v.EnterStmt(s, loc) {
		return
	}
	switch s.Kind {
	case SkVar:
		if s.Init != nil {
			walkExpr(s.Init, v, childLoc(loc, CtxVarInit, s.Init, nil))
		}
	case SkExpr:
		walkExpr(s.Value, v, childLoc(loc, CtxBlockStmt, s.Value, nil))
	case SkIf:
		walkExpr(s.Cond, v, childLoc(loc, CtxIfCond, s.Cond, nil))
		walkStmt(s.Then, v, childLoc(loc, CtxIfThen, nil, s.Then))
		if s.Else != nil {
			walkStmt(s.Else, v, childLoc(loc, CtxIfElse, nil, s.Else))
		}
	case SkLoop:
		walkStmt(s.Body, v, childLoc(loc, CtxLoopBody, nil, s.Body))
	case SkLabel:
		walkStmt(s.Body, v, childLoc(loc, CtxLabelBody, nil, s.Body))
	case SkBreak:
		// leaf
	case SkReturn:
		if s.Value != nil {
			walkExpr(s.Value, v, childLoc(loc, CtxReturnValue, s.Value, nil))
		}
	case SkBlock:
		for _, child := range s.Stmts {
			walkStmt(child, v, childLoc(loc, CtxBlockStmt, nil, child))
		}
	case SkCatch:
		walkStmt(s.Body, v, childLoc(loc, CtxCatchBody, nil, s.Body))
		if s.Handler != nil {
			walkStmt(s.Handler, v, childLoc(loc, CtxCatchHandler, nil, s.Handler))
		}
	case SkThrow:
		walkExpr(s.Value, v, childLoc(loc, CtxThrowValue, s.Value, nil))
	case SkEmpty:
		// leaf
	}
	if v.ExitStmt != nil {
		v.ExitStmt(s, loc)
	}
}

func walkExpr(e *Expr, v *Visitor, loc *Loc) {
	if e == nil {
		return
	}
	if v.EnterExpr != nil && !v.EnterExpr(e, loc) {
		return
	}
	switch e.Kind {
	case EkArray:
		for _, el := range e.Elements {
			walkExpr(el, v, childLoc(loc, CtxArrayElem, el, nil))
		}
	case EkObject:
		for _, f := range e.Fields {
			walkExpr(f.Value, v, childLoc(loc, CtxObjectValue, f.Value, nil))
		}
	case EkDot:
		walkExpr(e.Obj, v, childLoc(loc, CtxDotObj, e.Obj, nil))
	case EkBracket:
		walkExpr(e.Obj, v, childLoc(loc, CtxBracketObj, e.Obj, nil))
		walkExpr(e.Key, v, childLoc(loc, CtxBracketKey, e.Key, nil))
	case EkUnary:
		walkExpr(e.Operand, v, childLoc(loc, CtxUnaryOperand, e.Operand, nil))
	case EkBinary:
		walkExpr(e.Lhs, v, childLoc(loc, CtxBinaryLhs, e.Lhs, nil))
		walkExpr(e.Rhs, v, childLoc(loc, CtxBinaryRhs, e.Rhs, nil))
	case EkJsOp:
		for _, a := range e.Args {
			walkExpr(a, v, childLoc(loc, CtxJsOpArg, a, nil))
		}
	case EkFunc:
		walkStmt(e.FuncBody, v, childLoc(loc, CtxFuncBody, nil, e.FuncBody))
	case EkCall:
		walkExpr(e.Callee, v, childLoc(loc, CtxCallCallee, e.Callee, nil))
		for _, a := range e.Args {
			walkExpr(a, v, childLoc(loc, CtxCallArg, a, nil))
		}
	case EkAssign:
		if e.Target.Obj != nil {
			walkExpr(e.Target.Obj, v, childLoc(loc, CtxDotObj, e.Target.Obj, nil))
		}
		if e.Target.Key != nil {
			walkExpr(e.Target.Key, v, childLoc(loc, CtxBracketKey, e.Target.Key, nil))
		}
		walkExpr(e.Value, v, childLoc(loc, CtxAssignValue, e.Value, nil))
	case EkCoercion:
		walkExpr(e.Inner, v, childLoc(loc, CtxCoercionInner, e.Inner, nil))
	case EkNewRef:
		walkExpr(e.Inner, v, childLoc(loc, CtxRefInner, e.Inner, nil))
	case EkDeref:
		walkExpr(e.Inner, v, childLoc(loc, CtxRefInner, e.Inner, nil))
	case EkStore:
		walkExpr(e.Inner, v, childLoc(loc, CtxRefInner, e.Inner, nil))
		walkExpr(e.Value, v, childLoc(loc, CtxStoreValue, e.Value, nil))
	}
	if v.ExitExpr != nil {
		v.ExitExpr(e, loc)
	}
}

// InCoercionTarget reports whether loc's immediate parent is a Coercion
// node, i.e. whether the current node is being coerced. This is the
// concrete case §9 Design Notes calls out ("am I in a coercion's target
// type?").
func InCoercionTarget(loc *Loc) bool {
	return loc != nil && loc.Ctx == CtxCoercionInner
}
