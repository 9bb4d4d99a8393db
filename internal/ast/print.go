package ast

import (
	"fmt"
	"strings"
)

// Sprint renders stmt as an indented, deterministic textual dump —
// `jankgo dump-highir`'s output — following internal/lowir.Sprint's same
// indented-writer idiom (itself grounded on the teacher's
// pkg/cmd/debug/asm.go print-to-a-builder style). Every node's resolved Ty
// is printed alongside it once inference has run; a node still carrying
// types.Missing()/a Metavar simply prints that placeholder.
func Sprint(stmt *Stmt) string {
	var sb strings.Builder
	printStmt(&sb, stmt, 0)
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func printStmt(sb *strings.Builder, s *Stmt, depth int) {
	if s == nil {
		return
	}
	switch s.Kind {
	case SkVar:
		indent(sb, depth)
		fmt.Fprintf(sb, "var %s: %s", s.Name, s.Ty)
		if s.Init != nil {
			fmt.Fprintf(sb, " = %s", printExpr(s.Init))
		}
		sb.WriteString(";\n")
	case SkExpr:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s;\n", printExpr(s.Value))
	case SkIf:
		indent(sb, depth)
		fmt.Fprintf(sb, "if (%s) {\n", printExpr(s.Cond))
		printStmt(sb, s.Then, depth+1)
		indent(sb, depth)
		sb.WriteString("}")
		if s.Else != nil {
			sb.WriteString(" else {\n")
			printStmt(sb, s.Else, depth+1)
			indent(sb, depth)
			sb.WriteString("}")
		}
		sb.WriteString("\n")
	case SkLoop:
		indent(sb, depth)
		sb.WriteString("loop {\n")
		printStmt(sb, s.Body, depth+1)
		indent(sb, depth)
		sb.WriteString("}\n")
	case SkLabel:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s: {\n", s.Label)
		printStmt(sb, s.Body, depth+1)
		indent(sb, depth)
		sb.WriteString("}\n")
	case SkBreak:
		indent(sb, depth)
		fmt.Fprintf(sb, "break %s;\n", s.Label)
	case SkReturn:
		indent(sb, depth)
		if s.Value == nil {
			sb.WriteString("return;\n")
		} else {
			fmt.Fprintf(sb, "return %s;\n", printExpr(s.Value))
		}
	case SkBlock:
		for _, child := range s.Stmts {
			printStmt(sb, child, depth)
		}
	case SkCatch:
		indent(sb, depth)
		sb.WriteString("try {\n")
		printStmt(sb, s.Body, depth+1)
		indent(sb, depth)
		fmt.Fprintf(sb, "} catch (%s) {\n", s.ExnName)
		printStmt(sb, s.Handler, depth+1)
		indent(sb, depth)
		sb.WriteString("}\n")
	case SkThrow:
		indent(sb, depth)
		fmt.Fprintf(sb, "throw %s;\n", printExpr(s.Value))
	case SkEmpty:
		// nothing to print
	}
}

func printExpr(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case EkLitInt:
		return fmt.Sprintf("%d", e.IntVal)
	case EkLitFloat:
		return fmt.Sprintf("%g", e.FloatVal)
	case EkLitBool:
		return fmt.Sprintf("%t", e.BoolVal)
	case EkLitString:
		return fmt.Sprintf("%q", e.StringVal)
	case EkLitUndefined:
		return "undefined"
	case EkLitNull:
		return "null"
	case EkIdent:
		return fmt.Sprintf("%s:%s", e.Name, e.Ty)
	case EkArray:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = printExpr(el)
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
	case EkObject:
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Key, printExpr(f.Value))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case EkDot:
		return fmt.Sprintf("%s.%s", printExpr(e.Obj), e.Name)
	case EkBracket:
		return fmt.Sprintf("%s[%s]", printExpr(e.Obj), printExpr(e.Key))
	case EkUnary:
		return fmt.Sprintf("(%s%s)", e.Op, printExpr(e.Operand))
	case EkBinary:
		return fmt.Sprintf("(%s %s %s)", printExpr(e.Lhs), e.Op, printExpr(e.Rhs))
	case EkJsOp:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = printExpr(a)
		}
		return fmt.Sprintf("(%s %s)", e.Op, strings.Join(parts, " "))
	case EkFunc:
		params := make([]string, len(e.FuncParams))
		for i, p := range e.FuncParams {
			params[i] = fmt.Sprintf("%s: %s", p.Name, p.Ty)
		}
		name := e.FuncName
		if name == "" {
			name = "<anonymous>"
		}
		var body strings.Builder
		printStmt(&body, e.FuncBody, 1)
		return fmt.Sprintf("function %s(%s): %s {\n%s}", name, strings.Join(params, ", "), e.FuncResultTy, body.String())
	case EkCall:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = printExpr(a)
		}
		return fmt.Sprintf("%s(%s)", printExpr(e.Callee), strings.Join(parts, ", "))
	case EkAssign:
		return fmt.Sprintf("%s = %s", printLValue(e.Target), printExpr(e.Value))
	case EkCoercion:
		return fmt.Sprintf("coerce<%d>(%s)", e.Coercion.Tag, printExpr(e.Inner))
	case EkNewRef:
		return fmt.Sprintf("new_ref(%s)", printExpr(e.Inner))
	case EkDeref:
		return fmt.Sprintf("*%s", printExpr(e.Inner))
	case EkStore:
		return fmt.Sprintf("*%s = %s", printExpr(e.Inner), printExpr(e.Value))
	case EkEnvGet:
		return fmt.Sprintf("env[%d]", e.EnvIndex)
	case EkClosure:
		parts := make([]string, len(e.ClosureEnv))
		for i, slot := range e.ClosureEnv {
			parts[i] = slot.Name
		}
		return fmt.Sprintf("closure(%s; [%s])", e.ClosureFn, strings.Join(parts, ", "))
	default:
		return "<unknown expr>"
	}
}

func printLValue(l *LValue) string {
	if l == nil {
		return "<nil>"
	}
	switch l.Kind {
	case LvId:
		return fmt.Sprintf("%s:%s", l.Name, l.Ty)
	case LvDot:
		return fmt.Sprintf("%s.%s", printExpr(l.Obj), l.Name)
	case LvBracket:
		return fmt.Sprintf("%s[%s]", printExpr(l.Obj), printExpr(l.Key))
	default:
		return "<unknown lvalue>"
	}
}
