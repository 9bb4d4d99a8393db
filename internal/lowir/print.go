package lowir

import (
	"fmt"
	"sort"
	"strings"
)

// Sprint renders prog as an indented, deterministic textual dump —
// `jankgo dump-lowir`'s output and the text internal/pipeline's golden
// tests snapshot, following the teacher's own
// print-assembly-to-a-string-builder idiom (pkg/cmd/debug/asm.go) rather
// than a generic reflection-based dumper.
func Sprint(prog *Program) string {
	var sb strings.Builder
	names := make([]string, 0, len(prog.Functions))
	for name := range prog.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printFunction(&sb, prog.Functions[name])
	}
	return sb.String()
}

func printFunction(sb *strings.Builder, fn *Function) {
	fmt.Fprintf(sb, "fn %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s: %s", p.Id, p.Ty)
	}
	sb.WriteString(") {\n")
	printStmt(sb, fn.Body, 1)
	sb.WriteString("}\n")
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
		fmt.Fprintf(sb, "var %s: %s = %s;\n", s.Id, s.Ty, printExpr(s.Expr))
	case SkAssign:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s = %s;\n", s.Id, printExpr(s.Expr))
	case SkStore:
		indent(sb, depth)
		fmt.Fprintf(sb, "*%s = %s;\n", s.Id, printExpr(s.Expr))
	case SkExpression:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s;\n", printExpr(s.Expr))
	case SkIf:
		indent(sb, depth)
		fmt.Fprintf(sb, "if (%s) {\n", printAtom(s.Cond))
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
			fmt.Fprintf(sb, "return %s;\n", printAtom(s.Value))
		}
	case SkBlock:
		for _, child := range s.Stmts {
			printStmt(sb, child, depth)
		}
	case SkEmpty:
		// nothing to print
	case SkTrap:
		indent(sb, depth)
		fmt.Fprintf(sb, "trap %q;\n", s.TrapReason)
	}
}

func printAtom(a *Atom) string {
	if a == nil {
		return "<nil>"
	}
	switch a.Kind {
	case AkLitInt:
		return fmt.Sprintf("%d", a.IntVal)
	case AkLitFloat:
		return fmt.Sprintf("%g", a.FloatVal)
	case AkLitBool:
		return fmt.Sprintf("%t", a.BoolVal)
	case AkLitString:
		return fmt.Sprintf("%q", a.StringVal)
	case AkLitUndefined:
		return "undefined"
	case AkLitNull:
		return "null"
	case AkId:
		return a.Id
	case AkBinary:
		return fmt.Sprintf("(%s %s %s)", printAtom(a.Lhs), a.Op, printAtom(a.Rhs))
	case AkUnary:
		return fmt.Sprintf("(%s%s)", a.Op, printAtom(a.Operand))
	case AkToAny:
		return fmt.Sprintf("to_any(%s)", printAtom(a.Operand))
	case AkFromAny:
		return fmt.Sprintf("from_any(%s, %s)", printAtom(a.Operand), a.Ty)
	case AkFloatToInt:
		return fmt.Sprintf("f2i(%s)", printAtom(a.Operand))
	case AkIntToFloat:
		return fmt.Sprintf("i2f(%s)", printAtom(a.Operand))
	case AkEnvGet:
		return fmt.Sprintf("env[%d]", a.EnvIndex)
	case AkDeref:
		return fmt.Sprintf("*%s", a.Id)
	case AkObjectGet:
		return fmt.Sprintf("%s.[%s]", a.Id, printAtom(a.Field))
	case AkArrayGet:
		return fmt.Sprintf("%s[%s]", a.Id, printAtom(a.Index))
	case AkAnyLength:
		return fmt.Sprintf("%s.%s()", a.Id, a.MethodLit)
	case AkPrimApp:
		return fmt.Sprintf("%s(%s)", a.PrimName, strings.Join(a.Args, ", "))
	case AkGetPrimFunc:
		return fmt.Sprintf("&%s", a.PrimName)
	default:
		return "<unknown atom>"
	}
}

func printExpr(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case EkAtom:
		return printAtom(e.Atom)
	case EkArraySet:
		return fmt.Sprintf("%s[%s] = %s", e.BaseId, printAtom(e.Index), printAtom(e.Value))
	case EkArrayNew:
		return fmt.Sprintf("array_new(%s)", printAtom(e.Index))
	case EkObjectSet:
		return fmt.Sprintf("%s.[%s] = %s", e.BaseId, printAtom(e.Field), printAtom(e.Value))
	case EkObjectEmpty:
		return "object_empty()"
	case EkPrimCall:
		return fmt.Sprintf("%s(%s)", e.FunId, strings.Join(e.Args, ", "))
	case EkCall:
		return fmt.Sprintf("call %s(%s)", e.FunId, strings.Join(e.Args, ", "))
	case EkClosureCall:
		return fmt.Sprintf("%s(%s)", e.FunId, strings.Join(e.Args, ", "))
	case EkAnyMethodCall:
		return fmt.Sprintf("%s.%s(%s)", e.AnyId, e.MethodLit, strings.Join(e.Args, ", "))
	case EkNewRef:
		return fmt.Sprintf("new_ref(%s)", printAtom(e.RefInit))
	case EkClosureAlloc:
		parts := make([]string, len(e.ClosureEnv))
		for i, entry := range e.ClosureEnv {
			parts[i] = entry.Id
		}
		return fmt.Sprintf("closure(%s; [%s])", e.ClosureFn, strings.Join(parts, ", "))
	default:
		return "<unknown expr>"
	}
}
