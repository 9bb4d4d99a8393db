package parser

import (
	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lexer"
	"github.com/funvibe/jankgo/internal/types"
)

// binaryLevels lists the binary-operator precedence climb, lowest first,
// one entry per internal/infer.Overloads-covered tier (spec.md's JsOp
// operator set, §6's grammar: "binary operators (+ << ...)"). Logical &&/||
// are deliberately absent — they have no JsOp overload entry in this
// subset, so the grammar never produces a node infer wouldn't know how to
// type.
var binaryLevels = [][]string{
	{"==", "!=", "===", "!=="},
	{"<", "<=", ">", ">="},
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/"},
}

// normalizeOp maps a strict-equality token onto the loose overload this
// subset actually defines (infer.Overloads has no "===" entry; this front
// end doesn't distinguish the two).
func normalizeOp(op string) string {
	switch op {
	case "===":
		return "=="
	case "!==":
		return "!="
	default:
		return op
	}
}

func (p *Parser) parseExpr() (*ast.Expr, error) {
	return p.parseAssign()
}

// parseAssign handles `target = value`, where target must already parse as
// an identifier, a Dot, or a Bracket expression (§3.2's three LValue
// shapes).
func (p *Parser) parseAssign() (*ast.Expr, error) {
	pos := p.here()
	lhs, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.isPunct("=") {
		return lhs, nil
	}
	p.advance()
	rhs, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	target, err := exprToLValue(lhs)
	if err != nil {
		return nil, err
	}
	return ast.Assign(pos, target, rhs), nil
}

func exprToLValue(e *ast.Expr) (*ast.LValue, error) {
	switch e.Kind {
	case ast.EkIdent:
		return ast.IdLValue(e.Pos, e.Name, e.Ty), nil
	case ast.EkDot:
		return ast.DotLValue(e.Pos, e.Obj, e.Name), nil
	case ast.EkBracket:
		return ast.BracketLValue(e.Pos, e.Obj, e.Key, e.ContainerTy), nil
	default:
		return nil, diag.NewCompileError(diag.ParseError, e.Pos, "", "invalid assignment target")
	}
}

func (p *Parser) parseBinary(level int) (*ast.Expr, error) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	lhs, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lexer.TPunct && containsOp(binaryLevels[level], p.cur().Text) {
		pos := p.here()
		op := normalizeOp(p.advance().Text)
		rhs, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		lhs = ast.JsOp(pos, op, lhs, rhs)
	}
	return lhs, nil
}

func containsOp(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (*ast.Expr, error) {
	if p.cur().Kind == lexer.TPunct && (p.cur().Text == "!" || p.cur().Text == "-" || p.cur().Text == "+") {
		pos := p.here()
		op := p.advance().Text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary(pos, op, operand), nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			pos := p.here()
			p.advance()
			name, _, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			e = ast.Dot(pos, e, name)
		case p.isPunct("["):
			pos := p.here()
			p.advance()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			e = ast.Bracket(pos, e, key, types.Missing())
		case p.isPunct("("):
			pos := p.here()
			p.advance()
			var args []*ast.Expr
			for !p.isPunct(")") {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.isPunct(",") {
					p.advance()
				}
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			e = ast.Call(pos, e, args)
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ast.Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == lexer.TInt:
		p.advance()
		return ast.Int(t.Pos, parseIntLit(t.Text)), nil
	case t.Kind == lexer.TFloat:
		p.advance()
		return ast.Float(t.Pos, parseFloatLit(t.Text)), nil
	case t.Kind == lexer.TString:
		p.advance()
		return ast.String(t.Pos, t.Text), nil
	case t.Kind == lexer.TKeyword && t.Text == "true":
		p.advance()
		return ast.Bool(t.Pos, true), nil
	case t.Kind == lexer.TKeyword && t.Text == "false":
		p.advance()
		return ast.Bool(t.Pos, false), nil
	case t.Kind == lexer.TKeyword && t.Text == "undefined":
		p.advance()
		return ast.Undefined(t.Pos), nil
	case t.Kind == lexer.TKeyword && t.Text == "null":
		p.advance()
		return ast.Null(t.Pos), nil
	case t.Kind == lexer.TKeyword && t.Text == "function":
		fn, _, err := p.parseFuncExpr(false)
		return fn, err
	case t.Kind == lexer.TIdent:
		p.advance()
		return ast.Ident(t.Pos, t.Text, types.Missing()), nil
	case p.isPunct("("):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case p.isPunct("["):
		return p.parseArrayLit()
	case p.isPunct("{"):
		return p.parseObjectLit()
	default:
		return nil, p.errorf("unexpected token %q", t.Text)
	}
}

func (p *Parser) parseArrayLit() (*ast.Expr, error) {
	pos := p.here()
	p.advance() // "["
	var elems []*ast.Expr
	for !p.isPunct("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.isPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return ast.Array(pos, elems), nil
}

func (p *Parser) parseObjectLit() (*ast.Expr, error) {
	pos := p.here()
	p.advance() // "{"
	var fields []ast.ObjectField
	for !p.isPunct("}") {
		var key string
		switch {
		case p.cur().Kind == lexer.TIdent || p.cur().Kind == lexer.TKeyword:
			key = p.advance().Text
		case p.cur().Kind == lexer.TString:
			key = p.advance().Text
		default:
			return nil, p.errorf("expected object key, got %q", p.cur().Text)
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.ObjectField{Key: key, Value: val})
		if p.isPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return ast.Object(pos, fields), nil
}
