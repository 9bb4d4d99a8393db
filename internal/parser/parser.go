// Package parser implements the minimal JS-subset recognizer SPEC_FULL §6
// calls for: number/string/bool literals, var declarations and assignment,
// array and object literals, `.` field access, the binary/unary operators
// spec.md's JsOp table covers, function declarations/expressions and
// calls, if/else, while, return and break. It stands in for the
// out-of-scope JS desugarer spec.md §1 names, not a general JS front end.
package parser

import (
	"fmt"
	"strconv"

	"github.com/funvibe/jankgo/internal/ast"
	"github.com/funvibe/jankgo/internal/diag"
	"github.com/funvibe/jankgo/internal/lexer"
	"github.com/funvibe/jankgo/internal/types"
)

// Parser is a hand-rolled recursive-descent/Pratt parser over a
// pre-scanned Token slice, mirroring the teacher's own front end's
// single-pass-lex-then-recursive-descent-parse split rather than an
// interleaved scanner.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string
}

// Parse tokenizes src and parses it into a single top-level HighIR Block
// statement, ready for internal/infer.Infer. Function expressions found
// anywhere in the program have their free-variable closure metadata filled
// in before Parse returns (§3.1 Closure, §4.6.4).
func Parse(src, file string) (*ast.Stmt, error) {
	toks, err := lexer.New(src, file).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, file: file}
	stmts, err := p.parseStmtsUntil(lexer.TEOF, "")
	if err != nil {
		return nil, err
	}
	top := ast.Block(diag.Pos{File: file, Line: 1, Col: 1}, stmts)
	computeClosures(top)
	return top, nil
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) here() diag.Pos    { return p.cur().Pos }
func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", p.here(), fmt.Sprintf(format, args...))
}

func (p *Parser) isPunct(s string) bool {
	return p.cur().Kind == lexer.TPunct && p.cur().Text == s
}

func (p *Parser) isKeyword(s string) bool {
	return p.cur().Kind == lexer.TKeyword && p.cur().Text == s
}

func (p *Parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errorf("expected %q, got %q", s, p.cur().Text)
	}
	p.advance()
	return nil
}

func (p *Parser) expectKeyword(s string) error {
	if !p.isKeyword(s) {
		return p.errorf("expected %q, got %q", s, p.cur().Text)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, diag.Pos, error) {
	if p.cur().Kind != lexer.TIdent {
		return "", diag.NoPos, p.errorf("expected identifier, got %q", p.cur().Text)
	}
	t := p.advance()
	return t.Text, t.Pos, nil
}

// parseStmtsUntil parses statements until a TEOF or, for block bodies, a
// closing "}".
func (p *Parser) parseStmtsUntil(stop lexer.Kind, stopPunct string) ([]*ast.Stmt, error) {
	var stmts []*ast.Stmt
	for {
		if p.cur().Kind == stop {
			break
		}
		if stopPunct != "" && p.isPunct(stopPunct) {
			break
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts, nil
}

func (p *Parser) parseBlock() (*ast.Stmt, error) {
	pos := p.here()
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtsUntil(lexer.TEOF, "}")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return ast.Block(pos, stmts), nil
}

func (p *Parser) parseStmt() (*ast.Stmt, error) {
	switch {
	case p.isPunct(";"):
		pos := p.here()
		p.advance()
		return ast.Empty(pos), nil
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isKeyword("var"):
		return p.parseVarDecl()
	case p.isKeyword("function"):
		return p.parseFuncDecl()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("break"):
		pos := p.here()
		p.advance()
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return ast.Break(pos, ""), nil
	default:
		pos := p.here()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return ast.ExprStmt(pos, e), nil
	}
}

func (p *Parser) parseVarDecl() (*ast.Stmt, error) {
	pos := p.here()
	if err := p.expectKeyword("var"); err != nil {
		return nil, err
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var init *ast.Expr
	if p.isPunct("=") {
		p.advance()
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return ast.Var(pos, name, types.Missing(), init), nil
}

// parseFuncDecl parses `function name(params) { body }` as sugar for
// `var name = function name(params) { body };` (§3.2 has no separate
// function-declaration node — a Func expression bound by Var is how the
// emitter and A-normalizer both already expect top-level functions to
// arrive).
func (p *Parser) parseFuncDecl() (*ast.Stmt, error) {
	pos := p.here()
	fn, name, err := p.parseFuncExpr(true)
	if err != nil {
		return nil, err
	}
	return ast.Var(pos, name, types.Missing(), fn), nil
}

func (p *Parser) parseFuncExpr(requireName bool) (*ast.Expr, string, error) {
	pos := p.here()
	if err := p.expectKeyword("function"); err != nil {
		return nil, "", err
	}
	name := ""
	if p.cur().Kind == lexer.TIdent {
		name, _, _ = p.expectIdent()
	} else if requireName {
		return nil, "", p.errorf("expected function name")
	}
	if err := p.expectPunct("("); err != nil {
		return nil, "", err
	}
	var params []ast.Param
	for !p.isPunct(")") {
		pname, _, err := p.expectIdent()
		if err != nil {
			return nil, "", err
		}
		params = append(params, ast.Param{Name: pname, Ty: types.Missing()})
		if p.isPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, "", err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, "", err
	}
	fn := ast.Func(pos, name, params, types.Missing(), body, nil, nil)
	return fn, name, nil
}

func (p *Parser) parseIf() (*ast.Stmt, error) {
	pos := p.here()
	if err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els *ast.Stmt
	if p.isKeyword("else") {
		p.advance()
		if p.isKeyword("if") {
			els, err = p.parseIf()
		} else {
			els, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return ast.If(pos, cond, then, els), nil
}

// parseWhile desugars `while (cond) body` into a Loop with an explicit
// negated-condition break, since §3.2's Loop node carries no condition of
// its own (spec.md's Loop is "body; loop forever, exited only by Break").
func (p *Parser) parseWhile() (*ast.Stmt, error) {
	pos := p.here()
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	guard := ast.If(pos, ast.Unary(pos, "!", cond), ast.Block(pos, []*ast.Stmt{ast.Break(pos, "")}), nil)
	loopBody := ast.Block(pos, append([]*ast.Stmt{guard}, body.Stmts...))
	return ast.Loop(pos, loopBody), nil
}

func (p *Parser) parseReturn() (*ast.Stmt, error) {
	pos := p.here()
	if err := p.expectKeyword("return"); err != nil {
		return nil, err
	}
	var value *ast.Expr
	if !p.isPunct(";") {
		var err error
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return ast.Return(pos, value), nil
}

func parseIntLit(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloatLit(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
