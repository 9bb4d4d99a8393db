// Package lexer tokenizes the JS subset internal/parser recognizes
// (SPEC_FULL §6): number/string/bool literals, identifiers/keywords, the
// operator set spec.md's JsOp table covers, and the punctuation the §8
// scenarios exercise. It is a stand-in for the out-of-scope desugarer
// spec.md §1 names, not a general JS tokenizer.
package lexer

import (
	"fmt"
	"strings"

	"github.com/funvibe/jankgo/internal/config"
	"github.com/funvibe/jankgo/internal/diag"
)

type Kind int

const (
	TEOF Kind = iota
	TIdent
	TKeyword
	TInt
	TFloat
	TString
	TPunct
)

// Token is one lexical unit, tagged with its source position for
// diag.CompileError reporting further down the pipeline.
type Token struct {
	Kind Kind
	Text string
	Pos  diag.Pos
}

var keywords = map[string]bool{
	"var": true, "function": true, "return": true, "if": true, "else": true,
	"while": true, "for": true, "break": true, "true": true, "false": true,
	"undefined": true, "null": true, "new": true,
}

// Lexer scans one source file into a Token slice up front (SPEC_FULL §6's
// grammar is small enough that a hand-rolled recursive-descent parser
// doesn't need streaming lookahead beyond what a plain slice index gives
// it), following the single-pass scan-then-parse split of the reference
// runtime's own front end (original_source/src/parser.rs runs a tokenizer
// ahead of its parser, not an interleaved lexer).
type Lexer struct {
	src    string
	file   string
	pos    int
	line   int
	col    int
	tokens []Token
}

func New(src, file string) *Lexer {
	return &Lexer{src: src, file: file, line: 1, col: 1}
}

func (l *Lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", l.here(), fmt.Sprintf(format, args...))
}

func (l *Lexer) here() diag.Pos { return diag.Pos{Line: l.line, Col: l.col, File: l.file} }

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// Tokenize scans the whole source and appends a trailing TEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.pos < len(l.src) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peek() == '*' && l.peekAt(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
		case isDigit(c):
			if err := l.scanNumber(); err != nil {
				return nil, err
			}
		case c == '"' || c == '\'':
			if err := l.scanString(c); err != nil {
				return nil, err
			}
		case isIdentStart(c):
			l.scanIdent()
			if last := l.tokens[len(l.tokens)-1]; strings.HasPrefix(last.Text, config.NameGenPrefix) {
				return nil, fmt.Errorf("%s: identifier %q uses the reserved prefix %q", last.Pos, last.Text, config.NameGenPrefix)
			}
		default:
			if err := l.scanPunct(); err != nil {
				return nil, err
			}
		}
	}
	l.tokens = append(l.tokens, Token{Kind: TEOF, Pos: l.here()})
	return l.tokens, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentCont(c byte) bool  { return isIdentStart(c) || isDigit(c) }

func (l *Lexer) scanNumber() error {
	start := l.pos
	pos := l.here()
	isFloat := false
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.src[start:l.pos]
	kind := TInt
	if isFloat {
		kind = TFloat
	}
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Pos: pos})
	return nil
}

func (l *Lexer) scanString(quote byte) error {
	pos := l.here()
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return l.errorf("unterminated string literal")
		}
		c := l.peek()
		if c == quote {
			l.advance()
			break
		}
		if c == '\\' {
			l.advance()
			if l.pos >= len(l.src) {
				return l.errorf("unterminated string literal")
			}
			sb.WriteByte(unescape(l.advance()))
			continue
		}
		sb.WriteByte(l.advance())
	}
	l.tokens = append(l.tokens, Token{Kind: TString, Text: sb.String(), Pos: pos})
	return nil
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}

func (l *Lexer) scanIdent() {
	start := l.pos
	pos := l.here()
	for isIdentCont(l.peek()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	kind := TIdent
	if keywords[text] {
		kind = TKeyword
	}
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Pos: pos})
}

// multiCharPuncts is checked longest-first so "===" isn't mis-split into
// "==" + "=", etc.
var multiCharPuncts = []string{
	"===", "!==", "<<=", ">>=",
	"==", "!=", "<=", ">=", "&&", "||", "=>", "++", "--", "+=", "-=", "*=", "/=", "<<", ">>",
}

func (l *Lexer) scanPunct() error {
	pos := l.here()
	rest := l.src[l.pos:]
	for _, p := range multiCharPuncts {
		if strings.HasPrefix(rest, p) {
			for range p {
				l.advance()
			}
			l.tokens = append(l.tokens, Token{Kind: TPunct, Text: p, Pos: pos})
			return nil
		}
	}
	c := l.advance()
	if strings.IndexByte("+-*/%<>=!&|^~(){}[],;:.?", c) < 0 {
		return l.errorf("unexpected character %q", c)
	}
	l.tokens = append(l.tokens, Token{Kind: TPunct, Text: string(c), Pos: pos})
	return nil
}
