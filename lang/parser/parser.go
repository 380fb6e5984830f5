// Package parser implements a recursive-descent parser that turns the
// token stream produced by lang/scanner into the parse tree defined by
// lang/ast. The grammar it recognizes is the small C-like imperative
// language consumed by the compiler's lowering pass.
package parser

import (
	"fmt"

	"github.com/nickolasddiaz/16bitcomputer/lang/ast"
	"github.com/nickolasddiaz/16bitcomputer/lang/scanner"
	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

// Error is a parse failure at a specific position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Parse tokenizes and parses src, returning the resulting *ast.Program.
// A non-nil error is either a scanner.ErrorList (lexical error) or a
// *Error (syntax error); either case is reported to the caller as a
// ParseFailure by the driver.
func Parse(src []byte) (*ast.Program, error) {
	toks, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

type parser struct {
	toks []scanner.TokenAndValue
	pos  int
}

func (p *parser) cur() scanner.TokenAndValue { return p.toks[p.pos] }
func (p *parser) tok() token.Token           { return p.toks[p.pos].Token }

func (p *parser) advance() scanner.TokenAndValue {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(tok token.Token) (scanner.TokenAndValue, error) {
	if p.tok() != tok {
		return scanner.TokenAndValue{}, p.errorf("expected %s, found %s", tok.GoString(), p.tok().GoString())
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &Error{Pos: p.cur().Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.tok() != token.EOF {
		fn, err := p.parseFuncDecl()
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, fn)
	}
	return prog, nil
}

func (p *parser) parseFuncDecl() (*ast.FuncDecl, error) {
	if p.tok() != token.DEF && p.tok() != token.INT_KW {
		return nil, p.errorf("expected function declaration ('def' or 'int'), found %s", p.tok().GoString())
	}
	kw := p.advance()

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []string
	for p.tok() != token.RPAREN {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		id, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, id.Lit)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var body []ast.Stmt
	for p.tok() != token.RBRACE {
		s, err := p.parseInlineBlock()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	return &ast.FuncDecl{Keyword: kw.Pos, Name: name.Lit, NamePos: name.Pos, Params: params, Body: body}, nil
}
