package parser

import (
	"github.com/nickolasddiaz/16bitcomputer/lang/ast"
	"github.com/nickolasddiaz/16bitcomputer/lang/scanner"
	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

// parseCond parses a condition: comparisons combined with && ('and') and
// || ('or'), with parentheses for grouping.
func (p *parser) parseCond() (ast.Expr, error) {
	return p.parseOrCond()
}

func (p *parser) parseOrCond() (ast.Expr, error) {
	left, err := p.parseAndCond()
	if err != nil {
		return nil, err
	}
	for p.tok() == token.OR {
		op := p.advance()
		right, err := p.parseAndCond()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{X: left, Op: token.OR, OpPos: op.Pos, Y: right}
	}
	return left, nil
}

func (p *parser) parseAndCond() (ast.Expr, error) {
	left, err := p.parsePrimaryCond()
	if err != nil {
		return nil, err
	}
	for p.tok() == token.AND {
		op := p.advance()
		right, err := p.parsePrimaryCond()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{X: left, Op: token.AND, OpPos: op.Pos, Y: right}
	}
	return left, nil
}

func (p *parser) parsePrimaryCond() (ast.Expr, error) {
	if p.tok() == token.LPAREN {
		lp := p.advance()
		e, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Lparen: lp.Pos, X: e}, nil
	}
	return p.parseComparison()
}

// parseComparison parses `expr op expr` or a bare `expr` (a single-value
// truthiness test, lowered as `CMP x, 0 ; JNE`).
func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok().IsComparison() {
		op := p.advance()
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{X: left, Op: op.Token, OpPos: op.Pos, Y: right}, nil
	}
	return left, nil
}

// parseExpr parses the sum level: `+ - & | ^ << >>`, left-associative.
func (p *parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for isSumOp(p.tok()) {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{X: left, Op: op.Token, OpPos: op.Pos, Y: right}
	}
	return left, nil
}

func isSumOp(tok token.Token) bool {
	switch tok {
	case token.PLUS, token.MINUS, token.AMPERSAND, token.PIPE, token.CIRCUMFLEX, token.LTLT, token.GTGT:
		return true
	}
	return false
}

// parseTerm parses the product level: `* / %`, left-associative.
func (p *parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok() == token.STAR || p.tok() == token.SLASH || p.tok() == token.PERCENT {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{X: left, Op: op.Token, OpPos: op.Pos, Y: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.tok() == token.TILDE || p.tok() == token.MINUS {
		op := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op.Token, OpPos: op.Pos, X: x}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (ast.Expr, error) {
	switch p.tok() {
	case token.INT:
		t := p.advance()
		return &ast.IntLit{Value: t.Value, ValPos: t.Pos}, nil
	case token.IDENT:
		t := p.advance()
		if p.tok() == token.LPAREN {
			return p.parseCallArgs(t)
		}
		return &ast.Ident{Name: t.Lit, NamePos: t.Pos}, nil
	case token.LPAREN:
		lp := p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Lparen: lp.Pos, X: e}, nil
	}
	return nil, p.errorf("expected expression, found %s", p.tok().GoString())
}

// parseCallArgs parses the `( args )` suffix of a call given the already
// consumed function-name token.
func (p *parser) parseCallArgs(name scanner.TokenAndValue) (*ast.CallExpr, error) {
	lp := p.advance() // consume '('
	var args []ast.Expr
	for p.tok() != token.RPAREN {
		if len(args) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	rp, err := p.expect(token.RPAREN)
	if err != nil {
		return nil, err
	}
	return &ast.CallExpr{Name: name.Lit, NamePos: name.Pos, Lparen: lp.Pos, Args: args, Rparen: rp.Pos}, nil
}
