package parser

import (
	"github.com/nickolasddiaz/16bitcomputer/lang/ast"
	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

// parseInlineBlock parses a control statement, or a `block ';'`.
func (p *parser) parseInlineBlock() (ast.Stmt, error) {
	switch p.tok() {
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.IF:
		return p.parseIf()
	}

	s, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return s, nil
}

// parseBlock parses `assigns` or `return ret_args`.
func (p *parser) parseBlock() (ast.Stmt, error) {
	if p.tok() == token.RETURN {
		kw := p.advance()
		var values []ast.Expr
		if p.tok() != token.SEMI {
			for {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				values = append(values, e)
				if p.tok() != token.COMMA {
					break
				}
				p.advance()
			}
		}
		return &ast.ReturnStmt{Keyword: kw.Pos, Values: values}, nil
	}
	return p.parseAssignOrCall()
}

// parseAssignOrCall parses one of:
//
//	NAME = expr
//	NAME += expr | NAME -= expr | NAME *= expr | NAME /= expr
//	NAME ++ | NAME --
//	n1, n2, ... = e1, e2, ...
//	function_call
func (p *parser) parseAssignOrCall() (ast.Stmt, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if p.tok() == token.LPAREN {
		call, err := p.parseCallArgs(name)
		if err != nil {
			return nil, err
		}
		return &ast.CallStmt{Call: call}, nil
	}

	if p.tok() == token.INC || p.tok() == token.DEC {
		op := p.advance()
		return &ast.IncDecStmt{Name: name.Lit, NamePos: name.Pos, Op: op.Token}, nil
	}

	if p.tok().IsAugBinop() {
		op := p.advance()
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{
			Targets: []string{name.Lit}, TargetPos: []token.Pos{name.Pos},
			Op: op.Token, OpPos: op.Pos, Values: []ast.Expr{rhs},
		}, nil
	}

	targets := []string{name.Lit}
	targetPos := []token.Pos{name.Pos}
	for p.tok() == token.COMMA {
		p.advance()
		id, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		targets = append(targets, id.Lit)
		targetPos = append(targetPos, id.Pos)
	}

	eq, err := p.expect(token.EQ)
	if err != nil {
		return nil, err
	}

	var values []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		values = append(values, e)
		if p.tok() != token.COMMA {
			break
		}
		p.advance()
	}

	return &ast.AssignStmt{Targets: targets, TargetPos: targetPos, Op: token.EQ, OpPos: eq.Pos, Values: values}, nil
}

func (p *parser) parseBody() ([]ast.Stmt, error) {
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
	return body, nil
}

func (p *parser) parseFor() (ast.Stmt, error) {
	kw := p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if p.tok() != token.SEMI {
		var err error
		init, err = p.parseAssignOrCall()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var cond ast.Expr
	if p.tok() != token.SEMI {
		var err error
		cond, err = p.parseCond()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var step ast.Stmt
	if p.tok() != token.RPAREN {
		var err error
		step, err = p.parseAssignOrCall()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Keyword: kw.Pos, Init: init, Cond: cond, Step: step, Body: body}, nil
}

func (p *parser) parseWhile() (ast.Stmt, error) {
	kw := p.advance()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Keyword: kw.Pos, Cond: cond, Body: body}, nil
}

func (p *parser) parseDoWhile() (ast.Stmt, error) {
	kw := p.advance()
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.WHILE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmt{Keyword: kw.Pos, Body: body, Cond: cond}, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	kw := p.advance()
	stmt := &ast.IfStmt{Keyword: kw.Pos}

	branch, err := p.parseCondBlock()
	if err != nil {
		return nil, err
	}
	stmt.Branches = append(stmt.Branches, branch)

	for p.tok() == token.ELIF {
		p.advance()
		branch, err := p.parseCondBlock()
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, branch)
	}

	if p.tok() == token.ELSE {
		p.advance()
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}

	return stmt, nil
}

func (p *parser) parseCondBlock() (ast.CondBlock, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return ast.CondBlock{}, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return ast.CondBlock{}, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return ast.CondBlock{}, err
	}
	body, err := p.parseBody()
	if err != nil {
		return ast.CondBlock{}, err
	}
	return ast.CondBlock{Cond: cond, Body: body}, nil
}
