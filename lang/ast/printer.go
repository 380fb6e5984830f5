package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints a parse tree, one node per line, indented by
// nesting depth. It is used by the `parse` driver command to dump the
// tree produced before lowering.
type Printer struct {
	Output io.Writer
}

// Print writes the textual representation of prog to p.Output.
func (p *Printer) Print(prog *Program) error {
	pp := &printer{w: p.Output}
	for _, fn := range prog.Funcs {
		pp.printFunc(fn)
	}
	return pp.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	prefix := strings.Repeat(". ", depth)
	_, p.err = fmt.Fprintf(p.w, prefix+format+"\n", args...)
}

func (p *printer) printFunc(fn *FuncDecl) {
	p.line(0, "func %s(%s) @%s", fn.Name, strings.Join(fn.Params, ", "), fn.Keyword)
	p.printStmts(fn.Body, 1)
}

func (p *printer) printStmts(stmts []Stmt, depth int) {
	for _, s := range stmts {
		p.printStmt(s, depth)
	}
}

func (p *printer) printStmt(s Stmt, depth int) {
	switch s := s.(type) {
	case *AssignStmt:
		p.line(depth, "assign %s %s %s", strings.Join(s.Targets, ","), s.Op, exprList(s.Values))
	case *IncDecStmt:
		p.line(depth, "%s %s", s.Name, s.Op)
	case *CallStmt:
		p.line(depth, "callstmt %s", exprString(s.Call))
	case *ReturnStmt:
		p.line(depth, "return %s", exprList(s.Values))
	case *IfStmt:
		for i, br := range s.Branches {
			kw := "if"
			if i > 0 {
				kw = "elif"
			}
			p.line(depth, "%s %s", kw, exprString(br.Cond))
			p.printStmts(br.Body, depth+1)
		}
		if s.Else != nil {
			p.line(depth, "else")
			p.printStmts(s.Else, depth+1)
		}
	case *WhileStmt:
		p.line(depth, "while %s", exprString(s.Cond))
		p.printStmts(s.Body, depth+1)
	case *DoWhileStmt:
		p.line(depth, "do")
		p.printStmts(s.Body, depth+1)
		p.line(depth, "while %s", exprString(s.Cond))
	case *ForStmt:
		p.line(depth, "for")
		if s.Init != nil {
			p.printStmt(s.Init, depth+1)
		}
		if s.Cond != nil {
			p.line(depth+1, "cond %s", exprString(s.Cond))
		}
		if s.Step != nil {
			p.printStmt(s.Step, depth+1)
		}
		p.printStmts(s.Body, depth+1)
	default:
		p.line(depth, "<unknown stmt %T>", s)
	}
}

func exprList(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case *Ident:
		return e.Name
	case *IntLit:
		return fmt.Sprintf("%d", e.Value)
	case *ParenExpr:
		return "(" + exprString(e.X) + ")"
	case *UnaryExpr:
		return e.Op.String() + exprString(e.X)
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", exprString(e.X), e.Op, exprString(e.Y))
	case *LogicalExpr:
		return fmt.Sprintf("(%s %s %s)", exprString(e.X), e.Op, exprString(e.Y))
	case *CallExpr:
		return fmt.Sprintf("%s(%s)", e.Name, exprList(e.Args))
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}
