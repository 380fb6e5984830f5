// Package ast defines the parse tree produced by the lang/parser package
// and consumed by the lang/compiler package's lowering pass. The tree
// shape follows the grammar: a program is a sequence of function
// declarations, each with a body of statements.
package ast

import "github.com/nickolasddiaz/16bitcomputer/lang/token"

// Node is implemented by every parse tree node.
type Node interface {
	Pos() token.Pos
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root of the parse tree: a sequence of function
// declarations.
type Program struct {
	Funcs []*FuncDecl
}

// FuncDecl is a function definition, `(def|int) NAME ( args ) { body }`.
type FuncDecl struct {
	Keyword token.Pos
	Name    string
	NamePos token.Pos
	Params  []string
	Body    []Stmt
}

func (n *FuncDecl) Pos() token.Pos { return n.Keyword }

// CondBlock pairs a condition with the body it guards, used by IfStmt for
// the initial `if` and every `elif`.
type CondBlock struct {
	Cond Expr
	Body []Stmt
}
