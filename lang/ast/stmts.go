package ast

import "github.com/nickolasddiaz/16bitcomputer/lang/token"

type (
	// AssignStmt is `NAME = expr`, a compound `NAME op= expr`, or a multiple
	// assignment `n1, n2, ... = e1, e2, ...` where some e_i may be calls that
	// return more than one value (len(Targets) > len(Values) in that case).
	AssignStmt struct {
		Targets   []string
		TargetPos []token.Pos
		Op        token.Token // EQ or one of the *_EQ augmented forms
		OpPos     token.Pos
		Values    []Expr
	}

	// IncDecStmt is `NAME++` or `NAME--`.
	IncDecStmt struct {
		Name    string
		NamePos token.Pos
		Op      token.Token // INC or DEC
	}

	// CallStmt is a function call used as a statement, its results (if any)
	// discarded.
	CallStmt struct {
		Call *CallExpr
	}

	// ReturnStmt is `return e1, e2, ...`; Values may be empty.
	ReturnStmt struct {
		Keyword token.Pos
		Values  []Expr
	}

	// IfStmt is `if (cond) { ... } elif (cond) { ... } else { ... }`.
	IfStmt struct {
		Keyword  token.Pos
		Branches []CondBlock // first entry is the `if`, the rest are `elif`s
		Else     []Stmt      // nil if there is no `else`
	}

	// WhileStmt is `while (cond) { body }`.
	WhileStmt struct {
		Keyword token.Pos
		Cond    Expr
		Body    []Stmt
	}

	// DoWhileStmt is `do { body } while (cond);`.
	DoWhileStmt struct {
		Keyword token.Pos
		Body    []Stmt
		Cond    Expr
	}

	// ForStmt is `for (init; cond; step) { body }`. Init and Step are
	// themselves simple statements (AssignStmt, IncDecStmt or CallStmt) and
	// may be nil.
	ForStmt struct {
		Keyword token.Pos
		Init    Stmt
		Cond    Expr
		Step    Stmt
		Body    []Stmt
	}
)

func (n *AssignStmt) Pos() token.Pos  { return n.OpPos }
func (n *IncDecStmt) Pos() token.Pos  { return n.NamePos }
func (n *CallStmt) Pos() token.Pos    { return n.Call.Pos() }
func (n *ReturnStmt) Pos() token.Pos  { return n.Keyword }
func (n *IfStmt) Pos() token.Pos      { return n.Keyword }
func (n *WhileStmt) Pos() token.Pos   { return n.Keyword }
func (n *DoWhileStmt) Pos() token.Pos { return n.Keyword }
func (n *ForStmt) Pos() token.Pos     { return n.Keyword }

func (*AssignStmt) stmtNode()  {}
func (*IncDecStmt) stmtNode()  {}
func (*CallStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()  {}
func (*IfStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()   {}
func (*DoWhileStmt) stmtNode() {}
func (*ForStmt) stmtNode()     {}
