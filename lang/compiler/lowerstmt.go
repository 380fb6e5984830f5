package compiler

import (
	"github.com/nickolasddiaz/16bitcomputer/lang/ast"
	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

func (l *lowerer) lowerStmts(stmts []ast.Stmt) ([]Command, error) {
	var out []Command
	for _, s := range stmts {
		cmds, err := l.lowerStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, cmds...)
		l.ch.FreeAllReg()
	}
	return out, nil
}

func (l *lowerer) lowerStmt(s ast.Stmt) ([]Command, error) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		return l.lowerAssign(st)
	case *ast.IncDecStmt:
		return l.lowerIncDec(st)
	case *ast.CallStmt:
		return l.lowerCallArgs(st.Call)
	case *ast.ReturnStmt:
		return l.lowerReturn(st)
	case *ast.IfStmt:
		return l.lowerIf(st)
	case *ast.WhileStmt:
		return l.lowerWhile(st)
	case *ast.DoWhileStmt:
		return l.lowerDoWhile(st)
	case *ast.ForStmt:
		return l.lowerFor(st)
	}
	return nil, newErrf(UnsupportedOperand, "%T", s)
}

// lowerAssign handles a plain assignment, an augmented assignment, and
// a multiple assignment spilling a single call's return values into
// several destinations at once.
func (l *lowerer) lowerAssign(st *ast.AssignStmt) ([]Command, error) {
	if len(st.Targets) > 1 {
		return l.lowerMultiAssign(st)
	}

	name := st.Targets[0]
	if st.Op != token.EQ {
		base := st.Op.AugBinop()
		lhs, err := l.mm.Lookup(name)
		if err != nil {
			return nil, err
		}
		rv, cmds, err := l.lowerExpr(st.Values[0])
		if err != nil {
			return nil, err
		}
		familyBase, ok := binopFamilyBase(base)
		if !ok {
			return nil, newErrf(UnsupportedOperand, "augmented assign %v", st.Op)
		}
		op, err := correctOp(familyBase, lhs, rv)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, Command{Op: op, Destination: lhs, Source: rv})
		l.ch.FreeReg(rv)
		return cmds, nil
	}

	if call, ok := ast.Unwrap(st.Values[0]).(*ast.CallExpr); ok {
		return l.lowerCallAssign(call, []string{name})
	}

	val, cmds, err := l.lowerExpr(st.Values[0])
	if err != nil {
		return nil, err
	}
	dst, err := l.mm.Declare(name)
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, Command{Op: MOV_RR, Destination: dst, Source: val})
	l.ch.FreeReg(val)
	return cmds, nil
}

func (l *lowerer) lowerMultiAssign(st *ast.AssignStmt) ([]Command, error) {
	call, ok := ast.Unwrap(st.Values[0]).(*ast.CallExpr)
	if !ok {
		return nil, newErrf(UnsupportedOperand, "multiple assignment requires a single call on the right-hand side")
	}
	return l.lowerCallAssign(call, st.Targets)
}

// lowerCallAssign lowers `name, ... = f(args)` for one or more targets,
// handing the declared names straight to the call's CallDests instead
// of pre-declaring them: ExpandCall's general-call rule binds a
// never-before-seen name directly to its return slot with no move, and
// only emits a move for a name that already has a home elsewhere.
func (l *lowerer) lowerCallAssign(call *ast.CallExpr, targets []string) ([]Command, error) {
	if err := l.funcs.ValidateReturn(call.Name, len(targets)); err != nil {
		return nil, err
	}
	cmds, err := l.lowerCallArgs(call)
	if err != nil {
		return nil, err
	}

	dests := make([]Operand, len(targets))
	for i, name := range targets {
		dests[i] = NameOperand(name)
	}
	cmds[len(cmds)-1].CallDests = dests
	return cmds, nil
}

func (l *lowerer) lowerIncDec(st *ast.IncDecStmt) ([]Command, error) {
	dst, err := l.mm.Lookup(st.Name)
	if err != nil {
		return nil, err
	}
	base := ADD_RR
	if st.Op == token.DEC {
		base = SUB_RR
	}
	op, err := correctOp(base, dst, IntOperand(1))
	if err != nil {
		return nil, err
	}
	return []Command{{Op: op, Destination: dst, Source: IntOperand(1)}}, nil
}

func (l *lowerer) lowerReturn(st *ast.ReturnStmt) ([]Command, error) {
	vals := make([]Operand, len(st.Values))
	var cmds []Command
	for i, v := range st.Values {
		val, c, err := l.lowerExpr(v)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c...)
		vals[i] = val
	}
	cmds = append(cmds, Command{Op: RETURN_HELPER, ReturnExprs: vals})
	return cmds, nil
}

// lowerIf stitches an if/elif*/else? chain using if_helper per branch:
// a branch only gets a JMP to the chain's shared end label when a
// further elif or else follows it, and the trailing label is unified
// with the last branch's own fail label via RemoveDuplicate instead of
// appending a second, redundant label.
func (l *lowerer) lowerIf(st *ast.IfStmt) ([]Command, error) {
	endLbl := NoLabel
	var out []Command

	for i, branch := range st.Branches {
		cr, condCmds, err := l.lowerCondition(branch.Cond)
		if err != nil {
			return nil, err
		}
		bodyCmds, err := l.lowerStmts(branch.Body)
		if err != nil {
			return nil, err
		}
		block, err := l.ifHelper(cr, condCmds, bodyCmds)
		if err != nil {
			return nil, err
		}

		if i < len(st.Branches)-1 || st.Else != nil {
			if endLbl == NoLabel {
				endLbl = l.jm.GetJump("if_end")
			}
			close := block[len(block)-1]
			block = append(block[:len(block)-1], Command{Op: JMP, JumpLabel: endLbl}, close)
		}
		out = append(out, block...)
	}

	if st.Else != nil {
		elseCmds, err := l.lowerStmts(st.Else)
		if err != nil {
			return nil, err
		}
		out = append(out, elseCmds...)
	}

	if endLbl == NoLabel {
		return out, nil
	}
	if n := len(out); n > 0 && out[n-1].Op == LABEL {
		l.jm.RemoveDuplicate(&endLbl, &out[n-1].JumpLabel)
		return out, nil
	}
	out = append(out, Command{Op: LABEL, JumpLabel: endLbl})
	return out, nil
}

func (l *lowerer) lowerWhile(st *ast.WhileStmt) ([]Command, error) {
	entryLbl := l.jm.GetJump("while_entry")
	cr, condCmds, err := l.lowerCondition(st.Cond)
	if err != nil {
		return nil, err
	}
	trueLbl, condBlock, err := l.loopHelper(cr, condCmds, NoLabel)
	if err != nil {
		return nil, err
	}

	bodyCmds, err := l.lowerStmts(st.Body)
	if err != nil {
		return nil, err
	}

	var out []Command
	out = append(out, Command{Op: JMP, JumpLabel: entryLbl})
	out = append(out, Command{Op: LABEL, JumpLabel: trueLbl})
	out = append(out, bodyCmds...)
	out = append(out, Command{Op: LABEL, JumpLabel: entryLbl})
	out = append(out, condBlock...)
	return out, nil
}

func (l *lowerer) lowerDoWhile(st *ast.DoWhileStmt) ([]Command, error) {
	trueLbl := l.jm.GetJump("do_true")

	bodyCmds, err := l.lowerStmts(st.Body)
	if err != nil {
		return nil, err
	}

	cr, condCmds, err := l.lowerCondition(st.Cond)
	if err != nil {
		return nil, err
	}
	trueLbl, condBlock, err := l.loopHelper(cr, condCmds, trueLbl)
	if err != nil {
		return nil, err
	}

	var out []Command
	out = append(out, Command{Op: LABEL, JumpLabel: trueLbl})
	out = append(out, bodyCmds...)
	out = append(out, condBlock...)
	return out, nil
}

func (l *lowerer) lowerFor(st *ast.ForStmt) ([]Command, error) {
	var out []Command
	if st.Init != nil {
		initCmds, err := l.lowerStmt(st.Init)
		if err != nil {
			return nil, err
		}
		out = append(out, initCmds...)
	}

	entryLbl := l.jm.GetJump("for_entry")
	trueLbl := l.jm.GetJump("for_true")
	var condBlock []Command
	if st.Cond != nil {
		cr, condCmds, err := l.lowerCondition(st.Cond)
		if err != nil {
			return nil, err
		}
		trueLbl, condBlock, err = l.loopHelper(cr, condCmds, trueLbl)
		if err != nil {
			return nil, err
		}
	} else {
		condBlock = []Command{{Op: JMP, JumpLabel: trueLbl}}
	}

	bodyCmds, err := l.lowerStmts(st.Body)
	if err != nil {
		return nil, err
	}

	var stepCmds []Command
	if st.Step != nil {
		stepCmds, err = l.lowerStmt(st.Step)
		if err != nil {
			return nil, err
		}
	}

	out = append(out, Command{Op: JMP, JumpLabel: entryLbl})
	out = append(out, Command{Op: LABEL, JumpLabel: trueLbl})
	out = append(out, bodyCmds...)
	out = append(out, stepCmds...)
	out = append(out, Command{Op: LABEL, JumpLabel: entryLbl})
	out = append(out, condBlock...)
	return out, nil
}
