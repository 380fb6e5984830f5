package compiler

import (
	"github.com/nickolasddiaz/16bitcomputer/lang/ast"
	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

// compareKind classifies how a condition's tail jump is still open to
// rewrite by whatever stitches it into an if or loop: a SIMPLE
// comparison's tail is an untargeted true-sense conditional jump, while
// a LOGICAL_AND/LOGICAL_OR composite's tail already points somewhere
// (its own internal short-circuit target) and may need negating back to
// the sense the caller wants instead of being freely retargeted.
type compareKind int

const (
	simpleCompare compareKind = iota
	logicalAndCompare
	logicalOrCompare
)

// compareResult carries a lowered condition's optional fail/true labels
// alongside its kind, mirroring the optional (None-able) fail/true pair
// the short-circuit algorithm threads through && and || combination.
// NoLabel stands in for "not set".
type compareResult struct {
	fail    LabelID
	trueLbl LabelID
	kind    compareKind
}

// lowerCondition lowers a boolean expression used as an if/while/for/
// do-while condition into the commands that test it and the
// compareResult describing how its tail jump may still be rewritten.
// && and || short-circuit by combining their operands' compareResults
// instead of threading an explicit target through the recursion, so a
// chain of comparisons never needs to materialize an intermediate 1/0
// value.
func (l *lowerer) lowerCondition(e ast.Expr) (compareResult, []Command, error) {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return l.lowerCondition(x.X)
	case *ast.BinaryExpr:
		if x.Op.IsComparison() {
			return l.lowerSimpleCompare(x)
		}
	case *ast.LogicalExpr:
		left, lcmds, err := l.lowerCondition(x.X)
		if err != nil {
			return compareResult{}, nil, err
		}
		right, rcmds, err := l.lowerCondition(x.Y)
		if err != nil {
			return compareResult{}, nil, err
		}
		if x.Op == token.AND {
			return l.combineAnd(left, lcmds, right, rcmds)
		}
		return l.combineOr(left, lcmds, right, rcmds)
	}
	return l.lowerValueCompare(e)
}

// lowerSimpleCompare lowers `a <op> b` into a CMP followed by the
// matching conditional jump, its label left unset: SIMPLE comparisons
// never know their target until if_helper or loop_helper binds it.
func (l *lowerer) lowerSimpleCompare(x *ast.BinaryExpr) (compareResult, []Command, error) {
	jop, ok := compareJump[x.Op]
	if !ok {
		return compareResult{}, nil, newErrf(UnsupportedOperand, "comparison %v", x.Op)
	}

	lv, lcmds, err := l.lowerExpr(x.X)
	if err != nil {
		return compareResult{}, nil, err
	}
	lv, lcmds = l.ch.ExtractVariableAndCommands(lv, lcmds)

	rv, rcmds, err := l.lowerExpr(x.Y)
	if err != nil {
		return compareResult{}, nil, err
	}
	rv, rcmds = l.ch.ExtractVariableAndCommands(rv, rcmds)

	cmds := append(lcmds, rcmds...)
	op, err := correctOp(CMP_RR, lv, rv)
	if err != nil {
		return compareResult{}, nil, err
	}
	cmds = append(cmds, Command{Op: op, Destination: lv, Source: rv})
	cmds = append(cmds, Command{Op: jop, JumpLabel: NoLabel})
	l.ch.FreeReg(lv)
	l.ch.FreeReg(rv)
	return compareResult{fail: NoLabel, trueLbl: NoLabel, kind: simpleCompare}, cmds, nil
}

// lowerValueCompare handles a general value expression used directly as
// a condition (no comparison or logical operator), by comparing it
// against zero: non-zero is true, following C-family truthiness.
func (l *lowerer) lowerValueCompare(e ast.Expr) (compareResult, []Command, error) {
	val, cmds, err := l.lowerExpr(e)
	if err != nil {
		return compareResult{}, nil, err
	}
	val, cmds = l.ch.ExtractVariableAndCommands(val, cmds)

	zero := IntOperand(0)
	op, err := correctOp(CMP_RR, val, zero)
	if err != nil {
		return compareResult{}, nil, err
	}
	cmds = append(cmds, Command{Op: op, Destination: val, Source: zero})
	cmds = append(cmds, Command{Op: JNE, JumpLabel: NoLabel})
	l.ch.FreeReg(val)
	return compareResult{fail: NoLabel, trueLbl: NoLabel, kind: simpleCompare}, cmds, nil
}

// combineAnd implements && composition: the two operands' failure
// targets are unified into one (remove_duplicate(fail2, fail1)), a
// SIMPLE operand's tail is rebound and negated to jump there directly,
// and a composite operand's tail is left as-is since it already points
// at the shared fail. block1's true label, if it has one, sits between
// the two blocks so a true left side falls into testing the right side.
func (l *lowerer) combineAnd(r1 compareResult, c1 []Command, r2 compareResult, c2 []Command) (compareResult, []Command, error) {
	finalFail := l.jm.RemoveDuplicate(labelPtr(r2.fail), labelPtr(r1.fail))

	if r1.kind == simpleCompare {
		if err := bindTail(c1, finalFail, true); err != nil {
			return compareResult{}, nil, err
		}
	}
	if r2.kind == simpleCompare {
		if err := bindTail(c2, finalFail, true); err != nil {
			return compareResult{}, nil, err
		}
	}

	out := append([]Command{}, c1...)
	if r1.trueLbl != NoLabel {
		out = append(out, Command{Op: LABEL, JumpLabel: r1.trueLbl})
	}
	out = append(out, c2...)

	finalTrue := NoLabel
	if r1.kind != simpleCompare && r2.kind != simpleCompare {
		finalTrue = r2.trueLbl
	}
	return compareResult{fail: finalFail, trueLbl: finalTrue, kind: logicalAndCompare}, out, nil
}

// combineOr implements || composition: the two operands' success
// targets are unified into one (remove_duplicate(true1, true2)), and
// block1's tail always jumps there, negated unless it is already a
// true-sense SIMPLE jump. block2's fail, if it needs one, is minted
// fresh (remove_duplicate(fail2) with nothing to merge against).
func (l *lowerer) combineOr(r1 compareResult, c1 []Command, r2 compareResult, c2 []Command) (compareResult, []Command, error) {
	finalTrue := l.jm.RemoveDuplicate(labelPtr(r1.trueLbl), labelPtr(r2.trueLbl))
	finalFail := l.jm.RemoveDuplicate(labelPtr(r2.fail), nil)

	if err := bindTail(c1, finalTrue, r1.kind != simpleCompare); err != nil {
		return compareResult{}, nil, err
	}
	if r2.kind == simpleCompare {
		if err := bindTail(c2, finalFail, true); err != nil {
			return compareResult{}, nil, err
		}
	}

	out := append([]Command{}, c1...)
	if r1.fail != NoLabel {
		out = append(out, Command{Op: LABEL, JumpLabel: r1.fail})
	}
	out = append(out, c2...)

	return compareResult{fail: finalFail, trueLbl: finalTrue, kind: logicalOrCompare}, out, nil
}

// bindTail rewrites a condition block's last command, its conditional
// jump, to target label, negating the jump first when negateFirst asks
// for the opposite sense.
func bindTail(cmds []Command, target LabelID, negateFirst bool) error {
	if len(cmds) == 0 {
		return newErrf(UnsupportedOperand, "condition produced no tail jump to bind")
	}
	last := &cmds[len(cmds)-1]
	if negateFirst {
		neg, err := negate(last.Op)
		if err != nil {
			return err
		}
		last.Op = neg
	}
	last.JumpLabel = target
	return nil
}

func labelPtr(id LabelID) *LabelID {
	if id == NoLabel {
		return nil
	}
	return &id
}

// ifHelper composes one if/elif branch's condition and body: a plain
// comparison gets a freshly-allocated fail label and has its tail
// negated to jump there; a compound condition already carries its own
// fail (and possibly a true) label from combineAnd/combineOr. The
// branch's true label, if set, sits between the condition and the body.
func (l *lowerer) ifHelper(cr compareResult, condCmds, body []Command) ([]Command, error) {
	fail := cr.fail
	switch {
	case cr.kind == simpleCompare:
		fail = l.jm.GetJump("if_fail")
		if err := bindTail(condCmds, fail, true); err != nil {
			return nil, err
		}
	case fail == NoLabel:
		fail = l.jm.GetJump("if_fail")
	}

	out := append([]Command{}, condCmds...)
	if cr.trueLbl != NoLabel {
		out = append(out, Command{Op: LABEL, JumpLabel: cr.trueLbl})
	}
	out = append(out, body...)
	out = append(out, Command{Op: LABEL, JumpLabel: fail})
	return out, nil
}

// loopHelper makes a condition block jump into the loop body on success:
// it ensures a true label exists (the caller may already have one from
// an earlier allocation, e.g. for's pre-reserved true label), binds the
// tail there, and negates the tail unless it is already a true-sense
// SIMPLE jump. A set fail label gets a trailing LABEL so any internal
// short-circuit failure falls through to the loop's natural exit.
func (l *lowerer) loopHelper(cr compareResult, condCmds []Command, trueLbl LabelID) (LabelID, []Command, error) {
	if trueLbl == NoLabel {
		trueLbl = cr.trueLbl
	}
	if trueLbl == NoLabel {
		trueLbl = l.jm.GetJump("loop_true")
	}
	if err := bindTail(condCmds, trueLbl, cr.kind != simpleCompare); err != nil {
		return NoLabel, nil, err
	}

	out := append([]Command{}, condCmds...)
	if cr.fail != NoLabel {
		out = append(out, Command{Op: LABEL, JumpLabel: cr.fail})
	}
	return trueLbl, out, nil
}
