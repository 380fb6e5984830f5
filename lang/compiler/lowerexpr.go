package compiler

import (
	"github.com/nickolasddiaz/16bitcomputer/lang/ast"
	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

// lowerExpr lowers an expression to an operand and the commands needed
// to compute it. Constant subexpressions fold at lowering time instead
// of emitting arithmetic commands, so `2 + 3 * 4` lowers straight to
// the operand 14 with no commands at all.
func (l *lowerer) lowerExpr(e ast.Expr) (Operand, []Command, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return IntOperand(x.Value), nil, nil

	case *ast.Ident:
		op, err := l.mm.Lookup(x.Name)
		if err != nil {
			return NoOperand, nil, err
		}
		return op, nil, nil

	case *ast.ParenExpr:
		return l.lowerExpr(x.X)

	case *ast.UnaryExpr:
		return l.lowerUnary(x)

	case *ast.BinaryExpr:
		return l.lowerBinary(x)

	case *ast.CallExpr:
		return l.lowerCallValue(x)
	}
	return NoOperand, nil, newErrf(UnsupportedOperand, "%T", e)
}

// lowerUnary folds `~x` and `-x` when x is a constant, two's-complement
// negation being expressed as `-x = ~x + 1`. Non-constant operands emit
// a single XOR or NEG-by-subtraction-from-zero sequence into a fresh
// register.
func (l *lowerer) lowerUnary(x *ast.UnaryExpr) (Operand, []Command, error) {
	val, cmds, err := l.lowerExpr(x.X)
	if err != nil {
		return NoOperand, nil, err
	}
	val, cmds = l.ch.ExtractVariableAndCommands(val, cmds)

	if val.Kind == KindInt && len(cmds) == 0 {
		switch x.Op {
		case token.TILDE:
			return IntOperand(^val.Int), nil, nil
		case token.MINUS:
			return IntOperand(^val.Int + 1), nil, nil
		}
	}

	dst, err := l.ch.GetReg()
	if err != nil {
		return NoOperand, nil, err
	}
	switch x.Op {
	case token.TILDE:
		cmds = append(cmds, Command{Op: MOV_RR, Destination: dst, Source: val})
		op, err := correctOp(XOR_RR, dst, IntOperand(-1))
		if err != nil {
			return NoOperand, nil, err
		}
		cmds = append(cmds, Command{Op: op, Destination: dst, Source: IntOperand(-1)})
	case token.MINUS:
		cmds = append(cmds, Command{Op: MOV_RI, Destination: dst, Source: IntOperand(0)})
		op, err := correctOp(SUB_RR, dst, val)
		if err != nil {
			return NoOperand, nil, err
		}
		cmds = append(cmds, Command{Op: op, Destination: dst, Source: val})
	default:
		return NoOperand, nil, newErrf(UnsupportedOperand, "unary %v", x.Op)
	}
	return dst, cmds, nil
}

// lowerBinary folds constant arithmetic at lowering time and otherwise
// implements process_binary_operation's four operand shapes: a left
// operand already in a register doubles as the accumulator for any
// operator, and a right operand in a register does so (with the operands
// swapped) only for a commutative operator. Every other case, neither
// operand in a register or only the right one with a non-commutative
// operator, spends an extra MOV into a fresh register.
func (l *lowerer) lowerBinary(x *ast.BinaryExpr) (Operand, []Command, error) {
	lv, lcmds, err := l.lowerExpr(x.X)
	if err != nil {
		return NoOperand, nil, err
	}
	lv, lcmds = l.ch.ExtractVariableAndCommands(lv, lcmds)

	rv, rcmds, err := l.lowerExpr(x.Y)
	if err != nil {
		return NoOperand, nil, err
	}
	rv, rcmds = l.ch.ExtractVariableAndCommands(rv, rcmds)

	if lv.Kind == KindInt && rv.Kind == KindInt && len(lcmds) == 0 && len(rcmds) == 0 {
		folded, ok := foldConst(x.Op, lv.Int, rv.Int)
		if ok {
			return IntOperand(folded), nil, nil
		}
	}

	base, ok := binopFamilyBase(x.Op)
	if !ok {
		return NoOperand, nil, newErrf(UnsupportedOperand, "binary %v", x.Op)
	}
	cmds := append(lcmds, rcmds...)

	lReg, rReg := lv.IsRegPlaceholder(), rv.IsRegPlaceholder()
	switch {
	case lReg && rReg:
		op, err := correctOp(base, lv, rv)
		if err != nil {
			return NoOperand, nil, err
		}
		cmds = append(cmds, Command{Op: op, Destination: lv, Source: rv})
		l.ch.FreeReg(rv)
		return lv, cmds, nil

	case !lReg && rReg && isCommutative(x.Op):
		op, err := correctOp(base, rv, lv)
		if err != nil {
			return NoOperand, nil, err
		}
		cmds = append(cmds, Command{Op: op, Destination: rv, Source: lv})
		return rv, cmds, nil

	case lReg && !rReg:
		op, err := correctOp(base, lv, rv)
		if err != nil {
			return NoOperand, nil, err
		}
		cmds = append(cmds, Command{Op: op, Destination: lv, Source: rv})
		return lv, cmds, nil

	default:
		dst, err := l.ch.GetReg()
		if err != nil {
			return NoOperand, nil, err
		}
		cmds = append(cmds, Command{Op: MOV_RR, Destination: dst, Source: lv})
		op, err := correctOp(base, dst, rv)
		if err != nil {
			return NoOperand, nil, err
		}
		cmds = append(cmds, Command{Op: op, Destination: dst, Source: rv})
		l.ch.FreeReg(rv)
		return dst, cmds, nil
	}
}

// isCommutative reports whether swapping a binary operator's operands
// preserves its result, the condition under which lowerBinary may reuse
// a right-hand register as the accumulator instead of the left's.
func isCommutative(op token.Token) bool {
	switch op {
	case token.PLUS, token.STAR, token.AMPERSAND, token.PIPE, token.CIRCUMFLEX:
		return true
	}
	return false
}

// lowerCallValue lowers a call used as an expression: it must return
// exactly one value. The call is left with no destination of its own;
// ExtractVariableAndCommands claims it with a temp-ram slot immediately,
// so every consumer sees an already-resolved value regardless of
// whether it calls extraction again itself.
func (l *lowerer) lowerCallValue(x *ast.CallExpr) (Operand, []Command, error) {
	if err := l.funcs.ValidateReturn(x.Name, 1); err != nil {
		return NoOperand, nil, err
	}
	cmds, err := l.lowerCallArgs(x)
	if err != nil {
		return NoOperand, nil, err
	}
	result, cmds := l.ch.ExtractVariableAndCommands(NoOperand, cmds)
	return result, cmds, nil
}

// lowerCallArgs lowers a call's arguments and returns the commands that
// compute them, followed by the CALL_HELPER command representing the
// call.
func (l *lowerer) lowerCallArgs(x *ast.CallExpr) ([]Command, error) {
	if err := l.funcs.ValidateArg(x.Name, len(x.Args)); err != nil {
		return nil, err
	}
	var pre []Command
	args := make([]Operand, len(x.Args))
	for i, a := range x.Args {
		v, cmds, err := l.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		pre = append(pre, cmds...)
		args[i] = v
	}
	return append(pre, Command{Op: CALL_HELPER, CallLabel: l.jm.GetFunction(x.Name), CallName: x.Name, CallArgs: args}), nil
}

func foldConst(op token.Token, a, b int64) (int64, bool) {
	switch op {
	case token.PLUS:
		return a + b, true
	case token.MINUS:
		return a - b, true
	case token.STAR:
		return a * b, true
	case token.SLASH:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case token.PERCENT:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case token.AMPERSAND:
		return a & b, true
	case token.PIPE:
		return a | b, true
	case token.CIRCUMFLEX:
		return a ^ b, true
	case token.LTLT:
		return a << uint(b), true
	case token.GTGT:
		return a >> uint(b), true
	}
	return 0, false
}

func binopFamilyBase(op token.Token) (Opcode, bool) {
	switch op {
	case token.PLUS:
		return ADD_RR, true
	case token.MINUS:
		return SUB_RR, true
	case token.STAR:
		return MULT_RR, true
	case token.SLASH:
		return DIV_RR, true
	case token.PERCENT:
		return MOD_RR, true
	case token.AMPERSAND:
		return AND_RR, true
	case token.PIPE:
		return OR_RR, true
	case token.CIRCUMFLEX:
		return XOR_RR, true
	case token.LTLT:
		return SHL_RR, true
	case token.GTGT:
		return SHR_RR, true
	}
	return NOP, false
}
