package compiler

import "github.com/nickolasddiaz/16bitcomputer/lang/ast"

// Unit is the fully lowered intermediate representation of a program,
// ready for the driver's two-pass label resolution and encoding.
type Unit struct {
	Commands []Command
	Funcs    *SharedFunctionTable
	Jumps    *JumpManager
}

// lowerer holds the per-function state threaded through expression and
// statement lowering: the shared function table and jump manager, plus
// this function's own register pool and frame allocator.
type lowerer struct {
	funcs *SharedFunctionTable
	jm    *JumpManager
	ch    *CompileHelper
	mm    *MemoryManager
}

// LowerProgram walks a parsed program bottom-up and produces the
// commands every declared function compiles to, with RETURN_HELPER and
// CALL_HELPER commands already expanded into real move/push/call
// sequences.
func LowerProgram(prog *ast.Program) (*Unit, error) {
	funcs := NewSharedFunctionTable()
	jm := NewJumpManager()

	for _, fn := range prog.Funcs {
		if isReservedName(fn.Name) && fn.Name != "main" {
			return nil, newErrf(ReservedName, "%s", fn.Name)
		}
		funcs.Declare(fn.Name, len(fn.Params), returnArityOf(fn.Body))
	}

	var all []Command
	for _, fn := range prog.Funcs {
		cmds, err := lowerFunction(fn, funcs, jm)
		if err != nil {
			return nil, err
		}
		all = append(all, cmds...)
	}

	return &Unit{Commands: all, Funcs: funcs, Jumps: jm}, nil
}

// returnArityOf scans a function body, nested blocks included, for its
// return statements and uses the largest value count among them as the
// function's declared return arity. Return statements with differing
// counts are not rejected. A function with no return statement returns
// zero values.
func returnArityOf(body []ast.Stmt) int {
	n := 0
	var walk func([]ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.ReturnStmt:
				if len(st.Values) > n {
					n = len(st.Values)
				}
			case *ast.IfStmt:
				for _, b := range st.Branches {
					walk(b.Body)
				}
				walk(st.Else)
			case *ast.WhileStmt:
				walk(st.Body)
			case *ast.DoWhileStmt:
				walk(st.Body)
			case *ast.ForStmt:
				walk(st.Body)
			}
		}
	}
	walk(body)
	return n
}

func lowerFunction(fn *ast.FuncDecl, funcs *SharedFunctionTable, jm *JumpManager) ([]Command, error) {
	ch := NewCompileHelper()
	mm := NewMemoryManager(funcs, jm, ch)
	if err := mm.EnterFunction(fn.Name, fn.Params); err != nil {
		return nil, err
	}

	l := &lowerer{funcs: funcs, jm: jm, ch: ch, mm: mm}
	label := jm.GetFunction(fn.Name)

	body, err := l.lowerStmts(fn.Body)
	if err != nil {
		return nil, err
	}
	if fn.Name == "main" {
		body = append(body, Command{Op: HALT})
	} else if !endsInReturn(fn.Body) {
		retc, _ := funcs.ReturnCount(fn.Name)
		body = append(body, Command{Op: RETURN_HELPER, ReturnExprs: make([]Operand, retc)})
	}

	expanded, err := expandHelpers(body, mm)
	if err != nil {
		return nil, err
	}

	out := make([]Command, 0, len(expanded)+6)
	out = append(out, Command{Op: LABEL, JumpLabel: label})
	out = append(out, Command{Op: INNER_START})
	out = append(out, mm.Prologue()...)
	out = append(out, expanded...)
	out = append(out, Command{Op: INNER_END})
	return out, nil
}

func endsInReturn(body []ast.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*ast.ReturnStmt)
	return ok
}

// expandHelpers replaces every RETURN_HELPER and CALL_HELPER command in
// cmds with the real command sequence MemoryManager resolves it to.
func expandHelpers(cmds []Command, mm *MemoryManager) ([]Command, error) {
	var out []Command
	for _, c := range cmds {
		switch c.Op {
		case RETURN_HELPER:
			expanded, err := mm.ExpandReturn(c)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		case CALL_HELPER:
			expanded, err := mm.ExpandCall(c.CallName, c)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		default:
			dst, err := mm.AllocateHelper(c.Destination)
			if err != nil {
				return nil, err
			}
			src, err := mm.AllocateHelper(c.Source)
			if err != nil {
				return nil, err
			}
			c.Destination, c.Source = dst, src
			out = append(out, c)
		}
	}
	return out, nil
}
