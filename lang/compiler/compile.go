package compiler

import "github.com/nickolasddiaz/16bitcomputer/lang/parser"

// Result bundles everything a caller needs from compiling one source
// file: the lowered unit (for tooling that wants to inspect it) and
// the driver holding its resolved label positions.
type Result struct {
	Unit   *Unit
	Driver *Driver
}

// Compile parses, lowers and resolves src in one call, wrapping a
// parse failure in a compiler.Error of kind ParseFailure so callers can
// distinguish it from a lowering or encoding error without inspecting
// error strings.
func Compile(src []byte) (*Result, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, &Error{Kind: ParseFailure, Symbol: "source", Wrapped: err}
	}

	unit, err := LowerProgram(prog)
	if err != nil {
		return nil, err
	}

	d := NewDriver(unit)
	if err := d.AssignPositions(); err != nil {
		return nil, err
	}
	if _, err := d.EmitWords(); err != nil {
		return nil, err
	}

	return &Result{Unit: unit, Driver: d}, nil
}
