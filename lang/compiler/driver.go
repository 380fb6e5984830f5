package compiler

import (
	"fmt"
	"strings"
)

// Driver turns a lowered Unit into the program's two textual outputs: an
// assembly listing and 16-bit-word hex machine code. Label positions are
// assigned in a first pass over the instruction stream and confirmed in
// a second, matching the two-pass approach a one-pass assembler needs
// whenever a forward jump references a label it hasn't reached yet.
type Driver struct {
	unit *Unit
}

// NewDriver returns a Driver over a fully lowered unit.
func NewDriver(unit *Unit) *Driver {
	return &Driver{unit: unit}
}

// AssignPositions walks the command stream once, recording each
// label's instruction-word position as it is reached and marking the
// target of every jump and call as verified (used), so assembly
// emission can later suppress any synthetic label nothing ever jumps
// to.
func (d *Driver) AssignPositions() error {
	jm := d.unit.Jumps

	pos := 0
	for _, c := range d.unit.Commands {
		switch {
		case c.Op == LABEL:
			if err := jm.SetPos(c.JumpLabel, pos); err != nil {
				return err
			}
		case c.Op == CALL:
			jm.SetVerify(c.CallLabel)
			pos += c.NumInstruct()
		case isJump(c.Op):
			jm.SetVerify(c.JumpLabel)
			pos += c.NumInstruct()
		default:
			pos += c.NumInstruct()
		}
	}
	return nil
}

// EmitAssembly renders the unit as a human-readable assembly listing:
// one mnemonic-and-operands line per real instruction, label names on
// their own line followed by a colon, INNER_START/INNER_END silently
// dropped since they only bracket a function body in the command
// stream and carry no assembly-level meaning.
func (d *Driver) EmitAssembly() (string, error) {
	var b strings.Builder
	for _, c := range d.unit.Commands {
		switch c.Op {
		case LABEL:
			if d.unit.Jumps.Verified(c.JumpLabel) {
				fmt.Fprintf(&b, "%s:\n", d.unit.Jumps.GetName(c.JumpLabel))
			}
		case INNER_START, INNER_END:
			continue
		default:
			line, err := d.asmLine(c)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "\t%s\n", line)
		}
	}
	return b.String(), nil
}

func (d *Driver) asmLine(c Command) (string, error) {
	if isJump(c.Op) {
		label := c.JumpLabel
		if c.Op == CALL {
			label = c.CallLabel
		}
		return fmt.Sprintf("%s %s", c.Op, d.unit.Jumps.GetName(label)), nil
	}
	switch c.Op {
	case NOP, RTRN, HALT, VID:
		return c.Op.String(), nil
	case PUSH:
		return fmt.Sprintf("PUSH %s", c.Source), nil
	}
	if c.Source == NoOperand {
		return fmt.Sprintf("%s %s", c.Op, c.Destination), nil
	}
	if c.Destination == NoOperand {
		return fmt.Sprintf("%s %s", c.Op, c.Source), nil
	}
	return fmt.Sprintf("%s %s, %s", c.Op, c.Destination, c.Source), nil
}

// EmitHex renders the unit as the fixed-width hex machine code the
// target CPU loads: one 4-hex-digit uppercase word per line, in
// instruction order. AssignPositions must run first so jump and call
// operands resolve to a concrete position instead of a label id.
func (d *Driver) EmitHex() (string, error) {
	words, err := d.EmitWords()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, w := range words {
		fmt.Fprintf(&b, "%04X\n", w)
	}
	return b.String(), nil
}

// EmitWords encodes the unit into its 16-bit instruction words. Word 1
// of every instruction packs the opcode in its high byte, the
// destination register index (or zero) in the low byte's high nibble,
// and the source register index (or zero) in the low byte's low
// nibble. A jump or call is followed by one more word holding its
// target's resolved position. Any other instruction is followed by one
// word for a RAM offset or immediate destination operand, if it has
// one, and then one word for a RAM offset or immediate source operand,
// if it has one.
func (d *Driver) EmitWords() ([]uint16, error) {
	var words []uint16
	for _, c := range d.unit.Commands {
		switch c.Op {
		case LABEL, INNER_START, INNER_END:
			continue
		}

		destReg, srcReg := regNibble(c.Destination), regNibble(c.Source)
		words = append(words, uint16(c.Op)<<8|uint16(destReg)<<4|uint16(srcReg))

		if isJump(c.Op) {
			label := c.JumpLabel
			if c.Op == CALL {
				label = c.CallLabel
			}
			pos, ok := d.unit.Jumps.Pos(label)
			if !ok {
				return nil, newErrf(UseBeforeInit, "%s", d.unit.Jumps.GetName(label))
			}
			words = append(words, uint16(pos))
			continue
		}

		if w, ok, err := operandWord(c.Destination); err != nil {
			return nil, err
		} else if ok {
			words = append(words, w)
		}
		if w, ok, err := operandWord(c.Source); err != nil {
			return nil, err
		} else if ok {
			words = append(words, w)
		}
	}
	return words, nil
}

func regNibble(o Operand) int {
	if o.Kind == KindReg {
		return o.Reg
	}
	return 0
}

// operandWord returns the extra instruction word a RAM or immediate
// operand occupies, failing with ImmediateOutOfRange if an immediate
// falls outside the signed 16-bit range the CPU can represent.
func operandWord(o Operand) (uint16, bool, error) {
	switch o.Kind {
	case KindRam:
		return uint16(o.Ram), true, nil
	case KindInt:
		if o.Int < -32768 || o.Int > 32767 {
			return 0, false, newErrf(ImmediateOutOfRange, "%d", o.Int)
		}
		return uint16(int16(o.Int)), true, nil
	}
	return 0, false, nil
}
