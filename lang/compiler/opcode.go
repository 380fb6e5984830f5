package compiler

import (
	"fmt"

	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

// Opcode identifies a single instruction in the target 16-bit instruction
// set. Arithmetic, move and compare mnemonics each expand to six opcodes,
// one per addressing-mode variant, laid out in a fixed relative order:
// REG,REG (base) / RAM,REG (+1) / REG,IMM (+2) / REG,RAM (+3) / RAM,IMM (+4)
// / RAM,RAM (+5). Video opcodes expand to three variants: IMM (base) /
// REG (+1) / RAM (+2).
type Opcode uint8

//nolint:revive
const (
	NOP Opcode = iota

	// MOV family
	MOV_RR
	MOV_MR
	MOV_RI
	MOV_RM
	MOV_MI
	MOV_MM

	// ADD family
	ADD_RR
	ADD_MR
	ADD_RI
	ADD_RM
	ADD_MI
	ADD_MM

	// SUB family
	SUB_RR
	SUB_MR
	SUB_RI
	SUB_RM
	SUB_MI
	SUB_MM

	// MULT family
	MULT_RR
	MULT_MR
	MULT_RI
	MULT_RM
	MULT_MI
	MULT_MM

	// DIV family
	DIV_RR
	DIV_MR
	DIV_RI
	DIV_RM
	DIV_MI
	DIV_MM

	// MOD family
	MOD_RR
	MOD_MR
	MOD_RI
	MOD_RM
	MOD_MI
	MOD_MM

	// AND family (bitwise)
	AND_RR
	AND_MR
	AND_RI
	AND_RM
	AND_MI
	AND_MM

	// OR family (bitwise)
	OR_RR
	OR_MR
	OR_RI
	OR_RM
	OR_MI
	OR_MM

	// XOR family (bitwise)
	XOR_RR
	XOR_MR
	XOR_RI
	XOR_RM
	XOR_MI
	XOR_MM

	// SHL family
	SHL_RR
	SHL_MR
	SHL_RI
	SHL_RM
	SHL_MI
	SHL_MM

	// SHR family
	SHR_RR
	SHR_MR
	SHR_RI
	SHR_RM
	SHR_MI
	SHR_MM

	// CMP family
	CMP_RR
	CMP_MR
	CMP_RI
	CMP_RM
	CMP_MI
	CMP_MM

	opFamilyMax // marker: one past the last REG/RAM/IMM-family opcode

	// video opcodes, three addressing-mode variants each: IMM (base) / REG
	// (+1) / RAM (+2)
	VID_RED_I
	VID_RED_R
	VID_RED_M
	VID_GREEN_I
	VID_GREEN_R
	VID_GREEN_M
	VID_BLUE_I
	VID_BLUE_R
	VID_BLUE_M
	VID_X_I
	VID_X_R
	VID_X_M
	VID_Y_I
	VID_Y_R
	VID_Y_M

	VID // triggers the video output, no operand

	// stack/procedure primitives
	PUSH // PUSH reg
	RTRN // return to caller, no operand
	HALT // stop execution, no operand

	// jumps: a contiguous block, JMP..CALL
	JMP  // unconditional jump
	JEQ  // jump if equal
	JNE  // jump if not equal
	JG   // jump if greater
	JLE  // jump if less-or-equal
	JL   // jump if less
	JGE  // jump if greater-or-equal
	CALL // call a function label

	// helper opcodes: exist only in the IR, never reach the encoder.
	LABEL
	INNER_START
	INNER_END
	RETURN_HELPER
	CALL_HELPER

	opcodeCount
)

const (
	opJumpMin = JMP
	opJumpMax = CALL
)

// opFamily identifies a family of REG/RAM/IMM addressing-mode variants.
type opFamily int

const (
	famMOV opFamily = iota
	famADD
	famSUB
	famMULT
	famDIV
	famMOD
	famAND
	famOR
	famXOR
	famSHL
	famSHR
	famCMP
	famCount
)

const variantsPerFamily = 6

// familyBase returns the REG,REG (base) opcode of family f.
func familyBase(f opFamily) Opcode { return MOV_RR + Opcode(f)*variantsPerFamily }

// familyOf reports the family and base-relative variant offset of op, and
// whether op belongs to one of the arithmetic/move/compare families at
// all.
func familyOf(op Opcode) (f opFamily, variant int, ok bool) {
	if op < MOV_RR || op >= opFamilyMax {
		return 0, 0, false
	}
	rel := int(op - MOV_RR)
	return opFamily(rel / variantsPerFamily), rel % variantsPerFamily, true
}

// videoFamily identifies one of the five single-channel video opcodes.
type videoFamily int

const (
	vidRed videoFamily = iota
	vidGreen
	vidBlue
	vidX
	vidY
	vidFamilyCount
)

const variantsPerVideoFamily = 3

func videoFamilyBase(f videoFamily) Opcode { return VID_RED_I + Opcode(f)*variantsPerVideoFamily }

func videoFamilyOf(op Opcode) (f videoFamily, variant int, ok bool) {
	if op < VID_RED_I || op >= VID {
		return 0, 0, false
	}
	rel := int(op - VID_RED_I)
	return videoFamily(rel / variantsPerVideoFamily), rel % variantsPerVideoFamily, true
}

// isJump reports whether op is one of the contiguous JMP..CALL opcodes.
func isJump(op Opcode) bool { return op >= opJumpMin && op <= opJumpMax }

// isConditionalJump reports whether op is a conditional jump, i.e. a jump
// other than the unconditional JMP and the unconditional CALL.
func isConditionalJump(op Opcode) bool {
	return isJump(op) && op != JMP && op != CALL
}

// negate returns the complementary conditional jump opcode, e.g. JEQ for
// JNE. It fails for any opcode that is not a conditional jump.
func negate(op Opcode) (Opcode, error) {
	switch op {
	case JEQ:
		return JNE, nil
	case JNE:
		return JEQ, nil
	case JG:
		return JLE, nil
	case JLE:
		return JG, nil
	case JL:
		return JGE, nil
	case JGE:
		return JL, nil
	}
	return NOP, newErrf(NonNegatableJump, "%s", op)
}

// compareJump maps a comparison operator token to the conditional jump
// that tests it, e.g. token.EQL -> JEQ.
var compareJump = map[token.Token]Opcode{
	token.EQL: JEQ,
	token.NEQ: JNE,
	token.GT:  JG,
	token.LE:  JLE,
	token.LT:  JL,
	token.GE:  JGE,
}

// correctOp returns the addressing-mode variant of op matching the shapes
// of dst and src. It is the identity for opcodes outside the
// arithmetic/move/compare and video families. Unsupported shape
// combinations fail with UnsupportedOperand.
func correctOp(op Opcode, dst, src Operand) (Opcode, error) {
	if f, _, ok := familyOf(op); ok {
		variant, ok := variantFor(dst, src)
		if !ok {
			return NOP, newErrf(UnsupportedOperand, "%s %s, %s", op, dst, src)
		}
		return familyBase(f) + Opcode(variant), nil
	}
	if f, _, ok := videoFamilyOf(op); ok {
		variant, ok := videoVariantFor(src)
		if !ok {
			return NOP, newErrf(UnsupportedOperand, "%s %s", op, src)
		}
		return videoFamilyBase(f) + Opcode(variant), nil
	}
	return op, nil
}

// effectiveKind reports the Kind an operand will resolve to once
// MemoryManager.AllocateHelper runs, so addressing-mode selection can
// happen during lowering even though register and temp-RAM
// placeholders are still unresolved KindName operands at that point.
func effectiveKind(o Operand) Kind {
	switch {
	case o.IsRegPlaceholder():
		return KindReg
	case o.IsTempRam():
		return KindRam
	}
	return o.Kind
}

// variantFor selects the REG/RAM/IMM variant offset for the (dst, src)
// operand shapes, following the fixed relative order documented on
// Opcode.
func variantFor(dst, src Operand) (int, bool) {
	d, s := effectiveKind(dst), effectiveKind(src)
	switch {
	case d == KindReg && s == KindReg:
		return 0, true
	case d == KindRam && s == KindReg:
		return 1, true
	case d == KindReg && s == KindInt:
		return 2, true
	case d == KindReg && s == KindRam:
		return 3, true
	case d == KindRam && s == KindInt:
		return 4, true
	case d == KindRam && s == KindRam:
		return 5, true
	}
	return 0, false
}

func videoVariantFor(src Operand) (int, bool) {
	switch effectiveKind(src) {
	case KindInt:
		return 0, true
	case KindReg:
		return 1, true
	case KindRam:
		return 2, true
	}
	return 0, false
}

var opcodeNames = [...]string{
	NOP: "NOP",

	MOV_RR: "MOV", MOV_MR: "MOV", MOV_RI: "MOV", MOV_RM: "MOV", MOV_MI: "MOV", MOV_MM: "MOV",
	ADD_RR: "ADD", ADD_MR: "ADD", ADD_RI: "ADD", ADD_RM: "ADD", ADD_MI: "ADD", ADD_MM: "ADD",
	SUB_RR: "SUB", SUB_MR: "SUB", SUB_RI: "SUB", SUB_RM: "SUB", SUB_MI: "SUB", SUB_MM: "SUB",
	MULT_RR: "MULT", MULT_MR: "MULT", MULT_RI: "MULT", MULT_RM: "MULT", MULT_MI: "MULT", MULT_MM: "MULT",
	DIV_RR: "DIV", DIV_MR: "DIV", DIV_RI: "DIV", DIV_RM: "DIV", DIV_MI: "DIV", DIV_MM: "DIV",
	MOD_RR: "MOD", MOD_MR: "MOD", MOD_RI: "MOD", MOD_RM: "MOD", MOD_MI: "MOD", MOD_MM: "MOD",
	AND_RR: "AND", AND_MR: "AND", AND_RI: "AND", AND_RM: "AND", AND_MI: "AND", AND_MM: "AND",
	OR_RR: "OR", OR_MR: "OR", OR_RI: "OR", OR_RM: "OR", OR_MI: "OR", OR_MM: "OR",
	XOR_RR: "XOR", XOR_MR: "XOR", XOR_RI: "XOR", XOR_RM: "XOR", XOR_MI: "XOR", XOR_MM: "XOR",
	SHL_RR: "SHL", SHL_MR: "SHL", SHL_RI: "SHL", SHL_RM: "SHL", SHL_MI: "SHL", SHL_MM: "SHL",
	SHR_RR: "SHR", SHR_MR: "SHR", SHR_RI: "SHR", SHR_RM: "SHR", SHR_MI: "SHR", SHR_MM: "SHR",
	CMP_RR: "CMP", CMP_MR: "CMP", CMP_RI: "CMP", CMP_RM: "CMP", CMP_MI: "CMP", CMP_MM: "CMP",

	VID_RED_I: "VID_RED", VID_RED_R: "VID_RED", VID_RED_M: "VID_RED",
	VID_GREEN_I: "VID_GREEN", VID_GREEN_R: "VID_GREEN", VID_GREEN_M: "VID_GREEN",
	VID_BLUE_I: "VID_BLUE", VID_BLUE_R: "VID_BLUE", VID_BLUE_M: "VID_BLUE",
	VID_X_I: "VID_X", VID_X_R: "VID_X", VID_X_M: "VID_X",
	VID_Y_I: "VID_Y", VID_Y_R: "VID_Y", VID_Y_M: "VID_Y",
	VID: "VID",

	PUSH: "PUSH",
	RTRN: "RTRN",
	HALT: "HALT",

	JMP: "JMP", JEQ: "JEQ", JNE: "JNE", JG: "JG", JLE: "JLE", JL: "JL", JGE: "JGE", CALL: "CALL",

	LABEL:         "LABEL",
	INNER_START:   "INNER_START",
	INNER_END:     "INNER_END",
	RETURN_HELPER: "RETURN_HELPER",
	CALL_HELPER:   "CALL_HELPER",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// isHelperOnly reports whether op is an IR-only pseudo-instruction that
// must never reach the encoder.
func isHelperOnly(op Opcode) bool {
	switch op {
	case LABEL, INNER_START, INNER_END, RETURN_HELPER, CALL_HELPER:
		return true
	}
	return false
}
