package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNegateIsInvolution(t *testing.T) {
	for _, op := range []Opcode{JEQ, JNE, JG, JLE, JL, JGE} {
		n1, err := negate(op)
		require.NoError(t, err)
		n2, err := negate(n1)
		require.NoError(t, err)
		require.Equal(t, op, n2)
	}
}

func TestNegateRejectsNonJump(t *testing.T) {
	_, err := negate(JMP)
	require.Error(t, err)
	require.Equal(t, NonNegatableJump, err.(*Error).Kind)

	_, err = negate(ADD_RR)
	require.Error(t, err)
	require.Equal(t, NonNegatableJump, err.(*Error).Kind)
}

func TestCorrectOpVariantSelection(t *testing.T) {
	cases := []struct {
		name     string
		dst, src Operand
		want     Opcode
	}{
		{"reg,reg", RegOperand(0), RegOperand(1), ADD_RR},
		{"ram,reg", RamOperand(0), RegOperand(1), ADD_MR},
		{"reg,imm", RegOperand(0), IntOperand(1), ADD_RI},
		{"reg,ram", RegOperand(0), RamOperand(1), ADD_RM},
		{"ram,imm", RamOperand(0), IntOperand(1), ADD_MI},
		{"ram,ram", RamOperand(0), RamOperand(1), ADD_MM},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := correctOp(ADD_RR, c.dst, c.src)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestCorrectOpTreatsPlaceholdersAsResolved(t *testing.T) {
	reg := NameOperand("#2")
	tmp := NameOperand("-1-call temp")

	got, err := correctOp(ADD_RR, reg, reg)
	require.NoError(t, err)
	require.Equal(t, ADD_RR, got)

	got, err = correctOp(ADD_RR, tmp, reg)
	require.NoError(t, err)
	require.Equal(t, ADD_MR, got)
}

func TestCorrectOpUnsupportedOperand(t *testing.T) {
	_, err := correctOp(ADD_RR, NoOperand, RegOperand(0))
	require.Error(t, err)
	require.Equal(t, UnsupportedOperand, err.(*Error).Kind)
}

func TestCorrectOpVideoVariants(t *testing.T) {
	got, err := correctOp(VID_RED_I, NoOperand, IntOperand(1))
	require.NoError(t, err)
	require.Equal(t, VID_RED_I, got)

	got, err = correctOp(VID_RED_I, NoOperand, RegOperand(0))
	require.NoError(t, err)
	require.Equal(t, VID_RED_R, got)

	got, err = correctOp(VID_RED_I, NoOperand, RamOperand(0))
	require.NoError(t, err)
	require.Equal(t, VID_RED_M, got)
}

func TestCorrectOpIdentityOutsideFamilies(t *testing.T) {
	got, err := correctOp(HALT, NoOperand, NoOperand)
	require.NoError(t, err)
	require.Equal(t, HALT, got)
}

func TestOpcodeStringCoversEveryValue(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		require.NotEmpty(t, op.String(), "opcode %d missing a name", op)
	}
}

func TestIsHelperOnly(t *testing.T) {
	for _, op := range []Opcode{LABEL, INNER_START, INNER_END, RETURN_HELPER, CALL_HELPER} {
		require.True(t, isHelperOnly(op))
	}
	require.False(t, isHelperOnly(ADD_RR))
}
