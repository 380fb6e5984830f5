package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRegReturnsLowestFree(t *testing.T) {
	ch := NewCompileHelper()
	r0, err := ch.GetReg()
	require.NoError(t, err)
	require.Equal(t, "#0", r0.Name)

	r1, err := ch.GetReg()
	require.NoError(t, err)
	require.Equal(t, "#1", r1.Name)

	ch.FreeReg(r0)
	r2, err := ch.GetReg()
	require.NoError(t, err)
	require.Equal(t, "#0", r2.Name, "freed register 0 should be reused before extending")
}

func TestGetRegExhaustion(t *testing.T) {
	ch := NewCompileHelper()
	for i := 0; i <= maxScratchReg; i++ {
		_, err := ch.GetReg()
		require.NoError(t, err)
	}
	_, err := ch.GetReg()
	require.Error(t, err)
}

func TestFreeRegIgnoresNonPlaceholders(t *testing.T) {
	ch := NewCompileHelper()
	require.NotPanics(t, func() {
		ch.FreeReg(IntOperand(3))
		ch.FreeReg(RamOperand(1))
	})
}

func TestGetTempRAMReturnsDistinctNames(t *testing.T) {
	ch := NewCompileHelper()
	a := ch.GetTempRAM()
	b := ch.GetTempRAM()
	require.True(t, a.IsTempRam())
	require.True(t, b.IsTempRam())
	require.NotEqual(t, a.Name, b.Name)
}

func TestResetRestoresFullPool(t *testing.T) {
	ch := NewCompileHelper()
	for i := 0; i <= maxScratchReg; i++ {
		_, err := ch.GetReg()
		require.NoError(t, err)
	}
	ch.Reset()
	r, err := ch.GetReg()
	require.NoError(t, err)
	require.Equal(t, "#0", r.Name)
}

func TestExtractVariableAndCommandsPassesThroughNonCallTail(t *testing.T) {
	ch := NewCompileHelper()
	dst := RegOperand(0)
	cmds := []Command{{Op: MOV_RR}}
	result, out := ch.ExtractVariableAndCommands(dst, cmds)
	require.Equal(t, dst, result)
	require.Equal(t, cmds, out)
}

func TestExtractVariableAndCommandsPassesThroughAlreadyClaimedCall(t *testing.T) {
	ch := NewCompileHelper()
	dst := RamOperand(4)
	cmds := []Command{{Op: CALL_HELPER, CallDests: []Operand{dst}}}
	result, out := ch.ExtractVariableAndCommands(NoOperand, cmds)
	require.Equal(t, NoOperand, result, "a call whose destination is already claimed must not be reclaimed")
	require.Equal(t, cmds, out)
}

func TestExtractVariableAndCommandsClaimsUnboundCallTail(t *testing.T) {
	ch := NewCompileHelper()
	cmds := []Command{{Op: CALL_HELPER}}
	result, out := ch.ExtractVariableAndCommands(NoOperand, cmds)
	require.True(t, result.IsTempRam())
	require.Equal(t, []Operand{result}, out[len(out)-1].CallDests)
}

func TestFreeAllRegResetsOnlyTempCounter(t *testing.T) {
	ch := NewCompileHelper()
	reg, err := ch.GetReg()
	require.NoError(t, err)
	first := ch.GetTempRAM()
	require.Equal(t, "-1-call temp", first.Name)

	ch.FreeAllReg()

	again := ch.GetTempRAM()
	require.Equal(t, "-1-call temp", again.Name, "FreeAllReg must reset the temp-ram counter")
	require.True(t, ch.inUse[reg.regPlaceholderIndex()], "FreeAllReg must not release live registers")
}
