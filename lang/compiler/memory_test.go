package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMemoryManager(t *testing.T, fnName string, params []string, retc int) *MemoryManager {
	t.Helper()
	funcs := NewSharedFunctionTable()
	funcs.Declare(fnName, len(params), retc)
	jm := NewJumpManager()
	ch := NewCompileHelper()
	mm := NewMemoryManager(funcs, jm, ch)
	require.NoError(t, mm.EnterFunction(fnName, params))
	return mm
}

func TestEnterFunctionBindsParamsAfterReturnSlots(t *testing.T) {
	mm := newTestMemoryManager(t, "f", []string{"a", "b"}, 1)
	require.Equal(t, reservedFrameSlots+1, mm.ReturnOffset())

	a, err := mm.Lookup("a")
	require.NoError(t, err)
	require.Equal(t, RamOperand(mm.ReturnOffset()), a)

	b, err := mm.Lookup("b")
	require.NoError(t, err)
	require.Equal(t, RamOperand(mm.ReturnOffset()+1), b)
}

func TestDeclareIsIdempotent(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 0)
	a, err := mm.Declare("x")
	require.NoError(t, err)
	b, err := mm.Declare("x")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestLookupUnassignedFails(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 0)
	_, err := mm.Lookup("nope")
	require.Error(t, err)
	require.Equal(t, UseBeforeInit, err.(*Error).Kind)
}

func TestDeclareRejectsReservedName(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 0)
	_, err := mm.Declare("bp")
	require.Error(t, err)
	require.Equal(t, ReservedName, err.(*Error).Kind)

	_, err = mm.Declare("HALT")
	require.Error(t, err)
	require.Equal(t, ReservedName, err.(*Error).Kind)
}

func TestFreeDeadReusesOffset(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 0)
	a, err := mm.Declare("a")
	require.NoError(t, err)
	mm.FreeDead("a")

	b, err := mm.Declare("b")
	require.NoError(t, err)
	require.Equal(t, a, b, "freed offset should be reused by the next declaration")
}

func TestAllocateHelperResolvesEveryKindNameVariant(t *testing.T) {
	mm := newTestMemoryManager(t, "f", []string{"x"}, 0)

	reg, err := mm.AllocateHelper(NameOperand("#3"))
	require.NoError(t, err)
	require.Equal(t, RegOperand(3), reg)

	tmp1, err := mm.AllocateHelper(NameOperand("-1-call temp"))
	require.NoError(t, err)
	require.Equal(t, KindRam, tmp1.Kind)

	tmp2, err := mm.AllocateHelper(NameOperand("-1-call temp"))
	require.NoError(t, err)
	require.Equal(t, tmp1, tmp2, "resolving the same temp name twice must return the same slot")

	named, err := mm.AllocateHelper(NameOperand("x"))
	require.NoError(t, err)
	require.Equal(t, KindRam, named.Kind)

	require.Equal(t, IntOperand(5), mustAllocate(t, mm, IntOperand(5)))
}

func mustAllocate(t *testing.T, mm *MemoryManager, o Operand) Operand {
	t.Helper()
	res, err := mm.AllocateHelper(o)
	require.NoError(t, err)
	return res
}

func TestExpandReturnEmitsMovesThenRTRN(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 2)
	cmds, err := mm.ExpandReturn(Command{ReturnExprs: []Operand{IntOperand(1), IntOperand(2)}})
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	require.Equal(t, RamOperand(reservedFrameSlots), cmds[0].Destination)
	require.Equal(t, RamOperand(reservedFrameSlots+1), cmds[1].Destination)
	require.Equal(t, RTRN, cmds[2].Op)
}

func TestExpandCallVideoShortcut(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 0)
	cmds, err := mm.ExpandCall("VID_RED", Command{CallArgs: []Operand{IntOperand(255)}})
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	require.Equal(t, VID_RED_I, cmds[0].Op)
}

func TestExpandCallVideoRequiresFiveArgs(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 0)
	_, err := mm.ExpandCall("VIDEO", Command{CallArgs: []Operand{IntOperand(1)}})
	require.Error(t, err)
	require.Equal(t, ArityMismatch, err.(*Error).Kind)
}

func TestExpandCallVideoSetsAllChannelsThenTriggers(t *testing.T) {
	mm := newTestMemoryManager(t, "f", nil, 0)
	args := []Operand{IntOperand(1), IntOperand(2), IntOperand(3), IntOperand(4), IntOperand(5)}
	cmds, err := mm.ExpandCall("VIDEO", Command{CallArgs: args})
	require.NoError(t, err)
	require.Len(t, cmds, 6)
	require.Equal(t, []Opcode{VID_RED_I, VID_GREEN_I, VID_BLUE_I, VID_X_I, VID_Y_I, VID},
		[]Opcode{cmds[0].Op, cmds[1].Op, cmds[2].Op, cmds[3].Op, cmds[4].Op, cmds[5].Op})
}

// TestExpandCallGeneralSequence checks the general call sequence against
// a single pre-existing destination: arguments land at
// returns+sp_current+2 and up, sp is advanced by sp_current right
// before the CALL, and a destination that already has a home gets an
// explicit move out of its return slot.
func TestExpandCallGeneralSequence(t *testing.T) {
	funcs := NewSharedFunctionTable()
	funcs.Declare("add", 2, 1)
	jm := NewJumpManager()
	ch := NewCompileHelper()
	mm := NewMemoryManager(funcs, jm, ch)
	require.NoError(t, mm.EnterFunction("main", nil))

	dest, err := mm.Declare("result")
	require.NoError(t, err)
	spCurrent := mm.spCurrent()

	cmds, err := mm.ExpandCall("add", Command{
		CallArgs:  []Operand{IntOperand(1), IntOperand(2)},
		CallDests: []Operand{dest},
	})
	require.NoError(t, err)
	// 2 argument moves + ADD sp + CALL + 1 return-value move
	require.Len(t, cmds, 5)

	argBase := 1 + spCurrent + 2
	require.Equal(t, RamOperand(argBase), cmds[0].Destination)
	require.Equal(t, RamOperand(argBase+1), cmds[1].Destination)

	require.Equal(t, ADD_RI, cmds[2].Op)
	require.Equal(t, RegOperand(RegSP), cmds[2].Destination)
	require.Equal(t, IntOperand(int64(spCurrent)), cmds[2].Source)

	require.Equal(t, CALL, cmds[3].Op)

	require.Equal(t, MOV_RR, cmds[4].Op)
	require.Equal(t, dest, cmds[4].Destination)
	require.Equal(t, RamOperand(spCurrent+1), cmds[4].Source)
}

// TestExpandCallBindsFreshNameWithoutMove checks that a call destination
// never seen before is bound directly to its return slot, with no move
// command emitted for it at all.
func TestExpandCallBindsFreshNameWithoutMove(t *testing.T) {
	funcs := NewSharedFunctionTable()
	funcs.Declare("f", 0, 2)
	jm := NewJumpManager()
	ch := NewCompileHelper()
	mm := NewMemoryManager(funcs, jm, ch)
	require.NoError(t, mm.EnterFunction("main", nil))
	spCurrent := mm.spCurrent()

	cmds, err := mm.ExpandCall("f", Command{
		CallDests: []Operand{NameOperand("a"), NameOperand("b")},
	})
	require.NoError(t, err)
	// no argument moves, no return-value moves: just ADD sp and CALL
	require.Len(t, cmds, 2)
	require.Equal(t, ADD_RI, cmds[0].Op)
	require.Equal(t, CALL, cmds[1].Op)

	a, err := mm.Lookup("a")
	require.NoError(t, err)
	require.Equal(t, RamOperand(spCurrent+1), a)

	b, err := mm.Lookup("b")
	require.NoError(t, err)
	require.Equal(t, RamOperand(spCurrent+2), b)
}

func TestPrologue(t *testing.T) {
	mm := newTestMemoryManager(t, "f", []string{"a"}, 0)
	cmds := mm.Prologue()
	require.Len(t, cmds, 3)
	require.Equal(t, PUSH, cmds[0].Op)
	require.Equal(t, RegOperand(RegBP), cmds[0].Source)
	require.Equal(t, MOV_RR, cmds[1].Op)
	require.Equal(t, ADD_RI, cmds[2].Op)
	require.Equal(t, IntOperand(int64(mm.FrameSize())), cmds[2].Source)
}
