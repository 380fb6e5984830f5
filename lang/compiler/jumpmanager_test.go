package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFunctionMemoizes(t *testing.T) {
	jm := NewJumpManager()
	a := jm.GetFunction("f")
	b := jm.GetFunction("f")
	require.Equal(t, a, b)
	require.Equal(t, ".f", jm.GetName(a))
}

func TestGetFunctionIsAlwaysVerified(t *testing.T) {
	jm := NewJumpManager()
	a := jm.GetFunction("f")
	require.True(t, jm.Verified(a))
}

func TestGetJumpAllocatesDistinctIDs(t *testing.T) {
	jm := NewJumpManager()
	a := jm.GetJump("x")
	b := jm.GetJump("x")
	require.NotEqual(t, a, b)
	require.False(t, jm.Verified(a), "a synthetic label is unverified until something jumps to it")
}

func TestSyntheticLabelNameFormat(t *testing.T) {
	jm := NewJumpManager()
	a := jm.GetJump("loop_end")
	require.Equal(t, "L0", a.String())
	require.Equal(t, ".L0", jm.GetName(a))
}

func TestRemoveDuplicateUnifiesBothSetIntoSurvivor(t *testing.T) {
	jm := NewJumpManager()
	a := jm.GetJump("a")
	b := jm.GetJump("b")
	require.NoError(t, jm.SetPos(a, 3))
	jm.SetVerify(a)

	survivor := jm.RemoveDuplicate(&a, &b)
	require.Equal(t, a, survivor)

	pos, ok := jm.Pos(b)
	require.True(t, ok)
	require.Equal(t, 3, pos)
	require.True(t, jm.Verified(b))
	require.Equal(t, jm.GetName(a), jm.GetName(b))
}

func TestRemoveDuplicateReturnsTheOnlySetLabel(t *testing.T) {
	jm := NewJumpManager()
	a := jm.GetJump("a")
	require.Equal(t, a, jm.RemoveDuplicate(&a, nil))
	require.Equal(t, a, jm.RemoveDuplicate(nil, &a))
}

func TestRemoveDuplicateAllocatesWhenNeitherSet(t *testing.T) {
	jm := NewJumpManager()
	id := jm.RemoveDuplicate(nil, nil)
	require.False(t, jm.Verified(id))
}

func TestSetPosRejectsConflictingDuplicate(t *testing.T) {
	jm := NewJumpManager()
	a := jm.GetJump("a")
	require.NoError(t, jm.SetPos(a, 1))
	require.NoError(t, jm.SetPos(a, 1), "setting the same position twice is not a conflict")

	err := jm.SetPos(a, 2)
	require.Error(t, err)
	require.Equal(t, DuplicateLabelPosition, err.(*Error).Kind)
}
