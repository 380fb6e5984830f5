package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinArities(t *testing.T) {
	ft := NewSharedFunctionTable()
	require.NoError(t, ft.ValidateArg("VID_RED", 1))
	require.NoError(t, ft.ValidateArg("VIDEO", 5))
	require.NoError(t, ft.ValidateArg("VID", 0))
	require.NoError(t, ft.ValidateArg("HALT", 0))
	require.NoError(t, ft.ValidateReturn("main", 0))
	require.True(t, ft.IsBuiltin("VIDEO"))
	require.False(t, ft.IsBuiltin("foo"))
}

func TestDeclareOverwritesArity(t *testing.T) {
	ft := NewSharedFunctionTable()
	ft.Declare("add", 2, 1)
	n, ok := ft.ArgCount("add")
	require.True(t, ok)
	require.Equal(t, 2, n)

	require.NoError(t, ft.ValidateArg("add", 2))
	require.Error(t, ft.ValidateArg("add", 1))
}

func TestValidateArgMismatch(t *testing.T) {
	ft := NewSharedFunctionTable()
	ft.Declare("f", 1, 0)
	err := ft.ValidateArg("f", 2)
	require.Error(t, err)
	require.Equal(t, ArityMismatch, err.(*Error).Kind)
}

func TestValidateUndeclaredFunction(t *testing.T) {
	ft := NewSharedFunctionTable()
	err := ft.ValidateArg("nope", 0)
	require.Error(t, err)
	require.Equal(t, UseBeforeInit, err.(*Error).Kind)
}
