package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumInstruct(t *testing.T) {
	cases := []struct {
		name string
		cmd  Command
		want int
	}{
		{"label", Command{Op: LABEL}, 0},
		{"inner start", Command{Op: INNER_START}, 0},
		{"reg,reg", Command{Op: ADD_RR, Destination: RegOperand(0), Source: RegOperand(1)}, 1},
		{"ram,reg", Command{Op: ADD_MR, Destination: RamOperand(0), Source: RegOperand(1)}, 2},
		{"ram,imm", Command{Op: ADD_MI, Destination: RamOperand(0), Source: IntOperand(1)}, 3},
		{"bare", Command{Op: HALT}, 1},
		{"jump", Command{Op: JMP}, 2},
		{"call", Command{Op: CALL}, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.cmd.NumInstruct())
		})
	}
}

func TestNumInstructPanicsOnUnexpandedHelper(t *testing.T) {
	require.Panics(t, func() { Command{Op: RETURN_HELPER}.NumInstruct() })
	require.Panics(t, func() { Command{Op: CALL_HELPER}.NumInstruct() })
}
