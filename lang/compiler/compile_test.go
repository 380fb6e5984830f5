package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func compileOK(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Compile([]byte(src))
	require.NoError(t, err)
	return res
}

func TestCompileConstantFolding(t *testing.T) {
	res := compileOK(t, `def main(){ a = 2 + 3 * 4; }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	require.Contains(t, asm, "MOV [bp + 2], 14")
	require.NotContains(t, asm, "MULT")
	require.NotContains(t, asm, "\tADD")
	require.Contains(t, asm, "HALT")
}

func TestCompileSimpleConditional(t *testing.T) {
	res := compileOK(t, `def main(){ a = 0; if (a == 1) { b = 2; } }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	require.Contains(t, asm, "CMP [bp + 2], 1")
	require.Contains(t, asm, "JNE")
	require.Contains(t, asm, "MOV [bp + 3], 2")
}

func TestCompileWhileLoop(t *testing.T) {
	res := compileOK(t, `def main(){ i = 0; while (i < 10) { i += 1; } }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	require.Contains(t, asm, "CMP [bp + 2], 10")
	require.Contains(t, asm, "JL")
	require.Contains(t, asm, "ADD [bp + 2], 1")
}

func TestCompileMultiReturnCall(t *testing.T) {
	res := compileOK(t, `def f(){ return 1,2; } def main(){ a,b = f(); }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	require.Contains(t, asm, "CALL")
	require.Contains(t, asm, "ADD sp,")
	// a and b are fresh names: ExpandCall binds them directly to their
	// return slots, so no MOV follows the call to claim them.
	lines := strings.Split(strings.TrimSpace(asm), "\n")
	callIdx := -1
	for i, l := range lines {
		if strings.Contains(l, "CALL") {
			callIdx = i
			break
		}
	}
	require.NotEqual(t, -1, callIdx)
	require.NotContains(t, lines[callIdx+1], "MOV")
}

func TestCompileCallResultReassignmentEmitsMove(t *testing.T) {
	res := compileOK(t, `def f(){ return 1; } def main(){ a = 0; a = f(); }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	require.Contains(t, asm, "CALL")
	lines := strings.Split(strings.TrimSpace(asm), "\n")
	callIdx := -1
	for i, l := range lines {
		if strings.Contains(l, "CALL") {
			callIdx = i
			break
		}
	}
	require.NotEqual(t, -1, callIdx)
	require.Contains(t, lines[callIdx+1], "MOV", "a already has a home, so its return value must be moved into it")
}

func TestCompileArityMismatchFails(t *testing.T) {
	_, err := Compile([]byte(`def f(x){ return x; } def main(){ a = f(); }`))
	require.Error(t, err)
	require.Equal(t, ArityMismatch, err.(*Error).Kind)
}

func TestCompileReservedNameFails(t *testing.T) {
	_, err := Compile([]byte(`def HALT(){ return; } def main(){ }`))
	require.Error(t, err)
	require.Equal(t, ReservedName, err.(*Error).Kind)
}

func TestCompileParseFailureWraps(t *testing.T) {
	_, err := Compile([]byte(`def main( { }`))
	require.Error(t, err)
	cerr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ParseFailure, cerr.Kind)
	require.Error(t, cerr.Unwrap())
}

func TestCompileImmediateOutOfRangeFails(t *testing.T) {
	_, err := Compile([]byte(`def main(){ a = 100000; }`))
	require.Error(t, err)
	require.Equal(t, ImmediateOutOfRange, err.(*Error).Kind)
}

func TestCompileEmitHexProducesFourDigitWords(t *testing.T) {
	res := compileOK(t, `def main(){ a = 1; }`)
	hex, err := res.Driver.EmitHex()
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(hex), "\n") {
		require.Len(t, line, 4)
		for _, r := range line {
			require.True(t, (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F'))
		}
	}
}

func TestCompileFunctionPrologueShape(t *testing.T) {
	res := compileOK(t, `def add(x, y){ return x + y; } def main(){ a = add(1,2); }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(asm), "\n")

	idx := -1
	for i, l := range lines {
		if strings.HasPrefix(l, ".add:") || strings.Contains(l, "add:") {
			idx = i
			break
		}
	}
	require.NotEqual(t, -1, idx, "expected a label line for function add")
	require.Contains(t, lines[idx+1], "PUSH bp")
	require.Contains(t, lines[idx+2], "MOV bp, sp")
}

// TestCompileBinaryReusesAccumulatorRegister checks process_binary_
// operation's register-reuse case: once (a + b) has landed in a
// register, adding d to it extends the same register in place instead
// of allocating a second one and re-loading the partial sum into it.
func TestCompileBinaryReusesAccumulatorRegister(t *testing.T) {
	res := compileOK(t, `def main(){ a = 1; b = 1; d = 1; c = (a + b) + d; }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	require.Contains(t, asm,
		"\tMOV R0, [bp + 2]\n"+
			"\tADD R0, [bp + 3]\n"+
			"\tADD R0, [bp + 4]\n"+
			"\tMOV [bp + 5], R0\n")
}

func TestCompileVideoBuiltins(t *testing.T) {
	res := compileOK(t, `def main(){ VID_RED(255); VIDEO(1,2,3,4,5); }`)
	asm, err := res.Driver.EmitAssembly()
	require.NoError(t, err)
	require.Contains(t, asm, "VID_RED 255")
	require.Contains(t, asm, "VID_GREEN")
	require.Contains(t, asm, "VID_BLUE")
	require.Contains(t, asm, "VID_X")
	require.Contains(t, asm, "VID_Y")
}
