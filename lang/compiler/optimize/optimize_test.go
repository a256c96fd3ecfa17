package optimize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/instr"
)

func opBytes(ops ...any) []byte {
	var out []byte
	for _, o := range ops {
		switch v := o.(type) {
		case instr.Opcode:
			out = append(out, byte(v))
		case byte:
			out = append(out, v)
		}
	}
	return out
}

func b4(n int32) []byte {
	u := uint32(n)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}

func TestRewriteLoopExitsResolvesBreak(t *testing.T) {
	// BREAK<0> at offset 0, DONE at offset 5; range 0's MainTarget is 5.
	code := append(opBytes(instr.BREAK), b4(0)...)
	code = append(code, byte(instr.DONE))
	ranges := []bytecode.ExceptionRange{{Kind: bytecode.Loop, MainTarget: 5, ContinueTarget: 0}}

	rewriteLoopExits(code, ranges)
	require.Equal(t, byte(instr.JUMP4), code[0])
	require.Equal(t, int32(5), decode4(code[1:5]))
}

func TestPeepholeElidesPushPop(t *testing.T) {
	code := append([]byte{byte(instr.PUSH)}, b4(0)...)
	code = append(code, byte(instr.POP), byte(instr.DONE))
	paths := make([]int, len(code))
	paths[5] = 1 // POP's offset, single predecessor (the push)

	changed := peephole(code, paths)
	require.True(t, changed)
	require.Equal(t, byte(instr.NOP), code[0])
	require.Equal(t, byte(instr.NOP), code[5])
	require.Equal(t, byte(instr.DONE), code[6])
}

func TestPeepholeElidesDoubleNegation(t *testing.T) {
	code := []byte{byte(instr.LNOT), byte(instr.LNOT), byte(instr.DONE)}
	paths := make([]int, len(code))

	changed := peephole(code, paths)
	require.True(t, changed)
	require.Equal(t, byte(instr.NOP), code[0])
	require.Equal(t, byte(instr.NOP), code[1])
}

func TestPeepholeInlinesJumpToDone(t *testing.T) {
	// JUMP4 <+6> at offset 0 (targets offset 6, a DONE); NOP filler; DONE at 6.
	code := append([]byte{byte(instr.JUMP4)}, b4(6)...)
	code = append(code, byte(instr.NOP), byte(instr.DONE))
	paths := make([]int, len(code))

	changed := peephole(code, paths)
	require.True(t, changed)
	require.Equal(t, byte(instr.DONE), code[0])
	for _, b := range code[1:5] {
		require.Equal(t, byte(instr.NOP), b)
	}
}

func TestCompactDropsNopsAndShrinksJump(t *testing.T) {
	// NOP NOP NOP NOP NOP (5 bytes dead) then JUMP4 targeting the DONE right
	// after it; after compaction the jump's displacement shrinks to fit 1
	// byte.
	code := make([]byte, 5)
	for i := range code {
		code[i] = byte(instr.NOP)
	}
	code = append(code, byte(instr.JUMP4))
	code = append(code, b4(5)...) // disp = target(10) - wordOffset(5) = 5
	code = append(code, byte(instr.DONE))

	out, shrunk := compact(code, nil, nil)
	require.True(t, shrunk)
	require.Equal(t, byte(instr.JUMP1), out[0])
	require.Equal(t, byte(instr.DONE), out[2])
}

func TestOptimizeEndToEnd(t *testing.T) {
	// push "" ; pop ; lnot ; lnot ; done -> fully collapses to just `done`.
	code := append([]byte{byte(instr.PUSH)}, b4(0)...)
	code = append(code, byte(instr.POP), byte(instr.LNOT), byte(instr.LNOT), byte(instr.DONE))

	bc := bytecode.New(code, []any{""}, nil, nil, nil, 1, 0, 0, nil)
	out, err := Optimize(bc)
	require.NoError(t, err)
	require.Equal(t, []byte{byte(instr.DONE)}, out.Code)
	// the original is untouched.
	require.NotEqual(t, len(out.Code), len(bc.Code))
}
