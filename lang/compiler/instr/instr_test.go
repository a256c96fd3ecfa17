package instr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamesComplete(t *testing.T) {
	for op := Opcode(0); op <= OpcodeMax; op++ {
		require.NotContains(t, op.String(), "illegal", "opcode %d missing a name", op)
	}
}

func TestLookupRoundTrip(t *testing.T) {
	for op := Opcode(0); op <= OpcodeMax; op++ {
		got, ok := Lookup(op.String())
		require.True(t, ok)
		require.Equal(t, op, got)
	}
}

func TestIsJump(t *testing.T) {
	require.True(t, IsJump(JUMP4))
	require.True(t, IsJump(JUMP_FALSE1))
	require.False(t, IsJump(PUSH))
	require.False(t, IsJump(NOP))
}

func TestVarIntRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 63, 64, -64, -65, 1000, -1000, 1 << 20, -(1 << 20)} {
		buf := AppendVarInt(nil, v)
		require.Equal(t, VarLen(v), len(buf))
		got, n := ReadVarInt(buf)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestOneFourRoundTrip(t *testing.T) {
	four, ok := FourByteForm(JUMP1)
	require.True(t, ok)
	require.Equal(t, JUMP4, four)
	one, ok := OneByteForm(four)
	require.True(t, ok)
	require.Equal(t, JUMP1, one)
}

func TestEncodedSizeJumpAlwaysFour(t *testing.T) {
	require.Equal(t, 5, EncodedSize(JUMP4, 1000000))
	require.Equal(t, 5, EncodedSize(JUMP4, 1))
}

func TestEncodedSizeFixedWidthNotVarint(t *testing.T) {
	// operand width is chosen by opcode, never by the magnitude of arg -
	// unlike the cmdMap wire format, the instruction stream has no varint.
	require.Equal(t, 2, EncodedSize(LOAD_SCALAR1, 0))
	require.Equal(t, 2, EncodedSize(LOAD_SCALAR1, 127))
	require.Equal(t, 5, EncodedSize(LOAD_SCALAR4, 0))
	require.Equal(t, 5, EncodedSize(LOAD_SCALAR4, 1000000))
	require.Equal(t, 5, EncodedSize(PUSH, 0))
	require.Equal(t, 1, EncodedSize(NOP, 0))
}
