package env

import (
	"testing"

	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/literals"
	"github.com/stretchr/testify/require"
)

func TestEmitTracksStackDepth(t *testing.T) {
	e := New(literals.New(), nil)
	e.PushLiteral([]byte("a"), 0)
	e.PushLiteral([]byte("b"), 0)
	require.Equal(t, 2, e.StackDepth())
	e.Emit(instr.ADD)
	require.Equal(t, 1, e.StackDepth())
	require.Equal(t, 2, e.MaxStackDepth())
}

func TestForwardJumpFixup(t *testing.T) {
	e := New(literals.New(), nil)
	e.PushLiteral([]byte("cond"), 0)
	fx := e.EmitForwardJump(instr.JUMP_FALSE4)
	e.PushLiteral([]byte("then-body"), 0)
	e.Emit(instr.POP)
	e.FixupForwardJumpToHere(&fx)
	e.Emit(instr.EMPTYPUSH)
	e.Emit(instr.DONE)

	code := e.Code()
	// cond push (PUSH + 4-byte operand) occupies bytes [0,5); the jump
	// opcode byte sits at offset 5, its 4-byte operand at [6,10).
	require.Equal(t, byte(instr.JUMP_FALSE4), code[5])
	disp := int32(uint32(code[6])<<24 | uint32(code[7])<<16 | uint32(code[8])<<8 | uint32(code[9]))
	// the fixup target is the offset right after the then-body (PUSH+POP),
	// i.e. 5 (cond push) + 5 (jump_false4) + 5 (then push) + 1 (pop) = 16;
	// displacement is relative to the jump opcode's own offset (5).
	require.Equal(t, int32(16-5), disp)
}

func TestRollbackTruncatesCodeAndStack(t *testing.T) {
	pool := literals.New()
	e := New(pool, nil)
	e.PushLiteral([]byte("keep"), 0)
	snap := e.Snap()
	e.PushLiteral([]byte("discarded"), 0)
	e.Emit(instr.POP)
	require.Equal(t, 5+1, e.CodeLen())

	e.Rollback(snap)
	require.Equal(t, 5, e.CodeLen())
	require.Equal(t, 0, e.StackDepth())
}

func TestExceptRangeLifecycle(t *testing.T) {
	e := New(literals.New(), nil)
	idx := e.BeginExceptRange(bytecode.Loop)
	e.Emit(instr.EMPTYPUSH)
	e.Emit(instr.POP)
	end := e.Here()
	e.SetRangeTargets(idx, end, end)
	e.EndExceptRange(idx)

	r := e.RangeRecord(idx)
	require.Equal(t, 0, r.CodeStart)
	require.Equal(t, end, r.CodeLen)
	require.Equal(t, end, r.MainTarget)
}

func TestCatchDepthTracksNesting(t *testing.T) {
	e := New(literals.New(), nil)
	outer := e.BeginExceptRange(bytecode.Catch)
	require.Equal(t, 1, e.CatchDepth())
	inner := e.BeginExceptRange(bytecode.Catch)
	require.Equal(t, 2, e.CatchDepth())
	e.EndExceptRange(inner)
	require.Equal(t, 1, e.CatchDepth())
	e.EndExceptRange(outer)
	require.Equal(t, 0, e.CatchDepth())
}

func TestCmdMapMonotone(t *testing.T) {
	e := New(literals.New(), nil)
	e.EnterCmdLocation(0, e.Here())
	e.PushLiteral([]byte("1"), 0)
	e.Emit(instr.POP)
	e.SetCmdExtent(5, e.Here())

	e.EnterCmdLocation(6, e.Here())
	e.PushLiteral([]byte("2"), 0)
	e.Emit(instr.POP)
	e.SetCmdExtent(5, e.Here()-6)
	require.Equal(t, 2, e.NumCommands())
}

func TestFinalizeRejectsOpenRange(t *testing.T) {
	e := New(literals.New(), nil)
	e.BeginExceptRange(bytecode.Catch)
	_, err := e.Finalize(nil, nil)
	require.Error(t, err)
}
