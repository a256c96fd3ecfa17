package asm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/literals"
)

func newEnv() *env.CompileEnv { return env.New(literals.New(), nil) }

func pushLit(e *env.CompileEnv, value string) Line {
	idx := e.RegisterLiteral([]byte(value), 0)
	return Line{Op: "push", Args: []string{fmt.Sprint(idx)}}
}

func TestAssembleStraightLineStackCheck(t *testing.T) {
	e := newEnv()
	lines := []Line{
		pushLit(e, "a"),
		pushLit(e, "b"),
		{Op: "add"},
		{Op: "pop"},
	}
	require.NoError(t, Assemble(e, lines, nil))
	require.Equal(t, 2, e.MaxStackDepth())
	// exit depth was 0 after the final pop; Assemble auto-compensates with an
	// empty-string push, leaving the producing unit with exactly one result.
	code := e.Code()
	require.Equal(t, byte(instr.PUSH), code[len(code)-5])
}

func TestAssembleStackUnderflow(t *testing.T) {
	e := newEnv()
	lines := []Line{
		pushLit(e, "a"),
		{Op: "pop"},
		{Op: "pop"},
	}
	err := Assemble(e, lines, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stack underflow")
}

func TestAssembleUnbalancedExit(t *testing.T) {
	e := newEnv()
	lines := []Line{
		pushLit(e, "a"),
		pushLit(e, "b"),
	}
	err := Assemble(e, lines, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unbalanced stack on exit")
}

func TestAssembleDuplicateLabel(t *testing.T) {
	e := newEnv()
	lines := []Line{
		{Label: "top"},
		pushLit(e, "a"),
		{Label: "top"},
	}
	err := Assemble(e, lines, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "defined more than once")
}

func TestAssembleUndefinedLabel(t *testing.T) {
	e := newEnv()
	lines := []Line{
		{Op: "jump", Args: []string{"nowhere"}},
	}
	err := Assemble(e, lines, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined label")
}

// TestAssembleLoopBackwardJump exercises the revisit-consistency check on a
// genuine cycle: a conditional jump back to an earlier label, matching the
// net-zero-effect shape a while loop's body compiles to (body then pop,
// §4.4.2) so the two paths reaching the label agree on depth.
func TestAssembleLoopBackwardJump(t *testing.T) {
	e := newEnv()
	lines := []Line{
		{Label: "top"},
		pushLit(e, "0"),
		{Op: "jump_false", Args: []string{"done"}},
		pushLit(e, "body"),
		{Op: "pop"},
		{Op: "jump", Args: []string{"top"}},
		{Label: "done"},
		pushLit(e, "result"),
		{Op: "done"},
	}
	require.NoError(t, Assemble(e, lines, nil))
	require.Equal(t, 1, e.MaxStackDepth())
}

func TestDisassembleRoundTrip(t *testing.T) {
	e := newEnv()
	lines := []Line{
		pushLit(e, "cond"),
		{Op: "jump_false", Args: []string{"else"}},
		pushLit(e, "then"),
		{Op: "jump", Args: []string{"end"}},
		{Label: "else"},
		pushLit(e, "elsebranch"),
		{Label: "end"},
		{Op: "done"},
	}
	require.NoError(t, Assemble(e, lines, nil))

	dis, err := Disassemble(e.Code())
	require.NoError(t, err)

	e2 := newEnv()
	// carry over the same literal pool so the push indices stay meaningful.
	e2.Literals = e.Literals
	require.NoError(t, Assemble(e2, dis, nil))
	require.Equal(t, e.MaxStackDepth(), e2.MaxStackDepth())
}
