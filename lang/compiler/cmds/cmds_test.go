package cmds

import (
	"testing"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/literals"
	"github.com/mna/tbcc/lang/compiler/locals"
	"github.com/mna/tbcc/lang/ir"
	"github.com/stretchr/testify/require"
)

func word(text string) ir.Token { return ir.Token{Kind: ir.SimpleWord, Text: text} }

func scriptWord(cmds ...ir.Command) ir.Token {
	var children []ir.Token
	for i, cmd := range cmds {
		if i > 0 {
			children = append(children, ir.Token{Kind: ir.Operator, Text: ";"})
		}
		children = append(children, cmd.Words...)
	}
	return ir.Token{Kind: ir.Word, Children: children}
}

func TestGenericInvokeFallback(t *testing.T) {
	e := env.New(literals.New(), nil)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{word("unknownproc"), word("a"), word("b")}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
	require.Equal(t, 1, e.NumCommands())
	code := e.Code()
	require.Equal(t, byte(instr.INVOKE_STK1), code[len(code)-2])
}

func TestCompileIfNoElse(t *testing.T) {
	e := env.New(literals.New(), nil)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{
		word("if"),
		word("1"),
		scriptWord(ir.Command{Words: []ir.Token{word("set"), word("x"), word("1")}}),
	}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileIfElse(t *testing.T) {
	e := env.New(literals.New(), nil)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{
		word("if"),
		word("0"),
		scriptWord(ir.Command{Words: []ir.Token{word("foo")}}),
		word("else"),
		scriptWord(ir.Command{Words: []ir.Token{word("bar")}}),
	}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileWhile(t *testing.T) {
	e := env.New(literals.New(), nil)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{
		word("while"),
		word("0"),
		scriptWord(ir.Command{Words: []ir.Token{word("noop")}}),
	}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileSetAndIncrWithFrame(t *testing.T) {
	frame := locals.NewFrame()
	e := env.New(literals.New(), frame)
	c := New(nil)

	setCmd := &ir.Command{Words: []ir.Token{word("set"), word("x"), word("5")}}
	require.NoError(t, c.CompileCommand(e, setCmd))
	require.Equal(t, 1, e.StackDepth())

	e2 := env.New(literals.New(), frame)
	incrCmd := &ir.Command{Words: []ir.Token{word("incr"), word("x")}}
	require.NoError(t, c.CompileCommand(e2, incrCmd))
	require.Equal(t, 1, e2.StackDepth())
}

func TestCompileForeachWithFrame(t *testing.T) {
	frame := locals.NewFrame()
	e := env.New(literals.New(), frame)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{
		word("foreach"),
		word("x"),
		word("list"),
		scriptWord(ir.Command{Words: []ir.Token{word("noop")}}),
	}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileSwitchExact(t *testing.T) {
	e := env.New(literals.New(), nil)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{
		word("switch"),
		word("a"),
		{Kind: ir.Word, Children: []ir.Token{
			word("a"), scriptWord(ir.Command{Words: []ir.Token{word("one")}}),
			word("b"), scriptWord(ir.Command{Words: []ir.Token{word("two")}}),
			word("default"), scriptWord(ir.Command{Words: []ir.Token{word("three")}}),
		}},
	}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileCatchWithResultVar(t *testing.T) {
	frame := locals.NewFrame()
	e := env.New(literals.New(), frame)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{
		word("catch"),
		scriptWord(ir.Command{Words: []ir.Token{word("noop")}}),
		word("result"),
	}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
	require.Equal(t, 0, e.CatchDepth())
}

func TestCompileLsetSingleIndex(t *testing.T) {
	frame := locals.NewFrame()
	e := env.New(literals.New(), frame)
	c := New(nil)
	cmd := &ir.Command{Words: []ir.Token{word("lset"), word("mylist"), word("0"), word("newval")}}
	require.NoError(t, c.CompileCommand(e, cmd))
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileProgramEmitsDone(t *testing.T) {
	e := env.New(literals.New(), nil)
	c := New(nil)
	cmds := []ir.Command{
		{Words: []ir.Token{word("foo")}},
		{Words: []ir.Token{word("bar")}},
	}
	require.NoError(t, c.CompileProgram(e, cmds))
	code := e.Code()
	require.Equal(t, byte(instr.DONE), code[len(code)-1])
}

func TestCompileProgramEmptyPushesLiteral(t *testing.T) {
	e := env.New(literals.New(), nil)
	c := New(nil)
	require.NoError(t, c.CompileProgram(e, nil))
	code := e.Code()
	require.Equal(t, byte(instr.PUSH), code[0])
	require.Equal(t, byte(instr.DONE), code[len(code)-1])
}

func TestSplitScriptBySemicolon(t *testing.T) {
	toks := []ir.Token{
		word("foo"),
		{Kind: ir.Operator, Text: ";"},
		word("bar"),
		word("baz"),
	}
	cmds := splitScript(toks)
	require.Len(t, cmds, 2)
	require.Len(t, cmds[0].Words, 1)
	require.Len(t, cmds[1].Words, 2)
}
