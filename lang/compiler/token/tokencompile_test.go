package tokencompile

import (
	"testing"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/literals"
	"github.com/mna/tbcc/lang/compiler/locals"
	"github.com/mna/tbcc/lang/ir"
	"github.com/stretchr/testify/require"
)

type noScripts struct{}

func (noScripts) CompileScript(*env.CompileEnv, []ir.Token) error { return nil }

func simpleWord(text string) ir.Token {
	return ir.Token{Kind: ir.SimpleWord, Text: text}
}

func TestCompileWordSimple(t *testing.T) {
	e := env.New(literals.New(), nil)
	require.NoError(t, CompileWord(e, simpleWord("hello"), noScripts{}))
	require.Equal(t, 1, e.StackDepth())
	require.Equal(t, 5, e.CodeLen()) // PUSH opcode + 4-byte literal index
}

func TestCompileWordConcatenatesSegments(t *testing.T) {
	e := env.New(literals.New(), nil)
	word := ir.Token{
		Kind: ir.Word,
		Children: []ir.Token{
			{Kind: ir.Text, Text: "a="},
			{Kind: ir.VariableSubst, Text: "x"},
		},
	}
	require.NoError(t, CompileWord(e, word, noScripts{}))
	require.Equal(t, 1, e.StackDepth())
	code := e.Code()
	require.Equal(t, byte(instr.PUSH), code[0])
	// variable subst with no Locals frame falls back to name+LOAD_STK.
	require.Equal(t, byte(instr.LOAD_STK), code[10])
	require.Equal(t, byte(instr.CONCAT), code[11])
}

func TestCompileWordLocalScalar(t *testing.T) {
	e := env.New(literals.New(), locals.NewFrame())
	word := ir.Token{Kind: ir.VariableSubst, Text: "x"}
	require.NoError(t, CompileWord(e, ir.Token{Kind: ir.Word, Children: []ir.Token{word}}, noScripts{}))
	idx, ok := e.Locals.FindOrCreateLocal("x", false, 0)
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileWordEmpty(t *testing.T) {
	e := env.New(literals.New(), nil)
	require.NoError(t, CompileWord(e, ir.Token{Kind: ir.Word}, noScripts{}))
	require.Equal(t, 1, e.StackDepth())
	require.Equal(t, byte(instr.PUSH), e.Code()[0])
}
