package expr

import (
	"testing"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/literals"
	"github.com/mna/tbcc/lang/ir"
	"github.com/mna/tbcc/lang/token"
	"github.com/stretchr/testify/require"
)

type noScripts struct{}

func (noScripts) CompileScript(*env.CompileEnv, []ir.Token) error { return nil }

func op(text string) ir.Token  { return ir.Token{Kind: ir.Operator, Text: text} }
func txt(text string) ir.Token { return ir.Token{Kind: ir.Text, Text: text} }
func vars(name string) ir.Token {
	return ir.Token{Kind: ir.VariableSubst, Text: name}
}

func TestParseLexemeClassifiesOperators(t *testing.T) {
	require.Equal(t, token.ANDAND, ParseLexeme("&&"))
	require.Equal(t, token.CIRCUMFLEX, ParseLexeme("**"))
	require.Equal(t, token.CARET, ParseLexeme("^"))
	require.Equal(t, token.INT, ParseLexeme("42"))
	require.Equal(t, token.FLOAT, ParseLexeme("1.5"))
	require.Equal(t, token.IDENT, ParseLexeme("abs"))
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	e := env.New(literals.New(), nil)
	// 2 + 3 * 4 must bind as 2 + (3 * 4): ..., MULT, ADD, TRY_CONVERT
	toks := []ir.Token{txt("2"), op("+"), txt("3"), op("*"), txt("4")}
	require.NoError(t, Compile(e, toks, noScripts{}, false))
	code := e.Code()
	require.Equal(t, byte(instr.ADD), code[len(code)-2])
	require.Equal(t, byte(instr.TRY_CONVERT_TO_NUMERIC), code[len(code)-1])
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileShortCircuitAnd(t *testing.T) {
	e := env.New(literals.New(), nil)
	toks := []ir.Token{vars("a"), op("&&"), vars("b")}
	require.NoError(t, Compile(e, toks, noScripts{}, false))
	require.Equal(t, 1, e.StackDepth())
	require.Contains(t, string(e.Code()), string([]byte{byte(instr.JUMP_FALSE4)}))
}

func TestCompileTernary(t *testing.T) {
	e := env.New(literals.New(), nil)
	toks := []ir.Token{txt("1"), op("?"), txt("yes"), op(":"), txt("no")}
	require.NoError(t, Compile(e, toks, noScripts{}, true))
	require.Equal(t, 1, e.StackDepth())
}

func TestCompileFunctionCall(t *testing.T) {
	e := env.New(literals.New(), nil)
	toks := []ir.Token{txt("abs"), op("("), vars("x"), op(")")}
	require.NoError(t, Compile(e, toks, noScripts{}, false))
	require.Equal(t, 1, e.StackDepth())
	code := e.Code()
	require.Equal(t, byte(instr.TRY_CONVERT_TO_NUMERIC), code[len(code)-1])
}

func TestCompileEmptyExpression(t *testing.T) {
	e := env.New(literals.New(), nil)
	require.NoError(t, Compile(e, nil, noScripts{}, true))
	require.Equal(t, 1, e.StackDepth())
	require.Equal(t, byte(instr.PUSH), e.Code()[0])
}

func TestCompileUnaryMinus(t *testing.T) {
	e := env.New(literals.New(), nil)
	toks := []ir.Token{op("-"), txt("5")}
	require.NoError(t, Compile(e, toks, noScripts{}, true))
	code := e.Code()
	require.Equal(t, byte(instr.UMINUS), code[len(code)-1])
}
