package cmds

import (
	"strings"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/locals"
	tokencompile "github.com/mna/tbcc/lang/compiler/token"
	"github.com/mna/tbcc/lang/ir"
)

// compileLset implements `lset varName index ?index ...? newValue` (§4.4.6):
// LSET_LIST for the common single-index case, LSET_FLAT<n> for a multi-
// index path, both consuming the variable's current value plus the index
// and new-value operands and producing the updated list, stored back.
func compileLset(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	args := cmd.Words[1:]
	if len(args) < 3 {
		return DeferToRuntime, nil
	}
	varWord := args[0]
	indices := args[1 : len(args)-1]
	newValue := args[len(args)-1]

	name, ok := wordLiteralText(varWord)
	if !ok || strings.Contains(name, "::") || e.Locals == nil {
		return DeferToRuntime, nil
	}
	idx, _ := e.Locals.FindOrCreateLocal(name, true, locals.Scalar)

	e.Emit1or4(instr.LOAD_SCALAR4, int32(idx))
	for _, iw := range indices {
		if err := tokencompile.CompileWord(e, iw, c); err != nil {
			return DeferToRuntime, nil
		}
	}
	if err := tokencompile.CompileWord(e, newValue, c); err != nil {
		return DeferToRuntime, nil
	}

	if len(indices) == 1 {
		e.Emit(instr.LSET_LIST)
	} else {
		e.Emit4(instr.LSET_FLAT, int32(2+len(indices)))
	}
	e.Emit1or4(instr.STORE_SCALAR4, int32(idx))
	return Ok, nil
}
