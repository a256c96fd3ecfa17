package cmds

import (
	"strings"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/locals"
	tokencompile "github.com/mna/tbcc/lang/compiler/token"
	"github.com/mna/tbcc/lang/ir"
)

// compileSet implements `set varName ?value?` (§4.4.7): a plain-name, local
// scalar store (or load, with no value argument). Array elements and
// namespace-qualified / global names defer to the runtime, as does any use
// outside a procedure (no local frame to resolve against).
func compileSet(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	args := cmd.Words[1:]
	if len(args) < 1 || len(args) > 2 {
		return DeferToRuntime, nil
	}
	name, ok := wordLiteralText(args[0])
	if !ok || strings.Contains(name, "::") || e.Locals == nil {
		return DeferToRuntime, nil
	}
	idx, _ := e.Locals.FindOrCreateLocal(name, true, locals.Scalar)

	if len(args) == 2 {
		if err := tokencompile.CompileWord(e, args[1], c); err != nil {
			return DeferToRuntime, nil
		}
		e.Emit1or4(instr.STORE_SCALAR4, int32(idx))
		return Ok, nil
	}
	e.Emit1or4(instr.LOAD_SCALAR4, int32(idx))
	return Ok, nil
}

// compileIncr implements `incr varName ?increment?` (§4.4.7), always via
// the generic INCR_SCALAR1<local> form (push the increment value, then the
// instruction pops it, adds it to the slot, and leaves the new value on the
// stack - stack effect 0). The immediate-operand form (INCR_SCALAR1_IMM)
// is never emitted: this compiler does not use it, and the optimizer has
// no rewrite that folds a constant PUSH+INCR_SCALAR1 pair into it.
func compileIncr(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	args := cmd.Words[1:]
	if len(args) < 1 || len(args) > 2 {
		return DeferToRuntime, nil
	}
	name, ok := wordLiteralText(args[0])
	if !ok || strings.Contains(name, "::") || e.Locals == nil {
		return DeferToRuntime, nil
	}
	idx, _ := e.Locals.FindOrCreateLocal(name, true, locals.Scalar)

	if len(args) == 2 {
		if err := tokencompile.CompileWord(e, args[1], c); err != nil {
			return DeferToRuntime, nil
		}
	} else {
		e.PushLiteral([]byte("1"), 0)
	}
	e.Emit1(instr.INCR_SCALAR1, int32(idx))
	return Ok, nil
}
