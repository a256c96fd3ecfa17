package cmds

import (
	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/locals"
	"github.com/mna/tbcc/lang/ir"
)

// compileCatch implements `catch script ?resultVar?` (§4.4.5). The range's
// MainTarget is the code position right after the protected script's own
// result is popped: on an exception inside the range, control is
// transferred there with the interpreter's ambient result/return-code
// already set, so the normal-completion and exception paths converge
// before END_CATCH - neither one needs a distinct handler block. An
// optionsVar third argument is not supported inline; defers to the runtime.
func compileCatch(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	args := cmd.Words[1:]
	if len(args) < 1 || len(args) > 2 {
		return DeferToRuntime, nil
	}
	scriptWord := args[0]

	var resultVar string
	hasResultVar := false
	if len(args) == 2 {
		name, ok := wordLiteralText(args[1])
		if !ok {
			return DeferToRuntime, nil
		}
		resultVar = name
		hasResultVar = true
	}

	rangeIdx := e.BeginExceptRange(bytecode.Catch)
	e.Emit4(instr.BEGIN_CATCH4, int32(rangeIdx))

	if err := compileBodyWord(c, e, scriptWord); err != nil {
		if err == errDeferBody {
			return DeferToRuntime, nil
		}
		return Error, err
	}
	e.Emit(instr.POP)

	e.SetRangeTargets(rangeIdx, e.Here(), -1)
	e.EndExceptRange(rangeIdx)

	e.Emit(instr.END_CATCH)
	e.Emit(instr.PUSH_RETURN_CODE)

	if hasResultVar {
		e.Emit(instr.PUSH_RESULT)
		if e.Locals == nil {
			return DeferToRuntime, nil
		}
		idx, _ := e.Locals.FindOrCreateLocal(resultVar, true, locals.Scalar)
		e.Emit1or4(instr.STORE_SCALAR4, int32(idx))
		e.Emit(instr.POP)
	}
	return Ok, nil
}
