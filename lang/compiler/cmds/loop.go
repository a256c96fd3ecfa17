package cmds

import (
	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/expr"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/ir"
)

// compileWhile implements `while test body` (§4.4.2). Unlike if's body, the
// loop body's result is always discarded (POP) between iterations, so its
// net effect across one full loop-back is zero: the jf label here is
// reached by exactly one path (the taken branch out of JUMP_FALSE) and
// needs no AdjustStackDepth correction.
func compileWhile(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	if len(cmd.Words) != 3 {
		return DeferToRuntime, nil
	}
	test, body := cmd.Words[1], cmd.Words[2]

	rangeIdx := e.BeginExceptRange(bytecode.Loop)
	top := e.Here()

	if err := expr.Compile(e, exprTokens(test), c, true); err != nil {
		return DeferToRuntime, nil
	}
	jf := e.EmitForwardJump(instr.JUMP_FALSE4)

	if err := compileBodyWord(c, e, body); err != nil {
		if err == errDeferBody {
			return DeferToRuntime, nil
		}
		return Error, err
	}
	e.Emit(instr.POP)
	e.EmitBackwardJump(instr.JUMP4, top)

	e.FixupForwardJumpToHere(&jf)
	e.PushLiteral(nil, 0)

	e.SetRangeTargets(rangeIdx, e.Here(), top)
	e.EndExceptRange(rangeIdx)
	return Ok, nil
}

// compileFor implements `for start test next body` (§4.4.2): start and next
// are themselves one-or-more-command scripts, compiled and discarded like
// any statement; continue jumps to next, not to the re-test.
func compileFor(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	if len(cmd.Words) != 5 {
		return DeferToRuntime, nil
	}
	start, test, next, body := cmd.Words[1], cmd.Words[2], cmd.Words[3], cmd.Words[4]

	if err := compileBodyWord(c, e, start); err != nil {
		if err == errDeferBody {
			return DeferToRuntime, nil
		}
		return Error, err
	}
	e.Emit(instr.POP)

	rangeIdx := e.BeginExceptRange(bytecode.Loop)
	top := e.Here()

	if err := expr.Compile(e, exprTokens(test), c, true); err != nil {
		return DeferToRuntime, nil
	}
	jf := e.EmitForwardJump(instr.JUMP_FALSE4)

	if err := compileBodyWord(c, e, body); err != nil {
		if err == errDeferBody {
			return DeferToRuntime, nil
		}
		return Error, err
	}
	e.Emit(instr.POP)

	continueTarget := e.Here()
	if err := compileBodyWord(c, e, next); err != nil {
		if err == errDeferBody {
			return DeferToRuntime, nil
		}
		return Error, err
	}
	e.Emit(instr.POP)
	e.EmitBackwardJump(instr.JUMP4, top)

	e.FixupForwardJumpToHere(&jf)
	e.PushLiteral(nil, 0)

	e.SetRangeTargets(rangeIdx, e.Here(), continueTarget)
	e.EndExceptRange(rangeIdx)
	return Ok, nil
}

// compileBreak implements `break` (§4.4.7): unwinds to the nearest
// enclosing loop's main target. BREAK never falls through at runtime, but
// CompileEnv's linear tracker has no dead-code notion (that is the
// optimizer's job, §4.7), so a dummy empty result keeps its bookkeeping
// consistent with every other command's "+1 result" convention.
func compileBreak(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	if len(cmd.Words) != 1 {
		return DeferToRuntime, nil
	}
	idx, ok := e.EnclosingLoop()
	if !ok {
		return DeferToRuntime, nil
	}
	e.Emit4(instr.BREAK, int32(idx))
	e.PushLiteral(nil, 0)
	return Ok, nil
}

// compileContinue implements `continue` (§4.4.7), the loop-continue analog
// of compileBreak.
func compileContinue(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	if len(cmd.Words) != 1 {
		return DeferToRuntime, nil
	}
	idx, ok := e.EnclosingLoop()
	if !ok {
		return DeferToRuntime, nil
	}
	e.Emit4(instr.CONTINUE, int32(idx))
	e.PushLiteral(nil, 0)
	return Ok, nil
}
