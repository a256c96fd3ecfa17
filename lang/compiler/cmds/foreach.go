package cmds

import (
	"strings"

	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/locals"
	tokencompile "github.com/mna/tbcc/lang/compiler/token"
	"github.com/mna/tbcc/lang/ir"
)

// compileForeach implements `foreach varlist1 list1 ?varlist2 list2 ...?
// body` (§4.4.3): one ForeachInfo aux-data record drives FOREACH_START4 /
// FOREACH_STEP4 over a Frame of per-list temp slots. It requires a
// procedure context (e.Locals != nil), since the loop variables and the
// per-list iteration state both live in local slots; a top-level foreach
// defers to the runtime.
func compileForeach(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	if e.Locals == nil {
		return DeferToRuntime, nil
	}
	args := cmd.Words[1:]
	if len(args) < 3 || len(args)%2 == 0 {
		return DeferToRuntime, nil
	}
	body := args[len(args)-1]
	pairs := args[:len(args)-1]
	numLists := len(pairs) / 2

	info := &bytecode.ForeachInfo{NumLists: numLists, VarLists: make([]bytecode.ForeachVarList, numLists)}
	firstTemp := e.Locals.NewTemp(locals.Scalar)
	for i := 1; i < numLists; i++ {
		e.Locals.NewTemp(locals.Scalar)
	}

	for i := 0; i < numLists; i++ {
		varlistWord := pairs[2*i]
		listWord := pairs[2*i+1]

		names, ok := wordLiteralText(varlistWord)
		if !ok {
			return DeferToRuntime, nil
		}
		fields := strings.Fields(names)
		if len(fields) == 0 {
			return DeferToRuntime, nil
		}
		varIdxs := make([]int, len(fields))
		for j, name := range fields {
			idx, _ := e.Locals.FindOrCreateLocal(name, true, locals.Scalar)
			varIdxs[j] = idx
		}
		info.VarLists[i] = bytecode.ForeachVarList{NumVars: len(fields), VarIndexes: varIdxs}

		listTemp := firstTemp + i
		if err := tokencompile.CompileWord(e, listWord, c); err != nil {
			return DeferToRuntime, nil
		}
		e.Emit1or4(instr.STORE_SCALAR4, int32(listTemp))
		e.Emit(instr.POP)
	}
	info.FirstValueTemp = firstTemp
	info.LoopCounterTemp = e.Locals.NewTemp(locals.Temp)

	rangeIdx := e.BeginExceptRange(bytecode.Loop)
	info.RangeIndex = rangeIdx
	auxIdx := e.AddAuxData(info)
	e.Emit1or4(instr.FOREACH_START4, int32(auxIdx))

	top := e.Here()
	e.Emit1or4(instr.FOREACH_STEP4, int32(auxIdx))
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
