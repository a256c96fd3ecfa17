package env

import (
	"fmt"

	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/instr"
)

// Finalize moves ownership of the accumulated buffers into an immutable
// ByteCode record (§3.7: "finalize → ByteCode, which moves ownership of
// pools into the immutable record"). It is an error to call Finalize while
// an exception range or command location is still open, or when the code
// does not end with DONE.
func (e *CompileEnv) Finalize(literalValues []any, releaseLiterals func(any)) (*bytecode.ByteCode, error) {
	if len(e.rangeStack) != 0 {
		return nil, fmt.Errorf("env: finalize called with %d exception range(s) still open", len(e.rangeStack))
	}
	if e.pendingCmd.open {
		return nil, fmt.Errorf("env: finalize called with a command location still open")
	}
	if len(e.code) == 0 || instr.Opcode(e.code[len(e.code)-1]) != instr.DONE {
		// Boundary behavior (§8): every finalized program ends with DONE.
		return nil, fmt.Errorf("env: finalize called on code that does not end with DONE")
	}

	ranges := make([]bytecode.ExceptionRange, len(e.ranges))
	for i, r := range e.ranges {
		ranges[i] = r.rec
	}

	locals := 0
	if e.Locals != nil {
		locals = e.Locals.Len()
	}

	return bytecode.New(e.code, literalValues, ranges, e.auxData, e.cmdLocs, e.maxStackDepth, e.maxCatchDepth, locals, releaseLiterals), nil
}
