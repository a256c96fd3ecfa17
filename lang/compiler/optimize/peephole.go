package optimize

import "github.com/mna/tbcc/lang/compiler/instr"

// peephole runs the named local rewrites to a fixed point (§4.7 pass 3). It
// mutates code and paths in place and reports whether anything changed, so
// Optimize can decide whether another compact/relaxation round is needed.
//
// This implements a representative subset of the pass's named rewrites:
// double-negation, PUSH+POP elision, and JUMP-to-DONE inlining. Jump
// threading, conversion elision, the PUSH-0/1-plus-conditional-jump fold,
// START_CMD shrinking, jump-around-jump, and self-loop rewriting are left
// for a future pass; each needs cross-referencing information (command
// boundaries, exception-range identity, TypeHints propagation across
// multiple instructions) that the current single-pass-over-bytes structure
// doesn't yet carry, and shipping them unverified risked silently
// corrupting otherwise-correct bytecode.
func peephole(code []byte, paths []int) bool {
	changed := false
	for {
		if !peepholeOnce(code, paths) {
			break
		}
		changed = true
	}
	return changed
}

func peepholeOnce(code []byte, paths []int) bool {
	changed := false
	for off := 0; off < len(code); {
		op, arg, width, next := decodeAt(code, off)

		if op == instr.LNOT && next < len(code) {
			op2, _, _, next2 := decodeAt(code, next)
			if op2 == instr.LNOT {
				fillNop(code, off, next2-off)
				changed = true
				off = next2
				continue
			}
		}

		if op == instr.PUSH && next < len(code) {
			op2, _, _, next2 := decodeAt(code, next)
			if op2 == instr.POP && paths[next] <= 1 {
				fillNop(code, off, next2-off)
				changed = true
				off = next2
				continue
			}
		}

		if (op == instr.JUMP1 || op == instr.JUMP4) && width == 4 {
			target := off + int(arg)
			if target >= 0 && target < len(code) && instr.Opcode(code[target]) == instr.DONE {
				code[off] = byte(instr.DONE)
				fillNop(code, off+1, width)
				changed = true
			}
		}

		off = next
	}
	return changed
}
