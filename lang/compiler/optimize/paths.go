package optimize

import (
	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/instr"
)

// rewriteLoopExits resolves every BREAK/CONTINUE whose range is a Loop into
// a plain JUMP4 targeting the range's MainTarget/ContinueTarget (§4.7 pass
// 1). BREAK and CONTINUE are always 5 bytes (opcode + 4-byte rangeIdx, see
// instr.OperandWidth), the same width as JUMP4, so the rewrite is a pure
// in-place opcode/operand swap with no byte-width change. A Catch range (or
// an out-of-range index, which can't occur from a well-formed compile but
// is checked defensively) leaves the instruction untouched: it has no loop
// target to resolve to, and stays as a marker for the runtime to unwind
// through.
func rewriteLoopExits(code []byte, ranges []bytecode.ExceptionRange) {
	for off := 0; off < len(code); {
		op, arg, _, next := decodeAt(code, off)
		if op == instr.BREAK || op == instr.CONTINUE {
			if idx := int(arg); idx >= 0 && idx < len(ranges) && ranges[idx].Kind == bytecode.Loop {
				target := ranges[idx].MainTarget
				if op == instr.CONTINUE {
					target = ranges[idx].ContinueTarget
				}
				if target >= 0 {
					code[off] = byte(instr.JUMP4)
					encode4(int32(target-off), code[off+1:off+5])
				}
			}
		}
		off = next
	}
}

// seedPaths returns the static in-degree (predecessor count) of every
// instruction-start offset in code, by a DFS from the entry point plus
// every exception range's MainTarget/ContinueTarget (§4.7 pass 1: "seed
// paths for exception-range mainTarget and continueTarget if the range's
// body is reachable"). Catch ranges are seeded unconditionally here rather
// than only "after dead code motion": this optimizer never physically
// relocates dead code (see Optimize's doc comment), so there is no window
// in which seeding a catch target early would incorrectly keep reachable
// code from being identified as dead - seeding it up front is simply safer.
func seedPaths(code []byte, ranges []bytecode.ExceptionRange) []int {
	paths := make([]int, len(code))
	visited := make([]bool, len(code))

	var walk func(off int)
	walk = func(off int) {
		if off < 0 || off >= len(code) || visited[off] {
			return
		}
		visited[off] = true
		op, arg, _, next := decodeAt(code, off)
		switch op {
		case instr.DONE, instr.BREAK, instr.CONTINUE:
			return
		case instr.JUMP1, instr.JUMP4:
			target := off + int(arg)
			paths[target]++
			walk(target)
		case instr.JUMP_TRUE1, instr.JUMP_TRUE4, instr.JUMP_FALSE1, instr.JUMP_FALSE4:
			target := off + int(arg)
			paths[target]++
			paths[next]++
			walk(target)
			walk(next)
		default:
			paths[next]++
			walk(next)
		}
	}

	if len(code) > 0 {
		paths[0]++
		walk(0)
	}
	for _, r := range ranges {
		seed := func(pc int) {
			if pc >= 0 && pc < len(code) {
				paths[pc]++
				walk(pc)
			}
		}
		seed(r.MainTarget)
		if r.ContinueTarget >= 0 {
			seed(r.ContinueTarget)
		}
	}
	return paths
}
