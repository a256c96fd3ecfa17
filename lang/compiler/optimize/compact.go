package optimize

import (
	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/instr"
)

// instructionStarts walks code once, returning the offsets of every
// surviving (non-NOP) instruction in order, and a map from EVERY old offset
// (including ones inside a run of NOPs left by the peephole pass, and the
// sentinel len(code)) to where execution would resume post-compaction. A
// stale reference into the middle of an elided region - a jump target, an
// exception-range boundary, a cmdMap boundary - lands on the next
// surviving instruction, which is exactly where control would reach
// anyway.
func instructionStarts(code []byte) ([]int, map[int]int) {
	var starts []int
	newOff := make(map[int]int, len(code)+1)
	cursor := 0
	for off := 0; off < len(code); {
		op, _, width, next := decodeAt(code, off)
		newOff[off] = cursor
		if op != instr.NOP {
			starts = append(starts, off)
			cursor += 1 + width
		}
		off = next
	}
	newOff[len(code)] = cursor
	return starts, newOff
}

// narrowJump picks the 1-byte jump form when disp fits a signed byte,
// marking shrunk (§4.7 pass 4 "shrink 4-byte jump operands to 1-byte").
func narrowJump(op instr.Opcode, disp int32, shrunk *bool) (instr.Opcode, int) {
	if disp >= -128 && disp <= 127 {
		if one, ok := instr.OneByteForm(op); ok {
			*shrunk = true
			return one, 1
		}
	}
	if four, ok := instr.FourByteForm(op); ok {
		return four, 4
	}
	return op, 4
}

func appendOperand(out []byte, arg int32, width int) []byte {
	switch width {
	case 1:
		return append(out, byte(int8(arg)))
	case 4:
		var b [4]byte
		encode4(arg, b[:])
		return append(out, b[:]...)
	default:
		return out
	}
}

// compact assigns every reachable, non-NOP instruction a new offset,
// rewrites jump/exception-range/cmdMap references through the resulting
// map, and shrinks 4-byte jump operands to 1-byte where the new
// displacement fits (§4.7 pass 4). It reports whether any jump was
// shrunk, so Optimize can re-run the peephole pass once more (relaxation):
// a shrink changes displacements, which can in turn enable further
// jump-to-DONE inlining or expose a new double-negation pair at a
// boundary that moved.
func compact(code []byte, ranges []bytecode.ExceptionRange, cmdMap []bytecode.CmdLocation) ([]byte, bool) {
	starts, newOff := instructionStarts(code)

	out := make([]byte, 0, len(code))
	shrunk := false
	for _, off := range starts {
		op, arg, _, next := decodeAt(code, off)
		switch op {
		case instr.JUMP1, instr.JUMP4, instr.JUMP_TRUE1, instr.JUMP_TRUE4, instr.JUMP_FALSE1, instr.JUMP_FALSE4:
			newTarget := newOff[off+int(arg)]
			disp := int32(newTarget - len(out))
			newOp, newWidth := narrowJump(op, disp, &shrunk)
			out = append(out, byte(newOp))
			out = appendOperand(out, disp, newWidth)
		default:
			out = append(out, code[off:next]...)
		}
	}

	remap := func(pc int) int {
		if pc < 0 {
			return pc
		}
		return newOff[pc]
	}
	for i := range ranges {
		oldEnd := ranges[i].CodeStart + ranges[i].CodeLen
		ranges[i].CodeStart = remap(ranges[i].CodeStart)
		ranges[i].CodeLen = remap(oldEnd) - ranges[i].CodeStart
		ranges[i].MainTarget = remap(ranges[i].MainTarget)
		if ranges[i].ContinueTarget >= 0 {
			ranges[i].ContinueTarget = remap(ranges[i].ContinueTarget)
		}
	}
	for i := range cmdMap {
		oldEnd := cmdMap[i].CodeStart + cmdMap[i].CodeLen
		cmdMap[i].CodeStart = remap(cmdMap[i].CodeStart)
		cmdMap[i].CodeLen = remap(oldEnd) - cmdMap[i].CodeStart
	}

	return out, shrunk
}
