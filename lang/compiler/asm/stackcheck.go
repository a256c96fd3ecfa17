package asm

import (
	"fmt"

	"github.com/mna/tbcc/lang/compiler/instr"
)

// checkStackBalance walks the control-flow graph implied by code (one
// finalized instruction stream, labels already resolved to relative
// displacements) from offset 0, tracking the operand-stack depth along
// every path (§4.6 "stack-balance analysis"). Every instruction is treated
// as its own one-instruction basic block; grouping contiguous
// single-predecessor instructions into larger blocks would find the same
// answer at the cost of an extra leader-finding pass, so this walks
// instruction-by-instruction instead.
//
// It returns the deepest depth observed on any path, the stack depth at the
// code's natural exit point(s) (a DONE instruction, or falling off the end
// of code with no terminal), and whether an exit point was reached at all
// (an asm fragment consisting only of BREAK/CONTINUE edges has none - their
// real target is resolved later by the optimizer, §4.7, so they contribute
// no exit here).
func checkStackBalance(code []byte) (maxDepth, exitDepth int, hasExit bool, err error) {
	visited := make(map[int]int, len(code))
	exitDepth = -1

	var walk func(off, depth int) error
	walk = func(off, depth int) error {
		if depth > maxDepth {
			maxDepth = depth
		}
		if prev, ok := visited[off]; ok {
			if prev != depth {
				return fmt.Errorf("asm: inconsistent stack depths on two execution paths at offset %d (%d vs %d)", off, prev, depth)
			}
			return nil
		}
		visited[off] = depth

		if off >= len(code) {
			return recordExit(&exitDepth, &hasExit, depth)
		}

		op := instr.Opcode(code[off])
		width := instr.OperandWidth(op)
		var arg int32
		switch width {
		case 1:
			arg = int32(int8(code[off+1]))
		case 4:
			arg = decode4(code[off+1 : off+5])
		}
		next := off + 1 + width

		eff, ok := instr.StackEffect(op)
		if !ok {
			eff = instr.ResolveStackEffect(op, arg)
		}
		after := depth + eff
		if after < 0 {
			return fmt.Errorf("asm: stack underflow at offset %d", off)
		}
		if after > maxDepth {
			maxDepth = after
		}

		switch op {
		case instr.DONE:
			return recordExit(&exitDepth, &hasExit, after)
		case instr.BREAK, instr.CONTINUE:
			return nil
		case instr.JUMP1, instr.JUMP4:
			return walk(off+int(arg), after)
		case instr.JUMP_TRUE1, instr.JUMP_TRUE4, instr.JUMP_FALSE1, instr.JUMP_FALSE4:
			if err := walk(off+int(arg), after); err != nil {
				return err
			}
			return walk(next, after)
		default:
			return walk(next, after)
		}
	}

	if err := walk(0, 0); err != nil {
		return 0, 0, false, err
	}
	return maxDepth, exitDepth, hasExit, nil
}

func recordExit(exitDepth *int, hasExit *bool, depth int) error {
	if *hasExit && *exitDepth != depth {
		return fmt.Errorf("asm: inconsistent exit stack depth: %d and %d", *exitDepth, depth)
	}
	*exitDepth, *hasExit = depth, true
	return nil
}

func decode4(b []byte) int32 {
	u := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return int32(u)
}
