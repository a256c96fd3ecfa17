// Package optimize implements the post-compile bytecode optimizer (§4.7):
// a fixed set of passes over a finalized bytecode.ByteCode that resolve
// compile-time-known loop exits, drop dead code, fold a handful of
// peephole patterns to a fixed point, then compact the buffer and shrink
// jump operands that now fit a narrower encoding.
//
// Grounded on the teacher's lang/machine bytecode walking style (decode one
// instruction at a time by opcode, dispatch on its operand shape) and on
// the block/backpatch vocabulary already used by lang/compiler/env and
// lang/compiler/asm.
package optimize

import "github.com/mna/tbcc/lang/compiler/instr"

// decodeAt reads the instruction at code[off], returning its opcode,
// operand value (0 if none), operand width in bytes, and the offset of the
// next instruction.
func decodeAt(code []byte, off int) (op instr.Opcode, arg int32, width, next int) {
	op = instr.Opcode(code[off])
	width = instr.OperandWidth(op)
	switch width {
	case 1:
		arg = int32(int8(code[off+1]))
	case 4:
		arg = decode4(code[off+1 : off+5])
	}
	return op, arg, width, off + 1 + width
}

func decode4(b []byte) int32 {
	u := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return int32(u)
}

func encode4(arg int32, dst []byte) {
	u := uint32(arg)
	dst[0], dst[1], dst[2], dst[3] = byte(u>>24), byte(u>>16), byte(u>>8), byte(u)
}

// fillNop overwrites code[off:off+n] with NOP, the universal "this word no
// longer does anything" marker consulted by the compact pass.
func fillNop(code []byte, off, n int) {
	for i := 0; i < n; i++ {
		code[off+i] = byte(instr.NOP)
	}
}
