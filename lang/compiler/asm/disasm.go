package asm

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/mna/tbcc/lang/compiler/instr"
)

// invJumpMnemonics and invWidenMnemonics invert jumpMnemonics/widenable, so
// Disassemble can recover the width-neutral mnemonic Assemble would accept
// back (§8 round-trip law), rather than always printing the raw
// suffixed opcode name.
var invJumpMnemonics = func() map[instr.Opcode]string {
	m := make(map[instr.Opcode]string, len(jumpMnemonics))
	for name, op := range jumpMnemonics {
		m[op] = name
	}
	return m
}()

var invWidenMnemonics = func() map[instr.Opcode]string {
	m := make(map[instr.Opcode]string, len(widenable))
	for name, op := range widenable {
		m[op] = name
	}
	return m
}()

// neutralName returns the width-neutral mnemonic for op's 4-byte sibling
// (or op itself, if it has none), and whether op belongs to the label-
// taking jump family.
func neutralName(op instr.Opcode) (name string, isJump bool, ok bool) {
	fourOp := op
	if f, has := instr.FourByteForm(op); has {
		fourOp = f
	}
	if name, isJumpName := invJumpMnemonics[fourOp]; isJumpName {
		return name, true, true
	}
	if name, isWiden := invWidenMnemonics[fourOp]; isWiden {
		return name, false, true
	}
	return "", false, false
}

// Disassemble renders a finalized instruction stream back into Lines,
// synthesizing label names for every jump target so the result re-Assembles
// to semantically equivalent bytecode (§8 round-trip law; operand widths
// may differ, since Assemble re-encodes every jump in its 4-byte form and
// picks the narrowest width only for the other width-neutral mnemonics).
func Disassemble(code []byte) ([]Line, error) {
	targets := map[int]bool{}
	for off := 0; off < len(code); {
		op := instr.Opcode(code[off])
		width := instr.OperandWidth(op)
		if instr.IsJump(op) {
			arg := int32(int8(code[off+1]))
			if width == 4 {
				arg = decode4(code[off+1 : off+5])
			}
			targets[off+int(arg)] = true
		}
		off += 1 + width
	}

	offsets := make([]int, 0, len(targets))
	for off := range targets {
		offsets = append(offsets, off)
	}
	slices.Sort(offsets)
	labelAt := make(map[int]string, len(offsets))
	for i, off := range offsets {
		labelAt[off] = fmt.Sprintf("L%d", i)
	}

	var lines []Line
	for off := 0; off < len(code); {
		if name, ok := labelAt[off]; ok {
			lines = append(lines, Line{Label: name})
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

		name, isJump, widened := neutralName(op)
		if !widened {
			name = op.String()
		}

		var args []string
		switch {
		case isJump:
			target, ok := labelAt[off+int(arg)]
			if !ok {
				return nil, fmt.Errorf("asm: disassemble: jump at offset %d targets unlabeled offset %d", off, off+int(arg))
			}
			args = []string{target}
		case width != 0:
			args = []string{strconv.Itoa(int(arg))}
		}

		lines = append(lines, Line{Op: name, Args: args})
		off += 1 + width
	}
	return lines, nil
}
