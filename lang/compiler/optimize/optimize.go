package optimize

import "github.com/mna/tbcc/lang/compiler/bytecode"

// Optimize returns an optimized copy of bc (§4.7), leaving bc itself
// untouched. It clones bc (bytecode.ByteCode.Clone, deep-copying aux data),
// resolves compile-time-known loop exits, runs the peephole pass to a
// fixed point, then compacts the buffer - re-running the peephole pass
// once more whenever compaction shrinks a jump operand, since a narrower
// encoding can expose further peephole opportunities at the bytes that
// used to be the wide operand (relaxation, §4.7 pass 4).
//
// This implementation folds passes 1 and 2 together: rather than
// physically relocating unreachable code after DONE (which needs back-jump
// patching machinery redundant with what compact() already does), every
// exception range's MainTarget/ContinueTarget is seeded as reachable up
// front (seedPaths), every instruction left with zero incoming paths is
// NOP-filled right after seeding, so dead code is simply dropped by
// compact() like any other NOP-filled span, and a catch handler reachable only through an
// exception unwind is never mistaken for dead code. See seedPaths's doc
// comment.
func Optimize(bc *bytecode.ByteCode) (*bytecode.ByteCode, error) {
	return OptimizeRounds(bc, 8)
}

// OptimizeRounds is Optimize with an explicit relaxation-round bound,
// overridable from cmd/tbcc's TBCC_MAX_RELAXATION_ROUNDS (see
// internal/maincmd/config.go) the way ugo's OptimizerMaxCycle is exposed.
func OptimizeRounds(bc *bytecode.ByteCode, maxRelaxationRounds int) (*bytecode.ByteCode, error) {
	nb := bc.Clone()

	rewriteLoopExits(nb.Code, nb.ExceptionRanges)
	paths := seedPaths(nb.Code, nb.ExceptionRanges)
	for off := 0; off < len(nb.Code); {
		_, _, _, next := decodeAt(nb.Code, off)
		if paths[off] == 0 {
			fillNop(nb.Code, off, next-off)
		}
		off = next
	}
	peephole(nb.Code, paths)

	for i := 0; i < maxRelaxationRounds; i++ {
		compacted, shrunk := compact(nb.Code, nb.ExceptionRanges, nb.CmdMap)
		nb.Code = compacted
		if !shrunk {
			break
		}
		paths = seedPaths(nb.Code, nb.ExceptionRanges)
		peephole(nb.Code, paths)
	}

	return nb, nil
}
