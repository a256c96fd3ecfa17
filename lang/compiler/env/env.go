// Package env implements CompileEnv, the mutable builder every command and
// expression compiler emits into (§3.3, §4.2). It owns the growable
// instruction buffer, the literal pool, the exception-range stack, the
// cmdMap builder, and stack-depth bookkeeping, and exposes the emission
// primitives and rollback discipline the command compilers rely on.
//
// Grounded on the teacher's fcomp/pcomp split in lang/compiler/compiler.go
// (block-based CFG building) and DESIGN NOTES §9 ("arena + index", "backpatch
// chains", "rollback of partial emission").
package env

import (
	"fmt"

	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/literals"
	"github.com/mna/tbcc/lang/compiler/locals"
)

// LiteralPool is the interface CompileEnv consumes for literal
// registration/dedup (§6 "Literal table interface").
type LiteralPool interface {
	Register(value []byte, flags literals.Flags) uint32
	Release(idx uint32)
	Hide(idx uint32)
	Value(idx uint32) []byte
}

// rangeState tracks the compile-time-only bookkeeping for one open
// exception range: its index into the final ExceptionRanges table is fixed
// at BeginExceptRange time, but MainTarget/ContinueTarget are filled in by
// SetRangeTargets, which the loop/catch command compiler calls before
// EndExceptRange.
type rangeState struct {
	rec bytecode.ExceptionRange
}

// CompileEnv is the mutable builder accumulating one compiled unit (a
// top-level script or a procedure body).
type CompileEnv struct {
	Literals LiteralPool
	Locals   *locals.Frame // nil if not compiling a procedure body

	code     []byte
	auxData  []bytecode.AuxData
	ranges   []rangeState
	rangeStack []int // indices into ranges, innermost last (§9 "currentRange stack")

	cmdLocs    []bytecode.CmdLocation
	numCommands int
	pendingCmd  struct {
		open     bool
		srcStart int
		codeStart int
	}

	currStackDepth int
	maxStackDepth  int
	catchDepth     int
	maxCatchDepth  int

	atCmdStart bool

	literalIndices []uint32 // every literal index registered, in emission order, for rollback release
}

// New creates an empty CompileEnv. pool may be nil, in which case a private
// literals.Table is created (the "precompiled" / privately-owned mode of
// §3.7).
func New(pool LiteralPool, frame *locals.Frame) *CompileEnv {
	if pool == nil {
		pool = literals.New()
	}
	return &CompileEnv{Literals: pool, Locals: frame}
}

// CodeLen returns the current length of the instruction buffer in bytes,
// i.e. the offset the next emitted instruction will occupy.
func (e *CompileEnv) CodeLen() int { return len(e.code) }

// StackDepth returns the current compile-time operand stack depth.
func (e *CompileEnv) StackDepth() int { return e.currStackDepth }

// MaxStackDepth returns the deepest stack depth observed so far.
func (e *CompileEnv) MaxStackDepth() int { return e.maxStackDepth }

// CatchDepth returns the current open-catch nesting depth.
func (e *CompileEnv) CatchDepth() int { return e.catchDepth }

// SetMaxStackDepth raises the tracked maximum stack depth to n if higher
// than what's already recorded. The assembler (§4.6) computes the true
// maximum via its own control-flow walk, since the linear per-instruction
// tracking here assumes straight-line code and can't account for arbitrary
// jump graphs; it calls this to fold that result in.
func (e *CompileEnv) SetMaxStackDepth(n int) {
	if n > e.maxStackDepth {
		e.maxStackDepth = n
	}
}

// --- emission primitives (§4.2) ---

// Emit appends a no-operand instruction and updates the stack depth from
// the instruction table.
func (e *CompileEnv) Emit(op instr.Opcode) {
	if instr.HasOperand(op) {
		panic(fmt.Sprintf("env: Emit called for argument-bearing opcode %s", op))
	}
	e.code = append(e.code, byte(op))
	e.applyStackEffect(op, 0)
	e.atCmdStart = false
}

// Emit1 appends op with a 1-byte signed operand.
func (e *CompileEnv) Emit1(op instr.Opcode, arg int32) {
	e.code = append(e.code, byte(op), encodeByte(arg))
	e.applyStackEffect(op, arg)
	e.atCmdStart = false
}

// Emit4 appends op with a 4-byte signed operand.
func (e *CompileEnv) Emit4(op instr.Opcode, arg int32) {
	e.code = append(e.code, byte(op))
	e.code = append(e.code, encode4(arg)...)
	e.applyStackEffect(op, arg)
	e.atCmdStart = false
}

// Emit1or4 chooses the narrowest operand width from op's 4-byte form that
// legally represents arg, emitting the corresponding 1-byte opcode when it
// fits a signed byte.
func (e *CompileEnv) Emit1or4(fourByteOp instr.Opcode, arg int32) {
	if oneByteOp, ok := instr.OneByteForm(fourByteOp); ok && arg >= -128 && arg <= 127 {
		e.Emit1(oneByteOp, arg)
		return
	}
	e.Emit4(fourByteOp, arg)
}

func (e *CompileEnv) applyStackEffect(op instr.Opcode, arg int32) {
	eff, ok := instr.StackEffect(op)
	if !ok {
		eff = instr.ResolveStackEffect(op, arg)
	}
	e.AdjustStackDepth(eff)
}

// AdjustStackDepth unconditionally adjusts the tracked stack depth, for
// opcodes whose effect is known only to the calling compiler (variadic
// forms, expanded argument lists). Commands that legally leave the stack
// unbalanced must call this explicitly and document why (§4.2).
func (e *CompileEnv) AdjustStackDepth(delta int) {
	e.currStackDepth += delta
	if e.currStackDepth > e.maxStackDepth {
		e.maxStackDepth = e.currStackDepth
	}
}

func encodeByte(arg int32) byte {
	return byte(int8(arg))
}

func encode4(arg int32) []byte {
	u := uint32(arg)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}

// PushLiteral registers bytes (deduplicated unless flagged Unshared) and
// emits a PUSH of the resulting pool index.
func (e *CompileEnv) PushLiteral(value []byte, flags literals.Flags) {
	idx := e.RegisterLiteral(value, flags)
	e.Emit4(instr.PUSH, int32(idx))
}

// RegisterLiteral registers bytes in the literal pool and records the index
// for rollback bookkeeping, without emitting anything.
func (e *CompileEnv) RegisterLiteral(value []byte, flags literals.Flags) uint32 {
	idx := e.Literals.Register(value, flags)
	e.literalIndices = append(e.literalIndices, idx)
	return idx
}

// Fixup is an opaque handle to a forward jump's not-yet-known operand,
// returned by EmitForwardJump and consumed exactly once by
// FixupForwardJumpToHere (§4.2, §9 "backpatch chains").
type Fixup struct {
	wordOffset int // byte offset of the opcode byte
	operandAt  int // byte offset where the 4-byte operand begins
	patched    bool
}

// EmitForwardJump emits a 4-byte jump of the given kind with a placeholder
// operand and returns a handle to patch later.
func (e *CompileEnv) EmitForwardJump(op instr.Opcode) Fixup {
	if !instr.IsJump(op) {
		panic(fmt.Sprintf("env: EmitForwardJump called with non-jump opcode %s", op))
	}
	wordOffset := len(e.code)
	e.Emit4(op, 0)
	return Fixup{wordOffset: wordOffset, operandAt: wordOffset + 1}
}

// FixupForwardJumpToHere patches f's operand to (current offset - f's word
// offset), i.e. a relative displacement in bytes from the jump instruction
// to the current emission point. Must be called exactly once per Fixup.
func (e *CompileEnv) FixupForwardJumpToHere(f *Fixup) {
	if f.patched {
		panic("env: Fixup patched more than once")
	}
	disp := int32(len(e.code) - f.wordOffset)
	copy(e.code[f.operandAt:f.operandAt+4], encode4(disp))
	f.patched = true
}

// EmitBackwardJump emits an unconditional/conditional jump targeting a
// previously-recorded offset (e.g. a loop's condition/body label).
func (e *CompileEnv) EmitBackwardJump(op instr.Opcode, targetOffset int) {
	disp := int32(targetOffset - len(e.code))
	e.Emit4(op, disp)
}

// Here returns the current emission offset, suitable as a backward-jump
// target recorded by the caller.
func (e *CompileEnv) Here() int { return len(e.code) }

// Code returns the accumulated instruction bytes (read-only view; callers
// must not retain across further emission).
func (e *CompileEnv) Code() []byte { return e.code }

// AddAuxData appends an aux-data record (ForeachInfo, JumptableInfo, ...)
// and returns its table index, for opcodes like FOREACH_START4/JUMPTABLE
// that reference side data by operand index.
func (e *CompileEnv) AddAuxData(a bytecode.AuxData) int {
	idx := len(e.auxData)
	e.auxData = append(e.auxData, a)
	return idx
}

// AuxDataAt returns the aux-data record at idx, for in-place patching (e.g.
// once a ForeachInfo's temp slots are allocated).
func (e *CompileEnv) AuxDataAt(idx int) bytecode.AuxData { return e.auxData[idx] }
