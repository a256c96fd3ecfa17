// Package bytecode defines the immutable ByteCode record produced by
// finalizing a CompileEnv (or an Asm call), its exception-range and
// auxiliary-data tables, and the cmdMap source-location wire format.
//
// Grounded on the teacher's lang/compiler/compiled.go (Funcode): Funcode's
// Code/pclinetab/MaxStack/refcounting-by-proxy shape is generalized here
// into ByteCode's Code/CmdMap/MaxStackDepth plus an explicit refcount.
package bytecode

import "sync/atomic"

// RangeKind distinguishes loop exception ranges (break/continue targets)
// from catch exception ranges (error-unwind target).
type RangeKind uint8

const (
	Loop RangeKind = iota
	Catch
)

// ExceptionRange is a (code-start, code-length, target) triple marking a
// catch or loop-control scope (§3.2).
type ExceptionRange struct {
	Kind           RangeKind
	CodeStart      int
	CodeLen        int
	MainTarget     int
	ContinueTarget int // -1 if not applicable (Catch ranges, or loops with no distinct continue point)
	NestingLevel   int
}

// Contains reports whether pc lies inside [CodeStart, CodeStart+CodeLen).
func (r ExceptionRange) Contains(pc int) bool {
	return pc >= r.CodeStart && pc < r.CodeStart+r.CodeLen
}

// AuxData is an opaque, per-opcode compile-time side record (ForeachInfo,
// JumptableInfo, ...), released through its registered Free hook when the
// owning ByteCode's refcount reaches zero.
type AuxData interface {
	// Dup returns a deep copy, used when a ByteCode is cloned before
	// mutation (e.g. by the optimizer, which rewrites offsets in place).
	Dup() AuxData
}

// CmdLocation is one entry of the command/source location map: the code
// range a single source command compiled to, and the source range it
// compiled from.
type CmdLocation struct {
	CodeStart int
	CodeLen   int
	SrcStart  int
	SrcLen    int
}

// ByteCode is the immutable, finalized result of compilation (§3.2). It is
// reference-counted: Retain/Release pairs track the interpreter handle and
// in-flight executions; the last Release frees aux data and literals.
type ByteCode struct {
	Code            []byte
	Literals        []any
	ExceptionRanges []ExceptionRange
	AuxDataTable    []AuxData
	CmdMap          []CmdLocation

	MaxStackDepth int
	MaxCatchDepth int
	LocalCount    int

	// InterpEpoch/NamespaceEpoch tie this record to the interpreter and
	// namespace generation that compiled it; a caller must recompile (not
	// execute) a ByteCode whose epochs are stale.
	InterpEpoch    int64
	NamespaceEpoch int64

	// Precompiled marks a ByteCode whose literals are privately owned (not
	// registered in a shared literal table) - see Release.
	Precompiled bool

	refcount    int32
	interpGone  bool
	releaseLits func(lit any)
}

// New constructs a finalized ByteCode. releaseLiterals is called once per
// literal when the refcount reaches zero, unless Precompiled/interpGone,
// per §3.7.
func New(code []byte, literals []any, ranges []ExceptionRange, aux []AuxData, cmdMap []CmdLocation, maxStack, maxCatch, locals int, releaseLiterals func(any)) *ByteCode {
	return &ByteCode{
		Code:          code,
		Literals:      literals,
		ExceptionRanges: ranges,
		AuxDataTable:  aux,
		CmdMap:        cmdMap,
		MaxStackDepth: maxStack,
		MaxCatchDepth: maxCatch,
		LocalCount:    locals,
		refcount:      1,
		releaseLits:   releaseLiterals,
	}
}

// Retain increments the reference count.
func (b *ByteCode) Retain() { atomic.AddInt32(&b.refcount, 1) }

// MarkInterpDeleted flags the owning interpreter as gone: on the final
// Release, literals are dropped without touching the (gone) shared literal
// table, per §3.7/§5.
func (b *ByteCode) MarkInterpDeleted() { b.interpGone = true }

// Release decrements the refcount, releasing literals through releaseLits
// on the transition to zero (unless Precompiled or the owning interpreter
// is already gone).
func (b *ByteCode) Release() {
	if atomic.AddInt32(&b.refcount, -1) != 0 {
		return
	}
	if b.Precompiled || b.interpGone {
		return
	}
	if b.releaseLits != nil {
		for _, lit := range b.Literals {
			b.releaseLits(lit)
		}
	}
}

// Clone performs a shallow copy of b with deep copies of AuxDataTable
// entries (via AuxData.Dup), suitable as the optimizer's mutation target so
// the original ByteCode remains valid if optimization is aborted.
func (b *ByteCode) Clone() *ByteCode {
	nb := *b
	nb.Code = append([]byte(nil), b.Code...)
	nb.ExceptionRanges = append([]ExceptionRange(nil), b.ExceptionRanges...)
	nb.CmdMap = append([]CmdLocation(nil), b.CmdMap...)
	nb.AuxDataTable = make([]AuxData, len(b.AuxDataTable))
	for i, a := range b.AuxDataTable {
		if a != nil {
			nb.AuxDataTable[i] = a.Dup()
		}
	}
	nb.refcount = 1
	return &nb
}
