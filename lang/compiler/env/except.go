package env

import "github.com/mna/tbcc/lang/compiler/bytecode"

// BeginExceptRange opens a new exception range of the given kind, pushing
// it onto the currentRange stack (§9: "a systems language implementation
// prefers an explicit stack over reusing a scratch link field"). The
// returned index identifies the range for EndExceptRange and for recording
// MainTarget/ContinueTarget.
func (e *CompileEnv) BeginExceptRange(kind bytecode.RangeKind) int {
	idx := len(e.ranges)
	e.ranges = append(e.ranges, rangeState{rec: bytecode.ExceptionRange{
		Kind:           kind,
		CodeStart:      e.Here(),
		ContinueTarget: -1,
		NestingLevel:   len(e.rangeStack),
	}})
	e.rangeStack = append(e.rangeStack, idx)
	if kind == bytecode.Catch {
		e.catchDepth++
		if e.catchDepth > e.maxCatchDepth {
			e.maxCatchDepth = e.catchDepth
		}
	}
	return idx
}

// EndExceptRange closes the range at idx (which must be the innermost open
// range) and records its final CodeLen. Callers must have already set
// MainTarget (and ContinueTarget, for Loop ranges) via SetRangeTargets
// before or after closing - both orders are legal since the slice is
// addressed by index.
func (e *CompileEnv) EndExceptRange(idx int) {
	if len(e.rangeStack) == 0 || e.rangeStack[len(e.rangeStack)-1] != idx {
		panic("env: EndExceptRange called out of order")
	}
	e.rangeStack = e.rangeStack[:len(e.rangeStack)-1]
	r := &e.ranges[idx].rec
	r.CodeLen = e.Here() - r.CodeStart
	if r.Kind == bytecode.Catch {
		e.catchDepth--
	}
}

// SetRangeTargets records the main (break/error) and continue targets for
// the range at idx. ContinueTarget is ignored for Catch ranges.
func (e *CompileEnv) SetRangeTargets(idx, mainTarget, continueTarget int) {
	e.ranges[idx].rec.MainTarget = mainTarget
	e.ranges[idx].rec.ContinueTarget = continueTarget
}

// CurrentRange returns the index of the innermost open exception range, and
// false if none is open.
func (e *CompileEnv) CurrentRange() (int, bool) {
	if len(e.rangeStack) == 0 {
		return 0, false
	}
	return e.rangeStack[len(e.rangeStack)-1], true
}

// EnclosingLoop walks outward from the innermost open range to find the
// nearest Loop range, for break/continue resolution within nested catches.
func (e *CompileEnv) EnclosingLoop() (int, bool) {
	for i := len(e.rangeStack) - 1; i >= 0; i-- {
		idx := e.rangeStack[i]
		if e.ranges[idx].rec.Kind == bytecode.Loop {
			return idx, true
		}
	}
	return 0, false
}

// RangeRecord returns a copy of the exception-range record at idx.
func (e *CompileEnv) RangeRecord(idx int) bytecode.ExceptionRange { return e.ranges[idx].rec }
