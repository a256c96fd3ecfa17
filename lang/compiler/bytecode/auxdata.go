package bytecode

// ForeachInfo is the aux-data record for FOREACH_START4/FOREACH_STEP4 (§3.6):
// one VarList per value-list argument, each naming the loop-local variable
// slots it assigns on every iteration.
type ForeachInfo struct {
	NumLists      int
	FirstValueTemp int // local slot of the first value-list temp; the rest are contiguous
	LoopCounterTemp int
	RangeIndex    int // index into ExceptionRanges of the loop's exception range
	VarLists      []ForeachVarList
}

// ForeachVarList is the variable binding for one value-list argument of a
// foreach command.
type ForeachVarList struct {
	NumVars    int
	VarIndexes []int // local-variable slots, one per named loop variable
}

// Dup returns a deep copy of f.
func (f *ForeachInfo) Dup() AuxData {
	nf := *f
	nf.VarLists = make([]ForeachVarList, len(f.VarLists))
	for i, vl := range f.VarLists {
		nf.VarLists[i] = ForeachVarList{
			NumVars:    vl.NumVars,
			VarIndexes: append([]int(nil), vl.VarIndexes...),
		}
	}
	return &nf
}

// JumptableInfo is the aux-data record for JUMPTABLE (§3.6): maps a literal
// match string to the code offset (relative to the instruction's own
// position) of the corresponding switch arm.
type JumptableInfo struct {
	Hash map[string]int
}

// Dup returns a deep copy of j.
func (j *JumptableInfo) Dup() AuxData {
	nh := make(map[string]int, len(j.Hash))
	for k, v := range j.Hash {
		nh[k] = v
	}
	return &JumptableInfo{Hash: nh}
}
