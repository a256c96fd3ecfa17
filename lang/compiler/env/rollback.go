package env

// Snapshot captures the mutable emission state so a command compiler that
// aborts with DeferToRuntime can roll back cleanly (§4.4, §9). Literals
// registered after the snapshot are released via the literal-table
// protocol; code, command locations, exception ranges, aux data and stack
// depth are truncated back to their recorded lengths.
type Snapshot struct {
	codeLen        int
	numCommands    int
	cmdLocsLen     int
	rangesLen      int
	rangeStackLen  int
	auxDataLen     int
	currStackDepth int
	catchDepth     int
	literalsLen    int
	cmdOpen        bool
}

// Snap records the current state.
func (e *CompileEnv) Snap() Snapshot {
	return Snapshot{
		codeLen:        len(e.code),
		numCommands:    e.numCommands,
		cmdLocsLen:     len(e.cmdLocs),
		rangesLen:      len(e.ranges),
		rangeStackLen:  len(e.rangeStack),
		auxDataLen:     len(e.auxData),
		currStackDepth: e.currStackDepth,
		catchDepth:     e.catchDepth,
		literalsLen:    len(e.literalIndices),
		cmdOpen:        e.pendingCmd.open,
	}
}

// Rollback restores e to the state captured by s, releasing any literals
// registered since the snapshot through the literal-table protocol. Note
// maxStackDepth/maxCatchDepth are intentionally NOT rolled back: they are
// monotonic upper bounds over the whole compilation, unaffected by a single
// aborted command the way the teacher's own compiler never shrinks
// recorded maxima either.
func (e *CompileEnv) Rollback(s Snapshot) {
	for i := s.literalsLen; i < len(e.literalIndices); i++ {
		e.Literals.Release(e.literalIndices[i])
	}
	e.literalIndices = e.literalIndices[:s.literalsLen]
	e.code = e.code[:s.codeLen]
	e.numCommands = s.numCommands
	e.cmdLocs = e.cmdLocs[:s.cmdLocsLen]
	e.ranges = e.ranges[:s.rangesLen]
	e.rangeStack = e.rangeStack[:s.rangeStackLen]
	e.auxData = e.auxData[:s.auxDataLen]
	e.currStackDepth = s.currStackDepth
	e.catchDepth = s.catchDepth
	e.pendingCmd.open = s.cmdOpen
}

