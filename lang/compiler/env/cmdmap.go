package env

import "github.com/mna/tbcc/lang/compiler/bytecode"

// EnterCmdLocation begins tracking a new source command: srcStart is its
// byte offset in the source, codeStart the code offset it starts compiling
// to (normally e.Here()). Pairs with SetCmdExtent.
func (e *CompileEnv) EnterCmdLocation(srcStart, codeStart int) {
	if e.pendingCmd.open {
		panic("env: EnterCmdLocation called while another command location is open")
	}
	e.pendingCmd.open = true
	e.pendingCmd.srcStart = srcStart
	e.pendingCmd.codeStart = codeStart
}

// SetCmdExtent closes the current command location, recording its source
// length and code length. The resulting cmdLocs entries maintain strict
// monotonicity on CodeStart (§3.3, tested property §8.4).
func (e *CompileEnv) SetCmdExtent(srcLen, codeLen int) {
	if !e.pendingCmd.open {
		panic("env: SetCmdExtent called with no open command location")
	}
	loc := bytecode.CmdLocation{
		CodeStart: e.pendingCmd.codeStart,
		CodeLen:   codeLen,
		SrcStart:  e.pendingCmd.srcStart,
		SrcLen:    srcLen,
	}
	if n := len(e.cmdLocs); n > 0 && loc.CodeStart <= e.cmdLocs[n-1].CodeStart {
		panic("env: cmdMap codeStart must be strictly monotone")
	}
	e.cmdLocs = append(e.cmdLocs, loc)
	e.numCommands++
	e.pendingCmd.open = false
	e.atCmdStart = true
}

// NumCommands returns the number of fully-recorded command locations.
func (e *CompileEnv) NumCommands() int { return e.numCommands }

// AtCmdStart reports whether the most recent emission was an
// INST_START_CMD-equivalent boundary, suppressing redundant markers.
func (e *CompileEnv) AtCmdStart() bool { return e.atCmdStart }
