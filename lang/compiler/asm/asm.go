// Package asm implements the textual bytecode assembler (§4.6): a
// lower-level alternative entry point to the instruction stream than the
// command/expression compilers, for hand-written or machine-generated
// bytecode and for the disassembler's round-trip law (§8).
//
// Grounded on the teacher's lang/compiler/compiler.go block-based emission
// (forward/backward jump fixups, basic-block bookkeeping) generalized to a
// free-standing instruction list rather than an AST walk, and on
// lang/machine/map.go for the dolthub/swiss-backed hash table the labels
// symbol table below is built from (pending forward jumps sit in a plain
// map). There is no basic-block table: the stack-balance check walks the
// emitted bytes directly and never needs a label-to-block lookup.
package asm

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	tokencompile "github.com/mna/tbcc/lang/compiler/token"
	"github.com/mna/tbcc/lang/ir"
)

// Line is one parsed unit of assembly input: either a label definition
// (Label non-empty) or an instruction (Op non-empty, Args its operand
// tokens). This package consumes already-split Lines rather than parsing
// Tcl list syntax itself: the input is the list value described in §4.6,
// split into elements by the caller (the inline-script source for `eval`
// arrives pre-tokenized as ir.Token, for the same reason).
type Line struct {
	Label string
	Op    string
	Args  []string
	Eval  []ir.Token // populated only when Op == "eval"
}

// jumpMnemonics names the three label-taking pseudo-ops. Unlike every other
// instruction, these don't correspond 1:1 to a single Opcode: the assembler
// always starts with the 4-byte form (EmitForwardJump/EmitBackwardJump only
// deal in 4-byte jumps) and leaves narrowing to the optimizer's compact
// pass (§4.7), since at assembly time a forward label's final displacement
// isn't known yet and a backward one may still be widened by code emitted
// between the jump and its optimizer pass.
var jumpMnemonics = map[string]instr.Opcode{
	"jump":       instr.JUMP4,
	"jump_true":  instr.JUMP_TRUE4,
	"jump_false": instr.JUMP_FALSE4,
}

// widenable maps a width-neutral mnemonic (no "1"/"4" suffix) to its 4-byte
// opcode, for the non-jump operand families that also come in 1-byte and
// 4-byte forms. Emit1or4 picks the narrowest encoding immediately, since
// unlike jump targets their operand value is already known at assembly
// time.
var widenable = map[string]instr.Opcode{
	"load_scalar":  instr.LOAD_SCALAR4,
	"store_scalar": instr.STORE_SCALAR4,
	"load_array":   instr.LOAD_ARRAY4,
	"store_array":  instr.STORE_ARRAY4,
	"invoke_stk":   instr.INVOKE_STK4,
}

// assembler holds the per-Assemble-call symbol tables: labels maps a
// defined label name to its resolved code offset, and pendingJumps tracks
// forward references awaiting definition (§4.6 "two hash tables").
type assembler struct {
	labels       *swiss.Map[string, int]
	pendingJumps map[string][]env.Fixup
}

func newAssembler() *assembler {
	return &assembler{
		labels:       swiss.NewMap[string, int](8),
		pendingJumps: make(map[string][]env.Fixup),
	}
}

// Assemble lowers lines into e's instruction stream, resolves every label
// reference, and runs stack-balance analysis (§4.6) over the resulting
// control-flow graph, folding its result into e's tracked max stack depth.
// sc compiles `eval` directives; nil is only valid if lines contains none.
func Assemble(e *env.CompileEnv, lines []Line, sc tokencompile.ScriptCompiler) error {
	a := newAssembler()
	start := e.Here()

	for _, ln := range lines {
		if ln.Label != "" {
			if _, dup := a.labels.Get(ln.Label); dup {
				return fmt.Errorf("asm: label %q defined more than once", ln.Label)
			}
			a.labels.Put(ln.Label, e.Here())
			if fixups := a.pendingJumps[ln.Label]; len(fixups) > 0 {
				for i := range fixups {
					e.FixupForwardJumpToHere(&fixups[i])
				}
				delete(a.pendingJumps, ln.Label)
			}
			continue
		}
		if err := a.assembleOne(e, ln, sc); err != nil {
			return err
		}
	}

	if len(a.pendingJumps) > 0 {
		names := make([]string, 0, len(a.pendingJumps))
		for name := range a.pendingJumps {
			names = append(names, name)
		}
		return fmt.Errorf("asm: undefined label(s): %v", names)
	}

	maxDepth, exitDepth, hasExit, err := checkStackBalance(e.Code()[start:])
	if err != nil {
		return err
	}
	if hasExit {
		switch {
		case exitDepth == 0:
			e.PushLiteral(nil, 0)
			if exitDepth+1 > maxDepth {
				maxDepth = exitDepth + 1
			}
		case exitDepth > 1:
			return fmt.Errorf("asm: unbalanced stack on exit: depth %d, want 1", exitDepth)
		}
	}
	e.SetMaxStackDepth(maxDepth)
	return nil
}

func (a *assembler) assembleOne(e *env.CompileEnv, ln Line, sc tokencompile.ScriptCompiler) error {
	if ln.Op == "eval" {
		if sc == nil {
			return fmt.Errorf("asm: eval directive with no script compiler configured")
		}
		return sc.CompileScript(e, ln.Eval)
	}

	if jumpOp, ok := jumpMnemonics[ln.Op]; ok {
		if len(ln.Args) != 1 {
			return fmt.Errorf("asm: %s: expected exactly one label operand", ln.Op)
		}
		label := ln.Args[0]
		if target, defined := a.labels.Get(label); defined {
			e.EmitBackwardJump(jumpOp, target)
		} else {
			fx := e.EmitForwardJump(jumpOp)
			a.pendingJumps[label] = append(a.pendingJumps[label], fx)
		}
		return nil
	}

	if op, ok := widenable[ln.Op]; ok {
		arg, err := singleIntArg(ln)
		if err != nil {
			return err
		}
		e.Emit1or4(op, arg)
		return nil
	}

	op, ok := instr.Lookup(ln.Op)
	if !ok {
		return fmt.Errorf("asm: unknown instruction %q", ln.Op)
	}
	if !instr.HasOperand(op) {
		if len(ln.Args) != 0 {
			return fmt.Errorf("asm: %s: takes no operand", ln.Op)
		}
		e.Emit(op)
		return nil
	}

	arg, err := singleIntArg(ln)
	if err != nil {
		return err
	}
	if instr.OperandWidth(op) == 1 {
		e.Emit1(op, arg)
	} else {
		e.Emit4(op, arg)
	}
	return nil
}

func singleIntArg(ln Line) (int32, error) {
	if len(ln.Args) != 1 {
		return 0, fmt.Errorf("asm: %s: expected exactly one operand, got %d", ln.Op, len(ln.Args))
	}
	var v int32
	if _, err := fmt.Sscanf(ln.Args[0], "%d", &v); err != nil {
		return 0, fmt.Errorf("asm: %s: invalid operand %q: %w", ln.Op, ln.Args[0], err)
	}
	return v, nil
}
