package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/tbcc/lang/compiler/asm"
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/literals"
)

// DisasmCheck implements the "disasm-check" subcommand (dispatched under
// that dashed name by buildCmds's alias): assemble a textual program,
// disassemble the result, reassemble the disassembly, and report whether
// the two code buffers are byte-identical - exercising §8's round-trip
// law directly instead of only asserting it in tests.
func (c *Cmd) DisasmCheck(ctx context.Context, stdio mainer.Stdio, args []string) error {
	code1, _, _, err := assembleFile(args[0])
	if err != nil {
		return printError(stdio, fmt.Errorf("first assembly: %w", err))
	}

	lines2, err := asm.Disassemble(code1)
	if err != nil {
		return printError(stdio, fmt.Errorf("disassemble: %w", err))
	}

	e2 := env.New(literals.New(), nil)
	if err := asm.Assemble(e2, lines2, nil); err != nil {
		return printError(stdio, fmt.Errorf("reassembly: %w", err))
	}
	code2 := e2.Code()

	if !bytes.Equal(code1, code2) {
		err := fmt.Errorf("round trip mismatch: %d bytes vs %d bytes", len(code1), len(code2))
		return printError(stdio, err)
	}
	fmt.Fprintln(stdio.Stdout, "OK: round trip produced identical bytecode")
	return nil
}
