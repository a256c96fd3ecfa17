package maincmd

import (
	"context"
	"io"

	"github.com/mna/mainer"

	"github.com/mna/tbcc/lang/compiler/asm"
)

// Dasm implements the "dasm" subcommand: disassemble a raw bytecode file
// back to the textual form asm.ParseText reads (§4.6 round trip, §8).
func (c *Cmd) Dasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := openInput(args)
	if err != nil {
		return printError(stdio, err)
	}
	defer f.Close()

	code, err := io.ReadAll(f)
	if err != nil {
		return printError(stdio, err)
	}

	lines, err := asm.Disassemble(code)
	if err != nil {
		return printError(stdio, err)
	}

	out, closeOut, err := openOutput(stdio, c.Out)
	if err != nil {
		return printError(stdio, err)
	}
	defer closeOut()

	return asm.FormatText(out, lines)
}
