package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/tbcc/lang/compiler/asm"
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/literals"
)

// Asm implements the "asm" subcommand: assemble a textual program (§4.6)
// and write the resulting instruction bytes to stdout or --out.
func (c *Cmd) Asm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	code, _, _, err := assembleFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	out, closeOut, err := openOutput(stdio, c.Out)
	if err != nil {
		return printError(stdio, err)
	}
	defer closeOut()

	if _, err := out.Write(code); err != nil {
		return printError(stdio, err)
	}
	return nil
}

// assembleFile assembles the textual program at path, returning the
// emitted code, its literal pool (for subcommands that need to print
// them), and the CompileEnv's final max stack depth.
func assembleFile(path string) ([]byte, *literals.Table, int, error) {
	f, err := openInput([]string{path})
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	lines, err := asm.ParseText(f)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("asm: parsing %s: %w", path, err)
	}

	lt := literals.New()
	e := env.New(lt, nil)
	if err := asm.Assemble(e, lines, nil); err != nil {
		return nil, nil, 0, err
	}
	return e.Code(), lt, e.MaxStackDepth(), nil
}
