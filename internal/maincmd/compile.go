package maincmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/tbcc/lang/compiler/asm"
	"github.com/mna/tbcc/lang/compiler/cmds"
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/literals"
	"github.com/mna/tbcc/lang/ir"
)

// Compile implements the "compile" subcommand: read a JSON-encoded
// []ir.Command file (there is no tokenizer in scope, see §1/§6, so JSON
// is the CLI's stand-in input format for an already-tokenized script) and
// compile it through lang/compiler/cmds's full command dispatch, printing
// the disassembled result.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := openInput(args)
	if err != nil {
		return printError(stdio, err)
	}
	defer f.Close()

	var script []ir.Command
	if err := json.NewDecoder(f).Decode(&script); err != nil {
		return printError(stdio, fmt.Errorf("compile: decoding %s: %w", args[0], err))
	}

	lt := literals.New()
	e := env.New(lt, nil)
	compiler := cmds.New(nil)
	if err := compiler.CompileProgram(e, script); err != nil {
		return printError(stdio, err)
	}

	lines, err := asm.Disassemble(e.Code())
	if err != nil {
		return printError(stdio, err)
	}

	out, closeOut, err := openOutput(stdio, c.Out)
	if err != nil {
		return printError(stdio, err)
	}
	defer closeOut()

	fmt.Fprintf(out, "; max stack depth %d, %d literal(s)\n", e.MaxStackDepth(), lt.Len())
	for i, v := range snapshotLiterals(lt) {
		fmt.Fprintf(out, "; literal %d: %q\n", i, v)
	}
	return asm.FormatText(out, lines)
}
