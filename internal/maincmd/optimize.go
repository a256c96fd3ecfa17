package maincmd

import (
	"context"
	"io"

	"github.com/mna/mainer"

	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/optimize"
)

// Optimize implements the "optimize" subcommand: run the peephole
// optimizer (§4.7) over a raw bytecode file and write the compacted
// result. TBCC_MAX_RELAXATION_ROUNDS overrides the relaxation bound.
func (c *Cmd) Optimize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := openInput(args)
	if err != nil {
		return printError(stdio, err)
	}
	defer f.Close()

	code, err := io.ReadAll(f)
	if err != nil {
		return printError(stdio, err)
	}

	bc := bytecode.New(code, nil, nil, nil, nil, 0, 0, 0, nil)
	t := loadTuning()
	optimized, err := optimize.OptimizeRounds(bc, t.MaxRelaxationRounds)
	if err != nil {
		return printError(stdio, err)
	}

	out, closeOut, err := openOutput(stdio, c.Out)
	if err != nil {
		return printError(stdio, err)
	}
	defer closeOut()

	_, err = out.Write(optimized.Code)
	return err
}
