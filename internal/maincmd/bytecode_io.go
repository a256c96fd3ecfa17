package maincmd

import (
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/tbcc/lang/compiler/literals"
)

// snapshotLiterals reads every registered value out of t, in pool-index
// order, as the []any Finalize wants - Table itself only exposes
// Len/Value, keeping the bulk-export decision (and its allocation) with
// the caller rather than the pool.
func snapshotLiterals(t *literals.Table) []any {
	vals := make([]any, t.Len())
	for i := range vals {
		vals[i] = t.Value(uint32(i))
	}
	return vals
}

// openInput opens args[0] read-only, the convention every subcommand here
// shares with the teacher's TokenizeFiles/ParseFiles (a bare path argument,
// no "-" for stdin support since none of these subcommands need piping).
func openInput(args []string) (*os.File, error) {
	return os.Open(args[0])
}

// openOutput returns stdio.Stdout unless --out names a file, matching the
// teacher's own habit of defaulting command output to the provided Stdio.
func openOutput(stdio mainer.Stdio, out string) (io.Writer, func() error, error) {
	if out == "" {
		return stdio.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
