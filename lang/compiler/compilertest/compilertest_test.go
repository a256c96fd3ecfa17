package compilertest

import (
	"bytes"
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tbcc/lang/compiler/asm"
	"github.com/mna/tbcc/lang/compiler/bytecode"
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/literals"
	"github.com/mna/tbcc/lang/compiler/optimize"
)

var updateRoundtrip = flag.Bool("test.update-roundtrip-tests", false, "update roundtrip golden files")
var updateOptimize = flag.Bool("test.update-optimize-tests", false, "update optimize golden files")

// TestRoundtripFixtures assembles every testdata/roundtrip/*.s fixture and
// diffs its disassembly against the matching .want golden file.
func TestRoundtripFixtures(t *testing.T) {
	dir := "testdata/roundtrip"
	for _, fi := range SourceFiles(t, dir, ".s") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			f, err := os.Open(dir + "/" + fi.Name())
			require.NoError(t, err)
			defer f.Close()

			lines, err := asm.ParseText(f)
			require.NoError(t, err)

			e := env.New(literals.New(), nil)
			require.NoError(t, asm.Assemble(e, lines, nil))

			out, err := asm.Disassemble(e.Code())
			require.NoError(t, err)

			var b bytes.Buffer
			require.NoError(t, asm.FormatText(&b, out))
			DiffDisasm(t, fi, b.String(), dir, updateRoundtrip)
		})
	}
}

// TestOptimizeFixtures assembles every testdata/optimize/*.s fixture, runs
// the peephole optimizer, and diffs the optimized disassembly against the
// matching .want golden file.
func TestOptimizeFixtures(t *testing.T) {
	dir := "testdata/optimize"
	for _, fi := range SourceFiles(t, dir, ".s") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			f, err := os.Open(dir + "/" + fi.Name())
			require.NoError(t, err)
			defer f.Close()

			lines, err := asm.ParseText(f)
			require.NoError(t, err)

			e := env.New(literals.New(), nil)
			require.NoError(t, asm.Assemble(e, lines, nil))

			bc := bytecode.New(e.Code(), nil, nil, nil, nil, e.MaxStackDepth(), 0, 0, nil)
			optimized, err := optimize.Optimize(bc)
			require.NoError(t, err)

			out, err := asm.Disassemble(optimized.Code)
			require.NoError(t, err)

			var b bytes.Buffer
			require.NoError(t, asm.FormatText(&b, out))
			DiffDisasm(t, fi, b.String(), dir, updateOptimize)
		})
	}
}
