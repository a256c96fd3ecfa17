// Package maincmd implements the tbcc CLI's subcommand dispatch (§2
// "cmd/tbcc"): one method per subcommand, wired together the way the
// teacher's own internal/maincmd does - a reflection-discovered dispatch
// table over methods with the mainer.Cmd signature, kept in its own
// package (rather than package main) so it stays unit-testable.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "tbcc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <path>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>
       %[1]s -h|--help
       %[1]s -v|--version

Assembler, disassembler and peephole optimizer for the bytecode described
by the tbcc instruction table.

The <command> can be one of:
       compile                   Compile a JSON-encoded list of
                                 lang/ir commands to bytecode and
                                 print its disassembly.
       asm                       Assemble a textual program (one
                                 instruction or 'label <name>' per line)
                                 and write the resulting bytecode to
                                 stdout.
       dasm                      Disassemble a raw bytecode file back to
                                 textual assembly.
       optimize                  Run the peephole optimizer over a raw
                                 bytecode file and write the result.
       disasm-check              Assemble, disassemble, reassemble a
                                 textual program and report whether the
                                 round trip is byte-identical (§8).

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -o --out <path>           Write to <path> instead of stdout
                                 (compile, asm, dasm, optimize).

More information on the tuning knobs read from the environment
(TBCC_MAX_RELAXATION_ROUNDS, TBCC_TRACE) is in internal/maincmd/config.go.
`, binName)
)

// Cmd is the mainer.Cmd implementation: flags are populated by
// mainer.Parser via struct tags, then Main dispatches c.args[0] to the
// matching method discovered by buildCmds.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool   `flag:"h,help"`
	Version bool   `flag:"v,version"`
	Out     string `flag:"o,out"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: a file path must be provided", cmdName)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds discovers every method on v shaped like a subcommand
// (ctx, mainer.Stdio, []string) error and indexes it by its lowercased
// name, exactly as the teacher's buildCmds does. "disasm-check" can't be
// produced this way (Go identifiers carry no dash), so it's added as an
// explicit alias onto the DisasmCheck method afterward.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	if fn, ok := cmds["disasmcheck"]; ok {
		cmds["disasm-check"] = fn
	}
	return cmds
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}
