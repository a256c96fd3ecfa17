// Package cmds implements the per-command compilers (§4.4): the dispatch
// contract between a resolved command name and either an inline bytecode
// sequence or a decision to defer to the generic runtime INVOKE_STK path.
//
// Grounded on the teacher's lang/compiler/compiler.go command-dispatch
// switch (one function per special form, snapshot/rollback around each) and
// on registry.Registry for the resolve-then-dispatch step (§6).
package cmds

import (
	"errors"
	"fmt"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/registry"
	tokencompile "github.com/mna/tbcc/lang/compiler/token"
	"github.com/mna/tbcc/lang/ir"
)

// Result is the three-way outcome of a command compiler (§4.4): Ok means
// bytecode was emitted and the command's result is the lone top-of-stack
// value; DeferToRuntime means the compiler recognized the command but not
// this particular call shape (wrong arg count, a non-simple word where one
// is required, an unresolvable variable reference, ...), and any partial
// emission must be rolled back; Error means the command is malformed beyond
// any runtime recovery, aborting compilation of the whole unit.
type Result uint8

const (
	Ok Result = iota
	DeferToRuntime
	Error
)

// builtinFunc is the shape every specialized command compiler implements.
// Builtins see the full word list (cmd.Words[0] is the command name itself)
// since arity varies per form.
type builtinFunc func(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error)

// errDeferBody signals that a body/script word could not be decomposed (it
// arrived as an opaque simple word with no nested-script Children - see
// compileBodyWord); every caller translates it to a plain DeferToRuntime
// result rather than propagating it as a real error.
var errDeferBody = errors.New("cmds: body word has no nested-script token structure")

// Compiler dispatches resolved command names to their builtinFunc, and
// falls back to a generic INVOKE_STK sequence for anything unresolved, or
// that itself returns DeferToRuntime. It implements tokencompile.ScriptCompiler
// so nested scripts (CommandSubst children, loop/conditional bodies) recurse
// back through the same dispatch.
type Compiler struct {
	Registry *registry.Registry
	builtins map[string]builtinFunc
}

// New creates a Compiler. If reg is nil, a fresh registry.Registry is
// created and populated with every builtin this package implements.
func New(reg *registry.Registry) *Compiler {
	if reg == nil {
		reg = registry.New()
	}
	c := &Compiler{Registry: reg, builtins: map[string]builtinFunc{}}
	c.registerBuiltins()
	return c
}

func (c *Compiler) define(name string, fn builtinFunc) {
	c.Registry.Define(name, name, 0)
	c.builtins[name] = fn
}

func (c *Compiler) registerBuiltins() {
	c.define("if", compileIf)
	c.define("while", compileWhile)
	c.define("for", compileFor)
	c.define("break", compileBreak)
	c.define("continue", compileContinue)
	c.define("foreach", compileForeach)
	c.define("switch", compileSwitch)
	c.define("catch", compileCatch)
	c.define("lset", compileLset)
	c.define("set", compileSet)
	c.define("incr", compileIncr)
}

// CompileCommand compiles one command, recording its cmdMap entry around
// whichever path (specialized or generic) actually emits.
func (c *Compiler) CompileCommand(e *env.CompileEnv, cmd *ir.Command) error {
	codeStart := e.Here()
	e.EnterCmdLocation(cmd.CmdStart, codeStart)

	if err := c.compileDispatch(e, cmd); err != nil {
		return err
	}

	e.SetCmdExtent(cmd.CmdSize, e.Here()-codeStart)
	return nil
}

// compileDispatch resolves cmd's name against the registry and either runs
// its builtin or falls back to a generic invocation, rolling back any
// partial emission a builtin left behind before returning DeferToRuntime
// (§4.4, §9 "rollback of partial emission").
func (c *Compiler) compileDispatch(e *env.CompileEnv, cmd *ir.Command) error {
	snap := e.Snap()

	name, isName := cmd.FirstWordText()
	if isName {
		if res, known := c.Registry.Resolve(name); known && res.Flags&registry.NoInline == 0 {
			if fn, hasFn := c.builtins[res.CompilerKey]; hasFn {
				result, err := fn(c, e, cmd)
				switch result {
				case Ok:
					return err
				case Error:
					if err == nil {
						err = fmt.Errorf("cmds: %s: malformed command", name)
					}
					return err
				case DeferToRuntime:
					e.Rollback(snap)
				}
			}
		}
	}

	return c.emitGenericInvoke(e, cmd)
}

// emitGenericInvoke pushes every word's value and emits a runtime
// invocation - the shared fallback idiom of §4.4.7, taken by every command
// with no CompilerKey, an unresolved name, or a builtin that deferred.
func (c *Compiler) emitGenericInvoke(e *env.CompileEnv, cmd *ir.Command) error {
	for _, w := range cmd.Words {
		if err := tokencompile.CompileWord(e, w, c); err != nil {
			return err
		}
	}
	e.Emit1or4(instr.INVOKE_STK4, int32(len(cmd.Words)))
	return nil
}

// CompileScript implements tokencompile.ScriptCompiler for nested scripts: a
// CommandSubst's Children, or a control-structure body's Children, is a flat
// token stream of Word/SimpleWord/ExpandWord tokens, one per command's
// words, with a zero-width Operator(";") token separating one command from
// the next - lang/ir's external-collaborator schema has no distinct Command
// kind, so this is the convention command boundaries are recovered under
// (see DESIGN.md). Zero separators is the common single-command case (most
// `[cmd arg]` substitutions).
func (c *Compiler) CompileScript(e *env.CompileEnv, script []ir.Token) error {
	return c.CompileCommands(e, splitScript(script))
}

// CompileCommands compiles a sequence of commands, leaving only the last
// command's result on the stack - every earlier one is popped, matching the
// semantics of a Tcl script body.
func (c *Compiler) CompileCommands(e *env.CompileEnv, cmds []ir.Command) error {
	if len(cmds) == 0 {
		e.PushLiteral(nil, 0)
		return nil
	}
	for i := range cmds {
		if i > 0 {
			e.Emit(instr.POP)
		}
		if err := c.CompileCommand(e, &cmds[i]); err != nil {
			return err
		}
	}
	return nil
}

// CompileProgram compiles a top-level script or procedure body to a
// terminal DONE (§3.2: "a ByteCode's instruction stream always ends in
// DONE").
func (c *Compiler) CompileProgram(e *env.CompileEnv, cmds []ir.Command) error {
	if err := c.CompileCommands(e, cmds); err != nil {
		return err
	}
	e.Emit(instr.DONE)
	return nil
}

// splitScript groups a flat script token stream into per-command word
// lists, per the ";" sentinel convention documented on CompileScript.
func splitScript(toks []ir.Token) []ir.Command {
	var cmds []ir.Command
	var cur []ir.Token
	start := 0
	i := 0
	for i < len(toks) {
		if toks[i].Kind == ir.Operator && toks[i].Text == ";" {
			if len(cur) > 0 {
				cmds = append(cmds, ir.Command{Words: cur, CmdStart: start})
			}
			cur = nil
			end := toks[i].Start + toks[i].Size
			i++
			start = end
			continue
		}
		next := ir.Next(toks, i)
		cur = append(cur, toks[i:next]...)
		i = next
	}
	if len(cur) > 0 {
		cmds = append(cmds, ir.Command{Words: cur, CmdStart: start})
	}
	return cmds
}
