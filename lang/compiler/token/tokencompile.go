// Package tokencompile implements the token-lowering pass (§4.3): turning a
// word's flat sequence of Text/Backslash/CommandSubst/VariableSubst tokens
// (lang/ir) into push-and-concatenate bytecode against a CompileEnv.
//
// Named tokencompile, not token, to avoid stuttering against its own
// directory and colliding with lang/token (an unrelated package: source
// position bookkeeping, not parse tokens).
package tokencompile

import (
	"fmt"
	"strings"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/compiler/locals"
	"github.com/mna/tbcc/lang/ir"
)

// ScriptCompiler recursively compiles a nested script (a CommandSubst
// token's Children) into the same CompileEnv - supplied by the caller
// (lang/compiler/cmds) rather than imported directly, since cmds in turn
// depends on this package for word lowering.
type ScriptCompiler interface {
	CompileScript(e *env.CompileEnv, script []ir.Token) error
}

// CompileWord lowers one word (a Word, SimpleWord, or ExpandWord ir.Token)
// into CompileEnv emission, per §4.3's four steps. On return the word's
// value is the single top-of-stack result.
func CompileWord(e *env.CompileEnv, word ir.Token, sc ScriptCompiler) error {
	if word.IsSimple() {
		e.PushLiteral([]byte(word.Text), 0)
		return nil
	}

	toks := word.Children
	segments := 0
	var scratch []byte
	flush := func() {
		if len(scratch) > 0 {
			e.PushLiteral(scratch, 0)
			scratch = nil
			segments++
		}
	}

	for i := 0; i < len(toks); {
		t := toks[i]
		switch t.Kind {
		case ir.Text, ir.Backslash:
			scratch = append(scratch, t.Text...)
		case ir.CommandSubst:
			flush()
			if sc == nil {
				return fmt.Errorf("tokencompile: command substitution requires a ScriptCompiler")
			}
			if err := sc.CompileScript(e, t.Children); err != nil {
				return err
			}
			segments++
		case ir.VariableSubst:
			flush()
			if err := compileVariableSubst(e, t, sc); err != nil {
				return err
			}
			segments++
		default:
			return fmt.Errorf("tokencompile: word contains unexpected token kind %s", t.Kind)
		}
		i = ir.Next(toks, i)
	}
	flush()

	switch {
	case segments == 0:
		e.PushLiteral(nil, 0)
	case segments > 1:
		e.Emit4(instr.CONCAT, int32(segments))
	}
	return nil
}

// compileVariableSubst implements §4.3 step 3: local-vs-namespace slot
// resolution, with an optional array subscript.
func compileVariableSubst(e *env.CompileEnv, t ir.Token, sc ScriptCompiler) error {
	name := t.Text
	hasSubscript := len(t.Children) > 0

	loadSubscript := func() error {
		if !hasSubscript {
			return nil
		}
		return CompileWord(e, t.Children[0], sc)
	}

	if strings.Contains(name, "::") || e.Locals == nil {
		// Non-local (namespace-qualified) name, or no procedure context to
		// resolve a local slot against: address the variable by name on the
		// stack.
		e.PushLiteral([]byte(name), 0)
		if err := loadSubscript(); err != nil {
			return err
		}
		if hasSubscript {
			e.Emit(instr.LOAD_ARRAY_STK)
		} else {
			e.Emit(instr.LOAD_STK)
		}
		return nil
	}

	flags := locals.Scalar
	if hasSubscript {
		flags = locals.Array
	}
	idx, _ := e.Locals.FindOrCreateLocal(name, true, flags)
	if err := loadSubscript(); err != nil {
		return err
	}
	if hasSubscript {
		e.Emit1or4(instr.LOAD_ARRAY4, int32(idx))
	} else {
		e.Emit1or4(instr.LOAD_SCALAR4, int32(idx))
	}
	return nil
}
