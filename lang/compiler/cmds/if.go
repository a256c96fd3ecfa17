package cmds

import (
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/expr"
	"github.com/mna/tbcc/lang/compiler/instr"
	"github.com/mna/tbcc/lang/ir"
)

type ifClause struct {
	test    ir.Token
	hasTest bool
	body    ir.Token
}

// compileIf implements `if test ?then? body ?elseif test ?then? body...?
// ?else? ?body?` (§4.4.1): one JUMP_FALSE per test, each taken branch
// landing on the next clause (or on a final implicit empty-string result
// when no else is present).
//
// Every taken-jump label here is positioned after the preceding clause's
// body, which (unlike a loop body) is deliberately NOT popped - it is the
// if command's own result on that branch. CompileEnv's linear stack
// tracker walks straight through that body's net +1, so it reads one slot
// high at each such label; AdjustStackDepth(-1) corrects it, the same
// pattern used for the short-circuit/ternary fork points in package expr.
func compileIf(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	clauses, ok := parseIfClauses(cmd.Words[1:])
	if !ok {
		return DeferToRuntime, nil
	}

	var endFixups []env.Fixup
	for i, cl := range clauses {
		if !cl.hasTest {
			if err := compileBodyWord(c, e, cl.body); err != nil {
				if err == errDeferBody {
					return DeferToRuntime, nil
				}
				return Error, err
			}
			break
		}

		if err := expr.Compile(e, exprTokens(cl.test), c, true); err != nil {
			return DeferToRuntime, nil
		}
		jf := e.EmitForwardJump(instr.JUMP_FALSE4)

		if err := compileBodyWord(c, e, cl.body); err != nil {
			if err == errDeferBody {
				return DeferToRuntime, nil
			}
			return Error, err
		}

		end := e.EmitForwardJump(instr.JUMP4)
		endFixups = append(endFixups, end)

		e.FixupForwardJumpToHere(&jf)
		e.AdjustStackDepth(-1)

		if i == len(clauses)-1 {
			// no else clause: the chain of failed tests falls through to here
			// with no clause body compiled - push the if command's default
			// empty-string result.
			e.PushLiteral(nil, 0)
		}
	}

	for i := range endFixups {
		e.FixupForwardJumpToHere(&endFixups[i])
	}
	return Ok, nil
}

// parseIfClauses walks `test ?then? body (elseif test ?then? body)* (else
// body)?` out of the command's trailing words, using literal keyword
// matching for "then"/"elseif"/"else" (§4.4.1). Anything else - a missing
// body, an unrecognized separator, trailing words after `else body` -
// returns ok=false so the caller defers to the runtime.
func parseIfClauses(words []ir.Token) ([]ifClause, bool) {
	var clauses []ifClause
	i := 0
	for {
		if i >= len(words) {
			return nil, false
		}
		test := words[i]
		i++
		if i < len(words) {
			if txt, ok := wordLiteralText(words[i]); ok && txt == "then" {
				i++
			}
		}
		if i >= len(words) {
			return nil, false
		}
		body := words[i]
		i++
		clauses = append(clauses, ifClause{test: test, hasTest: true, body: body})

		if i >= len(words) {
			return clauses, true
		}
		kw, ok := wordLiteralText(words[i])
		if !ok {
			return nil, false
		}
		switch kw {
		case "elseif":
			i++
		case "else":
			i++
			if i >= len(words) {
				return nil, false
			}
			elseBody := words[i]
			i++
			if i != len(words) {
				return nil, false
			}
			clauses = append(clauses, ifClause{hasTest: false, body: elseBody})
			return clauses, true
		default:
			return nil, false
		}
	}
}
