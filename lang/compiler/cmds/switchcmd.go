package cmds

import (
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	tokencompile "github.com/mna/tbcc/lang/compiler/token"
	"github.com/mna/tbcc/lang/ir"
)

type switchArm struct {
	pattern       string
	body          ir.Token
	isDefault     bool
	isFallthrough bool // body is literally "-": reuse the next arm's body
}

// compileSwitch implements `switch ?-exact|-glob? ?--? string {pattern body
// ...}` (§4.4.4) as a sequential compare chain: one DUP+compare+JUMP_TRUE
// per pattern sharing an arm, a "default" arm always last and unconditional.
//
// This sequential form does not use the JUMPTABLE opcode's literal-pattern
// fast path (bytecode.JumptableInfo) - see DESIGN.md for why that path was
// left for a later pass rather than risked here.
func compileSwitch(c *Compiler, e *env.CompileEnv, cmd *ir.Command) (Result, error) {
	subject, arms, useGlob, ok := parseSwitchArgs(cmd.Words[1:])
	if !ok {
		return DeferToRuntime, nil
	}

	if err := tokencompile.CompileWord(e, subject, c); err != nil {
		return DeferToRuntime, nil
	}

	var endFixups []env.Fixup
	i := 0
	for i < len(arms) {
		patterns := []string{arms[i].pattern}
		for arms[i].isFallthrough && i+1 < len(arms) {
			i++
			patterns = append(patterns, arms[i].pattern)
		}
		body := arms[i].body
		isDefault := arms[i].isDefault
		isLastArm := i == len(arms)-1

		if isDefault {
			e.Emit(instr.POP)
			if err := compileBodyWord(c, e, body); err != nil {
				if err == errDeferBody {
					return DeferToRuntime, nil
				}
				return Error, err
			}
			i++
			continue
		}

		var matchJumps []env.Fixup
		for _, pat := range patterns {
			e.Emit(instr.DUP)
			e.PushLiteral([]byte(pat), 0)
			if useGlob {
				e.Emit1(instr.STR_MATCH, 0)
			} else {
				e.Emit(instr.STR_EQ)
			}
			matchJumps = append(matchJumps, e.EmitForwardJump(instr.JUMP_TRUE4))
		}
		noMatch := e.EmitForwardJump(instr.JUMP4)

		for j := range matchJumps {
			e.FixupForwardJumpToHere(&matchJumps[j])
		}
		e.Emit(instr.POP)
		if err := compileBodyWord(c, e, body); err != nil {
			if err == errDeferBody {
				return DeferToRuntime, nil
			}
			return Error, err
		}
		end := e.EmitForwardJump(instr.JUMP4)
		endFixups = append(endFixups, end)

		e.FixupForwardJumpToHere(&noMatch)
		if isLastArm {
			e.Emit(instr.POP)
			e.PushLiteral(nil, 0)
		}
		i++
	}

	for i := range endFixups {
		e.FixupForwardJumpToHere(&endFixups[i])
	}
	return Ok, nil
}

// parseSwitchArgs recognizes the literal `{pattern body ...}` single-word
// arm-list form as well as the flat `pattern1 body1 pattern2 body2 ...`
// form, plus a leading -exact/-glob/-- flag run.
func parseSwitchArgs(args []ir.Token) (subject ir.Token, arms []switchArm, useGlob bool, ok bool) {
	for len(args) > 0 {
		txt, isLit := wordLiteralText(args[0])
		if !isLit {
			break
		}
		switch txt {
		case "-exact":
			args = args[1:]
			continue
		case "-glob":
			useGlob = true
			args = args[1:]
			continue
		case "--":
			args = args[1:]
		}
		break
	}
	if len(args) < 2 {
		return ir.Token{}, nil, false, false
	}
	subject = args[0]
	rest := args[1:]

	var armWords []ir.Token
	if len(rest) == 1 {
		if rest[0].IsSimple() {
			return ir.Token{}, nil, false, false
		}
		armWords = rest[0].Children
	} else {
		armWords = rest
	}
	if len(armWords) == 0 || len(armWords)%2 != 0 {
		return ir.Token{}, nil, false, false
	}

	for i := 0; i < len(armWords); i += 2 {
		pat, isLit := wordLiteralText(armWords[i])
		if !isLit || (pat == "default" && i+2 != len(armWords)) {
			return ir.Token{}, nil, false, false
		}
		bodyTxt, bodyLit := wordLiteralText(armWords[i+1])
		arms = append(arms, switchArm{
			pattern:       pat,
			body:          armWords[i+1],
			isDefault:     pat == "default",
			isFallthrough: bodyLit && bodyTxt == "-",
		})
	}
	return subject, arms, useGlob, true
}
