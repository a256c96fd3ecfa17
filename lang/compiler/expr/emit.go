package expr

import (
	"fmt"

	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/compiler/instr"
	tokencompile "github.com/mna/tbcc/lang/compiler/token"
	"github.com/mna/tbcc/lang/ir"
	"github.com/mna/tbcc/lang/token"
)

// binaryOpcode maps a binary operator lexeme to its single emitted opcode
// (§4.5: "each binary operator maps to a single opcode ... per a table").
// SLASH and SLASHSLASH share DIV: the instruction table carries one divide
// opcode, not a separate integer-division form: the runtime value types
// decide integer vs. float division from the operands, as with MOD.
var binaryOpcode = map[token.Token]instr.Opcode{
	token.LT:         instr.LT,
	token.LE:         instr.LE,
	token.GT:         instr.GT,
	token.GE:         instr.GE,
	token.EQL:        instr.EQ,
	token.NEQ:        instr.NEQ,
	token.PLUS:       instr.ADD,
	token.MINUS:      instr.SUB,
	token.STAR:       instr.MULT,
	token.SLASH:      instr.DIV,
	token.SLASHSLASH: instr.DIV,
	token.PERCENT:    instr.MOD,
	token.CIRCUMFLEX: instr.EXPON,
	token.AMPERSAND:  instr.BITAND,
	token.PIPE:       instr.BITOR,
	token.CARET:      instr.BITXOR,
	token.LTLT:       instr.LSHIFT,
	token.GTGT:       instr.RSHIFT,
}

var unaryOpcode = map[token.Token]instr.Opcode{
	token.MINUS: instr.UMINUS,
	token.PLUS:  instr.UPLUS,
	token.NOT:   instr.LNOT,
	token.TILDE: instr.BITNOT,
}

// Compile lowers toks (an expr word's flattened operator/literal/
// substitution token stream) into bytecode against e. noConvert suppresses
// the trailing TRY_CONVERT_TO_NUMERIC (§4.5's "unless a scope flag inhibits
// it"), for callers that want the raw string result instead of a coerced
// numeric one.
func Compile(e *env.CompileEnv, toks []ir.Token, sc tokencompile.ScriptCompiler, noConvert bool) error {
	p, root, err := Parse(toks)
	if err != nil {
		return err
	}
	if err := p.emit(e, root, sc); err != nil {
		return err
	}
	if !noConvert {
		e.Emit(instr.TRY_CONVERT_TO_NUMERIC)
	}
	return nil
}

func (p *Parser) emit(e *env.CompileEnv, idx int, sc tokencompile.ScriptCompiler) error {
	n := p.nodes[idx]

	switch n.Leaf {
	case LeafEmpty:
		e.PushLiteral(nil, 0)
		return nil
	case LeafLiteral:
		e.PushLiteral([]byte(n.Literal), 0)
		return nil
	case LeafTokens:
		wrapped := ir.Token{Kind: ir.Word, Children: []ir.Token{n.Sub}}
		return tokencompile.CompileWord(e, wrapped, sc)
	}

	if n.FuncName != "" {
		return p.emitCall(e, n, sc)
	}

	switch n.Lexeme {
	case token.ANDAND:
		return p.emitShortCircuit(e, n, sc, instr.JUMP_FALSE4, "1", "0")
	case token.OROR:
		return p.emitShortCircuit(e, n, sc, instr.JUMP_TRUE4, "0", "1")
	case token.QUESTION:
		return p.emitTernary(e, n, sc)
	}

	if op, ok := unaryOpcode[n.Lexeme]; ok && n.Right == -1 {
		if err := p.emit(e, n.Left, sc); err != nil {
			return err
		}
		e.Emit(op)
		return nil
	}

	op, ok := binaryOpcode[n.Lexeme]
	if !ok {
		return fmt.Errorf("expr: no opcode for operator %s", n.Lexeme.GoString())
	}
	if err := p.emit(e, n.Left, sc); err != nil {
		return err
	}
	if err := p.emit(e, n.Right, sc); err != nil {
		return err
	}
	e.Emit(op)
	return nil
}

// emitShortCircuit implements both && and || (§4.5): they are mirror images
// of each other, differing only in which conditional jump short-circuits
// and which constant each side of the fork pushes.
//
//	&&: left, JUMP_FALSE jf, right, JUMP_FALSE jf, push "1", JUMP end, jf: push "0", end:
//	||: left, JUMP_TRUE jt,  right, JUMP_TRUE jt,  push "0", JUMP end, jt: push "1", end:
//
// The jf/jt label is reached only by a taken conditional jump, which has
// already popped its operand, so the actual depth there is the depth on
// entry; CompileEnv's linear stack counter still includes the constant the
// fall-through path pushed before JUMP end, so it is corrected by one slot
// right after the label to keep later tracking accurate.
func (p *Parser) emitShortCircuit(e *env.CompileEnv, n OpNode, sc tokencompile.ScriptCompiler, shortJump instr.Opcode, onFallThrough, onShortCircuit string) error {
	if err := p.emit(e, n.Left, sc); err != nil {
		return err
	}
	jf1 := e.EmitForwardJump(shortJump)
	if err := p.emit(e, n.Right, sc); err != nil {
		return err
	}
	jf2 := e.EmitForwardJump(shortJump)
	e.PushLiteral([]byte(onFallThrough), 0)
	end := e.EmitForwardJump(instr.JUMP4)

	e.FixupForwardJumpToHere(&jf1)
	e.FixupForwardJumpToHere(&jf2)
	e.AdjustStackDepth(-1)
	e.PushLiteral([]byte(onShortCircuit), 0)

	e.FixupForwardJumpToHere(&end)
	return nil
}

// emitTernary implements `cond ? then : else` (§4.5). Like the short-circuit
// forms, the jf label is reached only by the JUMP_FALSE that popped `cond`
// (the `then` branch jumps to end), while the linear tracker still counts
// the `then` value; the tracker is corrected by one slot at the label.
func (p *Parser) emitTernary(e *env.CompileEnv, n OpNode, sc tokencompile.ScriptCompiler) error {
	if err := p.emit(e, n.Cond, sc); err != nil {
		return err
	}
	jf := e.EmitForwardJump(instr.JUMP_FALSE4)
	if err := p.emit(e, n.Left, sc); err != nil {
		return err
	}
	end := e.EmitForwardJump(instr.JUMP4)

	e.FixupForwardJumpToHere(&jf)
	e.AdjustStackDepth(-1)
	if err := p.emit(e, n.Right, sc); err != nil {
		return err
	}

	e.FixupForwardJumpToHere(&end)
	return nil
}

// emitCall lowers a function call (§4.5: "emit namespace-qualified name
// literal first, then each argument, then INVOKE_STK argc").
func (p *Parser) emitCall(e *env.CompileEnv, n OpNode, sc tokencompile.ScriptCompiler) error {
	e.PushLiteral([]byte(n.FuncName), 0)
	for _, arg := range n.Args {
		if err := p.emit(e, arg, sc); err != nil {
			return err
		}
	}
	e.Emit1or4(instr.INVOKE_STK4, int32(1+len(n.Args)))
	return nil
}
