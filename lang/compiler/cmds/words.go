package cmds

import (
	"github.com/mna/tbcc/lang/compiler/env"
	"github.com/mna/tbcc/lang/ir"
)

// wordLiteralText returns a word's literal text when it is a simple,
// substitution-free word (a bareword, brace-quoted text, or a one-segment
// Word wrapping a single Text child) - the shape a keyword ("then", "else",
// "default", a flag like "-exact") or a variable name must take for a
// command compiler to recognize it without deferring to the runtime.
func wordLiteralText(w ir.Token) (string, bool) {
	switch w.Kind {
	case ir.SimpleWord, ir.Text:
		return w.Text, true
	case ir.Word:
		if len(w.Children) == 1 && w.Children[0].Kind == ir.Text {
			return w.Children[0].Text, true
		}
	}
	return "", false
}

// exprTokens returns the token stream expr.Compile expects for a word that
// holds an expression (an `if`/`while` condition, or a `for` test): the
// word's own Children when it carries substitutions, or a single Text token
// wrapping its literal spelling when it is simple.
func exprTokens(w ir.Token) []ir.Token {
	if w.IsSimple() {
		return []ir.Token{{Kind: ir.Text, Text: w.Text}}
	}
	return w.Children
}

// compileBodyWord compiles a control-structure body word as a nested
// script. A body word is only inlineable when the external tokenizer
// decomposed it into a Word carrying the body's commands as Children (see
// CompileScript); a body that arrived as an opaque simple word (no
// distinguishable internal command structure) returns errDeferBody, and
// every call site turns that into a plain DeferToRuntime result.
func compileBodyWord(c *Compiler, e *env.CompileEnv, body ir.Token) error {
	if body.IsSimple() {
		return errDeferBody
	}
	return c.CompileScript(e, body.Children)
}
