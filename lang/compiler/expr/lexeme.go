// Package expr implements the expression compiler (§4.5): an
// operator-precedence parser over the operator/literal/substitution token
// stream an `expr` word already arrives as (lang/ir), followed by an
// emission pass that walks the resulting OpNode tree into CompileEnv
// bytecode with short-circuit jumps for &&, ||, and ?:.
//
// Grounded on the teacher's lang/parser/expr.go parseSubExpr precedence
// climbing (binopPriority table, unopPriority) and lang/scanner's lexeme
// classification idiom for ParseLexeme.
package expr

import (
	"strconv"

	"github.com/mna/tbcc/lang/token"
)

// ParseLexeme classifies one already-segmented piece of operator text (an
// ir.Operator token's Text) into the expression compiler's own Token
// vocabulary. Tokenization of the surrounding script is an external
// collaborator's job (§1 non-goals); this only classifies the small
// fixed set of lexemes that can appear between substitutions in an
// expression.
func ParseLexeme(raw string) token.Token {
	switch raw {
	case "<":
		return token.LT
	case "<=":
		return token.LE
	case ">":
		return token.GT
	case ">=":
		return token.GE
	case "==":
		return token.EQL
	case "!=":
		return token.NEQ
	case "+":
		return token.PLUS
	case "-":
		return token.MINUS
	case "*":
		return token.STAR
	case "/":
		return token.SLASH
	case "//", "div":
		return token.SLASHSLASH
	case "%":
		return token.PERCENT
	case "**":
		return token.CIRCUMFLEX
	case "&":
		return token.AMPERSAND
	case "|":
		return token.PIPE
	case "^":
		return token.CARET
	case "~":
		return token.TILDE
	case "<<":
		return token.LTLT
	case ">>":
		return token.GTGT
	case "!":
		return token.NOT
	case "&&":
		return token.ANDAND
	case "||":
		return token.OROR
	case "?":
		return token.QUESTION
	case ":":
		return token.COLON
	case ",":
		return token.COMMA
	case "(":
		return token.LPAREN
	case ")":
		return token.RPAREN
	case "[":
		return token.LBRACK
	case "]":
		return token.RBRACK
	case "":
		return token.ILLEGAL
	}
	if isNumeric(raw) {
		if isFloatLiteral(raw) {
			return token.FLOAT
		}
		return token.INT
	}
	return token.IDENT
}

func isFloatLiteral(raw string) bool {
	if _, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

func isNumeric(raw string) bool {
	if raw == "" {
		return false
	}
	if _, err := strconv.ParseInt(raw, 0, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}
