package expr

import (
	"fmt"

	"github.com/mna/tbcc/lang/ir"
	"github.com/mna/tbcc/lang/token"
)

// LeafKind distinguishes the three ways an expression leaf can be produced
// (§4.5's OT_LITERAL/OT_TOKENS/OT_EMPTY negated sentinels, collapsed into a
// tagged field of the node itself rather than a separate negated-index
// space - the arena is still index-based, just one arena instead of two).
type LeafKind uint8

const (
	leafInterior LeafKind = iota // has Left/Right, or FuncName+Args
	LeafLiteral                  // a compile-time constant (number or bareword)
	LeafTokens                   // a VariableSubst or CommandSubst substitution
	LeafEmpty                    // an explicitly empty subexpression
)

// OpNode is one node of the operator-precedence tree. Cross-references
// (Left, Right, Args) are indices into the owning Parser's nodes slice,
// never pointers, per §9's "arena + index" note.
type OpNode struct {
	Leaf LeafKind

	Lexeme token.Token
	Prec   int

	Left, Right int // -1 if absent
	Cond        int // condition node index, valid only when Lexeme == token.QUESTION

	Literal  string   // valid when Leaf == LeafLiteral
	Sub      ir.Token // valid when Leaf == LeafTokens
	FuncName string   // non-empty for a function-call node
	Args     []int    // argument node indices, valid when FuncName != ""
}

// item is one flattened lexeme of the expression's input token stream:
// either a classified operator/literal spelling, or a substitution token
// carried through unparsed (§4.5: "token subtrees remain in a parallel
// Parse structure").
type item struct {
	tok token.Token
	lit string
	sub *ir.Token
}

// Parser holds the OpNode arena and the flattened lexeme stream being
// climbed. The trailing TRY_CONVERT_TO_NUMERIC is controlled by Compile's
// noConvert parameter, not by Parser state.
type Parser struct {
	items []item
	pos   int
	nodes []OpNode
}

// Parse builds the operator-precedence tree for toks (an expr word's
// already-segmented Text/Operator/VariableSubst/CommandSubst children, in
// lang/ir's schema) and returns the Parser owning the resulting arena plus
// the root node index.
func Parse(toks []ir.Token) (*Parser, int, error) {
	p := &Parser{items: flatten(toks)}
	if len(p.items) == 0 {
		root := p.newNode(OpNode{Leaf: LeafEmpty, Left: -1, Right: -1})
		return p, root, nil
	}
	root, err := p.parseExpr(0)
	if err != nil {
		return nil, 0, err
	}
	if p.pos != len(p.items) {
		return nil, 0, fmt.Errorf("expr: unexpected trailing lexeme %q", p.items[p.pos].lit)
	}
	return p, root, nil
}

func flatten(toks []ir.Token) []item {
	items := make([]item, 0, len(toks))
	for i := range toks {
		t := &toks[i]
		switch t.Kind {
		case ir.Operator:
			items = append(items, item{tok: ParseLexeme(t.Text), lit: t.Text})
		case ir.Text, ir.SimpleWord, ir.Backslash:
			items = append(items, item{tok: ParseLexeme(t.Text), lit: t.Text})
		case ir.VariableSubst, ir.CommandSubst:
			items = append(items, item{tok: token.IDENT, sub: t})
		case ir.SubExpr:
			items = append(items, flatten(t.Children)...)
		}
	}
	return items
}

func (p *Parser) newNode(n OpNode) int {
	p.nodes = append(p.nodes, n)
	return len(p.nodes) - 1
}

// Node returns the node at idx.
func (p *Parser) Node(idx int) OpNode { return p.nodes[idx] }

func (p *Parser) peek() item {
	if p.pos >= len(p.items) {
		return item{tok: token.EOF}
	}
	return p.items[p.pos]
}

func (p *Parser) next() item {
	it := p.peek()
	p.pos++
	return it
}

// binopPriority mirrors the teacher's {left, right} precedence-climbing
// table (lang/parser/expr.go), retargeted at the expression compiler's own
// operator set. CIRCUMFLEX (exponent) is right-associative: its right
// priority is lower than its left so repeated application nests right.
var binopPriority = map[token.Token]struct{ left, right int }{
	token.OROR:       {1, 1},
	token.ANDAND:     {2, 2},
	token.PIPE:       {3, 3},
	token.CARET:      {4, 4},
	token.AMPERSAND:  {5, 5},
	token.EQL:        {6, 6},
	token.NEQ:        {6, 6},
	token.LT:         {7, 7},
	token.LE:         {7, 7},
	token.GT:         {7, 7},
	token.GE:         {7, 7},
	token.LTLT:       {8, 8},
	token.GTGT:       {8, 8},
	token.PLUS:       {9, 9},
	token.MINUS:      {9, 9},
	token.STAR:       {10, 10},
	token.SLASH:      {10, 10},
	token.SLASHSLASH: {10, 10},
	token.PERCENT:    {10, 10},
	token.CIRCUMFLEX: {13, 12},
}

const unopPriority = 11

// parseExpr parses a subexpression whose binary operators bind tighter
// than priority (precedence climbing), then checks for a trailing
// ternary `? then : else`, which binds looser than every binary operator
// and is right-associative.
func (p *Parser) parseExpr(priority int) (int, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		it := p.peek()
		prio, ok := binopPriority[it.tok]
		if !ok || prio.left <= priority {
			break
		}
		p.next()
		right, err := p.parseExpr(prio.right)
		if err != nil {
			return 0, err
		}
		left = p.newNode(OpNode{Lexeme: it.tok, Prec: prio.left, Left: left, Right: right})
	}

	if priority == 0 && p.peek().tok == token.QUESTION {
		p.next()
		then, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		if p.peek().tok != token.COLON {
			return 0, fmt.Errorf("expr: expected ':' in ternary expression")
		}
		p.next()
		els, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		left = p.newNode(OpNode{Lexeme: token.QUESTION, Left: then, Right: els, Cond: left, Prec: -1})
	}

	return left, nil
}

// parseUnary handles the unary prefix operators (-, +, !, ~) and the `(`
// grouping form ("a unary whose `)` terminates it", §4.5), then falls
// through to a leaf or function call.
func (p *Parser) parseUnary() (int, error) {
	it := p.peek()
	switch it.tok {
	case token.MINUS, token.PLUS, token.NOT, token.TILDE:
		p.next()
		operand, err := p.parseExpr(unopPriority)
		if err != nil {
			return 0, err
		}
		return p.newNode(OpNode{Lexeme: it.tok, Left: operand, Right: -1}), nil
	case token.LPAREN:
		p.next()
		inner, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		if p.peek().tok != token.RPAREN {
			return 0, fmt.Errorf("expr: expected ')'")
		}
		p.next()
		return inner, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (int, error) {
	it := p.next()
	switch {
	case it.sub != nil:
		return p.newNode(OpNode{Leaf: LeafTokens, Sub: *it.sub, Left: -1, Right: -1}), nil
	case it.tok == token.INT || it.tok == token.FLOAT || it.tok == token.STRING:
		return p.newNode(OpNode{Leaf: LeafLiteral, Literal: it.lit, Left: -1, Right: -1}), nil
	case it.tok == token.IDENT:
		if p.peek().tok == token.LPAREN {
			return p.parseCall(it.lit)
		}
		return p.newNode(OpNode{Leaf: LeafLiteral, Literal: it.lit, Left: -1, Right: -1}), nil
	case it.tok == token.EOF:
		return p.newNode(OpNode{Leaf: LeafEmpty, Left: -1, Right: -1}), nil
	default:
		return 0, fmt.Errorf("expr: unexpected token %s", it.tok)
	}
}

func (p *Parser) parseCall(name string) (int, error) {
	p.next() // consume '('
	var args []int
	if p.peek().tok != token.RPAREN {
		for {
			arg, err := p.parseExpr(0)
			if err != nil {
				return 0, err
			}
			args = append(args, arg)
			if p.peek().tok != token.COMMA {
				break
			}
			p.next()
		}
	}
	if p.peek().tok != token.RPAREN {
		return 0, fmt.Errorf("expr: expected ')' closing call to %q", name)
	}
	p.next()
	return p.newNode(OpNode{FuncName: name, Args: args, Left: -1, Right: -1}), nil
}
