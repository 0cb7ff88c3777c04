package parser

import (
	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/token"
)

// precedence levels for the Pratt expression parser, per spec.md §4.E:
// unary tightest, then multiplicative, additive, comparison, relational,
// bitwise and/or/xor loosest.
const (
	precLowest = iota
	precBitwise
	precRelational
	precComparison
	precAdditive
	precMultiplicative
	precUnary
)

var binaryPrec = map[token.Type]int{
	token.AND: precBitwise, token.OR: precBitwise, token.XOR: precBitwise,
	token.LT: precRelational, token.LTE: precRelational, token.GT: precRelational, token.GTE: precRelational,
	token.EQ: precComparison, token.NEQ: precComparison,
	token.PLUS: precAdditive, token.MINUS: precAdditive,
	token.STAR: precMultiplicative, token.SLASH: precMultiplicative, token.PERCENT: precMultiplicative,
}

// ExprParser evaluates a parenthesized arithmetic expression directly to
// a term.Term, as spec.md §4.E describes ("Arithmetic... a Pratt parser
// recurses with precedence table"), grounded structurally on
// ha1tch/tsqlparser's parser.go prefix/infix function-table dispatch
// (parseExpression/registered nud+led handlers), adapted here to
// evaluate eagerly rather than build an AST, since term.Term values are
// already the compiler's AST representation.
type ExprParser struct {
	tokens []token.Token
	pos    int
	args   func(n int) (*term.Term, bool) // resolves $N within the expression
}

func NewExprParser(tokens []token.Token, args func(int) (*term.Term, bool)) *ExprParser {
	return &ExprParser{tokens: tokens, args: args}
}

func (e *ExprParser) cur() token.Token {
	if e.pos < len(e.tokens) {
		return e.tokens[e.pos]
	}
	return token.Token{Type: token.EOF}
}

func (e *ExprParser) advance() token.Token {
	t := e.cur()
	if e.pos < len(e.tokens) {
		e.pos++
	}
	return t
}

// ParseExpression parses and evaluates a full expression at the given
// minimum precedence.
func (e *ExprParser) ParseExpression(minPrec int) (*term.Term, error) {
	left, err := e.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binaryPrec[e.cur().Type]
		if !ok || prec < minPrec {
			break
		}
		op := e.advance()
		right, err := e.ParseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left, err = applyBinary(op.Type, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (e *ExprParser) parsePrefix() (*term.Term, error) {
	t := e.cur()
	switch t.Type {
	case token.MINUS:
		e.advance()
		v, err := e.ParseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return v.Negate()
	case token.PLUS:
		e.advance()
		v, err := e.ParseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return v.Positive()
	case token.NOT:
		e.advance()
		v, err := e.ParseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return v.Not()
	case token.LPAREN:
		e.advance()
		v, err := e.ParseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if e.cur().Type != token.RPAREN {
			return nil, explain.New(explain.DefinitionError, "expected closing parenthesis")
		}
		e.advance()
		return v, nil
	case token.INTEGER:
		e.advance()
		return term.NewInteger(t.IntVal), nil
	case token.FRACTION:
		e.advance()
		return term.NewFraction(t.IntVal, t.Num, t.Denom), nil
	case token.WORD:
		e.advance()
		if e.args != nil && len(t.Literal) > 0 && t.Literal[0] >= '0' && t.Literal[0] <= '9' {
			if v, ok := e.args(int(t.Literal[0] - '0')); ok {
				return v, nil
			}
		}
		return term.NewWord(t.Literal), nil
	default:
		return nil, explain.New(explain.DefinitionError, "unexpected token %s in expression", t.Type)
	}
}

func applyBinary(op token.Type, a, b *term.Term) (*term.Term, error) {
	switch op {
	case token.PLUS:
		return a.Add(b)
	case token.MINUS:
		return a.Sub(b)
	case token.STAR:
		return a.Mul(b)
	case token.SLASH:
		return a.Div(b)
	case token.PERCENT:
		return a.Mod(b)
	case token.AND:
		return a.And(b)
	case token.OR:
		return a.Or(b)
	case token.XOR:
		return a.Xor(b)
	case token.EQ:
		return boolTerm(a.Equal(b)), nil
	case token.NEQ:
		return boolTerm(!a.Equal(b)), nil
	case token.LT:
		return compareTerm(a, b, func(s int) bool { return s < 0 })
	case token.LTE:
		return compareTerm(a, b, func(s int) bool { return s <= 0 })
	case token.GT:
		return compareTerm(a, b, func(s int) bool { return s > 0 })
	case token.GTE:
		return compareTerm(a, b, func(s int) bool { return s >= 0 })
	default:
		return nil, explain.New(explain.ProgramBug, "unhandled binary operator %s", op)
	}
}

func boolTerm(b bool) *term.Term {
	if b {
		return term.NewInteger(1)
	}
	return term.NewInteger(0)
}

func compareTerm(a, b *term.Term, pred func(int) bool) (*term.Term, error) {
	sign, ok := a.Compare(b)
	if !ok {
		return nil, explain.New(explain.DefinitionError, "%v and %v are not comparable", a, b)
	}
	return boolTerm(pred(sign)), nil
}
