// Package parser implements spec.md §4.E's non-deterministic
// backtracking parser over a compiled grammar.Trie, plus the §4.E Pratt
// arithmetic sub-parser used inside parenthesized definition-body
// expressions.
//
// Grounded structurally on ha1tch/tsqlparser's parser.Parser (prefix/
// infix function-table dispatch, precedence levels), adapted here to
// drive a shared trie instead of a fixed SQL grammar, and extended with
// explicit backtracking since definitions overlap in ways a one-token
// lookahead recursive-descent parser cannot resolve.
package parser

import (
	"strings"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/anyone"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/grammar"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/lexer"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/token"
)

// maxReductionDepth bounds nested ANYTHING reductions, per spec.md §5's
// "grammar-reduction depth 50" cancellation guarantee.
const maxReductionDepth = 50

// Parser drives one call-phrase parse against a compiled Grammar.
type Parser struct {
	g      *grammar.Grammar
	tokens []token.Token
}

// ParseError reports a failed or partial parse; Candidates is populated
// only when the failure is a clean end-of-input partial match.
type ParseError struct {
	Message    string
	Candidates []string
}

func (e *ParseError) Error() string { return e.Message }

// New lexes input fully (InDefinition controls whether $word/operator
// forms are recognized) and returns a Parser ready to attempt a match.
func New(g *grammar.Grammar, input string, args lexer.ArgSource, inDefinition bool) (*Parser, error) {
	lex := lexer.New(input, g, args, inDefinition)
	var toks []token.Token
	for {
		t, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return &Parser{g: g, tokens: toks}, nil
}

// ParseCall attempts to parse the whole token stream as one call
// (non-terminal ANYTHING), returning the bound Anything term.
func (p *Parser) ParseCall() (*term.Term, error) {
	root := p.g.Trie().Roots[grammar.Anything]
	t, pos, ok := p.attempt(root, 0, nil, 0)
	if !ok {
		return nil, p.failure(0)
	}
	if pos != len(p.tokens)-1 { // -1: EOF/FINAL_PARTIAL sentinel
		return nil, p.failure(pos)
	}
	return t, nil
}

// ParseDesignator attempts to parse the whole token stream as a
// dancer-set expression (non-terminal ANYONE).
func (p *Parser) ParseDesignator() (*term.Term, error) {
	root := p.g.Trie().Roots[grammar.AnyOne]
	t, pos, ok := p.attempt(root, 0, nil, 0)
	if !ok {
		return nil, p.failure(0)
	}
	if pos != len(p.tokens)-1 {
		return nil, p.failure(pos)
	}
	return t, nil
}

func (p *Parser) failure(pos int) error {
	if pos < len(p.tokens) && p.tokens[pos].Type == token.FINAL_PARTIAL {
		root := p.g.Trie().Roots[grammar.Anything]
		return &ParseError{Message: "partial match", Candidates: root.PartialCandidates(p.tokens[pos].Literal)}
	}
	return &ParseError{Message: "no production matches the input"}
}

// attempt walks the trie from `state` at token index `pos`, trying edges
// in spec.md §4.D's sortIndex order (integer, fraction, word, then
// non-terminal recursion) and backtracking on failure. args accumulates
// the value-producing slots consumed so far along this path, in order,
// for the eventual Reduction's Definition/Designator arguments.
func (p *Parser) attempt(state *grammar.State, pos int, args []*term.Term, depth int) (*term.Term, int, bool) {
	if depth > maxReductionDepth {
		return nil, pos, false
	}

	// Accept a complete reduction once every input token has been
	// consumed (EOF/FINAL_PARTIAL sentinel remaining).
	if pos == len(p.tokens)-1 && state.Reduction != nil {
		red := state.Reduction
		if red.Definition != nil {
			return term.NewAnything(red.Definition.TermRef(), nil, args, false), pos, true
		}
		if red.Designator != nil {
			expr := red.Designator.Expr
			if expr == "" {
				return term.NewAnyoneTerm(anyone.Universe()), pos, true
			}
			a, err := anyone.Compile(expr)
			if err != nil {
				return nil, pos, false
			}
			return term.NewAnyoneTerm(a), pos, true
		}
	}

	if pos >= len(p.tokens) {
		return nil, pos, false
	}
	tok := p.tokens[pos]

	if tok.Type == token.INTEGER {
		if next, ok := state.IntegerEdge(); ok {
			nargs := append(append([]*term.Term{}, args...), term.NewInteger(tok.IntVal))
			if t, np, ok := p.attempt(next, pos+1, nargs, depth); ok {
				return t, np, true
			}
		}
	}
	if tok.Type == token.FRACTION {
		if next, ok := state.FractionEdge(); ok {
			nargs := append(append([]*term.Term{}, args...), term.NewFraction(tok.IntVal, tok.Num, tok.Denom))
			if t, np, ok := p.attempt(next, pos+1, nargs, depth); ok {
				return t, np, true
			}
		}
	}
	// A FINAL_PARTIAL token (the last word, cut short at end-of-input) is
	// tried as a complete literal word first, the same as WORD: a fully
	// typed call must still match even though its last word carries no
	// trailing whitespace to confirm it's finished.
	if tok.Type == token.WORD || tok.Type == token.FINAL_PARTIAL {
		if next, ok := state.WordEdge(strings.ToLower(tok.Literal)); ok {
			if t, np, ok := p.attempt(next, pos+1, args, depth); ok {
				return t, np, true
			}
		}
	}
	for nt, next := range state.NonTerminalEdges() {
		root := p.subRoot(nt)
		if val, newPos, ok := p.attempt(root, pos, nil, depth+1); ok {
			nargs := append(append([]*term.Term{}, args...), val)
			if t, np, ok := p.attempt(next, newPos, nargs, depth); ok {
				return t, np, true
			}
		}
	}
	return nil, pos, false
}

func (p *Parser) subRoot(nt grammar.NonTerminal) *grammar.State {
	return p.g.Trie().Roots[nt]
}
