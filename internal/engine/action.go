package engine

import (
	"strings"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/lexer"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/parser"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/token"
)

// termArgSource adapts an argument term list to lexer.ArgSource by
// exposing each argument's display spelling, the mechanism spec.md §4.D
// describes for `$N` substitution during action-text re-parsing.
type termArgSource struct{ args []*term.Term }

func (s termArgSource) Arg(i int) (string, bool) {
	if i < 0 || i >= len(s.args) {
		return "", false
	}
	return s.args[i].Spelling(), true
}

// parsedAction is the result of scanning one Part's action text: a
// primitive or definition name (the $-prefixed head word) plus its
// parenthesized argument expressions, each already evaluated to a Term.
type parsedAction struct {
	Head string
	Args []*term.Term
}

// parseAction tokenizes action text (with InDefinition=true so `$N` and
// operators are recognized) and parses the `$name(arg, arg, ...)` call
// syntax every Part action and Track what-phrase uses, per spec.md §6.
func parseAction(text string, callArgs []*term.Term) (*parsedAction, error) {
	lex := lexer.New(text, nil, termArgSource{callArgs}, true)
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
	if len(toks) == 0 || toks[0].Type != token.WORD {
		return nil, explain.New(explain.DefinitionError, "malformed action text %q", text)
	}
	head := strings.TrimPrefix(toks[0].Literal, "$")
	pa := &parsedAction{Head: head}
	if len(toks) == 1 || toks[1].Type != token.LPAREN {
		return pa, nil
	}

	depth := 0
	start := 2
	i := 2
	for ; i < len(toks); i++ {
		switch toks[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				if i > start {
					v, err := evalArg(toks[start:i], callArgs)
					if err != nil {
						return nil, err
					}
					pa.Args = append(pa.Args, v)
				}
				return pa, nil
			}
			depth--
		case token.COMMA:
			if depth == 0 {
				v, err := evalArg(toks[start:i], callArgs)
				if err != nil {
					return nil, err
				}
				pa.Args = append(pa.Args, v)
				start = i + 1
			}
		}
	}
	return nil, explain.New(explain.DefinitionError, "unterminated argument list in %q", text)
}

func evalArg(toks []token.Token, callArgs []*term.Term) (*term.Term, error) {
	toks = append(append([]token.Token{}, toks...), token.Token{Type: token.EOF})
	ep := parser.NewExprParser(toks, func(n int) (*term.Term, bool) {
		if n < 0 || n >= len(callArgs) {
			return nil, false
		}
		return callArgs[n], true
	})
	return ep.ParseExpression(0)
}
