package grammar

import "strings"

// Reduction is the payload of a leaf trie state: which Definition to
// construct, and how many non-terminal values the reduction consumes
// from the parser's value stack.
type Reduction struct {
	Definition *Definition
	Designator *Designator
	Consumed   int
}

// State is one node of the parse-state trie.
type State struct {
	words       map[string]*State // literal word -> next state (case-folded)
	nonTerminal map[NonTerminal]*State
	integer     *State
	fraction    *State
	Reduction   *Reduction
}

func newState() *State {
	return &State{words: map[string]*State{}, nonTerminal: map[NonTerminal]*State{}}
}

// Trie holds one root State per top-level non-terminal.
type Trie struct {
	Roots map[NonTerminal]*State
}

func buildTrie(g *Grammar) *Trie {
	t := &Trie{Roots: map[NonTerminal]*State{
		Anything: newState(),
		AnyCall:  newState(),
		AnyOne:   newState(),
	}}
	for _, name := range g.sortedDefinitionNames() {
		def := g.Definitions[name]
		for _, prod := range def.Productions {
			extend(t, g, t.Roots[Anything], tokenizeProduction(prod), def)
		}
	}
	for _, d := range g.Designators {
		for _, phrase := range d.Phrases {
			extendDesignator(t.Roots[AnyOne], tokenizeProduction(phrase), d)
		}
	}
	return t
}

// prodToken is one lexical element of a production string: either a
// literal word or a "<name>" non-terminal placeholder.
type prodToken struct {
	literal string
	nt      NonTerminal
	isNT    bool
	isInt   bool
	isFrac  bool
}

func tokenizeProduction(prod string) []prodToken {
	fields := strings.Fields(prod)
	toks := make([]prodToken, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "<") && strings.HasSuffix(f, ">") {
			name := strings.ToLower(f[1 : len(f)-1])
			switch name {
			case "integer":
				toks = append(toks, prodToken{isInt: true})
			case "fraction":
				toks = append(toks, prodToken{isFrac: true})
			case "anyone":
				toks = append(toks, prodToken{isNT: true, nt: AnyOne})
			default:
				toks = append(toks, prodToken{isNT: true, nt: Anything})
			}
			continue
		}
		toks = append(toks, prodToken{literal: strings.ToLower(f)})
	}
	return toks
}

// extend walks/creates trie states for one production, attaching a
// Reduction at its terminal state. Productions beginning with their own
// non-terminal (e.g. "anything and anything") create what spec.md calls
// a suffix trie for left-recursive extension: since our root state is
// shared across all definitions of a non-terminal, recursing into the
// same root naturally realizes that without a separate structure.
func extend(t *Trie, g *Grammar, state *State, toks []prodToken, def *Definition) {
	cur := state
	for _, tok := range toks {
		switch {
		case tok.isInt:
			if cur.integer == nil {
				cur.integer = newState()
			}
			cur = cur.integer
		case tok.isFrac:
			if cur.fraction == nil {
				cur.fraction = newState()
			}
			cur = cur.fraction
		case tok.isNT:
			if cur.nonTerminal[tok.nt] == nil {
				cur.nonTerminal[tok.nt] = newState()
			}
			cur = cur.nonTerminal[tok.nt]
		default:
			if cur.words[tok.literal] == nil {
				cur.words[tok.literal] = newState()
			}
			cur = cur.words[tok.literal]
		}
	}
	if cur.Reduction != nil {
		g.diagnose("duplicate reduction for production in definition %q", def.Name)
	}
	consumed := 0
	for _, tok := range toks {
		if tok.isNT || tok.isInt || tok.isFrac {
			consumed++
		}
	}
	cur.Reduction = &Reduction{Definition: def, Consumed: consumed}
}

func extendDesignator(state *State, toks []prodToken, d *Designator) {
	cur := state
	for _, tok := range toks {
		if tok.literal == "" {
			continue
		}
		if cur.words[tok.literal] == nil {
			cur.words[tok.literal] = newState()
		}
		cur = cur.words[tok.literal]
	}
	if cur.Reduction == nil {
		cur.Reduction = &Reduction{Designator: d}
	}
}

// WordEdge, IntegerEdge, FractionEdge, and NonTerminalEdges expose a
// State's outgoing edges to internal/parser without making the State
// struct's fields public — keeping construction (extend/buildTrie)
// the only code that mutates a trie.
func (s *State) WordEdge(w string) (*State, bool) {
	st, ok := s.words[strings.ToLower(w)]
	return st, ok
}

func (s *State) IntegerEdge() (*State, bool) { return s.integer, s.integer != nil }
func (s *State) FractionEdge() (*State, bool) { return s.fraction, s.fraction != nil }

func (s *State) NonTerminalEdges() map[NonTerminal]*State { return s.nonTerminal }

// PartialCandidates walks every reachable miss path from state and
// returns the literal next-word options, case-insensitively prefix
// filtered by `prefix` — spec.md §4.E's partial-match collection.
func (s *State) PartialCandidates(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for w := range s.words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
