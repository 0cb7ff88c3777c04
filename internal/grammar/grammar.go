// Package grammar compiles a grammar file (spec.md §6's three-section
// format) into Definitions, Designators, and Formations, and builds the
// parse-state trie spec.md §4.D describes. Grounded on
// ha1tch/tsqlparser's overall lexer-then-parser pipeline shape; the trie
// itself has no analogue in tsqlparser (a single-pass recursive-descent
// SQL grammar has no need for one) and is modeled directly on
// original_source/dance/dance.h's Grammar/State classes.
package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/formation"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
)

// NonTerminal names the three trie roots a production can recurse
// through, per spec.md §4.D.
type NonTerminal int

const (
	Anything NonTerminal = iota
	AnyCall
	AnyOne
)

// Part is one step of a Variant's body: either a simple action
// (">action-text") or a compound start-together action ("<...").
type Part struct {
	Repeat      string // optional repeat-expression text, from "+[...]"
	Action      string // simple action text, from ">..."
	Compound    bool
	Tracks      []Track
}

// Track is one branch of a compound Part ("<").
type Track struct {
	FinishTogether bool   // '@T' vs '@F'
	Who            string // who-phrase text
	AnyWhoCan      bool   // '#T' vs '#F'
	What           string // what-phrase text
}

// Variant is one alternative body of a Definition: an optional formation
// pattern, an optional level/precedence override, and its ordered Parts.
type Variant struct {
	FormationName string
	Pattern       *formation.Pattern
	Level         string
	Precedence    string
	Parts         []Part
}

// Definition is one call definition: its synonym-expanded production
// strings, internal name, timestamps, and ordered Variants tried in
// declared order (spec.md §5: "Variants of a definition are tried in
// declared order; first match wins.").
type Definition struct {
	Name       string
	Level      string
	Created    int64
	Modified   int64
	Productions []string
	Variants   []*Variant
}

// TermRef lets internal/term build Anything values that reference a
// Definition without internal/term importing this package (breaking the
// cycle: term -> grammar would conflict with grammar -> term).
func (d *Definition) TermRef() term.DefinitionRef { return definitionRef{d} }

type definitionRef struct{ d *Definition }

func (r definitionRef) DefinitionName() string { return r.d.Name }

// Designator is one `.`-prefixed dancer-set expression with its
// recognizing phrases, compiled (by internal/anyone, to avoid a
// grammar->anyone->grammar cycle) into a term.Anyone AST on demand.
type Designator struct {
	Level    string
	Created  int64
	Modified int64
	Expr     string // the raw dancer-set expression text after '.'
	Phrases  []string
}

// Grammar is the whole compiled artifact: Definitions, Designators, and
// Formations from one grammar file, plus any backup grammar whose
// entries this one's override (spec.md §6: "productions inherit from
// backup, local overrides win").
type Grammar struct {
	Synonyms    map[string]string
	Definitions map[string]*Definition
	Designators []*Designator
	Formations  map[string]*formation.Formation
	Backup      *Grammar

	diagnostics []string
	trie        *Trie
}

func (g *Grammar) Expand(name string) (string, bool) {
	if g == nil {
		return "", false
	}
	if text, ok := g.Synonyms[name]; ok {
		return text, true
	}
	if g.Backup != nil {
		return g.Backup.Expand(name)
	}
	return "", false
}

// Trie exposes the compiled parse-state trie to internal/parser.
func (g *Grammar) Trie() *Trie { return g.trie }

// Diagnostics returns messages accumulated while compiling (duplicate
// reductions, unresolved formation references), per spec.md §4.D.
func (g *Grammar) Diagnostics() []string { return g.diagnostics }

func (g *Grammar) diagnose(format string, args ...any) {
	g.diagnostics = append(g.diagnostics, fmt.Sprintf(format, args...))
}

// Lookup resolves a call name, checking local definitions first, then
// walking the backup chain.
func (g *Grammar) Lookup(name string) (*Definition, bool) {
	if g == nil {
		return nil, false
	}
	if d, ok := g.Definitions[name]; ok {
		return d, true
	}
	if g.Backup != nil {
		return g.Backup.Lookup(name)
	}
	return nil, false
}

func (g *Grammar) LookupFormation(name string) (*formation.Formation, bool) {
	if g == nil {
		return nil, false
	}
	if f, ok := g.Formations[name]; ok {
		return f, true
	}
	if g.Backup != nil {
		return g.Backup.LookupFormation(name)
	}
	return nil, false
}

// CentersEndsFormations returns every parsed formation whose grid tags a
// centers/ends/very-centers/very-ends position, in stable name order, the
// candidate list internal/anyone searches when resolving those dancer
// sets (original_source/dance/anyone.cc's context->grammar()->centersEnds()).
func (g *Grammar) CentersEndsFormations() []*formation.Formation {
	if g == nil {
		return nil
	}
	var out []*formation.Formation
	for _, f := range g.Formations {
		if f.HasCentersEndsSpots() {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if g.Backup != nil {
		out = append(out, g.Backup.CentersEndsFormations()...)
	}
	return out
}

// Parse compiles grammar file text into a Grammar, chaining to backup if
// non-nil. It implements the three-section format of spec.md §6.
func Parse(text string, backup *Grammar) (*Grammar, error) {
	g := &Grammar{
		Synonyms:    map[string]string{},
		Definitions: map[string]*Definition{},
		Formations:  map[string]*formation.Formation{},
		Backup:      backup,
	}

	sections := splitSections(text)
	if err := g.parseDefinitions(sections[0]); err != nil {
		return nil, err
	}
	if len(sections) > 1 {
		if err := g.parseDesignators(sections[1]); err != nil {
			return nil, err
		}
	}
	if len(sections) > 2 {
		if err := g.parseFormations(sections[2]); err != nil {
			return nil, err
		}
	}
	g.trie = buildTrie(g)
	return g, nil
}

func splitSections(text string) []string {
	parts := []string{text}
	if idx := strings.Index(parts[0], "\n@@"); idx >= 0 {
		rest := parts[0][idx+1:]
		parts[0] = parts[0][:idx+1]
		more := strings.SplitN(rest, "\n%%", 2)
		parts = append(parts[:1], more...)
		return parts
	}
	if idx := strings.Index(parts[0], "\n%%"); idx >= 0 {
		rest := parts[0][idx+1:]
		parts[0] = parts[0][:idx+1]
		parts = append(parts, rest)
	}
	return parts
}

func (g *Grammar) parseDefinitions(text string) error {
	lines := strings.Split(text, "\n")
	var cur *Definition
	var curVariant *Variant
	var curPart *Part

	flushPart := func() {
		if curPart != nil && curVariant != nil {
			curVariant.Parts = append(curVariant.Parts, *curPart)
			curPart = nil
		}
	}
	flushVariant := func() {
		flushPart()
		if curVariant != nil && cur != nil {
			cur.Variants = append(cur.Variants, curVariant)
			curVariant = nil
		}
	}
	flushDef := func() {
		flushVariant()
		if cur != nil {
			g.Definitions[cur.Name] = cur
			cur = nil
		}
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "@@") || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		switch {
		case strings.HasPrefix(line, ":"):
			kv := strings.SplitN(line[1:], "=", 2)
			if len(kv) == 2 {
				g.Synonyms[kv[0]] = kv[1]
			}
		case strings.HasPrefix(line, "--"):
			flushDef()
			cur = &Definition{Level: line[2:]}
		case strings.HasPrefix(line, "."):
			if cur != nil {
				cur.Name = line[1:]
			}
		case strings.HasPrefix(line, "C"):
			if cur != nil {
				cur.Created = parseInt64(line[1:])
			}
		case strings.HasPrefix(line, "M"):
			if cur != nil {
				cur.Modified = parseInt64(line[1:])
			}
		case strings.HasPrefix(line, "*"):
			flushPart()
			if curVariant == nil {
				curVariant = &Variant{}
			}
			curVariant.FormationName = line[1:]
		case strings.HasPrefix(line, "!"):
			if curVariant != nil {
				curVariant.Level = line[1:]
			}
		case strings.HasPrefix(line, "^"):
			if curVariant != nil {
				curVariant.Precedence = line[1:]
			}
		case strings.HasPrefix(line, "+"):
			flushPart()
			curPart = &Part{Repeat: line[1:]}
		case strings.HasPrefix(line, ">"):
			if curPart == nil {
				curPart = &Part{}
			}
			curPart.Action = line[1:]
		case strings.HasPrefix(line, "<"):
			if curPart == nil {
				curPart = &Part{}
			}
			curPart.Compound = true
		case strings.HasPrefix(line, "@"):
			if curPart != nil && len(line) > 1 {
				curPart.Tracks = append(curPart.Tracks, Track{FinishTogether: line[1] == 'T', Who: strings.TrimSpace(line[2:])})
			}
		case strings.HasPrefix(line, "#"):
			if curPart != nil && len(curPart.Tracks) > 0 {
				t := &curPart.Tracks[len(curPart.Tracks)-1]
				t.AnyWhoCan = len(line) > 1 && line[1] == 'T'
				if len(line) > 2 {
					t.What = strings.TrimSpace(line[2:])
				}
			}
		case strings.HasPrefix(line, "|"):
			flushVariant()
			curVariant = &Variant{}
		default:
			if cur != nil {
				cur.Productions = append(cur.Productions, trimmed)
			}
		}
	}
	flushDef()
	return nil
}

func (g *Grammar) parseDesignators(text string) error {
	lines := strings.Split(text, "\n")
	var cur *Designator
	flush := func() {
		if cur != nil {
			g.Designators = append(g.Designators, cur)
			cur = nil
		}
	}
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "@@") || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "++"):
			flush()
			cur = &Designator{Level: line[2:]}
		case strings.HasPrefix(line, "C"):
			if cur != nil {
				cur.Created = parseInt64(line[1:])
			}
		case strings.HasPrefix(line, "M"):
			if cur != nil {
				cur.Modified = parseInt64(line[1:])
			}
		case strings.HasPrefix(line, "."):
			if cur == nil {
				cur = &Designator{}
			}
			cur.Expr = line[1:]
		default:
			if cur != nil {
				cur.Phrases = append(cur.Phrases, trimmed)
			}
		}
	}
	flush()
	return nil
}

func (g *Grammar) parseFormations(text string) error {
	blocks := strings.Split(text, "\n=")
	for i, block := range blocks {
		if i == 0 {
			if idx := strings.Index(block, "="); idx >= 0 {
				block = block[idx+1:]
			} else {
				continue
			}
		}
		f, err := formation.Parse("=" + block)
		if err != nil {
			g.diagnose("formation parse error: %v", err)
			continue
		}
		g.Formations[f.Name] = f
	}
	return nil
}

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// sortedDefinitionNames is used by the trie builder and by diagnostics
// to produce deterministic iteration order over a map.
func (g *Grammar) sortedDefinitionNames() []string {
	names := make([]string, 0, len(g.Definitions))
	for n := range g.Definitions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
