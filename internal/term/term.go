// Package term implements the typed, immutable value algebra described in
// spec.md §3 ("Term") and §4.A: integers, fractions, directions, pivots,
// words, dancer-set expressions (Anyone), and call instances (Anything).
//
// Grounded on original_source/dance/dance.h's Term/Integer/Fraction/
// Anydirection/Anypivot/Anyone/Anything class hierarchy, translated from a
// virtual-dispatch class tree into a single tagged-union struct the way the
// system's design notes (spec.md §9) direct ("Run-time type discrimination
// on Terms... maps cleanly to a tagged sum type").
package term

import (
	"fmt"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
)

// Kind discriminates the Term union. Comparable across kinds only through
// Compare/Equal; an arithmetic op between mismatched kinds fails.
type Kind int

const (
	KindInteger Kind = iota
	KindFraction
	KindWord
	KindDirection
	KindPivot
	KindAnything
	KindAnyone
	KindBuiltIn
	KindPrimitive
	KindDancerName
	KindGroup
)

func (k Kind) String() string {
	names := [...]string{"integer", "fraction", "word", "direction", "pivot",
		"anything", "anyone", "builtin", "primitive", "dancername", "group"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// sortIndex implements spec.md §4.D: trie edges are tried in increasing
// sortIndex so literal integers/fractions are preferred over
// non-terminal recursions when a state has both.
func (k Kind) sortIndex() int {
	switch k {
	case KindInteger:
		return 0
	case KindFraction:
		return 1
	default:
		return 2
	}
}

// DefinitionRef decouples term.Anything from the grammar package (which
// itself must depend on term to build literal terms), avoiding an import
// cycle. grammar.Definition implements this.
type DefinitionRef interface {
	DefinitionName() string
}

// PrimitiveRef decouples term.Anything from the engine package, which
// implements the primitive dispatch table and would otherwise need to
// import term for Term arguments, creating a cycle.
type PrimitiveRef interface {
	PrimitiveName() string
	PrimitiveIndex() int
}

// Term is the single tagged-union value type for the whole compiler.
// Instances are ordinary garbage-collected values (internal/stage counts
// them but does not allocate them) and are never mutated after
// construction.
type Term struct {
	Kind     Kind
	spelling string

	// KindInteger
	Int int

	// KindFraction
	Frac Fraction

	// KindWord, KindDirection(label), KindPivot(label) share Str for display
	Str string

	// KindDirection
	Direction Direction

	// KindPivot
	Pivot Pivot

	// KindAnything
	Anything *Anything

	// KindAnyone
	Anyone *Anyone

	// KindBuiltIn — index into the grammar's non-terminal table
	// (ANYTHING, ANYCALL, ANYONE, ...); see internal/grammar.
	BuiltIn int

	// KindPrimitive
	Primitive PrimitiveRef

	// KindDancerName — 0-based dancer index, spoken as "one boy", "two girl".
	DancerIndex int

	// KindGroup — a Group used as a first-class value inside a call, e.g.
	// a sub-definition that captures "the starting formation".
	Group *geometry.Group
}

func (t *Term) Spelling() string { return t.spelling }

// Anything is a call instance: a reference to a Definition or a Primitive
// plus an ordered argument list. Exactly one of Definition/Primitive is
// set (spec.md §3 invariant).
type Anything struct {
	Definition   DefinitionRef
	Primitive    PrimitiveRef
	Args         []*Term
	InDefinition bool // true if parsed from definition-body text ($N, operators legal)
}

// --- constructors -----------------------------------------------------

func NewInteger(v int) *Term {
	return &Term{Kind: KindInteger, Int: v, spelling: fmt.Sprintf("%d", v)}
}

func NewWord(text string) *Term {
	return &Term{Kind: KindWord, Str: text, spelling: text}
}

func NewDirection(d Direction) *Term {
	return &Term{Kind: KindDirection, Direction: d, Str: directionNames[d], spelling: directionNames[d]}
}

func NewPivot(p Pivot) *Term {
	return &Term{Kind: KindPivot, Pivot: p, Str: pivotNames[p], spelling: pivotNames[p]}
}

func NewFraction(whole, num, denom int) *Term {
	f := Fraction{Whole: whole, Num: num, Denom: denom}.Normalize()
	return &Term{Kind: KindFraction, Frac: f, spelling: f.String()}
}

// UntilHome is the (1, 0) magic sentinel fraction used by $arc's
// "$until_home" argument (spec.md §4.F).
func UntilHome() *Term {
	return &Term{Kind: KindFraction, Frac: Fraction{Whole: 0, Num: 1, Denom: 0}, spelling: "until_home"}
}

func NewAnything(def DefinitionRef, prim PrimitiveRef, args []*Term, inDefinition bool) *Term {
	a := &Anything{Definition: def, Primitive: prim, Args: args, InDefinition: inDefinition}
	return &Term{Kind: KindAnything, Anything: a}
}

func NewAnyoneTerm(a *Anyone) *Term {
	return &Term{Kind: KindAnyone, Anyone: a, spelling: a.Label()}
}

func NewBuiltIn(index int, spelling string) *Term {
	return &Term{Kind: KindBuiltIn, BuiltIn: index, spelling: spelling}
}

func NewPrimitive(p PrimitiveRef) *Term {
	return &Term{Kind: KindPrimitive, Primitive: p, spelling: p.PrimitiveName()}
}

func NewDancerName(index int, spelling string) *Term {
	return &Term{Kind: KindDancerName, DancerIndex: index, spelling: spelling}
}

func NewGroup(g *geometry.Group) *Term {
	return &Term{Kind: KindGroup, Group: g}
}

// sortIndex exposes the trie-ordering key used by internal/grammar.
func (t *Term) SortIndex() int { return t.Kind.sortIndex() }

func fail(kind explain.Kind, format string, args ...any) (*Term, error) {
	return nil, explain.New(kind, format, args...)
}
