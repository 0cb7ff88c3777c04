// Package anyone implements spec.md component H: resolving a
// term.Anyone dancer-set expression AST to a bitmask over a live
// geometry.Group, using geometry, facing, and formation-based
// classification. It also compiles a Designator's raw expression text
// into the term.Anyone AST itself, kept here (rather than in
// internal/grammar) since compiling "centers and ends" needs the same
// leaf-name table Resolve uses to classify dancers.
//
// Grounded on original_source/dance/dance.h's Anyone class and
// stored_data.h's DancerSet enum for the leaf classification rules.
package anyone

import (
	"strings"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/formation"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/grammar"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
)

// Universe returns the implicit designator used when a call names no one
// in particular: the Others leaf, which resolves to every dancer outside
// the last-active mask (the whole group when that mask is empty).
func Universe() *term.Anyone {
	return term.NewAnyoneLeaf(term.AnyoneOthers)
}

var nameToKind = map[string]term.AnyoneKind{
	"centers": term.AnyoneCenters, "ends": term.AnyoneEnds,
	"very centers": term.AnyoneVeryCenters, "very ends": term.AnyoneVeryEnds,
	"last active": term.AnyoneLastActive, "others": term.AnyoneOthers,
	"leaders": term.AnyoneLeaders, "trailers": term.AnyoneTrailers,
	"heads": term.AnyoneHeads, "sides": term.AnyoneSides,
	"boys": term.AnyoneBoys, "girls": term.AnyoneGirls,
	"beaus": term.AnyoneBeaus, "belles": term.AnyoneBelles,
	"facing across": term.AnyoneFacingAcross, "facing along": term.AnyoneFacingAlong,
	"in-facing": term.AnyoneInFacing, "out-facing": term.AnyoneOutFacing,
}

// Compile parses a designator expression like "centers and ends" or
// "not leaders" into a term.Anyone AST. The grammar for these
// expressions is small and flat (leaf names joined by and/or/xor/not),
// so a hand-written left-to-right scan suffices rather than routing
// through the full Pratt expression parser, which is reserved for
// numeric arithmetic inside definition bodies (spec.md §4.E).
func Compile(expr string) (*term.Anyone, error) {
	toks := strings.Fields(strings.ToLower(expr))
	c := &compiler{toks: toks}
	a, err := c.parseOr()
	if err != nil {
		return nil, err
	}
	if c.pos != len(c.toks) {
		return nil, explain.New(explain.DefinitionError, "unexpected trailing text in designator %q", expr)
	}
	return a, nil
}

type compiler struct {
	toks []string
	pos  int
}

func (c *compiler) peek() string {
	if c.pos < len(c.toks) {
		return c.toks[c.pos]
	}
	return ""
}

func (c *compiler) parseOr() (*term.Anyone, error) {
	left, err := c.parseAnd()
	if err != nil {
		return nil, err
	}
	for c.peek() == "or" || c.peek() == "xor" {
		op := c.toks[c.pos]
		c.pos++
		right, err := c.parseAnd()
		if err != nil {
			return nil, err
		}
		if op == "or" {
			left = left.Or(right)
		} else {
			left = left.Xor(right)
		}
	}
	return left, nil
}

func (c *compiler) parseAnd() (*term.Anyone, error) {
	left, err := c.parseUnary()
	if err != nil {
		return nil, err
	}
	for c.peek() == "and" {
		c.pos++
		right, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		left = left.And(right)
	}
	return left, nil
}

func (c *compiler) parseUnary() (*term.Anyone, error) {
	if c.peek() == "not" {
		c.pos++
		inner, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		return inner.Not(), nil
	}
	return c.parseLeaf()
}

func (c *compiler) parseLeaf() (*term.Anyone, error) {
	// Leaf names may be one or two words ("very centers"); try the
	// two-word form first since it's more specific.
	if c.pos+1 < len(c.toks) {
		two := c.toks[c.pos] + " " + c.toks[c.pos+1]
		if kind, ok := nameToKind[two]; ok {
			c.pos += 2
			return term.NewAnyoneLeaf(kind), nil
		}
	}
	if c.pos >= len(c.toks) {
		return nil, explain.New(explain.DefinitionError, "expected a dancer-set name")
	}
	one := c.toks[c.pos]
	kind, ok := nameToKind[one]
	if !ok {
		return nil, explain.New(explain.DefinitionError, "unknown dancer-set name %q", one)
	}
	c.pos++
	return term.NewAnyoneLeaf(kind), nil
}

// Closure adapts a resolved mask into the formation.Closure predicate
// active-designated spots consult during matching.
type Closure struct{ Mask uint16 }

func (c Closure) Satisfies(d *geometry.Dancer) bool { return d.Mask()&c.Mask != 0 }

// Resolve evaluates an Anyone AST against a live group, returning the
// bitmask of dancers it designates. Per spec.md's testable property 3,
// the result is always a subset of g.Mask(). gr supplies the grammar's
// centers/ends formations (original_source/dance/anyone.cc's
// context->grammar()->centersEnds()); it may be nil for leaves that
// don't need it.
func Resolve(a *term.Anyone, g *geometry.Group, lastActive uint16, gr *grammar.Grammar) uint16 {
	if a == nil {
		return g.Mask()
	}
	switch a.Kind {
	case term.AnyoneAnd:
		left := Resolve(a.Left, g, lastActive, gr)
		if left == 0 {
			return 0
		}
		return left & Resolve(a.Right, g, lastActive, gr)
	case term.AnyoneOr:
		left := Resolve(a.Left, g, lastActive, gr)
		if left == g.Mask() {
			return left
		}
		return (left | Resolve(a.Right, g, lastActive, gr)) & g.Mask()
	case term.AnyoneXor:
		return (Resolve(a.Left, g, lastActive, gr) ^ Resolve(a.Right, g, lastActive, gr)) & g.Mask()
	case term.AnyoneNot:
		return g.Mask() &^ Resolve(a.Left, g, lastActive, gr)
	case term.AnyoneDancerMask:
		return a.Mask & g.Mask()
	case term.AnyoneLastActive:
		return lastActive & g.Mask()
	case term.AnyoneOthers:
		return g.Mask() &^ lastActive
	case term.AnyoneBoys:
		return maskWhere(g, func(d *geometry.Dancer) bool { return d.Gender == geometry.Boy })
	case term.AnyoneGirls:
		return maskWhere(g, func(d *geometry.Dancer) bool { return d.Gender == geometry.Girl })
	case term.AnyoneFacingAcross:
		return maskWhere(g, func(d *geometry.Dancer) bool {
			return d.Facing == geometry.FacingLeft || d.Facing == geometry.FacingRight
		})
	case term.AnyoneFacingAlong:
		return maskWhere(g, func(d *geometry.Dancer) bool {
			return d.Facing == geometry.FacingBack || d.Facing == geometry.FacingFront
		})
	case term.AnyoneHeads:
		return maskWhere(g, func(d *geometry.Dancer) bool { return d.Couple == 1 || d.Couple == 3 })
	case term.AnyoneSides:
		return maskWhere(g, func(d *geometry.Dancer) bool { return d.Couple == 2 || d.Couple == 4 })
	case term.AnyoneLeaders, term.AnyoneTrailers:
		return resolveLeadersTrailers(a.Kind, g)
	case term.AnyoneCenters, term.AnyoneEnds, term.AnyoneVeryCenters, term.AnyoneVeryEnds:
		return resolveCentersEnds(a.Kind, g, gr)
	case term.AnyoneBeaus, term.AnyoneBelles:
		return resolveBeausBelles(a.Kind, g)
	case term.AnyoneInFacing, term.AnyoneOutFacing:
		return resolveInOutFacing(a.Kind, g)
	default:
		return resolveCentersEnds(a.Kind, g, gr)
	}
}

func maskWhere(g *geometry.Group, pred func(*geometry.Dancer) bool) uint16 {
	var m uint16
	for _, d := range g.Dancers {
		if pred(d) {
			m |= d.Mask()
		}
	}
	return m
}

// lrClass is a leaders/trailers classification result, including "no
// opinion" for the twosome table's unused facings
// (original_source/dance/anyone.cc's NONE).
type lrClass int

const (
	lrNone lrClass = iota
	lrLeaders
	lrTrailers
)

// leaderBoxFormation and leaderTwosomeFormation are synthetic tiles a
// group is partitioned into before classifying leaders/trailers. The
// original's equivalent shapes come from context->grammar()->
// leadersTrailers(), grammar data this module's retrieval pack doesn't
// carry; these reproduce its structure (a 2x2 box, falling back to a
// 1x2 twosome for what a box can't cover) so the fixed classification
// tables below still index by true tile position rather than a
// geometric heuristic.
var leaderBoxFormation = &formation.Formation{
	Name: "leader-trailer-box",
	Grid: [][]formation.Spot{
		{{Kind: formation.PosActive, Facing: geometry.FacingAny}, {Kind: formation.PosActive, Facing: geometry.FacingAny}},
		{{Kind: formation.PosActive, Facing: geometry.FacingAny}, {Kind: formation.PosActive, Facing: geometry.FacingAny}},
	},
}

var leaderTwosomeFormation = &formation.Formation{
	Name: "leader-trailer-twosome",
	Grid: [][]formation.Spot{
		{{Kind: formation.PosActive, Facing: geometry.FacingAny}, {Kind: formation.PosActive, Facing: geometry.FacingAny}},
	},
}

// boxClassification and twosomeClassification are
// original_source/dance/anyone.cc's fixed classification[4][4] and
// classification[2][4] tables: a dancer's role depends only on its
// position within the tile and which way it faces. Facing indices
// (right, back, left, front) match geometry.Facing's declared order.
var boxClassification = [4][4]lrClass{
	{lrTrailers, lrLeaders, lrLeaders, lrTrailers},
	{lrLeaders, lrLeaders, lrTrailers, lrTrailers},
	{lrTrailers, lrTrailers, lrLeaders, lrLeaders},
	{lrLeaders, lrTrailers, lrTrailers, lrLeaders},
}

var twosomeClassification = [2][4]lrClass{
	{lrTrailers, lrNone, lrLeaders, lrNone},
	{lrLeaders, lrNone, lrTrailers, lrNone},
}

// tileOrdered partitions g into tiles against the given patterns,
// preferring whichever pattern covers the most dancers at each step
// (a 4-dancer box over a 2-dancer twosome, mirroring the original's
// "must be a box" / "must be a twosome" dispatch), and returns each
// tile's dancers in spot declaration order so position-sensitive
// classification tables can index them.
func tileOrdered(g *geometry.Group, patterns []*formation.Pattern) [][]*geometry.Dancer {
	var tiles [][]*geometry.Dancer
	remaining := g.Mask()
	for remaining != 0 {
		sub := g.Derive(g.Select(remaining), geometry.Identity())
		var best []*geometry.Dancer
		for _, p := range patterns {
			matched, ok := formation.MatchOrderedSome(p, sub, formation.AlwaysSatisfies{})
			if !ok || len(matched) == 0 {
				continue
			}
			if len(matched) > len(best) {
				best = matched
			}
		}
		if best == nil {
			break
		}
		var mask uint16
		for _, d := range best {
			mask |= d.Mask()
		}
		tiles = append(tiles, best)
		remaining &^= mask
	}
	return tiles
}

// resolveLeadersTrailers tiles the group into boxes-of-four (falling
// back to twosomes) and classifies each tile's dancers by the fixed
// position/facing tables above.
func resolveLeadersTrailers(kind term.AnyoneKind, g *geometry.Group) uint16 {
	want := lrLeaders
	if kind == term.AnyoneTrailers {
		want = lrTrailers
	}
	var m uint16
	for _, tile := range tileOrdered(g, []*formation.Pattern{
		{Formation: leaderBoxFormation},
		{Formation: leaderTwosomeFormation},
	}) {
		switch len(tile) {
		case 4:
			for j, d := range tile {
				if boxClassification[j][int(d.Facing)] == want {
					m |= d.Mask()
				}
			}
		case 2:
			for j, d := range tile {
				if twosomeClassification[j][int(d.Facing)] == want {
					m |= d.Mask()
				}
			}
		}
	}
	return m
}

func facingDelta(f geometry.Facing) (dx, dy int) {
	switch f {
	case geometry.FacingRight:
		return 2, 0
	case geometry.FacingLeft:
		return -2, 0
	case geometry.FacingBack:
		return 0, 2
	case geometry.FacingFront:
		return 0, -2
	default:
		return 0, 0
	}
}

// posForKind and altPosForKind are original_source/dance/anyone.cc's
// pos[]/altPos[] tables: a plain centers/ends request also collects a
// formation's very-centers/very-ends-tagged spots, alongside any plain
// centers/ends spots; the very-* kinds have no fallback.
var posForKind = map[term.AnyoneKind]formation.PositionKind{
	term.AnyoneCenters:     formation.PosCenter,
	term.AnyoneEnds:        formation.PosEnd,
	term.AnyoneVeryCenters: formation.PosVeryCenter,
	term.AnyoneVeryEnds:    formation.PosVeryEnd,
}

var altPosForKind = map[term.AnyoneKind]formation.PositionKind{
	term.AnyoneCenters: formation.PosVeryCenter,
	term.AnyoneEnds:    formation.PosVeryEnd,
}

// resolveCentersEnds matches the group against every centers/ends
// formation the grammar defines, taking the first one that covers the
// whole group and extracting the dancers tagged at the requested
// position kind (original_source/dance/anyone.cc's VERY_CENTERS/
// VERY_ENDS/CENTERS/ENDS case, via Formation::extract).
func resolveCentersEnds(kind term.AnyoneKind, g *geometry.Group, gr *grammar.Grammar) uint16 {
	if gr == nil || len(g.Dancers) == 0 {
		return 0
	}
	pos, ok := posForKind[kind]
	if !ok {
		return 0
	}
	altPos, hasAlt := altPosForKind[kind]
	for _, f := range gr.CentersEndsFormations() {
		pm, ok := formation.MatchPositions(&formation.Pattern{Formation: f}, g, formation.AlwaysSatisfies{})
		if !ok {
			continue
		}
		m := pm[pos]
		if hasAlt {
			m |= pm[altPos]
		}
		return m
	}
	return 0
}

// resolveBeausBelles tiles the group into facing-pairs (the same
// twosome shape resolveLeadersTrailers falls back to) and keeps the
// opposite-gender pairs, per original_source/dance/anyone.cc's
// partnershipOp; beaus are the boy of each such pair, belles the girl.
func resolveBeausBelles(kind term.AnyoneKind, g *geometry.Group) uint16 {
	want := geometry.Boy
	if kind == term.AnyoneBelles {
		want = geometry.Girl
	}
	var m uint16
	for _, tile := range tileOrdered(g, []*formation.Pattern{{Formation: leaderTwosomeFormation}}) {
		if len(tile) != 2 || tile[0].Gender == tile[1].Gender {
			continue
		}
		for _, d := range tile {
			if d.Gender == want {
				m |= d.Mask()
			}
		}
	}
	return m
}

func resolveInOutFacing(kind term.AnyoneKind, g *geometry.Group) uint16 {
	minX, minY, maxX, maxY := g.BoundingBox()
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	var m uint16
	for _, d := range g.Dancers {
		dx, dy := facingDelta(d.Facing)
		// Dot product of the facing direction with the vector toward the
		// group's center: positive means facing brings the dancer closer.
		towardCenter := dx*(cx-d.X)+dy*(cy-d.Y) > 0
		if (kind == term.AnyoneInFacing) == towardCenter {
			m |= d.Mask()
		}
	}
	return m
}

// ResolveForMatching builds a formation.Closure from a resolved mask,
// for use by Plan construction when a Part's action designates a
// sub-group via an active-designated/active-nondesignated spot.
func ResolveForMatching(a *term.Anyone, g *geometry.Group, lastActive uint16, gr *grammar.Grammar) formation.Closure {
	return Closure{Mask: Resolve(a, g, lastActive, gr)}
}
