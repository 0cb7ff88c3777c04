package geometry

import "sort"

// Tag classifies the coordinate system a Group's dancers were laid out
// in, per spec.md §3's dance-type selection: square-dance grid geometry,
// the round-dance ring geometry (x wraps modulo 16), or hexagon-based
// six-couple geometry.
type Tag int

const (
	TagGrid Tag = iota
	TagRing
	TagHex
)

func (t Tag) String() string {
	switch t {
	case TagGrid:
		return "grid"
	case TagRing:
		return "ring"
	case TagHex:
		return "hex"
	default:
		return "unknown-geometry"
	}
}

// ringModulus is the wraparound period of ring-geometry x-coordinates:
// eight dancers spaced two half-units apart around the circle.
const ringModulus = 16

// Group is an ordered, positioned set of dancers sharing one geometry.
// Per spec.md §4.B, a Group derived from a base (by a call's motion) may
// keep a weak reference to that base plus the Transform that produced
// it, so history can be walked without dancers owning their own
// ancestry.
type Group struct {
	Dancers []*Dancer
	Tag     Tag
	Rot     Rotation
	Base    *Group // nil for a grammar-level root group
	FromBase Transform
}

// NewGroup builds a group from dancers, normalizing ring x-coordinates
// and sorting into canonical (y asc, x asc) order — the order spec.md
// §4.B requires for deterministic designator resolution and diagram
// rendering.
func NewGroup(tag Tag, rot Rotation, dancers []*Dancer) *Group {
	g := &Group{Tag: tag, Rot: rot, Dancers: dancers}
	if tag == TagRing {
		g.normalizeRing()
	}
	g.sortCanonical()
	return g
}

// Derive builds a new Group of dancers produced by applying a motion
// (not a coordinate Transform — that's reserved for whole-group
// reorientation) to this group's members, recording parentage for
// history/breathing lookups.
func (g *Group) Derive(dancers []*Dancer, t Transform) *Group {
	ng := &Group{Tag: g.Tag, Rot: g.Rot, Dancers: dancers, Base: g, FromBase: t}
	if g.Tag == TagRing {
		ng.normalizeRing()
	}
	ng.sortCanonical()
	return ng
}

func (g *Group) normalizeRing() {
	for _, d := range g.Dancers {
		d.X = ((d.X % ringModulus) + ringModulus) % ringModulus
	}
}

func (g *Group) sortCanonical() {
	sort.SliceStable(g.Dancers, func(i, j int) bool {
		a, b := g.Dancers[i], g.Dancers[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// Mask returns the bitmask of every dancer index present in the group.
func (g *Group) Mask() uint16 {
	var m uint16
	for _, d := range g.Dancers {
		m |= d.Mask()
	}
	return m
}

// Select returns the dancers whose index bit is set in mask, in
// canonical order.
func (g *Group) Select(mask uint16) []*Dancer {
	out := make([]*Dancer, 0, len(g.Dancers))
	for _, d := range g.Dancers {
		if d.Mask()&mask != 0 {
			out = append(out, d)
		}
	}
	return out
}

// ByIndex returns the dancer with the given stable index, or nil.
func (g *Group) ByIndex(index int) *Dancer {
	for _, d := range g.Dancers {
		if d.Index() == index {
			return d
		}
	}
	return nil
}

// BoundingBox returns the minimum/maximum coordinates spanned by the
// group's dancers.
func (g *Group) BoundingBox() (minX, minY, maxX, maxY int) {
	if len(g.Dancers) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = g.Dancers[0].X, g.Dancers[0].Y
	maxX, maxY = minX, minY
	for _, d := range g.Dancers[1:] {
		if d.X < minX {
			minX = d.X
		}
		if d.X > maxX {
			maxX = d.X
		}
		if d.Y < minY {
			minY = d.Y
		}
		if d.Y > maxY {
			maxY = d.Y
		}
	}
	return
}

// WithoutPhantoms returns a Group containing only real dancers, used
// before rendering a final result (spec.md §4.B: phantoms never appear
// in output).
func (g *Group) WithoutPhantoms() *Group {
	kept := make([]*Dancer, 0, len(g.Dancers))
	for _, d := range g.Dancers {
		if !d.IsPhantom() {
			kept = append(kept, d.Clone())
		}
	}
	return NewGroup(g.Tag, g.Rot, kept)
}

// At returns the dancer occupying (x, y), if any.
func (g *Group) At(x, y int) *Dancer {
	for _, d := range g.Dancers {
		if d.X == x && d.Y == y {
			return d
		}
	}
	return nil
}
