package formation

import "github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"

// Closure supplies the per-dancer predicate active-designated/
// active-nondesignated spots consult, per spec.md §4.C: "does this
// dancer satisfy the current call's designator?"
type Closure interface {
	Satisfies(d *geometry.Dancer) bool
}

// AlwaysSatisfies is the trivial Closure used when a pattern has no
// parameter list, per spec.md's Pattern definition ("a pattern may
// discriminate designated vs non-designated dancers when its parameter
// list is non-empty").
type AlwaysSatisfies struct{}

func (AlwaysSatisfies) Satisfies(*geometry.Dancer) bool { return true }

// Pattern pairs a Formation with the parameter list spec.md's Pattern
// type carries; an empty Params means active-designated/
// active-nondesignated spots are not distinguished (treated as plain
// active).
type Pattern struct {
	Formation *Formation
	Params    []string
}

type placedSpot struct {
	dx, dy int
	spot   Spot
}

// relativeSpots returns every spot in the formation with coordinates
// relative to its reading-order anchor (the point used to align the
// formation against a candidate dancer).
func (f *Formation) relativeSpots() (spots []placedSpot, ok bool) {
	ar, ac, ok := f.anchor()
	if !ok {
		return nil, false
	}
	ax, ay := f.toPoint(ar, ac)
	for r, line := range f.Grid {
		for c, s := range line {
			if !s.significant() {
				continue
			}
			x, y := f.toPoint(r, c)
			spots = append(spots, placedSpot{dx: x - ax, dy: y - ay, spot: s})
		}
	}
	return spots, true
}

// rotationStep returns the Transform for rotation index k out of
// RotationalSymmetry() distinct orientations spec.md §4.C requires
// Match to enumerate.
func (f *Formation) rotationStep(k int) geometry.Transform {
	sym := f.RotationalSymmetry()
	quarterTurns := k * (4 / sym)
	switch quarterTurns % 4 {
	case 1:
		return geometry.Rotate90()
	case 2:
		return geometry.Rotate180()
	case 3:
		return geometry.Rotate270()
	default:
		return geometry.Identity()
	}
}

func spotAccepts(s Spot, d *geometry.Dancer, closure Closure) bool {
	if !s.Facing.Matches(d.Facing) {
		return false
	}
	switch s.Kind {
	case PosActiveBoy:
		return d.Gender == geometry.Boy
	case PosActiveGirl:
		return d.Gender == geometry.Girl
	case PosActiveDesignated:
		return closure.Satisfies(d)
	case PosActiveNonDesignated:
		return !closure.Satisfies(d)
	default:
		return true
	}
}

// tryOrientation attempts one (rotation, anchor-candidate) combination,
// returning the matched dancers (in spot order) and the transform
// applied, or ok=false.
func tryOrientation(spots []placedSpot, rot geometry.Transform, g *geometry.Group, anchorDancer *geometry.Dancer, closure Closure, requireFullCoverage bool) ([]*geometry.Dancer, geometry.Transform, bool) {
	// Find which relative spot the anchor dancer could occupy: try each
	// significant spot as the anchor in turn, since the formation's
	// "first in reading order" spot need not be the one aligned to this
	// candidate — matching must allow any significant spot to anchor.
	for _, anchorSpot := range spots {
		rx, ry := rot.Apply(anchorSpot.dx, anchorSpot.dy)
		tx, ty := anchorDancer.X-rx, anchorDancer.Y-ry
		full := Translate(rot, tx, ty)
		matched := make([]*geometry.Dancer, 0, len(spots))
		seen := uint16(0)
		failed := false
		for _, ps := range spots {
			px, py := full.Apply(ps.dx, ps.dy)
			d := g.At(px, py)
			if d == nil {
				failed = true
				break
			}
			rf := full.ApplyFacing(ps.spot.Facing)
			adjustedSpot := ps.spot
			adjustedSpot.Facing = rf
			if !spotAccepts(adjustedSpot, d, closure) {
				failed = true
				break
			}
			if ps.spot.Kind.IsActive() {
				matched = append(matched, d)
				seen |= d.Mask()
			}
		}
		if failed {
			continue
		}
		if requireFullCoverage && seen != g.Mask() {
			continue
		}
		return matched, full, true
	}
	return nil, geometry.Transform{}, false
}

// PositionMatch groups a matched pattern's active-spot dancers by the
// PositionKind of the spot that matched them, mirroring
// original_source/dance/formation.cc's Formation::extract: a dancer
// lands under every kind its spot satisfied.
type PositionMatch map[PositionKind]uint16

// MatchPositions is Match's sibling for position-discriminating
// formations (centers/ends and their "very" variants): it requires the
// same full-group coverage but, instead of returning the matched
// dancers as a flat group, buckets them by the PositionKind of the spot
// each occupied.
func MatchPositions(p *Pattern, g *geometry.Group, closure Closure) (PositionMatch, bool) {
	if closure == nil {
		closure = AlwaysSatisfies{}
	}
	spots, ok := p.Formation.relativeSpots()
	if !ok || len(g.Dancers) == 0 {
		return nil, false
	}
	sym := p.Formation.RotationalSymmetry()
	for _, candidate := range g.Dancers {
		for k := 0; k < sym; k++ {
			rot := p.Formation.rotationStep(k)
			pm, seen, ok := tryOrientationPositions(spots, rot, g, candidate, closure)
			if !ok || seen != g.Mask() {
				continue
			}
			return pm, true
		}
	}
	return nil, false
}

func tryOrientationPositions(spots []placedSpot, rot geometry.Transform, g *geometry.Group, anchorDancer *geometry.Dancer, closure Closure) (PositionMatch, uint16, bool) {
	for _, anchorSpot := range spots {
		rx, ry := rot.Apply(anchorSpot.dx, anchorSpot.dy)
		tx, ty := anchorDancer.X-rx, anchorDancer.Y-ry
		full := Translate(rot, tx, ty)
		pm := PositionMatch{}
		var seen uint16
		failed := false
		for _, ps := range spots {
			px, py := full.Apply(ps.dx, ps.dy)
			d := g.At(px, py)
			if d == nil {
				failed = true
				break
			}
			rf := full.ApplyFacing(ps.spot.Facing)
			adjustedSpot := ps.spot
			adjustedSpot.Facing = rf
			if !spotAccepts(adjustedSpot, d, closure) {
				failed = true
				break
			}
			if ps.spot.Kind.IsActive() {
				pm[ps.spot.Kind] |= d.Mask()
				seen |= d.Mask()
			}
		}
		if failed {
			continue
		}
		return pm, seen, true
	}
	return nil, 0, false
}

// MatchOrderedSome is MatchSome's sibling when match order matters: it
// returns the matched dancers in spot declaration order rather than a
// flat mask, for patterns like a leaders/trailers tile whose
// classification depends on each dancer's position within it
// (original_source/dance/anyone.cc's fixed classification tables).
func MatchOrderedSome(p *Pattern, g *geometry.Group, closure Closure) ([]*geometry.Dancer, bool) {
	if closure == nil {
		closure = AlwaysSatisfies{}
	}
	spots, ok := p.Formation.relativeSpots()
	if !ok || len(g.Dancers) == 0 {
		return nil, false
	}
	sym := p.Formation.RotationalSymmetry()
	for _, candidate := range g.Dancers {
		for k := 0; k < sym; k++ {
			rot := p.Formation.rotationStep(k)
			matched, _, ok := tryOrientation(spots, rot, g, candidate, closure, false)
			if !ok {
				continue
			}
			return matched, true
		}
	}
	return nil, false
}

// Translate composes a rotation with a translation.
func Translate(rot geometry.Transform, tx, ty int) geometry.Transform {
	rot.Tx += tx
	rot.Ty += ty
	return rot
}

// Match implements spec.md's `match`: the whole group must be covered by
// the formation's non-inactive significant spots. Returns the derived
// group of active-spot dancers (carrying the transform that produced
// it) or ok=false.
func Match(p *Pattern, g *geometry.Group, closure Closure) (*geometry.Group, bool) {
	if closure == nil {
		closure = AlwaysSatisfies{}
	}
	spots, ok := p.Formation.relativeSpots()
	if !ok || len(g.Dancers) == 0 {
		return nil, false
	}
	sym := p.Formation.RotationalSymmetry()
	for _, candidate := range g.Dancers {
		for k := 0; k < sym; k++ {
			rot := p.Formation.rotationStep(k)
			matched, transform, ok := tryOrientation(spots, rot, g, candidate, closure, true)
			if !ok {
				continue
			}
			derived := g.Derive(cloneDancers(matched), transform)
			return derived, true
		}
	}
	return nil, false
}

// MatchSome implements spec.md's `matchSome`: like Match but does not
// require full group coverage, returning the matched bitmask for use in
// tiling searches.
func MatchSome(p *Pattern, g *geometry.Group, closure Closure) (uint16, bool) {
	if closure == nil {
		closure = AlwaysSatisfies{}
	}
	spots, ok := p.Formation.relativeSpots()
	if !ok || len(g.Dancers) == 0 {
		return 0, false
	}
	sym := p.Formation.RotationalSymmetry()
	for _, candidate := range g.Dancers {
		for k := 0; k < sym; k++ {
			rot := p.Formation.rotationStep(k)
			matched, _, ok := tryOrientation(spots, rot, g, candidate, closure, false)
			if !ok {
				continue
			}
			var mask uint16
			for _, d := range matched {
				mask |= d.Mask()
			}
			return mask, true
		}
	}
	return 0, false
}

// MatchWithPhantoms fills empty positions with synthetic phantom
// dancers and matches against the augmented set, succeeding only if at
// least one real dancer participates (spec.md §4.C).
func MatchWithPhantoms(p *Pattern, g *geometry.Group, closure Closure) (*geometry.Group, bool) {
	if closure == nil {
		closure = AlwaysSatisfies{}
	}
	spots, ok := p.Formation.relativeSpots()
	if !ok {
		return nil, false
	}
	sym := p.Formation.RotationalSymmetry()
	nextPhantomIndex := nextFreeIndex(g.Mask())
	for _, candidate := range g.Dancers {
		for k := 0; k < sym; k++ {
			rot := p.Formation.rotationStep(k)
			for _, anchorSpot := range spots {
				rx, ry := rot.Apply(anchorSpot.dx, anchorSpot.dy)
				tx, ty := candidate.X-rx, candidate.Y-ry
				full := Translate(rot, tx, ty)
				matched := make([]*geometry.Dancer, 0, len(spots))
				phantomIdx := nextPhantomIndex
				realCount := 0
				failed := false
				for _, ps := range spots {
					px, py := full.Apply(ps.dx, ps.dy)
					rf := full.ApplyFacing(ps.spot.Facing)
					d := g.At(px, py)
					if d == nil {
						if !ps.spot.Kind.IsActive() {
							continue
						}
						if phantomIdx >= geometry.MaxDancers {
							failed = true
							break
						}
						d = geometry.NewPhantom(px, py, rf, phantomIdx)
						phantomIdx++
					} else {
						adjustedSpot := ps.spot
						adjustedSpot.Facing = rf
						if !spotAccepts(adjustedSpot, d, closure) {
							failed = true
							break
						}
						realCount++
					}
					if ps.spot.Kind.IsActive() {
						matched = append(matched, d)
					}
				}
				if failed || realCount == 0 {
					continue
				}
				derived := g.Derive(cloneDancers(matched), full)
				return derived, true
			}
		}
	}
	return nil, false
}

func cloneDancers(ds []*geometry.Dancer) []*geometry.Dancer {
	out := make([]*geometry.Dancer, len(ds))
	for i, d := range ds {
		out[i] = d.Clone()
	}
	return out
}

func nextFreeIndex(mask uint16) int {
	for i := 0; i < geometry.MaxDancers; i++ {
		if mask&(1<<uint(i)) == 0 {
			return i
		}
	}
	return geometry.MaxDancers
}
