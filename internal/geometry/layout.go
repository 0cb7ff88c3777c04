package geometry

// Layout builders produce the canonical "squared set"/"ring"/"hexagon
// set" starting Groups a session selects via its dance type (spec.md
// §9's Context). The coordinate-generation shape (fixed radius, couples
// placed at equal angular/linear spacing) follows the same idea as
// katalvlaran/lvlath's builder.Grid/Cycle/Hexagram constructors — build
// the full vertex set first, wire adjacency/position second — though
// that package's actual graph types are not reused here; it is named in
// DESIGN.md as style grounding only.

// SquaredSet returns the standard four-couple starting formation: couples
// 1 and 3 on the head/foot ends, 2 and 4 on the sides, all facing in.
func SquaredSet() *Group {
	dancers := []*Dancer{
		NewDancer(0, -6, FacingBack, Girl, 1),
		NewDancer(2, -6, FacingBack, Boy, 1),
		NewDancer(6, 0, FacingLeft, Girl, 2),
		NewDancer(6, 2, FacingLeft, Boy, 2),
		NewDancer(2, 6, FacingFront, Girl, 3),
		NewDancer(0, 6, FacingFront, Boy, 3),
		NewDancer(-6, 2, FacingRight, Girl, 4),
		NewDancer(-6, 0, FacingRight, Boy, 4),
	}
	return NewGroup(TagGrid, Unrotated, dancers)
}

// RingOfFour returns a single-four ring (one quarter of a squared set),
// used by calls whose definitions are scoped to a four.
func RingOfFour() *Group {
	dancers := []*Dancer{
		NewDancer(0, -2, FacingBack, Girl, 1),
		NewDancer(2, 0, FacingLeft, Boy, 1),
		NewDancer(0, 2, FacingFront, Girl, 2),
		NewDancer(-2, 0, FacingRight, Boy, 2),
	}
	return NewGroup(TagGrid, Unrotated, dancers)
}

// Ring returns an eight-dancer circular formation laid out on the
// 16-unit modular ring geometry.
func Ring() *Group {
	dancers := make([]*Dancer, 0, 8)
	for couple := 1; couple <= 4; couple++ {
		base := (couple - 1) * 4
		dancers = append(dancers,
			NewDancer(base, 0, FacingRight, Girl, couple),
			NewDancer(base+2, 0, FacingRight, Boy, couple),
		)
	}
	return NewGroup(TagRing, Unrotated, dancers)
}

// Thar returns the eight-dancer allemande thar star: boys on an inner
// ring with right hands joined, girls on an outer ring right behind
// their own boy, both rings sharing the boys' tangential facing so the
// whole star turns as one body.
func Thar() *Group {
	dancers := make([]*Dancer, 0, 8)
	for couple := 1; couple <= 4; couple++ {
		base := (couple - 1) * 4
		dancers = append(dancers,
			NewDancer(base, 0, FacingRight, Boy, couple),
			NewDancer(base, 2, FacingRight, Girl, couple),
		)
	}
	return NewGroup(TagRing, Unrotated, dancers)
}

// HexagonSet returns the six-couple starting formation used by hexagon
// (big-set) choreography, one couple per side of a regular hexagon
// facing the center.
func HexagonSet() *Group {
	// Hexagon vertices at unit distance on a doubled grid, couples
	// numbered clockwise from the head.
	type vertex struct{ x, y int; facing Facing }
	verts := []vertex{
		{0, -8, FacingBack},
		{7, -4, FacingBack},
		{7, 4, FacingLeft},
		{0, 8, FacingFront},
		{-7, 4, FacingRight},
		{-7, -4, FacingRight},
	}
	dancers := make([]*Dancer, 0, 12)
	for i, v := range verts {
		couple := i + 1
		dancers = append(dancers,
			NewDancer(v.x-1, v.y, v.facing, Girl, couple),
			NewDancer(v.x+1, v.y, v.facing, Boy, couple),
		)
	}
	return NewGroup(TagHex, Unrotated, dancers)
}
