package geometry

import "sort"

// Breathe implements spec.md §4.B's plane-sweep normalization: after a
// call's motions are applied, dancers may overlap (multiple dancers at
// one spot) or leave unnatural gaps (empty lanes where dancers used to
// stand). Breathing sweeps each axis independently, collapsing empty
// lanes and spreading overlapping dancers apart by the minimum spacing,
// while preserving each dancer's rank along that axis and re-centering
// the whole formation about the origin.
//
// Primitives such as $forward and $back_out call Breathe on their own
// result group; $face and $roll leave coordinates as they are.
// $dont_breathe (spec §5's primitive list) marks the Steps of its inner
// call DontBreathe but does not skip this function: the inner call's
// primitives have already breathed their results.
func Breathe(g *Group) *Group {
	if len(g.Dancers) == 0 {
		return g
	}
	dancers := make([]*Dancer, len(g.Dancers))
	for i, d := range g.Dancers {
		dancers[i] = d.Clone()
	}
	breatheAxis(dancers, axisX)
	breatheAxis(dancers, axisY)
	return NewGroup(g.Tag, g.Rot, dancers)
}

type axis int

const (
	axisX axis = iota
	axisY
)

func coord(d *Dancer, a axis) int {
	if a == axisX {
		return d.X
	}
	return d.Y
}

func setCoord(d *Dancer, a axis, v int) {
	if a == axisX {
		d.X = v
	} else {
		d.Y = v
	}
}

// breatheAxis collapses gaps and overlaps along one axis: dancers are
// grouped into lanes by their current coordinate, lanes are sorted, and
// each lane is reassigned a coordinate exactly two units from its
// neighbor, then the whole sequence is re-centered so it spans
// symmetrically about zero (the minimum-spacing, rank-preserving sweep
// spec.md describes).
func breatheAxis(dancers []*Dancer, a axis) {
	lanes := map[int][]*Dancer{}
	var coords []int
	for _, d := range dancers {
		c := coord(d, a)
		if _, ok := lanes[c]; !ok {
			coords = append(coords, c)
		}
		lanes[c] = append(lanes[c], d)
	}
	if len(coords) <= 1 {
		return
	}
	sort.Ints(coords)
	n := len(coords)
	newCoords := make([]int, n)
	for i := range newCoords {
		newCoords[i] = 2 * i
	}
	// Re-center about zero: shift so the span is symmetric.
	shift := newCoords[n-1] / 2
	for i := range newCoords {
		newCoords[i] -= shift
	}
	for i, c := range coords {
		for _, d := range lanes[c] {
			setCoord(d, a, newCoords[i])
		}
	}
}
