// Package engine implements spec.md components F and G together: the
// closed primitive dispatch table and the Plan/Step/Tile/Interval/Motion
// builder. The two are merged into one package because they are
// mutually recursive in original_source/dance/dance.h (a primitive like
// $if or $any_who_can constructs a nested Plan, and Plan::construct
// dispatches back into primitives) — splitting them would force an
// import cycle that the tagged-union Term design in internal/term
// already had to engineer around once; doing it again here for no
// benefit would be working against Go's grain rather than with it.
package engine

import "github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"

// MotionKind distinguishes the four per-dancer trajectory segment
// shapes spec.md §3 names for an Interval's Motions.
type MotionKind int

const (
	MotionForward MotionKind = iota
	MotionVeer
	MotionArc
	MotionFace
)

func (k MotionKind) String() string {
	switch k {
	case MotionForward:
		return "forward"
	case MotionVeer:
		return "veer"
	case MotionArc:
		return "arc"
	case MotionFace:
		return "face"
	default:
		return "unknown-motion"
	}
}

// Motion describes one dancer's trajectory segment within an Interval.
type Motion struct {
	DancerIndex          int
	Kind                 MotionKind
	FromX, FromY         int
	FromFacing           geometry.Facing
	ToX, ToY             int
	ToFacing             geometry.Facing
	PivotX, PivotY       int // meaningful for MotionArc
}

// Interval is a timed container of Motions with a beat duration (a
// Fraction's whole/num/denom spelling is used directly as the beat
// count rather than introducing a separate duration type).
type Interval struct {
	Beats   int // in half-beats, so quarter-beat arcs stay integral
	Motions []Motion
}

func NewInterval(beats int) *Interval { return &Interval{Beats: beats} }

func (iv *Interval) Add(m Motion) { iv.Motions = append(iv.Motions, m) }

// Merge appends another interval's motions, used when StartTogetherStep
// reassembles its sibling branches' intervals into one, per spec.md
// §5's "two siblings executed sequentially whose intervals are merged."
func (iv *Interval) Merge(o *Interval) {
	if o.Beats > iv.Beats {
		iv.Beats = o.Beats
	}
	iv.Motions = append(iv.Motions, o.Motions...)
}
