// Package geometry implements the positioned dancer/group model of
// spec.md §3 and §4.B: dancers on a half-unit grid, groups with a
// geometry tag and transform chain, and the plane-sweep breathing step.
//
// Grounded on original_source/dance/dance.h's Dancer/Group/Transform
// classes. The coordinate-generation shape for grid/ring/hex layouts is
// additionally modeled on katalvlaran/lvlath's builder package
// (impl_grid.go, impl_cycle.go, impl_hexagram.go), which is style
// reference only — not a module dependency (see DESIGN.md).
package geometry

import "fmt"

// MaxDancers bounds the stable dancer-index space: every dancer (real or
// phantom) occupies a unique bit 0..MaxDancers-1 of a 12-bit mask.
const MaxDancers = 12

// Facing is the direction a dancer is oriented, including the three
// pattern-matching wildcards (Head/Side/Any) used by Formation spots.
type Facing int

const (
	FacingRight Facing = iota
	FacingBack
	FacingLeft
	FacingFront
	FacingHead // wildcard: matches Right or Left (vertical-column dancers)
	FacingSide // wildcard: matches Back or Front (horizontal-row dancers)
	FacingAny  // wildcard: matches any real facing
)

func (f Facing) String() string {
	names := [...]string{"right", "back", "left", "front", "head", "side", "any"}
	if int(f) < len(names) {
		return names[f]
	}
	return "unknown-facing"
}

// IsWildcard reports whether f is one of the three pattern-match
// wildcards rather than a concrete facing.
func (f Facing) IsWildcard() bool { return f == FacingHead || f == FacingSide || f == FacingAny }

// Matches reports whether a concrete facing `actual` satisfies spot facing
// `f` (which may be a wildcard).
func (f Facing) Matches(actual Facing) bool {
	switch f {
	case FacingAny:
		return true
	case FacingHead:
		return actual == FacingRight || actual == FacingLeft
	case FacingSide:
		return actual == FacingBack || actual == FacingFront
	default:
		return f == actual
	}
}

// RotateQuarterTurns rotates a concrete facing clockwise by n quarter
// turns (n may be negative). Wildcards rotate according to spec.md
// §4.C's symmetry rule: right→back→left→front→right, head↔side, any↔any.
func (f Facing) RotateQuarterTurns(n int) Facing {
	switch f {
	case FacingRight, FacingBack, FacingLeft, FacingFront:
		return Facing((int(f) + n) % 4 + 4) % 4
	case FacingHead:
		if n%2 != 0 {
			return FacingSide
		}
		return FacingHead
	case FacingSide:
		if n%2 != 0 {
			return FacingHead
		}
		return FacingSide
	default:
		return FacingAny
	}
}

func (f Facing) Mirror() Facing {
	switch f {
	case FacingRight:
		return FacingLeft
	case FacingLeft:
		return FacingRight
	case FacingHead:
		return FacingHead
	default:
		return f
	}
}

// Gender distinguishes boy/girl roles; phantoms are Unspecified.
type Gender int

const (
	Girl Gender = iota
	Boy
	UnspecifiedGender
)

func (g Gender) String() string {
	switch g {
	case Girl:
		return "girl"
	case Boy:
		return "boy"
	default:
		return "unspecified"
	}
}

// Rotation tags a Group's orientation relative to the absolute (home)
// frame. The four arbitrary-angle marks (Rotated1/Rotated5 and their
// partners) record that a group has been rotated by a non-90-degree
// angle and therefore has no home spots, per original_source's Rotation
// enum comment.
type Rotation int

const (
	Unrotated Rotation = iota
	Rotated1           // arbitrary angle (no home spots)
	Rotated2           // 90 degrees
	Rotated3           // arbitrary angle
	Diagonal           // 45 degrees
	Rotated5           // arbitrary angle
	Rotated6           // 180/270-family arbitrary angle
	Rotated7           // arbitrary angle
)

func dancerIndex(couple int, g Gender) int {
	return (couple-1)*2 + int(g)
}

// CoupleOf and GenderOf invert dancerIndex for real (couple 1..6) dancers.
func CoupleOf(index int) int { return index/2 + 1 }
func GenderOf(index int) Gender {
	if index%2 == 0 {
		return Girl
	}
	return Boy
}

// Dancer is a single positioned participant. Coordinates are stored in
// the doubled half-unit grid described in spec.md §4.B: a dancer at the
// nominal half-unit point (0, 0.5) is stored as (0, 1).
type Dancer struct {
	X, Y    int
	Facing  Facing
	Gender  Gender
	Couple  int // 0 = phantom, 1-8 (7/8 reserved for tandem/siamese composites)
	index   int // stable bit position, 0..MaxDancers-1
}

// NewDancer builds a real dancer (couple 1..6) with an automatically
// derived stable index.
func NewDancer(x, y int, facing Facing, gender Gender, couple int) *Dancer {
	return &Dancer{X: x, Y: y, Facing: facing, Gender: gender, Couple: couple, index: dancerIndex(couple, gender)}
}

// NewPhantom builds a synthetic couple-0 dancer occupying explicit bit
// `index` in the group's mask.
func NewPhantom(x, y int, facing Facing, index int) *Dancer {
	return &Dancer{X: x, Y: y, Facing: facing, Gender: UnspecifiedGender, Couple: 0, index: index}
}

func (d *Dancer) Index() int      { return d.index }
func (d *Dancer) Mask() uint16    { return 1 << uint(d.index) }
func (d *Dancer) IsPhantom() bool { return d.Couple == 0 }

func (d *Dancer) String() string {
	return fmt.Sprintf("dancer#%d(%d,%d,%s,%s,couple=%d)", d.index, d.X, d.Y, d.Facing, d.Gender, d.Couple)
}

// Clone returns a copy, used when deriving a new Group from matched
// dancers so a Group never shares *Dancer pointers with its base.
func (d *Dancer) Clone() *Dancer {
	cp := *d
	return &cp
}

// CloneAt returns a copy repositioned to (x, y, facing), preserving
// identity (gender/couple/index) — the shape of every primitive motion
// (forward/veer/arc/face) that produces a new Dancer from an old one.
func (d *Dancer) CloneAt(x, y int, facing Facing) *Dancer {
	cp := *d
	cp.X, cp.Y, cp.Facing = x, y, facing
	return &cp
}

// AdjacentX/AdjacentY report whether two dancers are one half-unit apart
// along x/y respectively (used by leader/trailer and beau/belle tiling).
func (d *Dancer) AdjacentX(o *Dancer) bool {
	diff := d.X - o.X
	return diff == 2 || diff == -2
}

func (d *Dancer) AdjacentY(o *Dancer) bool {
	diff := d.Y - o.Y
	return diff == 2 || diff == -2
}
