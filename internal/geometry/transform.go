package geometry

// Transform is a 2x3 integer affine matrix over the doubled half-unit
// grid: (x', y') = (a*x + b*y, c*x + d*y) + (tx, ty). Restricting to the
// eight presets below keeps every coordinate exactly representable in
// integers, avoiding the floating-point rotation matrices the original
// C++ used — grounded on original_source/dance/dance.h's Transform class
// but reshaped to Go's preference for small exact value types over
// general matrices.
type Transform struct {
	A, B, C, D int
	Tx, Ty     int
}

// Identity returns the no-op transform.
func Identity() Transform { return Transform{A: 1, D: 1} }

// Rotate90/180/270 build pure rotations about the origin (no
// translation); callers compose with a translation to rotate about an
// arbitrary pivot, via Transform.About.
func Rotate90() Transform  { return Transform{A: 0, B: -1, C: 1, D: 0} }
func Rotate180() Transform { return Transform{A: -1, B: 0, C: 0, D: -1} }
func Rotate270() Transform { return Transform{A: 0, B: 1, C: -1, D: 0} }

// MirrorVertical reflects across the y-axis (flips x), the transform
// used for left/right call symmetry.
func MirrorVertical() Transform { return Transform{A: -1, B: 0, C: 0, D: 1} }

// MirrorHorizontal reflects across the x-axis (flips y).
func MirrorHorizontal() Transform { return Transform{A: 1, B: 0, C: 0, D: -1} }

// Translate builds a pure translation.
func Translate(dx, dy int) Transform { return Transform{A: 1, D: 1, Tx: dx, Ty: dy} }

// Compose returns the transform equivalent to applying t first, then o
// (o ∘ t in function-composition order).
func (t Transform) Compose(o Transform) Transform {
	return Transform{
		A: o.A*t.A + o.B*t.C, B: o.A*t.B + o.B*t.D,
		C: o.C*t.A + o.D*t.C, D: o.C*t.B + o.D*t.D,
		Tx: o.A*t.Tx + o.B*t.Ty + o.Tx,
		Ty: o.C*t.Tx + o.D*t.Ty + o.Ty,
	}
}

// About returns a transform that applies t pivoted at (px, py) rather
// than the origin: translate so the pivot is at 0, apply t, translate
// back.
func (t Transform) About(px, py int) Transform {
	return Translate(-px, -py).Compose(t).Compose(Translate(px, py))
}

// Apply maps a point through the transform.
func (t Transform) Apply(x, y int) (int, int) {
	return t.A*x + t.B*y + t.Tx, t.C*x + t.D*y + t.Ty
}

// leftQuarterTurns reports how many quarter turns left (counterclockwise)
// the linear part of t represents, used to rotate a Facing consistently
// with a coordinate rotation. Returns -1 if the linear part is not a
// quarter-turn rotation (e.g. a mirror, or Diagonal-family arbitrary
// angle), in which case facings cannot be rotated exactly and the caller
// must fall back to FacingAny.
func (t Transform) leftQuarterTurns() int {
	switch {
	case t.A == 1 && t.B == 0 && t.C == 0 && t.D == 1:
		return 0
	case t.A == 0 && t.B == 1 && t.C == -1 && t.D == 0:
		return 1
	case t.A == -1 && t.B == 0 && t.C == 0 && t.D == -1:
		return 2
	case t.A == 0 && t.B == -1 && t.C == 1 && t.D == 0:
		return 3
	default:
		return -1
	}
}

// IsMirror reports whether the linear part reverses orientation
// (determinant < 0).
func (t Transform) IsMirror() bool {
	return t.A*t.D-t.B*t.C < 0
}

// ApplyFacing rotates/mirrors a Facing consistently with the transform's
// linear part.
func (t Transform) ApplyFacing(f Facing) Facing {
	if t.IsMirror() {
		f = f.Mirror()
	}
	if q := t.leftQuarterTurns(); q >= 0 {
		// Rotate90 above is a clockwise screen rotation for this grid's
		// y-down convention, so clockwise data rotation corresponds to
		// -q quarter turns applied to a facing's own clockwise index.
		return f.RotateQuarterTurns(-q)
	}
	return FacingAny
}

// Invert returns t's inverse, defined only for the quarter-turn and
// mirror presets this package constructs (determinant is always ±1 for
// those).
func (t Transform) Invert() Transform {
	det := t.A*t.D - t.B*t.C
	if det == 0 {
		det = 1
	}
	ia, ib, ic, id := t.D/det, -t.B/det, -t.C/det, t.A/det
	itx := -(ia*t.Tx + ib*t.Ty)
	ity := -(ic*t.Tx + id*t.Ty)
	return Transform{A: ia, B: ib, C: ic, D: id, Tx: itx, Ty: ity}
}
