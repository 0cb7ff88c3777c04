package formation

import "github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"

// RotationalSymmetry returns 1, 2, or 4 (spec.md §4.C), caching the
// result on first call since a Formation's grid never mutates after
// parsing.
func (f *Formation) RotationalSymmetry() int {
	if f.symmetry != 0 {
		return f.symmetry
	}
	switch {
	case f.mapsOntoSelf(4):
		f.symmetry = 4
	case f.mapsOntoSelf(2):
		f.symmetry = 2
	default:
		f.symmetry = 1
	}
	return f.symmetry
}

// mapsOntoSelf reports whether rotating the formation by 360/n degrees
// (n == 2 or 4) maps every significant spot onto another significant
// spot of the same kind, with facing rotated by the same amount.
// 4-fold symmetry additionally requires a square grid, per spec.md.
func (f *Formation) mapsOntoSelf(n int) bool {
	rows, cols := f.Rows(), f.Cols()
	if n == 4 && rows != cols {
		return false
	}
	if n == 2 {
		// 180 degree rotation maps (row, col) -> (rows-1-row, cols-1-col)
		// regardless of squareness.
	}
	quarterTurns := 4 / n
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s := f.At(r, c)
			if !s.significant() {
				continue
			}
			rr, rc := rotateCell(r, c, rows, cols, quarterTurns)
			o := f.At(rr, rc)
			if o.Kind != s.Kind {
				return false
			}
			if !facingsConsistent(s.Facing, o.Facing, quarterTurns) {
				return false
			}
		}
	}
	return true
}

// rotateCell rotates grid cell (r, c) by quarterTurns*90 degrees
// clockwise within a rows x cols grid that must map onto itself (so for
// n==2 a non-square grid rotates about its own center without needing
// rows==cols).
func rotateCell(r, c, rows, cols, quarterTurns int) (int, int) {
	for i := 0; i < quarterTurns; i++ {
		r, c = c, rows-1-r
		rows, cols = cols, rows
	}
	return r, c
}

func facingsConsistent(a, b geometry.Facing, quarterTurns int) bool {
	return a.RotateQuarterTurns(quarterTurns) == b
}
