package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformApply(t *testing.T) {
	tests := []struct {
		name  string
		t     Transform
		x, y  int
		wantX int
		wantY int
	}{
		{"identity", Identity(), 3, 4, 3, 4},
		{"rotate90", Rotate90(), 1, 0, 0, 1},
		{"rotate180", Rotate180(), 1, 2, -1, -2},
		{"rotate270", Rotate270(), 1, 0, 0, -1},
		{"mirror vertical", MirrorVertical(), 2, 3, -2, 3},
		{"mirror horizontal", MirrorHorizontal(), 2, 3, 2, -3},
		{"translate", Translate(5, -5), 1, 1, 6, -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.t.Apply(tt.x, tt.y)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestTransformComposeAssociative(t *testing.T) {
	combined := Rotate90().Compose(Rotate90())
	x, y := combined.Apply(1, 0)
	wantX, wantY := Rotate180().Apply(1, 0)
	assert.Equal(t, wantX, x)
	assert.Equal(t, wantY, y)
}

func TestTransformAboutPivot(t *testing.T) {
	// (2, 0) is offset (1, 0) from pivot (1, 0); Rotate90 maps that offset
	// to (0, 1), landing the rotated point at (1, 1).
	about := Rotate90().About(1, 0)
	x, y := about.Apply(2, 0)
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
}

func TestTransformInvertRoundTrips(t *testing.T) {
	for _, tr := range []Transform{Identity(), Rotate90(), Rotate180(), Rotate270(), MirrorVertical(), MirrorHorizontal()} {
		inv := tr.Invert()
		x, y := tr.Apply(3, -2)
		x2, y2 := inv.Apply(x, y)
		assert.Equal(t, 3, x2)
		assert.Equal(t, -2, y2)
	}
}

func TestTransformIsMirror(t *testing.T) {
	assert.False(t, Identity().IsMirror())
	assert.False(t, Rotate90().IsMirror())
	assert.True(t, MirrorVertical().IsMirror())
	assert.True(t, MirrorHorizontal().IsMirror())
}

func TestTransformApplyFacing(t *testing.T) {
	assert.Equal(t, FacingBack, Rotate90().ApplyFacing(FacingRight))
	// MirrorVertical's matrix isn't one of the four recognized quarter-turn
	// presets, so ApplyFacing falls back to FacingAny rather than guessing.
	assert.Equal(t, FacingAny, MirrorVertical().ApplyFacing(FacingRight))
	assert.Equal(t, FacingAny, Transform{A: 2, D: 2}.ApplyFacing(FacingRight), "non-quarter-turn scale falls back to FacingAny")
}
