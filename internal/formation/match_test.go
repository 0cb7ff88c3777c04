package formation

import (
	"testing"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facingCouplePattern(t *testing.T) *Pattern {
	t.Helper()
	f, err := Parse("=couples @grid\na> a<")
	require.NoError(t, err)
	return &Pattern{Formation: f}
}

func TestMatchExactFacingCouple(t *testing.T) {
	p := facingCouplePattern(t)
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1),
		geometry.NewDancer(2, 0, geometry.FacingLeft, geometry.Girl, 1),
	}
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers)
	derived, ok := Match(p, g, nil)
	require.True(t, ok)
	assert.Len(t, derived.Dancers, 2)
}

func TestMatchFailsWhenFacingsDontFit(t *testing.T) {
	p := facingCouplePattern(t)
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1),
		geometry.NewDancer(2, 0, geometry.FacingRight, geometry.Girl, 1),
	}
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers)
	_, ok := Match(p, g, nil)
	assert.False(t, ok)
}

func TestMatchFailsOnEmptyGroup(t *testing.T) {
	p := facingCouplePattern(t)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, nil)
	_, ok := Match(p, g, nil)
	assert.False(t, ok)
}

func TestMatchSomeFindsSubsetPair(t *testing.T) {
	p := facingCouplePattern(t)
	d0 := geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)
	d1 := geometry.NewDancer(2, 0, geometry.FacingRight, geometry.Girl, 1)
	d2 := geometry.NewDancer(4, 0, geometry.FacingLeft, geometry.Boy, 2)
	d3 := geometry.NewDancer(6, 0, geometry.FacingLeft, geometry.Girl, 2)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, []*geometry.Dancer{d0, d1, d2, d3})
	mask, ok := MatchSome(p, g, nil)
	require.True(t, ok)
	assert.Equal(t, d1.Mask()|d2.Mask(), mask)
}

func TestMatchSomeFailsWhenNothingFits(t *testing.T) {
	p := facingCouplePattern(t)
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingBack, geometry.Boy, 1),
	}
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers)
	_, ok := MatchSome(p, g, nil)
	assert.False(t, ok)
}

func TestMatchWithPhantomsFillsEmptySpot(t *testing.T) {
	p := facingCouplePattern(t)
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1),
	}
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers)
	derived, ok := MatchWithPhantoms(p, g, nil)
	require.True(t, ok)
	require.Len(t, derived.Dancers, 2)
	phantoms := 0
	for _, d := range derived.Dancers {
		if d.IsPhantom() {
			phantoms++
		}
	}
	assert.Equal(t, 1, phantoms)
}

func TestMatchWithPhantomsRequiresAtLeastOneReal(t *testing.T) {
	p := facingCouplePattern(t)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, nil)
	_, ok := MatchWithPhantoms(p, g, nil)
	assert.False(t, ok)
}

type oddCoupleCloser struct{}

func (oddCoupleCloser) Satisfies(d *geometry.Dancer) bool { return d.Couple%2 == 1 }

func TestSpotAcceptsDesignatedClosure(t *testing.T) {
	f, err := Parse("=designated @grid\nd> a<")
	require.NoError(t, err)
	p := &Pattern{Formation: f}
	designated := geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1) // odd couple
	other := geometry.NewDancer(2, 0, geometry.FacingLeft, geometry.Girl, 2)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, []*geometry.Dancer{designated, other})
	_, ok := Match(p, g, oddCoupleCloser{})
	assert.True(t, ok)
}

func TestSpotRejectsNonDesignatedMismatch(t *testing.T) {
	f, err := Parse("=designated @grid\nd> a<")
	require.NoError(t, err)
	p := &Pattern{Formation: f}
	notDesignated := geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 2) // even couple
	other := geometry.NewDancer(2, 0, geometry.FacingLeft, geometry.Girl, 4)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, []*geometry.Dancer{notDesignated, other})
	_, ok := Match(p, g, oddCoupleCloser{})
	assert.False(t, ok)
}
