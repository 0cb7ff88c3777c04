package formation

import (
	"testing"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileAllCoversTwoDisjointPairs(t *testing.T) {
	p := facingCouplePattern(t)
	d0 := geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)
	d1 := geometry.NewDancer(2, 0, geometry.FacingLeft, geometry.Girl, 1)
	d2 := geometry.NewDancer(4, 0, geometry.FacingRight, geometry.Boy, 2)
	d3 := geometry.NewDancer(6, 0, geometry.FacingLeft, geometry.Girl, 2)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, []*geometry.Dancer{d0, d1, d2, d3})
	candidates := []Candidate{{Pattern: p, Weight: 1}}
	tiles, ok := Tile(g, candidates, TileAll)
	require.True(t, ok)
	require.Len(t, tiles, 2)
	assert.Equal(t, d0.Mask()|d1.Mask(), tiles[0])
	assert.Equal(t, d2.Mask()|d3.Mask(), tiles[1])
}

func TestTileAllFailsWithLeftoverDancer(t *testing.T) {
	p := facingCouplePattern(t)
	d0 := geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)
	d1 := geometry.NewDancer(2, 0, geometry.FacingLeft, geometry.Girl, 1)
	d2 := geometry.NewDancer(10, 0, geometry.FacingRight, geometry.Boy, 2)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, []*geometry.Dancer{d0, d1, d2})
	candidates := []Candidate{{Pattern: p, Weight: 1}}
	_, ok := Tile(g, candidates, TileAll)
	assert.False(t, ok)
}

func TestTileAnyWhoCanAcceptsPartial(t *testing.T) {
	p := facingCouplePattern(t)
	d0 := geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)
	d1 := geometry.NewDancer(2, 0, geometry.FacingLeft, geometry.Girl, 1)
	d2 := geometry.NewDancer(10, 0, geometry.FacingRight, geometry.Boy, 2)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, []*geometry.Dancer{d0, d1, d2})
	candidates := []Candidate{{Pattern: p, Weight: 1}}
	tiles, ok := Tile(g, candidates, TileAnyWhoCan)
	require.True(t, ok)
	require.Len(t, tiles, 1)
	assert.Equal(t, d0.Mask()|d1.Mask(), tiles[0])
}

func TestTileNoCandidatesMatch(t *testing.T) {
	p := facingCouplePattern(t)
	d0 := geometry.NewDancer(0, 0, geometry.FacingBack, geometry.Boy, 1)
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, []*geometry.Dancer{d0})
	candidates := []Candidate{{Pattern: p, Weight: 1}}
	tiles, ok := Tile(g, candidates, TileAnyWhoCan)
	assert.False(t, ok)
	assert.Empty(t, tiles)
}
