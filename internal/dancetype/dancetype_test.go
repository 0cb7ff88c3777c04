package dancetype

import (
	"testing"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"2", TwoCouple, true},
		{"4", FourCouple, true},
		{"6", SixCoupleHexagon, true},
		{"hex", SixCoupleHexagon, true},
		{"hexagonal", SixCoupleHexagon, true},
		{"ring", RingDance, true},
		{"square", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestKindGeometryTag(t *testing.T) {
	assert.Equal(t, "4-couple", FourCouple.String())
	assert.Equal(t, "hexagonal", SixCoupleHexagon.String())
	assert.Equal(t, "ring", RingDance.String())

	assert.Equal(t, geometry.TagGrid, FourCouple.GeometryTag())
	assert.Equal(t, geometry.TagHex, SixCoupleHexagon.GeometryTag())
	assert.Equal(t, geometry.TagRing, RingDance.GeometryTag())

	g, ok := ParseKind("6")
	require.True(t, ok)
	assert.NotNil(t, g.StartingGroup())
}

func TestLevelTableRank(t *testing.T) {
	r, ok := DefaultLevels.Rank("mainstream")
	require.True(t, ok)
	assert.Equal(t, 1, r)

	_, ok = DefaultLevels.Rank("nonexistent")
	assert.False(t, ok)

	basic, _ := DefaultLevels.Rank("basic")
	plus, _ := DefaultLevels.Rank("plus")
	assert.Less(t, basic, plus)
}

func TestPrecedenceWeight(t *testing.T) {
	low := DefaultPrecedence.Weight("low")
	normal := DefaultPrecedence.Weight("normal")
	high := DefaultPrecedence.Weight("high")
	highest := DefaultPrecedence.Weight("highest")

	assert.Less(t, low, normal)
	assert.Less(t, normal, high)
	assert.Less(t, high, highest)

	// unknown precedence name falls back to "normal"
	assert.Equal(t, normal, DefaultPrecedence.Weight("unspecified"))
}

func TestNewContextDefaults(t *testing.T) {
	ctx := NewContext(FourCouple)
	assert.Equal(t, FourCouple, ctx.Dance)
	assert.Equal(t, DefaultLevels, ctx.Levels)
	assert.Equal(t, DefaultPrecedence, ctx.Precedence)
	assert.False(t, ctx.Verbose.Parsing)
	assert.False(t, ctx.Verbose.Matching)
	assert.False(t, ctx.Verbose.Breathing)
}
