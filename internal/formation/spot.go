// Package formation implements spec.md component C: rectangular spot
// diagrams ("wave", "squared set", "box"...), their line-oriented
// parsing, symmetry derivation, and matching against a live
// geometry.Group (including phantom-filling and partial "matchSome").
//
// Grounded on original_source/dance/dance.h's Pattern/Formation classes.
// The trie/table construction style used elsewhere in this module draws
// on ha1tch/tsqlparser, but formation diagrams are parsed by a small
// dedicated line scanner since their grammar (two-char spot markers in
// whitespace-separated rows) has no expression structure to share with
// the Pratt-style call-phrase parser.
package formation

import "github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"

// PositionKind is the first character of a two-char spot marker.
type PositionKind int

const (
	PosEmpty PositionKind = iota
	PosActive
	PosActiveBoy
	PosActiveGirl
	PosActiveDesignated
	PosActiveNonDesignated
	PosCenter
	PosEnd
	PosVeryCenter
	PosVeryEnd
	PosInactive
	PosSameRow
	PosSameColumn
	PosToTheLeft
	PosToTheBack
	PosWrap
)

// IsSignificant reports whether a spot participates in match coverage
// (anything other than empty or a pure relational marker).
func (p PositionKind) IsSignificant() bool {
	switch p {
	case PosEmpty, PosSameRow, PosSameColumn, PosToTheLeft, PosToTheBack, PosWrap:
		return false
	default:
		return true
	}
}

// IsActive reports whether a spot is one of the "active" kinds whose
// dancers form the matched sub-group's output.
func (p PositionKind) IsActive() bool {
	switch p {
	case PosActive, PosActiveBoy, PosActiveGirl, PosActiveDesignated, PosActiveNonDesignated,
		PosCenter, PosEnd, PosVeryCenter, PosVeryEnd:
		return true
	default:
		return false
	}
}

var positionLetters = map[rune]PositionKind{
	'a': PosActive, 'b': PosActiveBoy, 'g': PosActiveGirl,
	'd': PosActiveDesignated, 'n': PosActiveNonDesignated,
	'c': PosCenter, 'e': PosEnd, 'C': PosVeryCenter, 'E': PosVeryEnd,
	'i': PosInactive, '.': PosEmpty,
	'-': PosSameRow, '|': PosSameColumn, '<': PosToTheLeft, '^': PosToTheBack, '\\': PosWrap,
}

var facingGlyphs = map[rune]geometry.Facing{
	'>': geometry.FacingRight, '^': geometry.FacingBack, '<': geometry.FacingLeft,
	'v': geometry.FacingFront, '|': geometry.FacingHead, '-': geometry.FacingSide,
	'?': geometry.FacingAny,
}

// Spot is one cell of a Formation's grid.
type Spot struct {
	Kind   PositionKind
	Facing geometry.Facing
}

func (s Spot) significant() bool { return s.Kind.IsSignificant() }
