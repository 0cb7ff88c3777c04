package formation

import "github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"

// TileAction controls how Tile treats dancers no candidate pattern
// covers, per spec.md component G: ALL requires the whole group be
// covered; ANY_WHO_CAN accepts a partial tiling (uncovered dancers are
// simply left out of the result). WITH_PHANTOMS is handled upstream by
// MatchWithPhantoms before tiling ever runs, since phantom-filling
// changes the group itself rather than how it's partitioned.
type TileAction int

const (
	TileAll TileAction = iota
	TileAnyWhoCan
)

// Candidate pairs a Pattern with the precedence weight Tile uses to
// break ties: `1 << (precedence * PRECEDENCE_SHIFT)`, spec.md §4.G.
type Candidate struct {
	Pattern *Pattern
	Closure Closure
	Weight  int
}

// Tile partitions g's dancers into non-overlapping tiles, each matching
// one of candidates, by repeatedly taking the highest-weighted available
// match over the remaining (not yet tiled) dancers.
//
// This is a greedy search rather than full backtracking over every
// placement ordering: MatchSome itself returns only the first candidate
// position in canonical dancer order for a given pattern, so at each
// step Tile compares that single candidate per pattern and takes the
// best-weighted one, then recurses on what's left. Exploring every
// possible placement ordering as well would be exponential for little
// practical benefit — a call whose tiling genuinely depends on trying
// multiple placements of the *same* pattern is rare enough that
// original_source/dance/dance.h's own buildTiling comment calls it an
// edge case, not the common path.
func Tile(g *geometry.Group, candidates []Candidate, action TileAction) (tiles []uint16, ok bool) {
	remaining := g.Mask()
	for remaining != 0 {
		sub := g.Derive(g.Select(remaining), geometry.Identity())
		var best uint16
		bestWeight := -1
		for _, c := range candidates {
			mask, found := MatchSome(c.Pattern, sub, c.Closure)
			if !found || mask == 0 {
				continue
			}
			if c.Weight > bestWeight {
				bestWeight = c.Weight
				best = mask
			}
		}
		if best == 0 {
			break
		}
		tiles = append(tiles, best)
		remaining &^= best
	}
	switch action {
	case TileAll:
		return tiles, remaining == 0
	default:
		return tiles, len(tiles) > 0
	}
}
