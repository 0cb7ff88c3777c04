package formation

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
)

// Formation is a rectangular grid of Spots, as produced by parsing a
// `%%`-section diagram (spec.md §6). Rows run top (row 0) to bottom;
// columns run left (col 0) to right. Parse leaves BiasX/BiasY at zero:
// it trims no leading blank prefix from a diagram and records none.
type Formation struct {
	Name         string
	Grid         [][]Spot
	GeoTag       geometry.Tag
	BiasX, BiasY int
	CreatedAt    string
	ModifiedAt   string

	symmetry int // 0 = not yet computed
}

// ParseError reports a malformed diagram line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("formation diagram line %d: %s", e.Line, e.Msg) }

// Parse reads one formation diagram, starting with its `=name` header
// line, per the grammar in spec.md §6:
//
//	=<name> [@grid|@ring|@hexagonal]
//	*C<timestamp>
//	*M<timestamp>
//	<row>...
func Parse(text string) (*Formation, error) {
	lines := strings.Split(text, "\n")
	f := &Formation{GeoTag: geometry.TagGrid}
	rowIdx := 0
	var rows [][]Spot
	maxCols := 0
	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t\r")
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "="):
			if err := parseHeader(f, line[1:], i+1); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "*C"):
			f.CreatedAt = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "*M"):
			f.ModifiedAt = strings.TrimSpace(line[2:])
		default:
			spots, err := parseRow(line, i+1)
			if err != nil {
				return nil, err
			}
			rows = append(rows, spots)
			if len(spots) > maxCols {
				maxCols = len(spots)
			}
			rowIdx++
		}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Line: 0, Msg: "formation has no rows"}
	}
	for i, row := range rows {
		if len(row) < maxCols {
			pad := make([]Spot, maxCols-len(row))
			rows[i] = append(row, pad...)
		}
	}
	f.Grid = rows
	if !f.topRowHasDancer() {
		return nil, &ParseError{Line: 1, Msg: "top row must contain at least one dancer"}
	}
	return f, nil
}

func (f *Formation) topRowHasDancer() bool {
	for _, s := range f.Grid[0] {
		if s.Kind.IsActive() {
			return true
		}
	}
	return false
}

func parseHeader(f *Formation, rest string, line int) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return &ParseError{Line: line, Msg: "missing formation name"}
	}
	f.Name = fields[0]
	for _, tok := range fields[1:] {
		switch tok {
		case "@grid":
			f.GeoTag = geometry.TagGrid
		case "@ring":
			f.GeoTag = geometry.TagRing
		case "@hexagonal":
			f.GeoTag = geometry.TagHex
		default:
			return &ParseError{Line: line, Msg: "unknown formation annotation " + tok}
		}
	}
	return nil
}

func parseRow(line string, lineNo int) ([]Spot, error) {
	fields := strings.Fields(line)
	spots := make([]Spot, 0, len(fields))
	for _, tok := range fields {
		r := []rune(tok)
		if len(r) == 1 {
			kind, ok := positionLetters[r[0]]
			if !ok {
				return nil, &ParseError{Line: lineNo, Msg: "unknown relational marker " + tok}
			}
			spots = append(spots, Spot{Kind: kind, Facing: geometry.FacingAny})
			continue
		}
		if len(r) != 2 {
			return nil, &ParseError{Line: lineNo, Msg: "malformed spot marker " + tok}
		}
		kind, ok := positionLetters[r[0]]
		if !ok {
			return nil, &ParseError{Line: lineNo, Msg: "unknown position letter " + string(r[0])}
		}
		facing, ok := facingGlyphs[r[1]]
		if !ok {
			return nil, &ParseError{Line: lineNo, Msg: "unknown facing glyph " + string(r[1])}
		}
		spots = append(spots, Spot{Kind: kind, Facing: facing})
	}
	return spots, nil
}

// HasCentersEndsSpots reports whether the formation tags any
// centers/ends/very-centers/very-ends position, used by internal/grammar
// to build the candidate list for $anyone's centers/ends resolution.
func (f *Formation) HasCentersEndsSpots() bool {
	for _, row := range f.Grid {
		for _, s := range row {
			switch s.Kind {
			case PosCenter, PosEnd, PosVeryCenter, PosVeryEnd:
				return true
			}
		}
	}
	return false
}

func (f *Formation) Rows() int { return len(f.Grid) }
func (f *Formation) Cols() int {
	if len(f.Grid) == 0 {
		return 0
	}
	return len(f.Grid[0])
}

func (f *Formation) At(row, col int) Spot {
	if row < 0 || row >= len(f.Grid) || col < 0 || col >= len(f.Grid[row]) {
		return Spot{Kind: PosEmpty, Facing: geometry.FacingAny}
	}
	return f.Grid[row][col]
}

// anchor returns the row/col of the first significant spot in
// reading order (top-to-bottom, left-to-right), used as the alignment
// point when matching against a candidate group.
func (f *Formation) anchor() (row, col int, ok bool) {
	for r, line := range f.Grid {
		for c, s := range line {
			if s.significant() {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// toPoint converts a grid cell to doubled half-unit coordinates, row 0
// at the top (negative y, since y grows downward-on-page but our
// geometry's "back" direction is +y toward the caller... rows increase
// toward the foot of the set, matching facing-front conventions of a
// squared set diagram).
func (f *Formation) toPoint(row, col int) (x, y int) {
	return col * 2, row * 2
}
