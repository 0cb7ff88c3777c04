// Package dancetype implements the Context configuration object spec.md
// §9's design notes call for: dance-type geometry selection, the
// level-name and precedence-name tables definitions/variants reference
// by string, and the {parsing, matching, breathing} verbose flags of
// spec.md §4.D/§6.
package dancetype

import "github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"

// Kind selects the home geometry and starting formation a session uses.
type Kind int

const (
	TwoCouple Kind = iota
	FourCouple
	SixCoupleHexagon
	RingDance
)

func (k Kind) String() string {
	switch k {
	case TwoCouple:
		return "2-couple"
	case FourCouple:
		return "4-couple"
	case SixCoupleHexagon:
		return "hexagonal"
	case RingDance:
		return "ring"
	default:
		return "unknown-dance-type"
	}
}

// ParseKind maps the CLI/API spelling ("2", "4", "6", "hex") to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "2":
		return TwoCouple, true
	case "4":
		return FourCouple, true
	case "6", "hex", "hexagonal":
		return SixCoupleHexagon, true
	case "ring":
		return RingDance, true
	default:
		return 0, false
	}
}

// StartingGroup returns the canonical starting formation for this dance
// type, grounded on internal/geometry's layout builders.
func (k Kind) StartingGroup() *geometry.Group {
	switch k {
	case TwoCouple:
		return geometry.RingOfFour()
	case SixCoupleHexagon:
		return geometry.HexagonSet()
	case RingDance:
		return geometry.Ring()
	default:
		return geometry.SquaredSet()
	}
}

func (k Kind) GeometryTag() geometry.Tag {
	switch k {
	case SixCoupleHexagon:
		return geometry.TagHex
	case RingDance:
		return geometry.TagRing
	default:
		return geometry.TagGrid
	}
}

// VerboseFlags controls which trace channels of spec.md §4.D/§6 are
// written to the session's logger.
type VerboseFlags struct {
	Parsing  bool
	Matching bool
	Breathing bool
}

// LevelTable maps a grammar's textual level name ("mainstream",
// "plus", "a1"...) to a numeric rank used to filter which
// Definitions/Variants are considered, per spec.md §6's `--<level>`/
// `!<level>` grammar lines.
type LevelTable map[string]int

// DefaultLevels mirrors the Callerlab-style program levels the original
// corpus's grammar files name; a session without an explicit level
// configuration falls back to this table.
var DefaultLevels = LevelTable{
	"basic": 0, "mainstream": 1, "plus": 2,
	"a1": 3, "a2": 4, "c1": 5, "c2": 6, "c3a": 7, "c3b": 8, "c4": 9,
}

func (t LevelTable) Rank(name string) (int, bool) {
	r, ok := t[name]
	return r, ok
}

// PrecedenceTable maps a variant's named precedence ("^high", "^low")
// to the numeric precedence spec.md §4.G's tiling tie-break uses
// (`1 << (precedence * PRECEDENCE_SHIFT)`).
type PrecedenceTable map[string]int

const PrecedenceShift = 3

var DefaultPrecedence = PrecedenceTable{
	"low": 0, "normal": 1, "high": 2, "highest": 3,
}

func (t PrecedenceTable) Weight(name string) int {
	p, ok := t[name]
	if !ok {
		p = t["normal"]
	}
	return 1 << uint(p*PrecedenceShift)
}

// Context bundles everything a parse/plan cycle needs beyond the
// grammar itself.
type Context struct {
	Dance      Kind
	Levels     LevelTable
	Precedence PrecedenceTable
	Verbose    VerboseFlags
}

// NewContext returns a Context with the default level/precedence tables
// for dance type k.
func NewContext(k Kind) *Context {
	return &Context{Dance: k, Levels: DefaultLevels, Precedence: DefaultPrecedence}
}
