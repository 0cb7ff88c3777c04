package engine

import (
	"github.com/Conceptual-Machines/setsinmotion-go/internal/dancetype"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/formation"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/grammar"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/stage"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
)

// StepKind discriminates the four Step subtypes spec.md §3 names.
type StepKind int

const (
	StepPrimitive StepKind = iota
	StepPart
	StepCall
	StepStartTogether
)

// Tile is a subset-of-dancers + Plan pair, owned by its enclosing Step.
type Tile struct {
	Mask uint16
	Plan *Plan
}

// Step owns its Tiles and an Interval; its Interval must cover every
// tile's interval (spec.md §3's stated invariant), enforced by Merge.
type Step struct {
	Kind        StepKind
	Tiles       []*Tile
	Interval    *Interval
	Explanation *explain.Explanation
	DontBreathe bool
}

func newStep(kind StepKind) *Step {
	return &Step{Kind: kind, Interval: NewInterval(0)}
}

func (s *Step) addTile(mask uint16, p *Tile) { s.Tiles = append(s.Tiles, p) }

// Plan owns an ordered list of Steps, the starting Group, and tracks the
// call being expanded; it may be marked failed with an Explanation.
type Plan struct {
	Stage   *stage.Stage
	Grammar *grammar.Grammar
	Ctx     *dancetype.Context

	Start  *geometry.Group
	Result *geometry.Group
	Steps  []*Step

	LastActiveMask uint16
	Failed         bool
	Explanation    *explain.Explanation
}

// NewPlan begins a Plan rooted at start, inheriting grammar/context/
// stage from the enclosing construction.
func NewPlan(g *grammar.Grammar, ctx *dancetype.Context, stg *stage.Stage, start *geometry.Group) *Plan {
	stg.NextPlanID()
	return &Plan{Stage: stg, Grammar: g, Ctx: ctx, Start: start, Result: start}
}

// asExplanation normalizes any error into an Explanation, wrapping it if
// it isn't already one (parseAction and its helpers always return
// Explanations in practice, but this keeps Construct's recovery
// boundaries from panicking on a type assertion if that ever changes).
func asExplanation(err error, format string, args ...any) *explain.Explanation {
	if e, ok := err.(*explain.Explanation); ok {
		return e
	}
	return explain.Wrap(explain.New(explain.DefinitionError, "%v", err), explain.DefinitionError, format, args...)
}

func (p *Plan) fail(e *explain.Explanation) error {
	p.Failed = true
	p.Explanation = e
	p.Stage.RecordFailure(e.Error())
	return e
}

// Construct implements spec.md §4.G's `Plan::construct`: dispatch on
// whether call wraps a Primitive or a Definition.
func (p *Plan) Construct(call *term.Term) error {
	if call == nil || call.Kind != term.KindAnything {
		return p.fail(explain.New(explain.ProgramBug, "Construct called with a non-call term"))
	}
	a := call.Anything
	if a.Primitive != nil {
		return p.constructPrimitive(a.Primitive.PrimitiveName(), a.Args)
	}
	if a.Definition == nil {
		return p.fail(explain.New(explain.ProgramBug, "call has neither primitive nor definition"))
	}
	def, ok := p.Grammar.Lookup(a.Definition.DefinitionName())
	if !ok {
		return p.fail(explain.New(explain.DefinitionError, "unknown definition %q", a.Definition.DefinitionName()))
	}
	return p.constructDefinition(def, a.Args)
}

func (p *Plan) constructPrimitive(name string, args []*term.Term) error {
	fn, ok := Primitives[name]
	if !ok {
		return p.fail(explain.New(explain.DefinitionError, "unknown primitive %q", name))
	}
	return fn(p, args)
}

// constructDefinition tries every Variant whose formation pattern matches
// the current start group and runs the highest-precedence one, ties
// going to whichever matched variant was declared first — the same
// (precedence, then declaration order) tie-break spec.md §4.G specifies
// for buildTiling's own candidate selection, applied here one level up
// at variant selection.
func (p *Plan) constructDefinition(def *grammar.Definition, args []*term.Term) error {
	var bestVariant *grammar.Variant
	var bestStart *geometry.Group
	bestWeight := -1
	for _, v := range def.Variants {
		matchedGroup := p.Start
		if v.FormationName != "" {
			f, ok := p.Grammar.LookupFormation(v.FormationName)
			if !ok {
				continue
			}
			pat := &formation.Pattern{Formation: f}
			mg, ok := formation.Match(pat, p.Start, formation.AlwaysSatisfies{})
			if !ok {
				continue
			}
			matchedGroup = mg
		}
		weight := p.Ctx.Precedence.Weight(v.Precedence)
		if weight > bestWeight {
			bestWeight, bestVariant, bestStart = weight, v, matchedGroup
		}
	}
	if bestVariant == nil {
		return p.fail(explain.New(explain.UserError, "no variant of %q matches the current formation", def.Name))
	}
	return p.runVariant(bestVariant, args, bestStart)
}

func (p *Plan) runVariant(v *grammar.Variant, args []*term.Term, start *geometry.Group) error {
	p.Result = start
	for _, part := range v.Parts {
		step, err := p.buildPartStep(part, args)
		if err != nil {
			return err
		}
		p.Steps = append(p.Steps, step)
		if p.Failed {
			return p.Explanation
		}
	}
	return nil
}

// buildPartStep executes one Part's action text (re-parsed so $N binds
// to the enclosing call's args) as either a simple primitive invocation
// or a compound start-together action.
func (p *Plan) buildPartStep(part grammar.Part, args []*term.Term) (*Step, error) {
	if part.Compound {
		return p.buildStartTogetherStep(part, args)
	}
	pa, err := parseAction(part.Action, args)
	if err != nil {
		return nil, p.fail(asExplanation(err, "part action %q", part.Action))
	}
	step := newStep(StepPart)
	// The primitive appends its own Steps to p; fold them into this
	// Part's Step so each Part contributes exactly one Step to the Plan.
	n := len(p.Steps)
	err = p.constructPrimitive(pa.Head, pa.Args)
	for _, st := range p.Steps[n:] {
		step.Tiles = append(step.Tiles, st.Tiles...)
		step.Interval.Merge(st.Interval)
		step.DontBreathe = step.DontBreathe || st.DontBreathe
	}
	p.Steps = p.Steps[:n]
	if err != nil {
		return step, err
	}
	return step, nil
}

func (p *Plan) buildStartTogetherStep(part grammar.Part, args []*term.Term) (*Step, error) {
	step := newStep(StepStartTogether)
	var mask0, mask1 uint16
	base := p.Result
	for i, track := range part.Tracks {
		sub := NewPlan(p.Grammar, p.Ctx, p.Stage, base)
		pa, err := parseAction(track.What, args)
		if err != nil {
			return step, p.fail(asExplanation(err, "track action %q", track.What))
		}
		if err := sub.constructPrimitive(pa.Head, pa.Args); err != nil {
			if track.AnyWhoCan {
				continue
			}
			return step, p.fail(sub.Explanation)
		}
		tile := &Tile{Mask: sub.Result.Mask(), Plan: sub}
		step.addTile(tile.Mask, tile)
		for _, st := range sub.Steps {
			step.Interval.Merge(st.Interval)
		}
		if i == 0 {
			mask0 = tile.Mask
		} else {
			mask1 = tile.Mask
		}
	}
	if mask0&mask1 != 0 {
		return step, p.fail(explain.New(explain.UserError, "start_together branches overlap"))
	}
	if len(step.Tiles) > 0 {
		p.Result = step.Tiles[len(step.Tiles)-1].Plan.Result
	}
	return step, nil
}
