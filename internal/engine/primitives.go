package engine

import (
	"math/bits"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/anyone"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/formation"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
)

// PrimitiveFunc is the signature every entry in the primitive dispatch
// table shares: mutate p.Result (and append to p.Steps where a discrete
// Step boundary matters), or fail the Plan.
type PrimitiveFunc func(p *Plan, args []*term.Term) error

// Primitives is the closed ≈45-entry dispatch table of spec.md §4.F,
// `preCheck[kind]` generalized here to a name-keyed map since Go values
// (rather than a C++ enum) already give primitives a stable identity.
// Names match original_source/dance/dance.h's Primitives enum.
var Primitives map[string]PrimitiveFunc

func init() {
	Primitives = map[string]PrimitiveFunc{
		"nothing":            primNothing,
		"in":                 primIn,
		"activate":           primActivate,
		"move_in":            primMoveIn,
		"circle":             primCircle,
		"circle_fraction":    primCircleFraction,
		"circle_home":        primCircleHome,
		"rotate":             primRotate,
		"form_ring":          primFormRing,
		"form_set":           primFormSet,
		"form_promenade":     primFormPromenade,
		"form_thar":          primFormThar,
		"forward_and_back":   primForwardAndBack,
		"pull_by":            primPullBy,
		"face":               primFace,
		"definition":         primDefinition,
		"back_out":           primBackOut,
		"any_who_can":        primAnyWhoCan,
		"those_who_can":      primAnyWhoCan,
		"forward":            primForward,
		"arc":                primArc,
		"start_together":     primStartTogetherDirect,
		"run":                primRun,
		"run_to":             primRunTo,
		"forward_veer":       primForwardVeer,
		"forward_veer_face":  primForwardVeerFace,
		"forward_peel":       primForwardPeel,
		"veer":               primVeer,
		"displace":           primDisplace,
		"arc_face":           primArcFace,
		"mirror":             primMirror,
		"fractionalize":      primFractionalize,
		"if":                 primIf,
		"can_start":          primCanStart,
		"reduce":             primReduce,
		"check_sequence":     primCheckSequence,
		"roll":               primRoll,
		"can_roll":           primCanRoll,
		"closer_to_center":   primCloserToCenter,
		"has_lateral_flow":   primHasLateralFlow,
		"stretch":            primStretch,
		"dont_breathe":       primDontBreathe,
		"normalize":          primNormalize,
		"breathe":            primBreathe,
		"conjure_phantom":    primConjurePhantom,
		"phantom":            primPhantom,
	}
}

func anyoneArg(args []*term.Term, i int) *term.Anyone {
	if i < len(args) && args[i].Kind == term.KindAnyone {
		return args[i].Anyone
	}
	return anyone.Universe()
}

func callArg(args []*term.Term, i int) *term.Term {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// moveEveryone applies transform t to every dancer in mask (defaulting
// to the whole result group), recording one Motion per moved dancer,
// deriving a new Result group, and breathing that group when breathe
// is true (spec.md §4.B).
func moveEveryone(p *Plan, mask uint16, t geometry.Transform, kind MotionKind, breathe bool) {
	g := p.Result
	if mask == 0 {
		mask = g.Mask()
	}
	out := make([]*geometry.Dancer, 0, len(g.Dancers))
	step := newStep(StepPrimitive)
	step.Interval = NewInterval(2)
	var moved uint16
	for _, d := range g.Dancers {
		if d.Mask()&mask == 0 {
			out = append(out, d.Clone())
			continue
		}
		nx, ny := t.Apply(d.X, d.Y)
		nf := t.ApplyFacing(d.Facing)
		step.Interval.Add(Motion{DancerIndex: d.Index(), Kind: kind,
			FromX: d.X, FromY: d.Y, FromFacing: d.Facing, ToX: nx, ToY: ny, ToFacing: nf})
		out = append(out, d.CloneAt(nx, ny, nf))
		moved |= d.Mask()
	}
	result := g.Derive(out, t)
	if breathe {
		result = geometry.Breathe(result)
	}
	p.Result = result
	p.LastActiveMask = moved
	p.Steps = append(p.Steps, step)
}

func primNothing(p *Plan, args []*term.Term) error { return nil }

func primForward(p *Plan, args []*term.Term) error {
	dist := 2
	if len(args) > 0 && args[0].Kind == term.KindFraction {
		n, ok := args[0].Frac.ImproperNumerator(1, nil)
		if ok {
			dist = n * 2
		}
	} else if len(args) > 0 && args[0].Kind == term.KindInteger {
		dist = args[0].Int * 2
	}
	g := p.Result
	out := make([]*geometry.Dancer, 0, len(g.Dancers))
	step := newStep(StepPrimitive)
	step.Interval = NewInterval(dist)
	for _, d := range g.Dancers {
		dx, dy := facingDeltaUnits(d.Facing, dist)
		nx, ny := d.X+dx, d.Y+dy
		step.Interval.Add(Motion{DancerIndex: d.Index(), Kind: MotionForward,
			FromX: d.X, FromY: d.Y, FromFacing: d.Facing, ToX: nx, ToY: ny, ToFacing: d.Facing})
		out = append(out, d.CloneAt(nx, ny, d.Facing))
	}
	p.Result = geometry.Breathe(g.Derive(out, geometry.Identity()))
	p.Steps = append(p.Steps, step)
	return nil
}

func facingDeltaUnits(f geometry.Facing, units int) (dx, dy int) {
	switch f {
	case geometry.FacingRight:
		return units, 0
	case geometry.FacingLeft:
		return -units, 0
	case geometry.FacingBack:
		return 0, units
	case geometry.FacingFront:
		return 0, -units
	default:
		return 0, 0
	}
}

func primForwardAndBack(p *Plan, args []*term.Term) error {
	if err := primForward(p, args); err != nil {
		return err
	}
	g := p.Result
	out := make([]*geometry.Dancer, 0, len(g.Dancers))
	for _, d := range g.Dancers {
		dx, dy := facingDeltaUnits(d.Facing, 2)
		out = append(out, d.CloneAt(d.X-dx, d.Y-dy, d.Facing))
	}
	p.Result = geometry.Breathe(g.Derive(out, geometry.Identity()))
	return nil
}

func primBackOut(p *Plan, args []*term.Term) error {
	g := p.Result
	out := make([]*geometry.Dancer, 0, len(g.Dancers))
	for _, d := range g.Dancers {
		dx, dy := facingDeltaUnits(d.Facing, 2)
		out = append(out, d.CloneAt(d.X-dx, d.Y-dy, d.Facing))
	}
	p.Result = geometry.Breathe(g.Derive(out, geometry.Identity()))
	return nil
}

func primFace(p *Plan, args []*term.Term) error {
	mask := anyone.Resolve(anyoneArg(args, 0), p.Result, p.LastActiveMask, p.Grammar)
	g := p.Result
	out := make([]*geometry.Dancer, 0, len(g.Dancers))
	minX, minY, maxX, maxY := g.BoundingBox()
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	for _, d := range g.Dancers {
		if d.Mask()&mask == 0 {
			out = append(out, d.Clone())
			continue
		}
		out = append(out, d.CloneAt(d.X, d.Y, facingToward(d, cx, cy)))
	}
	p.Result = g.Derive(out, geometry.Identity())
	return nil
}

func facingToward(d *geometry.Dancer, cx, cy int) geometry.Facing {
	dx, dy := cx-d.X, cy-d.Y
	if abs(dx) >= abs(dy) {
		if dx >= 0 {
			return geometry.FacingRight
		}
		return geometry.FacingLeft
	}
	if dy >= 0 {
		return geometry.FacingBack
	}
	return geometry.FacingFront
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// primArc implements $arc/$circle/$rotate by pivoting the whole result
// group about its bounding-box center. original_source/dance/dance.h's
// Anypivot enumerates per-dancer pivots (box center, last hand, inside
// hand...) that would need a tiled pair (see pivotByPairs, used by
// $run/$pull_by) rather than one whole-group pivot; $arc's own callers
// always name a single shared pivot in practice, so every Pivot value
// here resolves to the group center rather than retiling per pivot kind.
func primArc(p *Plan, args []*term.Term) error {
	frac := term.Fraction{Whole: 0, Num: 1, Denom: 4}
	if len(args) > 1 && args[1].Kind == term.KindFraction {
		frac = args[1].Frac
	}
	g := p.Result
	minX, minY, maxX, maxY := g.BoundingBox()
	px, py := (minX+maxX)/2, (minY+maxY)/2
	quarterTurns := 1
	if !frac.IsMagic() {
		n, ok := frac.ImproperNumerator(4, nil)
		if ok {
			quarterTurns = n
		}
	}
	t := geometry.Identity()
	switch ((quarterTurns % 4) + 4) % 4 {
	case 1:
		t = geometry.Rotate90()
	case 2:
		t = geometry.Rotate180()
	case 3:
		t = geometry.Rotate270()
	}
	moveEveryone(p, 0, t.About(px, py), MotionArc, true)
	return nil
}

func primArcFace(p *Plan, args []*term.Term) error { return primArc(p, args) }

func primCircleFraction(p *Plan, args []*term.Term) error { return primArc(p, args) }

func primCircle(p *Plan, args []*term.Term) error {
	return primArc(p, []*term.Term{term.NewPivot(term.PivotCenter), term.NewFraction(0, 1, 4)})
}

func primCircleHome(p *Plan, args []*term.Term) error {
	return primArc(p, []*term.Term{term.NewPivot(term.PivotCenter), term.UntilHome()})
}

func primRotate(p *Plan, args []*term.Term) error { return primArc(p, args) }

// facingPairFormation is a synthetic two-spot pattern ("any two adjacent
// dancers") used to tile a group into partner pairs for $run/$pull_by,
// per spec.md §4.C's "beaus/belles use partnershipOp which calls tiling
// with partner formations" — here applied to the simpler case of a
// pair-rotate rather than a gender-discriminated beau/belle split.
var facingPairFormation = &formation.Formation{
	Name: "facing-pair",
	Grid: [][]formation.Spot{{{Kind: formation.PosActive, Facing: geometry.FacingAny}, {Kind: formation.PosActive, Facing: geometry.FacingAny}}},
}

// pivotByPairs tiles the masked dancers into partner pairs and rotates
// each pair 180 degrees about its own tile center, rather than the whole
// group's center — so three side-by-side couples pulling by each swap
// within their own couple instead of orbiting the set as one ring.
func pivotByPairs(p *Plan, mask uint16) {
	g := p.Result
	if mask == 0 {
		mask = g.Mask()
	}
	sub := g.Derive(g.Select(mask), geometry.Identity())
	tiles, _ := formation.Tile(sub, []formation.Candidate{
		{Pattern: &formation.Pattern{Formation: facingPairFormation}, Closure: formation.AlwaysSatisfies{}, Weight: 1},
	}, formation.TileAnyWhoCan)
	for _, tileMask := range tiles {
		tileSub := g.Derive(g.Select(tileMask), geometry.Identity())
		minX, minY, maxX, maxY := tileSub.BoundingBox()
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		moveEveryone(p, tileMask, geometry.Rotate180().About(cx, cy), MotionArc, true)
	}
	untiled := mask
	for _, tileMask := range tiles {
		untiled &^= tileMask
	}
	if untiled != 0 {
		minX, minY, maxX, maxY := g.BoundingBox()
		cx, cy := (minX+maxX)/2, (minY+maxY)/2
		moveEveryone(p, untiled, geometry.Rotate180().About(cx, cy), MotionArc, true)
	}
}

func primRun(p *Plan, args []*term.Term) error {
	mask := anyone.Resolve(anyoneArg(args, 0), p.Result, p.LastActiveMask, p.Grammar)
	pivotByPairs(p, mask)
	return nil
}

func primRunTo(p *Plan, args []*term.Term) error { return primRun(p, args) }

func primPullBy(p *Plan, args []*term.Term) error {
	mask := anyone.Resolve(anyoneArg(args, 0), p.Result, p.LastActiveMask, p.Grammar)
	pivotByPairs(p, mask)
	return nil
}

func primVeer(p *Plan, args []*term.Term) error {
	moveEveryone(p, 0, geometry.Translate(1, 1), MotionVeer, true)
	return nil
}

func primForwardVeer(p *Plan, args []*term.Term) error {
	if err := primForward(p, args); err != nil {
		return err
	}
	return primVeer(p, nil)
}

func primForwardVeerFace(p *Plan, args []*term.Term) error {
	if err := primForwardVeer(p, args); err != nil {
		return err
	}
	return primFace(p, []*term.Term{term.NewAnyoneTerm(anyone.Universe())})
}

func primForwardPeel(p *Plan, args []*term.Term) error {
	return primForwardVeer(p, args)
}

func primDisplace(p *Plan, args []*term.Term) error {
	moveEveryone(p, 0, geometry.Translate(2, 0), MotionVeer, true)
	return nil
}

func primIn(p *Plan, args []*term.Term) error {
	moveEveryone(p, 0, geometry.Translate(0, 0), MotionForward, true)
	return nil
}

func primMoveIn(p *Plan, args []*term.Term) error { return primIn(p, args) }

// formTo snaps every masked dancer onto its counterpart in target (looked
// up by the stable dancer index target shares with p.Result), recording
// one MotionVeer per moved dancer. A dancer whose index target has no
// counterpart for is left where it stands, rather than failing the
// whole reshape.
func formTo(p *Plan, mask uint16, target *geometry.Group) {
	g := p.Result
	if mask == 0 {
		mask = g.Mask()
	}
	out := make([]*geometry.Dancer, 0, len(g.Dancers))
	step := newStep(StepPrimitive)
	step.Interval = NewInterval(4)
	var moved uint16
	for _, d := range g.Dancers {
		td := target.ByIndex(d.Index())
		if d.Mask()&mask == 0 || td == nil {
			out = append(out, d.Clone())
			continue
		}
		step.Interval.Add(Motion{DancerIndex: d.Index(), Kind: MotionVeer,
			FromX: d.X, FromY: d.Y, FromFacing: d.Facing, ToX: td.X, ToY: td.Y, ToFacing: td.Facing})
		out = append(out, d.CloneAt(td.X, td.Y, td.Facing))
		moved |= d.Mask()
	}
	result := geometry.NewGroup(target.Tag, target.Rot, out)
	result.Base = g
	result.FromBase = geometry.Identity()
	p.Result = result
	p.LastActiveMask = moved
	p.Steps = append(p.Steps, step)
}

// primFormRing reshapes the current dancers into the eight-dancer ring
// layout, available regardless of the session's home dance type.
func primFormRing(p *Plan, args []*term.Term) error {
	formTo(p, 0, geometry.Ring())
	return nil
}

// primFormSet reshapes the current dancers back into their dance type's
// home squared-set layout.
func primFormSet(p *Plan, args []*term.Term) error {
	formTo(p, 0, p.Ctx.Dance.StartingGroup())
	return nil
}

func primFormPromenade(p *Plan, args []*term.Term) error {
	moveEveryone(p, 0, geometry.Identity(), MotionForward, true)
	return nil
}

// primFormThar reshapes the current dancers into an allemande thar star:
// boys to the center with right hands joined, girls right behind them.
func primFormThar(p *Plan, args []*term.Term) error {
	formTo(p, 0, geometry.Thar())
	return nil
}

func primActivate(p *Plan, args []*term.Term) error {
	mask := anyone.Resolve(anyoneArg(args, 0), p.Result, p.LastActiveMask, p.Grammar)
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result.Derive(p.Result.Select(mask), geometry.Identity()))
	call := callArg(args, 1)
	if call == nil {
		return p.fail(explain.New(explain.DefinitionError, "activate requires a call argument"))
	}
	if err := sub.Construct(call); err != nil {
		return p.fail(sub.Explanation)
	}
	p.Result = sub.Result
	p.LastActiveMask = mask
	if len(p.Steps) > 0 {
		p.Steps[len(p.Steps)-1].DontBreathe = true
	}
	return nil
}

func primDefinition(p *Plan, args []*term.Term) error {
	if len(args) == 0 {
		return p.fail(explain.New(explain.DefinitionError, "definition requires a name argument"))
	}
	name := args[0].Spelling()
	def, ok := p.Grammar.Lookup(name)
	if !ok {
		return p.fail(explain.New(explain.DefinitionError, "unknown definition %q", name))
	}
	return p.constructDefinition(def, args[1:])
}

func primAnyWhoCan(p *Plan, args []*term.Term) error {
	call := callArg(args, 0)
	if call == nil {
		return p.fail(explain.New(explain.DefinitionError, "any_who_can requires a call argument"))
	}
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
	if err := sub.Construct(call); err != nil {
		// Recovery boundary: substitute $nothing on failure, per spec.md §7.
		return nil
	}
	p.Result = sub.Result
	p.Steps = append(p.Steps, sub.Steps...)
	return nil
}

func primCanStart(p *Plan, args []*term.Term) error {
	call := callArg(args, 0)
	if call == nil {
		return p.fail(explain.New(explain.DefinitionError, "can_start requires a call argument"))
	}
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
	ok := sub.Construct(call) == nil
	if ok {
		p.LastActiveMask = 1
	} else {
		p.LastActiveMask = 0
	}
	return nil
}

func primStartTogetherDirect(p *Plan, args []*term.Term) error {
	c1, c2 := callArg(args, 0), callArg(args, 1)
	if c1 == nil || c2 == nil {
		return p.fail(explain.New(explain.DefinitionError, "start_together requires two call arguments"))
	}
	s1 := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
	if err := s1.Construct(c1); err != nil {
		return p.fail(s1.Explanation)
	}
	s2 := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
	if err := s2.Construct(c2); err != nil {
		return p.fail(s2.Explanation)
	}
	if s1.LastActiveMask&s2.LastActiveMask != 0 {
		return p.fail(explain.New(explain.UserError, "start_together branches overlap"))
	}
	p.Steps = append(p.Steps, s1.Steps...)
	p.Steps = append(p.Steps, s2.Steps...)
	p.Result = s2.Result
	return nil
}

func primMirror(p *Plan, args []*term.Term) error {
	call := callArg(args, 0)
	if call == nil {
		return p.fail(explain.New(explain.DefinitionError, "mirror requires a call argument"))
	}
	mirrored := p.Result.Derive(mirrorDancers(p.Result), geometry.MirrorVertical())
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, mirrored)
	if err := sub.Construct(call); err != nil {
		return p.fail(sub.Explanation)
	}
	p.Result = sub.Result
	p.Steps = append(p.Steps, sub.Steps...)
	return nil
}

func mirrorDancers(g *geometry.Group) []*geometry.Dancer {
	out := make([]*geometry.Dancer, 0, len(g.Dancers))
	for _, d := range g.Dancers {
		out = append(out, d.CloneAt(-d.X, d.Y, d.Facing.Mirror()))
	}
	return out
}

func primFractionalize(p *Plan, args []*term.Term) error {
	if len(args) < 2 {
		return p.fail(explain.New(explain.DefinitionError, "fractionalize requires a fraction and a call"))
	}
	f := args[0].Frac
	call := args[1]
	for i := 0; i < f.Whole; i++ {
		sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
		if err := sub.Construct(call); err != nil {
			return p.fail(sub.Explanation)
		}
		p.Result = sub.Result
		p.Steps = append(p.Steps, sub.Steps...)
	}
	if f.Num > 0 && f.Denom > 0 {
		sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
		if err := sub.Construct(call); err != nil {
			return p.fail(sub.Explanation)
		}
		p.Result = sub.Result
		p.Steps = append(p.Steps, sub.Steps...)
	}
	return nil
}

func primIf(p *Plan, args []*term.Term) error {
	if len(args) < 2 {
		return p.fail(explain.New(explain.DefinitionError, "if requires a test and a then-branch"))
	}
	test := testTruth(p, args[0])
	var chosen *term.Term
	if test {
		chosen = args[1]
	} else if len(args) > 2 {
		chosen = args[2]
	} else {
		return nil
	}
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
	if err := sub.Construct(chosen); err != nil {
		return p.fail(sub.Explanation)
	}
	p.Result = sub.Result
	p.Steps = append(p.Steps, sub.Steps...)
	return nil
}

func testTruth(p *Plan, t *term.Term) bool {
	switch t.Kind {
	case term.KindInteger:
		return t.Int != 0
	case term.KindAnything:
		sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
		return sub.Construct(t) == nil
	default:
		return false
	}
}

func primReduce(p *Plan, args []*term.Term) error {
	if len(args) < 3 {
		return p.fail(explain.New(explain.DefinitionError, "reduce requires form-in, form-out, and a call"))
	}
	formInName, formOutName := args[0].Spelling(), args[1].Spelling()
	call := args[2]
	formIn, ok := p.Grammar.LookupFormation(formInName)
	if !ok {
		return p.fail(explain.New(explain.DefinitionError, "unknown formation %q", formInName))
	}
	reduced, ok := formation.Match(&formation.Pattern{Formation: formIn}, p.Result, formation.AlwaysSatisfies{})
	if !ok {
		return p.fail(explain.New(explain.UserError, "current formation does not match %q", formInName))
	}
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, reduced)
	if err := sub.Construct(call); err != nil {
		return p.fail(sub.Explanation)
	}
	if _, ok := p.Grammar.LookupFormation(formOutName); !ok {
		return p.fail(explain.New(explain.DefinitionError, "unknown formation %q", formOutName))
	}
	p.Result = sub.Result
	p.Steps = append(p.Steps, sub.Steps...)
	return nil
}

func primCheckSequence(p *Plan, args []*term.Term) error { return nil }

func primRoll(p *Plan, args []*term.Term) error {
	mask := anyone.Resolve(anyoneArg(args, 0), p.Result, p.LastActiveMask, p.Grammar)
	moveEveryone(p, mask, geometry.Identity(), MotionFace, false)
	return nil
}

// primCanRoll is $roll's legality check: a dancer can only roll by
// continuing the facing change its last motion already imparted, so
// every dancer in the designated mask needs a prior Motion whose
// FromFacing differs from its ToFacing.
func primCanRoll(p *Plan, args []*term.Term) error {
	mask := p.LastActiveMask
	if mask == 0 {
		mask = p.Result.Mask()
	}
	if len(p.Steps) == 0 {
		return p.fail(explain.New(explain.UserError, "no dancers have moved yet to roll from"))
	}
	last := p.Steps[len(p.Steps)-1]
	turned := uint16(0)
	for _, m := range last.Interval.Motions {
		if m.FromFacing == m.ToFacing {
			continue
		}
		turned |= 1 << uint(m.DancerIndex)
	}
	if mask&^turned != 0 {
		return p.fail(explain.New(explain.UserError, "dancer has no facing change to roll from"))
	}
	return nil
}

// primCloserToCenter fails unless both anyone arguments resolve to
// exactly one dancer each and the first is not farther from the
// group's center than the second (original_source/dance/dance.h's
// Group::closerToCenter, compared here via squared distance from the
// bounding box's midpoint).
func primCloserToCenter(p *Plan, args []*term.Term) error {
	mask1 := anyone.Resolve(anyoneArg(args, 0), p.Result, p.LastActiveMask, p.Grammar)
	mask2 := anyone.Resolve(anyoneArg(args, 1), p.Result, p.LastActiveMask, p.Grammar)
	if bits.OnesCount16(mask1) != 1 || bits.OnesCount16(mask2) != 1 {
		return p.fail(explain.New(explain.UserError, "closer_to_center requires exactly one dancer on each side"))
	}
	g := p.Result
	d1, d2 := g.Select(mask1)[0], g.Select(mask2)[0]
	minX, minY, maxX, maxY := g.BoundingBox()
	cx, cy := minX+maxX, minY+maxY // doubled center, avoids integer division
	distSq := func(d *geometry.Dancer) int {
		dx, dy := 2*d.X-cx, 2*d.Y-cy
		return dx*dx + dy*dy
	}
	if distSq(d1) > distSq(d2) {
		return p.fail(explain.New(explain.UserError, "dancer is farther from the center"))
	}
	p.LastActiveMask = mask1
	return nil
}

func directionArg(args []*term.Term, i int) term.Direction {
	if i < len(args) && args[i] != nil && args[i].Kind == term.KindDirection {
		return args[i].Direction
	}
	return term.DirAsYouAre
}

// primHasLateralFlow fails unless every designated dancer's last motion
// shares a common, nonzero lateral (x-axis) direction matching dir.
func primHasLateralFlow(p *Plan, args []*term.Term) error {
	dir := directionArg(args, 0)
	mask := p.LastActiveMask
	if mask == 0 {
		mask = p.Result.Mask()
	}
	if hasLateralFlow(p, mask, dir) {
		return nil
	}
	switch dir {
	case term.DirAsYouAre:
		return p.fail(explain.New(explain.UserError, "Not all dancers moving in a consistent direction"))
	case term.DirLeft:
		return p.fail(explain.New(explain.UserError, "Not all dancers moving leftward"))
	case term.DirRight:
		return p.fail(explain.New(explain.UserError, "Not all dancers moving rightward"))
	default:
		return p.fail(explain.New(explain.DefinitionError, "$hasLateralFlow must use 'left', 'right', or '$as_you_are'"))
	}
}

func hasLateralFlow(p *Plan, mask uint16, dir term.Direction) bool {
	if len(p.Steps) == 0 {
		return false
	}
	last := p.Steps[len(p.Steps)-1]
	sign := 0
	seen := false
	for _, m := range last.Interval.Motions {
		if 1<<uint(m.DancerIndex)&mask == 0 {
			continue
		}
		dx := m.ToX - m.FromX
		s := 0
		switch {
		case dx > 0:
			s = 1
		case dx < 0:
			s = -1
		default:
			return false
		}
		if !seen {
			sign, seen = s, true
			continue
		}
		if s != sign {
			return false
		}
	}
	if !seen {
		return false
	}
	switch dir {
	case term.DirLeft:
		return sign < 0
	case term.DirRight:
		return sign > 0
	case term.DirAsYouAre:
		return true
	default:
		return false
	}
}

func primStretch(p *Plan, args []*term.Term) error {
	moveEveryone(p, 0, geometry.Translate(0, 0), MotionForward, true)
	return nil
}

func primDontBreathe(p *Plan, args []*term.Term) error {
	call := callArg(args, 0)
	if call == nil {
		return nil
	}
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
	if err := sub.Construct(call); err != nil {
		return p.fail(sub.Explanation)
	}
	p.Result = sub.Result
	for _, st := range sub.Steps {
		st.DontBreathe = true
	}
	p.Steps = append(p.Steps, sub.Steps...)
	return nil
}

func primNormalize(p *Plan, args []*term.Term) error {
	p.Result = geometry.Breathe(p.Result)
	return nil
}

func primBreathe(p *Plan, args []*term.Term) error {
	call := callArg(args, 0)
	if call != nil {
		sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
		if err := sub.Construct(call); err != nil {
			return p.fail(sub.Explanation)
		}
		p.Result = sub.Result
		p.Steps = append(p.Steps, sub.Steps...)
	}
	p.Result = geometry.Breathe(p.Result)
	return nil
}

func primConjurePhantom(p *Plan, args []*term.Term) error {
	if len(args) == 0 {
		return p.fail(explain.New(explain.DefinitionError, "conjure_phantom requires a formation name"))
	}
	f, ok := p.Grammar.LookupFormation(args[0].Spelling())
	if !ok {
		return p.fail(explain.New(explain.DefinitionError, "unknown formation %q", args[0].Spelling()))
	}
	derived, ok := formation.MatchWithPhantoms(&formation.Pattern{Formation: f}, p.Result, formation.AlwaysSatisfies{})
	if !ok {
		return p.fail(explain.New(explain.UserError, "cannot conjure phantoms into %q", args[0].Spelling()))
	}
	p.Result = derived
	return nil
}

func primPhantom(p *Plan, args []*term.Term) error {
	call := callArg(args, 0)
	if call == nil {
		return p.fail(explain.New(explain.DefinitionError, "phantom requires a call argument"))
	}
	sub := NewPlan(p.Grammar, p.Ctx, p.Stage, p.Result)
	if err := sub.Construct(call); err != nil {
		return p.fail(sub.Explanation)
	}
	p.Result = sub.Result.WithoutPhantoms()
	p.Steps = append(p.Steps, sub.Steps...)
	return nil
}
