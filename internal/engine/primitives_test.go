package engine

import (
	"testing"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/formation"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/grammar"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyGrammar() *grammar.Grammar {
	return &grammar.Grammar{Definitions: map[string]*grammar.Definition{}, Formations: map[string]*formation.Formation{}}
}

func callTo(name string, args ...*term.Term) *term.Term {
	return term.NewAnything(nil, testPrimitiveRef{name}, args, false)
}

func TestPrimForwardIntegerDistance(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	require.NoError(t, primForward(p, []*term.Term{term.NewInteger(1)}))
	require.Len(t, p.Steps, 1)
	assert.Equal(t, 2, p.Steps[0].Interval.Beats)
}

func TestPrimArcDefaultsToQuarterTurn(t *testing.T) {
	dancers := []*geometry.Dancer{geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)}
	p := newTestPlan(emptyGrammar(), geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers))
	require.NoError(t, primArc(p, nil))
	d := p.Result.ByIndex(dancers[0].Index())
	require.NotNil(t, d)
	assert.Equal(t, geometry.FacingBack, d.Facing)
}

func TestPrimArcHalfTurn(t *testing.T) {
	dancers := []*geometry.Dancer{geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)}
	p := newTestPlan(emptyGrammar(), geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers))
	args := []*term.Term{term.NewWord("ignored"), term.NewFraction(0, 1, 2)}
	require.NoError(t, primArc(p, args))
	d := p.Result.ByIndex(dancers[0].Index())
	require.NotNil(t, d)
	assert.Equal(t, geometry.FacingLeft, d.Facing)
}

func TestPrimArcZeroTurnIsIdentity(t *testing.T) {
	dancers := []*geometry.Dancer{geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)}
	p := newTestPlan(emptyGrammar(), geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers))
	args := []*term.Term{term.NewWord("ignored"), term.NewFraction(0, 0, 1)}
	require.NoError(t, primArc(p, args))
	d := p.Result.ByIndex(dancers[0].Index())
	require.NotNil(t, d)
	assert.Equal(t, geometry.FacingRight, d.Facing)
	assert.Equal(t, 0, d.X)
	assert.Equal(t, 0, d.Y)
}

func TestPrimFaceTurnsDancersTowardCenter(t *testing.T) {
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingBack, geometry.Boy, 1),
		geometry.NewDancer(4, 0, geometry.FacingBack, geometry.Girl, 1),
	}
	p := newTestPlan(emptyGrammar(), geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers))
	require.NoError(t, primFace(p, nil))
	left := p.Result.ByIndex(dancers[0].Index())
	right := p.Result.ByIndex(dancers[1].Index())
	assert.Equal(t, geometry.FacingRight, left.Facing)
	assert.Equal(t, geometry.FacingLeft, right.Facing)
}

func TestPrimActivateRunsCallOnSelectedSubsetAndReplacesResult(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("forward", term.NewInteger(1))
	args := []*term.Term{term.NewInteger(0), call}
	require.NoError(t, primActivate(p, args))
	assert.Equal(t, p.Start.Mask(), p.LastActiveMask)
	assert.Len(t, p.Result.Dancers, 2)
}

func TestPrimActivateRequiresCallArgument(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	err := primActivate(p, []*term.Term{term.NewInteger(0)})
	require.Error(t, err)
	assert.True(t, p.Failed)
}

func TestPrimAnyWhoCanPropagatesSuccess(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("forward", term.NewInteger(1))
	require.NoError(t, primAnyWhoCan(p, []*term.Term{call}))
	assert.Len(t, p.Steps, 1)
}

func TestPrimAnyWhoCanRecoversFromFailure(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("nonexistent")
	err := primAnyWhoCan(p, []*term.Term{call})
	require.NoError(t, err)
	assert.False(t, p.Failed)
	assert.Empty(t, p.Steps)
	assert.Same(t, p.Start, p.Result)
}

func TestPrimCanStartSetsActiveMaskOnSuccess(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("forward", term.NewInteger(1))
	require.NoError(t, primCanStart(p, []*term.Term{call}))
	assert.EqualValues(t, 1, p.LastActiveMask)
	// can_start never actually runs the call against p.Result.
	assert.Same(t, p.Start, p.Result)
}

func TestPrimCanStartClearsActiveMaskOnFailure(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("nonexistent")
	require.NoError(t, primCanStart(p, []*term.Term{call}))
	assert.EqualValues(t, 0, p.LastActiveMask)
}

func anyoneCall(name string, kind term.AnyoneKind) *term.Term {
	return callTo(name, term.NewAnyoneTerm(term.NewAnyoneLeaf(kind)))
}

func TestPrimStartTogetherDirectDisjointSucceeds(t *testing.T) {
	p := newTestPlan(emptyGrammar(), twoCoupleGroup())
	boys := anyoneCall("roll", term.AnyoneBoys)
	girls := anyoneCall("roll", term.AnyoneGirls)
	require.NoError(t, primStartTogetherDirect(p, []*term.Term{boys, girls}))
}

func TestPrimStartTogetherDirectOverlapFails(t *testing.T) {
	p := newTestPlan(emptyGrammar(), twoCoupleGroup())
	boys1 := anyoneCall("roll", term.AnyoneBoys)
	boys2 := anyoneCall("roll", term.AnyoneBoys)
	err := primStartTogetherDirect(p, []*term.Term{boys1, boys2})
	require.Error(t, err)
	assert.True(t, p.Failed)
}

func TestPrimMirrorReflectsGroupBeforeRunningCall(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("nothing")
	require.NoError(t, primMirror(p, []*term.Term{call}))
	boy := p.Result.ByIndex(geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1).Index())
	girl := p.Result.ByIndex(geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Girl, 1).Index())
	require.NotNil(t, boy)
	require.NotNil(t, girl)
	assert.Equal(t, 0, boy.X)
	assert.Equal(t, geometry.FacingLeft, boy.Facing)
	assert.Equal(t, -2, girl.X)
	assert.Equal(t, geometry.FacingRight, girl.Facing)
}

func TestPrimIfRunsThenBranchWhenTrue(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	thenCall := callTo("forward", term.NewInteger(1))
	require.NoError(t, primIf(p, []*term.Term{term.NewInteger(1), thenCall}))
	assert.Len(t, p.Steps, 1)
}

func TestPrimIfRunsElseBranchWhenFalse(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	thenCall := callTo("forward", term.NewInteger(1))
	elseCall := callTo("nothing")
	require.NoError(t, primIf(p, []*term.Term{term.NewInteger(0), thenCall, elseCall}))
	assert.Empty(t, p.Steps)
}

func TestPrimIfNoOpWhenFalseAndNoElse(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	thenCall := callTo("forward", term.NewInteger(1))
	require.NoError(t, primIf(p, []*term.Term{term.NewInteger(0), thenCall}))
	assert.Empty(t, p.Steps)
	assert.Same(t, p.Start, p.Result)
}

func TestPrimFractionalizeRunsWholePlusHalf(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("forward", term.NewInteger(1))
	frac := term.NewFraction(2, 1, 2)
	require.NoError(t, primFractionalize(p, []*term.Term{frac, call}))
	assert.Len(t, p.Steps, 3)
}

func TestPrimFractionalizeWholeOnlyRunsOnce(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	call := callTo("forward", term.NewInteger(1))
	frac := term.NewFraction(1, 0, 1)
	require.NoError(t, primFractionalize(p, []*term.Term{frac, call}))
	assert.Len(t, p.Steps, 1)
}

func TestPrimReduceMatchesFormationAndRestoresOuterName(t *testing.T) {
	f, err := formation.Parse("=couples @grid\na> a<")
	require.NoError(t, err)
	g := &grammar.Grammar{
		Definitions: map[string]*grammar.Definition{},
		Formations:  map[string]*formation.Formation{"couples": f, "couples_out": f},
	}
	p := newTestPlan(g, oneCoupleFacingEachOther())
	call := callTo("nothing")
	args := []*term.Term{term.NewWord("couples"), term.NewWord("couples_out"), call}
	require.NoError(t, primReduce(p, args))
	assert.Len(t, p.Result.Dancers, 2)
}

func TestPrimReduceFailsWhenFormationDoesNotMatch(t *testing.T) {
	f, err := formation.Parse("=couples @grid\na> a<")
	require.NoError(t, err)
	g := &grammar.Grammar{
		Definitions: map[string]*grammar.Definition{},
		Formations:  map[string]*formation.Formation{"couples": f},
	}
	// Both dancers face the same way, so the facing couple pattern can't
	// match regardless of closure.
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 2),
		geometry.NewDancer(2, 0, geometry.FacingRight, geometry.Girl, 4),
	}
	p := newTestPlan(g, geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers))
	call := callTo("nothing")
	args := []*term.Term{term.NewWord("couples"), term.NewWord("couples"), call}
	err = primReduce(p, args)
	require.Error(t, err)
}

func TestPrimConjurePhantomAndPhantomRoundtrip(t *testing.T) {
	f, err := formation.Parse("=couples @grid\na> a<")
	require.NoError(t, err)
	g := &grammar.Grammar{
		Definitions: map[string]*grammar.Definition{},
		Formations:  map[string]*formation.Formation{"couples": f},
	}
	dancers := []*geometry.Dancer{geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1)}
	p := newTestPlan(g, geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers))
	require.NoError(t, primConjurePhantom(p, []*term.Term{term.NewWord("couples")}))
	require.Len(t, p.Result.Dancers, 2)

	call := callTo("nothing")
	require.NoError(t, primPhantom(p, []*term.Term{call}))
	assert.Len(t, p.Result.Dancers, 1)
}

func maskTerm(mask uint16) *term.Term {
	return term.NewAnyoneTerm(term.NewAnyoneMask(mask))
}

// ringCompatibleDancers builds four couples (the identities geometry.Ring
// and geometry.Thar both key off of) at positions distinct from either
// target layout, so a reshape primitive's effect is observable.
func ringCompatibleDancers() *geometry.Group {
	dancers := make([]*geometry.Dancer, 0, 8)
	for couple := 1; couple <= 4; couple++ {
		x := (couple - 1) * 10
		dancers = append(dancers,
			geometry.NewDancer(x, 100, geometry.FacingBack, geometry.Girl, couple),
			geometry.NewDancer(x+2, 100, geometry.FacingBack, geometry.Boy, couple),
		)
	}
	return geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers)
}

func TestPrimFormRingSnapsDancersToRingLayout(t *testing.T) {
	p := newTestPlan(emptyGrammar(), ringCompatibleDancers())
	require.NoError(t, primFormRing(p, nil))
	ring := geometry.Ring()
	for _, want := range ring.Dancers {
		got := p.Result.ByIndex(want.Index())
		require.NotNil(t, got)
		assert.Equal(t, want.X, got.X)
		assert.Equal(t, want.Y, got.Y)
		assert.Equal(t, want.Facing, got.Facing)
	}
}

func TestPrimFormTharSnapsDancersToTharLayout(t *testing.T) {
	p := newTestPlan(emptyGrammar(), ringCompatibleDancers())
	require.NoError(t, primFormThar(p, nil))
	thar := geometry.Thar()
	for _, want := range thar.Dancers {
		got := p.Result.ByIndex(want.Index())
		require.NotNil(t, got)
		assert.Equal(t, want.X, got.X)
		assert.Equal(t, want.Y, got.Y)
	}
}

func TestPrimFormSetUsesDanceTypeStartingGroup(t *testing.T) {
	// newTestPlan uses dancetype.TwoCouple, whose StartingGroup is RingOfFour.
	dancers := []*geometry.Dancer{
		geometry.NewDancer(50, 50, geometry.FacingRight, geometry.Girl, 1),
		geometry.NewDancer(52, 50, geometry.FacingRight, geometry.Boy, 1),
		geometry.NewDancer(50, 52, geometry.FacingRight, geometry.Girl, 2),
		geometry.NewDancer(52, 52, geometry.FacingRight, geometry.Boy, 2),
	}
	p := newTestPlan(emptyGrammar(), geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers))
	require.NoError(t, primFormSet(p, nil))
	home := geometry.RingOfFour()
	for _, want := range home.Dancers {
		got := p.Result.ByIndex(want.Index())
		require.NotNil(t, got)
		assert.Equal(t, want.X, got.X)
		assert.Equal(t, want.Y, got.Y)
		assert.Equal(t, want.Facing, got.Facing)
	}
}

func TestPrimCanRollSucceedsAfterAFacingChange(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	require.NoError(t, primArc(p, nil))
	require.NoError(t, primCanRoll(p, nil))
}

func TestPrimCanRollFailsWithNoFacingChange(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	require.NoError(t, primForward(p, []*term.Term{term.NewInteger(1)}))
	err := primCanRoll(p, nil)
	require.Error(t, err)
	assert.True(t, p.Failed)
}

func TestPrimCanRollFailsWithNoPriorStep(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	err := primCanRoll(p, nil)
	require.Error(t, err)
}

func TestPrimCloserToCenterRequiresOneDancerEachSide(t *testing.T) {
	p := newTestPlan(emptyGrammar(), twoCoupleGroup())
	boys := term.NewAnyoneTerm(term.NewAnyoneLeaf(term.AnyoneBoys))
	girls := term.NewAnyoneTerm(term.NewAnyoneLeaf(term.AnyoneGirls))
	err := primCloserToCenter(p, []*term.Term{boys, girls})
	require.Error(t, err)
	assert.True(t, p.Failed)
}

func TestPrimCloserToCenterSucceedsWhenNotFartherFromCenter(t *testing.T) {
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1),
		geometry.NewDancer(4, 0, geometry.FacingLeft, geometry.Girl, 1),
		geometry.NewDancer(2, 8, geometry.FacingFront, geometry.Boy, 2),
	}
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers)
	p := newTestPlan(emptyGrammar(), g)
	// dancers[2] sits nearer the bounding-box center than dancers[0].
	d1, d2 := dancers[2].Mask(), dancers[0].Mask()
	require.NoError(t, primCloserToCenter(p, []*term.Term{maskTerm(d1), maskTerm(d2)}))
	assert.Equal(t, d1, p.LastActiveMask)
}

func TestPrimCloserToCenterFailsWhenFartherFromCenter(t *testing.T) {
	dancers := []*geometry.Dancer{
		geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1),
		geometry.NewDancer(4, 0, geometry.FacingLeft, geometry.Girl, 1),
		geometry.NewDancer(2, 8, geometry.FacingFront, geometry.Boy, 2),
	}
	g := geometry.NewGroup(geometry.TagGrid, geometry.Unrotated, dancers)
	p := newTestPlan(emptyGrammar(), g)
	// dancers[0] sits farther from the bounding-box center than dancers[2].
	d1, d2 := dancers[0].Mask(), dancers[2].Mask()
	err := primCloserToCenter(p, []*term.Term{maskTerm(d1), maskTerm(d2)})
	require.Error(t, err)
}

func TestPrimHasLateralFlowSucceedsOnConsistentRightwardMotion(t *testing.T) {
	p := newTestPlan(emptyGrammar(), twoCoupleGroup())
	require.NoError(t, primVeer(p, nil))
	args := []*term.Term{term.NewDirection(term.DirRight)}
	require.NoError(t, primHasLateralFlow(p, args))
}

func TestPrimHasLateralFlowFailsOnOppositeDirection(t *testing.T) {
	p := newTestPlan(emptyGrammar(), twoCoupleGroup())
	require.NoError(t, primVeer(p, nil))
	args := []*term.Term{term.NewDirection(term.DirLeft)}
	err := primHasLateralFlow(p, args)
	require.Error(t, err)
	assert.True(t, p.Failed)
}

func TestPrimHasLateralFlowRejectsUnrecognizedDirection(t *testing.T) {
	p := newTestPlan(emptyGrammar(), twoCoupleGroup())
	require.NoError(t, primVeer(p, nil))
	args := []*term.Term{term.NewDirection(term.DirPartner)}
	err := primHasLateralFlow(p, args)
	require.Error(t, err)
	assert.Equal(t, explain.DefinitionError, p.Explanation.Kind)
}

func TestPivotByPairsViaPullByRotatesFacingPairs180(t *testing.T) {
	p := newTestPlan(emptyGrammar(), oneCoupleFacingEachOther())
	require.NoError(t, primPullBy(p, nil))
	boy := p.Result.ByIndex(geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Boy, 1).Index())
	girl := p.Result.ByIndex(geometry.NewDancer(0, 0, geometry.FacingRight, geometry.Girl, 1).Index())
	require.NotNil(t, boy)
	require.NotNil(t, girl)
	// a facing couple pulling by swaps ends and reverses facing.
	assert.Equal(t, geometry.FacingLeft, boy.Facing)
	assert.Equal(t, geometry.FacingRight, girl.Facing)
}
