package api

import (
	"github.com/Conceptual-Machines/setsinmotion-go/internal/engine"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/geometry"
)

// The engine/geometry types carry back-references (Grammar, Ctx, parent
// Groups) that don't serialize cleanly, so the introspection API walks
// them into these plain view structs instead of marshaling directly —
// the same shape the teacher's handlers build for their own agent
// responses (a hand-written response struct per endpoint, not a direct
// marshal of an internal domain type).

type dancerView struct {
	Index  int    `json:"index"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing string `json:"facing"`
	Gender string `json:"gender"`
	Couple int    `json:"couple"`
}

type groupView struct {
	Geometry string       `json:"geometry"`
	Dancers  []dancerView `json:"dancers"`
}

func viewGroup(g *geometry.Group) *groupView {
	if g == nil {
		return nil
	}
	v := &groupView{Geometry: g.Tag.String()}
	for _, d := range g.Dancers {
		v.Dancers = append(v.Dancers, dancerView{
			Index:  d.Index(),
			X:      d.X,
			Y:      d.Y,
			Facing: d.Facing.String(),
			Gender: d.Gender.String(),
			Couple: d.Couple,
		})
	}
	return v
}

type motionView struct {
	Dancer     int    `json:"dancer"`
	Kind       string `json:"kind"`
	FromX      int    `json:"from_x"`
	FromY      int    `json:"from_y"`
	FromFacing string `json:"from_facing"`
	ToX        int    `json:"to_x"`
	ToY        int    `json:"to_y"`
	ToFacing   string `json:"to_facing"`
}

type intervalView struct {
	Beats   int          `json:"beats"`
	Motions []motionView `json:"motions"`
}

func viewInterval(iv *engine.Interval) *intervalView {
	if iv == nil {
		return nil
	}
	v := &intervalView{Beats: iv.Beats}
	for _, m := range iv.Motions {
		v.Motions = append(v.Motions, motionView{
			Dancer:     m.DancerIndex,
			Kind:       m.Kind.String(),
			FromX:      m.FromX,
			FromY:      m.FromY,
			FromFacing: m.FromFacing.String(),
			ToX:        m.ToX,
			ToY:        m.ToY,
			ToFacing:   m.ToFacing.String(),
		})
	}
	return v
}

type tileView struct {
	Mask int   `json:"mask"`
	Plan *planView `json:"plan"`
}

type stepView struct {
	Kind        string        `json:"kind"`
	Tiles       []tileView    `json:"tiles,omitempty"`
	Interval    *intervalView `json:"interval,omitempty"`
	DontBreathe bool          `json:"dont_breathe,omitempty"`
	Explanation *explanationView `json:"explanation,omitempty"`
}

func stepKindName(k engine.StepKind) string {
	switch k {
	case engine.StepPrimitive:
		return "primitive"
	case engine.StepPart:
		return "part"
	case engine.StepCall:
		return "call"
	case engine.StepStartTogether:
		return "start_together"
	default:
		return "unknown"
	}
}

type explanationView struct {
	Kind    string           `json:"kind"`
	Message string           `json:"message"`
	Cause   *explanationView `json:"cause,omitempty"`
}

func viewExplanationFromExplain(e *explain.Explanation) *explanationView {
	if e == nil {
		return nil
	}
	v := &explanationView{Kind: e.Kind.String(), Message: e.Message}
	if e.Cause != nil {
		v.Cause = viewExplanationFromExplain(e.Cause)
	}
	return v
}

type planView struct {
	Start       *groupView       `json:"start"`
	Result      *groupView       `json:"result"`
	Steps       []stepView       `json:"steps"`
	Failed      bool             `json:"failed"`
	Explanation *explanationView `json:"explanation,omitempty"`
}

func viewPlan(p *engine.Plan) *planView {
	if p == nil {
		return nil
	}
	v := &planView{
		Start:  viewGroup(p.Start),
		Result: viewGroup(p.Result),
		Failed: p.Failed,
	}
	for _, s := range p.Steps {
		sv := stepView{Kind: stepKindName(s.Kind), Interval: viewInterval(s.Interval), DontBreathe: s.DontBreathe}
		for _, t := range s.Tiles {
			sv.Tiles = append(sv.Tiles, tileView{Mask: int(t.Mask), Plan: viewPlan(t.Plan)})
		}
		if s.Explanation != nil {
			sv.Explanation = viewExplanationFromExplain(s.Explanation)
		}
		v.Steps = append(v.Steps, sv)
	}
	if p.Explanation != nil {
		v.Explanation = viewExplanationFromExplain(p.Explanation)
	}
	return v
}
