package scoring

import (
	"math"

	"github.com/kilianp07/modesim/core/population"
)

// Part is one additive contribution to a plan score.
type Part interface {
	Finish()
	Score() float64
}

// LegPart is notified of every executed leg.
type LegPart interface {
	Part
	HandleLeg(tripIndex int, leg *population.Leg)
}

// ActivityPart is notified of every activity with its start and end time.
type ActivityPart interface {
	Part
	HandleActivity(act *population.Activity, start, end float64)
}

// SumScoringFunction adds up its parts.
type SumScoringFunction struct {
	parts []Part
}

// AddPart appends a contribution.
func (f *SumScoringFunction) AddPart(p Part) { f.parts = append(f.parts, p) }

// HandleLeg forwards to leg-aware parts.
func (f *SumScoringFunction) HandleLeg(tripIndex int, leg *population.Leg) {
	for _, p := range f.parts {
		if lp, ok := p.(LegPart); ok {
			lp.HandleLeg(tripIndex, leg)
		}
	}
}

// HandleActivity forwards to activity-aware parts.
func (f *SumScoringFunction) HandleActivity(act *population.Activity, start, end float64) {
	for _, p := range f.parts {
		if ap, ok := p.(ActivityPart); ok {
			ap.HandleActivity(act, start, end)
		}
	}
}

// Finish closes every part.
func (f *SumScoringFunction) Finish() {
	for _, p := range f.parts {
		p.Finish()
	}
}

// Score returns the sum of all parts.
func (f *SumScoringFunction) Score() float64 {
	total := 0.0
	for _, p := range f.parts {
		total += p.Score()
	}
	return total
}

// ScorePlan replays an executed plan through fn and returns the score.
// Activity times come from the experienced leg times; the last activity
// lasts until the end of the day.
func ScorePlan(fn *SumScoringFunction, plan *population.Plan) float64 {
	start := 0.0
	legs := 0
	for i, e := range plan.Elements {
		switch v := e.(type) {
		case *population.Activity:
			end := v.EndTime
			if i == len(plan.Elements)-1 {
				end = math.Max(start, 24*3600)
			}
			fn.HandleActivity(v, start, end)
		case *population.Leg:
			fn.HandleLeg(legs, v)
			start = v.DepartureTime + v.TravelTime
			legs++
		}
	}
	fn.Finish()
	return fn.Score()
}

// LegScoring is the Charypar-Nagel leg term.
type LegScoring struct {
	params *Parameters
	score  float64
}

// NewLegScoring returns a LegScoring for params.
func NewLegScoring(params *Parameters) *LegScoring { return &LegScoring{params: params} }

func (s *LegScoring) HandleLeg(_ int, leg *population.Leg) {
	mp := s.params.Modes[leg.Mode]
	dist := 0.0
	if leg.Route != nil {
		dist = leg.Route.Distance
	}
	s.score += mp.Constant +
		mp.MarginalUtilityOfTraveling*leg.TravelTime/3600 +
		mp.MarginalUtilityOfDistance*dist +
		mp.MonetaryDistanceRate*s.params.MarginalUtilityOfMoney*dist
}

func (s *LegScoring) Finish()        {}
func (s *LegScoring) Score() float64 { return s.score }

// ActivityScoring is the logarithmic performing term for scored activity types.
type ActivityScoring struct {
	params *Parameters
	score  float64
}

// NewActivityScoring returns an ActivityScoring for params.
func NewActivityScoring(params *Parameters) *ActivityScoring {
	return &ActivityScoring{params: params}
}

func (s *ActivityScoring) HandleActivity(act *population.Activity, start, end float64) {
	ap, ok := s.params.Activities[act.Type]
	if !ok || !ap.ScoringThisActivityAtAll || ap.TypicalDuration <= 0 {
		return
	}
	prio := ap.Priority
	if prio <= 0 {
		prio = 1
	}
	typ := ap.TypicalDuration / 3600
	zero := typ * math.Exp(-10/(typ/prio))
	dur := math.Max(end-start, 0) / 3600
	if dur <= 0 {
		return
	}
	s.score += s.params.Performing * typ * math.Log(dur/zero)
}

func (s *ActivityScoring) Finish()        {}
func (s *ActivityScoring) Score() float64 { return s.score }
