package population

import (
	"github.com/kilianp07/modesim/core/network"
)

// Element is either an *Activity or a *Leg.
type Element interface {
	isElement()
}

// Activity is a stay at a link.
type Activity struct {
	Type   string        `json:"type"`
	LinkID string        `json:"link"`
	Coord  network.Coord `json:"coord"`
	// EndTime in seconds after midnight. Ignored for the last activity.
	EndTime float64 `json:"end_time"`
}

// Route is the routed path of a leg.
type Route struct {
	// LinkIDs lists start link, traversed links and end link. Empty for
	// teleported routes.
	LinkIDs []string `json:"links,omitempty"`
	// Distance in meters.
	Distance float64 `json:"distance"`
	// TravelTime is the expected travel time in seconds.
	TravelTime float64 `json:"travel_time"`
}

// Leg is a trip between two activities.
type Leg struct {
	Mode  string `json:"mode"`
	Route *Route `json:"route,omitempty"`
	// DepartureTime and TravelTime hold the values experienced in the last
	// executed iteration.
	DepartureTime float64 `json:"departure_time"`
	TravelTime    float64 `json:"travel_time"`
}

func (*Activity) isElement() {}
func (*Leg) isElement()      {}

// Plan is an ordered list of activities and legs with an optional score.
type Plan struct {
	Elements []Element
	Score    *float64
	// Type names the strategy that created the plan.
	Type string
}

// NewPlan returns a plan holding elements.
func NewPlan(elements ...Element) *Plan {
	return &Plan{Elements: elements}
}

// AddActivity appends an activity.
func (p *Plan) AddActivity(a *Activity) { p.Elements = append(p.Elements, a) }

// AddLeg appends a leg.
func (p *Plan) AddLeg(l *Leg) { p.Elements = append(p.Elements, l) }

// SetScore stores a score.
func (p *Plan) SetScore(s float64) { p.Score = &s }

// Scored reports whether the plan carries a score.
func (p *Plan) Scored() bool { return p.Score != nil }

// Legs returns the plan's legs in order. The position in the slice is the trip index.
func (p *Plan) Legs() []*Leg {
	var legs []*Leg
	for _, e := range p.Elements {
		if l, ok := e.(*Leg); ok {
			legs = append(legs, l)
		}
	}
	return legs
}

// Activities returns the plan's activities in order.
func (p *Plan) Activities() []*Activity {
	var acts []*Activity
	for _, e := range p.Elements {
		if a, ok := e.(*Activity); ok {
			acts = append(acts, a)
		}
	}
	return acts
}

// Trip is a leg with its surrounding activities.
type Trip struct {
	Index  int
	Origin *Activity
	Leg    *Leg
	Dest   *Activity
}

// Trips returns every leg enclosed by two activities.
func (p *Plan) Trips() []Trip {
	var trips []Trip
	for i, e := range p.Elements {
		leg, ok := e.(*Leg)
		if !ok || i == 0 || i == len(p.Elements)-1 {
			continue
		}
		from, okFrom := p.Elements[i-1].(*Activity)
		to, okTo := p.Elements[i+1].(*Activity)
		if !okFrom || !okTo {
			continue
		}
		trips = append(trips, Trip{Index: len(trips), Origin: from, Leg: leg, Dest: to})
	}
	return trips
}

// Copy returns a deep copy of p.
func (p *Plan) Copy() *Plan {
	cp := &Plan{Type: p.Type, Elements: make([]Element, 0, len(p.Elements))}
	if p.Score != nil {
		cp.SetScore(*p.Score)
	}
	for _, e := range p.Elements {
		switch v := e.(type) {
		case *Activity:
			a := *v
			cp.Elements = append(cp.Elements, &a)
		case *Leg:
			l := *v
			if v.Route != nil {
				r := *v.Route
				r.LinkIDs = append([]string(nil), v.Route.LinkIDs...)
				l.Route = &r
			}
			cp.Elements = append(cp.Elements, &l)
		}
	}
	return cp
}
