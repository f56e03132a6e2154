// Package mobsim executes selected plans and records experienced travel times.
package mobsim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/modesim/core/network"
	"github.com/kilianp07/modesim/core/population"
)

// Config controls the queue simulation.
type Config struct {
	// MainModes are simulated on the network; every other mode is teleported.
	MainModes []string
	// FlowCapFactor scales link capacities (1 = as configured).
	FlowCapFactor float64
}

// QueueSim is a link-based FIFO queue model. A link is left no earlier than
// its rounded freespeed time after entering and no earlier than one capacity
// headway after the previous vehicle.
type QueueSim struct {
	net  *network.Network
	cfg  Config
	main map[string]bool
}

// New returns a QueueSim for net.
func New(net *network.Network, cfg Config) *QueueSim {
	if cfg.FlowCapFactor <= 0 {
		cfg.FlowCapFactor = 1
	}
	main := make(map[string]bool, len(cfg.MainModes))
	for _, m := range cfg.MainModes {
		main[m] = true
	}
	return &QueueSim{net: net, cfg: cfg, main: main}
}

type departure struct {
	seq  int
	time float64
	trip population.Trip
}

// Run executes the selected plan of every person and writes the experienced
// departure and travel times into the legs.
func (q *QueueSim) Run(ctx context.Context, persons []*population.Person) error {
	var deps []departure
	for _, p := range persons {
		plan := p.SelectedPlan()
		if plan == nil {
			continue
		}
		for _, trip := range plan.Trips() {
			deps = append(deps, departure{seq: len(deps), time: trip.Origin.EndTime, trip: trip})
		}
	}
	sort.SliceStable(deps, func(i, j int) bool { return deps[i].time < deps[j].time })

	lastExit := make(map[string]float64)
	for i, d := range deps {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		leg := d.trip.Leg
		leg.DepartureTime = d.time
		if !q.main[leg.Mode] {
			if leg.Route == nil {
				return fmt.Errorf("teleported %s leg without route", leg.Mode)
			}
			leg.TravelTime = leg.Route.TravelTime
			continue
		}
		if leg.Route == nil || len(leg.Route.LinkIDs) == 0 {
			return fmt.Errorf("network %s leg without route", leg.Mode)
		}
		t := d.time
		for _, id := range leg.Route.LinkIDs[1:] {
			l := q.net.Link(id)
			if l == nil {
				return fmt.Errorf("route references unknown link %s", id)
			}
			exit := t + linkTime(l)
			if prev, ok := lastExit[id]; ok {
				exit = math.Max(exit, prev+q.headway(l))
			}
			lastExit[id] = exit
			t = exit
		}
		leg.TravelTime = t - d.time
	}
	return nil
}

// linkTime rounds freespeed traversal up to full seconds, minimum one.
func linkTime(l *network.Link) float64 {
	return math.Max(1, math.Ceil(l.FreespeedTravelTime()))
}

func (q *QueueSim) headway(l *network.Link) float64 {
	c := l.Capacity * q.cfg.FlowCapFactor
	if c <= 0 {
		return 0
	}
	return 3600 / c
}
