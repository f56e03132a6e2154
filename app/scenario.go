package app

import (
	"fmt"
	"strconv"

	"github.com/kilianp07/modesim/config"
	"github.com/kilianp07/modesim/core/mobsim"
	"github.com/kilianp07/modesim/core/network"
	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/rng"
	"github.com/kilianp07/modesim/core/routing"
)

// Activity and link identifiers of the corridor experiment.
const (
	ActivityType = "generic"
	StartLink    = "L1"
	EndLink      = "L3"
)

// populationStream keys the coin flips of the initial modes.
const populationStream = 0x706f70

// BuildNetwork returns the four node corridor N1 -> N2 -> N3 -> N4. N3 and
// N4 share a coordinate so L3 has zero length.
func BuildNetwork(cfg config.NetworkConfig) (*network.Network, error) {
	net := network.New()
	nodes := []*network.Node{
		{ID: "N1", Coord: network.Coord{X: 0, Y: 1000}},
		{ID: "N2", Coord: network.Coord{X: 0, Y: 2000}},
		{ID: "N3", Coord: network.Coord{X: 0, Y: 3000}},
		{ID: "N4", Coord: network.Coord{X: 0, Y: 3000}},
	}
	for _, n := range nodes {
		if err := net.AddNode(n); err != nil {
			return nil, err
		}
	}
	for i, id := range []string{"L1", "L2", "L3"} {
		l := &network.Link{ID: id, From: nodes[i], To: nodes[i+1], Freespeed: cfg.Freespeed, Capacity: cfg.Capacity}
		if err := net.AddLink(l); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// BuildPopulation creates size travelers with ids "0".."size-1". Each plan
// leaves StartLink at time 0 towards EndLink by car or pt with equal odds.
func BuildPopulation(net *network.Network, size int, seed int64) (*population.Population, error) {
	start, end := net.Link(StartLink), net.Link(EndLink)
	if start == nil || end == nil {
		return nil, fmt.Errorf("network lacks %s or %s", StartLink, EndLink)
	}
	r := rng.Stream(seed, populationStream)
	pop := population.New()
	for i := 0; i < size; i++ {
		mode := "pt"
		if r.IntN(2) == 1 {
			mode = "car"
		}
		plan := population.NewPlan()
		plan.AddActivity(&population.Activity{Type: ActivityType, LinkID: StartLink, Coord: start.From.Coord})
		plan.AddLeg(&population.Leg{Mode: mode})
		plan.AddActivity(&population.Activity{Type: ActivityType, LinkID: EndLink, Coord: end.To.Coord})
		person := population.NewPerson(strconv.Itoa(i))
		person.AddPlan(plan)
		if err := pop.Add(person); err != nil {
			return nil, err
		}
	}
	return pop, nil
}

// BuildRouter registers a network module for every network mode and a
// beeline module for every teleported mode.
func BuildRouter(cfg config.RoutingConfig, net *network.Network) *routing.TripRouter {
	r := routing.NewTripRouter()
	if len(cfg.NetworkModes) > 0 {
		m := routing.NewNetworkRoutingModule(net)
		for _, mode := range cfg.NetworkModes {
			r.Register(mode, m)
		}
	}
	for mode, p := range cfg.Teleported {
		r.Register(mode, routing.TeleportationRoutingModule{Speed: p.Speed, BeelineDistanceFactor: p.BeelineDistanceFactor})
	}
	return r
}

// BuildMobsim returns the queue simulation configured by cfg.
func BuildMobsim(cfg config.QSimConfig, net *network.Network) *mobsim.QueueSim {
	return mobsim.New(net, mobsim.Config{MainModes: cfg.MainModes, FlowCapFactor: cfg.FlowCapacityFactor})
}
