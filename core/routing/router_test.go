package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/modesim/core/network"
	"github.com/kilianp07/modesim/core/population"
)

func corridor(t *testing.T) *network.Network {
	t.Helper()
	n := network.New()
	nodes := []*network.Node{
		{ID: "N1", Coord: network.Coord{X: 0, Y: 1000}},
		{ID: "N2", Coord: network.Coord{X: 0, Y: 2000}},
		{ID: "N3", Coord: network.Coord{X: 0, Y: 3000}},
		{ID: "N4", Coord: network.Coord{X: 0, Y: 4000}},
	}
	for _, node := range nodes {
		require.NoError(t, n.AddNode(node))
	}
	for i, id := range []string{"L1", "L2", "L3"} {
		require.NoError(t, n.AddLink(&network.Link{ID: id, From: nodes[i], To: nodes[i+1], Freespeed: 10, Capacity: 1000}))
	}
	return n
}

func plan(mode string) *population.Plan {
	p := population.NewPlan()
	p.AddActivity(&population.Activity{Type: "generic", LinkID: "L1", Coord: network.Coord{X: 0, Y: 1000}})
	p.AddLeg(&population.Leg{Mode: mode})
	p.AddActivity(&population.Activity{Type: "generic", LinkID: "L3", Coord: network.Coord{X: 0, Y: 4000}})
	return p
}

func TestNetworkRoute(t *testing.T) {
	m := NewNetworkRoutingModule(corridor(t))
	acts := plan("car").Activities()
	route, err := m.CalcRoute(acts[0], acts[1], 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "L3"}, route.LinkIDs)
	assert.InDelta(t, 2000, route.Distance, 1e-9)
	assert.InDelta(t, 200, route.TravelTime, 1e-9)
}

func TestNetworkRouteSameLink(t *testing.T) {
	m := NewNetworkRoutingModule(corridor(t))
	a := &population.Activity{LinkID: "L2"}
	route, err := m.CalcRoute(a, a, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"L2"}, route.LinkIDs)
	assert.Zero(t, route.TravelTime)
}

func TestNetworkRouteErrors(t *testing.T) {
	m := NewNetworkRoutingModule(corridor(t))
	_, err := m.CalcRoute(&population.Activity{LinkID: "L9"}, &population.Activity{LinkID: "L1"}, 0)
	assert.ErrorIs(t, err, ErrUnknownLink)
	_, err = m.CalcRoute(&population.Activity{LinkID: "L3"}, &population.Activity{LinkID: "L1"}, 0)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestTeleportation(t *testing.T) {
	m := TeleportationRoutingModule{Speed: 2000.0 / 103.00001, BeelineDistanceFactor: 1}
	acts := plan("pt").Activities()
	route, err := m.CalcRoute(acts[0], acts[1], 0)
	require.NoError(t, err)
	assert.InDelta(t, 3000, route.Distance, 1e-9)
	assert.InDelta(t, 3000/(2000.0/103.00001), route.TravelTime, 1e-9)
	assert.Empty(t, route.LinkIDs)

	_, err = TeleportationRoutingModule{}.CalcRoute(acts[0], acts[1], 0)
	assert.Error(t, err)
}

func TestTripRouter(t *testing.T) {
	r := NewTripRouter()
	r.Register("car", NewNetworkRoutingModule(corridor(t)))
	r.Register("pt", TeleportationRoutingModule{Speed: 20})
	assert.Equal(t, []string{"car", "pt"}, r.Modes())
	assert.True(t, r.Handles("pt"))

	p := plan("pt")
	require.NoError(t, r.RoutePlan(p))
	leg := p.Legs()[0]
	require.NotNil(t, leg.Route)
	assert.InDelta(t, 150, leg.TravelTime, 1e-9)

	leg.Mode = "car"
	require.NoError(t, r.RouteMissing(p))
	assert.Empty(t, leg.Route.LinkIDs, "existing route must be kept")
	leg.Route = nil
	require.NoError(t, r.RouteMissing(p))
	assert.Len(t, leg.Route.LinkIDs, 3)

	leg.Mode = "bike"
	assert.ErrorIs(t, r.RoutePlan(p), ErrUnknownMode)
}
