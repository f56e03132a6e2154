package app

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/modesim/config"
	"github.com/kilianp07/modesim/core/population"
)

func TestBuildNetwork(t *testing.T) {
	net, err := BuildNetwork(config.NetworkConfig{Capacity: 700000, Freespeed: 10})
	require.NoError(t, err)

	require.Len(t, net.Nodes(), 4)
	require.Len(t, net.Links(), 3)
	for id, length := range map[string]float64{"L1": 1000, "L2": 1000, "L3": 0} {
		l := net.Link(id)
		require.NotNil(t, l, id)
		assert.Equal(t, length, l.Length, id)
		assert.Equal(t, 10.0, l.Freespeed, id)
		assert.Equal(t, 700000.0, l.Capacity, id)
	}
	assert.Equal(t, "N1", net.Link("L1").From.ID)
	assert.Equal(t, "N4", net.Link("L3").To.ID)
}

func TestBuildPopulation(t *testing.T) {
	net, err := BuildNetwork(config.NetworkConfig{Capacity: 700000, Freespeed: 10})
	require.NoError(t, err)

	pop, err := BuildPopulation(net, 200, 4711)
	require.NoError(t, err)
	require.Equal(t, 200, pop.Len())

	counts := map[string]int{}
	for i, p := range pop.Persons() {
		require.Len(t, p.Plans, 1)
		plan := p.SelectedPlan()
		require.NotNil(t, plan)
		acts := plan.Activities()
		require.Len(t, acts, 2)
		assert.Equal(t, StartLink, acts[0].LinkID)
		assert.Equal(t, 0.0, acts[0].EndTime)
		assert.Equal(t, 1000.0, acts[0].Coord.Y)
		assert.Equal(t, EndLink, acts[1].LinkID)
		assert.Equal(t, 3000.0, acts[1].Coord.Y)
		legs := plan.Legs()
		require.Len(t, legs, 1)
		counts[legs[0].Mode]++
		assert.Equal(t, i, mustAtoi(t, p.ID))
	}
	assert.Equal(t, 200, counts["car"]+counts["pt"])
	assert.Greater(t, counts["car"], 50)
	assert.Greater(t, counts["pt"], 50)
}

func modes(pop *population.Population) []string {
	var out []string
	for _, p := range pop.Persons() {
		out = append(out, p.SelectedPlan().Legs()[0].Mode)
	}
	return out
}

func TestBuildPopulationDeterministic(t *testing.T) {
	net, err := BuildNetwork(config.NetworkConfig{Capacity: 700000, Freespeed: 10})
	require.NoError(t, err)

	a, err := BuildPopulation(net, 50, 1)
	require.NoError(t, err)
	b, err := BuildPopulation(net, 50, 1)
	require.NoError(t, err)
	c, err := BuildPopulation(net, 50, 2)
	require.NoError(t, err)

	assert.Equal(t, modes(a), modes(b))
	assert.NotEqual(t, modes(a), modes(c))
}

func TestBuildRouter(t *testing.T) {
	cfg := config.Default()
	net, err := BuildNetwork(cfg.Network)
	require.NoError(t, err)
	r := BuildRouter(cfg.Routing, net)
	assert.True(t, r.Handles("car"))
	assert.True(t, r.Handles("pt"))
	assert.False(t, r.Handles("bike"))

	pop, err := BuildPopulation(net, 1, 4711)
	require.NoError(t, err)
	plan := pop.Persons()[0].SelectedPlan()
	plan.Legs()[0].Mode = "pt"
	require.NoError(t, r.RoutePlan(plan))
	assert.InDelta(t, 103.00001, plan.Legs()[0].Route.TravelTime, 1e-9)
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
