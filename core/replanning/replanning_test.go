package replanning

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/modesim/core/network"
	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/routing"
)

func testRouter(t *testing.T) *routing.TripRouter {
	t.Helper()
	n := network.New()
	nodes := []*network.Node{
		{ID: "N1", Coord: network.Coord{Y: 1000}},
		{ID: "N2", Coord: network.Coord{Y: 2000}},
		{ID: "N3", Coord: network.Coord{Y: 3000}},
		{ID: "N4", Coord: network.Coord{Y: 3000}},
	}
	for _, node := range nodes {
		require.NoError(t, n.AddNode(node))
	}
	for i, id := range []string{"L1", "L2", "L3"} {
		require.NoError(t, n.AddLink(&network.Link{ID: id, From: nodes[i], To: nodes[i+1], Freespeed: 10, Capacity: 700000}))
	}
	r := routing.NewTripRouter()
	r.Register("car", routing.NewNetworkRoutingModule(n))
	r.Register("pt", routing.TeleportationRoutingModule{Speed: 2000.0 / 103.00001, BeelineDistanceFactor: 1})
	return r
}

func newPerson(id, mode string) *population.Person {
	p := population.NewPerson(id)
	plan := population.NewPlan()
	plan.AddActivity(&population.Activity{Type: "generic", LinkID: "L1", Coord: network.Coord{Y: 1000}})
	plan.AddLeg(&population.Leg{Mode: mode})
	plan.AddActivity(&population.Activity{Type: "generic", LinkID: "L3", Coord: network.Coord{Y: 3000}})
	p.AddPlan(plan)
	return p
}

func TestRandomModeTwoModesAlwaysFlips(t *testing.T) {
	mod, err := NewRandomModeStrategyModule([]string{"car", "pt"})
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		assert.Equal(t, "pt", mod.NewMode(r, "car"))
		assert.Equal(t, "car", mod.NewMode(r, "pt"))
	}
}

func TestRandomModeUniformOverAlternatives(t *testing.T) {
	modes := []string{"car", "pt", "bike", "walk"}
	mod, err := NewRandomModeStrategyModule(modes)
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(7, 7))

	const n = 30000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		counts[mod.NewMode(r, "car")]++
	}
	assert.Zero(t, counts["car"])
	require.Len(t, counts, 3)

	expected := float64(n) / 3
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	limit := distuv.ChiSquared{K: 2}.Quantile(0.999)
	assert.Less(t, chi2, limit)
}

func TestRandomModeTooFewModes(t *testing.T) {
	for _, modes := range [][]string{nil, {"car"}, {"car", "car"}, {"car", ""}} {
		_, err := NewRandomModeStrategyModule(modes)
		assert.ErrorIs(t, err, ErrTooFewModes, "modes %v", modes)
	}
	_, err := RandomModeProvider{Modes: []string{"car"}, Router: testRouter(t)}.Get()
	assert.ErrorIs(t, err, ErrTooFewModes)
}

func TestRandomModeHandleReroutes(t *testing.T) {
	router := testRouter(t)
	s, err := RandomModeProvider{Modes: []string{"car", "pt"}, Router: router}.Get()
	require.NoError(t, err)
	assert.True(t, s.Innovative())

	p := newPerson("0", "car")
	require.NoError(t, router.RoutePlan(p.SelectedPlan()))
	p.SelectedPlan().SetScore(-1)

	require.NoError(t, s.Run(context.Background(), rand.New(rand.NewPCG(0, 0)), p))
	require.Len(t, p.Plans, 2)
	sel := p.SelectedPlan()
	assert.Equal(t, "RandomMode", sel.Type)
	assert.False(t, sel.Scored())
	assert.Equal(t, "pt", sel.Legs()[0].Mode)
	require.NotNil(t, sel.Legs()[0].Route)
	assert.InDelta(t, 103.00001, sel.Legs()[0].Route.TravelTime, 1e-6)
	assert.Equal(t, "car", p.Plans[0].Legs()[0].Mode, "original plan untouched")
}

func TestRandomModeFlipsWholePopulation(t *testing.T) {
	router := testRouter(t)
	s, err := RandomModeProvider{Modes: []string{"car", "pt"}, Router: router}.Get()
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(4711, 0))
	persons := make([]*population.Person, 100)
	original := make([]string, 100)
	for i := range persons {
		mode := "car"
		if r.IntN(2) == 1 {
			mode = "pt"
		}
		persons[i] = newPerson(fmt.Sprint(i), mode)
		original[i] = mode
	}
	mgr := NewStrategyManager(4711, 3)
	require.NoError(t, mgr.AddStrategy(s, 1))
	counts, err := mgr.Run(context.Background(), 1, persons)
	require.NoError(t, err)
	assert.Equal(t, 100, counts["RandomMode"])

	for i, p := range persons {
		assert.NotEqual(t, original[i], p.SelectedPlan().Legs()[0].Mode, "person %d", i)
		assert.Len(t, p.Plans, 2)
	}
}

func scored(p *population.Person, scores ...float64) {
	for i, s := range scores {
		if i >= len(p.Plans) {
			p.AddPlan(p.Plans[0].Copy())
		}
		p.Plans[i].SetScore(s)
	}
}

func TestSelectors(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 3))
	p := newPerson("0", "car")
	scored(p, -3, -1, -2)

	assert.Same(t, p.Plans[1], BestPlanSelector{}.Select(r, p))
	assert.Same(t, p.Plans[0], WorstPlanForRemovalSelector{}.Select(r, p))
	assert.Same(t, p.SelectedPlan(), KeepSelected{}.Select(r, p))

	p.Plans[2].Score = nil
	assert.Same(t, p.Plans[2], BestPlanSelector{}.Select(r, p))
	assert.Same(t, p.Plans[2], WorstPlanForRemovalSelector{}.Select(r, p))
	assert.Same(t, p.Plans[2], ExpBetaPlanSelector{Beta: 1}.Select(r, p))
}

func TestExpBetaPrefersBetterPlans(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 5))
	p := newPerson("0", "car")
	scored(p, 0, -5)
	hits := 0
	for i := 0; i < 1000; i++ {
		if (ExpBetaPlanSelector{Beta: 1}).Select(r, p) == p.Plans[0] {
			hits++
		}
	}
	// P = 1 / (1 + e^-5) ~ 0.993
	assert.Greater(t, hits, 970)
}

func TestChangeExpBeta(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 9))
	p := newPerson("0", "car")
	scored(p, -1, 1000)
	require.NoError(t, p.SetSelectedPlan(p.Plans[0]))
	// exp(500) saturates the switch probability.
	assert.Same(t, p.Plans[1], ChangeExpBeta{Beta: 1}.Select(r, p))

	scored(p, -1, -1000)
	for i := 0; i < 100; i++ {
		assert.Same(t, p.Plans[0], ChangeExpBeta{Beta: 1}.Select(r, p))
	}

	single := newPerson("1", "pt")
	single.Plans[0].SetScore(0)
	assert.Same(t, single.Plans[0], ChangeExpBeta{Beta: 1}.Select(r, single))
}

func TestStrategyManagerMemoryAndDeterminism(t *testing.T) {
	router := testRouter(t)
	build := func() (*StrategyManager, []*population.Person) {
		reg := NewRegistry(Deps{Modes: []string{"car", "pt"}, Router: router, Beta: 1})
		sel, err := Build(reg, "ChangeExpBeta", nil)
		require.NoError(t, err)
		inn, err := Build(reg, "RandomMode", nil)
		require.NoError(t, err)
		m := NewStrategyManager(11, 3)
		require.NoError(t, m.AddStrategy(sel, 0.5))
		require.NoError(t, m.AddStrategy(inn, 0.5))
		var persons []*population.Person
		for i := 0; i < 40; i++ {
			persons = append(persons, newPerson(fmt.Sprint(i), "car"))
		}
		return m, persons
	}

	m1, p1 := build()
	m2, p2 := build()
	m1.SetWorkers(1)
	m2.SetWorkers(8)
	for it := 1; it <= 10; it++ {
		for i := range p1 {
			for _, plan := range p1[i].Plans {
				plan.SetScore(float64(len(plan.Legs()[0].Mode)))
			}
			for _, plan := range p2[i].Plans {
				plan.SetScore(float64(len(plan.Legs()[0].Mode)))
			}
		}
		_, err := m1.Run(context.Background(), it, p1)
		require.NoError(t, err)
		_, err = m2.Run(context.Background(), it, p2)
		require.NoError(t, err)
	}
	for i := range p1 {
		assert.LessOrEqual(t, len(p1[i].Plans), 4)
		assert.Equal(t, len(p1[i].Plans), len(p2[i].Plans))
		assert.Equal(t, p1[i].SelectedPlan().Legs()[0].Mode, p2[i].SelectedPlan().Legs()[0].Mode)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(Deps{Modes: []string{"car", "pt"}, Router: testRouter(t), Beta: 2})
	for _, name := range []string{"ChangeExpBeta", "SelectExpBeta", "BestScore", "SelectRandom", "KeepLastSelected", "RandomMode", "ReRoute"} {
		s, err := Build(reg, name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}
	s, err := Build(reg, "SelectExpBeta", map[string]any{"beta": 0.5})
	require.NoError(t, err)
	assert.Equal(t, ExpBetaPlanSelector{Beta: 0.5}, s.selector)

	_, err = Build(reg, "TimeAllocationMutator", nil)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestManagerWeights(t *testing.T) {
	m := NewStrategyManager(1, 0)
	assert.Error(t, m.AddStrategy(NewPlanStrategy("x", KeepSelected{}), -1))
	assert.Error(t, m.AddStrategy(nil, 1))
	name, err := m.RunPerson(context.Background(), 1, newPerson("0", "car"))
	require.NoError(t, err)
	assert.Empty(t, name)
}
