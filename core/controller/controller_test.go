package controller

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/modesim/core/metrics"
	"github.com/kilianp07/modesim/core/mobsim"
	"github.com/kilianp07/modesim/core/network"
	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/replanning"
	"github.com/kilianp07/modesim/core/routing"
	"github.com/kilianp07/modesim/core/scoring"
	"github.com/kilianp07/modesim/internal/eventbus"
)

type recordSink struct{ stats []metrics.IterationStats }

func (r *recordSink) RecordIteration(s metrics.IterationStats) error {
	r.stats = append(r.stats, s)
	return nil
}

type fixture struct {
	deps Deps
	sink *recordSink
}

func newFixture(t *testing.T, n int, strategy string, eps scoring.EpsilonProvider) fixture {
	t.Helper()
	net := network.New()
	nodes := []*network.Node{
		{ID: "N1", Coord: network.Coord{Y: 1000}},
		{ID: "N2", Coord: network.Coord{Y: 2000}},
		{ID: "N3", Coord: network.Coord{Y: 3000}},
		{ID: "N4", Coord: network.Coord{Y: 3000}},
	}
	for _, node := range nodes {
		require.NoError(t, net.AddNode(node))
	}
	for i, id := range []string{"L1", "L2", "L3"} {
		require.NoError(t, net.AddLink(&network.Link{ID: id, From: nodes[i], To: nodes[i+1], Freespeed: 10, Capacity: 700000}))
	}
	router := routing.NewTripRouter()
	router.Register("car", routing.NewNetworkRoutingModule(net))
	router.Register("pt", routing.TeleportationRoutingModule{Speed: 2000.0 / 103.00001, BeelineDistanceFactor: 1})

	pop := population.New()
	for i := 0; i < n; i++ {
		mode := "car"
		if i%2 == 1 {
			mode = "pt"
		}
		p := population.NewPerson(fmt.Sprint(i))
		plan := population.NewPlan()
		plan.AddActivity(&population.Activity{Type: "generic", LinkID: "L1", Coord: network.Coord{Y: 1000}})
		plan.AddLeg(&population.Leg{Mode: mode})
		plan.AddActivity(&population.Activity{Type: "generic", LinkID: "L3", Coord: network.Coord{Y: 3000}})
		p.AddPlan(plan)
		require.NoError(t, pop.Add(p))
	}

	var fn scoring.FunctionFactory = scoring.CharyparNagelFactory{Params: &scoring.Parameters{
		Modes: map[string]scoring.ModeParams{
			"car": {MarginalUtilityOfTraveling: -0.1},
			"pt":  {MarginalUtilityOfTraveling: -0.2},
		},
	}}
	if eps != nil {
		fn = scoring.EpsilonFactory{Delegate: fn, Provider: eps}
	}

	reg := replanning.NewRegistry(replanning.Deps{Modes: []string{"car", "pt"}, Router: router, Beta: 1})
	mgr := replanning.NewStrategyManager(4711, 3)
	s, err := replanning.Build(reg, strategy, nil)
	require.NoError(t, err)
	require.NoError(t, mgr.AddStrategy(s, 1))

	sink := &recordSink{}
	return fixture{
		deps: Deps{
			Population: pop,
			Router:     router,
			Mobsim:     mobsim.New(net, mobsim.Config{MainModes: []string{"car"}}),
			Scoring:    fn,
			Strategies: mgr,
			Sink:       sink,
		},
		sink: sink,
	}
}

func TestRunScoresFreeFlow(t *testing.T) {
	f := newFixture(t, 10, "KeepLastSelected", nil)
	c, err := New(Config{RunID: "r", LastIteration: 2}, f.deps)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, f.sink.stats, 3)
	last := f.sink.stats[2]
	assert.Equal(t, "r", last.RunID)
	assert.Equal(t, 2, last.Iteration)
	assert.Equal(t, 10, last.PlanCount)
	assert.InDelta(t, 0.5, last.ModeShares["car"], 1e-12)
	assert.Equal(t, map[string]int{"KeepLastSelected": 10}, last.StrategyCounts)
	assert.Nil(t, f.sink.stats[0].StrategyCounts, "no replanning before the first iteration")

	// Capacity headways add a few milliseconds per queued car.
	car := -0.1 * 101 / 3600
	pt := -0.2 * 103.00001 / 3600
	for _, p := range f.deps.Population.Persons() {
		plan := p.SelectedPlan()
		require.True(t, plan.Scored())
		if plan.Legs()[0].Mode == "car" {
			assert.InDelta(t, car, *plan.Score, 1e-6)
		} else {
			assert.InDelta(t, pt, *plan.Score, 1e-6)
		}
	}
	assert.InDelta(t, (car+pt)/2, last.AvgExecuted, 1e-6)
	assert.Len(t, c.History(), 3)
}

func TestRunRandomModeKeepsMemoryBounded(t *testing.T) {
	f := newFixture(t, 20, "RandomMode", nil)
	c, err := New(Config{LastIteration: 6, Workers: 4}, f.deps)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	for _, p := range f.deps.Population.Persons() {
		assert.LessOrEqual(t, len(p.Plans), 4)
		for _, plan := range p.Plans {
			assert.True(t, plan.Scored() || plan == p.SelectedPlan())
		}
	}
	for _, s := range f.sink.stats[1:] {
		assert.Equal(t, 20, s.StrategyCounts["RandomMode"])
	}
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	eps := scoring.NewGumbelEpsilonProvider(4711, 1)
	run := func(workers int) []metrics.IterationStats {
		f := newFixture(t, 30, "ChangeExpBeta", eps)
		reg := replanning.NewRegistry(replanning.Deps{Modes: []string{"car", "pt"}, Router: f.deps.Router, Beta: 1})
		inn, err := replanning.Build(reg, "RandomMode", nil)
		require.NoError(t, err)
		require.NoError(t, f.deps.Strategies.AddStrategy(inn, 0.1))
		c, err := New(Config{LastIteration: 8, Workers: workers}, f.deps)
		require.NoError(t, err)
		require.NoError(t, c.Run(context.Background()))
		return c.History()
	}
	a, b := run(1), run(8)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].ModeShares, b[i].ModeShares, "iteration %d", i)
		assert.InDelta(t, a[i].AvgExecuted, b[i].AvgExecuted, 1e-12, "iteration %d", i)
		assert.Equal(t, a[i].StrategyCounts, b[i].StrategyCounts, "iteration %d", i)
	}
}

func TestRunPublishesEvents(t *testing.T) {
	f := newFixture(t, 2, "KeepLastSelected", nil)
	bus := eventbus.NewTypedBuffered[IterationEvent](16)
	f.deps.Bus = bus
	sub := bus.Subscribe()
	c, err := New(Config{FirstIteration: 1, LastIteration: 3}, f.deps)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	bus.Close()

	var got []IterationEvent
	for ev := range sub {
		got = append(got, ev)
	}
	require.Len(t, got, 6)
	assert.Equal(t, IterationEvent{Phase: PhaseStart, Iteration: 1}, got[0])
	assert.Equal(t, PhaseEnd, got[5].Phase)
	require.NotNil(t, got[5].Stats)
	assert.Equal(t, 3, got[5].Stats.Iteration)
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t, 2, "KeepLastSelected", nil)
	c, err := New(Config{LastIteration: 5}, f.deps)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
	assert.Empty(t, f.sink.stats)
}

func TestNewValidates(t *testing.T) {
	f := newFixture(t, 1, "KeepLastSelected", nil)
	_, err := New(Config{FirstIteration: 2, LastIteration: 1}, f.deps)
	assert.Error(t, err)
	d := f.deps
	d.Mobsim = nil
	_, err = New(Config{}, d)
	assert.Error(t, err)
}

func TestCompute(t *testing.T) {
	p := population.NewPerson("0")
	a := population.NewPlan(&population.Leg{Mode: "car"})
	a.SetScore(-1)
	b := population.NewPlan(&population.Leg{Mode: "pt"})
	b.SetScore(-3)
	p.AddPlan(a)
	p.AddPlan(b)
	q := population.NewPerson("1")
	q.AddPlan(population.NewPlan(&population.Leg{Mode: "pt"}))

	st := Compute([]*population.Person{p, q})
	assert.Equal(t, 2, st.Persons)
	assert.Equal(t, 3, st.PlanCount)
	assert.Equal(t, map[string]int{"car": 1, "pt": 1}, st.ModeCounts)
	assert.InDelta(t, -1, st.AvgExecuted, 1e-12)
	assert.InDelta(t, -1, st.AvgBest, 1e-12)
	assert.InDelta(t, -3, st.AvgWorst, 1e-12)
	assert.InDelta(t, -2, st.AvgAverage, 1e-12)
}
