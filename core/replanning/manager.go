package replanning

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/rng"
)

// replanningStream separates replanning draws from other per-person streams.
const replanningStream = 0x7265706c616e

// Setting is a strategy with its selection weight.
type Setting struct {
	Strategy *PlanStrategy
	Weight   float64
}

// StrategyManager assigns one strategy per person and iteration.
type StrategyManager struct {
	seed     int64
	maxPlans int
	workers  int
	settings []Setting
	total    float64
	removal  PlanSelector
}

// NewStrategyManager returns a manager keeping at most maxPlans plans per
// person before replanning. A non-positive maxPlans disables removal.
func NewStrategyManager(seed int64, maxPlans int) *StrategyManager {
	return &StrategyManager{
		seed:     seed,
		maxPlans: maxPlans,
		workers:  runtime.GOMAXPROCS(0),
		removal:  WorstPlanForRemovalSelector{},
	}
}

// SetWorkers bounds the number of persons replanned concurrently.
func (m *StrategyManager) SetWorkers(n int) {
	if n > 0 {
		m.workers = n
	}
}

// AddStrategy registers a strategy. Zero weights are kept but never drawn.
func (m *StrategyManager) AddStrategy(s *PlanStrategy, weight float64) error {
	if s == nil {
		return errors.New("nil strategy")
	}
	if weight < 0 {
		return fmt.Errorf("strategy %s: negative weight %v", s.Name(), weight)
	}
	m.settings = append(m.settings, Setting{Strategy: s, Weight: weight})
	m.total += weight
	return nil
}

// Settings returns the registered strategies.
func (m *StrategyManager) Settings() []Setting {
	return append([]Setting(nil), m.settings...)
}

func (m *StrategyManager) choose(r *rand.Rand) *PlanStrategy {
	if m.total <= 0 {
		return nil
	}
	weights := make([]float64, len(m.settings))
	for i, s := range m.settings {
		weights[i] = s.Weight
	}
	return m.settings[discrete(r, weights)].Strategy
}

// RunPerson replans one person and returns the name of the applied strategy.
func (m *StrategyManager) RunPerson(ctx context.Context, iteration int, person *population.Person) (string, error) {
	r := rng.ForPerson(m.seed, person.ID, replanningStream, uint64(iteration))
	if m.maxPlans > 0 {
		for len(person.Plans) > m.maxPlans {
			person.RemovePlan(m.removal.Select(r, person))
		}
	}
	s := m.choose(r)
	if s == nil {
		return "", nil
	}
	if err := s.Run(ctx, r, person); err != nil {
		return "", err
	}
	return s.Name(), nil
}

// Run replans every person and returns how often each strategy was applied.
func (m *StrategyManager) Run(ctx context.Context, iteration int, persons []*population.Person) (map[string]int, error) {
	applied := make([]string, len(persons))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, p := range persons {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name, err := m.RunPerson(ctx, iteration, p)
			applied[i] = name
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, name := range applied {
		if name != "" {
			counts[name]++
		}
	}
	return counts, nil
}
