package replanning

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/routing"
)

// ErrTooFewModes is returned when fewer than two distinct modes are available.
var ErrTooFewModes = errors.New("random mode needs at least two modes")

// RandomModeStrategyModule switches every leg to a different mode drawn
// uniformly from the allowed modes.
type RandomModeStrategyModule struct {
	modes []string
}

// NewRandomModeStrategyModule validates modes; duplicates are ignored.
func NewRandomModeStrategyModule(modes []string) (*RandomModeStrategyModule, error) {
	seen := make(map[string]bool, len(modes))
	var unique []string
	for _, m := range modes {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		unique = append(unique, m)
	}
	if len(unique) < 2 {
		return nil, fmt.Errorf("%w: got %v", ErrTooFewModes, modes)
	}
	return &RandomModeStrategyModule{modes: unique}, nil
}

func (*RandomModeStrategyModule) Name() string { return "RandomMode" }

// Modes returns the allowed modes.
func (m *RandomModeStrategyModule) Modes() []string {
	return append([]string(nil), m.modes...)
}

// NewMode draws a mode different from current.
func (m *RandomModeStrategyModule) NewMode(r *rand.Rand, current string) string {
	candidates := make([]string, 0, len(m.modes))
	for _, mode := range m.modes {
		if mode != current {
			candidates = append(candidates, mode)
		}
	}
	return candidates[r.IntN(len(candidates))]
}

// Handle implements StrategyModule. The stale route is dropped; ReRoute fills it in.
func (m *RandomModeStrategyModule) Handle(_ context.Context, r *rand.Rand, plan *population.Plan) error {
	for _, leg := range plan.Legs() {
		leg.Mode = m.NewMode(r, leg.Mode)
		leg.Route = nil
	}
	return nil
}

// RandomModeProvider assembles the RandomMode strategy:
// random plan selection, mode mutation, re-routing.
type RandomModeProvider struct {
	Modes  []string
	Router *routing.TripRouter
}

// Get builds the strategy.
func (p RandomModeProvider) Get() (*PlanStrategy, error) {
	mod, err := NewRandomModeStrategyModule(p.Modes)
	if err != nil {
		return nil, err
	}
	if p.Router == nil {
		return nil, errors.New("random mode: router is required")
	}
	return NewPlanStrategy("RandomMode", RandomPlanSelector{}, mod, ReRoute{Router: p.Router}), nil
}
