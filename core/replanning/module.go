package replanning

import (
	"context"
	"math/rand/v2"

	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/routing"
)

// StrategyModule mutates a plan in place.
type StrategyModule interface {
	Name() string
	Handle(ctx context.Context, r *rand.Rand, plan *population.Plan) error
}

// ReRoute recomputes every route of the plan.
type ReRoute struct {
	Router *routing.TripRouter
}

func (ReRoute) Name() string { return "ReRoute" }

func (m ReRoute) Handle(_ context.Context, _ *rand.Rand, plan *population.Plan) error {
	return m.Router.RoutePlan(plan)
}
