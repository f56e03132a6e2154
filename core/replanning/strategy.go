package replanning

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/kilianp07/modesim/core/population"
)

// ErrNoPlan is returned when the selector finds nothing to work on.
var ErrNoPlan = errors.New("no plan to replan")

// PlanStrategy is a selector followed by optional mutation modules.
type PlanStrategy struct {
	name     string
	selector PlanSelector
	modules  []StrategyModule
}

// NewPlanStrategy builds a strategy.
func NewPlanStrategy(name string, selector PlanSelector, modules ...StrategyModule) *PlanStrategy {
	return &PlanStrategy{name: name, selector: selector, modules: modules}
}

func (s *PlanStrategy) Name() string { return s.name }

// Innovative reports whether the strategy creates new plans.
func (s *PlanStrategy) Innovative() bool { return len(s.modules) > 0 }

// Run selects a plan for person. Innovative strategies add a mutated,
// unscored copy of the selected plan and select it.
func (s *PlanStrategy) Run(ctx context.Context, r *rand.Rand, person *population.Person) error {
	plan := s.selector.Select(r, person)
	if plan == nil {
		return fmt.Errorf("person %s: %w", person.ID, ErrNoPlan)
	}
	if !s.Innovative() {
		return person.SetSelectedPlan(plan)
	}
	cp := plan.Copy()
	cp.Score = nil
	cp.Type = s.name
	for _, m := range s.modules {
		if err := m.Handle(ctx, r, cp); err != nil {
			return fmt.Errorf("person %s %s: %w", person.ID, m.Name(), err)
		}
	}
	person.AddPlan(cp)
	return person.SetSelectedPlan(cp)
}
