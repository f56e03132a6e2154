package replanning

import (
	"math"
	"math/rand/v2"

	"github.com/kilianp07/modesim/core/population"
)

// PlanSelector picks one of a person's plans.
type PlanSelector interface {
	Name() string
	Select(r *rand.Rand, person *population.Person) *population.Plan
}

// RandomPlanSelector picks a plan uniformly.
type RandomPlanSelector struct{}

func (RandomPlanSelector) Name() string { return "SelectRandom" }

func (RandomPlanSelector) Select(r *rand.Rand, person *population.Person) *population.Plan {
	if len(person.Plans) == 0 {
		return nil
	}
	return person.Plans[r.IntN(len(person.Plans))]
}

// BestPlanSelector picks the highest scored plan. Unscored plans come first.
type BestPlanSelector struct{}

func (BestPlanSelector) Name() string { return "BestScore" }

func (BestPlanSelector) Select(_ *rand.Rand, person *population.Person) *population.Plan {
	if u := firstUnscored(person); u != nil {
		return u
	}
	var best *population.Plan
	for _, p := range person.Plans {
		if best == nil || *p.Score > *best.Score {
			best = p
		}
	}
	return best
}

// KeepSelected returns the currently selected plan.
type KeepSelected struct{}

func (KeepSelected) Name() string { return "KeepLastSelected" }

func (KeepSelected) Select(_ *rand.Rand, person *population.Person) *population.Plan {
	return person.SelectedPlan()
}

// ExpBetaPlanSelector draws a plan with probability proportional to exp(beta*score).
type ExpBetaPlanSelector struct {
	Beta float64
}

func (ExpBetaPlanSelector) Name() string { return "SelectExpBeta" }

func (s ExpBetaPlanSelector) Select(r *rand.Rand, person *population.Person) *population.Plan {
	if len(person.Plans) == 0 {
		return nil
	}
	if u := firstUnscored(person); u != nil {
		return u
	}
	maxScore := math.Inf(-1)
	for _, p := range person.Plans {
		maxScore = math.Max(maxScore, *p.Score)
	}
	weights := make([]float64, len(person.Plans))
	for i, p := range person.Plans {
		weights[i] = math.Exp(s.Beta * (*p.Score - maxScore))
	}
	return person.Plans[discrete(r, weights)]
}

// ChangeExpBeta keeps the selected plan or switches to a random other plan
// with probability min(1, 0.01*exp(beta/2 * (other - current))).
type ChangeExpBeta struct {
	Beta float64
}

func (ChangeExpBeta) Name() string { return "ChangeExpBeta" }

func (s ChangeExpBeta) Select(r *rand.Rand, person *population.Person) *population.Plan {
	current := person.SelectedPlan()
	if current == nil {
		return RandomPlanSelector{}.Select(r, person)
	}
	if !current.Scored() || len(person.Plans) < 2 {
		return current
	}
	var others []*population.Plan
	for _, p := range person.Plans {
		if p != current {
			others = append(others, p)
		}
	}
	other := others[r.IntN(len(others))]
	if !other.Scored() {
		return other
	}
	weight := math.Exp(0.5 * s.Beta * (*other.Score - *current.Score))
	if r.Float64() < 0.01*weight {
		return other
	}
	return current
}

// WorstPlanForRemovalSelector picks the plan to forget when memory is full:
// an unscored plan if any, otherwise the lowest score.
type WorstPlanForRemovalSelector struct{}

func (WorstPlanForRemovalSelector) Name() string { return "WorstPlanForRemoval" }

func (WorstPlanForRemovalSelector) Select(_ *rand.Rand, person *population.Person) *population.Plan {
	if u := firstUnscored(person); u != nil {
		return u
	}
	var worst *population.Plan
	for _, p := range person.Plans {
		if worst == nil || *p.Score < *worst.Score {
			worst = p
		}
	}
	return worst
}

func firstUnscored(person *population.Person) *population.Plan {
	for _, p := range person.Plans {
		if !p.Scored() {
			return p
		}
	}
	return nil
}

// discrete returns an index drawn with probability proportional to weights.
func discrete(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := total * r.Float64()
	sum := 0.0
	for i, w := range weights {
		sum += w
		if sum > x {
			return i
		}
	}
	return len(weights) - 1
}
