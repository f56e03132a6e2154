package controller

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/modesim/core/metrics"
	"github.com/kilianp07/modesim/core/population"
)

// Compute summarizes the selected plans and plan memories of persons.
func Compute(persons []*population.Person) metrics.IterationStats {
	var executed, best, worst, average []float64
	counts := make(map[string]int)
	legs := 0
	plans := 0
	for _, p := range persons {
		plans += len(p.Plans)
		if sel := p.SelectedPlan(); sel != nil {
			for _, l := range sel.Legs() {
				counts[l.Mode]++
				legs++
			}
			if sel.Scored() {
				executed = append(executed, *sel.Score)
			}
		}
		var scores []float64
		for _, plan := range p.Plans {
			if plan.Scored() {
				scores = append(scores, *plan.Score)
			}
		}
		if len(scores) == 0 {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, s := range scores {
			lo = math.Min(lo, s)
			hi = math.Max(hi, s)
		}
		best = append(best, hi)
		worst = append(worst, lo)
		average = append(average, stat.Mean(scores, nil))
	}
	shares := make(map[string]float64, len(counts))
	for m, n := range counts {
		shares[m] = float64(n) / float64(legs)
	}
	return metrics.IterationStats{
		Persons:     len(persons),
		ModeShares:  shares,
		ModeCounts:  counts,
		AvgExecuted: mean(executed),
		AvgBest:     mean(best),
		AvgWorst:    mean(worst),
		AvgAverage:  mean(average),
		PlanCount:   plans,
	}
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}
