package metrics

import "time"

// IterationStats summarizes the population after scoring one iteration.
// Score averages are taken over persons; persons without a scored plan are
// skipped.
type IterationStats struct {
	RunID     string `json:"run_id"`
	Iteration int    `json:"iteration"`
	Persons   int    `json:"persons"`
	// ModeShares is the share of executed legs per mode.
	ModeShares map[string]float64 `json:"mode_shares"`
	ModeCounts map[string]int     `json:"mode_counts"`
	// AvgExecuted is the mean score of the selected plans.
	AvgExecuted float64 `json:"avg_executed"`
	AvgBest     float64 `json:"avg_best"`
	AvgWorst    float64 `json:"avg_worst"`
	AvgAverage  float64 `json:"avg_average"`
	// PlanCount is the number of plans held by all persons.
	PlanCount int `json:"plan_count"`
	// StrategyCounts is how often each strategy was applied before this iteration.
	StrategyCounts map[string]int `json:"strategy_counts,omitempty"`
	Duration       time.Duration  `json:"duration"`
	Time           time.Time      `json:"time"`
}

// Sink records iteration statistics.
type Sink interface {
	RecordIteration(stats IterationStats) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordIteration(IterationStats) error { return nil }
