package scoring

// ModeParams are the per-mode leg scoring parameters.
type ModeParams struct {
	Constant float64 `json:"constant" yaml:"constant"`
	// MarginalUtilityOfTraveling in utils per hour.
	MarginalUtilityOfTraveling float64 `json:"marginal_utility_of_traveling" yaml:"marginal_utility_of_traveling"`
	// MarginalUtilityOfDistance in utils per meter.
	MarginalUtilityOfDistance float64 `json:"marginal_utility_of_distance" yaml:"marginal_utility_of_distance"`
	// MonetaryDistanceRate in money per meter.
	MonetaryDistanceRate float64 `json:"monetary_distance_rate" yaml:"monetary_distance_rate"`
}

// ActivityParams are the per-activity-type scoring parameters.
type ActivityParams struct {
	// TypicalDuration in seconds.
	TypicalDuration          float64 `json:"typical_duration" yaml:"typical_duration"`
	ScoringThisActivityAtAll bool    `json:"scoring_this_activity_at_all" yaml:"scoring_this_activity_at_all"`
	Priority                 float64 `json:"priority" yaml:"priority"`
}

// Parameters groups everything the Charypar-Nagel functions need.
type Parameters struct {
	Modes                  map[string]ModeParams     `json:"modes" yaml:"modes"`
	Activities             map[string]ActivityParams `json:"activities" yaml:"activities"`
	MarginalUtilityOfMoney float64                   `json:"marginal_utility_of_money" yaml:"marginal_utility_of_money"`
	// Performing in utils per hour.
	Performing float64 `json:"performing" yaml:"performing"`
}
