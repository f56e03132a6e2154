package replanning

// Package replanning implements plan selection and plan mutation between
// iterations. A PlanStrategy couples a PlanSelector with zero or more
// StrategyModules; strategies with modules copy the selected plan before
// mutating it (innovation). The StrategyManager picks one strategy per person
// and iteration by weight, using a random stream derived from the global seed,
// the iteration and the person id, so persons can be replanned concurrently
// in any order with identical results.
