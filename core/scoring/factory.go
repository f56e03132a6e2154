package scoring

import "github.com/kilianp07/modesim/core/population"

// FunctionFactory creates the scoring function of a person. The controller
// calls it once per person and iteration.
type FunctionFactory interface {
	New(person *population.Person) *SumScoringFunction
}

// CharyparNagelFactory builds activity and leg scoring.
type CharyparNagelFactory struct {
	Params *Parameters
}

// New implements FunctionFactory.
func (f CharyparNagelFactory) New(*population.Person) *SumScoringFunction {
	fn := &SumScoringFunction{}
	fn.AddPart(NewActivityScoring(f.Params))
	fn.AddPart(NewLegScoring(f.Params))
	return fn
}

// EpsilonFactory appends EpsilonModeScoring to the delegate's functions.
type EpsilonFactory struct {
	Delegate FunctionFactory
	Provider EpsilonProvider
}

// New implements FunctionFactory.
func (f EpsilonFactory) New(person *population.Person) *SumScoringFunction {
	fn := f.Delegate.New(person)
	fn.AddPart(NewEpsilonModeScoring(person.ID, f.Provider))
	return fn
}
