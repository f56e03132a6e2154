package plugins

import (
	"github.com/kilianp07/modesim/core/scoring"
)

func init() {
	RegisterEpsilonProvider("gumbel", func(seed int64, scale float64) (scoring.EpsilonProvider, error) {
		return scoring.NewGumbelEpsilonProvider(seed, scale), nil
	})
	RegisterEpsilonProvider("zero", func(int64, float64) (scoring.EpsilonProvider, error) {
		return scoring.FixedEpsilonProvider{}, nil
	})
}
