package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/modesim/core/scoring"
)

// EpsilonFactory builds an epsilon provider for the given master seed.
type EpsilonFactory func(seed int64, scale float64) (scoring.EpsilonProvider, error)

var EpsilonProviders = map[string]EpsilonFactory{}

func RegisterEpsilonProvider(name string, f EpsilonFactory) { EpsilonProviders[name] = f }

// NewEpsilonProvider builds the named provider.
func NewEpsilonProvider(name string, seed int64, scale float64) (scoring.EpsilonProvider, error) {
	f, ok := EpsilonProviders[name]
	if !ok {
		names := make([]string, 0, len(EpsilonProviders))
		for n := range EpsilonProviders {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown epsilon provider %q (known: %v)", name, names)
	}
	return f(seed, scale)
}
