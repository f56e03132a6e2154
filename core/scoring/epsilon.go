package scoring

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/modesim/core/rng"
)

// EpsilonProvider supplies the stochastic utility term of a person for one
// trip and alternative. Implementations must return the same value for the
// same arguments.
type EpsilonProvider interface {
	Epsilon(personID string, tripIndex int, alternative string) float64
}

// Uniform is a source of uniform values in [0, 1).
type Uniform interface {
	Float64() float64
}

// maxRedraws bounds rejection sampling of boundary values. A source that
// keeps returning 0 or 1 is clamped after that many draws.
const maxRedraws = 64

const boundary = 1e-12

// GumbelEpsilonProvider draws Gumbel(0, scale) errors from a stream derived
// from the master seed, the person, the trip index and the alternative.
type GumbelEpsilonProvider struct {
	seed int64
	dist distuv.GumbelRight
}

// NewGumbelEpsilonProvider returns a provider; a non-positive scale defaults to 1.
func NewGumbelEpsilonProvider(seed int64, scale float64) *GumbelEpsilonProvider {
	if scale <= 0 {
		scale = 1
	}
	return &GumbelEpsilonProvider{seed: seed, dist: distuv.GumbelRight{Mu: 0, Beta: scale}}
}

// Scale returns the distribution scale.
func (p *GumbelEpsilonProvider) Scale() float64 { return p.dist.Beta }

// Epsilon implements EpsilonProvider.
func (p *GumbelEpsilonProvider) Epsilon(personID string, tripIndex int, alternative string) float64 {
	src := rng.ForPerson(p.seed, personID, uint64(tripIndex), rng.HashID(alternative))
	return p.Sample(src)
}

// Sample maps one uniform draw from u onto the Gumbel distribution,
// redrawing values on the boundary of (0, 1).
func (p *GumbelEpsilonProvider) Sample(u Uniform) float64 {
	x := u.Float64()
	for i := 0; i < maxRedraws && (x <= 0 || x >= 1); i++ {
		x = u.Float64()
	}
	switch {
	case x < boundary:
		x = boundary
	case x > 1-boundary:
		x = 1 - boundary
	}
	return p.dist.Quantile(x)
}

// FixedEpsilonProvider returns preset values, zero for unknown keys.
type FixedEpsilonProvider map[EpsilonKey]float64

// EpsilonKey identifies one epsilon value.
type EpsilonKey struct {
	PersonID    string
	TripIndex   int
	Alternative string
}

// Epsilon implements EpsilonProvider.
func (f FixedEpsilonProvider) Epsilon(personID string, tripIndex int, alternative string) float64 {
	return f[EpsilonKey{personID, tripIndex, alternative}]
}
