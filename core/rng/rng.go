// Package rng derives independent deterministic random streams from a master
// seed. A stream is a pure function of the master seed and its keys, so work
// can be spread over goroutines without sharing generator state.
package rng

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

const golden = 0x9e3779b97f4a7c15

// mix is the SplitMix64 finalizer.
func mix(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// DeriveSeed folds each stream key into parent.
func DeriveSeed(parent uint64, keys ...uint64) uint64 {
	x := mix(parent + golden)
	for _, k := range keys {
		x = mix(x ^ (k + golden))
	}
	return x
}

// HashID maps an identifier onto the seed space.
func HashID(id string) uint64 {
	return xxhash.Sum64String(id)
}

// New returns a PCG-backed generator for seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, mix(seed^golden)))
}

// Stream returns the generator identified by master and keys.
func Stream(master int64, keys ...uint64) *rand.Rand {
	return New(DeriveSeed(uint64(master), keys...))
}

// ForPerson returns the stream of a person for the given extra keys
// (iteration number, trip index, ...).
func ForPerson(master int64, personID string, keys ...uint64) *rand.Rand {
	all := make([]uint64, 0, len(keys)+1)
	all = append(all, HashID(personID))
	all = append(all, keys...)
	return Stream(master, all...)
}
