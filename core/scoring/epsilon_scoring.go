package scoring

import "github.com/kilianp07/modesim/core/population"

// EpsilonModeScoring adds the epsilon of each chosen leg mode to the score.
type EpsilonModeScoring struct {
	personID string
	provider EpsilonProvider
	modes    []string
	score    float64
}

// NewEpsilonModeScoring returns the epsilon part for one person.
func NewEpsilonModeScoring(personID string, provider EpsilonProvider) *EpsilonModeScoring {
	return &EpsilonModeScoring{personID: personID, provider: provider}
}

// HandleLeg records the mode chosen for the trip.
func (s *EpsilonModeScoring) HandleLeg(tripIndex int, leg *population.Leg) {
	for len(s.modes) <= tripIndex {
		s.modes = append(s.modes, "")
	}
	s.modes[tripIndex] = leg.Mode
}

// Finish queries the provider once per trip.
func (s *EpsilonModeScoring) Finish() {
	s.score = 0
	for i, mode := range s.modes {
		if mode == "" {
			continue
		}
		s.score += s.provider.Epsilon(s.personID, i, mode)
	}
}

func (s *EpsilonModeScoring) Score() float64 { return s.score }
