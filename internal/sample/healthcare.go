package sample

import "fmt"

var (
	topStates  = []string{"CA", "TX", "FL", "NY", "PA", "IL", "OH", "GA", "NC", "MI"}
	topWeights = []float64{0.15, 0.12, 0.10, 0.08, 0.06, 0.05, 0.05, 0.04, 0.04, 0.04}

	remainingStates = []string{
		"NJ", "VA", "WA", "AZ", "MA", "TN", "IN", "MO", "MD", "WI",
		"CO", "MN", "SC", "AL", "LA", "KY", "OR", "OK", "CT", "UT",
		"IA", "NV", "AR", "MS", "KS", "NM", "NE", "WV", "ID", "HI",
		"NH", "ME", "MT", "RI", "DE", "SD", "ND", "AK", "VT", "WY",
	}
)

// remainingShare is split evenly across the states outside the top ten.
const remainingShare = 0.27

var allStates, stateWeights = buildStateTable()

func buildStateTable() ([]string, []float64) {
	states := append(append([]string{}, topStates...), remainingStates...)
	weights := append([]float64{}, topWeights...)
	each := remainingShare / float64(len(remainingStates))
	for range remainingStates {
		weights = append(weights, each)
	}
	return states, weights
}

// USState draws a two-letter state code weighted roughly by population.
func (s *Sampler) USState() string {
	return PickWeighted(s, allStates, stateWeights)
}

// NPI draws a valid-looking 10-digit National Provider Identifier.
func (s *Sampler) NPI() string {
	return fmt.Sprintf("%d", s.IntRange(1000000000, 9999999999))
}

// Zip3 draws a three-digit ZIP prefix.
func (s *Sampler) Zip3() string {
	return fmt.Sprintf("%d", s.IntRange(100, 999))
}
