// Package sample provides the seeded random draws used by the table generators.
package sample

import (
	"github.com/brianvoe/gofakeit/v7"
)

// Sampler wraps a seeded gofakeit source. It is not safe for concurrent use.
type Sampler struct {
	f *gofakeit.Faker
}

// New returns a Sampler seeded deterministically. A zero seed is replaced by
// 1 because gofakeit would otherwise seed from the clock.
func New(seed uint64) *Sampler {
	if seed == 0 {
		seed = 1
	}
	return &Sampler{f: gofakeit.New(seed)}
}

// IntRange returns a uniform integer in [min, max], both inclusive.
func (s *Sampler) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return s.f.Number(min, max)
}

// Float64 returns a uniform float in [0, 1).
func (s *Sampler) Float64() float64 {
	return s.f.Float64()
}

// Uniform returns a uniform float in [lo, hi).
func (s *Sampler) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.f.Float64()*(hi-lo)
}

// Chance reports true with probability p.
func (s *Sampler) Chance(p float64) bool {
	return s.f.Float64() < p
}

// WeightedIndex draws an index with probability proportional to weights[i].
// Weights need not sum to one. Returns -1 for an empty or all-zero table.
func (s *Sampler) WeightedIndex(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := s.f.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		r -= w
		if r < 0 {
			return i
		}
	}
	// Float rounding can leave r marginally >= 0 after the last bucket.
	return last
}

// Indices returns k distinct indices drawn uniformly from [0, n).
// k is capped at n.
func (s *Sampler) Indices(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := s.IntRange(i, n-1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}

// IndicesWithReplacement returns k indices drawn uniformly from [0, n).
func (s *Sampler) IndicesWithReplacement(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	out := make([]int, k)
	for i := range out {
		out[i] = s.IntRange(0, n-1)
	}
	return out
}

// Pick returns a uniformly chosen element of items. items must be non-empty.
func Pick[T any](s *Sampler, items []T) T {
	return items[s.IntRange(0, len(items)-1)]
}

// PickWeighted returns an element of items chosen by weights, which must be
// index-aligned with items and contain at least one positive weight.
func PickWeighted[T any](s *Sampler, items []T, weights []float64) T {
	i := s.WeightedIndex(weights)
	if i < 0 {
		var zero T
		return zero
	}
	return items[i]
}
