package aggregate

import "math/rand"

// maxOpenResponses caps how many free-text responses flow into keyword
// processing. Sampling is unweighted and unseeded; the cap is a size
// tradeoff, not a statistical design.
const maxOpenResponses = 5000

// Sampler draws an unweighted sample of n items. Implementations may be
// non-deterministic; callers must not rely on ordering.
type Sampler interface {
	Sample(items []string, n int) []string
}

// randomSampler shuffles a copy and takes the first n items.
type randomSampler struct{}

// NewRandomSampler returns the production sampler.
func NewRandomSampler() Sampler {
	return randomSampler{}
}

func (randomSampler) Sample(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	shuffled := append([]string(nil), items...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
