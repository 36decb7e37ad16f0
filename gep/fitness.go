package gep

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"
)

// Sample is one input vector and the value the evolved expression should produce for it
type Sample struct {
	Inputs []float64
	Target float64
}

// Error returns the cumulative absolute error of the chromosome over samples
func (c *Chromosome) Error(samples []Sample) (float64, error) {
	total := 0.0
	for i, sample := range samples {
		value, err := c.Evaluate(sample.Inputs)
		if err != nil {
			return math.NaN(), fmt.Errorf("sample #%d: %w", i, err)
		}
		total += math.Abs(value - sample.Target)
	}
	return total, nil
}

// Fitness is 1 / cumulative error over samples.
//
// A cumulative error of exactly zero scores 0, as do chromosomes which cannot be
// evaluated or whose error is not a number.
func (c *Chromosome) Fitness(samples []Sample) float64 {
	return fitnessFromError(c.Error(samples))
}

func fitnessFromError(cumulativeError float64, err error) float64 {
	if err != nil || math.IsNaN(cumulativeError) || cumulativeError == 0 {
		return 0
	}
	return 1 / cumulativeError
}

// fitnessCache memoises fitness by gene string; the samples must not change for its lifetime
type fitnessCache struct {
	samples []Sample
	cache   *lru.Cache

	hits, misses uint64
}

func newFitnessCache(size int, samples []Sample) (*fitnessCache, error) {
	fc := &fitnessCache{samples: samples}
	if size > 0 {
		cache, err := lru.New(size)
		if err != nil {
			return nil, fmt.Errorf("%w: fitness cache: %v", ErrConfiguration, err)
		}
		fc.cache = cache
	}
	return fc, nil
}

func (fc *fitnessCache) Fitness(c *Chromosome) float64 {
	if fc.cache == nil {
		return c.Fitness(fc.samples)
	}

	key := string(c.genes)
	if fitness, ok := fc.cache.Get(key); ok {
		fc.hits++
		return fitness.(float64)
	}

	fc.misses++
	fitness := c.Fitness(fc.samples)
	fc.cache.Add(key, fitness)
	return fitness
}
