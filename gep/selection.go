package gep

import (
	"math"
	"sort"
)

// selectionWeight keeps unusable fitness values out of the roulette wheel, and
// caps the rest so the weights of n members sum to a finite total
func selectionWeight(fitness float64, n int) float64 {
	if math.IsNaN(fitness) || fitness < 0 {
		return 0
	}
	return math.Min(fitness, math.MaxFloat64/float64(n))
}

// Select draws n members with replacement, each with probability proportional to
// its fitness. Picks are copies, so the result never aliases pop or itself.
func (pop Population) Select(n int, rng Rand) Population {
	cumulative := make([]float64, len(pop))
	total := 0.0
	for i, member := range pop {
		total += selectionWeight(member.fitness, len(pop))
		cumulative[i] = total
	}

	selection := make(Population, n)
	for i := range selection {
		picked := pop[spinRoulette(cumulative, total, rng)]
		selection[i] = &PopulationMember{
			c:       picked.c.Copy(),
			fitness: picked.fitness,
		}
	}
	return selection
}

func spinRoulette(cumulative []float64, total float64, rng Rand) int {
	// If no selection could be made (all fitness values are 0.0), revert to random choice
	if total <= 0 || math.IsInf(total, 0) {
		return rng.Intn(len(cumulative))
	}

	pick := rng.Float64() * total
	k := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > pick
	})

	// Rounding may leave the pick at the very top of the wheel
	if k == len(cumulative) {
		k--
		for k > 0 && cumulative[k] == cumulative[k-1] {
			k--
		}
	}
	return k
}
