package gep

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Selection", func() {
	var sim *Simulation
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(7))
		sim = newTestSimulation(nil)
	})

	populationOf := func(fitnesses ...float64) Population {
		pop := make(Population, len(fitnesses))
		for i, fitness := range fitnesses {
			c, err := sim.RandomChromosome()
			Expect(err).ToNot(HaveOccurred())
			pop[i] = &PopulationMember{c: c, fitness: fitness}
		}
		return pop
	}

	It("only selects members with fitness", func() {
		pop := populationOf(0, 0, 1, 0, 0)

		selection := pop.Select(100, rng)
		Expect(selection).To(HaveLen(100))
		for _, member := range selection {
			Expect(member.Fitness()).To(Equal(1.0))
			Expect(member.Chromosome().String()).To(Equal(pop[2].Chromosome().String()))
		}
	})

	It("treats NaN and negative fitness as zero", func() {
		pop := populationOf(math.NaN(), 0.5, -3)

		for _, member := range pop.Select(100, rng) {
			Expect(member.Fitness()).To(Equal(0.5))
		}
	})

	It("gives infinite fitness the largest share of the wheel", func() {
		pop := populationOf(0.5, math.Inf(1), 2)

		for _, member := range pop.Select(100, rng) {
			Expect(member.Fitness()).To(Equal(math.Inf(1)))
		}
	})

	It("keeps the wheel finite when fitness values overflow its total", func() {
		pop := populationOf(math.MaxFloat64, 0, math.MaxFloat64)

		for _, member := range pop.Select(100, rng) {
			Expect(member.Fitness()).To(Equal(math.MaxFloat64))
		}
	})

	It("falls back to a uniform choice when nothing has fitness", func() {
		pop := populationOf(0, 0, 0, 0)

		seen := map[string]bool{}
		for _, member := range pop.Select(200, rng) {
			seen[member.Chromosome().String()] = true
		}

		distinct := map[string]bool{}
		for _, member := range pop {
			distinct[member.Chromosome().String()] = true
		}
		Expect(seen).To(HaveLen(len(distinct)))
	})

	It("favours fitter members", func() {
		pop := populationOf(1, 9)

		counts := [2]int{}
		for _, member := range pop.Select(1000, rng) {
			if member.Fitness() == 9 {
				counts[1]++
			} else {
				counts[0]++
			}
		}
		Expect(counts[1]).To(BeNumerically(">", 3*counts[0]))
	})

	It("copies every pick", func() {
		pop := populationOf(1, 1)
		before := pop[0].Chromosome().String()

		selection := pop.Select(4, rng)
		for _, member := range selection {
			member.Chromosome().MutateWithRand(1, rng)
		}
		Expect(pop[0].Chromosome().String()).To(Equal(before))

		Expect(selection[0].Chromosome()).ToNot(BeIdenticalTo(selection[1].Chromosome()))
		Expect(selection[0].Chromosome()).ToNot(BeIdenticalTo(pop[0].Chromosome()))
		Expect(selection[0].Chromosome()).ToNot(BeIdenticalTo(pop[1].Chromosome()))
	})

	It("locates the fittest member", func() {
		pop := populationOf(0.5, 2, 1, 2)
		Expect(pop.Fittest()).To(Equal(1))
		Expect(pop.Fitnesses()).To(Equal([]float64{0.5, 2, 1, 2}))
	})

	expectSpin := func(cumulative []float64, total float64, pick float64, expected int) {
		Expect(spinRoulette(cumulative, total, &scriptedRand{floats: []float64{pick}})).To(Equal(expected))
	}

	It("spins the roulette wheel", func() {
		expectSpin([]float64{1, 1, 3}, 3, 0, 0)
		expectSpin([]float64{1, 1, 3}, 3, 0.5, 2)
		expectSpin([]float64{0, 2, 2}, 2, 0.99, 1)
		// Top of the wheel lands on the last member with weight
		expectSpin([]float64{0, 2, 2}, 2, 1, 1)
	})
})
