package gep

import (
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Genetic operators", func() {
	var sim *Simulation
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(42))
		sim = newTestSimulation(func(params *SimulationParams) {
			params.NumGenes = 3
			params.Rand = rng
		})
	})

	randomChromosome := func() *Chromosome {
		c, err := sim.RandomChromosome()
		Expect(err).ToNot(HaveOccurred())
		return c
	}

	Describe("MutateWithRand", func() {
		It("preserves the head/tail symbol classes", func() {
			c := randomChromosome()
			for i := 0; i < 1000; i++ {
				c.MutateWithRand(1, rng)
				Expect(c.Genes()).To(HaveLen(21))
				expectDomainRules(c)

				for g := 0; g < c.NumGenes(); g++ {
					Expect(sim.Primitives().IsFunction(c.Gene(g)[0])).To(BeTrue())
				}
			}
		})

		It("touches nothing at a rate of 0", func() {
			c := randomChromosome()
			before := c.String()

			Expect(c.MutateWithRand(0, rng)).To(BeZero())
			Expect(c.String()).To(Equal(before))
		})

		It("mutates every gene at a rate of 1", func() {
			c := randomChromosome()
			Expect(c.MutateWithRand(1, rng)).To(Equal(3))
		})

		It("invalidates decoded expressions", func() {
			single := newTestSimulation(nil)
			c := mustEncode(single, "+xyxxyy")
			Expect(c.KExpressions()).To(Equal([]string{"+xy"}))

			// Gene 0 mutates at position 0 into the second function, '-'
			c.MutateWithRand(1, &scriptedRand{ints: []int{0, 1}, floats: []float64{0}})
			Expect(c.String()).To(Equal("-xyxxyy"))
			Expect(c.KExpressions()).To(Equal([]string{"-xy"}))
		})
	})

	Describe("ISTransposeWithRand", func() {
		It("preserves length and domain rules", func() {
			c := randomChromosome()
			for i := 0; i < 1000; i++ {
				c.ISTransposeWithRand(rng)
				Expect(c.Genes()).To(HaveLen(21))
				expectDomainRules(c)
			}
		})

		It("replaces functions copied into the tail with terminals", func() {
			two := newTestSimulation(func(params *SimulationParams) {
				params.NumGenes = 2
			})
			c := mustEncode(two, "++*xyxy", "-xyxyxy")

			// Gene 0 to gene 1, length 3, from 0, to 2, then the terminals replacing '+' and '*'
			c.ISTransposeWithRand(&scriptedRand{ints: []int{0, 0, 2, 0, 2, 1, 0}})

			Expect(c.String()).To(Equal("++*xyxy -x+yxxy"))
			expectDomainRules(c)
		})

		It("leaves tail functions alone when allowed to", func() {
			two := newTestSimulation(func(params *SimulationParams) {
				params.NumGenes = 2
				params.AllowTailFunctions = true
			})
			c := mustEncode(two, "++*xyxy", "-xyxyxy")

			c.ISTransposeWithRand(&scriptedRand{ints: []int{0, 0, 2, 0, 2}})
			Expect(c.String()).To(Equal("++*xyxy -x++*xy"))
		})
	})

	Describe("RISTransposeWithRand", func() {
		It("preserves length and domain rules", func() {
			c := randomChromosome()
			for i := 0; i < 1000; i++ {
				c.RISTransposeWithRand(rng)
				Expect(c.Genes()).To(HaveLen(21))
				expectDomainRules(c)
			}
		})

		It("copies a segment starting on a function to the start of a gene", func() {
			two := newTestSimulation(func(params *SimulationParams) {
				params.NumGenes = 2
			})
			c := mustEncode(two, "x++xyxy", "*xyxyxy")

			// Gene 0 to gene 1, length 2, then starts at 'x' (skipped) and '+'
			transposed := c.RISTransposeWithRand(&scriptedRand{ints: []int{0, 0, 1, 0, 1}})

			Expect(transposed).To(BeTrue())
			Expect(c.String()).To(Equal("x++xyxy ++yxyxy"))
		})

		It("does nothing if no function can be found", func() {
			two := newTestSimulation(func(params *SimulationParams) {
				params.NumGenes = 2
			})
			c := mustEncode(two, "xxxxxxx", "yyyyyyy")

			for i := 0; i < 100; i++ {
				Expect(c.RISTransposeWithRand(rng)).To(BeFalse())
				Expect(c.String()).To(Equal("xxxxxxx yyyyyyy"))
			}
		})
	})

	Describe("Recombination", func() {
		// Each position's pair of symbols must survive recombination, possibly swapped
		expectSymbolsExchanged := func(a, b *Chromosome, beforeA, beforeB string) {
			afterA, afterB := string(a.Genes()), string(b.Genes())
			Expect(afterA).To(HaveLen(len(beforeA)))
			Expect(afterB).To(HaveLen(len(beforeB)))

			for i := range beforeA {
				Expect([]byte{afterA[i], afterB[i]}).To(Or(
					Equal([]byte{beforeA[i], beforeB[i]}),
					Equal([]byte{beforeB[i], beforeA[i]}),
				), "position %d", i)
			}
		}

		for _, recombination := range []struct {
			name      string
			recombine Recombination
		}{
			{"OnePointRecombine", OnePointRecombine},
			{"TwoPointRecombine", TwoPointRecombine},
			{"GeneRecombine", GeneRecombine},
		} {
			recombination := recombination

			It(recombination.name+" exchanges aligned symbols", func() {
				for i := 0; i < 200; i++ {
					a, b := randomChromosome(), randomChromosome()
					beforeA, beforeB := string(a.Genes()), string(b.Genes())

					Expect(recombination.recombine(a, b, rng)).To(Succeed())
					expectSymbolsExchanged(a, b, beforeA, beforeB)
					expectDomainRules(a)
					expectDomainRules(b)
				}
			})
		}

		It("swaps everything after the cut in one-point recombination", func() {
			two := newTestSimulation(func(params *SimulationParams) {
				params.NumGenes = 2
			})
			a := mustEncode(two, "+++xxxx", "+++xxxx")
			b := mustEncode(two, "---yyyy", "---yyyy")

			Expect(OnePointRecombine(a, b, &scriptedRand{ints: []int{5}})).To(Succeed())
			Expect(a.String()).To(Equal("+++xxyy ---yyyy"))
			Expect(b.String()).To(Equal("---yyxx +++xxxx"))
		})

		It("swaps the span between both cuts in two-point recombination", func() {
			a := mustEncode(sim, "+++xxxx", "+++xxxx", "+++xxxx")
			b := mustEncode(sim, "---yyyy", "---yyyy", "---yyyy")

			// Cuts at 2 and 2+1+3 = 6
			Expect(TwoPointRecombine(a, b, &scriptedRand{ints: []int{2, 3}})).To(Succeed())
			Expect(a.String()).To(Equal("++-yyyx +++xxxx +++xxxx"))
			Expect(b.String()).To(Equal("--+xxxy ---yyyy ---yyyy"))
		})

		It("swaps exactly one whole gene in gene recombination", func() {
			a := mustEncode(sim, "+++xxxx", "*++xxxx", "/++xxxx")
			b := mustEncode(sim, "---yyyy", "*--yyyy", "/--yyyy")

			Expect(GeneRecombine(a, b, &scriptedRand{ints: []int{1}})).To(Succeed())
			Expect(a.String()).To(Equal("+++xxxx *--yyyy /++xxxx"))
			Expect(b.String()).To(Equal("---yyyy *++xxxx /--yyyy"))
		})

		It("refuses to cross chromosomes of different lengths", func() {
			a := randomChromosome()
			b := newTestSimulation(nil).NewChromosome()

			Expect(CrossoverSegment(a, b, 0, 1)).ToNot(Succeed())
			Expect(CrossoverSegment(a, a.Copy(), 3, 2)).ToNot(Succeed())
			Expect(CrossoverSegment(a, a.Copy(), 0, 22)).ToNot(Succeed())
		})
	})
})
