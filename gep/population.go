package gep

import (
	"errors"
	"fmt"
)

type Population []*PopulationMember

// Fittest returns the index of the first member with the highest fitness
func (pop Population) Fittest() int {
	best := 0
	for i, member := range pop {
		if member.fitness > pop[best].fitness {
			best = i
		}
	}
	return best
}

func (pop Population) Fitnesses() []float64 {
	fitnesses := make([]float64, len(pop))
	for i, member := range pop {
		fitnesses[i] = member.fitness
	}
	return fitnesses
}

type PopulationMember struct {
	c       *Chromosome
	fitness float64
}

func (member *PopulationMember) Chromosome() *Chromosome {
	return member.c
}

func (member *PopulationMember) Fitness() float64 {
	return member.fitness
}

func (sim *Simulation) NewChromosome() *Chromosome {
	return &Chromosome{
		genes: make([]byte, sim.ctx.chromosomeLength),
		ctx:   sim.ctx,
	}
}

// EncodeChromosome builds a chromosome from one string per gene.
// Genes must have the configured length and only contain known symbols, with
// terminals in their tails unless AllowTailFunctions is set.
func (sim *Simulation) EncodeChromosome(genes ...string) (*Chromosome, error) {
	if len(genes) != sim.ctx.NumGenes {
		return nil, fmt.Errorf("expected %d genes, got %d", sim.ctx.NumGenes, len(genes))
	}

	ps := sim.ctx.primitives
	chromosome := sim.NewChromosome()
	for i, gene := range genes {
		if len(gene) != sim.ctx.geneLength {
			return nil, fmt.Errorf("gene %q has length %d, expected %d", gene, len(gene), sim.ctx.geneLength)
		}

		for k := 0; k < len(gene); k++ {
			sym := gene[k]
			switch {
			case !ps.IsFunction(sym) && !ps.IsTerminal(sym):
				return nil, fmt.Errorf("unrecognized symbol %q at position %d of gene %d", sym, k, i)
			case k >= sim.ctx.HeadLength && ps.IsFunction(sym) && !sim.ctx.AllowTailFunctions:
				return nil, fmt.Errorf("function %q in the tail of gene %d (position %d)", sym, i, k)
			}
		}

		copy(chromosome.gene(i), gene)
	}
	return chromosome, nil
}

// randomizeGenes fills every gene with a function at its root, any symbol in the
// rest of its head and terminals in its tail
func (sim *Simulation) randomizeGenes(c *Chromosome) {
	ps := sim.ctx.primitives
	rng := sim.ctx.rng

	for i := 0; i < c.NumGenes(); i++ {
		gene := c.gene(i)
		gene[0] = ps.randomFunction(rng)
		for k := 1; k < sim.ctx.HeadLength; k++ {
			gene[k] = ps.randomSymbol(rng)
		}
		for k := sim.ctx.HeadLength; k < len(gene); k++ {
			gene[k] = ps.randomTerminal(rng)
		}
	}
	c.invalidate()
}

// RandomChromosome generates random chromosomes until one evaluates cleanly
// against the validation binding
func (sim *Simulation) RandomChromosome() (*Chromosome, error) {
	chromosome := sim.NewChromosome()

	var lastErr error
	for attempt := 0; attempt < sim.ctx.MaxInitAttempts; attempt++ {
		sim.randomizeGenes(chromosome)

		_, lastErr = chromosome.Evaluate(sim.ctx.validationBinding)
		if lastErr == nil {
			return chromosome, nil
		}
		if !errors.Is(lastErr, ErrDomain) && !errors.Is(lastErr, ErrInvalidExpression) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("%w: no valid chromosome after %d attempts (last: %v)", ErrConfiguration, sim.ctx.MaxInitAttempts, lastErr)
}

func (sim *Simulation) randomPopulation() (Population, error) {
	population := make(Population, sim.ctx.PopulationSize)
	for i := range population {
		chromosome, err := sim.RandomChromosome()
		if err != nil {
			return nil, err
		}
		population[i] = &PopulationMember{c: chromosome}
	}
	return population, nil
}
