package gep

import (
	"fmt"
)

// Number of start positions RIS transposition tries before giving up
const risAttempts = 10

// MutateWithRand gives every gene a mutationRate chance of having one random
// position replaced, keeping the head/tail symbol classes. Returns the number of mutated genes.
func (c *Chromosome) MutateWithRand(mutationRate float64, rng Rand) int {
	mutated := 0
	for i := 0; i < c.NumGenes(); i++ {
		if rng.Float64() < mutationRate {
			c.mutateAt(i, rng.Intn(c.ctx.geneLength), rng)
			mutated++
		}
	}
	return mutated
}

func (c *Chromosome) mutateAt(gene, pos int, rng Rand) {
	ps := c.ctx.primitives
	g := c.gene(gene)

	switch {
	case pos == 0:
		g[pos] = ps.randomFunction(rng)
	case pos < c.ctx.HeadLength:
		g[pos] = ps.randomSymbol(rng)
	default:
		g[pos] = ps.randomTerminal(rng)
	}
	c.invalidate()
}

// pickGenePair chooses distinct source and target genes; a single gene is its own pair
func (c *Chromosome) pickGenePair(rng Rand) (int, int) {
	n := c.NumGenes()
	if n == 1 {
		return 0, 0
	}

	src := rng.Intn(n)
	dst := rng.Intn(n - 1)
	if dst >= src {
		dst++
	}
	return src, dst
}

func (c *Chromosome) segmentLength(rng Rand) int {
	length := rng.Intn(c.ctx.MaxTranspositionLength) + 1
	if length > c.ctx.geneLength {
		length = c.ctx.geneLength
	}
	return length
}

// ISTransposeWithRand copies a random segment of one gene over an equally long
// window at a random offset of another
func (c *Chromosome) ISTransposeWithRand(rng Rand) {
	src, dst := c.pickGenePair(rng)
	length := c.segmentLength(rng)
	from := rng.Intn(c.ctx.geneLength - length + 1)
	to := rng.Intn(c.ctx.geneLength - length + 1)

	c.transpose(src, from, length, dst, to, rng)
}

// RISTransposeWithRand copies a random segment starting on a function symbol over
// the start of another gene. Returns false, leaving the chromosome untouched, if
// no such segment was found within risAttempts tries.
func (c *Chromosome) RISTransposeWithRand(rng Rand) bool {
	src, dst := c.pickGenePair(rng)
	return c.risTranspose(src, dst, rng)
}

func (c *Chromosome) risTranspose(src, dst int, rng Rand) bool {
	gene := c.gene(src)
	length := c.segmentLength(rng)

	for attempt := 0; attempt < risAttempts; attempt++ {
		from := rng.Intn(c.ctx.geneLength - length + 1)
		if c.ctx.primitives.IsFunction(gene[from]) {
			c.transpose(src, from, length, dst, 0, rng)
			return true
		}
	}
	return false
}

func (c *Chromosome) transpose(src, from, length, dst, to int, rng Rand) {
	segment := make([]byte, length)
	copy(segment, c.gene(src)[from:from+length])

	target := c.gene(dst)
	copy(target[to:to+length], segment)

	if !c.ctx.AllowTailFunctions {
		start := to
		if start < c.ctx.HeadLength {
			start = c.ctx.HeadLength
		}
		for k := start; k < to+length; k++ {
			if c.ctx.primitives.IsFunction(target[k]) {
				target[k] = c.ctx.primitives.randomTerminal(rng)
			}
		}
	}
	c.invalidate()
}

// CrossoverSegment swaps genes[from:to] of the flattened chromosomes a and b in place.
// Both chromosomes share a gene layout, so every swapped symbol keeps its position
// within its gene.
func CrossoverSegment(a, b *Chromosome, from, to int) error {
	if len(a.genes) != len(b.genes) {
		return fmt.Errorf("expected both chromosomes to have the same length (%d != %d)", len(a.genes), len(b.genes))
	}
	if from < 0 || to > len(a.genes) || from > to {
		return fmt.Errorf("segment [%d, %d) out of range for chromosome length %d", from, to, len(a.genes))
	}

	for i := from; i < to; i++ {
		a.genes[i], b.genes[i] = b.genes[i], a.genes[i]
	}
	a.invalidate()
	b.invalidate()
	return nil
}

// Recombination exchanges material between two chromosomes in place
type Recombination func(a, b *Chromosome, rng Rand) error

// OnePointRecombine swaps everything after a random cut
func OnePointRecombine(a, b *Chromosome, rng Rand) error {
	cut := rng.Intn(len(a.genes))
	return CrossoverSegment(a, b, cut, len(a.genes))
}

// TwoPointRecombine swaps the symbols between two random cuts
func TwoPointRecombine(a, b *Chromosome, rng Rand) error {
	n := len(a.genes)
	if n < 2 {
		return nil
	}

	first := rng.Intn(n - 1)
	second := first + 1 + rng.Intn(n-first-1)
	return CrossoverSegment(a, b, first, second)
}

// GeneRecombine swaps one randomly chosen whole gene
func GeneRecombine(a, b *Chromosome, rng Rand) error {
	gene := rng.Intn(a.NumGenes())
	length := a.ctx.geneLength
	return CrossoverSegment(a, b, gene*length, (gene+1)*length)
}
