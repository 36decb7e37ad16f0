package gep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Rand is the source of all randomness in a Simulation; *rand.Rand satisfies it
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type SimulationParams struct {
	// Primitive functions genes may contain
	Functions []Function

	// Terminal symbols, one byte each. Their order is the order input vectors bind values in.
	Terminals string

	// Number of symbols in each gene's head. Only head positions may hold functions.
	HeadLength int

	// Arity the tail is sized for: tail length = HeadLength*(MaxArity-1) + 1.
	// Set to 0 to use the highest arity among Functions.
	MaxArity int

	// Number of genes in each Chromosome
	NumGenes int

	// How the values of a chromosome's genes are combined
	Linker Linker

	// Chance each gene has of a point mutation, each generation
	MutationRate float64

	// Chance each Chromosome has of undergoing IS transposition, each generation
	ISTranspositionRate float64

	// Chance each Chromosome has of undergoing RIS transposition, each generation
	RISTranspositionRate float64

	// Upper bound on the length of transposed segments
	MaxTranspositionLength int

	// When false, function symbols which transposition copies into a tail are
	// replaced with random terminals. When true, they're left in place, and the
	// gene may no longer decode.
	AllowTailFunctions bool

	// Number of Chromosomes in the Simulation. Must be at least 2.
	PopulationSize int

	// Number of generations Run iterates
	Generations int

	// Values terminals take when validating freshly generated chromosomes.
	// Defaults to all zeroes.
	ValidationBinding []float64

	// Max number of random chromosomes generated in search of a valid one
	MaxInitAttempts int

	// Number of fitness values memoised by gene string. Set to 0 to disable.
	FitnessCacheSize int

	// Seeds the random source when Rand is nil. 0 is an ordinary, deterministic
	// seed here; pick a seed from the clock before calling if one is wanted.
	Seed int64

	// Random source shared by every operator; overrides Seed
	Rand Rand

	// Destination of progress logs. Nothing is logged when nil.
	Logger *slog.Logger
}

func DefaultSimulationParams() *SimulationParams {
	return &SimulationParams{
		Functions: ArithmeticFunctions(),
		Terminals: "x",

		HeadLength: 8,
		MaxArity:   0,
		NumGenes:   1,
		Linker:     LinkSum,

		MutationRate:           0.1,
		ISTranspositionRate:    0.1,
		RISTranspositionRate:   0.1,
		MaxTranspositionLength: 3,

		PopulationSize: 50,
		Generations:    50,

		MaxInitAttempts:  10000,
		FitnessCacheSize: 1024,
	}
}

type simulationContext struct {
	SimulationParams

	primitives *PrimitiveSet

	tailLength       int
	geneLength       int
	chromosomeLength int

	validationBinding []float64

	rng    Rand
	logger *slog.Logger

	// Enables reuse of operand stacks across evaluations
	stackPool sync.Pool
}

func newSimulationContext(params *SimulationParams) (*simulationContext, error) {
	ps, err := NewPrimitiveSet(params.Functions, params.Terminals)
	if err != nil {
		return nil, err
	}

	ctx := &simulationContext{
		SimulationParams: *params,
		primitives:       ps,
		rng:              params.Rand,
		logger:           params.Logger,
	}

	if ctx.MaxArity == 0 {
		ctx.MaxArity = ps.MaxArity()
	}

	switch {
	case ctx.HeadLength < 1:
		return nil, fmt.Errorf("%w: head length %d must be at least 1", ErrConfiguration, ctx.HeadLength)
	case ctx.MaxArity < ps.MaxArity():
		return nil, fmt.Errorf("%w: max arity %d is below the arity of the function set (%d); tails would be too short", ErrConfiguration, ctx.MaxArity, ps.MaxArity())
	case ctx.NumGenes < 1:
		return nil, fmt.Errorf("%w: number of genes %d must be at least 1", ErrConfiguration, ctx.NumGenes)
	case ctx.Linker != LinkSum && ctx.Linker != LinkMax && ctx.Linker != LinkMin:
		return nil, fmt.Errorf("%w: unknown linker %d", ErrConfiguration, int8(ctx.Linker))
	case ctx.MaxTranspositionLength < 1:
		return nil, fmt.Errorf("%w: max transposition length %d must be at least 1", ErrConfiguration, ctx.MaxTranspositionLength)
	case ctx.PopulationSize < 2:
		return nil, fmt.Errorf("%w: population size %d must be at least 2", ErrConfiguration, ctx.PopulationSize)
	case ctx.Generations < 0:
		return nil, fmt.Errorf("%w: generations %d must not be negative", ErrConfiguration, ctx.Generations)
	case ctx.MaxInitAttempts < 1:
		return nil, fmt.Errorf("%w: max init attempts %d must be at least 1", ErrConfiguration, ctx.MaxInitAttempts)
	}

	for name, rate := range map[string]float64{
		"mutation":          ctx.MutationRate,
		"IS transposition":  ctx.ISTranspositionRate,
		"RIS transposition": ctx.RISTranspositionRate,
	} {
		if rate < 0 || rate > 1 {
			return nil, fmt.Errorf("%w: %s rate %g must be within [0, 1]", ErrConfiguration, name, rate)
		}
	}

	ctx.tailLength = ctx.HeadLength*(ctx.MaxArity-1) + 1
	ctx.geneLength = ctx.HeadLength + ctx.tailLength
	ctx.chromosomeLength = ctx.geneLength * ctx.NumGenes

	switch {
	case ctx.ValidationBinding == nil:
		ctx.validationBinding = make([]float64, len(ctx.Terminals))
	case len(ctx.ValidationBinding) != len(ctx.Terminals):
		return nil, fmt.Errorf("%w: validation binding has %d values, expected %d", ErrConfiguration, len(ctx.ValidationBinding), len(ctx.Terminals))
	default:
		ctx.validationBinding = ctx.ValidationBinding
	}

	if ctx.rng == nil {
		ctx.rng = rand.New(rand.NewSource(ctx.Seed))
	}
	if ctx.logger == nil {
		ctx.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	geneLength := ctx.geneLength
	ctx.stackPool.New = func() interface{} {
		return newStaticFloatStack(geneLength)
	}

	return ctx, nil
}

type Simulation struct {
	ctx *simulationContext

	samples []Sample
	cache   *fitnessCache

	generation uint
	population Population

	// Best chromosome seen so far, kept outside the population
	best    *PopulationMember
	history []float64
}

func NewSimulation(params *SimulationParams) (*Simulation, error) {
	ctx, err := newSimulationContext(params)
	if err != nil {
		return nil, err
	}

	return &Simulation{ctx: ctx}, nil
}

// Result describes the best chromosome a Simulation found
type Result struct {
	Best    *Chromosome
	Fitness float64

	// Trimmed symbols and infix rendering of each of Best's genes.
	// Empty if Best does not decode.
	KExpressions []string
	Formulas     []string
	Linker       Linker

	Generations uint

	// Fitness of the tracked best after initialisation and after each improvement
	History []float64
}

// Run creates a Simulation, initialises it with samples and iterates every generation
func Run(params *SimulationParams, samples []Sample) (*Result, error) {
	sim, err := NewSimulation(params)
	if err != nil {
		return nil, err
	}
	if err := sim.Init(samples); err != nil {
		return nil, err
	}
	return sim.Run()
}

// Init sets the dataset, creates the initial Population and evaluates it
func (sim *Simulation) Init(samples []Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: at least one sample is required", ErrConfiguration)
	}
	for i, sample := range samples {
		if len(sample.Inputs) != len(sim.ctx.Terminals) {
			return fmt.Errorf("%w: sample #%d has %d inputs, expected one per terminal (%d)", ErrConfiguration, i, len(sample.Inputs), len(sim.ctx.Terminals))
		}
	}

	cache, err := newFitnessCache(sim.ctx.FitnessCacheSize, samples)
	if err != nil {
		return err
	}

	population, err := sim.randomPopulation()
	if err != nil {
		return err
	}

	sim.samples = samples
	sim.cache = cache
	sim.population = population
	sim.generation = 0
	sim.evaluatePopulation()

	fittest := sim.population[sim.population.Fittest()]
	sim.best = &PopulationMember{c: fittest.c.Copy(), fitness: fittest.fitness}
	sim.history = []float64{fittest.fitness}

	sim.ctx.logger.Info("initialised population",
		"size", len(sim.population),
		"geneLength", sim.ctx.geneLength,
		"best", sim.best.fitness,
	)
	return nil
}

func (sim *Simulation) Primitives() *PrimitiveSet {
	return sim.ctx.primitives
}

func (sim *Simulation) Generation() uint {
	return sim.generation
}

func (sim *Simulation) Population() Population {
	return sim.population
}

func (sim *Simulation) Best() *PopulationMember {
	return sim.best
}

func (sim *Simulation) GeneLength() int {
	return sim.ctx.geneLength
}

var errNotInitialised = errors.New("simulation has not been initialised")

// Run iterates the remaining generations and reports the best chromosome found
func (sim *Simulation) Run() (*Result, error) {
	if sim.best == nil {
		return nil, errNotInitialised
	}

	for int(sim.generation) < sim.ctx.Generations {
		sim.Step()
	}
	return sim.Result(), nil
}

func (sim *Simulation) Result() *Result {
	best := sim.best.c.Copy()
	result := &Result{
		Best:        best,
		Fitness:     sim.best.fitness,
		Linker:      sim.ctx.Linker,
		Generations: sim.generation,
		History:     append([]float64(nil), sim.history...),
	}

	if kexprs, err := best.KExpressions(); err == nil {
		result.KExpressions = kexprs
		result.Formulas, _ = best.Formulas()
	}
	return result
}

// Step runs one generation, and returns whether the tracked best improved
func (sim *Simulation) Step() bool {
	sim.applyOperators()
	sim.evaluatePopulation()

	improved := false
	fittest := sim.population[sim.population.Fittest()]
	if fittest.fitness > sim.best.fitness {
		sim.best = &PopulationMember{c: fittest.c.Copy(), fitness: fittest.fitness}
		sim.history = append(sim.history, fittest.fitness)
		improved = true

		kexprs, _ := sim.best.c.KExpressions()
		sim.ctx.logger.Info("new best",
			"generation", sim.generation,
			"fitness", sim.best.fitness,
			"kexpressions", kexprs,
		)
	}

	if sim.ctx.logger.Enabled(context.Background(), slog.LevelDebug) {
		mean, std := stat.MeanStdDev(sim.population.Fitnesses(), nil)
		sim.ctx.logger.Debug("generation evaluated",
			"generation", sim.generation,
			"meanFitness", mean,
			"stdFitness", std,
			"maxFitness", fittest.fitness,
			"cacheHits", sim.cache.hits,
			"cacheMisses", sim.cache.misses,
		)
	}

	sim.population = sim.population.Select(sim.ctx.PopulationSize, sim.ctx.rng)
	sim.generation++
	return improved
}

func (sim *Simulation) evaluatePopulation() {
	for _, member := range sim.population {
		member.fitness = sim.cache.Fitness(member.c)
	}
}

var recombinations = []Recombination{OnePointRecombine, TwoPointRecombine, GeneRecombine}

// applyOperators mutates and transposes every chromosome, then performs each
// kind of recombination once, on a randomly drawn pair
func (sim *Simulation) applyOperators() {
	rng := sim.ctx.rng

	for _, member := range sim.population {
		c := member.c
		c.MutateWithRand(sim.ctx.MutationRate, rng)
		if rng.Float64() < sim.ctx.ISTranspositionRate {
			c.ISTransposeWithRand(rng)
		}
		if rng.Float64() < sim.ctx.RISTranspositionRate {
			c.RISTransposeWithRand(rng)
		}
	}

	for _, recombine := range recombinations {
		i, j := sim.pickPair()
		if err := recombine(sim.population[i].c, sim.population[j].c, rng); err != nil {
			// Members of one Simulation always share a layout
			panic(err)
		}
	}
}

// pickPair chooses two distinct population slots
func (sim *Simulation) pickPair() (int, int) {
	n := len(sim.population)
	i := sim.ctx.rng.Intn(n)
	j := sim.ctx.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
