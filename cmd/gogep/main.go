package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/they4kman/experimentation/machine-learning/gene-expression-programming/gep"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "gogep: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg := defaultRunConfig()
	if path := lookupConfigPath(args); path != "" {
		if err := loadConfigFile(path, cfg); err != nil {
			return err
		}
	}

	params := cfg.params
	verbose := false
	configPath := ""

	flags := flag.NewFlagSet("gogep", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&configPath, "config", "", "TOML file providing defaults for every other flag, plus [[sample]] rows")
	flags.BoolVar(&verbose, "v", false, "Log every generation")

	flags.StringVar(&cfg.functions, "functions", cfg.functions, "Built-in function symbols to evolve with (+ - * / ~ A P Q S)")
	flags.StringVar(&params.Terminals, "terminals", params.Terminals, "Terminal symbols, in the order input vectors bind them")
	flags.IntVar(&params.HeadLength, "head", params.HeadLength, "Number of symbols in each gene's head")
	flags.IntVar(&params.MaxArity, "max-arity", params.MaxArity, "Arity the gene tail is sized for (0 to derive it from the functions)")
	flags.IntVar(&params.NumGenes, "genes", params.NumGenes, "Number of genes in each chromosome")
	flags.StringVar(&cfg.linker, "linker", cfg.linker, "How gene values are combined: sum, max or min")
	flags.Float64Var(&params.MutationRate, "mutation-rate", params.MutationRate, "Chance each gene is point-mutated per generation")
	flags.Float64Var(&params.ISTranspositionRate, "is-rate", params.ISTranspositionRate, "Chance each chromosome undergoes IS transposition per generation")
	flags.Float64Var(&params.RISTranspositionRate, "ris-rate", params.RISTranspositionRate, "Chance each chromosome undergoes RIS transposition per generation")
	flags.IntVar(&params.MaxTranspositionLength, "transposition-length", params.MaxTranspositionLength, "Maximum length of transposed segments")
	flags.BoolVar(&params.AllowTailFunctions, "allow-tail-functions", params.AllowTailFunctions, "Leave function symbols transposed into gene tails in place")
	flags.IntVar(&params.PopulationSize, "population-size", params.PopulationSize, "Number of chromosomes in the population")
	flags.IntVar(&params.Generations, "generations", params.Generations, "Number of generations to evolve")
	flags.IntVar(&params.FitnessCacheSize, "cache-size", params.FitnessCacheSize, "Number of fitness values to memoise (0 disables)")
	flags.Int64Var(&params.Seed, "seed", params.Seed, "Random seed (0 picks one from the clock)")

	flags.StringVar(&cfg.target, "target", cfg.target, "Formula to approximate, in terms of the terminals, e.g. \"x*x + 1\"")
	flags.Var(vectorsValue{&cfg.inputs}, "inputs", "Input vectors the target formula is sampled at, e.g. \"1;2;3\" or \"1,2;3,4\"")
	flags.Var(vectorsValue{&cfg.predict}, "predict", "Input vectors to print predictions of the best chromosome for")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := cfg.finish(); err != nil {
		return err
	}

	if params.Seed == 0 {
		params.Seed = time.Now().UnixNano()
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	params.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	startedAt := time.Now()
	result, err := gep.Run(params, cfg.samples)
	if err != nil {
		return err
	}
	elapsed := time.Since(startedAt)

	printer := message.NewPrinter(language.English)
	printer.Fprintf(stdout, "%s\n\n", result.Best.VerboseString())
	printer.Fprintf(stdout, "Fitness: %.6f after %d generations (seed %d)\n", result.Fitness, result.Generations, params.Seed)

	if cumulativeError, err := result.Best.Error(cfg.samples); err == nil {
		printer.Fprintf(stdout, "Cumulative error: %.6f over %d samples\n", cumulativeError, len(cfg.samples))
	}

	for _, in := range cfg.predict {
		predicted, err := result.Best.Evaluate(in)
		if err != nil {
			printer.Fprintf(stdout, "f(%v) = ERROR (%s)\n", in, err)
			continue
		}
		printer.Fprintf(stdout, "f(%v) = % .4f\n", in, predicted)
	}

	printer.Fprintf(stdout, "Elapsed time: %s\n", elapsed)
	return nil
}
