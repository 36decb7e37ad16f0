package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/they4kman/experimentation/machine-learning/gene-expression-programming/gep"
)

type sampleConfig struct {
	Inputs []float64 `toml:"inputs"`
	Target float64   `toml:"target"`
}

// fileConfig is the TOML form of a run. Unset keys keep their defaults.
type fileConfig struct {
	Functions              *string   `toml:"functions"`
	Terminals              *string   `toml:"terminals"`
	HeadLength             *int      `toml:"head_length"`
	MaxArity               *int      `toml:"max_arity"`
	NumGenes               *int      `toml:"genes"`
	Linker                 *string   `toml:"linker"`
	MutationRate           *float64  `toml:"mutation_rate"`
	ISTranspositionRate    *float64  `toml:"is_rate"`
	RISTranspositionRate   *float64  `toml:"ris_rate"`
	MaxTranspositionLength *int      `toml:"transposition_length"`
	AllowTailFunctions     *bool     `toml:"allow_tail_functions"`
	PopulationSize         *int      `toml:"population_size"`
	Generations            *int      `toml:"generations"`
	FitnessCacheSize       *int      `toml:"cache_size"`
	Seed                   *int64    `toml:"seed"`
	ValidationBinding      []float64 `toml:"validation_binding"`

	// Dataset: either explicit samples, or a target formula evaluated at each input
	Samples []sampleConfig `toml:"sample"`
	Target  string         `toml:"target"`
	Inputs  [][]float64    `toml:"inputs"`

	// Input vectors to print predictions for once the run is over
	Predict [][]float64 `toml:"predict"`
}

// runConfig is everything main needs; flags are bound to its fields
type runConfig struct {
	params *gep.SimulationParams

	functions string
	linker    string

	samples []gep.Sample
	target  string
	inputs  [][]float64
	predict [][]float64
}

func defaultRunConfig() *runConfig {
	return &runConfig{
		params:    gep.DefaultSimulationParams(),
		functions: "+-*/",
		linker:    gep.LinkSum.String(),
	}
}

func loadConfigFile(path string, cfg *runConfig) error {
	var file fileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("unable to load config %s: %w", path, err)
	}
	file.apply(cfg)
	return nil
}

func (f *fileConfig) apply(cfg *runConfig) {
	p := cfg.params

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&cfg.functions, f.Functions)
	setString(&p.Terminals, f.Terminals)
	setInt(&p.HeadLength, f.HeadLength)
	setInt(&p.MaxArity, f.MaxArity)
	setInt(&p.NumGenes, f.NumGenes)
	setString(&cfg.linker, f.Linker)
	setFloat(&p.MutationRate, f.MutationRate)
	setFloat(&p.ISTranspositionRate, f.ISTranspositionRate)
	setFloat(&p.RISTranspositionRate, f.RISTranspositionRate)
	setInt(&p.MaxTranspositionLength, f.MaxTranspositionLength)
	setInt(&p.PopulationSize, f.PopulationSize)
	setInt(&p.Generations, f.Generations)
	setInt(&p.FitnessCacheSize, f.FitnessCacheSize)

	if f.AllowTailFunctions != nil {
		p.AllowTailFunctions = *f.AllowTailFunctions
	}
	if f.Seed != nil {
		p.Seed = *f.Seed
	}
	if f.ValidationBinding != nil {
		p.ValidationBinding = f.ValidationBinding
	}

	for _, s := range f.Samples {
		cfg.samples = append(cfg.samples, gep.Sample{Inputs: s.Inputs, Target: s.Target})
	}
	if f.Target != "" {
		cfg.target = f.Target
	}
	if f.Inputs != nil {
		cfg.inputs = f.Inputs
	}
	if f.Predict != nil {
		cfg.predict = f.Predict
	}
}

// finish resolves the symbolic parts of the config into params and samples
func (cfg *runConfig) finish() error {
	functions, err := gep.BuiltinFunctions(cfg.functions)
	if err != nil {
		return err
	}
	cfg.params.Functions = functions

	cfg.params.Linker, err = gep.ParseLinker(cfg.linker)
	if err != nil {
		return err
	}

	if cfg.target != "" {
		if len(cfg.samples) > 0 {
			return fmt.Errorf("either samples or a target formula may be given, not both")
		}
		cfg.samples, err = gep.SamplesFromFormula(cfg.target, cfg.params.Terminals, cfg.inputs)
		if err != nil {
			return err
		}
	}

	if len(cfg.samples) == 0 {
		return fmt.Errorf("no samples: provide [[sample]] rows in a config file, or a -target formula with -inputs")
	}
	return nil
}

// vectorsValue parses input vectors as "1,2;3,4": vectors separated by ';', components by ','
type vectorsValue struct {
	vectors *[][]float64
}

func (v vectorsValue) String() string {
	if v.vectors == nil {
		return ""
	}

	parts := make([]string, len(*v.vectors))
	for i, vec := range *v.vectors {
		components := make([]string, len(vec))
		for k, c := range vec {
			components[k] = strconv.FormatFloat(c, 'g', -1, 64)
		}
		parts[i] = strings.Join(components, ",")
	}
	return strings.Join(parts, ";")
}

func (v vectorsValue) Set(s string) error {
	vectors, err := parseVectors(s)
	if err != nil {
		return err
	}
	*v.vectors = vectors
	return nil
}

func parseVectors(s string) ([][]float64, error) {
	var vectors [][]float64
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var vec []float64
		for _, component := range strings.Split(part, ",") {
			c, err := strconv.ParseFloat(strings.TrimSpace(component), 64)
			if err != nil {
				return nil, fmt.Errorf("malformed vector component %q", component)
			}
			vec = append(vec, c)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// lookupConfigPath finds the -config flag ahead of the full flag parse, so the
// file can provide defaults which the remaining flags override
func lookupConfigPath(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := strings.TrimLeft(args[i], "-")
		if len(arg) == len(args[i]) {
			continue
		}

		if value := strings.TrimPrefix(arg, "config="); value != arg {
			return value
		}
		if arg == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
