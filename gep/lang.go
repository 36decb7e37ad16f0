package gep

import (
	"context"
	"fmt"
	"math"

	"github.com/PaesslerAG/gval"
)

// Language evaluates formulas in the notation produced by Expression.Infix.
// Terminals are referenced by their symbol, e.g. "(x * x) + sqrt(y)".
var Language gval.Language

var functionNames = map[byte]string{
	Abs.Symbol:   "abs",
	Power.Symbol: "pow",
	Sqrt.Symbol:  "sqrt",
	Sign.Symbol:  "sign",
}

func isInfixOperator(sym byte) bool {
	switch sym {
	case Add.Symbol, Subtract.Symbol, Multiply.Symbol, Divide.Symbol:
		return true
	}
	return false
}

// functionName is the name a function symbol is rendered with in infix notation
func functionName(sym byte) string {
	if name, ok := functionNames[sym]; ok {
		return name
	}
	return string(sym)
}

func floatFunction(name string, arity int, f func(args []float64) (float64, error)) gval.Language {
	return gval.Function(name, func(arguments ...interface{}) (interface{}, error) {
		if len(arguments) != arity {
			return nil, fmt.Errorf("%s expects %d arguments, got %d", name, arity, len(arguments))
		}

		args := make([]float64, arity)
		for i, arg := range arguments {
			v, isFloat := arg.(float64)
			if !isFloat {
				return nil, fmt.Errorf("%s: expected float, got: %v", name, arg)
			}
			args[i] = v
		}
		return f(args)
	})
}

func init() {
	Language = gval.NewLanguage(
		gval.Arithmetic(),
		// Arithmetic() has no unary plus
		gval.PrefixOperator("+", func(c context.Context, parameter interface{}) (interface{}, error) {
			p, isFloat := parameter.(float64)
			if !isFloat {
				return nil, fmt.Errorf("expected float, got: %v", parameter)
			}

			return +p, nil
		}),
		floatFunction("abs", 1, Abs.Rule),
		floatFunction("pow", 2, Power.Rule),
		floatFunction("sqrt", 1, Sqrt.Rule),
		floatFunction("sign", 1, Sign.Rule),
	)
}

// EvaluateFormula evaluates formula with each terminal symbol bound to the matching binding value
func EvaluateFormula(formula string, terminals string, binding []float64) (float64, error) {
	eval, err := Language.NewEvaluable(formula)
	if err != nil {
		return math.NaN(), err
	}
	return eval.EvalFloat64(context.Background(), formulaParameters(terminals, binding))
}

func formulaParameters(terminals string, binding []float64) map[string]interface{} {
	params := make(map[string]interface{}, len(terminals))
	for i := 0; i < len(terminals) && i < len(binding); i++ {
		params[string(terminals[i])] = binding[i]
	}
	return params
}

// SamplesFromFormula builds a dataset by evaluating formula at every input vector
func SamplesFromFormula(formula string, terminals string, inputs [][]float64) ([]Sample, error) {
	eval, err := Language.NewEvaluable(formula)
	if err != nil {
		return nil, fmt.Errorf("parsing target formula %q: %w", formula, err)
	}

	samples := make([]Sample, len(inputs))
	for i, in := range inputs {
		if len(in) != len(terminals) {
			return nil, fmt.Errorf("input #%d has %d values, expected one per terminal (%d)", i, len(in), len(terminals))
		}

		target, err := eval.EvalFloat64(context.Background(), formulaParameters(terminals, in))
		if err != nil {
			return nil, fmt.Errorf("evaluating target formula %q at %v: %w", formula, in, err)
		}

		samples[i] = Sample{Inputs: in, Target: target}
	}
	return samples, nil
}
