package gep

import (
	"fmt"
	"math"
)

// Rule applies a primitive function to exactly Arity operands
type Rule func(args []float64) (float64, error)

type Function struct {
	Symbol byte
	Arity  int
	Rule   Rule
}

// Saturated is the value protected division yields when the divisor is zero
const Saturated = math.MaxFloat64

var (
	Add = Function{'+', 2, func(args []float64) (float64, error) {
		return args[0] + args[1], nil
	}}
	Subtract = Function{'-', 2, func(args []float64) (float64, error) {
		return args[0] - args[1], nil
	}}
	Multiply = Function{'*', 2, func(args []float64) (float64, error) {
		return args[0] * args[1], nil
	}}
	Divide = Function{'/', 2, func(args []float64) (float64, error) {
		if args[1] == 0 {
			return Saturated, nil
		}
		return args[0] / args[1], nil
	}}
	Negate = Function{'~', 1, func(args []float64) (float64, error) {
		return -args[0], nil
	}}
	Abs = Function{'A', 1, func(args []float64) (float64, error) {
		return math.Abs(args[0]), nil
	}}
	Power = Function{'P', 2, func(args []float64) (float64, error) {
		return math.Pow(args[0], args[1]), nil
	}}
	Sqrt = Function{'Q', 1, func(args []float64) (float64, error) {
		if args[0] < 0 {
			return math.NaN(), fmt.Errorf("%w: square root of negative number %g", ErrDomain, args[0])
		}
		return math.Sqrt(args[0]), nil
	}}
	Sign = Function{'S', 1, func(args []float64) (float64, error) {
		if args[0] >= 0 {
			return 1, nil
		}
		return -1, nil
	}}
)

var builtinFunctions [256]*Function

func init() {
	for _, f := range []*Function{&Add, &Subtract, &Multiply, &Divide, &Negate, &Abs, &Power, &Sqrt, &Sign} {
		builtinFunctions[f.Symbol] = f
	}
}

// BuiltinFunction returns the built-in primitive registered under symbol
func BuiltinFunction(symbol byte) (Function, bool) {
	if f := builtinFunctions[symbol]; f != nil {
		return *f, true
	}
	return Function{}, false
}

// BuiltinFunctions resolves each byte of symbols to a built-in primitive
func BuiltinFunctions(symbols string) ([]Function, error) {
	functions := make([]Function, 0, len(symbols))
	for i := 0; i < len(symbols); i++ {
		f, ok := BuiltinFunction(symbols[i])
		if !ok {
			return nil, fmt.Errorf("%w: unknown built-in function %q", ErrConfiguration, symbols[i])
		}
		functions = append(functions, f)
	}
	return functions, nil
}

// ArithmeticFunctions returns the four protected arithmetic operators
func ArithmeticFunctions() []Function {
	return []Function{Add, Subtract, Multiply, Divide}
}

type symbolKind int8

const (
	symbolUnknown symbolKind = iota
	symbolFunction
	symbolTerminal
)

type primitive struct {
	kind  symbolKind
	arity int
	rule  Rule

	// Index into the value binding, for terminals
	slot int
}

// PrimitiveSet is an immutable catalogue of the functions and terminals genes are built from.
// Every symbol is either a function or a terminal, never both.
type PrimitiveSet struct {
	table [256]primitive

	functions             []byte
	terminals             []byte
	functionsAndTerminals []byte

	maxArity int
}

func NewPrimitiveSet(functions []Function, terminals string) (*PrimitiveSet, error) {
	if len(functions) == 0 {
		return nil, fmt.Errorf("%w: at least one function is required", ErrConfiguration)
	}
	if len(terminals) == 0 {
		return nil, fmt.Errorf("%w: at least one terminal is required", ErrConfiguration)
	}

	ps := &PrimitiveSet{}
	for _, f := range functions {
		if f.Arity < 1 {
			return nil, fmt.Errorf("%w: function %q has arity %d, expected at least 1", ErrConfiguration, f.Symbol, f.Arity)
		}
		if f.Rule == nil {
			return nil, fmt.Errorf("%w: function %q has no rule", ErrConfiguration, f.Symbol)
		}
		if ps.table[f.Symbol].kind != symbolUnknown {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrConfiguration, f.Symbol)
		}

		ps.table[f.Symbol] = primitive{kind: symbolFunction, arity: f.Arity, rule: f.Rule}
		ps.functions = append(ps.functions, f.Symbol)
		if f.Arity > ps.maxArity {
			ps.maxArity = f.Arity
		}
	}

	for i := 0; i < len(terminals); i++ {
		sym := terminals[i]
		switch ps.table[sym].kind {
		case symbolFunction:
			return nil, fmt.Errorf("%w: symbol %q is both a function and a terminal", ErrConfiguration, sym)
		case symbolTerminal:
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrConfiguration, sym)
		}

		ps.table[sym] = primitive{kind: symbolTerminal, slot: i}
		ps.terminals = append(ps.terminals, sym)
	}

	ps.functionsAndTerminals = make([]byte, 0, len(ps.functions)+len(ps.terminals))
	ps.functionsAndTerminals = append(ps.functionsAndTerminals, ps.functions...)
	ps.functionsAndTerminals = append(ps.functionsAndTerminals, ps.terminals...)

	return ps, nil
}

func (ps *PrimitiveSet) IsFunction(sym byte) bool {
	return ps.table[sym].kind == symbolFunction
}

func (ps *PrimitiveSet) IsTerminal(sym byte) bool {
	return ps.table[sym].kind == symbolTerminal
}

// Arity returns the number of operands sym consumes; 0 for terminals and unknown symbols
func (ps *PrimitiveSet) Arity(sym byte) int {
	return ps.table[sym].arity
}

func (ps *PrimitiveSet) Functions() string {
	return string(ps.functions)
}

// Terminals returns the terminal symbols in binding order
func (ps *PrimitiveSet) Terminals() string {
	return string(ps.terminals)
}

func (ps *PrimitiveSet) MaxArity() int {
	return ps.maxArity
}

func (ps *PrimitiveSet) randomFunction(rng Rand) byte {
	return ps.functions[rng.Intn(len(ps.functions))]
}

func (ps *PrimitiveSet) randomTerminal(rng Rand) byte {
	return ps.terminals[rng.Intn(len(ps.terminals))]
}

func (ps *PrimitiveSet) randomSymbol(rng Rand) byte {
	return ps.functionsAndTerminals[rng.Intn(len(ps.functionsAndTerminals))]
}
