package gep

import (
	"fmt"
	"math"
	"strings"
)

// Expression is the decoded form of a gene: its K-expression, with the junk
// symbols past the coding region trimmed away.
type Expression struct {
	ps *PrimitiveSet

	// Coding region in breadth-first (Karva) order
	kexpr []byte

	// Index of the first child of each kexpr node
	children []int

	// The same nodes in prefix order, ready for stack reduction
	prefix []byte
}

// codingLength returns the length of the shortest prefix of gene forming a complete expression
func (ps *PrimitiveSet) codingLength(gene []byte) (int, error) {
	// The root is the first required argument
	required := 1
	for i, sym := range gene {
		p := &ps.table[sym]
		switch p.kind {
		case symbolFunction:
			required += p.arity - 1
		case symbolTerminal:
			required--
		default:
			return 0, fmt.Errorf("%w: unknown symbol %q at position %d", ErrInvalidExpression, sym, i)
		}

		if required == 0 {
			return i + 1, nil
		}
	}

	if len(gene) == 0 {
		return 0, fmt.Errorf("%w: empty gene", ErrInvalidExpression)
	}
	return 0, fmt.Errorf("%w: gene %q ends with %d operands missing", ErrInvalidExpression, gene, required)
}

// Decode trims gene down to its K-expression
func (ps *PrimitiveSet) Decode(gene []byte) (*Expression, error) {
	n, err := ps.codingLength(gene)
	if err != nil {
		return nil, err
	}

	e := &Expression{
		ps:       ps,
		kexpr:    make([]byte, n),
		children: make([]int, n),
		prefix:   make([]byte, 0, n),
	}
	copy(e.kexpr, gene[:n])

	next := 1
	for i, sym := range e.kexpr {
		e.children[i] = next
		next += ps.table[sym].arity
	}

	// Depth-first walk over the breadth-first layout
	pending := make([]int, 1, n)
	for len(pending) > 0 {
		i := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		e.prefix = append(e.prefix, e.kexpr[i])
		for k := ps.table[e.kexpr[i]].arity - 1; k >= 0; k-- {
			pending = append(pending, e.children[i]+k)
		}
	}

	return e, nil
}

// KExpression returns the coding symbols of the gene, in gene order
func (e *Expression) KExpression() string {
	return string(e.kexpr)
}

func (e *Expression) String() string {
	return string(e.kexpr)
}

func (e *Expression) Len() int {
	return len(e.kexpr)
}

// Evaluate reduces the expression with terminals bound positionally to binding
func (e *Expression) Evaluate(binding []float64) (float64, error) {
	return e.reduce(newStaticFloatStack(len(e.prefix)), binding)
}

func (e *Expression) reduce(values *staticFloatStack, binding []float64) (float64, error) {
	values.Reset()

	for i := len(e.prefix) - 1; i >= 0; i-- {
		sym := e.prefix[i]
		p := &e.ps.table[sym]

		switch p.kind {
		case symbolTerminal:
			if p.slot >= len(binding) {
				return math.NaN(), fmt.Errorf("%w: no value bound for terminal %q", ErrInvalidExpression, sym)
			}
			if err := values.Push(binding[p.slot]); err != nil {
				return math.NaN(), fmt.Errorf("%w: %v", ErrInvalidExpression, err)
			}

		case symbolFunction:
			args, err := values.PopN(p.arity)
			if err != nil {
				return math.NaN(), fmt.Errorf("%w: applying %q: %v", ErrInvalidExpression, sym, err)
			}

			result, err := p.rule(args)
			if err != nil {
				return math.NaN(), err
			}
			if err := values.Push(result); err != nil {
				return math.NaN(), fmt.Errorf("%w: %v", ErrInvalidExpression, err)
			}

		default:
			return math.NaN(), fmt.Errorf("%w: unknown symbol %q", ErrInvalidExpression, sym)
		}
	}

	if values.Size() != 1 {
		return math.NaN(), fmt.Errorf("%w: %d values left after reduction", ErrInvalidExpression, values.Size())
	}
	return values.Pop()
}

// Infix renders the expression as a fully parenthesised formula understood by Language
func (e *Expression) Infix() string {
	var buf strings.Builder
	buf.Grow(len(e.kexpr) * 4)
	e.writeInfix(&buf, 0)
	return buf.String()
}

func (e *Expression) writeInfix(buf *strings.Builder, node int) {
	sym := e.kexpr[node]
	arity := e.ps.table[sym].arity
	first := e.children[node]

	switch {
	case arity == 0:
		buf.WriteByte(sym)

	case arity == 2 && isInfixOperator(sym):
		buf.WriteByte('(')
		e.writeInfix(buf, first)
		buf.WriteByte(' ')
		buf.WriteByte(sym)
		buf.WriteByte(' ')
		e.writeInfix(buf, first+1)
		buf.WriteByte(')')

	case sym == Negate.Symbol:
		buf.WriteString("(-")
		e.writeInfix(buf, first)
		buf.WriteByte(')')

	default:
		buf.WriteString(functionName(sym))
		buf.WriteByte('(')
		for k := 0; k < arity; k++ {
			if k > 0 {
				buf.WriteString(", ")
			}
			e.writeInfix(buf, first+k)
		}
		buf.WriteByte(')')
	}
}
