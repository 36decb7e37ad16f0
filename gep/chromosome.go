package gep

import (
	"fmt"
	"math"
	"strings"
)

// Linker folds the values of a chromosome's genes into one
type Linker int8

const (
	LinkSum Linker = iota
	LinkMax
	LinkMin
)

func (l Linker) String() string {
	switch l {
	case LinkSum:
		return "sum"
	case LinkMax:
		return "max"
	case LinkMin:
		return "min"
	default:
		return fmt.Sprintf("Linker(%d)", int8(l))
	}
}

func ParseLinker(s string) (Linker, error) {
	switch strings.ToLower(s) {
	case "sum", "+":
		return LinkSum, nil
	case "max":
		return LinkMax, nil
	case "min":
		return LinkMin, nil
	default:
		return 0, fmt.Errorf("%w: unknown linker %q", ErrConfiguration, s)
	}
}

func (l Linker) link(values []float64) (float64, error) {
	switch l {
	case LinkSum:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum, nil

	case LinkMax, LinkMin:
		extremum := values[0]
		for _, v := range values[1:] {
			if l == LinkMax {
				extremum = math.Max(extremum, v)
			} else {
				extremum = math.Min(extremum, v)
			}
		}
		return extremum, nil

	default:
		return math.NaN(), fmt.Errorf("%w: unknown linker %d", ErrConfiguration, int8(l))
	}
}

// Chromosome is a fixed number of equal-length genes, stored back to back
type Chromosome struct {
	genes []byte
	ctx   *simulationContext

	// Cached results of decoding; dropped whenever genes change
	decoded   []*Expression
	decodeErr error
}

func (c *Chromosome) String() string {
	var buf strings.Builder
	buf.Grow(len(c.genes) + c.NumGenes() - 1)

	for i := 0; i < c.NumGenes(); i++ {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.Write(c.gene(i))
	}
	return buf.String()
}

// VerboseString shows each gene above its K-expression and formula, followed by the linker
func (c *Chromosome) VerboseString() string {
	var buf strings.Builder

	expressions, err := c.Decode()
	for i := 0; i < c.NumGenes(); i++ {
		gene := c.gene(i)
		head := c.ctx.HeadLength
		fmt.Fprintf(&buf, "gene %d: %s|%s\n", i, gene[:head], gene[head:])
		if err == nil {
			fmt.Fprintf(&buf, "  K = %s\n  f = %s\n", expressions[i].KExpression(), expressions[i].Infix())
		}
	}

	if err != nil {
		fmt.Fprintf(&buf, "  ERROR: %s\n", err)
	}
	fmt.Fprintf(&buf, "linked by %s", c.ctx.Linker)
	return buf.String()
}

func (c *Chromosome) Copy() *Chromosome {
	copied := &Chromosome{
		genes:     make([]byte, len(c.genes)),
		ctx:       c.ctx,
		decoded:   c.decoded,
		decodeErr: c.decodeErr,
	}
	copy(copied.genes, c.genes)
	return copied
}

// Genes returns a copy of every gene concatenated in order
func (c *Chromosome) Genes() []byte {
	genes := make([]byte, len(c.genes))
	copy(genes, c.genes)
	return genes
}

// Gene returns a copy of gene i
func (c *Chromosome) Gene(i int) []byte {
	return append([]byte(nil), c.gene(i)...)
}

// gene aliases the chromosome's storage; writers must invalidate
func (c *Chromosome) gene(i int) []byte {
	length := c.ctx.geneLength
	return c.genes[i*length : (i+1)*length]
}

func (c *Chromosome) NumGenes() int {
	return len(c.genes) / c.ctx.geneLength
}

func (c *Chromosome) Linker() Linker {
	return c.ctx.Linker
}

func (c *Chromosome) invalidate() {
	c.decoded = nil
	c.decodeErr = nil
}

// Decode returns the K-expression of every gene
func (c *Chromosome) Decode() ([]*Expression, error) {
	if c.decoded != nil || c.decodeErr != nil {
		return c.decoded, c.decodeErr
	}

	decoded := make([]*Expression, c.NumGenes())
	for i := range decoded {
		expr, err := c.ctx.primitives.Decode(c.gene(i))
		if err != nil {
			c.decodeErr = fmt.Errorf("gene %d: %w", i, err)
			return nil, c.decodeErr
		}
		decoded[i] = expr
	}

	c.decoded = decoded
	return c.decoded, nil
}

// KExpressions returns the trimmed symbols of every gene
func (c *Chromosome) KExpressions() ([]string, error) {
	expressions, err := c.Decode()
	if err != nil {
		return nil, err
	}

	kexprs := make([]string, len(expressions))
	for i, expr := range expressions {
		kexprs[i] = expr.KExpression()
	}
	return kexprs, nil
}

// Formulas returns the infix rendering of every gene
func (c *Chromosome) Formulas() ([]string, error) {
	expressions, err := c.Decode()
	if err != nil {
		return nil, err
	}

	formulas := make([]string, len(expressions))
	for i, expr := range expressions {
		formulas[i] = expr.Infix()
	}
	return formulas, nil
}

// Evaluate computes the chromosome's prediction for one input vector,
// terminals taking their values positionally from inputs.
func (c *Chromosome) Evaluate(inputs []float64) (float64, error) {
	expressions, err := c.Decode()
	if err != nil {
		return math.NaN(), err
	}

	values := c.ctx.stackPool.Get().(*staticFloatStack)
	defer c.ctx.stackPool.Put(values)

	results := make([]float64, len(expressions))
	for i, expr := range expressions {
		results[i], err = expr.reduce(values, inputs)
		if err != nil {
			return math.NaN(), fmt.Errorf("gene %d: %w", i, err)
		}
	}

	return c.ctx.Linker.link(results)
}
