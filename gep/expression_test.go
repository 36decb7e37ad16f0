package gep

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Expression", func() {
	var ps *PrimitiveSet

	BeforeEach(func() {
		var err error
		ps, err = NewPrimitiveSet(append(ArithmeticFunctions(), Sqrt, Negate, Power), "xy")
		Expect(err).ToNot(HaveOccurred())
	})

	DescribeTable("Decode",
		func(gene string, expectedKExpression string) {
			expr, err := ps.Decode([]byte(gene))
			Expect(err).ToNot(HaveOccurred())
			Expect(expr.KExpression()).To(Equal(expectedKExpression))
			Expect(expr.Len()).To(Equal(len(expectedKExpression)))
		},
		Entry("terminal root", "xyxy", "x"),
		Entry("binary root", "+xyxx", "+xy"),
		Entry("nested", "*+xyxyy", "*+xyx"),
		Entry("unary", "Q~xyyy", "Q~x"),
		Entry("whole gene", "++xxyy+", "++xxy"),
		Entry("mixed arities", "P~Qxyxx", "P~Qxy"),
		Entry("exact fit", "-+*xxxy", "-+*xxxy"),
	)

	DescribeTable("Decode (invalid)",
		func(gene string) {
			_, err := ps.Decode([]byte(gene))
			Expect(err).To(MatchError(ErrInvalidExpression))
		},
		Entry("empty", ""),
		Entry("functions only", "+++"),
		Entry("tail too short", "++xx"),
		Entry("unknown symbol", "+x?"),
	)

	DescribeTable("Evaluate",
		func(gene string, x, y float64, expected float64) {
			expr, err := ps.Decode([]byte(gene))
			Expect(err).ToNot(HaveOccurred())

			result, err := expr.Evaluate([]float64{x, y})
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal(expected))
		},
		Entry("x", "xyy", 2.0, 3.0, 2.0),
		Entry("x-y", "-xyxx", 2.0, 3.0, -1.0),
		Entry("x/y", "/xyxx", 3.0, 2.0, 1.5),
		Entry("(y+x)*x", "*+xyxyy", 2.0, 3.0, 10.0),
		Entry("(x+x)-(y*x)", "-+*xxyx", 2.0, 3.0, -2.0),
		Entry("x/(y-y)", "/x-yyxx", 2.0, 3.0, Saturated),
		Entry("pow(-(x), sqrt(y))", "P~Qxyxx", 2.0, 9.0, -8.0),
	)

	It("fails with a domain error for the square root of a negative number", func() {
		expr, err := ps.Decode([]byte("Q-xyxy"))
		Expect(err).ToNot(HaveOccurred())

		_, err = expr.Evaluate([]float64{2, 3})
		Expect(err).To(MatchError(ErrDomain))
	})

	It("fails when a terminal has no value bound", func() {
		expr, err := ps.Decode([]byte("+xyxx"))
		Expect(err).ToNot(HaveOccurred())

		_, err = expr.Evaluate([]float64{1})
		Expect(err).To(MatchError(ErrInvalidExpression))
	})

	It("is deterministic", func() {
		expr, err := ps.Decode([]byte("*+/-xyxyxx"))
		Expect(err).ToNot(HaveOccurred())

		binding := []float64{1.5, -2.25}
		first, err := expr.Evaluate(binding)
		Expect(err).ToNot(HaveOccurred())

		for i := 0; i < 10; i++ {
			again, err := ps.Decode([]byte("*+/-xyxyxx"))
			Expect(err).ToNot(HaveOccurred())
			Expect(again.KExpression()).To(Equal(expr.KExpression()))
			Expect(again.Evaluate(binding)).To(Equal(first))
			Expect(expr.Evaluate(binding)).To(Equal(first))
		}
	})

	DescribeTable("Infix",
		func(gene string, expectedInfix string) {
			expr, err := ps.Decode([]byte(gene))
			Expect(err).ToNot(HaveOccurred())
			Expect(expr.Infix()).To(Equal(expectedInfix))
		},
		Entry("x", "xyy", "x"),
		Entry("(y+x)*x", "*+xyxyy", "((y + x) * x)"),
		Entry("unary", "Q~xyyy", "sqrt((-x))"),
		Entry("pow", "P~Qxyxx", "pow((-x), sqrt(y))"),
	)

	DescribeTable("Infix evaluates the same through Language",
		func(gene string, x, y float64) {
			expr, err := ps.Decode([]byte(gene))
			Expect(err).ToNot(HaveOccurred())

			binding := []float64{x, y}
			expected, err := expr.Evaluate(binding)
			Expect(err).ToNot(HaveOccurred())

			result, err := EvaluateFormula(expr.Infix(), ps.Terminals(), binding)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(BeNumerically("~", expected, 1e-9))
		},
		Entry("(y+x)*x", "*+xyxyy", 2.0, 3.0),
		Entry("(x+x)-(y*x)", "-+*xxyx", 1.5, -4.0),
		Entry("x/y-x*y", "-/*xyxyxy", 7.0, 0.5),
		Entry("pow(-(x), sqrt(y))", "P~Qxyxx", 3.0, 4.0),
		Entry("sqrt(x*y)", "Q*xyxy", 3.0, 12.0),
	)
})

var _ = Describe("staticFloatStack", func() {
	It("pops operands most recently pushed first", func() {
		s := newStaticFloatStack(3)
		Expect(s.Push(1)).To(Succeed())
		Expect(s.Push(2)).To(Succeed())
		Expect(s.Push(3)).To(Succeed())
		Expect(s.Push(4)).ToNot(Succeed())

		popped, err := s.PopN(2)
		Expect(err).ToNot(HaveOccurred())
		Expect(popped).To(Equal([]float64{3, 2}))
		Expect(s.Size()).To(Equal(1))

		_, err = s.PopN(2)
		Expect(err).To(HaveOccurred())

		Expect(s.Pop()).To(Equal(1.0))
		_, err = s.Pop()
		Expect(err).To(HaveOccurred())
	})
})
