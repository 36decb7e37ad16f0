package gep

import "errors"

var (
	// ErrInvalidExpression is returned when a gene cannot be decoded or reduced,
	// e.g. the gene runs out of symbols before every function has its operands.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrDomain is returned when a primitive is applied outside its domain,
	// e.g. the square root of a negative number.
	ErrDomain = errors.New("domain error")

	// ErrConfiguration is returned for parameters that can never produce a working run.
	ErrConfiguration = errors.New("configuration error")
)
