package gograd

import "errors"

// Errors returned by the extractor, the parser and the JSON decoder.
var (
	ErrNegativeOrder       = errors.New("derivative order must be non-negative")
	ErrNonConstantExponent = errors.New("exponent must be a numeric constant")
	ErrUnknownFunction     = errors.New("unknown function")
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrForeignNode         = errors.New("node belongs to a different graph")
	ErrGraphTooLarge       = errors.New("expression graph too large")
	ErrOrderTooHigh        = errors.New("derivative order above limit")
	ErrTooManyPoints       = errors.New("too many check points")
)
