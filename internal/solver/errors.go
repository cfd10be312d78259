package solver

import "errors"

// Fatal errors raised before any route computation starts. Constraint
// violations are not errors: they are collected on the affected route and
// surfaced in the result.
var (
	// ErrInvalidInput wraps a description of the first invalid field found.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownAlgorithm reports an unrecognized Options.Algorithm value.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)
