package quantile

import "errors"

// Sentinel errors surfaced at the engine's boundary, matching the taxonomy
// in spec.md §7. Callers check these with errors.Is; the root rq package
// re-exports them so host code never needs to import this package directly.
var (
	// ErrInvalidArgument is returned from Build when a stage's configuration
	// is illegal. It is never returned once a Filter has been constructed.
	ErrInvalidArgument = errors.New("quantile: invalid argument")

	// ErrInvalidInput is returned from Insert when a non-finite sample is
	// fed to a Filter. The offending sample is not inserted and the
	// Filter's internal state is left unchanged.
	ErrInvalidInput = errors.New("quantile: invalid input")

	// ErrInternal is returned when a heap invariant is found violated.
	// This is unreachable under a correct implementation and signals a bug
	// rather than a recoverable condition.
	ErrInternal = errors.New("quantile: internal invariant violation")
)
