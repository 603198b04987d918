package rq

import "github.com/rolling-quantiles/rq/quantile"

// Sentinel errors re-exported from the quantile package so callers never
// need to import it directly, matching the taxonomy in spec.md §7.
var (
	// ErrInvalidArgument is returned from a Builder's Build or from
	// NewPipeline when a stage or pipeline is misconfigured.
	ErrInvalidArgument = quantile.ErrInvalidArgument

	// ErrInvalidInput is returned from Feed when a non-finite sample is
	// fed into a stage.
	ErrInvalidInput = quantile.ErrInvalidInput

	// ErrInternal signals a heap invariant violation. Unreachable under a
	// correct implementation.
	ErrInternal = quantile.ErrInternal
)
