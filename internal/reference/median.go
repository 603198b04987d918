// Package reference provides brute-force oracles used only by tests, to
// check the dual-heap engine's output against a plainly-correct
// implementation over the same window.
package reference

import "sort"

// Median returns the sort-based median of window, using the
// upper-of-the-two-middles convention for even lengths (0-indexed
// sorted[n/2]), matching numpy's definition for odd n and spec.md's
// scenarios, which only exercise odd window sizes.
func Median(window []float64) float64 {
	return Quantile(window, len(window)/2)
}

// Quantile returns the rank-th smallest value of window (0-indexed), i.e.
// sorted(window)[rank]. It is adapted from the teacher's sort-based
// MovingMedian, generalized from a fixed middle index to an arbitrary
// rank and from an incrementally-maintained window to a one-shot copy,
// since this is test-only scaffolding where clarity matters more than
// amortized cost.
func Quantile(window []float64, rank int) float64 {
	sorted := make([]float64, len(window))
	copy(sorted, window)
	sort.Float64s(sorted)
	return sorted[rank]
}

// PlottingPosition returns the interpolated quantile q of window using the
// alpha/beta plotting-position convention (matching
// scipy.stats.mstats.mquantiles), for use as an oracle in interpolation
// property tests.
func PlottingPosition(window []float64, q, alpha, beta float64) float64 {
	sorted := make([]float64, len(window))
	copy(sorted, window)
	sort.Float64s(sorted)

	n := len(sorted)
	h := alpha + q*(float64(n)+1-alpha-beta) - 1
	lo := int(h)
	if h < 0 && float64(lo) != h {
		lo--
	}
	switch {
	case lo < 0:
		return sorted[0]
	case lo >= n-1:
		return sorted[n-1]
	default:
		f := h - float64(lo)
		return (1-f)*sorted[lo] + f*sorted[lo+1]
	}
}
