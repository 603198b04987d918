package quantile

// mode distinguishes the two quantile-specification styles spec.md §4.3
// allows: an exact integer rank, or a continuous quantile with a
// plotting-position interpolation formula.
type mode uint8

const (
	modePortion mode = iota
	modeQuantile
)

// descriptor is the single normalized configuration a Filter runs on,
// produced once by Builder.Build from either a portion or a (quantile,
// alpha, beta) specification. Keeping exactly one downstream
// representation avoids duplicating the rank/interpolation math for both
// input styles, per spec.md §9's design note.
type descriptor struct {
	window int
	m      int     // size of the lower heap once the window is full
	f      float64 // fractional interpolation weight toward the upper heap
	mode   mode
}

// rankFromQuantile derives the lower-heap size m and fractional weight f
// from a continuous quantile q and plotting-position parameters alpha,
// beta, following spec.md §4.3's fractional rank:
//
//	h = alpha + q*(w + 1 - alpha - beta) - 1
//
// h is a 0-indexed fractional rank into the sorted window: the target
// value sits between sorted[floor(h)] and sorted[floor(h)+1], weighted by
// f = h - floor(h). The lower heap is sized to hold exactly the elements
// at indices [0, floor(h)], i.e. m = floor(h) + 1, so that its top (the
// max of the m smallest values) is sorted[floor(h)] and the upper heap's
// top is sorted[floor(h)+1] — see Value's interior case. Clamped to
// [0, w] with f forced to 0 at the boundaries (q̂ = max when m = w, q̂ =
// min when m = 0).
func rankFromQuantile(window int, q, alpha, beta float64) (m int, f float64) {
	h := alpha + q*(float64(window)+1-alpha-beta) - 1
	lo := int(floor(h))
	frac := h - float64(lo)
	switch {
	case lo < 0:
		return 0, 0
	case lo >= window-1:
		return window, 0
	default:
		return lo + 1, frac
	}
}

func floor(x float64) float64 {
	i := float64(int64(x))
	if x < 0 && i != x {
		return i - 1
	}
	return i
}

// targetLowerSize returns the size the lower heap should have reached after
// k samples have been ingested, on a schedule that ends at exactly m once
// k reaches window. spec.md §4.3 allows any monotone schedule with that
// endpoint; ceil(k*m/w) is the one this implementation commits to.
func targetLowerSize(k, m, window int) int {
	if window == 0 {
		return 0
	}
	return (k*m + window - 1) / window
}
