// Package quantile implements the online dual-heap quantile engine: a
// monotonically advancing window over a numeric stream that maintains, at
// every step, the order statistics needed to emit an interpolated quantile
// in O(log w) per update.
package quantile

import (
	"fmt"
	"math"

	"github.com/rolling-quantiles/rq/internal/heap"
	"github.com/rolling-quantiles/rq/internal/ring"
)

/*
Builder configures and constructs a Filter. Configuration is validated once,
at Build, into the normalized descriptor spec.md §9 calls for — callers
never see a runtime failure once Build succeeds.

The quantile can be specified two ways, and at most one may be used:

  - WithPortion sets an exact integer rank with no interpolation.
  - WithQuantile (optionally paired with WithInterpolation) sets a
    continuous quantile in [0, 1] using a plotting-position formula.

With neither, Build targets the continuous quantile 0.5 (the median).

This type is not concurrency safe.
*/
type Builder struct {
	window      int
	portion     *int
	quantile    *float64
	alpha, beta float64
}

// NewBuilder returns a Builder for a Filter over the given window size.
func NewBuilder(window int) *Builder {
	return &Builder{window: window, alpha: 0.5, beta: 0.5}
}

// WithPortion configures the integer-rank mode: the lower heap will hold
// exactly m values once the window fills, and the readout is exact (no
// interpolation). Mutually exclusive with WithQuantile.
func (b *Builder) WithPortion(m int) *Builder {
	b.portion = &m
	return b
}

// WithQuantile configures the continuous mode, targeting quantile q in
// [0, 1]. Mutually exclusive with WithPortion.
func (b *Builder) WithQuantile(q float64) *Builder {
	b.quantile = &q
	return b
}

// WithInterpolation sets the plotting-position parameters alpha and beta
// used by the continuous mode. Defaults to alpha = beta = 0.5 (the
// symmetric Hazen convention) if never called.
func (b *Builder) WithInterpolation(alpha, beta float64) *Builder {
	b.alpha = alpha
	b.beta = beta
	return b
}

// Build validates the configuration and returns a ready-to-use Filter, or
// ErrInvalidArgument describing the first violation found.
func (b *Builder) Build() (*Filter, error) {
	if b.window < 1 {
		return nil, fmt.Errorf("%w: window must be >= 1, got %d", ErrInvalidArgument, b.window)
	}
	if b.portion != nil && b.quantile != nil {
		return nil, fmt.Errorf("%w: portion and quantile are mutually exclusive", ErrInvalidArgument)
	}
	if b.alpha < 0 || b.alpha > 1 {
		return nil, fmt.Errorf("%w: alpha must be in [0, 1], got %v", ErrInvalidArgument, b.alpha)
	}
	if b.beta < 0 || b.beta > 1 {
		return nil, fmt.Errorf("%w: beta must be in [0, 1], got %v", ErrInvalidArgument, b.beta)
	}

	var d descriptor
	d.window = b.window
	switch {
	case b.portion != nil:
		m := *b.portion
		if m < 0 || m > b.window {
			return nil, fmt.Errorf("%w: portion must be in [0, %d], got %d", ErrInvalidArgument, b.window, m)
		}
		d.mode = modePortion
		d.m = m
		d.f = 0
	default:
		q := 0.5
		if b.quantile != nil {
			q = *b.quantile
		}
		if q < 0 || q > 1 {
			return nil, fmt.Errorf("%w: quantile must be in [0, 1], got %v", ErrInvalidArgument, q)
		}
		d.mode = modeQuantile
		d.m, d.f = rankFromQuantile(b.window, q, b.alpha, b.beta)
	}

	return &Filter{
		descriptor: d,
		lower:      heap.New(heap.Max, heap.Lower, b.window),
		upper:      heap.New(heap.Min, heap.Upper, b.window),
		buf:        ring.New(b.window),
	}, nil
}

/*
Filter is the online dual-heap quantile engine of spec.md §4.3: it owns a
lower max-heap, an upper min-heap, and a ring buffer of slots, and
maintains the invariant max(lower) <= min(upper) across every insertion and
age-based eviction.

A Filter is not safe for concurrent use; see spec.md §5.
*/
type Filter struct {
	descriptor
	lower *heap.Heap
	upper *heap.Heap
	buf   *ring.Buffer
}

// Window returns the configured window size.
func (f *Filter) Window() int {
	return f.descriptor.window
}

// Count returns the number of samples ingested so far, capped at Window().
func (f *Filter) Count() int {
	return f.buf.Count()
}

// Insert feeds one sample into the window, evicting the oldest sample once
// the window is full. If value is not finite it returns an error wrapping
// ErrInvalidInput and leaves the Filter unmodified.
func (f *Filter) Insert(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: sample must be finite, got %v", ErrInvalidInput, value)
	}
	if f.buf.Full() {
		return f.insertFull(value)
	}
	return f.insertFilling(value)
}

// insertFilling implements spec.md §4.3's filling-phase protocol: push onto
// the lower heap, then migrate its root to the upper heap whenever the
// lower heap has grown past the schedule for the rank it's converging to.
// When the lower heap keeps the new value instead, a value larger than the
// upper heap's root is swapped across the boundary.
func (f *Filter) insertFilling(value float64) error {
	slot := f.buf.CurrentSlot()
	f.lower.Push(value, slot)

	target := targetLowerSize(f.buf.Count()+1, f.descriptor.m, f.descriptor.window)
	if f.lower.Size() > target {
		top, err := f.lower.PopTop()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		f.upper.Push(top.Value, top.Slot)
	} else if err := f.repairBoundary(); err != nil {
		return err
	}
	f.buf.Advance()
	return nil
}

// insertFull implements spec.md §4.3's window-full protocol: locate the
// slot being evicted by its own (side, index) back-reference, overwrite it
// in place, and repair the single possible boundary violation that can
// result.
func (f *Filter) insertFull(value float64) error {
	slot := f.buf.CurrentSlot()

	evicted := f.lower
	if slot.Side == heap.Upper {
		evicted = f.upper
	}

	if _, err := evicted.ReplaceAt(slot.Index, value); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := f.repairBoundary(); err != nil {
		return err
	}

	f.buf.Advance()
	return nil
}

// repairBoundary restores max(lower) <= min(upper) when it has been
// violated at the root by the most recent replaceAt. spec.md §9 notes this
// can only happen at the root, since replaceAt already restored order
// within whichever heap it touched.
func (f *Filter) repairBoundary() error {
	if f.lower.Size() == 0 || f.upper.Size() == 0 {
		return nil
	}
	lowTop, err := f.lower.PeekTop()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	upTop, err := f.upper.PeekTop()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if lowTop.Value <= upTop.Value {
		return nil
	}

	lowCell, err := f.lower.PopTop()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	upCell, err := f.upper.PopTop()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	f.lower.Push(upCell.Value, upCell.Slot)
	f.upper.Push(lowCell.Value, lowCell.Slot)
	return nil
}

// Value returns the interpolated quantile over the current window, or NaN
// if the window has not yet filled (spec.md §4.3 Readout).
func (f *Filter) Value() (float64, error) {
	if f.buf.Count() < f.descriptor.window {
		return math.NaN(), nil
	}

	// The lower heap holds the m smallest values in the window, so its top
	// (the max of that set) is sorted[m-1]; the upper heap holds the rest,
	// so its top (the min of that set) is sorted[m]. Portion mode wants
	// sorted[m] exactly (the upper heap's top) except at the m = w
	// boundary, where everything is in the lower heap and sorted[m] does
	// not exist; continuous mode interpolates between the two.
	m, w := f.descriptor.m, f.descriptor.window
	if m == w {
		top, err := f.lower.PeekTop()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		return top.Value, nil
	}
	if f.descriptor.mode == modePortion || m == 0 {
		top, err := f.upper.PeekTop()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		return top.Value, nil
	}

	lowerTop, err := f.lower.PeekTop()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	upperTop, err := f.upper.PeekTop()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	weight := f.descriptor.f
	return (1-weight)*lowerTop.Value + weight*upperTop.Value, nil
}

// DelayedInput returns the raw sample that is currently lag positions
// behind the most recently written one, by following the ring buffer
// slot's (side, index) back-reference into whichever heap holds it. It is
// used by high-pass stages to read spec.md §4.4's delayed input without
// keeping a second copy of the raw stream.
func (f *Filter) DelayedInput(lag int) (float64, error) {
	slot := f.buf.SlotAtLag(lag)
	h := f.lower
	if slot.Side == heap.Upper {
		h = f.upper
	}
	v, err := h.ValueAt(slot.Index)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return v, nil
}
