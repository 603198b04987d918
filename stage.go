package rq

import (
	"fmt"
	"math"

	"github.com/rolling-quantiles/rq/quantile"
)

type passMode uint8

const (
	lowPass passMode = iota
	highPass
)

/*
Stage is one link in a Pipeline: an inner quantile.Filter plus a subsample
rate and a low-pass/high-pass mode, per spec.md §4.4. A Stage is built by a
StageBuilder via LowPass or HighPass and is not usable outside a Pipeline.

A Stage is not safe for concurrent use.
*/
type Stage struct {
	filter      *quantile.Filter
	mode        passMode
	rate        int
	ingestCount int
}

// Window returns the stage's configured window size.
func (s *Stage) Window() int {
	return s.filter.Window()
}

// feed ingests x and reports whether the stage emitted this tick, along
// with the emitted value when it did. A stage that is due to emit (per its
// subsample phase) but whose filter hasn't filled its window yet still
// counts as emitting, with a NaN value, per spec.md §4.3 Readout.
//
// feed always inserts x into the stage's filter, so a NaN x surfaces
// ErrInvalidInput via quantile.Filter.Insert exactly as the external
// interface contract requires (spec.md §6/§7). Treating an upstream
// stage's own warm-up NaN as a pass-through sentinel, instead of
// forwarding it here, is Pipeline.feedInternal's job, not this method's.
func (s *Stage) feed(x float64) (value float64, emitted bool, err error) {
	if err := s.filter.Insert(x); err != nil {
		return 0, false, err
	}
	s.ingestCount++
	if (s.ingestCount-1)%s.rate != s.rate-1 {
		return 0, false, nil
	}

	v, err := s.filter.Value()
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) {
		return math.NaN(), true, nil
	}
	if s.mode == lowPass {
		return v, true, nil
	}

	delayed, err := s.filter.DelayedInput(s.filter.Window() / 2)
	if err != nil {
		return 0, false, err
	}
	return delayed - v, true, nil
}

/*
StageBuilder configures and constructs a Stage. It mirrors
quantile.Builder's fluent WithPortion/WithQuantile/WithInterpolation
methods and adds WithSubsampleRate, terminating in Build.

This type is not concurrency safe.
*/
type StageBuilder struct {
	inner *quantile.Builder
	mode  passMode
	rate  int
}

// LowPass starts a StageBuilder for a low-pass stage (emits the quantile
// itself) over the given window.
func LowPass(window int) *StageBuilder {
	return &StageBuilder{inner: quantile.NewBuilder(window), mode: lowPass, rate: 1}
}

// HighPass starts a StageBuilder for a high-pass stage (emits the delayed
// raw input minus the quantile) over the given window.
func HighPass(window int) *StageBuilder {
	return &StageBuilder{inner: quantile.NewBuilder(window), mode: highPass, rate: 1}
}

// WithPortion configures the integer-rank mode. See quantile.Builder.WithPortion.
func (b *StageBuilder) WithPortion(m int) *StageBuilder {
	b.inner.WithPortion(m)
	return b
}

// WithQuantile configures the continuous mode. See quantile.Builder.WithQuantile.
func (b *StageBuilder) WithQuantile(q float64) *StageBuilder {
	b.inner.WithQuantile(q)
	return b
}

// WithInterpolation sets the plotting-position parameters for the
// continuous mode. See quantile.Builder.WithInterpolation.
func (b *StageBuilder) WithInterpolation(alpha, beta float64) *StageBuilder {
	b.inner.WithInterpolation(alpha, beta)
	return b
}

// WithSubsampleRate configures the stage to emit once every s ingested
// samples. Defaults to 1 (emit every sample) if never called.
func (b *StageBuilder) WithSubsampleRate(s int) *StageBuilder {
	b.rate = s
	return b
}

// Build validates the configuration and returns a ready-to-use Stage.
func (b *StageBuilder) Build() (*Stage, error) {
	if b.rate < 1 {
		return nil, fmt.Errorf("%w: subsample rate must be >= 1, got %d", ErrInvalidArgument, b.rate)
	}
	filter, err := b.inner.Build()
	if err != nil {
		return nil, err
	}
	return &Stage{filter: filter, mode: b.mode, rate: b.rate}, nil
}
