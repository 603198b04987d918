/*
Package rq implements rolling quantile filters over a numeric stream: given
a window size w, it produces an interpolated quantile of the most recent w
samples in amortized O(log w) time per sample, via an online dual-heap
engine (package quantile). Stages chain into pipelines that combine
low-pass quantile extraction with high-pass residual computation,
subsampling, and configurable interpolation.

	lowPass, _ := rq.LowPass(100).WithQuantile(0.5).Build()
	pipeline, _ := rq.NewPipeline(lowPass)
	median, _ := pipeline.FeedScalar(1.0)
*/
package rq

import (
	"fmt"
	"math"
)

// EmitEvent describes one stage's output within a Pipeline, passed to a
// listener registered via Pipeline.OnEmit.
type EmitEvent struct {
	StageIndex int
	Value      float64
}

/*
Pipeline chains one or more Stages, piping each stage's output to the next
per spec.md §4.4. A Pipeline is the unit external callers construct and
feed; Stages are not usable standalone.

A Pipeline is not safe for concurrent use; see spec.md §5. Independent
Pipeline instances have no ordering contract between them and may be run
concurrently by the host — see package lineup.
*/
type Pipeline struct {
	stages []*Stage
	onEmit func(EmitEvent)
}

// NewPipeline constructs a Pipeline from one or more Stages, in order. At
// least one stage is required.
func NewPipeline(first *Stage, rest ...*Stage) (*Pipeline, error) {
	if first == nil {
		return nil, fmt.Errorf("%w: pipeline requires at least one stage", ErrInvalidArgument)
	}
	return &Pipeline{stages: append([]*Stage{first}, rest...)}, nil
}

// OnEmit registers a listener called whenever any stage in the pipeline
// emits a value, in stage order. Mirrors the teacher's
// ListenablePolicyBuilder convention of optional observability hooks that
// don't sit on the hot path unless configured.
func (p *Pipeline) OnEmit(listener func(EmitEvent)) *Pipeline {
	p.onEmit = listener
	return p
}

// Lag returns the pipeline's end-to-end alignment offset in input samples:
// each stage's floor(window/2) contributes, scaled by the product of the
// subsample rates of the stages that precede it, since a stage downstream
// of subsampling operates on an already-decimated timebase.
func (p *Pipeline) Lag() int {
	lag := 0
	rateProduct := 1
	for _, s := range p.stages {
		lag += rateProduct * (s.Window() / 2)
		rateProduct *= s.rate
	}
	return lag
}

// feedInternal runs x through every stage in order, returning whether the
// final stage actually emitted this tick (false when any stage's
// subsample phase was not due), distinct from an emitted NaN during
// warm-up.
//
// Only stage 0 ever sees the raw external value, so only stage 0's
// quantile.Filter.Insert enforces spec.md §6/§7's "NaN inputs surface as
// InvalidInput" contract. A NaN produced by an earlier stage (still
// filling its own window) is a pass-through sentinel, not new data: for
// stage index i > 0, feedInternal forwards it straight to the next stage
// without calling feed, so it is never inserted into that stage's filter
// and never charged against its subsample phase — a downstream stage's
// window only ever fills on real samples (DESIGN.md decision #4).
func (p *Pipeline) feedInternal(x float64) (value float64, emitted bool, err error) {
	val := x
	for i, s := range p.stages {
		if i > 0 && math.IsNaN(val) {
			if p.onEmit != nil {
				p.onEmit(EmitEvent{StageIndex: i, Value: val})
			}
			continue
		}
		v, ok, err := s.feed(val)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, nil
		}
		val = v
		if p.onEmit != nil {
			p.onEmit(EmitEvent{StageIndex: i, Value: v})
		}
	}
	return val, true, nil
}

// FeedScalar ingests a single sample through the pipeline and returns the
// final stage's output, or NaN if the final stage did not emit this tick
// (subsampled away somewhere in the chain) or emitted NaN while still
// filling, per spec.md §6.
func (p *Pipeline) FeedScalar(x float64) (float64, error) {
	v, emitted, err := p.feedInternal(x)
	if err != nil {
		return 0, err
	}
	if !emitted {
		return math.NaN(), nil
	}
	return v, nil
}

// FeedSlice ingests xs in order and returns only the ticks on which the
// final stage actually emitted — its length is
// floor(len(xs) / product-of-subsample-rates) in steady state, with
// leading NaNs while stages are still filling, per spec.md §4.4.
func (p *Pipeline) FeedSlice(xs []float64) ([]float64, error) {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		v, emitted, err := p.feedInternal(x)
		if err != nil {
			return nil, err
		}
		if emitted {
			out = append(out, v)
		}
	}
	return out, nil
}
