package rq

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rolling-quantiles/rq/internal/reference"
)

// Scenario 5 from spec.md §8: a single high-pass stage, w=71, over a
// length-1000 input. For i >= 71, output[i] == input[i-35] -
// reference_median(input[i-70..i]).
func TestHighPassMatchesDelayedInputMinusMedian(t *testing.T) {
	const window = 71
	const length = 1000
	rng := rand.New(rand.NewSource(7))
	xs := make([]float64, length)
	for i := range xs {
		xs[i] = rng.NormFloat64()
	}

	stage, err := HighPass(window).Build()
	assert.NoError(t, err)
	pipeline, err := NewPipeline(stage)
	assert.NoError(t, err)

	got, err := pipeline.FeedSlice(xs)
	assert.NoError(t, err)
	assert.Len(t, got, length)

	for i := window - 1; i < length; i++ {
		wantMedian := reference.Median(xs[i-window+1 : i+1])
		want := xs[i-window/2] - wantMedian
		assert.InDelta(t, want, got[i], 1e-9, "mismatch at index %d", i)
	}
	for i := 0; i < window-1; i++ {
		assert.True(t, math.IsNaN(got[i]), "expected NaN at index %d", i)
	}
}

// Scenario 6 from spec.md §8: LowPass(w=100, s=2) feeding HighPass(w=10,
// s=1) over a length-1000 input emits 500 values, each the high-pass of
// the subsampled low-pass stream.
func TestTwoStagePipelineEmissionCount(t *testing.T) {
	const length = 1000
	rng := rand.New(rand.NewSource(11))
	xs := make([]float64, length)
	for i := range xs {
		xs[i] = rng.NormFloat64()
	}

	low, err := LowPass(100).WithSubsampleRate(2).Build()
	assert.NoError(t, err)
	high, err := HighPass(10).Build()
	assert.NoError(t, err)
	pipeline, err := NewPipeline(low, high)
	assert.NoError(t, err)

	got, err := pipeline.FeedSlice(xs)
	assert.NoError(t, err)
	assert.Len(t, got, 500)

	// Cross-check against two independently driven stages: the low-pass
	// output stream, fed through a standalone high-pass stage, must equal
	// the pipeline's emissions exactly. The low-pass warm-up NaNs pass
	// through the pipeline unchanged; a standalone stage rejects NaN at
	// ingest, so only the samples after them are fed to it.
	lowOnly, err := LowPass(100).WithSubsampleRate(2).Build()
	assert.NoError(t, err)
	lowPipeline, err := NewPipeline(lowOnly)
	assert.NoError(t, err)
	lowOut, err := lowPipeline.FeedSlice(xs)
	assert.NoError(t, err)
	assert.Len(t, lowOut, 500)

	warmup := 0
	for warmup < len(lowOut) && math.IsNaN(lowOut[warmup]) {
		warmup++
	}
	highOnly, err := HighPass(10).Build()
	assert.NoError(t, err)
	highPipeline, err := NewPipeline(highOnly)
	assert.NoError(t, err)
	highOut, err := highPipeline.FeedSlice(lowOut[warmup:])
	assert.NoError(t, err)
	want := append(append([]float64{}, lowOut[:warmup]...), highOut...)

	assert.Equal(t, len(want), len(got))
	for i := range want {
		assertNaNOrEqual(t, want[i], got[i])
	}
}

func assertNaNOrEqual(t *testing.T, expected, actual float64) {
	t.Helper()
	if math.IsNaN(expected) {
		assert.True(t, math.IsNaN(actual))
		return
	}
	assert.Equal(t, expected, actual)
}

func TestNewPipelineRequiresAtLeastOneStage(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOnEmitFiresPerStage(t *testing.T) {
	low, err := LowPass(3).WithPortion(1).Build()
	assert.NoError(t, err)
	high, err := HighPass(3).WithPortion(1).Build()
	assert.NoError(t, err)
	pipeline, err := NewPipeline(low, high)
	assert.NoError(t, err)

	var events []EmitEvent
	pipeline.OnEmit(func(e EmitEvent) { events = append(events, e) })

	for _, x := range []float64{1, 2, 3, 4, 5, 6} {
		_, err := pipeline.FeedScalar(x)
		assert.NoError(t, err)
	}

	assert.NotEmpty(t, events)
	for _, e := range events {
		assert.True(t, e.StageIndex == 0 || e.StageIndex == 1)
	}
}

func TestMedianFilterConvenienceConstructor(t *testing.T) {
	pipeline, err := MedianFilter(5)
	assert.NoError(t, err)

	got, err := pipeline.FeedSlice([]float64{5, 1, 4, 2, 3})
	assert.NoError(t, err)
	want := reference.Median([]float64{5, 1, 4, 2, 3})
	assert.Equal(t, want, got[len(got)-1])
}

func TestPipelineLag(t *testing.T) {
	low, err := LowPass(100).WithSubsampleRate(2).Build()
	assert.NoError(t, err)
	high, err := HighPass(10).Build()
	assert.NoError(t, err)
	pipeline, err := NewPipeline(low, high)
	assert.NoError(t, err)

	// low: floor(100/2) = 50, rateProduct becomes 2 afterward.
	// high: rateProduct(2) * floor(10/2)=5 -> 10. Total lag 60.
	assert.Equal(t, 60, pipeline.Lag())
}
