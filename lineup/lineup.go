/*
Package lineup runs independent Pipelines concurrently over the rows of a
2-D input, one row per Pipeline, per the `rq.LineUp` concept sketched
alongside the single-Pipeline API:

	rq.LineUp(rq.Pipeline) # possibly parallelized execution of parallel pipelines

Pipelines share no state and spec.md §6 places no ordering contract between
independent filter instances, so a LineUp is the host-side adapter that
exploits that: each row is fed to its own Pipeline on its own goroutine.
*/
package lineup

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rolling-quantiles/rq"
)

// LineUp fans a 2-D input out across a fixed set of Pipelines, one row per
// Pipeline, running them concurrently. It owns no filter state itself; it
// is purely an execution strategy over Pipelines the caller constructed.
//
// A LineUp is not safe for concurrent use from multiple goroutines calling
// Feed at once, but the Pipelines it drives never touch each other's
// memory, so a single Feed call parallelizes freely.
type LineUp struct {
	pipelines []*rq.Pipeline
}

// New builds a LineUp over the given Pipelines, in row order. At least one
// Pipeline is required.
func New(first *rq.Pipeline, rest ...*rq.Pipeline) (*LineUp, error) {
	if first == nil {
		return nil, fmt.Errorf("%w: lineup requires at least one pipeline", rq.ErrInvalidArgument)
	}
	return &LineUp{pipelines: append([]*rq.Pipeline{first}, rest...)}, nil
}

// Len returns the number of pipelines in the lineup.
func (l *LineUp) Len() int {
	return len(l.pipelines)
}

/*
Feed routes rows[i] to the i-th Pipeline's FeedSlice, running every row
concurrently, and returns the per-row outputs in row order. rows must have
exactly Len() entries, one per pipeline.

Feed always waits for every row's goroutine to finish, even after one of
them errors: Pipeline.FeedSlice takes no context and never checks for
cancellation mid-stream, so there is no way to interrupt a row already in
flight. If any row returns an error (a non-finite sample, per
quantile.Filter.Insert), Feed discards every row's output, including rows
that completed successfully, and returns that error — the same
wait-for-all, discard-on-error contract errgroup.Group gives a plain
group with no derived context.
*/
func (l *LineUp) Feed(rows [][]float64) ([][]float64, error) {
	if len(rows) != len(l.pipelines) {
		return nil, fmt.Errorf("%w: lineup has %d pipelines, got %d rows", rq.ErrInvalidArgument, len(l.pipelines), len(rows))
	}

	out := make([][]float64, len(rows))
	var group errgroup.Group
	for i := range rows {
		i := i
		group.Go(func() error {
			emitted, err := l.pipelines[i].FeedSlice(rows[i])
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			out[i] = emitted
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
