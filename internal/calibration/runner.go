package calibration

import (
	"context"
	"time"

	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
)

// calibrationRunner encapsulates the trial run logic for calibration.
type calibrationRunner struct {
	ctx        context.Context
	perTrial   time.Duration
	repeats    int
	multiplier strassen.Multiplier
	a, b       *matrix.Matrix
}

// newCalibrationRunner creates a runner that times m on the operands a and b.
// Each trial gets a share of timeout, and at least two seconds.
func newCalibrationRunner(ctx context.Context, timeout time.Duration, m strassen.Multiplier, a, b *matrix.Matrix, repeats int) *calibrationRunner {
	perTrial := timeout / 6
	if perTrial < 2*time.Second {
		perTrial = 2 * time.Second
	}
	if repeats < 1 {
		repeats = 1
	}
	return &calibrationRunner{ctx: ctx, perTrial: perTrial, repeats: repeats, multiplier: m, a: a, b: b}
}

// runTrial multiplies the operands with the given leaf size and returns the
// best of the configured repeats.
func (r *calibrationRunner) runTrial(leafSize int) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()

	best := time.Duration(1<<63 - 1)
	for i := 0; i < r.repeats; i++ {
		start := time.Now()
		if _, err := r.multiplier.Multiply(ctx, nil, 0, r.a, r.b, strassen.Options{LeafSize: leafSize}); err != nil {
			return 0, err
		}
		if d := time.Since(start); d < best {
			best = d
		}
	}
	return best, nil
}

// findBestLeafSize times every candidate and returns the fastest one, its
// duration and the per-candidate results. If every trial fails, the default
// leaf size is returned with the maximal duration.
func (r *calibrationRunner) findBestLeafSize(candidates []int, defaultLeaf int, onTrial func(done int)) (leaf int, duration time.Duration, results []calibrationResult) {
	best := defaultLeaf
	bestDur := time.Duration(1<<63 - 1)
	results = make([]calibrationResult, 0, len(candidates))

	for i, cand := range candidates {
		if r.ctx.Err() != nil {
			break
		}
		dur, err := r.runTrial(cand)
		results = append(results, calibrationResult{LeafSize: cand, Duration: dur, Err: err})
		if onTrial != nil {
			onTrial(i + 1)
		}
		if err != nil {
			continue
		}
		if dur < bestDur {
			bestDur, best = dur, cand
		}
	}
	return best, bestDur, results
}
