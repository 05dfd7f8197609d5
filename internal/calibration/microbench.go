package calibration

import (
	"context"
	"math/rand"
	"time"

	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
)

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Configuration
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MicroBenchIterations is the number of timed runs per test; the best is kept.
	MicroBenchIterations = 3

	// MicroBenchTimeout is the maximum time for the entire micro-benchmark suite.
	MicroBenchTimeout = 250 * time.Millisecond
)

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Types
// ─────────────────────────────────────────────────────────────────────────────

// MicroBenchmark estimates the leaf size by comparing, for each candidate L,
// a direct multiplication of size 2L with a single Strassen step that
// multiplies seven L-sized blocks directly.
type MicroBenchmark struct {
	// LeafSizes are the candidates (default: GenerateQuickLeafSizes()).
	LeafSizes []int
	// Iterations is the number of runs per test (default: MicroBenchIterations).
	Iterations int
	// Timeout is the maximum duration for the entire benchmark.
	Timeout time.Duration
}

// LeafResults contains the leaf size estimated by the micro-benchmark.
type LeafResults struct {
	// LeafSize is the estimated optimal leaf size.
	LeafSize int
	// Confidence is a score from 0-1 indicating result reliability.
	Confidence float64
	// Duration is how long the micro-benchmark took.
	Duration time.Duration
}

// stepResult holds the timings of one candidate.
type stepResult struct {
	leafSize int
	direct   time.Duration
	step     time.Duration
}

func (r stepResult) stepWins() bool { return r.step < r.direct }

// NewMicroBenchmark creates a new MicroBenchmark with default settings.
func NewMicroBenchmark() *MicroBenchmark {
	return &MicroBenchmark{
		LeafSizes:  GenerateQuickLeafSizes(),
		Iterations: MicroBenchIterations,
		Timeout:    MicroBenchTimeout,
	}
}

// RunQuick performs the micro-benchmarks and analyses them. Candidates that
// do not finish before the timeout are left out of the analysis.
func (mb *MicroBenchmark) RunQuick(ctx context.Context) (LeafResults, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, mb.Timeout)
	defer cancel()

	results := mb.runTests(ctx)

	lr := mb.analyzeResults(results)
	lr.Duration = time.Since(start)
	return lr, nil
}

func (mb *MicroBenchmark) runTests(ctx context.Context) []stepResult {
	rng := rand.New(rand.NewSource(1))
	var results []stepResult
	for _, leaf := range mb.LeafSizes {
		if ctx.Err() != nil {
			break
		}
		r, err := mb.runSingleTest(ctx, leaf, rng)
		if err != nil {
			break
		}
		results = append(results, r)
	}
	return results
}

func (mb *MicroBenchmark) runSingleTest(ctx context.Context, leaf int, rng *rand.Rand) (stepResult, error) {
	a, err := matrix.Random(2*leaf, rng)
	if err != nil {
		return stepResult{}, err
	}
	b, err := matrix.Random(2*leaf, rng)
	if err != nil {
		return stepResult{}, err
	}
	engine, err := strassen.NewSequentialEngine(leaf)
	if err != nil {
		return stepResult{}, err
	}

	iterations := mb.Iterations
	if iterations < 1 {
		iterations = 1
	}
	res := stepResult{leafSize: leaf, direct: time.Duration(1<<63 - 1), step: time.Duration(1<<63 - 1)}
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if _, err := matrix.MultiplyDirect(a, b); err != nil {
			return stepResult{}, err
		}
		res.direct = min(res.direct, time.Since(start))

		start = time.Now()
		if _, err := engine.Multiply(ctx, a, b); err != nil {
			return stepResult{}, err
		}
		res.step = min(res.step, time.Since(start))
	}
	return res, nil
}

// analyzeResults picks the smallest candidate at which one Strassen step
// already beats direct multiplication. Confidence grows when such a
// crossover exists and when every larger candidate agrees with it.
func (mb *MicroBenchmark) analyzeResults(results []stepResult) LeafResults {
	lr := LeafResults{LeafSize: strassen.DefaultLeafSize}
	if len(results) == 0 {
		return lr
	}

	crossover := -1
	for i, r := range results {
		if r.stepWins() {
			crossover = i
			break
		}
	}
	if crossover < 0 {
		// Direct multiplication won everywhere: recurse as little as possible.
		lr.LeafSize = results[len(results)-1].leafSize
		lr.Confidence = 0.4
		return lr
	}

	lr.LeafSize = results[crossover].leafSize
	lr.Confidence = 0.75
	consistent := true
	for _, r := range results[crossover:] {
		if !r.stepWins() {
			consistent = false
			break
		}
	}
	if consistent && len(results) == len(mb.LeafSizes) {
		lr.Confidence = 1.0
	}
	return lr
}

// QuickCalibrate performs a fast calibration using micro-benchmarks.
func QuickCalibrate(ctx context.Context) (LeafResults, error) {
	return NewMicroBenchmark().RunQuick(ctx)
}

// QuickCalibrateWithDefault returns the estimated leaf size, or defaultLeaf
// when the estimate is unreliable.
func QuickCalibrateWithDefault(ctx context.Context, defaultLeaf int) int {
	results, err := QuickCalibrate(ctx)
	if err != nil || results.Confidence < 0.5 {
		return defaultLeaf
	}
	return results.LeafSize
}
