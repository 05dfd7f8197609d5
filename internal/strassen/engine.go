package strassen

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/parallel"
)

var (
	parallelDispatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strassen_parallel_dispatch_total",
		Help: "The total number of Strassen products dispatched to their own goroutine",
	})
	sequentialFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strassen_sequential_fallback_total",
		Help: "The number of root steps run sequentially because the dispatch budget was exhausted",
	})
)

// dispatchBudget bounds the goroutines in flight across all parallel
// engines of the process. Access is thread-safe via atomic operations.
var dispatchBudget atomic.Pointer[parallel.Budget]

func init() {
	dispatchBudget.Store(parallel.NewBudget(DefaultDispatchBudget()))
}

// SetDispatchBudget replaces the process-wide dispatch budget. A capacity
// below ProductCount makes every parallel engine run sequentially.
func SetDispatchBudget(capacity int64) {
	dispatchBudget.Store(parallel.NewBudget(capacity))
}

// GetDispatchBudget returns the capacity of the process-wide dispatch budget.
func GetDispatchBudget() int64 {
	return dispatchBudget.Load().Capacity()
}

// Engine multiplies square matrices with Strassen's algorithm.
//
// A sequential engine recurses in-process at every level. A parallel engine
// runs the seven products of the outermost step on their own goroutines and
// joins them before assembling the result; every deeper level is sequential.
// Both share the same decomposition and combination code, so they produce
// bit-identical results. An Engine holds no state between calls.
type Engine struct {
	leafSize int
	parallel bool
	reporter ProgressReporter

	// onDispatch, when set, observes every concurrent fan-out.
	onDispatch func(n int)
}

// NewSequentialEngine creates an engine that never spawns goroutines.
//
// Parameters:
//   - leafSize: The recursion threshold (MIN_SIZE).
//
// Returns:
//   - *Engine: The engine.
//   - error: A ConfigError if leafSize is invalid.
func NewSequentialEngine(leafSize int) (*Engine, error) {
	return newEngine(leafSize, false, nil)
}

// NewParallelEngine creates an engine whose outermost step fans out to
// seven goroutines.
func NewParallelEngine(leafSize int) (*Engine, error) {
	return newEngine(leafSize, true, nil)
}

func newEngine(leafSize int, inParallel bool, reporter ProgressReporter) (*Engine, error) {
	if leafSize < MinLeafSize {
		return nil, apperrors.NewConfigError("leaf size must be at least %d, got %d", MinLeafSize, leafSize)
	}
	if reporter == nil {
		reporter = noopReporter
	}
	return &Engine{leafSize: leafSize, parallel: inParallel, reporter: reporter}, nil
}

// LeafSize returns the recursion threshold of the engine.
func (e *Engine) LeafSize() int { return e.leafSize }

// Parallel reports whether the engine fans out at its outermost step.
func (e *Engine) Parallel() bool { return e.parallel }

// Multiply returns a * b.
//
// Parameters:
//   - ctx: Checked before each recursive step; cancellation aborts the call.
//   - a, b: Square operands of the same size.
//
// Returns:
//   - *matrix.Matrix: The product, a new owned matrix.
//   - error: A size mismatch, a ConfigError when the size cannot be halved
//     down to the leaf size, a context error, or a product failure.
func (e *Engine) Multiply(ctx context.Context, a, b *matrix.Matrix) (*matrix.Matrix, error) {
	if a.Size() != b.Size() {
		return nil, &matrix.SizeError{Op: "strassen", Left: a.Size(), Right: b.Size()}
	}
	return e.multiply(ctx, a, b, e.parallel, true)
}

// multiply performs one recursive step. isRoot allows this step to fan out;
// top marks the outermost call of a Multiply, whose products drive progress.
func (e *Engine) multiply(ctx context.Context, a, b *matrix.Matrix, isRoot, top bool) (*matrix.Matrix, error) {
	if a.Size() <= e.leafSize {
		return matrix.MultiplyDirect(a, b)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a11, a12, a21, a22, err := matrix.Quadrants(a, e.leafSize)
	if err != nil {
		return nil, subdivisionError(err, e.leafSize)
	}
	b11, b12, b21, b22, err := matrix.Quadrants(b, e.leafSize)
	if err != nil {
		return nil, subdivisionError(err, e.leafSize)
	}

	var ops combiner
	s1 := ops.do(matrix.Add, a11, a22)
	s2 := ops.do(matrix.Add, b11, b22)
	s3 := ops.do(matrix.Add, a21, a22)
	s4 := ops.do(matrix.Sub, b12, b22)
	s5 := ops.do(matrix.Sub, b21, b11)
	s6 := ops.do(matrix.Add, a11, a12)
	s7 := ops.do(matrix.Sub, a21, a11)
	s8 := ops.do(matrix.Add, b11, b12)
	s9 := ops.do(matrix.Sub, a12, a22)
	s10 := ops.do(matrix.Add, b21, b22)
	if ops.err != nil {
		return nil, ops.err
	}

	tasks := []multiplicationTask{
		{a: s1, b: s2},  // p1
		{a: s3, b: b11}, // p2
		{a: a11, b: s4}, // p3
		{a: a22, b: s5}, // p4
		{a: s6, b: b22}, // p5
		{a: s7, b: s8},  // p6
		{a: s9, b: s10}, // p7
	}
	var completed atomic.Int32
	for i := range tasks {
		tasks[i].ctx = ctx
		tasks[i].engine = e
		if top {
			tasks[i].onDone = func() {
				e.reporter(float64(completed.Add(1)) / (ProductCount + 1))
			}
		}
	}
	if err := e.runProducts(tasks, isRoot); err != nil {
		return nil, err
	}
	p1, p2, p3, p4 := tasks[0].result, tasks[1].result, tasks[2].result, tasks[3].result
	p5, p6, p7 := tasks[4].result, tasks[5].result, tasks[6].result

	c11, err := matrix.CombineC11(p1, p4, p5, p7)
	if err != nil {
		return nil, err
	}
	c12 := ops.do(matrix.Add, p3, p5)
	c21 := ops.do(matrix.Add, p2, p4)
	if ops.err != nil {
		return nil, ops.err
	}
	c22, err := matrix.CombineC22(p1, p2, p3, p6)
	if err != nil {
		return nil, err
	}
	return matrix.Merge(c11, c12, c21, c22)
}

// runProducts executes the seven products. Only a root step fans out, and
// only when the process-wide budget has room for all seven goroutines;
// otherwise the products run inline.
func (e *Engine) runProducts(tasks []multiplicationTask, isRoot bool) error {
	if !isRoot {
		return executeTasks(tasks, false)
	}

	n := int64(len(tasks))
	budget := dispatchBudget.Load()
	if !budget.TryAcquire(n) {
		sequentialFallbackTotal.Inc()
		log.Warn().
			Int64("requested", n).
			Int64("capacity", budget.Capacity()).
			Msg("dispatch budget exhausted, running products sequentially")
		return executeTasks(tasks, false)
	}
	defer budget.Release(n)

	parallelDispatchTotal.Add(float64(n))
	if e.onDispatch != nil {
		e.onDispatch(len(tasks))
	}
	return executeTasks(tasks, true)
}

// combiner applies element-wise operations and keeps the first error, so a
// sequence of them can be checked once.
type combiner struct {
	err error
}

func (c *combiner) do(op func(x, y *matrix.Matrix) (*matrix.Matrix, error), x, y *matrix.Matrix) *matrix.Matrix {
	if c.err != nil {
		return nil
	}
	r, err := op(x, y)
	c.err = err
	return r
}

// subdivisionError turns a failed quadrant extraction into the configuration
// error it reveals.
func subdivisionError(err error, leafSize int) error {
	var se *matrix.SubdivisionError
	if errors.As(err, &se) {
		return apperrors.NewConfigErrorWithCause(err,
			"matrix size %d cannot be halved down to leaf size %d: every dimension must be divisible by 2 down to the leaf size",
			se.Size, leafSize)
	}
	return err
}
