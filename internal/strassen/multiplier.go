// Package strassen multiplies square matrices with Strassen's algorithm.
// It exposes a Multiplier interface over interchangeable algorithms (the
// naive triple loop, the sequential Strassen engine and its one-level
// parallel variant) and a buffer entry point for callers holding flat,
// strided arrays.
package strassen

//go:generate mockgen -source=multiplier.go -destination=mocks/mock_multiplier.go -package=mocks

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agbru/strassen/internal/matrix"
)

var (
	multiplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strassen_multiplications_total",
			Help: "The total number of matrix multiplications processed",
		},
		[]string{"algorithm", "status"},
	)
	multiplicationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strassen_multiplication_duration_seconds",
			Help:    "The duration of matrix multiplications in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		},
		[]string{"algorithm"},
	)
)

// Multiplier is the public interface of a matrix multiplication algorithm.
// It is what the orchestration, benchmark and service layers work with.
type Multiplier interface {
	// Multiply returns a * b. It is safe for concurrent use and honors
	// cancellation through ctx. Progress updates are sent, without
	// blocking, to progressChan when it is not nil.
	//
	// Parameters:
	//   - ctx: The context for cancellation and deadlines.
	//   - progressChan: The channel receiving progress updates (may be nil).
	//   - index: Identifies this multiplier in progress updates.
	//   - a, b: Square operands of the same size.
	//   - opts: Configuration options.
	//
	// Returns:
	//   - *matrix.Matrix: The product.
	//   - error: An error if the multiplication failed.
	Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error)

	// Name returns the display name of the algorithm.
	Name() string
}

// coreMultiplier is the internal interface of a bare algorithm.
type coreMultiplier interface {
	MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error)
	Name() string
}

// MatrixMultiplier decorates a coreMultiplier with the cross-cutting
// concerns shared by every algorithm: operand validation, option defaults,
// progress fan-out, tracing, metrics and debug logging.
type MatrixMultiplier struct {
	core coreMultiplier
}

// NewMultiplier wraps core. It panics if core is nil.
func NewMultiplier(core coreMultiplier) Multiplier {
	if core == nil {
		panic("strassen: the `coreMultiplier` implementation cannot be nil")
	}
	return &MatrixMultiplier{core: core}
}

// Name returns the name of the wrapped algorithm.
func (m *MatrixMultiplier) Name() string {
	return m.core.Name()
}

// Multiply adapts progressChan into an observer and delegates to
// MultiplyWithObservers.
func (m *MatrixMultiplier) Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return m.MultiplyWithObservers(ctx, subject, index, a, b, opts)
}

// MultiplyWithObservers runs the multiplication, notifying every observer
// registered on subject. A nil subject disables progress reporting.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - subject: The progress subject (may be nil).
//   - index: Identifies this multiplier in progress updates.
//   - a, b: Square operands of the same size.
//   - opts: Configuration options; zero values take defaults.
//
// Returns:
//   - *matrix.Matrix: The product.
//   - error: An error if the multiplication failed.
func (m *MatrixMultiplier) MultiplyWithObservers(ctx context.Context, subject *ProgressSubject, index int, a, b *matrix.Matrix, opts Options) (result *matrix.Matrix, err error) {
	opts = normalizeOptions(opts)
	algoName := m.core.Name()

	ctx, span := otel.Tracer("strassen").Start(ctx, "Multiply")
	span.SetAttributes(
		attribute.String("algorithm", algoName),
		attribute.Int("size", a.Size()),
		attribute.Int("leaf_size", opts.LeafSize),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}
		multiplicationsTotal.WithLabelValues(algoName, status).Inc()
		multiplicationDuration.WithLabelValues(algoName).Observe(duration)

		log.Debug().
			Str("algo", algoName).
			Int("size", a.Size()).
			Int("leaf", opts.LeafSize).
			Float64("duration", duration).
			Str("status", status).
			Msg("multiplication completed")
	}()

	if a.Size() != b.Size() {
		return nil, &matrix.SizeError{Op: "multiply", Left: a.Size(), Right: b.Size()}
	}

	reporter := ProgressReporter(noopReporter)
	if subject != nil {
		reporter = subject.AsProgressReporter(index)
	}

	result, err = m.core.MultiplyCore(ctx, reporter, a, b, opts)
	if err == nil && result != nil {
		reporter(1.0)
	}
	return result, err
}
