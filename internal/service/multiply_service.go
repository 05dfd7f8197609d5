package service

//go:generate mockgen -source=multiply_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agbru/strassen/internal/config"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
)

var (
	// ErrMaxSizeExceeded is returned when the matrix size exceeds the configured maximum.
	ErrMaxSizeExceeded = errors.New("maximum matrix size exceeded")

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strassen_product_cache_lookups_total",
		Help: "Product cache lookups by result (hit or miss)",
	}, []string{"result"})
)

// Request describes one multiplication handled by the service.
type Request struct {
	// Algorithm is the registered multiplier name. Empty selects "parallel".
	Algorithm string
	// Size is the dimension of both operands.
	Size int
	// A and B are the operands, row-major, Size*Size elements each.
	A, B []float64
	// LeafSize overrides the configured recursion threshold when positive.
	LeafSize int
}

// Result is the outcome of a multiplication.
type Result struct {
	Algorithm string
	LeafSize  int
	// C is the product, row-major. It is owned by the caller.
	C        []float64
	Duration time.Duration
	Cached   bool
}

// Service defines the interface for multiplication services.
// This abstraction enables dependency injection and easier testing/mocking.
type Service interface {
	// Multiply validates the request, multiplies the operands with the
	// requested algorithm and returns the product.
	//
	// Parameters:
	//   - ctx: The context for cancellation.
	//   - req: The operands and options.
	//
	// Returns:
	//   - Result: The product and its metadata.
	//   - error: A ValidationError, ConfigError or ErrMaxSizeExceeded for bad
	//     input, or the multiplier's error.
	Multiply(ctx context.Context, req Request) (Result, error)
}

// MultiplyService centralizes validation, algorithm retrieval, execution
// options and result caching. Implements the Service interface.
type MultiplyService struct {
	factory strassen.MultiplierFactory
	config  config.AppConfig
	maxSize int
	cache   *lru.Cache[uint64, []float64]
}

// Ensure MultiplyService implements Service interface.
var _ Service = (*MultiplyService)(nil)

// NewMultiplyService creates a new instance of MultiplyService.
//
// Parameters:
//   - factory: The factory to retrieve multipliers from.
//   - cfg: The application configuration (default leaf size).
//   - maxSize: The maximum allowed matrix size (0 for no limit).
//   - cacheSize: The number of products kept in the LRU cache (0 disables it).
func NewMultiplyService(factory strassen.MultiplierFactory, cfg config.AppConfig, maxSize, cacheSize int) *MultiplyService {
	s := &MultiplyService{
		factory: factory,
		config:  cfg,
		maxSize: maxSize,
	}
	if cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		s.cache, _ = lru.New[uint64, []float64](cacheSize)
	}
	return s
}

// Multiply implements Service.
func (s *MultiplyService) Multiply(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	algo, leaf, err := s.validate(req)
	if err != nil {
		return Result{}, err
	}

	m, err := s.factory.Get(algo)
	if err != nil {
		return Result{}, apperrors.NewValidationError("algorithm", err.Error(), req.Algorithm)
	}

	key := cacheKey(algo, leaf, req.Size, req.A, req.B)
	if s.cache != nil {
		if c, ok := s.cache.Get(key); ok {
			cacheLookups.WithLabelValues("hit").Inc()
			return Result{Algorithm: algo, LeafSize: leaf, C: clone(c), Duration: time.Since(start), Cached: true}, nil
		}
		cacheLookups.WithLabelValues("miss").Inc()
	}

	a, err := matrix.Wrap(req.A, req.Size, req.Size)
	if err != nil {
		return Result{}, apperrors.NewValidationError("a", err.Error(), nil)
	}
	b, err := matrix.Wrap(req.B, req.Size, req.Size)
	if err != nil {
		return Result{}, apperrors.NewValidationError("b", err.Error(), nil)
	}

	// Progress is not reported for synchronous service usage.
	product, err := m.Multiply(ctx, nil, 0, a, b, strassen.Options{LeafSize: leaf})
	if err != nil {
		return Result{}, apperrors.MultiplicationError{Algorithm: m.Name(), Size: req.Size, Cause: err}
	}

	c := product.Values()
	if s.cache != nil {
		s.cache.Add(key, clone(c))
	}
	return Result{Algorithm: algo, LeafSize: leaf, C: c, Duration: time.Since(start)}, nil
}

// validate checks the request and resolves the algorithm and leaf size.
func (s *MultiplyService) validate(req Request) (algo string, leaf int, err error) {
	if req.Size <= 0 {
		return "", 0, apperrors.NewValidationError("size", "must be positive", req.Size)
	}
	if s.maxSize > 0 && req.Size > s.maxSize {
		return "", 0, fmt.Errorf("%w: %d > %d", ErrMaxSizeExceeded, req.Size, s.maxSize)
	}
	if req.Size > math.MaxInt/req.Size {
		return "", 0, apperrors.NewValidationError("size", "too large for the operand buffers", req.Size)
	}
	want := req.Size * req.Size
	if len(req.A) != want {
		return "", 0, apperrors.NewValidationError("a", fmt.Sprintf("expected %d elements, got %d", want, len(req.A)), nil)
	}
	if len(req.B) != want {
		return "", 0, apperrors.NewValidationError("b", fmt.Sprintf("expected %d elements, got %d", want, len(req.B)), nil)
	}

	leaf = req.LeafSize
	switch {
	case leaf < 0:
		return "", 0, apperrors.NewValidationError("leaf_size", "must not be negative", leaf)
	case leaf == 0:
		leaf = s.config.LeafSize
		if leaf <= 0 {
			leaf = strassen.DefaultLeafSize
		}
	}
	if err := strassen.CheckSize(req.Size, leaf); err != nil {
		return "", 0, err
	}

	algo = strings.ToLower(strings.TrimSpace(req.Algorithm))
	if algo == "" {
		algo = strassen.AlgoParallel
	}
	return algo, leaf, nil
}

// cacheKey hashes everything that determines a product.
func cacheKey(algo string, leaf, size int, a, b []float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	_, _ = d.WriteString(algo)
	_, _ = d.Write([]byte{0})
	binary.LittleEndian.PutUint64(buf[:], uint64(leaf))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(size))
	_, _ = d.Write(buf[:])
	for _, operand := range [][]float64{a, b} {
		for _, v := range operand {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}

func clone(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
