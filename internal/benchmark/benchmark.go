// Package benchmark sweeps matrix sizes through a multiplier and reports the
// throughput of the best timed run at each size.
package benchmark

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agbru/strassen/internal/cli"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
)

// Default sweep bounds of the harness.
const (
	DefaultFirst   = 4
	DefaultLast    = 4096
	DefaultRepeats = 2
)

// Config describes one benchmark sweep.
type Config struct {
	// First is the first size. Sizes double until Last is exceeded.
	First int
	// Last is the largest size of the sweep.
	Last int
	// Repeats is the number of timed runs per size; the fastest is kept.
	Repeats int
	// Verify compares every product with the naive reference.
	Verify bool
	// Seed seeds the operand generator.
	Seed int64
	// Options is passed to every multiplication.
	Options strassen.Options
}

// DefaultConfig returns the sweep of the original driver: 4 to 4096,
// two repeats, verified.
func DefaultConfig() Config {
	return Config{First: DefaultFirst, Last: DefaultLast, Repeats: DefaultRepeats, Verify: true, Seed: 1}
}

// Result is the measurement of one size.
type Result struct {
	Algorithm string
	Size      int
	Best      time.Duration
	Gflops    float64
	// Diff is the largest absolute difference with the naive reference.
	// It is only meaningful when Verified is true.
	Diff      float64
	// Scale is max(1, max|reference|), the unit of the relative tolerance.
	Scale     float64
	Verified  bool
}

// Exceeds reports whether a verified result differs from the reference by
// more than tolerance relative to Scale.
func (r Result) Exceeds(tolerance float64) bool {
	return r.Verified && r.Diff > tolerance*r.Scale
}

// Reporter receives each result as soon as its size is done.
type Reporter func(Result)

// Sizes returns the sweep sizes of cfg: First, 2*First, ... up to Last.
func Sizes(cfg Config) []int {
	var sizes []int
	for p := cfg.First; p > 0 && p <= cfg.Last; p *= 2 {
		sizes = append(sizes, p)
	}
	return sizes
}

func validate(cfg Config) error {
	if cfg.First <= 0 || cfg.First > cfg.Last {
		return apperrors.NewConfigError("invalid benchmark range: first %d, last %d", cfg.First, cfg.Last)
	}
	if cfg.Repeats <= 0 {
		return apperrors.NewConfigError("benchmark repeats must be positive, got %d", cfg.Repeats)
	}
	leaf := cfg.Options.LeafSize
	if leaf == 0 {
		leaf = strassen.DefaultLeafSize
	}
	return strassen.CheckSize(leaf, leaf)
}

// Run times m over every size of the sweep. Sizes that cannot be halved down
// to the leaf size are skipped with a warning. Operands are stored with a
// leading dimension equal to the size and go through the buffer entry point.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - m: The multiplier to measure.
//   - cfg: The sweep configuration.
//   - report: Optional callback invoked after each size.
//
// Returns:
//   - []Result: The results of the sizes measured so far.
//   - error: A ConfigError for an invalid sweep, or the first multiplication
//     or context error.
func Run(ctx context.Context, m strassen.Multiplier, cfg Config, report Reporter) ([]Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	leaf := cfg.Options.LeafSize
	if leaf == 0 {
		leaf = strassen.DefaultLeafSize
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var results []Result
	for _, p := range Sizes(cfg) {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if err := strassen.CheckSize(p, leaf); err != nil {
			log.Warn().Int("size", p).Int("leaf_size", leaf).Err(err).Msg("skipping benchmark size")
			continue
		}
		res, err := measure(ctx, m, cfg, p, rng)
		if err != nil {
			return results, apperrors.WrapError(err, "size %d", p)
		}
		log.Debug().Str("algorithm", res.Algorithm).Int("size", p).Dur("best", res.Best).
			Float64("gflops", res.Gflops).Msg("benchmark size done")
		results = append(results, res)
		if report != nil {
			report(res)
		}
	}
	return results, nil
}

func measure(ctx context.Context, m strassen.Multiplier, cfg Config, p int, rng *rand.Rand) (Result, error) {
	ma, err := matrix.Random(p, rng)
	if err != nil {
		return Result{}, err
	}
	mb, err := matrix.Random(p, rng)
	if err != nil {
		return Result{}, err
	}
	a, b := ma.Values(), mb.Values()
	c := make([]float64, p*p)

	best := time.Duration(1<<63 - 1)
	for r := 0; r < cfg.Repeats; r++ {
		start := time.Now()
		if err := strassen.MultiplyInto(ctx, m, a, p, b, p, c, p, p, cfg.Options); err != nil {
			return Result{}, err
		}
		if d := time.Since(start); d < best {
			best = d
		}
	}

	res := Result{Algorithm: m.Name(), Size: p, Best: best, Gflops: cli.Gflops(p, best)}
	if cfg.Verify {
		ref, err := matrix.MultiplyDirect(ma, mb)
		if err != nil {
			return Result{}, err
		}
		got, err := matrix.Wrap(c, p, p)
		if err != nil {
			return Result{}, err
		}
		if res.Diff, err = matrix.MaxAbsDiff(got, ref); err != nil {
			return Result{}, err
		}
		res.Scale = cli.RelativeBound(ref, 1)
		res.Verified = true
	}
	return res, nil
}
