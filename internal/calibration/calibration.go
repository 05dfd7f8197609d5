package calibration

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agbru/strassen/internal/cli"
	"github.com/agbru/strassen/internal/config"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
)

// CalibrationOptions configures the calibration process.
type CalibrationOptions struct {
	// ProfilePath is the path to save/load the calibration profile.
	// If empty, uses the default path.
	ProfilePath string
	// SaveProfile indicates whether to save the calibration results.
	SaveProfile bool
	// LoadProfile indicates whether to try loading an existing profile.
	LoadProfile bool
	// Candidates overrides the leaf sizes to try.
	Candidates []int
	// Repeats is the number of timed runs per candidate; the best is kept.
	Repeats int
}

// calibrationResult holds the result of a single leaf size trial.
type calibrationResult struct {
	LeafSize int
	Duration time.Duration
	Err      error
}

// calibrationSize returns the matrix size timed for cfg.
func calibrationSize(cfg config.AppConfig) int {
	if cfg.N > 0 {
		return cfg.N
	}
	return DefaultCalibrationSize
}

// calibrationOperands draws the two operands timed during calibration.
func calibrationOperands(size int, seed int64) (*matrix.Matrix, *matrix.Matrix, error) {
	rng := rand.New(rand.NewSource(seed))
	a, err := matrix.Random(size, rng)
	if err != nil {
		return nil, nil, err
	}
	b, err := matrix.Random(size, rng)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// RunCalibration times the parallel engine on a cfg.N matrix for every leaf
// size candidate, prints the results and saves the fastest one to the
// profile.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - cfg: The application configuration (size, seed, timeout, profile path).
//   - out: The io.Writer to which progress and results will be written.
//   - registry: The available multipliers; it must contain "parallel".
//
// Returns:
//   - int: The exit code (0 for success, non-zero for errors).
func RunCalibration(ctx context.Context, cfg config.AppConfig, out io.Writer, registry map[string]strassen.Multiplier) int {
	return RunCalibrationWithOptions(ctx, cfg, out, registry, CalibrationOptions{
		ProfilePath: cfg.CalibrationProfile,
		SaveProfile: true,
		LoadProfile: false, // Full calibration should run fresh
		Repeats:     2,
	})
}

// RunCalibrationWithOptions executes calibration with the specified options.
func RunCalibrationWithOptions(ctx context.Context, cfg config.AppConfig, out io.Writer, registry map[string]strassen.Multiplier, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the Optimal Leaf Size ---\n")
	profilePath := resolvePath(opts.ProfilePath)

	if opts.LoadProfile {
		if profile, loaded := LoadOrCreateProfile(profilePath); loaded {
			fmt.Fprintf(out, "%sLoaded existing calibration profile from %s%s\n",
				cli.ColorGreen(), profilePath, cli.ColorReset())
			fmt.Fprintf(out, "Profile: %s\n", profile.String())
			fmt.Fprintf(out, "\n%s✅ Using cached calibration: %s-leaf %d%s\n",
				cli.ColorGreen(), cli.ColorYellow(), profile.OptimalLeafSize, cli.ColorReset())
			return apperrors.ExitSuccess
		}
	}

	multiplier := registry[strassen.AlgoParallel]
	if multiplier == nil {
		fmt.Fprintf(out, "%sCritical error: the 'parallel' algorithm is required for calibration but was not found.%s\n", cli.ColorRed(), cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	size := calibrationSize(cfg)
	candidates := opts.Candidates
	if len(candidates) == 0 {
		candidates = GenerateLeafSizes()
	}
	candidates = FilterLeafSizes(size, candidates)
	if len(candidates) == 0 {
		return apperrors.HandleMultiplicationError(
			apperrors.NewConfigError("no leaf size candidate divides matrix size %d", size),
			0, out, cli.CLIColorProvider{})
	}
	fmt.Fprintf(out, "%sTiming %d x %d products on %d CPU cores, leaf sizes %v%s\n",
		cli.ColorCyan(), size, size, runtime.NumCPU(), candidates, cli.ColorReset())

	a, b, err := calibrationOperands(size, cfg.Seed)
	if err != nil {
		return apperrors.HandleMultiplicationError(err, 0, out, cli.CLIColorProvider{})
	}

	calibrationStart := time.Now()
	var wg sync.WaitGroup
	progressChan := make(chan strassen.ProgressUpdate, len(candidates))
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, 1, out)

	runner := newCalibrationRunner(ctx, cfg.Timeout, multiplier, a, b, opts.Repeats)
	bestLeaf, bestDuration, results := runner.findBestLeafSize(candidates, cfg.LeafSize, func(done int) {
		progressChan <- strassen.ProgressUpdate{MultiplierIndex: 0, Value: float64(done) / float64(len(candidates))}
	})
	close(progressChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", cli.ColorYellow(), cli.ColorReset())
		return apperrors.HandleMultiplicationError(err, time.Since(calibrationStart), out, cli.CLIColorProvider{})
	}
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(out, "%s❌ Leaf size %d failed (%v)%s\n", cli.ColorRed(), res.LeafSize, res.Err, cli.ColorReset())
		}
	}
	if bestDuration == time.Duration(1<<63-1) {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", cli.ColorRed(), cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	calibrationDuration := time.Since(calibrationStart)
	printCalibrationResults(out, results, bestLeaf)

	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine: %s-leaf %d%s\n",
		cli.ColorGreen(), cli.ColorYellow(), bestLeaf, cli.ColorReset())

	if opts.SaveProfile {
		profile := NewProfile()
		profile.OptimalLeafSize = bestLeaf
		profile.CalibrationSize = size
		profile.CalibrationTime = calibrationDuration.String()

		if err := profile.SaveProfile(profilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n",
				cli.ColorYellow(), err, cli.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n",
				cli.ColorGreen(), profilePath, cli.ColorReset())
		}
	}

	return apperrors.ExitSuccess
}

// AutoCalibrate picks a leaf size at startup. A valid cached profile is
// used when present; otherwise quick micro-benchmarks are tried, and a
// reduced full calibration runs when they are not conclusive.
//
// Parameters:
//   - parentCtx: The context used to manage the calibration timeout.
//   - cfg: The initial application configuration.
//   - out: The io.Writer for calibration messages.
//   - registry: The available multipliers.
//
// Returns:
//   - config.AppConfig: The configuration with the chosen leaf size.
//   - bool: True if a leaf size was chosen, false otherwise.
func AutoCalibrate(parentCtx context.Context, cfg config.AppConfig, out io.Writer, registry map[string]strassen.Multiplier) (updated config.AppConfig, ok bool) {
	return AutoCalibrateWithProfile(parentCtx, cfg, out, registry, cfg.CalibrationProfile)
}

// AutoCalibrateWithProfile runs auto-calibration with a specific profile path.
func AutoCalibrateWithProfile(parentCtx context.Context, cfg config.AppConfig, out io.Writer, registry map[string]strassen.Multiplier, profilePath string) (updated config.AppConfig, ok bool) {
	multiplier := registry[strassen.AlgoParallel]
	if multiplier == nil {
		return cfg, false
	}

	if updated, ok := LoadCachedCalibration(cfg, profilePath); ok {
		fmt.Fprintf(out, "%sUsing cached calibration%s: leaf size=%s%d%s\n",
			cli.ColorGreen(), cli.ColorReset(),
			cli.ColorYellow(), updated.LeafSize, cli.ColorReset())
		return updated, true
	}

	micro, err := QuickCalibrate(parentCtx)
	if err == nil && micro.Confidence >= 0.5 {
		updated = applyLeafSize(cfg, micro.LeafSize)
		fmt.Fprintf(out, "%sQuick calibration%s (%v): leaf size=%s%d%s (confidence: %.0f%%)\n",
			cli.ColorGreen(), cli.ColorReset(),
			micro.Duration.Round(time.Millisecond),
			cli.ColorYellow(), updated.LeafSize, cli.ColorReset(),
			micro.Confidence*100)
		saveCalibrationProfile(micro.LeafSize, 2*micro.LeafSize, profilePath, out)
		return updated, true
	}

	size := calibrationSize(cfg)
	candidates := FilterLeafSizes(size, GenerateQuickLeafSizes())
	if len(candidates) == 0 {
		return cfg, false
	}
	a, b, err := calibrationOperands(size, cfg.Seed)
	if err != nil {
		return cfg, false
	}
	runner := newCalibrationRunner(parentCtx, cfg.Timeout, multiplier, a, b, 1)
	best, bestDur, _ := runner.findBestLeafSize(candidates, cfg.LeafSize, nil)
	if bestDur == time.Duration(1<<63-1) {
		return cfg, false
	}

	updated = applyLeafSize(cfg, best)
	saveCalibrationProfile(best, size, profilePath, out)
	printCalibrationOutput(updated, out)
	return updated, true
}

// LoadCachedCalibration applies the leaf size of a valid cached profile to
// cfg. It returns false when no reusable profile exists.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (updated config.AppConfig, ok bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded {
		return cfg, false
	}
	return applyLeafSize(cfg, profile.OptimalLeafSize), true
}

// applyLeafSize sets cfg.LeafSize to leaf, lowered if necessary so that
// cfg.N can still be halved down to it.
func applyLeafSize(cfg config.AppConfig, leaf int) config.AppConfig {
	fitted := FitLeafSize(calibrationSize(cfg), ClampLeafSize(leaf))
	if fitted != leaf {
		log.Debug().Int("calibrated", leaf).Int("fitted", fitted).Int("size", cfg.N).Msg("leaf size adjusted to matrix size")
	}
	cfg.LeafSize = fitted
	return cfg
}

// saveCalibrationProfile records leaf as the calibrated leaf size. Failures
// are reported as warnings.
func saveCalibrationProfile(leaf, size int, profilePath string, out io.Writer) {
	profile := NewProfile()
	profile.OptimalLeafSize = leaf
	profile.CalibrationSize = size

	if err := profile.SaveProfile(profilePath); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n",
			cli.ColorYellow(), err, cli.ColorReset())
	}
}
