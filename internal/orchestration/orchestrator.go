// Package orchestration runs several multipliers concurrently on the same
// operands and reconciles their products.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/strassen/internal/cli"
	"github.com/agbru/strassen/internal/config"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
	"github.com/agbru/strassen/internal/ui"
)

// MultiplicationResult is the outcome of one multiplier.
type MultiplicationResult struct {
	// Name is the display name of the multiplier.
	Name string
	// Result is the product, nil on error.
	Result *matrix.Matrix
	// Duration is the wall-clock time of the multiplication.
	Duration time.Duration
	// Err is the failure, if any.
	Err error
	// Diff is the largest absolute difference with the reference product,
	// filled in by AnalyzeComparisonResults.
	Diff float64
}

// ProgressBufferMultiplier sizes the progress channel per multiplier so a
// slow display does not hold the engines back.
const ProgressBufferMultiplier = 10

// GenerateOperands builds the two random cfg.N x cfg.N operands of a run
// from cfg.Seed. A is drawn before B from the same stream.
func GenerateOperands(cfg config.AppConfig) (a, b *matrix.Matrix, err error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if a, err = matrix.Random(cfg.N, rng); err != nil {
		return nil, nil, fmt.Errorf("operand A: %w", err)
	}
	if b, err = matrix.Random(cfg.N, rng); err != nil {
		return nil, nil, fmt.Errorf("operand B: %w", err)
	}
	return a, b, nil
}

// ExecuteMultiplications runs every multiplier concurrently on a and b,
// showing their aggregated progress on out. A failing multiplier does not
// cancel the others: its error is recorded in its result.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - multipliers: The algorithms to run.
//   - a, b: The operands, shared read-only by every multiplier.
//   - cfg: The application configuration (leaf size).
//   - out: Receives the progress display.
//
// Returns:
//   - []MultiplicationResult: One result per multiplier, in input order.
func ExecuteMultiplications(ctx context.Context, multipliers []strassen.Multiplier, a, b *matrix.Matrix, cfg config.AppConfig, out io.Writer) []MultiplicationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]MultiplicationResult, len(multipliers))
	progressChan := make(chan strassen.ProgressUpdate, len(multipliers)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(multipliers), out)

	opts := cfg.ToMultiplyOptions()
	for i, m := range multipliers {
		idx, multiplier := i, m
		g.Go(func() error {
			start := time.Now()
			res, err := multiplier.Multiply(ctx, progressChan, idx, a, b, opts)
			results[idx] = MultiplicationResult{
				Name: multiplier.Name(), Result: res, Duration: time.Since(start), Err: err,
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// Tolerance returns the absolute bound accepted between two products:
// relTolerance scaled by the largest magnitude of the reference, with a
// scale floor of one.
func Tolerance(reference *matrix.Matrix, relTolerance float64) float64 {
	return cli.RelativeBound(reference, relTolerance)
}

// AnalyzeComparisonResults sorts the results (successes first, fastest
// first), measures every product against the fastest one, prints a summary
// table and reports the reference product.
//
// Parameters:
//   - results: The results to analyze; sorted in place.
//   - cfg: The application configuration (tolerance and output options).
//   - out: Receives the report.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch when two products differ beyond
//     the tolerance, or the code of the first error when every multiplier
//     failed.
func AnalyzeComparisonResults(results []MultiplicationResult, cfg config.AppConfig, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var reference *MultiplicationResult
	var firstError error
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
			continue
		}
		if reference == nil {
			reference = &results[i]
		}
	}
	if reference == nil {
		printSummary(results, 0, out)
		fmt.Fprintf(out, "\nGlobal Status: Failure. No multiplier could complete the product.\n")
		return apperrors.HandleMultiplicationError(firstError, 0, out, cli.CLIColorProvider{})
	}

	bound := Tolerance(reference.Result, cfg.Tolerance)
	mismatch := false
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		diff, err := matrix.MaxAbsDiff(reference.Result, results[i].Result)
		if err != nil {
			results[i].Err = err
			mismatch = true
			continue
		}
		results[i].Diff = diff
		if diff > bound {
			mismatch = true
		}
	}
	printSummary(results, bound, out)

	if mismatch {
		fmt.Fprintf(out, "\nGlobal Status: %sCRITICAL ERROR!%s The products differ by more than %g.\n",
			ui.ColorRed(), ui.ColorReset(), bound)
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All products agree within %g.\n", bound)
	outputCfg := cli.OutputConfig{
		OutputFile: cfg.OutputFile,
		Verbose:    cfg.Verbose,
		Details:    cfg.Details,
	}
	if err := cli.DisplayResultWithConfig(out, reference.Result, reference.Duration, reference.Name, outputCfg); err != nil {
		fmt.Fprintf(out, "%sError saving product: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func printSummary(results []MultiplicationResult, bound float64, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	u, r := ui.ColorUnderline(), ui.ColorReset()
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sDuration%s\t%sMax diff%s\t%sStatus%s\n", u, r, u, r, u, r, u, r)

	for _, res := range results {
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		var diff, status string
		switch {
		case res.Err != nil:
			diff = "-"
			status = ui.Paint(ui.ColorRed(), fmt.Sprintf("❌ Failure (%v)", res.Err))
		case res.Diff > bound:
			diff = fmt.Sprintf("%.3g", res.Diff)
			status = ui.Paint(ui.ColorRed(), "❌ Mismatch")
		default:
			diff = fmt.Sprintf("%.3g", res.Diff)
			status = ui.Paint(ui.ColorGreen(), "✅ Success")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			ui.Paint(ui.ColorBlue(), res.Name), ui.Paint(ui.ColorYellow(), duration), diff, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}
}
