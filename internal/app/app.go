package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/agbru/strassen/internal/benchmark"
	"github.com/agbru/strassen/internal/calibration"
	"github.com/agbru/strassen/internal/cli"
	"github.com/agbru/strassen/internal/config"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/orchestration"
	"github.com/agbru/strassen/internal/server"
	"github.com/agbru/strassen/internal/strassen"
	"github.com/agbru/strassen/internal/ui"
)

// Application represents the strassen application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (comparison, benchmark, calibration,
// server, REPL).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the multipliers.
	Factory strassen.MultiplierFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
	// ProgramName is used in generated completion scripts.
	ProgramName string
}

// New creates a new Application instance by parsing command-line arguments.
// A leaf size left at its default is replaced by the cached calibration when
// one exists, or by a hardware estimate otherwise.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := strassen.GlobalFactory()
	availableAlgos := factory.List()

	programName := "strassen"
	var cmdArgs []string
	if len(args) > 0 {
		programName = filepath.Base(args[0])
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, availableAlgos)
	if err != nil {
		return nil, err
	}

	if cfg.LeafSize == config.DefaultLeafSize {
		if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
			cfg = cfgWithProfile
		} else {
			cfg = applyAdaptiveLeafSize(cfg)
		}
	}

	return &Application{
		Config:      cfg,
		Factory:     factory,
		ErrWriter:   errWriter,
		ProgramName: programName,
	}, nil
}

// applyAdaptiveLeafSize replaces the default leaf size by a hardware
// estimate that cfg.N can still be halved down to.
func applyAdaptiveLeafSize(cfg config.AppConfig) config.AppConfig {
	if cfg.Bench || cfg.ServerMode {
		// No single size to fit: sizes come from the sweep or the requests.
		return cfg
	}
	cfg.LeafSize = calibration.FitLeafSize(cfg.N, calibration.EstimateOptimalLeafSize())
	return cfg
}

// Run executes the application based on the configured mode.
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.ServerMode:
		return a.runServer()
	case a.Config.Interactive:
		return a.runREPL()
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	case a.Config.Bench:
		return a.runBenchmark(ctx, out)
	}

	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)
	return a.runMultiply(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	availableAlgos := a.Factory.List()
	var scratch config.AppConfig
	fs := config.NewFlagSet(a.ProgramName, &scratch, availableAlgos)
	if err := cli.GenerateCompletion(out, a.Config.Completion, fs, availableAlgos); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer starts the HTTP server mode.
func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive REPL mode.
func (a *Application) runREPL() int {
	repl := cli.NewREPL(a.Factory.GetAll(), cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Timeout:     a.Config.Timeout,
		LeafSize:    a.Config.LeafSize,
		Seed:        a.Config.Seed,
		Tolerance:   a.Config.Tolerance,
	})
	repl.Start()
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, cancel := SetupSignals(ctx)
	defer cancel()
	return calibration.RunCalibration(ctx, a.Config, out, a.Factory.GetAll())
}

// runBenchmark runs the size sweep on the selected multipliers.
func (a *Application) runBenchmark(ctx context.Context, out io.Writer) int {
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()
	return benchmark.RunBenchmarks(ctx, a.Config, cli.GetMultipliersToRun(a.Config, a.Factory), out)
}

// runAutoCalibrationIfEnabled runs auto-calibration if enabled in the configuration.
// Returns the potentially updated configuration with the calibrated leaf size.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if !a.Config.AutoCalibrate {
		return a.Config
	}
	calibrationOut := out
	if a.Config.JSONOutput || a.Config.Quiet {
		calibrationOut = io.Discard
	}
	if updated, ok := calibration.AutoCalibrate(ctx, a.Config, calibrationOut, a.Factory.GetAll()); ok {
		return updated
	}
	return a.Config
}

// runMultiply generates the operands, runs the selected multipliers
// concurrently and reports the comparison.
func (a *Application) runMultiply(ctx context.Context, out io.Writer) int {
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()

	multipliers := cli.GetMultipliersToRun(a.Config, a.Factory)
	if len(multipliers) == 0 {
		fmt.Fprintf(a.ErrWriter, "No multiplier registered for '%s'.\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	lhs, rhs, err := orchestration.GenerateOperands(a.Config)
	if err != nil {
		return apperrors.HandleMultiplicationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(multipliers, out)
		if a.Config.Verbose {
			fmt.Fprintf(out, "\n--- Operand A ---\n")
			cli.FormatMatrix(out, lhs, cli.PreviewLimit)
			fmt.Fprintf(out, "\n--- Operand B ---\n")
			cli.FormatMatrix(out, rhs, cli.PreviewLimit)
		}
	}

	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}
	results := orchestration.ExecuteMultiplications(ctx, multipliers, lhs, rhs, a.Config, progressOut)

	if a.Config.JSONOutput {
		return printJSONResults(results, a.Config, out)
	}
	if a.Config.Quiet {
		return a.analyzeQuiet(results, out)
	}
	return orchestration.AnalyzeComparisonResults(results, a.Config, out)
}

// analyzeQuiet runs the comparison silently and prints one line for the
// fastest product.
func (a *Application) analyzeQuiet(results []orchestration.MultiplicationResult, out io.Writer) int {
	exitCode := orchestration.AnalyzeComparisonResults(results, a.Config, io.Discard)
	best := findBestResult(results)
	if best == nil {
		return apperrors.HandleMultiplicationError(firstError(results), 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	if exitCode == apperrors.ExitErrorMismatch {
		fmt.Fprintln(a.ErrWriter, "Products differ beyond the tolerance.")
	}
	fmt.Fprintln(out, cli.FormatQuietResult(best.Result, best.Duration))
	return exitCode
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func findBestResult(results []orchestration.MultiplicationResult) *orchestration.MultiplicationResult {
	var bestResult *orchestration.MultiplicationResult
	for i := range results {
		if results[i].Err == nil {
			if bestResult == nil || results[i].Duration < bestResult.Duration {
				bestResult = &results[i]
			}
		}
	}
	return bestResult
}

func firstError(results []orchestration.MultiplicationResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

// jsonResult represents a single multiplication result in JSON format.
type jsonResult struct {
	Algorithm string   `json:"algorithm"`
	Duration  string   `json:"duration"`
	Gflops    float64  `json:"gflops,omitempty"`
	MaxDiff   *float64 `json:"max_diff,omitempty"`
	Trace     *float64 `json:"trace,omitempty"`
	Sum       *float64 `json:"sum,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// jsonReport is the document printed by -json.
type jsonReport struct {
	Size      int          `json:"size"`
	LeafSize  int          `json:"leaf_size"`
	Seed      int64        `json:"seed"`
	Tolerance float64      `json:"tolerance"`
	Agree     bool         `json:"agree"`
	Results   []jsonResult `json:"results"`
}

// printJSONResults measures every product against the fastest one and
// prints the report as JSON. The exit code follows the comparison: a
// mismatch beyond the tolerance or a run where every multiplier failed is
// not a success.
func printJSONResults(results []orchestration.MultiplicationResult, cfg config.AppConfig, out io.Writer) int {
	report := jsonReport{
		Size:      cfg.N,
		LeafSize:  cfg.LeafSize,
		Seed:      cfg.Seed,
		Tolerance: cfg.Tolerance,
		Agree:     true,
		Results:   make([]jsonResult, len(results)),
	}

	best := findBestResult(results)
	var bound float64
	if best != nil {
		bound = orchestration.Tolerance(best.Result, cfg.Tolerance)
	}

	for i, res := range results {
		jr := jsonResult{
			Algorithm: res.Name,
			Duration:  res.Duration.String(),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			trace, sum := matrix.Trace(res.Result), matrix.Sum(res.Result)
			jr.Trace, jr.Sum = &trace, &sum
			if res.Duration > 0 {
				jr.Gflops = cli.Gflops(cfg.N, res.Duration)
			}
			if diff, err := matrix.MaxAbsDiff(best.Result, res.Result); err != nil {
				jr.Error = err.Error()
				report.Agree = false
			} else {
				jr.MaxDiff = &diff
				if diff > bound {
					report.Agree = false
				}
			}
		}
		report.Results[i] = jr
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return apperrors.ExitErrorGeneric
	}

	switch {
	case best == nil:
		return apperrors.ExitCode(firstError(results))
	case !report.Agree:
		return apperrors.ExitErrorMismatch
	}
	return apperrors.ExitSuccess
}
