// Package config provides the configuration management for the strassen
// application. It defines the configuration structure, parses command-line
// arguments, applies environment overrides and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/strassen"
)

const (
	// EnvPrefix is the prefix for all environment variables read by the
	// application. They override defaults but never an explicit flag.
	EnvPrefix = "STRASSEN_"
)

// Default configuration values.
const (
	// DefaultN is the default matrix size for the comparison run.
	DefaultN = 256
	// DefaultLeafSize is the default recursion threshold.
	DefaultLeafSize = strassen.DefaultLeafSize
	// DefaultSeed seeds the random operands.
	DefaultSeed int64 = 1
	// DefaultTimeout is the default run timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultAlgo runs every registered multiplier.
	DefaultAlgo = "all"
	// DefaultBenchFirst is the first benchmark size.
	DefaultBenchFirst = 4
	// DefaultBenchLast is the last benchmark size.
	DefaultBenchLast = 1024
	// DefaultBenchRepeats is the number of timed runs per size; the best is kept.
	DefaultBenchRepeats = 2
	// DefaultMaxSize bounds the matrix size accepted by the HTTP API.
	DefaultMaxSize = 1024
	// DefaultCacheSize is the number of products kept by the service cache.
	DefaultCacheSize = 64
	// DefaultTolerance is the maximum relative difference accepted between
	// multipliers in the comparison run.
	DefaultTolerance = 1e-9
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N is the matrix size of the comparison run.
	N int
	// LeafSize is the size at or below which blocks are multiplied directly.
	LeafSize int
	// Seed seeds the random operand generator.
	Seed int64
	// Verbose prints the operands and the product.
	Verbose bool
	// Details prints performance details.
	Details bool
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Algo selects the multiplier ("all" or a registered name).
	Algo string
	// Calibrate runs the leaf-size calibration and exits.
	Calibrate bool
	// AutoCalibrate runs a quick calibration at startup to pick LeafSize.
	AutoCalibrate bool
	// CalibrationProfile is the path of the calibration profile.
	// If empty, ~/.strassen_calibration.json is used.
	CalibrationProfile string
	// JSONOutput prints results as JSON.
	JSONOutput bool
	// ServerMode starts the HTTP server.
	ServerMode bool
	// Port is the server listen port.
	Port string
	// NoColor disables colored output. NO_COLOR is also honored.
	NoColor bool
	// OutputFile, if set, receives the product matrix.
	OutputFile string
	// Quiet prints only the essential result.
	Quiet bool
	// Interactive starts the interactive session.
	Interactive bool
	// Completion, if set, prints the completion script for this shell
	// ("bash", "zsh" or "fish") and exits.
	Completion string

	// Bench runs the benchmark harness instead of the comparison run.
	Bench bool
	// BenchFirst is the first size of the benchmark sweep.
	BenchFirst int
	// BenchLast is the last size of the benchmark sweep.
	BenchLast int
	// BenchRepeats is the number of timed runs per size.
	BenchRepeats int
	// BenchVerify compares every benchmark product with the naive reference.
	BenchVerify bool
	// CSVFile, if set, receives the benchmark rows as CSV.
	CSVFile string

	// EnvFile is a dotenv file loaded before environment overrides.
	EnvFile string
	// MaxSize is the largest size accepted by the HTTP API.
	MaxSize int
	// CacheSize is the capacity of the service product cache; 0 disables it.
	CacheSize int
	// Tolerance is the maximum relative difference between multipliers.
	Tolerance float64
}

// ToMultiplyOptions converts the configuration into strassen.Options.
func (c AppConfig) ToMultiplyOptions() strassen.Options {
	return strassen.Options{LeafSize: c.LeafSize}
}

// Validate checks the semantic consistency of the configuration.
//
// Parameters:
//   - availableAlgos: The registered multiplier names.
//
// Returns:
//   - error: An apperrors.ConfigError if the configuration is invalid,
//     nil otherwise.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.N <= 0 {
		return apperrors.NewConfigError("matrix size must be positive, got %d", c.N)
	}
	if c.LeafSize <= 0 {
		return apperrors.NewConfigError("leaf size must be positive, got %d", c.LeafSize)
	}
	if !c.Bench && !c.ServerMode && !c.Calibrate && !c.AutoCalibrate {
		if err := strassen.CheckSize(c.N, c.LeafSize); err != nil {
			return err
		}
	}
	if c.Bench {
		if c.BenchFirst <= 0 || c.BenchFirst > c.BenchLast {
			return apperrors.NewConfigError("invalid benchmark range: first %d, last %d", c.BenchFirst, c.BenchLast)
		}
		if c.BenchRepeats <= 0 {
			return apperrors.NewConfigError("benchmark repeats must be positive, got %d", c.BenchRepeats)
		}
	}
	if c.MaxSize <= 0 {
		return apperrors.NewConfigError("maximum size must be positive, got %d", c.MaxSize)
	}
	if c.CacheSize < 0 {
		return apperrors.NewConfigError("cache size cannot be negative: %d", c.CacheSize)
	}
	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported shell for completion: '%s' (accepted values: bash, zsh, fish)", c.Completion)
	}
	if c.Tolerance < 0 {
		return apperrors.NewConfigError("tolerance cannot be negative: %g", c.Tolerance)
	}
	isAlgoAvailable := false
	for _, a := range availableAlgos {
		if a == c.Algo {
			isAlgoAvailable = true
			break
		}
	}
	if c.Algo != DefaultAlgo && !isAlgoAvailable {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	return nil
}

// NewFlagSet declares every command-line flag of the application, bound to
// the fields of config. The returned set uses flag.ContinueOnError and the
// themed usage message.
func NewFlagSet(programName string, config *AppConfig, availableAlgos []string) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	algoHelp := fmt.Sprintf("Multiplier to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	fs.IntVar(&config.N, "n", DefaultN, "Size of the square matrices to multiply.")
	fs.IntVar(&config.LeafSize, "leaf", DefaultLeafSize, "Block size at or below which blocks are multiplied directly.")
	fs.Int64Var(&config.Seed, "seed", DefaultSeed, "Seed of the random operands.")
	fs.BoolVar(&config.Verbose, "v", false, "Display the operands and the product.")
	fs.BoolVar(&config.Details, "d", false, "Display performance details.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Run the leaf-size calibration and exit.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Pick the leaf size with a quick calibration at startup.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path to the calibration profile (default: ~/.strassen_calibration.json).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the product matrix to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start the interactive session.")
	fs.StringVar(&config.Completion, "completion", "", "Print the shell completion script (bash, zsh, fish).")

	fs.BoolVar(&config.Bench, "bench", false, "Run the benchmark sweep instead of a single comparison.")
	fs.IntVar(&config.BenchFirst, "bench-first", DefaultBenchFirst, "First matrix size of the benchmark sweep.")
	fs.IntVar(&config.BenchLast, "bench-last", DefaultBenchLast, "Last matrix size of the benchmark sweep.")
	fs.IntVar(&config.BenchRepeats, "bench-repeats", DefaultBenchRepeats, "Timed runs per size; the best one is kept.")
	fs.BoolVar(&config.BenchVerify, "bench-verify", true, "Compare every benchmark product with the naive reference.")
	fs.StringVar(&config.CSVFile, "csv", "", "Write benchmark rows as CSV to this file ('-' for stdout).")

	fs.StringVar(&config.EnvFile, "env-file", "", "Load environment overrides from this dotenv file (default: ./.env when present).")
	fs.IntVar(&config.MaxSize, "max-size", DefaultMaxSize, "Largest matrix size accepted by the HTTP API.")
	fs.IntVar(&config.CacheSize, "cache-size", DefaultCacheSize, "Number of products cached by the HTTP API (0 disables the cache).")
	fs.Float64Var(&config.Tolerance, "tolerance", DefaultTolerance, "Maximum relative difference accepted between multipliers.")

	setCustomUsage(fs)
	return fs
}

// ParseConfig parses the command-line arguments into an AppConfig, loads the
// dotenv file, applies environment overrides and validates the result.
//
// Parameters:
//   - programName: The name used in the usage message.
//   - args: The command-line arguments, typically os.Args[1:].
//   - errorWriter: Receives parse errors and the usage message.
//   - availableAlgos: The valid multiplier names.
//
// Returns:
//   - AppConfig: The populated configuration.
//   - error: An error if parsing, dotenv loading or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	config := AppConfig{}
	fs := NewFlagSet(programName, &config, availableAlgos)
	fs.SetOutput(errorWriter)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	if err := loadEnvFile(config.EnvFile); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.Join(errors.New("invalid configuration"), err)
	}
	return config, nil
}
