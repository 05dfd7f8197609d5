package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/strassen/internal/errors"
)

// DefaultEnvFile is the dotenv file loaded when -env-file is not given.
const DefaultEnvFile = ".env"

// loadEnvFile loads a dotenv file into the process environment. Variables
// already present in the environment win over the file. An explicit path
// must exist; the default ./.env is optional.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperrors.NewConfigErrorWithCause(err, "cannot read env file %q", path)
	}
	if err := godotenv.Load(path); err != nil {
		return apperrors.NewConfigErrorWithCause(err, "cannot parse env file %q", path)
	}
	return nil
}

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns EnvPrefix+key parsed as int, or defaultVal if unset or
// invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns EnvPrefix+key parsed as bool, or defaultVal if unset.
// Accepts "true", "1", "yes" and "false", "0", "no" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns EnvPrefix+key parsed as a duration ("30s", "5m"),
// or defaultVal if unset or invalid.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet reports whether any of the named flags was set on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides applies STRASSEN_* variables to every setting whose flag
// was not given explicitly. Priority: flags > environment > defaults.
//
// Supported variables: N, LEAF, SEED, TIMEOUT, ALGO, PORT, OUTPUT,
// CALIBRATION_PROFILE, CSV, MAX_SIZE, CACHE_SIZE, TOLERANCE, BENCH_FIRST,
// BENCH_LAST, BENCH_REPEATS, and the booleans SERVER, JSON, VERBOSE, DETAILS,
// QUIET, NO_COLOR, INTERACTIVE, CALIBRATE, AUTO_CALIBRATE, BENCH, BENCH_VERIFY.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"n", "N", &config.N},
		{"leaf", "LEAF", &config.LeafSize},
		{"bench-first", "BENCH_FIRST", &config.BenchFirst},
		{"bench-last", "BENCH_LAST", &config.BenchLast},
		{"bench-repeats", "BENCH_REPEATS", &config.BenchRepeats},
		{"max-size", "MAX_SIZE", &config.MaxSize},
		{"cache-size", "CACHE_SIZE", &config.CacheSize},
	}
	for _, o := range ints {
		if !isFlagSet(fs, o.flag) {
			*o.dst = getEnvInt(o.env, *o.dst)
		}
	}
	if !isFlagSet(fs, "seed") {
		config.Seed = getEnvInt64("SEED", config.Seed)
	}
	if !isFlagSet(fs, "tolerance") {
		config.Tolerance = getEnvFloat("TOLERANCE", config.Tolerance)
	}
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "algo") {
		config.Algo = getEnvString("ALGO", config.Algo)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "output", "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
	if !isFlagSet(fs, "calibration-profile") {
		config.CalibrationProfile = getEnvString("CALIBRATION_PROFILE", config.CalibrationProfile)
	}
	if !isFlagSet(fs, "csv") {
		config.CSVFile = getEnvString("CSV", config.CSVFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	bools := []struct {
		flags []string
		env   string
		dst   *bool
	}{
		{[]string{"server"}, "SERVER", &config.ServerMode},
		{[]string{"json"}, "JSON", &config.JSONOutput},
		{[]string{"v"}, "VERBOSE", &config.Verbose},
		{[]string{"d", "details"}, "DETAILS", &config.Details},
		{[]string{"quiet", "q"}, "QUIET", &config.Quiet},
		{[]string{"no-color"}, "NO_COLOR", &config.NoColor},
		{[]string{"calibrate"}, "CALIBRATE", &config.Calibrate},
		{[]string{"auto-calibrate"}, "AUTO_CALIBRATE", &config.AutoCalibrate},
		{[]string{"interactive"}, "INTERACTIVE", &config.Interactive},
		{[]string{"bench"}, "BENCH", &config.Bench},
		{[]string{"bench-verify"}, "BENCH_VERIFY", &config.BenchVerify},
	}
	for _, o := range bools {
		if !isFlagSet(fs, o.flags...) {
			*o.dst = getEnvBool(o.env, *o.dst)
		}
	}
}
