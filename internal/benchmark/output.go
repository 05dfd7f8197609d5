package benchmark

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/strassen/internal/cli"
	"github.com/agbru/strassen/internal/config"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/strassen"
)

// WriteCSV writes one row per result. Rows are size,gflops,diff; an algorithm
// column is prepended when the results span several algorithms. diff is left
// empty for unverified results.
func WriteCSV(w io.Writer, results []Result, header bool) error {
	multi := spansAlgorithms(results)
	cw := csv.NewWriter(w)
	if header {
		row := []string{"Size", "Gflops", "Diff"}
		if multi {
			row = append([]string{"Algorithm"}, row...)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, r := range results {
		diff := ""
		if r.Verified {
			diff = strconv.FormatFloat(r.Diff, 'g', -1, 64)
		}
		row := []string{strconv.Itoa(r.Size), strconv.FormatFloat(r.Gflops, 'f', 6, 64), diff}
		if multi {
			row = append([]string{r.Algorithm}, row...)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func spansAlgorithms(results []Result) bool {
	for _, r := range results {
		if r.Algorithm != results[0].Algorithm {
			return true
		}
	}
	return false
}

// WriteTable prints the results as an aligned table. Differences above
// the relative tolerance are highlighted.
func WriteTable(out io.Writer, results []Result, tolerance float64) {
	fmt.Fprintf(out, "\n--- Benchmark Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sAlgorithm%s\t%sSize%s\t%sBest time%s\t%sGFLOPS%s\t%sMax diff%s\n",
		cli.ColorBold(), cli.ColorReset(), cli.ColorBold(), cli.ColorReset(), cli.ColorBold(), cli.ColorReset(),
		cli.ColorBold(), cli.ColorReset(), cli.ColorBold(), cli.ColorReset())
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", strings.Repeat("─", 22), strings.Repeat("─", 6),
		strings.Repeat("─", 12), strings.Repeat("─", 10), strings.Repeat("─", 12))
	for _, r := range results {
		best := cli.FormatExecutionDuration(r.Best)
		if r.Best == 0 {
			best = "< 1µs"
		}
		gflops := "∞"
		if !math.IsInf(r.Gflops, 1) {
			gflops = fmt.Sprintf("%.3f", r.Gflops)
		}
		diff := "-"
		if r.Verified {
			color := cli.ColorGreen()
			if r.Exceeds(tolerance) {
				color = cli.ColorRed()
			}
			diff = fmt.Sprintf("%s%.3e%s", color, r.Diff, cli.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%s%s\t%d\t%s%s%s\t%s\t%s\n", cli.ColorCyan(), r.Algorithm, cli.ColorReset(),
			r.Size, cli.ColorYellow(), best, cli.ColorReset(), gflops, diff)
	}
	tw.Flush()
}

// ConfigFromApp builds the sweep described by the application flags.
func ConfigFromApp(cfg config.AppConfig) Config {
	return Config{
		First:   cfg.BenchFirst,
		Last:    cfg.BenchLast,
		Repeats: cfg.BenchRepeats,
		Verify:  cfg.BenchVerify,
		Seed:    cfg.Seed,
		Options: cfg.ToMultiplyOptions(),
	}
}

// RunBenchmarks runs the sweep for every selected multiplier, prints the
// table and writes the CSV rows when requested.
//
// Parameters:
//   - ctx: The context for cancellation and timeout.
//   - cfg: The application configuration.
//   - multipliers: The multipliers to measure.
//   - out: The writer for the table and, for CSV file "-", the rows.
//
// Returns:
//   - int: The exit code.
func RunBenchmarks(ctx context.Context, cfg config.AppConfig, multipliers []strassen.Multiplier, out io.Writer) int {
	bcfg := ConfigFromApp(cfg)
	fmt.Fprintf(out, "--- Benchmark ---\nSizes %s%v%s, %d repeat(s) per size, leaf size %d.\n",
		cli.ColorMagenta(), Sizes(bcfg), cli.ColorReset(), bcfg.Repeats, cfg.LeafSize)

	start := time.Now()
	var all []Result
	for _, m := range multipliers {
		results, err := Run(ctx, m, bcfg, func(r Result) {
			if !cfg.Quiet {
				fmt.Fprintf(out, "  %-22s size %-5d %s\n", r.Algorithm, r.Size, cli.FormatExecutionDuration(r.Best))
			}
		})
		all = append(all, results...)
		if err != nil {
			return apperrors.HandleMultiplicationError(err, time.Since(start), out, cli.CLIColorProvider{})
		}
	}

	WriteTable(out, all, cfg.Tolerance)

	if cfg.CSVFile != "" {
		if err := writeCSVTarget(cfg.CSVFile, all, out); err != nil {
			fmt.Fprintf(out, "%sError writing CSV: %v%s\n", cli.ColorRed(), err, cli.ColorReset())
			return apperrors.ExitErrorGeneric
		}
	}

	for _, r := range all {
		if r.Exceeds(cfg.Tolerance) {
			fmt.Fprintf(out, "%sVerification failed%s: %s at size %d differs by %.3e.\n",
				cli.ColorRed(), cli.ColorReset(), r.Algorithm, r.Size, r.Diff)
			return apperrors.ExitErrorMismatch
		}
	}
	return apperrors.ExitSuccess
}

func writeCSVTarget(path string, results []Result, stdout io.Writer) error {
	if path == "-" {
		return WriteCSV(stdout, results, true)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteCSV(f, results, true); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
