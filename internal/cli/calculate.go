package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/strassen/internal/config"
	"github.com/agbru/strassen/internal/strassen"
)

// GetMultipliersToRun returns the multipliers selected by cfg.Algo: every
// registered multiplier in name order for "all", the named one otherwise.
func GetMultipliersToRun(cfg config.AppConfig, factory strassen.MultiplierFactory) []strassen.Multiplier {
	if cfg.Algo == config.DefaultAlgo {
		keys := factory.List()
		multipliers := make([]strassen.Multiplier, 0, len(keys))
		for _, k := range keys {
			if m, err := factory.Get(k); err == nil {
				multipliers = append(multipliers, m)
			}
		}
		return multipliers
	}
	if m, err := factory.Get(cfg.Algo); err == nil {
		return []strassen.Multiplier{m}
	}
	return nil
}

// PrintExecutionConfig displays the size, seed, timeout, environment and
// leaf size of the run.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	writeOut(out, "--- Execution Configuration ---\n")
	writeOut(out, "Multiplying two %s%d x %d%s random matrices (seed %d) with a timeout of %s%s%s.\n",
		ColorMagenta(), cfg.N, cfg.N, ColorReset(), cfg.Seed, ColorYellow(), cfg.Timeout, ColorReset())
	writeOut(out, "Environment: %s%d%s logical processors, GOMAXPROCS %s%d%s, Go %s%s%s.\n",
		ColorCyan(), runtime.NumCPU(), ColorReset(),
		ColorCyan(), runtime.GOMAXPROCS(0), ColorReset(),
		ColorCyan(), runtime.Version(), ColorReset())
	writeOut(out, "Recursion: direct multiplication at or below %s%d x %d%s blocks.\n",
		ColorCyan(), cfg.LeafSize, cfg.LeafSize, ColorReset())
}

// PrintExecutionMode displays whether a single multiplier runs or several
// are compared.
func PrintExecutionMode(multipliers []strassen.Multiplier, out io.Writer) {
	var modeDesc string
	if len(multipliers) > 1 {
		modeDesc = fmt.Sprintf("Concurrent comparison of %d multipliers", len(multipliers))
	} else {
		modeDesc = fmt.Sprintf("Single multiplication with the %s%s%s algorithm",
			ColorGreen(), multipliers[0].Name(), ColorReset())
	}
	writeOut(out, "Execution mode: %s.\n", modeDesc)
	writeOut(out, "\n--- Starting Execution ---\n")
}

func writeOut(out io.Writer, format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
