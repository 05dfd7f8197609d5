package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/strassen/internal/cli"
	"github.com/agbru/strassen/internal/config"
)

// printCalibrationResults formats and prints the calibration results table.
func printCalibrationResults(out io.Writer, results []calibrationResult, bestLeaf int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sLeaf size%s    │ %sExecution Time%s\n", cli.ColorBold(), cli.ColorReset(), cli.ColorBold(), cli.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 25))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", cli.ColorRed(), cli.ColorReset())
		if res.Err == nil {
			durationStr = cli.FormatExecutionDuration(res.Duration)
			if res.Duration == 0 {
				durationStr = "< 1µs"
			}
		}
		highlight := ""
		if res.LeafSize == bestLeaf && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", cli.ColorGreen(), cli.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12d%s │ %s%s%s%s\n", cli.ColorCyan(), res.LeafSize, cli.ColorReset(), cli.ColorYellow(), durationStr, cli.ColorReset(), highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints the leaf size chosen by auto-calibration.
func printCalibrationOutput(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "%sAuto-calibration%s: leaf size=%s%d%s\n",
		cli.ColorGreen(), cli.ColorReset(),
		cli.ColorYellow(), cfg.LeafSize, cli.ColorReset())
}
