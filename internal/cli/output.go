package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/strassen/internal/matrix"
)

// OutputConfig controls how a product is reported.
type OutputConfig struct {
	// OutputFile receives the full product when not empty.
	OutputFile string
	// Quiet prints a single line for scripts.
	Quiet bool
	// Verbose prints the product matrix.
	Verbose bool
	// Details prints trace, sum and throughput.
	Details bool
}

// WriteResultToFile writes the product to config.OutputFile: a commented
// header followed by one whitespace-separated row per line, every value in
// the shortest representation that round-trips.
func WriteResultToFile(result *matrix.Matrix, duration time.Duration, algo string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	if dir := filepath.Dir(config.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := writeMatrix(file, result, duration, algo); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}

func writeMatrix(w io.Writer, result *matrix.Matrix, duration time.Duration, algo string) error {
	bw := bufio.NewWriter(w)
	n := result.Size()
	fmt.Fprintf(bw, "# Strassen Multiplication Result\n")
	fmt.Fprintf(bw, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(bw, "# Algorithm: %s\n", algo)
	fmt.Fprintf(bw, "# Duration: %s\n", duration)
	fmt.Fprintf(bw, "# Size: %d\n", n)

	var buf []byte
	for i := 0; i < n; i++ {
		buf = buf[:0]
		for j := 0; j < n; j++ {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, result.At(i, j), 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatQuietResult formats a product as one line for scripting:
// size, element sum and trace.
func FormatQuietResult(result *matrix.Matrix, duration time.Duration) string {
	return fmt.Sprintf("size=%d sum=%s trace=%s duration=%s",
		result.Size(),
		strconv.FormatFloat(matrix.Sum(result), 'g', -1, 64),
		strconv.FormatFloat(matrix.Trace(result), 'g', -1, 64),
		duration)
}

// DisplayResultWithConfig reports a product according to config and writes
// it to config.OutputFile when set.
func DisplayResultWithConfig(out io.Writer, result *matrix.Matrix, duration time.Duration, algo string, config OutputConfig) error {
	if config.Quiet {
		fmt.Fprintln(out, FormatQuietResult(result, duration))
	} else {
		DisplayResult(result, duration, config.Verbose, config.Details, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(result, duration, algo, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Product saved to: %s%s%s\n",
				ColorGreen(), ColorCyan(), config.OutputFile, ColorReset())
		}
	}
	return nil
}
