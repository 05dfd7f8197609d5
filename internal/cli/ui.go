// Package cli renders the command-line interface of the strassen
// application: the asynchronous progress display while multipliers run,
// result summaries, matrix previews, file export and the interactive mode.
package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
	"github.com/agbru/strassen/internal/ui"
)

// FormatExecutionDuration formats a duration for display: microseconds below
// a millisecond, milliseconds below a second, Duration.String otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// Gflops returns the throughput of a size x size multiplication that took d,
// counting 2*size^3 floating-point operations.
func Gflops(size int, d time.Duration) float64 {
	if d <= 0 {
		return math.Inf(1)
	}
	n := float64(size)
	return 2 * n * n * n * 1e-9 / d.Seconds()
}

const (
	// PreviewLimit is the largest dimension printed in full; larger matrices
	// show only their top-left corner unless verbose output is requested.
	PreviewLimit = 8
	// ProgressRefreshRate is the refresh period of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// ColorReset returns the reset escape code from the current theme.
func ColorReset() string { return ui.ColorReset() }

// ColorRed returns the error color from the current theme.
func ColorRed() string { return ui.ColorRed() }

// ColorGreen returns the success color from the current theme.
func ColorGreen() string { return ui.ColorGreen() }

// ColorYellow returns the warning color from the current theme.
func ColorYellow() string { return ui.ColorYellow() }

// ColorBlue returns the primary color from the current theme.
func ColorBlue() string { return ui.ColorBlue() }

// ColorMagenta returns the info color from the current theme.
func ColorMagenta() string { return ui.ColorMagenta() }

// ColorCyan returns the secondary color from the current theme.
func ColorCyan() string { return ui.ColorCyan() }

// ColorBold returns the bold escape code from the current theme.
func ColorBold() string { return ui.ColorBold() }

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState aggregates the progress of multipliers running concurrently.
type ProgressState struct {
	progresses []float64
}

// NewProgressState tracks numMultipliers independent progress values.
func NewProgressState(numMultipliers int) *ProgressState {
	if numMultipliers < 0 {
		numMultipliers = 0
	}
	return &ProgressState{progresses: make([]float64, numMultipliers)}
}

// Update records the progress of one multiplier. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress, 0 when nothing is tracked.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

// progressBar renders progress, clamped to [0, 1], as a bar of length runes.
func progressBar(progress float64, length int) string {
	progress = math.Max(0, math.Min(1, progress))
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

func progressLabel(numMultipliers int) string {
	if numMultipliers > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress shows a spinner with the average progress and ETA of the
// running multipliers until progressChan is closed, then prints a final
// 100% line. It is meant to run in its own goroutine and calls wg.Done on
// return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan strassen.ProgressUpdate, numMultipliers int, out io.Writer) {
	defer wg.Done()
	if numMultipliers <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numMultipliers)
	label := progressLabel(numMultipliers)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintf(out, "%s: %6.2f%% [%s] ETA: %s\n", label, 100.0, progressBar(1, ProgressBarWidth), "< 1s")
				return
			}
			state.UpdateWithETA(update.MultiplierIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(" " + label + ": " + FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth))
		}
	}
}

// DisplayResult prints the summary of a product: its size, duration and
// throughput, and with details its trace, element sum and largest magnitude.
// The product itself is printed when verbose is set, in full up to
// PreviewLimit and as a corner preview beyond.
func DisplayResult(result *matrix.Matrix, duration time.Duration, verbose, details bool, out io.Writer) {
	n := result.Size()
	fmt.Fprintf(out, "Product size: %s%d x %d%s (%s elements).\n",
		ColorCyan(), n, n, ColorReset(), formatNumberString(fmt.Sprintf("%d", n*n)))

	if details {
		fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ColorBold(), ColorReset())
		durationStr := FormatExecutionDuration(duration)
		if duration == 0 {
			durationStr = "< 1µs"
		}
		fmt.Fprintf(out, "Multiplication time : %s%s%s\n", ColorGreen(), durationStr, ColorReset())
		if duration > 0 {
			fmt.Fprintf(out, "Throughput          : %s%.3f GFLOPS%s\n", ColorMagenta(), Gflops(n, duration), ColorReset())
		}
		fmt.Fprintf(out, "Trace               : %s%.10g%s\n", ColorCyan(), matrix.Trace(result), ColorReset())
		fmt.Fprintf(out, "Element sum         : %s%.10g%s\n", ColorCyan(), matrix.Sum(result), ColorReset())
		fmt.Fprintf(out, "Largest magnitude   : %s%.10g%s\n", ColorCyan(), matrix.MaxAbs(result), ColorReset())
	}

	if !verbose {
		return
	}
	fmt.Fprintf(out, "\n%s--- Product ---%s\n", ColorBold(), ColorReset())
	limit := n
	if n > PreviewLimit {
		limit = PreviewLimit
	}
	FormatMatrix(out, result, limit)
	if limit < n {
		fmt.Fprintf(out, "(showing the top-left %d x %d block; use %s-o%s to export the full product)\n",
			limit, limit, ColorYellow(), ColorReset())
	}
}

// FormatMatrix writes the top-left limit x limit block of m, one row per line.
func FormatMatrix(out io.Writer, m *matrix.Matrix, limit int) {
	if limit > m.Size() {
		limit = m.Size()
	}
	for i := 0; i < limit; i++ {
		var b strings.Builder
		for j := 0; j < limit; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%12.6g", m.At(i, j))
		}
		if limit < m.Size() {
			b.WriteString(" ...")
		}
		fmt.Fprintln(out, b.String())
	}
	if limit < m.Size() {
		fmt.Fprintln(out, "...")
	}
}

// formatNumberString inserts thousand separators into a decimal string.
func formatNumberString(s string) string {
	if s == "" {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var builder strings.Builder
	builder.Grow(len(prefix) + n + (n-1)/3)
	builder.WriteString(prefix)
	first := n % 3
	if first == 0 {
		first = 3
	}
	builder.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
