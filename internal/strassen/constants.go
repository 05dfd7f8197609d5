package strassen

import "runtime"

// ─────────────────────────────────────────────────────────────────────────────
// Engine Tuning Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultLeafSize is the block size at or below which recursion bottoms
	// out into direct triple-loop multiplication (MIN_SIZE). Every matrix
	// dimension processed must be divisible by 2 down to this value.
	//
	// Builds of the algorithm have been run with 4 and 8; 8 keeps the
	// per-call overhead of the ten auxiliary matrices amortized on typical
	// hardware. Calibration can pick a better value for a given machine.
	DefaultLeafSize = 8

	// MinLeafSize is the smallest accepted leaf size.
	MinLeafSize = 1

	// ProductCount is the number of recursive sub-multiplications per
	// Strassen step, and therefore the fan-out of the parallel engine.
	ProductCount = 7

	// ProgressReportThreshold is the minimum progress change logged by
	// LoggingObserver when no explicit threshold is configured.
	ProgressReportThreshold = 0.1
)

// DefaultDispatchBudget returns the default number of goroutines the
// parallel engine may have in flight process-wide: enough for two root
// fan-outs per available CPU.
func DefaultDispatchBudget() int64 {
	return int64(2 * ProductCount * runtime.GOMAXPROCS(0))
}
