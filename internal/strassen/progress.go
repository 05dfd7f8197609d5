package strassen

// ProgressUpdate carries the progress of one multiplier. It is sent over a
// channel from the multiplier to the user interface.
type ProgressUpdate struct {
	// MultiplierIndex identifies the multiplier among those running
	// concurrently.
	MultiplierIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback used by the engines to report progress.
// The parallel engine may call it from several goroutines at once.
type ProgressReporter func(progress float64)

func noopReporter(float64) {}
