package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// terminationSignals cancel a run.
var terminationSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SetupContext returns ctx bounded by timeout. The cancel function must be
// called to release the timer.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// SetupSignals returns a context canceled on SIGINT (Ctrl+C) or SIGTERM, so
// that running multiplications stop between products and the process exits
// with code 130.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, terminationSignals...)
}

// SetupLifecycle combines the run timeout and signal handling: the returned
// context ends at whichever comes first.
//
// Parameters:
//   - ctx: The parent context.
//   - timeout: The maximum duration of the run.
//
// Returns:
//   - context.Context: A context with both timeout and signal handling.
//   - *CancelFuncs: The cleanup functions; call Cleanup when done.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)

	return ctx, &CancelFuncs{
		CancelTimeout: cancelTimeout,
		StopSignals:   stopSignals,
	}
}

// CancelFuncs holds the cancel functions of a lifecycle.
type CancelFuncs struct {
	// CancelTimeout cancels the timeout context.
	CancelTimeout context.CancelFunc
	// StopSignals stops listening for OS signals.
	StopSignals context.CancelFunc
}

// Cleanup stops signal handling, then releases the timeout.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}
