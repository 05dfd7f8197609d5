package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies terminal color codes. It keeps this package free of
// any dependency on the cli package.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// DefaultColorProvider provides no color codes (for non-terminal output).
type DefaultColorProvider struct{}

func (d DefaultColorProvider) Yellow() string { return "" }
func (d DefaultColorProvider) Red() string    { return "" }
func (d DefaultColorProvider) Reset() string  { return "" }

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsContextError(err):
		if errors.Is(err, context.DeadlineExceeded) {
			return ExitErrorTimeout
		}
		return ExitErrorCanceled
	case IsConfigError(err):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// HandleMultiplicationError prints a status line describing why a
// multiplication failed and returns the matching exit code.
//
// Parameters:
//   - err: The error that occurred.
//   - duration: How long the multiplication ran before failing.
//   - out: The writer receiving the message.
//   - colors: Provider for terminal color codes (nil for no colors).
//
// Returns:
//   - int: The exit code for the error.
func HandleMultiplicationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	code := ExitCode(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", msgSuffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sStatus: Configuration error:%s %v\n", colors.Red(), colors.Reset(), err)
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
