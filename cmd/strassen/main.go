// Command strassen multiplies square matrices with Strassen's algorithm,
// sequentially and in parallel, and compares the engines against the naive
// triple loop. It also runs a benchmark sweep, a leaf-size calibration, an
// interactive session and an HTTP API.
package main

import (
	"context"
	"os"

	"github.com/agbru/strassen/internal/app"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/logging"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) > 1 && app.HasVersionFlag(args[1:]) {
		app.PrintVersion(os.Stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitCode(err)
	}

	logging.SetupGlobal(os.Stderr, application.Config.Verbose)
	return application.Run(context.Background(), os.Stdout)
}
