package cmd

import (
	"context"
	"errors"

	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
)

const (
	ExitOK       = 0
	ExitSystem   = 1
	ExitUser     = 2
	ExitCanceled = 130
)

// ExitCode maps a command error to a stable process exit code for automation.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}

	// Malformed input, bad flags and strict-mode failures are the caller's to fix.
	if clierrors.IsValidationError(err) || clierrors.IsUserError(err) || clierrors.IsInputError(err) {
		return ExitUser
	}

	return ExitSystem
}
