package cli

import (
	"errors"

	"github.com/rshade/shelfview/internal/library"
)

// Process exit codes.
const (
	ExitCodeOK       = 0
	ExitCodeError    = 1
	ExitCodeUsage    = 2
	ExitCodeNotFound = 3
	ExitCodeConfig   = 4
)

// ExitError carries the exit code a failed command should end the process with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status"
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code. An ExitError anywhere in the
// chain wins; a missing book is ExitCodeNotFound; anything else is ExitCodeError.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, library.ErrBookNotFound) {
		return ExitCodeNotFound
	}
	return ExitCodeError
}
