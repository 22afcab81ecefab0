// Package exitcode provides standardized exit codes for regsearch
package exitcode

import "errors"

// Exit codes for the regsearch CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	UsageError      = 3
	FileSystemError = 4
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case UsageError:
		return "Usage error"
	case FileSystemError:
		return "File system error"
	default:
		return "Unknown error"
	}
}

// Error carries an exit code alongside the underlying failure
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches code to err. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// FromError returns the exit code carried by err, GeneralError for any other
// non-nil error and Success for nil.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return GeneralError
}
