package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig = "CONFIG"
	ErrFetch  = "FETCH"
	ErrRender = "RENDER"
	ErrExport = "EXPORT"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrFetch code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrFetch,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewFetchCycleFailed reports a poll cycle that could not gather every upstream
// payload. The cause is kept opaque: callers only branch on the FETCH code.
func NewFetchCycleFailed(cause error) *Error {
	return &Error{
		Code:       ErrFetch,
		Message:    "Fetch cycle failed",
		Suggestion: "Check that the telemetry server and traffic controller are reachable",
		Cause:      cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pvErr *Error
	if errors.As(err, &pvErr) {
		return pvErr.Code == code
	}
	return false
}

// Summary returns the first line of a structured error without the failure
// symbol, or err.Error() for plain errors. Used where a single line fits.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var pvErr *Error
	if errors.As(err, &pvErr) {
		if pvErr.Cause != nil {
			return pvErr.Message + ": " + firstLine(pvErr.Cause.Error())
		}
		return pvErr.Message
	}
	return firstLine(err.Error())
}

func firstLine(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "✗"))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// ExitError carries a process exit code without an additional message.
// Commands return it when the outcome itself (not a failure to run) should
// be reflected in the exit status.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an ExitError in err's chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
