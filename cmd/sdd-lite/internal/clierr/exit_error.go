// SPDX-License-Identifier: AGPL-3.0-or-later
package clierr

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	// CodeFailure covers filesystem and other runtime failures.
	CodeFailure = 1
	// CodeInvalidInput covers bad arguments, flags and configuration. It is
	// always raised before any file is touched.
	CodeInvalidInput = 2
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
// It supports wrapping via Unwrap so errors.Is/As work as expected.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

// Unwrap enables errors.Is/As to traverse the underlying cause.
func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// InvalidInput is a formatted CodeInvalidInput error.
func InvalidInput(format string, args ...any) error {
	return &ExitError{code: CodeInvalidInput, msg: fmt.Sprintf(format, args...)}
}

// Failure wraps cause as a CodeFailure error unless it already carries a code.
func Failure(msg string, cause error) error {
	var ec ExitCoder
	if errors.As(cause, &ec) {
		return cause
	}
	return Wrap(CodeFailure, msg, cause)
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return CodeFailure
}

func normalize(code int) int {
	// Exit code 0 means success; errors should never be 0.
	if code <= 0 {
		return CodeFailure
	}
	return code
}
