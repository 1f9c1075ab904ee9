// Package clierr carries process exit codes on errors returned by commands.
package clierr

import (
	"errors"
	"fmt"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/repository"
)

// Exit codes.
const (
	CodeOK             = 0
	CodeFailure        = 1
	CodeCommitNotFound = 2
	CodeCommitNotValid = 3
	CodeUsage          = 64
)

// ExitCoder is an error that knows the process exit code it maps to.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error with an explicit exit code.
// It wraps its cause so errors.Is and errors.As see through it.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Newf is a formatted variant of New.
func Newf(code int, format string, args ...any) error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches an exit code to cause. A nil cause yields New(code, msg).
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Classify attaches the exit code matching a repository error kind.
// Errors that already carry a code, and nil, are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	switch {
	case repository.IsCommitNotFound(err):
		return Wrap(CodeCommitNotFound, "", err)
	case repository.IsCommitNotValid(err):
		return Wrap(CodeCommitNotValid, "", err)
	default:
		return err
	}
}

// ExitCodeOf extracts the exit code from err, defaulting to CodeFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return CodeOK
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return CodeFailure
}

func normalize(code int) int {
	if code <= CodeOK {
		return CodeFailure
	}
	return code
}
