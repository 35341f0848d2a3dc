// Package rainbowerrors contains generic errors returned while configuring and running a table generation.
// The command line entrypoint looks for the error types defined in this file and sets the process exit code
// accordingly.
//
// If multiple errors occur in some function (e.g., if several workers fail), that function should return an
// error of type multierror.Error from package github.com/hashicorp/go-multierror that encapsulates those
// individual errors.
package rainbowerrors

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	ExitCodeOK              = 0
	ExitCodeFailure         = 1
	ExitCodeInvalidArgument = 2
	ExitCodeInterrupted     = 130
)

// ErrInvalidArgument is a generic error to be returned on invalid configuration.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "digits"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", fmt.Sprint(err.Value), err.Name)
	} else {
		return fmt.Sprintf("value %q is invalid for field %q; %s", fmt.Sprint(err.Value), err.Name, err.Message)
	}
}

// ErrWorkerFailed is returned when a hashing worker stops before draining its jobs,
// e.g., because it panicked or its output channel broke.
type ErrWorkerFailed struct {
	Worker int   // Index of the worker in the pool
	Cause  error // What stopped the worker
}

func (err *ErrWorkerFailed) Error() string {
	if err.Cause == nil {
		return fmt.Sprintf("worker %d failed", err.Worker)
	}
	return fmt.Sprintf("worker %d failed: %s", err.Worker, err.Cause)
}

func (err *ErrWorkerFailed) Unwrap() error {
	return err.Cause
}

// ExitCodeFromError maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
// For a multierror, the first error that maps to something other than ExitCodeFailure wins.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitCodeOK
	}

	{
		var e *multierror.Error
		if errors.As(err, &e) {
			for _, inner := range e.Errors {
				if code := ExitCodeFromError(inner); code != ExitCodeFailure {
					return code
				}
			}
			return ExitCodeFailure
		}
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return ExitCodeInvalidArgument
		}
	}
	if errors.Is(err, context.Canceled) {
		return ExitCodeInterrupted
	}

	return ExitCodeFailure
}
