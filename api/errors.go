// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-rt.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrAllocFailed       = fmt.Errorf("allocation failed")
	ErrCapacityExhausted = fmt.Errorf("capacity exhausted")
	ErrOutOfRange        = fmt.Errorf("index out of range")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrNotRelocatable    = fmt.Errorf("element type is not trivially relocatable")
	ErrSpawnFailed       = fmt.Errorf("thread spawn failed")
	ErrPoolClosed        = fmt.Errorf("worker pool is closed")
	ErrPoolRunning       = fmt.Errorf("worker pool is already running")
	ErrNotSupported      = fmt.Errorf("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeAllocFailed
	ErrCodeCapacityExhausted
	ErrCodeOutOfRange
	ErrCodeSpawnFailed
	ErrCodeNotSupported
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel the error was built from.
func (e *Error) Unwrap() error {
	return e.Err
}

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidArgument:   ErrInvalidArgument,
	ErrCodeAllocFailed:       ErrAllocFailed,
	ErrCodeCapacityExhausted: ErrCapacityExhausted,
	ErrCodeOutOfRange:        ErrOutOfRange,
	ErrCodeSpawnFailed:       ErrSpawnFailed,
	ErrCodeNotSupported:      ErrNotSupported,
}

// Is reports whether target is the sentinel associated with the error code,
// so errors.Is works on errors built with NewError.
func (e *Error) Is(target error) bool {
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap creates a structured error that unwraps to err.
func Wrap(code ErrorCode, err error) *Error {
	e := NewError(code, err.Error())
	e.Err = err
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
