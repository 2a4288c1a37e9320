package services

import (
	"errors"
	"fmt"
)

// Request error kinds, matchable with errors.Is
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvertedRange = errors.New("end date before start date")
	ErrOutOfRange    = errors.New("date outside dataset range")
	ErrEmptyResult   = errors.New("no matching data")
)

// RequestError is a caller-facing failure. Message is safe to return to clients.
type RequestError struct {
	Kind    error
	Message string
	Err     error
}

func newRequestError(kind error, cause error, format string, args ...interface{}) *RequestError {
	return &RequestError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

func (e *RequestError) Error() string {
	return e.Message
}

// Is reports whether target is the error's kind
func (e *RequestError) Is(target error) bool {
	return target == e.Kind
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransient returns false as request errors depend only on the input
func (e *RequestError) IsTransient() bool {
	return false
}
