package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrProvider     = errors.New("provider error")
	ErrInvalidInput = errors.New("invalid input")
)

// ActionError is returned by cloud and LLM actions. Kind is one of the
// sentinel errors above; Err is the underlying cause.
type ActionError struct {
	Op   string
	Kind error
	Err  error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *ActionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewActionError(op string, kind error, err error) *ActionError {
	return &ActionError{Op: op, Kind: kind, Err: err}
}

func NotFoundf(op, format string, args ...any) error {
	return NewActionError(op, ErrNotFound, fmt.Errorf(format, args...))
}

func InvalidInputf(op, format string, args ...any) error {
	return NewActionError(op, ErrInvalidInput, fmt.Errorf(format, args...))
}
