package assist

import (
	"context"
	"errors"
	"fmt"
)

// Error classes surfaced by the pipeline. Match them with errors.Is.
var (
	ErrInput      = errors.New("no input supplied")
	ErrTransport  = errors.New("could not reach the AI service")
	ErrUpstream   = errors.New("AI service rejected the request")
	ErrParse      = errors.New("unexpected AI response format")
	ErrValidation = errors.New("incomplete AI response")
)

var (
	errEmptyText  = errors.New("empty text reply")
	errEmptyAudio = errors.New("no audio in reply")
)

// Error is a classified pipeline failure.
type Error struct {
	Op     Operation
	Kind   error // one of the Err* classes above
	Status int   // provider HTTP status, 0 when unknown
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("assist %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("assist %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the single-line text shown to end users.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case ErrUpstream, ErrInput:
		if e.Err != nil {
			return e.Kind.Error() + ": " + e.Err.Error()
		}
	}
	return e.Kind.Error()
}

func inputError(op Operation, format string, args ...any) *Error {
	return &Error{Op: op, Kind: ErrInput, Err: fmt.Errorf(format, args...)}
}

// classify wraps a provider or validation failure into an *Error.
func classify(op Operation, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		return e
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Kind: ErrTransport, Err: err}
	}
	status, ok := StatusOf(err)
	switch {
	case !ok:
		return &Error{Op: op, Kind: ErrTransport, Err: err}
	case IsServerError(status):
		return &Error{Op: op, Kind: ErrTransport, Status: status, Err: err}
	default:
		return &Error{Op: op, Kind: ErrUpstream, Status: status, Err: err}
	}
}
