package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a job id is unknown to the store.
	ErrNotFound = errors.New("queue: job not found")

	// ErrInvalidState is returned when a transition is not allowed from the
	// job's current status.
	ErrInvalidState = errors.New("queue: invalid state transition")

	// ErrUnknownKind is the execution failure recorded for jobs whose kind
	// has no registered handler.
	ErrUnknownKind = errors.New("queue: unknown job kind")

	// ErrTimeout is the execution failure recorded when a handler exceeds
	// the execution timeout.
	ErrTimeout = errors.New("queue: execution timed out")
)

// SerializationError reports a payload that cannot be encoded or decoded.
// It is a programmer error and is never retried.
type SerializationError struct {
	Kind string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize %q payload: %v", e.Kind, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ExecutionError is a handler-reported failure. It drives the retry policy.
type ExecutionError struct {
	Kind string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsRetryable reports whether err should go through the retry policy
// rather than abandoning the job immediately.
func IsRetryable(err error) bool {
	var serr *SerializationError
	return !errors.As(err, &serr)
}
