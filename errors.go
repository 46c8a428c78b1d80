package meshmirror

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeCount is returned when a mirror repetition count is negative.
	ErrNegativeCount = errors.New("negative mirror repetition count")
	// ErrMemory is returned when growing an arena would exceed the mesh memory limit.
	ErrMemory = errors.New("mesh memory limit exceeded")
)

// Status is the outcome class of a mirror operation.
type Status int

const (
	// Success means the mesh was mirrored.
	Success Status = iota
	// LowFailure means the operation failed before modifying the mesh
	// contents. The input mesh is still valid and may be saved.
	LowFailure
	// StrongFailure means the operation aborted part way and the mesh
	// is not guaranteed to be consistent.
	StrongFailure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case LowFailure:
		return "low failure"
	case StrongFailure:
		return "strong failure"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// FatalError wraps an error that left the mesh in an inconsistent state.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "mesh left inconsistent: " + e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// StatusOf classifies an error returned by Mirror.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return StrongFailure
	}
	return LowFailure
}
