package memory

import (
	"errors"
	"fmt"
)

// Stage sentinels. Every error returned by Service matches exactly one of them
// with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmbedding      = errors.New("embedding failed")
	ErrStoreWrite     = errors.New("store write failed")
	ErrStoreRead      = errors.New("store read failed")
	ErrCompletion     = errors.New("completion failed")
)

// StageError records which pipeline stage failed and the underlying cause.
type StageError struct {
	Kind error
	Err  error
}

func (e *StageError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Stage returns the sentinel of the failed stage, or nil if err did not come
// from Service.
func Stage(err error) error {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return nil
}

func stageErr(kind, err error) error {
	return &StageError{Kind: kind, Err: err}
}

func invalidf(format string, args ...any) error {
	return &StageError{Kind: ErrInvalidRequest, Err: fmt.Errorf(format, args...)}
}
