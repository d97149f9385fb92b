// Package hints labels "soft failures": errors that end an operation early
// without it having failed, such as a declined prompt or an empty clipboard.
// The CLI reports them as a normal exit.
//
// Producers wrap such errors with Wrap or create them with New; consumers test
// with IsHint and never need the producer's sentinel errors.
package hints

import "errors"

type hintErr struct {
	err error
}

func (h *hintErr) Error() string {
	if h == nil || h.err == nil {
		return "unknown hint"
	}
	return h.err.Error()
}
func (h *hintErr) IsHint() bool  { return true }
func (h *hintErr) Unwrap() error { return h.err }

// New creates a hint from a string.
func New(msg string) error {
	return &hintErr{err: errors.New(msg)}
}

// Wrap promotes an existing error to a hint.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &hintErr{err: err}
}

// IsHint checks if any error in the chain behaves like a hint.
func IsHint(err error) bool {
	var h interface{ IsHint() bool }
	return errors.As(err, &h) && h.IsHint()
}

// Is checks if the error is a hint AND matches the target error.
func Is(err, target error) bool {
	return IsHint(err) && errors.Is(err, target)
}
