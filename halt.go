package pulse

import (
	"errors"
	"fmt"
)

// HaltError is the in-band signal that propagation should stop along the
// current edge for the current emission. Returning one from a transform is
// intentional and non-fatal: the handler swallows it, logs at info level,
// and suppresses downstream delivery. On async edges the marker flows as a
// resolved value so downstream transforms can pass it through unchanged.
type HaltError struct {
	Reason string
}

// Error implements the error interface.
func (e *HaltError) Error() string {
	if e.Reason == "" {
		return "propagation halted"
	}
	return "propagation halted: " + e.Reason
}

// Halt returns a HaltError with the given reason. Return it from a transform
// to stop the current emission along that edge; sibling edges are unaffected.
func Halt(reason string) error {
	return &HaltError{Reason: reason}
}

// Haltf returns a HaltError with a formatted reason.
func Haltf(format string, args ...any) error {
	return &HaltError{Reason: fmt.Sprintf(format, args...)}
}

// IsHalt reports whether err is (or wraps) a HaltError.
func IsHalt(err error) bool {
	var h *HaltError
	return errors.As(err, &h)
}

// asHalt extracts the HaltError from err, if any.
func asHalt(err error) (*HaltError, bool) {
	var h *HaltError
	if errors.As(err, &h) {
		return h, true
	}
	return nil, false
}
