package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during resolution.
//
// Runtime errors include:
//   - Deferred failure: a callback returned an error
//   - Round limit: deferred parameters remain after the maximum rounds
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Seq identifies the resolution (see Clock).
	Seq int64

	// Round is the 1-based round in which the error occurred.
	Round int

	// Position is the flat parameter index of the failing callback,
	// or -1 when not applicable.
	Position int

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeDeferredFailed indicates a deferred callback failed.
	ErrCodeDeferredFailed RuntimeErrorCode = "DEFERRED_FAILED"

	// ErrCodeRoundLimit indicates resolution did not reach a fixed point.
	ErrCodeRoundLimit RuntimeErrorCode = "ROUND_LIMIT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s (seq=%d, round=%d", e.Code, e.Message, e.Seq, e.Round)
	if e.Position >= 0 {
		msg += fmt.Sprintf(", position=%d", e.Position)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error signals a programming defect rather
// than a transient failure.
func (e *RuntimeError) Fatal() bool {
	return e.Code == ErrCodeRoundLimit
}

// IsDeferredError returns true if a deferred callback failed.
// Uses errors.As to handle wrapped errors.
func IsDeferredError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeDeferredFailed
	}
	return false
}

// IsRoundLimitError returns true if resolution exceeded its round limit.
// Matches both RuntimeError with ErrCodeRoundLimit and RoundsExceededError.
func IsRoundLimitError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeRoundLimit
	}
	var rx *RoundsExceededError
	return errors.As(err, &rx)
}

// IsFatal returns true for errors that must not be retried.
func IsFatal(err error) bool {
	return IsRoundLimitError(err)
}

// NewDeferredError creates a RuntimeError for a failed callback.
func NewDeferredError(seq int64, round, position int, cause error) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeDeferredFailed,
		Message:  "deferred parameter failed",
		Seq:      seq,
		Round:    round,
		Position: position,
		Err:      cause,
	}
}

// NewRoundLimitError creates a RuntimeError for non-termination.
func NewRoundLimitError(seq int64, cause *RoundsExceededError, remaining int) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeRoundLimit,
		Message:  fmt.Sprintf("deferred parameters remain after %d rounds", cause.Limit),
		Seq:      seq,
		Round:    cause.Rounds,
		Position: -1,
		Details: map[string]string{
			"max_rounds": fmt.Sprintf("%d", cause.Limit),
			"remaining":  fmt.Sprintf("%d", remaining),
		},
		Err: cause,
	}
}
